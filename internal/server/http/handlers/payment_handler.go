package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/orderdesk/internal/domain/model"
	"github.com/polkiloo/orderdesk/internal/server/http/dto"
	"github.com/polkiloo/orderdesk/internal/usecase"
)

// PaymentHandler exposes the payment state machine.
type PaymentHandler struct {
	facade PaymentFacade
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(facade PaymentFacade) *PaymentHandler {
	return &PaymentHandler{facade: facade}
}

// Create handles POST /api/admin/order-payment/create.
func (h *PaymentHandler) Create(c *gin.Context) {
	var req dto.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "orderId is required")
		return
	}

	payment, err := h.facade.CreatePayment(c.Request.Context(), usecase.PaymentRequest{
		OrderID:        req.OrderID,
		Method:         req.Method,
		Amount:         req.Amount,
		Currency:       req.Currency,
		ConversionRate: req.ConversionRate,
		TransactionRef: req.TransactionRef,
	})
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, toPaymentResponse(*payment))
}

// Update handles POST /api/admin/order-payment/update.
func (h *PaymentHandler) Update(c *gin.Context) {
	var req dto.UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "paymentId is required")
		return
	}

	payment, err := h.facade.UpdatePayment(c.Request.Context(), usecase.PaymentUpdate{
		PaymentID:      req.PaymentID,
		Method:         req.Method,
		Amount:         req.Amount,
		Currency:       req.Currency,
		ConversionRate: req.ConversionRate,
		TransactionRef: req.TransactionRef,
	})
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, toPaymentResponse(*payment))
}

// SendOTP handles POST /api/admin/order-payment/send-otp.
func (h *PaymentHandler) SendOTP(c *gin.Context) {
	var req dto.PaymentIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "paymentId is required")
		return
	}

	if err := h.facade.SendPaymentOTP(c.Request.Context(), req.PaymentID); err != nil {
		fail(c, err)
		return
	}
	respond(c, nil)
}

// VerifyOTP handles POST /api/admin/order-payment/verify-otp.
func (h *PaymentHandler) VerifyOTP(c *gin.Context) {
	var req dto.PaymentOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "paymentId and code are required")
		return
	}

	payment, err := h.facade.VerifyPaymentOTP(c.Request.Context(), req.PaymentID, req.Code)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, toPaymentResponse(*payment))
}

// Verify handles POST /api/admin/order-payment/verify.
func (h *PaymentHandler) Verify(c *gin.Context) {
	h.transition(c, h.facade.VerifyPayment)
}

// Approve handles POST /api/admin/order-payment/approve.
func (h *PaymentHandler) Approve(c *gin.Context) {
	h.transition(c, h.facade.ApprovePayment)
}

// MarkPaid handles POST /api/admin/order-payment/mark-paid.
func (h *PaymentHandler) MarkPaid(c *gin.Context) {
	h.transition(c, h.facade.MarkPaid)
}

// Reject handles POST /api/admin/order-payment/reject.
func (h *PaymentHandler) Reject(c *gin.Context) {
	var req dto.RejectPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "paymentId is required")
		return
	}

	payment, err := h.facade.RejectPayment(c.Request.Context(), req.PaymentID, CurrentSession(c).AccountID, req.Reason)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, toPaymentResponse(*payment))
}

func (h *PaymentHandler) transition(c *gin.Context, move func(ctx context.Context, paymentID, adminID int64) (*model.Payment, error)) {
	var req dto.PaymentIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "paymentId is required")
		return
	}

	payment, err := move(c.Request.Context(), req.PaymentID, CurrentSession(c).AccountID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, toPaymentResponse(*payment))
}

func toPaymentResponses(payments []model.Payment) []dto.PaymentResponse {
	out := make([]dto.PaymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, toPaymentResponse(p))
	}
	return out
}

func toPaymentResponse(p model.Payment) dto.PaymentResponse {
	return dto.PaymentResponse{
		ID:               p.ID,
		OrderID:          p.OrderID,
		Status:           string(p.Status),
		Method:           p.Method,
		Amount:           p.Amount,
		Currency:         p.Currency,
		ConversionRate:   p.ConversionRate,
		CalculatedAmount: p.CalculatedAmount,
		TransactionRef:   p.TransactionRef,
		OTPVerified:      p.OTPVerified,
		VerifiedBy:       p.VerifiedBy,
		ApprovedBy:       p.ApprovedBy,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}
