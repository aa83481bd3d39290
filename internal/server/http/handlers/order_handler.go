package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/polkiloo/orderdesk/internal/domain/model"
	"github.com/polkiloo/orderdesk/internal/server/http/dto"
	"github.com/polkiloo/orderdesk/internal/usecase"
)

// OrderHandler manages order-related endpoints.
type OrderHandler struct {
	facade OrderFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// Get handles POST /api/admin/order/get.
func (h *OrderHandler) Get(c *gin.Context) {
	var req dto.OrderIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "orderId is required")
		return
	}

	view, err := h.facade.OrderView(c.Request.Context(), req.OrderID, CurrentSession(c).AccountID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, toOrderViewResponse(view))
}

// List handles POST /api/admin/order/list.
func (h *OrderHandler) List(c *gin.Context) {
	var req dto.OrderListRequest
	if err := bindOptional(c, &req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	orders, err := h.facade.Orders(c.Request.Context(), model.OrderStatus(req.Status), req.Limit)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, toOrderResponses(orders))
}

// Stages handles POST /api/admin/order/get-stages.
func (h *OrderHandler) Stages(c *gin.Context) {
	var req dto.StagesRequest
	if err := bindOptional(c, &req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	stages, err := h.facade.Stages(c.Request.Context(), model.StageKey{
		CurrentLocation:  req.CurrentLocation,
		DeliveryLocation: req.DeliveryLocation,
		Currency:         req.Currency,
	})
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, statusStrings(stages))
}

// PaymentMethods handles POST /api/admin/order/payment-methods.
func (h *OrderHandler) PaymentMethods(c *gin.Context) {
	respond(c, h.facade.PaymentMethods())
}

// UpdateStatus handles POST /api/admin/order/update-status.
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "orderId and status are required")
		return
	}

	order, err := h.facade.UpdateStatus(c.Request.Context(), usecase.StatusUpdate{
		OrderID:       req.OrderID,
		Status:        model.OrderStatus(req.Status),
		AdminID:       CurrentSession(c).AccountID,
		PaymentMethod: req.PaymentMethod,
		OtherCharges:  req.OtherCharges,
		Discount:      req.Discount,
		Message:       req.Message,
	})
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, toOrderResponse(*order))
}

// UpdateQuantities handles POST /api/admin/order/update-quantities.
func (h *OrderHandler) UpdateQuantities(c *gin.Context) {
	var req dto.UpdateQuantitiesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "orderId is required")
		return
	}

	order, err := h.facade.UpdateQuantities(c.Request.Context(), req.OrderID, CurrentSession(c).AccountID, quantityEdits(req.Items))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, toOrderResponse(*order))
}

// SendConfirmation handles POST /api/admin/order/send-confirmation.
func (h *OrderHandler) SendConfirmation(c *gin.Context) {
	var req dto.UpdateQuantitiesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "orderId is required")
		return
	}

	order, err := h.facade.SendModificationConfirmation(c.Request.Context(), req.OrderID, CurrentSession(c).AccountID, quantityEdits(req.Items))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, toOrderResponse(*order))
}

// ConfirmModification handles POST /api/public/order/confirm-modification.
func (h *OrderHandler) ConfirmModification(c *gin.Context) {
	var req dto.TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "token is required")
		return
	}

	order, err := h.facade.ConfirmModification(c.Request.Context(), req.Token)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, toOrderResponse(*order))
}

// UpdateReceiver handles POST /api/admin/order/update-receiver.
func (h *OrderHandler) UpdateReceiver(c *gin.Context) {
	var req dto.ReceiverRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.OrderID == 0 {
		badRequest(c, "orderId is required")
		return
	}

	order, err := h.facade.UpdateReceiver(c.Request.Context(), req.OrderID, model.ReceiverDetails{
		Name:    req.Name,
		Mobile:  req.Mobile,
		Address: req.Address,
	})
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, toOrderResponse(*order))
}

// Cancel handles POST /api/admin/order/cancel.
func (h *OrderHandler) Cancel(c *gin.Context) {
	var req dto.CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "orderId is required")
		return
	}

	order, err := h.facade.CancelOrder(c.Request.Context(), req.OrderID, CurrentSession(c).AccountID, req.Reason)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, toOrderResponse(*order))
}

// SendDeliveryOTP handles POST /api/admin/order/send-delivery-otp.
func (h *OrderHandler) SendDeliveryOTP(c *gin.Context) {
	var req dto.OrderIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "orderId is required")
		return
	}

	if err := h.facade.SendDeliveryOTP(c.Request.Context(), req.OrderID); err != nil {
		fail(c, err)
		return
	}
	respond(c, nil)
}

// VerifyDeliveryOTP handles POST /api/admin/order/verify-delivery-otp.
func (h *OrderHandler) VerifyDeliveryOTP(c *gin.Context) {
	var req dto.DeliveryOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "orderId and code are required")
		return
	}

	if err := h.facade.VerifyDeliveryOTP(c.Request.Context(), req.OrderID, req.Code); err != nil {
		fail(c, err)
		return
	}
	respond(c, nil)
}

// Create handles POST /api/customer/order/create.
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	lines := make([]usecase.OrderLine, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, usecase.OrderLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	order, err := h.facade.PlaceOrder(c.Request.Context(), usecase.NewOrder{
		CustomerID:       CurrentSession(c).AccountID,
		CurrentLocation:  req.CurrentLocation,
		DeliveryLocation: req.DeliveryLocation,
		Currency:         req.Currency,
		Grouped:          req.IsGroupedOrder,
		Lines:            lines,
		Receiver: model.ReceiverDetails{
			Name:    req.Receiver.Name,
			Mobile:  req.Receiver.Mobile,
			Address: req.Receiver.Address,
		},
	})
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, toOrderResponse(*order))
}

// CustomerList handles POST /api/customer/order/list.
func (h *OrderHandler) CustomerList(c *gin.Context) {
	orders, err := h.facade.CustomerOrders(c.Request.Context(), CurrentSession(c).AccountID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, toOrderResponses(orders))
}

func quantityEdits(items []dto.QuantityEdit) map[int64]int {
	edits := make(map[int64]int, len(items))
	for _, item := range items {
		edits[item.ItemID] = item.Quantity
	}
	return edits
}

func statusStrings(statuses []model.OrderStatus) []string {
	out := make([]string, 0, len(statuses))
	for _, st := range statuses {
		out = append(out, string(st))
	}
	return out
}

func toOrderResponses(orders []model.Order) []dto.OrderResponse {
	out := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	return out
}

func toOrderResponse(order model.Order) dto.OrderResponse {
	items := make([]dto.CartItemResponse, 0, len(order.CartItems))
	for _, item := range order.CartItems {
		items = append(items, dto.CartItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			SKUFamilyID: item.SKUFamilyID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.Subtotal(),
		})
	}
	return dto.OrderResponse{
		ID:                    order.ID,
		CustomerID:            order.CustomerID,
		Status:                string(order.Status),
		CurrentLocation:       order.CurrentLocation,
		DeliveryLocation:      order.DeliveryLocation,
		Currency:              order.Currency,
		PaymentMethod:         order.PaymentMethod,
		CartItems:             items,
		VerifiedBy:            order.VerifiedBy,
		ApprovedBy:            order.ApprovedBy,
		OtherCharges:          order.OtherCharges,
		Discount:              order.Discount,
		TotalAmount:           order.TotalAmount,
		IsGroupedOrder:        order.IsGroupedOrder,
		QuantitiesModified:    order.QuantitiesModified,
		ConfirmationExpiresAt: order.ConfirmationExpiresAt,
		IsConfirmedByCustomer: order.IsConfirmedByCustomer,
		Receiver: dto.ReceiverResponse{
			Name:    order.Receiver.Name,
			Mobile:  order.Receiver.Mobile,
			Address: order.Receiver.Address,
		},
		DeliveryOTPVerified: order.DeliveryOTPVerified,
		NegotiationID:       order.NegotiationID,
		CreatedAt:           order.CreatedAt,
		UpdatedAt:           order.UpdatedAt,
	}
}

func toOrderViewResponse(view *model.OrderView) dto.OrderViewResponse {
	history := make([]dto.StatusChangeResponse, 0, len(view.History))
	for _, ch := range view.History {
		history = append(history, dto.StatusChangeResponse{
			From:      string(ch.From),
			To:        string(ch.To),
			AdminID:   ch.AdminID,
			Message:   ch.Message,
			ChangedAt: ch.ChangedAt,
		})
	}
	return dto.OrderViewResponse{
		Order:        toOrderResponse(*view.Order),
		NextStatuses: statusStrings(view.NextStatuses),
		Payments:     toPaymentResponses(view.Payments),
		History:      history,
	}
}
