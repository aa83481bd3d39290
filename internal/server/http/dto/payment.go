package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreatePaymentRequest records a payment against an order.
type CreatePaymentRequest struct {
	OrderID        int64            `json:"orderId" binding:"required"`
	Method         string           `json:"method"`
	Amount         decimal.Decimal  `json:"amount"`
	Currency       string           `json:"currency"`
	ConversionRate *decimal.Decimal `json:"conversionRate"`
	TransactionRef string           `json:"transactionRef"`
}

// UpdatePaymentRequest changes the editable fields of a requested payment. Absent fields stay as they are.
type UpdatePaymentRequest struct {
	PaymentID      int64            `json:"paymentId" binding:"required"`
	Method         *string          `json:"method"`
	Amount         *decimal.Decimal `json:"amount"`
	Currency       *string          `json:"currency"`
	ConversionRate *decimal.Decimal `json:"conversionRate"`
	TransactionRef *string          `json:"transactionRef"`
}

// PaymentIDRequest addresses a single payment.
type PaymentIDRequest struct {
	PaymentID int64 `json:"paymentId" binding:"required"`
}

// PaymentOTPRequest verifies the customer code of a payment.
type PaymentOTPRequest struct {
	PaymentID int64  `json:"paymentId" binding:"required"`
	Code      string `json:"code" binding:"required"`
}

// RejectPaymentRequest rejects a payment with a reason.
type RejectPaymentRequest struct {
	PaymentID int64  `json:"paymentId" binding:"required"`
	Reason    string `json:"reason"`
}

// PaymentResponse is the API view of a payment.
type PaymentResponse struct {
	ID               int64           `json:"id"`
	OrderID          int64           `json:"orderId"`
	Status           string          `json:"status"`
	Method           string          `json:"method"`
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	ConversionRate   decimal.Decimal `json:"conversionRate"`
	CalculatedAmount decimal.Decimal `json:"calculatedAmount"`
	TransactionRef   string          `json:"transactionRef,omitempty"`
	OTPVerified      bool            `json:"otpVerified"`
	VerifiedBy       *int64          `json:"verifiedBy,omitempty"`
	ApprovedBy       *int64          `json:"approvedBy,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}
