package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus describes the payment verification workflow.
type PaymentStatus string

const (
	PaymentStatusRequested PaymentStatus = "requested"
	PaymentStatusVerify    PaymentStatus = "verify"
	PaymentStatusApproved  PaymentStatus = "approved"
	PaymentStatusPaid      PaymentStatus = "paid"
	PaymentStatusRejected  PaymentStatus = "rejected"
)

// Payment records money received against a single order.
type Payment struct {
	ID               int64
	OrderID          int64
	Status           PaymentStatus
	Method           string
	Amount           decimal.Decimal
	Currency         string
	ConversionRate   decimal.Decimal
	CalculatedAmount decimal.Decimal
	TransactionRef   string
	OTPVerified      bool
	VerifiedBy       *int64
	ApprovedBy       *int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Recalculate derives CalculatedAmount in the order currency.
func (p *Payment) Recalculate() {
	p.CalculatedAmount = p.Amount.Mul(p.ConversionRate).Round(2)
}

// Complete reports whether amount, currency and rate are all set.
func (p *Payment) Complete() bool {
	return p.Amount.IsPositive() && p.Currency != "" && p.ConversionRate.IsPositive()
}
