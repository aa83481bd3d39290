package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/orderdesk/internal/domain/model"
)

// SettleFunc inspects the locked order and the sum of its paid payments, the one being
// marked included, and returns the status change to apply with its events, or nil.
type SettleFunc func(order *model.Order, paid decimal.Decimal) (*model.StatusChange, []model.Event, error)

// PaymentRepository describes persistence operations with order payments.
type PaymentRepository interface {
	// Create inserts the payment; events with an empty AggregateID receive the new ID.
	Create(ctx context.Context, payment *model.Payment, events ...model.Event) error
	GetByID(ctx context.Context, id int64) (*model.Payment, error)
	ListByOrder(ctx context.Context, orderID int64) ([]model.Payment, error)
	// Update writes all mutable fields provided the stored status still equals expected.
	Update(ctx context.Context, payment *model.Payment, expected model.PaymentStatus, events ...model.Event) error
	// MarkPaid moves an approved payment to paid. Inside the same transaction it locks the
	// order, totals the paid payments and applies whatever change settle returns.
	MarkPaid(ctx context.Context, payment *model.Payment, settle SettleFunc, events ...model.Event) (*model.StatusChange, error)
	MarkOTPVerified(ctx context.Context, paymentID int64) error
}
