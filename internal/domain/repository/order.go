package repository

import (
	"context"

	"github.com/polkiloo/orderdesk/internal/domain/model"
)

// OrderRepository describes persistence operations with orders.
//
// Every status write is a compare-and-set on the status the caller read;
// ErrStatusConflict is returned when another writer got there first.
type OrderRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	GetByConfirmationToken(ctx context.Context, token string) (*model.Order, error)
	// ListByStatus returns orders newest first; an empty status matches all.
	ListByStatus(ctx context.Context, status model.OrderStatus, limit int) ([]model.Order, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]model.Order, error)
	Stages(ctx context.Context, key model.StageKey) ([]model.OrderStatus, error)
	History(ctx context.Context, orderID int64) ([]model.StatusChange, error)

	// Create inserts the order with its cart items and assigns identifiers.
	// Events with an empty AggregateID receive the new order ID.
	Create(ctx context.Context, order *model.Order, events ...model.Event) error
	TransitionStatus(ctx context.Context, order *model.Order, change model.StatusChange, events ...model.Event) error
	SaveQuantities(ctx context.Context, order *model.Order, events ...model.Event) error
	SetConfirmationToken(ctx context.Context, order *model.Order, events ...model.Event) error
	ConfirmModification(ctx context.Context, orderID int64, token string, events ...model.Event) error
	UpdateReceiver(ctx context.Context, orderID int64, receiver model.ReceiverDetails) error
	// MarkDeliveryOTPVerified sets the flag only while the receiver mobile still equals mobile.
	MarkDeliveryOTPVerified(ctx context.Context, orderID int64, mobile string) error
}
