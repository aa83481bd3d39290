package repository

import (
	"context"

	"github.com/polkiloo/orderdesk/internal/domain/model"
)

// NegotiationFilter narrows negotiation listings. Zero values match everything.
type NegotiationFilter struct {
	Status     model.NegotiationStatus
	CustomerID int64
}

// NegotiationRepository describes persistence operations with negotiation threads.
type NegotiationRepository interface {
	// Create inserts the thread; events with an empty AggregateID receive the new ID.
	Create(ctx context.Context, negotiation *model.Negotiation, events ...model.Event) error
	GetByID(ctx context.Context, id int64) (*model.Negotiation, error)
	GetByConfirmationToken(ctx context.Context, token string) (*model.Negotiation, error)
	List(ctx context.Context, filter NegotiationFilter) ([]model.Negotiation, error)
	// Update persists a new round provided the stored round still equals expectedRound.
	Update(ctx context.Context, negotiation *model.Negotiation, expectedRound int, events ...model.Event) error
	SetConfirmationToken(ctx context.Context, negotiation *model.Negotiation) error
	// PlaceOrder creates the order and links it to the negotiation atomically.
	// Events with an empty AggregateID receive the new order ID.
	PlaceOrder(ctx context.Context, negotiation *model.Negotiation, order *model.Order, events ...model.Event) error
}
