package model

import "time"

// EventStatus tracks outbox delivery.
type EventStatus string

const (
	EventStatusPending    EventStatus = "pending"
	EventStatusInProgress EventStatus = "in_progress"
	EventStatusSent       EventStatus = "sent"
	EventStatusFailed     EventStatus = "failed"
)

// Event types published to the events topic.
const (
	EventOrderPlaced          = "order.placed"
	EventOrderStatusChanged   = "order.status_changed"
	EventOrderModified        = "order.modified"
	EventPaymentStatusChanged = "payment.status_changed"
	EventNegotiationUpdated   = "negotiation.updated"
	EventProductVersioned     = "product.versioned"
	EventWalletMoved          = "wallet.moved"
)

// Event is a domain event stored in the outbox in the same transaction as the change it describes.
type Event struct {
	ID            int64
	AggregateType string
	AggregateID   string
	Type          string
	Payload       []byte
	Traceparent   string
	Status        EventStatus
	Attempts      int
	CreatedAt     time.Time
}
