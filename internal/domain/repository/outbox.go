package repository

import (
	"context"

	"github.com/polkiloo/orderdesk/internal/domain/model"
)

// OutboxRepository hands pending domain events to the relay.
type OutboxRepository interface {
	ClaimBatch(ctx context.Context, limit int) ([]model.Event, error)
	MarkSent(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64, reason string) error
}
