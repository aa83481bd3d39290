package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/polkiloo/orderdesk/internal/domain/model"
)

// maxDeliveryAttempts bounds publishing retries before an event is parked as failed.
const maxDeliveryAttempts = 10

type outboxRepository struct {
	storage *Storage
}

// ClaimBatch locks up to limit deliverable events and marks them in progress.
// In-progress rows claimed more than a minute ago are handed out again.
func (r *outboxRepository) ClaimBatch(ctx context.Context, limit int) ([]model.Event, error) {
	const selectQuery = `SELECT id, aggregate_type, aggregate_id, event_type, payload, traceparent, attempts, created_at
                         FROM outbox_events
                         WHERE status = $1 OR (status = $2 AND claimed_at < NOW() - INTERVAL '1 minute')
                         ORDER BY id
                         LIMIT $3
                         FOR UPDATE SKIP LOCKED`
	const claimQuery = `UPDATE outbox_events SET status=$1, claimed_at=NOW() WHERE id = ANY($2)`

	var events []model.Event
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, selectQuery, model.EventStatusPending, model.EventStatusInProgress, limit)
		if err != nil {
			return err
		}
		defer rows.Close()

		ids := make([]int64, 0, limit)
		for rows.Next() {
			var e model.Event
			if err := rows.Scan(&e.ID, &e.AggregateType, &e.AggregateID, &e.Type, &e.Payload, &e.Traceparent, &e.Attempts, &e.CreatedAt); err != nil {
				return err
			}
			e.Status = model.EventStatusInProgress
			events = append(events, e)
			ids = append(ids, e.ID)
		}
		if err := rows.Err(); err != nil {
			return err
		}
		rows.Close()

		if len(ids) == 0 {
			return nil
		}
		_, err = tx.Exec(ctx, claimQuery, model.EventStatusInProgress, ids)
		return err
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *outboxRepository) MarkSent(ctx context.Context, id int64) error {
	const query = `UPDATE outbox_events SET status=$1, sent_at=NOW(), last_error=NULL WHERE id=$2`
	_, err := r.storage.pool.Exec(ctx, query, model.EventStatusSent, id)
	return err
}

// MarkFailed returns the event to the queue, or parks it once attempts are exhausted.
func (r *outboxRepository) MarkFailed(ctx context.Context, id int64, reason string) error {
	const query = `UPDATE outbox_events
                   SET attempts = attempts + 1,
                       last_error = $1,
                       status = CASE WHEN attempts + 1 >= $2 THEN $3 ELSE $4 END,
                       claimed_at = NULL
                   WHERE id=$5`
	_, err := r.storage.pool.Exec(ctx, query, reason, maxDeliveryAttempts, model.EventStatusFailed, model.EventStatusPending, id)
	return err
}
