package worker

import (
	"context"
	"hash/fnv"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/polkiloo/orderdesk/internal/domain/model"
	"github.com/polkiloo/orderdesk/internal/domain/repository"
	"github.com/polkiloo/orderdesk/internal/telemetry"
)

// EventPublisher delivers a single outbox event to the broker.
type EventPublisher interface {
	Publish(ctx context.Context, event model.Event) error
}

// OutcomeObserver is told whether each event was sent or failed.
type OutcomeObserver interface {
	ObserveOutbox(result string)
}

// RelayOptions tunes polling and concurrency.
type RelayOptions struct {
	PollInterval time.Duration
	BatchSize    int
	Workers      int
}

// OutboxRelay polls the outbox and publishes claimed events concurrently.
// Events of one aggregate always go through the same worker so their order is kept.
type OutboxRelay struct {
	id        string
	outbox    repository.OutboxRepository
	publisher EventPublisher
	observer  OutcomeObserver
	opts      RelayOptions
	logger    *slog.Logger

	shards []chan model.Event
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewOutboxRelay constructs the relay worker pool.
func NewOutboxRelay(outbox repository.OutboxRepository, publisher EventPublisher, observer OutcomeObserver, opts RelayOptions, logger *slog.Logger) *OutboxRelay {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 1
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Second
	}
	id := uuid.NewString()
	return &OutboxRelay{
		id:        id,
		outbox:    outbox,
		publisher: publisher,
		observer:  observer,
		opts:      opts,
		logger:    logger.With(slog.String("relay_id", id)),
	}
}

// Start launches background publishing.
func (r *OutboxRelay) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	r.shards = make([]chan model.Event, r.opts.Workers)
	for i := range r.shards {
		r.shards[i] = make(chan model.Event, r.opts.BatchSize)
		r.wg.Add(1)
		go r.worker(runCtx, r.shards[i])
	}

	r.wg.Add(1)
	go r.dispatch(runCtx)
	r.logger.Info("outbox relay started", slog.Int("workers", r.opts.Workers))
}

// Stop waits for all workers to finish. Claimed but unpublished events are reclaimed later.
func (r *OutboxRelay) Stop() {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.mu.Unlock()

	r.wg.Wait()
}

func (r *OutboxRelay) dispatch(ctx context.Context) {
	defer r.wg.Done()
	defer func() {
		for _, shard := range r.shards {
			close(shard)
		}
	}()
	ticker := time.NewTicker(r.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.claimAndDispatch(ctx)
		}
	}
}

func (r *OutboxRelay) claimAndDispatch(ctx context.Context) {
	events, err := r.outbox.ClaimBatch(ctx, r.opts.BatchSize)
	if err != nil {
		r.logger.Error("claim outbox batch failed", slog.String("error", err.Error()))
		return
	}
	for _, event := range events {
		select {
		case <-ctx.Done():
			return
		case r.shardFor(event) <- event:
		}
	}
}

func (r *OutboxRelay) shardFor(event model.Event) chan model.Event {
	h := fnv.New32a()
	_, _ = h.Write([]byte(event.AggregateType + ":" + event.AggregateID))
	return r.shards[h.Sum32()%uint32(len(r.shards))]
}

func (r *OutboxRelay) worker(ctx context.Context, events <-chan model.Event) {
	defer r.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			r.handleEvent(ctx, event)
		}
	}
}

func (r *OutboxRelay) handleEvent(ctx context.Context, event model.Event) {
	pubCtx := telemetry.WithTraceparent(ctx, event.Traceparent)
	// Outcome writes must land even when Stop cancels the run context mid-publish.
	markCtx := context.WithoutCancel(ctx)
	if err := r.publisher.Publish(pubCtx, event); err != nil {
		r.logger.Warn("publish event failed",
			slog.Int64("event_id", event.ID),
			slog.String("event_type", event.Type),
			slog.Int("attempts", event.Attempts+1),
			slog.String("error", err.Error()),
		)
		if markErr := r.outbox.MarkFailed(markCtx, event.ID, err.Error()); markErr != nil {
			r.logger.Error("mark event failed", slog.Int64("event_id", event.ID), slog.String("error", markErr.Error()))
		}
		r.observe("failed")
		return
	}

	if err := r.outbox.MarkSent(markCtx, event.ID); err != nil {
		r.logger.Error("mark event sent failed", slog.Int64("event_id", event.ID), slog.String("error", err.Error()))
		return
	}
	r.observe("sent")
}

func (r *OutboxRelay) observe(result string) {
	if r.observer != nil {
		r.observer.ObserveOutbox(result)
	}
}
