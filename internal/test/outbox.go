package test

import (
	"context"
	"sync"

	"github.com/polkiloo/orderdesk/internal/domain/model"
)

// OutboxRepositoryStub hands out queued events once and records their outcome.
type OutboxRepositoryStub struct {
	sync.Mutex
	Pending  []model.Event
	Sent     []int64
	Failed   map[int64]string
	ClaimErr error
	// MarkCtxErrs holds ctx.Err() as seen by each MarkSent/MarkFailed call.
	MarkCtxErrs []error
}

func (s *OutboxRepositoryStub) ClaimBatch(ctx context.Context, limit int) ([]model.Event, error) {
	s.Lock()
	defer s.Unlock()
	if s.ClaimErr != nil {
		return nil, s.ClaimErr
	}
	if limit > len(s.Pending) {
		limit = len(s.Pending)
	}
	batch := append([]model.Event(nil), s.Pending[:limit]...)
	s.Pending = s.Pending[limit:]
	return batch, nil
}

func (s *OutboxRepositoryStub) MarkSent(ctx context.Context, id int64) error {
	s.Lock()
	defer s.Unlock()
	s.MarkCtxErrs = append(s.MarkCtxErrs, ctx.Err())
	s.Sent = append(s.Sent, id)
	return nil
}

func (s *OutboxRepositoryStub) MarkFailed(ctx context.Context, id int64, reason string) error {
	s.Lock()
	defer s.Unlock()
	s.MarkCtxErrs = append(s.MarkCtxErrs, ctx.Err())
	if s.Failed == nil {
		s.Failed = make(map[int64]string)
	}
	s.Failed[id] = reason
	return nil
}

// Done reports how many events reached a final outcome.
func (s *OutboxRepositoryStub) Done() int {
	s.Lock()
	defer s.Unlock()
	return len(s.Sent) + len(s.Failed)
}

// PublisherStub records published events; PublishFn overrides the default success.
type PublisherStub struct {
	sync.Mutex
	Published []model.Event
	Contexts  []context.Context
	PublishFn func(ctx context.Context, event model.Event) error
}

func (s *PublisherStub) Publish(ctx context.Context, event model.Event) error {
	if s.PublishFn != nil {
		if err := s.PublishFn(ctx, event); err != nil {
			return err
		}
	}
	s.Lock()
	defer s.Unlock()
	s.Published = append(s.Published, event)
	s.Contexts = append(s.Contexts, ctx)
	return nil
}

// OutboxObserverStub counts relay outcomes.
type OutboxObserverStub struct {
	sync.Mutex
	Results map[string]int
}

func (s *OutboxObserverStub) ObserveOutbox(result string) {
	s.Lock()
	defer s.Unlock()
	if s.Results == nil {
		s.Results = make(map[string]int)
	}
	s.Results[result]++
}
