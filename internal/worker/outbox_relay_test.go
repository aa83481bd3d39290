package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"testing"
	"time"

	"github.com/polkiloo/orderdesk/internal/domain/model"
	"github.com/polkiloo/orderdesk/internal/telemetry"
	testhelpers "github.com/polkiloo/orderdesk/internal/test"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.After(timeout)
	for !cond() {
		select {
		case <-deadline:
			t.Fatal("timeout waiting for relay")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestNewOutboxRelayDefaults(t *testing.T) {
	relay := NewOutboxRelay(&testhelpers.OutboxRepositoryStub{}, &testhelpers.PublisherStub{}, nil, RelayOptions{}, testLogger())
	if relay.opts.BatchSize != 1 || relay.opts.Workers != 1 || relay.opts.PollInterval != time.Second {
		t.Fatalf("unexpected defaults: %+v", relay.opts)
	}
	if relay.id == "" {
		t.Fatal("expected relay id")
	}
}

func TestOutboxRelayPublishesEvents(t *testing.T) {
	telemetry.InstallPropagator()
	outbox := &testhelpers.OutboxRepositoryStub{Pending: []model.Event{
		{ID: 1, AggregateType: "order", AggregateID: "10", Type: model.EventOrderPlaced, Traceparent: "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"},
		{ID: 2, AggregateType: "payment", AggregateID: "5", Type: model.EventPaymentStatusChanged},
		{ID: 3, AggregateType: "order", AggregateID: "10", Type: model.EventOrderStatusChanged},
	}}
	publisher := &testhelpers.PublisherStub{}
	observer := &testhelpers.OutboxObserverStub{}
	relay := NewOutboxRelay(outbox, publisher, observer, RelayOptions{PollInterval: 5 * time.Millisecond, BatchSize: 2, Workers: 3}, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	relay.Start(ctx)
	waitFor(t, time.Second, func() bool { return outbox.Done() == 3 })
	relay.Stop()

	publisher.Lock()
	defer publisher.Unlock()
	if len(publisher.Published) != 3 {
		t.Fatalf("expected 3 published events, got %d", len(publisher.Published))
	}
	var orderEvents []int64
	for i, e := range publisher.Published {
		if e.AggregateType == "order" {
			orderEvents = append(orderEvents, e.ID)
		}
		if e.ID == 1 && telemetry.Traceparent(publisher.Contexts[i]) != e.Traceparent {
			t.Fatalf("expected trace context restored, got %q", telemetry.Traceparent(publisher.Contexts[i]))
		}
	}
	if len(orderEvents) != 2 || orderEvents[0] != 1 || orderEvents[1] != 3 {
		t.Fatalf("expected order events in outbox order, got %v", orderEvents)
	}
	observer.Lock()
	defer observer.Unlock()
	if observer.Results["sent"] != 3 {
		t.Fatalf("unexpected outcomes: %v", observer.Results)
	}
}

func TestOutboxRelayMarksFailures(t *testing.T) {
	outbox := &testhelpers.OutboxRepositoryStub{Pending: []model.Event{
		{ID: 7, AggregateType: "wallet", AggregateID: "3", Type: model.EventWalletMoved},
		{ID: 8, AggregateType: "wallet", AggregateID: "4", Type: model.EventWalletMoved},
	}}
	publisher := &testhelpers.PublisherStub{PublishFn: func(ctx context.Context, e model.Event) error {
		if e.ID == 7 {
			return errors.New("broker unavailable")
		}
		return nil
	}}
	observer := &testhelpers.OutboxObserverStub{}
	relay := NewOutboxRelay(outbox, publisher, observer, RelayOptions{PollInterval: 5 * time.Millisecond, BatchSize: 10, Workers: 2}, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	relay.Start(ctx)
	waitFor(t, time.Second, func() bool { return outbox.Done() == 2 })
	relay.Stop()

	outbox.Lock()
	defer outbox.Unlock()
	if outbox.Failed[7] != "broker unavailable" {
		t.Fatalf("expected failure reason recorded, got %v", outbox.Failed)
	}
	if len(outbox.Sent) != 1 || outbox.Sent[0] != 8 {
		t.Fatalf("expected event 8 sent, got %v", outbox.Sent)
	}
	observer.Lock()
	defer observer.Unlock()
	if observer.Results["failed"] != 1 || observer.Results["sent"] != 1 {
		t.Fatalf("unexpected outcomes: %v", observer.Results)
	}
}

func TestOutboxRelaySurvivesClaimErrors(t *testing.T) {
	outbox := &testhelpers.OutboxRepositoryStub{ClaimErr: errors.New("db down")}
	relay := NewOutboxRelay(outbox, &testhelpers.PublisherStub{}, nil, RelayOptions{PollInterval: 2 * time.Millisecond}, testLogger())

	relay.Start(context.Background())
	time.Sleep(20 * time.Millisecond)

	outbox.Lock()
	outbox.ClaimErr = nil
	outbox.Pending = []model.Event{{ID: 1, AggregateType: "order", AggregateID: "1"}}
	outbox.Unlock()

	waitFor(t, time.Second, func() bool { return outbox.Done() == 1 })
	relay.Stop()
	relay.Stop()
}

func TestOutboxRelayShardIsStablePerAggregate(t *testing.T) {
	relay := NewOutboxRelay(&testhelpers.OutboxRepositoryStub{}, &testhelpers.PublisherStub{}, nil, RelayOptions{Workers: 4}, testLogger())
	relay.shards = make([]chan model.Event, 4)
	for i := range relay.shards {
		relay.shards[i] = make(chan model.Event)
	}

	seen := map[string]chan model.Event{}
	for i := 0; i < 50; i++ {
		e := model.Event{AggregateType: "order", AggregateID: strconv.Itoa(i % 5)}
		shard := relay.shardFor(e)
		if prev, ok := seen[e.AggregateID]; ok && prev != shard {
			t.Fatalf("aggregate %s moved between shards", e.AggregateID)
		}
		seen[e.AggregateID] = shard
	}
}

func TestOutboxRelayRecordsOutcomeAfterCancel(t *testing.T) {
	tests := []struct {
		name       string
		publishErr error
		wantSent   bool
	}{
		{name: "sent", wantSent: true},
		{name: "failed", publishErr: errors.New("broker unavailable")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outbox := &testhelpers.OutboxRepositoryStub{Pending: []model.Event{
				{ID: 11, AggregateType: "order", AggregateID: "2", Type: model.EventOrderStatusChanged},
			}}
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			publisher := &testhelpers.PublisherStub{PublishFn: func(context.Context, model.Event) error {
				cancel()
				return tt.publishErr
			}}
			relay := NewOutboxRelay(outbox, publisher, nil, RelayOptions{PollInterval: 2 * time.Millisecond}, testLogger())

			relay.Start(ctx)
			waitFor(t, time.Second, func() bool { return outbox.Done() == 1 })
			relay.Stop()

			outbox.Lock()
			defer outbox.Unlock()
			if len(outbox.MarkCtxErrs) != 1 || outbox.MarkCtxErrs[0] != nil {
				t.Fatalf("expected outcome written with live context, got %v", outbox.MarkCtxErrs)
			}
			if tt.wantSent && (len(outbox.Sent) != 1 || outbox.Sent[0] != 11) {
				t.Fatalf("expected event 11 sent, got %v", outbox.Sent)
			}
			if !tt.wantSent && outbox.Failed[11] != "broker unavailable" {
				t.Fatalf("expected failure recorded, got %v", outbox.Failed)
			}
		})
	}
}
