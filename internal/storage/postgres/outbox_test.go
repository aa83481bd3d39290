package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmockv3 "github.com/pashagolub/pgxmock/v3"

	"github.com/polkiloo/orderdesk/internal/domain/model"
)

func TestOutboxClaimBatch(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &outboxRepository{storage: storage}
	ctx := context.Background()
	now := time.Now()

	columns := []string{"id", "aggregate_type", "aggregate_id", "event_type", "payload", "traceparent", "attempts", "created_at"}
	mock.ExpectBegin()
	mock.ExpectQuery("FROM outbox_events").WithArgs(model.EventStatusPending, model.EventStatusInProgress, 10).WillReturnRows(
		pgxmockv3.NewRows(columns).
			AddRow(int64(1), "order", "10", model.EventOrderPlaced, []byte(`{"orderId":10}`), "00-trace-span-01", 0, now).
			AddRow(int64(2), "wallet", "7", model.EventWalletMoved, []byte(`{}`), "", 2, now))
	mock.ExpectExec("UPDATE outbox_events SET status").WithArgs(model.EventStatusInProgress, []int64{1, 2}).
		WillReturnResult(pgxmockv3.NewResult("UPDATE", 2))
	mock.ExpectCommit()

	events, err := repo.ClaimBatch(ctx, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 2 || events[0].Traceparent != "00-trace-span-01" || events[1].Attempts != 2 {
		t.Fatalf("unexpected events: %+v", events)
	}
	if events[0].Status != model.EventStatusInProgress {
		t.Fatalf("expected claimed status, got %s", events[0].Status)
	}

	mock.ExpectBegin()
	mock.ExpectQuery("FROM outbox_events").WillReturnRows(pgxmockv3.NewRows(columns))
	mock.ExpectCommit()
	events, err = repo.ClaimBatch(ctx, 10)
	if err != nil || len(events) != 0 {
		t.Fatalf("expected empty batch, got %+v err=%v", events, err)
	}

	mock.ExpectBegin()
	mock.ExpectQuery("FROM outbox_events").WillReturnError(errors.New("boom"))
	mock.ExpectRollback()
	if _, err := repo.ClaimBatch(ctx, 10); err == nil {
		t.Fatal("expected error")
	}

	expectNoError(t, mock)
}

func TestOutboxClaimBatchRowsError(t *testing.T) {
	rows := &errorRows{err: errors.New("rows err")}
	tx := &rowsErrorTx{rows: rows}
	storage := &Storage{pool: &rowsErrorTxPool{tx: tx}}
	repo := &outboxRepository{storage: storage}
	if _, err := repo.ClaimBatch(context.Background(), 5); err == nil {
		t.Fatal("expected rows error")
	}
}

func TestOutboxMarkSentAndFailed(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &outboxRepository{storage: storage}
	ctx := context.Background()

	mock.ExpectExec("UPDATE outbox_events SET status").WithArgs(model.EventStatusSent, int64(1)).
		WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	if err := repo.MarkSent(ctx, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectExec("UPDATE outbox_events").
		WithArgs("broker down", maxDeliveryAttempts, model.EventStatusFailed, model.EventStatusPending, int64(2)).
		WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	if err := repo.MarkFailed(ctx, 2, "broker down"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectExec("UPDATE outbox_events").WillReturnError(errors.New("boom"))
	if err := repo.MarkFailed(ctx, 3, "x"); err == nil {
		t.Fatal("expected error")
	}

	expectNoError(t, mock)
}
