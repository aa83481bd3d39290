package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/orderdesk/internal/domain/errors"
	"github.com/polkiloo/orderdesk/internal/domain/model"
	testhelpers "github.com/polkiloo/orderdesk/internal/test"
)

func TestProductVersionHistory(t *testing.T) {
	repo := testhelpers.NewProductRepositoryStub()
	uc := NewProductUseCase(repo)
	ctx := context.Background()

	created, err := uc.Create(ctx, 1, ProductInput{Name: " Crate ", Price: decimal.NewFromInt(12), Currency: "usd", MOQ: 4}, "initial import")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID == 0 || created.Version != 1 || created.Name != "Crate" || created.Currency != "USD" {
		t.Fatalf("unexpected product %+v", created)
	}

	updated, err := uc.Update(ctx, 2, created.ID, ProductInput{Name: "Crate", Price: decimal.NewFromInt(15), Currency: "USD", MOQ: 6}, "price rise")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Version != 2 || !updated.Price.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("unexpected product %+v", updated)
	}

	restored, err := uc.Restore(ctx, 3, created.ID, 1, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if restored.Version != 3 || !restored.Price.Equal(decimal.NewFromInt(12)) || restored.MOQ != 4 {
		t.Fatalf("expected version 1 state as version 3, got %+v", restored)
	}

	history, err := uc.History(ctx, created.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("expected 3 versions, got %d", len(history))
	}
	last := history[2]
	if last.ChangeType != model.ChangeTypeRestore || last.ChangeReason != "restored from version 1" || last.ChangedBy != 3 || last.Version != 3 {
		t.Fatalf("unexpected restore entry %+v", last)
	}
	if history[0].ChangeType != model.ChangeTypeCreate || history[1].ChangeReason != "price rise" {
		t.Fatalf("unexpected history %+v", history)
	}

	v2, err := uc.GetVersion(ctx, created.ID, 2)
	if err != nil || !v2.Snapshot.Price.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("unexpected version 2 %+v %v", v2, err)
	}
	if len(repo.Events) != 3 || repo.Events[0].AggregateID != "1" {
		t.Fatalf("expected one event per version, got %+v", repo.Events)
	}
}

func TestProductUpdateVersionConflict(t *testing.T) {
	repo := testhelpers.NewProductRepositoryStub()
	uc := NewProductUseCase(repo)
	ctx := context.Background()
	stored := repo.Put(model.Product{Name: "Crate", Currency: "USD", Version: 4})

	stale := *stored
	stale.Version = 5
	if err := repo.Update(ctx, &stale, 3, model.ProductVersion{Version: 5}); !errors.Is(err, domainErrors.ErrStatusConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	updated, err := uc.Update(ctx, 1, stored.ID, ProductInput{Name: "Crate", Currency: "USD"}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Version != 5 {
		t.Fatalf("expected version 5, got %d", updated.Version)
	}
}

func TestProductValidation(t *testing.T) {
	uc := NewProductUseCase(testhelpers.NewProductRepositoryStub())

	_, err := uc.Create(context.Background(), 1, ProductInput{Price: decimal.NewFromInt(-1), Stock: intPtr(-2), TotalMOQ: 10}, "")
	var verr *domainErrors.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	expected := []string{
		"name is required",
		"currency is required",
		"price must not be negative",
		"stock must not be negative",
		"totalMoq requires a groupCode",
	}
	if len(verr.Violations) != len(expected) {
		t.Fatalf("unexpected violations %v", verr.Violations)
	}
	for i := range expected {
		if verr.Violations[i] != expected[i] {
			t.Fatalf("unexpected violation %q, want %q", verr.Violations[i], expected[i])
		}
	}
}

func TestProductRestoreUnknownVersion(t *testing.T) {
	repo := testhelpers.NewProductRepositoryStub()
	uc := NewProductUseCase(repo)
	p, err := uc.Create(context.Background(), 1, ProductInput{Name: "Crate", Currency: "USD"}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := uc.Restore(context.Background(), 1, p.ID, 9, ""); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := uc.History(context.Background(), 404); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
