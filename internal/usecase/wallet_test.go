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

func TestWalletCreditAndDebit(t *testing.T) {
	accounts := testhelpers.NewAccountRepositoryStub()
	customer := accounts.AddCustomer("holder", "holder@example.com", "")
	wallets := &testhelpers.WalletRepositoryStub{}
	uc := NewWalletUseCase(wallets, accounts)
	ctx := context.Background()

	if err := uc.Credit(ctx, 9, customer.ID, decimal.RequireFromString("100.005"), "DEP-1", "top up"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := uc.Debit(ctx, 9, customer.ID, decimal.NewFromInt(40), "ORD-1", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	summary, err := uc.Summary(ctx, customer.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !summary.Current.Equal(decimal.RequireFromString("60.01")) || !summary.Debited.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("unexpected summary %+v", summary)
	}

	if err := uc.Debit(ctx, 9, customer.ID, decimal.NewFromInt(61), "ORD-2", ""); !errors.Is(err, domainErrors.ErrInsufficientBalance) {
		t.Fatalf("expected insufficient balance, got %v", err)
	}

	ledger, err := uc.Ledger(ctx, customer.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ledger) != 2 || ledger[0].Kind != model.EntryKindDebit || ledger[1].Reference != "DEP-1" {
		t.Fatalf("unexpected ledger %+v", ledger)
	}
	if len(wallets.Events) != 2 || wallets.Events[0].Type != model.EventWalletMoved {
		t.Fatalf("expected wallet events, got %+v", wallets.Events)
	}
}

func TestWalletRejectsInvalidInput(t *testing.T) {
	accounts := testhelpers.NewAccountRepositoryStub()
	admin, _ := accounts.Create(context.Background(), model.Account{Login: "boss", Role: model.RoleAdmin})
	uc := NewWalletUseCase(&testhelpers.WalletRepositoryStub{}, accounts)
	ctx := context.Background()

	if err := uc.Credit(ctx, 1, admin.ID, decimal.NewFromInt(10), "", ""); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected admin wallets to be unknown, got %v", err)
	}
	if err := uc.Credit(ctx, 1, admin.ID, decimal.NewFromInt(-10), "", ""); !errors.Is(err, domainErrors.ErrInvalidAmount) {
		t.Fatalf("expected invalid amount, got %v", err)
	}
	if _, err := uc.Summary(ctx, 404); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
