package usecase

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/orderdesk/internal/domain/errors"
	"github.com/polkiloo/orderdesk/internal/domain/model"
	"github.com/polkiloo/orderdesk/internal/domain/repository"
)

const aggregateWallet = "wallet"

type walletEvent struct {
	CustomerID int64  `json:"customerId"`
	Kind       string `json:"kind"`
	Amount     string `json:"amount"`
	Reference  string `json:"reference,omitempty"`
	AdminID    int64  `json:"adminId"`
}

// WalletUseCase manages customer wallet balances.
type WalletUseCase struct {
	wallets  repository.WalletRepository
	accounts repository.AccountRepository
}

// NewWalletUseCase constructs WalletUseCase.
func NewWalletUseCase(w repository.WalletRepository, a repository.AccountRepository) *WalletUseCase {
	return &WalletUseCase{wallets: w, accounts: a}
}

// Summary returns the current and debited totals of a customer wallet.
func (u *WalletUseCase) Summary(ctx context.Context, customerID int64) (*model.WalletSummary, error) {
	if err := u.ensureCustomer(ctx, customerID); err != nil {
		return nil, err
	}
	return u.wallets.GetSummary(ctx, customerID)
}

// Credit adds funds to a customer wallet.
func (u *WalletUseCase) Credit(ctx context.Context, adminID, customerID int64, amount decimal.Decimal, reference, reason string) error {
	return u.move(ctx, model.EntryKindCredit, adminID, customerID, amount, reference, reason)
}

// Debit takes funds from a customer wallet; it fails when the balance does not cover amount.
func (u *WalletUseCase) Debit(ctx context.Context, adminID, customerID int64, amount decimal.Decimal, reference, reason string) error {
	return u.move(ctx, model.EntryKindDebit, adminID, customerID, amount, reference, reason)
}

// Ledger returns wallet movements, newest first.
func (u *WalletUseCase) Ledger(ctx context.Context, customerID int64) ([]model.WalletEntry, error) {
	if err := u.ensureCustomer(ctx, customerID); err != nil {
		return nil, err
	}
	return u.wallets.ListEntries(ctx, customerID)
}

func (u *WalletUseCase) move(ctx context.Context, kind model.EntryKind, adminID, customerID int64, amount decimal.Decimal, reference, reason string) error {
	if !amount.IsPositive() {
		return domainErrors.ErrInvalidAmount
	}
	if err := u.ensureCustomer(ctx, customerID); err != nil {
		return err
	}

	entry := model.WalletEntry{
		CustomerID: customerID,
		Kind:       kind,
		Amount:     amount.Round(2),
		Reference:  strings.TrimSpace(reference),
		Reason:     strings.TrimSpace(reason),
		AdminID:    adminID,
	}
	event, err := newEvent(ctx, aggregateWallet, customerID, model.EventWalletMoved, walletEvent{
		CustomerID: customerID,
		Kind:       string(kind),
		Amount:     entry.Amount.StringFixed(2),
		Reference:  entry.Reference,
		AdminID:    adminID,
	})
	if err != nil {
		return err
	}

	if kind == model.EntryKindDebit {
		return u.wallets.Debit(ctx, entry, event)
	}
	return u.wallets.Credit(ctx, entry, event)
}

func (u *WalletUseCase) ensureCustomer(ctx context.Context, customerID int64) error {
	acc, err := u.accounts.GetByID(ctx, customerID)
	if err != nil {
		return err
	}
	if acc.Role != model.RoleCustomer {
		return domainErrors.ErrNotFound
	}
	return nil
}
