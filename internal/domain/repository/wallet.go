package repository

import (
	"context"

	"github.com/polkiloo/orderdesk/internal/domain/model"
)

// WalletRepository manages customer wallet ledger operations.
type WalletRepository interface {
	GetSummary(ctx context.Context, customerID int64) (*model.WalletSummary, error)
	Credit(ctx context.Context, entry model.WalletEntry, events ...model.Event) error
	Debit(ctx context.Context, entry model.WalletEntry, events ...model.Event) error
	ListEntries(ctx context.Context, customerID int64) ([]model.WalletEntry, error)
}
