package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// WalletSummary aggregates a customer's current and debited wallet funds.
type WalletSummary struct {
	Current decimal.Decimal
	Debited decimal.Decimal
}

// EntryKind tells credits from debits.
type EntryKind string

const (
	EntryKindCredit EntryKind = "credit"
	EntryKindDebit  EntryKind = "debit"
)

// WalletEntry is a single ledger movement.
type WalletEntry struct {
	ID         int64
	CustomerID int64
	Kind       EntryKind
	Amount     decimal.Decimal
	Reference  string
	Reason     string
	AdminID    int64
	CreatedAt  time.Time
}
