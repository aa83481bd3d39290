package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// WalletRequest addresses a customer wallet.
type WalletRequest struct {
	CustomerID int64 `json:"customerId" binding:"required"`
}

// WalletMoveRequest credits or debits a customer wallet.
type WalletMoveRequest struct {
	CustomerID int64           `json:"customerId" binding:"required"`
	Amount     decimal.Decimal `json:"amount"`
	Reference  string          `json:"reference"`
	Reason     string          `json:"reason"`
}

// WalletSummaryResponse represents the wallet balance.
type WalletSummaryResponse struct {
	Current decimal.Decimal `json:"current"`
	Debited decimal.Decimal `json:"debited"`
}

// WalletEntryResponse is one ledger movement.
type WalletEntryResponse struct {
	ID        int64           `json:"id"`
	Kind      string          `json:"kind"`
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference,omitempty"`
	Reason    string          `json:"reason,omitempty"`
	AdminID   int64           `json:"adminId"`
	CreatedAt time.Time       `json:"createdAt"`
}
