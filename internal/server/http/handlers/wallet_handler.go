package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/polkiloo/orderdesk/internal/server/http/dto"
)

// WalletHandler exposes the customer wallet ledger to admins.
type WalletHandler struct {
	facade WalletFacade
}

// NewWalletHandler constructs WalletHandler.
func NewWalletHandler(facade WalletFacade) *WalletHandler {
	return &WalletHandler{facade: facade}
}

// Summary handles POST /api/admin/wallet/summary.
func (h *WalletHandler) Summary(c *gin.Context) {
	var req dto.WalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "customerId is required")
		return
	}

	summary, err := h.facade.WalletSummary(c.Request.Context(), req.CustomerID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, dto.WalletSummaryResponse{Current: summary.Current, Debited: summary.Debited})
}

// Credit handles POST /api/admin/wallet/credit.
func (h *WalletHandler) Credit(c *gin.Context) {
	h.move(c, h.facade.CreditWallet)
}

// Debit handles POST /api/admin/wallet/debit.
func (h *WalletHandler) Debit(c *gin.Context) {
	h.move(c, h.facade.DebitWallet)
}

func (h *WalletHandler) move(c *gin.Context, apply func(ctx context.Context, adminID, customerID int64, amount decimal.Decimal, reference, reason string) error) {
	var req dto.WalletMoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "customerId is required")
		return
	}

	if err := apply(c.Request.Context(), CurrentSession(c).AccountID, req.CustomerID, req.Amount, req.Reference, req.Reason); err != nil {
		fail(c, err)
		return
	}
	respond(c, nil)
}

// Ledger handles POST /api/admin/wallet/ledger.
func (h *WalletHandler) Ledger(c *gin.Context) {
	var req dto.WalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "customerId is required")
		return
	}

	entries, err := h.facade.WalletLedger(c.Request.Context(), req.CustomerID)
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]dto.WalletEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.WalletEntryResponse{
			ID:        e.ID,
			Kind:      string(e.Kind),
			Amount:    e.Amount,
			Reference: e.Reference,
			Reason:    e.Reason,
			AdminID:   e.AdminID,
			CreatedAt: e.CreatedAt,
		})
	}
	respond(c, out)
}
