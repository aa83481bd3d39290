package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OpenNegotiationRequest starts a thread. CustomerID is only read for admin callers.
type OpenNegotiationRequest struct {
	CustomerID int64           `json:"customerId"`
	ProductID  int64           `json:"productId" binding:"required"`
	OfferPrice decimal.Decimal `json:"offerPrice"`
	Quantity   int             `json:"quantity"`
	Currency   string          `json:"currency"`
}

// RespondNegotiationRequest accepts, rejects or counters the last offer.
type RespondNegotiationRequest struct {
	NegotiationID int64            `json:"negotiationId" binding:"required"`
	Action        string           `json:"action" binding:"required"`
	OfferPrice    *decimal.Decimal `json:"offerPrice"`
	Quantity      int              `json:"quantity"`
}

// NegotiationListRequest filters negotiations by status.
type NegotiationListRequest struct {
	Status string `json:"status"`
}

// PlaceNegotiationOrderRequest converts an accepted negotiation into an order.
type PlaceNegotiationOrderRequest struct {
	NegotiationID       int64  `json:"negotiationId" binding:"required"`
	RequireConfirmation bool   `json:"requireConfirmation"`
	CurrentLocation     string `json:"currentLocation"`
	DeliveryLocation    string `json:"deliveryLocation"`
}

// NegotiationResponse is the API view of a negotiation.
type NegotiationResponse struct {
	ID                    int64            `json:"id"`
	CustomerID            int64            `json:"customerId"`
	ProductID             int64            `json:"productId"`
	Status                string           `json:"status"`
	OfferPrice            decimal.Decimal  `json:"offerPrice"`
	PreviousOfferPrice    *decimal.Decimal `json:"previousOfferPrice,omitempty"`
	Quantity              int              `json:"quantity"`
	PreviousQuantity      *int             `json:"previousQuantity,omitempty"`
	Currency              string           `json:"currency"`
	FromUserType          string           `json:"fromUserType"`
	AwaitingUserType      string           `json:"awaitingUserType,omitempty"`
	Round                 int              `json:"round"`
	OrderID               *int64           `json:"orderId,omitempty"`
	ConfirmationExpiresAt *time.Time       `json:"confirmationExpiresAt,omitempty"`
	CreatedAt             time.Time        `json:"createdAt"`
	UpdatedAt             time.Time        `json:"updatedAt"`
}

// NegotiationOrderResponse is returned when an order is placed from a negotiation.
// Order is absent while the customer confirmation is pending.
type NegotiationOrderResponse struct {
	Negotiation NegotiationResponse `json:"negotiation"`
	Order       *OrderResponse      `json:"order,omitempty"`
}
