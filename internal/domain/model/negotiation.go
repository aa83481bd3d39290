package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// NegotiationStatus describes the offer thread state.
type NegotiationStatus string

const (
	NegotiationStatusOpen     NegotiationStatus = "negotiation"
	NegotiationStatusAccepted NegotiationStatus = "accepted"
	NegotiationStatusRejected NegotiationStatus = "rejected"
)

// UserType names the side that sent an offer.
type UserType string

const (
	UserTypeCustomer UserType = "Customer"
	UserTypeAdmin    UserType = "Admin"
)

// UserTypeOf maps a session role to its negotiating side.
func UserTypeOf(role Role) UserType {
	if role == RoleAdmin {
		return UserTypeAdmin
	}
	return UserTypeCustomer
}

// Negotiation is a price/quantity thread between a customer and admins over one product.
type Negotiation struct {
	ID                    int64
	CustomerID            int64
	ProductID             int64
	Status                NegotiationStatus
	OfferPrice            decimal.Decimal
	PreviousOfferPrice    decimal.NullDecimal
	Quantity              int
	PreviousQuantity      *int
	Currency              string
	FromUserType          UserType
	Round                 int
	OrderID               *int64
	CurrentLocation       string
	DeliveryLocation      string
	ConfirmationToken     string
	ConfirmationExpiresAt *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// IsOpen reports whether offers may still be exchanged.
func (n *Negotiation) IsOpen() bool {
	return n.Status == NegotiationStatusOpen
}

// AwaitingSide returns the side expected to act next.
func (n *Negotiation) AwaitingSide() UserType {
	if n.FromUserType == UserTypeAdmin {
		return UserTypeCustomer
	}
	return UserTypeAdmin
}

// NegotiationAction is a response to the last offer.
type NegotiationAction string

const (
	NegotiationAccept  NegotiationAction = "accept"
	NegotiationCounter NegotiationAction = "counter"
	NegotiationReject  NegotiationAction = "reject"
)

// Offer is an opening or counter offer.
type Offer struct {
	Price    decimal.Decimal
	Quantity int
}
