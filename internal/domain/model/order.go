package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus describes the order lifecycle stage.
type OrderStatus string

const (
	OrderStatusRequested         OrderStatus = "requested"
	OrderStatusVerify            OrderStatus = "verify"
	OrderStatusApproved          OrderStatus = "approved"
	OrderStatusConfirm           OrderStatus = "confirm"
	OrderStatusWaitingForPayment OrderStatus = "waiting_for_payment"
	OrderStatusPaymentReceived   OrderStatus = "payment_received"
	OrderStatusPacking           OrderStatus = "packing"
	OrderStatusReadyToShip       OrderStatus = "ready_to_ship"
	OrderStatusOnTheWay          OrderStatus = "on_the_way"
	OrderStatusReadyToPick       OrderStatus = "ready_to_pick"
	OrderStatusDelivered         OrderStatus = "delivered"
	OrderStatusRejected          OrderStatus = "rejected"
	OrderStatusCancelled         OrderStatus = "cancelled"
)

// DefaultStages is the full flow used when no stage list is configured for an order route.
var DefaultStages = []OrderStatus{
	OrderStatusRequested,
	OrderStatusVerify,
	OrderStatusApproved,
	OrderStatusConfirm,
	OrderStatusWaitingForPayment,
	OrderStatusPaymentReceived,
	OrderStatusPacking,
	OrderStatusReadyToShip,
	OrderStatusOnTheWay,
	OrderStatusReadyToPick,
	OrderStatusDelivered,
}

// IsTerminal reports whether no further transition is possible.
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderStatusDelivered, OrderStatusRejected, OrderStatusCancelled:
		return true
	}
	return false
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	if s == OrderStatusRejected || s == OrderStatusCancelled {
		return true
	}
	for _, st := range DefaultStages {
		if st == s {
			return true
		}
	}
	return false
}

// StageKey identifies the route an order travels on.
type StageKey struct {
	CurrentLocation  string
	DeliveryLocation string
	Currency         string
}

// CartItem is a single order line.
type CartItem struct {
	ID          int64
	ProductID   int64
	SKUFamilyID string
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// Subtotal returns quantity multiplied by unit price.
func (i CartItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ReceiverDetails describes who collects the delivery.
type ReceiverDetails struct {
	Name    string
	Mobile  string
	Address string
}

// Order is the aggregate the admin desk works on.
type Order struct {
	ID                    int64
	CustomerID            int64
	Status                OrderStatus
	CurrentLocation       string
	DeliveryLocation      string
	Currency              string
	PaymentMethod         string
	CartItems             []CartItem
	VerifiedBy            *int64
	ApprovedBy            *int64
	OtherCharges          decimal.Decimal
	Discount              decimal.Decimal
	TotalAmount           decimal.Decimal
	IsGroupedOrder        bool
	QuantitiesModified    bool
	ConfirmationToken     string
	ConfirmationExpiresAt *time.Time
	IsConfirmedByCustomer bool
	Receiver              ReceiverDetails
	DeliveryOTPVerified   bool
	NegotiationID         *int64
	// Version grows with every write; snapshot writes compare against it.
	Version               int64
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// StageKey returns the route of the order.
func (o *Order) StageKey() StageKey {
	return StageKey{CurrentLocation: o.CurrentLocation, DeliveryLocation: o.DeliveryLocation, Currency: o.Currency}
}

// RecalculateTotal derives TotalAmount from lines, charges and discount.
func (o *Order) RecalculateTotal() {
	total := decimal.Zero
	for _, item := range o.CartItems {
		total = total.Add(item.Subtotal())
	}
	total = total.Add(o.OtherCharges).Sub(o.Discount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	o.TotalAmount = total
}

// AwaitingCustomer reports whether a confirmation token was sent and not yet confirmed.
func (o *Order) AwaitingCustomer() bool {
	return o.ConfirmationToken != "" && !o.IsConfirmedByCustomer
}

// StatusChange is a single entry of the order status history.
type StatusChange struct {
	ID        int64
	OrderID   int64
	From      OrderStatus
	To        OrderStatus
	AdminID   int64
	Message   string
	ChangedAt time.Time
}

// OrderView is the admin read model of a single order.
type OrderView struct {
	Order        *Order
	NextStatuses []OrderStatus
	Payments     []Payment
	History      []StatusChange
}
