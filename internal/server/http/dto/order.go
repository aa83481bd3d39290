package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderIDRequest addresses a single order.
type OrderIDRequest struct {
	OrderID int64 `json:"orderId" binding:"required"`
}

// OrderListRequest filters orders by status. An empty status lists every order.
type OrderListRequest struct {
	Status string `json:"status"`
	Limit  int    `json:"limit"`
}

// StagesRequest identifies the route whose stage list is requested.
type StagesRequest struct {
	CurrentLocation  string `json:"currentLocation"`
	DeliveryLocation string `json:"deliveryLocation"`
	Currency         string `json:"currency"`
}

// OrderLineRequest is one line of a new order.
type OrderLineRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// ReceiverRequest carries receiver details. OrderID is ignored on order creation.
type ReceiverRequest struct {
	OrderID int64  `json:"orderId"`
	Name    string `json:"name"`
	Mobile  string `json:"mobile"`
	Address string `json:"address"`
}

// CreateOrderRequest is a customer's cart submission.
type CreateOrderRequest struct {
	CurrentLocation  string             `json:"currentLocation"`
	DeliveryLocation string             `json:"deliveryLocation"`
	Currency         string             `json:"currency"`
	IsGroupedOrder   bool               `json:"isGroupedOrder"`
	Items            []OrderLineRequest `json:"items"`
	Receiver         ReceiverRequest    `json:"receiver"`
}

// UpdateStatusRequest is a strict status write.
type UpdateStatusRequest struct {
	OrderID       int64            `json:"orderId" binding:"required"`
	Status        string           `json:"status" binding:"required"`
	PaymentMethod string           `json:"paymentMethod"`
	OtherCharges  *decimal.Decimal `json:"otherCharges"`
	Discount      *decimal.Decimal `json:"discount"`
	Message       string           `json:"message"`
}

// QuantityEdit sets a new quantity on a cart item.
type QuantityEdit struct {
	ItemID   int64 `json:"itemId"`
	Quantity int   `json:"quantity"`
}

// UpdateQuantitiesRequest edits cart quantities of a requested order.
type UpdateQuantitiesRequest struct {
	OrderID int64          `json:"orderId" binding:"required"`
	Items   []QuantityEdit `json:"items"`
}

// CancelOrderRequest cancels an order with a reason.
type CancelOrderRequest struct {
	OrderID int64  `json:"orderId" binding:"required"`
	Reason  string `json:"reason"`
}

// DeliveryOTPRequest verifies the delivery code of an order.
type DeliveryOTPRequest struct {
	OrderID int64  `json:"orderId" binding:"required"`
	Code    string `json:"code" binding:"required"`
}

// TokenRequest carries a customer confirmation token.
type TokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// CartItemResponse is one order line.
type CartItemResponse struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"productId"`
	SKUFamilyID string          `json:"skuFamilyId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// ReceiverResponse describes who collects the delivery.
type ReceiverResponse struct {
	Name    string `json:"name"`
	Mobile  string `json:"mobile"`
	Address string `json:"address"`
}

// OrderResponse is the API view of an order.
type OrderResponse struct {
	ID                    int64              `json:"id"`
	CustomerID            int64              `json:"customerId"`
	Status                string             `json:"status"`
	CurrentLocation       string             `json:"currentLocation"`
	DeliveryLocation      string             `json:"deliveryLocation"`
	Currency              string             `json:"currency"`
	PaymentMethod         string             `json:"paymentMethod,omitempty"`
	CartItems             []CartItemResponse `json:"cartItems"`
	VerifiedBy            *int64             `json:"verifiedBy,omitempty"`
	ApprovedBy            *int64             `json:"approvedBy,omitempty"`
	OtherCharges          decimal.Decimal    `json:"otherCharges"`
	Discount              decimal.Decimal    `json:"discount"`
	TotalAmount           decimal.Decimal    `json:"totalAmount"`
	IsGroupedOrder        bool               `json:"isGroupedOrder"`
	QuantitiesModified    bool               `json:"quantitiesModified"`
	ConfirmationExpiresAt *time.Time         `json:"confirmationExpiresAt,omitempty"`
	IsConfirmedByCustomer bool               `json:"isConfirmedByCustomer"`
	Receiver              ReceiverResponse   `json:"receiver"`
	DeliveryOTPVerified   bool               `json:"deliveryOtpVerified"`
	NegotiationID         *int64             `json:"negotiationId,omitempty"`
	CreatedAt             time.Time          `json:"createdAt"`
	UpdatedAt             time.Time          `json:"updatedAt"`
}

// StatusChangeResponse is one entry of the order history.
type StatusChangeResponse struct {
	From      string    `json:"from,omitempty"`
	To        string    `json:"to"`
	AdminID   int64     `json:"adminId,omitempty"`
	Message   string    `json:"message,omitempty"`
	ChangedAt time.Time `json:"changedAt"`
}

// OrderViewResponse is the admin order read model.
type OrderViewResponse struct {
	Order        OrderResponse          `json:"order"`
	NextStatuses []string               `json:"nextStatuses"`
	Payments     []PaymentResponse      `json:"payments"`
	History      []StatusChangeResponse `json:"history"`
}
