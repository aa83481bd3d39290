package handlers

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/orderdesk/internal/app"
	"github.com/polkiloo/orderdesk/internal/domain/model"
	"github.com/polkiloo/orderdesk/internal/usecase"
)

// AuthFacade describes authentication capabilities required by handlers.
type AuthFacade interface {
	RegisterCustomer(ctx context.Context, reg usecase.Registration) (string, error)
	CreateAdmin(ctx context.Context, reg usecase.Registration) (*model.Account, error)
	Login(ctx context.Context, role model.Role, login, password string) (string, error)
	ParseToken(token string) (model.Session, error)
}

// OrderFacade encapsulates order operations exposed via HTTP.
type OrderFacade interface {
	OrderView(ctx context.Context, orderID, adminID int64) (*model.OrderView, error)
	Orders(ctx context.Context, status model.OrderStatus, limit int) ([]model.Order, error)
	CustomerOrders(ctx context.Context, customerID int64) ([]model.Order, error)
	PlaceOrder(ctx context.Context, req usecase.NewOrder) (*model.Order, error)
	Stages(ctx context.Context, key model.StageKey) ([]model.OrderStatus, error)
	PaymentMethods() []string
	UpdateStatus(ctx context.Context, req usecase.StatusUpdate) (*model.Order, error)
	UpdateQuantities(ctx context.Context, orderID, adminID int64, edits map[int64]int) (*model.Order, error)
	SendModificationConfirmation(ctx context.Context, orderID, adminID int64, edits map[int64]int) (*model.Order, error)
	ConfirmModification(ctx context.Context, token string) (*model.Order, error)
	UpdateReceiver(ctx context.Context, orderID int64, receiver model.ReceiverDetails) (*model.Order, error)
	CancelOrder(ctx context.Context, orderID, adminID int64, reason string) (*model.Order, error)
	SendDeliveryOTP(ctx context.Context, orderID int64) error
	VerifyDeliveryOTP(ctx context.Context, orderID int64, code string) error
}

// PaymentFacade drives the payment state machine.
type PaymentFacade interface {
	CreatePayment(ctx context.Context, req usecase.PaymentRequest) (*model.Payment, error)
	UpdatePayment(ctx context.Context, req usecase.PaymentUpdate) (*model.Payment, error)
	SendPaymentOTP(ctx context.Context, paymentID int64) error
	VerifyPaymentOTP(ctx context.Context, paymentID int64, code string) (*model.Payment, error)
	VerifyPayment(ctx context.Context, paymentID, adminID int64) (*model.Payment, error)
	ApprovePayment(ctx context.Context, paymentID, adminID int64) (*model.Payment, error)
	RejectPayment(ctx context.Context, paymentID, adminID int64, reason string) (*model.Payment, error)
	MarkPaid(ctx context.Context, paymentID, adminID int64) (*model.Payment, error)
}

// NegotiationFacade covers both sides of a negotiation thread.
type NegotiationFacade interface {
	OpenNegotiation(ctx context.Context, session model.Session, req usecase.OpenNegotiation) (*model.Negotiation, error)
	Negotiations(ctx context.Context, session model.Session, status model.NegotiationStatus) ([]model.Negotiation, error)
	RespondNegotiation(ctx context.Context, session model.Session, id int64, action model.NegotiationAction, counter *model.Offer) (*model.Negotiation, error)
	PlaceNegotiatedOrder(ctx context.Context, req usecase.PlaceFromNegotiation) (*model.Negotiation, *model.Order, error)
	ConfirmNegotiatedOrder(ctx context.Context, token string) (*model.Negotiation, *model.Order, error)
}

// ProductFacade mutates products and reads their version log.
type ProductFacade interface {
	CreateProduct(ctx context.Context, adminID int64, in usecase.ProductInput, reason string) (*model.Product, error)
	UpdateProduct(ctx context.Context, adminID, productID int64, in usecase.ProductInput, reason string) (*model.Product, error)
	ProductHistory(ctx context.Context, productID int64) ([]model.ProductVersion, error)
	ProductVersion(ctx context.Context, productID int64, version int) (*model.ProductVersion, error)
	RestoreProduct(ctx context.Context, adminID, productID int64, version int, reason string) (*model.Product, error)
}

// WalletFacade provides wallet ledger operations.
type WalletFacade interface {
	WalletSummary(ctx context.Context, customerID int64) (*model.WalletSummary, error)
	CreditWallet(ctx context.Context, adminID, customerID int64, amount decimal.Decimal, reference, reason string) error
	DebitWallet(ctx context.Context, adminID, customerID int64, amount decimal.Decimal, reference, reason string) error
	WalletLedger(ctx context.Context, customerID int64) ([]model.WalletEntry, error)
}

// OrderDeskFacade aggregates the full set of operations used across handlers.
type OrderDeskFacade interface {
	AuthFacade
	OrderFacade
	PaymentFacade
	NegotiationFacade
	ProductFacade
	WalletFacade
}

var _ OrderDeskFacade = (*app.OrderDeskFacade)(nil)
