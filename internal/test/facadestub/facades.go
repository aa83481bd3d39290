// Package facadestub holds facade doubles for the HTTP layer tests.
package facadestub

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/orderdesk/internal/domain/model"
	testhelpers "github.com/polkiloo/orderdesk/internal/test"
	"github.com/polkiloo/orderdesk/internal/usecase"
)

// AuthFacadeStub simulates authentication facade interactions.
type AuthFacadeStub struct {
	RegisterFn    func(ctx context.Context, reg usecase.Registration) (string, error)
	CreateAdminFn func(ctx context.Context, reg usecase.Registration) (*model.Account, error)
	LoginFn       func(ctx context.Context, role model.Role, login, password string) (string, error)
	ParseFn       func(token string) (model.Session, error)
}

func (s AuthFacadeStub) RegisterCustomer(ctx context.Context, reg usecase.Registration) (string, error) {
	if s.RegisterFn != nil {
		return s.RegisterFn(ctx, reg)
	}
	return "token", nil
}

func (s AuthFacadeStub) CreateAdmin(ctx context.Context, reg usecase.Registration) (*model.Account, error) {
	if s.CreateAdminFn != nil {
		return s.CreateAdminFn(ctx, reg)
	}
	return &model.Account{ID: 1, Login: reg.Login, Role: model.RoleAdmin}, nil
}

func (s AuthFacadeStub) Login(ctx context.Context, role model.Role, login, password string) (string, error) {
	if s.LoginFn != nil {
		return s.LoginFn(ctx, role, login, password)
	}
	return "token", nil
}

// ParseToken parses "admin-N" and "customer-N" tokens unless overridden.
func (s AuthFacadeStub) ParseToken(token string) (model.Session, error) {
	if s.ParseFn != nil {
		return s.ParseFn(token)
	}
	return testhelpers.StrategyStub{}.ParseToken(token)
}

// OrderFacadeStub provides controllable behaviour for order endpoints.
type OrderFacadeStub struct {
	ViewFn         func(ctx context.Context, orderID, adminID int64) (*model.OrderView, error)
	OrdersFn       func(ctx context.Context, status model.OrderStatus, limit int) ([]model.Order, error)
	CustomerFn     func(ctx context.Context, customerID int64) ([]model.Order, error)
	PlaceFn        func(ctx context.Context, req usecase.NewOrder) (*model.Order, error)
	StagesFn       func(ctx context.Context, key model.StageKey) ([]model.OrderStatus, error)
	Methods        []string
	UpdateStatusFn func(ctx context.Context, req usecase.StatusUpdate) (*model.Order, error)
	QuantitiesFn   func(ctx context.Context, orderID, adminID int64, edits map[int64]int) (*model.Order, error)
	SendConfirmFn  func(ctx context.Context, orderID, adminID int64, edits map[int64]int) (*model.Order, error)
	ConfirmFn      func(ctx context.Context, token string) (*model.Order, error)
	ReceiverFn     func(ctx context.Context, orderID int64, receiver model.ReceiverDetails) (*model.Order, error)
	CancelFn       func(ctx context.Context, orderID, adminID int64, reason string) (*model.Order, error)
	SendOTPFn      func(ctx context.Context, orderID int64) error
	VerifyOTPFn    func(ctx context.Context, orderID int64, code string) error
}

func (s OrderFacadeStub) OrderView(ctx context.Context, orderID, adminID int64) (*model.OrderView, error) {
	if s.ViewFn != nil {
		return s.ViewFn(ctx, orderID, adminID)
	}
	return &model.OrderView{Order: &model.Order{ID: orderID, Status: model.OrderStatusRequested}}, nil
}

func (s OrderFacadeStub) Orders(ctx context.Context, status model.OrderStatus, limit int) ([]model.Order, error) {
	if s.OrdersFn != nil {
		return s.OrdersFn(ctx, status, limit)
	}
	return nil, nil
}

func (s OrderFacadeStub) CustomerOrders(ctx context.Context, customerID int64) ([]model.Order, error) {
	if s.CustomerFn != nil {
		return s.CustomerFn(ctx, customerID)
	}
	return nil, nil
}

func (s OrderFacadeStub) PlaceOrder(ctx context.Context, req usecase.NewOrder) (*model.Order, error) {
	if s.PlaceFn != nil {
		return s.PlaceFn(ctx, req)
	}
	return &model.Order{ID: 1, CustomerID: req.CustomerID, Status: model.OrderStatusRequested}, nil
}

func (s OrderFacadeStub) Stages(ctx context.Context, key model.StageKey) ([]model.OrderStatus, error) {
	if s.StagesFn != nil {
		return s.StagesFn(ctx, key)
	}
	return model.DefaultStages, nil
}

func (s OrderFacadeStub) PaymentMethods() []string {
	return s.Methods
}

func (s OrderFacadeStub) UpdateStatus(ctx context.Context, req usecase.StatusUpdate) (*model.Order, error) {
	if s.UpdateStatusFn != nil {
		return s.UpdateStatusFn(ctx, req)
	}
	return &model.Order{ID: req.OrderID, Status: req.Status}, nil
}

func (s OrderFacadeStub) UpdateQuantities(ctx context.Context, orderID, adminID int64, edits map[int64]int) (*model.Order, error) {
	if s.QuantitiesFn != nil {
		return s.QuantitiesFn(ctx, orderID, adminID, edits)
	}
	return &model.Order{ID: orderID, Status: model.OrderStatusRequested, QuantitiesModified: true}, nil
}

func (s OrderFacadeStub) SendModificationConfirmation(ctx context.Context, orderID, adminID int64, edits map[int64]int) (*model.Order, error) {
	if s.SendConfirmFn != nil {
		return s.SendConfirmFn(ctx, orderID, adminID, edits)
	}
	return &model.Order{ID: orderID, Status: model.OrderStatusRequested, ConfirmationToken: "tok"}, nil
}

func (s OrderFacadeStub) ConfirmModification(ctx context.Context, token string) (*model.Order, error) {
	if s.ConfirmFn != nil {
		return s.ConfirmFn(ctx, token)
	}
	return &model.Order{ID: 1, IsConfirmedByCustomer: true}, nil
}

func (s OrderFacadeStub) UpdateReceiver(ctx context.Context, orderID int64, receiver model.ReceiverDetails) (*model.Order, error) {
	if s.ReceiverFn != nil {
		return s.ReceiverFn(ctx, orderID, receiver)
	}
	return &model.Order{ID: orderID, Receiver: receiver}, nil
}

func (s OrderFacadeStub) CancelOrder(ctx context.Context, orderID, adminID int64, reason string) (*model.Order, error) {
	if s.CancelFn != nil {
		return s.CancelFn(ctx, orderID, adminID, reason)
	}
	return &model.Order{ID: orderID, Status: model.OrderStatusCancelled}, nil
}

func (s OrderFacadeStub) SendDeliveryOTP(ctx context.Context, orderID int64) error {
	if s.SendOTPFn != nil {
		return s.SendOTPFn(ctx, orderID)
	}
	return nil
}

func (s OrderFacadeStub) VerifyDeliveryOTP(ctx context.Context, orderID int64, code string) error {
	if s.VerifyOTPFn != nil {
		return s.VerifyOTPFn(ctx, orderID, code)
	}
	return nil
}

// PaymentFacadeStub simulates the payment state machine.
type PaymentFacadeStub struct {
	CreateFn     func(ctx context.Context, req usecase.PaymentRequest) (*model.Payment, error)
	UpdateFn     func(ctx context.Context, req usecase.PaymentUpdate) (*model.Payment, error)
	SendOTPFn    func(ctx context.Context, paymentID int64) error
	VerifyOTPFn  func(ctx context.Context, paymentID int64, code string) (*model.Payment, error)
	TransitionFn func(ctx context.Context, to model.PaymentStatus, paymentID, adminID int64) (*model.Payment, error)
	RejectFn     func(ctx context.Context, paymentID, adminID int64, reason string) (*model.Payment, error)
}

func (s PaymentFacadeStub) CreatePayment(ctx context.Context, req usecase.PaymentRequest) (*model.Payment, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, req)
	}
	return &model.Payment{ID: 1, OrderID: req.OrderID, Status: model.PaymentStatusRequested, Amount: req.Amount, Currency: req.Currency}, nil
}

func (s PaymentFacadeStub) UpdatePayment(ctx context.Context, req usecase.PaymentUpdate) (*model.Payment, error) {
	if s.UpdateFn != nil {
		return s.UpdateFn(ctx, req)
	}
	return &model.Payment{ID: req.PaymentID, Status: model.PaymentStatusRequested}, nil
}

func (s PaymentFacadeStub) SendPaymentOTP(ctx context.Context, paymentID int64) error {
	if s.SendOTPFn != nil {
		return s.SendOTPFn(ctx, paymentID)
	}
	return nil
}

func (s PaymentFacadeStub) VerifyPaymentOTP(ctx context.Context, paymentID int64, code string) (*model.Payment, error) {
	if s.VerifyOTPFn != nil {
		return s.VerifyOTPFn(ctx, paymentID, code)
	}
	return &model.Payment{ID: paymentID, Status: model.PaymentStatusRequested, OTPVerified: true}, nil
}

func (s PaymentFacadeStub) VerifyPayment(ctx context.Context, paymentID, adminID int64) (*model.Payment, error) {
	return s.transition(ctx, model.PaymentStatusVerify, paymentID, adminID)
}

func (s PaymentFacadeStub) ApprovePayment(ctx context.Context, paymentID, adminID int64) (*model.Payment, error) {
	return s.transition(ctx, model.PaymentStatusApproved, paymentID, adminID)
}

func (s PaymentFacadeStub) MarkPaid(ctx context.Context, paymentID, adminID int64) (*model.Payment, error) {
	return s.transition(ctx, model.PaymentStatusPaid, paymentID, adminID)
}

func (s PaymentFacadeStub) RejectPayment(ctx context.Context, paymentID, adminID int64, reason string) (*model.Payment, error) {
	if s.RejectFn != nil {
		return s.RejectFn(ctx, paymentID, adminID, reason)
	}
	return &model.Payment{ID: paymentID, Status: model.PaymentStatusRejected}, nil
}

func (s PaymentFacadeStub) transition(ctx context.Context, to model.PaymentStatus, paymentID, adminID int64) (*model.Payment, error) {
	if s.TransitionFn != nil {
		return s.TransitionFn(ctx, to, paymentID, adminID)
	}
	return &model.Payment{ID: paymentID, Status: to}, nil
}

// NegotiationFacadeStub simulates negotiation threads.
type NegotiationFacadeStub struct {
	OpenFn    func(ctx context.Context, session model.Session, req usecase.OpenNegotiation) (*model.Negotiation, error)
	ListFn    func(ctx context.Context, session model.Session, status model.NegotiationStatus) ([]model.Negotiation, error)
	RespondFn func(ctx context.Context, session model.Session, id int64, action model.NegotiationAction, counter *model.Offer) (*model.Negotiation, error)
	PlaceFn   func(ctx context.Context, req usecase.PlaceFromNegotiation) (*model.Negotiation, *model.Order, error)
	ConfirmFn func(ctx context.Context, token string) (*model.Negotiation, *model.Order, error)
}

func (s NegotiationFacadeStub) OpenNegotiation(ctx context.Context, session model.Session, req usecase.OpenNegotiation) (*model.Negotiation, error) {
	if s.OpenFn != nil {
		return s.OpenFn(ctx, session, req)
	}
	return &model.Negotiation{ID: 1, CustomerID: session.AccountID, ProductID: req.ProductID, Status: model.NegotiationStatusOpen, OfferPrice: req.Offer.Price, Quantity: req.Offer.Quantity, FromUserType: model.UserTypeOf(session.Role), Round: 1}, nil
}

func (s NegotiationFacadeStub) Negotiations(ctx context.Context, session model.Session, status model.NegotiationStatus) ([]model.Negotiation, error) {
	if s.ListFn != nil {
		return s.ListFn(ctx, session, status)
	}
	return nil, nil
}

func (s NegotiationFacadeStub) RespondNegotiation(ctx context.Context, session model.Session, id int64, action model.NegotiationAction, counter *model.Offer) (*model.Negotiation, error) {
	if s.RespondFn != nil {
		return s.RespondFn(ctx, session, id, action, counter)
	}
	return &model.Negotiation{ID: id, Status: model.NegotiationStatusAccepted}, nil
}

func (s NegotiationFacadeStub) PlaceNegotiatedOrder(ctx context.Context, req usecase.PlaceFromNegotiation) (*model.Negotiation, *model.Order, error) {
	if s.PlaceFn != nil {
		return s.PlaceFn(ctx, req)
	}
	orderID := int64(10)
	return &model.Negotiation{ID: req.NegotiationID, Status: model.NegotiationStatusAccepted, OrderID: &orderID}, &model.Order{ID: orderID}, nil
}

func (s NegotiationFacadeStub) ConfirmNegotiatedOrder(ctx context.Context, token string) (*model.Negotiation, *model.Order, error) {
	if s.ConfirmFn != nil {
		return s.ConfirmFn(ctx, token)
	}
	orderID := int64(10)
	return &model.Negotiation{ID: 1, Status: model.NegotiationStatusAccepted, OrderID: &orderID}, &model.Order{ID: orderID}, nil
}

// ProductFacadeStub simulates versioned product mutations.
type ProductFacadeStub struct {
	CreateFn  func(ctx context.Context, adminID int64, in usecase.ProductInput, reason string) (*model.Product, error)
	UpdateFn  func(ctx context.Context, adminID, productID int64, in usecase.ProductInput, reason string) (*model.Product, error)
	HistoryFn func(ctx context.Context, productID int64) ([]model.ProductVersion, error)
	VersionFn func(ctx context.Context, productID int64, version int) (*model.ProductVersion, error)
	RestoreFn func(ctx context.Context, adminID, productID int64, version int, reason string) (*model.Product, error)
}

func (s ProductFacadeStub) CreateProduct(ctx context.Context, adminID int64, in usecase.ProductInput, reason string) (*model.Product, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, adminID, in, reason)
	}
	return &model.Product{ID: 1, Name: in.Name, Price: in.Price, Currency: in.Currency, MOQ: in.MOQ, Version: 1}, nil
}

func (s ProductFacadeStub) UpdateProduct(ctx context.Context, adminID, productID int64, in usecase.ProductInput, reason string) (*model.Product, error) {
	if s.UpdateFn != nil {
		return s.UpdateFn(ctx, adminID, productID, in, reason)
	}
	return &model.Product{ID: productID, Name: in.Name, Version: 2}, nil
}

func (s ProductFacadeStub) ProductHistory(ctx context.Context, productID int64) ([]model.ProductVersion, error) {
	if s.HistoryFn != nil {
		return s.HistoryFn(ctx, productID)
	}
	return nil, nil
}

func (s ProductFacadeStub) ProductVersion(ctx context.Context, productID int64, version int) (*model.ProductVersion, error) {
	if s.VersionFn != nil {
		return s.VersionFn(ctx, productID, version)
	}
	return &model.ProductVersion{ProductID: productID, Version: version, ChangeType: model.ChangeTypeCreate}, nil
}

func (s ProductFacadeStub) RestoreProduct(ctx context.Context, adminID, productID int64, version int, reason string) (*model.Product, error) {
	if s.RestoreFn != nil {
		return s.RestoreFn(ctx, adminID, productID, version, reason)
	}
	return &model.Product{ID: productID, Version: version + 1}, nil
}

// WalletFacadeStub simulates wallet ledger operations.
type WalletFacadeStub struct {
	SummaryFn func(ctx context.Context, customerID int64) (*model.WalletSummary, error)
	MoveFn    func(ctx context.Context, kind model.EntryKind, adminID, customerID int64, amount decimal.Decimal) error
	LedgerFn  func(ctx context.Context, customerID int64) ([]model.WalletEntry, error)
}

func (s WalletFacadeStub) WalletSummary(ctx context.Context, customerID int64) (*model.WalletSummary, error) {
	if s.SummaryFn != nil {
		return s.SummaryFn(ctx, customerID)
	}
	return &model.WalletSummary{Current: decimal.Zero, Debited: decimal.Zero}, nil
}

func (s WalletFacadeStub) CreditWallet(ctx context.Context, adminID, customerID int64, amount decimal.Decimal, reference, reason string) error {
	if s.MoveFn != nil {
		return s.MoveFn(ctx, model.EntryKindCredit, adminID, customerID, amount)
	}
	return nil
}

func (s WalletFacadeStub) DebitWallet(ctx context.Context, adminID, customerID int64, amount decimal.Decimal, reference, reason string) error {
	if s.MoveFn != nil {
		return s.MoveFn(ctx, model.EntryKindDebit, adminID, customerID, amount)
	}
	return nil
}

func (s WalletFacadeStub) WalletLedger(ctx context.Context, customerID int64) ([]model.WalletEntry, error) {
	if s.LedgerFn != nil {
		return s.LedgerFn(ctx, customerID)
	}
	return nil, nil
}

// OrderDeskFacadeStub aggregates facade dependencies for HTTP layer tests.
type OrderDeskFacadeStub struct {
	AuthFacadeStub
	OrderFacadeStub
	PaymentFacadeStub
	NegotiationFacadeStub
	ProductFacadeStub
	WalletFacadeStub
}
