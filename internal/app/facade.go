package app

import (
	"context"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/polkiloo/orderdesk/internal/domain/model"
	"github.com/polkiloo/orderdesk/internal/usecase"
)

// OrderDeskFacade exposes the use cases to the transport layer.
type OrderDeskFacade struct {
	auth         *usecase.AuthUseCase
	orders       *usecase.OrderUseCase
	payments     *usecase.PaymentUseCase
	negotiations *usecase.NegotiationUseCase
	products     *usecase.ProductUseCase
	wallets      *usecase.WalletUseCase
}

func NewOrderDeskFacade(
	auth *usecase.AuthUseCase,
	orders *usecase.OrderUseCase,
	payments *usecase.PaymentUseCase,
	negotiations *usecase.NegotiationUseCase,
	products *usecase.ProductUseCase,
	wallets *usecase.WalletUseCase,
) *OrderDeskFacade {
	return &OrderDeskFacade{
		auth:         auth,
		orders:       orders,
		payments:     payments,
		negotiations: negotiations,
		products:     products,
		wallets:      wallets,
	}
}

func (f *OrderDeskFacade) RegisterCustomer(ctx context.Context, reg usecase.Registration) (string, error) {
	_, token, err := f.auth.RegisterCustomer(ctx, reg)
	return token, err
}

func (f *OrderDeskFacade) CreateAdmin(ctx context.Context, reg usecase.Registration) (*model.Account, error) {
	return f.auth.CreateAdmin(ctx, reg)
}

func (f *OrderDeskFacade) Login(ctx context.Context, role model.Role, login, password string) (string, error) {
	_, token, err := f.auth.Authenticate(ctx, role, login, password)
	return token, err
}

func (f *OrderDeskFacade) ParseToken(token string) (model.Session, error) {
	return f.auth.ParseToken(token)
}

// EnsureAdmin seeds the bootstrap admin account.
func (f *OrderDeskFacade) EnsureAdmin(ctx context.Context, login, password string) error {
	return f.auth.EnsureAdmin(ctx, login, password)
}

// OrderView loads the order and then fetches its next statuses, payments and history concurrently.
func (f *OrderDeskFacade) OrderView(ctx context.Context, orderID, adminID int64) (*model.OrderView, error) {
	order, err := f.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	view := &model.OrderView{Order: order}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		next, err := f.orders.NextStatuses(gctx, order, adminID)
		view.NextStatuses = next
		return err
	})
	g.Go(func() error {
		payments, err := f.payments.ListByOrder(gctx, orderID)
		view.Payments = payments
		return err
	})
	g.Go(func() error {
		history, err := f.orders.History(gctx, orderID)
		view.History = history
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return view, nil
}

func (f *OrderDeskFacade) Orders(ctx context.Context, status model.OrderStatus, limit int) ([]model.Order, error) {
	return f.orders.List(ctx, status, limit)
}

func (f *OrderDeskFacade) CustomerOrders(ctx context.Context, customerID int64) ([]model.Order, error) {
	return f.orders.ListByCustomer(ctx, customerID)
}

func (f *OrderDeskFacade) PlaceOrder(ctx context.Context, req usecase.NewOrder) (*model.Order, error) {
	return f.orders.Place(ctx, req)
}

func (f *OrderDeskFacade) Stages(ctx context.Context, key model.StageKey) ([]model.OrderStatus, error) {
	return f.orders.Stages(ctx, key)
}

func (f *OrderDeskFacade) PaymentMethods() []string {
	return f.orders.PaymentMethods()
}

func (f *OrderDeskFacade) UpdateStatus(ctx context.Context, req usecase.StatusUpdate) (*model.Order, error) {
	return f.orders.UpdateStatus(ctx, req)
}

func (f *OrderDeskFacade) UpdateQuantities(ctx context.Context, orderID, adminID int64, edits map[int64]int) (*model.Order, error) {
	return f.orders.UpdateQuantities(ctx, orderID, adminID, edits)
}

func (f *OrderDeskFacade) SendModificationConfirmation(ctx context.Context, orderID, adminID int64, edits map[int64]int) (*model.Order, error) {
	return f.orders.SendModificationConfirmation(ctx, orderID, adminID, edits)
}

func (f *OrderDeskFacade) ConfirmModification(ctx context.Context, token string) (*model.Order, error) {
	return f.orders.ConfirmModification(ctx, token)
}

func (f *OrderDeskFacade) UpdateReceiver(ctx context.Context, orderID int64, receiver model.ReceiverDetails) (*model.Order, error) {
	return f.orders.UpdateReceiver(ctx, orderID, receiver)
}

func (f *OrderDeskFacade) CancelOrder(ctx context.Context, orderID, adminID int64, reason string) (*model.Order, error) {
	return f.orders.Cancel(ctx, orderID, adminID, reason)
}

func (f *OrderDeskFacade) SendDeliveryOTP(ctx context.Context, orderID int64) error {
	return f.orders.SendDeliveryOTP(ctx, orderID)
}

func (f *OrderDeskFacade) VerifyDeliveryOTP(ctx context.Context, orderID int64, code string) error {
	return f.orders.VerifyDeliveryOTP(ctx, orderID, code)
}

func (f *OrderDeskFacade) CreatePayment(ctx context.Context, req usecase.PaymentRequest) (*model.Payment, error) {
	return f.payments.Create(ctx, req)
}

func (f *OrderDeskFacade) UpdatePayment(ctx context.Context, req usecase.PaymentUpdate) (*model.Payment, error) {
	return f.payments.Update(ctx, req)
}

func (f *OrderDeskFacade) SendPaymentOTP(ctx context.Context, paymentID int64) error {
	return f.payments.SendOTP(ctx, paymentID)
}

func (f *OrderDeskFacade) VerifyPaymentOTP(ctx context.Context, paymentID int64, code string) (*model.Payment, error) {
	return f.payments.VerifyOTP(ctx, paymentID, code)
}

func (f *OrderDeskFacade) VerifyPayment(ctx context.Context, paymentID, adminID int64) (*model.Payment, error) {
	return f.payments.Verify(ctx, paymentID, adminID)
}

func (f *OrderDeskFacade) ApprovePayment(ctx context.Context, paymentID, adminID int64) (*model.Payment, error) {
	return f.payments.Approve(ctx, paymentID, adminID)
}

func (f *OrderDeskFacade) RejectPayment(ctx context.Context, paymentID, adminID int64, reason string) (*model.Payment, error) {
	return f.payments.Reject(ctx, paymentID, adminID, reason)
}

func (f *OrderDeskFacade) MarkPaid(ctx context.Context, paymentID, adminID int64) (*model.Payment, error) {
	return f.payments.MarkPaid(ctx, paymentID, adminID)
}

func (f *OrderDeskFacade) OpenNegotiation(ctx context.Context, session model.Session, req usecase.OpenNegotiation) (*model.Negotiation, error) {
	return f.negotiations.Open(ctx, session, req)
}

func (f *OrderDeskFacade) Negotiations(ctx context.Context, session model.Session, status model.NegotiationStatus) ([]model.Negotiation, error) {
	return f.negotiations.List(ctx, session, status)
}

func (f *OrderDeskFacade) RespondNegotiation(ctx context.Context, session model.Session, id int64, action model.NegotiationAction, counter *model.Offer) (*model.Negotiation, error) {
	return f.negotiations.Respond(ctx, session, id, action, counter)
}

func (f *OrderDeskFacade) PlaceNegotiatedOrder(ctx context.Context, req usecase.PlaceFromNegotiation) (*model.Negotiation, *model.Order, error) {
	return f.negotiations.PlaceOrder(ctx, req)
}

func (f *OrderDeskFacade) ConfirmNegotiatedOrder(ctx context.Context, token string) (*model.Negotiation, *model.Order, error) {
	return f.negotiations.ConfirmOrder(ctx, token)
}

func (f *OrderDeskFacade) CreateProduct(ctx context.Context, adminID int64, in usecase.ProductInput, reason string) (*model.Product, error) {
	return f.products.Create(ctx, adminID, in, reason)
}

func (f *OrderDeskFacade) UpdateProduct(ctx context.Context, adminID, productID int64, in usecase.ProductInput, reason string) (*model.Product, error) {
	return f.products.Update(ctx, adminID, productID, in, reason)
}

func (f *OrderDeskFacade) ProductHistory(ctx context.Context, productID int64) ([]model.ProductVersion, error) {
	return f.products.History(ctx, productID)
}

func (f *OrderDeskFacade) ProductVersion(ctx context.Context, productID int64, version int) (*model.ProductVersion, error) {
	return f.products.GetVersion(ctx, productID, version)
}

func (f *OrderDeskFacade) RestoreProduct(ctx context.Context, adminID, productID int64, version int, reason string) (*model.Product, error) {
	return f.products.Restore(ctx, adminID, productID, version, reason)
}

func (f *OrderDeskFacade) WalletSummary(ctx context.Context, customerID int64) (*model.WalletSummary, error) {
	return f.wallets.Summary(ctx, customerID)
}

func (f *OrderDeskFacade) CreditWallet(ctx context.Context, adminID, customerID int64, amount decimal.Decimal, reference, reason string) error {
	return f.wallets.Credit(ctx, adminID, customerID, amount, reference, reason)
}

func (f *OrderDeskFacade) DebitWallet(ctx context.Context, adminID, customerID int64, amount decimal.Decimal, reference, reason string) error {
	return f.wallets.Debit(ctx, adminID, customerID, amount, reference, reason)
}

func (f *OrderDeskFacade) WalletLedger(ctx context.Context, customerID int64) ([]model.WalletEntry, error) {
	return f.wallets.Ledger(ctx, customerID)
}
