package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/orderdesk/internal/domain/errors"
	"github.com/polkiloo/orderdesk/internal/domain/model"
	"github.com/polkiloo/orderdesk/internal/domain/repository"
)

const (
	aggregateOrder = "order"
	otpKindOrder   = "delivery"
)

// StatusUpdate is a strict status write; every field the target status needs must be present.
type StatusUpdate struct {
	OrderID       int64
	Status        model.OrderStatus
	AdminID       int64
	PaymentMethod string
	OtherCharges  *decimal.Decimal
	Discount      *decimal.Decimal
	Message       string
}

// OrderLine is a requested product quantity of a new order.
type OrderLine struct {
	ProductID int64
	Quantity  int
}

// NewOrder describes an order placed by a customer.
type NewOrder struct {
	CustomerID       int64
	CurrentLocation  string
	DeliveryLocation string
	Currency         string
	Grouped          bool
	Lines            []OrderLine
	Receiver         model.ReceiverDetails
}

type orderStatusEvent struct {
	OrderID int64  `json:"orderId"`
	From    string `json:"from"`
	To      string `json:"to"`
	AdminID int64  `json:"adminId,omitempty"`
	Message string `json:"message,omitempty"`
}

type orderModifiedEvent struct {
	OrderID     int64         `json:"orderId"`
	AdminID     int64         `json:"adminId,omitempty"`
	Quantities  map[int64]int `json:"quantities,omitempty"`
	TotalAmount string        `json:"totalAmount"`
	Reason      string        `json:"reason"`
}

type orderPlacedEvent struct {
	CustomerID    int64  `json:"customerId"`
	Status        string `json:"status"`
	TotalAmount   string `json:"totalAmount"`
	Currency      string `json:"currency"`
	NegotiationID *int64 `json:"negotiationId,omitempty"`
}

// OrderUseCase encapsulates the order lifecycle.
type OrderUseCase struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
	accounts repository.AccountRepository
	otp      OTPStore
	mailer   Mailer
	sms      SMSSender
	observer TransitionObserver
	settings Settings
	now      func() time.Time
}

// OrderDeps lists the collaborators of OrderUseCase.
type OrderDeps struct {
	Orders   repository.OrderRepository
	Products repository.ProductRepository
	Accounts repository.AccountRepository
	OTP      OTPStore
	Mailer   Mailer
	SMS      SMSSender
	Observer TransitionObserver
	Settings Settings
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(d OrderDeps) *OrderUseCase {
	return &OrderUseCase{
		orders:   d.Orders,
		products: d.Products,
		accounts: d.Accounts,
		otp:      d.OTP,
		mailer:   d.Mailer,
		sms:      d.SMS,
		observer: d.Observer,
		settings: d.Settings,
		now:      time.Now,
	}
}

// Get returns the order with its cart items.
func (u *OrderUseCase) Get(ctx context.Context, id int64) (*model.Order, error) {
	return u.orders.GetByID(ctx, id)
}

// List returns orders in the given status, newest first.
func (u *OrderUseCase) List(ctx context.Context, status model.OrderStatus, limit int) ([]model.Order, error) {
	if status != "" && !status.Valid() {
		return nil, domainErrors.ErrInvalidTransition
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return u.orders.ListByStatus(ctx, status, limit)
}

// ListByCustomer returns the orders of one customer.
func (u *OrderUseCase) ListByCustomer(ctx context.Context, customerID int64) ([]model.Order, error) {
	return u.orders.ListByCustomer(ctx, customerID)
}

// History returns the status changes of an order, oldest first.
func (u *OrderUseCase) History(ctx context.Context, orderID int64) ([]model.StatusChange, error) {
	return u.orders.History(ctx, orderID)
}

// Stages returns the configured flow for a route, falling back to the full flow.
func (u *OrderUseCase) Stages(ctx context.Context, key model.StageKey) ([]model.OrderStatus, error) {
	stages, err := u.orders.Stages(ctx, key)
	if errors.Is(err, domainErrors.ErrNotFound) || (err == nil && len(stages) == 0) {
		return model.DefaultStages, nil
	}
	if err != nil {
		return nil, err
	}
	return stages, nil
}

// PaymentMethods lists the methods accepted when an order moves to waiting_for_payment.
func (u *OrderUseCase) PaymentMethods() []string {
	out := make([]string, len(u.settings.PaymentMethods))
	copy(out, u.settings.PaymentMethods)
	return out
}

// NextStatuses computes the admissible next statuses of order for adminID.
func (u *OrderUseCase) NextStatuses(ctx context.Context, order *model.Order, adminID int64) ([]model.OrderStatus, error) {
	stages, err := u.Stages(ctx, order.StageKey())
	if err != nil {
		return nil, err
	}
	return AdmissibleNextStatuses(order, stages, adminID, u.settings), nil
}

// Place creates a requested order after validating quantities against product rules.
func (u *OrderUseCase) Place(ctx context.Context, req NewOrder) (*model.Order, error) {
	if len(req.Lines) == 0 || strings.TrimSpace(req.Currency) == "" {
		return nil, domainErrors.ErrInvalidAmount
	}

	ids := make([]int64, 0, len(req.Lines))
	for _, line := range req.Lines {
		if line.Quantity <= 0 {
			return nil, domainErrors.ErrInvalidAmount
		}
		ids = append(ids, line.ProductID)
	}
	products, err := u.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	order := &model.Order{
		CustomerID:       req.CustomerID,
		Status:           model.OrderStatusRequested,
		CurrentLocation:  req.CurrentLocation,
		DeliveryLocation: req.DeliveryLocation,
		Currency:         strings.ToUpper(req.Currency),
		IsGroupedOrder:   req.Grouped,
		Receiver:         req.Receiver,
	}
	lines := make([]QuantityLine, 0, len(req.Lines))
	for _, line := range req.Lines {
		product, ok := products[line.ProductID]
		if !ok {
			return nil, fmt.Errorf("product %d: %w", line.ProductID, domainErrors.ErrNotFound)
		}
		lines = append(lines, QuantityLine{Product: product, Quantity: line.Quantity})
		order.CartItems = append(order.CartItems, model.CartItem{
			ProductID:   product.ID,
			SKUFamilyID: product.SKUFamilyID,
			ProductName: product.Name,
			Quantity:    line.Quantity,
			UnitPrice:   product.Price,
		})
	}
	if violations := ValidateQuantities(lines, req.Grouped); len(violations) > 0 {
		return nil, &domainErrors.ValidationError{Violations: violations}
	}
	order.RecalculateTotal()

	event, err := placedEvent(ctx, order)
	if err != nil {
		return nil, err
	}
	if err := u.orders.Create(ctx, order, event); err != nil {
		return nil, err
	}
	return order, nil
}

// UpdateStatus performs a strict status write guarded by the lifecycle rules.
func (u *OrderUseCase) UpdateStatus(ctx context.Context, req StatusUpdate) (*model.Order, error) {
	order, err := u.orders.GetByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	stages, err := u.Stages(ctx, order.StageKey())
	if err != nil {
		return nil, err
	}
	if err := checkTransition(order, req.Status, stages, req.AdminID, req.PaymentMethod, u.settings); err != nil {
		return nil, err
	}

	if (req.OtherCharges != nil || req.Discount != nil) && !chargesEditable(order.Status, req.Status) {
		return nil, domainErrors.ErrChargesLocked
	}
	if req.OtherCharges != nil {
		if req.OtherCharges.IsNegative() {
			return nil, domainErrors.ErrInvalidAmount
		}
		order.OtherCharges = *req.OtherCharges
	}
	if req.Discount != nil {
		if req.Discount.IsNegative() {
			return nil, domainErrors.ErrInvalidAmount
		}
		order.Discount = *req.Discount
	}

	from := order.Status
	applyTransition(order, req.Status, req.AdminID, req.PaymentMethod)
	order.RecalculateTotal()

	if err := u.commitTransition(ctx, order, from, req.AdminID, req.Message); err != nil {
		return nil, err
	}
	return order, nil
}

// Cancel moves an order that has not yet received payment to cancelled.
func (u *OrderUseCase) Cancel(ctx context.Context, orderID, adminID int64, reason string) (*model.Order, error) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status.IsTerminal() || !beforePaymentReceived(order.Status) {
		return nil, domainErrors.ErrInvalidTransition
	}

	from := order.Status
	order.Status = model.OrderStatusCancelled
	if err := u.commitTransition(ctx, order, from, adminID, reason); err != nil {
		return nil, err
	}
	return order, nil
}

func (u *OrderUseCase) commitTransition(ctx context.Context, order *model.Order, from model.OrderStatus, adminID int64, message string) error {
	change := model.StatusChange{
		OrderID:   order.ID,
		From:      from,
		To:        order.Status,
		AdminID:   adminID,
		Message:   message,
		ChangedAt: u.now(),
	}
	event, err := newEvent(ctx, aggregateOrder, order.ID, model.EventOrderStatusChanged, orderStatusEvent{
		OrderID: order.ID, From: string(from), To: string(order.Status), AdminID: adminID, Message: message,
	})
	if err != nil {
		return err
	}
	if err := u.orders.TransitionStatus(ctx, order, change, event); err != nil {
		return err
	}
	if u.observer != nil {
		u.observer.ObserveTransition(aggregateOrder, string(order.Status))
	}
	return nil
}

// UpdateQuantities applies validated quantity edits keyed by cart item ID.
// The edit invalidates any earlier customer confirmation.
func (u *OrderUseCase) UpdateQuantities(ctx context.Context, orderID, adminID int64, edits map[int64]int) (*model.Order, error) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if len(edits) == 0 {
		return nil, domainErrors.ErrInvalidAmount
	}
	if err := u.applyEdits(ctx, order, edits); err != nil {
		return nil, err
	}

	event, err := newEvent(ctx, aggregateOrder, order.ID, model.EventOrderModified, orderModifiedEvent{
		OrderID: order.ID, AdminID: adminID, Quantities: edits, TotalAmount: order.TotalAmount.StringFixed(2), Reason: "quantities_updated",
	})
	if err != nil {
		return nil, err
	}
	if err := u.orders.SaveQuantities(ctx, order, event); err != nil {
		return nil, err
	}
	return order, nil
}

// SendModificationConfirmation validates the order lines, optionally applying edits first,
// stores a fresh confirmation token and emails the customer a confirmation link.
func (u *OrderUseCase) SendModificationConfirmation(ctx context.Context, orderID, adminID int64, edits map[int64]int) (*model.Order, error) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if len(edits) > 0 {
		if err := u.applyEdits(ctx, order, edits); err != nil {
			return nil, err
		}
	} else {
		if order.Status != model.OrderStatusRequested {
			return nil, domainErrors.ErrQuantitiesLocked
		}
		if err := u.validateLines(ctx, order, nil); err != nil {
			return nil, err
		}
	}

	customer, err := u.accounts.GetByID(ctx, order.CustomerID)
	if err != nil {
		return nil, err
	}

	expires := u.now().Add(u.settings.confirmationTTL())
	order.ConfirmationToken = uuid.NewString()
	order.ConfirmationExpiresAt = &expires
	order.IsConfirmedByCustomer = false

	event, err := newEvent(ctx, aggregateOrder, order.ID, model.EventOrderModified, orderModifiedEvent{
		OrderID: order.ID, AdminID: adminID, Quantities: edits, TotalAmount: order.TotalAmount.StringFixed(2), Reason: "confirmation_sent",
	})
	if err != nil {
		return nil, err
	}
	if len(edits) > 0 {
		err = u.orders.SaveQuantities(ctx, order, event)
	} else {
		err = u.orders.SetConfirmationToken(ctx, order, event)
	}
	if err != nil {
		return nil, err
	}

	if err := u.mailer.Send(ctx, model.Mail{
		To:      customer.Email,
		Subject: fmt.Sprintf("Please confirm the changes to order #%d", order.ID),
		Body:    u.confirmationBody("order/confirm-modification", order.ConfirmationToken, expires, order.TotalAmount.StringFixed(2)+" "+order.Currency),
	}); err != nil {
		return nil, err
	}
	return order, nil
}

// ConfirmModification consumes a modification token on behalf of the customer.
func (u *OrderUseCase) ConfirmModification(ctx context.Context, token string) (*model.Order, error) {
	if token == "" {
		return nil, domainErrors.ErrNotFound
	}
	order, err := u.orders.GetByConfirmationToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if order.ConfirmationExpiresAt != nil && u.now().After(*order.ConfirmationExpiresAt) {
		return nil, domainErrors.ErrTokenExpired
	}

	event, err := newEvent(ctx, aggregateOrder, order.ID, model.EventOrderModified, orderModifiedEvent{
		OrderID: order.ID, TotalAmount: order.TotalAmount.StringFixed(2), Reason: "confirmed_by_customer",
	})
	if err != nil {
		return nil, err
	}
	if err := u.orders.ConfirmModification(ctx, order.ID, token, event); err != nil {
		return nil, err
	}

	order.ConfirmationToken = ""
	order.ConfirmationExpiresAt = nil
	order.IsConfirmedByCustomer = true
	return order, nil
}

// UpdateReceiver stores receiver details needed before delivery.
func (u *OrderUseCase) UpdateReceiver(ctx context.Context, orderID int64, receiver model.ReceiverDetails) (*model.Order, error) {
	receiver.Name = strings.TrimSpace(receiver.Name)
	receiver.Mobile = strings.TrimSpace(receiver.Mobile)
	receiver.Address = strings.TrimSpace(receiver.Address)
	if receiver.Mobile == "" {
		return nil, domainErrors.ErrReceiverMobileMissing
	}

	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status.IsTerminal() {
		return nil, domainErrors.ErrInvalidTransition
	}
	if err := u.orders.UpdateReceiver(ctx, orderID, receiver); err != nil {
		return nil, err
	}

	if order.Receiver.Mobile != receiver.Mobile {
		order.DeliveryOTPVerified = false
		if order.Receiver.Mobile != "" {
			if err := u.otp.Revoke(ctx, deliveryOTPKey(order.ID, order.Receiver.Mobile)); err != nil {
				return nil, err
			}
		}
	}
	order.Receiver = receiver
	return order, nil
}

// SendDeliveryOTP texts a delivery code to the receiver when delivered is the next stage.
func (u *OrderUseCase) SendDeliveryOTP(ctx context.Context, orderID int64) error {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	stages, err := u.Stages(ctx, order.StageKey())
	if err != nil {
		return err
	}
	if next, ok := nextStage(order.Status, stages); !ok || next != model.OrderStatusDelivered || order.Status.IsTerminal() {
		return domainErrors.ErrInvalidTransition
	}
	if order.Receiver.Mobile == "" {
		return domainErrors.ErrReceiverMobileMissing
	}

	code, err := u.otp.Issue(ctx, deliveryOTPKey(order.ID, order.Receiver.Mobile))
	if err != nil {
		return err
	}
	return u.sms.SendSMS(ctx, order.Receiver.Mobile, fmt.Sprintf("Your delivery code for order #%d is %s", order.ID, code))
}

// VerifyDeliveryOTP consumes the delivery code and unlocks the delivered transition.
// Codes are bound to the receiver mobile they were sent to.
func (u *OrderUseCase) VerifyDeliveryOTP(ctx context.Context, orderID int64, code string) error {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Receiver.Mobile == "" {
		return domainErrors.ErrReceiverMobileMissing
	}
	if err := u.otp.Verify(ctx, deliveryOTPKey(order.ID, order.Receiver.Mobile), code); err != nil {
		return err
	}
	return u.orders.MarkDeliveryOTPVerified(ctx, order.ID, order.Receiver.Mobile)
}

func (u *OrderUseCase) applyEdits(ctx context.Context, order *model.Order, edits map[int64]int) error {
	if order.Status != model.OrderStatusRequested {
		return domainErrors.ErrQuantitiesLocked
	}

	known := make(map[int64]struct{}, len(order.CartItems))
	for _, item := range order.CartItems {
		known[item.ID] = struct{}{}
	}
	for itemID, qty := range edits {
		if _, ok := known[itemID]; !ok {
			return fmt.Errorf("cart item %d: %w", itemID, domainErrors.ErrNotFound)
		}
		if qty <= 0 {
			return domainErrors.ErrInvalidAmount
		}
	}

	if err := u.validateLines(ctx, order, edits); err != nil {
		return err
	}

	for i := range order.CartItems {
		if qty, ok := edits[order.CartItems[i].ID]; ok {
			order.CartItems[i].Quantity = qty
		}
	}
	order.QuantitiesModified = true
	order.ConfirmationToken = ""
	order.ConfirmationExpiresAt = nil
	order.IsConfirmedByCustomer = false
	order.RecalculateTotal()
	return nil
}

func (u *OrderUseCase) validateLines(ctx context.Context, order *model.Order, edits map[int64]int) error {
	ids := make([]int64, 0, len(order.CartItems))
	for _, item := range order.CartItems {
		ids = append(ids, item.ProductID)
	}
	products, err := u.products.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	lines, err := quantityLines(order.CartItems, products, edits)
	if err != nil {
		return err
	}
	if violations := ValidateQuantities(lines, order.IsGroupedOrder); len(violations) > 0 {
		return &domainErrors.ValidationError{Violations: violations}
	}
	return nil
}

// placedEvent describes a new order. The aggregate ID is left empty for the storage layer
// to fill once the order row exists.
func placedEvent(ctx context.Context, order *model.Order) (model.Event, error) {
	event, err := newEvent(ctx, aggregateOrder, 0, model.EventOrderPlaced, orderPlacedEvent{
		CustomerID:    order.CustomerID,
		Status:        string(order.Status),
		TotalAmount:   order.TotalAmount.StringFixed(2),
		Currency:      order.Currency,
		NegotiationID: order.NegotiationID,
	})
	event.AggregateID = ""
	return event, err
}

func (u *OrderUseCase) confirmationBody(path, token string, expires time.Time, summary string) string {
	link := strings.TrimRight(u.settings.ConfirmationBaseURL, "/") + "/" + path + "?token=" + token
	return fmt.Sprintf("Total: %s\nConfirm here: %s\nThis link expires at %s.", summary, link, expires.UTC().Format(time.RFC1123))
}
