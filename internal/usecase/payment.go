package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/orderdesk/internal/domain/errors"
	"github.com/polkiloo/orderdesk/internal/domain/model"
	"github.com/polkiloo/orderdesk/internal/domain/repository"
)

const (
	aggregatePayment = "payment"
	otpKindPayment   = "payment"
)

// PaymentRequest registers a payment against an order awaiting payment.
type PaymentRequest struct {
	OrderID        int64
	Method         string
	Amount         decimal.Decimal
	Currency       string
	ConversionRate *decimal.Decimal
	TransactionRef string
}

// PaymentUpdate carries optional field changes; nil fields are left untouched.
type PaymentUpdate struct {
	PaymentID      int64
	Method         *string
	Amount         *decimal.Decimal
	Currency       *string
	ConversionRate *decimal.Decimal
	TransactionRef *string
}

type paymentStatusEvent struct {
	PaymentID        int64  `json:"paymentId"`
	OrderID          int64  `json:"orderId"`
	From             string `json:"from,omitempty"`
	To               string `json:"to"`
	AdminID          int64  `json:"adminId,omitempty"`
	CalculatedAmount string `json:"calculatedAmount"`
	Reason           string `json:"reason,omitempty"`
}

// PaymentUseCase drives the payment verification workflow.
type PaymentUseCase struct {
	payments repository.PaymentRepository
	orders   repository.OrderRepository
	accounts repository.AccountRepository
	rates    RateProvider
	otp      OTPStore
	mailer   Mailer
	sms      SMSSender
	observer TransitionObserver
	settings Settings
	now      func() time.Time
}

// PaymentDeps lists the collaborators of PaymentUseCase.
type PaymentDeps struct {
	Payments repository.PaymentRepository
	Orders   repository.OrderRepository
	Accounts repository.AccountRepository
	Rates    RateProvider
	OTP      OTPStore
	Mailer   Mailer
	SMS      SMSSender
	Observer TransitionObserver
	Settings Settings
}

// NewPaymentUseCase constructs PaymentUseCase.
func NewPaymentUseCase(d PaymentDeps) *PaymentUseCase {
	return &PaymentUseCase{
		payments: d.Payments,
		orders:   d.Orders,
		accounts: d.Accounts,
		rates:    d.Rates,
		otp:      d.OTP,
		mailer:   d.Mailer,
		sms:      d.SMS,
		observer: d.Observer,
		settings: d.Settings,
		now:      time.Now,
	}
}

// Get returns a single payment.
func (u *PaymentUseCase) Get(ctx context.Context, id int64) (*model.Payment, error) {
	return u.payments.GetByID(ctx, id)
}

// ListByOrder returns the payments recorded against an order.
func (u *PaymentUseCase) ListByOrder(ctx context.Context, orderID int64) ([]model.Payment, error) {
	return u.payments.ListByOrder(ctx, orderID)
}

// Create registers a requested payment for an order in waiting_for_payment.
func (u *PaymentUseCase) Create(ctx context.Context, req PaymentRequest) (*model.Payment, error) {
	order, err := u.orders.GetByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if order.Status != model.OrderStatusWaitingForPayment {
		return nil, domainErrors.ErrInvalidTransition
	}
	if !req.Amount.IsPositive() {
		return nil, domainErrors.ErrInvalidAmount
	}

	method := req.Method
	if method == "" {
		method = order.PaymentMethod
	}
	if !u.settings.validPaymentMethod(method) {
		return nil, domainErrors.ErrInvalidPaymentMethod
	}

	p := &model.Payment{
		OrderID:        order.ID,
		Status:         model.PaymentStatusRequested,
		Method:         method,
		Amount:         req.Amount,
		Currency:       strings.ToUpper(strings.TrimSpace(req.Currency)),
		TransactionRef: req.TransactionRef,
	}
	if p.Currency == "" {
		p.Currency = order.Currency
	}
	if err := u.resolveRate(ctx, p, order.Currency, req.ConversionRate); err != nil {
		return nil, err
	}
	p.Recalculate()

	event, err := newEvent(ctx, aggregatePayment, 0, model.EventPaymentStatusChanged, paymentStatusEvent{
		OrderID: order.ID, To: string(p.Status), CalculatedAmount: p.CalculatedAmount.StringFixed(2),
	})
	if err != nil {
		return nil, err
	}
	event.AggregateID = ""
	if err := u.payments.Create(ctx, p, event); err != nil {
		return nil, err
	}
	return p, nil
}

// Update changes payment fields while the payment is still requested or under verification.
// Changing amount or currency invalidates an earlier OTP verification and any code
// already sent to the customer.
func (u *PaymentUseCase) Update(ctx context.Context, req PaymentUpdate) (*model.Payment, error) {
	p, err := u.payments.GetByID(ctx, req.PaymentID)
	if err != nil {
		return nil, err
	}
	if !paymentFieldsEditable(p.Status) {
		return nil, domainErrors.ErrPaymentLocked
	}
	order, err := u.orders.GetByID(ctx, p.OrderID)
	if err != nil {
		return nil, err
	}

	currencyChanged, amountChanged := false, false
	if req.Method != nil {
		if !u.settings.validPaymentMethod(*req.Method) {
			return nil, domainErrors.ErrInvalidPaymentMethod
		}
		p.Method = *req.Method
	}
	if req.Amount != nil {
		if !req.Amount.IsPositive() {
			return nil, domainErrors.ErrInvalidAmount
		}
		amountChanged = !req.Amount.Equal(p.Amount)
		p.Amount = *req.Amount
	}
	if req.Currency != nil {
		currency := strings.ToUpper(strings.TrimSpace(*req.Currency))
		currencyChanged = currency != p.Currency
		p.Currency = currency
	}
	if req.TransactionRef != nil {
		p.TransactionRef = *req.TransactionRef
	}
	if req.ConversionRate != nil || currencyChanged {
		if err := u.resolveRate(ctx, p, order.Currency, req.ConversionRate); err != nil {
			return nil, err
		}
	}
	p.Recalculate()

	if amountChanged || currencyChanged {
		p.OTPVerified = false
		if err := u.otp.Revoke(ctx, otpKey(otpKindPayment, p.ID)); err != nil {
			return nil, err
		}
	}
	if err := u.payments.Update(ctx, p, p.Status); err != nil {
		return nil, err
	}
	return p, nil
}

// SendOTP delivers a payment confirmation code to the customer.
func (u *PaymentUseCase) SendOTP(ctx context.Context, paymentID int64) error {
	p, err := u.payments.GetByID(ctx, paymentID)
	if err != nil {
		return err
	}
	if p.Status != model.PaymentStatusRequested {
		return domainErrors.ErrInvalidTransition
	}
	order, err := u.orders.GetByID(ctx, p.OrderID)
	if err != nil {
		return err
	}
	customer, err := u.accounts.GetByID(ctx, order.CustomerID)
	if err != nil {
		return err
	}

	code, err := u.otp.Issue(ctx, otpKey(otpKindPayment, p.ID))
	if err != nil {
		return err
	}
	text := fmt.Sprintf("Your code to confirm payment of %s %s for order #%d is %s", p.Amount.StringFixed(2), p.Currency, order.ID, code)
	if customer.Mobile != "" {
		return u.sms.SendSMS(ctx, customer.Mobile, text)
	}
	return u.mailer.Send(ctx, model.Mail{To: customer.Email, Subject: "Payment confirmation code", Body: text})
}

// VerifyOTP consumes the payment code.
func (u *PaymentUseCase) VerifyOTP(ctx context.Context, paymentID int64, code string) (*model.Payment, error) {
	p, err := u.payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if p.Status != model.PaymentStatusRequested {
		return nil, domainErrors.ErrInvalidTransition
	}
	if err := u.otp.Verify(ctx, otpKey(otpKindPayment, p.ID), code); err != nil {
		return nil, err
	}
	if err := u.payments.MarkOTPVerified(ctx, p.ID); err != nil {
		return nil, err
	}
	p.OTPVerified = true
	return p, nil
}

// Verify moves a requested payment to verify.
func (u *PaymentUseCase) Verify(ctx context.Context, paymentID, adminID int64) (*model.Payment, error) {
	return u.transition(ctx, paymentID, adminID, model.PaymentStatusVerify, "")
}

// Approve moves a verified payment to approved; the verifying admin cannot approve.
func (u *PaymentUseCase) Approve(ctx context.Context, paymentID, adminID int64) (*model.Payment, error) {
	return u.transition(ctx, paymentID, adminID, model.PaymentStatusApproved, "")
}

// Reject moves a payment that is not yet paid to rejected.
func (u *PaymentUseCase) Reject(ctx context.Context, paymentID, adminID int64, reason string) (*model.Payment, error) {
	return u.transition(ctx, paymentID, adminID, model.PaymentStatusRejected, reason)
}

func (u *PaymentUseCase) transition(ctx context.Context, paymentID, adminID int64, to model.PaymentStatus, reason string) (*model.Payment, error) {
	p, err := u.payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if err := checkPaymentTransition(p, to, adminID); err != nil {
		return nil, err
	}

	from := p.Status
	switch to {
	case model.PaymentStatusVerify:
		p.VerifiedBy = &adminID
	case model.PaymentStatusApproved:
		p.ApprovedBy = &adminID
	}
	p.Status = to

	event, err := u.statusEvent(ctx, p, from, adminID, reason)
	if err != nil {
		return nil, err
	}
	if err := u.payments.Update(ctx, p, from, event); err != nil {
		return nil, err
	}
	u.observe(p.Status)
	return p, nil
}

// MarkPaid settles an approved payment. When paid payments cover the order total,
// the order moves from waiting_for_payment to payment_received in the same transaction.
func (u *PaymentUseCase) MarkPaid(ctx context.Context, paymentID, adminID int64) (*model.Payment, error) {
	p, err := u.payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if err := checkPaymentTransition(p, model.PaymentStatusPaid, adminID); err != nil {
		return nil, err
	}

	from := p.Status
	p.Status = model.PaymentStatusPaid
	event, err := u.statusEvent(ctx, p, from, adminID, "")
	if err != nil {
		return nil, err
	}

	settled, err := u.payments.MarkPaid(ctx, p, func(order *model.Order, paid decimal.Decimal) (*model.StatusChange, []model.Event, error) {
		if order.Status != model.OrderStatusWaitingForPayment || paid.LessThan(order.TotalAmount) {
			return nil, nil, nil
		}
		change := &model.StatusChange{
			OrderID:   order.ID,
			From:      order.Status,
			To:        model.OrderStatusPaymentReceived,
			AdminID:   adminID,
			Message:   fmt.Sprintf("payment #%d settled", p.ID),
			ChangedAt: u.now(),
		}
		orderEvent, err := newEvent(ctx, aggregateOrder, order.ID, model.EventOrderStatusChanged, orderStatusEvent{
			OrderID: order.ID, From: string(change.From), To: string(change.To), AdminID: adminID, Message: change.Message,
		})
		if err != nil {
			return nil, nil, err
		}
		return change, []model.Event{orderEvent}, nil
	}, event)
	if err != nil {
		return nil, err
	}
	u.observe(p.Status)
	if settled != nil && u.observer != nil {
		u.observer.ObserveTransition(aggregateOrder, string(settled.To))
	}
	return p, nil
}

func (u *PaymentUseCase) resolveRate(ctx context.Context, p *model.Payment, orderCurrency string, explicit *decimal.Decimal) error {
	switch {
	case explicit != nil:
		if !explicit.IsPositive() {
			return domainErrors.ErrConversionRateRequired
		}
		p.ConversionRate = *explicit
	case strings.EqualFold(p.Currency, orderCurrency):
		p.ConversionRate = decimal.NewFromInt(1)
	default:
		if u.rates == nil {
			return domainErrors.ErrConversionRateRequired
		}
		rate, err := u.rates.Rate(ctx, p.Currency, orderCurrency)
		if err != nil {
			if errors.Is(err, domainErrors.ErrRateUnavailable) {
				return err
			}
			return fmt.Errorf("%w: %v", domainErrors.ErrRateUnavailable, err)
		}
		p.ConversionRate = rate
	}
	return nil
}

func (u *PaymentUseCase) statusEvent(ctx context.Context, p *model.Payment, from model.PaymentStatus, adminID int64, reason string) (model.Event, error) {
	return newEvent(ctx, aggregatePayment, p.ID, model.EventPaymentStatusChanged, paymentStatusEvent{
		PaymentID:        p.ID,
		OrderID:          p.OrderID,
		From:             string(from),
		To:               string(p.Status),
		AdminID:          adminID,
		CalculatedAmount: p.CalculatedAmount.StringFixed(2),
		Reason:           reason,
	})
}

func (u *PaymentUseCase) observe(status model.PaymentStatus) {
	if u.observer != nil {
		u.observer.ObserveTransition(aggregatePayment, string(status))
	}
}
