package usecase

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/orderdesk/internal/domain/model"
	"github.com/polkiloo/orderdesk/internal/telemetry"
)

// OTPStore issues and consumes one-time codes bound to a key.
type OTPStore interface {
	Issue(ctx context.Context, key string) (string, error)
	Verify(ctx context.Context, key, code string) error
	Revoke(ctx context.Context, key string) error
}

// Mailer delivers emails.
type Mailer interface {
	Send(ctx context.Context, mail model.Mail) error
}

// SMSSender delivers text messages to a mobile number.
type SMSSender interface {
	SendSMS(ctx context.Context, mobile, text string) error
}

// RateProvider resolves conversion rates between currencies.
type RateProvider interface {
	Rate(ctx context.Context, from, to string) (decimal.Decimal, error)
}

// TransitionObserver is notified about committed status transitions.
type TransitionObserver interface {
	ObserveTransition(entity, status string)
}

// Settings holds tunables shared by the use cases.
type Settings struct {
	PaymentMethods      []string
	ConfirmationTTL     time.Duration
	ConfirmationBaseURL string
}

func (s Settings) confirmationTTL() time.Duration {
	if s.ConfirmationTTL <= 0 {
		return 48 * time.Hour
	}
	return s.ConfirmationTTL
}

func (s Settings) validPaymentMethod(method string) bool {
	for _, m := range s.PaymentMethods {
		if m == method {
			return true
		}
	}
	return false
}

func otpKey(kind string, id int64) string {
	return kind + ":" + strconv.FormatInt(id, 10)
}

func deliveryOTPKey(orderID int64, mobile string) string {
	return otpKey(otpKindOrder, orderID) + ":" + mobile
}

// newEvent builds an outbox row for an aggregate change, carrying the caller's trace context.
func newEvent(ctx context.Context, aggregate string, id int64, eventType string, payload any) (model.Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return model.Event{}, err
	}
	return model.Event{
		AggregateType: aggregate,
		AggregateID:   strconv.FormatInt(id, 10),
		Type:          eventType,
		Payload:       raw,
		Traceparent:   telemetry.Traceparent(ctx),
		Status:        model.EventStatusPending,
	}, nil
}
