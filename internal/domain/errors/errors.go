package errors

import (
	"errors"
	"strings"
)

var (
	ErrAlreadyExists       = errors.New("already exists")
	ErrNotFound            = errors.New("not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrForbidden           = errors.New("forbidden")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidAmount       = errors.New("invalid amount")

	ErrInvalidTransition      = errors.New("invalid status transition")
	ErrStatusConflict         = errors.New("status changed concurrently")
	ErrSameAdmin              = errors.New("same admin cannot both verify and approve")
	ErrConfirmationPending    = errors.New("customer confirmation pending")
	ErrConfirmationNotSent    = errors.New("quantities modified without customer confirmation request")
	ErrTokenExpired           = errors.New("confirmation token expired")
	ErrDeliveryOTPRequired    = errors.New("delivery otp not verified")
	ErrReceiverMobileMissing  = errors.New("receiver mobile number missing")
	ErrPaymentMethodRequired  = errors.New("payment method required")
	ErrInvalidPaymentMethod   = errors.New("invalid payment method")
	ErrQuantitiesLocked       = errors.New("quantities can only be edited while order is requested")
	ErrChargesLocked          = errors.New("charges can only be edited before payment is received")
	ErrOTPInvalid             = errors.New("invalid otp")
	ErrOTPExpired             = errors.New("otp expired or already used")
	ErrOTPNotVerified         = errors.New("otp not verified")
	ErrOTPAttemptsExceeded    = errors.New("too many otp attempts")
	ErrPaymentLocked          = errors.New("payment fields are locked")
	ErrPaymentIncomplete      = errors.New("payment amount, currency and conversion rate required")
	ErrNotYourTurn            = errors.New("waiting for the other side to respond")
	ErrNegotiationClosed      = errors.New("negotiation is closed")
	ErrNegotiationNotAccepted = errors.New("negotiation is not accepted")
	ErrOrderAlreadyPlaced     = errors.New("order already placed")
	ErrValidation             = errors.New("validation failed")
	ErrConversionRateRequired = errors.New("conversion rate required")
	ErrRateUnavailable        = errors.New("conversion rate unavailable")
)

// ValidationError lists human readable violations and matches ErrValidation.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return ErrValidation.Error() + ": " + strings.Join(e.Violations, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
