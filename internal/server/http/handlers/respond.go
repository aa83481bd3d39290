package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/orderdesk/internal/domain/errors"
	pkgAuth "github.com/polkiloo/orderdesk/internal/pkg/auth"
	"github.com/polkiloo/orderdesk/internal/server/http/dto"
)

func respond(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.Envelope{Status: http.StatusOK, Message: "success", Data: data})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, dto.Envelope{Status: http.StatusBadRequest, Message: message})
}

// bindOptional binds a JSON body that callers may omit entirely.
func bindOptional(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// fail maps a domain error to its HTTP status. Unknown errors are hidden behind a generic message.
func fail(c *gin.Context, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		message = "internal error"
	}
	c.JSON(status, dto.Envelope{Status: status, Message: message})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domainErrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domainErrors.ErrInvalidCredentials), errors.Is(err, pkgAuth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, domainErrors.ErrForbidden),
		errors.Is(err, domainErrors.ErrSameAdmin),
		errors.Is(err, domainErrors.ErrNotYourTurn):
		return http.StatusForbidden
	case errors.Is(err, domainErrors.ErrAlreadyExists),
		errors.Is(err, domainErrors.ErrStatusConflict),
		errors.Is(err, domainErrors.ErrOrderAlreadyPlaced):
		return http.StatusConflict
	case errors.Is(err, domainErrors.ErrTokenExpired),
		errors.Is(err, domainErrors.ErrOTPExpired):
		return http.StatusGone
	case errors.Is(err, domainErrors.ErrOTPAttemptsExceeded):
		return http.StatusTooManyRequests
	case errors.Is(err, domainErrors.ErrRateUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, domainErrors.ErrValidation),
		errors.Is(err, domainErrors.ErrInsufficientBalance):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domainErrors.ErrInvalidAmount),
		errors.Is(err, domainErrors.ErrInvalidTransition),
		errors.Is(err, domainErrors.ErrConfirmationPending),
		errors.Is(err, domainErrors.ErrConfirmationNotSent),
		errors.Is(err, domainErrors.ErrDeliveryOTPRequired),
		errors.Is(err, domainErrors.ErrReceiverMobileMissing),
		errors.Is(err, domainErrors.ErrPaymentMethodRequired),
		errors.Is(err, domainErrors.ErrInvalidPaymentMethod),
		errors.Is(err, domainErrors.ErrQuantitiesLocked),
		errors.Is(err, domainErrors.ErrChargesLocked),
		errors.Is(err, domainErrors.ErrOTPInvalid),
		errors.Is(err, domainErrors.ErrOTPNotVerified),
		errors.Is(err, domainErrors.ErrPaymentLocked),
		errors.Is(err, domainErrors.ErrPaymentIncomplete),
		errors.Is(err, domainErrors.ErrNegotiationClosed),
		errors.Is(err, domainErrors.ErrNegotiationNotAccepted),
		errors.Is(err, domainErrors.ErrConversionRateRequired):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
