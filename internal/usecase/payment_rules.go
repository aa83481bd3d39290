package usecase

import (
	domainErrors "github.com/polkiloo/orderdesk/internal/domain/errors"
	"github.com/polkiloo/orderdesk/internal/domain/model"
)

// paymentFieldsEditable reports whether amount, currency, rate and reference may still change.
func paymentFieldsEditable(status model.PaymentStatus) bool {
	return status == model.PaymentStatusRequested || status == model.PaymentStatusVerify
}

// checkPaymentTransition validates a payment move to the target status by adminID.
func checkPaymentTransition(p *model.Payment, to model.PaymentStatus, adminID int64) error {
	switch to {
	case model.PaymentStatusVerify:
		if p.Status != model.PaymentStatusRequested {
			return domainErrors.ErrInvalidTransition
		}
		if !p.OTPVerified {
			return domainErrors.ErrOTPNotVerified
		}
		if !p.Complete() {
			return domainErrors.ErrPaymentIncomplete
		}
		if p.ApprovedBy != nil && *p.ApprovedBy == adminID {
			return domainErrors.ErrSameAdmin
		}
	case model.PaymentStatusApproved:
		if p.Status != model.PaymentStatusVerify {
			return domainErrors.ErrInvalidTransition
		}
		if p.VerifiedBy != nil && *p.VerifiedBy == adminID {
			return domainErrors.ErrSameAdmin
		}
	case model.PaymentStatusPaid:
		if p.Status != model.PaymentStatusApproved {
			return domainErrors.ErrInvalidTransition
		}
	case model.PaymentStatusRejected:
		switch p.Status {
		case model.PaymentStatusRequested, model.PaymentStatusVerify, model.PaymentStatusApproved:
		default:
			return domainErrors.ErrInvalidTransition
		}
	default:
		return domainErrors.ErrInvalidTransition
	}
	return nil
}

// AdmissiblePaymentStatuses lists the statuses adminID may move p to right now.
func AdmissiblePaymentStatuses(p *model.Payment, adminID int64) []model.PaymentStatus {
	result := make([]model.PaymentStatus, 0, 2)
	for _, to := range []model.PaymentStatus{
		model.PaymentStatusVerify,
		model.PaymentStatusApproved,
		model.PaymentStatusPaid,
		model.PaymentStatusRejected,
	} {
		if checkPaymentTransition(p, to, adminID) == nil {
			result = append(result, to)
		}
	}
	return result
}
