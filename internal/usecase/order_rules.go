package usecase

import (
	domainErrors "github.com/polkiloo/orderdesk/internal/domain/errors"
	"github.com/polkiloo/orderdesk/internal/domain/model"
)

// flowRank returns the position of status within the full flow, or -1 for side states.
func flowRank(status model.OrderStatus) int {
	for i, st := range model.DefaultStages {
		if st == status {
			return i
		}
	}
	return -1
}

// beforePaymentReceived reports whether status may still be rejected or cancelled.
func beforePaymentReceived(status model.OrderStatus) bool {
	rank := flowRank(status)
	return rank >= 0 && rank < flowRank(model.OrderStatusPaymentReceived)
}

// chargesEditable reports whether other charges and discount may change on a move
// from one status to another. Once payments settle the total it is frozen.
func chargesEditable(from, to model.OrderStatus) bool {
	return beforePaymentReceived(from) && beforePaymentReceived(to)
}

// nextStage returns the stage that follows current on the route.
// A status missing from stages resolves to the first later stage by flow order.
func nextStage(current model.OrderStatus, stages []model.OrderStatus) (model.OrderStatus, bool) {
	if len(stages) == 0 {
		stages = model.DefaultStages
	}
	for i, st := range stages {
		if st == current {
			if i+1 < len(stages) {
				return stages[i+1], true
			}
			return "", false
		}
	}
	rank := flowRank(current)
	if rank < 0 {
		return "", false
	}
	for _, st := range stages {
		if flowRank(st) > rank {
			return st, true
		}
	}
	return "", false
}

// checkTransition validates a move of order to the target status by adminID.
// paymentMethod is only consulted for waiting_for_payment.
func checkTransition(order *model.Order, to model.OrderStatus, stages []model.OrderStatus, adminID int64, paymentMethod string, settings Settings) error {
	if order.Status.IsTerminal() {
		return domainErrors.ErrInvalidTransition
	}

	switch to {
	case model.OrderStatusCancelled:
		return domainErrors.ErrInvalidTransition
	case model.OrderStatusRejected:
		if !beforePaymentReceived(order.Status) {
			return domainErrors.ErrInvalidTransition
		}
		return nil
	}

	next, ok := nextStage(order.Status, stages)
	if !ok || next != to {
		return domainErrors.ErrInvalidTransition
	}

	switch to {
	case model.OrderStatusVerify:
		if order.AwaitingCustomer() {
			return domainErrors.ErrConfirmationPending
		}
		if order.QuantitiesModified && order.ConfirmationToken == "" && !order.IsConfirmedByCustomer {
			return domainErrors.ErrConfirmationNotSent
		}
		if order.ApprovedBy != nil && *order.ApprovedBy == adminID {
			return domainErrors.ErrSameAdmin
		}
	case model.OrderStatusApproved:
		if order.VerifiedBy != nil && *order.VerifiedBy == adminID {
			return domainErrors.ErrSameAdmin
		}
	case model.OrderStatusWaitingForPayment:
		if paymentMethod == "" {
			return domainErrors.ErrPaymentMethodRequired
		}
		if !settings.validPaymentMethod(paymentMethod) {
			return domainErrors.ErrInvalidPaymentMethod
		}
	case model.OrderStatusDelivered:
		if order.Receiver.Mobile == "" {
			return domainErrors.ErrReceiverMobileMissing
		}
		if !order.DeliveryOTPVerified {
			return domainErrors.ErrDeliveryOTPRequired
		}
	}

	return nil
}

// AdmissibleNextStatuses lists the statuses adminID may move order to right now.
// waiting_for_payment is listed whenever it is next, since the payment method is supplied with the write.
func AdmissibleNextStatuses(order *model.Order, stages []model.OrderStatus, adminID int64, settings Settings) []model.OrderStatus {
	result := make([]model.OrderStatus, 0, 2)
	if order.Status.IsTerminal() {
		return result
	}

	if next, ok := nextStage(order.Status, stages); ok {
		method := ""
		if next == model.OrderStatusWaitingForPayment && len(settings.PaymentMethods) > 0 {
			method = settings.PaymentMethods[0]
		}
		if checkTransition(order, next, stages, adminID, method, settings) == nil {
			result = append(result, next)
		}
	}

	if beforePaymentReceived(order.Status) {
		result = append(result, model.OrderStatusRejected)
	}

	return result
}

// applyTransition records the actor on order for statuses that track one.
func applyTransition(order *model.Order, to model.OrderStatus, adminID int64, paymentMethod string) {
	switch to {
	case model.OrderStatusVerify:
		order.VerifiedBy = &adminID
	case model.OrderStatusApproved:
		order.ApprovedBy = &adminID
	case model.OrderStatusWaitingForPayment:
		order.PaymentMethod = paymentMethod
	}
	order.Status = to
}
