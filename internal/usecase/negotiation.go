package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/orderdesk/internal/domain/errors"
	"github.com/polkiloo/orderdesk/internal/domain/model"
	"github.com/polkiloo/orderdesk/internal/domain/repository"
)

const aggregateNegotiation = "negotiation"

// OpenNegotiation starts a thread. CustomerID is only read when an admin opens on a customer's behalf.
type OpenNegotiation struct {
	CustomerID int64
	ProductID  int64
	Offer      model.Offer
	Currency   string
}

// PlaceFromNegotiation controls how an accepted negotiation becomes an order.
type PlaceFromNegotiation struct {
	NegotiationID       int64
	RequireConfirmation bool
	CurrentLocation     string
	DeliveryLocation    string
}

type negotiationEvent struct {
	NegotiationID int64  `json:"negotiationId"`
	CustomerID    int64  `json:"customerId"`
	ProductID     int64  `json:"productId"`
	Status        string `json:"status"`
	Action        string `json:"action"`
	By            string `json:"by"`
	OfferPrice    string `json:"offerPrice"`
	Quantity      int    `json:"quantity"`
	Round         int    `json:"round"`
}

// NegotiationUseCase runs offer/counter-offer threads and turns accepted ones into orders.
type NegotiationUseCase struct {
	negotiations repository.NegotiationRepository
	products     repository.ProductRepository
	accounts     repository.AccountRepository
	mailer       Mailer
	settings     Settings
	now          func() time.Time
}

// NewNegotiationUseCase constructs NegotiationUseCase.
func NewNegotiationUseCase(n repository.NegotiationRepository, p repository.ProductRepository, a repository.AccountRepository, mailer Mailer, settings Settings) *NegotiationUseCase {
	return &NegotiationUseCase{
		negotiations: n,
		products:     p,
		accounts:     a,
		mailer:       mailer,
		settings:     settings,
		now:          time.Now,
	}
}

// Open starts a negotiation with an opening offer from the session's side.
func (u *NegotiationUseCase) Open(ctx context.Context, session model.Session, req OpenNegotiation) (*model.Negotiation, error) {
	customerID := session.AccountID
	if session.IsAdmin() {
		customer, err := u.accounts.GetByID(ctx, req.CustomerID)
		if err != nil {
			return nil, err
		}
		if customer.Role != model.RoleCustomer {
			return nil, domainErrors.ErrNotFound
		}
		customerID = customer.ID
	}
	if err := validateOffer(req.Offer); err != nil {
		return nil, err
	}

	product, err := u.products.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if err := validateOfferQuantity(*product, req.Offer.Quantity); err != nil {
		return nil, err
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = product.Currency
	}

	n := &model.Negotiation{
		CustomerID:   customerID,
		ProductID:    product.ID,
		Status:       model.NegotiationStatusOpen,
		OfferPrice:   req.Offer.Price,
		Quantity:     req.Offer.Quantity,
		Currency:     currency,
		FromUserType: model.UserTypeOf(session.Role),
		Round:        1,
	}
	event, err := u.event(ctx, n, "open")
	if err != nil {
		return nil, err
	}
	event.AggregateID = ""
	if err := u.negotiations.Create(ctx, n, event); err != nil {
		return nil, err
	}
	return n, nil
}

// Get returns a negotiation visible to the session.
func (u *NegotiationUseCase) Get(ctx context.Context, session model.Session, id int64) (*model.Negotiation, error) {
	n, err := u.negotiations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !session.IsAdmin() && n.CustomerID != session.AccountID {
		return nil, domainErrors.ErrNotFound
	}
	return n, nil
}

// List returns negotiations in a status bucket. Customers only see their own threads.
func (u *NegotiationUseCase) List(ctx context.Context, session model.Session, status model.NegotiationStatus) ([]model.Negotiation, error) {
	filter := repository.NegotiationFilter{Status: status}
	if !session.IsAdmin() {
		filter.CustomerID = session.AccountID
	}
	return u.negotiations.List(ctx, filter)
}

// Respond accepts, counters or rejects the last offer. Only the side that did not send it may act.
func (u *NegotiationUseCase) Respond(ctx context.Context, session model.Session, id int64, action model.NegotiationAction, counter *model.Offer) (*model.Negotiation, error) {
	n, err := u.Get(ctx, session, id)
	if err != nil {
		return nil, err
	}
	if !n.IsOpen() {
		return nil, domainErrors.ErrNegotiationClosed
	}
	actor := model.UserTypeOf(session.Role)
	if actor == n.FromUserType {
		return nil, domainErrors.ErrNotYourTurn
	}

	expectedRound := n.Round
	switch action {
	case model.NegotiationAccept:
		n.Status = model.NegotiationStatusAccepted
	case model.NegotiationReject:
		n.Status = model.NegotiationStatusRejected
	case model.NegotiationCounter:
		if counter == nil {
			return nil, domainErrors.ErrInvalidAmount
		}
		if err := validateOffer(*counter); err != nil {
			return nil, err
		}
		product, err := u.products.GetByID(ctx, n.ProductID)
		if err != nil {
			return nil, err
		}
		if err := validateOfferQuantity(*product, counter.Quantity); err != nil {
			return nil, err
		}
		prevQty := n.Quantity
		n.PreviousOfferPrice = decimal.NewNullDecimal(n.OfferPrice)
		n.PreviousQuantity = &prevQty
		n.OfferPrice = counter.Price
		n.Quantity = counter.Quantity
		n.FromUserType = actor
	default:
		return nil, domainErrors.ErrInvalidTransition
	}
	n.Round++

	event, err := u.eventBy(ctx, n, string(action), actor)
	if err != nil {
		return nil, err
	}
	if err := u.negotiations.Update(ctx, n, expectedRound, event); err != nil {
		return nil, err
	}
	return n, nil
}

// PlaceOrder turns an accepted negotiation into an order, or emails the customer a confirmation
// link first when RequireConfirmation is set. The returned order is nil in the latter case.
func (u *NegotiationUseCase) PlaceOrder(ctx context.Context, req PlaceFromNegotiation) (*model.Negotiation, *model.Order, error) {
	n, err := u.negotiations.GetByID(ctx, req.NegotiationID)
	if err != nil {
		return nil, nil, err
	}
	if n.Status != model.NegotiationStatusAccepted {
		return nil, nil, domainErrors.ErrNegotiationNotAccepted
	}
	if n.OrderID != nil {
		return nil, nil, domainErrors.ErrOrderAlreadyPlaced
	}
	n.CurrentLocation = req.CurrentLocation
	n.DeliveryLocation = req.DeliveryLocation

	if !req.RequireConfirmation {
		order, err := u.placeOrder(ctx, n)
		if err != nil {
			return nil, nil, err
		}
		return n, order, nil
	}

	customer, err := u.accounts.GetByID(ctx, n.CustomerID)
	if err != nil {
		return nil, nil, err
	}
	expires := u.now().Add(u.settings.confirmationTTL())
	n.ConfirmationToken = uuid.NewString()
	n.ConfirmationExpiresAt = &expires
	if err := u.negotiations.SetConfirmationToken(ctx, n); err != nil {
		return nil, nil, err
	}

	link := strings.TrimRight(u.settings.ConfirmationBaseURL, "/") + "/negotiation/confirm-order?token=" + n.ConfirmationToken
	body := fmt.Sprintf("Agreed price: %s %s for %d units.\nConfirm your order here: %s\nThis link expires at %s.",
		n.OfferPrice.StringFixed(2), n.Currency, n.Quantity, link, expires.UTC().Format(time.RFC1123))
	if err := u.mailer.Send(ctx, model.Mail{To: customer.Email, Subject: "Confirm your negotiated order", Body: body}); err != nil {
		return nil, nil, err
	}
	return n, nil, nil
}

// ConfirmOrder places the order of an accepted negotiation on the customer's confirmation.
func (u *NegotiationUseCase) ConfirmOrder(ctx context.Context, token string) (*model.Negotiation, *model.Order, error) {
	if token == "" {
		return nil, nil, domainErrors.ErrNotFound
	}
	n, err := u.negotiations.GetByConfirmationToken(ctx, token)
	if err != nil {
		return nil, nil, err
	}
	if n.OrderID != nil {
		return nil, nil, domainErrors.ErrOrderAlreadyPlaced
	}
	if n.ConfirmationExpiresAt != nil && u.now().After(*n.ConfirmationExpiresAt) {
		return nil, nil, domainErrors.ErrTokenExpired
	}
	order, err := u.placeOrder(ctx, n)
	if err != nil {
		return nil, nil, err
	}
	return n, order, nil
}

func (u *NegotiationUseCase) placeOrder(ctx context.Context, n *model.Negotiation) (*model.Order, error) {
	product, err := u.products.GetByID(ctx, n.ProductID)
	if err != nil {
		return nil, err
	}

	negotiationID := n.ID
	order := &model.Order{
		CustomerID:            n.CustomerID,
		Status:                model.OrderStatusRequested,
		CurrentLocation:       n.CurrentLocation,
		DeliveryLocation:      n.DeliveryLocation,
		Currency:              n.Currency,
		NegotiationID:         &negotiationID,
		IsConfirmedByCustomer: true,
		CartItems: []model.CartItem{{
			ProductID:   product.ID,
			SKUFamilyID: product.SKUFamilyID,
			ProductName: product.Name,
			Quantity:    n.Quantity,
			UnitPrice:   n.OfferPrice,
		}},
	}
	order.RecalculateTotal()

	placed, err := placedEvent(ctx, order)
	if err != nil {
		return nil, err
	}
	updated, err := u.event(ctx, n, "order_placed")
	if err != nil {
		return nil, err
	}
	if err := u.negotiations.PlaceOrder(ctx, n, order, placed, updated); err != nil {
		return nil, err
	}
	n.OrderID = &order.ID
	n.ConfirmationToken = ""
	n.ConfirmationExpiresAt = nil
	return order, nil
}

func (u *NegotiationUseCase) event(ctx context.Context, n *model.Negotiation, action string) (model.Event, error) {
	return u.eventBy(ctx, n, action, n.FromUserType)
}

func (u *NegotiationUseCase) eventBy(ctx context.Context, n *model.Negotiation, action string, by model.UserType) (model.Event, error) {
	return newEvent(ctx, aggregateNegotiation, n.ID, model.EventNegotiationUpdated, negotiationEvent{
		NegotiationID: n.ID,
		CustomerID:    n.CustomerID,
		ProductID:     n.ProductID,
		Status:        string(n.Status),
		Action:        action,
		By:            string(by),
		OfferPrice:    n.OfferPrice.StringFixed(2),
		Quantity:      n.Quantity,
		Round:         n.Round,
	})
}

func validateOffer(offer model.Offer) error {
	if !offer.Price.IsPositive() || offer.Quantity <= 0 {
		return domainErrors.ErrInvalidAmount
	}
	return nil
}

// validateOfferQuantity applies the per-line MOQ and stock rules to a single negotiated quantity.
func validateOfferQuantity(product model.Product, qty int) error {
	product.GroupCode = ""
	product.TotalMOQ = 0
	if violations := ValidateQuantities([]QuantityLine{{Product: product, Quantity: qty}}, false); len(violations) > 0 {
		return &domainErrors.ValidationError{Violations: violations}
	}
	return nil
}
