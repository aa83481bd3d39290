package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/polkiloo/orderdesk/internal/domain/model"
	"github.com/polkiloo/orderdesk/internal/server/http/dto"
	"github.com/polkiloo/orderdesk/internal/usecase"
)

// NegotiationHandler serves the admin and customer sides of negotiations.
type NegotiationHandler struct {
	facade NegotiationFacade
}

// NewNegotiationHandler constructs NegotiationHandler.
func NewNegotiationHandler(facade NegotiationFacade) *NegotiationHandler {
	return &NegotiationHandler{facade: facade}
}

// Open handles POST /api/customer/negotiation/open.
func (h *NegotiationHandler) Open(c *gin.Context) {
	var req dto.OpenNegotiationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "productId is required")
		return
	}

	n, err := h.facade.OpenNegotiation(c.Request.Context(), CurrentSession(c), usecase.OpenNegotiation{
		CustomerID: req.CustomerID,
		ProductID:  req.ProductID,
		Offer:      model.Offer{Price: req.OfferPrice, Quantity: req.Quantity},
		Currency:   req.Currency,
	})
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, toNegotiationResponse(*n))
}

// List handles POST /api/admin/negotiation/list and /api/customer/negotiation/list.
func (h *NegotiationHandler) List(c *gin.Context) {
	var req dto.NegotiationListRequest
	if err := bindOptional(c, &req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	items, err := h.facade.Negotiations(c.Request.Context(), CurrentSession(c), model.NegotiationStatus(req.Status))
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]dto.NegotiationResponse, 0, len(items))
	for _, n := range items {
		out = append(out, toNegotiationResponse(n))
	}
	respond(c, out)
}

// Respond handles POST /api/admin/negotiation/respond and /api/customer/negotiation/respond.
func (h *NegotiationHandler) Respond(c *gin.Context) {
	var req dto.RespondNegotiationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "negotiationId and action are required")
		return
	}

	var counter *model.Offer
	if req.OfferPrice != nil {
		counter = &model.Offer{Price: *req.OfferPrice, Quantity: req.Quantity}
	}
	n, err := h.facade.RespondNegotiation(c.Request.Context(), CurrentSession(c), req.NegotiationID, model.NegotiationAction(req.Action), counter)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, toNegotiationResponse(*n))
}

// PlaceOrder handles POST /api/admin/negotiation/place-order.
func (h *NegotiationHandler) PlaceOrder(c *gin.Context) {
	var req dto.PlaceNegotiationOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "negotiationId is required")
		return
	}

	n, order, err := h.facade.PlaceNegotiatedOrder(c.Request.Context(), usecase.PlaceFromNegotiation{
		NegotiationID:       req.NegotiationID,
		RequireConfirmation: req.RequireConfirmation,
		CurrentLocation:     req.CurrentLocation,
		DeliveryLocation:    req.DeliveryLocation,
	})
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, toNegotiationOrderResponse(n, order))
}

// ConfirmOrder handles POST /api/public/negotiation/confirm-order.
func (h *NegotiationHandler) ConfirmOrder(c *gin.Context) {
	var req dto.TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "token is required")
		return
	}

	n, order, err := h.facade.ConfirmNegotiatedOrder(c.Request.Context(), req.Token)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, toNegotiationOrderResponse(n, order))
}

func toNegotiationOrderResponse(n *model.Negotiation, order *model.Order) dto.NegotiationOrderResponse {
	resp := dto.NegotiationOrderResponse{Negotiation: toNegotiationResponse(*n)}
	if order != nil {
		o := toOrderResponse(*order)
		resp.Order = &o
	}
	return resp
}

func toNegotiationResponse(n model.Negotiation) dto.NegotiationResponse {
	resp := dto.NegotiationResponse{
		ID:                    n.ID,
		CustomerID:            n.CustomerID,
		ProductID:             n.ProductID,
		Status:                string(n.Status),
		OfferPrice:            n.OfferPrice,
		Quantity:              n.Quantity,
		PreviousQuantity:      n.PreviousQuantity,
		Currency:              n.Currency,
		FromUserType:          string(n.FromUserType),
		Round:                 n.Round,
		OrderID:               n.OrderID,
		ConfirmationExpiresAt: n.ConfirmationExpiresAt,
		CreatedAt:             n.CreatedAt,
		UpdatedAt:             n.UpdatedAt,
	}
	if n.PreviousOfferPrice.Valid {
		prev := n.PreviousOfferPrice.Decimal
		resp.PreviousOfferPrice = &prev
	}
	if n.IsOpen() {
		resp.AwaitingUserType = string(n.AwaitingSide())
	}
	return resp
}
