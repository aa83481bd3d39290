package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/polkiloo/orderdesk/internal/domain/model"
	"github.com/polkiloo/orderdesk/internal/server/http/dto"
	"github.com/polkiloo/orderdesk/internal/server/http/middleware"
	"github.com/polkiloo/orderdesk/internal/usecase"
)

// AuthHandler processes registration, login and admin account creation.
type AuthHandler struct {
	facade AuthFacade
}

// NewAuthHandler creates AuthHandler instance.
func NewAuthHandler(facade AuthFacade) *AuthHandler {
	return &AuthHandler{facade: facade}
}

// RegisterCustomer handles POST /api/customer/register.
func (h *AuthHandler) RegisterCustomer(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	token, err := h.facade.RegisterCustomer(c.Request.Context(), registration(req))
	if err != nil {
		fail(c, err)
		return
	}

	middleware.SetAuthCookie(c, token)
	respond(c, dto.TokenResponse{Token: token})
}

// CustomerLogin handles POST /api/customer/login.
func (h *AuthHandler) CustomerLogin(c *gin.Context) {
	h.login(c, model.RoleCustomer)
}

// AdminLogin handles POST /api/admin/login.
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	h.login(c, model.RoleAdmin)
}

func (h *AuthHandler) login(c *gin.Context, role model.Role) {
	var req dto.AuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	token, err := h.facade.Login(c.Request.Context(), role, req.Login, req.Password)
	if err != nil {
		fail(c, err)
		return
	}

	middleware.SetAuthCookie(c, token)
	respond(c, dto.TokenResponse{Token: token})
}

// CreateAdmin handles POST /api/admin/accounts/create.
func (h *AuthHandler) CreateAdmin(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	acc, err := h.facade.CreateAdmin(c.Request.Context(), registration(req))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, toAccountResponse(acc))
}

func registration(req dto.RegisterRequest) usecase.Registration {
	return usecase.Registration{
		Login:    req.Login,
		Password: req.Password,
		Name:     req.Name,
		Email:    req.Email,
		Mobile:   req.Mobile,
	}
}

func toAccountResponse(acc *model.Account) dto.AccountResponse {
	return dto.AccountResponse{
		ID:     acc.ID,
		Login:  acc.Login,
		Role:   string(acc.Role),
		Name:   acc.Name,
		Email:  acc.Email,
		Mobile: acc.Mobile,
	}
}
