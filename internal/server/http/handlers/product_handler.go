package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/polkiloo/orderdesk/internal/domain/model"
	"github.com/polkiloo/orderdesk/internal/server/http/dto"
	"github.com/polkiloo/orderdesk/internal/usecase"
)

// ProductHandler serves versioned product mutations.
type ProductHandler struct {
	facade ProductFacade
}

// NewProductHandler constructs ProductHandler.
func NewProductHandler(facade ProductFacade) *ProductHandler {
	return &ProductHandler{facade: facade}
}

// Create handles POST /api/admin/product/create.
func (h *ProductHandler) Create(c *gin.Context) {
	var req dto.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	product, err := h.facade.CreateProduct(c.Request.Context(), CurrentSession(c).AccountID, productInput(req), req.Reason)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, product)
}

// Update handles POST /api/admin/product/update.
func (h *ProductHandler) Update(c *gin.Context) {
	var req dto.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ProductID == 0 {
		badRequest(c, "productId is required")
		return
	}

	product, err := h.facade.UpdateProduct(c.Request.Context(), CurrentSession(c).AccountID, req.ProductID, productInput(req), req.Reason)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, product)
}

// History handles POST /api/admin/version/product/history.
func (h *ProductHandler) History(c *gin.Context) {
	var req dto.ProductHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "productId is required")
		return
	}

	versions, err := h.facade.ProductHistory(c.Request.Context(), req.ProductID)
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]dto.ProductVersionResponse, 0, len(versions))
	for _, v := range versions {
		out = append(out, toVersionResponse(v))
	}
	respond(c, out)
}

// Version handles POST /api/admin/version/product/get.
func (h *ProductHandler) Version(c *gin.Context) {
	var req dto.ProductVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "productId and version are required")
		return
	}

	version, err := h.facade.ProductVersion(c.Request.Context(), req.ProductID, req.Version)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, toVersionResponse(*version))
}

// Restore handles POST /api/admin/version/product/restore.
func (h *ProductHandler) Restore(c *gin.Context) {
	var req dto.ProductVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "productId and version are required")
		return
	}

	product, err := h.facade.RestoreProduct(c.Request.Context(), CurrentSession(c).AccountID, req.ProductID, req.Version, req.Reason)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, product)
}

func productInput(req dto.ProductRequest) usecase.ProductInput {
	return usecase.ProductInput{
		Name:        req.Name,
		SKUFamilyID: req.SKUFamilyID,
		Price:       req.Price,
		Currency:    req.Currency,
		MOQ:         req.MOQ,
		Stock:       req.Stock,
		GroupCode:   req.GroupCode,
		TotalMOQ:    req.TotalMOQ,
	}
}

func toVersionResponse(v model.ProductVersion) dto.ProductVersionResponse {
	return dto.ProductVersionResponse{
		Version:      v.Version,
		ChangeType:   string(v.ChangeType),
		ChangeReason: v.ChangeReason,
		ChangedBy:    v.ChangedBy,
		Snapshot:     v.Snapshot,
		CreatedAt:    v.CreatedAt,
	}
}
