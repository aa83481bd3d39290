package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/orderdesk/internal/domain/model"
)

// ProductRequest creates or updates a product. ProductID is required for updates only.
type ProductRequest struct {
	ProductID   int64           `json:"productId"`
	Name        string          `json:"name"`
	SKUFamilyID string          `json:"skuFamilyId"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency"`
	MOQ         int             `json:"moq"`
	Stock       *int            `json:"stock"`
	GroupCode   string          `json:"groupCode"`
	TotalMOQ    int             `json:"totalMoq"`
	Reason      string          `json:"reason"`
}

// ProductHistoryRequest addresses a product's version log.
type ProductHistoryRequest struct {
	ProductID int64 `json:"productId" binding:"required"`
}

// ProductVersionRequest addresses one version, with an optional reason for restores.
type ProductVersionRequest struct {
	ProductID int64  `json:"productId" binding:"required"`
	Version   int    `json:"version" binding:"required"`
	Reason    string `json:"reason"`
}

// ProductVersionResponse is one entry of the version log.
type ProductVersionResponse struct {
	Version      int           `json:"version"`
	ChangeType   string        `json:"changeType"`
	ChangeReason string        `json:"changeReason"`
	ChangedBy    int64         `json:"changedBy"`
	Snapshot     model.Product `json:"snapshot"`
	CreatedAt    time.Time     `json:"createdAt"`
}
