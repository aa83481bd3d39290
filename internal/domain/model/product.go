package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product carries the catalogue data the quantity rules depend on.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	SKUFamilyID string          `json:"skuFamilyId"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency"`
	MOQ         int             `json:"moq"`
	Stock       *int            `json:"stock,omitempty"`
	GroupCode   string          `json:"groupCode,omitempty"`
	TotalMOQ    int             `json:"totalMoq,omitempty"`
	Version     int             `json:"version"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// ChangeType classifies a product version entry.
type ChangeType string

const (
	ChangeTypeCreate  ChangeType = "create"
	ChangeTypeUpdate  ChangeType = "update"
	ChangeTypeRestore ChangeType = "restore"
)

// ProductVersion is an immutable snapshot appended on every product mutation.
type ProductVersion struct {
	ID           int64
	ProductID    int64
	Version      int
	ChangeType   ChangeType
	ChangeReason string
	ChangedBy    int64
	Snapshot     Product
	CreatedAt    time.Time
}
