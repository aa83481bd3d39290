package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/orderdesk/internal/domain/errors"
	"github.com/polkiloo/orderdesk/internal/domain/model"
	"github.com/polkiloo/orderdesk/internal/domain/repository"
)

const aggregateProduct = "product"

// ProductInput holds the editable product attributes.
type ProductInput struct {
	Name        string
	SKUFamilyID string
	Price       decimal.Decimal
	Currency    string
	MOQ         int
	Stock       *int
	GroupCode   string
	TotalMOQ    int
}

type productVersionEvent struct {
	ProductID    int64  `json:"productId"`
	Version      int    `json:"version"`
	ChangeType   string `json:"changeType"`
	ChangeReason string `json:"changeReason,omitempty"`
	ChangedBy    int64  `json:"changedBy"`
}

// ProductUseCase mutates products and keeps their version log.
type ProductUseCase struct {
	products repository.ProductRepository
}

// NewProductUseCase constructs ProductUseCase.
func NewProductUseCase(products repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{products: products}
}

// Get returns the current product state.
func (u *ProductUseCase) Get(ctx context.Context, id int64) (*model.Product, error) {
	return u.products.GetByID(ctx, id)
}

// Create inserts a product as version 1.
func (u *ProductUseCase) Create(ctx context.Context, adminID int64, in ProductInput, reason string) (*model.Product, error) {
	p := &model.Product{}
	if err := applyProductInput(p, in); err != nil {
		return nil, err
	}
	p.Version = 1

	version, event, err := u.version(ctx, p, model.ChangeTypeCreate, reason, adminID)
	if err != nil {
		return nil, err
	}
	event.AggregateID = ""
	if err := u.products.Create(ctx, p, version, event); err != nil {
		return nil, err
	}
	return p, nil
}

// Update applies in to the product and appends a new version.
func (u *ProductUseCase) Update(ctx context.Context, adminID, productID int64, in ProductInput, reason string) (*model.Product, error) {
	p, err := u.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	expected := p.Version
	if err := applyProductInput(p, in); err != nil {
		return nil, err
	}
	p.Version = expected + 1

	version, event, err := u.version(ctx, p, model.ChangeTypeUpdate, reason, adminID)
	if err != nil {
		return nil, err
	}
	if err := u.products.Update(ctx, p, expected, version, event); err != nil {
		return nil, err
	}
	return p, nil
}

// History lists every version of a product, oldest first.
func (u *ProductUseCase) History(ctx context.Context, productID int64) ([]model.ProductVersion, error) {
	if _, err := u.products.GetByID(ctx, productID); err != nil {
		return nil, err
	}
	return u.products.ListVersions(ctx, productID)
}

// GetVersion returns a single version snapshot.
func (u *ProductUseCase) GetVersion(ctx context.Context, productID int64, version int) (*model.ProductVersion, error) {
	return u.products.GetVersion(ctx, productID, version)
}

// Restore re-applies an earlier snapshot as a new version with change type restore.
func (u *ProductUseCase) Restore(ctx context.Context, adminID, productID int64, version int, reason string) (*model.Product, error) {
	target, err := u.products.GetVersion(ctx, productID, version)
	if err != nil {
		return nil, err
	}
	current, err := u.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	restored := target.Snapshot
	restored.ID = current.ID
	restored.Version = current.Version + 1
	if strings.TrimSpace(reason) == "" {
		reason = fmt.Sprintf("restored from version %d", version)
	}

	entry, event, err := u.version(ctx, &restored, model.ChangeTypeRestore, reason, adminID)
	if err != nil {
		return nil, err
	}
	if err := u.products.Update(ctx, &restored, current.Version, entry, event); err != nil {
		return nil, err
	}
	return &restored, nil
}

func (u *ProductUseCase) version(ctx context.Context, p *model.Product, change model.ChangeType, reason string, adminID int64) (model.ProductVersion, model.Event, error) {
	version := model.ProductVersion{
		ProductID:    p.ID,
		Version:      p.Version,
		ChangeType:   change,
		ChangeReason: strings.TrimSpace(reason),
		ChangedBy:    adminID,
		Snapshot:     *p,
	}
	event, err := newEvent(ctx, aggregateProduct, p.ID, model.EventProductVersioned, productVersionEvent{
		ProductID:    p.ID,
		Version:      p.Version,
		ChangeType:   string(change),
		ChangeReason: version.ChangeReason,
		ChangedBy:    adminID,
	})
	return version, event, err
}

func applyProductInput(p *model.Product, in ProductInput) error {
	name := strings.TrimSpace(in.Name)
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))

	var violations []string
	if name == "" {
		violations = append(violations, "name is required")
	}
	if currency == "" {
		violations = append(violations, "currency is required")
	}
	if in.Price.IsNegative() {
		violations = append(violations, "price must not be negative")
	}
	if in.MOQ < 0 || in.TotalMOQ < 0 {
		violations = append(violations, "minimum order quantities must not be negative")
	}
	if in.Stock != nil && *in.Stock < 0 {
		violations = append(violations, "stock must not be negative")
	}
	if in.TotalMOQ > 0 && strings.TrimSpace(in.GroupCode) == "" {
		violations = append(violations, "totalMoq requires a groupCode")
	}
	if len(violations) > 0 {
		return &domainErrors.ValidationError{Violations: violations}
	}

	p.Name = name
	p.SKUFamilyID = strings.TrimSpace(in.SKUFamilyID)
	p.Price = in.Price
	p.Currency = currency
	p.MOQ = in.MOQ
	p.Stock = in.Stock
	p.GroupCode = strings.TrimSpace(in.GroupCode)
	p.TotalMOQ = in.TotalMOQ
	return nil
}
