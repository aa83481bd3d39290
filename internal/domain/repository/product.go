package repository

import (
	"context"

	"github.com/polkiloo/orderdesk/internal/domain/model"
)

// ProductRepository stores products together with their append-only version log.
type ProductRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Product, error)
	GetByIDs(ctx context.Context, ids []int64) (map[int64]model.Product, error)
	// Create inserts the product and its first version row in one transaction.
	// Events with an empty AggregateID receive the new product ID.
	Create(ctx context.Context, product *model.Product, version model.ProductVersion, events ...model.Event) error
	// Update applies the mutation only if the stored version equals expectedVersion and appends the version row.
	Update(ctx context.Context, product *model.Product, expectedVersion int, version model.ProductVersion, events ...model.Event) error
	ListVersions(ctx context.Context, productID int64) ([]model.ProductVersion, error)
	GetVersion(ctx context.Context, productID int64, version int) (*model.ProductVersion, error)
}
