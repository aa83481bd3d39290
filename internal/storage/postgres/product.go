package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/orderdesk/internal/domain/errors"
	"github.com/polkiloo/orderdesk/internal/domain/model"
)

type productRepository struct {
	storage *Storage
}

const productColumns = `id, name, sku_family_id, price::text, currency, moq, stock, group_code, total_moq, version, updated_at`

func scanProduct(row rowScanner) (*model.Product, error) {
	var (
		p    model.Product
		nums numerics
	)
	err := row.Scan(&p.ID, &p.Name, &p.SKUFamilyID, nums.into(&p.Price), &p.Currency, &p.MOQ, &p.Stock,
		&p.GroupCode, &p.TotalMOQ, &p.Version, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := nums.apply(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	p, err := scanProduct(r.storage.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

func (r *productRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]model.Product, error) {
	result := make(map[int64]model.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	rows, err := r.storage.pool.Query(ctx, `SELECT `+productColumns+` FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result[p.ID] = *p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *productRepository) Create(ctx context.Context, p *model.Product, version model.ProductVersion, events ...model.Event) error {
	const query = `INSERT INTO products (name, sku_family_id, price, currency, moq, stock, group_code, total_moq, version)
                   VALUES ($1, $2, $3::numeric, $4, $5, $6, $7, $8, $9)
                   RETURNING id, updated_at`
	return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, query,
			p.Name, p.SKUFamilyID, p.Price.String(), p.Currency, p.MOQ, p.Stock, p.GroupCode, p.TotalMOQ, p.Version,
		).Scan(&p.ID, &p.UpdatedAt)
		if err != nil {
			return err
		}
		if err := insertVersion(ctx, tx, p, version); err != nil {
			return err
		}
		return insertEvents(ctx, tx, p.ID, events)
	})
}

func (r *productRepository) Update(ctx context.Context, p *model.Product, expectedVersion int, version model.ProductVersion, events ...model.Event) error {
	const query = `UPDATE products SET name=$1, sku_family_id=$2, price=$3::numeric, currency=$4, moq=$5, stock=$6,
                   group_code=$7, total_moq=$8, version=$9, updated_at=NOW()
                   WHERE id=$10 AND version=$11
                   RETURNING updated_at`
	return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, query,
			p.Name, p.SKUFamilyID, p.Price.String(), p.Currency, p.MOQ, p.Stock,
			p.GroupCode, p.TotalMOQ, p.Version, p.ID, expectedVersion,
		).Scan(&p.UpdatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			return domainErrors.ErrStatusConflict
		}
		if err != nil {
			return err
		}
		if err := insertVersion(ctx, tx, p, version); err != nil {
			return err
		}
		return insertEvents(ctx, tx, p.ID, events)
	})
}

// insertVersion appends the version row with a snapshot of the stored product.
func insertVersion(ctx context.Context, tx pgx.Tx, p *model.Product, version model.ProductVersion) error {
	const query = `INSERT INTO product_versions (product_id, version, change_type, change_reason, changed_by, snapshot)
                   VALUES ($1, $2, $3, $4, $5, $6)`
	snapshot, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	_, err = tx.Exec(ctx, query, p.ID, p.Version, version.ChangeType, version.ChangeReason, version.ChangedBy, snapshot)
	if uniqueViolation(err) {
		return domainErrors.ErrStatusConflict
	}
	return err
}

const productVersionColumns = `id, product_id, version, change_type, change_reason, changed_by, snapshot, created_at`

func scanProductVersion(row rowScanner) (*model.ProductVersion, error) {
	var (
		v        model.ProductVersion
		snapshot []byte
	)
	if err := row.Scan(&v.ID, &v.ProductID, &v.Version, &v.ChangeType, &v.ChangeReason, &v.ChangedBy, &snapshot, &v.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(snapshot, &v.Snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &v, nil
}

func (r *productRepository) ListVersions(ctx context.Context, productID int64) ([]model.ProductVersion, error) {
	const query = `SELECT ` + productVersionColumns + ` FROM product_versions WHERE product_id=$1 ORDER BY version`
	rows, err := r.storage.pool.Query(ctx, query, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]model.ProductVersion, 0)
	for rows.Next() {
		v, err := scanProductVersion(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *productRepository) GetVersion(ctx context.Context, productID int64, version int) (*model.ProductVersion, error) {
	const query = `SELECT ` + productVersionColumns + ` FROM product_versions WHERE product_id=$1 AND version=$2`
	v, err := scanProductVersion(r.storage.pool.QueryRow(ctx, query, productID, version))
	if err != nil {
		return nil, notFound(err)
	}
	return v, nil
}
