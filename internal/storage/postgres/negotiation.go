package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/orderdesk/internal/domain/errors"
	"github.com/polkiloo/orderdesk/internal/domain/model"
	"github.com/polkiloo/orderdesk/internal/domain/repository"
)

type negotiationRepository struct {
	storage *Storage
}

const negotiationColumns = `id, customer_id, product_id, status, offer_price::text, previous_offer_price::text,
       quantity, previous_quantity, currency, from_user_type, round, order_id, current_location, delivery_location,
       COALESCE(confirmation_token, ''), confirmation_expires_at, created_at, updated_at`

func scanNegotiation(row rowScanner) (*model.Negotiation, error) {
	var (
		n        model.Negotiation
		nums     numerics
		previous *string
	)
	err := row.Scan(
		&n.ID, &n.CustomerID, &n.ProductID, &n.Status, nums.into(&n.OfferPrice), &previous,
		&n.Quantity, &n.PreviousQuantity, &n.Currency, &n.FromUserType, &n.Round, &n.OrderID, &n.CurrentLocation, &n.DeliveryLocation,
		&n.ConfirmationToken, &n.ConfirmationExpiresAt, &n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := nums.apply(); err != nil {
		return nil, err
	}
	if previous != nil {
		d, err := parseDecimal(*previous)
		if err != nil {
			return nil, err
		}
		n.PreviousOfferPrice.Decimal = d
		n.PreviousOfferPrice.Valid = true
	}
	return &n, nil
}

func previousPriceArg(n *model.Negotiation) *string {
	if !n.PreviousOfferPrice.Valid {
		return nil
	}
	s := n.PreviousOfferPrice.Decimal.String()
	return &s
}

func (r *negotiationRepository) Create(ctx context.Context, n *model.Negotiation, events ...model.Event) error {
	const query = `INSERT INTO negotiations (customer_id, product_id, status, offer_price, quantity, currency,
                   from_user_type, round, current_location, delivery_location)
                   VALUES ($1, $2, $3, $4::numeric, $5, $6, $7, $8, $9, $10)
                   RETURNING id, created_at, updated_at`
	return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, query,
			n.CustomerID, n.ProductID, n.Status, n.OfferPrice.String(), n.Quantity, n.Currency,
			n.FromUserType, n.Round, n.CurrentLocation, n.DeliveryLocation,
		).Scan(&n.ID, &n.CreatedAt, &n.UpdatedAt)
		if err != nil {
			return err
		}
		return insertEvents(ctx, tx, n.ID, events)
	})
}

func (r *negotiationRepository) GetByID(ctx context.Context, id int64) (*model.Negotiation, error) {
	n, err := scanNegotiation(r.storage.pool.QueryRow(ctx, `SELECT `+negotiationColumns+` FROM negotiations WHERE id=$1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return n, nil
}

func (r *negotiationRepository) GetByConfirmationToken(ctx context.Context, token string) (*model.Negotiation, error) {
	n, err := scanNegotiation(r.storage.pool.QueryRow(ctx, `SELECT `+negotiationColumns+` FROM negotiations WHERE confirmation_token=$1`, token))
	if err != nil {
		return nil, notFound(err)
	}
	return n, nil
}

func (r *negotiationRepository) List(ctx context.Context, filter repository.NegotiationFilter) ([]model.Negotiation, error) {
	const query = `SELECT ` + negotiationColumns + ` FROM negotiations
                   WHERE ($1 = '' OR status = $1) AND ($2 = 0 OR customer_id = $2)
                   ORDER BY updated_at DESC, id DESC`
	rows, err := r.storage.pool.Query(ctx, query, string(filter.Status), filter.CustomerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]model.Negotiation, 0)
	for rows.Next() {
		n, err := scanNegotiation(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *negotiationRepository) Update(ctx context.Context, n *model.Negotiation, expectedRound int, events ...model.Event) error {
	const query = `UPDATE negotiations SET status=$1, offer_price=$2::numeric, previous_offer_price=$3::numeric,
                   quantity=$4, previous_quantity=$5, from_user_type=$6, round=$7, updated_at=NOW()
                   WHERE id=$8 AND round=$9 AND status=$10`
	return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, query,
			n.Status, n.OfferPrice.String(), previousPriceArg(n),
			n.Quantity, n.PreviousQuantity, n.FromUserType, n.Round,
			n.ID, expectedRound, model.NegotiationStatusOpen,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domainErrors.ErrStatusConflict
		}
		return insertEvents(ctx, tx, n.ID, events)
	})
}

func (r *negotiationRepository) SetConfirmationToken(ctx context.Context, n *model.Negotiation) error {
	const query = `UPDATE negotiations SET confirmation_token=NULLIF($1, ''), confirmation_expires_at=$2,
                   current_location=$3, delivery_location=$4, updated_at=NOW()
                   WHERE id=$5 AND order_id IS NULL`
	tag, err := r.storage.pool.Exec(ctx, query, n.ConfirmationToken, n.ConfirmationExpiresAt, n.CurrentLocation, n.DeliveryLocation, n.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrOrderAlreadyPlaced
	}
	return nil
}

func (r *negotiationRepository) PlaceOrder(ctx context.Context, n *model.Negotiation, order *model.Order, events ...model.Event) error {
	const linkQuery = `UPDATE negotiations SET order_id=$1, confirmation_token=NULL, confirmation_expires_at=NULL, updated_at=NOW()
                       WHERE id=$2 AND order_id IS NULL`
	return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		if err := insertOrder(ctx, tx, order); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, linkQuery, order.ID, n.ID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domainErrors.ErrOrderAlreadyPlaced
		}
		id := order.ID
		n.OrderID = &id
		n.ConfirmationToken = ""
		n.ConfirmationExpiresAt = nil
		return insertEvents(ctx, tx, order.ID, events)
	})
}
