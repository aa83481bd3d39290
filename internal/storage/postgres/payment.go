package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/orderdesk/internal/domain/errors"
	"github.com/polkiloo/orderdesk/internal/domain/model"
	"github.com/polkiloo/orderdesk/internal/domain/repository"
)

type paymentRepository struct {
	storage *Storage
}

const paymentColumns = `id, order_id, status, method, amount::text, currency, conversion_rate::text,
       calculated_amount::text, transaction_ref, otp_verified, verified_by, approved_by, created_at, updated_at`

func scanPayment(row rowScanner) (*model.Payment, error) {
	var (
		p    model.Payment
		nums numerics
	)
	err := row.Scan(
		&p.ID, &p.OrderID, &p.Status, &p.Method, nums.into(&p.Amount), &p.Currency, nums.into(&p.ConversionRate),
		nums.into(&p.CalculatedAmount), &p.TransactionRef, &p.OTPVerified, &p.VerifiedBy, &p.ApprovedBy, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := nums.apply(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *paymentRepository) Create(ctx context.Context, payment *model.Payment, events ...model.Event) error {
	const query = `INSERT INTO payments (order_id, status, method, amount, currency, conversion_rate, calculated_amount, transaction_ref)
                   VALUES ($1, $2, $3, $4::numeric, $5, $6::numeric, $7::numeric, $8)
                   RETURNING id, created_at, updated_at`
	return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, query,
			payment.OrderID, payment.Status, payment.Method, payment.Amount.String(), payment.Currency,
			payment.ConversionRate.String(), payment.CalculatedAmount.String(), payment.TransactionRef,
		).Scan(&payment.ID, &payment.CreatedAt, &payment.UpdatedAt)
		if err != nil {
			return err
		}
		return insertEvents(ctx, tx, payment.ID, events)
	})
}

func (r *paymentRepository) GetByID(ctx context.Context, id int64) (*model.Payment, error) {
	payment, err := scanPayment(r.storage.pool.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id=$1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return payment, nil
}

func (r *paymentRepository) ListByOrder(ctx context.Context, orderID int64) ([]model.Payment, error) {
	rows, err := r.storage.pool.Query(ctx, `SELECT `+paymentColumns+` FROM payments WHERE order_id=$1 ORDER BY created_at, id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]model.Payment, 0)
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *paymentRepository) Update(ctx context.Context, payment *model.Payment, expected model.PaymentStatus, events ...model.Event) error {
	const query = `UPDATE payments SET status=$1, method=$2, amount=$3::numeric, currency=$4, conversion_rate=$5::numeric,
                   calculated_amount=$6::numeric, transaction_ref=$7, otp_verified=$8, verified_by=$9, approved_by=$10,
                   updated_at=NOW()
                   WHERE id=$11 AND status=$12`
	return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, query,
			payment.Status, payment.Method, payment.Amount.String(), payment.Currency, payment.ConversionRate.String(),
			payment.CalculatedAmount.String(), payment.TransactionRef, payment.OTPVerified, payment.VerifiedBy, payment.ApprovedBy,
			payment.ID, expected,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domainErrors.ErrStatusConflict
		}
		return insertEvents(ctx, tx, payment.ID, events)
	})
}

// MarkPaid locks the order row first so concurrent settlements of one order run one after
// another and each sees the payments the previous one marked paid.
func (r *paymentRepository) MarkPaid(ctx context.Context, payment *model.Payment, settle repository.SettleFunc, events ...model.Event) (*model.StatusChange, error) {
	const (
		lockOrder = `SELECT ` + orderColumns + ` FROM orders WHERE id=$1 FOR UPDATE`
		markPaid  = `UPDATE payments SET status=$1, approved_by=$2, updated_at=NOW() WHERE id=$3 AND status=$4`
		sumPaid   = `SELECT COALESCE(SUM(calculated_amount), 0)::text FROM payments WHERE order_id=$1 AND status=$2`
	)
	var applied *model.StatusChange
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		order, err := scanOrder(tx.QueryRow(ctx, lockOrder, payment.OrderID))
		if err != nil {
			return notFound(err)
		}

		tag, err := tx.Exec(ctx, markPaid, model.PaymentStatusPaid, payment.ApprovedBy, payment.ID, model.PaymentStatusApproved)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domainErrors.ErrStatusConflict
		}

		var raw string
		if err := tx.QueryRow(ctx, sumPaid, payment.OrderID, model.PaymentStatusPaid).Scan(&raw); err != nil {
			return err
		}
		paid, err := decimal.NewFromString(raw)
		if err != nil {
			return fmt.Errorf("parse paid total %q: %w", raw, err)
		}

		if err := insertEvents(ctx, tx, payment.ID, events); err != nil {
			return err
		}
		if settle == nil {
			return nil
		}
		change, extra, err := settle(order, paid)
		if err != nil || change == nil {
			return err
		}
		if err := advanceStatus(ctx, tx, *change); err != nil {
			return err
		}
		if err := insertEvents(ctx, tx, order.ID, extra); err != nil {
			return err
		}
		applied = change
		return nil
	})
	if err != nil {
		return nil, err
	}
	return applied, nil
}

func (r *paymentRepository) MarkOTPVerified(ctx context.Context, paymentID int64) error {
	tag, err := r.storage.pool.Exec(ctx, `UPDATE payments SET otp_verified=TRUE, updated_at=NOW() WHERE id=$1`, paymentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}
