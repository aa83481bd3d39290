package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/orderdesk/internal/domain/errors"
	"github.com/polkiloo/orderdesk/internal/domain/model"
)

type walletRepository struct {
	storage *Storage
}

func (r *walletRepository) GetSummary(ctx context.Context, customerID int64) (*model.WalletSummary, error) {
	var (
		summary model.WalletSummary
		nums    numerics
	)
	err := r.storage.pool.QueryRow(ctx, `SELECT current::text, debited::text FROM wallets WHERE customer_id=$1`, customerID).
		Scan(nums.into(&summary.Current), nums.into(&summary.Debited))
	if errors.Is(err, pgx.ErrNoRows) {
		return &model.WalletSummary{Current: decimal.Zero, Debited: decimal.Zero}, nil
	}
	if err != nil {
		return nil, err
	}
	if err := nums.apply(); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (r *walletRepository) Credit(ctx context.Context, entry model.WalletEntry, events ...model.Event) error {
	const upsert = `INSERT INTO wallets (customer_id, current, debited) VALUES ($1, $2::numeric, 0)
                    ON CONFLICT (customer_id) DO UPDATE SET current = wallets.current + EXCLUDED.current`
	return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, upsert, entry.CustomerID, entry.Amount.String()); err != nil {
			return err
		}
		if err := insertEntry(ctx, tx, entry); err != nil {
			return err
		}
		return insertEvents(ctx, tx, entry.CustomerID, events)
	})
}

func (r *walletRepository) Debit(ctx context.Context, entry model.WalletEntry, events ...model.Event) error {
	return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		var raw string
		err := tx.QueryRow(ctx, `SELECT current::text FROM wallets WHERE customer_id=$1 FOR UPDATE`, entry.CustomerID).Scan(&raw)
		if errors.Is(err, pgx.ErrNoRows) {
			return domainErrors.ErrInsufficientBalance
		}
		if err != nil {
			return err
		}
		current, err := parseDecimal(raw)
		if err != nil {
			return err
		}
		if current.LessThan(entry.Amount) {
			return domainErrors.ErrInsufficientBalance
		}

		const update = `UPDATE wallets SET current = current - $1::numeric, debited = debited + $1::numeric WHERE customer_id=$2`
		if _, err := tx.Exec(ctx, update, entry.Amount.String(), entry.CustomerID); err != nil {
			return err
		}
		if err := insertEntry(ctx, tx, entry); err != nil {
			return err
		}
		return insertEvents(ctx, tx, entry.CustomerID, events)
	})
}

func insertEntry(ctx context.Context, tx pgx.Tx, entry model.WalletEntry) error {
	const query = `INSERT INTO wallet_entries (customer_id, kind, amount, reference, reason, admin_id)
                   VALUES ($1, $2, $3::numeric, $4, $5, $6)`
	_, err := tx.Exec(ctx, query, entry.CustomerID, entry.Kind, entry.Amount.String(), entry.Reference, entry.Reason, entry.AdminID)
	return err
}

func (r *walletRepository) ListEntries(ctx context.Context, customerID int64) ([]model.WalletEntry, error) {
	const query = `SELECT id, customer_id, kind, amount::text, reference, reason, admin_id, created_at
                   FROM wallet_entries WHERE customer_id=$1 ORDER BY created_at DESC, id DESC`
	rows, err := r.storage.pool.Query(ctx, query, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]model.WalletEntry, 0)
	for rows.Next() {
		var (
			e    model.WalletEntry
			nums numerics
		)
		if err := rows.Scan(&e.ID, &e.CustomerID, &e.Kind, nums.into(&e.Amount), &e.Reference, &e.Reason, &e.AdminID, &e.CreatedAt); err != nil {
			return nil, err
		}
		if err := nums.apply(); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
