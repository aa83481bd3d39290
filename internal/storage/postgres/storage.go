package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/orderdesk/internal/domain/errors"
	"github.com/polkiloo/orderdesk/internal/domain/model"
	"github.com/polkiloo/orderdesk/internal/domain/repository"
)

type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (pgxPool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// Storage acts as repository facade backed by PostgreSQL.
type Storage struct {
	pool   pgxPool
	logger *slog.Logger
}

type rowScanner interface {
	Scan(dest ...any) error
}

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Factory methods for domain repositories.
func (s *Storage) Accounts() repository.AccountRepository {
	return &accountRepository{storage: s}
}

func (s *Storage) Orders() repository.OrderRepository {
	return &orderRepository{storage: s}
}

func (s *Storage) Payments() repository.PaymentRepository {
	return &paymentRepository{storage: s}
}

func (s *Storage) Negotiations() repository.NegotiationRepository {
	return &negotiationRepository{storage: s}
}

func (s *Storage) Products() repository.ProductRepository {
	return &productRepository{storage: s}
}

func (s *Storage) Wallets() repository.WalletRepository {
	return &walletRepository{storage: s}
}

func (s *Storage) Outbox() repository.OutboxRepository {
	return &outboxRepository{storage: s}
}

var _ repository.Factory = (*Storage)(nil)

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
            id BIGSERIAL PRIMARY KEY,
            login TEXT UNIQUE NOT NULL,
            password_hash TEXT NOT NULL,
            role TEXT NOT NULL,
            name TEXT NOT NULL DEFAULT '',
            email TEXT NOT NULL DEFAULT '',
            mobile TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS products (
            id BIGSERIAL PRIMARY KEY,
            name TEXT NOT NULL,
            sku_family_id TEXT NOT NULL DEFAULT '',
            price NUMERIC(18,2) NOT NULL DEFAULT 0,
            currency TEXT NOT NULL,
            moq INTEGER NOT NULL DEFAULT 0,
            stock INTEGER,
            group_code TEXT NOT NULL DEFAULT '',
            total_moq INTEGER NOT NULL DEFAULT 0,
            version INTEGER NOT NULL DEFAULT 1,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS product_versions (
            id BIGSERIAL PRIMARY KEY,
            product_id BIGINT NOT NULL REFERENCES products(id),
            version INTEGER NOT NULL,
            change_type TEXT NOT NULL,
            change_reason TEXT NOT NULL DEFAULT '',
            changed_by BIGINT NOT NULL,
            snapshot JSONB NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            UNIQUE (product_id, version)
        )`,
		`CREATE TABLE IF NOT EXISTS order_stages (
            current_location TEXT NOT NULL,
            delivery_location TEXT NOT NULL,
            currency TEXT NOT NULL,
            stages TEXT[] NOT NULL,
            PRIMARY KEY (current_location, delivery_location, currency)
        )`,
		`CREATE TABLE IF NOT EXISTS orders (
            id BIGSERIAL PRIMARY KEY,
            customer_id BIGINT NOT NULL REFERENCES accounts(id),
            status TEXT NOT NULL,
            current_location TEXT NOT NULL DEFAULT '',
            delivery_location TEXT NOT NULL DEFAULT '',
            currency TEXT NOT NULL,
            payment_method TEXT NOT NULL DEFAULT '',
            verified_by BIGINT,
            approved_by BIGINT,
            other_charges NUMERIC(18,2) NOT NULL DEFAULT 0,
            discount NUMERIC(18,2) NOT NULL DEFAULT 0,
            total_amount NUMERIC(18,2) NOT NULL DEFAULT 0,
            is_grouped_order BOOLEAN NOT NULL DEFAULT FALSE,
            quantities_modified BOOLEAN NOT NULL DEFAULT FALSE,
            confirmation_token TEXT UNIQUE,
            confirmation_expires_at TIMESTAMPTZ,
            is_confirmed_by_customer BOOLEAN NOT NULL DEFAULT FALSE,
            receiver_name TEXT NOT NULL DEFAULT '',
            receiver_mobile TEXT NOT NULL DEFAULT '',
            receiver_address TEXT NOT NULL DEFAULT '',
            delivery_otp_verified BOOLEAN NOT NULL DEFAULT FALSE,
            negotiation_id BIGINT,
            version BIGINT NOT NULL DEFAULT 0,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS order_items (
            id BIGSERIAL PRIMARY KEY,
            order_id BIGINT NOT NULL REFERENCES orders(id),
            product_id BIGINT NOT NULL REFERENCES products(id),
            sku_family_id TEXT NOT NULL DEFAULT '',
            product_name TEXT NOT NULL,
            quantity INTEGER NOT NULL,
            unit_price NUMERIC(18,2) NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS order_status_history (
            id BIGSERIAL PRIMARY KEY,
            order_id BIGINT NOT NULL REFERENCES orders(id),
            from_status TEXT NOT NULL,
            to_status TEXT NOT NULL,
            admin_id BIGINT NOT NULL,
            message TEXT NOT NULL DEFAULT '',
            changed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS payments (
            id BIGSERIAL PRIMARY KEY,
            order_id BIGINT NOT NULL REFERENCES orders(id),
            status TEXT NOT NULL,
            method TEXT NOT NULL,
            amount NUMERIC(18,2) NOT NULL,
            currency TEXT NOT NULL,
            conversion_rate NUMERIC(18,6) NOT NULL,
            calculated_amount NUMERIC(18,2) NOT NULL,
            transaction_ref TEXT NOT NULL DEFAULT '',
            otp_verified BOOLEAN NOT NULL DEFAULT FALSE,
            verified_by BIGINT,
            approved_by BIGINT,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS negotiations (
            id BIGSERIAL PRIMARY KEY,
            customer_id BIGINT NOT NULL REFERENCES accounts(id),
            product_id BIGINT NOT NULL REFERENCES products(id),
            status TEXT NOT NULL,
            offer_price NUMERIC(18,2) NOT NULL,
            previous_offer_price NUMERIC(18,2),
            quantity INTEGER NOT NULL,
            previous_quantity INTEGER,
            currency TEXT NOT NULL,
            from_user_type TEXT NOT NULL,
            round INTEGER NOT NULL DEFAULT 1,
            order_id BIGINT REFERENCES orders(id),
            current_location TEXT NOT NULL DEFAULT '',
            delivery_location TEXT NOT NULL DEFAULT '',
            confirmation_token TEXT UNIQUE,
            confirmation_expires_at TIMESTAMPTZ,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS wallets (
            customer_id BIGINT PRIMARY KEY REFERENCES accounts(id),
            current NUMERIC(18,2) NOT NULL DEFAULT 0,
            debited NUMERIC(18,2) NOT NULL DEFAULT 0
        )`,
		`CREATE TABLE IF NOT EXISTS wallet_entries (
            id BIGSERIAL PRIMARY KEY,
            customer_id BIGINT NOT NULL REFERENCES accounts(id),
            kind TEXT NOT NULL,
            amount NUMERIC(18,2) NOT NULL,
            reference TEXT NOT NULL DEFAULT '',
            reason TEXT NOT NULL DEFAULT '',
            admin_id BIGINT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS outbox_events (
            id BIGSERIAL PRIMARY KEY,
            aggregate_type TEXT NOT NULL,
            aggregate_id TEXT NOT NULL,
            event_type TEXT NOT NULL,
            payload JSONB NOT NULL,
            traceparent TEXT NOT NULL DEFAULT '',
            status TEXT NOT NULL DEFAULT 'pending',
            attempts INTEGER NOT NULL DEFAULT 0,
            last_error TEXT,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            claimed_at TIMESTAMPTZ,
            sent_at TIMESTAMPTZ
        )`,
		`CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_customer ON orders(customer_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id)`,
		`CREATE INDEX IF NOT EXISTS idx_payments_order ON payments(order_id)`,
		`CREATE INDEX IF NOT EXISTS idx_wallet_entries_customer ON wallet_entries(customer_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_outbox_pending ON outbox_events(status, id)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

// WithinTransaction executes function inside transaction boundary.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(tx)
	return err
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}

// insertEvents writes outbox rows; events without an aggregate ID are bound to aggregateID.
func insertEvents(ctx context.Context, tx pgx.Tx, aggregateID int64, events []model.Event) error {
	const query = `INSERT INTO outbox_events (aggregate_type, aggregate_id, event_type, payload, traceparent)
                   VALUES ($1, $2, $3, $4, $5)`
	for _, e := range events {
		id := e.AggregateID
		if id == "" {
			id = strconv.FormatInt(aggregateID, 10)
		}
		if _, err := tx.Exec(ctx, query, e.AggregateType, id, e.Type, e.Payload, e.Traceparent); err != nil {
			return fmt.Errorf("insert event %s: %w", e.Type, err)
		}
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domainErrors.ErrNotFound
	}
	return err
}

func uniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func parseDecimal(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse numeric %q: %w", raw, err)
	}
	return d, nil
}

// numerics collects NUMERIC columns selected as text and parses them once the row is scanned.
type numerics struct {
	fields []numericField
}

type numericField struct {
	raw *string
	dst *decimal.Decimal
}

func (n *numerics) into(dst *decimal.Decimal) *string {
	raw := new(string)
	n.fields = append(n.fields, numericField{raw: raw, dst: dst})
	return raw
}

func (n *numerics) apply() error {
	for _, f := range n.fields {
		d, err := parseDecimal(*f.raw)
		if err != nil {
			return err
		}
		*f.dst = d
	}
	return nil
}
