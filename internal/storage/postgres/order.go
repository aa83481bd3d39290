package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/orderdesk/internal/domain/errors"
	"github.com/polkiloo/orderdesk/internal/domain/model"
)

type orderRepository struct {
	storage *Storage
}

const orderColumns = `id, customer_id, status, current_location, delivery_location, currency, payment_method,
       verified_by, approved_by, other_charges::text, discount::text, total_amount::text,
       is_grouped_order, quantities_modified, COALESCE(confirmation_token, ''), confirmation_expires_at,
       is_confirmed_by_customer, receiver_name, receiver_mobile, receiver_address, delivery_otp_verified,
       negotiation_id, version, created_at, updated_at`

const orderItemColumns = `id, order_id, product_id, sku_family_id, product_name, quantity, unit_price::text`

func scanOrder(row rowScanner) (*model.Order, error) {
	var (
		o    model.Order
		nums numerics
	)
	err := row.Scan(
		&o.ID, &o.CustomerID, &o.Status, &o.CurrentLocation, &o.DeliveryLocation, &o.Currency, &o.PaymentMethod,
		&o.VerifiedBy, &o.ApprovedBy, nums.into(&o.OtherCharges), nums.into(&o.Discount), nums.into(&o.TotalAmount),
		&o.IsGroupedOrder, &o.QuantitiesModified, &o.ConfirmationToken, &o.ConfirmationExpiresAt,
		&o.IsConfirmedByCustomer, &o.Receiver.Name, &o.Receiver.Mobile, &o.Receiver.Address, &o.DeliveryOTPVerified,
		&o.NegotiationID, &o.Version, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := nums.apply(); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id)
}

func (r *orderRepository) GetByConfirmationToken(ctx context.Context, token string) (*model.Order, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE confirmation_token=$1`, token)
}

func (r *orderRepository) getOne(ctx context.Context, query string, arg any) (*model.Order, error) {
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query, arg))
	if err != nil {
		return nil, notFound(err)
	}
	items, err := r.items(ctx, []int64{order.ID})
	if err != nil {
		return nil, err
	}
	order.CartItems = items[order.ID]
	return order, nil
}

func (r *orderRepository) ListByStatus(ctx context.Context, status model.OrderStatus, limit int) ([]model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders
                   WHERE ($1 = '' OR status = $1)
                   ORDER BY created_at DESC, id DESC
                   LIMIT $2`
	return r.list(ctx, query, string(status), limit)
}

func (r *orderRepository) ListByCustomer(ctx context.Context, customerID int64) ([]model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE customer_id=$1 ORDER BY created_at DESC, id DESC`
	return r.list(ctx, query, customerID)
}

func (r *orderRepository) list(ctx context.Context, query string, args ...any) ([]model.Order, error) {
	rows, err := r.storage.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]model.Order, 0)
	ids := make([]int64, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if len(ids) == 0 {
		return result, nil
	}
	items, err := r.items(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range result {
		result[i].CartItems = items[result[i].ID]
	}
	return result, nil
}

func (r *orderRepository) items(ctx context.Context, orderIDs []int64) (map[int64][]model.CartItem, error) {
	const query = `SELECT ` + orderItemColumns + ` FROM order_items WHERE order_id = ANY($1) ORDER BY id`
	rows, err := r.storage.pool.Query(ctx, query, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[int64][]model.CartItem, len(orderIDs))
	for rows.Next() {
		var (
			item    model.CartItem
			orderID int64
			nums    numerics
		)
		if err := rows.Scan(&item.ID, &orderID, &item.ProductID, &item.SKUFamilyID, &item.ProductName, &item.Quantity, nums.into(&item.UnitPrice)); err != nil {
			return nil, err
		}
		if err := nums.apply(); err != nil {
			return nil, err
		}
		result[orderID] = append(result[orderID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *orderRepository) Stages(ctx context.Context, key model.StageKey) ([]model.OrderStatus, error) {
	const query = `SELECT stages FROM order_stages WHERE current_location=$1 AND delivery_location=$2 AND currency=$3`
	var raw []string
	if err := r.storage.pool.QueryRow(ctx, query, key.CurrentLocation, key.DeliveryLocation, key.Currency).Scan(&raw); err != nil {
		return nil, notFound(err)
	}
	stages := make([]model.OrderStatus, 0, len(raw))
	for _, s := range raw {
		stages = append(stages, model.OrderStatus(s))
	}
	return stages, nil
}

func (r *orderRepository) History(ctx context.Context, orderID int64) ([]model.StatusChange, error) {
	const query = `SELECT id, order_id, from_status, to_status, admin_id, message, changed_at
                   FROM order_status_history WHERE order_id=$1 ORDER BY changed_at, id`
	rows, err := r.storage.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]model.StatusChange, 0)
	for rows.Next() {
		var c model.StatusChange
		if err := rows.Scan(&c.ID, &c.OrderID, &c.From, &c.To, &c.AdminID, &c.Message, &c.ChangedAt); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order, events ...model.Event) error {
	return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		if err := insertOrder(ctx, tx, order); err != nil {
			return err
		}
		return insertEvents(ctx, tx, order.ID, events)
	})
}

// insertOrder writes the order row and its cart items, filling generated identifiers.
func insertOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	const insertOrderQuery = `INSERT INTO orders (customer_id, status, current_location, delivery_location, currency,
                              payment_method, other_charges, discount, total_amount, is_grouped_order,
                              is_confirmed_by_customer, receiver_name, receiver_mobile, receiver_address, negotiation_id)
                              VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, $8::numeric, $9::numeric, $10, $11, $12, $13, $14, $15)
                              RETURNING id, created_at, updated_at`
	err := tx.QueryRow(ctx, insertOrderQuery,
		order.CustomerID, order.Status, order.CurrentLocation, order.DeliveryLocation, order.Currency,
		order.PaymentMethod, order.OtherCharges.String(), order.Discount.String(), order.TotalAmount.String(), order.IsGroupedOrder,
		order.IsConfirmedByCustomer, order.Receiver.Name, order.Receiver.Mobile, order.Receiver.Address, order.NegotiationID,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return err
	}

	const insertItemQuery = `INSERT INTO order_items (order_id, product_id, sku_family_id, product_name, quantity, unit_price)
                             VALUES ($1, $2, $3, $4, $5, $6::numeric) RETURNING id`
	for i := range order.CartItems {
		item := &order.CartItems[i]
		if err := tx.QueryRow(ctx, insertItemQuery,
			order.ID, item.ProductID, item.SKUFamilyID, item.ProductName, item.Quantity, item.UnitPrice.String(),
		).Scan(&item.ID); err != nil {
			return err
		}
	}
	return nil
}

// TransitionStatus writes the order as read plus its new status. The row must still be at
// change.From and at order.Version, so a quantity edit or confirmation request committed
// after the read fails the write instead of being overwritten.
func (r *orderRepository) TransitionStatus(ctx context.Context, order *model.Order, change model.StatusChange, events ...model.Event) error {
	const updateQuery = `UPDATE orders SET status=$1, payment_method=$2, verified_by=$3, approved_by=$4,
                         other_charges=$5::numeric, discount=$6::numeric, total_amount=$7::numeric,
                         version=version+1, updated_at=NOW()
                         WHERE id=$8 AND status=$9 AND version=$10`
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, updateQuery,
			order.Status, order.PaymentMethod, order.VerifiedBy, order.ApprovedBy,
			order.OtherCharges.String(), order.Discount.String(), order.TotalAmount.String(),
			order.ID, change.From, order.Version,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domainErrors.ErrStatusConflict
		}
		if err := insertStatusChange(ctx, tx, change); err != nil {
			return err
		}
		return insertEvents(ctx, tx, order.ID, events)
	})
	if err != nil {
		return err
	}
	order.Version++
	return nil
}

func insertStatusChange(ctx context.Context, tx pgx.Tx, change model.StatusChange) error {
	const query = `INSERT INTO order_status_history (order_id, from_status, to_status, admin_id, message, changed_at)
                   VALUES ($1, $2, $3, $4, $5, $6)`
	changedAt := change.ChangedAt
	if changedAt.IsZero() {
		changedAt = time.Now()
	}
	_, err := tx.Exec(ctx, query, change.OrderID, change.From, change.To, change.AdminID, change.Message, changedAt)
	return err
}

// advanceStatus is the compare-and-set status move used by payment settlement.
func advanceStatus(ctx context.Context, tx pgx.Tx, change model.StatusChange) error {
	const query = `UPDATE orders SET status=$1, version=version+1, updated_at=NOW() WHERE id=$2 AND status=$3`
	tag, err := tx.Exec(ctx, query, change.To, change.OrderID, change.From)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrStatusConflict
	}
	return insertStatusChange(ctx, tx, change)
}

func (r *orderRepository) SaveQuantities(ctx context.Context, order *model.Order, events ...model.Event) error {
	const updateOrder = `UPDATE orders SET quantities_modified=$1, total_amount=$2::numeric,
                         confirmation_token=NULLIF($3, ''), confirmation_expires_at=$4, is_confirmed_by_customer=$5,
                         version=version+1, updated_at=NOW()
                         WHERE id=$6 AND status=$7 AND version=$8`
	const updateItem = `UPDATE order_items SET quantity=$1 WHERE id=$2 AND order_id=$3`
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, updateOrder,
			order.QuantitiesModified, order.TotalAmount.String(),
			order.ConfirmationToken, order.ConfirmationExpiresAt, order.IsConfirmedByCustomer,
			order.ID, model.OrderStatusRequested, order.Version,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domainErrors.ErrStatusConflict
		}
		for _, item := range order.CartItems {
			if _, err := tx.Exec(ctx, updateItem, item.Quantity, item.ID, order.ID); err != nil {
				return err
			}
		}
		return insertEvents(ctx, tx, order.ID, events)
	})
	if err != nil {
		return err
	}
	order.Version++
	return nil
}

func (r *orderRepository) SetConfirmationToken(ctx context.Context, order *model.Order, events ...model.Event) error {
	const query = `UPDATE orders SET confirmation_token=NULLIF($1, ''), confirmation_expires_at=$2,
                   is_confirmed_by_customer=FALSE, version=version+1, updated_at=NOW()
                   WHERE id=$3 AND status=$4 AND version=$5`
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, query,
			order.ConfirmationToken, order.ConfirmationExpiresAt, order.ID, model.OrderStatusRequested, order.Version,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domainErrors.ErrStatusConflict
		}
		return insertEvents(ctx, tx, order.ID, events)
	})
	if err != nil {
		return err
	}
	order.Version++
	return nil
}

func (r *orderRepository) ConfirmModification(ctx context.Context, orderID int64, token string, events ...model.Event) error {
	const query = `UPDATE orders SET confirmation_token=NULL, confirmation_expires_at=NULL,
                   is_confirmed_by_customer=TRUE, version=version+1, updated_at=NOW()
                   WHERE id=$1 AND confirmation_token=$2`
	return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, query, orderID, token)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domainErrors.ErrNotFound
		}
		return insertEvents(ctx, tx, orderID, events)
	})
}

// UpdateReceiver keeps an earlier delivery OTP verification only while the mobile number is unchanged.
func (r *orderRepository) UpdateReceiver(ctx context.Context, orderID int64, receiver model.ReceiverDetails) error {
	const query = `UPDATE orders SET delivery_otp_verified = (delivery_otp_verified AND receiver_mobile = $2),
                   receiver_name=$1, receiver_mobile=$2, receiver_address=$3, version=version+1, updated_at=NOW()
                   WHERE id=$4`
	tag, err := r.storage.pool.Exec(ctx, query, receiver.Name, receiver.Mobile, receiver.Address, orderID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *orderRepository) MarkDeliveryOTPVerified(ctx context.Context, orderID int64, mobile string) error {
	const query = `UPDATE orders SET delivery_otp_verified=TRUE, version=version+1, updated_at=NOW()
                   WHERE id=$1 AND receiver_mobile=$2`
	tag, err := r.storage.pool.Exec(ctx, query, orderID, mobile)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrStatusConflict
	}
	return nil
}
