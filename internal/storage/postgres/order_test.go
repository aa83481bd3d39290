package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmockv3 "github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/orderdesk/internal/domain/errors"
	"github.com/polkiloo/orderdesk/internal/domain/model"
)

var orderRowColumns = []string{
	"id", "customer_id", "status", "current_location", "delivery_location", "currency", "payment_method",
	"verified_by", "approved_by", "other_charges", "discount", "total_amount",
	"is_grouped_order", "quantities_modified", "confirmation_token", "confirmation_expires_at",
	"is_confirmed_by_customer", "receiver_name", "receiver_mobile", "receiver_address", "delivery_otp_verified",
	"negotiation_id", "version", "created_at", "updated_at",
}

var orderItemRowColumns = []string{"id", "order_id", "product_id", "sku_family_id", "product_name", "quantity", "unit_price"}

func addOrderRow(rows *pgxmockv3.Rows, id int64, status model.OrderStatus, verifiedBy *int64, now time.Time) *pgxmockv3.Rows {
	return rows.AddRow(
		id, int64(7), status, "Dubai", "Riyadh", "AED", "cash",
		verifiedBy, nil, "5.00", "0.00", "55.00",
		false, false, "", nil,
		false, "Sam", "+971500000", "Warehouse 4", false,
		nil, int64(4), now, now,
	)
}

func TestOrderRepositoryGetByID(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}
	ctx := context.Background()
	now := time.Now()
	admin := int64(3)

	mock.ExpectQuery("FROM orders WHERE id=").WithArgs(int64(10)).
		WillReturnRows(addOrderRow(pgxmockv3.NewRows(orderRowColumns), 10, model.OrderStatusVerify, &admin, now))
	mock.ExpectQuery("FROM order_items WHERE order_id = ANY").WithArgs([]int64{10}).
		WillReturnRows(pgxmockv3.NewRows(orderItemRowColumns).
			AddRow(int64(1), int64(10), int64(100), "FAM", "Widget", 5, "10.00"))

	order, err := repo.GetByID(ctx, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Status != model.OrderStatusVerify || order.VerifiedBy == nil || *order.VerifiedBy != 3 || order.Version != 4 {
		t.Fatalf("unexpected order: %+v", order)
	}
	if !order.TotalAmount.Equal(decimal.RequireFromString("55")) || !order.OtherCharges.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("unexpected amounts: total=%s charges=%s", order.TotalAmount, order.OtherCharges)
	}
	if len(order.CartItems) != 1 || order.CartItems[0].Quantity != 5 || !order.CartItems[0].UnitPrice.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("unexpected items: %+v", order.CartItems)
	}
	if order.Receiver.Mobile != "+971500000" || order.ConfirmationExpiresAt != nil {
		t.Fatalf("unexpected receiver or confirmation: %+v", order)
	}

	mock.ExpectQuery("FROM orders WHERE id=").WithArgs(int64(11)).WillReturnError(pgx.ErrNoRows)
	if _, err := repo.GetByID(ctx, 11); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectQuery("FROM orders WHERE confirmation_token=").WithArgs("tok").WillReturnError(pgx.ErrNoRows)
	if _, err := repo.GetByConfirmationToken(ctx, "tok"); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	expectNoError(t, mock)
}

func TestOrderRepositoryList(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}
	ctx := context.Background()
	now := time.Now()

	rows := pgxmockv3.NewRows(orderRowColumns)
	addOrderRow(rows, 2, model.OrderStatusRequested, nil, now)
	addOrderRow(rows, 1, model.OrderStatusRequested, nil, now)
	mock.ExpectQuery("FROM orders").WithArgs("requested", 50).WillReturnRows(rows)
	mock.ExpectQuery("FROM order_items WHERE order_id = ANY").WithArgs([]int64{2, 1}).
		WillReturnRows(pgxmockv3.NewRows(orderItemRowColumns).
			AddRow(int64(5), int64(1), int64(100), "", "Widget", 5, "10").
			AddRow(int64(6), int64(2), int64(101), "", "Bolt", 8, "1.5").
			AddRow(int64(7), int64(2), int64(102), "", "Nut", 12, "0.5"))

	orders, err := repo.ListByStatus(ctx, model.OrderStatusRequested, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(orders) != 2 || orders[0].ID != 2 || len(orders[0].CartItems) != 2 || len(orders[1].CartItems) != 1 {
		t.Fatalf("unexpected orders: %+v", orders)
	}

	mock.ExpectQuery("FROM orders WHERE customer_id=").WithArgs(int64(7)).WillReturnRows(pgxmockv3.NewRows(orderRowColumns))
	orders, err = repo.ListByCustomer(ctx, 7)
	if err != nil || len(orders) != 0 {
		t.Fatalf("expected empty list, got %+v err=%v", orders, err)
	}

	mock.ExpectQuery("FROM orders").WillReturnError(errors.New("boom"))
	if _, err := repo.ListByStatus(ctx, "", 10); err == nil {
		t.Fatal("expected error")
	}

	expectNoError(t, mock)
}

func TestOrderRepositoryListRowsError(t *testing.T) {
	storage := &Storage{pool: &rowsErrorPool{rows: &errorRows{err: errors.New("rows err")}}}
	repo := &orderRepository{storage: storage}
	if _, err := repo.ListByCustomer(context.Background(), 1); err == nil {
		t.Fatal("expected rows error")
	}
}

func TestOrderRepositoryStagesAndHistory(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}
	ctx := context.Background()
	key := model.StageKey{CurrentLocation: "Dubai", DeliveryLocation: "Dubai", Currency: "AED"}

	mock.ExpectQuery("SELECT stages FROM order_stages").WithArgs("Dubai", "Dubai", "AED").
		WillReturnRows(pgxmockv3.NewRows([]string{"stages"}).AddRow([]string{"requested", "approved", "delivered"}))
	stages, err := repo.Stages(ctx, key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stages) != 3 || stages[1] != model.OrderStatusApproved {
		t.Fatalf("unexpected stages: %v", stages)
	}

	mock.ExpectQuery("SELECT stages FROM order_stages").WillReturnError(pgx.ErrNoRows)
	if _, err := repo.Stages(ctx, key); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	now := time.Now()
	mock.ExpectQuery("FROM order_status_history WHERE order_id=").WithArgs(int64(10)).
		WillReturnRows(pgxmockv3.NewRows([]string{"id", "order_id", "from_status", "to_status", "admin_id", "message", "changed_at"}).
			AddRow(int64(1), int64(10), model.OrderStatusRequested, model.OrderStatusVerify, int64(3), "", now).
			AddRow(int64(2), int64(10), model.OrderStatusVerify, model.OrderStatusApproved, int64(4), "ok", now))
	history, err := repo.History(ctx, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(history) != 2 || history[1].To != model.OrderStatusApproved || history[1].AdminID != 4 {
		t.Fatalf("unexpected history: %+v", history)
	}

	expectNoError(t, mock)
}

func TestOrderRepositoryCreate(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}
	ctx := context.Background()
	now := time.Now()

	order := &model.Order{
		CustomerID: 7,
		Status:     model.OrderStatusRequested,
		Currency:   "AED",
		CartItems: []model.CartItem{
			{ProductID: 100, ProductName: "Widget", Quantity: 5, UnitPrice: decimal.NewFromInt(10)},
			{ProductID: 101, ProductName: "Bolt", Quantity: 8, UnitPrice: decimal.RequireFromString("1.5")},
		},
		TotalAmount: decimal.NewFromInt(62),
	}
	events := []model.Event{{AggregateType: "order", Type: model.EventOrderPlaced, Payload: []byte(`{}`)}}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO orders").
		WillReturnRows(pgxmockv3.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(10), now, now))
	mock.ExpectQuery("INSERT INTO order_items").WithArgs(int64(10), int64(100), "", "Widget", 5, "10").
		WillReturnRows(pgxmockv3.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectQuery("INSERT INTO order_items").WithArgs(int64(10), int64(101), "", "Bolt", 8, "1.5").
		WillReturnRows(pgxmockv3.NewRows([]string{"id"}).AddRow(int64(2)))
	mock.ExpectExec("INSERT INTO outbox_events").WithArgs("order", "10", model.EventOrderPlaced, []byte(`{}`), "").
		WillReturnResult(pgxmockv3.NewResult("INSERT", 1))
	mock.ExpectCommit()

	if err := repo.Create(ctx, order, events...); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.ID != 10 || order.CartItems[0].ID != 1 || order.CartItems[1].ID != 2 {
		t.Fatalf("identifiers not assigned: %+v", order)
	}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO orders").WillReturnError(errors.New("insert"))
	mock.ExpectRollback()
	if err := repo.Create(ctx, &model.Order{}, events...); err == nil {
		t.Fatal("expected error")
	}

	expectNoError(t, mock)
}

func TestOrderRepositoryTransitionStatus(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}
	ctx := context.Background()

	order := &model.Order{ID: 10, Status: model.OrderStatusVerify, Version: 2}
	change := model.StatusChange{OrderID: 10, From: model.OrderStatusRequested, To: model.OrderStatusVerify, AdminID: 3}
	event := model.Event{AggregateType: "order", AggregateID: "10", Type: model.EventOrderStatusChanged, Payload: []byte(`{}`)}
	anyArg := pgxmockv3.AnyArg()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE orders SET status(.|\n)*WHERE id=\$8 AND status=\$9 AND version=\$10`).
		WithArgs(anyArg, anyArg, anyArg, anyArg, anyArg, anyArg, anyArg, int64(10), model.OrderStatusRequested, int64(2)).
		WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	mock.ExpectExec("INSERT INTO order_status_history").WillReturnResult(pgxmockv3.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO outbox_events").WillReturnResult(pgxmockv3.NewResult("INSERT", 1))
	mock.ExpectCommit()
	if err := repo.TransitionStatus(ctx, order, change, event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Version != 3 {
		t.Fatalf("expected version to advance to 3, got %d", order.Version)
	}

	// A quantity edit committed after the read leaves the row at a newer version.
	stale := &model.Order{ID: 10, Status: model.OrderStatusVerify, Version: 2}
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE orders SET status").
		WithArgs(anyArg, anyArg, anyArg, anyArg, anyArg, anyArg, anyArg, int64(10), model.OrderStatusRequested, int64(2)).
		WillReturnResult(pgxmockv3.NewResult("UPDATE", 0))
	mock.ExpectRollback()
	if err := repo.TransitionStatus(ctx, stale, change, event); !errors.Is(err, domainErrors.ErrStatusConflict) {
		t.Fatalf("expected status conflict, got %v", err)
	}
	if stale.Version != 2 {
		t.Fatalf("expected failed write to keep version, got %d", stale.Version)
	}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE orders SET status").WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	mock.ExpectExec("INSERT INTO order_status_history").WillReturnError(errors.New("history"))
	mock.ExpectRollback()
	if err := repo.TransitionStatus(ctx, order, change, event); err == nil {
		t.Fatal("expected error")
	}

	expectNoError(t, mock)
}

func TestOrderRepositoryModification(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}
	ctx := context.Background()

	expires := time.Now().Add(time.Hour)
	order := &model.Order{
		ID:                    10,
		Status:                model.OrderStatusRequested,
		QuantitiesModified:    true,
		ConfirmationToken:     "tok",
		ConfirmationExpiresAt: &expires,
		CartItems:             []model.CartItem{{ID: 1, Quantity: 9}, {ID: 2, Quantity: 4}},
	}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE orders SET quantities_modified").WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE order_items SET quantity").WithArgs(9, int64(1), int64(10)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE order_items SET quantity").WithArgs(4, int64(2), int64(10)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	mock.ExpectCommit()
	if err := repo.SaveQuantities(ctx, order); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Version != 1 {
		t.Fatalf("expected version 1 after saving quantities, got %d", order.Version)
	}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE orders SET quantities_modified").WillReturnResult(pgxmockv3.NewResult("UPDATE", 0))
	mock.ExpectRollback()
	if err := repo.SaveQuantities(ctx, order); !errors.Is(err, domainErrors.ErrStatusConflict) {
		t.Fatalf("expected status conflict, got %v", err)
	}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE orders SET confirmation_token").WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	mock.ExpectCommit()
	if err := repo.SetConfirmationToken(ctx, order); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Version != 2 {
		t.Fatalf("expected version 2 after setting the token, got %d", order.Version)
	}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE orders SET confirmation_token=NULL").WithArgs(int64(10), "tok").WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	mock.ExpectExec("INSERT INTO outbox_events").WillReturnResult(pgxmockv3.NewResult("INSERT", 1))
	mock.ExpectCommit()
	confirmed := model.Event{AggregateType: "order", Type: model.EventOrderModified, Payload: []byte(`{}`)}
	if err := repo.ConfirmModification(ctx, 10, "tok", confirmed); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE orders SET confirmation_token=NULL").WithArgs(int64(10), "stale").WillReturnResult(pgxmockv3.NewResult("UPDATE", 0))
	mock.ExpectRollback()
	if err := repo.ConfirmModification(ctx, 10, "stale"); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	expectNoError(t, mock)
}

func TestOrderRepositoryDeliveryDetails(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}
	ctx := context.Background()
	receiver := model.ReceiverDetails{Name: "Sam", Mobile: "+971500001", Address: "Gate 2"}

	mock.ExpectExec("UPDATE orders SET delivery_otp_verified = ").WithArgs("Sam", "+971500001", "Gate 2", int64(10)).
		WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	if err := repo.UpdateReceiver(ctx, 10, receiver); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectExec("UPDATE orders SET delivery_otp_verified = ").WillReturnResult(pgxmockv3.NewResult("UPDATE", 0))
	if err := repo.UpdateReceiver(ctx, 99, receiver); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectExec("UPDATE orders SET delivery_otp_verified=TRUE").WithArgs(int64(10), "+971500001").
		WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	if err := repo.MarkDeliveryOTPVerified(ctx, 10, "+971500001"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectExec("UPDATE orders SET delivery_otp_verified=TRUE").WithArgs(int64(10), "+971500000").
		WillReturnResult(pgxmockv3.NewResult("UPDATE", 0))
	if err := repo.MarkDeliveryOTPVerified(ctx, 10, "+971500000"); !errors.Is(err, domainErrors.ErrStatusConflict) {
		t.Fatalf("expected conflict for a replaced mobile, got %v", err)
	}

	mock.ExpectExec("UPDATE orders SET delivery_otp_verified=TRUE").WillReturnError(errors.New("boom"))
	if err := repo.MarkDeliveryOTPVerified(ctx, 10, "+971500001"); err == nil {
		t.Fatal("expected error")
	}

	expectNoError(t, mock)
}
