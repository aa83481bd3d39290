package test

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/orderdesk/internal/domain/errors"
	"github.com/polkiloo/orderdesk/internal/domain/model"
	"github.com/polkiloo/orderdesk/internal/domain/repository"
)

func fillAggregateID(events []model.Event, id int64) []model.Event {
	out := make([]model.Event, len(events))
	for i, e := range events {
		if e.AggregateID == "" {
			e.AggregateID = strconv.FormatInt(id, 10)
		}
		out[i] = e
	}
	return out
}

// AccountRepositoryStub stores accounts in-memory for tests.
type AccountRepositoryStub struct {
	Accounts map[string]*model.Account
	ByID     map[int64]*model.Account
	Next     int64
	Err      error
}

// NewAccountRepositoryStub constructs stub repository with initialized maps.
func NewAccountRepositoryStub() *AccountRepositoryStub {
	return &AccountRepositoryStub{
		Accounts: make(map[string]*model.Account),
		ByID:     make(map[int64]*model.Account),
		Next:     1,
	}
}

// Create registers account unless login already exists or stub has explicit error.
func (s *AccountRepositoryStub) Create(ctx context.Context, account model.Account) (*model.Account, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if _, exists := s.Accounts[account.Login]; exists {
		return nil, domainErrors.ErrAlreadyExists
	}
	if s.Next == 0 {
		s.Next = 1
	}
	account.ID = s.Next
	s.Next++
	stored := account
	s.Accounts[account.Login] = &stored
	s.ByID[account.ID] = &stored
	return &account, nil
}

// GetByLogin fetches account by login or returns not found.
func (s *AccountRepositoryStub) GetByLogin(ctx context.Context, login string) (*model.Account, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if acc, ok := s.Accounts[login]; ok {
		cp := *acc
		return &cp, nil
	}
	return nil, domainErrors.ErrNotFound
}

// GetByID fetches account by identifier or returns not found.
func (s *AccountRepositoryStub) GetByID(ctx context.Context, id int64) (*model.Account, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if acc, ok := s.ByID[id]; ok {
		cp := *acc
		return &cp, nil
	}
	return nil, domainErrors.ErrNotFound
}

// AddCustomer seeds a customer account and returns it.
func (s *AccountRepositoryStub) AddCustomer(login, email, mobile string) *model.Account {
	acc, _ := s.Create(context.Background(), model.Account{Login: login, Role: model.RoleCustomer, Email: email, Mobile: mobile, PasswordHash: "hash:pw"})
	return acc
}

// OrderRepositoryStub keeps orders in memory and enforces compare-and-set writes on
// status and version the way the postgres repository does.
type OrderRepositoryStub struct {
	Orders     map[int64]*model.Order
	StageLists map[model.StageKey][]model.OrderStatus
	Changes    []model.StatusChange
	Events     []model.Event
	Next       int64
	NextItem   int64
	Err        error
}

// NewOrderRepositoryStub constructs an empty order store.
func NewOrderRepositoryStub() *OrderRepositoryStub {
	return &OrderRepositoryStub{
		Orders:     make(map[int64]*model.Order),
		StageLists: make(map[model.StageKey][]model.OrderStatus),
		Next:       1,
		NextItem:   1,
	}
}

func copyOrder(o *model.Order) *model.Order {
	cp := *o
	cp.CartItems = append([]model.CartItem(nil), o.CartItems...)
	return &cp
}

// Put seeds an order, assigning identifiers when missing.
func (s *OrderRepositoryStub) Put(order model.Order) *model.Order {
	if order.ID == 0 {
		order.ID = s.Next
		s.Next++
	} else if order.ID >= s.Next {
		s.Next = order.ID + 1
	}
	for i := range order.CartItems {
		if order.CartItems[i].ID == 0 {
			order.CartItems[i].ID = s.NextItem
			s.NextItem++
		}
	}
	s.Orders[order.ID] = copyOrder(&order)
	return copyOrder(&order)
}

func (s *OrderRepositoryStub) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	o, ok := s.Orders[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return copyOrder(o), nil
}

func (s *OrderRepositoryStub) GetByConfirmationToken(ctx context.Context, token string) (*model.Order, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	for _, o := range s.Orders {
		if o.ConfirmationToken != "" && o.ConfirmationToken == token {
			return copyOrder(o), nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

func (s *OrderRepositoryStub) ListByStatus(ctx context.Context, status model.OrderStatus, limit int) ([]model.Order, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.list(func(o *model.Order) bool { return status == "" || o.Status == status }, limit), nil
}

func (s *OrderRepositoryStub) ListByCustomer(ctx context.Context, customerID int64) ([]model.Order, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.list(func(o *model.Order) bool { return o.CustomerID == customerID }, 0), nil
}

func (s *OrderRepositoryStub) list(match func(*model.Order) bool, limit int) []model.Order {
	out := make([]model.Order, 0)
	for _, o := range s.Orders {
		if match(o) {
			out = append(out, *copyOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (s *OrderRepositoryStub) Stages(ctx context.Context, key model.StageKey) ([]model.OrderStatus, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	stages, ok := s.StageLists[key]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return stages, nil
}

func (s *OrderRepositoryStub) History(ctx context.Context, orderID int64) ([]model.StatusChange, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]model.StatusChange, 0)
	for _, c := range s.Changes {
		if c.OrderID == orderID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *OrderRepositoryStub) Create(ctx context.Context, order *model.Order, events ...model.Event) error {
	if s.Err != nil {
		return s.Err
	}
	stored := s.Put(*order)
	order.ID = stored.ID
	order.CartItems = stored.CartItems
	s.Events = append(s.Events, fillAggregateID(events, order.ID)...)
	return nil
}

func (s *OrderRepositoryStub) TransitionStatus(ctx context.Context, order *model.Order, change model.StatusChange, events ...model.Event) error {
	if s.Err != nil {
		return s.Err
	}
	if stored, ok := s.Orders[order.ID]; ok && stored.Version != order.Version {
		return domainErrors.ErrStatusConflict
	}
	if err := s.applyChange(change); err != nil {
		return err
	}
	order.Version++
	s.Orders[order.ID] = copyOrder(order)
	s.Events = append(s.Events, events...)
	return nil
}

// applyChange performs the compare-and-set status move shared with settlement.
func (s *OrderRepositoryStub) applyChange(change model.StatusChange) error {
	stored, ok := s.Orders[change.OrderID]
	if !ok {
		return domainErrors.ErrNotFound
	}
	if stored.Status != change.From {
		return domainErrors.ErrStatusConflict
	}
	stored.Status = change.To
	stored.Version++
	change.ID = int64(len(s.Changes) + 1)
	s.Changes = append(s.Changes, change)
	return nil
}

func (s *OrderRepositoryStub) SaveQuantities(ctx context.Context, order *model.Order, events ...model.Event) error {
	if s.Err != nil {
		return s.Err
	}
	stored, ok := s.Orders[order.ID]
	if !ok {
		return domainErrors.ErrNotFound
	}
	if stored.Status != model.OrderStatusRequested || stored.Version != order.Version {
		return domainErrors.ErrStatusConflict
	}
	order.Version++
	s.Orders[order.ID] = copyOrder(order)
	s.Events = append(s.Events, events...)
	return nil
}

func (s *OrderRepositoryStub) SetConfirmationToken(ctx context.Context, order *model.Order, events ...model.Event) error {
	if s.Err != nil {
		return s.Err
	}
	stored, ok := s.Orders[order.ID]
	if !ok {
		return domainErrors.ErrNotFound
	}
	if stored.Status != model.OrderStatusRequested || stored.Version != order.Version {
		return domainErrors.ErrStatusConflict
	}
	stored.ConfirmationToken = order.ConfirmationToken
	stored.ConfirmationExpiresAt = order.ConfirmationExpiresAt
	stored.IsConfirmedByCustomer = false
	stored.Version++
	order.Version = stored.Version
	s.Events = append(s.Events, events...)
	return nil
}

func (s *OrderRepositoryStub) ConfirmModification(ctx context.Context, orderID int64, token string, events ...model.Event) error {
	if s.Err != nil {
		return s.Err
	}
	stored, ok := s.Orders[orderID]
	if !ok || stored.ConfirmationToken != token {
		return domainErrors.ErrNotFound
	}
	stored.ConfirmationToken = ""
	stored.ConfirmationExpiresAt = nil
	stored.IsConfirmedByCustomer = true
	stored.Version++
	s.Events = append(s.Events, events...)
	return nil
}

func (s *OrderRepositoryStub) UpdateReceiver(ctx context.Context, orderID int64, receiver model.ReceiverDetails) error {
	if s.Err != nil {
		return s.Err
	}
	stored, ok := s.Orders[orderID]
	if !ok {
		return domainErrors.ErrNotFound
	}
	if stored.Receiver.Mobile != receiver.Mobile {
		stored.DeliveryOTPVerified = false
	}
	stored.Receiver = receiver
	stored.Version++
	return nil
}

func (s *OrderRepositoryStub) MarkDeliveryOTPVerified(ctx context.Context, orderID int64, mobile string) error {
	if s.Err != nil {
		return s.Err
	}
	stored, ok := s.Orders[orderID]
	if !ok || stored.Receiver.Mobile != mobile {
		return domainErrors.ErrStatusConflict
	}
	stored.DeliveryOTPVerified = true
	stored.Version++
	return nil
}

// PaymentRepositoryStub keeps payments in memory; settlement moves orders held by Orders.
type PaymentRepositoryStub struct {
	Payments map[int64]*model.Payment
	Orders   *OrderRepositoryStub
	Events   []model.Event
	Next     int64
	Err      error
}

// NewPaymentRepositoryStub constructs a payment store bound to orders.
func NewPaymentRepositoryStub(orders *OrderRepositoryStub) *PaymentRepositoryStub {
	return &PaymentRepositoryStub{Payments: make(map[int64]*model.Payment), Orders: orders, Next: 1}
}

// Put seeds a payment.
func (s *PaymentRepositoryStub) Put(p model.Payment) *model.Payment {
	if p.ID == 0 {
		p.ID = s.Next
		s.Next++
	}
	stored := p
	s.Payments[p.ID] = &stored
	return &p
}

func (s *PaymentRepositoryStub) Create(ctx context.Context, payment *model.Payment, events ...model.Event) error {
	if s.Err != nil {
		return s.Err
	}
	stored := s.Put(*payment)
	payment.ID = stored.ID
	s.Events = append(s.Events, fillAggregateID(events, payment.ID)...)
	return nil
}

func (s *PaymentRepositoryStub) GetByID(ctx context.Context, id int64) (*model.Payment, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	p, ok := s.Payments[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *PaymentRepositoryStub) ListByOrder(ctx context.Context, orderID int64) ([]model.Payment, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]model.Payment, 0)
	for _, p := range s.Payments {
		if p.OrderID == orderID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *PaymentRepositoryStub) Update(ctx context.Context, payment *model.Payment, expected model.PaymentStatus, events ...model.Event) error {
	if s.Err != nil {
		return s.Err
	}
	stored, ok := s.Payments[payment.ID]
	if !ok {
		return domainErrors.ErrNotFound
	}
	if stored.Status != expected {
		return domainErrors.ErrStatusConflict
	}
	cp := *payment
	s.Payments[payment.ID] = &cp
	s.Events = append(s.Events, events...)
	return nil
}

func (s *PaymentRepositoryStub) MarkPaid(ctx context.Context, payment *model.Payment, settle repository.SettleFunc, events ...model.Event) (*model.StatusChange, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	stored, ok := s.Payments[payment.ID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	order, ok := s.Orders.Orders[stored.OrderID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	if stored.Status != model.PaymentStatusApproved {
		return nil, domainErrors.ErrStatusConflict
	}

	paid := stored.CalculatedAmount
	for _, p := range s.Payments {
		if p.ID != stored.ID && p.OrderID == stored.OrderID && p.Status == model.PaymentStatusPaid {
			paid = paid.Add(p.CalculatedAmount)
		}
	}
	var change *model.StatusChange
	var extra []model.Event
	if settle != nil {
		var err error
		if change, extra, err = settle(copyOrder(order), paid); err != nil {
			return nil, err
		}
	}
	if change != nil {
		if err := s.Orders.applyChange(*change); err != nil {
			return nil, err
		}
	}
	stored.Status = model.PaymentStatusPaid
	s.Events = append(s.Events, events...)
	s.Events = append(s.Events, extra...)
	return change, nil
}

func (s *PaymentRepositoryStub) MarkOTPVerified(ctx context.Context, paymentID int64) error {
	if s.Err != nil {
		return s.Err
	}
	stored, ok := s.Payments[paymentID]
	if !ok {
		return domainErrors.ErrNotFound
	}
	stored.OTPVerified = true
	return nil
}

// NegotiationRepositoryStub keeps negotiations in memory; placed orders land in Orders.
type NegotiationRepositoryStub struct {
	Negotiations map[int64]*model.Negotiation
	Orders       *OrderRepositoryStub
	Events       []model.Event
	Next         int64
	Err          error
}

// NewNegotiationRepositoryStub constructs a negotiation store bound to orders.
func NewNegotiationRepositoryStub(orders *OrderRepositoryStub) *NegotiationRepositoryStub {
	return &NegotiationRepositoryStub{Negotiations: make(map[int64]*model.Negotiation), Orders: orders, Next: 1}
}

func (s *NegotiationRepositoryStub) Create(ctx context.Context, n *model.Negotiation, events ...model.Event) error {
	if s.Err != nil {
		return s.Err
	}
	n.ID = s.Next
	s.Next++
	cp := *n
	s.Negotiations[n.ID] = &cp
	s.Events = append(s.Events, fillAggregateID(events, n.ID)...)
	return nil
}

func (s *NegotiationRepositoryStub) GetByID(ctx context.Context, id int64) (*model.Negotiation, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	n, ok := s.Negotiations[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	cp := *n
	return &cp, nil
}

func (s *NegotiationRepositoryStub) GetByConfirmationToken(ctx context.Context, token string) (*model.Negotiation, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	for _, n := range s.Negotiations {
		if n.ConfirmationToken != "" && n.ConfirmationToken == token {
			cp := *n
			return &cp, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

func (s *NegotiationRepositoryStub) List(ctx context.Context, filter repository.NegotiationFilter) ([]model.Negotiation, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]model.Negotiation, 0)
	for _, n := range s.Negotiations {
		if filter.Status != "" && n.Status != filter.Status {
			continue
		}
		if filter.CustomerID != 0 && n.CustomerID != filter.CustomerID {
			continue
		}
		out = append(out, *n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *NegotiationRepositoryStub) Update(ctx context.Context, n *model.Negotiation, expectedRound int, events ...model.Event) error {
	if s.Err != nil {
		return s.Err
	}
	stored, ok := s.Negotiations[n.ID]
	if !ok {
		return domainErrors.ErrNotFound
	}
	if stored.Round != expectedRound || stored.Status != model.NegotiationStatusOpen {
		return domainErrors.ErrStatusConflict
	}
	cp := *n
	s.Negotiations[n.ID] = &cp
	s.Events = append(s.Events, events...)
	return nil
}

func (s *NegotiationRepositoryStub) SetConfirmationToken(ctx context.Context, n *model.Negotiation) error {
	if s.Err != nil {
		return s.Err
	}
	stored, ok := s.Negotiations[n.ID]
	if !ok {
		return domainErrors.ErrNotFound
	}
	stored.ConfirmationToken = n.ConfirmationToken
	stored.ConfirmationExpiresAt = n.ConfirmationExpiresAt
	stored.CurrentLocation = n.CurrentLocation
	stored.DeliveryLocation = n.DeliveryLocation
	return nil
}

func (s *NegotiationRepositoryStub) PlaceOrder(ctx context.Context, n *model.Negotiation, order *model.Order, events ...model.Event) error {
	if s.Err != nil {
		return s.Err
	}
	stored, ok := s.Negotiations[n.ID]
	if !ok {
		return domainErrors.ErrNotFound
	}
	if stored.OrderID != nil {
		return domainErrors.ErrOrderAlreadyPlaced
	}
	var orderEvents, rest []model.Event
	if len(events) > 0 {
		orderEvents, rest = events[:1], events[1:]
	}
	if err := s.Orders.Create(ctx, order, orderEvents...); err != nil {
		return err
	}
	s.Events = append(s.Events, rest...)
	id := order.ID
	stored.OrderID = &id
	stored.ConfirmationToken = ""
	stored.ConfirmationExpiresAt = nil
	return nil
}

// ProductRepositoryStub keeps products and their version log in memory.
type ProductRepositoryStub struct {
	Products map[int64]*model.Product
	Versions map[int64][]model.ProductVersion
	Events   []model.Event
	Next     int64
	Err      error
}

// NewProductRepositoryStub constructs an empty product store.
func NewProductRepositoryStub() *ProductRepositoryStub {
	return &ProductRepositoryStub{
		Products: make(map[int64]*model.Product),
		Versions: make(map[int64][]model.ProductVersion),
		Next:     1,
	}
}

// Put seeds a product without writing a version row.
func (s *ProductRepositoryStub) Put(p model.Product) *model.Product {
	if p.ID == 0 {
		p.ID = s.Next
		s.Next++
	} else if p.ID >= s.Next {
		s.Next = p.ID + 1
	}
	if p.Version == 0 {
		p.Version = 1
	}
	stored := p
	s.Products[p.ID] = &stored
	return &p
}

func (s *ProductRepositoryStub) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	p, ok := s.Products[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *ProductRepositoryStub) GetByIDs(ctx context.Context, ids []int64) (map[int64]model.Product, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	out := make(map[int64]model.Product, len(ids))
	for _, id := range ids {
		if p, ok := s.Products[id]; ok {
			out[id] = *p
		}
	}
	return out, nil
}

func (s *ProductRepositoryStub) Create(ctx context.Context, p *model.Product, version model.ProductVersion, events ...model.Event) error {
	if s.Err != nil {
		return s.Err
	}
	p.ID = s.Next
	s.Next++
	p.UpdatedAt = time.Now()
	cp := *p
	s.Products[p.ID] = &cp
	s.appendVersion(p, version)
	s.Events = append(s.Events, fillAggregateID(events, p.ID)...)
	return nil
}

func (s *ProductRepositoryStub) Update(ctx context.Context, p *model.Product, expectedVersion int, version model.ProductVersion, events ...model.Event) error {
	if s.Err != nil {
		return s.Err
	}
	stored, ok := s.Products[p.ID]
	if !ok {
		return domainErrors.ErrNotFound
	}
	if stored.Version != expectedVersion {
		return domainErrors.ErrStatusConflict
	}
	cp := *p
	s.Products[p.ID] = &cp
	s.appendVersion(p, version)
	s.Events = append(s.Events, events...)
	return nil
}

func (s *ProductRepositoryStub) appendVersion(p *model.Product, version model.ProductVersion) {
	version.ID = int64(len(s.Versions[p.ID]) + 1)
	version.ProductID = p.ID
	version.Snapshot = *p
	s.Versions[p.ID] = append(s.Versions[p.ID], version)
}

func (s *ProductRepositoryStub) ListVersions(ctx context.Context, productID int64) ([]model.ProductVersion, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return append([]model.ProductVersion(nil), s.Versions[productID]...), nil
}

func (s *ProductRepositoryStub) GetVersion(ctx context.Context, productID int64, version int) (*model.ProductVersion, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	for _, v := range s.Versions[productID] {
		if v.Version == version {
			cp := v
			return &cp, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

// WalletRepositoryStub keeps a ledger in memory.
type WalletRepositoryStub struct {
	Entries []model.WalletEntry
	Events  []model.Event
	Err     error
}

func (s *WalletRepositoryStub) GetSummary(ctx context.Context, customerID int64) (*model.WalletSummary, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	summary := &model.WalletSummary{Current: decimal.Zero, Debited: decimal.Zero}
	for _, e := range s.Entries {
		if e.CustomerID != customerID {
			continue
		}
		if e.Kind == model.EntryKindDebit {
			summary.Current = summary.Current.Sub(e.Amount)
			summary.Debited = summary.Debited.Add(e.Amount)
			continue
		}
		summary.Current = summary.Current.Add(e.Amount)
	}
	return summary, nil
}

func (s *WalletRepositoryStub) Credit(ctx context.Context, entry model.WalletEntry, events ...model.Event) error {
	if s.Err != nil {
		return s.Err
	}
	s.append(entry, events)
	return nil
}

func (s *WalletRepositoryStub) Debit(ctx context.Context, entry model.WalletEntry, events ...model.Event) error {
	summary, err := s.GetSummary(ctx, entry.CustomerID)
	if err != nil {
		return err
	}
	if summary.Current.LessThan(entry.Amount) {
		return domainErrors.ErrInsufficientBalance
	}
	s.append(entry, events)
	return nil
}

func (s *WalletRepositoryStub) append(entry model.WalletEntry, events []model.Event) {
	entry.ID = int64(len(s.Entries) + 1)
	entry.CreatedAt = time.Now()
	s.Entries = append(s.Entries, entry)
	s.Events = append(s.Events, events...)
}

func (s *WalletRepositoryStub) ListEntries(ctx context.Context, customerID int64) ([]model.WalletEntry, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]model.WalletEntry, 0)
	for i := len(s.Entries) - 1; i >= 0; i-- {
		if s.Entries[i].CustomerID == customerID {
			out = append(out, s.Entries[i])
		}
	}
	return out, nil
}

var (
	_ repository.AccountRepository     = (*AccountRepositoryStub)(nil)
	_ repository.OrderRepository       = (*OrderRepositoryStub)(nil)
	_ repository.PaymentRepository     = (*PaymentRepositoryStub)(nil)
	_ repository.NegotiationRepository = (*NegotiationRepositoryStub)(nil)
	_ repository.ProductRepository     = (*ProductRepositoryStub)(nil)
	_ repository.WalletRepository      = (*WalletRepositoryStub)(nil)
)
