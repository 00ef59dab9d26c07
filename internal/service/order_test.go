package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rumahkopi/api/internal/database"
	"github.com/rumahkopi/api/internal/domain"
	"github.com/rumahkopi/api/internal/events"
	"github.com/shopspring/decimal"
)

// --- Mock implementations ---

// mockTx implements pgx.Tx with only the methods we need.
// The unused methods panic so we catch accidental calls.
type mockTx struct {
	commitErr error
	committed bool
}

func (m *mockTx) Begin(ctx context.Context) (pgx.Tx, error) { panic("not implemented") }
func (m *mockTx) Commit(ctx context.Context) error {
	m.committed = m.commitErr == nil
	return m.commitErr
}
func (m *mockTx) Rollback(ctx context.Context) error { return nil }
func (m *mockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	panic("not implemented")
}
func (m *mockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	panic("not implemented")
}
func (m *mockTx) LargeObjects() pgx.LargeObjects { panic("not implemented") }
func (m *mockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	panic("not implemented")
}
func (m *mockTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	panic("not implemented")
}
func (m *mockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	panic("not implemented")
}
func (m *mockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	panic("not implemented")
}
func (m *mockTx) Conn() *pgx.Conn { panic("not implemented") }

// mockTxBeginner implements TxBeginner.
type mockTxBeginner struct {
	tx    pgx.Tx
	err   error
	calls int
}

func (m *mockTxBeginner) Begin(ctx context.Context) (pgx.Tx, error) {
	m.calls++
	return m.tx, m.err
}

// recordingPublisher keeps published events.
type recordingPublisher struct {
	events []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, e events.Event) error {
	p.events = append(p.events, e)
	return nil
}

// mockOrderStore implements OrderStore with configurable behavior.
type mockOrderStore struct {
	getNextOrderSequenceFn func(ctx context.Context, prefix string) (int32, error)
	getMenuItemFn          func(ctx context.Context, id uuid.UUID) (domain.MenuItem, error)
	createOrderFn          func(ctx context.Context, arg database.CreateOrderParams) (uuid.UUID, error)
	createOrderItemFn      func(ctx context.Context, arg database.CreateOrderItemParams) (domain.OrderItem, error)
	getOrderFn             func(ctx context.Context, id uuid.UUID) (domain.Order, error)
	updateOrderStatusFn    func(ctx context.Context, arg database.UpdateOrderStatusParams) error
}

func (m *mockOrderStore) GetNextOrderSequence(ctx context.Context, prefix string) (int32, error) {
	return m.getNextOrderSequenceFn(ctx, prefix)
}
func (m *mockOrderStore) GetMenuItem(ctx context.Context, id uuid.UUID) (domain.MenuItem, error) {
	return m.getMenuItemFn(ctx, id)
}
func (m *mockOrderStore) CreateOrder(ctx context.Context, arg database.CreateOrderParams) (uuid.UUID, error) {
	return m.createOrderFn(ctx, arg)
}
func (m *mockOrderStore) CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (domain.OrderItem, error) {
	return m.createOrderItemFn(ctx, arg)
}
func (m *mockOrderStore) GetOrder(ctx context.Context, id uuid.UUID) (domain.Order, error) {
	return m.getOrderFn(ctx, id)
}
func (m *mockOrderStore) UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) error {
	return m.updateOrderStatusFn(ctx, arg)
}

// --- Test helpers ---

// fixedNow is 19 Oct 2026 23:30 UTC, already 20 Oct in Jakarta.
var fixedNow = time.Date(2026, 10, 19, 23, 30, 0, 0, time.UTC)

func newTestService(store *mockOrderStore) (*OrderService, *mockTx, *recordingPublisher) {
	tx := &mockTx{}
	pool := &mockTxBeginner{tx: tx}
	pub := &recordingPublisher{}
	newStore := func(db database.DBTX) OrderStore { return store }
	svc := NewOrderService(pool, newStore, pub)
	svc.now = func() time.Time { return fixedNow }
	return svc, tx, pub
}

// defaultStore returns a mockOrderStore that knows one available menu item
// priced 18000 and echoes created rows back from GetOrder.
func defaultStore(menuItemID uuid.UUID) *mockOrderStore {
	var created database.CreateOrderParams
	orderID := uuid.New()
	return &mockOrderStore{
		getNextOrderSequenceFn: func(ctx context.Context, prefix string) (int32, error) {
			return 1, nil
		},
		getMenuItemFn: func(ctx context.Context, id uuid.UUID) (domain.MenuItem, error) {
			if id == menuItemID {
				return domain.MenuItem{
					ID:          menuItemID,
					Name:        "Kopi Susu Gula Aren",
					Price:       decimal.NewFromInt(18000),
					IsAvailable: true,
				}, nil
			}
			return domain.MenuItem{}, pgx.ErrNoRows
		},
		createOrderFn: func(ctx context.Context, arg database.CreateOrderParams) (uuid.UUID, error) {
			created = arg
			return orderID, nil
		},
		createOrderItemFn: func(ctx context.Context, arg database.CreateOrderItemParams) (domain.OrderItem, error) {
			return domain.OrderItem{
				ID:         uuid.New(),
				OrderID:    arg.OrderID,
				MenuItemID: arg.MenuItemID,
				Name:       arg.Name,
				Quantity:   arg.Quantity,
				UnitPrice:  arg.UnitPrice,
				Subtotal:   arg.Subtotal,
				Notes:      arg.Notes,
			}, nil
		},
		getOrderFn: func(ctx context.Context, id uuid.UUID) (domain.Order, error) {
			return domain.Order{
				ID:          id,
				Code:        created.Code,
				UserID:      created.UserID,
				OrderType:   created.OrderType,
				TableNumber: created.TableNumber,
				Status:      "pending",
				Total:       created.Total,
			}, nil
		},
	}
}

func basicReq(menuItemID uuid.UUID) CreateOrderRequest {
	return CreateOrderRequest{
		UserID:    uuid.New(),
		OrderType: "takeaway",
		Items: []CreateOrderItemRequest{
			{MenuItemID: menuItemID.String(), Quantity: 2},
		},
	}
}

// =====================
// Validation tests
// =====================

func TestCreateOrder_EmptyItems(t *testing.T) {
	svc, _, _ := newTestService(defaultStore(uuid.New()))

	_, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		UserID:    uuid.New(),
		OrderType: "takeaway",
	})
	if !errors.Is(err, ErrEmptyItems) {
		t.Fatalf("expected ErrEmptyItems, got: %v", err)
	}
}

func TestCreateOrder_InvalidOrderType(t *testing.T) {
	itemID := uuid.New()
	svc, _, _ := newTestService(defaultStore(itemID))

	req := basicReq(itemID)
	req.OrderType = "delivery"
	_, err := svc.CreateOrder(context.Background(), req)
	if !errors.Is(err, ErrInvalidOrderType) {
		t.Fatalf("expected ErrInvalidOrderType, got: %v", err)
	}
}

func TestCreateOrder_DineInRequiresTable(t *testing.T) {
	itemID := uuid.New()
	svc, _, _ := newTestService(defaultStore(itemID))

	req := basicReq(itemID)
	req.OrderType = "dine_in"
	_, err := svc.CreateOrder(context.Background(), req)
	if !errors.Is(err, ErrTableRequired) {
		t.Fatalf("expected ErrTableRequired, got: %v", err)
	}
}

func TestCreateOrder_ZeroQuantity(t *testing.T) {
	itemID := uuid.New()
	svc, _, _ := newTestService(defaultStore(itemID))

	req := basicReq(itemID)
	req.Items[0].Quantity = 0
	_, err := svc.CreateOrder(context.Background(), req)
	if !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got: %v", err)
	}
}

func TestCreateOrder_InvalidMenuItemID(t *testing.T) {
	svc, _, _ := newTestService(defaultStore(uuid.New()))

	req := basicReq(uuid.New())
	req.Items[0].MenuItemID = "kopi"
	_, err := svc.CreateOrder(context.Background(), req)
	if !errors.Is(err, ErrInvalidMenuItemID) {
		t.Fatalf("expected ErrInvalidMenuItemID, got: %v", err)
	}
}

func TestCreateOrder_MenuItemNotFound(t *testing.T) {
	svc, _, _ := newTestService(defaultStore(uuid.New()))

	_, err := svc.CreateOrder(context.Background(), basicReq(uuid.New()))
	if !errors.Is(err, ErrMenuItemNotFound) {
		t.Fatalf("expected ErrMenuItemNotFound, got: %v", err)
	}
}

func TestCreateOrder_MenuItemUnavailable(t *testing.T) {
	itemID := uuid.New()
	store := defaultStore(itemID)
	store.getMenuItemFn = func(ctx context.Context, id uuid.UUID) (domain.MenuItem, error) {
		return domain.MenuItem{ID: id, Price: decimal.NewFromInt(10000), IsAvailable: false}, nil
	}
	svc, _, _ := newTestService(store)

	_, err := svc.CreateOrder(context.Background(), basicReq(itemID))
	if !errors.Is(err, ErrMenuItemUnavailable) {
		t.Fatalf("expected ErrMenuItemUnavailable, got: %v", err)
	}
}

// =====================
// Creation tests
// =====================

func TestCreateOrder_PricesAndCode(t *testing.T) {
	itemID := uuid.New()
	store := defaultStore(itemID)
	var gotPrefix string
	store.getNextOrderSequenceFn = func(ctx context.Context, prefix string) (int32, error) {
		gotPrefix = prefix
		return 7, nil
	}
	svc, tx, pub := newTestService(store)

	req := basicReq(itemID)
	req.Items = append(req.Items, CreateOrderItemRequest{MenuItemID: itemID.String(), Quantity: 1, Notes: "less ice"})
	order, err := svc.CreateOrder(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPrefix != "ORD-20261020-" {
		t.Errorf("prefix = %q, want Jakarta date ORD-20261020-", gotPrefix)
	}
	if order.Code != "ORD-20261020-007" {
		t.Errorf("code = %q", order.Code)
	}
	if !order.Total.Equal(decimal.NewFromInt(54000)) {
		t.Errorf("total = %s, want 54000", order.Total)
	}
	if len(order.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(order.Items))
	}
	if !order.Items[0].Subtotal.Equal(decimal.NewFromInt(36000)) {
		t.Errorf("item[0] subtotal = %s", order.Items[0].Subtotal)
	}
	if domain.Text(order.Items[1].Notes) != "less ice" {
		t.Errorf("item[1] notes = %v", order.Items[1].Notes)
	}
	if order.TableNumber != nil {
		t.Errorf("takeaway order must not keep a table number")
	}
	if !tx.committed {
		t.Error("expected commit")
	}
	if len(pub.events) != 1 || pub.events[0].Type != events.OrderCreated {
		t.Fatalf("expected one order.created event, got %+v", pub.events)
	}
	if *pub.events[0].UserID != req.UserID {
		t.Error("event must target the ordering customer")
	}
}

func TestCreateOrder_DineInKeepsTable(t *testing.T) {
	itemID := uuid.New()
	svc, _, _ := newTestService(defaultStore(itemID))

	req := basicReq(itemID)
	req.OrderType = "dine_in"
	req.TableNumber = "A4"
	order, err := svc.CreateOrder(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if domain.Text(order.TableNumber) != "A4" {
		t.Errorf("table = %v", order.TableNumber)
	}
}

func TestCreateOrder_RetriesOnCodeConflict(t *testing.T) {
	itemID := uuid.New()
	store := defaultStore(itemID)
	inner := store.createOrderFn
	attempts := 0
	store.createOrderFn = func(ctx context.Context, arg database.CreateOrderParams) (uuid.UUID, error) {
		attempts++
		if attempts < 3 {
			return uuid.Nil, &pgconn.PgError{Code: "23505", ConstraintName: database.OrderCodeConstraint}
		}
		return inner(ctx, arg)
	}
	svc, _, _ := newTestService(store)

	if _, err := svc.CreateOrder(context.Background(), basicReq(itemID)); err != nil {
		t.Fatalf("expected success on third attempt, got: %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestCreateOrder_GivesUpAfterRetries(t *testing.T) {
	itemID := uuid.New()
	store := defaultStore(itemID)
	attempts := 0
	store.createOrderFn = func(ctx context.Context, arg database.CreateOrderParams) (uuid.UUID, error) {
		attempts++
		return uuid.Nil, &pgconn.PgError{Code: "23505", ConstraintName: database.OrderCodeConstraint}
	}
	svc, _, pub := newTestService(store)

	_, err := svc.CreateOrder(context.Background(), basicReq(itemID))
	if !database.IsUniqueViolation(err, database.OrderCodeConstraint) {
		t.Fatalf("expected unique violation, got: %v", err)
	}
	if attempts != maxCodeRetries {
		t.Errorf("expected %d attempts, got %d", maxCodeRetries, attempts)
	}
	if len(pub.events) != 0 {
		t.Error("no event may be published for a failed order")
	}
}

func TestCreateOrder_OtherUniqueViolationNotRetried(t *testing.T) {
	itemID := uuid.New()
	store := defaultStore(itemID)
	attempts := 0
	store.createOrderFn = func(ctx context.Context, arg database.CreateOrderParams) (uuid.UUID, error) {
		attempts++
		return uuid.Nil, &pgconn.PgError{Code: "23505", ConstraintName: "something_else"}
	}
	svc, _, _ := newTestService(store)

	if _, err := svc.CreateOrder(context.Background(), basicReq(itemID)); err == nil {
		t.Fatal("expected error")
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts)
	}
}

func TestCreateOrder_CommitError(t *testing.T) {
	itemID := uuid.New()
	svc, tx, _ := newTestService(defaultStore(itemID))
	tx.commitErr = errors.New("connection reset")

	_, err := svc.CreateOrder(context.Background(), basicReq(itemID))
	if err == nil || !strings.Contains(err.Error(), "commit tx") {
		t.Fatalf("expected commit error, got: %v", err)
	}
}

func TestCreateOrder_BeginError(t *testing.T) {
	itemID := uuid.New()
	store := defaultStore(itemID)
	pool := &mockTxBeginner{err: errors.New("pool closed")}
	svc := NewOrderService(pool, func(db database.DBTX) OrderStore { return store }, nil)

	_, err := svc.CreateOrder(context.Background(), basicReq(itemID))
	if err == nil || !strings.Contains(err.Error(), "begin tx") {
		t.Fatalf("expected begin error, got: %v", err)
	}
}

// =====================
// Status transition tests
// =====================

func statusStore(status string) (*mockOrderStore, *database.UpdateOrderStatusParams) {
	var got database.UpdateOrderStatusParams
	current := status
	return &mockOrderStore{
		getOrderFn: func(ctx context.Context, id uuid.UUID) (domain.Order, error) {
			return domain.Order{ID: id, UserID: uuid.New(), Status: current}, nil
		},
		updateOrderStatusFn: func(ctx context.Context, arg database.UpdateOrderStatusParams) error {
			got = arg
			current = arg.To
			return nil
		},
	}, &got
}

func TestUpdateOrderStatus_Transitions(t *testing.T) {
	tests := []struct {
		from, to string
		wantErr  error
	}{
		{"pending", "confirmed", nil},
		{"confirmed", "processing", nil},
		{"processing", "completed", nil},
		{"pending", "cancelled", nil},
		{"processing", "cancelled", nil},
		{"pending", "completed", ErrInvalidTransition},
		{"completed", "cancelled", ErrInvalidTransition},
		{"cancelled", "pending", ErrInvalidTransition},
		{"pending", "shipped", ErrInvalidStatus},
	}

	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			store, got := statusStore(tt.from)
			svc, _, pub := newTestService(store)

			order, err := svc.UpdateOrderStatus(context.Background(), uuid.New(), tt.to)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got: %v", tt.wantErr, err)
				}
				if len(pub.events) != 0 {
					t.Error("rejected transition must not publish")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if order.Status != tt.to {
				t.Errorf("status = %q, want %q", order.Status, tt.to)
			}
			if got.From != tt.from || got.To != tt.to {
				t.Errorf("update params = %+v", *got)
			}
			if len(pub.events) != 1 || pub.events[0].Type != events.OrderStatusChanged {
				t.Errorf("expected order.status_changed, got %+v", pub.events)
			}
		})
	}
}

func TestUpdateOrderStatus_NotFound(t *testing.T) {
	store := &mockOrderStore{
		getOrderFn: func(ctx context.Context, id uuid.UUID) (domain.Order, error) {
			return domain.Order{}, pgx.ErrNoRows
		},
	}
	svc, _, _ := newTestService(store)

	_, err := svc.UpdateOrderStatus(context.Background(), uuid.New(), "confirmed")
	if !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got: %v", err)
	}
}

func TestUpdateOrderStatus_ConcurrentChange(t *testing.T) {
	store, _ := statusStore("pending")
	store.updateOrderStatusFn = func(ctx context.Context, arg database.UpdateOrderStatusParams) error {
		return pgx.ErrNoRows
	}
	svc, _, _ := newTestService(store)

	_, err := svc.UpdateOrderStatus(context.Background(), uuid.New(), "confirmed")
	if !errors.Is(err, ErrStatusConflict) {
		t.Fatalf("expected ErrStatusConflict, got: %v", err)
	}
}
