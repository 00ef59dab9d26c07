package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rumahkopi/api/internal/database"
	"github.com/rumahkopi/api/internal/domain"
	"github.com/rumahkopi/api/internal/enum"
	"github.com/rumahkopi/api/internal/events"
	"github.com/rumahkopi/api/internal/format"
	"github.com/shopspring/decimal"
)

const maxCodeRetries = 3

// Errors returned by the order service.
var (
	ErrEmptyItems          = errors.New("items are required")
	ErrInvalidOrderType    = errors.New("invalid order_type")
	ErrTableRequired       = errors.New("table_number is required for dine_in orders")
	ErrInvalidQuantity     = errors.New("quantity must be > 0")
	ErrInvalidMenuItemID   = errors.New("invalid menu_item_id")
	ErrMenuItemNotFound    = errors.New("menu item not found")
	ErrMenuItemUnavailable = errors.New("menu item is not available")
	ErrOrderNotFound       = errors.New("order not found")
	ErrInvalidStatus       = errors.New("invalid status")
	ErrInvalidTransition   = errors.New("status transition not allowed")
	ErrStatusConflict      = errors.New("status changed concurrently")
)

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderStore defines the DB methods needed to create and progress orders.
// Satisfied by *database.Queries (and its WithTx variant).
type OrderStore interface {
	GetNextOrderSequence(ctx context.Context, prefix string) (int32, error)
	GetMenuItem(ctx context.Context, id uuid.UUID) (domain.MenuItem, error)
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (uuid.UUID, error)
	CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (domain.OrderItem, error)
	GetOrder(ctx context.Context, id uuid.UUID) (domain.Order, error)
	UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) error
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
type NewOrderStore func(db database.DBTX) OrderStore

// CreateOrderRequest is the validated input for placing an order.
type CreateOrderRequest struct {
	UserID      uuid.UUID
	OrderType   string
	TableNumber string
	Notes       string
	Items       []CreateOrderItemRequest
}

// CreateOrderItemRequest is a single line of the order.
type CreateOrderItemRequest struct {
	MenuItemID string
	Quantity   int32
	Notes      string
}

// orderTransitions lists the statuses reachable from each status.
// completed and cancelled are terminal.
var orderTransitions = map[string][]string{
	enum.OrderStatusPending:    {enum.OrderStatusConfirmed, enum.OrderStatusCancelled},
	enum.OrderStatusConfirmed:  {enum.OrderStatusProcessing, enum.OrderStatusCancelled},
	enum.OrderStatusProcessing: {enum.OrderStatusCompleted, enum.OrderStatusCancelled},
}

// OrderService handles order business logic.
type OrderService struct {
	pool     TxBeginner
	newStore NewOrderStore
	events   events.Publisher
	now      func() time.Time
}

// NewOrderService creates a new OrderService. A nil publisher discards events.
func NewOrderService(pool TxBeginner, newStore NewOrderStore, pub events.Publisher) *OrderService {
	if pub == nil {
		pub = events.Nop{}
	}
	return &OrderService{pool: pool, newStore: newStore, events: pub, now: time.Now}
}

// CreateOrder validates the request, snapshots menu prices and inserts the
// order atomically. Retries up to maxCodeRetries times when a concurrent
// transaction took the same order code.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*domain.Order, error) {
	switch req.OrderType {
	case enum.OrderTypeTakeaway:
	case enum.OrderTypeDineIn:
		if req.TableNumber == "" {
			return nil, ErrTableRequired
		}
	default:
		return nil, ErrInvalidOrderType
	}
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}

	var lastErr error
	for attempt := 0; attempt < maxCodeRetries; attempt++ {
		order, err := s.createOrderTx(ctx, req)
		if err == nil {
			_ = s.events.Publish(ctx, events.New(events.OrderCreated, order, &order.UserID))
			return order, nil
		}
		if database.IsUniqueViolation(err, database.OrderCodeConstraint) {
			lastErr = err
			continue
		}
		return nil, err
	}
	return nil, lastErr
}

type pricedItem struct {
	menuItem domain.MenuItem
	quantity int32
	subtotal decimal.Decimal
	notes    *string
}

func (s *OrderService) createOrderTx(ctx context.Context, req CreateOrderRequest) (*domain.Order, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	total := decimal.Zero
	items := make([]pricedItem, 0, len(req.Items))
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrInvalidQuantity)
		}
		id, err := uuid.Parse(item.MenuItemID)
		if err != nil {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrInvalidMenuItemID)
		}
		mi, err := store.GetMenuItem(ctx, id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("item[%d]: %w", i, ErrMenuItemNotFound)
			}
			return nil, fmt.Errorf("item[%d]: get menu item: %w", i, err)
		}
		if !mi.IsAvailable {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrMenuItemUnavailable)
		}

		subtotal := mi.Price.Mul(decimal.NewFromInt32(item.Quantity))
		total = total.Add(subtotal)
		items = append(items, pricedItem{
			menuItem: mi,
			quantity: item.Quantity,
			subtotal: subtotal,
			notes:    optional(item.Notes),
		})
	}

	prefix := "ORD-" + s.now().In(format.Jakarta()).Format("20060102") + "-"
	seq, err := store.GetNextOrderSequence(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("get next order sequence: %w", err)
	}

	var table *string
	if req.OrderType == enum.OrderTypeDineIn {
		table = optional(req.TableNumber)
	}

	orderID, err := store.CreateOrder(ctx, database.CreateOrderParams{
		Code:        fmt.Sprintf("%s%03d", prefix, seq),
		UserID:      req.UserID,
		OrderType:   req.OrderType,
		TableNumber: table,
		Notes:       optional(req.Notes),
		Total:       total,
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	created := make([]domain.OrderItem, 0, len(items))
	for _, pi := range items {
		oi, err := store.CreateOrderItem(ctx, database.CreateOrderItemParams{
			OrderID:    orderID,
			MenuItemID: pi.menuItem.ID,
			Name:       pi.menuItem.Name,
			Quantity:   pi.quantity,
			UnitPrice:  pi.menuItem.Price,
			Subtotal:   pi.subtotal,
			Notes:      pi.notes,
		})
		if err != nil {
			return nil, fmt.Errorf("create order item: %w", err)
		}
		created = append(created, oi)
	}

	order, err := store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	order.Items = created

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return &order, nil
}

// UpdateOrderStatus moves an order along the transition table. The update
// is conditional on the status read, so a concurrent change surfaces as
// ErrStatusConflict instead of being overwritten.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id uuid.UUID, to string) (*domain.Order, error) {
	if !isOrderStatus(to) {
		return nil, ErrInvalidStatus
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	current, err := store.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if !canTransition(orderTransitions, current.Status, to) {
		return nil, fmt.Errorf("%s -> %s: %w", current.Status, to, ErrInvalidTransition)
	}

	err = store.UpdateOrderStatus(ctx, database.UpdateOrderStatusParams{ID: id, From: current.Status, To: to})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStatusConflict
		}
		return nil, fmt.Errorf("update order status: %w", err)
	}

	updated, err := store.GetOrder(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	_ = s.events.Publish(ctx, events.New(events.OrderStatusChanged, updated, &updated.UserID))
	return &updated, nil
}

// --- Helpers ---

func isOrderStatus(s string) bool {
	switch s {
	case enum.OrderStatusPending, enum.OrderStatusConfirmed, enum.OrderStatusProcessing,
		enum.OrderStatusCompleted, enum.OrderStatusCancelled:
		return true
	}
	return false
}

func canTransition(table map[string][]string, from, to string) bool {
	for _, next := range table[from] {
		if next == to {
			return true
		}
	}
	return false
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
