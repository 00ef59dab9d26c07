package database

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/rumahkopi/api/internal/domain"
	"github.com/shopspring/decimal"
)

// OrderCodeConstraint is the unique constraint hit when two transactions
// pick the same order code.
const OrderCodeConstraint = "orders_code_key"

func orderSelect() squirrel.SelectBuilder {
	return psql.Select(
		"o.id", "o.code", "o.user_id", "u.name AS customer_name", "u.phone AS customer_phone",
		"o.order_type", "o.table_number", "o.status", "o.notes", "o.total",
		`COALESCE((SELECT string_agg(oi.quantity || 'x ' || oi.name, ', ' ORDER BY oi.name)
			FROM order_items oi WHERE oi.order_id = o.id), '') AS items_summary`,
		"o.created_at", "o.updated_at",
	).From("orders o").Join("users u ON u.id = o.user_id")
}

// GetNextOrderSequence returns the next per-day sequence for codes starting
// with prefix, e.g. "ORD-20261019-".
func (q *Queries) GetNextOrderSequence(ctx context.Context, prefix string) (int32, error) {
	var next int32
	err := get(ctx, q.db, &next, psql.Select(
		"COALESCE(MAX(CAST(split_part(code, '-', 3) AS INT)), 0) + 1",
	).From("orders").Where(squirrel.Like{"code": prefix + "%"}), "next order sequence")
	return next, err
}

type CreateOrderParams struct {
	Code        string
	UserID      uuid.UUID
	OrderType   string
	TableNumber *string
	Notes       *string
	Total       decimal.Decimal
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (uuid.UUID, error) {
	var id uuid.UUID
	err := get(ctx, q.db, &id, psql.Insert("orders").
		Columns("code", "user_id", "order_type", "table_number", "notes", "total").
		Values(arg.Code, arg.UserID, arg.OrderType, arg.TableNumber, arg.Notes, arg.Total).
		Suffix("RETURNING id"), "create order")
	return id, err
}

type CreateOrderItemParams struct {
	OrderID    uuid.UUID
	MenuItemID uuid.UUID
	Name       string
	Quantity   int32
	UnitPrice  decimal.Decimal
	Subtotal   decimal.Decimal
	Notes      *string
}

func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (domain.OrderItem, error) {
	var item domain.OrderItem
	err := get(ctx, q.db, &item, psql.Insert("order_items").
		Columns("order_id", "menu_item_id", "name", "quantity", "unit_price", "subtotal", "notes").
		Values(arg.OrderID, arg.MenuItemID, arg.Name, arg.Quantity, arg.UnitPrice, arg.Subtotal, arg.Notes).
		Suffix("RETURNING id, order_id, menu_item_id, name, quantity, unit_price, subtotal, notes"), "create order item")
	return item, err
}

func (q *Queries) GetOrder(ctx context.Context, id uuid.UUID) (domain.Order, error) {
	var o domain.Order
	err := get(ctx, q.db, &o, orderSelect().Where(squirrel.Eq{"o.id": id}), "get order")
	return o, err
}

func (q *Queries) ListOrderItems(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error) {
	var rows []domain.OrderItem
	err := selectAll(ctx, q.db, &rows, psql.Select(
		"id", "order_id", "menu_item_id", "name", "quantity", "unit_price", "subtotal", "notes",
	).From("order_items").Where(squirrel.Eq{"order_id": orderID}).OrderBy("name"), "list order items")
	return rows, err
}

// ListOrders returns all orders newest first, or one customer's orders when
// userID is set.
func (q *Queries) ListOrders(ctx context.Context, userID *uuid.UUID) ([]domain.Order, error) {
	b := orderSelect().OrderBy("o.created_at DESC")
	if userID != nil {
		b = b.Where(squirrel.Eq{"o.user_id": *userID})
	}
	var rows []domain.Order
	err := selectAll(ctx, q.db, &rows, b, "list orders")
	return rows, err
}

type UpdateOrderStatusParams struct {
	ID   uuid.UUID
	From string
	To   string
}

// UpdateOrderStatus only applies when the order is still in From, so a
// concurrent change surfaces as pgx.ErrNoRows.
func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) error {
	return exec(ctx, q.db, psql.Update("orders").
		Set("status", arg.To).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": arg.ID, "status": arg.From}), "update order status")
}

type Summary struct {
	OrderCount         int64           `db:"order_count" json:"order_count"`
	OrderRevenue       decimal.Decimal `db:"order_revenue" json:"order_revenue"`
	CancelledOrders    int64           `db:"cancelled_orders" json:"cancelled_orders"`
	ReservationCount   int64           `db:"reservation_count" json:"reservation_count"`
	ReservationRevenue decimal.Decimal `db:"reservation_revenue" json:"reservation_revenue"`
	NewCustomers       int64           `db:"new_customers" json:"new_customers"`
}

// GetSummary aggregates orders, reservations and sign-ups created in
// [start, end). Revenue counts completed orders and confirmed or completed
// reservations.
func (q *Queries) GetSummary(ctx context.Context, start, end time.Time) (Summary, error) {
	b := psql.Select()
	for _, col := range summaryColumns {
		b = b.Column(squirrel.Expr(col, start, end))
	}
	var s Summary
	err := get(ctx, q.db, &s, b, "get summary")
	return s, err
}

var summaryColumns = []string{
	"(SELECT count(*) FROM orders WHERE created_at >= ? AND created_at < ?) AS order_count",
	"(SELECT COALESCE(sum(total), 0) FROM orders WHERE status = 'completed' AND created_at >= ? AND created_at < ?) AS order_revenue",
	"(SELECT count(*) FROM orders WHERE status = 'cancelled' AND created_at >= ? AND created_at < ?) AS cancelled_orders",
	"(SELECT count(*) FROM reservations WHERE created_at >= ? AND created_at < ?) AS reservation_count",
	"(SELECT COALESCE(sum(total), 0) FROM reservations WHERE status IN ('confirmed', 'completed') AND created_at >= ? AND created_at < ?) AS reservation_revenue",
	"(SELECT count(*) FROM users WHERE role = 'customer' AND created_at >= ? AND created_at < ?) AS new_customers",
}
