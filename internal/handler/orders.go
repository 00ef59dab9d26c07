package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rumahkopi/api/internal/domain"
	"github.com/rumahkopi/api/internal/enum"
	"github.com/rumahkopi/api/internal/middleware"
	"github.com/rumahkopi/api/internal/screens"
	"github.com/rumahkopi/api/internal/service"
)

// OrderServicer defines the service methods needed by order handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	CreateOrder(ctx context.Context, req service.CreateOrderRequest) (*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, to string) (*domain.Order, error)
}

// OrderStore defines the database methods needed by order read handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type OrderStore interface {
	GetOrder(ctx context.Context, id uuid.UUID) (domain.Order, error)
	ListOrders(ctx context.Context, userID *uuid.UUID) ([]domain.Order, error)
	ListOrderItems(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error)
}

// OrderHandler handles order endpoints.
type OrderHandler struct {
	svc   OrderServicer
	store OrderStore
	now   func() time.Time
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc OrderServicer, store OrderStore) *OrderHandler {
	return &OrderHandler{svc: svc, store: store, now: time.Now}
}

// RegisterRoutes registers customer order endpoints. Requires authentication.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/orders", h.Create)
	r.Get("/orders/mine", h.Mine)
	r.Get("/orders/{id}", h.Get)
}

// RegisterAdminRoutes is mounted under /admin.
func (h *OrderHandler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/orders", h.List)
	r.Get("/orders/export", h.Export)
	r.Patch("/orders/{id}/status", h.UpdateStatus)
}

// --- Request types ---

type createOrderRequest struct {
	OrderType   string                   `json:"order_type" validate:"required,oneof=takeaway dine_in"`
	TableNumber string                   `json:"table_number" validate:"required_if=OrderType dine_in,max=10"`
	Notes       string                   `json:"notes" validate:"max=500"`
	Items       []createOrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

type createOrderItemRequest struct {
	MenuItemID string `json:"menu_item_id" validate:"required,uuid"`
	Quantity   int32  `json:"quantity" validate:"gte=1,lte=99"`
	Notes      string `json:"notes" validate:"max=200"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// --- Handlers ---

// Create places an order for the authenticated customer.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var req createOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	items := make([]service.CreateOrderItemRequest, len(req.Items))
	for i, item := range req.Items {
		items[i] = service.CreateOrderItemRequest{
			MenuItemID: item.MenuItemID,
			Quantity:   item.Quantity,
			Notes:      item.Notes,
		}
	}

	order, err := h.svc.CreateOrder(r.Context(), service.CreateOrderRequest{
		UserID:      claims.UserID,
		OrderType:   req.OrderType,
		TableNumber: req.TableNumber,
		Notes:       req.Notes,
		Items:       items,
	})
	if err != nil {
		if isOrderValidationError(err) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		internalError(w, r, "create order", err)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

// Mine lists the caller's own orders, newest first.
func (h *OrderHandler) Mine(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}
	orders, err := h.store.ListOrders(r.Context(), &claims.UserID)
	if err != nil {
		internalError(w, r, "list own orders", err)
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

// Get returns one order with its items. Customers only see their own.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}
	id, ok := urlID(w, r, "id", "order")
	if !ok {
		return
	}

	order, err := h.store.GetOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		internalError(w, r, "get order", err)
		return
	}
	if claims.Role == enum.UserRoleCustomer && order.UserID != claims.UserID {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		return
	}

	order.Items, err = h.store.ListOrderItems(r.Context(), id)
	if err != nil {
		internalError(w, r, "list order items", err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// List serves the admin order screen: search, status / order_type filters,
// date range, sort and page come from the query string.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r, h.now())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	orders, err := h.store.ListOrders(r.Context(), nil)
	if err != nil {
		internalError(w, r, "list orders", err)
		return
	}
	serveList(w, q, screens.OrderList(), orders)
}

func (h *OrderHandler) Export(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r, h.now())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	orders, err := h.store.ListOrders(r.Context(), nil)
	if err != nil {
		internalError(w, r, "list orders", err)
		return
	}
	serveExport(w, r, screens.Orders, h.now(), q, screens.OrderList(), screens.OrderColumns(), orders)
}

// UpdateStatus moves an order to the requested status.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id", "order")
	if !ok {
		return
	}
	var req updateStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	order, err := h.svc.UpdateOrderStatus(r.Context(), id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		case errors.Is(err, service.ErrInvalidStatus):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		case errors.Is(err, service.ErrInvalidTransition), errors.Is(err, service.ErrStatusConflict):
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		default:
			internalError(w, r, "update order status", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func isOrderValidationError(err error) bool {
	for _, target := range []error{
		service.ErrEmptyItems,
		service.ErrInvalidOrderType,
		service.ErrTableRequired,
		service.ErrInvalidQuantity,
		service.ErrInvalidMenuItemID,
		service.ErrMenuItemNotFound,
		service.ErrMenuItemUnavailable,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
