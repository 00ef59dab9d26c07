package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rumahkopi/api/internal/auth"
	"github.com/rumahkopi/api/internal/database"
	"github.com/rumahkopi/api/internal/domain"
	"github.com/rumahkopi/api/internal/middleware"
	"github.com/rumahkopi/api/internal/screens"
	"github.com/rumahkopi/api/internal/service"
)

// UserStore defines the database methods needed by user handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type UserStore interface {
	GetUser(ctx context.Context, id uuid.UUID) (domain.User, error)
	CreateUser(ctx context.Context, arg database.CreateUserParams) (domain.User, error)
	ListCustomers(ctx context.Context) ([]domain.Customer, error)
	ListStaff(ctx context.Context) ([]domain.StaffMember, error)
}

// UserAdmin is satisfied by *service.AdminService.
type UserAdmin interface {
	ToggleUserBlock(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// UserHandler handles account endpoints.
type UserHandler struct {
	store UserStore
	admin UserAdmin
	now   func() time.Time
}

func NewUserHandler(store UserStore, admin UserAdmin) *UserHandler {
	return &UserHandler{store: store, admin: admin, now: time.Now}
}

// RegisterRoutes registers endpoints for any authenticated user.
func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Get("/me", h.Me)
}

// RegisterAdminRoutes is mounted under /admin.
func (h *UserHandler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/customers", h.Customers)
	r.Get("/customers/export", h.ExportCustomers)
	r.Get("/staff", h.Staff)
	r.Get("/staff/export", h.ExportStaff)
	r.Post("/staff", h.CreateStaff)
	r.Patch("/users/{id}/toggle-block", h.ToggleBlock)
}

type createStaffRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"omitempty,max=20"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=admin staff"`
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}
	user, err := h.store.GetUser(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
			return
		}
		internalError(w, r, "get user", err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// Customers serves the customer screen. The total sort orders by orders
// plus reservations spend.
func (h *UserHandler) Customers(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r, h.now())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	rows, err := h.store.ListCustomers(r.Context())
	if err != nil {
		internalError(w, r, "list customers", err)
		return
	}
	serveList(w, q, screens.CustomerList(), rows)
}

// ExportCustomers is GET /admin/customers/export. Without query parameters
// it exports every customer.
func (h *UserHandler) ExportCustomers(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r, h.now())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	rows, err := h.store.ListCustomers(r.Context())
	if err != nil {
		internalError(w, r, "list customers", err)
		return
	}
	serveExport(w, r, screens.Customers, h.now(), q, screens.CustomerList(), screens.CustomerColumns(), rows)
}

func (h *UserHandler) Staff(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r, h.now())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	rows, err := h.store.ListStaff(r.Context())
	if err != nil {
		internalError(w, r, "list staff", err)
		return
	}
	serveList(w, q, screens.StaffList(), rows)
}

func (h *UserHandler) ExportStaff(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r, h.now())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	rows, err := h.store.ListStaff(r.Context())
	if err != nil {
		internalError(w, r, "list staff", err)
		return
	}
	serveExport(w, r, screens.Staff, h.now(), q, screens.StaffList(), screens.StaffColumns(), rows)
}

func (h *UserHandler) CreateStaff(w http.ResponseWriter, r *http.Request) {
	var req createStaffRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		internalError(w, r, "hash password", err)
		return
	}

	user, err := h.store.CreateUser(r.Context(), database.CreateUserParams{
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Role:           req.Role,
		HashedPassword: hash,
	})
	if err != nil {
		if database.IsUniqueViolation(err, database.UserEmailConstraint) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "email already registered"})
			return
		}
		internalError(w, r, "create staff", err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

// ToggleBlock flips the block flag and returns the updated user.
func (h *UserHandler) ToggleBlock(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id", "user")
	if !ok {
		return
	}
	if claims := middleware.ClaimsFromContext(r.Context()); claims != nil && claims.UserID == id {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "cannot block your own account"})
		return
	}

	user, err := h.admin.ToggleUserBlock(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
			return
		}
		internalError(w, r, "toggle user block", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
