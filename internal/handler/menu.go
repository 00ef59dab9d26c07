package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/jackc/pgx/v5"
	"github.com/rumahkopi/api/internal/database"
	"github.com/rumahkopi/api/internal/domain"
	"github.com/rumahkopi/api/internal/screens"
	"github.com/rumahkopi/api/internal/service"
	"github.com/shopspring/decimal"
)

// MenuStore defines the database methods needed by menu handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type MenuStore interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	CreateCategory(ctx context.Context, name string) (domain.Category, error)
	ListMenuItems(ctx context.Context, availableOnly bool) ([]domain.MenuItem, error)
	GetMenuItem(ctx context.Context, id uuid.UUID) (domain.MenuItem, error)
	CreateMenuItem(ctx context.Context, arg database.CreateMenuItemParams) (uuid.UUID, error)
}

// MenuReader serves the public menu, usually from cache.
type MenuReader interface {
	AvailableMenu(ctx context.Context) ([]domain.MenuItem, error)
}

// MenuAdmin is the service side of menu mutations.
// Satisfied by *service.AdminService.
type MenuAdmin interface {
	SetMenuAvailability(ctx context.Context, id uuid.UUID, available bool) (*service.MenuToggleResult, error)
	InvalidateMenu(ctx context.Context)
}

type MenuHandler struct {
	store MenuStore
	menu  MenuReader
	admin MenuAdmin
	now   func() time.Time
}

func NewMenuHandler(store MenuStore, menu MenuReader, admin MenuAdmin) *MenuHandler {
	return &MenuHandler{store: store, menu: menu, admin: admin, now: time.Now}
}

// RegisterRoutes registers the public menu endpoints.
func (h *MenuHandler) RegisterRoutes(r chi.Router) {
	r.Get("/menu", h.Available)
	r.Get("/menu/{id}", h.Get)
	r.Get("/categories", h.Categories)
}

// RegisterAdminRoutes is mounted under /admin.
func (h *MenuHandler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/menu", h.List)
	r.Get("/menu/export", h.Export)
	r.Post("/menu", h.Create)
	r.Patch("/menu/{id}/toggle-status", h.ToggleStatus)
	r.Post("/categories", h.CreateCategory)
}

// --- Request types ---

type createMenuItemRequest struct {
	CategoryID  string `json:"category_id" validate:"omitempty,uuid"`
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
	Price       string `json:"price" validate:"required"`
	ImageURL    string `json:"image_url" validate:"omitempty,url"`
}

type toggleMenuRequest struct {
	IsAvailable *bool `json:"is_available" validate:"required"`
}

type createCategoryRequest struct {
	Name string `json:"name" validate:"required,max=50"`
}

// --- Handlers ---

func (h *MenuHandler) Available(w http.ResponseWriter, r *http.Request) {
	items, err := h.menu.AvailableMenu(r.Context())
	if err != nil {
		internalError(w, r, "available menu", err)
		return
	}
	if items == nil {
		items = []domain.MenuItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *MenuHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id", "menu item")
	if !ok {
		return
	}
	item, err := h.store.GetMenuItem(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
			return
		}
		internalError(w, r, "get menu item", err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *MenuHandler) Categories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.store.ListCategories(r.Context())
	if err != nil {
		internalError(w, r, "list categories", err)
		return
	}
	if cats == nil {
		cats = []domain.Category{}
	}
	writeJSON(w, http.StatusOK, cats)
}

// List serves the admin menu screen. The category filter takes a category
// id and is resolved against the current categories.
func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r, h.now())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	items, cats, ok := h.loadAll(w, r)
	if !ok {
		return
	}
	serveList(w, q, screens.MenuList(cats), items)
}

func (h *MenuHandler) Export(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r, h.now())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	items, cats, ok := h.loadAll(w, r)
	if !ok {
		return
	}
	serveExport(w, r, screens.Menu, h.now(), q, screens.MenuList(cats), screens.MenuColumns(), items)
}

func (h *MenuHandler) loadAll(w http.ResponseWriter, r *http.Request) ([]domain.MenuItem, []domain.Category, bool) {
	items, err := h.store.ListMenuItems(r.Context(), false)
	if err != nil {
		internalError(w, r, "list menu items", err)
		return nil, nil, false
	}
	cats, err := h.store.ListCategories(r.Context())
	if err != nil {
		internalError(w, r, "list categories", err)
		return nil, nil, false
	}
	return items, cats, true
}

func (h *MenuHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createMenuItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid price"})
		return
	}

	var categoryID *uuid.UUID
	if req.CategoryID != "" {
		id := uuid.MustParse(req.CategoryID)
		categoryID = &id
	}

	id, err := h.store.CreateMenuItem(r.Context(), database.CreateMenuItemParams{
		CategoryID:  categoryID,
		Name:        req.Name,
		Slug:        slug.Make(req.Name),
		Description: req.Description,
		Price:       price,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		switch {
		case database.IsUniqueViolation(err, ""):
			writeJSON(w, http.StatusConflict, map[string]string{"error": "a menu item with this name already exists"})
		case database.IsForeignKeyViolation(err):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "category not found"})
		default:
			internalError(w, r, "create menu item", err)
		}
		return
	}
	h.admin.InvalidateMenu(r.Context())

	item, err := h.store.GetMenuItem(r.Context(), id)
	if err != nil {
		internalError(w, r, "get menu item", err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// ToggleStatus stores {is_available} and responds with the item and the
// full menu, which the dashboard adopts as its collection.
func (h *MenuHandler) ToggleStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id", "menu item")
	if !ok {
		return
	}
	var req toggleMenuRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.admin.SetMenuAvailability(r.Context(), id, *req.IsAvailable)
	if err != nil {
		if errors.Is(err, service.ErrMenuItemNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
			return
		}
		internalError(w, r, "toggle menu status", err)
		return
	}
	if res.Menu == nil {
		res.Menu = []domain.MenuItem{}
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *MenuHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	cat, err := h.store.CreateCategory(r.Context(), req.Name)
	if err != nil {
		if database.IsUniqueViolation(err, "") {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "category already exists"})
			return
		}
		internalError(w, r, "create category", err)
		return
	}
	writeJSON(w, http.StatusCreated, cat)
}
