package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/rumahkopi/api/internal/database"
	"github.com/rumahkopi/api/internal/domain"
	"github.com/rumahkopi/api/internal/screens"
	"github.com/rumahkopi/api/internal/service"
	"github.com/shopspring/decimal"
)

type PackageStore interface {
	ListPackages(ctx context.Context, activeOnly bool) ([]domain.Package, error)
	CreatePackage(ctx context.Context, arg database.CreatePackageParams) (domain.Package, error)
}

// PackageAdmin is satisfied by *service.AdminService.
type PackageAdmin interface {
	SetPackageActive(ctx context.Context, id uuid.UUID, active bool) (*domain.Package, error)
	DeletePackage(ctx context.Context, id uuid.UUID) error
}

type PackageHandler struct {
	store PackageStore
	admin PackageAdmin
	now   func() time.Time
}

func NewPackageHandler(store PackageStore, admin PackageAdmin) *PackageHandler {
	return &PackageHandler{store: store, admin: admin, now: time.Now}
}

func (h *PackageHandler) RegisterRoutes(r chi.Router) {
	r.Get("/packages", h.Active)
}

// RegisterAdminRoutes is mounted under /admin.
func (h *PackageHandler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/packages", h.List)
	r.Get("/packages/export", h.Export)
	r.Post("/packages", h.Create)
	r.Patch("/packages/{id}/toggle-status", h.ToggleStatus)
	r.Delete("/packages/{id}/delete", h.Delete)
}

type createPackageRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=1000"`
	Price       string `json:"price" validate:"required"`
	MinGuests   int32  `json:"min_guests" validate:"gte=1"`
	MaxGuests   int32  `json:"max_guests" validate:"gtefield=MinGuests"`
}

type togglePackageRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

func (h *PackageHandler) Active(w http.ResponseWriter, r *http.Request) {
	pkgs, err := h.store.ListPackages(r.Context(), true)
	if err != nil {
		internalError(w, r, "list packages", err)
		return
	}
	if pkgs == nil {
		pkgs = []domain.Package{}
	}
	writeJSON(w, http.StatusOK, pkgs)
}

func (h *PackageHandler) List(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r, h.now())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	pkgs, err := h.store.ListPackages(r.Context(), false)
	if err != nil {
		internalError(w, r, "list packages", err)
		return
	}
	serveList(w, q, screens.PackageList(), pkgs)
}

func (h *PackageHandler) Export(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r, h.now())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	pkgs, err := h.store.ListPackages(r.Context(), false)
	if err != nil {
		internalError(w, r, "list packages", err)
		return
	}
	serveExport(w, r, screens.Packages, h.now(), q, screens.PackageList(), screens.PackageColumns(), pkgs)
}

func (h *PackageHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createPackageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid price"})
		return
	}

	pkg, err := h.store.CreatePackage(r.Context(), database.CreatePackageParams{
		Name:        req.Name,
		Slug:        slug.Make(req.Name),
		Description: req.Description,
		Price:       price,
		MinGuests:   req.MinGuests,
		MaxGuests:   req.MaxGuests,
	})
	if err != nil {
		if database.IsUniqueViolation(err, "") {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "a package with this name already exists"})
			return
		}
		internalError(w, r, "create package", err)
		return
	}
	writeJSON(w, http.StatusCreated, pkg)
}

// ToggleStatus stores {is_active} and returns the updated package.
func (h *PackageHandler) ToggleStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id", "package")
	if !ok {
		return
	}
	var req togglePackageRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	pkg, err := h.admin.SetPackageActive(r.Context(), id, *req.IsActive)
	if err != nil {
		if errors.Is(err, service.ErrPackageNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "package not found"})
			return
		}
		internalError(w, r, "toggle package status", err)
		return
	}
	writeJSON(w, http.StatusOK, pkg)
}

func (h *PackageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id", "package")
	if !ok {
		return
	}
	if err := h.admin.DeletePackage(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrPackageNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "package not found"})
			return
		}
		internalError(w, r, "delete package", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
