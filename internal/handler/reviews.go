package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rumahkopi/api/internal/database"
	"github.com/rumahkopi/api/internal/domain"
	"github.com/rumahkopi/api/internal/events"
	"github.com/rumahkopi/api/internal/middleware"
	"github.com/rumahkopi/api/internal/screens"
)

type ReviewStore interface {
	CreateReview(ctx context.Context, arg database.CreateReviewParams) (uuid.UUID, error)
	GetReview(ctx context.Context, id uuid.UUID) (domain.Review, error)
	ListReviews(ctx context.Context) ([]domain.Review, error)
	ListFavorites(ctx context.Context, userID uuid.UUID) ([]domain.Favorite, error)
	AddFavorite(ctx context.Context, userID, menuItemID uuid.UUID) error
	RemoveFavorite(ctx context.Context, userID, menuItemID uuid.UUID) error
}

// ReviewHandler serves reviews and the customer's favorite list.
type ReviewHandler struct {
	store  ReviewStore
	events events.Publisher
	now    func() time.Time
}

func NewReviewHandler(store ReviewStore, pub events.Publisher) *ReviewHandler {
	if pub == nil {
		pub = events.Nop{}
	}
	return &ReviewHandler{store: store, events: pub, now: time.Now}
}

// RegisterPublicRoutes registers endpoints that need no authentication.
func (h *ReviewHandler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/reviews", h.Public)
}

// RegisterRoutes registers authenticated customer endpoints.
func (h *ReviewHandler) RegisterRoutes(r chi.Router) {
	r.Post("/reviews", h.Create)
	r.Get("/favorites", h.Favorites)
	r.Post("/favorites", h.AddFavorite)
	r.Delete("/favorites/{menu_item_id}", h.RemoveFavorite)
}

// RegisterAdminRoutes is mounted under /admin.
func (h *ReviewHandler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/reviews", h.List)
	r.Get("/reviews/export", h.Export)
}

type createReviewRequest struct {
	MenuItemID string `json:"menu_item_id" validate:"omitempty,uuid"`
	Rating     int32  `json:"rating" validate:"gte=1,lte=5"`
	Comment    string `json:"comment" validate:"max=1000"`
}

type addFavoriteRequest struct {
	MenuItemID string `json:"menu_item_id" validate:"required,uuid"`
}

func (h *ReviewHandler) Public(w http.ResponseWriter, r *http.Request) {
	rows, err := h.store.ListReviews(r.Context())
	if err != nil {
		internalError(w, r, "list reviews", err)
		return
	}
	if rows == nil {
		rows = []domain.Review{}
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}
	var req createReviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var menuItemID *uuid.UUID
	if req.MenuItemID != "" {
		id := uuid.MustParse(req.MenuItemID)
		menuItemID = &id
	}

	id, err := h.store.CreateReview(r.Context(), database.CreateReviewParams{
		UserID:     claims.UserID,
		MenuItemID: menuItemID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	})
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
			return
		}
		internalError(w, r, "create review", err)
		return
	}

	review, err := h.store.GetReview(r.Context(), id)
	if err != nil {
		internalError(w, r, "get review", err)
		return
	}
	_ = h.events.Publish(r.Context(), events.New(events.ReviewCreated, review, nil))
	writeJSON(w, http.StatusCreated, review)
}

func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r, h.now())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	rows, err := h.store.ListReviews(r.Context())
	if err != nil {
		internalError(w, r, "list reviews", err)
		return
	}
	serveList(w, q, screens.ReviewList(), rows)
}

func (h *ReviewHandler) Export(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r, h.now())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	rows, err := h.store.ListReviews(r.Context())
	if err != nil {
		internalError(w, r, "list reviews", err)
		return
	}
	serveExport(w, r, screens.Reviews, h.now(), q, screens.ReviewList(), screens.ReviewColumns(), rows)
}

func (h *ReviewHandler) Favorites(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}
	rows, err := h.store.ListFavorites(r.Context(), claims.UserID)
	if err != nil {
		internalError(w, r, "list favorites", err)
		return
	}
	if rows == nil {
		rows = []domain.Favorite{}
	}
	writeJSON(w, http.StatusOK, rows)
}

// AddFavorite is idempotent; adding an existing favorite still returns 204.
func (h *ReviewHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}
	var req addFavoriteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.store.AddFavorite(r.Context(), claims.UserID, uuid.MustParse(req.MenuItemID)); err != nil {
		if database.IsForeignKeyViolation(err) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
			return
		}
		internalError(w, r, "add favorite", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ReviewHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}
	menuItemID, ok := urlID(w, r, "menu_item_id", "menu item")
	if !ok {
		return
	}
	if err := h.store.RemoveFavorite(r.Context(), claims.UserID, menuItemID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "favorite not found"})
			return
		}
		internalError(w, r, "remove favorite", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
