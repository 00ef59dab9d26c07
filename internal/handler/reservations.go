package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rumahkopi/api/internal/domain"
	"github.com/rumahkopi/api/internal/middleware"
	"github.com/rumahkopi/api/internal/screens"
	"github.com/rumahkopi/api/internal/service"
)

// ReservationServicer is satisfied by *service.ReservationService.
type ReservationServicer interface {
	Create(ctx context.Context, req service.CreateReservationRequest) (*domain.Reservation, error)
	Cancel(ctx context.Context, userID, id uuid.UUID) (*domain.Reservation, error)
	AdminCancel(ctx context.Context, id uuid.UUID) (*domain.Reservation, error)
	Confirm(ctx context.Context, id uuid.UUID) (*domain.Reservation, error)
	Complete(ctx context.Context, id uuid.UUID) (*domain.Reservation, error)
}

type ReservationStore interface {
	ListReservations(ctx context.Context, userID *uuid.UUID) ([]domain.Reservation, error)
}

type ReservationHandler struct {
	svc   ReservationServicer
	store ReservationStore
	now   func() time.Time
}

func NewReservationHandler(svc ReservationServicer, store ReservationStore) *ReservationHandler {
	return &ReservationHandler{svc: svc, store: store, now: time.Now}
}

// RegisterRoutes registers customer reservation endpoints. Requires authentication.
func (h *ReservationHandler) RegisterRoutes(r chi.Router) {
	r.Post("/reservations", h.Create)
	r.Get("/reservations/mine", h.Mine)
	r.Delete("/reservations/{id}", h.Cancel)
}

// RegisterAdminRoutes is mounted under /admin.
func (h *ReservationHandler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/reservations", h.List)
	r.Get("/reservations/export", h.Export)
	r.Patch("/reservations/{id}/confirm", h.Confirm)
	r.Patch("/reservations/{id}/complete", h.Complete)
	r.Patch("/reservations/{id}/cancel", h.AdminCancel)
}

type createReservationRequest struct {
	PackageID       string `json:"package_id" validate:"required,uuid"`
	ReservationDate string `json:"reservation_date" validate:"required,datetime=2006-01-02"`
	ReservationTime string `json:"reservation_time" validate:"required,datetime=15:04"`
	Guests          int32  `json:"guests" validate:"gte=1"`
	Notes           string `json:"notes" validate:"max=500"`
}

func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}
	var req createReservationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.svc.Create(r.Context(), service.CreateReservationRequest{
		UserID:    claims.UserID,
		PackageID: req.PackageID,
		Date:      req.ReservationDate,
		Time:      req.ReservationTime,
		Guests:    req.Guests,
		Notes:     req.Notes,
	})
	if err != nil {
		h.writeServiceError(w, r, "create reservation", err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *ReservationHandler) Mine(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}
	rows, err := h.store.ListReservations(r.Context(), &claims.UserID)
	if err != nil {
		internalError(w, r, "list own reservations", err)
		return
	}
	if rows == nil {
		rows = []domain.Reservation{}
	}
	writeJSON(w, http.StatusOK, rows)
}

// Cancel is DELETE /reservations/{id}: the owner cancels a pending or
// confirmed reservation and gets the cancelled record back.
func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}
	id, ok := urlID(w, r, "id", "reservation")
	if !ok {
		return
	}

	res, err := h.svc.Cancel(r.Context(), claims.UserID, id)
	if err != nil {
		h.writeServiceError(w, r, "cancel reservation", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *ReservationHandler) List(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r, h.now())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	rows, err := h.store.ListReservations(r.Context(), nil)
	if err != nil {
		internalError(w, r, "list reservations", err)
		return
	}
	serveList(w, q, screens.ReservationList(), rows)
}

func (h *ReservationHandler) Export(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r, h.now())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	rows, err := h.store.ListReservations(r.Context(), nil)
	if err != nil {
		internalError(w, r, "list reservations", err)
		return
	}
	serveExport(w, r, screens.Reservations, h.now(), q, screens.ReservationList(), screens.ReservationColumns(), rows)
}

func (h *ReservationHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	h.adminTransition(w, r, "confirm reservation", h.svc.Confirm)
}

func (h *ReservationHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.adminTransition(w, r, "complete reservation", h.svc.Complete)
}

func (h *ReservationHandler) AdminCancel(w http.ResponseWriter, r *http.Request) {
	h.adminTransition(w, r, "cancel reservation", h.svc.AdminCancel)
}

func (h *ReservationHandler) adminTransition(w http.ResponseWriter, r *http.Request, op string, fn func(context.Context, uuid.UUID) (*domain.Reservation, error)) {
	id, ok := urlID(w, r, "id", "reservation")
	if !ok {
		return
	}
	res, err := fn(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *ReservationHandler) writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, service.ErrReservationNotFound), errors.Is(err, service.ErrNotReservationOwner):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "reservation not found"})
	case errors.Is(err, service.ErrPackageNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "package not found"})
	case errors.Is(err, service.ErrReservationNotPending), errors.Is(err, service.ErrStatusConflict):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidPackageID),
		errors.Is(err, service.ErrPackageInactive),
		errors.Is(err, service.ErrInvalidGuests),
		errors.Is(err, service.ErrInvalidDate),
		errors.Is(err, service.ErrInvalidTime),
		errors.Is(err, service.ErrReservationInPast):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		internalError(w, r, op, err)
	}
}
