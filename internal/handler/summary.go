package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rumahkopi/api/internal/database"
	"github.com/rumahkopi/api/internal/format"
	"github.com/rumahkopi/api/internal/listview"
)

// SummaryStore is satisfied by *database.Queries.
type SummaryStore interface {
	GetSummary(ctx context.Context, start, end time.Time) (database.Summary, error)
}

// SummaryHandler serves the dashboard headline numbers.
type SummaryHandler struct {
	store SummaryStore
	now   func() time.Time
}

func NewSummaryHandler(store SummaryStore) *SummaryHandler {
	return &SummaryHandler{store: store, now: time.Now}
}

// RegisterAdminRoutes is mounted under /admin.
func (h *SummaryHandler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/summary", h.Summary)
}

type summaryResponse struct {
	database.Summary
	StartDate               string `json:"start_date"`
	EndDate                 string `json:"end_date"`
	OrderRevenueLabel       string `json:"order_revenue_label"`
	ReservationRevenueLabel string `json:"reservation_revenue_label"`
}

// Summary aggregates the days start_date..end_date inclusive, defaulting
// to the last 30 days.
func (h *SummaryHandler) Summary(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	rng, err := parseDateRange(r, now)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if rng == nil {
		today := now.In(format.Jakarta())
		end := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
		rng = &listview.DateRange{Start: end.AddDate(0, 0, -29), End: end}
	}

	start := rng.Start
	end := rng.End.AddDate(0, 0, 1) // exclusive
	s, err := h.store.GetSummary(r.Context(), start, end)
	if err != nil {
		internalError(w, r, "get summary", err)
		return
	}

	writeJSON(w, http.StatusOK, summaryResponse{
		Summary:                 s,
		StartDate:               rng.Start.Format(dateLayout),
		EndDate:                 rng.End.Format(dateLayout),
		OrderRevenueLabel:       format.Rupiah(s.OrderRevenue),
		ReservationRevenueLabel: format.Rupiah(s.ReservationRevenue),
	})
}
