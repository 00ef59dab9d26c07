package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/rumahkopi/api/internal/database"
	"github.com/rumahkopi/api/internal/handler"
	"github.com/shopspring/decimal"
)

type mockSummaryStore struct {
	start, end time.Time
	calls      int
}

func (m *mockSummaryStore) GetSummary(_ context.Context, start, end time.Time) (database.Summary, error) {
	m.calls++
	m.start, m.end = start, end
	return database.Summary{
		OrderCount:         12,
		OrderRevenue:       decimal.NewFromInt(1250000),
		ReservationCount:   3,
		ReservationRevenue: decimal.NewFromInt(900000),
	}, nil
}

func setupSummary(store *mockSummaryStore) http.Handler {
	r := authRouter()
	r.Route("/admin", handler.NewSummaryHandler(store).RegisterAdminRoutes)
	return r
}

func TestSummary_CustomRange(t *testing.T) {
	store := &mockSummaryStore{}
	router := setupSummary(store)

	rr := doAuthRequest(t, router, "GET", "/admin/summary?start_date=2026-01-01&end_date=2026-01-31", nil, adminClaims())
	expectStatus(t, rr, http.StatusOK)

	resp := decodeResponse(t, rr)
	if resp["start_date"] != "2026-01-01" || resp["end_date"] != "2026-01-31" {
		t.Errorf("unexpected range %v..%v", resp["start_date"], resp["end_date"])
	}
	if resp["order_count"] != float64(12) {
		t.Errorf("order_count = %v", resp["order_count"])
	}
	if resp["order_revenue_label"] != "Rp 1.250.000" {
		t.Errorf("order_revenue_label = %v", resp["order_revenue_label"])
	}
	// The end day is included, so the store gets the following midnight.
	if got := store.end.Format("2006-01-02"); got != "2026-02-01" {
		t.Errorf("exclusive end = %s", got)
	}
}

func TestSummary_DefaultsToLast30Days(t *testing.T) {
	store := &mockSummaryStore{}
	router := setupSummary(store)

	rr := doAuthRequest(t, router, "GET", "/admin/summary", nil, adminClaims())
	expectStatus(t, rr, http.StatusOK)

	if days := store.end.Sub(store.start).Hours() / 24; days != 30 {
		t.Errorf("expected a 30 day window, got %v days", days)
	}
}

func TestSummary_InvalidRange(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		wantErr string
	}{
		{"start after end", "?start_date=2026-02-10&end_date=2026-02-01", "start date must not be after end date"},
		{"end in the future", "?start_date=2026-01-01&end_date=2999-01-01", "end date must not be after today"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockSummaryStore{}
			router := setupSummary(store)

			rr := doAuthRequest(t, router, "GET", "/admin/summary"+tt.query, nil, adminClaims())
			expectStatus(t, rr, http.StatusBadRequest)
			expectError(t, rr, tt.wantErr)
			if store.calls != 0 {
				t.Error("an invalid range must not reach the store")
			}
		})
	}
}
