//go:build integration

package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rumahkopi/api/internal/adminclient"
	"github.com/rumahkopi/api/internal/auth"
	"github.com/rumahkopi/api/internal/config"
	"github.com/rumahkopi/api/internal/database"
	"github.com/rumahkopi/api/internal/enum"
	"github.com/rumahkopi/api/internal/format"
	"github.com/rumahkopi/api/internal/listview"
	"github.com/rumahkopi/api/internal/logger"
	"github.com/rumahkopi/api/internal/middleware"
	"github.com/rumahkopi/api/internal/router"
	"github.com/rumahkopi/api/internal/ws"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestIntegrationFlow runs the full API against a real PostgreSQL database:
// customer ordering and booking, then the dashboard acting on them.
func TestIntegrationFlow(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	connStr, cleanup := setupPostgresContainer(t, ctx)
	defer cleanup()

	if err := database.Migrate(ctx, connStr); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	pool, err := database.Connect(ctx, connStr)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	cfg := &config.Config{
		Port:           "8081",
		DatabaseURL:    connStr,
		JWTSecret:      "integration-test-secret",
		AllowedOrigins: []string{"http://localhost:3000"},
	}
	queries := database.New(pool)
	hub := ws.NewHub()
	go hub.Run(ctx)

	r := router.New(cfg, router.Deps{
		Queries: queries,
		Pool:    pool,
		Hub:     hub,
		Metrics: middleware.NewMetrics(),
		Logger:  logger.Nop(),
	})
	server := httptest.NewServer(r)
	defer server.Close()

	// --- 1. Bootstrap the admin directly; there is no public admin signup ---
	createAdmin(t, ctx, queries, "admin@rumahkopi.id", "password123")
	adminToken := login(t, server, "admin@rumahkopi.id", "password123")

	// --- 2. Catalog ---
	category := httpJSON(t, server, "POST", "/admin/categories", map[string]any{"name": "Kopi"}, adminToken, http.StatusCreated)
	item := httpJSON(t, server, "POST", "/admin/menu", map[string]any{
		"category_id": category["id"],
		"name":        "Es Kopi Gula Aren",
		"price":       "22000",
	}, adminToken, http.StatusCreated)
	if item["slug"] != "es-kopi-gula-aren" {
		t.Fatalf("menu slug: got %v", item["slug"])
	}
	pkg := httpJSON(t, server, "POST", "/admin/packages", map[string]any{
		"name":       "Paket Arisan",
		"price":      "75000",
		"min_guests": 4,
		"max_guests": 20,
	}, adminToken, http.StatusCreated)

	// --- 3. Customer registers and orders ---
	reg := httpJSON(t, server, "POST", "/auth/register", map[string]any{
		"name":     "Dewi Lestari",
		"email":    "dewi@example.com",
		"password": "rahasia123",
	}, "", http.StatusCreated)
	customerToken := reg["access_token"].(string)
	customerID := reg["user"].(map[string]any)["id"].(string)

	order := httpJSON(t, server, "POST", "/orders", map[string]any{
		"order_type": "takeaway",
		"items":      []map[string]any{{"menu_item_id": item["id"], "quantity": 2}},
	}, customerToken, http.StatusCreated)
	if order["status"] != enum.OrderStatusPending {
		t.Fatalf("new order status: got %v", order["status"])
	}
	if total := decimal.RequireFromString(order["total"].(string)); !total.Equal(decimal.NewFromInt(44000)) {
		t.Fatalf("order total: got %s, want 44000", total)
	}

	// --- 4. Customer books a package and can cancel it ---
	day := time.Now().In(format.Jakarta()).AddDate(0, 0, 7).Format("2006-01-02")
	book := func() map[string]any {
		return httpJSON(t, server, "POST", "/reservations", map[string]any{
			"package_id":       pkg["id"],
			"reservation_date": day,
			"reservation_time": "19:00",
			"guests":           6,
		}, customerToken, http.StatusCreated)
	}
	first := book()
	second := book()

	customer := adminclient.NewDashboard(adminclient.New(server.URL, customerToken))
	if err := customer.LoadMyReservations(ctx); err != nil {
		t.Fatalf("load my reservations: %v", err)
	}
	firstID := uuid.MustParse(first["id"].(string))
	if err := customer.CancelReservation(ctx, firstID); err != nil {
		t.Fatalf("cancel reservation: %v", err)
	}
	if got, _ := customer.Reservations.Get(firstID); got.Status != enum.ReservationStatusCancelled {
		t.Fatalf("cancelled status: got %s", got.Status)
	}
	if err := customer.CancelReservation(ctx, firstID); !adminclient.IsConflict(err) {
		t.Fatalf("second cancel: want conflict, got %v", err)
	}

	// --- 5. Customers cannot reach the dashboard ---
	httpJSON(t, server, "GET", "/admin/orders", nil, customerToken, http.StatusForbidden)

	// --- 6. Dashboard ---
	dash := adminclient.NewDashboard(adminclient.New(server.URL, adminToken))

	if err := dash.LoadOrders(ctx, nil); err != nil {
		t.Fatalf("load orders: %v", err)
	}
	view := dash.OrderView()
	view.SetFilter("status", enum.OrderStatusPending)
	if got := view.View().Total; got != 1 {
		t.Fatalf("pending orders: got %d, want 1", got)
	}
	httpJSON(t, server, "PATCH", fmt.Sprintf("/admin/orders/%s/status", order["id"]), map[string]any{
		"status": enum.OrderStatusConfirmed,
	}, adminToken, http.StatusOK)

	if err := dash.LoadReservations(ctx, nil); err != nil {
		t.Fatalf("load reservations: %v", err)
	}
	secondID := uuid.MustParse(second["id"].(string))
	if err := dash.ConfirmReservation(ctx, secondID); err != nil {
		t.Fatalf("confirm reservation: %v", err)
	}
	if got, _ := dash.Reservations.Get(secondID); got.Status != enum.ReservationStatusConfirmed {
		t.Fatalf("confirmed status: got %s", got.Status)
	}

	if err := dash.LoadMenu(ctx); err != nil {
		t.Fatalf("load menu: %v", err)
	}
	itemID := uuid.MustParse(item["id"].(string))
	if err := dash.ToggleMenuStatus(ctx, itemID); err != nil {
		t.Fatalf("toggle menu: %v", err)
	}
	if got, _ := dash.Menu.Get(itemID); got.IsAvailable {
		t.Fatal("menu item still available after toggle")
	}
	public := httpJSONArray(t, server, "/menu")
	if len(public) != 0 {
		t.Fatalf("public menu must hide unavailable items, got %d", len(public))
	}

	if err := dash.LoadPackages(ctx); err != nil {
		t.Fatalf("load packages: %v", err)
	}
	pkgID := uuid.MustParse(pkg["id"].(string))
	if err := dash.TogglePackageStatus(ctx, pkgID); err != nil {
		t.Fatalf("toggle package: %v", err)
	}
	if err := dash.DeletePackage(ctx, pkgID); err != nil {
		t.Fatalf("delete package: %v", err)
	}
	if dash.Packages.Len() != 0 {
		t.Fatalf("packages after delete: %d", dash.Packages.Len())
	}

	if err := dash.LoadCustomers(ctx); err != nil {
		t.Fatalf("load customers: %v", err)
	}
	if err := dash.ToggleUserBlock(ctx, uuid.MustParse(customerID)); err != nil {
		t.Fatalf("block customer: %v", err)
	}
	httpJSON(t, server, "POST", "/auth/login", map[string]any{
		"email":    "dewi@example.com",
		"password": "rahasia123",
	}, "", http.StatusForbidden)

	var csv bytes.Buffer
	name, err := dash.ExportCustomers(ctx, &csv)
	if err != nil {
		t.Fatalf("export customers: %v", err)
	}
	if !strings.HasPrefix(name, "customers-") {
		t.Fatalf("export file name: %q", name)
	}
	if !strings.Contains(csv.String(), "Dewi Lestari") {
		t.Fatalf("export missing customer:\n%s", csv.String())
	}

	today := time.Now().In(format.Jakarta())
	summary, err := dash.Summary(ctx, listview.DateRange{Start: today.AddDate(0, 0, -6), End: today})
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.OrderCount != 1 {
		t.Fatalf("summary order count: got %d", summary.OrderCount)
	}
}

func setupPostgresContainer(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("kopi_test"),
		tcpostgres.WithUsername("kopi"),
		tcpostgres.WithPassword("kopi"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("get connection string: %v", err)
	}

	cleanup := func() {
		if err := pgContainer.Terminate(context.Background()); err != nil {
			t.Logf("terminate container: %v", err)
		}
	}
	return connStr, cleanup
}

func createAdmin(t *testing.T, ctx context.Context, q *database.Queries, email, password string) {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if _, err := q.CreateUser(ctx, database.CreateUserParams{
		Name:           "Admin",
		Email:          email,
		Role:           enum.UserRoleAdmin,
		HashedPassword: hash,
	}); err != nil {
		t.Fatalf("create admin: %v", err)
	}
}

func login(t *testing.T, server *httptest.Server, email, password string) string {
	t.Helper()
	resp := httpJSON(t, server, "POST", "/auth/login", map[string]any{
		"email":    email,
		"password": password,
	}, "", http.StatusOK)
	token, ok := resp["access_token"].(string)
	if !ok || token == "" {
		t.Fatalf("login failed: no access_token in response: %+v", resp)
	}
	return token
}

func httpJSON(t *testing.T, server *httptest.Server, method, path string, body any, token string, want int) map[string]any {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, server.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != want {
		t.Fatalf("%s %s: status %d, want %d: %s", method, path, resp.StatusCode, want, raw)
	}

	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		if err := json.Unmarshal(raw, &out); err != nil {
			t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return out
}

func httpJSONArray(t *testing.T, server *httptest.Server, path string) []map[string]any {
	t.Helper()
	resp, err := http.Get(server.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	var out []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return out
}
