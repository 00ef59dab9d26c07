package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rumahkopi/api/internal/database"
	"github.com/rumahkopi/api/internal/domain"
	"github.com/rumahkopi/api/internal/handler"
	"github.com/rumahkopi/api/internal/service"
	"github.com/shopspring/decimal"
)

type mockPackageStore struct {
	packages []domain.Package
}

func (m *mockPackageStore) add(name string, active bool) domain.Package {
	p := domain.Package{
		ID: uuid.New(), Name: name, Price: decimal.NewFromInt(150000),
		MinGuests: 2, MaxGuests: 10, IsActive: active,
	}
	m.packages = append(m.packages, p)
	return p
}

func (m *mockPackageStore) ListPackages(_ context.Context, activeOnly bool) ([]domain.Package, error) {
	var out []domain.Package
	for _, p := range m.packages {
		if !activeOnly || p.IsActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockPackageStore) CreatePackage(_ context.Context, arg database.CreatePackageParams) (domain.Package, error) {
	p := domain.Package{
		ID: uuid.New(), Name: arg.Name, Slug: arg.Slug, Price: arg.Price,
		MinGuests: arg.MinGuests, MaxGuests: arg.MaxGuests, IsActive: true,
	}
	m.packages = append(m.packages, p)
	return p, nil
}

func (m *mockPackageStore) index(id uuid.UUID) int {
	for i, p := range m.packages {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// SetPackageActive and DeletePackage make the store double as PackageAdmin.
func (m *mockPackageStore) SetPackageActive(_ context.Context, id uuid.UUID, active bool) (*domain.Package, error) {
	i := m.index(id)
	if i < 0 {
		return nil, service.ErrPackageNotFound
	}
	m.packages[i].IsActive = active
	p := m.packages[i]
	return &p, nil
}

func (m *mockPackageStore) DeletePackage(_ context.Context, id uuid.UUID) error {
	i := m.index(id)
	if i < 0 {
		return service.ErrPackageNotFound
	}
	m.packages = append(m.packages[:i], m.packages[i+1:]...)
	return nil
}

func setupPackageRouter(store *mockPackageStore) *chi.Mux {
	h := handler.NewPackageHandler(store, store)
	r := authRouter()
	h.RegisterRoutes(r)
	r.Route("/admin", h.RegisterAdminRoutes)
	return r
}

func TestPackagesPublic_OnlyActive(t *testing.T) {
	store := &mockPackageStore{}
	store.add("Paket Arisan", true)
	store.add("Paket Ulang Tahun", false)
	router := setupPackageRouter(store)

	rr := doAuthRequest(t, router, "GET", "/packages", nil, customerClaims())
	expectStatus(t, rr, http.StatusOK)

	pkgs := decodeArray(t, rr)
	if len(pkgs) != 1 || pkgs[0]["name"] != "Paket Arisan" {
		t.Errorf("expected only the active package, got %v", pkgs)
	}
}

func TestPackageToggle(t *testing.T) {
	store := &mockPackageStore{}
	p := store.add("Paket Arisan", true)
	router := setupPackageRouter(store)

	rr := doAuthRequest(t, router, "PATCH", "/admin/packages/"+p.ID.String()+"/toggle-status",
		map[string]bool{"is_active": false}, adminClaims())
	expectStatus(t, rr, http.StatusOK)

	resp := decodeResponse(t, rr)
	if resp["is_active"] != false {
		t.Errorf("expected inactive package, got %v", resp["is_active"])
	}
	if store.packages[0].IsActive {
		t.Error("store not updated")
	}
}

func TestPackageToggle_NotFound(t *testing.T) {
	router := setupPackageRouter(&mockPackageStore{})

	rr := doAuthRequest(t, router, "PATCH", "/admin/packages/"+uuid.New().String()+"/toggle-status",
		map[string]bool{"is_active": true}, adminClaims())
	expectStatus(t, rr, http.StatusNotFound)
}

func TestPackageDelete(t *testing.T) {
	store := &mockPackageStore{}
	p := store.add("Paket Arisan", true)
	router := setupPackageRouter(store)

	rr := doAuthRequest(t, router, "DELETE", "/admin/packages/"+p.ID.String()+"/delete", nil, adminClaims())
	expectStatus(t, rr, http.StatusNoContent)
	if len(store.packages) != 0 {
		t.Errorf("expected package removed, %d left", len(store.packages))
	}

	rr = doAuthRequest(t, router, "DELETE", "/admin/packages/"+p.ID.String()+"/delete", nil, adminClaims())
	expectStatus(t, rr, http.StatusNotFound)
}

func TestPackageCreate_GuestBounds(t *testing.T) {
	store := &mockPackageStore{}
	router := setupPackageRouter(store)

	rr := doAuthRequest(t, router, "POST", "/admin/packages", map[string]interface{}{
		"name":       "Paket Keluarga",
		"price":      "125000",
		"min_guests": 6,
		"max_guests": 4,
	}, adminClaims())
	expectStatus(t, rr, http.StatusBadRequest)

	rr = doAuthRequest(t, router, "POST", "/admin/packages", map[string]interface{}{
		"name":       "Paket Keluarga",
		"price":      "125000",
		"min_guests": 4,
		"max_guests": 8,
	}, adminClaims())
	expectStatus(t, rr, http.StatusCreated)

	resp := decodeResponse(t, rr)
	if resp["slug"] != "paket-keluarga" {
		t.Errorf("slug = %v", resp["slug"])
	}
}

func TestPackageAdminList_StatusFilter(t *testing.T) {
	store := &mockPackageStore{}
	store.add("Paket A", true)
	store.add("Paket B", false)
	store.add("Paket C", true)
	router := setupPackageRouter(store)

	rr := doAuthRequest(t, router, "GET", "/admin/packages?status=inactive", nil, adminClaims())
	expectStatus(t, rr, http.StatusOK)

	resp := decodeResponse(t, rr)
	data := resp["data"].([]interface{})
	if len(data) != 1 || data[0].(map[string]interface{})["name"] != "Paket B" {
		t.Errorf("expected only Paket B, got %v", data)
	}
}
