package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rumahkopi/api/internal/domain"
	"github.com/rumahkopi/api/internal/events"
)

type mockAdminStore struct {
	toggleUserBlockFn         func(ctx context.Context, id uuid.UUID) (domain.User, error)
	setMenuItemAvailabilityFn func(ctx context.Context, id uuid.UUID, available bool) error
	getMenuItemFn             func(ctx context.Context, id uuid.UUID) (domain.MenuItem, error)
	listMenuItemsFn           func(ctx context.Context, availableOnly bool) ([]domain.MenuItem, error)
	setPackageActiveFn        func(ctx context.Context, id uuid.UUID, active bool) (domain.Package, error)
	deletePackageFn           func(ctx context.Context, id uuid.UUID) error
}

func (m *mockAdminStore) ToggleUserBlock(ctx context.Context, id uuid.UUID) (domain.User, error) {
	return m.toggleUserBlockFn(ctx, id)
}
func (m *mockAdminStore) SetMenuItemAvailability(ctx context.Context, id uuid.UUID, available bool) error {
	return m.setMenuItemAvailabilityFn(ctx, id, available)
}
func (m *mockAdminStore) GetMenuItem(ctx context.Context, id uuid.UUID) (domain.MenuItem, error) {
	return m.getMenuItemFn(ctx, id)
}
func (m *mockAdminStore) ListMenuItems(ctx context.Context, availableOnly bool) ([]domain.MenuItem, error) {
	return m.listMenuItemsFn(ctx, availableOnly)
}
func (m *mockAdminStore) SetPackageActive(ctx context.Context, id uuid.UUID, active bool) (domain.Package, error) {
	return m.setPackageActiveFn(ctx, id, active)
}
func (m *mockAdminStore) DeletePackage(ctx context.Context, id uuid.UUID) error {
	return m.deletePackageFn(ctx, id)
}

type countingInvalidator struct {
	calls int
	err   error
}

func (c *countingInvalidator) Invalidate(ctx context.Context) error {
	c.calls++
	return c.err
}

func TestToggleUserBlock(t *testing.T) {
	id := uuid.New()
	store := &mockAdminStore{
		toggleUserBlockFn: func(ctx context.Context, got uuid.UUID) (domain.User, error) {
			return domain.User{ID: got, Name: "Budi", IsBlocked: true}, nil
		},
	}
	pub := &recordingPublisher{}
	svc := NewAdminService(store, nil, pub)

	user, err := svc.ToggleUserBlock(context.Background(), id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !user.IsBlocked {
		t.Error("expected user to be blocked")
	}
	if len(pub.events) != 1 || pub.events[0].Type != events.UserBlockToggled || *pub.events[0].UserID != id {
		t.Errorf("unexpected events %+v", pub.events)
	}
}

func TestToggleUserBlock_NotFound(t *testing.T) {
	store := &mockAdminStore{
		toggleUserBlockFn: func(ctx context.Context, id uuid.UUID) (domain.User, error) {
			return domain.User{}, pgx.ErrNoRows
		},
	}
	svc := NewAdminService(store, nil, nil)

	_, err := svc.ToggleUserBlock(context.Background(), uuid.New())
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got: %v", err)
	}
}

func TestSetMenuAvailability_ReturnsFullMenu(t *testing.T) {
	id := uuid.New()
	var stored *bool
	store := &mockAdminStore{
		setMenuItemAvailabilityFn: func(ctx context.Context, got uuid.UUID, available bool) error {
			stored = &available
			return nil
		},
		getMenuItemFn: func(ctx context.Context, got uuid.UUID) (domain.MenuItem, error) {
			return domain.MenuItem{ID: got, Name: "Es Teh", IsAvailable: *stored}, nil
		},
		listMenuItemsFn: func(ctx context.Context, availableOnly bool) ([]domain.MenuItem, error) {
			if availableOnly {
				t.Error("dashboard needs the full menu, not only available items")
			}
			return []domain.MenuItem{{ID: id}, {ID: uuid.New()}}, nil
		},
	}
	cache := &countingInvalidator{}
	svc := NewAdminService(store, cache, nil)

	res, err := svc.SetMenuAvailability(context.Background(), id, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Item.IsAvailable {
		t.Error("expected item to be unavailable")
	}
	if len(res.Menu) != 2 {
		t.Errorf("expected full menu of 2, got %d", len(res.Menu))
	}
	if cache.calls != 1 {
		t.Errorf("expected cache invalidation, got %d calls", cache.calls)
	}
}

func TestSetMenuAvailability_CacheErrorIgnored(t *testing.T) {
	store := &mockAdminStore{
		setMenuItemAvailabilityFn: func(ctx context.Context, id uuid.UUID, available bool) error { return nil },
		getMenuItemFn: func(ctx context.Context, id uuid.UUID) (domain.MenuItem, error) {
			return domain.MenuItem{ID: id, IsAvailable: true}, nil
		},
		listMenuItemsFn: func(ctx context.Context, availableOnly bool) ([]domain.MenuItem, error) {
			return nil, nil
		},
	}
	svc := NewAdminService(store, &countingInvalidator{err: errors.New("redis down")}, nil)

	if _, err := svc.SetMenuAvailability(context.Background(), uuid.New(), true); err != nil {
		t.Fatalf("cache failure must not fail the toggle: %v", err)
	}
}

func TestSetMenuAvailability_NotFound(t *testing.T) {
	store := &mockAdminStore{
		setMenuItemAvailabilityFn: func(ctx context.Context, id uuid.UUID, available bool) error {
			return pgx.ErrNoRows
		},
	}
	cache := &countingInvalidator{}
	svc := NewAdminService(store, cache, nil)

	_, err := svc.SetMenuAvailability(context.Background(), uuid.New(), true)
	if !errors.Is(err, ErrMenuItemNotFound) {
		t.Fatalf("expected ErrMenuItemNotFound, got: %v", err)
	}
	if cache.calls != 0 {
		t.Error("nothing changed, cache must stay")
	}
}

func TestSetPackageActive(t *testing.T) {
	store := &mockAdminStore{
		setPackageActiveFn: func(ctx context.Context, id uuid.UUID, active bool) (domain.Package, error) {
			return domain.Package{ID: id, IsActive: active}, nil
		},
	}
	pub := &recordingPublisher{}
	svc := NewAdminService(store, nil, pub)

	pkg, err := svc.SetPackageActive(context.Background(), uuid.New(), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pkg.IsActive {
		t.Error("expected inactive package")
	}
	if len(pub.events) != 1 || pub.events[0].Type != events.PackageStatusChanged || pub.events[0].UserID != nil {
		t.Errorf("unexpected events %+v", pub.events)
	}
}

func TestDeletePackage(t *testing.T) {
	missing := uuid.New()
	store := &mockAdminStore{
		deletePackageFn: func(ctx context.Context, id uuid.UUID) error {
			if id == missing {
				return pgx.ErrNoRows
			}
			return nil
		},
	}
	pub := &recordingPublisher{}
	svc := NewAdminService(store, nil, pub)

	if err := svc.DeletePackage(context.Background(), uuid.New()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.DeletePackage(context.Background(), missing); !errors.Is(err, ErrPackageNotFound) {
		t.Fatalf("expected ErrPackageNotFound, got: %v", err)
	}
	if len(pub.events) != 1 || pub.events[0].Type != events.PackageDeleted {
		t.Errorf("expected exactly one package.deleted event, got %+v", pub.events)
	}
}
