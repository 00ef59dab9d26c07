package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rumahkopi/api/internal/domain"
	"github.com/rumahkopi/api/internal/events"
	"github.com/rumahkopi/api/internal/logger"
	"go.uber.org/zap"
)

var ErrUserNotFound = errors.New("user not found")

// AdminStore defines the DB methods behind the dashboard toggles.
// Satisfied by *database.Queries.
type AdminStore interface {
	ToggleUserBlock(ctx context.Context, id uuid.UUID) (domain.User, error)
	SetMenuItemAvailability(ctx context.Context, id uuid.UUID, available bool) error
	GetMenuItem(ctx context.Context, id uuid.UUID) (domain.MenuItem, error)
	ListMenuItems(ctx context.Context, availableOnly bool) ([]domain.MenuItem, error)
	SetPackageActive(ctx context.Context, id uuid.UUID, active bool) (domain.Package, error)
	DeletePackage(ctx context.Context, id uuid.UUID) error
}

// MenuInvalidator drops cached copies of the public menu.
type MenuInvalidator interface {
	Invalidate(ctx context.Context) error
}

// MenuToggleResult is the toggled item plus the full menu after the change,
// which the dashboard adopts as its new collection.
type MenuToggleResult struct {
	Item domain.MenuItem   `json:"item"`
	Menu []domain.MenuItem `json:"menu"`
}

type AdminService struct {
	store  AdminStore
	menu   MenuInvalidator
	events events.Publisher
}

func NewAdminService(store AdminStore, menu MenuInvalidator, pub events.Publisher) *AdminService {
	if pub == nil {
		pub = events.Nop{}
	}
	return &AdminService{store: store, menu: menu, events: pub}
}

// ToggleUserBlock flips the block flag of a customer or staff account.
// Admin accounts cannot be blocked and report ErrUserNotFound.
func (s *AdminService) ToggleUserBlock(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.store.ToggleUserBlock(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("toggle user block: %w", err)
	}
	_ = s.events.Publish(ctx, events.New(events.UserBlockToggled, user, &user.ID))
	return &user, nil
}

// SetMenuAvailability stores the requested availability and returns the
// item with the whole menu.
func (s *AdminService) SetMenuAvailability(ctx context.Context, id uuid.UUID, available bool) (*MenuToggleResult, error) {
	if err := s.store.SetMenuItemAvailability(ctx, id, available); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMenuItemNotFound
		}
		return nil, fmt.Errorf("set menu availability: %w", err)
	}
	s.invalidateMenu(ctx)

	item, err := s.store.GetMenuItem(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get menu item: %w", err)
	}
	menu, err := s.store.ListMenuItems(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("list menu items: %w", err)
	}

	_ = s.events.Publish(ctx, events.New(events.MenuAvailabilityChanged, item, nil))
	return &MenuToggleResult{Item: item, Menu: menu}, nil
}

func (s *AdminService) SetPackageActive(ctx context.Context, id uuid.UUID, active bool) (*domain.Package, error) {
	pkg, err := s.store.SetPackageActive(ctx, id, active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPackageNotFound
		}
		return nil, fmt.Errorf("set package active: %w", err)
	}
	_ = s.events.Publish(ctx, events.New(events.PackageStatusChanged, pkg, nil))
	return &pkg, nil
}

// DeletePackage removes a package. Reservations keep their row with the
// package reference cleared.
func (s *AdminService) DeletePackage(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeletePackage(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrPackageNotFound
		}
		return fmt.Errorf("delete package: %w", err)
	}
	_ = s.events.Publish(ctx, events.New(events.PackageDeleted, map[string]uuid.UUID{"id": id}, nil))
	return nil
}

// InvalidateMenu is called after any menu write outside this service.
func (s *AdminService) InvalidateMenu(ctx context.Context) {
	s.invalidateMenu(ctx)
}

func (s *AdminService) invalidateMenu(ctx context.Context) {
	if s.menu == nil {
		return
	}
	if err := s.menu.Invalidate(ctx); err != nil {
		logger.Global().WithComponent("service").Warn("menu cache invalidation failed", zap.Error(err))
	}
}
