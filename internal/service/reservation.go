package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rumahkopi/api/internal/database"
	"github.com/rumahkopi/api/internal/domain"
	"github.com/rumahkopi/api/internal/enum"
	"github.com/rumahkopi/api/internal/events"
	"github.com/rumahkopi/api/internal/format"
	"github.com/shopspring/decimal"
)

// Errors returned by the reservation service.
var (
	ErrInvalidPackageID      = errors.New("invalid package_id")
	ErrPackageNotFound       = errors.New("package not found")
	ErrPackageInactive       = errors.New("package is not available for booking")
	ErrInvalidGuests         = errors.New("guests outside the package limits")
	ErrInvalidDate           = errors.New("invalid reservation_date, expected YYYY-MM-DD")
	ErrInvalidTime           = errors.New("invalid reservation_time, expected HH:MM")
	ErrReservationInPast     = errors.New("reservation must be in the future")
	ErrReservationNotFound   = errors.New("reservation not found")
	ErrNotReservationOwner   = errors.New("reservation belongs to another customer")
	ErrReservationNotPending = errors.New("reservation can no longer be changed")
)

// ReservationStore defines the DB methods needed for reservations.
// Satisfied by *database.Queries.
type ReservationStore interface {
	GetNextReservationSequence(ctx context.Context, prefix string) (int32, error)
	GetPackage(ctx context.Context, id uuid.UUID) (domain.Package, error)
	CreateReservation(ctx context.Context, arg database.CreateReservationParams) (uuid.UUID, error)
	GetReservation(ctx context.Context, id uuid.UUID) (domain.Reservation, error)
	UpdateReservationStatus(ctx context.Context, arg database.UpdateReservationStatusParams) error
}

type NewReservationStore func(db database.DBTX) ReservationStore

type CreateReservationRequest struct {
	UserID    uuid.UUID
	PackageID string
	Date      string // YYYY-MM-DD, Asia/Jakarta
	Time      string // HH:MM
	Guests    int32
	Notes     string
}

// reservationTransitions mirrors orderTransitions. A reservation is
// cancellable while pending or confirmed.
var reservationTransitions = map[string][]string{
	enum.ReservationStatusPending:   {enum.ReservationStatusConfirmed, enum.ReservationStatusCancelled},
	enum.ReservationStatusConfirmed: {enum.ReservationStatusCompleted, enum.ReservationStatusCancelled},
}

type ReservationService struct {
	pool     TxBeginner
	newStore NewReservationStore
	events   events.Publisher
	now      func() time.Time
}

func NewReservationService(pool TxBeginner, newStore NewReservationStore, pub events.Publisher) *ReservationService {
	if pub == nil {
		pub = events.Nop{}
	}
	return &ReservationService{pool: pool, newStore: newStore, events: pub, now: time.Now}
}

// Create books a package. The total is the package price times guests.
func (s *ReservationService) Create(ctx context.Context, req CreateReservationRequest) (*domain.Reservation, error) {
	packageID, err := uuid.Parse(req.PackageID)
	if err != nil {
		return nil, ErrInvalidPackageID
	}

	loc := format.Jakarta()
	day, err := time.ParseInLocation("2006-01-02", req.Date, loc)
	if err != nil {
		return nil, ErrInvalidDate
	}
	clock, err := time.Parse("15:04", req.Time)
	if err != nil {
		return nil, ErrInvalidTime
	}
	scheduled := time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, loc)
	if !scheduled.After(s.now()) {
		return nil, ErrReservationInPast
	}

	var lastErr error
	for attempt := 0; attempt < maxCodeRetries; attempt++ {
		res, err := s.createTx(ctx, req, packageID, day)
		if err == nil {
			_ = s.events.Publish(ctx, events.New(events.ReservationCreated, res, &res.UserID))
			return res, nil
		}
		if database.IsUniqueViolation(err, database.ReservationCodeConstraint) {
			lastErr = err
			continue
		}
		return nil, err
	}
	return nil, lastErr
}

func (s *ReservationService) createTx(ctx context.Context, req CreateReservationRequest, packageID uuid.UUID, day time.Time) (*domain.Reservation, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	pkg, err := store.GetPackage(ctx, packageID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPackageNotFound
		}
		return nil, fmt.Errorf("get package: %w", err)
	}
	if !pkg.IsActive {
		return nil, ErrPackageInactive
	}
	if req.Guests < max(pkg.MinGuests, 1) || (pkg.MaxGuests > 0 && req.Guests > pkg.MaxGuests) {
		return nil, fmt.Errorf("%d guests (%d-%d): %w", req.Guests, pkg.MinGuests, pkg.MaxGuests, ErrInvalidGuests)
	}

	prefix := "RSV-" + s.now().In(format.Jakarta()).Format("20060102") + "-"
	seq, err := store.GetNextReservationSequence(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("get next reservation sequence: %w", err)
	}

	id, err := store.CreateReservation(ctx, database.CreateReservationParams{
		Code:            fmt.Sprintf("%s%03d", prefix, seq),
		UserID:          req.UserID,
		PackageID:       packageID,
		ReservationDate: day,
		ReservationTime: req.Time,
		Guests:          req.Guests,
		Total:           pkg.Price.Mul(decimal.NewFromInt32(req.Guests)),
		Notes:           optional(req.Notes),
	})
	if err != nil {
		return nil, fmt.Errorf("create reservation: %w", err)
	}

	res, err := store.GetReservation(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return &res, nil
}

// Cancel cancels a customer's own reservation.
func (s *ReservationService) Cancel(ctx context.Context, userID, id uuid.UUID) (*domain.Reservation, error) {
	return s.transition(ctx, id, enum.ReservationStatusCancelled, &userID)
}

// AdminCancel cancels any pending or confirmed reservation.
func (s *ReservationService) AdminCancel(ctx context.Context, id uuid.UUID) (*domain.Reservation, error) {
	return s.transition(ctx, id, enum.ReservationStatusCancelled, nil)
}

func (s *ReservationService) Confirm(ctx context.Context, id uuid.UUID) (*domain.Reservation, error) {
	return s.transition(ctx, id, enum.ReservationStatusConfirmed, nil)
}

func (s *ReservationService) Complete(ctx context.Context, id uuid.UUID) (*domain.Reservation, error) {
	return s.transition(ctx, id, enum.ReservationStatusCompleted, nil)
}

// transition applies a status change. When owner is set only that user's
// reservation may change.
func (s *ReservationService) transition(ctx context.Context, id uuid.UUID, to string, owner *uuid.UUID) (*domain.Reservation, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	current, err := store.GetReservation(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	if owner != nil && current.UserID != *owner {
		return nil, ErrNotReservationOwner
	}
	if !canTransition(reservationTransitions, current.Status, to) {
		return nil, fmt.Errorf("%s -> %s: %w", current.Status, to, ErrReservationNotPending)
	}

	from := []string{}
	for status, next := range reservationTransitions {
		if slices.Contains(next, to) {
			from = append(from, status)
		}
	}
	slices.Sort(from)

	err = store.UpdateReservationStatus(ctx, database.UpdateReservationStatusParams{ID: id, From: from, To: to})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStatusConflict
		}
		return nil, fmt.Errorf("update reservation status: %w", err)
	}

	updated, err := store.GetReservation(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	_ = s.events.Publish(ctx, events.New(events.ReservationStatusChanged, updated, &updated.UserID))
	return &updated, nil
}
