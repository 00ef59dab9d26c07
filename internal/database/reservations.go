package database

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/rumahkopi/api/internal/domain"
	"github.com/shopspring/decimal"
)

const ReservationCodeConstraint = "reservations_code_key"

func reservationSelect() squirrel.SelectBuilder {
	return psql.Select(
		"r.id", "r.code", "r.user_id", "u.name AS customer_name", "u.phone AS customer_phone",
		"r.package_id", "COALESCE(p.name, '') AS package_name", "r.reservation_date", "r.reservation_time",
		"r.guests", "r.total", "r.status", "r.notes", "r.created_at", "r.updated_at",
	).From("reservations r").
		Join("users u ON u.id = r.user_id").
		LeftJoin("packages p ON p.id = r.package_id")
}

func (q *Queries) GetNextReservationSequence(ctx context.Context, prefix string) (int32, error) {
	var next int32
	err := get(ctx, q.db, &next, psql.Select(
		"COALESCE(MAX(CAST(split_part(code, '-', 3) AS INT)), 0) + 1",
	).From("reservations").Where(squirrel.Like{"code": prefix + "%"}), "next reservation sequence")
	return next, err
}

type CreateReservationParams struct {
	Code            string
	UserID          uuid.UUID
	PackageID       uuid.UUID
	ReservationDate time.Time
	ReservationTime string
	Guests          int32
	Total           decimal.Decimal
	Notes           *string
}

func (q *Queries) CreateReservation(ctx context.Context, arg CreateReservationParams) (uuid.UUID, error) {
	var id uuid.UUID
	err := get(ctx, q.db, &id, psql.Insert("reservations").
		Columns("code", "user_id", "package_id", "reservation_date", "reservation_time", "guests", "total", "notes").
		Values(arg.Code, arg.UserID, arg.PackageID, arg.ReservationDate, arg.ReservationTime, arg.Guests, arg.Total, arg.Notes).
		Suffix("RETURNING id"), "create reservation")
	return id, err
}

func (q *Queries) GetReservation(ctx context.Context, id uuid.UUID) (domain.Reservation, error) {
	var r domain.Reservation
	err := get(ctx, q.db, &r, reservationSelect().Where(squirrel.Eq{"r.id": id}), "get reservation")
	return r, err
}

func (q *Queries) ListReservations(ctx context.Context, userID *uuid.UUID) ([]domain.Reservation, error) {
	b := reservationSelect().OrderBy("r.reservation_date DESC", "r.reservation_time DESC")
	if userID != nil {
		b = b.Where(squirrel.Eq{"r.user_id": *userID})
	}
	var rows []domain.Reservation
	err := selectAll(ctx, q.db, &rows, b, "list reservations")
	return rows, err
}

type UpdateReservationStatusParams struct {
	ID   uuid.UUID
	From []string
	To   string
}

// UpdateReservationStatus applies only while the reservation is in one of
// the From statuses.
func (q *Queries) UpdateReservationStatus(ctx context.Context, arg UpdateReservationStatusParams) error {
	return exec(ctx, q.db, psql.Update("reservations").
		Set("status", arg.To).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": arg.ID, "status": arg.From}), "update reservation status")
}
