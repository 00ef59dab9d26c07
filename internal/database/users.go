package database

import (
	"context"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/rumahkopi/api/internal/domain"
	"github.com/rumahkopi/api/internal/enum"
)

const UserEmailConstraint = "users_email_key"

var userColumns = []string{
	"id", "name", "email", "phone", "role", "hashed_password", "is_blocked", "created_at", "updated_at",
}

type CreateUserParams struct {
	Name           string
	Email          string
	Phone          string
	Role           string
	HashedPassword string
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (domain.User, error) {
	var u domain.User
	err := get(ctx, q.db, &u, psql.Insert("users").
		Columns("name", "email", "phone", "role", "hashed_password").
		Values(arg.Name, strings.ToLower(arg.Email), arg.Phone, arg.Role, arg.HashedPassword).
		Suffix("RETURNING "+strings.Join(userColumns, ", ")), "create user")
	return u, err
}

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	var u domain.User
	err := get(ctx, q.db, &u, psql.Select(userColumns...).From("users").
		Where(squirrel.Eq{"email": strings.ToLower(email)}), "get user by email")
	return u, err
}

func (q *Queries) GetUser(ctx context.Context, id uuid.UUID) (domain.User, error) {
	var u domain.User
	err := get(ctx, q.db, &u, psql.Select(userColumns...).From("users").
		Where(squirrel.Eq{"id": id}), "get user")
	return u, err
}

// ToggleUserBlock flips is_blocked. Admin accounts are never matched.
func (q *Queries) ToggleUserBlock(ctx context.Context, id uuid.UUID) (domain.User, error) {
	var u domain.User
	err := get(ctx, q.db, &u, psql.Update("users").
		Set("is_blocked", squirrel.Expr("NOT is_blocked")).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.NotEq{"role": enum.UserRoleAdmin}).
		Suffix("RETURNING "+strings.Join(userColumns, ", ")), "toggle user block")
	return u, err
}

// ListCustomers returns every customer with order count and non-cancelled
// spend. The totals are NULL for customers without orders or reservations.
func (q *Queries) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	var rows []domain.Customer
	err := selectAll(ctx, q.db, &rows, psql.Select(
		"u.id", "u.name", "u.email", "u.phone", "u.is_blocked", "u.created_at",
		"(SELECT count(*) FROM orders o WHERE o.user_id = u.id) AS order_count",
		"(SELECT sum(o.total) FROM orders o WHERE o.user_id = u.id AND o.status <> 'cancelled') AS orders_total",
		"(SELECT sum(r.total) FROM reservations r WHERE r.user_id = u.id AND r.status <> 'cancelled') AS reservations_total",
	).From("users u").
		Where(squirrel.Eq{"u.role": enum.UserRoleCustomer}).
		OrderBy("u.created_at DESC"), "list customers")
	return rows, err
}

func (q *Queries) ListStaff(ctx context.Context) ([]domain.StaffMember, error) {
	var rows []domain.StaffMember
	err := selectAll(ctx, q.db, &rows, psql.Select("id", "name", "email", "phone", "role", "is_blocked", "created_at").
		From("users").
		Where(squirrel.Eq{"role": []string{enum.UserRoleAdmin, enum.UserRoleStaff}}).
		OrderBy("name"), "list staff")
	return rows, err
}
