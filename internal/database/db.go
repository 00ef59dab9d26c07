// Package database is the Postgres access layer. Queries are built with
// squirrel and scanned with scany into the domain record types; method
// names mirror the SQL they run so handlers and services can declare narrow
// store interfaces satisfied by *Queries.
package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is satisfied by *pgxpool.Pool, pgx.Tx and pgxmock.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx pgx.Tx) *Queries {
	return &Queries{db: tx}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Connect opens a pool and verifies it with a ping.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// get runs a single-row query. A missing row is reported as pgx.ErrNoRows so
// callers can keep testing with errors.Is.
func get(ctx context.Context, db DBTX, dst any, b squirrel.Sqlizer, what string) error {
	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build %s query: %w", what, err)
	}
	if err := pgxscan.Get(ctx, db, dst, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return fmt.Errorf("%s: %w", what, pgx.ErrNoRows)
		}
		return fmt.Errorf("%s: %w", what, err)
	}
	return nil
}

func selectAll(ctx context.Context, db DBTX, dst any, b squirrel.Sqlizer, what string) error {
	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build %s query: %w", what, err)
	}
	if err := pgxscan.Select(ctx, db, dst, query, args...); err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	return nil
}

// exec runs a statement and reports pgx.ErrNoRows when nothing was affected.
func exec(ctx context.Context, db DBTX, b squirrel.Sqlizer, what string) error {
	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build %s query: %w", what, err)
	}
	tag, err := db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", what, pgx.ErrNoRows)
	}
	return nil
}

// IsUniqueViolation reports a 23505 error, optionally on a specific
// constraint.
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && (constraint == "" || pgErr.ConstraintName == constraint)
	}
	return false
}

// IsForeignKeyViolation reports a 23503 error.
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
