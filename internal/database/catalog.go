package database

import (
	"context"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/rumahkopi/api/internal/domain"
	"github.com/shopspring/decimal"
)

func (q *Queries) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var rows []domain.Category
	err := selectAll(ctx, q.db, &rows, psql.Select("id", "name", "created_at").
		From("categories").OrderBy("name"), "list categories")
	return rows, err
}

func (q *Queries) CreateCategory(ctx context.Context, name string) (domain.Category, error) {
	var c domain.Category
	err := get(ctx, q.db, &c, psql.Insert("categories").Columns("name").Values(name).
		Suffix("RETURNING id, name, created_at"), "create category")
	return c, err
}

func menuItemSelect() squirrel.SelectBuilder {
	return psql.Select(
		"m.id", "m.category_id", "COALESCE(c.name, '') AS category_name", "m.name", "m.slug",
		"m.description", "m.price", "m.image_url", "m.is_available", "m.created_at",
	).From("menu_items m").LeftJoin("categories c ON c.id = m.category_id")
}

// ListMenuItems returns the whole menu, or only available items.
func (q *Queries) ListMenuItems(ctx context.Context, availableOnly bool) ([]domain.MenuItem, error) {
	b := menuItemSelect().OrderBy("m.name")
	if availableOnly {
		b = b.Where(squirrel.Eq{"m.is_available": true})
	}
	var rows []domain.MenuItem
	err := selectAll(ctx, q.db, &rows, b, "list menu items")
	return rows, err
}

func (q *Queries) GetMenuItem(ctx context.Context, id uuid.UUID) (domain.MenuItem, error) {
	var m domain.MenuItem
	err := get(ctx, q.db, &m, menuItemSelect().Where(squirrel.Eq{"m.id": id}), "get menu item")
	return m, err
}

type CreateMenuItemParams struct {
	CategoryID  *uuid.UUID
	Name        string
	Slug        string
	Description string
	Price       decimal.Decimal
	ImageURL    string
}

func (q *Queries) CreateMenuItem(ctx context.Context, arg CreateMenuItemParams) (uuid.UUID, error) {
	var id uuid.UUID
	err := get(ctx, q.db, &id, psql.Insert("menu_items").
		Columns("category_id", "name", "slug", "description", "price", "image_url").
		Values(arg.CategoryID, arg.Name, arg.Slug, arg.Description, arg.Price, arg.ImageURL).
		Suffix("RETURNING id"), "create menu item")
	return id, err
}

func (q *Queries) SetMenuItemAvailability(ctx context.Context, id uuid.UUID, available bool) error {
	return exec(ctx, q.db, psql.Update("menu_items").
		Set("is_available", available).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}), "set menu item availability")
}

var packageColumns = []string{
	"id", "name", "slug", "description", "price", "min_guests", "max_guests", "is_active", "created_at",
}

func (q *Queries) ListPackages(ctx context.Context, activeOnly bool) ([]domain.Package, error) {
	b := psql.Select(packageColumns...).From("packages").OrderBy("name")
	if activeOnly {
		b = b.Where(squirrel.Eq{"is_active": true})
	}
	var rows []domain.Package
	err := selectAll(ctx, q.db, &rows, b, "list packages")
	return rows, err
}

func (q *Queries) GetPackage(ctx context.Context, id uuid.UUID) (domain.Package, error) {
	var p domain.Package
	err := get(ctx, q.db, &p, psql.Select(packageColumns...).From("packages").
		Where(squirrel.Eq{"id": id}), "get package")
	return p, err
}

type CreatePackageParams struct {
	Name        string
	Slug        string
	Description string
	Price       decimal.Decimal
	MinGuests   int32
	MaxGuests   int32
}

func (q *Queries) CreatePackage(ctx context.Context, arg CreatePackageParams) (domain.Package, error) {
	var p domain.Package
	err := get(ctx, q.db, &p, psql.Insert("packages").
		Columns("name", "slug", "description", "price", "min_guests", "max_guests").
		Values(arg.Name, arg.Slug, arg.Description, arg.Price, arg.MinGuests, arg.MaxGuests).
		Suffix("RETURNING "+strings.Join(packageColumns, ", ")), "create package")
	return p, err
}

func (q *Queries) SetPackageActive(ctx context.Context, id uuid.UUID, active bool) (domain.Package, error) {
	var p domain.Package
	err := get(ctx, q.db, &p, psql.Update("packages").
		Set("is_active", active).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING "+strings.Join(packageColumns, ", ")), "set package active")
	return p, err
}

// DeletePackage removes a package. Existing reservations keep their row
// with package_id set to NULL.
func (q *Queries) DeletePackage(ctx context.Context, id uuid.UUID) error {
	return exec(ctx, q.db, psql.Delete("packages").Where(squirrel.Eq{"id": id}), "delete package")
}
