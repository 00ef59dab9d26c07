package database

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/rumahkopi/api/internal/domain"
)

type CreateReviewParams struct {
	UserID     uuid.UUID
	MenuItemID *uuid.UUID
	Rating     int32
	Comment    string
}

func (q *Queries) CreateReview(ctx context.Context, arg CreateReviewParams) (uuid.UUID, error) {
	var id uuid.UUID
	err := get(ctx, q.db, &id, psql.Insert("reviews").
		Columns("user_id", "menu_item_id", "rating", "comment").
		Values(arg.UserID, arg.MenuItemID, arg.Rating, arg.Comment).
		Suffix("RETURNING id"), "create review")
	return id, err
}

func reviewSelect() squirrel.SelectBuilder {
	return psql.Select(
		"rv.id", "rv.user_id", "u.name AS customer_name", "rv.menu_item_id",
		"COALESCE(m.name, '') AS menu_item_name", "rv.rating", "rv.comment", "rv.created_at",
	).From("reviews rv").
		Join("users u ON u.id = rv.user_id").
		LeftJoin("menu_items m ON m.id = rv.menu_item_id")
}

func (q *Queries) GetReview(ctx context.Context, id uuid.UUID) (domain.Review, error) {
	var r domain.Review
	err := get(ctx, q.db, &r, reviewSelect().Where(squirrel.Eq{"rv.id": id}), "get review")
	return r, err
}

func (q *Queries) ListReviews(ctx context.Context) ([]domain.Review, error) {
	var rows []domain.Review
	err := selectAll(ctx, q.db, &rows, reviewSelect().OrderBy("rv.created_at DESC"), "list reviews")
	return rows, err
}

func (q *Queries) ListFavorites(ctx context.Context, userID uuid.UUID) ([]domain.Favorite, error) {
	var rows []domain.Favorite
	err := selectAll(ctx, q.db, &rows, psql.Select(
		"f.user_id", "f.menu_item_id", "m.name AS menu_item_name", "m.price", "m.is_available", "f.created_at",
	).From("favorites f").
		Join("menu_items m ON m.id = f.menu_item_id").
		Where(squirrel.Eq{"f.user_id": userID}).
		OrderBy("f.created_at DESC"), "list favorites")
	return rows, err
}

// AddFavorite is idempotent.
func (q *Queries) AddFavorite(ctx context.Context, userID, menuItemID uuid.UUID) error {
	query, args, err := psql.Insert("favorites").
		Columns("user_id", "menu_item_id").
		Values(userID, menuItemID).
		Suffix("ON CONFLICT DO NOTHING").ToSql()
	if err != nil {
		return err
	}
	_, err = q.db.Exec(ctx, query, args...)
	return err
}

func (q *Queries) RemoveFavorite(ctx context.Context, userID, menuItemID uuid.UUID) error {
	return exec(ctx, q.db, psql.Delete("favorites").
		Where(squirrel.Eq{"user_id": userID, "menu_item_id": menuItemID}), "remove favorite")
}
