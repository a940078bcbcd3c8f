package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flicky/e-games-api/internal/model"
)

// RatingRepository stores per-user ratings. Every write recomputes the
// product's total_rating under a row lock on the product.
type RatingRepository interface {
	Upsert(ctx context.Context, productID int64, userID uuid.UUID, rating int) (int, error)
	Delete(ctx context.Context, productID int64, userID uuid.UUID) (bool, error)
}

type pgRatingRepo struct{ pool *pgxpool.Pool }

func NewRatingRepository(pool *pgxpool.Pool) RatingRepository {
	return &pgRatingRepo{pool: pool}
}

// Upsert inserts or overwrites the user's rating and returns the new total.
func (r *pgRatingRepo) Upsert(ctx context.Context, productID int64, userID uuid.UUID, rating int) (int, error) {
	var total int
	err := inTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := lockProduct(ctx, tx, productID); err != nil {
			return err
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO product_ratings (product_id, user_id, rating) VALUES ($1, $2, $3)
			 ON CONFLICT (product_id, user_id) DO UPDATE SET rating = EXCLUDED.rating`,
			productID, userID, rating,
		)
		if err != nil {
			return fmt.Errorf("upsert rating: %w", err)
		}
		total, err = recomputeTotal(ctx, tx, productID)
		return err
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// Delete removes the user's rating. removed is false when there was none.
func (r *pgRatingRepo) Delete(ctx context.Context, productID int64, userID uuid.UUID) (bool, error) {
	var removed bool
	err := inTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := lockProduct(ctx, tx, productID); err != nil {
			return err
		}
		ct, err := tx.Exec(ctx,
			`DELETE FROM product_ratings WHERE product_id = $1 AND user_id = $2`, productID, userID)
		if err != nil {
			return fmt.Errorf("delete rating: %w", err)
		}
		if ct.RowsAffected() == 0 {
			return nil
		}
		removed = true
		_, err = recomputeTotal(ctx, tx, productID)
		return err
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}

func lockProduct(ctx context.Context, tx pgx.Tx, productID int64) error {
	var id int64
	err := tx.QueryRow(ctx, `SELECT id FROM products WHERE id = $1 FOR UPDATE`, productID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrProductMissing
		}
		return fmt.Errorf("lock product: %w", err)
	}
	return nil
}

func recomputeTotal(ctx context.Context, tx pgx.Tx, productID int64) (int, error) {
	var sum, count int64
	err := tx.QueryRow(ctx,
		`SELECT COALESCE(SUM(rating), 0), COUNT(*) FROM product_ratings WHERE product_id = $1`, productID,
	).Scan(&sum, &count)
	if err != nil {
		return 0, fmt.Errorf("aggregate ratings: %w", err)
	}
	total := model.TotalRating(sum, count)
	if _, err := tx.Exec(ctx, `UPDATE products SET total_rating = $2 WHERE id = $1`, productID, total); err != nil {
		return 0, fmt.Errorf("update total rating: %w", err)
	}
	return total, nil
}
