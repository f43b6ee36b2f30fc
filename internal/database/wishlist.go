package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/chinazes/secretsanta/internal/models"
)

// AddWishlistItem appends an item to the user's wishlist.
func AddWishlistItem(ctx context.Context, item *models.WishlistItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	q := `INSERT INTO wishlist_items (id, user_id, name, url, note, created_at)
	      VALUES ($1, $2, $3, $4, $5, $6)`
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, q, item.ID, item.UserID, item.Name, item.URL, item.Note, item.CreatedAt)
		return err
	})
}

// ListWishlist returns the user's wishlist items, oldest first.
func ListWishlist(ctx context.Context, userID uuid.UUID) ([]models.WishlistItem, error) {
	q := `SELECT id, user_id, name, url, note, created_at
	      FROM wishlist_items WHERE user_id=$1 ORDER BY created_at`
	rows, err := DB.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.WishlistItem
	for rows.Next() {
		var it models.WishlistItem
		if err := rows.Scan(&it.ID, &it.UserID, &it.Name, &it.URL, &it.Note, &it.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// RemoveWishlistItem deletes one of the user's own items.
func RemoveWishlistItem(ctx context.Context, userID, itemID uuid.UUID) error {
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		ct, err := tx.Exec(ctx,
			`DELETE FROM wishlist_items WHERE id=$1 AND user_id=$2`, itemID, userID)
		if err != nil {
			return err
		}
		if ct.RowsAffected() == 0 {
			return fmt.Errorf("%w: wishlist item %s", ErrNotFound, itemID)
		}
		return nil
	})
}
