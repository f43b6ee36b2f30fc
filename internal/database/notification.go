package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/chinazes/secretsanta/internal/models"
)

// InsertNotification adds an entry to the user's inbox.
func InsertNotification(ctx context.Context, n *models.Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	data, err := json.Marshal(n.Data)
	if err != nil {
		return fmt.Errorf("failed to encode notification data: %w", err)
	}

	q := `INSERT INTO notifications (id, user_id, type, title, data, read, created_at)
	      VALUES ($1, $2, $3, $4, $5, false, $6)`
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, q, n.ID, n.UserID, n.Type, n.Title, data, n.CreatedAt)
		return err
	})
}

// ListNotifications returns the user's inbox, newest first.
func ListNotifications(ctx context.Context, userID uuid.UUID) ([]models.Notification, error) {
	q := `SELECT id, user_id, type, title, data, read, created_at
	      FROM notifications WHERE user_id=$1 ORDER BY created_at DESC`
	rows, err := DB.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ns []models.Notification
	for rows.Next() {
		var n models.Notification
		var data []byte
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &data, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		if len(data) > 0 {
			if err := json.Unmarshal(data, &n.Data); err != nil {
				return nil, fmt.Errorf("failed to decode notification data: %w", err)
			}
		}
		ns = append(ns, n)
	}
	return ns, rows.Err()
}

// MarkNotificationRead flips one of the user's own notifications to read.
func MarkNotificationRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		ct, err := tx.Exec(ctx,
			`UPDATE notifications SET read=true WHERE id=$1 AND user_id=$2`,
			notificationID, userID,
		)
		if err != nil {
			return err
		}
		if ct.RowsAffected() == 0 {
			return fmt.Errorf("%w: notification %s", ErrNotFound, notificationID)
		}
		return nil
	})
}
