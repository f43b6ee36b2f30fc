package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/chinazes/secretsanta/internal/models"
)

// InsertMessage stores one game-chat message.
func InsertMessage(ctx context.Context, m *models.Message) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	q := `INSERT INTO messages (id, game_id, user_id, body, created_at)
	      VALUES ($1, $2, $3, $4, $5)`
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, q, m.ID, m.GameID, m.UserID, m.Body, m.CreatedAt)
		return err
	})
}

// ListMessages returns a game's chat in chronological order.
func ListMessages(ctx context.Context, gameID uuid.UUID, limit int) ([]models.Message, error) {
	if limit <= 0 {
		limit = 100
	}
	q := `SELECT id, game_id, user_id, body, created_at
	      FROM messages WHERE game_id=$1 ORDER BY created_at DESC LIMIT $2`
	rows, err := DB.Query(ctx, q, gameID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ms []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.GameID, &m.UserID, &m.Body, &m.CreatedAt); err != nil {
			return nil, err
		}
		ms = append(ms, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// reverse to chronological order; the query fetched newest-first
	for i, j := 0, len(ms)-1; i < j; i, j = i+1, j-1 {
		ms[i], ms[j] = ms[j], ms[i]
	}
	return ms, nil
}

// InsertDirectMessage stores a private message between two paired players.
func InsertDirectMessage(ctx context.Context, m *models.DirectMessage) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	q := `INSERT INTO direct_messages (id, game_id, sender_id, receiver_id, body, created_at)
	      VALUES ($1, $2, $3, $4, $5, $6)`
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, q, m.ID, m.GameID, m.SenderID, m.ReceiverID, m.Body, m.CreatedAt)
		return err
	})
}

// ListDirectMessages returns the two-way conversation between two users
// within one game, in chronological order.
func ListDirectMessages(ctx context.Context, gameID, userA, userB uuid.UUID) ([]models.DirectMessage, error) {
	q := `SELECT id, game_id, sender_id, receiver_id, body, created_at
	      FROM direct_messages
	      WHERE game_id=$1
	        AND ((sender_id=$2 AND receiver_id=$3) OR (sender_id=$3 AND receiver_id=$2))
	      ORDER BY created_at`
	rows, err := DB.Query(ctx, q, gameID, userA, userB)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ms []models.DirectMessage
	for rows.Next() {
		var m models.DirectMessage
		if err := rows.Scan(&m.ID, &m.GameID, &m.SenderID, &m.ReceiverID, &m.Body, &m.CreatedAt); err != nil {
			return nil, err
		}
		ms = append(ms, m)
	}
	return ms, rows.Err()
}
