package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/chinazes/secretsanta/internal/models"
)

// ListPlayers returns the players of a game in join order.
func ListPlayers(ctx context.Context, gameID uuid.UUID) ([]models.Player, error) {
	q := `SELECT game_id, user_id, joined_at, is_gifted
	      FROM players WHERE game_id=$1 ORDER BY joined_at`
	rows, err := DB.Query(ctx, q, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ps []models.Player
	for rows.Next() {
		var p models.Player
		if err := rows.Scan(&p.GameID, &p.UserID, &p.JoinedAt, &p.IsGifted); err != nil {
			return nil, err
		}
		ps = append(ps, p)
	}
	return ps, rows.Err()
}

// IsPlayer reports whether the user has joined the game.
func IsPlayer(ctx context.Context, gameID, userID uuid.UUID) (bool, error) {
	var exists bool
	q := `SELECT EXISTS (SELECT 1 FROM players WHERE game_id=$1 AND user_id=$2)`
	if err := DB.QueryRow(ctx, q, gameID, userID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// MarkGifted flips the player's gifted flag.
func MarkGifted(ctx context.Context, gameID, userID uuid.UUID) error {
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		ct, err := tx.Exec(ctx,
			`UPDATE players SET is_gifted=true WHERE game_id=$1 AND user_id=$2`,
			gameID, userID,
		)
		if err != nil {
			return err
		}
		if ct.RowsAffected() == 0 {
			return fmt.Errorf("%w: player %s in game %s", ErrNotFound, userID, gameID)
		}
		return nil
	})
}

// GetPairForGifter returns the gifter's pair in a game.
func GetPairForGifter(ctx context.Context, gameID, gifterID uuid.UUID) (*models.Pair, error) {
	var p models.Pair
	q := `SELECT id, game_id, gifter_id, receiver_id, created_at
	      FROM pairs WHERE game_id=$1 AND gifter_id=$2`
	err := DB.QueryRow(ctx, q, gameID, gifterID).Scan(
		&p.ID, &p.GameID, &p.GifterID, &p.ReceiverID, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ListPairs returns all pairs of a game (admin/creator view).
func ListPairs(ctx context.Context, gameID uuid.UUID) ([]models.Pair, error) {
	q := `SELECT id, game_id, gifter_id, receiver_id, created_at
	      FROM pairs WHERE game_id=$1 ORDER BY created_at`
	rows, err := DB.Query(ctx, q, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ps []models.Pair
	for rows.Next() {
		var p models.Pair
		if err := rows.Scan(&p.ID, &p.GameID, &p.GifterID, &p.ReceiverID, &p.CreatedAt); err != nil {
			return nil, err
		}
		ps = append(ps, p)
	}
	return ps, rows.Err()
}
