package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/chinazes/secretsanta/internal/models"
	"github.com/chinazes/secretsanta/internal/pairing"
)

const gameColumns = `id, name, description, status, creator_id, start_at, ends_at, settings, created_at`

func scanGame(row pgx.Row) (*models.Game, error) {
	var g models.Game
	var settings []byte
	err := row.Scan(
		&g.ID, &g.Name, &g.Description, &g.Status, &g.CreatorID,
		&g.StartAt, &g.EndsAt, &settings, &g.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if len(settings) > 0 {
		if err := json.Unmarshal(settings, &g.Settings); err != nil {
			return nil, fmt.Errorf("failed to decode game settings: %w", err)
		}
	}
	return &g, nil
}

func CreateGame(ctx context.Context, game *models.Game) error {
	if game.ID == uuid.Nil {
		id, err := uuid.NewRandom()
		if err != nil {
			return fmt.Errorf("failed to generate game id: %w", err)
		}
		game.ID = id
	}
	game.Status = models.GameStatusDraft
	if game.CreatedAt.IsZero() {
		game.CreatedAt = time.Now()
	}

	settings, err := json.Marshal(game.Settings)
	if err != nil {
		return fmt.Errorf("failed to encode game settings: %w", err)
	}

	q := `INSERT INTO games (id, name, description, status, creator_id, start_at, ends_at, settings, created_at)
	      VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, execErr := tx.Exec(ctx, q,
			game.ID, game.Name, game.Description, game.Status, game.CreatorID,
			game.StartAt, game.EndsAt, settings, game.CreatedAt,
		)
		return execErr
	})
}

func GetGame(ctx context.Context, id uuid.UUID) (*models.Game, error) {
	q := `SELECT ` + gameColumns + ` FROM games WHERE id=$1`
	return scanGame(DB.QueryRow(ctx, q, id))
}

// ListGamesForUser returns games the user created or joined.
func ListGamesForUser(ctx context.Context, userID uuid.UUID) ([]models.Game, error) {
	q := `SELECT ` + gameColumns + ` FROM games g
	      WHERE g.creator_id=$1
	         OR EXISTS (SELECT 1 FROM players p WHERE p.game_id=g.id AND p.user_id=$1)
	      ORDER BY g.created_at DESC`
	rows, err := DB.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var games []models.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, *g)
	}
	return games, rows.Err()
}

// JoinGame inserts a player row. Joining is only possible while the game
// is in draft, and only up to settings.maxParticipants players.
func JoinGame(ctx context.Context, gameID, userID uuid.UUID) (*models.Player, error) {
	player := &models.Player{GameID: gameID, UserID: userID, JoinedAt: time.Now()}

	err := pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		// lock the game row so the capacity check and insert are atomic
		g, err := scanGame(tx.QueryRow(ctx, `SELECT `+gameColumns+` FROM games WHERE id=$1 FOR UPDATE`, gameID))
		if err != nil {
			return err
		}
		if g.Status != models.GameStatusDraft {
			return ErrGameNotJoinable
		}

		var count int
		if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM players WHERE game_id=$1`, gameID).Scan(&count); err != nil {
			return err
		}
		if g.Settings.MaxParticipants > 0 && count >= g.Settings.MaxParticipants {
			return ErrGameFull
		}

		q := `INSERT INTO players (game_id, user_id, joined_at, is_gifted)
		      VALUES ($1, $2, $3, false)
		      ON CONFLICT (game_id, user_id) DO NOTHING`
		_, err = tx.Exec(ctx, q, gameID, userID, player.JoinedAt)
		return err
	})
	if err != nil {
		return nil, err
	}
	return player, nil
}

// StartGame performs the guarded DRAFT->ACTIVE transition, runs the
// pairing engine over the joined players, and persists the resulting
// pairs — all in one transaction. Exactly one caller can win the
// transition, so at most one assignment is ever persisted per game.
//
// Pairing failures (too few players, no derangement found) roll the
// transition back and surface unchanged so the caller can tell them
// apart from persistence errors.
func StartGame(ctx context.Context, gameID uuid.UUID) ([]models.Pair, error) {
	var pairs []models.Pair

	err := pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		ct, err := tx.Exec(ctx,
			`UPDATE games SET status=$1, start_at=NOW() WHERE id=$2 AND status=$3`,
			models.GameStatusActive, gameID, models.GameStatusDraft,
		)
		if err != nil {
			return err
		}
		if ct.RowsAffected() == 0 {
			// either no such game or another caller won the transition
			if _, err := scanGame(tx.QueryRow(ctx, `SELECT `+gameColumns+` FROM games WHERE id=$1`, gameID)); err != nil {
				return err
			}
			return ErrAlreadyStarted
		}

		rows, err := tx.Query(ctx, `SELECT user_id FROM players WHERE game_id=$1 ORDER BY joined_at`, gameID)
		if err != nil {
			return err
		}
		var participants []uuid.UUID
		for rows.Next() {
			var id uuid.UUID
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return err
			}
			participants = append(participants, id)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		assignments, err := pairing.Assign(nil, participants)
		if err != nil {
			return err
		}

		now := time.Now()
		pairs = make([]models.Pair, 0, len(assignments))
		for _, a := range assignments {
			p := models.Pair{
				ID:         uuid.New(),
				GameID:     gameID,
				GifterID:   a.GifterID,
				ReceiverID: a.ReceiverID,
				CreatedAt:  now,
			}
			_, err := tx.Exec(ctx,
				`INSERT INTO pairs (id, game_id, gifter_id, receiver_id, created_at) VALUES ($1, $2, $3, $4, $5)`,
				p.ID, p.GameID, p.GifterID, p.ReceiverID, p.CreatedAt,
			)
			if err != nil {
				return err
			}
			pairs = append(pairs, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pairs, nil
}

// EndGame moves an active game to ENDED.
func EndGame(ctx context.Context, gameID uuid.UUID) error {
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		ct, err := tx.Exec(ctx,
			`UPDATE games SET status=$1, ends_at=NOW() WHERE id=$2 AND status=$3`,
			models.GameStatusEnded, gameID, models.GameStatusActive,
		)
		if err != nil {
			return err
		}
		if ct.RowsAffected() == 0 {
			return ErrNotActive
		}
		return nil
	})
}
