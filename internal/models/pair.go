package models

import (
	"time"

	"github.com/google/uuid"
)

// Pair is one edge of a game's gifter->receiver assignment. Pairs are
// written once when the game starts and never mutated afterwards.
type Pair struct {
	ID         uuid.UUID `json:"id"`
	GameID     uuid.UUID `json:"game_id"`
	GifterID   uuid.UUID `json:"gifter_id"`
	ReceiverID uuid.UUID `json:"receiver_id"`
	CreatedAt  time.Time `json:"created_at"`
}
