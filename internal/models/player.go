package models

import (
	"time"

	"github.com/google/uuid"
)

// Player is a user's membership in one game. Created on join; the
// gifted flag flips once the player has delivered their gift.
type Player struct {
	GameID   uuid.UUID `json:"game_id"`
	UserID   uuid.UUID `json:"user_id"`
	JoinedAt time.Time `json:"joined_at"`
	IsGifted bool      `json:"is_gifted"`
}
