package models

import (
	"time"

	"github.com/google/uuid"
)

// Game status lifecycle: DRAFT -> ACTIVE -> ENDED.
const (
	GameStatusDraft  = "DRAFT"
	GameStatusActive = "ACTIVE"
	GameStatusEnded  = "ENDED"
)

// GameSettings controls per-game behavior chosen by the creator.
type GameSettings struct {
	Anonymous       bool `json:"anonymous"`
	MaxParticipants int  `json:"max_participants"`
	AllowChat       bool `json:"allow_chat"`
	AllowDirectChat bool `json:"allow_direct_chat"`
}

// DefaultGameSettings matches the values a game gets when the creator
// leaves the settings object out of the create request.
func DefaultGameSettings() GameSettings {
	return GameSettings{
		Anonymous:       false,
		MaxParticipants: 50,
		AllowChat:       true,
		AllowDirectChat: false,
	}
}

type Game struct {
	ID          uuid.UUID    `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Status      string       `json:"status"`
	CreatorID   uuid.UUID    `json:"creator_id"`
	StartAt     *time.Time   `json:"start_at,omitempty"`
	EndsAt      *time.Time   `json:"ends_at,omitempty"`
	Settings    GameSettings `json:"settings"`
	CreatedAt   time.Time    `json:"created_at"`
}
