// Package logbook records administrative and gameplay actions. Producers
// push records onto a Redis queue; the logbook worker (cmd/logbook)
// drains the queue into Postgres in batches.
//
// Each action is a concrete payload type rather than a free-form map, so
// adding an action means adding a type and the compiler finds every
// switch that needs updating.
package logbook

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Log categories.
const (
	CategoryGame   = "GAME"
	CategoryChat   = "CHAT"
	CategorySystem = "SYSTEM"
)

// Payload is one loggable action. Implementations are the closed set of
// payload structs below.
type Payload interface {
	Action() string
	Category() string
}

type CreateGamePayload struct {
	GameID uuid.UUID `json:"game_id"`
	Name   string    `json:"name"`
}

func (CreateGamePayload) Action() string   { return "CREATE_GAME" }
func (CreateGamePayload) Category() string { return CategoryGame }

type JoinGamePayload struct {
	GameID uuid.UUID `json:"game_id"`
	UserID uuid.UUID `json:"user_id"`
}

func (JoinGamePayload) Action() string   { return "JOIN_GAME" }
func (JoinGamePayload) Category() string { return CategoryGame }

type UpdatedGamePayload struct {
	GameID uuid.UUID `json:"game_id"`
}

func (UpdatedGamePayload) Action() string   { return "UPDATED_GAME" }
func (UpdatedGamePayload) Category() string { return CategoryGame }

type PairCreatedPayload struct {
	GameID    uuid.UUID `json:"game_id"`
	PairCount int       `json:"pair_count"`
}

func (PairCreatedPayload) Action() string   { return "PAIR_CREATED" }
func (PairCreatedPayload) Category() string { return CategoryGame }

type PlayerGiftedPayload struct {
	GameID uuid.UUID `json:"game_id"`
	UserID uuid.UUID `json:"user_id"`
}

func (PlayerGiftedPayload) Action() string   { return "PLAYER_GIFTED" }
func (PlayerGiftedPayload) Category() string { return CategoryGame }

type PlayerRemovedPayload struct {
	GameID uuid.UUID `json:"game_id"`
	UserID uuid.UUID `json:"user_id"`
}

func (PlayerRemovedPayload) Action() string   { return "PLAYER_REMOVED" }
func (PlayerRemovedPayload) Category() string { return CategoryGame }

type GameEndedPayload struct {
	GameID uuid.UUID `json:"game_id"`
}

func (GameEndedPayload) Action() string   { return "GAME_ENDED" }
func (GameEndedPayload) Category() string { return CategoryGame }

type SendMessagePayload struct {
	GameID    uuid.UUID `json:"game_id"`
	MessageID uuid.UUID `json:"message_id"`
}

func (SendMessagePayload) Action() string   { return "SEND_MESSAGE" }
func (SendMessagePayload) Category() string { return CategoryChat }

type DirectMessageSentPayload struct {
	GameID    uuid.UUID `json:"game_id"`
	MessageID uuid.UUID `json:"message_id"`
}

func (DirectMessageSentPayload) Action() string   { return "DIRECT_MESSAGE_SENT" }
func (DirectMessageSentPayload) Category() string { return CategoryChat }

type SystemPayload struct {
	Detail string `json:"detail"`
}

func (SystemPayload) Action() string   { return "SYSTEM" }
func (SystemPayload) Category() string { return CategorySystem }

// Record is the wire/storage form of one logged action.
type Record struct {
	Timestamp int64           `json:"timestamp"` // epoch millis
	Category  string          `json:"category"`
	Action    string          `json:"action"`
	ActorID   uuid.UUID       `json:"actor_id"`
	Details   json.RawMessage `json:"details"`
}

// NewRecord stamps and serializes a payload into its storage form.
func NewRecord(actorID uuid.UUID, p Payload) (Record, error) {
	details, err := json.Marshal(p)
	if err != nil {
		return Record{}, fmt.Errorf("failed to marshal %s payload: %w", p.Action(), err)
	}
	return Record{
		Timestamp: time.Now().UnixMilli(),
		Category:  p.Category(),
		Action:    p.Action(),
		ActorID:   actorID,
		Details:   details,
	}, nil
}
