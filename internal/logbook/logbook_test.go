package logbook

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayloadTagging(t *testing.T) {
	gameID, userID := uuid.New(), uuid.New()

	cases := []struct {
		payload  Payload
		action   string
		category string
	}{
		{CreateGamePayload{GameID: gameID, Name: "office 2026"}, "CREATE_GAME", CategoryGame},
		{JoinGamePayload{GameID: gameID, UserID: userID}, "JOIN_GAME", CategoryGame},
		{PairCreatedPayload{GameID: gameID, PairCount: 5}, "PAIR_CREATED", CategoryGame},
		{PlayerGiftedPayload{GameID: gameID, UserID: userID}, "PLAYER_GIFTED", CategoryGame},
		{GameEndedPayload{GameID: gameID}, "GAME_ENDED", CategoryGame},
		{SendMessagePayload{GameID: gameID, MessageID: uuid.New()}, "SEND_MESSAGE", CategoryChat},
		{DirectMessageSentPayload{GameID: gameID, MessageID: uuid.New()}, "DIRECT_MESSAGE_SENT", CategoryChat},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.action, tc.payload.Action())
		assert.Equal(t, tc.category, tc.payload.Category())
	}
}

func TestNewRecordStampsPayload(t *testing.T) {
	actor := uuid.New()
	gameID := uuid.New()

	rec, err := NewRecord(actor, PairCreatedPayload{GameID: gameID, PairCount: 4})
	require.NoError(t, err)

	assert.Equal(t, CategoryGame, rec.Category)
	assert.Equal(t, "PAIR_CREATED", rec.Action)
	assert.Equal(t, actor, rec.ActorID)
	assert.NotZero(t, rec.Timestamp)

	var details PairCreatedPayload
	require.NoError(t, json.Unmarshal(rec.Details, &details))
	assert.Equal(t, gameID, details.GameID)
	assert.Equal(t, 4, details.PairCount)
}

func TestPublishPushesToQueue(t *testing.T) {
	srv := miniredis.RunT(t)
	Rdb = redis.NewClient(&redis.Options{Addr: srv.Addr()})
	defer func() { Rdb = nil }()

	actor := uuid.New()
	err := Publish(context.Background(), actor, JoinGamePayload{
		GameID: uuid.New(),
		UserID: actor,
	})
	require.NoError(t, err)

	items, err := srv.List(DefaultQueueName)
	require.NoError(t, err)
	require.Len(t, items, 1)

	var rec Record
	require.NoError(t, json.Unmarshal([]byte(items[0]), &rec))
	assert.Equal(t, "JOIN_GAME", rec.Action)
	assert.Equal(t, actor, rec.ActorID)
}
