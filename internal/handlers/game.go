package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/chinazes/secretsanta/internal/database"
	"github.com/chinazes/secretsanta/internal/logbook"
	"github.com/chinazes/secretsanta/internal/models"
	"github.com/chinazes/secretsanta/internal/pairing"
)

// CreateGameHandler creates a draft game owned by the caller. The
// creator is joined as the first player.
func CreateGameHandler(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req struct {
		Name        string               `json:"name"`
		Description string               `json:"description"`
		Settings    *models.GameSettings `json:"settings"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	settings := models.DefaultGameSettings()
	if req.Settings != nil {
		settings = *req.Settings
	}

	game := models.Game{
		Name:        req.Name,
		Description: req.Description,
		CreatorID:   userID,
		Settings:    settings,
	}
	if err := database.CreateGame(r.Context(), &game); err != nil {
		http.Error(w, "error creating game", http.StatusInternalServerError)
		return
	}
	if _, err := database.JoinGame(r.Context(), game.ID, userID); err != nil {
		logrus.Warnf("failed to join creator %s to game %s: %v", userID, game.ID, err)
	}

	logbook.Log(r.Context(), nil, userID, logbook.CreateGamePayload{GameID: game.ID, Name: game.Name})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(game)
}

// GetGameHandler returns one game by id: GET /game/get/{id}.
func GetGameHandler(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := requireUser(w, r); !ok {
		return
	}
	gameID, err := pathID(r, "/game/get/")
	if err != nil {
		http.Error(w, "invalid game id", http.StatusBadRequest)
		return
	}
	game, err := database.GetGame(r.Context(), gameID)
	if err != nil {
		http.Error(w, "game not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(game)
}

// ListGamesHandler lists the caller's games (created or joined).
func ListGamesHandler(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := requireUser(w, r)
	if !ok {
		return
	}
	games, err := database.ListGamesForUser(r.Context(), userID)
	if err != nil {
		http.Error(w, "error listing games", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(games)
}

type gameIDRequest struct {
	GameID string `json:"game_id"`
}

func decodeGameID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	var req gameIDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return uuid.Nil, false
	}
	id, err := uuid.Parse(req.GameID)
	if err != nil {
		http.Error(w, "invalid game id", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

// JoinGameHandler adds the caller as a player of a draft game.
func JoinGameHandler(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := requireUser(w, r)
	if !ok {
		return
	}
	gameID, ok := decodeGameID(w, r)
	if !ok {
		return
	}

	player, err := database.JoinGame(r.Context(), gameID, userID)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrNotFound):
			http.Error(w, "game not found", http.StatusNotFound)
		case errors.Is(err, database.ErrGameNotJoinable):
			http.Error(w, "game is no longer accepting players", http.StatusConflict)
		case errors.Is(err, database.ErrGameFull):
			http.Error(w, "game is full", http.StatusConflict)
		default:
			http.Error(w, "error joining game", http.StatusInternalServerError)
		}
		return
	}

	logbook.Log(r.Context(), nil, userID, logbook.JoinGamePayload{GameID: gameID, UserID: userID})
	notifyCreator(r, gameID, userID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(player)
}

// notifyCreator drops an invite-style notification into the creator's
// inbox when someone joins. Best-effort.
func notifyCreator(r *http.Request, gameID, joinerID uuid.UUID) {
	game, err := database.GetGame(r.Context(), gameID)
	if err != nil || game.CreatorID == joinerID {
		return
	}
	n := models.Notification{
		UserID: game.CreatorID,
		Type:   models.NotificationService,
		Title:  "A player joined your game",
		Data: map[string]string{
			"game_id": gameID.String(),
			"user_id": joinerID.String(),
		},
	}
	if err := database.InsertNotification(r.Context(), &n); err != nil {
		logrus.Warnf("failed to notify creator of game %s: %v", game.ID, err)
	}
}

// StartGameHandler performs the draft->active transition. Only the
// creator may start a game; the transition pairs all joined players.
func StartGameHandler(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := requireUser(w, r)
	if !ok {
		return
	}
	gameID, ok := decodeGameID(w, r)
	if !ok {
		return
	}

	game, err := database.GetGame(r.Context(), gameID)
	if err != nil {
		http.Error(w, "game not found", http.StatusNotFound)
		return
	}
	if game.CreatorID != userID {
		http.Error(w, "only the creator can start the game", http.StatusForbidden)
		return
	}

	pairs, err := database.StartGame(r.Context(), gameID)
	if err != nil {
		switch {
		case errors.Is(err, pairing.ErrInsufficientParticipants):
			http.Error(w, "need at least 3 players to start", http.StatusConflict)
		case errors.Is(err, pairing.ErrPairingFailed):
			http.Error(w, "pairing failed, try again", http.StatusInternalServerError)
		case errors.Is(err, database.ErrAlreadyStarted):
			http.Error(w, "game already started", http.StatusConflict)
		case errors.Is(err, database.ErrNotFound):
			http.Error(w, "game not found", http.StatusNotFound)
		default:
			http.Error(w, "error starting game", http.StatusInternalServerError)
		}
		return
	}

	logbook.Log(r.Context(), nil, userID, logbook.PairCreatedPayload{GameID: gameID, PairCount: len(pairs)})
	for _, p := range pairs {
		n := models.Notification{
			UserID: p.GifterID,
			Type:   models.NotificationReminder,
			Title:  "Your secret santa assignment is ready",
			Data:   map[string]string{"game_id": gameID.String()},
		}
		if err := database.InsertNotification(r.Context(), &n); err != nil {
			logrus.Warnf("failed to notify gifter %s: %v", p.GifterID, err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"game_id":    gameID,
		"status":     models.GameStatusActive,
		"pair_count": len(pairs),
	})
}

// EndGameHandler moves an active game to ended. Creator only.
func EndGameHandler(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := requireUser(w, r)
	if !ok {
		return
	}
	gameID, ok := decodeGameID(w, r)
	if !ok {
		return
	}

	game, err := database.GetGame(r.Context(), gameID)
	if err != nil {
		http.Error(w, "game not found", http.StatusNotFound)
		return
	}
	if game.CreatorID != userID {
		http.Error(w, "only the creator can end the game", http.StatusForbidden)
		return
	}

	if err := database.EndGame(r.Context(), gameID); err != nil {
		if errors.Is(err, database.ErrNotActive) {
			http.Error(w, "game is not active", http.StatusConflict)
			return
		}
		http.Error(w, "error ending game", http.StatusInternalServerError)
		return
	}

	logbook.Log(r.Context(), nil, userID, logbook.GameEndedPayload{GameID: gameID})
	w.WriteHeader(http.StatusOK)
}

// ListPlayersHandler returns a game's players: GET /game/players/{id}.
func ListPlayersHandler(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := requireUser(w, r); !ok {
		return
	}
	gameID, err := pathID(r, "/game/players/")
	if err != nil {
		http.Error(w, "invalid game id", http.StatusBadRequest)
		return
	}
	players, err := database.ListPlayers(r.Context(), gameID)
	if err != nil {
		http.Error(w, "error listing players", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(players)
}

// MyPairHandler returns the caller's receiver in a game:
// GET /game/pair/{id}. Only the gifter can see their own pair.
func MyPairHandler(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := requireUser(w, r)
	if !ok {
		return
	}
	gameID, err := pathID(r, "/game/pair/")
	if err != nil {
		http.Error(w, "invalid game id", http.StatusBadRequest)
		return
	}
	pair, err := database.GetPairForGifter(r.Context(), gameID, userID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			http.Error(w, "no assignment for you in this game", http.StatusNotFound)
			return
		}
		http.Error(w, "error fetching pair", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(pair)
}

// MarkGiftedHandler records that the caller has delivered their gift and
// notifies their receiver.
func MarkGiftedHandler(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := requireUser(w, r)
	if !ok {
		return
	}
	gameID, ok := decodeGameID(w, r)
	if !ok {
		return
	}

	if err := database.MarkGifted(r.Context(), gameID, userID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			http.Error(w, "not a player in this game", http.StatusNotFound)
			return
		}
		http.Error(w, "error marking gifted", http.StatusInternalServerError)
		return
	}

	logbook.Log(r.Context(), nil, userID, logbook.PlayerGiftedPayload{GameID: gameID, UserID: userID})

	if pair, err := database.GetPairForGifter(r.Context(), gameID, userID); err == nil {
		n := models.Notification{
			UserID: pair.ReceiverID,
			Type:   models.NotificationGiftReceived,
			Title:  "Your secret santa has sent your gift",
			Data:   map[string]string{"game_id": gameID.String()},
		}
		if err := database.InsertNotification(r.Context(), &n); err != nil {
			logrus.Warnf("failed to notify receiver %s: %v", pair.ReceiverID, err)
		}
	}

	w.WriteHeader(http.StatusOK)
}
