package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/chinazes/secretsanta/internal/database"
	"github.com/chinazes/secretsanta/internal/logbook"
	"github.com/chinazes/secretsanta/internal/models"
)

// ChatServer fans new game-chat messages out to connected sockets.
// Persistence is the source of truth; the hub is delivery only.
type ChatServer struct {
	mu    sync.Mutex
	rooms map[uuid.UUID]map[uuid.UUID]*chatConn
}

func NewChatServer() *ChatServer {
	return &ChatServer{rooms: make(map[uuid.UUID]map[uuid.UUID]*chatConn)}
}

func (cs *ChatServer) register(gameID, userID uuid.UUID, c *chatConn) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	room, ok := cs.rooms[gameID]
	if !ok {
		room = make(map[uuid.UUID]*chatConn)
		cs.rooms[gameID] = room
	}
	room[userID] = c
}

func (cs *ChatServer) unregister(gameID, userID uuid.UUID) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if room, ok := cs.rooms[gameID]; ok {
		delete(room, userID)
		if len(room) == 0 {
			delete(cs.rooms, gameID)
		}
	}
}

// Broadcast pushes a stored message to every socket in the game's room.
// Slow or closed connections just drop the message; they catch up from
// the message list endpoint.
func (cs *ChatServer) Broadcast(msg models.Message) {
	cs.mu.Lock()
	conns := make([]*chatConn, 0, len(cs.rooms[msg.GameID]))
	for _, c := range cs.rooms[msg.GameID] {
		conns = append(conns, c)
	}
	cs.mu.Unlock()

	for _, c := range conns {
		c.write(msg)
	}
}

// chatAccess checks that the game exists, allows chat, and the user is a
// player. Returns the game on success.
func chatAccess(w http.ResponseWriter, r *http.Request, gameID, userID uuid.UUID) (*models.Game, bool) {
	game, err := database.GetGame(r.Context(), gameID)
	if err != nil {
		http.Error(w, "game not found", http.StatusNotFound)
		return nil, false
	}
	if !game.Settings.AllowChat {
		http.Error(w, "chat is disabled for this game", http.StatusForbidden)
		return nil, false
	}
	isPlayer, err := database.IsPlayer(r.Context(), gameID, userID)
	if err != nil {
		http.Error(w, "error checking membership", http.StatusInternalServerError)
		return nil, false
	}
	if !isPlayer {
		http.Error(w, "not a player in this game", http.StatusForbidden)
		return nil, false
	}
	return game, true
}

// SendMessageHandler posts to a game's shared chat and fans it out.
func SendMessageHandler(cs *ChatServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _, ok := requireUser(w, r)
		if !ok {
			return
		}

		var req struct {
			GameID string `json:"game_id"`
			Body   string `json:"body"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}
		gameID, err := uuid.Parse(req.GameID)
		if err != nil {
			http.Error(w, "invalid game id", http.StatusBadRequest)
			return
		}
		if req.Body == "" {
			http.Error(w, "body is required", http.StatusBadRequest)
			return
		}

		if _, ok := chatAccess(w, r, gameID, userID); !ok {
			return
		}

		msg := models.Message{GameID: gameID, UserID: userID, Body: req.Body}
		if err := database.InsertMessage(r.Context(), &msg); err != nil {
			http.Error(w, "error storing message", http.StatusInternalServerError)
			return
		}

		logbook.Log(r.Context(), nil, userID, logbook.SendMessagePayload{GameID: gameID, MessageID: msg.ID})
		cs.Broadcast(msg)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(msg)
	}
}

// ListMessagesHandler returns a game's chat history:
// GET /chat/list/{gameID}?limit=N.
func ListMessagesHandler(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := requireUser(w, r)
	if !ok {
		return
	}
	gameID, err := pathID(r, "/chat/list/")
	if err != nil {
		http.Error(w, "invalid game id", http.StatusBadRequest)
		return
	}
	if _, ok := chatAccess(w, r, gameID, userID); !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	msgs, err := database.ListMessages(r.Context(), gameID, limit)
	if err != nil {
		http.Error(w, "error listing messages", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(msgs)
}

// arePaired reports whether a pair links the two users in this game, in
// either direction. Direct chat stays inside a gifter/receiver edge.
func arePaired(r *http.Request, gameID, a, b uuid.UUID) (bool, error) {
	if pair, err := database.GetPairForGifter(r.Context(), gameID, a); err == nil {
		if pair.ReceiverID == b {
			return true, nil
		}
	} else if !errors.Is(err, database.ErrNotFound) {
		return false, err
	}
	if pair, err := database.GetPairForGifter(r.Context(), gameID, b); err == nil {
		if pair.ReceiverID == a {
			return true, nil
		}
	} else if !errors.Is(err, database.ErrNotFound) {
		return false, err
	}
	return false, nil
}

// SendDirectMessageHandler posts a private message to the caller's pair
// partner. Allowed only when the game enables direct chat.
func SendDirectMessageHandler(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req struct {
		GameID string `json:"game_id"`
		To     string `json:"to"`
		Body   string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	gameID, err := uuid.Parse(req.GameID)
	if err != nil {
		http.Error(w, "invalid game id", http.StatusBadRequest)
		return
	}
	to, err := uuid.Parse(req.To)
	if err != nil {
		http.Error(w, "invalid recipient id", http.StatusBadRequest)
		return
	}
	if req.Body == "" {
		http.Error(w, "body is required", http.StatusBadRequest)
		return
	}

	game, err := database.GetGame(r.Context(), gameID)
	if err != nil {
		http.Error(w, "game not found", http.StatusNotFound)
		return
	}
	if !game.Settings.AllowDirectChat {
		http.Error(w, "direct chat is disabled for this game", http.StatusForbidden)
		return
	}

	paired, err := arePaired(r, gameID, userID, to)
	if err != nil {
		http.Error(w, "error checking pair", http.StatusInternalServerError)
		return
	}
	if !paired {
		http.Error(w, "you are not paired with this player", http.StatusForbidden)
		return
	}

	msg := models.DirectMessage{GameID: gameID, SenderID: userID, ReceiverID: to, Body: req.Body}
	if err := database.InsertDirectMessage(r.Context(), &msg); err != nil {
		http.Error(w, "error storing message", http.StatusInternalServerError)
		return
	}

	logbook.Log(r.Context(), nil, userID, logbook.DirectMessageSentPayload{GameID: gameID, MessageID: msg.ID})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(msg)
}

// ListDirectMessagesHandler returns the caller's conversation with one
// partner: GET /chat/dm/{gameID}?with={userID}.
func ListDirectMessagesHandler(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := requireUser(w, r)
	if !ok {
		return
	}
	gameID, err := pathID(r, "/chat/dm/")
	if err != nil {
		http.Error(w, "invalid game id", http.StatusBadRequest)
		return
	}
	with, err := uuid.Parse(r.URL.Query().Get("with"))
	if err != nil {
		http.Error(w, "invalid 'with' user id", http.StatusBadRequest)
		return
	}

	paired, err := arePaired(r, gameID, userID, with)
	if err != nil {
		http.Error(w, "error checking pair", http.StatusInternalServerError)
		return
	}
	if !paired {
		http.Error(w, "you are not paired with this player", http.StatusForbidden)
		return
	}

	msgs, err := database.ListDirectMessages(r.Context(), gameID, userID, with)
	if err != nil {
		http.Error(w, "error listing messages", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(msgs)
}
