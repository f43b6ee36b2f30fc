package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/chinazes/secretsanta/internal/database"
	"github.com/chinazes/secretsanta/internal/logbook"
	"github.com/chinazes/secretsanta/internal/middleware"
	"github.com/chinazes/secretsanta/internal/models"
)

// chatConn is one user's live chat socket.
type chatConn struct {
	conn *websocket.Conn
	ctx  context.Context
}

// write pushes a message to the socket, dropping it on error. A stale
// socket is cleaned up by its own read loop.
func (c *chatConn) write(msg models.Message) {
	ctx, cancel := context.WithTimeout(c.ctx, 5*time.Second)
	defer cancel()
	_ = wsjson.Write(ctx, c.conn, msg)
}

// ChatWSHandler upgrades GET /chat/ws/{gameID} to a websocket that
// streams the game's chat. Inbound frames of the form {"body": "..."}
// are persisted and broadcast like POST /chat/send.
func ChatWSHandler(logger *logrus.Logger, cs *ChatServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID, err := pathID(r, "/chat/ws/")
		if err != nil {
			http.Error(w, "invalid game id", http.StatusBadRequest)
			return
		}

		userID, _, ok := requireUser(w, r)
		if !ok {
			return
		}
		if _, ok := chatAccess(w, r, gameID, userID); !ok {
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: []string{"*"}, // Adjust in production
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		middleware.LogWebSocketConnect(logger, r.RemoteAddr, r.URL.Path)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		conn := &chatConn{conn: c, ctx: ctx}
		cs.register(gameID, userID, conn)
		defer cs.unregister(gameID, userID)

		readErr := readChatLoop(ctx, c, cs, gameID, userID)
		middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, readErr)
		c.Close(websocket.StatusNormalClosure, "bye")
	}
}

func readChatLoop(ctx context.Context, c *websocket.Conn, cs *ChatServer, gameID, userID uuid.UUID) error {
	for {
		_, data, err := c.Read(ctx)
		if err != nil {
			return err
		}

		var frame struct {
			Body string `json:"body"`
		}
		if err := json.Unmarshal(data, &frame); err != nil || frame.Body == "" {
			continue
		}

		msg := models.Message{GameID: gameID, UserID: userID, Body: frame.Body}
		if err := database.InsertMessage(ctx, &msg); err != nil {
			logrus.Warnf("failed to store ws chat message: %v", err)
			continue
		}
		logbook.Log(ctx, nil, userID, logbook.SendMessagePayload{GameID: gameID, MessageID: msg.ID})
		cs.Broadcast(msg)
	}
}
