package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chinazes/secretsanta/internal/auth"
	"github.com/chinazes/secretsanta/internal/database"
	"github.com/chinazes/secretsanta/internal/models"
)

// TestGameFlow is a high-level integration test covering create -> join
// -> start -> pair lookup. Requires a reachable test database.
func TestGameFlow(t *testing.T) {
	auth.Init()
	database.ConnectDB()

	// three users so the game can start
	creator := createTestUser(t, "santa-creator@example.com", "password", "creator")
	p2 := createTestUser(t, "santa-p2@example.com", "password", "playertwo")
	p3 := createTestUser(t, "santa-p3@example.com", "password", "playerthree")

	creatorToken, _ := auth.CreateJWT(creator.ID.String(), creator.Role)

	// creator makes a game (and is auto-joined)
	body := `{"name":"office exchange"}`
	req := httptest.NewRequest("POST", "/game/create", bytes.NewBufferString(body))
	req.Header.Set("Cookie", "auth_token="+creatorToken)
	w := httptest.NewRecorder()
	CreateGameHandler(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 created, got %d, body=%s", w.Code, w.Body.String())
	}
	var game models.Game
	if err := json.Unmarshal(w.Body.Bytes(), &game); err != nil {
		t.Fatalf("failed to decode game: %v", err)
	}
	if game.Status != models.GameStatusDraft {
		t.Fatalf("new game should be draft, got %s", game.Status)
	}

	// two more players join
	for _, u := range []models.User{p2, p3} {
		token, _ := auth.CreateJWT(u.ID.String(), u.Role)
		joinBody := `{"game_id":"` + game.ID.String() + `"}`
		jr := httptest.NewRequest("POST", "/game/join", bytes.NewBufferString(joinBody))
		jr.Header.Set("Cookie", "auth_token="+token)
		jw := httptest.NewRecorder()
		JoinGameHandler(jw, jr)
		if jw.Code != http.StatusCreated {
			t.Fatalf("join failed for %s: %d, body=%s", u.Username, jw.Code, jw.Body.String())
		}
	}

	// creator starts the game
	startBody := `{"game_id":"` + game.ID.String() + `"}`
	sr := httptest.NewRequest("POST", "/game/start", bytes.NewBufferString(startBody))
	sr.Header.Set("Cookie", "auth_token="+creatorToken)
	sw := httptest.NewRecorder()
	StartGameHandler(sw, sr)
	if sw.Code != http.StatusOK {
		t.Fatalf("start failed: %d, body=%s", sw.Code, sw.Body.String())
	}

	// a second start must be refused
	sr2 := httptest.NewRequest("POST", "/game/start", bytes.NewBufferString(startBody))
	sr2.Header.Set("Cookie", "auth_token="+creatorToken)
	sw2 := httptest.NewRecorder()
	StartGameHandler(sw2, sr2)
	if sw2.Code != http.StatusConflict {
		t.Fatalf("second start should conflict, got %d", sw2.Code)
	}

	// every player has a receiver, and no one has themself
	for _, u := range []models.User{creator, p2, p3} {
		pair, err := database.GetPairForGifter(context.Background(), game.ID, u.ID)
		if err != nil {
			t.Fatalf("no pair for %s: %v", u.Username, err)
		}
		if pair.ReceiverID == u.ID {
			t.Fatalf("player %s was paired with themself", u.Username)
		}
	}
}

// TestStartGameTooFewPlayers verifies the minimum-size rule surfaces as
// a conflict rather than a server error.
func TestStartGameTooFewPlayers(t *testing.T) {
	auth.Init()
	database.ConnectDB()

	creator := createTestUser(t, "santa-lonely@example.com", "password", "lonely")
	token, _ := auth.CreateJWT(creator.ID.String(), creator.Role)

	req := httptest.NewRequest("POST", "/game/create", bytes.NewBufferString(`{"name":"tiny"}`))
	req.Header.Set("Cookie", "auth_token="+token)
	w := httptest.NewRecorder()
	CreateGameHandler(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create failed: %d", w.Code)
	}
	var game models.Game
	if err := json.Unmarshal(w.Body.Bytes(), &game); err != nil {
		t.Fatalf("failed to decode game: %v", err)
	}

	sr := httptest.NewRequest("POST", "/game/start", bytes.NewBufferString(`{"game_id":"`+game.ID.String()+`"}`))
	sr.Header.Set("Cookie", "auth_token="+token)
	sw := httptest.NewRecorder()
	StartGameHandler(sw, sr)
	if sw.Code != http.StatusConflict {
		t.Fatalf("expected 409 for too few players, got %d, body=%s", sw.Code, sw.Body.String())
	}

	// the failed start must not have left the game active
	g, err := database.GetGame(context.Background(), game.ID)
	if err != nil {
		t.Fatalf("failed to reload game: %v", err)
	}
	if g.Status != models.GameStatusDraft {
		t.Fatalf("game should still be draft after failed start, got %s", g.Status)
	}
}

// helper to create a test user directly in DB
func createTestUser(t *testing.T, email, pass, uname string) models.User {
	u := models.User{
		Email:    email,
		Password: pass,
		Username: uname,
		Role:     models.RoleRegular,
		Enabled:  true,
	}
	ctx := context.Background()
	if err := database.RegisterUser(ctx, &u); err != nil {
		t.Fatalf("RegisterUser failed: %v", err)
	}
	return u
}
