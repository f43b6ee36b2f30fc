package handlers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/chinazes/secretsanta/internal/auth"
	"github.com/chinazes/secretsanta/internal/models"
)

// extractCookieToken extracts a named cookie value from the "Cookie"
// header, or returns empty if not found.
func extractCookieToken(cookieHeader, cookieName string) string {
	parts := strings.Split(cookieHeader, cookieName+"=")
	if len(parts) < 2 {
		return ""
	}
	token := parts[1]
	if idx := strings.Index(token, ";"); idx != -1 {
		token = token[:idx]
	}
	return token
}

// requireUser authenticates the request's session cookie. On failure it
// writes a 403 and returns ok=false.
func requireUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, string, bool) {
	token := extractCookieToken(r.Header.Get("Cookie"), auth.CookieName)
	if token == "" {
		http.Error(w, "missing auth token", http.StatusForbidden)
		return uuid.Nil, "", false
	}
	userIDStr, role, err := auth.AuthenticateJWT(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusForbidden)
		return uuid.Nil, "", false
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		http.Error(w, "invalid user id in token", http.StatusForbidden)
		return uuid.Nil, "", false
	}
	return userID, role, true
}

// requireAdmin is requireUser plus an admin role check.
func requireAdmin(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, role, ok := requireUser(w, r)
	if !ok {
		return uuid.Nil, false
	}
	if role != models.RoleAdmin {
		http.Error(w, "admin only", http.StatusForbidden)
		return uuid.Nil, false
	}
	return userID, true
}

// pathID parses the trailing path segment after prefix as a UUID.
func pathID(r *http.Request, prefix string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimPrefix(r.URL.Path, prefix))
}
