package handlers

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/chinazes/secretsanta/internal/auth"
	"github.com/chinazes/secretsanta/internal/identity"
	"github.com/chinazes/secretsanta/internal/oauth"
)

const oauthStateCookie = "oauth_state"

func newStateToken() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// providerFromPath extracts {provider} from /auth/oauth/{provider}/suffix.
func providerFromPath(path, suffix string) string {
	p := strings.TrimPrefix(path, "/auth/oauth/")
	return strings.TrimSuffix(p, suffix)
}

// OAuthLoginHandler starts the authorization-code flow by redirecting to
// the provider, carrying a state token pinned in a short-lived cookie.
func OAuthLoginHandler(reg *oauth.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		provider, ok := reg.Get(providerFromPath(r.URL.Path, "/login"))
		if !ok {
			http.Error(w, "unknown oauth provider", http.StatusNotFound)
			return
		}

		state, err := newStateToken()
		if err != nil {
			http.Error(w, "failed to create state", http.StatusInternalServerError)
			return
		}
		http.SetCookie(w, &http.Cookie{
			Name:     oauthStateCookie,
			Value:    state,
			HttpOnly: true,
			Path:     "/auth/oauth",
			MaxAge:   300,
		})
		http.Redirect(w, r, provider.AuthCodeURL(state), http.StatusFound)
	}
}

// OAuthCallbackHandler finishes the flow: code -> assertion -> resolved
// user -> session token. Resolution retries once internally if it loses
// a concurrent-create race (identity.Resolver.Login).
func OAuthCallbackHandler(reg *oauth.Registry, resolver *identity.Resolver, logger *logrus.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		provider, ok := reg.Get(providerFromPath(r.URL.Path, "/callback"))
		if !ok {
			http.Error(w, "unknown oauth provider", http.StatusNotFound)
			return
		}

		stateCookie, err := r.Cookie(oauthStateCookie)
		if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
			http.Error(w, "state mismatch", http.StatusForbidden)
			return
		}

		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}

		assertion, err := provider.Exchange(r.Context(), code)
		if err != nil {
			logger.Warnf("oauth exchange with %s failed: %v", provider.Name(), err)
			http.Error(w, "oauth exchange failed", http.StatusBadGateway)
			return
		}

		user, err := resolver.Login(r.Context(), assertion)
		if err != nil {
			logger.Errorf("identity resolution failed for %s subject %s: %v",
				assertion.Provider, assertion.SubjectID, err)
			http.Error(w, "login failed", http.StatusInternalServerError)
			return
		}

		token, err := auth.CreateJWT(user.ID.String(), user.Role)
		if err != nil {
			http.Error(w, "failed to create token", http.StatusInternalServerError)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     auth.CookieName,
			Value:    token,
			HttpOnly: true,
			Path:     "/",
			MaxAge:   auth.TokenExpireSec,
		})

		userBody := map[string]interface{}{
			"id":    user.ID,
			"email": user.Email,
			"name":  user.Username,
		}
		if user.AvatarURL != "" {
			userBody["avatarUrl"] = user.AvatarURL
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"token":     token,
			"tokenType": "Bearer",
			"expiresAt": time.Now().Add(time.Duration(auth.TokenExpireSec) * time.Second).Format(time.RFC3339),
			"user":      userBody,
		})
	}
}
