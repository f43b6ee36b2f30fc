package oauth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/chinazes/secretsanta/internal/identity"
)

const googleUserinfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

// Google adapts Google's OAuth2/OIDC flow. Google has no login handle,
// so Login stays empty and the assertion's name/email fallbacks rest on
// the claimed values and the subject id.
type Google struct {
	cfg *oauth2.Config
}

func NewGoogle(clientID, clientSecret, redirectURL string) *Google {
	return &Google{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     google.Endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
	}
}

func (g *Google) Name() string { return "google" }

func (g *Google) AuthCodeURL(state string) string {
	return g.cfg.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

func (g *Google) Exchange(ctx context.Context, code string) (identity.Assertion, error) {
	token, err := g.cfg.Exchange(ctx, code)
	if err != nil {
		return identity.Assertion{}, fmt.Errorf("google token exchange failed: %w", err)
	}

	var claims struct {
		Sub     string `json:"sub"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := fetchUserinfo(ctx, g.cfg, token, googleUserinfoURL, &claims); err != nil {
		return identity.Assertion{}, fmt.Errorf("google userinfo failed: %w", err)
	}
	if claims.Sub == "" {
		return identity.Assertion{}, fmt.Errorf("google userinfo missing sub claim")
	}

	return identity.Assertion{
		Provider:  g.Name(),
		SubjectID: claims.Sub,
		Email:     claims.Email,
		Name:      claims.Name,
		AvatarURL: claims.Picture,
	}, nil
}
