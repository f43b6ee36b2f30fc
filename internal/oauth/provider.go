// Package oauth adapts external OAuth2 providers into normalized
// identity assertions. Each adapter exchanges an authorization code,
// fetches the provider's userinfo document, and maps its claims onto
// identity.Assertion. No raw claim map leaves this package.
package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"

	"github.com/chinazes/secretsanta/internal/identity"
)

// Provider is one configured external login provider.
type Provider interface {
	// Name returns the provider key (e.g. "github", "google").
	Name() string

	// AuthCodeURL builds the authorization redirect URL.
	AuthCodeURL(state string) string

	// Exchange trades the authorization code for an identity assertion.
	Exchange(ctx context.Context, code string) (identity.Assertion, error)
}

// Registry holds the providers enabled by configuration.
type Registry struct {
	providers map[string]Provider
}

// NewRegistryFromEnv enables each provider whose client credentials are
// present in the environment (GITHUB_CLIENT_ID/GITHUB_CLIENT_SECRET,
// GOOGLE_CLIENT_ID/GOOGLE_CLIENT_SECRET, plus OAUTH_REDIRECT_BASE).
func NewRegistryFromEnv() *Registry {
	r := &Registry{providers: make(map[string]Provider)}
	base := os.Getenv("OAUTH_REDIRECT_BASE")

	if id, secret := os.Getenv("GITHUB_CLIENT_ID"), os.Getenv("GITHUB_CLIENT_SECRET"); id != "" && secret != "" {
		r.Register(NewGithub(id, secret, base+"/auth/oauth/github/callback"))
	}
	if id, secret := os.Getenv("GOOGLE_CLIENT_ID"), os.Getenv("GOOGLE_CLIENT_SECRET"); id != "" && secret != "" {
		r.Register(NewGoogle(id, secret, base+"/auth/oauth/google/callback"))
	}
	return r
}

func (r *Registry) Register(p Provider) {
	r.providers[p.Name()] = p
}

// Get returns the named provider, or false if it is not configured.
func (r *Registry) Get(name string) (Provider, bool) {
	p, ok := r.providers[name]
	return p, ok
}

// fetchUserinfo GETs url with the token and decodes the JSON body into dst.
// The client uses standard TLS verification; there is no insecure mode.
func fetchUserinfo(ctx context.Context, cfg *oauth2.Config, token *oauth2.Token, url string, dst interface{}) error {
	client := cfg.Client(ctx, token)
	client.Timeout = 10 * time.Second

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build userinfo request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("userinfo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("userinfo endpoint returned %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("failed to decode userinfo: %w", err)
	}
	return nil
}
