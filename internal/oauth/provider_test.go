package oauth

import (
	"strings"
	"testing"
)

func TestNewRegistryFromEnv(t *testing.T) {
	t.Setenv("OAUTH_REDIRECT_BASE", "https://santa.example")
	t.Setenv("GITHUB_CLIENT_ID", "gh-id")
	t.Setenv("GITHUB_CLIENT_SECRET", "gh-secret")
	t.Setenv("GOOGLE_CLIENT_ID", "")
	t.Setenv("GOOGLE_CLIENT_SECRET", "")

	reg := NewRegistryFromEnv()

	gh, ok := reg.Get("github")
	if !ok {
		t.Fatal("github provider should be configured")
	}
	if gh.Name() != "github" {
		t.Fatalf("unexpected provider name %q", gh.Name())
	}
	if _, ok := reg.Get("google"); ok {
		t.Fatal("google provider should not be configured without credentials")
	}
}

func TestGithubAuthCodeURL(t *testing.T) {
	gh := NewGithub("gh-id", "gh-secret", "https://santa.example/auth/oauth/github/callback")
	url := gh.AuthCodeURL("state-123")

	for _, want := range []string{"client_id=gh-id", "state=state-123", "github.com"} {
		if !strings.Contains(url, want) {
			t.Errorf("auth url %q missing %q", url, want)
		}
	}
}

func TestGoogleAuthCodeURL(t *testing.T) {
	g := NewGoogle("goog-id", "goog-secret", "https://santa.example/auth/oauth/google/callback")
	url := g.AuthCodeURL("state-456")

	for _, want := range []string{"client_id=goog-id", "state=state-456", "scope=openid"} {
		if !strings.Contains(url, want) {
			t.Errorf("auth url %q missing %q", url, want)
		}
	}
}
