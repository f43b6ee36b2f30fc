package models

import (
	"time"

	"github.com/google/uuid"
)

// Role values stored on a user row.
const (
	RoleRegular = "regular"
	RoleAdmin   = "admin"
)

// AuthProvider links a user to one external login identity.
// Each (provider, providerId) pair appears on at most one user.
type AuthProvider struct {
	Provider   string `json:"provider"`
	ProviderID string `json:"provider_id"`
	Email      string `json:"email,omitempty"`
	Name       string `json:"name,omitempty"`
}

type User struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Password string    `json:"password,omitempty"`

	Role    string `json:"role"`
	Enabled bool   `json:"enabled"`

	AuthProviders []AuthProvider `json:"auth_providers,omitempty"`
	AvatarURL     string         `json:"avatar_url,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasAuthProvider reports whether the user already carries a link
// for the given (provider, providerId) identity.
func (u *User) HasAuthProvider(provider, providerID string) bool {
	for _, p := range u.AuthProviders {
		if p.Provider == provider && p.ProviderID == providerID {
			return true
		}
	}
	return false
}

// AddAuthProvider appends a provider link. Callers should check
// HasAuthProvider first; duplicates are not deduplicated here.
func (u *User) AddAuthProvider(p AuthProvider) {
	u.AuthProviders = append(u.AuthProviders, p)
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
