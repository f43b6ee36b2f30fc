// Package identity resolves an external login assertion to exactly one
// persisted user account, creating or updating accounts as needed.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/chinazes/secretsanta/internal/models"
)

var (
	// ErrUserNotFound must be returned by Store lookups that match no user.
	ErrUserNotFound = errors.New("identity: user not found")

	// ErrEmailTaken must be returned by Store writes that violate the
	// email uniqueness constraint.
	ErrEmailTaken = errors.New("identity: email already taken")

	// ErrConcurrentRace is returned when a concurrent login for the same
	// new identity won the create. The caller should re-run resolution;
	// the winner's row will then be found by lookup.
	ErrConcurrentRace = errors.New("identity: concurrent create for the same identity")
)

// Assertion is the normalized set of claims an OAuth provider returned
// about the authenticating subject. Provider adapters populate it; this
// package never sees a raw claim map.
type Assertion struct {
	Provider  string // e.g. "github", "google"
	SubjectID string // provider-scoped stable user id
	Email     string // claimed email, may be empty (github hides it)
	Login     string // provider login handle, may be empty
	Name      string // claimed display name, may be empty
	AvatarURL string // claimed avatar, may be empty
}

// DerivedEmail returns the claimed email, or a synthetic
// "<login>@<provider>.local" / "<subject>@<provider>.local" address when
// the provider withheld it.
func (a Assertion) DerivedEmail() string {
	if strings.TrimSpace(a.Email) != "" {
		return a.Email
	}
	if a.Login != "" {
		return a.Login + "@" + a.Provider + ".local"
	}
	return a.SubjectID + "@" + a.Provider + ".local"
}

// DisplayName returns the claimed name, falling back to the login
// handle, falling back to the local part of the derived email.
func (a Assertion) DisplayName() string {
	if strings.TrimSpace(a.Name) != "" {
		return a.Name
	}
	if a.Login != "" {
		return a.Login
	}
	email := a.DerivedEmail()
	if i := strings.Index(email, "@"); i > 0 {
		return email[:i]
	}
	return email
}

// Store is the user lookup/persistence collaborator. Lookups return
// ErrUserNotFound on no match; writes return ErrEmailTaken on an email
// uniqueness violation.
type Store interface {
	FindUserByProvider(ctx context.Context, provider, providerID string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, u *models.User) error
	UpdateUser(ctx context.Context, u *models.User) error
}

// Resolver reconciles assertions against the user store.
type Resolver struct {
	Store Store
	Log   logrus.FieldLogger
}

func NewResolver(store Store, log logrus.FieldLogger) *Resolver {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Resolver{Store: store, Log: log}
}

// Resolve maps the assertion to its authoritative user.
//
// Order is strict: the (provider, subject) link wins, then the derived
// email, then a new account is created. Whatever user comes out has the
// provider link, email, and avatar back-filled and is persisted.
//
// A failed provider-link lookup is logged and treated as "no match" so a
// transient index problem cannot hard-fail login; any failure of the
// final persist is returned to the caller. A create that loses an email
// uniqueness race returns ErrConcurrentRace.
func (r *Resolver) Resolve(ctx context.Context, a Assertion) (*models.User, error) {
	user, err := r.Store.FindUserByProvider(ctx, a.Provider, a.SubjectID)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		r.Log.WithFields(logrus.Fields{
			"provider": a.Provider,
			"subject":  a.SubjectID,
		}).Warnf("provider link lookup failed, falling back to email: %v", err)
		user = nil
	}

	email := a.DerivedEmail()
	created := false

	if user == nil {
		user, err = r.Store.FindUserByEmail(ctx, email)
		if err != nil {
			if !errors.Is(err, ErrUserNotFound) {
				return nil, fmt.Errorf("email lookup failed: %w", err)
			}
			user = r.newUser(a, email)
			created = true
		}
	}

	if !user.HasAuthProvider(a.Provider, a.SubjectID) {
		user.AddAuthProvider(models.AuthProvider{
			Provider:   a.Provider,
			ProviderID: a.SubjectID,
			Email:      a.Email,
			Name:       a.Name,
		})
	}
	if strings.TrimSpace(user.Email) == "" {
		user.Email = email
	}
	if a.AvatarURL != "" && strings.TrimSpace(user.AvatarURL) == "" {
		user.AvatarURL = a.AvatarURL
	}
	user.UpdatedAt = time.Now()

	if created {
		err = r.Store.CreateUser(ctx, user)
	} else {
		err = r.Store.UpdateUser(ctx, user)
	}
	if err != nil {
		if created && errors.Is(err, ErrEmailTaken) {
			return nil, fmt.Errorf("%w: %v", ErrConcurrentRace, err)
		}
		return nil, fmt.Errorf("failed to persist resolved user: %w", err)
	}
	return user, nil
}

// Login resolves the assertion, retrying once if a concurrent login for
// the same new identity won the create. On retry the winner's account is
// found by lookup, so a second race is not possible.
func (r *Resolver) Login(ctx context.Context, a Assertion) (*models.User, error) {
	user, err := r.Resolve(ctx, a)
	if errors.Is(err, ErrConcurrentRace) {
		r.Log.WithField("provider", a.Provider).Info("lost identity create race, re-resolving")
		return r.Resolve(ctx, a)
	}
	return user, err
}

func (r *Resolver) newUser(a Assertion, email string) *models.User {
	now := time.Now()
	return &models.User{
		Username:  a.DisplayName(),
		Email:     email,
		Password:  "",
		Role:      models.RoleRegular,
		Enabled:   true,
		AvatarURL: a.AvatarURL,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
