package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chinazes/secretsanta/internal/models"
)

// memStore is an in-memory Store with switches to simulate lookup
// failures and create races.
type memStore struct {
	users map[uuid.UUID]*models.User

	providerLookupErr error
	failNextCreate    bool

	creates int
	updates int
}

func newMemStore() *memStore {
	return &memStore{users: make(map[uuid.UUID]*models.User)}
}

func (s *memStore) FindUserByProvider(_ context.Context, provider, providerID string) (*models.User, error) {
	if s.providerLookupErr != nil {
		return nil, s.providerLookupErr
	}
	for _, u := range s.users {
		if u.HasAuthProvider(provider, providerID) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrUserNotFound
}

func (s *memStore) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrUserNotFound
}

func (s *memStore) CreateUser(_ context.Context, u *models.User) error {
	s.creates++
	if s.failNextCreate {
		s.failNextCreate = false
		return ErrEmailTaken
	}
	for _, other := range s.users {
		if other.Email == u.Email {
			return ErrEmailTaken
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *memStore) UpdateUser(_ context.Context, u *models.User) error {
	s.updates++
	if _, ok := s.users[u.ID]; !ok {
		return ErrUserNotFound
	}
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *memStore) add(u *models.User) *models.User {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	s.users[u.ID] = u
	return u
}

func TestResolveCreatesUserWithSyntheticEmail(t *testing.T) {
	store := newMemStore()
	r := NewResolver(store, nil)

	user, err := r.Resolve(context.Background(), Assertion{
		Provider:  "github",
		SubjectID: "42",
		Login:     "octo",
	})
	require.NoError(t, err)

	assert.Equal(t, "octo@github.local", user.Email)
	assert.Equal(t, "octo", user.Username)
	assert.True(t, user.Enabled)
	assert.Empty(t, user.Password)
	require.Len(t, user.AuthProviders, 1)
	assert.Equal(t, "github", user.AuthProviders[0].Provider)
	assert.Equal(t, "42", user.AuthProviders[0].ProviderID)
	assert.Equal(t, 1, store.creates)
}

func TestResolveSyntheticEmailFallsBackToSubject(t *testing.T) {
	store := newMemStore()
	r := NewResolver(store, nil)

	user, err := r.Resolve(context.Background(), Assertion{
		Provider:  "google",
		SubjectID: "9001",
	})
	require.NoError(t, err)
	assert.Equal(t, "9001@google.local", user.Email)
	assert.Equal(t, "9001", user.Username)
}

func TestResolveByProviderLinkWins(t *testing.T) {
	store := newMemStore()
	existing := store.add(&models.User{
		Username: "alice",
		Email:    "alice@example.com",
		Role:     models.RoleRegular,
		Enabled:  true,
		AuthProviders: []models.AuthProvider{
			{Provider: "github", ProviderID: "42"},
		},
	})
	// a decoy whose email matches the assertion's claimed email
	store.add(&models.User{Username: "mallory", Email: "claimed@example.com"})

	r := NewResolver(store, nil)
	user, err := r.Resolve(context.Background(), Assertion{
		Provider:  "github",
		SubjectID: "42",
		Email:     "claimed@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, existing.ID, user.ID, "provider link must win over email match")
}

func TestResolveLinksProviderToEmailMatch(t *testing.T) {
	store := newMemStore()
	local := store.add(&models.User{
		Username: "bob",
		Email:    "bob@example.com",
		Password: "argon2-hash",
		Role:     models.RoleRegular,
		Enabled:  true,
	})

	r := NewResolver(store, nil)
	user, err := r.Resolve(context.Background(), Assertion{
		Provider:  "google",
		SubjectID: "g-777",
		Email:     "bob@example.com",
		Name:      "Bob",
	})
	require.NoError(t, err)
	assert.Equal(t, local.ID, user.ID)
	assert.True(t, user.HasAuthProvider("google", "g-777"))
	assert.Equal(t, 0, store.creates)
	assert.Equal(t, 1, store.updates)
}

func TestResolveBackfillsEmailAndAvatar(t *testing.T) {
	store := newMemStore()
	existing := store.add(&models.User{
		Username: "carol",
		Enabled:  true,
		AuthProviders: []models.AuthProvider{
			{Provider: "github", ProviderID: "7"},
		},
	})

	r := NewResolver(store, nil)
	user, err := r.Resolve(context.Background(), Assertion{
		Provider:  "github",
		SubjectID: "7",
		Login:     "carol",
		AvatarURL: "https://avatars.example/carol.png",
	})
	require.NoError(t, err)
	assert.Equal(t, existing.ID, user.ID)
	assert.Equal(t, "carol@github.local", user.Email)
	assert.Equal(t, "https://avatars.example/carol.png", user.AvatarURL)
	// the stored copy must reflect the back-fill
	assert.Equal(t, "carol@github.local", store.users[existing.ID].Email)
}

func TestResolveDoesNotOverwriteExistingAvatar(t *testing.T) {
	store := newMemStore()
	existing := store.add(&models.User{
		Username:  "dave",
		Email:     "dave@example.com",
		AvatarURL: "https://avatars.example/original.png",
		AuthProviders: []models.AuthProvider{
			{Provider: "google", ProviderID: "d-1"},
		},
	})

	r := NewResolver(store, nil)
	user, err := r.Resolve(context.Background(), Assertion{
		Provider:  "google",
		SubjectID: "d-1",
		Email:     "dave@example.com",
		AvatarURL: "https://avatars.example/new.png",
	})
	require.NoError(t, err)
	assert.Equal(t, existing.ID, user.ID)
	assert.Equal(t, "https://avatars.example/original.png", user.AvatarURL)
}

func TestResolveProviderLookupFailureFallsThrough(t *testing.T) {
	store := newMemStore()
	local := store.add(&models.User{
		Username: "erin",
		Email:    "erin@example.com",
		Enabled:  true,
	})
	store.providerLookupErr = errors.New("index rebuild in progress")

	r := NewResolver(store, nil)
	user, err := r.Resolve(context.Background(), Assertion{
		Provider:  "github",
		SubjectID: "55",
		Email:     "erin@example.com",
	})
	require.NoError(t, err, "transient lookup failure must not abort resolution")
	assert.Equal(t, local.ID, user.ID)
	assert.True(t, user.HasAuthProvider("github", "55"))
}

func TestResolveCreateRaceSurfacesAsConcurrentRace(t *testing.T) {
	store := newMemStore()
	store.failNextCreate = true

	r := NewResolver(store, nil)
	_, err := r.Resolve(context.Background(), Assertion{
		Provider:  "github",
		SubjectID: "404",
		Login:     "racer",
	})
	assert.ErrorIs(t, err, ErrConcurrentRace)
}

func TestLoginRetriesOnceAfterRace(t *testing.T) {
	store := newMemStore()
	// the losing writer: its first create fails as if a concurrent login
	// committed the same email a moment earlier
	winner := store.add(&models.User{
		Username: "racer",
		Email:    "racer@github.local",
		Enabled:  true,
		AuthProviders: []models.AuthProvider{
			{Provider: "github", ProviderID: "404"},
		},
	})
	store.providerLookupErr = errors.New("transient")

	r := NewResolver(store, nil)
	// first pass: provider lookup errors out, email lookup misses are not
	// possible here (winner holds the email), so the update path finds it.
	user, err := r.Login(context.Background(), Assertion{
		Provider:  "github",
		SubjectID: "404",
		Login:     "racer",
	})
	require.NoError(t, err)
	assert.Equal(t, winner.ID, user.ID)

	// true race shape: empty store, create loses, retry resolves the winner
	store2 := newMemStore()
	store2.failNextCreate = true
	r2 := NewResolver(store2, nil)
	user2, err := r2.Login(context.Background(), Assertion{
		Provider:  "github",
		SubjectID: "405",
		Login:     "later",
	})
	require.NoError(t, err)
	// after losing the simulated race the retry created the account
	// (memStore only fails a single create)
	require.NotNil(t, user2)
	assert.Equal(t, "later@github.local", user2.Email)
	assert.Equal(t, 2, store2.creates)
}

func TestResolveTouchesUpdatedAt(t *testing.T) {
	store := newMemStore()
	old := time.Now().Add(-24 * time.Hour)
	existing := store.add(&models.User{
		Username:  "frank",
		Email:     "frank@example.com",
		UpdatedAt: old,
		AuthProviders: []models.AuthProvider{
			{Provider: "github", ProviderID: "f-1"},
		},
	})

	r := NewResolver(store, nil)
	user, err := r.Resolve(context.Background(), Assertion{
		Provider:  "github",
		SubjectID: "f-1",
		Email:     "frank@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, existing.ID, user.ID)
	assert.True(t, user.UpdatedAt.After(old))
}
