package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/chinazes/secretsanta/internal/auth"
	"github.com/chinazes/secretsanta/internal/identity"
	"github.com/chinazes/secretsanta/internal/models"
)

const userColumns = `id, username, email, password, role, enabled, auth_providers, avatar_url, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	var providers []byte
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.Password, &u.Role, &u.Enabled,
		&providers, &u.AvatarURL, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if len(providers) > 0 {
		if err := json.Unmarshal(providers, &u.AuthProviders); err != nil {
			return nil, fmt.Errorf("failed to decode auth providers: %w", err)
		}
	}
	return &u, nil
}

// RegisterUser hashes the password and inserts a local-signup user.
func RegisterUser(ctx context.Context, user *models.User) error {
	hash, err := auth.HashPassword(user.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = hash
	return CreateUser(ctx, user)
}

// CreateUser inserts the user as-is. The email uniqueness constraint is
// the backstop against two concurrent logins creating the same account.
func CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		id, err := uuid.NewRandom()
		if err != nil {
			return fmt.Errorf("failed to generate user id: %w", err)
		}
		user.ID = id
	}
	if user.Role == "" {
		user.Role = models.RoleRegular
	}
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	providers, err := json.Marshal(user.AuthProviders)
	if err != nil {
		return fmt.Errorf("failed to encode auth providers: %w", err)
	}

	q := `INSERT INTO users (id, username, email, password, role, enabled, auth_providers, avatar_url, created_at, updated_at)
	      VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	err = pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, execErr := tx.Exec(ctx, q,
			user.ID, user.Username, user.Email, user.Password, user.Role,
			user.Enabled, providers, user.AvatarURL, user.CreatedAt, user.UpdatedAt,
		)
		return execErr
	})
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %v", ErrEmailTaken, err)
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// UpdateUser rewrites the mutable user fields.
func UpdateUser(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now()

	providers, err := json.Marshal(user.AuthProviders)
	if err != nil {
		return fmt.Errorf("failed to encode auth providers: %w", err)
	}

	q := `UPDATE users
	      SET username=$1, email=$2, password=$3, role=$4, enabled=$5,
	          auth_providers=$6, avatar_url=$7, updated_at=$8
	      WHERE id=$9`

	err = pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		ct, execErr := tx.Exec(ctx, q,
			user.Username, user.Email, user.Password, user.Role, user.Enabled,
			providers, user.AvatarURL, user.UpdatedAt, user.ID,
		)
		if execErr != nil {
			return execErr
		}
		if ct.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %v", ErrEmailTaken, err)
		}
		return err
	}
	return nil
}

func GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return scanUser(DB.QueryRow(ctx, q, id))
}

func GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE email=$1`
	return scanUser(DB.QueryRow(ctx, q, email))
}

// GetUserByProvider finds the user holding a (provider, providerId) link
// inside the auth_providers jsonb array.
func GetUserByProvider(ctx context.Context, provider, providerID string) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users
	      WHERE auth_providers @> jsonb_build_array(jsonb_build_object('provider', $1::text, 'provider_id', $2::text))`
	return scanUser(DB.QueryRow(ctx, q, provider, providerID))
}

// AuthenticateUser checks local credentials and returns the user on success.
func AuthenticateUser(ctx context.Context, email, password string) (*models.User, error) {
	user, err := GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("user not found or db error: %w", err)
	}
	if !user.Enabled {
		return nil, fmt.Errorf("account disabled")
	}

	match, err := auth.VerifyPassword(password, user.Password)
	if err != nil || !match {
		return nil, fmt.Errorf("invalid credentials")
	}
	return user, nil
}

// UserStore adapts this package to identity.Store, translating the
// sentinel errors the resolver dispatches on.
type UserStore struct{}

var _ identity.Store = UserStore{}

func (UserStore) FindUserByProvider(ctx context.Context, provider, providerID string) (*models.User, error) {
	u, err := GetUserByProvider(ctx, provider, providerID)
	if errors.Is(err, ErrNotFound) {
		return nil, identity.ErrUserNotFound
	}
	return u, err
}

func (UserStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := GetUserByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return nil, identity.ErrUserNotFound
	}
	return u, err
}

func (UserStore) CreateUser(ctx context.Context, u *models.User) error {
	err := CreateUser(ctx, u)
	if errors.Is(err, ErrEmailTaken) {
		return fmt.Errorf("%w: %v", identity.ErrEmailTaken, err)
	}
	return err
}

func (UserStore) UpdateUser(ctx context.Context, u *models.User) error {
	err := UpdateUser(ctx, u)
	if errors.Is(err, ErrEmailTaken) {
		return fmt.Errorf("%w: %v", identity.ErrEmailTaken, err)
	}
	return err
}
