// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/contactbook/internal/platform/dberr"
	"github.com/taibuivan/contactbook/internal/platform/sec"
)

// # Identity Repository

// PostgresIdentityStore implements [IdentityStore] using pgx.
type PostgresIdentityStore struct {
	pool *pgxpool.Pool
}

// NewPostgresIdentityStore creates a new PostgreSQL implementation of [IdentityStore].
func NewPostgresIdentityStore(pool *pgxpool.Pool) *PostgresIdentityStore {
	return &PostgresIdentityStore{pool: pool}
}

const identityColumns = `id, username, email, password_hash, role, confirmed, refresh_token, avatar, created_at, updated_at`

func scanIdentity(row pgx.Row) (*Identity, error) {
	identity := &Identity{}
	err := row.Scan(
		&identity.ID,
		&identity.Username,
		&identity.Email,
		&identity.PasswordHash,
		&identity.Role,
		&identity.Confirmed,
		&identity.RefreshToken,
		&identity.Avatar,
		&identity.CreatedAt,
		&identity.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return identity, nil
}

/*
FindByEmail retrieves an identity by its unique email address.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *Identity: Hydrated entity
  - error: dberr.ErrNotFound or database errors
*/
func (repository *PostgresIdentityStore) FindByEmail(context context.Context, email string) (*Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM users WHERE email = $1`

	identity, err := scanIdentity(repository.pool.QueryRow(context, query, email))
	if err != nil {
		return nil, dberr.Wrap(err, "postgres_identity_find_by_email")
	}
	return identity, nil
}

/*
Create persists a new identity record.

Parameters:
  - context: context.Context
  - identity: *Identity (Entity to persist)

Returns:
  - error: dberr.ErrDuplicate on a taken email, or connectivity errors
*/
func (repository *PostgresIdentityStore) Create(context context.Context, identity *Identity) error {
	const query = `
		INSERT INTO users (
			id, username, email, password_hash, role, confirmed, avatar, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	now := time.Now().UTC()
	if identity.CreatedAt.IsZero() {
		identity.CreatedAt = now
	}
	identity.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		identity.ID,
		identity.Username,
		identity.Email,
		identity.PasswordHash,
		identity.Role,
		identity.Confirmed,
		identity.Avatar,
		identity.CreatedAt,
		identity.UpdatedAt,
	)
	return dberr.Wrap(err, "postgres_identity_create")
}

// UpdateRefreshToken implements [IdentityStore].
func (repository *PostgresIdentityStore) UpdateRefreshToken(context context.Context, identityID string, token *string) error {
	const query = `UPDATE users SET refresh_token = $2, updated_at = NOW() WHERE id = $1`
	return repository.execOne(context, "postgres_identity_update_refresh_token", query, identityID, token)
}

// ConfirmEmail implements [IdentityStore].
func (repository *PostgresIdentityStore) ConfirmEmail(context context.Context, email string) error {
	const query = `UPDATE users SET confirmed = TRUE, updated_at = NOW() WHERE email = $1`
	return repository.execOne(context, "postgres_identity_confirm_email", query, email)
}

// UpdatePassword implements [IdentityStore].
func (repository *PostgresIdentityStore) UpdatePassword(context context.Context, identityID, passwordHash string) error {
	const query = `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`
	return repository.execOne(context, "postgres_identity_update_password", query, identityID, passwordHash)
}

// UpdateRole implements [IdentityStore].
func (repository *PostgresIdentityStore) UpdateRole(context context.Context, email string, role sec.Role) error {
	const query = `UPDATE users SET role = $2, updated_at = NOW() WHERE email = $1`
	return repository.execOne(context, "postgres_identity_update_role", query, email, role)
}

// UpdateAvatar implements [IdentityStore].
func (repository *PostgresIdentityStore) UpdateAvatar(context context.Context, email, avatarURL string) (*Identity, error) {
	query := `UPDATE users SET avatar = $2, updated_at = NOW() WHERE email = $1 RETURNING ` + identityColumns

	identity, err := scanIdentity(repository.pool.QueryRow(context, query, email, avatarURL))
	if err != nil {
		return nil, dberr.Wrap(err, "postgres_identity_update_avatar")
	}
	return identity, nil
}

// execOne runs an UPDATE that must touch exactly one row.
func (repository *PostgresIdentityStore) execOne(context context.Context, action, query string, args ...any) error {
	tag, err := repository.pool.Exec(context, query, args...)
	if err != nil {
		return dberr.Wrap(err, action)
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}
