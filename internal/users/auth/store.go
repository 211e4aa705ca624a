// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"

	"github.com/taibuivan/contactbook/internal/platform/sec"
)

// # Identity Data Access

// IdentityStore defines the data access contract for identities.
//
// Lookups return [dberr.ErrNotFound] for unknown emails and Create returns a
// CONFLICT error when the email is taken.
type IdentityStore interface {

	/*
		FindByEmail returns the identity with the given email.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *Identity: Hydrated entity, including password hash and refresh token
		  - error: dberr.ErrNotFound or database failures
	*/
	FindByEmail(context context.Context, email string) (*Identity, error)

	/*
		Create persists a brand-new identity.

		Parameters:
		  - context: context.Context
		  - identity: *Identity (timestamps are filled in)

		Returns:
		  - error: Conflict on duplicate email, or persistence failures
	*/
	Create(context context.Context, identity *Identity) error

	// UpdateRefreshToken stores token as the identity's current refresh token. Nil clears it.
	UpdateRefreshToken(context context.Context, identityID string, token *string) error

	// ConfirmEmail marks the identity with email as confirmed.
	ConfirmEmail(context context.Context, email string) error

	// UpdatePassword replaces only the password hash.
	UpdatePassword(context context.Context, identityID, passwordHash string) error

	// UpdateAvatar sets the avatar URL and returns the updated identity.
	UpdateAvatar(context context.Context, email, avatarURL string) (*Identity, error)

	// UpdateRole changes the role of the identity with email.
	UpdateRole(context context.Context, email string, role sec.Role) error
}
