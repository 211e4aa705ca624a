// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account handles the profile of the authenticated user.

It exposes the current identity and replaces its avatar with an uploaded image,
stored as a square PNG in object storage.

# Architecture

  - Domain: This package depends on the auth package for the Identity entity.
  - Storage: Avatar bytes go to an [AvatarStore]; the URL goes to the identity store.
*/
package account

import (
	"context"

	"github.com/taibuivan/contactbook/internal/users/auth"
)

// # Avatar Constraints

const (
	// AvatarSize is the edge length in pixels of a stored avatar.
	AvatarSize = 250

	// MaxAvatarBytes bounds the multipart upload.
	MaxAvatarBytes = 5 << 20

	// AvatarContentType is the format every avatar is re-encoded to.
	AvatarContentType = "image/png"

	// FieldFile is the multipart field carrying the image.
	FieldFile = "file"
)

// Client-facing messages.
const (
	MsgAvatarUnavailable = "Avatar storage is not configured"
	MsgInvalidImage      = "File is not a supported image"
)

// # Contracts

// AvatarStore persists avatar images and returns their public URL.
type AvatarStore interface {
	Put(context context.Context, key string, body []byte, contentType string) (string, error)
}

// ProfileStore is the subset of [auth.IdentityStore] this package writes to.
type ProfileStore interface {
	UpdateAvatar(context context.Context, email, avatarURL string) (*auth.Identity, error)
}

// AvatarKey returns the object key of an identity's avatar.
func AvatarKey(identityID string) string {
	return "avatars/" + identityID + ".png"
}
