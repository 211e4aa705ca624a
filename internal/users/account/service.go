// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/disintegration/imaging"

	"github.com/taibuivan/contactbook/internal/platform/apperr"
	"github.com/taibuivan/contactbook/internal/platform/ctxutil"
	"github.com/taibuivan/contactbook/internal/users/auth"
)

// # Service Layer

// Service orchestrates profile reads and avatar replacement.
type Service struct {
	profiles ProfileStore
	avatars  AvatarStore
	cache    auth.IdentityCache
}

// NewService constructs a new [Service].
//
// avatars may be nil when no bucket is configured; avatar updates then fail
// with 503. cache may be nil.
func NewService(profiles ProfileStore, avatars AvatarStore, cache auth.IdentityCache) *Service {
	return &Service{profiles: profiles, avatars: avatars, cache: cache}
}

/*
UpdateAvatar replaces the avatar of identity with the image read from file.

Description: The image is decoded, center-cropped to a square and resized to
[AvatarSize], then re-encoded as PNG and uploaded under [AvatarKey]. The stored
URL is written back to the identity and the cached snapshot refreshed.

Parameters:
  - context: context.Context
  - identity: *auth.Identity (the authenticated caller)
  - file: io.Reader (raw upload)

Returns:
  - *auth.Identity: Updated profile
  - error: 503 without storage, 400 for undecodable input, or storage failures
*/
func (service *Service) UpdateAvatar(context context.Context, identity *auth.Identity, file io.Reader) (*auth.Identity, error) {
	if service.avatars == nil {
		return nil, apperr.ServiceUnavailable(MsgAvatarUnavailable)
	}

	source, err := imaging.Decode(file, imaging.AutoOrientation(true))
	if err != nil {
		return nil, apperr.BadRequest(MsgInvalidImage).WithCause(err)
	}

	square := imaging.Fill(source, AvatarSize, AvatarSize, imaging.Center, imaging.Lanczos)

	var encoded bytes.Buffer
	if err := imaging.Encode(&encoded, square, imaging.PNG); err != nil {
		return nil, fmt.Errorf("account_service_encode_avatar_failed: %w", err)
	}

	avatarURL, err := service.avatars.Put(context, AvatarKey(identity.ID), encoded.Bytes(), AvatarContentType)
	if err != nil {
		return nil, fmt.Errorf("account_service_upload_avatar_failed: %w", err)
	}

	updated, err := service.profiles.UpdateAvatar(context, identity.Email, avatarURL)
	if err != nil {
		return nil, fmt.Errorf("account_service_update_avatar_failed: %w", err)
	}

	logger := ctxutil.GetLogger(context)
	if service.cache != nil {
		if err := service.cache.Put(context, updated.Email, updated); err != nil {
			logger.WarnContext(context, "identity_cache_put_failed", slog.Any("error", err))
		}
	}

	logger.InfoContext(context, "avatar_updated",
		slog.String("user_id", updated.ID),
		slog.String("avatar", avatarURL),
	)

	return updated.Snapshot(), nil
}
