// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
)

// ErrCacheMiss is returned when no live entry exists for an email.
var ErrCacheMiss = errors.New("auth: identity cache miss")

// IdentityCache holds short-lived identity snapshots keyed by email.
//
// Entries are not invalidated on writes to the store; a cached identity may be
// stale for up to the cache TTL.
type IdentityCache interface {
	// Get returns the cached snapshot or ErrCacheMiss.
	Get(context context.Context, email string) (*Identity, error)

	// Put stores a snapshot of identity and resets its TTL.
	Put(context context.Context, email string, identity *Identity) error
}
