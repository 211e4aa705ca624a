// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/taibuivan/contactbook/internal/platform/constants"
)

// MemoryIdentityCache implements [IdentityCache] with an in-process expirable LRU.
// It suits single-instance deployments and tests.
type MemoryIdentityCache struct {
	entries *expirable.LRU[string, *Identity]
}

// NewMemoryIdentityCache creates a cache holding up to size entries for ttl each.
func NewMemoryIdentityCache(size int, ttl time.Duration) *MemoryIdentityCache {
	if size <= 0 {
		size = constants.IdentityCacheSize
	}
	if ttl <= 0 {
		ttl = constants.IdentityCacheTTL
	}
	return &MemoryIdentityCache{entries: expirable.NewLRU[string, *Identity](size, nil, ttl)}
}

// Get implements [IdentityCache].
func (cache *MemoryIdentityCache) Get(_ context.Context, email string) (*Identity, error) {
	identity, ok := cache.entries.Get(email)
	if !ok {
		return nil, ErrCacheMiss
	}
	return identity.Snapshot(), nil
}

// Put implements [IdentityCache]. Re-adding a key resets its TTL.
func (cache *MemoryIdentityCache) Put(_ context.Context, email string, identity *Identity) error {
	cache.entries.Add(email, identity.Snapshot())
	return nil
}
