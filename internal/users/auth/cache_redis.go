// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/contactbook/internal/platform/constants"
)

// RedisIdentityCache implements [IdentityCache] on Redis.
type RedisIdentityCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisIdentityCache creates a Redis-backed cache. A non-positive ttl selects
// [constants.IdentityCacheTTL].
func NewRedisIdentityCache(client redis.UniversalClient, ttl time.Duration) *RedisIdentityCache {
	if ttl <= 0 {
		ttl = constants.IdentityCacheTTL
	}
	return &RedisIdentityCache{client: client, ttl: ttl}
}

func identityKey(email string) string {
	return constants.RedisPrefixUser + email
}

/*
Get retrieves the cached identity snapshot for email.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *Identity: Cached snapshot
  - error: ErrCacheMiss, or connectivity and decoding errors
*/
func (cache *RedisIdentityCache) Get(context context.Context, email string) (*Identity, error) {
	payload, err := cache.client.Get(context, identityKey(email)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("redis_identity_cache_get_failed: %w", err)
	}

	identity := &Identity{}
	if err := json.Unmarshal(payload, identity); err != nil {
		return nil, fmt.Errorf("redis_identity_cache_decode_failed: %w", err)
	}
	return identity, nil
}

/*
Put writes a snapshot of identity with the cache TTL in a single SET ... EX.

Parameters:
  - context: context.Context
  - email: string
  - identity: *Identity

Returns:
  - error: Encoding or connectivity errors
*/
func (cache *RedisIdentityCache) Put(context context.Context, email string, identity *Identity) error {
	payload, err := json.Marshal(identity.Snapshot())
	if err != nil {
		return fmt.Errorf("redis_identity_cache_encode_failed: %w", err)
	}

	if err := cache.client.Set(context, identityKey(email), payload, cache.ttl).Err(); err != nil {
		return fmt.Errorf("redis_identity_cache_set_failed: %w", err)
	}
	return nil
}
