// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/contactbook/internal/platform/sec"
	"github.com/taibuivan/contactbook/internal/users/auth"
)

func sampleIdentity() *auth.Identity {
	refresh := "refresh-token"
	avatar := auth.GravatarURL("ann@x.com")
	return &auth.Identity{
		ID:           "id-1",
		Username:     "ann",
		Email:        "ann@x.com",
		PasswordHash: "$2a$04$hash",
		Role:         sec.RoleModerator,
		Confirmed:    true,
		RefreshToken: &refresh,
		Avatar:       &avatar,
	}
}

/*
TestRedisIdentityCache stores snapshots without secrets and expires them.
*/
func TestRedisIdentityCache(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cache := auth.NewRedisIdentityCache(client, 0)
	ctx := context.Background()

	_, err := cache.Get(ctx, "ann@x.com")
	assert.ErrorIs(t, err, auth.ErrCacheMiss)

	require.NoError(t, cache.Put(ctx, "ann@x.com", sampleIdentity()))

	raw, err := server.Get("user:ann@x.com")
	require.NoError(t, err)
	assert.NotContains(t, raw, "$2a$04$hash")
	assert.NotContains(t, raw, "refresh-token")
	assert.Equal(t, 900*time.Second, server.TTL("user:ann@x.com"))

	cached, err := cache.Get(ctx, "ann@x.com")
	require.NoError(t, err)
	assert.Equal(t, "id-1", cached.ID)
	assert.Equal(t, sec.RoleModerator, cached.Role)
	assert.True(t, cached.Confirmed)
	assert.Empty(t, cached.PasswordHash)
	assert.Nil(t, cached.RefreshToken)

	server.FastForward(901 * time.Second)
	_, err = cache.Get(ctx, "ann@x.com")
	assert.ErrorIs(t, err, auth.ErrCacheMiss)
}

/*
TestRedisIdentityCache_Unavailable reports connectivity errors, not misses.
*/
func TestRedisIdentityCache_Unavailable(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	server.Close()

	_, err := auth.NewRedisIdentityCache(client, time.Minute).Get(context.Background(), "ann@x.com")
	require.Error(t, err)
	assert.False(t, errors.Is(err, auth.ErrCacheMiss))
}

/*
TestMemoryIdentityCache mirrors the Redis cache contract in-process.
*/
func TestMemoryIdentityCache(t *testing.T) {
	cache := auth.NewMemoryIdentityCache(2, time.Minute)
	ctx := context.Background()

	_, err := cache.Get(ctx, "ann@x.com")
	assert.ErrorIs(t, err, auth.ErrCacheMiss)

	require.NoError(t, cache.Put(ctx, "ann@x.com", sampleIdentity()))

	cached, err := cache.Get(ctx, "ann@x.com")
	require.NoError(t, err)
	assert.Empty(t, cached.PasswordHash)
	assert.Nil(t, cached.RefreshToken)

	// Callers cannot mutate the stored entry.
	cached.Username = "changed"
	again, err := cache.Get(ctx, "ann@x.com")
	require.NoError(t, err)
	assert.Equal(t, "ann", again.Username)

	// Capacity evicts the least recently used entry.
	require.NoError(t, cache.Put(ctx, "b@x.com", sampleIdentity()))
	require.NoError(t, cache.Put(ctx, "c@x.com", sampleIdentity()))
	_, err = cache.Get(ctx, "ann@x.com")
	assert.ErrorIs(t, err, auth.ErrCacheMiss)
}
