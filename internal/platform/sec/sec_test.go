// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taibuivan/contactbook/internal/platform/sec"
)

func newTokenService(t *testing.T) *sec.TokenService {
	t.Helper()
	service, err := sec.NewTokenService(sec.TokenConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		EmailSecret:   "email-secret",
	})
	require.NoError(t, err)
	return service
}

/*
TestHasher_RoundTrip verifies hash/verify agreement and mismatch rejection.
*/
func TestHasher_RoundTrip(t *testing.T) {
	hasher := sec.NewHasher(bcrypt.MinCost)

	for _, password := range []string{"123456", "pässwörd", "exactly12chr"} {
		hash, err := hasher.Hash(password)
		require.NoError(t, err)
		assert.NotEqual(t, password, hash)

		assert.True(t, hasher.Verify(password, hash))
		assert.False(t, hasher.Verify(password+"x", hash))
	}

	// Malformed hashes never verify.
	assert.False(t, hasher.Verify("123456", "not-a-bcrypt-hash"))
	assert.False(t, hasher.Verify("123456", ""))
}

/*
TestTokenService_RoundTrip checks that every scope validates against itself.
*/
func TestTokenService_RoundTrip(t *testing.T) {
	service := newTokenService(t)

	for _, scope := range []sec.Scope{sec.ScopeAccess, sec.ScopeRefresh, sec.ScopeEmail} {
		for _, ttl := range []time.Duration{0, time.Second, time.Hour} {
			token, err := service.Issue(scope, "alice@x.com", ttl)
			require.NoError(t, err)

			subject, err := service.Validate(token, scope)
			require.NoError(t, err, "scope=%s ttl=%s", scope, ttl)
			assert.Equal(t, "alice@x.com", subject)
		}
	}
}

/*
TestTokenService_UniquePerIssue gives tokens issued within the same second distinct ids.
*/
func TestTokenService_UniquePerIssue(t *testing.T) {
	frozen := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	service, err := sec.NewTokenService(sec.TokenConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		EmailSecret:   "email-secret",
		Clock:         func() time.Time { return frozen },
	})
	require.NoError(t, err)

	first, err := service.Issue(sec.ScopeRefresh, "alice@x.com", 0)
	require.NoError(t, err)
	second, err := service.Issue(sec.ScopeRefresh, "alice@x.com", 0)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	claims := &sec.Claims{}
	_, _, err = jwt.NewParser().ParseUnverified(first, claims)
	require.NoError(t, err)
	assert.NotEmpty(t, claims.ID)
}

/*
TestTokenService_ScopeMismatch ensures tokens are only accepted for their own scope.
*/
func TestTokenService_ScopeMismatch(t *testing.T) {
	service := newTokenService(t)

	tests := []struct {
		issued   sec.Scope
		expected sec.Scope
	}{
		{sec.ScopeRefresh, sec.ScopeAccess},
		{sec.ScopeAccess, sec.ScopeRefresh},
		{sec.ScopeEmail, sec.ScopeAccess},
		{sec.ScopeAccess, sec.ScopeEmail},
	}

	for _, tt := range tests {
		t.Run(string(tt.issued)+"_as_"+string(tt.expected), func(t *testing.T) {
			token, err := service.Issue(tt.issued, "alice@x.com", 0)
			require.NoError(t, err)

			_, err = service.Validate(token, tt.expected)
			assert.ErrorIs(t, err, sec.ErrScopeMismatch)
		})
	}
}

/*
TestTokenService_Expired checks that negative lifetimes are always rejected as expired.
*/
func TestTokenService_Expired(t *testing.T) {
	service := newTokenService(t)

	for _, ttl := range []time.Duration{-1, -time.Second, -time.Hour} {
		token, err := service.Issue(sec.ScopeAccess, "alice@x.com", ttl)
		require.NoError(t, err)

		_, err = service.Validate(token, sec.ScopeAccess)
		assert.ErrorIs(t, err, sec.ErrExpired)
	}
}

/*
TestTokenService_ExpiresWithClock moves a fake clock past the default lifetime.
*/
func TestTokenService_ExpiresWithClock(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	service, err := sec.NewTokenService(sec.TokenConfig{
		AccessSecret:  "a",
		RefreshSecret: "r",
		EmailSecret:   "a",
		Clock:         func() time.Time { return now },
	})
	require.NoError(t, err)

	token, err := service.Issue(sec.ScopeAccess, "alice@x.com", 0)
	require.NoError(t, err)

	now = now.Add(14 * time.Minute)
	_, err = service.Validate(token, sec.ScopeAccess)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = service.Validate(token, sec.ScopeAccess)
	assert.ErrorIs(t, err, sec.ErrExpired)
}

/*
TestTokenService_SignatureFailures covers foreign keys, tampering and garbage input.
*/
func TestTokenService_SignatureFailures(t *testing.T) {
	service := newTokenService(t)

	foreign, err := sec.NewTokenService(sec.TokenConfig{
		AccessSecret:  "other-access",
		RefreshSecret: "other-refresh",
		EmailSecret:   "other-email",
	})
	require.NoError(t, err)

	forged, err := foreign.Issue(sec.ScopeAccess, "alice@x.com", 0)
	require.NoError(t, err)

	_, err = service.Validate(forged, sec.ScopeAccess)
	assert.ErrorIs(t, err, sec.ErrInvalidSignature)

	// A token claiming the refresh scope but signed with the access secret is rejected.
	claims := sec.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice@x.com",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Scope: sec.ScopeRefresh,
	}
	crossSigned, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("access-secret"))
	require.NoError(t, err)

	_, err = service.Validate(crossSigned, sec.ScopeRefresh)
	assert.ErrorIs(t, err, sec.ErrInvalidSignature)

	// Tampered payload.
	valid, err := service.Issue(sec.ScopeAccess, "alice@x.com", 0)
	require.NoError(t, err)
	parts := strings.Split(valid, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]
	_, err = service.Validate(tampered, sec.ScopeAccess)
	assert.Error(t, err)

	_, err = service.Validate("not-a-jwt", sec.ScopeAccess)
	assert.ErrorIs(t, err, sec.ErrMalformed)
}

/*
TestNewTokenService_Rejections refuses shared or missing secrets.
*/
func TestNewTokenService_Rejections(t *testing.T) {
	_, err := sec.NewTokenService(sec.TokenConfig{AccessSecret: "s", RefreshSecret: "s", EmailSecret: "s"})
	assert.Error(t, err)

	_, err = sec.NewTokenService(sec.TokenConfig{AccessSecret: "a", RefreshSecret: "r"})
	assert.Error(t, err)

	_, err = sec.NewTokenService(sec.TokenConfig{AccessSecret: "a", RefreshSecret: "r", EmailSecret: "e", Algorithm: "RS256"})
	assert.Error(t, err)
}

/*
TestRoleSet checks closed-enum parsing and allow-list membership.
*/
func TestRoleSet(t *testing.T) {
	moderation := sec.NewRoleSet(sec.RoleAdmin, sec.RoleModerator)

	assert.True(t, moderation.Contains(sec.RoleAdmin))
	assert.True(t, moderation.Contains(sec.RoleModerator))
	assert.False(t, moderation.Contains(sec.RoleUser))
	assert.False(t, moderation.Contains(sec.Role("superuser")))
	assert.Equal(t, []sec.Role{sec.RoleAdmin, sec.RoleModerator}, moderation.Roles())

	role, err := sec.ParseRole(" Moderator ")
	require.NoError(t, err)
	assert.Equal(t, sec.RoleModerator, role)

	_, err = sec.ParseRole("root")
	assert.Error(t, err)

	assert.Panics(t, func() { sec.NewRoleSet(sec.Role("root")) })
}
