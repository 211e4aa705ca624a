// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taibuivan/contactbook/internal/platform/dberr"
	"github.com/taibuivan/contactbook/internal/platform/mailer"
	"github.com/taibuivan/contactbook/internal/platform/sec"
	"github.com/taibuivan/contactbook/internal/users/auth"
)

// # In-memory identity store

type memoryStore struct {
	mu         sync.Mutex
	identities map[string]*auth.Identity
	lookups    int
	failWith   error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{identities: make(map[string]*auth.Identity)}
}

func (s *memoryStore) FindByEmail(_ context.Context, email string) (*auth.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookups++
	if s.failWith != nil {
		return nil, s.failWith
	}
	identity, ok := s.identities[email]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	clone := *identity
	return &clone, nil
}

func (s *memoryStore) Create(_ context.Context, identity *auth.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.identities[identity.Email]; ok {
		return dberr.ErrDuplicate
	}
	identity.CreatedAt = time.Now()
	identity.UpdatedAt = identity.CreatedAt
	clone := *identity
	s.identities[identity.Email] = &clone
	return nil
}

func (s *memoryStore) byID(id string) *auth.Identity {
	for _, identity := range s.identities {
		if identity.ID == id {
			return identity
		}
	}
	return nil
}

func (s *memoryStore) UpdateRefreshToken(_ context.Context, identityID string, token *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	identity := s.byID(identityID)
	if identity == nil {
		return dberr.ErrNotFound
	}
	identity.RefreshToken = token
	return nil
}

func (s *memoryStore) ConfirmEmail(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	identity, ok := s.identities[email]
	if !ok {
		return dberr.ErrNotFound
	}
	identity.Confirmed = true
	return nil
}

func (s *memoryStore) UpdatePassword(_ context.Context, identityID, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	identity := s.byID(identityID)
	if identity == nil {
		return dberr.ErrNotFound
	}
	identity.PasswordHash = passwordHash
	return nil
}

func (s *memoryStore) UpdateAvatar(_ context.Context, email, avatarURL string) (*auth.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	identity, ok := s.identities[email]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	identity.Avatar = &avatarURL
	clone := *identity
	return &clone, nil
}

func (s *memoryStore) UpdateRole(_ context.Context, email string, role sec.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	identity, ok := s.identities[email]
	if !ok {
		return dberr.ErrNotFound
	}
	identity.Role = role
	return nil
}

func (s *memoryStore) get(email string) *auth.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	identity, ok := s.identities[email]
	if !ok {
		return nil
	}
	clone := *identity
	return &clone
}

func (s *memoryStore) lookupCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookups
}

// # Mail capture

type capturedMail struct {
	mu       sync.Mutex
	messages []mailer.Message
}

func (c *capturedMail) Enqueue(message mailer.Message) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, message)
	return true
}

// lastToken extracts the email token from the newest confirmation link.
func (c *capturedMail) lastToken(t *testing.T) string {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	require.NotEmpty(t, c.messages, "no mail captured")

	text := c.messages[len(c.messages)-1].Text
	const marker = "/api/auth/confirmed_email/"
	index := strings.Index(text, marker)
	require.GreaterOrEqual(t, index, 0)

	token := text[index+len(marker):]
	if end := strings.IndexAny(token, "\n \t"); end >= 0 {
		token = token[:end]
	}
	return token
}

func (c *capturedMail) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

// # Clock and token service

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTokens(t *testing.T, clock *testClock) *sec.TokenService {
	t.Helper()
	tokens, err := sec.NewTokenService(sec.TokenConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		EmailSecret:   "access-secret",
		Clock:         clock.Now,
	})
	require.NoError(t, err)
	return tokens
}

// # Failing cache

type brokenCache struct{}

func (brokenCache) Get(context.Context, string) (*auth.Identity, error) {
	return nil, errors.New("connection refused")
}

func (brokenCache) Put(context.Context, string, *auth.Identity) error {
	return errors.New("connection refused")
}

// seedIdentity stores a confirmed identity with the given password.
func seedIdentity(t *testing.T, store *memoryStore, email, password string, role sec.Role) *auth.Identity {
	t.Helper()
	hash, err := sec.NewHasher(bcrypt.MinCost).Hash(password)
	require.NoError(t, err)

	identity := &auth.Identity{
		ID:           "id-" + email,
		Username:     "user",
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Confirmed:    true,
	}
	require.NoError(t, store.Create(context.Background(), identity))
	return identity
}
