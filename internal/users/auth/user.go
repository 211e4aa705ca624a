// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements the user identity and session management layer.

It defines the Identity entity and the flows around it: signup, login, token
refresh, email confirmation and password reset. It also owns the components
that turn a bearer token into an authenticated Identity (the resolver, its
cache) and the role gate that protects routes.

# Architecture

  - Store: Postgres-backed persistence of identities.
  - Cache: Redis (or in-process LRU) snapshot of identities keyed by email.
  - Resolver: Bearer token to Identity, cache first.
  - Service: Orchestrates the authentication flows.
  - Handler: HTTP transport under /api/auth.
*/
package auth

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"time"

	"github.com/taibuivan/contactbook/internal/platform/sec"
)

// # Domain Entities

// Identity is a registered account.
type Identity struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Explicitly omitted from JSON for security.
	Role         sec.Role  `json:"role"`
	Confirmed    bool      `json:"confirmed"`
	RefreshToken *string   `json:"-"`
	Avatar       *string   `json:"avatar"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Snapshot returns a copy without the password hash and refresh token.
// Only snapshots are written to the identity cache.
func (identity *Identity) Snapshot() *Identity {
	clone := *identity
	clone.PasswordHash = ""
	clone.RefreshToken = nil
	if identity.Avatar != nil {
		avatar := *identity.Avatar
		clone.Avatar = &avatar
	}
	return &clone
}

// TokenPair is returned by login and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// GravatarURL derives the default avatar of an email address.
func GravatarURL(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return "https://www.gravatar.com/avatar/" + hex.EncodeToString(sum[:]) + "?d=identicon"
}

// # Field Identifiers

// Field names used in validation errors and request payloads.
const (
	FieldUsername        = "username"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldNewPassword     = "new_password"
	FieldConfirmPassword = "confirm_password"
	FieldToken           = "token"
)
