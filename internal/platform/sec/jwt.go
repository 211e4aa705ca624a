// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (hashing, JWT signing, role
// definitions) from the domain logic. Its components are constructed once in
// main and injected into the services that need them.
package sec

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taibuivan/contactbook/pkg/uuid"
)

// # Token Scopes

// Scope restricts which operation may consume a token.
type Scope string

const (
	ScopeAccess  Scope = "access_token"
	ScopeRefresh Scope = "refresh_token"
	ScopeEmail   Scope = "email_token"
)

// Validation failures. Callers choose the HTTP response from these; raw jwt
// errors never leave this package.
var (
	ErrMalformed        = errors.New("sec: malformed token")
	ErrInvalidSignature = errors.New("sec: invalid token signature")
	ErrExpired          = errors.New("sec: token expired")
	ErrScopeMismatch    = errors.New("sec: token scope mismatch")
)

// Claims is the payload embedded in every token.
type Claims struct {
	jwt.RegisteredClaims

	Scope Scope `json:"scope"`
}

// TokenConfig carries the secrets and default lifetimes per scope.
type TokenConfig struct {
	// Algorithm is one of HS256, HS384, HS512. Empty means HS256.
	Algorithm string

	AccessSecret  string
	RefreshSecret string
	// EmailSecret may equal AccessSecret for compatibility with existing tokens.
	EmailSecret string

	AccessTTL  time.Duration
	RefreshTTL time.Duration
	EmailTTL   time.Duration

	// Clock overrides time.Now, mainly for tests.
	Clock func() time.Time
}

type scopeKey struct {
	secret []byte
	ttl    time.Duration
}

// TokenService issues and validates HMAC-signed JWTs.
//
// Each scope is signed with its own secret, selected by the scope the token
// declares. A leaked access secret therefore cannot mint refresh tokens.
type TokenService struct {
	method *jwt.SigningMethodHMAC
	keys   map[Scope]scopeKey
	now    func() time.Time
}

// NewTokenService validates cfg and builds a [TokenService].
func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	method, err := hmacMethod(cfg.Algorithm)
	if err != nil {
		return nil, err
	}

	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" || cfg.EmailSecret == "" {
		return nil, fmt.Errorf("sec: token secrets must not be empty")
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, fmt.Errorf("sec: access and refresh secrets must differ")
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	return &TokenService{
		method: method,
		keys: map[Scope]scopeKey{
			ScopeAccess:  {secret: []byte(cfg.AccessSecret), ttl: fallbackTTL(cfg.AccessTTL, 15*time.Minute)},
			ScopeRefresh: {secret: []byte(cfg.RefreshSecret), ttl: fallbackTTL(cfg.RefreshTTL, 7*24*time.Hour)},
			ScopeEmail:   {secret: []byte(cfg.EmailSecret), ttl: fallbackTTL(cfg.EmailTTL, 24*time.Hour)},
		},
		now: clock,
	}, nil
}

// Issue signs a token for subject with the given scope.
//
// A zero ttl selects the scope default. A negative ttl yields a token that is
// already expired.
func (service *TokenService) Issue(scope Scope, subject string, ttl time.Duration) (string, error) {
	key, ok := service.keys[scope]
	if !ok {
		return "", fmt.Errorf("sec: unknown token scope %q", scope)
	}

	if ttl == 0 {
		ttl = key.ttl
	}

	issuedAt := service.now()
	expiresAt := issuedAt.Add(ttl)
	if ttl > 0 {
		// NumericDate has second precision; round up so short lifetimes stay positive.
		expiresAt = ceilSecond(expiresAt)
	}

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Scope: scope,
	}

	signedToken, err := jwt.NewWithClaims(service.method, claims).SignedString(key.secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// Validate verifies signature and expiry, then checks the scope, and returns
// the token subject.
func (service *TokenService) Validate(tokenString string, expected Scope) (string, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(tokenString, claims, service.keyFor,
		jwt.WithValidMethods([]string{service.method.Alg()}),
		jwt.WithTimeFunc(service.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", classify(err)
	}

	if claims.Scope != expected {
		return "", ErrScopeMismatch
	}

	if claims.Subject == "" {
		return "", ErrMalformed
	}

	return claims.Subject, nil
}

// keyFor picks the verification secret from the scope the token declares.
func (service *TokenService) keyFor(token *jwt.Token) (any, error) {
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, ErrMalformed
	}

	key, ok := service.keys[claims.Scope]
	if !ok {
		return nil, ErrInvalidSignature
	}

	return key.secret, nil
}

// classify maps jwt parser errors onto the package error set.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrInvalidSignature
	default:
		return ErrMalformed
	}
}

func hmacMethod(algorithm string) (*jwt.SigningMethodHMAC, error) {
	switch strings.ToUpper(algorithm) {
	case "", "HS256":
		return jwt.SigningMethodHS256, nil
	case "HS384":
		return jwt.SigningMethodHS384, nil
	case "HS512":
		return jwt.SigningMethodHS512, nil
	default:
		return nil, fmt.Errorf("sec: unsupported signing algorithm %q", algorithm)
	}
}

func fallbackTTL(value, fallback time.Duration) time.Duration {
	if value <= 0 {
		return fallback
	}
	return value
}

func ceilSecond(t time.Time) time.Time {
	truncated := t.Truncate(time.Second)
	if truncated.Equal(t) {
		return t
	}
	return truncated.Add(time.Second)
}
