// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/taibuivan/contactbook/internal/platform/apperr"
	"github.com/taibuivan/contactbook/internal/platform/ctxutil"
	"github.com/taibuivan/contactbook/internal/platform/dberr"
	"github.com/taibuivan/contactbook/internal/platform/metrics"
	"github.com/taibuivan/contactbook/internal/platform/sec"
)

// TokenValidator is the part of the token service the resolver needs.
type TokenValidator interface {
	Validate(token string, expected sec.Scope) (string, error)
}

// Resolver turns an access token into the current [Identity].
type Resolver struct {
	tokens  TokenValidator
	store   IdentityStore
	cache   IdentityCache
	metrics *metrics.Metrics
}

// NewResolver wires a resolver. cache may be nil to always hit the store.
func NewResolver(tokens TokenValidator, store IdentityStore, cache IdentityCache, m *metrics.Metrics) *Resolver {
	return &Resolver{tokens: tokens, store: store, cache: cache, metrics: m}
}

// errUnauthenticated is the single failure every resolution problem maps to.
func errUnauthenticated(cause error) error {
	return apperr.Unauthorized(MsgCouldNotValidate).WithCause(cause)
}

/*
Resolve validates token as an access token and loads its identity.

Description: The cache is consulted first; on a miss (or a cache failure,
which is logged) the store is queried and the cache repopulated. Every
failure yields the same 401 "Could not validate credentials".

Parameters:
  - context: context.Context
  - token: string (bearer token without the scheme)

Returns:
  - *Identity: The authenticated identity
  - error: 401 AppError on any failure, or internal store errors
*/
func (resolver *Resolver) Resolve(context context.Context, token string) (*Identity, error) {
	logger := ctxutil.GetLogger(context)

	email, err := resolver.tokens.Validate(token, sec.ScopeAccess)
	if err != nil {
		logger.DebugContext(context, "access_token_rejected", slog.String("reason", err.Error()))
		return nil, errUnauthenticated(err)
	}

	if identity := resolver.fromCache(context, email); identity != nil {
		return identity, nil
	}

	identity, err := resolver.store.FindByEmail(context, email)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			logger.DebugContext(context, "access_token_unknown_subject", slog.String("email", email))
			return nil, errUnauthenticated(err)
		}
		return nil, err
	}

	if resolver.cache != nil {
		if err := resolver.cache.Put(context, email, identity); err != nil {
			logger.WarnContext(context, "identity_cache_put_failed", slog.Any("error", err))
		}
	}

	return identity.Snapshot(), nil
}

func (resolver *Resolver) fromCache(context context.Context, email string) *Identity {
	if resolver.cache == nil {
		return nil
	}

	identity, err := resolver.cache.Get(context, email)
	switch {
	case err == nil:
		resolver.metrics.CacheLookup(metrics.CacheHit)
		return identity
	case errors.Is(err, ErrCacheMiss):
		resolver.metrics.CacheLookup(metrics.CacheMiss)
	default:
		resolver.metrics.CacheLookup(metrics.CacheError)
		ctxutil.GetLogger(context).WarnContext(context, "identity_cache_get_failed", slog.Any("error", err))
	}
	return nil
}
