// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/taibuivan/contactbook/internal/platform/apperr"
	"github.com/taibuivan/contactbook/internal/platform/ctxutil"
	requestutil "github.com/taibuivan/contactbook/internal/platform/request"
	"github.com/taibuivan/contactbook/internal/platform/respond"
	"github.com/taibuivan/contactbook/internal/platform/sec"
)

// MsgNotAuthenticated is returned when no bearer token is presented at all.
const MsgNotAuthenticated = "Not authenticated"

// # Context Accessors

// WithIdentity attaches the authenticated identity to ctx.
func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return ctxutil.WithIdentity(ctx, identity)
}

// IdentityFrom returns the identity attached by [Resolver.Middleware], or nil.
func IdentityFrom(ctx context.Context) *Identity {
	identity, _ := ctxutil.Identity(ctx).(*Identity)
	return identity
}

// RequiredIdentity returns the authenticated identity or a 401.
func RequiredIdentity(request *http.Request) (*Identity, error) {
	identity := IdentityFrom(request.Context())
	if identity == nil {
		return nil, apperr.Unauthorized(MsgNotAuthenticated)
	}
	return identity, nil
}

// # Authentication

/*
Middleware requires an access token and stores the resolved identity in the
request context.

Flow:
 1. Read "Authorization: Bearer <token>"; absent means 401.
 2. Resolve the token through the cache and store.
 3. Enrich the request logger with the identity and continue.
*/
func (resolver *Resolver) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			token, ok := requestutil.BearerToken(request)
			if !ok {
				respond.Error(writer, request, apperr.Unauthorized(MsgNotAuthenticated))
				return
			}

			identity, err := resolver.Resolve(request.Context(), token)
			if err != nil {
				respond.Error(writer, request, err)
				return
			}

			logger := ctxutil.GetLogger(request.Context()).With(
				slog.String("user_id", identity.ID),
				slog.String("role", identity.Role.String()),
			)

			ctx := WithIdentity(request.Context(), identity)
			ctx = ctxutil.WithLogger(ctx, logger)

			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// # Authorization

// RoleGate admits identities whose role is in a fixed allow-list.
type RoleGate struct {
	allowed sec.RoleSet
}

// NewRoleGate builds a gate. It panics on unknown roles.
func NewRoleGate(roles ...sec.Role) RoleGate {
	return RoleGate{allowed: sec.NewRoleSet(roles...)}
}

// Check returns 403 "Operation forbidden" unless identity's role is allowed.
func (gate RoleGate) Check(identity *Identity) error {
	if identity == nil || !gate.allowed.Contains(identity.Role) {
		return apperr.Forbidden(MsgOperationForbidden)
	}
	return nil
}

// Middleware enforces the gate on routes already behind [Resolver.Middleware].
func (gate RoleGate) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			identity, err := RequiredIdentity(request)
			if err != nil {
				respond.Error(writer, request, err)
				return
			}

			ctxutil.GetLogger(request.Context()).DebugContext(request.Context(), "role_gate_check",
				slog.String("method", request.Method),
				slog.String("url", request.URL.String()),
				slog.String("role", identity.Role.String()),
				slog.Any("allowed", gate.allowed.Roles()),
			)

			if err := gate.Check(identity); err != nil {
				respond.Error(writer, request, err)
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// RequireRoles is shorthand for NewRoleGate(roles...).Middleware().
func RequireRoles(roles ...sec.Role) func(http.Handler) http.Handler {
	return NewRoleGate(roles...).Middleware()
}
