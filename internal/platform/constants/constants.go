// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values shared across layers.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Per-route request budgets and client tracking TTLs.
  - HTTP Headers: Header names read or written by middleware.
  - Cache Keys: Redis key prefixes.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "contactbook-api"
	AppVersion = "0.1.0"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 10 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 15 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// SignupPerMinute bounds account creation per client.
	SignupPerMinute = 3

	// ReadsPerMinute bounds contact reads per client and route.
	ReadsPerMinute = 10

	// CreatesPerMinute bounds contact creation per client.
	CreatesPerMinute = 4

	// RateLimitCleanupInterval is how often idle client entries are swept.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # HTTP Headers

const (
	HeaderXRequestID      = "X-Request-ID"
	HeaderOrigin          = "Origin"
	HeaderAuthorization   = "Authorization"
	HeaderWWWAuthenticate = "WWW-Authenticate"
	HeaderRetryAfter      = "Retry-After"
	HeaderProcessTime     = "X-Process-Time"
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldMeta    = "meta"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldMessage = "message"
	FieldStatus  = "status"
	FieldChecks  = "checks"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	// RedisPrefixUser keys cached identities by email.
	RedisPrefixUser = "user:"
)

// # Identity Cache

const (
	// IdentityCacheTTL is the lifetime of a cached identity.
	IdentityCacheTTL = 900 * time.Second

	// IdentityCacheSize bounds the in-memory identity cache.
	IdentityCacheSize = 10_000
)
