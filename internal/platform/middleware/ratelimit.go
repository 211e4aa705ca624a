// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/taibuivan/contactbook/internal/platform/apperr"
	"github.com/taibuivan/contactbook/internal/platform/constants"
	"github.com/taibuivan/contactbook/internal/platform/respond"
)

// # Rate Limiting

type rateLimitClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter tracks token buckets per client and named policy.
//
// Each route attaches its own budget through [RateLimiter.Limit]; buckets of
// different routes never share tokens.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*rateLimitClient
	now     func() time.Time
}

// NewRateLimiter creates an empty limiter. Call [RateLimiter.Run] to sweep idle clients.
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		clients: make(map[string]*rateLimitClient),
		now:     time.Now,
	}
}

// Run deletes idle client entries until ctx is cancelled.
func (limiter *RateLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(constants.RateLimitCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			limiter.sweep(constants.RateLimitClientTTL)
		case <-ctx.Done():
			return
		}
	}
}

func (limiter *RateLimiter) sweep(idle time.Duration) {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	now := limiter.now()
	for key, client := range limiter.clients {
		if now.Sub(client.lastSeen) > idle {
			delete(limiter.clients, key)
		}
	}
}

// Limit allows requests per window for each client IP on the named policy.
// Rejected requests receive 429 with a Retry-After header.
func (limiter *RateLimiter) Limit(name string, requests int, per time.Duration) func(http.Handler) http.Handler {
	if requests < 1 || per <= 0 {
		panic("middleware: rate limit needs a positive budget and window")
	}
	every := rate.Every(per / time.Duration(requests))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			key := name + "|" + RealIP(request)

			limiter.mu.Lock()
			client, found := limiter.clients[key]
			if !found {
				client = &rateLimitClient{limiter: rate.NewLimiter(every, requests)}
				limiter.clients[key] = client
			}
			now := limiter.now()
			client.lastSeen = now
			reservation := client.limiter.ReserveN(now, 1)
			delay := reservation.DelayFrom(now)
			if delay > 0 {
				reservation.CancelAt(now)
			}
			limiter.mu.Unlock()

			if delay > 0 {
				retryAfter := int(math.Ceil(delay.Seconds()))
				writer.Header().Set(constants.HeaderRetryAfter, strconv.Itoa(retryAfter))
				respond.Error(writer, request, apperr.RateLimited(retryAfter))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// PerMinute is shorthand for Limit(name, requests, time.Minute).
func (limiter *RateLimiter) PerMinute(name string, requests int) func(http.Handler) http.Handler {
	return limiter.Limit(name, requests, time.Minute)
}
