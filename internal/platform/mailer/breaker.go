// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package mailer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerSettings tunes [BreakerSender].
type BreakerSettings struct {
	// ConsecutiveFailures opens the breaker.
	ConsecutiveFailures uint32
	// Cooldown is how long the breaker stays open before probing again.
	Cooldown time.Duration
}

// DefaultBreakerSettings trips after 5 consecutive failures and probes again after 30s.
var DefaultBreakerSettings = BreakerSettings{ConsecutiveFailures: 5, Cooldown: 30 * time.Second}

// BreakerSender guards another [Sender] with a circuit breaker.
//
// While the breaker is open, Send fails fast with gobreaker.ErrOpenState.
type BreakerSender struct {
	next    Sender
	breaker *gobreaker.CircuitBreaker
}

// NewBreakerSender wraps next.
func NewBreakerSender(next Sender, settings BreakerSettings, logger *slog.Logger) *BreakerSender {
	if settings.ConsecutiveFailures == 0 {
		settings.ConsecutiveFailures = DefaultBreakerSettings.ConsecutiveFailures
	}
	if settings.Cooldown <= 0 {
		settings.Cooldown = DefaultBreakerSettings.Cooldown
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "mail_" + next.Name(),
		MaxRequests: 1,
		Timeout:     settings.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.ConsecutiveFailures
		},
		IsSuccessful: func(err error) bool {
			// Invalid messages say nothing about provider health.
			return err == nil || errors.Is(err, ErrInvalidMessage)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("mail_breaker_state_changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})

	return &BreakerSender{next: next, breaker: breaker}
}

// Name implements [Sender].
func (s *BreakerSender) Name() string { return s.next.Name() }

// Send implements [Sender].
func (s *BreakerSender) Send(ctx context.Context, message Message) error {
	_, err := s.breaker.Execute(func() (interface{}, error) {
		return nil, s.next.Send(ctx, message)
	})
	return err
}

// State reports the breaker state, mainly for readiness output and tests.
func (s *BreakerSender) State() gobreaker.State {
	return s.breaker.State()
}
