// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package mailer delivers transactional email.

# Architecture

Request handlers never talk to a mail provider directly. They build a
[Message] and hand it to a [Queue], which returns immediately. A fixed pool of
workers drains the queue and calls the configured [Sender]; providers are
wrapped in a circuit breaker so a failing upstream is not hammered.

Supported providers: mailgun, sendgrid, and a log-only sender for development.
*/
package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrInvalidMessage marks messages no provider could deliver.
var ErrInvalidMessage = errors.New("mailer: invalid message")

// Message is a single outbound email.
type Message struct {
	To      string
	ToName  string
	Subject string
	Text    string
	HTML    string
}

// Validate reports whether the message can be handed to a provider.
func (m Message) Validate() error {
	if m.To == "" {
		return fmt.Errorf("%w: no recipient", ErrInvalidMessage)
	}
	if m.Subject == "" {
		return fmt.Errorf("%w: message to %s has no subject", ErrInvalidMessage, m.To)
	}
	return nil
}

// Sender delivers one message synchronously.
type Sender interface {
	Send(ctx context.Context, message Message) error
	Name() string
}

// Address is the From identity used by every provider.
type Address struct {
	Email string
	Name  string
}

// # Log Sender

// LogSender writes messages to the logger instead of delivering them.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a development sender.
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Name implements [Sender].
func (s *LogSender) Name() string { return "log" }

// Send implements [Sender].
func (s *LogSender) Send(ctx context.Context, message Message) error {
	if err := message.Validate(); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "mail_logged",
		slog.String("to", message.To),
		slog.String("subject", message.Subject),
		slog.String("text", message.Text),
	)
	return nil
}
