// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package mailer_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/contactbook/internal/platform/mailer"
	"github.com/taibuivan/contactbook/internal/platform/metrics"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type recordingSender struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (s *recordingSender) Name() string { return "recording" }

func (s *recordingSender) Send(_ context.Context, message mailer.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, message)
	return nil
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

/*
TestQueue_DeliversInBackground hands enqueued messages to the sender.
*/
func TestQueue_DeliversInBackground(t *testing.T) {
	sender := &recordingSender{}
	queue := mailer.NewQueue(sender, 8, discard, metrics.New())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- queue.Run(ctx, 2) }()

	for i := 0; i < 3; i++ {
		require.True(t, queue.Enqueue(mailer.Message{To: "a@x.com", Subject: "hi"}))
	}

	assert.Eventually(t, func() bool { return sender.count() == 3 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("workers did not stop")
	}
}

/*
TestQueue_EnqueueNeverBlocks drops messages once the buffer is full.
*/
func TestQueue_EnqueueNeverBlocks(t *testing.T) {
	sender := &recordingSender{}
	m := metrics.New()
	queue := mailer.NewQueue(sender, 2, discard, m)

	// No workers are running, so the buffer fills up.
	assert.True(t, queue.Enqueue(mailer.Message{To: "a@x.com", Subject: "1"}))
	assert.True(t, queue.Enqueue(mailer.Message{To: "a@x.com", Subject: "2"}))

	start := time.Now()
	assert.False(t, queue.Enqueue(mailer.Message{To: "a@x.com", Subject: "3"}))
	assert.Less(t, time.Since(start), 100*time.Millisecond)
	assert.Equal(t, 2, queue.Pending())
}

/*
TestBreakerSender_OpensAfterFailures fails fast once the provider keeps erroring.
*/
func TestBreakerSender_OpensAfterFailures(t *testing.T) {
	sender := &recordingSender{err: errors.New("upstream down")}
	breaker := mailer.NewBreakerSender(sender, mailer.BreakerSettings{ConsecutiveFailures: 2, Cooldown: time.Minute}, discard)

	message := mailer.Message{To: "a@x.com", Subject: "hi"}
	require.Error(t, breaker.Send(context.Background(), message))
	require.Error(t, breaker.Send(context.Background(), message))
	assert.Equal(t, gobreaker.StateOpen, breaker.State())

	err := breaker.Send(context.Background(), message)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}

/*
TestBreakerSender_InvalidMessagesDoNotTrip keeps the breaker closed for bad input.
*/
func TestBreakerSender_InvalidMessagesDoNotTrip(t *testing.T) {
	breaker := mailer.NewBreakerSender(mailer.NewLogSender(discard), mailer.BreakerSettings{ConsecutiveFailures: 1}, discard)

	for i := 0; i < 3; i++ {
		err := breaker.Send(context.Background(), mailer.Message{Subject: "no recipient"})
		assert.ErrorIs(t, err, mailer.ErrInvalidMessage)
	}
	assert.Equal(t, gobreaker.StateClosed, breaker.State())
}

/*
TestConfirmationEmail embeds the link and escapes the username in HTML.
*/
func TestConfirmationEmail(t *testing.T) {
	message, err := mailer.ConfirmationEmail("ann@x.com", "<Ann>", "http://localhost:8000/api/auth/confirmed_email/tok")
	require.NoError(t, err)

	assert.Equal(t, "ann@x.com", message.To)
	assert.Equal(t, "Confirm your email", message.Subject)
	assert.Contains(t, message.Text, "http://localhost:8000/api/auth/confirmed_email/tok")
	assert.Contains(t, message.HTML, `href="http://localhost:8000/api/auth/confirmed_email/tok"`)
	assert.Contains(t, message.HTML, "&lt;Ann&gt;")
	assert.NoError(t, message.Validate())
}
