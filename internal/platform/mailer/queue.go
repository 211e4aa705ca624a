// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package mailer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/taibuivan/contactbook/internal/platform/metrics"
)

// sendTimeout bounds a delivery attempt made by a worker.
const sendTimeout = 45 * time.Second

// Queue buffers messages for a pool of delivery workers.
type Queue struct {
	sender  Sender
	jobs    chan Message
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewQueue creates a queue holding at most size pending messages.
func NewQueue(sender Sender, size int, logger *slog.Logger, m *metrics.Metrics) *Queue {
	if size < 1 {
		size = 1
	}
	return &Queue{
		sender:  sender,
		jobs:    make(chan Message, size),
		logger:  logger,
		metrics: m,
	}
}

// Enqueue schedules message for delivery without blocking.
//
// It reports false when the queue is full; the message is dropped.
func (q *Queue) Enqueue(message Message) bool {
	select {
	case q.jobs <- message:
		return true
	default:
		q.logger.Warn("mail_dropped_queue_full",
			slog.String("to", message.To),
			slog.String("subject", message.Subject),
		)
		q.metrics.MailDelivery(q.sender.Name(), metrics.MailDropped)
		return false
	}
}

// Pending returns the number of queued messages.
func (q *Queue) Pending() int {
	return len(q.jobs)
}

// Run starts workers and blocks until ctx is cancelled and every worker has
// returned. It always returns nil so it can be used directly in an errgroup.
func (q *Queue) Run(ctx context.Context, workers int) error {
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			q.work(ctx, id)
		}(i)
	}

	q.logger.Info("mail_workers_started", slog.Int("workers", workers), slog.String("provider", q.sender.Name()))
	wg.Wait()
	q.logger.Info("mail_workers_stopped", slog.Int("pending", q.Pending()))
	return nil
}

func (q *Queue) work(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			return
		case message := <-q.jobs:
			q.deliver(ctx, id, message)
		}
	}
}

func (q *Queue) deliver(ctx context.Context, worker int, message Message) {
	// Deliveries already taken off the queue finish even during shutdown.
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sendTimeout)
	defer cancel()

	if err := q.sender.Send(sendCtx, message); err != nil {
		q.logger.Error("mail_delivery_failed",
			slog.Int("worker", worker),
			slog.String("to", message.To),
			slog.String("subject", message.Subject),
			slog.Any("error", err),
		)
		q.metrics.MailDelivery(q.sender.Name(), metrics.MailFailed)
		return
	}

	q.logger.Debug("mail_delivered",
		slog.Int("worker", worker),
		slog.String("to", message.To),
	)
	q.metrics.MailDelivery(q.sender.Name(), metrics.MailSent)
}
