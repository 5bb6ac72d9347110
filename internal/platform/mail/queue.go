// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package mail

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// sendTimeout bounds a single delivery attempt.
const sendTimeout = 30 * time.Second

// Queue is a bounded, fire-and-forget delivery queue drained by a worker pool.
//
// # Lifecycle
//
// Start launches the workers; Shutdown stops accepting work, lets the workers
// drain what is already queued and waits for them until its context expires.
type Queue struct {
	sender  Sender
	logger  *slog.Logger
	workers int

	mu     sync.RWMutex
	jobs   chan Message
	closed bool
	wg     sync.WaitGroup
}

// NewQueue creates a queue holding at most size pending messages.
func NewQueue(sender Sender, size, workers int, logger *slog.Logger) *Queue {
	if size < 1 {
		size = 1
	}
	if workers < 1 {
		workers = 1
	}

	return &Queue{
		sender:  sender,
		logger:  logger,
		workers: workers,
		jobs:    make(chan Message, size),
	}
}

// Start launches the worker pool. Deliveries use ctx for their values only;
// cancelling it does not abort messages already queued.
func (queue *Queue) Start(ctx context.Context) {
	base := context.WithoutCancel(ctx)

	for i := 0; i < queue.workers; i++ {
		queue.wg.Add(1)
		go func() {
			defer queue.wg.Done()
			for message := range queue.jobs {
				queue.deliver(base, message)
			}
		}()
	}
}

// Enqueue schedules message for delivery without blocking.
// It reports false when the queue is full or already shut down; the message is dropped.
func (queue *Queue) Enqueue(message Message) bool {
	queue.mu.RLock()
	defer queue.mu.RUnlock()

	if queue.closed {
		queue.logger.Warn("mail_dropped_queue_closed", slog.String("to", message.To))
		return false
	}

	select {
	case queue.jobs <- message:
		return true
	default:
		queue.logger.Warn("mail_dropped_queue_full", slog.String("to", message.To))
		return false
	}
}

// Shutdown closes the queue and waits for pending deliveries or ctx, whichever comes first.
func (queue *Queue) Shutdown(ctx context.Context) error {
	queue.mu.Lock()
	if !queue.closed {
		queue.closed = true
		close(queue.jobs)
	}
	queue.mu.Unlock()

	done := make(chan struct{})
	go func() {
		queue.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (queue *Queue) deliver(ctx context.Context, message Message) {
	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	startTime := time.Now()
	if err := queue.sender.Send(sendCtx, message); err != nil {
		queue.logger.Error("mail_delivery_failed",
			slog.String("to", message.To),
			slog.String("subject", message.Subject),
			slog.String("error", err.Error()),
		)
		return
	}

	queue.logger.Info("mail_delivered",
		slog.String("to", message.To),
		slog.Int64("latency_ms", time.Since(startTime).Milliseconds()),
	)
}
