// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package mail delivers transactional email outside the request path.

Handlers build a [Message] and hand it to a [Queue]; a fixed pool of workers
drains the queue through a [Sender]. Delivery failures are logged by the
worker and never reach the client.
*/
package mail

import (
	"context"
	"log/slog"
)

// Message is a single plain-text email.
type Message struct {
	To      string
	ToName  string
	Subject string
	Body    string
}

// Sender delivers one message synchronously.
type Sender interface {
	Send(ctx context.Context, message Message) error
}

// LogSender writes messages to the log instead of sending them.
// It is used when no SMTP server is configured.
type LogSender struct {
	Logger *slog.Logger
}

// Send implements [Sender].
func (sender LogSender) Send(ctx context.Context, message Message) error {
	sender.Logger.InfoContext(ctx, "mail_delivery_skipped",
		slog.String("to", message.To),
		slog.String("subject", message.Subject),
		slog.String("body", message.Body),
	)
	return nil
}
