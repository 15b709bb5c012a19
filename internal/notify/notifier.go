// Package notify delivers digests to users.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrNotConfigured is returned by transports missing credentials.
var ErrNotConfigured = errors.New("notifier not configured")

// Notifier delivers a message to one recipient.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Multi sends through every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Send(ctx context.Context, to, subject, body string) error {
	var errs []error
	for _, n := range m {
		if err := n.Send(ctx, to, subject, body); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Log writes messages to a logger instead of delivering them.
type Log struct {
	logger *slog.Logger
}

func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{logger: logger}
}

func (l *Log) Send(ctx context.Context, to, subject, body string) error {
	if to == "" {
		return fmt.Errorf("log notifier: empty recipient")
	}
	l.logger.InfoContext(ctx, "notification", "to", to, "subject", subject, "body", body)
	return nil
}
