// Package notify delivers registration, verification and award messages to
// students over SMS and email. Delivery is best effort: callers treat a
// failed notification as a log line, never as a failed operation.
package notify

import (
	"context"

	"github.com/rs/zerolog"
)

// Message is a single notification addressed to a student
type Message struct {
	Phone   string
	Email   string
	Subject string
	Body    string
}

// Notifier sends a message over one channel
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// MultiNotifier fans a message out to every configured channel. Errors are
// logged and swallowed so one broken channel never blocks the others.
type MultiNotifier struct {
	channels []Notifier
	logger   zerolog.Logger
}

// NewMultiNotifier creates a notifier that fans out to the given channels
func NewMultiNotifier(logger zerolog.Logger, channels ...Notifier) *MultiNotifier {
	return &MultiNotifier{
		channels: channels,
		logger:   logger.With().Str("component", "notifier").Logger(),
	}
}

// Send delivers the message on every channel
func (m *MultiNotifier) Send(ctx context.Context, msg Message) error {
	for _, ch := range m.channels {
		if err := ch.Send(ctx, msg); err != nil {
			m.logger.Warn().Err(err).Str("subject", msg.Subject).Msg("Notification channel failed")
		}
	}
	return nil
}

// NoopNotifier discards all messages, used when no channel is configured
type NoopNotifier struct{}

// Send discards the message
func (NoopNotifier) Send(_ context.Context, _ Message) error {
	return nil
}
