package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// SMSConfig holds configuration for the SMS gateway
type SMSConfig struct {
	Endpoint string
	APIKey   string
	Username string
	SenderID string
}

// SMSNotifier sends messages through an Africa's Talking style HTTP gateway.
// The gateway accepts form-encoded POSTs authenticated with an API key
// header.
type SMSNotifier struct {
	config SMSConfig
	client *http.Client
	logger zerolog.Logger
}

// NewSMSNotifier creates an SMS notifier against the configured gateway
func NewSMSNotifier(config SMSConfig, logger zerolog.Logger) *SMSNotifier {
	return &SMSNotifier{
		config: config,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger.With().Str("component", "sms").Logger(),
	}
}

// Send delivers the message body to the student's phone
func (s *SMSNotifier) Send(ctx context.Context, msg Message) error {
	if msg.Phone == "" {
		return nil
	}

	form := url.Values{}
	form.Set("username", s.config.Username)
	form.Set("to", msg.Phone)
	form.Set("message", msg.Body)
	if s.config.SenderID != "" {
		form.Set("from", s.config.SenderID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.Endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("apiKey", s.config.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("sms gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("sms gateway returned %d: %s", resp.StatusCode, string(body))
	}

	s.logger.Debug().Str("to", msg.Phone).Msg("SMS dispatched")
	return nil
}

// LogSMSNotifier logs messages instead of sending them, used in development
type LogSMSNotifier struct {
	logger zerolog.Logger
}

// NewLogSMSNotifier creates a log-only SMS notifier
func NewLogSMSNotifier(logger zerolog.Logger) *LogSMSNotifier {
	return &LogSMSNotifier{logger: logger.With().Str("component", "sms").Logger()}
}

// Send logs the message that would have been sent
func (s *LogSMSNotifier) Send(_ context.Context, msg Message) error {
	if msg.Phone == "" {
		return nil
	}
	s.logger.Info().
		Str("to", msg.Phone).
		Str("body", msg.Body).
		Msg("SMS gateway not configured - message logged instead")
	return nil
}
