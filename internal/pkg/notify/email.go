package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strconv"

	"github.com/rs/zerolog"
)

// SMTPConfig holds configuration for the SMTP server
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// EmailNotifier sends plain HTML emails over SMTP
type EmailNotifier struct {
	config SMTPConfig
	logger zerolog.Logger
}

// NewEmailNotifier creates an email notifier
func NewEmailNotifier(config SMTPConfig, logger zerolog.Logger) *EmailNotifier {
	return &EmailNotifier{
		config: config,
		logger: logger.With().Str("component", "email").Logger(),
	}
}

// Send delivers the message to the student's email address. Accounts
// registered without an email address are skipped silently.
func (e *EmailNotifier) Send(_ context.Context, msg Message) error {
	if msg.Email == "" {
		return nil
	}

	// Without credentials log the message instead, for development
	if e.config.Username == "" || e.config.Password == "" {
		e.logger.Info().
			Str("to", msg.Email).
			Str("subject", msg.Subject).
			Msg("SMTP credentials not configured - message logged instead")
		return nil
	}

	auth := smtp.PlainAuth("", e.config.Username, e.config.Password, e.config.Host)

	headers := map[string]string{
		"From":         e.config.From,
		"To":           msg.Email,
		"Subject":      msg.Subject,
		"MIME-Version": "1.0",
		"Content-Type": "text/html; charset=UTF-8",
	}

	message := ""
	for key, value := range headers {
		message += fmt.Sprintf("%s: %s\r\n", key, value)
	}
	message += "\r\n" + wrapHTML(msg.Body)

	serverAddress := e.config.Host + ":" + strconv.Itoa(e.config.Port)
	err := smtp.SendMail(serverAddress, auth, e.config.From, []string{msg.Email}, []byte(message))
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	e.logger.Debug().Str("to", msg.Email).Msg("Email dispatched")
	return nil
}

func wrapHTML(body string) string {
	return fmt.Sprintf(`
		<html>
		<body>
			<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
				<p>%s</p>
				<p>Regards,<br>The Bursary Fund Team</p>
			</div>
		</body>
		</html>
	`, body)
}
