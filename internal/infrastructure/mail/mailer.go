// Package mail delivers portal emails (payment receipts and examination
// permits) through SendGrid, or to the log in development.
package mail

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Miraku17/Exam-Permit/internal/infrastructure/config"
	"go.uber.org/zap"
)

// ErrNoRecipient is returned for messages without a To address
var ErrNoRecipient = errors.New("mail: message has no recipient")

// Attachment is a file sent with a message
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Message is one outbound email
type Message struct {
	To          string
	ToName      string
	Subject     string
	TextContent string
	HTMLContent string
	Attachments []Attachment
}

// Validate checks the message can be sent
func (m *Message) Validate() error {
	if strings.TrimSpace(m.To) == "" {
		return ErrNoRecipient
	}
	if m.TextContent == "" && m.HTMLContent == "" && len(m.Attachments) == 0 {
		return fmt.Errorf("mail: message to %s is empty", m.To)
	}
	return nil
}

// Mailer sends messages synchronously so callers can report delivery
// failures
type Mailer interface {
	Send(ctx context.Context, msg *Message) error
}

// New selects the mailer named by cfg.Provider
func New(cfg config.MailConfig, logger *zap.Logger) (Mailer, error) {
	switch strings.ToLower(cfg.Provider) {
	case "sendgrid":
		if cfg.SendGridAPIKey == "" {
			return nil, errors.New("mail: sendgrid provider requires mail.sendgrid_api_key")
		}
		return NewSendGridMailer(cfg, logger), nil
	case "", "console":
		return NewConsoleMailer(cfg, logger), nil
	}
	return nil, fmt.Errorf("mail: unknown provider %q", cfg.Provider)
}
