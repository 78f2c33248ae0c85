package mail

import (
	"context"
	"sync"

	"github.com/Miraku17/Exam-Permit/internal/infrastructure/config"
	"go.uber.org/zap"
)

// ConsoleMailer logs messages instead of sending them and keeps a copy of
// each one
type ConsoleMailer struct {
	from   string
	logger *zap.Logger

	mu   sync.Mutex
	sent []Message
}

// NewConsoleMailer creates a console mailer
func NewConsoleMailer(cfg config.MailConfig, logger *zap.Logger) *ConsoleMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleMailer{from: cfg.FromEmail, logger: logger}
}

// Send implements Mailer
func (m *ConsoleMailer) Send(_ context.Context, msg *Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	names := make([]string, 0, len(msg.Attachments))
	for _, a := range msg.Attachments {
		names = append(names, a.Filename)
	}
	m.logger.Info("Email (console)",
		zap.String("from", m.from),
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Strings("attachments", names),
		zap.String("text", msg.TextContent))

	m.mu.Lock()
	m.sent = append(m.sent, *msg)
	m.mu.Unlock()
	return nil
}

// Sent returns the messages sent so far
func (m *ConsoleMailer) Sent() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.sent...)
}

var _ Mailer = (*ConsoleMailer)(nil)
