// Package notify delivers transactional email: login links and
// feedback-ready notices.
package notify

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

type Message struct {
	To      string
	Subject string
	HTML    string
}

// Notifier lets callers swap real delivery for the log-only notifier.
type Notifier interface {
	Publish(ctx context.Context, msg Message) error
}

// New returns a Resend-backed notifier, or a LogNotifier when apiKey is empty.
func New(apiKey, from string, logger *zap.Logger) Notifier {
	if apiKey == "" {
		logger.Warn("RESEND_API_KEY not set, emails will only be logged")
		return NewLogNotifier(logger)
	}
	return &ResendNotifier{
		client: resend.NewClient(apiKey),
		from:   from,
		logger: logger,
	}
}

type ResendNotifier struct {
	client *resend.Client
	from   string
	logger *zap.Logger
}

func (n *ResendNotifier) Publish(ctx context.Context, msg Message) error {
	sent, err := n.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    n.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
	})
	if err != nil {
		return fmt.Errorf("send email to %s: %w", msg.To, err)
	}
	n.logger.Info("email sent", zap.String("id", sent.Id), zap.String("subject", msg.Subject))
	return nil
}

// LogNotifier writes messages to the log instead of sending them.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Publish(_ context.Context, msg Message) error {
	n.logger.Info("email (dev mode)",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("html", msg.HTML),
	)
	return nil
}
