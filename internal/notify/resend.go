package notify

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

// ResendMailer sends email through the Resend API.
type ResendMailer struct {
	client *resend.Client
	logger *zap.Logger
}

// NewResendMailer creates a Resend-backed mailer.
func NewResendMailer(apiKey string, logger *zap.Logger) *ResendMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResendMailer{client: resend.NewClient(apiKey), logger: logger}
}

// SendEmail implements Mailer.
func (m *ResendMailer) SendEmail(ctx context.Context, msg Email) error {
	sent, err := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
	})
	if err != nil {
		return fmt.Errorf("resend send: %w", err)
	}
	m.logger.Debug("email sent", zap.String("provider", "resend"), zap.String("id", sent.Id))
	return nil
}
