// Package notify delivers invitation and sign-in messages over email and SMS.
package notify

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/partyweaver/backend/config"
)

// Email is one outgoing HTML email.
type Email struct {
	From    string
	To      []string
	Subject string
	HTML    string
}

// SMS is one outgoing text message. To holds digits only.
type SMS struct {
	From string
	To   string
	Text string
}

// ErrNotDelivered is returned by mailers that accept a message without sending it.
var ErrNotDelivered = errors.New("email not delivered: no provider configured")

// ErrNoEmailProvider is returned by NewMailer when no provider is set and log-only mode is off.
var ErrNoEmailProvider = errors.New("no email provider configured: set RESEND_API_KEY or SMTP_HOST, or EMAIL_LOG_ONLY=true for development")

// Mailer sends email.
type Mailer interface {
	SendEmail(ctx context.Context, msg Email) error
}

// SMSSender sends text messages.
type SMSSender interface {
	SendSMS(ctx context.Context, msg SMS) error
}

// NewMailer picks the email provider: Resend when an API key is set, then SMTP.
// With neither, it returns a log-only mailer when cfg.LogOnly is set and ErrNoEmailProvider otherwise.
func NewMailer(cfg config.EmailConfig, logger *zap.Logger) (Mailer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch {
	case cfg.ResendAPIKey != "":
		logger.Info("email provider: resend")
		return NewResendMailer(cfg.ResendAPIKey, logger), nil
	case cfg.SMTPHost != "":
		logger.Info("email provider: smtp", zap.String("host", cfg.SMTPHost), zap.Int("port", cfg.SMTPPort))
		return NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass), nil
	case cfg.LogOnly:
		logger.Warn("EMAIL_LOG_ONLY set; emails are logged and recorded as skipped")
		return NewLogMailer(logger), nil
	default:
		return nil, ErrNoEmailProvider
	}
}

// NewSMSSender returns the Vonage sender, or nil when credentials are missing.
func NewSMSSender(cfg config.SMSConfig, logger *zap.Logger) SMSSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.Configured() {
		logger.Warn("SMS credentials not set; invitations with a phone number will fail")
		return nil
	}
	logger.Info("sms provider: vonage", zap.String("from", cfg.From))
	return NewVonageSMS(cfg.BaseURL, cfg.APIKey, cfg.APISecret, nil)
}
