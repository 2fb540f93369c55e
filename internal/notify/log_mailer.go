package notify

import (
	"context"

	"go.uber.org/zap"
)

// LogMailer writes emails to the log instead of sending them. Used for local development.
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer creates a log-only mailer.
func NewLogMailer(logger *zap.Logger) *LogMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogMailer{logger: logger}
}

// SendEmail logs msg and returns ErrNotDelivered.
func (m *LogMailer) SendEmail(_ context.Context, msg Email) error {
	m.logger.Info("email (not sent)",
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("html", msg.HTML),
	)
	return ErrNotDelivered
}
