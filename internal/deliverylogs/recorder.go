package deliverylogs

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/partyweaver/backend/internal/apperr"
	"github.com/partyweaver/backend/internal/dispatch"
	"github.com/partyweaver/backend/internal/models"
)

// Writer persists delivery logs.
type Writer interface {
	Create(ctx context.Context, l *models.DeliveryLog) error
}

// FromResult converts a dispatch result into one log per attempted channel.
func FromResult(eventID, inviteID uuid.UUID, res *dispatch.Result) []*models.DeliveryLog {
	if res == nil {
		return nil
	}
	var logs []*models.DeliveryLog
	add := func(channel string, cr *dispatch.ChannelResult) {
		if cr == nil {
			return
		}
		l := &models.DeliveryLog{
			EventID:   eventID,
			InviteID:  inviteID,
			Channel:   channel,
			Recipient: cr.Recipient,
			Status:    models.DeliveryStatusSent,
		}
		switch {
		case cr.Skipped:
			l.Status = models.DeliveryStatusSkipped
			l.ErrorMessage = "no email provider configured"
		case !cr.Sent:
			l.Status = models.DeliveryStatusFailed
			l.ErrorMessage = apperr.Message(cr.Err, "send failed")
			if cr.Err != nil && apperr.KindOf(cr.Err) == apperr.KindUnexpected {
				l.ErrorMessage = cr.Err.Error()
			}
		}
		logs = append(logs, l)
	}
	add(models.ChannelEmail, res.Email)
	add(models.ChannelSMS, res.SMS)
	return logs
}

// Record writes the logs for res. Write failures are logged, never returned.
func Record(ctx context.Context, w Writer, logger *zap.Logger, eventID, inviteID uuid.UUID, res *dispatch.Result) {
	for _, l := range FromResult(eventID, inviteID, res) {
		if err := w.Create(ctx, l); err != nil {
			logger.Error("write delivery log", zap.Error(err),
				zap.String("invite_id", inviteID.String()), zap.String("channel", l.Channel))
		}
	}
}
