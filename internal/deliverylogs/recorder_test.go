package deliverylogs

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/partyweaver/backend/internal/apperr"
	"github.com/partyweaver/backend/internal/dispatch"
	"github.com/partyweaver/backend/internal/models"
)

type captureWriter struct {
	logs []*models.DeliveryLog
	err  error
}

func (w *captureWriter) Create(_ context.Context, l *models.DeliveryLog) error {
	w.logs = append(w.logs, l)
	return w.err
}

func TestFromResult(t *testing.T) {
	eventID, inviteID := uuid.New(), uuid.New()
	res := &dispatch.Result{
		Email: &dispatch.ChannelResult{Recipient: "jane@example.com", Sent: true},
		SMS:   &dispatch.ChannelResult{Recipient: "15551234567", Err: apperr.New(apperr.KindConfiguration, "SMS service not configured")},
	}

	logs := FromResult(eventID, inviteID, res)
	require.Len(t, logs, 2)

	assert.Equal(t, models.ChannelEmail, logs[0].Channel)
	assert.Equal(t, models.DeliveryStatusSent, logs[0].Status)
	assert.Empty(t, logs[0].ErrorMessage)

	assert.Equal(t, models.ChannelSMS, logs[1].Channel)
	assert.Equal(t, models.DeliveryStatusFailed, logs[1].Status)
	assert.Equal(t, "SMS service not configured", logs[1].ErrorMessage)
	assert.Equal(t, inviteID, logs[1].InviteID)
}

func TestFromResultProviderError(t *testing.T) {
	res := &dispatch.Result{Email: &dispatch.ChannelResult{Recipient: "a@example.com", Err: errors.New("resend send: 422")}}
	logs := FromResult(uuid.New(), uuid.New(), res)
	require.Len(t, logs, 1)
	assert.Equal(t, "resend send: 422", logs[0].ErrorMessage)

	assert.Nil(t, FromResult(uuid.New(), uuid.New(), nil))
}

func TestFromResultSkippedEmail(t *testing.T) {
	res := &dispatch.Result{Email: &dispatch.ChannelResult{Recipient: "a@example.com", Skipped: true}}
	logs := FromResult(uuid.New(), uuid.New(), res)
	require.Len(t, logs, 1)
	assert.Equal(t, models.DeliveryStatusSkipped, logs[0].Status)
	assert.Equal(t, "no email provider configured", logs[0].ErrorMessage)
}

func TestRecordSwallowsWriteErrors(t *testing.T) {
	w := &captureWriter{err: errors.New("db down")}
	res := &dispatch.Result{Email: &dispatch.ChannelResult{Recipient: "a@example.com", Sent: true}}

	assert.NotPanics(t, func() {
		Record(context.Background(), w, zap.NewNop(), uuid.New(), uuid.New(), res)
	})
	assert.Len(t, w.logs, 1)
}
