// Package dispatch sends one invitation over email and SMS.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/partyweaver/backend/internal/apperr"
	"github.com/partyweaver/backend/internal/messages"
	"github.com/partyweaver/backend/internal/metrics"
	"github.com/partyweaver/backend/internal/models"
	"github.com/partyweaver/backend/internal/notify"
	"github.com/partyweaver/backend/pkg/utils"
)

// User-facing failure messages.
const (
	MsgEventNotFound    = "Event not found"
	MsgSMSNotConfigured = "SMS service not configured"
	MsgSMSFailed        = "Failed to send SMS"
	MsgUnexpected       = "Failed to send invitation"
	MsgSuccess          = "Invitation sent successfully"
)

// EventFinder loads events. A missing event is (nil, nil).
type EventFinder interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
}

// Request is one invitation to send.
type Request struct {
	EventID     uuid.UUID
	GuestName   string
	Email       string
	PhoneNumber string
	InviteToken string
}

// ChannelResult is the outcome on one channel. Skipped means the provider accepted
// the message without delivering it.
type ChannelResult struct {
	Recipient string
	Sent      bool
	Skipped   bool
	Err       error
}

// Result holds per-channel outcomes. A nil channel had no contact to send to.
type Result struct {
	Email *ChannelResult
	SMS   *ChannelResult
}

// Delivered reports whether every attempted channel was sent.
func (r *Result) Delivered() bool {
	if r == nil {
		return false
	}
	for _, cr := range []*ChannelResult{r.Email, r.SMS} {
		if cr != nil && !cr.Sent {
			return false
		}
	}
	return true
}

// Config holds the dispatcher's static settings.
type Config struct {
	PublicBaseURL string
	EmailFrom     string
	SMSFrom       string
}

// Service sends invitations. It never writes to storage and never retries.
type Service struct {
	events   EventFinder
	mailer   notify.Mailer
	sms      notify.SMSSender
	renderer *messages.Renderer
	cfg      Config
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewService creates a dispatcher. A nil sms means SMS credentials are not configured.
func NewService(events EventFinder, mailer notify.Mailer, sms notify.SMSSender, renderer *messages.Renderer, cfg Config, m *metrics.Metrics, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if renderer == nil {
		renderer = messages.NewRenderer(time.UTC)
	}
	return &Service{events: events, mailer: mailer, sms: sms, renderer: renderer, cfg: cfg, metrics: m, logger: logger}
}

// RSVPURL builds the guest-facing link for token.
func RSVPURL(publicBaseURL, token string) string {
	base := strings.TrimRight(publicBaseURL, "/")
	base = strings.TrimSuffix(base, "/rest/v1")
	base = strings.TrimRight(base, "/")
	return base + "/rsvp/" + token
}

// Dispatch sends the invitation. The Result is non-nil whenever the event was found,
// even when an error is returned, so callers can record what went out.
func (s *Service) Dispatch(ctx context.Context, req Request) (res *Result, err error) {
	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = string(apperr.KindOf(err))
		}
		s.metrics.ObserveDispatch(outcome, time.Since(start))
	}()

	s.logger.Info("processing invitation",
		zap.String("event_id", req.EventID.String()),
		zap.Bool("email", req.Email != ""),
		zap.Bool("phone", req.PhoneNumber != ""),
	)

	event, err := s.events.GetByID(ctx, req.EventID)
	if err != nil {
		return nil, fmt.Errorf("load event: %w", err)
	}
	if event == nil {
		s.logger.Warn("event not found", zap.String("event_id", req.EventID.String()))
		return nil, apperr.NotFound(MsgEventNotFound)
	}

	inv := messages.Invitation{
		GuestName:  req.GuestName,
		EventTitle: event.Title,
		Location:   event.LocationOr(""),
		StartTime:  event.StartTime,
		RSVPURL:    RSVPURL(s.cfg.PublicBaseURL, req.InviteToken),
	}
	res = &Result{}

	if req.Email != "" {
		res.Email = s.sendEmail(ctx, req.Email, inv)
	}

	if req.PhoneNumber != "" {
		cr, err := s.sendSMS(ctx, req.PhoneNumber, inv)
		res.SMS = cr
		if err != nil {
			return res, err
		}
	}

	return res, nil
}

// sendEmail never fails the dispatch; provider errors are logged and reported in the result.
func (s *Service) sendEmail(ctx context.Context, to string, inv messages.Invitation) *ChannelResult {
	cr := &ChannelResult{Recipient: to}
	html, err := s.renderer.InvitationHTML(inv)
	if err == nil {
		err = s.mailer.SendEmail(ctx, notify.Email{
			From:    s.cfg.EmailFrom,
			To:      []string{to},
			Subject: s.renderer.InvitationSubject(inv),
			HTML:    html,
		})
	}
	if errors.Is(err, notify.ErrNotDelivered) {
		cr.Skipped = true
		s.metrics.ObserveSend(models.ChannelEmail, metrics.OutcomeSkipped)
		s.logger.Warn("email skipped", zap.Error(err))
		return cr
	}
	if err != nil {
		cr.Err = err
		s.metrics.ObserveSend(models.ChannelEmail, metrics.OutcomeFailed)
		s.logger.Error("email send failed", zap.Error(err))
		return cr
	}
	cr.Sent = true
	s.metrics.ObserveSend(models.ChannelEmail, metrics.OutcomeSent)
	s.logger.Info("email sent")
	return cr
}

func (s *Service) sendSMS(ctx context.Context, phone string, inv messages.Invitation) (*ChannelResult, error) {
	cr := &ChannelResult{Recipient: utils.DigitsOnly(phone)}
	if s.sms == nil {
		cr.Err = apperr.New(apperr.KindConfiguration, MsgSMSNotConfigured)
		s.metrics.ObserveSend(models.ChannelSMS, metrics.OutcomeSkipped)
		s.logger.Error("sms credentials not configured")
		return cr, cr.Err
	}

	err := s.sms.SendSMS(ctx, notify.SMS{
		From: s.cfg.SMSFrom,
		To:   cr.Recipient,
		Text: s.renderer.InvitationSMS(inv),
	})
	if err != nil {
		cr.Err = apperr.Wrap(apperr.KindDelivery, MsgSMSFailed, err)
		s.metrics.ObserveSend(models.ChannelSMS, metrics.OutcomeFailed)
		s.logger.Error("sms send failed", zap.Error(err), zap.Bool("rejected", errors.Is(err, notify.ErrSMSRejected)))
		return cr, cr.Err
	}
	cr.Sent = true
	s.metrics.ObserveSend(models.ChannelSMS, metrics.OutcomeSent)
	s.logger.Info("sms sent")
	return cr, nil
}
