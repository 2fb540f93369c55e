package analytics

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/partyweaver/backend/internal/events"
	"github.com/partyweaver/backend/internal/models"
	"github.com/partyweaver/backend/pkg/response"
)

// Counter aggregates an event's invites and deliveries.
type Counter interface {
	CountRSVPs(ctx context.Context, eventID uuid.UUID) (map[models.RSVPStatus]int, error)
	CountDeliveries(ctx context.Context, eventID uuid.UUID) (sent, failed int, err error)
}

// ViewerCounter reports live feed connections on this instance.
type ViewerCounter interface {
	ViewerCount(eventID uuid.UUID) int
}

// Handler handles GET /events/:id/summary.
type Handler struct {
	counter Counter
	viewers ViewerCounter
	logger  *zap.Logger
}

// NewHandler creates an analytics handler. viewers may be nil.
func NewHandler(counter Counter, viewers ViewerCounter, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{counter: counter, viewers: viewers, logger: logger}
}

// SummaryResponse is the JSON shape of an event's RSVP summary.
type SummaryResponse struct {
	TotalInvites     int      `json:"total_invites"`
	Attending        int      `json:"attending"`
	Maybe            int      `json:"maybe"`
	NotAttending     int      `json:"not_attending"`
	Pending          int      `json:"pending"`
	ResponseRate     *float64 `json:"response_rate,omitempty"`
	DeliveriesSent   int      `json:"deliveries_sent"`
	DeliveriesFailed int      `json:"deliveries_failed"`
	LiveViewers      int      `json:"live_viewers"`
}

// Summarize builds the summary from per-status counts.
func Summarize(counts map[models.RSVPStatus]int) SummaryResponse {
	out := SummaryResponse{
		Attending:    counts[models.RSVPAttending],
		Maybe:        counts[models.RSVPMaybe],
		NotAttending: counts[models.RSVPNotAttending],
		Pending:      counts[models.RSVPPending],
	}
	out.TotalInvites = out.Attending + out.Maybe + out.NotAttending + out.Pending
	if out.TotalInvites > 0 {
		rate := float64(out.TotalInvites-out.Pending) / float64(out.TotalInvites)
		out.ResponseRate = &rate
	}
	return out
}

// Summary handles GET /events/:id/summary. View-invites access is enforced by route middleware.
func (h *Handler) Summary(c *gin.Context) {
	e := events.EventFrom(c)
	ctx := c.Request.Context()

	counts, err := h.counter.CountRSVPs(ctx, e.ID)
	if err != nil {
		h.logger.Error("count rsvps", zap.Error(err), zap.String("event_id", e.ID.String()))
		response.Internal(c, "failed to load rsvp counts")
		return
	}
	out := Summarize(counts)

	out.DeliveriesSent, out.DeliveriesFailed, err = h.counter.CountDeliveries(ctx, e.ID)
	if err != nil {
		h.logger.Error("count deliveries", zap.Error(err), zap.String("event_id", e.ID.String()))
		response.Internal(c, "failed to load delivery counts")
		return
	}
	if h.viewers != nil {
		out.LiveViewers = h.viewers.ViewerCount(e.ID)
	}
	response.OK(c, out)
}
