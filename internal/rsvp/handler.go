// Package rsvp serves the public, token-authenticated guest response page.
package rsvp

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/partyweaver/backend/internal/messages"
	"github.com/partyweaver/backend/internal/models"
	"github.com/partyweaver/backend/pkg/response"
)

const (
	MsgInvalidLink  = "Invalid invitation link"
	MsgUpdateFailed = "Failed to update RSVP"
	MsgUpdated      = "Your RSVP has been updated!"
)

// Store reads and updates invites by token. Unknown tokens are (nil, nil).
type Store interface {
	GetByToken(ctx context.Context, token string) (*models.InviteWithEvent, error)
	UpdateRSVP(ctx context.Context, token string, status models.RSVPStatus, at time.Time) (*models.Invite, error)
}

// Notifier announces responses to hosts watching the event.
type Notifier interface {
	RSVPUpdated(ctx context.Context, inv *models.Invite) error
}

// InvitationView is what a guest sees on the RSVP page.
type InvitationView struct {
	*models.InviteWithEvent
	FormattedDate string `json:"formatted_date"`
	StatusLabel   string `json:"status_label"`
}

// UpdateRequest is the body for POST /rsvp/:token.
type UpdateRequest struct {
	Status models.RSVPStatus `json:"status" binding:"required"`
}

// UpdateResponse is the updated invite plus the confirmation shown to the guest.
type UpdateResponse struct {
	Invite  *models.Invite `json:"invite"`
	Message string         `json:"message"`
}

// Handler handles RSVP endpoints.
type Handler struct {
	store    Store
	notifier Notifier
	renderer *messages.Renderer
	logger   *zap.Logger
	now      func() time.Time
}

// NewHandler creates an RSVP handler. notifier may be nil.
func NewHandler(store Store, notifier Notifier, renderer *messages.Renderer, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, notifier: notifier, renderer: renderer, logger: logger, now: time.Now}
}

// RegisterRoutes mounts the public RSVP routes.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/rsvp/:token", h.Get)
	r.POST("/rsvp/:token", h.Update)
}

// Get handles GET /rsvp/:token.
func (h *Handler) Get(c *gin.Context) {
	token := c.Param("token")
	iw, err := h.store.GetByToken(c.Request.Context(), token)
	if err != nil {
		h.logger.Error("load invite by token", zap.Error(err))
		response.Internal(c, "failed to load invitation")
		return
	}
	if iw == nil {
		response.NotFound(c, MsgInvalidLink)
		return
	}
	response.OK(c, InvitationView{
		InviteWithEvent: iw,
		FormattedDate:   h.renderer.FormatDate(iw.Event.StartTime),
		StatusLabel:     iw.RSVPStatus.Label(),
	})
}

// Update handles POST /rsvp/:token. Guests may change their answer any number of times.
func (h *Handler) Update(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if !req.Status.Responded() {
		response.BadRequest(c, "status must be one of attending, maybe, not_attending")
		return
	}

	ctx := c.Request.Context()
	inv, err := h.store.UpdateRSVP(ctx, c.Param("token"), req.Status, h.now().UTC())
	if err != nil {
		h.logger.Error("update rsvp", zap.Error(err))
		response.Internal(c, MsgUpdateFailed)
		return
	}
	if inv == nil {
		response.NotFound(c, MsgInvalidLink)
		return
	}

	if h.notifier != nil {
		if err := h.notifier.RSVPUpdated(ctx, inv); err != nil {
			h.logger.Warn("publish rsvp update", zap.Error(err), zap.String("event_id", inv.EventID.String()))
		}
	}
	response.OK(c, UpdateResponse{Invite: inv, Message: MsgUpdated})
}
