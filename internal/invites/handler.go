package invites

import (
	"context"
	"net/mail"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/partyweaver/backend/internal/deliverylogs"
	"github.com/partyweaver/backend/internal/dispatch"
	"github.com/partyweaver/backend/internal/events"
	"github.com/partyweaver/backend/internal/middleware"
	"github.com/partyweaver/backend/internal/models"
	"github.com/partyweaver/backend/pkg/queue"
	"github.com/partyweaver/backend/pkg/response"
)

// MsgSendFailed is the warning returned when an invite was stored but could not be delivered.
const MsgSendFailed = "Invitation created but failed to send. Please try sending manually."

// MsgSendSkipped is the warning returned when email delivery is disabled on this server.
const MsgSendSkipped = "Invitation created but email delivery is disabled on this server."

// Store is the persistence the invite handler needs.
type Store interface {
	Create(ctx context.Context, inv *models.Invite) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Invite, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*models.Invite, error)
}

// ResendQueue accepts manual resend jobs.
type ResendQueue interface {
	EnqueueInvitationResend(ctx context.Context, payload queue.InvitationResendPayload) (string, error)
}

// CreateRequest is the body for POST /events/:id/invites.
type CreateRequest struct {
	GuestName   string `json:"guest_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
}

// CreateResponse is the invite plus the outcome of the immediate send.
type CreateResponse struct {
	Invite  *models.Invite `json:"invite"`
	Sent    bool           `json:"sent"`
	Warning string         `json:"warning,omitempty"`
}

// Handler handles invite HTTP endpoints.
type Handler struct {
	store      Store
	dispatcher dispatch.Dispatcher
	logs       deliverylogs.Writer
	queue      ResendQueue
	logger     *zap.Logger
}

// NewHandler creates an invite handler.
func NewHandler(store Store, dispatcher dispatch.Dispatcher, logs deliverylogs.Writer, q ResendQueue, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, dispatcher: dispatcher, logs: logs, queue: q, logger: logger}
}

// Validate trims the request and checks it names a guest with at least one contact.
func (req *CreateRequest) Validate() string {
	req.GuestName = strings.TrimSpace(req.GuestName)
	req.Email = strings.TrimSpace(req.Email)
	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	switch {
	case req.GuestName == "":
		return "Guest name is required"
	case req.Email == "" && req.PhoneNumber == "":
		return "Please provide either an email or phone number"
	}
	if req.Email != "" {
		if _, err := mail.ParseAddress(req.Email); err != nil {
			return "invalid email"
		}
	}
	return ""
}

// Create handles POST /events/:id/invites. The invite is kept even when sending fails.
func (h *Handler) Create(c *gin.Context) {
	e := events.EventFrom(c)
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if msg := req.Validate(); msg != "" {
		response.BadRequest(c, msg)
		return
	}

	inv := &models.Invite{
		EventID:     e.ID,
		GuestName:   req.GuestName,
		Email:       nonEmpty(req.Email),
		PhoneNumber: nonEmpty(req.PhoneNumber),
	}
	ctx := c.Request.Context()
	if err := h.store.Create(ctx, inv); err != nil {
		h.logger.Error("create invite", zap.Error(err), zap.String("event_id", e.ID.String()))
		response.Internal(c, "Failed to create invitation")
		return
	}

	res, err := h.dispatcher.Dispatch(ctx, dispatch.Request{
		EventID:     e.ID,
		GuestName:   inv.GuestName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		InviteToken: inv.InviteToken,
	})
	deliverylogs.Record(ctx, h.logs, h.logger, e.ID, inv.ID, res)

	out := CreateResponse{Invite: inv, Sent: err == nil}
	switch {
	case err != nil:
		h.logger.Warn("invite created but not sent", zap.Error(err), zap.String("invite_id", inv.ID.String()))
		out.Warning = MsgSendFailed
	case res != nil && res.Email != nil && res.Email.Skipped:
		out.Sent = false
		out.Warning = MsgSendSkipped
	}
	response.Created(c, out)
}

// List handles GET /events/:id/invites.
func (h *Handler) List(c *gin.Context) {
	e := events.EventFrom(c)
	list, err := h.store.ListByEvent(c.Request.Context(), e.ID)
	if err != nil {
		h.logger.Error("list invites", zap.Error(err), zap.String("event_id", e.ID.String()))
		response.Internal(c, "failed to list invites")
		return
	}
	response.OK(c, list)
}

// Resend handles POST /events/:id/invites/:inviteId/resend. The send happens in the worker.
func (h *Handler) Resend(c *gin.Context) {
	e := events.EventFrom(c)
	inviteID, err := uuid.Parse(c.Param("inviteId"))
	if err != nil {
		response.BadRequest(c, "invalid invite id")
		return
	}
	ctx := c.Request.Context()
	inv, err := h.store.GetByID(ctx, inviteID)
	if err != nil {
		response.Internal(c, "failed to load invite")
		return
	}
	if inv == nil || inv.EventID != e.ID {
		response.NotFound(c, "Invite not found")
		return
	}
	jobID, err := h.queue.EnqueueInvitationResend(ctx, queue.InvitationResendPayload{
		InviteID:    inv.ID,
		EventID:     e.ID,
		RequestedBy: middleware.UserID(c),
	})
	if err != nil {
		h.logger.Error("enqueue resend", zap.Error(err), zap.String("invite_id", inv.ID.String()))
		response.ServiceUnavailable(c, "failed to queue resend")
		return
	}
	response.Accepted(c, gin.H{"job_id": jobID, "invite_id": inv.ID})
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
