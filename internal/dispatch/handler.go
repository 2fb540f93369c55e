package dispatch

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/partyweaver/backend/internal/apperr"
	"github.com/partyweaver/backend/internal/middleware"
	"github.com/partyweaver/backend/internal/policy"
)

// Dispatcher is the operation behind the HTTP function.
type Dispatcher interface {
	Dispatch(ctx context.Context, req Request) (*Result, error)
}

type sendInvitationBody struct {
	EventID     string `json:"eventId"`
	GuestName   string `json:"guestName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	InviteToken string `json:"inviteToken"`
}

// Handler exposes the dispatcher as POST /functions/v1/send-invitation.
type Handler struct {
	svc    Dispatcher
	events EventFinder
	logger *zap.Logger
}

// NewHandler creates the function handler. events is used to check the caller may invite to the event.
func NewHandler(svc Dispatcher, events EventFinder, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, events: events, logger: logger}
}

// SendInvitation handles POST /functions/v1/send-invitation. Call after middleware.JWT.
// Only the host or a co-host of the event may send. Responses use the function's own shape: {"success":true,"message":...} or {"error":...}.
func (h *Handler) SendInvitation(c *gin.Context) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("send invitation panic", zap.String("panic", fmt.Sprint(r)))
			c.JSON(http.StatusInternalServerError, gin.H{"error": MsgUnexpected})
		}
	}()

	var body sendInvitationBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.logger.Error("error sending invitation", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": MsgUnexpected})
		return
	}
	// An id that is not a uuid cannot name an event.
	eventID, err := uuid.Parse(body.EventID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": MsgEventNotFound})
		return
	}
	e, err := h.events.GetByID(c.Request.Context(), eventID)
	if err != nil {
		h.logger.Error("error sending invitation", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": MsgUnexpected})
		return
	}
	userID := middleware.UserID(c)
	// Non-members get the same 404 as a missing event.
	if e == nil || policy.RoleOf(userID, e) == policy.RoleNone {
		c.JSON(http.StatusNotFound, gin.H{"error": MsgEventNotFound})
		return
	}
	if err := policy.Authorize(userID, e, policy.ActionInviteGuests); err != nil {
		c.JSON(apperr.KindOf(err).HTTPStatus(), gin.H{"error": apperr.Message(err, MsgUnexpected)})
		return
	}

	req := Request{
		EventID:     eventID,
		GuestName:   body.GuestName,
		Email:       body.Email,
		PhoneNumber: body.PhoneNumber,
		InviteToken: body.InviteToken,
	}
	if _, err := h.svc.Dispatch(c.Request.Context(), req); err != nil {
		kind := apperr.KindOf(err)
		if kind == apperr.KindUnexpected {
			h.logger.Error("error sending invitation", zap.Error(err))
		}
		c.JSON(kind.HTTPStatus(), gin.H{"error": apperr.Message(err, MsgUnexpected)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": MsgSuccess})
}

// Preflight answers OPTIONS. The CORS headers come from middleware.FunctionCORS.
func (h *Handler) Preflight(c *gin.Context) {
	c.Status(http.StatusOK)
}
