package events

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/partyweaver/backend/internal/middleware"
	"github.com/partyweaver/backend/internal/models"
	"github.com/partyweaver/backend/internal/policy"
	"github.com/partyweaver/backend/pkg/response"
)

// ContextEvent is the context key for the event loaded by RequireAccess.
const ContextEvent = "event"

// Finder loads events. A missing event is (nil, nil).
type Finder interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
}

// RequireAccess loads the :id event and checks the signed-in user may perform action on it.
// Call after JWT. The event is stored under ContextEvent.
func RequireAccess(finder Finder, action policy.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			response.BadRequest(c, "invalid event id")
			c.Abort()
			return
		}
		e, err := finder.GetByID(c.Request.Context(), eventID)
		if err != nil {
			response.Internal(c, "failed to load event")
			c.Abort()
			return
		}
		userID := middleware.UserID(c)
		// Non-members get the same 404 as a missing event.
		if e == nil || policy.RoleOf(userID, e) == policy.RoleNone {
			response.NotFound(c, "Event not found")
			c.Abort()
			return
		}
		if err := policy.Authorize(userID, e, action); err != nil {
			response.Error(c, err, "forbidden")
			c.Abort()
			return
		}
		c.Set(ContextEvent, e)
		c.Next()
	}
}

// EventFrom returns the event stored by RequireAccess.
func EventFrom(c *gin.Context) *models.Event {
	return c.MustGet(ContextEvent).(*models.Event)
}
