package deliverylogs

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/partyweaver/backend/internal/events"
	"github.com/partyweaver/backend/internal/models"
	"github.com/partyweaver/backend/pkg/response"
)

// Lister reads delivery logs.
type Lister interface {
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*models.DeliveryLog, error)
}

// Handler handles delivery log HTTP endpoints.
type Handler struct {
	repo   Lister
	logger *zap.Logger
}

// NewHandler creates a delivery logs handler.
func NewHandler(repo Lister, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

// ListByEvent handles GET /events/:id/deliveries.
// Call after events.RequireAccess so access is already validated.
func (h *Handler) ListByEvent(c *gin.Context) {
	e := events.EventFrom(c)
	logs, err := h.repo.ListByEvent(c.Request.Context(), e.ID)
	if err != nil {
		h.logger.Error("list delivery logs", zap.Error(err), zap.String("event_id", e.ID.String()))
		response.Internal(c, "failed to load delivery logs")
		return
	}
	response.OK(c, logs)
}
