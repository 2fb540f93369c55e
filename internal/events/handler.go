package events

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/partyweaver/backend/internal/middleware"
	"github.com/partyweaver/backend/internal/models"
	"github.com/partyweaver/backend/internal/policy"
	"github.com/partyweaver/backend/pkg/response"
)

// MsgCohostsComingSoon answers co-host additions until they ship.
const MsgCohostsComingSoon = "Co-host management will be available in the next update"

// Store is the persistence the event handler needs.
type Store interface {
	Finder
	Create(ctx context.Context, e *models.Event) error
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Event, error)
	Update(ctx context.Context, e *models.Event) error
	Delete(ctx context.Context, id uuid.UUID) error
	RemoveCohost(ctx context.Context, eventID, userID uuid.UUID) (*models.Event, error)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// CreateRequest is the body for POST /events.
type CreateRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description *string `json:"description"`
	Location    *string `json:"location"`
	StartTime   string  `json:"start_time" binding:"required"`
}

// UpdateRequest is the body for PATCH /events/:id. Absent fields are left unchanged;
// an empty description or location clears it.
type UpdateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Location    *string `json:"location"`
	StartTime   *string `json:"start_time"`
}

// Handler handles event HTTP endpoints.
type Handler struct {
	store  Store
	logger *zap.Logger
}

// NewHandler creates an event handler.
func NewHandler(store Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, logger: logger}
}

// Create handles POST /events. The caller becomes the host.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		response.BadRequest(c, "title is required")
		return
	}
	startTime, err := parseTime(req.StartTime)
	if err != nil {
		response.BadRequest(c, "invalid start_time")
		return
	}

	e := &models.Event{
		Title:       title,
		Description: optional(req.Description),
		Location:    optional(req.Location),
		StartTime:   startTime,
		HostUserID:  middleware.UserID(c),
	}
	if err := h.store.Create(c.Request.Context(), e); err != nil {
		h.logger.Error("create event", zap.Error(err))
		response.Internal(c, "failed to create event")
		return
	}
	response.Created(c, e)
}

// List handles GET /events.
func (h *Handler) List(c *gin.Context) {
	list, err := h.store.ListForUser(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.logger.Error("list events", zap.Error(err))
		response.Internal(c, "failed to list events")
		return
	}
	response.OK(c, list)
}

// Get handles GET /events/:id.
func (h *Handler) Get(c *gin.Context) {
	response.OK(c, EventFrom(c))
}

// Update handles PATCH /events/:id.
func (h *Handler) Update(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	e := *EventFrom(c)
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			response.BadRequest(c, "title cannot be empty")
			return
		}
		e.Title = title
	}
	if req.Description != nil {
		e.Description = optional(req.Description)
	}
	if req.Location != nil {
		e.Location = optional(req.Location)
	}
	if req.StartTime != nil {
		t, err := parseTime(*req.StartTime)
		if err != nil {
			response.BadRequest(c, "invalid start_time")
			return
		}
		e.StartTime = t
	}
	if err := h.store.Update(c.Request.Context(), &e); err != nil {
		h.logger.Error("update event", zap.Error(err), zap.String("event_id", e.ID.String()))
		response.Internal(c, "failed to update event")
		return
	}
	response.OK(c, e)
}

// Delete handles DELETE /events/:id (host only).
func (h *Handler) Delete(c *gin.Context) {
	e := EventFrom(c)
	if err := h.store.Delete(c.Request.Context(), e.ID); err != nil {
		h.logger.Error("delete event", zap.Error(err), zap.String("event_id", e.ID.String()))
		response.Internal(c, "failed to delete event")
		return
	}
	response.NoContent(c)
}

// AddCohost handles POST /events/:id/cohosts. Only the host passes the access check; adding is not offered yet.
func (h *Handler) AddCohost(c *gin.Context) {
	response.NotImplemented(c, MsgCohostsComingSoon)
}

// RemoveCohost handles DELETE /events/:id/cohosts/:userId (host only).
func (h *Handler) RemoveCohost(c *gin.Context) {
	e := EventFrom(c)
	cohostID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	if !e.IsCohost(cohostID) {
		response.NotFound(c, "co-host not found")
		return
	}
	updated, err := h.store.RemoveCohost(c.Request.Context(), e.ID, cohostID)
	if err != nil {
		h.logger.Error("remove cohost", zap.Error(err), zap.String("event_id", e.ID.String()))
		response.Internal(c, "failed to remove co-host")
		return
	}
	response.OK(c, updated)
}

// RegisterRoutes mounts the event routes on an authenticated group.
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	api.POST("/events", h.Create)
	api.GET("/events", h.List)

	ev := api.Group("/events/:id")
	ev.GET("", RequireAccess(h.store, policy.ActionView), h.Get)
	ev.PATCH("", RequireAccess(h.store, policy.ActionEdit), h.Update)
	ev.DELETE("", RequireAccess(h.store, policy.ActionDelete), h.Delete)
	ev.POST("/cohosts", RequireAccess(h.store, policy.ActionManageCohosts), h.AddCohost)
	ev.DELETE("/cohosts/:userId", RequireAccess(h.store, policy.ActionManageCohosts), h.RemoveCohost)
}

func optional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
