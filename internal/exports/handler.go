// Package exports writes an event's guest list to S3 as CSV.
package exports

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/partyweaver/backend/internal/events"
	"github.com/partyweaver/backend/internal/models"
	"github.com/partyweaver/backend/pkg/response"
	"github.com/partyweaver/backend/pkg/storage"
)

// InviteLister reads an event's invites.
type InviteLister interface {
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*models.Invite, error)
}

// ObjectStore stores export files and signs their download URLs. Satisfied by *storage.S3.
type ObjectStore interface {
	UploadExport(ctx context.Context, key, contentType string, body io.Reader) error
	PresignExportURL(ctx context.Context, key string) (string, error)
}

// Export describes an uploaded guest list.
type Export struct {
	URL    string `json:"url"`
	Key    string `json:"key"`
	Guests int    `json:"guests"`
}

// Handler handles guest list export.
type Handler struct {
	invites InviteLister
	store   ObjectStore
	logger  *zap.Logger
	now     func() time.Time
}

// NewHandler creates an export handler. A nil store disables exports.
func NewHandler(invites InviteLister, store ObjectStore, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{invites: invites, store: store, logger: logger, now: time.Now}
}

// GuestList handles POST /events/:id/guest-list/export.
// Call after events.RequireAccess so access is already validated.
func (h *Handler) GuestList(c *gin.Context) {
	if h.store == nil {
		response.ServiceUnavailable(c, "exports are not configured")
		return
	}
	e := events.EventFrom(c)
	ctx := c.Request.Context()
	log := h.logger.With(zap.String("event_id", e.ID.String()))

	list, err := h.invites.ListByEvent(ctx, e.ID)
	if err != nil {
		log.Error("list invites for export", zap.Error(err))
		response.Internal(c, "failed to load invites")
		return
	}
	body, err := WriteGuestList(list)
	if err != nil {
		log.Error("render guest list", zap.Error(err))
		response.Internal(c, "failed to render guest list")
		return
	}

	key := storage.ExportKey(e.ID.String(), h.now())
	if err := h.store.UploadExport(ctx, key, storage.ContentTypeCSV, bytes.NewReader(body)); err != nil {
		log.Error("upload guest list", zap.Error(err), zap.String("key", key))
		response.Internal(c, "failed to upload guest list")
		return
	}
	url, err := h.store.PresignExportURL(ctx, key)
	if err != nil {
		log.Error("presign guest list", zap.Error(err), zap.String("key", key))
		response.Internal(c, "failed to sign download url")
		return
	}
	log.Info("guest list exported", zap.String("key", key), zap.Int("guests", len(list)))
	response.Created(c, Export{URL: url, Key: key, Guests: len(list)})
}
