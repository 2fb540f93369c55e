package auth

import (
	"context"
	"errors"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/partyweaver/backend/internal/messages"
	"github.com/partyweaver/backend/internal/middleware"
	"github.com/partyweaver/backend/internal/models"
	"github.com/partyweaver/backend/internal/notify"
	"github.com/partyweaver/backend/pkg/response"
	"github.com/partyweaver/backend/pkg/utils"
)

// MsgCheckEmail is returned for every accepted sign-in request.
const MsgCheckEmail = "Check your email for the login link."

// Store is the persistence the auth handler needs.
type Store interface {
	UpsertUser(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	CreateMagicLink(ctx context.Context, link *models.MagicLink) error
	GetMagicLink(ctx context.Context, token string) (*models.MagicLink, error)
	MarkMagicLinkUsed(ctx context.Context, token string, at time.Time) (bool, error)
}

// LinkConfig controls magic-link emails.
type LinkConfig struct {
	AppBaseURL string
	TTL        time.Duration
	EmailFrom  string
}

// MagicLinkRequest is the body for POST /auth/magic-link.
type MagicLinkRequest struct {
	Email string `json:"email" binding:"required"`
}

// ConsumeRequest is the body for POST /auth/magic-link/consume.
type ConsumeRequest struct {
	Token string `json:"token" binding:"required"`
}

// TokenResponse is the auth response with JWT.
type TokenResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Handler handles auth HTTP endpoints.
type Handler struct {
	store    Store
	jwt      *JWTService
	mailer   notify.Mailer
	renderer *messages.Renderer
	cfg      LinkConfig
	now      func() time.Time
	logger   *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(store Store, jwt *JWTService, mailer notify.Mailer, renderer *messages.Renderer, cfg LinkConfig, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if renderer == nil {
		renderer = messages.NewRenderer(time.UTC)
	}
	return &Handler{store: store, jwt: jwt, mailer: mailer, renderer: renderer, cfg: cfg, now: time.Now, logger: logger}
}

// RequestMagicLink handles POST /auth/magic-link.
func (h *Handler) RequestMagicLink(c *gin.Context) {
	var req MagicLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "email is required")
		return
	}
	parsed, err := mail.ParseAddress(strings.TrimSpace(req.Email))
	if err != nil {
		response.BadRequest(c, "email is invalid")
		return
	}
	email := strings.ToLower(parsed.Address)
	ctx := c.Request.Context()

	user, err := h.store.UpsertUser(ctx, email)
	if err != nil {
		h.logger.Error("upsert user", zap.Error(err))
		response.Internal(c, "failed to start sign-in")
		return
	}

	token, err := utils.RandomToken(32)
	if err != nil {
		response.Internal(c, "failed to start sign-in")
		return
	}
	now := h.now().UTC()
	link := &models.MagicLink{
		Token:     token,
		UserID:    user.ID,
		Email:     email,
		CreatedAt: now,
		ExpiresAt: now.Add(h.cfg.TTL),
	}
	if err := h.store.CreateMagicLink(ctx, link); err != nil {
		h.logger.Error("store magic link", zap.Error(err))
		response.Internal(c, "failed to start sign-in")
		return
	}

	// The caller always sees the same answer; a failed send is only logged.
	switch err := h.sendLink(ctx, email, buildMagicLinkURL(h.cfg.AppBaseURL, token)); {
	case errors.Is(err, notify.ErrNotDelivered):
		h.logger.Warn("magic link not delivered; email is log-only", zap.String("user_id", user.ID.String()))
	case err != nil:
		h.logger.Error("send magic link", zap.Error(err), zap.String("user_id", user.ID.String()))
	}
	response.OK(c, gin.H{"message": MsgCheckEmail})
}

func (h *Handler) sendLink(ctx context.Context, email, link string) error {
	html, err := h.renderer.MagicLinkHTML(link, h.cfg.TTL)
	if err != nil {
		return err
	}
	return h.mailer.SendEmail(ctx, notify.Email{
		From:    h.cfg.EmailFrom,
		To:      []string{email},
		Subject: h.renderer.MagicLinkSubject(),
		HTML:    html,
	})
}

// ConsumeMagicLink handles POST /auth/magic-link/consume.
func (h *Handler) ConsumeMagicLink(c *gin.Context) {
	var req ConsumeRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Token) == "" {
		response.BadRequest(c, "token is required")
		return
	}
	ctx := c.Request.Context()
	token := strings.TrimSpace(req.Token)

	link, err := h.store.GetMagicLink(ctx, token)
	if err != nil {
		h.logger.Error("load magic link", zap.Error(err))
		response.Internal(c, "failed to sign in")
		return
	}
	if link == nil {
		response.NotFound(c, "magic link not found")
		return
	}
	now := h.now().UTC()
	if link.UsedAt != nil {
		response.BadRequest(c, "magic link already used")
		return
	}
	if now.After(link.ExpiresAt) {
		response.BadRequest(c, "magic link expired")
		return
	}
	marked, err := h.store.MarkMagicLinkUsed(ctx, token, now)
	if err != nil {
		h.logger.Error("mark magic link used", zap.Error(err))
		response.Internal(c, "failed to sign in")
		return
	}
	if !marked {
		response.BadRequest(c, "magic link already used")
		return
	}

	user, err := h.store.GetUserByID(ctx, link.UserID)
	if err != nil || user == nil {
		response.Internal(c, "failed to sign in")
		return
	}
	jwtToken, err := h.jwt.Generate(user.ID, user.Email)
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}
	response.OK(c, TokenResponse{Token: jwtToken, User: *user})
}

// Me handles GET /auth/me.
func (h *Handler) Me(c *gin.Context) {
	user, err := h.store.GetUserByID(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.Internal(c, "failed to load user")
		return
	}
	if user == nil {
		response.NotFound(c, "user not found")
		return
	}
	response.OK(c, user)
}

func buildMagicLinkURL(base, token string) string {
	u, err := url.Parse(strings.TrimRight(base, "/") + "/auth/callback")
	if err != nil {
		return strings.TrimRight(base, "/") + "/auth/callback?token=" + url.QueryEscape(token)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}
