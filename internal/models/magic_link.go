package models

import (
	"time"

	"github.com/google/uuid"
)

// MagicLink is a single-use, time-limited sign-in token.
type MagicLink struct {
	Token     string     `json:"-"`
	UserID    uuid.UUID  `json:"user_id"`
	Email     string     `json:"email"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt time.Time  `json:"expires_at"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
}
