package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a host account. Sign-in is passwordless.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
