package models

import (
	"time"

	"github.com/google/uuid"
)

// Event is a hosted gathering guests are invited to.
type Event struct {
	ID            uuid.UUID   `json:"id"`
	Title         string      `json:"title"`
	Description   *string     `json:"description"`
	Location      *string     `json:"location"`
	StartTime     time.Time   `json:"start_time"`
	HostUserID    uuid.UUID   `json:"host_user_id"`
	CohostUserIDs []uuid.UUID `json:"cohost_user_ids"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// IsHost reports whether userID owns the event.
func (e *Event) IsHost(userID uuid.UUID) bool {
	return e.HostUserID == userID
}

// IsCohost reports whether userID is in the co-host list.
func (e *Event) IsCohost(userID uuid.UUID) bool {
	for _, id := range e.CohostUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// LocationOr returns the location, or fallback when unset or blank.
func (e *Event) LocationOr(fallback string) string {
	if e.Location == nil || *e.Location == "" {
		return fallback
	}
	return *e.Location
}
