package models

import (
	"time"

	"github.com/google/uuid"
)

// RSVPStatus is a guest's response to an invite.
type RSVPStatus string

const (
	RSVPPending      RSVPStatus = "pending"
	RSVPAttending    RSVPStatus = "attending"
	RSVPMaybe        RSVPStatus = "maybe"
	RSVPNotAttending RSVPStatus = "not_attending"
)

// Responded reports whether the status is one a guest can choose.
func (s RSVPStatus) Responded() bool {
	switch s {
	case RSVPAttending, RSVPMaybe, RSVPNotAttending:
		return true
	}
	return false
}

// Label is the human-readable status.
func (s RSVPStatus) Label() string {
	switch s {
	case RSVPAttending:
		return "Attending"
	case RSVPMaybe:
		return "Maybe"
	case RSVPNotAttending:
		return "Not Attending"
	default:
		return "Pending"
	}
}

// Invite is a per-guest invitation. InviteToken authenticates RSVP actions.
type Invite struct {
	ID          uuid.UUID  `json:"id"`
	EventID     uuid.UUID  `json:"event_id"`
	GuestName   string     `json:"guest_name"`
	Email       *string    `json:"email"`
	PhoneNumber *string    `json:"phone_number"`
	InviteToken string     `json:"invite_token"`
	RSVPStatus  RSVPStatus `json:"rsvp_status"`
	RespondedAt *time.Time `json:"responded_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

// InviteWithEvent is an invite joined with the event fields shown on the RSVP page.
type InviteWithEvent struct {
	Invite
	Event InviteEvent `json:"events"`
}

// InviteEvent is the subset of an event exposed to guests.
type InviteEvent struct {
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Location    *string   `json:"location"`
	StartTime   time.Time `json:"start_time"`
}
