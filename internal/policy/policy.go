// Package policy decides what a signed-in user may do with an event.
//
// The host owns the event, co-hosts help run it, and nobody else sees it.
package policy

import (
	"github.com/google/uuid"

	"github.com/partyweaver/backend/internal/apperr"
	"github.com/partyweaver/backend/internal/models"
)

// Action is an operation on an event or its invites.
type Action string

const (
	ActionView          Action = "view"
	ActionEdit          Action = "edit"
	ActionDelete        Action = "delete"
	ActionManageCohosts Action = "manage_cohosts"
	ActionInviteGuests  Action = "invite_guests"
	ActionViewInvites   Action = "view_invites"
)

// Role is the relationship between a user and an event.
type Role string

const (
	RoleNone   Role = "none"
	RoleCohost Role = "cohost"
	RoleHost   Role = "host"
)

var cohostActions = map[Action]bool{
	ActionView:         true,
	ActionEdit:         true,
	ActionInviteGuests: true,
	ActionViewInvites:  true,
}

// RoleOf returns the user's role on the event.
func RoleOf(userID uuid.UUID, event *models.Event) Role {
	switch {
	case event == nil:
		return RoleNone
	case event.IsHost(userID):
		return RoleHost
	case event.IsCohost(userID):
		return RoleCohost
	default:
		return RoleNone
	}
}

// Allowed reports whether role may perform action.
func Allowed(role Role, action Action) bool {
	switch role {
	case RoleHost:
		return true
	case RoleCohost:
		return cohostActions[action]
	default:
		return false
	}
}

// Authorize returns a permission-denied error unless userID may perform action on event.
func Authorize(userID uuid.UUID, event *models.Event, action Action) error {
	if Allowed(RoleOf(userID, event), action) {
		return nil
	}
	return apperr.PermissionDenied(denyMessage(action))
}

func denyMessage(action Action) string {
	switch action {
	case ActionDelete:
		return "only the event host can delete this event"
	case ActionManageCohosts:
		return "only the event host can manage co-hosts"
	case ActionEdit:
		return "you don't have permission to edit this event"
	default:
		return "you don't have permission to view this event"
	}
}
