package models

import (
	"time"

	"github.com/google/uuid"
)

// Delivery channels.
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

// DeliveryLog status values.
const (
	DeliveryStatusSent    = "sent"
	DeliveryStatusFailed  = "failed"
	DeliveryStatusSkipped = "skipped"
)

// DeliveryLog records one channel send attempt made for an invite.
type DeliveryLog struct {
	ID           uuid.UUID `json:"id"`
	EventID      uuid.UUID `json:"event_id"`
	InviteID     uuid.UUID `json:"invite_id"`
	Channel      string    `json:"channel"`
	Recipient    string    `json:"recipient"`
	Status       string    `json:"status"`
	ErrorMessage string    `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
