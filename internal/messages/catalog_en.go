package messages

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Locale is the only catalog shipped today.
var Locale = language.AmericanEnglish

func init() {
	lang := Locale

	// Invitation
	message.SetString(lang, "invite.subject", "You're invited to %s!")
	message.SetString(lang, "invite.heading", "You're Invited!")
	message.SetString(lang, "invite.when", "When:")
	message.SetString(lang, "invite.where", "Where:")
	message.SetString(lang, "invite.location_tbd", "Location TBD")
	message.SetString(lang, "invite.greeting", "Hi %s,")
	message.SetString(lang, "invite.body", "You've been invited to join us for this special event. We'd love to have you there!")
	message.SetString(lang, "invite.button", "RSVP Now")
	message.SetString(lang, "invite.copy_link", "Or copy and paste this link:")
	message.SetString(lang, "invite.closing", "Looking forward to celebrating with you!")
	message.SetString(lang, "invite.sms", "Hi %s! You're invited to %s on %s. RSVP here: %s")

	// Sign-in
	message.SetString(lang, "magic_link.subject", "Your Party Weaver sign-in link")
	message.SetString(lang, "magic_link.heading", "Sign in to Party Weaver")
	message.SetString(lang, "magic_link.body", "Click the button below to sign in. The link expires in %d minutes and works once.")
	message.SetString(lang, "magic_link.button", "Sign In")
	message.SetString(lang, "magic_link.ignore", "If you didn't request this email, you can ignore it.")
}
