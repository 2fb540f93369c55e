// Package messages renders the copy of invitation and sign-in messages.
package messages

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"golang.org/x/text/message"
)

// DateLayout is the en-US long form, e.g. "Sunday, June 1, 2025 at 6:00 PM".
const DateLayout = "Monday, January 2, 2006 at 3:04 PM"

// Invitation is everything needed to render one invitation.
type Invitation struct {
	GuestName  string
	EventTitle string
	Location   string
	StartTime  time.Time
	RSVPURL    string
}

// Renderer produces localized message copy.
type Renderer struct {
	printer *message.Printer
	loc     *time.Location
}

// NewRenderer creates a renderer that shows times in loc (UTC when nil).
func NewRenderer(loc *time.Location) *Renderer {
	if loc == nil {
		loc = time.UTC
	}
	return &Renderer{printer: message.NewPrinter(Locale), loc: loc}
}

// FormatDate renders t in the display time zone.
func (r *Renderer) FormatDate(t time.Time) string {
	return t.In(r.loc).Format(DateLayout)
}

// InvitationSubject is the email subject line.
func (r *Renderer) InvitationSubject(inv Invitation) string {
	return r.printer.Sprintf("invite.subject", inv.EventTitle)
}

// InvitationSMS is the text message body.
func (r *Renderer) InvitationSMS(inv Invitation) string {
	return r.printer.Sprintf("invite.sms", inv.GuestName, inv.EventTitle, r.FormatDate(inv.StartTime), inv.RSVPURL)
}

// InvitationHTML is the email body. An empty location shows the TBD placeholder.
func (r *Renderer) InvitationHTML(inv Invitation) (string, error) {
	location := inv.Location
	if location == "" {
		location = r.printer.Sprintf("invite.location_tbd")
	}
	return execute(invitationTmpl, map[string]string{
		"Heading":   r.printer.Sprintf("invite.heading"),
		"Title":     inv.EventTitle,
		"WhenLabel": r.printer.Sprintf("invite.when"),
		"When":      r.FormatDate(inv.StartTime),
		"WhereLbl":  r.printer.Sprintf("invite.where"),
		"Where":     location,
		"Greeting":  r.printer.Sprintf("invite.greeting", inv.GuestName),
		"Body":      r.printer.Sprintf("invite.body"),
		"URL":       inv.RSVPURL,
		"Button":    r.printer.Sprintf("invite.button"),
		"CopyLink":  r.printer.Sprintf("invite.copy_link"),
		"Closing":   r.printer.Sprintf("invite.closing"),
	})
}

// MagicLinkSubject is the sign-in email subject.
func (r *Renderer) MagicLinkSubject() string {
	return r.printer.Sprintf("magic_link.subject")
}

// MagicLinkHTML is the sign-in email body.
func (r *Renderer) MagicLinkHTML(link string, ttl time.Duration) (string, error) {
	return execute(magicLinkTmpl, map[string]string{
		"Heading": r.printer.Sprintf("magic_link.heading"),
		"Body":    r.printer.Sprintf("magic_link.body", int(ttl.Minutes())),
		"URL":     link,
		"Button":  r.printer.Sprintf("magic_link.button"),
		"Ignore":  r.printer.Sprintf("magic_link.ignore"),
	})
}

func execute(t *template.Template, data map[string]string) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", t.Name(), err)
	}
	return buf.String(), nil
}

var invitationTmpl = template.Must(template.New("invitation").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h1 style="color: #333;">{{.Heading}}</h1>
  <h2 style="color: #6366f1;">{{.Title}}</h2>
  <p><strong>{{.WhenLabel}}</strong> {{.When}}</p>
  <p><strong>{{.WhereLbl}}</strong> {{.Where}}</p>
  <p>{{.Greeting}}</p>
  <p>{{.Body}}</p>
  <div style="text-align: center; margin: 30px 0;">
    <a href="{{.URL}}" style="background-color: #6366f1; color: white; padding: 12px 24px; text-decoration: none; border-radius: 8px; display: inline-block;">{{.Button}}</a>
  </div>
  <p>{{.CopyLink}} {{.URL}}</p>
  <p>{{.Closing}}</p>
</div>`))

var magicLinkTmpl = template.Must(template.New("magic_link").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h1 style="color: #333;">{{.Heading}}</h1>
  <p>{{.Body}}</p>
  <div style="text-align: center; margin: 30px 0;">
    <a href="{{.URL}}" style="background-color: #6366f1; color: white; padding: 12px 24px; text-decoration: none; border-radius: 8px; display: inline-block;">{{.Button}}</a>
  </div>
  <p>{{.Ignore}}</p>
</div>`))
