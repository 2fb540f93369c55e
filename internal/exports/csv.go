package exports

import (
	"bytes"
	"encoding/csv"
	"strings"
	"time"

	"github.com/partyweaver/backend/internal/models"
)

// Header is the first row of every guest list export.
var Header = []string{"name", "email", "phone", "status", "responded_at"}

// WriteGuestList renders invites as CSV. Missing values are empty cells and times are RFC3339 UTC.
func WriteGuestList(invites []*models.Invite) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(Header); err != nil {
		return nil, err
	}
	for _, inv := range invites {
		row := []string{
			safeCell(inv.GuestName),
			safeCell(deref(inv.Email)),
			safeCell(deref(inv.PhoneNumber)),
			string(inv.RSVPStatus),
			"",
		}
		if inv.RespondedAt != nil {
			row[4] = inv.RespondedAt.UTC().Format(time.RFC3339)
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// safeCell prefixes values a spreadsheet would evaluate as a formula with a quote.
// An international phone number ("+" then digits) is left as is.
func safeCell(v string) string {
	if v == "" || !strings.ContainsRune("=+-@\t\r", rune(v[0])) {
		return v
	}
	if v[0] == '+' && len(v) > 1 && strings.Trim(v[1:], "0123456789") == "" {
		return v
	}
	return "'" + v
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
