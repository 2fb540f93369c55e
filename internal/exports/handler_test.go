package exports

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partyweaver/backend/internal/events"
	"github.com/partyweaver/backend/internal/models"
)

type staticInvites struct {
	list []*models.Invite
	err  error
}

func (s staticInvites) ListByEvent(context.Context, uuid.UUID) ([]*models.Invite, error) {
	return s.list, s.err
}

type memObjects struct {
	objects     map[string][]byte
	contentType string
	uploadErr   error
}

func (m *memObjects) UploadExport(_ context.Context, key, contentType string, body io.Reader) error {
	if m.uploadErr != nil {
		return m.uploadErr
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.objects[key] = b
	m.contentType = contentType
	return nil
}

func (m *memObjects) PresignExportURL(_ context.Context, key string) (string, error) {
	return "https://exports.example.com/" + key + "?sig=x", nil
}

func str(s string) *string { return &s }

var exportedAt = time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC)

func guestList() []*models.Invite {
	responded := time.Date(2025, 5, 20, 12, 0, 0, 0, time.UTC)
	return []*models.Invite{
		{GuestName: "Jane", Email: str("jane@example.com"), RSVPStatus: models.RSVPAttending, RespondedAt: &responded},
		{GuestName: "Bob, Jr.", PhoneNumber: str("+15551234567"), RSVPStatus: models.RSVPPending},
	}
}

func serve(t *testing.T, h *Handler, e *models.Event) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/events/:id/guest-list/export", func(c *gin.Context) {
		c.Set(events.ContextEvent, e)
		c.Next()
	}, h.GuestList)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/events/"+e.ID.String()+"/guest-list/export", nil))
	return w
}

func TestWriteGuestList(t *testing.T) {
	body, err := WriteGuestList(guestList())
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(string(body))).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"name", "email", "phone", "status", "responded_at"},
		{"Jane", "jane@example.com", "", "attending", "2025-05-20T12:00:00Z"},
		{"Bob, Jr.", "", "+15551234567", "pending", ""},
	}, rows)
}

func TestWriteGuestListNeutralizesFormulas(t *testing.T) {
	invites := []*models.Invite{
		{GuestName: "=HYPERLINK(\"http://evil.example\",\"x\")", Email: str("@SUM(1+1)@example.com"), RSVPStatus: models.RSVPPending},
		{GuestName: "-2+3", PhoneNumber: str("+1 (555) 123"), RSVPStatus: models.RSVPMaybe},
		{GuestName: "+cmd", PhoneNumber: str("+15551234567"), RSVPStatus: models.RSVPPending},
	}
	body, err := WriteGuestList(invites)
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(string(body))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, `'=HYPERLINK("http://evil.example","x")`, rows[1][0])
	assert.Equal(t, "'@SUM(1+1)@example.com", rows[1][1])
	assert.Equal(t, "'-2+3", rows[2][0])
	assert.Equal(t, "'+1 (555) 123", rows[2][2])
	assert.Equal(t, "'+cmd", rows[3][0])
	assert.Equal(t, "+15551234567", rows[3][2])
}

func TestSafeCell(t *testing.T) {
	tests := map[string]string{
		"":             "",
		"Jane":         "Jane",
		"=1+1":         "'=1+1",
		"+":            "'+",
		"+15551234567": "+15551234567",
		"\tcmd":        "'\tcmd",
	}
	for in, want := range tests {
		assert.Equal(t, want, safeCell(in), "%q", in)
	}
}

func TestGuestListUploadsAndSigns(t *testing.T) {
	e := &models.Event{ID: uuid.New()}
	objects := &memObjects{objects: map[string][]byte{}}
	h := NewHandler(staticInvites{list: guestList()}, objects, nil)
	h.now = func() time.Time { return exportedAt }

	w := serve(t, h, e)
	require.Equal(t, http.StatusCreated, w.Code)

	var env struct {
		Data Export `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	wantKey := "exports/" + e.ID.String() + "/1748856600.csv"
	assert.Equal(t, wantKey, env.Data.Key)
	assert.Equal(t, 2, env.Data.Guests)
	assert.Contains(t, env.Data.URL, wantKey)

	require.Contains(t, objects.objects, wantKey)
	assert.True(t, strings.HasPrefix(string(objects.objects[wantKey]), "name,email,phone,status,responded_at\n"))
	assert.Equal(t, "text/csv; charset=utf-8", objects.contentType)
}

func TestGuestListNotConfigured(t *testing.T) {
	h := NewHandler(staticInvites{}, nil, nil)

	w := serve(t, h, &models.Event{ID: uuid.New()})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestGuestListFailures(t *testing.T) {
	tests := []struct {
		name    string
		invites staticInvites
		objects *memObjects
	}{
		{name: "list fails", invites: staticInvites{err: errors.New("db down")}, objects: &memObjects{objects: map[string][]byte{}}},
		{name: "upload fails", invites: staticInvites{list: guestList()}, objects: &memObjects{objects: map[string][]byte{}, uploadErr: errors.New("denied")}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := serve(t, NewHandler(tc.invites, tc.objects, nil), &models.Event{ID: uuid.New()})
			assert.Equal(t, http.StatusInternalServerError, w.Code)
		})
	}
}
