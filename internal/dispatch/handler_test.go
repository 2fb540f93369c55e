package dispatch

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partyweaver/backend/internal/middleware"
)

func newTestRouter(svc Dispatcher) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(svc, launchParty(), nil)
	fn := r.Group("/functions/v1", middleware.FunctionCORS())
	fn.POST("/send-invitation", middleware.JWT(tokenIsUserID{}), h.SendInvitation)
	fn.OPTIONS("/send-invitation", h.Preflight)
	return r
}

func post(t *testing.T, r http.Handler, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	return postAs(t, r, hostID.String(), body)
}

func postAs(t *testing.T, r http.Handler, token, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/functions/v1/send-invitation", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return w, out
}

func TestSendInvitationLaunchParty(t *testing.T) {
	mailer := &fakeMailer{}
	sms := &fakeSMS{}
	r := newTestRouter(newTestService(mailer, sms))

	w, out := post(t, r, `{"eventId":"`+launchPartyID.String()+`","guestName":"Jane","email":"jane@example.com","inviteToken":"abc123"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]any{"success": true, "message": "Invitation sent successfully"}, out)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	require.Len(t, mailer.sent, 1)
	assert.Contains(t, mailer.sent[0].HTML, "Launch Party")
	assert.Contains(t, mailer.sent[0].HTML, "/rsvp/abc123")
	assert.Empty(t, sms.sent)
}

func TestSendInvitationPhoneWithoutCredentials(t *testing.T) {
	mailer := &fakeMailer{}
	r := newTestRouter(newTestService(mailer, nil))

	w, out := post(t, r, `{"eventId":"`+launchPartyID.String()+`","guestName":"Sam","phoneNumber":"+15551234567","inviteToken":"t"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, map[string]any{"error": "SMS service not configured"}, out)
	assert.Empty(t, mailer.sent)
}

func TestSendInvitationErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		sms        *fakeSMS
		wantStatus int
		wantError  string
	}{
		{"unknown event", `{"eventId":"00000000-0000-0000-0000-000000000000","guestName":"A","email":"a@example.com","inviteToken":"t"}`, &fakeSMS{}, http.StatusNotFound, "Event not found"},
		{"malformed event id", `{"eventId":"nope","guestName":"A","inviteToken":"t"}`, &fakeSMS{}, http.StatusNotFound, "Event not found"},
		{"malformed body", `{"eventId":`, &fakeSMS{}, http.StatusInternalServerError, "Failed to send invitation"},
		{"gateway rejects", `{"eventId":"` + launchPartyID.String() + `","guestName":"A","phoneNumber":"1","inviteToken":"t"}`, &fakeSMS{err: assert.AnError}, http.StatusInternalServerError, "Failed to send SMS"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRouter(newTestService(&fakeMailer{}, tc.sms))
			w, out := post(t, r, tc.body)
			assert.Equal(t, tc.wantStatus, w.Code)
			assert.Equal(t, tc.wantError, out["error"])
		})
	}
}

func TestSendInvitationRequiresEventMember(t *testing.T) {
	body := `{"eventId":"` + launchPartyID.String() + `","guestName":"Jane","email":"jane@example.com","phoneNumber":"+15551234567","inviteToken":"abc123"}`
	tests := []struct {
		name       string
		token      string
		wantStatus int
		wantSends  int
	}{
		{name: "no token", token: "", wantStatus: http.StatusUnauthorized},
		{name: "invalid token", token: "nope", wantStatus: http.StatusUnauthorized},
		{name: "not a member", token: uuid.NewString(), wantStatus: http.StatusNotFound},
		{name: "cohost", token: cohostID.String(), wantStatus: http.StatusOK, wantSends: 1},
		{name: "host", token: hostID.String(), wantStatus: http.StatusOK, wantSends: 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mailer, sms := &fakeMailer{}, &fakeSMS{}
			r := newTestRouter(newTestService(mailer, sms))

			w, out := postAs(t, r, tc.token, body)
			assert.Equal(t, tc.wantStatus, w.Code)
			assert.Len(t, mailer.sent, tc.wantSends)
			assert.Len(t, sms.sent, tc.wantSends)
			if tc.wantStatus == http.StatusNotFound {
				assert.Equal(t, "Event not found", out["error"])
			}
		})
	}
}

func TestSendInvitationEventLookupFails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mailer := &fakeMailer{}
	r := gin.New()
	h := NewHandler(newTestService(mailer, nil), failingEvents{}, nil)
	r.POST("/functions/v1/send-invitation", middleware.JWT(tokenIsUserID{}), h.SendInvitation)

	w, out := post(t, r, `{"eventId":"`+launchPartyID.String()+`","guestName":"Jane","email":"jane@example.com","inviteToken":"t"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to send invitation", out["error"])
	assert.Empty(t, mailer.sent)
}

func TestSendInvitationPreflight(t *testing.T) {
	r := newTestRouter(newTestService(&fakeMailer{}, nil))
	req := httptest.NewRequest(http.MethodOptions, "/functions/v1/send-invitation", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "authorization, x-client-info, apikey, content-type", w.Header().Get("Access-Control-Allow-Headers"))
}
