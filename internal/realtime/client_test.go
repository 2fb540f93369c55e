package realtime

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partyweaver/backend/internal/events"
	"github.com/partyweaver/backend/internal/middleware"
	"github.com/partyweaver/backend/internal/models"
	"github.com/partyweaver/backend/internal/policy"
)

type staticFinder struct{ event *models.Event }

func (f staticFinder) GetByID(_ context.Context, id uuid.UUID) (*models.Event, error) {
	if f.event == nil || f.event.ID != id {
		return nil, nil
	}
	return f.event, nil
}

// tokenIsUserID treats the token itself as the user's id.
type tokenIsUserID struct{}

func (tokenIsUserID) UserFromToken(token string) (uuid.UUID, string, error) {
	id, err := uuid.Parse(token)
	if err != nil {
		return uuid.Nil, "", errors.New("bad token")
	}
	return id, "host@example.com", nil
}

func newLiveServer(t *testing.T, hub *Hub, e *models.Event) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/events/:id/live",
		middleware.JWTQuery(tokenIsUserID{}),
		events.RequireAccess(staticFinder{event: e}, policy.ActionViewInvites),
		ServeWs(hub, nil),
	)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server, eventID uuid.UUID, token string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/events/" + eventID.String() + "/live?token=" + token
}

func TestServeWsStreamsRSVPUpdates(t *testing.T) {
	hostID := uuid.New()
	e := &models.Event{ID: uuid.New(), Title: "Launch Party", HostUserID: hostID, CohostUserIDs: []uuid.UUID{}}
	hub := NewHub(nil, nil, nil)
	srv := newLiveServer(t, hub, e)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, e.ID, hostID.String()), nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var hello WSMessage
	require.NoError(t, conn.ReadJSON(&hello))
	assert.Equal(t, EventConnected, hello.Event)
	assert.Equal(t, 1, hub.ViewerCount(e.ID))

	inv := &models.Invite{ID: uuid.New(), EventID: e.ID, GuestName: "Jane", RSVPStatus: models.RSVPMaybe}
	require.NoError(t, hub.RSVPUpdated(context.Background(), inv))

	var update WSMessage
	require.NoError(t, conn.ReadJSON(&update))
	assert.Equal(t, EventRSVPUpdated, update.Event)
	assert.Contains(t, string(update.Data), `"rsvp_status":"maybe"`)
}

func TestServeWsRejectsOutsiders(t *testing.T) {
	e := &models.Event{ID: uuid.New(), HostUserID: uuid.New(), CohostUserIDs: []uuid.UUID{}}
	srv := newLiveServer(t, NewHub(nil, nil, nil), e)

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{name: "missing token", token: "", status: http.StatusUnauthorized},
		{name: "invalid token", token: "nope", status: http.StatusUnauthorized},
		{name: "not a member", token: uuid.NewString(), status: http.StatusNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, e.ID, tc.token), nil)
			require.Error(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}
