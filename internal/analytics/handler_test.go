package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partyweaver/backend/internal/events"
	"github.com/partyweaver/backend/internal/models"
)

type staticCounter struct {
	counts       map[models.RSVPStatus]int
	sent, failed int
	err          error
}

func (s staticCounter) CountRSVPs(context.Context, uuid.UUID) (map[models.RSVPStatus]int, error) {
	return s.counts, s.err
}

func (s staticCounter) CountDeliveries(context.Context, uuid.UUID) (int, int, error) {
	return s.sent, s.failed, nil
}

type fixedViewers int

func (v fixedViewers) ViewerCount(uuid.UUID) int { return int(v) }

func serve(t *testing.T, h *Handler) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	e := &models.Event{ID: uuid.New()}
	r := gin.New()
	r.GET("/events/:id/summary", func(c *gin.Context) {
		c.Set(events.ContextEvent, e)
		c.Next()
	}, h.Summary)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/events/"+e.ID.String()+"/summary", nil))
	return w
}

func TestSummarize(t *testing.T) {
	out := Summarize(map[models.RSVPStatus]int{
		models.RSVPAttending:    3,
		models.RSVPMaybe:        1,
		models.RSVPNotAttending: 2,
		models.RSVPPending:      4,
	})
	assert.Equal(t, 10, out.TotalInvites)
	require.NotNil(t, out.ResponseRate)
	assert.InDelta(t, 0.6, *out.ResponseRate, 1e-9)

	empty := Summarize(nil)
	assert.Zero(t, empty.TotalInvites)
	assert.Nil(t, empty.ResponseRate)
}

func TestSummaryHandler(t *testing.T) {
	h := NewHandler(staticCounter{
		counts: map[models.RSVPStatus]int{models.RSVPAttending: 2, models.RSVPPending: 2},
		sent:   3,
		failed: 1,
	}, fixedViewers(5), nil)

	w := serve(t, h)
	require.Equal(t, http.StatusOK, w.Code)
	var env struct {
		Data SummaryResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, 4, env.Data.TotalInvites)
	assert.Equal(t, 2, env.Data.Attending)
	assert.Equal(t, 3, env.Data.DeliveriesSent)
	assert.Equal(t, 1, env.Data.DeliveriesFailed)
	assert.Equal(t, 5, env.Data.LiveViewers)
}

func TestSummaryHandlerCountFailure(t *testing.T) {
	h := NewHandler(staticCounter{err: errors.New("db down")}, nil, nil)

	w := serve(t, h)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
