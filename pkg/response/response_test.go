package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partyweaver/backend/internal/apperr"
)

func TestErrorMapsKinds(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"not found", apperr.NotFound("Event not found"), http.StatusNotFound, "Event not found"},
		{"denied", apperr.PermissionDenied("Only the host can delete this event"), http.StatusForbidden, "Only the host can delete this event"},
		{"validation", apperr.Validation("guest name is required"), http.StatusBadRequest, "guest name is required"},
		{"plain error hides detail", errors.New("pq: connection reset"), http.StatusInternalServerError, "internal error"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			Error(c, tc.err, "internal error")

			assert.Equal(t, tc.wantStatus, w.Code)
			var body Body
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.False(t, body.Success)
			assert.Equal(t, tc.wantMsg, body.Error)
		})
	}
}
