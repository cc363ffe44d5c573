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

	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func TestErrorRendersDetails(t *testing.T) {
	c, w := newContext()
	err := appErrors.Clone(appErrors.ErrScheduleConflict, "teacher already booked").
		WithDetails(map[string]interface{}{"conflicting_booking_id": "b-1"})

	Error(c, err)

	assert.Equal(t, http.StatusConflict, w.Code)
	var body struct {
		Error ErrorBody `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "SCHEDULE_CONFLICT", body.Error.Code)
	assert.Equal(t, "b-1", body.Error.Details["conflicting_booking_id"])
	assert.False(t, body.Error.Retryable)
	assert.Empty(t, w.Header().Get("Retry-After"))
}

func TestErrorMarksStorageFailureRetryable(t *testing.T) {
	c, w := newContext()

	Error(c, appErrors.Storage(errors.New("connection reset"), "storage unavailable"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), `"retryable":true`)
	assert.NotContains(t, w.Body.String(), "connection reset")
}

func TestErrorNormalisesUnknownErrors(t *testing.T) {
	c, w := newContext()

	Error(c, errors.New("boom"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
}
