package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotaflow/field-scheduler/internal/domain/schedule"
)

// 2026-01-05 é uma segunda; America/Sao_Paulo fica em UTC-3.
func mondayAt(hour, min int) time.Time {
	return time.Date(2026, 1, 5, hour, min, 0, 0, time.UTC)
}

func commercialSchedule() *schedule.AccessSchedule {
	return &schedule.AccessSchedule{
		Name: "comercial",
		Windows: map[string][]schedule.TimeWindow{
			"monday": {{Start: "08:00", End: "12:00"}},
		},
	}
}

func TestEnforceAccessWindowAllowed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	// 11:30 UTC = 08:30 local; restam 210 minutos até as 12:00.
	ok := enforceAccessWindow(c, commercialSchedule(), mondayAt(11, 30))
	require.True(t, ok)
	assert.False(t, c.IsAborted())
	assert.Equal(t, "210", w.Header().Get("X-Access-Expires-In"))
}

func TestEnforceAccessWindowBlocked(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	// 16:00 UTC = 13:00 local, fora da janela.
	ok := enforceAccessWindow(c, commercialSchedule(), mondayAt(16, 0))
	require.False(t, ok)
	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "outside_access_window")
	assert.Empty(t, w.Header().Get("X-Access-Expires-In"))
}
