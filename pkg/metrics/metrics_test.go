package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestGin() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func TestMetricsMiddlewareCountsByRoute(t *testing.T) {
	router := setupTestGin()
	router.Use(MetricsMiddleware())
	router.GET("/boards/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	counter := RequestCount.WithLabelValues("GET", "/boards/:id", "200")
	before := testutil.ToFloat64(counter)

	for _, id := range []string{"a", "b"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/boards/"+id, nil)
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
	}

	assert.Equal(t, before+2, testutil.ToFloat64(counter))
	assert.Equal(t, float64(0), testutil.ToFloat64(ActiveRequests))
}

func TestMetricsMiddlewareGroupsUnmatched(t *testing.T) {
	router := setupTestGin()
	router.Use(MetricsMiddleware())

	counter := RequestCount.WithLabelValues("GET", "unmatched", "404")
	before := testutil.ToFloat64(counter)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/nope", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestRecordTransition(t *testing.T) {
	counter := MembershipTransitions.WithLabelValues(TransitionBan)
	before := testutil.ToFloat64(counter)
	RecordTransition(TransitionBan)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestHandlerExposesCollectors(t *testing.T) {
	RecordTransition(TransitionJoin)

	router := setupTestGin()
	router.GET("/metrics", Handler())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/metrics", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "taskup_membership_transitions_total"))
}
