package monitoring

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsIsIsolated(t *testing.T) {
	a := NewMetrics()
	b := NewMetrics()

	a.RecordToolCall("init_get_data", time.Millisecond, "", "")
	assert.Equal(t, 1.0, testutil.ToFloat64(a.ToolCalls.WithLabelValues("init_get_data", "success")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.ToolCalls.WithLabelValues("init_get_data", "success")))
}

func TestRecordToolCall(t *testing.T) {
	m := NewMetrics()

	m.RecordToolCall("transaction_list", 10*time.Millisecond, "", "")
	m.RecordToolCall("transaction_list", 10*time.Millisecond, "NETWORK", "NETWORK_TIMEOUT")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ToolCalls.WithLabelValues("transaction_list", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ToolCalls.WithLabelValues("transaction_list", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ToolErrors.WithLabelValues("transaction_list", "NETWORK", "NETWORK_TIMEOUT")))

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.ToolCalls)
	assert.Equal(t, int64(1), snap.ToolErrors)
}

func TestUpstreamAndSession(t *testing.T) {
	m := NewMetrics()

	m.RecordUpstream("GET", "/getInitData", "success", time.Millisecond)
	m.RecordRetry("/getInitData", "NETWORK_CONNECTION_REFUSED")
	m.RecordSessionSave(nil, 2)
	m.RecordSessionSave(errors.New("disk full"), 2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.UpstreamRequests.WithLabelValues("GET", "/getInitData", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UpstreamRetries.WithLabelValues("/getInitData", "NETWORK_CONNECTION_REFUSED")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SessionCookies))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionSaves.WithLabelValues("error")))

	m.RecordSessionClear()
	assert.Equal(t, 0.0, testutil.ToFloat64(m.SessionCookies))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionClears))

	snap := m.Snapshot()
	assert.Equal(t, int64(1), snap.UpstreamRequests)
	assert.Equal(t, int64(1), snap.UpstreamRetries)
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordToolCall("x", time.Second, "", "")
		m.RecordUpstream("GET", "/x", "success", time.Second)
		m.RecordRetry("/x", "NETWORK_ERROR")
		m.RecordSessionSave(nil, 1)
		m.RecordSessionClear()
		m.RecordHTTPRequest("GET", "/", "200", time.Second)
		NewTimer(m, "x").Stop("", "")
	})
	assert.Equal(t, Snapshot{}, m.Snapshot())
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()

	router := gin.New()
	router.Use(Middleware(m))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/metrics", gin.WrapH(m.Handler()))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/health", "200")))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, "money_manager_mcp_http_requests_total"))
	assert.True(t, strings.Contains(body, "money_manager_mcp_uptime_seconds"))
}
