package http

import (
	"bytes"
	"context"
	stdjson "encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shahlaukik/money-manager-mcp/internal/infrastructure/monitoring"
	"github.com/shahlaukik/money-manager-mcp/internal/shared/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type echoHandler struct {
	got []byte
}

func (e *echoHandler) Handle(_ context.Context, raw []byte) []byte {
	e.got = raw
	if bytes.Contains(raw, []byte(`"id"`)) {
		return []byte(`{"jsonrpc":"2.0","id":1,"result":{}}`)
	}
	return nil
}

type stubCatalog struct{}

func (stubCatalog) Tools() []types.Tool {
	return []types.Tool{{ID: "asset_list", Name: "List assets"}}
}

func (stubCatalog) Stats() map[string]interface{} {
	return map[string]interface{}{"total_tools": 1}
}

type stubSession struct{}

func (stubSession) Len() int         { return 2 }
func (stubSession) Persistent() bool { return true }

func newRouter(t *testing.T) (*gin.Engine, *echoHandler) {
	t.Helper()
	mcp := &echoHandler{}
	h := NewHandlers(Deps{
		MCP:     mcp,
		Catalog: stubCatalog{},
		Session: stubSession{},
		BaseURL: "http://192.168.0.10:8888",
		Version: "test",
		Metrics: monitoring.NewMetrics(),
	})
	r := gin.New()
	h.Register(r)
	return r, mcp
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestMCPRequest(t *testing.T) {
	r, mcp := newRouter(t)

	w := do(r, http.MethodPost, "/mcp", `{"jsonrpc":"2.0","id":1,"method":"ping"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":1,"result":{}}`, w.Body.String())
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":1,"method":"ping"}`, string(mcp.got))
	assert.Len(t, w.Header().Get(SessionHeader), 36)
}

func TestMCPSessionHeaderEchoed(t *testing.T) {
	r, _ := newRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}`))
	req.Header.Set(SessionHeader, "client-session")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "client-session", w.Header().Get(SessionHeader))
}

func TestMCPNotificationAccepted(t *testing.T) {
	r, _ := newRouter(t)

	w := do(r, http.MethodPost, "/mcp", `{"jsonrpc":"2.0","method":"notifications/initialized"}`)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestMCPBodyTooLarge(t *testing.T) {
	r, mcp := newRouter(t)

	w := do(r, http.MethodPost, "/mcp", strings.Repeat("x", maxBodySize+1))

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Nil(t, mcp.got)
}

func TestHealth(t *testing.T) {
	r, _ := newRouter(t)

	w := do(r, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, stdjson.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "http://192.168.0.10:8888", body["upstream"].(map[string]any)["base_url"])
	assert.Equal(t, float64(2), body["session"].(map[string]any)["cookies"])
	assert.Contains(t, body["metrics"], "tool_calls")
}

func TestListTools(t *testing.T) {
	r, _ := newRouter(t)

	w := do(r, http.MethodGet, "/tools", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"asset_list"`)
	assert.Contains(t, w.Body.String(), `"count":1`)
}

func TestMetricsEndpoint(t *testing.T) {
	r, _ := newRouter(t)

	w := do(r, http.MethodGet, "/metrics", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
}

func TestRoot(t *testing.T) {
	r, _ := newRouter(t)

	w := do(r, http.MethodGet, "/", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"endpoint":"/mcp"`)
}
