package server

import (
	"bytes"
	"context"
	stdjson "encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shahlaukik/money-manager-mcp/internal/infrastructure/config"
)

func newTestServer(t *testing.T, upstream *httptest.Server) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.Upstream.BaseURL = upstream.URL
	cfg.Upstream.SessionFile = filepath.Join(t.TempDir(), "session.json")
	cfg.Upstream.MaxRetries = 0
	cfg.Logging.Development = true

	srv, err := NewServer(cfg, nil, "test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })
	return srv
}

func TestServerRegistersAllTools(t *testing.T) {
	upstream := httptest.NewServer(http.NotFoundHandler())
	defer upstream.Close()

	srv := newTestServer(t, upstream)
	assert.Len(t, srv.Registry().Tools(), 21)
}

func TestHTTPTransportEndToEnd(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/moneyBook/getInitData", r.URL.Path)
		http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "abc", Path: "/"})
		_, _ = w.Write([]byte(`{assets:[{assetId:'1',assetNm:'Cash'}]}`))
	}))
	defer upstream.Close()

	srv := newTestServer(t, upstream)

	body := `{"jsonrpc":"2.0","id":7,"method":"tools/call","params":{"name":"init_get_data","arguments":{}}}`
	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		ID     int `json:"id"`
		Result struct {
			IsError bool `json:"isError"`
			Content []struct {
				Text string `json:"text"`
			} `json:"content"`
		} `json:"result"`
	}
	require.NoError(t, stdjson.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 7, resp.ID)
	assert.False(t, resp.Result.IsError)
	require.Len(t, resp.Result.Content, 1)
	assert.Contains(t, resp.Result.Content[0].Text, `"Cash"`)

	health := httptest.NewRecorder()
	srv.Handler().ServeHTTP(health, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, health.Code)
	assert.Contains(t, health.Body.String(), `"cookies":1`)
}

func TestRunStdio(t *testing.T) {
	upstream := httptest.NewServer(http.NotFoundHandler())
	defer upstream.Close()

	srv := newTestServer(t, upstream)

	in := strings.NewReader(strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"asset_list","arguments":{}}}`,
	}, "\n"))
	var out bytes.Buffer

	require.NoError(t, srv.RunStdio(context.Background(), in, &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"money-manager"`)
	assert.Contains(t, lines[1], `"isError":true`)
	assert.Contains(t, lines[1], "API_CLIENT_ERROR")
}

func TestRunHTTPStopsOnCancel(t *testing.T) {
	upstream := httptest.NewServer(http.NotFoundHandler())
	defer upstream.Close()

	srv := newTestServer(t, upstream)
	srv.config.Server.Port = "0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.RunHTTP(ctx) }()
	cancel()

	assert.NoError(t, <-done)
}
