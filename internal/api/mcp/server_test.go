package mcp

import (
	"bytes"
	"context"
	stdjson "encoding/json"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shahlaukik/money-manager-mcp/internal/shared/errs"
	"github.com/shahlaukik/money-manager-mcp/internal/shared/types"
)

type fakeRegistry struct {
	calls []string
	args  map[string]interface{}
}

func (f *fakeRegistry) Tools() []types.Tool {
	return []types.Tool{
		{
			ID:          "transaction_delete",
			Description: "Delete transactions",
			Parameters: []types.Parameter{
				{Name: "ids", Type: "array", Items: "string", Required: true},
			},
		},
		{
			ID:          "card_create",
			Description: "Add a card",
			Parameters: []types.Parameter{
				{Name: "name", Type: "string", Required: true},
				{Name: "paymentDay", Type: "integer", Minimum: types.Float(1), Maximum: types.Float(31)},
				{Name: "kind", Type: "integer", Enum: []any{0, 1}},
			},
		},
	}
}

func (f *fakeRegistry) Execute(_ context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) *types.Result {
	f.calls = append(f.calls, toolID)
	f.args = params
	if toolID == "fail" {
		p := errs.New(errs.CategoryNetwork, errs.CodeTimeout, "upstream request timed out").Payload()
		return &types.Result{Success: false, Error: &p}
	}
	return &types.Result{Success: true, Data: map[string]any{"ok": true, "transport": appCtx.Transport}}
}

func newServer() (*Server, *fakeRegistry) {
	reg := &fakeRegistry{}
	return NewServer(reg, ServerInfo{Name: "money-manager", Version: "test"}, nil), reg
}

func decodeResponse(t *testing.T, raw []byte) map[string]any {
	t.Helper()
	require.NotNil(t, raw)
	var out map[string]any
	require.NoError(t, stdjson.Unmarshal(raw, &out))
	return out
}

func TestInitialize(t *testing.T) {
	s, _ := newServer()
	resp := decodeResponse(t, s.Handle(context.Background(),
		[]byte(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-01-01"}}`)))

	assert.Equal(t, float64(1), resp["id"])
	res := resp["result"].(map[string]any)
	assert.Equal(t, ProtocolVersion, res["protocolVersion"])
	assert.Equal(t, "money-manager", res["serverInfo"].(map[string]any)["name"])
	assert.Contains(t, res["capabilities"], "tools")
}

func TestNotificationsGetNoResponse(t *testing.T) {
	s, _ := newServer()
	assert.Nil(t, s.Handle(context.Background(), []byte(`{"jsonrpc":"2.0","method":"notifications/initialized"}`)))
	assert.Nil(t, s.Handle(context.Background(), []byte(`{"jsonrpc":"2.0","method":"tools/list"}`)))
}

func TestPing(t *testing.T) {
	s, _ := newServer()
	resp := decodeResponse(t, s.Handle(context.Background(), []byte(`{"jsonrpc":"2.0","id":"p","method":"ping"}`)))
	assert.Equal(t, "p", resp["id"])
	assert.Equal(t, map[string]any{}, resp["result"])
}

func TestListTools(t *testing.T) {
	s, _ := newServer()
	resp := decodeResponse(t, s.Handle(context.Background(), []byte(`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`)))

	tools := resp["result"].(map[string]any)["tools"].([]any)
	require.Len(t, tools, 2)

	del := tools[0].(map[string]any)
	assert.Equal(t, "transaction_delete", del["name"])
	schema := del["inputSchema"].(map[string]any)
	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, []any{"ids"}, schema["required"])
	ids := schema["properties"].(map[string]any)["ids"].(map[string]any)
	assert.Equal(t, "array", ids["type"])
	assert.Equal(t, map[string]any{"type": "string"}, ids["items"])
}

func TestInputSchema(t *testing.T) {
	reg := &fakeRegistry{}
	schema := InputSchema(reg.Tools()[1])

	props := schema["properties"].(map[string]any)
	day := props["paymentDay"].(map[string]any)
	assert.Equal(t, 1.0, day["minimum"])
	assert.Equal(t, 31.0, day["maximum"])
	assert.Equal(t, []any{0, 1}, props["kind"].(map[string]any)["enum"])
	assert.Equal(t, []string{"name"}, schema["required"])
}

func TestCallTool(t *testing.T) {
	s, reg := newServer()
	resp := decodeResponse(t, s.Handle(context.Background(),
		[]byte(`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"card_create","arguments":{"name":"Visa"}}}`)))

	assert.Equal(t, []string{"card_create"}, reg.calls)
	assert.Equal(t, map[string]interface{}{"name": "Visa"}, reg.args)

	res := resp["result"].(map[string]any)
	assert.Equal(t, false, res["isError"])
	item := res["content"].([]any)[0].(map[string]any)
	assert.Equal(t, "text", item["type"])
	assert.JSONEq(t, `{"ok":true,"transport":"stdio"}`, item["text"].(string))
}

func TestCallToolError(t *testing.T) {
	s, _ := newServer()
	resp := decodeResponse(t, s.Handle(context.Background(),
		[]byte(`{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"fail"}}`)))

	res := resp["result"].(map[string]any)
	assert.Equal(t, true, res["isError"])

	var body struct {
		Error errs.Payload `json:"error"`
	}
	text := res["content"].([]any)[0].(map[string]any)["text"].(string)
	require.NoError(t, stdjson.Unmarshal([]byte(text), &body))
	assert.Equal(t, errs.CodeTimeout, body.Error.Code)
	assert.Equal(t, errs.CategoryNetwork, body.Error.Category)
	assert.True(t, body.Error.Retryable)
}

func TestProtocolErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		code float64
	}{
		{"parse error", `{"jsonrpc":`, CodeParseError},
		{"unknown method", `{"jsonrpc":"2.0","id":1,"method":"resources/list"}`, CodeMethodNotFound},
		{"wrong version", `{"jsonrpc":"1.0","id":1,"method":"ping"}`, CodeInvalidRequest},
		{"missing params", `{"jsonrpc":"2.0","id":1,"method":"tools/call"}`, CodeInvalidParams},
		{"missing name", `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"arguments":{}}}`, CodeInvalidParams},
		{"arguments not object", `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"x","arguments":[1]}}`, CodeInvalidParams},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, reg := newServer()
			resp := decodeResponse(t, s.Handle(context.Background(), []byte(tt.in)))
			rpcErr := resp["error"].(map[string]any)
			assert.Equal(t, tt.code, rpcErr["code"])
			assert.Empty(t, reg.calls)
		})
	}
}

func TestBatch(t *testing.T) {
	s, _ := newServer()
	raw := s.Handle(context.Background(), []byte(`[
		{"jsonrpc":"2.0","id":1,"method":"ping"},
		{"jsonrpc":"2.0","method":"notifications/initialized"},
		{"jsonrpc":"2.0","id":2,"method":"nope"}
	]`))

	var out []map[string]any
	require.NoError(t, stdjson.Unmarshal(raw, &out))
	require.Len(t, out, 2)
	assert.Equal(t, float64(1), out[0]["id"])
	assert.Contains(t, out[1], "error")
}

func TestServe(t *testing.T) {
	s, _ := newServer()
	in := strings.NewReader(strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		``,
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"card_create","arguments":{"name":"Visa"}}}`,
	}, "\n"))
	var out bytes.Buffer

	require.NoError(t, s.Serve(context.Background(), in, &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, float64(1), decodeResponse(t, []byte(lines[0]))["id"])
	assert.Equal(t, float64(2), decodeResponse(t, []byte(lines[1]))["id"])
}

func TestServeStopsOnCancel(t *testing.T) {
	s, reg := newServer()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Serve(ctx, strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"x"}}`+"\n"), &bytes.Buffer{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, reg.calls)
}

func TestServeReturnsOnCancelWhileReadBlocked(t *testing.T) {
	s, _ := newServer()
	in, stdin := io.Pipe()
	defer stdin.Close()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, in, &bytes.Buffer{}) }()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}
}

func TestServeAnswersLinesFromStream(t *testing.T) {
	s, _ := newServer()
	in, stdin := io.Pipe()
	var out syncBuffer
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, in, &out) }()

	_, err := io.WriteString(stdin, `{"jsonrpc":"2.0","id":7,"method":"ping"}`+"\n")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return strings.Contains(out.String(), `"id":7`) }, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, stdin.Close())
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return at end of input")
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
