package mcp

import (
	"bufio"
	"bytes"
	"context"
	stdjson "encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/shahlaukik/money-manager-mcp/internal/infrastructure/logging"
	"github.com/shahlaukik/money-manager-mcp/internal/shared/types"
)

var json = sonic.ConfigStd

// maxLineSize bounds one stdio frame
const maxLineSize = 16 * 1024 * 1024

// Registry is the tool catalog the server exposes
type Registry interface {
	Tools() []types.Tool
	Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) *types.Result
}

// Server answers MCP JSON-RPC messages
type Server struct {
	registry     Registry
	info         ServerInfo
	instructions string
	transport    string
	log          *logging.Logger
}

// Option configures a Server
type Option func(*Server)

// WithInstructions sets the instructions returned by initialize
func WithInstructions(text string) Option {
	return func(s *Server) { s.instructions = text }
}

// WithTransport names the transport in tool call contexts
func WithTransport(name string) Option {
	return func(s *Server) { s.transport = name }
}

// NewServer creates an MCP server over a registry
func NewServer(registry Registry, info ServerInfo, log *logging.Logger, opts ...Option) *Server {
	if log == nil {
		log = logging.NewNop()
	}
	s := &Server{
		registry:  registry,
		info:      info,
		transport: "stdio",
		log:       log.Named("mcp"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Serve reads newline-delimited messages from r and writes responses to w
// until r is exhausted or ctx is done. Messages are handled one at a time.
// A cancelled ctx returns immediately even while a read is blocked; the
// reading goroutine then exits with the next line or EOF.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	lines := make(chan []byte)
	readErr := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
		for scanner.Scan() {
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}
			select {
			case lines <- bytes.Clone(line):
			case <-done:
				return
			}
		}
		readErr <- scanner.Err()
	}()

	out := bufio.NewWriter(w)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		var (
			line []byte
			ok   bool
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok = <-lines:
		}
		if !ok {
			break
		}

		resp := s.Handle(ctx, line)
		if resp == nil {
			continue
		}
		if _, err := out.Write(append(resp, '\n')); err != nil {
			return err
		}
		if err := out.Flush(); err != nil {
			return err
		}
	}

	if err := <-readErr; err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return ctx.Err()
}

// Handle processes one raw message, single or batch. It returns nil when
// nothing should be sent back.
func (s *Server) Handle(ctx context.Context, raw []byte) []byte {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		return s.handleBatch(ctx, raw)
	}

	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return s.encode(errorResponse(nullID, CodeParseError, "parse error", err.Error()))
	}

	resp := s.dispatch(ctx, &req)
	if resp == nil {
		return nil
	}
	return s.encode(resp)
}

func (s *Server) handleBatch(ctx context.Context, raw []byte) []byte {
	var batch []stdjson.RawMessage
	if err := json.Unmarshal(raw, &batch); err != nil {
		return s.encode(errorResponse(nullID, CodeParseError, "parse error", err.Error()))
	}
	if len(batch) == 0 {
		return s.encode(errorResponse(nullID, CodeInvalidRequest, "empty batch", nil))
	}

	var responses []*Response
	for _, item := range batch {
		var req Request
		if err := json.Unmarshal(item, &req); err != nil {
			responses = append(responses, errorResponse(nullID, CodeInvalidRequest, "invalid request", err.Error()))
			continue
		}
		if resp := s.dispatch(ctx, &req); resp != nil {
			responses = append(responses, resp)
		}
	}
	if len(responses) == 0 {
		return nil
	}
	return s.encode(responses)
}

func (s *Server) dispatch(ctx context.Context, req *Request) *Response {
	if req.JSONRPC != jsonrpcVersion || req.Method == "" {
		if req.IsNotification() {
			return nil
		}
		return errorResponse(req.ID, CodeInvalidRequest, "invalid request", nil)
	}

	if req.IsNotification() {
		s.log.Debug("Notification", zap.String("method", req.Method))
		return nil
	}

	switch req.Method {
	case "initialize":
		return result(req.ID, initializeResult{
			ProtocolVersion: ProtocolVersion,
			Capabilities:    capabilities{Tools: toolsCapability{}},
			ServerInfo:      s.info,
			Instructions:    s.instructions,
		})
	case "ping":
		return result(req.ID, map[string]any{})
	case "tools/list":
		return result(req.ID, s.listTools())
	case "tools/call":
		return s.callTool(ctx, req)
	default:
		if strings.HasPrefix(req.Method, "notifications/") {
			return nil
		}
		return errorResponse(req.ID, CodeMethodNotFound, "method not found", req.Method)
	}
}

func (s *Server) listTools() listToolsResult {
	tools := s.registry.Tools()
	out := listToolsResult{Tools: make([]toolDescriptor, 0, len(tools))}
	for _, tool := range tools {
		out.Tools = append(out.Tools, toolDescriptor{
			Name:        tool.ID,
			Description: tool.Description,
			InputSchema: InputSchema(tool),
		})
	}
	return out
}

func (s *Server) callTool(ctx context.Context, req *Request) *Response {
	var params callToolParams
	if len(req.Params) == 0 {
		return errorResponse(req.ID, CodeInvalidParams, "missing params", nil)
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errorResponse(req.ID, CodeInvalidParams, "invalid params", err.Error())
	}
	if params.Name == "" {
		return errorResponse(req.ID, CodeInvalidParams, "missing tool name", nil)
	}
	if params.Arguments == nil {
		params.Arguments = map[string]any{}
	}

	res := s.registry.Execute(ctx, params.Name, params.Arguments, &types.Context{Transport: s.transport})

	var payload any = res.Data
	if !res.Success {
		payload = map[string]any{"error": res.Error}
	}
	text, err := json.Marshal(payload)
	if err != nil {
		s.log.Error("Failed to encode tool result", zap.String("tool", params.Name), zap.Error(err))
		return errorResponse(req.ID, CodeInternalError, "failed to encode tool result", nil)
	}

	return result(req.ID, callToolResult{
		Content: []content{{Type: "text", Text: string(text)}},
		IsError: !res.Success,
	})
}

func (s *Server) encode(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		s.log.Error("Failed to encode response", zap.Error(err))
		data, _ = json.Marshal(errorResponse(nullID, CodeInternalError, "failed to encode response", nil))
	}
	return data
}

func result(id stdjson.RawMessage, v any) *Response {
	return &Response{JSONRPC: jsonrpcVersion, ID: id, Result: v}
}

func errorResponse(id stdjson.RawMessage, code int, message string, data any) *Response {
	if len(id) == 0 {
		id = nullID
	}
	return &Response{JSONRPC: jsonrpcVersion, ID: id, Error: &RPCError{Code: code, Message: message, Data: data}}
}
