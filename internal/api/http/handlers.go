package http

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shahlaukik/money-manager-mcp/internal/infrastructure/logging"
	"github.com/shahlaukik/money-manager-mcp/internal/infrastructure/monitoring"
	"github.com/shahlaukik/money-manager-mcp/internal/shared/types"
)

// maxBodySize bounds one POST /mcp payload
const maxBodySize = 16 << 20

// SessionHeader carries the MCP session id. The server issues one when the
// client sends none.
const SessionHeader = "Mcp-Session-Id"

// MessageHandler answers one raw JSON-RPC message or batch
type MessageHandler interface {
	Handle(ctx context.Context, raw []byte) []byte
}

// Catalog describes the registered tools
type Catalog interface {
	Tools() []types.Tool
	Stats() map[string]interface{}
}

// SessionInfo reports on the upstream session
type SessionInfo interface {
	Len() int
	Persistent() bool
}

// Deps bundles what the handlers need
type Deps struct {
	MCP     MessageHandler
	Catalog Catalog
	Session SessionInfo
	BaseURL string
	Version string
	Metrics *monitoring.Metrics
	Logger  *logging.Logger
}

// Handlers serves the HTTP transport
type Handlers struct {
	mcp     MessageHandler
	catalog Catalog
	session SessionInfo
	baseURL string
	version string
	metrics *monitoring.Metrics
	log     *logging.Logger
}

// NewHandlers creates the HTTP handlers
func NewHandlers(deps Deps) *Handlers {
	log := deps.Logger
	if log == nil {
		log = logging.NewNop()
	}
	return &Handlers{
		mcp:     deps.MCP,
		catalog: deps.Catalog,
		session: deps.Session,
		baseURL: deps.BaseURL,
		version: deps.Version,
		metrics: deps.Metrics,
		log:     log.Named("http"),
	}
}

// Register mounts every route on the router
func (h *Handlers) Register(router gin.IRouter) {
	router.GET("/", h.Root)
	router.GET("/health", h.Health)
	router.GET("/tools", h.ListTools)
	router.POST("/mcp", h.MCP)
	if h.metrics != nil {
		router.GET("/metrics", gin.WrapH(h.metrics.Handler()))
	}
}

// Root returns basic service info
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":  "money-manager-mcp",
		"version":  h.version,
		"endpoint": "/mcp",
	})
}

// Health reports liveness plus upstream session state
func (h *Handlers) Health(c *gin.Context) {
	body := gin.H{
		"status":           "healthy",
		"service_registry": h.catalog.Stats(),
		"upstream":         gin.H{"base_url": h.baseURL},
		"metrics":          h.metrics.Snapshot(),
	}
	if h.session != nil {
		body["session"] = gin.H{
			"cookies":    h.session.Len(),
			"persistent": h.session.Persistent(),
		}
	}
	c.JSON(http.StatusOK, body)
}

// ListTools lists tool descriptors without going through JSON-RPC
func (h *Handlers) ListTools(c *gin.Context) {
	tools := h.catalog.Tools()
	c.JSON(http.StatusOK, gin.H{
		"tools": tools,
		"count": len(tools),
	})
}

// MCP accepts one JSON-RPC message or batch per request. Requests that
// carry only notifications are acknowledged with 202 and no body.
func (h *Handlers) MCP(c *gin.Context) {
	raw, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.AbortWithStatus(http.StatusRequestEntityTooLarge)
			return
		}
		h.log.Warn("Failed to read MCP request body", zap.Error(err))
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	sessionID := c.GetHeader(SessionHeader)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	c.Header(SessionHeader, sessionID)

	out := h.mcp.Handle(c.Request.Context(), raw)
	if out == nil {
		c.Status(http.StatusAccepted)
		return
	}
	c.Data(http.StatusOK, "application/json", out)
}
