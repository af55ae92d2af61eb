package tracing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shahlaukik/money-manager-mcp/internal/shared/id"
)

func TestStartSpanContinuesTrace(t *testing.T) {
	tracer := New(nil)

	root, ctx := tracer.StartSpan(context.Background(), "root")
	child, ctx := tracer.StartSpan(ctx, "child")

	assert.Equal(t, root.TraceID, child.TraceID)
	assert.Equal(t, root.SpanID, child.ParentID)
	assert.Equal(t, child.SpanID, GetSpanID(ctx))
	assert.Empty(t, root.ParentID)

	tracer.Finish(child)
	assert.Positive(t, child.Duration)
}

func TestHTTPMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tracer := New(nil)

	var seen id.TraceID
	r := gin.New()
	r.Use(HTTPMiddleware(tracer))
	r.GET("/health", func(c *gin.Context) {
		seen = GetTraceID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	t.Run("new trace", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		require.NotEmpty(t, seen)
		assert.Equal(t, string(seen), w.Header().Get(TraceHeader))
		assert.NotEmpty(t, w.Header().Get(SpanHeader))
	})

	t.Run("inbound trace", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set(TraceHeader, "trace_external")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, id.TraceID("trace_external"), seen)
		assert.Equal(t, "trace_external", w.Header().Get(TraceHeader))
	})
}
