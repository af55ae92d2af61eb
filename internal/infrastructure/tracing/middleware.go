package tracing

import (
	"github.com/gin-gonic/gin"

	"github.com/shahlaukik/money-manager-mcp/internal/shared/id"
)

// HTTPMiddleware opens a span per request and echoes the trace headers
func HTTPMiddleware(tracer *Tracer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := WithTrace(c.Request.Context(),
			id.TraceID(c.GetHeader(TraceHeader)),
			id.SpanID(c.GetHeader(SpanHeader)))

		span, ctx := tracer.StartSpan(ctx, c.Request.Method+" "+c.FullPath())
		c.Request = c.Request.WithContext(ctx)

		c.Header(TraceHeader, string(span.TraceID))
		c.Header(SpanHeader, string(span.SpanID))

		c.Next()

		span.SetStatus(c.Writer.Status())
		if len(c.Errors) > 0 {
			span.SetError(c.Errors.Last())
		}
		tracer.Finish(span)
	}
}
