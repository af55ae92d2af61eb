/*
Package tracing correlates log lines that belong to one inbound request.

A span is opened per HTTP request (HTTPMiddleware) and its trace ID travels
in the context to the tool registry and the upstream client, which stamp it
on their own log lines. Incoming X-Trace-ID and X-Span-ID headers are
honored so callers can join their own traces.

	tracer := tracing.New(logger)
	router.Use(tracing.HTTPMiddleware(tracer))

	span, ctx := tracer.StartSpan(ctx, "operation")
	defer tracer.Finish(span)
*/
package tracing
