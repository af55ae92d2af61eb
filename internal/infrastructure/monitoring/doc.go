/*
Package monitoring provides Prometheus metrics for the server.

# Overview

Every Metrics value owns a private registry, so tests and multiple servers
in one process never collide on metric names.

# Metrics

- Tool calls: count, duration, failures by category and code
- Upstream requests: count by outcome, duration including retries, retries
- Session: live cookie count, file writes, resets
- HTTP transport: request count and latency per route
- Go runtime and process collectors, uptime

# Usage

	metrics := monitoring.NewMetrics()

	// Add middleware to Gin router
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Time tool calls
	timer := monitoring.NewTimer(metrics, "transaction_list")
	// ... perform operation ...
	timer.Stop("", "")
*/
package monitoring
