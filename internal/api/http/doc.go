// Package http serves MCP over plain HTTP with gin.
//
// Routes:
//
//	POST /mcp      one JSON-RPC message or batch per request
//	GET  /health   liveness, registry stats and upstream session state
//	GET  /tools    tool catalog
//	GET  /metrics  Prometheus exposition
package http
