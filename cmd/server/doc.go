// Package main is the entry point for the Money Manager MCP server.
//
// The server exposes a Money Manager (Realbyte) web server on the local
// network as MCP tools.
//
// Configuration:
//   - Environment variables (MONEY_MANAGER_*, MCP_TRANSPORT, HTTP_*, LOG_*)
//   - CLI flags (override env vars)
//
// Usage:
//
//	# stdio transport, for MCP clients that spawn the server
//	./server -base-url http://192.168.0.10:8888
//
//	# HTTP transport
//	./server -transport http -port 8765
//
// Logs are written to stderr in both modes.
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
