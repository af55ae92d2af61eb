// Package mcp implements the Model Context Protocol server side over
// JSON-RPC 2.0.
//
// Serve speaks the stdio transport: one JSON message per line in, one per
// line out, handled sequentially. Handle processes a single message and is
// shared with the HTTP transport.
//
// Supported methods: initialize, ping, tools/list, tools/call. Notifications
// are accepted and never answered. Tool failures are reported inside the
// tool result (isError with a structured error payload), not as JSON-RPC
// errors; those are reserved for protocol problems.
package mcp
