// Package logging provides structured logging using uber/zap.
//
// This package offers two modes:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// All output goes to stderr unless configured otherwise. When the server
// speaks MCP over stdio, anything written to stdout corrupts the protocol
// stream.
//
// Common fields:
//   - tool, call_id: one tool invocation
//   - endpoint, method, attempt, delay: one upstream exchange
//   - code, category: a classified failure
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	logger.Info("Server starting", zap.String("transport", "stdio"))
//	logger.Warn("Retrying upstream request", zap.Int("attempt", 1), zap.Error(err))
package logging
