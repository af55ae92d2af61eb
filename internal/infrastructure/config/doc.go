// Package config provides 12-factor configuration management for the server.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags in cmd/server override environment variables.
//
// Configuration Sections:
//   - Upstream: Money Manager web server, session file, timeouts and retries
//   - Server: MCP transport selection and HTTP listen address
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting for the HTTP transport
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Talking to %s/moneyBook\n", cfg.Upstream.BaseURL)
//
// Environment Variables:
//   - MONEY_MANAGER_BASE_URL, MONEY_MANAGER_SESSION_FILE, MONEY_MANAGER_PERSIST_SESSION
//   - MONEY_MANAGER_TIMEOUT_MS, MONEY_MANAGER_MAX_RETRIES, MONEY_MANAGER_BASE_DELAY_MS,
//     MONEY_MANAGER_MAX_DELAY_MS, MONEY_MANAGER_RETRY_POST, MONEY_MANAGER_RATE_LIMIT_RPS
//   - MONEY_MANAGER_USER_AGENT, MONEY_MANAGER_UPLOAD_FIELD
//   - MCP_TRANSPORT, HTTP_HOST, HTTP_PORT
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
package config
