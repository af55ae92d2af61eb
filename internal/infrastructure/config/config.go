package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Transport names
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Config holds all application configuration.
type Config struct {
	Upstream  UpstreamConfig
	Server    ServerConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// UpstreamConfig holds Money Manager web server configuration.
type UpstreamConfig struct {
	BaseURL        string  `envconfig:"MONEY_MANAGER_BASE_URL" default:"http://localhost:8888"`
	SessionFile    string  `envconfig:"MONEY_MANAGER_SESSION_FILE"`
	PersistSession bool    `envconfig:"MONEY_MANAGER_PERSIST_SESSION" default:"true"`
	TimeoutMS      int     `envconfig:"MONEY_MANAGER_TIMEOUT_MS" default:"30000"`
	MaxRetries     int     `envconfig:"MONEY_MANAGER_MAX_RETRIES" default:"3"`
	BaseDelayMS    int     `envconfig:"MONEY_MANAGER_BASE_DELAY_MS" default:"1000"`
	MaxDelayMS     int     `envconfig:"MONEY_MANAGER_MAX_DELAY_MS" default:"0"`
	RetryPost      bool    `envconfig:"MONEY_MANAGER_RETRY_POST" default:"true"`
	RateLimitRPS   float64 `envconfig:"MONEY_MANAGER_RATE_LIMIT_RPS" default:"0"`
	UserAgent      string  `envconfig:"MONEY_MANAGER_USER_AGENT" default:"money-manager-mcp/1.0"`
	UploadField    string  `envconfig:"MONEY_MANAGER_UPLOAD_FIELD" default:"file"`
}

// Timeout returns the per-attempt request timeout.
func (u UpstreamConfig) Timeout() time.Duration {
	return time.Duration(u.TimeoutMS) * time.Millisecond
}

// BaseDelay returns the backoff unit.
func (u UpstreamConfig) BaseDelay() time.Duration {
	return time.Duration(u.BaseDelayMS) * time.Millisecond
}

// MaxDelay returns the backoff cap, zero when uncapped.
func (u UpstreamConfig) MaxDelay() time.Duration {
	return time.Duration(u.MaxDelayMS) * time.Millisecond
}

// ServerConfig holds MCP transport configuration.
type ServerConfig struct {
	Transport string `envconfig:"MCP_TRANSPORT" default:"stdio"`
	Host      string `envconfig:"HTTP_HOST" default:"127.0.0.1"`
	Port      string `envconfig:"HTTP_PORT" default:"8765"`
}

// Addr returns host:port for the HTTP transport.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds per-client rate limiting for the HTTP transport.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"20"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"40"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.applyDerived()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	cfg := &Config{
		Upstream: UpstreamConfig{
			BaseURL:        "http://localhost:8888",
			PersistSession: true,
			TimeoutMS:      30000,
			MaxRetries:     3,
			BaseDelayMS:    1000,
			RetryPost:      true,
			UserAgent:      "money-manager-mcp/1.0",
			UploadField:    "file",
		},
		Server: ServerConfig{
			Transport: TransportStdio,
			Host:      "127.0.0.1",
			Port:      "8765",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 20,
			Burst:             40,
			Enabled:           true,
		},
	}
	cfg.applyDerived()
	return cfg
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	var problems []error

	u, err := url.Parse(c.Upstream.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		problems = append(problems, fmt.Errorf("MONEY_MANAGER_BASE_URL must be an absolute http(s) URL, got %q", c.Upstream.BaseURL))
	}
	if c.Upstream.TimeoutMS <= 0 {
		problems = append(problems, errors.New("MONEY_MANAGER_TIMEOUT_MS must be positive"))
	}
	if c.Upstream.MaxRetries < 0 {
		problems = append(problems, errors.New("MONEY_MANAGER_MAX_RETRIES must not be negative"))
	}
	if c.Upstream.BaseDelayMS < 0 || c.Upstream.MaxDelayMS < 0 {
		problems = append(problems, errors.New("backoff delays must not be negative"))
	}
	if c.Upstream.RateLimitRPS < 0 {
		problems = append(problems, errors.New("MONEY_MANAGER_RATE_LIMIT_RPS must not be negative"))
	}
	if c.Upstream.UploadField == "" {
		problems = append(problems, errors.New("MONEY_MANAGER_UPLOAD_FIELD must not be empty"))
	}
	switch c.Server.Transport {
	case TransportStdio, TransportHTTP:
	default:
		problems = append(problems, fmt.Errorf("MCP_TRANSPORT must be %q or %q, got %q", TransportStdio, TransportHTTP, c.Server.Transport))
	}

	return errors.Join(problems...)
}

func (c *Config) applyDerived() {
	c.Upstream.BaseURL = strings.TrimRight(c.Upstream.BaseURL, "/")
	if c.Upstream.SessionFile == "" {
		c.Upstream.SessionFile = DefaultSessionFile()
	}
}

// DefaultSessionFile returns the per-user session file location.
func DefaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "money-manager-mcp", "session.json")
}
