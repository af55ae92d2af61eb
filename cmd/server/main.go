package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/shahlaukik/money-manager-mcp/internal/infrastructure/config"
	"github.com/shahlaukik/money-manager-mcp/internal/infrastructure/logging"
	"github.com/shahlaukik/money-manager-mcp/internal/infrastructure/server"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load config from the environment first; flags override it
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(2)
	}

	baseURL := flag.String("base-url", cfg.Upstream.BaseURL, "Money Manager web server URL")
	transport := flag.String("transport", cfg.Server.Transport, "MCP transport: stdio or http")
	host := flag.String("host", cfg.Server.Host, "HTTP transport host")
	port := flag.String("port", cfg.Server.Port, "HTTP transport port")
	sessionFile := flag.String("session-file", cfg.Upstream.SessionFile, "Session cookie file")
	noPersist := flag.Bool("no-persist", !cfg.Upstream.PersistSession, "Keep the session in memory only")
	logLevel := flag.String("log-level", cfg.Logging.Level, "Log level: debug, info, warn, error")
	dev := flag.Bool("dev", cfg.Logging.Development, "Development logging")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		return
	}

	cfg.Upstream.BaseURL = *baseURL
	cfg.Upstream.SessionFile = *sessionFile
	cfg.Upstream.PersistSession = !*noPersist
	cfg.Server.Transport = *transport
	cfg.Server.Host = *host
	cfg.Server.Port = *port
	cfg.Logging.Level = *logLevel
	cfg.Logging.Development = *dev
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(2)
	}

	// Logs always go to stderr; stdout carries the stdio transport
	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(2)
	}

	srv, err := server.NewServer(cfg, logger, version)
	if err != nil {
		logger.Fatal("Failed to create server", zap.Error(err))
	}

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Run(ctx)
	}()

	// Wait for shutdown signal or the transport to finish
	select {
	case <-ctx.Done():
		logger.Info("Shutting down gracefully...")
		if err := <-errChan; err != nil {
			logger.Error("Error during shutdown", zap.Error(err))
		}
	case err := <-errChan:
		if err != nil {
			logger.Error("Server error", zap.Error(err))
			_ = srv.Close()
			os.Exit(1)
		}
	}

	if err := srv.Close(); err != nil {
		logger.Error("Error during close", zap.Error(err))
	}
}
