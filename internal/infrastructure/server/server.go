package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	httpapi "github.com/shahlaukik/money-manager-mcp/internal/api/http"
	"github.com/shahlaukik/money-manager-mcp/internal/api/mcp"
	"github.com/shahlaukik/money-manager-mcp/internal/api/middleware"
	"github.com/shahlaukik/money-manager-mcp/internal/infrastructure/config"
	"github.com/shahlaukik/money-manager-mcp/internal/infrastructure/logging"
	"github.com/shahlaukik/money-manager-mcp/internal/infrastructure/monitoring"
	"github.com/shahlaukik/money-manager-mcp/internal/infrastructure/resilience"
	"github.com/shahlaukik/money-manager-mcp/internal/infrastructure/tracing"
	"github.com/shahlaukik/money-manager-mcp/internal/providers/moneymanager"
	"github.com/shahlaukik/money-manager-mcp/internal/providers/moneymanager/client"
	"github.com/shahlaukik/money-manager-mcp/internal/providers/moneymanager/session"
	"github.com/shahlaukik/money-manager-mcp/internal/service"
)

const (
	serverName      = "money-manager"
	shutdownTimeout = 10 * time.Second
)

const instructions = "Tools for a Money Manager (Realbyte) web server running on the local network. " +
	"Dates use YYYY-MM-DD. Call init_get_data first to discover asset, category and currency ids. " +
	"Upstream failures come back as structured errors with a category, a code and a retryable flag."

// Server wires the upstream client, the tool registry and the transports
type Server struct {
	config   *config.Config
	logger   *logging.Logger
	metrics  *monitoring.Metrics
	session  *session.Store
	client   *client.Client
	registry *service.Registry
	info     mcp.ServerInfo
	router   *gin.Engine
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, logger *logging.Logger, version string) (*Server, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	logger.Info("Initializing Money Manager MCP server",
		zap.String("base_url", cfg.Upstream.BaseURL),
		zap.String("transport", cfg.Server.Transport),
		zap.Bool("persist_session", cfg.Upstream.PersistSession),
	)

	metrics := monitoring.NewMetrics()

	store, err := session.Open(session.Options{
		Path:    cfg.Upstream.SessionFile,
		Persist: cfg.Upstream.PersistSession,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}
	logger.Info("Session store ready",
		zap.String("path", cfg.Upstream.SessionFile),
		zap.Int("cookies", store.Len()),
	)

	upstream, err := client.New(client.Options{
		BaseURL:     cfg.Upstream.BaseURL,
		UserAgent:   cfg.Upstream.UserAgent,
		UploadField: cfg.Upstream.UploadField,
		RetryPost:   cfg.Upstream.RetryPost,
		RateLimit:   cfg.Upstream.RateLimitRPS,
		Policy: resilience.Policy{
			Timeout:    cfg.Upstream.Timeout(),
			MaxRetries: cfg.Upstream.MaxRetries,
			BaseDelay:  cfg.Upstream.BaseDelay(),
			MaxDelay:   cfg.Upstream.MaxDelay(),
		},
		Session: store,
		Logger:  logger,
		Metrics: metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create upstream client: %w", err)
	}

	registry := service.NewRegistry(logger, metrics)
	if err := registry.Register(moneymanager.NewProvider(upstream, logger)); err != nil {
		return nil, fmt.Errorf("failed to register provider: %w", err)
	}
	logger.Info("Registered tools", zap.Int("count", len(registry.Tools())))

	s := &Server{
		config:   cfg,
		logger:   logger,
		metrics:  metrics,
		session:  store,
		client:   upstream,
		registry: registry,
		info:     mcp.ServerInfo{Name: serverName, Version: version},
	}
	s.router = s.newRouter()
	return s, nil
}

func (s *Server) newRouter() *gin.Engine {
	if !s.config.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracing.New(s.logger)))
	router.Use(monitoring.Middleware(s.metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if s.config.RateLimit.Enabled {
		s.logger.Info("Rate limiting enabled",
			zap.Int("rps", s.config.RateLimit.RequestsPerSecond),
			zap.Int("burst", s.config.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: s.config.RateLimit.RequestsPerSecond,
			Burst:             s.config.RateLimit.Burst,
		}))
	}

	handlers := httpapi.NewHandlers(httpapi.Deps{
		MCP:     s.mcpServer(config.TransportHTTP),
		Catalog: s.registry,
		Session: s.session,
		BaseURL: s.client.BaseURL(),
		Version: s.info.Version,
		Metrics: s.metrics,
		Logger:  s.logger,
	})
	handlers.Register(router)
	return router
}

func (s *Server) mcpServer(transport string) *mcp.Server {
	return mcp.NewServer(s.registry, s.info, s.logger,
		mcp.WithInstructions(instructions),
		mcp.WithTransport(transport),
	)
}

// Registry returns the tool registry
func (s *Server) Registry() *service.Registry {
	return s.registry
}

// Handler returns the HTTP transport handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves the configured transport until ctx is done
func (s *Server) Run(ctx context.Context) error {
	if s.config.Server.Transport == config.TransportHTTP {
		return s.RunHTTP(ctx)
	}
	return s.RunStdio(ctx, os.Stdin, os.Stdout)
}

// RunStdio serves MCP over newline-delimited JSON on in/out. It returns nil
// when in reaches EOF.
func (s *Server) RunStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	s.logger.Info("Serving MCP over stdio")
	err := s.mcpServer(config.TransportStdio).Serve(ctx, in, out)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// RunHTTP serves the HTTP transport and shuts it down gracefully when ctx
// is done.
func (s *Server) RunHTTP(ctx context.Context) error {
	addr := s.config.Server.Addr()
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case err, ok := <-errChan:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// Close flushes the session and the logger
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")

	var err error
	if s.session.Persistent() {
		if saveErr := s.session.Save(); saveErr != nil {
			s.logger.Error("Failed to save session", zap.Error(saveErr))
			err = fmt.Errorf("failed to save session: %w", saveErr)
		}
	}

	// Sync logger before exit
	_ = s.logger.Sync()

	return err
}
