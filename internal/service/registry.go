package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/shahlaukik/money-manager-mcp/internal/infrastructure/logging"
	"github.com/shahlaukik/money-manager-mcp/internal/infrastructure/monitoring"
	"github.com/shahlaukik/money-manager-mcp/internal/infrastructure/tracing"
	"github.com/shahlaukik/money-manager-mcp/internal/shared/errs"
	"github.com/shahlaukik/money-manager-mcp/internal/shared/id"
	"github.com/shahlaukik/money-manager-mcp/internal/shared/types"
)

// CodeUnknownTool is reported for calls to tools no provider registered
const CodeUnknownTool = "UNKNOWN_TOOL"

// Registry manages providers and dispatches tool calls to them
type Registry struct {
	mu        sync.RWMutex
	providers []Provider
	tools     map[string]Provider

	log     *logging.Logger
	metrics *monitoring.Metrics
}

// Provider interface for service implementations
type Provider interface {
	Definition() types.Service
	Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error)
}

// NewRegistry creates a new service registry. Both arguments may be nil.
func NewRegistry(log *logging.Logger, metrics *monitoring.Metrics) *Registry {
	if log == nil {
		log = logging.NewNop()
	}
	return &Registry{
		tools:   make(map[string]Provider),
		log:     log.Named("registry"),
		metrics: metrics,
	}
}

// Register adds a service provider. Tool names must be unique across
// providers.
func (r *Registry) Register(provider Provider) error {
	def := provider.Definition()
	if def.ID == "" {
		return errors.New("service ID cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, tool := range def.Tools {
		if _, exists := r.tools[tool.ID]; exists {
			return fmt.Errorf("tool %q already registered", tool.ID)
		}
	}
	for _, tool := range def.Tools {
		r.tools[tool.ID] = provider
	}
	r.providers = append(r.providers, provider)
	return nil
}

// Get retrieves the provider that serves a tool
func (r *Registry) Get(toolID string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.tools[toolID]
	return p, ok
}

// List returns all registered services
func (r *Registry) List(category *types.Category) []types.Service {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var services []types.Service
	for _, provider := range r.providers {
		def := provider.Definition()
		if category == nil || def.Category == *category {
			services = append(services, def)
		}
	}
	return services
}

// Tools returns every tool in registration order
func (r *Registry) Tools() []types.Tool {
	var tools []types.Tool
	for _, def := range r.List(nil) {
		tools = append(tools, def.Tools...)
	}
	return tools
}

// Execute runs a tool and always returns a result. Failures of any kind
// are classified and carried in Result.Error.
func (r *Registry) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) *types.Result {
	if appCtx == nil {
		appCtx = &types.Context{}
	}
	if appCtx.CallID == "" {
		appCtx.CallID = id.NewCallID().String()
	}
	log := r.log.With(zap.String("tool", toolID), zap.String("call_id", appCtx.CallID))
	if traceID := tracing.GetTraceID(ctx); traceID != "" {
		log = log.With(zap.String("trace_id", string(traceID)))
	}

	provider, ok := r.Get(toolID)
	if !ok {
		err := errs.New(errs.CategoryValidation, CodeUnknownTool, "unknown tool", errs.WithDetail("tool", toolID))
		log.Warn("Unknown tool")
		return failure(err)
	}

	timer := monitoring.NewTimer(r.metrics, toolID)
	result, err := r.invoke(ctx, provider, toolID, params, appCtx)
	if err != nil {
		ce := errs.Classify(err)
		elapsed := timer.Stop(string(ce.Category()), ce.Code())
		log.Warn("Tool call failed",
			zap.String("code", ce.Code()),
			zap.String("category", string(ce.Category())),
			zap.Bool("retryable", ce.Retryable()),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		return failure(ce)
	}

	elapsed := timer.Stop("", "")
	log.Debug("Tool call completed", zap.Duration("elapsed", elapsed))
	return result
}

// invoke guards against provider panics and nil results
func (r *Registry) invoke(ctx context.Context, p Provider, toolID string, params map[string]interface{}, appCtx *types.Context) (result *types.Result, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = errs.New(errs.CategoryInternal, errs.CodeInternal, "tool panicked",
				errs.WithDetail("panic", fmt.Sprint(rec)))
		}
	}()

	result, err = p.Execute(ctx, toolID, params, appCtx)
	if err == nil && result == nil {
		err = errs.New(errs.CategoryInternal, errs.CodeInternal, "tool returned no result")
	}
	if err == nil && !result.Success && result.Error != nil {
		err = errs.New(result.Error.Category, result.Error.Code, result.Error.Message,
			errs.WithRetryable(result.Error.Retryable), errs.WithDetails(result.Error.Details))
	}
	return result, err
}

func failure(err *errs.Error) *types.Result {
	payload := err.Payload()
	return &types.Result{Success: false, Error: &payload}
}

// Stats returns registry statistics
func (r *Registry) Stats() map[string]interface{} {
	var total, totalTools int
	categories := make(map[string]int)

	for _, def := range r.List(nil) {
		total++
		totalTools += len(def.Tools)
		categories[string(def.Category)]++
	}

	return map[string]interface{}{
		"total_services": total,
		"total_tools":    totalTools,
		"categories":     categories,
	}
}
