package client

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/shahlaukik/money-manager-mcp/internal/infrastructure/logging"
	"github.com/shahlaukik/money-manager-mcp/internal/infrastructure/monitoring"
	"github.com/shahlaukik/money-manager-mcp/internal/infrastructure/resilience"
	"github.com/shahlaukik/money-manager-mcp/internal/infrastructure/tracing"
	"github.com/shahlaukik/money-manager-mcp/internal/providers/moneymanager/decode"
	"github.com/shahlaukik/money-manager-mcp/internal/providers/moneymanager/session"
	"github.com/shahlaukik/money-manager-mcp/internal/shared/errs"
)

// BasePath prefixes every upstream endpoint
const BasePath = "/moneyBook"

// bodySnippetLimit bounds upstream error bodies copied into error details
const bodySnippetLimit = 500

// timeoutHints are attached to NETWORK_TIMEOUT failures of specific endpoints
var timeoutHints = map[string]string{
	"/getDataByPeriod": "The Money Manager server can hang on date ranges that contain no transactions; " +
		"try a date range known to contain data.",
}

// Options configures a Client
type Options struct {
	BaseURL     string
	UserAgent   string
	UploadField string
	// RetryPost allows retrying POST requests. The upstream has no
	// idempotency keys, so a retried write may be applied twice.
	RetryPost bool
	// RateLimit caps upstream attempts per second. Zero is unlimited.
	RateLimit float64
	Policy    resilience.Policy
	Session   *session.Store
	Logger    *logging.Logger
	Metrics   *monitoring.Metrics
	// Timer overrides the backoff timer
	Timer resilience.TimerFunc
}

// Client performs GET, POST, download and upload operations against the
// Money Manager web server. Every operation runs through the resilient
// executor and shares one session.
type Client struct {
	resty       *resty.Client
	baseURL     string
	uploadField string
	retryPost   bool
	policy      resilience.Policy
	timer       resilience.TimerFunc
	limiter     *rate.Limiter
	session     *session.Store
	sanitizer   *bluemonday.Policy
	log         *logging.Logger
	metrics     *monitoring.Metrics
}

// New creates a client. A nil Session gets an in-memory store.
func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, errors.New("base URL is required")
	}
	log := opts.Logger
	if log == nil {
		log = logging.NewNop()
	}
	store := opts.Session
	if store == nil {
		var err error
		if store, err = session.Open(session.Options{Logger: log}); err != nil {
			return nil, err
		}
	}
	field := opts.UploadField
	if field == "" {
		field = "file"
	}

	// Pooled transport from retryablehttp; retries are owned by the executor.
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 0
	retryClient.Logger = nil

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	restyClient := resty.New().
		SetTransport(retryClient.HTTPClient.Transport).
		SetBaseURL(baseURL+BasePath).
		SetCookieJar(store).
		SetRetryCount(0).
		SetHeader("Accept", "*/*").
		SetHeader("X-Requested-With", "XMLHttpRequest")
	if opts.UserAgent != "" {
		restyClient.SetHeader("User-Agent", opts.UserAgent)
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), max(1, int(opts.RateLimit)))
	}

	return &Client{
		resty:       restyClient,
		baseURL:     baseURL,
		uploadField: field,
		retryPost:   opts.RetryPost,
		policy:      opts.Policy,
		timer:       opts.Timer,
		limiter:     limiter,
		session:     store,
		sanitizer:   bluemonday.StrictPolicy(),
		log:         log.Named("upstream"),
		metrics:     opts.Metrics,
	}, nil
}

// BaseURL returns the configured server root, without BasePath
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Session returns the cookie store
func (c *Client) Session() *session.Store {
	return c.session
}

// ClearSession drops all cookies and the persisted session file
func (c *Client) ClearSession() error {
	if err := c.session.Clear(); err != nil {
		return errs.File(err, "")
	}
	c.metrics.RecordSessionClear()
	c.log.Info("Session cleared")
	return nil
}

// Get issues a GET and decodes a quasi-JSON body
func (c *Client) Get(ctx context.Context, endpoint string, params map[string]string) (any, error) {
	body, err := c.exchange(ctx, request{method: http.MethodGet, endpoint: endpoint, query: params})
	if err != nil {
		return nil, err
	}
	return decode.QuasiJSON(body)
}

// GetXML issues a GET and decodes an XML body
func (c *Client) GetXML(ctx context.Context, endpoint string, params map[string]string) (any, error) {
	body, err := c.exchange(ctx, request{method: http.MethodGet, endpoint: endpoint, query: params})
	if err != nil {
		return nil, err
	}
	return decode.XML(body)
}

// Post issues a form-encoded POST and decodes a quasi-JSON body
func (c *Client) Post(ctx context.Context, endpoint string, form map[string]string) (any, error) {
	body, err := c.exchange(ctx, request{method: http.MethodPost, endpoint: endpoint, form: form})
	if err != nil {
		return nil, err
	}
	return decode.QuasiJSON(body)
}

type request struct {
	method   string
	endpoint string
	query    map[string]string
	form     map[string]string
	// file uploads as multipart; field names the form part
	file  string
	field string
	// output streams the body to this path instead of memory
	output string
}

// exchange runs one logical request and returns the body text
func (c *Client) exchange(ctx context.Context, req request) (string, error) {
	resp, err := c.run(ctx, req)
	if err != nil {
		return "", err
	}
	return string(resp.Body()), nil
}

// run executes req through the executor, records metrics and persists the
// session after success.
func (c *Client) run(ctx context.Context, req request) (*resty.Response, error) {
	start := time.Now()
	resp, err := resilience.Do(ctx, c.executor(req), func(ctx context.Context) (*resty.Response, error) {
		return c.attempt(ctx, req)
	})
	elapsed := time.Since(start)

	if err != nil {
		ce := errs.Classify(err)
		c.metrics.RecordUpstream(req.method, req.endpoint, ce.Code(), elapsed)
		c.log.Warn("Upstream request failed",
			zap.String("method", req.method),
			zap.String("endpoint", req.endpoint),
			zap.String("code", ce.Code()),
			zap.String("category", string(ce.Category())),
			zap.Duration("elapsed", elapsed))
		return nil, ce
	}

	c.metrics.RecordUpstream(req.method, req.endpoint, "success", elapsed)
	c.log.Debug("Upstream request completed",
		zap.String("method", req.method),
		zap.String("endpoint", req.endpoint),
		zap.Int("status", resp.StatusCode()),
		zap.Duration("elapsed", elapsed))
	c.persistSession()
	return resp, nil
}

func (c *Client) executor(req request) *resilience.Executor {
	opts := []resilience.Option{
		resilience.WithRetryHook(func(ev resilience.RetryEvent) {
			c.metrics.RecordRetry(req.endpoint, ev.Err.Code())
			c.log.Warn("Retrying upstream request",
				zap.String("method", req.method),
				zap.String("endpoint", req.endpoint),
				zap.Int("attempt", ev.Attempt+1),
				zap.Duration("delay", ev.Delay),
				zap.String("code", ev.Err.Code()))
		}),
	}
	if c.timer != nil {
		opts = append(opts, resilience.WithTimer(c.timer))
	}

	exec := resilience.NewExecutor(c.policy, opts...)
	if req.method == http.MethodPost && !c.retryPost {
		return exec.WithoutRetries()
	}
	return exec
}

// attempt performs a single HTTP exchange. Failures are classified here,
// where the endpoint is known.
func (c *Client) attempt(ctx context.Context, req request) (*resty.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, errs.New(errs.CategoryNetwork, errs.CodeTimeout,
			"rate limit wait would exceed the request deadline", errs.WithCause(err))
	}

	r := c.resty.R().SetContext(ctx)
	if traceID := tracing.GetTraceID(ctx); traceID != "" {
		r.SetHeader(tracing.TraceHeader, string(traceID))
	}
	if len(req.query) > 0 {
		r.SetQueryParams(req.query)
	}
	if len(req.form) > 0 {
		r.SetFormData(req.form)
	}
	if req.file != "" {
		r.SetFile(req.field, req.file)
	}
	if req.output != "" {
		r.SetOutput(req.output)
	}

	resp, err := r.Execute(req.method, req.endpoint)
	if err != nil {
		return nil, c.transportError(req, err)
	}

	if resp.IsError() {
		return nil, &errs.HTTPStatusError{
			StatusCode: resp.StatusCode(),
			Method:     req.method,
			Endpoint:   req.endpoint,
			Body:       c.snippet(errorBody(req, resp)),
		}
	}
	return resp, nil
}

func (c *Client) transportError(req request, err error) error {
	ce := errs.Classify(err)
	if ce.Code() == errs.CodeCancelled {
		return ce
	}

	opts := []errs.Option{
		errs.WithCause(err),
		errs.WithRetryable(ce.Retryable()),
		errs.WithDetails(ce.Details()),
		errs.WithDetail("endpoint", req.endpoint),
		errs.WithDetail("method", req.method),
	}
	if hint, ok := timeoutHints[req.endpoint]; ok && ce.Code() == errs.CodeTimeout {
		opts = append(opts, errs.WithHint(hint))
	}
	return errs.New(ce.Category(), ce.Code(), ce.Message(), opts...)
}

var whitespace = regexp.MustCompile(`\s+`)

// snippet strips markup from an upstream error page and bounds its size
func (c *Client) snippet(body []byte) string {
	text := c.sanitizer.SanitizeBytes(body)
	clean := strings.TrimSpace(whitespace.ReplaceAllString(string(text), " "))
	return decode.Truncate(clean, bodySnippetLimit)
}

func (c *Client) persistSession() {
	if !c.session.Persistent() {
		return
	}
	err := c.session.Save()
	c.metrics.RecordSessionSave(err, c.session.Len())
	if err != nil {
		c.log.Warn("Failed to persist session", zap.Error(err))
	}
}
