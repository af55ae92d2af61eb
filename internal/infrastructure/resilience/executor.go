package resilience

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/shahlaukik/money-manager-mcp/internal/shared/errs"
)

// Policy bounds one logical request
type Policy struct {
	// Timeout applies to each attempt separately. Zero disables it.
	Timeout time.Duration
	// MaxRetries is the number of retries after the first attempt
	MaxRetries int
	// BaseDelay is the backoff unit: attempt n waits BaseDelay * 2^n
	BaseDelay time.Duration
	// MaxDelay caps a single backoff. Zero leaves it uncapped.
	MaxDelay time.Duration
}

// TimerFunc creates the timer that waits out one backoff loop. A fresh
// timer is created per Do call.
type TimerFunc func() backoff.Timer

// RetryEvent describes a failed attempt that is about to be retried
type RetryEvent struct {
	Attempt int
	Delay   time.Duration
	Err     *errs.Error
}

// Option configures an Executor
type Option func(*Executor)

// WithClassifier replaces errs.Classify
func WithClassifier(fn func(error) *errs.Error) Option {
	return func(e *Executor) { e.classify = fn }
}

// WithTimer replaces the wall-clock backoff timer
func WithTimer(fn TimerFunc) Option {
	return func(e *Executor) { e.timer = fn }
}

// WithRetryHook is called before every backoff wait
func WithRetryHook(fn func(RetryEvent)) Option {
	return func(e *Executor) { e.onRetry = fn }
}

// Executor runs a request function with per-attempt timeouts and
// exponential backoff for retryable failures. It holds no per-request
// state and is safe for concurrent use.
type Executor struct {
	policy   Policy
	classify func(error) *errs.Error
	timer    TimerFunc
	onRetry  func(RetryEvent)
}

// NewExecutor creates an executor for the given policy
func NewExecutor(policy Policy, opts ...Option) *Executor {
	if policy.MaxRetries < 0 {
		policy.MaxRetries = 0
	}
	e := &Executor{
		policy:   policy,
		classify: errs.Classify,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Policy returns the configured policy
func (e *Executor) Policy() Policy {
	return e.policy
}

// WithoutRetries returns a copy that makes a single attempt
func (e *Executor) WithoutRetries() *Executor {
	cp := *e
	cp.policy.MaxRetries = 0
	return &cp
}

// Delay returns the backoff before retrying after the zero-based attempt
func (e *Executor) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	b := e.backOff()
	d := b.NextBackOff()
	for i := 0; i < attempt; i++ {
		d = b.NextBackOff()
	}
	return d
}

const maxDuration = time.Duration(1<<63 - 1)

// backOff yields BaseDelay * 2^n for the nth retry, capped by MaxDelay.
// Randomization is off and there is no elapsed-time limit.
func (e *Executor) backOff() *backoff.ExponentialBackOff {
	maxInterval := e.policy.MaxDelay
	if maxInterval <= 0 {
		maxInterval = maxDuration
	}
	b := &backoff.ExponentialBackOff{
		InitialInterval:     max(e.policy.BaseDelay, 0),
		RandomizationFactor: 0,
		Multiplier:          2,
		MaxInterval:         maxInterval,
		MaxElapsedTime:      0,
		Stop:                backoff.Stop,
		Clock:               backoff.SystemClock,
	}
	b.Reset()
	return b
}

// Do runs fn until it succeeds, fails with a non-retryable error, or the
// retry budget is spent. Every returned error is an *errs.Error.
func Do[T any](ctx context.Context, e *Executor, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	attempt := 0
	operation := func() (T, error) {
		if err := ctx.Err(); err != nil {
			return zero, backoff.Permanent(e.classify(err))
		}
		v, err := runAttempt(ctx, e.policy.Timeout, fn)
		if err == nil {
			return v, nil
		}
		if ctx.Err() != nil {
			// The caller gave up; report that rather than the attempt failure.
			return zero, backoff.Permanent(e.classify(ctx.Err()))
		}
		ce := e.classify(err)
		if !ce.Retryable() {
			return zero, backoff.Permanent(ce)
		}
		return zero, ce
	}

	notify := func(err error, delay time.Duration) {
		if e.onRetry != nil {
			e.onRetry(RetryEvent{Attempt: attempt, Delay: delay, Err: e.classify(err)})
		}
		attempt++
	}

	var timer backoff.Timer
	if e.timer != nil {
		timer = e.timer()
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(e.backOff(), uint64(e.policy.MaxRetries)), ctx)
	v, err := backoff.RetryNotifyWithTimerAndData(operation, policy, notify, timer)
	if err != nil {
		return zero, e.classify(err)
	}
	return v, nil
}

func runAttempt[T any](ctx context.Context, timeout time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	if timeout <= 0 {
		return fn(ctx)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(attemptCtx)
}
