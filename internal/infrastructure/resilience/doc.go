/*
Package resilience provides bounded retry with exponential backoff for
upstream requests.

# Overview

An Executor wraps one logical request. Each attempt runs under its own
timeout; a failed attempt is classified through the errs taxonomy and only
retryable classes (NETWORK, SESSION, API 5xx) are attempted again.

# Backoff

The delay after the zero-based attempt n is BaseDelay * 2^n. The loop runs
on a cenkalti/backoff ExponentialBackOff with randomization disabled, so
there is no jitter. MaxDelay caps a single delay when set.

	attempt 0 --fail--> wait 1x --> attempt 1 --fail--> wait 2x --> attempt 2 ...

Worst-case latency is Timeout * (MaxRetries+1) plus the sum of the delays.

# Usage

	exec := resilience.NewExecutor(resilience.Policy{
		Timeout:    30 * time.Second,
		MaxRetries: 3,
		BaseDelay:  time.Second,
	}, resilience.WithRetryHook(func(ev resilience.RetryEvent) {
		log.Warn("retrying", zap.Int("attempt", ev.Attempt))
	}))

	body, err := resilience.Do(ctx, exec, func(ctx context.Context) ([]byte, error) {
		return fetch(ctx)
	})

# Cancellation

Cancelling the caller's context stops the loop at the next attempt or
during a backoff wait and yields REQUEST_CANCELLED.
*/
package resilience
