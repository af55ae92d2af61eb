package resilience

import (
	"context"
	"errors"
	"net"
	"os"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shahlaukik/money-manager-mcp/internal/shared/errs"
)

// recordingTimer fires immediately and remembers every requested wait
type recordingTimer struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *recordingTimer) timer() backoff.Timer {
	return &instantTimer{rec: r, c: make(chan time.Time, 1)}
}

type instantTimer struct {
	rec *recordingTimer
	c   chan time.Time
}

func (t *instantTimer) Start(d time.Duration) {
	t.rec.mu.Lock()
	t.rec.delays = append(t.rec.delays, d)
	t.rec.mu.Unlock()
	t.c <- time.Now()
}

func (t *instantTimer) Stop()               {}
func (t *instantTimer) C() <-chan time.Time { return t.c }

func refused() error {
	return &net.OpError{Op: "dial", Net: "tcp", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)}
}

func TestDoRetriesWithExponentialBackoff(t *testing.T) {
	base := 100 * time.Millisecond
	rec := &recordingTimer{}
	exec := NewExecutor(Policy{MaxRetries: 3, BaseDelay: base}, WithTimer(rec.timer))

	calls := 0
	got, err := Do(context.Background(), exec, func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", refused()
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, calls)

	require.Len(t, rec.delays, 2)
	beforeThird := rec.delays[1]
	assert.GreaterOrEqual(t, beforeThird, base*2)
	assert.Less(t, beforeThird, base*4)
	assert.Less(t, rec.delays[0], rec.delays[1])
}

func TestDoDoesNotRetryClientErrors(t *testing.T) {
	rec := &recordingTimer{}
	exec := NewExecutor(Policy{MaxRetries: 3, BaseDelay: time.Second}, WithTimer(rec.timer))

	calls := 0
	_, err := Do(context.Background(), exec, func(ctx context.Context) (int, error) {
		calls++
		return 0, &errs.HTTPStatusError{StatusCode: 404, Method: "GET", Endpoint: "/nope"}
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, rec.delays)

	var ce *errs.Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, errs.CategoryAPI, ce.Category())
	assert.False(t, ce.Retryable())
}

func TestDoStopsAtRetryBudget(t *testing.T) {
	tests := []struct {
		name       string
		maxRetries int
		wantCalls  int
	}{
		{"no retries", 0, 1},
		{"one retry", 1, 2},
		{"default budget", 3, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recordingTimer{}
			exec := NewExecutor(Policy{MaxRetries: tt.maxRetries, BaseDelay: time.Millisecond}, WithTimer(rec.timer))

			calls := 0
			_, err := Do(context.Background(), exec, func(ctx context.Context) (struct{}, error) {
				calls++
				return struct{}{}, &errs.HTTPStatusError{StatusCode: 503}
			})

			require.Error(t, err)
			assert.Equal(t, tt.wantCalls, calls)
			assert.Len(t, rec.delays, tt.wantCalls-1)
			assert.Equal(t, errs.CodeServerError, errs.Classify(err).Code())
		})
	}
}

func TestDoAppliesPerAttemptTimeout(t *testing.T) {
	rec := &recordingTimer{}
	exec := NewExecutor(Policy{Timeout: 20 * time.Millisecond, MaxRetries: 1, BaseDelay: time.Millisecond}, WithTimer(rec.timer))

	calls := 0
	_, err := Do(context.Background(), exec, func(ctx context.Context) (int, error) {
		calls++
		<-ctx.Done()
		return 0, ctx.Err()
	})

	require.Error(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, errs.CodeTimeout, errs.Classify(err).Code())
}

func TestDoCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	exec := NewExecutor(Policy{MaxRetries: 3, BaseDelay: time.Hour})

	calls := 0
	done := make(chan error, 1)
	go func() {
		_, err := Do(ctx, exec, func(ctx context.Context) (int, error) {
			calls++
			return 0, refused()
		})
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.Equal(t, errs.CodeCancelled, errs.Classify(err).Code())
		assert.Equal(t, 1, calls)
	case <-time.After(2 * time.Second):
		t.Fatal("executor did not stop after cancellation")
	}
}

func TestDoPassesClassifiedErrorsThrough(t *testing.T) {
	original := errs.New(errs.CategoryAPI, errs.CodeInvalidResponse, "bad body")
	exec := NewExecutor(Policy{MaxRetries: 3})

	_, err := Do(context.Background(), exec, func(ctx context.Context) (int, error) {
		return 0, original
	})

	assert.Same(t, original, err)
}

func TestRetryHook(t *testing.T) {
	var events []RetryEvent
	rec := &recordingTimer{}
	exec := NewExecutor(Policy{MaxRetries: 2, BaseDelay: 10 * time.Millisecond},
		WithTimer(rec.timer),
		WithRetryHook(func(ev RetryEvent) { events = append(events, ev) }),
	)

	_, _ = Do(context.Background(), exec, func(ctx context.Context) (int, error) {
		return 0, refused()
	})

	require.Len(t, events, 2)
	assert.Equal(t, 0, events[0].Attempt)
	assert.Equal(t, 10*time.Millisecond, events[0].Delay)
	assert.Equal(t, 1, events[1].Attempt)
	assert.Equal(t, 20*time.Millisecond, events[1].Delay)
	assert.Equal(t, errs.CodeConnectionRefused, events[0].Err.Code())
}

func TestDoCapsBackoffAtMaxDelay(t *testing.T) {
	rec := &recordingTimer{}
	exec := NewExecutor(Policy{MaxRetries: 4, BaseDelay: time.Second, MaxDelay: 3 * time.Second}, WithTimer(rec.timer))

	calls := 0
	_, err := Do(context.Background(), exec, func(ctx context.Context) (int, error) {
		calls++
		return 0, refused()
	})

	require.Error(t, err)
	assert.Equal(t, 5, calls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 3 * time.Second, 3 * time.Second}, rec.delays)
	assert.Equal(t, errs.CodeConnectionRefused, errs.Classify(err).Code())
}

func TestDoReturnsCancelledBeforeFirstAttempt(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	exec := NewExecutor(Policy{MaxRetries: 3, BaseDelay: time.Millisecond})

	calls := 0
	_, err := Do(ctx, exec, func(ctx context.Context) (int, error) {
		calls++
		return 1, nil
	})

	require.Error(t, err)
	assert.Zero(t, calls)
	assert.Equal(t, errs.CodeCancelled, errs.Classify(err).Code())
}

func TestDelay(t *testing.T) {
	exec := NewExecutor(Policy{BaseDelay: time.Second})
	assert.Equal(t, time.Second, exec.Delay(0))
	assert.Equal(t, 2*time.Second, exec.Delay(1))
	assert.Equal(t, 8*time.Second, exec.Delay(3))
	assert.Equal(t, maxDuration, exec.Delay(200))

	capped := NewExecutor(Policy{BaseDelay: time.Second, MaxDelay: 3 * time.Second})
	assert.Equal(t, 2*time.Second, capped.Delay(1))
	assert.Equal(t, 3*time.Second, capped.Delay(2))

	assert.Zero(t, NewExecutor(Policy{}).Delay(5))
}

func TestWithoutRetries(t *testing.T) {
	exec := NewExecutor(Policy{MaxRetries: 3, BaseDelay: time.Second})
	single := exec.WithoutRetries()

	assert.Equal(t, 0, single.Policy().MaxRetries)
	assert.Equal(t, 3, exec.Policy().MaxRetries)

	calls := 0
	_, err := Do(context.Background(), single, func(ctx context.Context) (int, error) {
		calls++
		return 0, errors.New("boom")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}
