package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Middleware wraps a Client with cross-cutting behavior.
type Middleware func(next Client) Client

// Wrap applies middlewares so that the first one listed is outermost.
func Wrap(c Client, mws ...Middleware) Client {
	for i := len(mws) - 1; i >= 0; i-- {
		c = mws[i](c)
	}
	return c
}

// sleep is swapped out by tests.
var sleep = func(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// WithRetry retries Complete up to maxAttempts with exponential backoff
// starting at baseDelay. Permanent and configuration errors are returned
// immediately, and a canceled context stops the loop.
func WithRetry(maxAttempts int, baseDelay time.Duration) Middleware {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if baseDelay <= 0 {
		baseDelay = 300 * time.Millisecond
	}
	return func(next Client) Client {
		return &retrying{next: next, max: maxAttempts, base: baseDelay}
	}
}

type retrying struct {
	next Client
	max  int
	base time.Duration
}

func (r *retrying) Name() string { return r.next.Name() }
func (r *retrying) Close() error { return r.next.Close() }

func (r *retrying) Complete(ctx context.Context, messages []Message) (string, error) {
	var last error
	for i := 0; i < r.max; i++ {
		resp, err := r.next.Complete(ctx, messages)
		if err == nil {
			return resp, nil
		}
		if !IsRetryable(err) {
			return "", err
		}
		last = err
		if i == r.max-1 {
			break
		}
		if err := sleep(ctx, r.base*time.Duration(1<<i)); err != nil {
			return "", err
		}
	}
	return "", last
}

// WithTimeout bounds each Complete call. A call that runs out of time is
// reported as a TransientError so the retry layer may try again.
func WithTimeout(d time.Duration) Middleware {
	return func(next Client) Client {
		if d <= 0 {
			return next
		}
		return &timing{next: next, d: d}
	}
}

type timing struct {
	next Client
	d    time.Duration
}

func (t *timing) Name() string { return t.next.Name() }
func (t *timing) Close() error { return t.next.Close() }

func (t *timing) Complete(ctx context.Context, messages []Message) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()

	resp, err := t.next.Complete(callCtx, messages)
	if err != nil && ctx.Err() == nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return "", &TransientError{
			Provider: providerOf(t.next),
			Cause:    fmt.Errorf("call exceeded %s: %w", t.d, context.DeadlineExceeded),
		}
	}
	return resp, err
}

func providerOf(c Client) Provider {
	if id, err := ParseModelID(c.Name()); err == nil {
		return id.Provider
	}
	return Provider(c.Name())
}
