// Package retry wraps avast/retry-go behind a small Retry interface with
// functional options. The default policy is exponential backoff with three
// total attempts, which fits transient network and storage failures.
//
// Basic usage:
//
//	r := retry.New()
//	err := r.Execute(ctx, func() error {
//	    return someFlakyOperation()
//	})
package retry

import (
	"context"
	"time"

	retry "github.com/avast/retry-go/v4"
)

// Retry executes operations with automatic retries on failure.
type Retry interface {
	// Execute runs operation, retrying on error according to the configured
	// policy. The operation should be idempotent. If ctx is canceled or its
	// deadline passes, retrying stops and the context error is returned.
	// A nil return means one of the attempts succeeded.
	Execute(ctx context.Context, operation func() error) error
}

// config holds internal settings for the retry mechanism.
type config struct {
	attempts    uint          // maximum number of attempts, including the first
	delay       time.Duration // base delay, grows with backoff
	maxDelay    time.Duration // backoff cap
	lastErrOnly bool          // return only the final attempt's error
}

// Option configures the retry mechanism. Options are applied in order.
type Option func(*config)

// retrier implements Retry on top of retry-go.
type retrier struct {
	cfg config
}

var _ Retry = (*retrier)(nil)

// New builds a Retry with the given options. Defaults: 3 attempts, 1 second
// base delay, 5 second delay cap, exponential backoff, last error only.
func New(opts ...Option) Retry {
	cfg := config{
		attempts:    3,
		delay:       1 * time.Second,
		maxDelay:    5 * time.Second,
		lastErrOnly: true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &retrier{
		cfg: cfg,
	}
}

// Execute runs operation under the configured policy. The first attempt is
// immediate; later attempts wait with exponential backoff up to the cap.
func (r *retrier) Execute(ctx context.Context, operation func() error) error {
	options := []retry.Option{
		retry.Attempts(r.cfg.attempts),
		retry.Delay(r.cfg.delay),
		retry.MaxDelay(r.cfg.maxDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(r.cfg.lastErrOnly),
		retry.Context(ctx),
	}

	return retry.Do(operation, options...)
}

// WithAttempts sets the total number of attempts, including the initial one.
// Default: 3.
func WithAttempts(n uint) Option {
	return func(c *config) {
		c.attempts = n
	}
}

// WithDelay sets the base delay before the first retry. Backoff grows from
// this value. Default: 1 second.
func WithDelay(d time.Duration) Option {
	return func(c *config) {
		c.delay = d
	}
}

// WithMaxDelay caps the backoff delay between attempts. Default: 5 seconds.
func WithMaxDelay(d time.Duration) Option {
	return func(c *config) {
		c.maxDelay = d
	}
}

// WithLastErrorOnly controls whether Execute returns only the final attempt's
// error (true, the default) or every attempt's error joined.
func WithLastErrorOnly(b bool) Option {
	return func(c *config) {
		c.lastErrOnly = b
	}
}
