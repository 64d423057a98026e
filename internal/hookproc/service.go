// Package hookproc orchestrates the chainhook pipeline: it consumes chain
// events from a source, snapshots the active hook set, pre-populates the
// proof lookup, shards predicate evaluation across workers, and hands the
// resulting occurrences to a deliverer. Evaluation itself is pure
// (internal/hookeval, internal/hookdispatch); this package owns the
// lifecycle and the plumbing around it.
package hookproc

import (
	"context"
	"errors"
	"sync"

	"github.com/gabapcia/hookwatch/internal/pkg/logger"
	"github.com/gabapcia/hookwatch/internal/pkg/resilience/retry"
)

// ErrServiceAlreadyStarted is returned if Start is called more than once.
var ErrServiceAlreadyStarted = errors.New("service already started")

// defaultEvaluationWorkers is the number of goroutines hook evaluation is
// sharded across when no worker count is configured.
const defaultEvaluationWorkers = 4

// HookFailure reports that a single hook failed during a pass: predicate
// evaluation, occurrence construction, or delivery. Failures never abort the
// pass for sibling hooks.
type HookFailure struct {
	UUID string // the failing hook's identifier
	Err  error  // what went wrong
}

// failureHandler is invoked once per HookFailure.
type failureHandler func(ctx context.Context, failure HookFailure)

// Service defines the hookproc lifecycle entrypoint.
type Service interface {
	// Start subscribes to the chain-event source and begins processing.
	// Returns ErrServiceAlreadyStarted if called more than once. Call Close
	// to shut down.
	Start(ctx context.Context) error

	// Close stops processing and cancels all background routines. It is safe
	// to call Close even if the service was never started.
	Close()
}

type closeFunc func()

type service struct {
	mu        sync.Mutex
	isStarted bool
	closeFunc closeFunc

	source        ChainEventSource
	hookProvider  HookProvider
	proofProvider ProofProvider
	deliverer     Deliverer

	workers        int
	retry          retry.Retry
	failureHandler failureHandler
}

var _ Service = (*service)(nil)

// Start subscribes to the chain-event source and launches the processing
// loop in a background goroutine.
func (s *service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isStarted {
		return ErrServiceAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)

	eventsCh, err := s.source.Subscribe(ctx)
	if err != nil {
		cancel()
		return err
	}

	go s.run(ctx, eventsCh)

	s.closeFunc = closeFunc(cancel)
	s.isStarted = true
	return nil
}

// Close stops the processing loop.
func (s *service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closeFunc != nil {
		s.closeFunc()
	}
	s.closeFunc = nil
	s.isStarted = false
}

type config struct {
	workers        int
	retry          retry.Retry
	proofProvider  ProofProvider
	failureHandler failureHandler
}

// Option configures the hookproc service.
type Option func(*config)

// WithWorkers sets how many goroutines hook evaluation is sharded across.
// Values below 1 fall back to sequential evaluation.
func WithWorkers(n int) Option {
	return func(c *config) {
		c.workers = n
	}
}

// WithRetry sets the retry policy used for proof prefetching.
func WithRetry(r retry.Retry) Option {
	return func(c *config) {
		c.retry = r
	}
}

// WithProofProvider sets the collaborator that pre-populates the proof
// lookup before each pass. Without one, payloads simply carry no proofs.
func WithProofProvider(p ProofProvider) Option {
	return func(c *config) {
		c.proofProvider = p
	}
}

// WithFailureHandler sets the callback invoked for every per-hook failure.
func WithFailureHandler(f failureHandler) Option {
	return func(c *config) {
		c.failureHandler = f
	}
}

// New creates a hookproc service wiring the chain-event source, the active
// hook provider, and the occurrence deliverer.
func New(source ChainEventSource, hooks HookProvider, deliverer Deliverer, opts ...Option) *service {
	cfg := config{
		workers:        defaultEvaluationWorkers,
		failureHandler: defaultOnHookFailure,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &service{
		source:         source,
		hookProvider:   hooks,
		proofProvider:  cfg.proofProvider,
		deliverer:      deliverer,
		workers:        cfg.workers,
		retry:          cfg.retry,
		failureHandler: cfg.failureHandler,
	}
}

func defaultOnHookFailure(ctx context.Context, failure HookFailure) {
	logger.Error(ctx, "chainhook processing failure",
		"hook.uuid", failure.UUID,
		"error", failure.Err,
	)
}
