package hookproc

import (
	"context"
	"sync"

	"github.com/gabapcia/hookwatch/internal/hookdispatch"
	"github.com/gabapcia/hookwatch/internal/hookeval"
	"github.com/gabapcia/hookwatch/internal/pkg/logger"
	"github.com/gabapcia/hookwatch/internal/pkg/x/chflow"
)

// run consumes source events until the channel closes or ctx is canceled.
// Source-level errors are logged and skipped; each valid chain event gets a
// full evaluation pass.
func (s *service) run(ctx context.Context, eventsCh <-chan SourceEvent) {
	for {
		msg, ok := chflow.Receive(ctx, eventsCh)
		if !ok {
			return
		}

		if msg.Err != nil {
			logger.Error(ctx, "chain event source error", "error", msg.Err)
			continue
		}

		s.process(ctx, msg.Event)
	}
}

// process runs one evaluation pass: snapshot the active hooks, prefetch
// proofs, evaluate, dispatch, deliver. Every per-hook failure goes through
// the failure handler; nothing here aborts the pass for sibling hooks.
func (s *service) process(ctx context.Context, event hookeval.ChainEvent) {
	hooks, err := s.hookProvider.ActiveHooks(ctx)
	if err != nil {
		logger.Error(ctx, "unable to load active chainhooks", "error", err)
		return
	}
	if len(hooks) == 0 {
		return
	}

	proofs := s.fetchProofs(ctx, event)

	triggers, failures := s.evaluate(event, hooks)
	for _, failure := range failures {
		s.failureHandler(ctx, HookFailure{UUID: failure.UUID, Err: failure.Err})
	}

	for _, trigger := range triggers {
		occurrence, err := hookdispatch.Dispatch(trigger, proofs)
		if err != nil {
			s.failureHandler(ctx, HookFailure{UUID: trigger.Hook.UUID, Err: err})
			continue
		}

		if err := s.deliverer.Deliver(ctx, occurrence); err != nil {
			s.failureHandler(ctx, HookFailure{UUID: trigger.Hook.UUID, Err: err})
		}
	}
}

// fetchProofs pre-populates the proof lookup for the pass. A prefetch
// failure degrades to an empty lookup: payloads are still delivered, just
// without proofs.
func (s *service) fetchProofs(ctx context.Context, event hookeval.ChainEvent) map[string]string {
	if s.proofProvider == nil {
		return nil
	}

	var proofs map[string]string
	fetch := func() error {
		p, err := s.proofProvider.FetchProofs(ctx, event)
		if err != nil {
			return err
		}
		proofs = p
		return nil
	}

	var err error
	if s.retry != nil {
		err = s.retry.Execute(ctx, fetch)
	} else {
		err = fetch()
	}
	if err != nil {
		logger.Warn(ctx, "proof prefetch failed, continuing without proofs", "error", err)
		return nil
	}

	return proofs
}

// evaluate shards hook evaluation across s.workers goroutines. Per-hook
// evaluation is pure and reads only the event and its own specification, so
// no coordination is needed; results are collected by index to preserve the
// hook input order in the returned triggers.
func (s *service) evaluate(event hookeval.ChainEvent, hooks []hookeval.Specification) ([]hookeval.Trigger, []hookeval.EvaluationFailure) {
	if s.workers <= 1 || len(hooks) <= 1 {
		return hookeval.EvaluateChainEvent(event, hooks)
	}

	type result struct {
		trigger *hookeval.Trigger
		err     error
	}

	var (
		results = make([]result, len(hooks))
		indexCh = make(chan int)
		wg      sync.WaitGroup
	)

	workers := min(s.workers, len(hooks))
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexCh {
				trigger, err := hookeval.EvaluateHook(event, &hooks[i])
				results[i] = result{trigger: trigger, err: err}
			}
		}()
	}

	for i := range hooks {
		indexCh <- i
	}
	close(indexCh)
	wg.Wait()

	var (
		triggers []hookeval.Trigger
		failures []hookeval.EvaluationFailure
	)
	for i, r := range results {
		if r.err != nil {
			failures = append(failures, hookeval.EvaluationFailure{UUID: hooks[i].UUID, Err: r.err})
			continue
		}
		if r.trigger != nil {
			triggers = append(triggers, *r.trigger)
		}
	}

	return triggers, failures
}
