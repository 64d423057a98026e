package hookproc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gabapcia/hookwatch/internal/hookdispatch"
	"github.com/gabapcia/hookwatch/internal/hookeval"
	"github.com/gabapcia/hookwatch/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	_ = logger.Init("error")
}

// stubSource replays a fixed list of source events.
type stubSource struct {
	events       []SourceEvent
	subscribeErr error
}

var _ ChainEventSource = (*stubSource)(nil)

func (s *stubSource) Subscribe(ctx context.Context) (<-chan SourceEvent, error) {
	if s.subscribeErr != nil {
		return nil, s.subscribeErr
	}

	ch := make(chan SourceEvent, len(s.events))
	for _, event := range s.events {
		ch <- event
	}
	close(ch)
	return ch, nil
}

// stubHookProvider returns a fixed hook set.
type stubHookProvider struct {
	hooks []hookeval.Specification
	err   error
}

var _ HookProvider = (*stubHookProvider)(nil)

func (s *stubHookProvider) ActiveHooks(ctx context.Context) ([]hookeval.Specification, error) {
	return s.hooks, s.err
}

// stubProofProvider returns a fixed proof lookup, failing a configured number
// of times first.
type stubProofProvider struct {
	proofs    map[string]string
	failures  int
	callCount int
}

var _ ProofProvider = (*stubProofProvider)(nil)

func (s *stubProofProvider) FetchProofs(ctx context.Context, event hookeval.ChainEvent) (map[string]string, error) {
	s.callCount++
	if s.callCount <= s.failures {
		return nil, errors.New("proof backend unavailable")
	}
	return s.proofs, nil
}

// collectingDeliverer records every delivered occurrence and signals on each.
type collectingDeliverer struct {
	occurrences chan hookdispatch.Occurrence
	err         error
}

var _ Deliverer = (*collectingDeliverer)(nil)

func newCollectingDeliverer(capacity int) *collectingDeliverer {
	return &collectingDeliverer{occurrences: make(chan hookdispatch.Occurrence, capacity)}
}

func (d *collectingDeliverer) Deliver(ctx context.Context, occurrence hookdispatch.Occurrence) error {
	d.occurrences <- occurrence
	return d.err
}

func (d *collectingDeliverer) wait(t *testing.T) hookdispatch.Occurrence {
	t.Helper()
	select {
	case occurrence := <-d.occurrences:
		return occurrence
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a delivery")
		return nil
	}
}

func noopHook(uuid, txID string) hookeval.Specification {
	return hookeval.Specification{
		UUID:      uuid,
		Predicate: hookeval.Predicate{Kind: hookeval.PredicateTxID, TxID: txID},
		Action:    hookeval.Action{Type: hookeval.ActionNoop},
	}
}

func appliedEvent(txHashes ...string) hookeval.ChainEvent {
	txs := make([]hookeval.Transaction, 0, len(txHashes))
	for _, hash := range txHashes {
		txs = append(txs, hookeval.Transaction{
			TransactionIdentifier: hookeval.TransactionIdentifier{Hash: hash},
		})
	}

	return hookeval.BlocksApplied{NewBlocks: []hookeval.Block{{
		BlockIdentifier: hookeval.BlockIdentifier{Index: 1, Hash: "0xb1"},
		Transactions:    txs,
	}}}
}

func TestServiceLifecycle(t *testing.T) {
	t.Run("start twice fails", func(t *testing.T) {
		svc := New(&stubSource{}, &stubHookProvider{}, newCollectingDeliverer(1))

		require.NoError(t, svc.Start(t.Context()))
		defer svc.Close()

		assert.ErrorIs(t, svc.Start(t.Context()), ErrServiceAlreadyStarted)
	})

	t.Run("close allows a restart", func(t *testing.T) {
		svc := New(&stubSource{}, &stubHookProvider{}, newCollectingDeliverer(1))

		require.NoError(t, svc.Start(t.Context()))
		svc.Close()

		require.NoError(t, svc.Start(t.Context()))
		svc.Close()
	})

	t.Run("close before start is safe", func(t *testing.T) {
		svc := New(&stubSource{}, &stubHookProvider{}, newCollectingDeliverer(1))
		assert.NotPanics(t, svc.Close)
	})

	t.Run("subscribe failure aborts start", func(t *testing.T) {
		subscribeErr := errors.New("feed not found")
		source := &stubSource{subscribeErr: subscribeErr}
		svc := New(source, &stubHookProvider{}, newCollectingDeliverer(1))

		assert.ErrorIs(t, svc.Start(t.Context()), subscribeErr)

		// A failed start must not block a later one.
		source.subscribeErr = nil
		require.NoError(t, svc.Start(t.Context()))
		svc.Close()
	})
}

func TestServiceProcessing(t *testing.T) {
	t.Run("matching hook produces a delivery", func(t *testing.T) {
		source := &stubSource{events: []SourceEvent{{Event: appliedEvent("0xt1")}}}
		hooks := &stubHookProvider{hooks: []hookeval.Specification{noopHook("hook-1", "0xt1")}}
		deliverer := newCollectingDeliverer(1)

		svc := New(source, hooks, deliverer)
		require.NoError(t, svc.Start(t.Context()))
		defer svc.Close()

		occurrence := deliverer.wait(t)
		dataOccurrence, ok := occurrence.(hookdispatch.DataOccurrence)
		require.True(t, ok)
		assert.Equal(t, "hook-1", dataOccurrence.Payload.UUID)
		require.Len(t, dataOccurrence.Payload.Apply, 1)
		assert.Equal(t, "0xt1", dataOccurrence.Payload.Apply[0].Transaction.TransactionIdentifier.Hash)
	})

	t.Run("source errors are skipped, later events still process", func(t *testing.T) {
		source := &stubSource{events: []SourceEvent{
			{Err: errors.New("malformed feed line")},
			{Event: appliedEvent("0xt1")},
		}}
		hooks := &stubHookProvider{hooks: []hookeval.Specification{noopHook("hook-1", "0xt1")}}
		deliverer := newCollectingDeliverer(1)

		svc := New(source, hooks, deliverer)
		require.NoError(t, svc.Start(t.Context()))
		defer svc.Close()

		occurrence := deliverer.wait(t)
		assert.IsType(t, hookdispatch.DataOccurrence{}, occurrence)
	})

	t.Run("proof provider populates the payload", func(t *testing.T) {
		source := &stubSource{events: []SourceEvent{{Event: appliedEvent("0xt1")}}}
		hooks := &stubHookProvider{hooks: []hookeval.Specification{noopHook("hook-1", "0xt1")}}
		deliverer := newCollectingDeliverer(1)
		proofs := &stubProofProvider{proofs: map[string]string{"0xt1": "proof-data"}}

		svc := New(source, hooks, deliverer, WithProofProvider(proofs))
		require.NoError(t, svc.Start(t.Context()))
		defer svc.Close()

		occurrence := deliverer.wait(t)
		payload := occurrence.(hookdispatch.DataOccurrence).Payload
		require.Len(t, payload.Apply, 1)
		assert.Equal(t, []byte("proof-data"), payload.Apply[0].Proof)
	})

	t.Run("proof prefetch failure degrades to no proofs", func(t *testing.T) {
		source := &stubSource{events: []SourceEvent{{Event: appliedEvent("0xt1")}}}
		hooks := &stubHookProvider{hooks: []hookeval.Specification{noopHook("hook-1", "0xt1")}}
		deliverer := newCollectingDeliverer(1)
		proofs := &stubProofProvider{failures: 100}

		svc := New(source, hooks, deliverer, WithProofProvider(proofs))
		require.NoError(t, svc.Start(t.Context()))
		defer svc.Close()

		occurrence := deliverer.wait(t)
		payload := occurrence.(hookdispatch.DataOccurrence).Payload
		require.Len(t, payload.Apply, 1)
		assert.Nil(t, payload.Apply[0].Proof)
	})

	t.Run("evaluation failures reach the failure handler", func(t *testing.T) {
		badHook := hookeval.Specification{
			UUID:      "hook-bad",
			Predicate: hookeval.Predicate{Kind: hookeval.PredicateP2PKH, Address: "broken"},
			Action:    hookeval.Action{Type: hookeval.ActionNoop},
		}

		source := &stubSource{events: []SourceEvent{{Event: appliedEvent("0xt1")}}}
		hooks := &stubHookProvider{hooks: []hookeval.Specification{badHook, noopHook("hook-ok", "0xt1")}}
		deliverer := newCollectingDeliverer(1)

		failuresCh := make(chan HookFailure, 1)
		svc := New(source, hooks, deliverer,
			WithWorkers(1),
			WithFailureHandler(func(ctx context.Context, failure HookFailure) {
				failuresCh <- failure
			}),
		)
		require.NoError(t, svc.Start(t.Context()))
		defer svc.Close()

		select {
		case failure := <-failuresCh:
			assert.Equal(t, "hook-bad", failure.UUID)
			assert.ErrorIs(t, failure.Err, hookeval.ErrInvalidAddressEncoding)
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for the failure handler")
		}

		// The healthy sibling still delivers.
		occurrence := deliverer.wait(t)
		assert.Equal(t, "hook-ok", occurrence.(hookdispatch.DataOccurrence).Payload.UUID)
	})

	t.Run("delivery failures are isolated per hook", func(t *testing.T) {
		source := &stubSource{events: []SourceEvent{{Event: appliedEvent("0xt1")}}}
		hooks := &stubHookProvider{hooks: []hookeval.Specification{
			noopHook("hook-1", "0xt1"),
			noopHook("hook-2", "0xt1"),
		}}

		deliverer := newCollectingDeliverer(2)
		deliverer.err = errors.New("sink unavailable")

		failuresCh := make(chan HookFailure, 2)
		svc := New(source, hooks, deliverer,
			WithFailureHandler(func(ctx context.Context, failure HookFailure) {
				failuresCh <- failure
			}),
		)
		require.NoError(t, svc.Start(t.Context()))
		defer svc.Close()

		// Both hooks attempt delivery despite the first one failing.
		deliverer.wait(t)
		deliverer.wait(t)

		for range 2 {
			select {
			case failure := <-failuresCh:
				assert.ErrorIs(t, failure.Err, deliverer.err)
			case <-time.After(2 * time.Second):
				t.Fatal("timed out waiting for the failure handler")
			}
		}
	})
}

func TestServiceEvaluate(t *testing.T) {
	t.Run("parallel evaluation preserves hook input order", func(t *testing.T) {
		hooks := make([]hookeval.Specification, 0, 16)
		txHashes := make([]string, 0, 16)
		for i := range 16 {
			hash := string(rune('a'+i)) + "-tx"
			hooks = append(hooks, noopHook("hook-"+string(rune('a'+i)), hash))
			txHashes = append(txHashes, hash)
		}
		event := appliedEvent(txHashes...)

		svc := New(&stubSource{}, &stubHookProvider{}, newCollectingDeliverer(1), WithWorkers(4))

		triggers, failures := svc.evaluate(event, hooks)
		assert.Empty(t, failures)
		require.Len(t, triggers, len(hooks))
		for i, trigger := range triggers {
			assert.Equal(t, hooks[i].UUID, trigger.Hook.UUID)
		}
	})

	t.Run("sequential fallback for a single hook", func(t *testing.T) {
		event := appliedEvent("0xt1")
		hooks := []hookeval.Specification{noopHook("hook-1", "0xt1")}

		svc := New(&stubSource{}, &stubHookProvider{}, newCollectingDeliverer(1), WithWorkers(8))

		triggers, failures := svc.evaluate(event, hooks)
		assert.Empty(t, failures)
		require.Len(t, triggers, 1)
	})

	t.Run("worker failures carry the hook uuid", func(t *testing.T) {
		hooks := []hookeval.Specification{
			noopHook("hook-1", "0xt1"),
			{
				UUID:      "hook-bad",
				Predicate: hookeval.Predicate{Kind: hookeval.PredicateP2SH, Address: "broken"},
			},
			noopHook("hook-3", "0xt1"),
		}
		event := appliedEvent("0xt1")

		svc := New(&stubSource{}, &stubHookProvider{}, newCollectingDeliverer(1), WithWorkers(3))

		triggers, failures := svc.evaluate(event, hooks)
		require.Len(t, failures, 1)
		assert.Equal(t, "hook-bad", failures[0].UUID)
		require.Len(t, triggers, 2)
		assert.Equal(t, "hook-1", triggers[0].Hook.UUID)
		assert.Equal(t, "hook-3", triggers[1].Hook.UUID)
	})
}
