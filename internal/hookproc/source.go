package hookproc

import (
	"context"

	"github.com/gabapcia/hookwatch/internal/hookdispatch"
	"github.com/gabapcia/hookwatch/internal/hookeval"
)

// SourceEvent is one message emitted by a chain-data source. It carries
// either a chain event or an error the source wants surfaced (e.g., a
// malformed feed entry). Errors are logged and skipped; they never stop the
// stream.
type SourceEvent struct {
	Event hookeval.ChainEvent // the chain-state change (nil if Err is set)
	Err   error               // any error encountered producing it
}

// ChainEventSource defines an opaque producer of chain-state changes. The
// engine does not care where events come from: a node subscription, a replay
// file, or a test fixture.
type ChainEventSource interface {
	// Subscribe begins streaming chain events. The returned channel is
	// closed when the source is exhausted or ctx is canceled.
	Subscribe(ctx context.Context) (<-chan SourceEvent, error)
}

// HookProvider supplies the set of active chainhooks. It is queried once per
// chain event, so registrations and deregistrations take effect between
// passes, never mid-pass.
type HookProvider interface {
	ActiveHooks(ctx context.Context) ([]hookeval.Specification, error)
}

// ProofProvider supplies transaction inclusion proofs, keyed by transaction
// hash. The lookup is fully populated before a pass begins and is read-only
// for its duration; a transaction missing from the lookup means "no proof
// available", not an error.
type ProofProvider interface {
	FetchProofs(ctx context.Context, event hookeval.ChainEvent) (map[string]string, error)
}

// Deliverer executes the occurrences this service produces. Delivery is the
// only place the pipeline performs I/O; a delivery failure is isolated to
// its hook and reported through the failure handler.
type Deliverer interface {
	Deliver(ctx context.Context, occurrence hookdispatch.Occurrence) error
}
