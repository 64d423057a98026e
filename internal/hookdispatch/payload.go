// Package hookdispatch converts evaluation triggers into dispatch-ready
// occurrences: the canonical JSON payload plus a descriptor for the hook's
// configured action. No I/O happens here; executing an occurrence (sending
// the HTTP request, writing the file) is the caller's responsibility.
package hookdispatch

import (
	"github.com/gabapcia/hookwatch/internal/hookeval"
)

// confirmationCount is the fixed confirmation count attached to every
// payload entry. Live confirmation depth is not tracked: a real count would
// require chain-tip state this engine intentionally does not keep, so the
// value stays a constant rather than a computation.
const confirmationCount = 1

// ApplyEntry is one matched transaction on the apply side of a payload,
// carrying its inclusion proof when the lookup has one.
type ApplyEntry struct {
	Transaction     hookeval.Transaction     `json:"transaction"`
	BlockIdentifier hookeval.BlockIdentifier `json:"block_identifier"`
	Confirmations   uint8                    `json:"confirmations"`
	Proof           string                   `json:"proof,omitempty"`
}

// RollbackEntry is one matched transaction on the rollback side of a
// payload. Rollback entries never carry proofs.
type RollbackEntry struct {
	Transaction     hookeval.Transaction     `json:"transaction"`
	BlockIdentifier hookeval.BlockIdentifier `json:"block_identifier"`
	Confirmations   uint8                    `json:"confirmations"`
}

// HookSummary echoes the triggered hook's identity back to the consumer.
type HookSummary struct {
	UUID      string             `json:"uuid"`
	Predicate hookeval.Predicate `json:"predicate"`
}

// Payload is the canonical structured payload delivered for a trigger.
type Payload struct {
	Apply     []ApplyEntry    `json:"apply"`
	Rollback  []RollbackEntry `json:"rollback"`
	Chainhook HookSummary     `json:"chainhook"`
}

// BuildPayload converts a trigger and a pre-populated proof lookup (keyed by
// transaction hash) into the canonical payload. The lookup is read-only; a
// missing entry means "no proof available", not an error. Entry order
// mirrors the trigger's own order.
func BuildPayload(trigger hookeval.Trigger, proofs map[string]string) Payload {
	apply := make([]ApplyEntry, 0, len(trigger.Apply))
	for _, entry := range trigger.Apply {
		apply = append(apply, ApplyEntry{
			Transaction:     *entry.Transaction,
			BlockIdentifier: *entry.BlockIdentifier,
			Confirmations:   confirmationCount,
			Proof:           proofs[entry.Transaction.TransactionIdentifier.Hash],
		})
	}

	rollback := make([]RollbackEntry, 0, len(trigger.Rollback))
	for _, entry := range trigger.Rollback {
		rollback = append(rollback, RollbackEntry{
			Transaction:     *entry.Transaction,
			BlockIdentifier: *entry.BlockIdentifier,
			Confirmations:   confirmationCount,
		})
	}

	return Payload{
		Apply:    apply,
		Rollback: rollback,
		Chainhook: HookSummary{
			UUID:      trigger.Hook.UUID,
			Predicate: trigger.Hook.Predicate,
		},
	}
}
