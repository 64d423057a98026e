package hookdispatch

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gabapcia/hookwatch/internal/hookeval"
)

var (
	// ErrMalformedAction is returned when a hook's action configuration
	// cannot be turned into an occurrence: unknown action type, missing
	// url/path, or an unparseable HTTP method. It is reported per hook and
	// never aborts dispatch of sibling hooks.
	ErrMalformedAction = errors.New("malformed action configuration")

	// ErrSerializationFailure signals that the payload could not be encoded.
	// With well-typed inputs this is effectively unreachable; treat it as an
	// internal invariant violation rather than user error.
	ErrSerializationFailure = errors.New("payload serialization failure")
)

// Occurrence is the dispatch-ready result of a trigger. It is a closed
// union: HTTPOccurrence, FileOccurrence or DataOccurrence.
type Occurrence interface {
	isOccurrence()
}

// HTTPOccurrence describes a remote call to perform: the engine builds the
// full request descriptor but never sends it.
type HTTPOccurrence struct {
	Method  string
	URL     string
	Headers http.Header
	Body    []byte
}

// FileOccurrence describes a file write to perform: the engine never touches
// the filesystem itself.
type FileOccurrence struct {
	Path string
	Body []byte
}

// DataOccurrence carries a fully materialized payload for in-process
// consumers that skip serialization.
type DataOccurrence struct {
	Payload OwnedPayload
}

func (HTTPOccurrence) isOccurrence() {}
func (FileOccurrence) isOccurrence() {}
func (DataOccurrence) isOccurrence() {}

// OwnedApplyEntry mirrors ApplyEntry with owned copies of the transaction
// and block identifier, safe to retain after the evaluation pass ends.
type OwnedApplyEntry struct {
	Transaction     hookeval.Transaction
	BlockIdentifier hookeval.BlockIdentifier
	Confirmations   uint8
	Proof           []byte
}

// OwnedRollbackEntry mirrors RollbackEntry with owned copies.
type OwnedRollbackEntry struct {
	Transaction     hookeval.Transaction
	BlockIdentifier hookeval.BlockIdentifier
	Confirmations   uint8
}

// OwnedPayload is the in-process form of a payload: same logical fields as
// the JSON shape, but as owned native values.
type OwnedPayload struct {
	Apply    []OwnedApplyEntry
	Rollback []OwnedRollbackEntry
	UUID     string
}

// allowedMethods is the set of HTTP methods an action may configure.
var allowedMethods = map[string]struct{}{
	http.MethodGet:     {},
	http.MethodHead:    {},
	http.MethodPost:    {},
	http.MethodPut:     {},
	http.MethodPatch:   {},
	http.MethodDelete:  {},
	http.MethodOptions: {},
}

// parseMethod normalizes and validates the configured HTTP method string.
func parseMethod(method string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(method))
	if _, ok := allowedMethods[normalized]; !ok {
		return "", fmt.Errorf("%w: invalid http method %q", ErrMalformedAction, method)
	}

	return normalized, nil
}

// Dispatch maps a trigger to the occurrence its hook's action calls for. It
// is total over the action kinds; configuration problems surface as
// ErrMalformedAction so the caller can report them to the hook's owner
// without aborting the pass.
func Dispatch(trigger hookeval.Trigger, proofs map[string]string) (Occurrence, error) {
	action := trigger.Hook.Action

	switch action.Type {
	case hookeval.ActionHTTP:
		if action.URL == "" {
			return nil, fmt.Errorf("%w: http action requires a url", ErrMalformedAction)
		}

		method, err := parseMethod(action.Method)
		if err != nil {
			return nil, err
		}

		body, err := serializePayload(trigger, proofs)
		if err != nil {
			return nil, err
		}

		headers := http.Header{}
		headers.Set("Content-Type", "application/json")
		headers.Set("Authorization", action.AuthorizationHeader)

		return HTTPOccurrence{
			Method:  method,
			URL:     action.URL,
			Headers: headers,
			Body:    body,
		}, nil

	case hookeval.ActionFile:
		if action.Path == "" {
			return nil, fmt.Errorf("%w: file action requires a path", ErrMalformedAction)
		}

		body, err := serializePayload(trigger, proofs)
		if err != nil {
			return nil, err
		}

		return FileOccurrence{Path: action.Path, Body: body}, nil

	case hookeval.ActionNoop:
		return DataOccurrence{Payload: materializePayload(trigger, proofs)}, nil

	default:
		return nil, fmt.Errorf("%w: unknown action type %q", ErrMalformedAction, action.Type)
	}
}

// serializePayload builds the canonical payload and encodes it to JSON.
func serializePayload(trigger hookeval.Trigger, proofs map[string]string) ([]byte, error) {
	body, err := json.Marshal(BuildPayload(trigger, proofs))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerializationFailure, err)
	}

	return body, nil
}

// materializePayload deep-copies the trigger's matches into an OwnedPayload.
// This is the only dispatch branch that clones transaction and block data:
// there is no external sink to keep the event's memory alive once the pass
// returns.
func materializePayload(trigger hookeval.Trigger, proofs map[string]string) OwnedPayload {
	apply := make([]OwnedApplyEntry, 0, len(trigger.Apply))
	for _, entry := range trigger.Apply {
		owned := OwnedApplyEntry{
			Transaction:     entry.Transaction.Clone(),
			BlockIdentifier: *entry.BlockIdentifier,
			Confirmations:   confirmationCount,
		}
		if proof, ok := proofs[entry.Transaction.TransactionIdentifier.Hash]; ok {
			owned.Proof = []byte(proof)
		}
		apply = append(apply, owned)
	}

	rollback := make([]OwnedRollbackEntry, 0, len(trigger.Rollback))
	for _, entry := range trigger.Rollback {
		rollback = append(rollback, OwnedRollbackEntry{
			Transaction:     entry.Transaction.Clone(),
			BlockIdentifier: *entry.BlockIdentifier,
			Confirmations:   confirmationCount,
		})
	}

	return OwnedPayload{
		Apply:    apply,
		Rollback: rollback,
		UUID:     trigger.Hook.UUID,
	}
}
