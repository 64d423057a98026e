package hookregistry

import (
	"context"
	"errors"
	"fmt"

	"github.com/gabapcia/hookwatch/internal/hookeval"
	"github.com/gabapcia/hookwatch/internal/pkg/validator"
)

// ErrInvalidSpecification is returned when a hook specification fails
// registration-time validation.
var ErrInvalidSpecification = errors.New("invalid hook specification")

// HookStorage defines the persistence interface for registered chainhook
// specifications.
//
// Implementations must treat the stored set as the source of truth for the
// active hooks evaluated by the processing pipeline. Swapping entries is
// safe at any time: the pipeline snapshots the set once per pass.
type HookStorage interface {
	// SaveHook persists the given specification, overwriting any previous
	// specification stored under the same UUID.
	SaveHook(ctx context.Context, spec hookeval.Specification) error

	// DeleteHook removes the specification stored under the given UUID.
	// Deleting an unknown UUID is not an error.
	DeleteHook(ctx context.Context, uuid string) error

	// ListHooks returns every stored specification in a deterministic order.
	ListHooks(ctx context.Context) ([]hookeval.Specification, error)
}

// validateSpecification runs struct-tag validation plus the per-kind
// parameter checks the tags cannot express.
func validateSpecification(spec hookeval.Specification) error {
	if err := validator.Validate(spec); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSpecification, err)
	}

	if err := validatePredicate(spec.Predicate); err != nil {
		return err
	}

	return validateAction(spec.Action)
}

// validatePredicate checks that the parameters required by the predicate
// kind are present. Segwit address kinds are accepted here even though they
// never match: rejecting them is a behavioral decision left to the
// evaluator, not the registry.
func validatePredicate(p hookeval.Predicate) error {
	switch p.Kind {
	case hookeval.PredicateTxID:
		if p.TxID == "" {
			return fmt.Errorf("%w: txid predicate requires a txid", ErrInvalidSpecification)
		}

	case hookeval.PredicateOpReturn:
		if p.OpReturn == nil || p.OpReturn.IsZero() {
			return fmt.Errorf("%w: op_return predicate requires a matching rule", ErrInvalidSpecification)
		}

	case hookeval.PredicateP2PKH, hookeval.PredicateP2SH,
		hookeval.PredicateP2WPKH, hookeval.PredicateP2WSH:
		if p.Address == "" {
			return fmt.Errorf("%w: %s predicate requires an address", ErrInvalidSpecification, p.Kind)
		}

	case hookeval.PredicateStakeCommitment:
		if p.Recipient != nil && p.Recipient.IsZero() {
			return fmt.Errorf("%w: stake_commitment recipient rule is empty", ErrInvalidSpecification)
		}

	case hookeval.PredicateRewardCommitment, hookeval.PredicateKeyRegistration,
		hookeval.PredicateValueTransfer, hookeval.PredicateValueLock:
		// no parameters

	default:
		return fmt.Errorf("%w: unknown predicate kind %q", ErrInvalidSpecification, p.Kind)
	}

	return nil
}

// validateAction checks that the fields required by the action type are
// present. The dispatcher re-checks these at dispatch time; validating here
// surfaces configuration mistakes to the hook owner at registration.
func validateAction(a hookeval.Action) error {
	switch a.Type {
	case hookeval.ActionHTTP:
		if a.URL == "" || a.Method == "" {
			return fmt.Errorf("%w: http action requires url and method", ErrInvalidSpecification)
		}

	case hookeval.ActionFile:
		if a.Path == "" {
			return fmt.Errorf("%w: file action requires a path", ErrInvalidSpecification)
		}

	case hookeval.ActionNoop:
		// no parameters
	}

	return nil
}
