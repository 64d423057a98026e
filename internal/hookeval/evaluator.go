package hookeval

import (
	"errors"
	"fmt"
)

// ErrUnsupportedPredicate is returned when a specification carries a
// predicate kind the evaluator does not know. Segwit address kinds are NOT
// reported through this error: they are accepted and simply never match,
// since their script reconstruction is a known gap rather than an invalid
// registration.
var ErrUnsupportedPredicate = errors.New("unsupported predicate variant")

// TriggerEntry is one matched transaction together with the identifier of
// the block that carried it. Both pointers borrow into the chain event being
// evaluated and stay valid only for the duration of the pass.
type TriggerEntry struct {
	Transaction     *Transaction
	BlockIdentifier *BlockIdentifier
}

// Trigger is the per-hook result of one evaluation pass: the hook itself and
// the matched (transaction, block) pairs split by apply/rollback direction.
// A Trigger is only ever constructed with at least one non-empty side, and
// entry order mirrors block order then in-block transaction order exactly.
type Trigger struct {
	Hook     *Specification
	Apply    []TriggerEntry
	Rollback []TriggerEntry
}

// EvaluationFailure reports that a single hook could not be evaluated
// (e.g., its predicate address fails to decode). Failures are isolated per
// hook: sibling hooks in the same pass are unaffected.
type EvaluationFailure struct {
	UUID string
	Err  error
}

// EvaluatePredicate decides whether a single transaction satisfies the
// predicate. It is pure, covers every predicate kind, and short-circuits on
// the first match within a scan.
func EvaluatePredicate(p Predicate, tx Transaction) (bool, error) {
	switch p.Kind {
	case PredicateTxID:
		return tx.TransactionIdentifier.Hash == p.TxID, nil

	case PredicateOpReturn:
		if p.OpReturn == nil {
			return false, nil
		}
		for _, output := range tx.Outputs {
			if p.OpReturn.Match(output.ScriptPubKey) {
				return true, nil
			}
		}
		return false, nil

	case PredicateP2PKH:
		scriptHex, err := p2pkhScriptHex(p.Address)
		if err != nil {
			return false, err
		}
		return anyOutputEquals(tx, scriptHex), nil

	case PredicateP2SH:
		scriptHex, err := p2shScriptHex(p.Address)
		if err != nil {
			return false, err
		}
		return anyOutputEquals(tx, scriptHex), nil

	case PredicateP2WPKH, PredicateP2WSH:
		// Witness script reconstruction is not implemented; these kinds
		// never match.
		return false, nil

	case PredicateStakeCommitment:
		for _, op := range tx.SideOperations {
			if op.Kind != SideOpStakeCommitment {
				continue
			}
			if p.Recipient == nil {
				return true, nil
			}
			for _, reward := range op.Rewards {
				if p.Recipient.Match(reward.Recipient) {
					return true, nil
				}
			}
		}
		return false, nil

	case PredicateRewardCommitment:
		return anySideOperation(tx, SideOpRewardCommitment), nil

	case PredicateKeyRegistration:
		return anySideOperation(tx, SideOpKeyRegistration), nil

	case PredicateValueTransfer:
		return anySideOperation(tx, SideOpValueTransfer), nil

	case PredicateValueLock:
		return anySideOperation(tx, SideOpValueLock), nil

	default:
		return false, fmt.Errorf("%w: %q", ErrUnsupportedPredicate, p.Kind)
	}
}

// anyOutputEquals reports whether any output's script-pubkey equals the
// given hex-encoded script.
func anyOutputEquals(tx Transaction, scriptHex string) bool {
	for _, output := range tx.Outputs {
		if output.ScriptPubKey == scriptHex {
			return true
		}
	}

	return false
}

// anySideOperation reports whether the transaction carries at least one side
// operation of the given kind.
func anySideOperation(tx Transaction, kind SideOperationKind) bool {
	for _, op := range tx.SideOperations {
		if op.Kind == kind {
			return true
		}
	}

	return false
}

// scanBlocks walks blocks in order and, within each block, transactions in
// order, collecting an entry for every transaction the predicate matches.
// The first evaluation error aborts the scan for this predicate.
func scanBlocks(blocks []Block, p Predicate) ([]TriggerEntry, error) {
	var entries []TriggerEntry
	for i := range blocks {
		block := &blocks[i]
		for j := range block.Transactions {
			matched, err := EvaluatePredicate(p, block.Transactions[j])
			if err != nil {
				return nil, err
			}

			if matched {
				entries = append(entries, TriggerEntry{
					Transaction:     &block.Transactions[j],
					BlockIdentifier: &block.BlockIdentifier,
				})
			}
		}
	}

	return entries, nil
}

// EvaluateHook evaluates a single hook against a chain event. It returns nil
// when nothing matched: a trigger is never built with both sides empty.
func EvaluateHook(event ChainEvent, hook *Specification) (*Trigger, error) {
	var apply, rollback []TriggerEntry

	switch e := event.(type) {
	case BlocksApplied:
		entries, err := scanBlocks(e.NewBlocks, hook.Predicate)
		if err != nil {
			return nil, err
		}
		apply = entries

	case Reorg:
		entries, err := scanBlocks(e.BlocksToApply, hook.Predicate)
		if err != nil {
			return nil, err
		}
		apply = entries

		entries, err = scanBlocks(e.BlocksToRollback, hook.Predicate)
		if err != nil {
			return nil, err
		}
		rollback = entries
	}

	if len(apply) == 0 && len(rollback) == 0 {
		return nil, nil
	}

	return &Trigger{Hook: hook, Apply: apply, Rollback: rollback}, nil
}

// EvaluateChainEvent evaluates every active hook against the chain event and
// returns the triggers in hook input order, plus one failure per hook that
// could not be evaluated. A failing hook never affects its siblings.
func EvaluateChainEvent(event ChainEvent, hooks []Specification) ([]Trigger, []EvaluationFailure) {
	var (
		triggers []Trigger
		failures []EvaluationFailure
	)

	for i := range hooks {
		trigger, err := EvaluateHook(event, &hooks[i])
		if err != nil {
			failures = append(failures, EvaluationFailure{UUID: hooks[i].UUID, Err: err})
			continue
		}

		if trigger != nil {
			triggers = append(triggers, *trigger)
		}
	}

	return triggers, failures
}
