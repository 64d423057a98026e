package hookeval

// PredicateKind discriminates the transaction predicate variants a chainhook
// can be registered with.
type PredicateKind string

const (
	// PredicateTxID matches a transaction whose identifier hash equals the
	// configured hash, byte-exact.
	PredicateTxID PredicateKind = "txid"

	// PredicateOpReturn matches any output whose script-pubkey satisfies the
	// configured rule (equals, starts-with or ends-with) over its hex encoding.
	PredicateOpReturn PredicateKind = "op_return"

	// PredicateP2PKH matches any output whose script-pubkey equals the
	// canonical pay-to-pubkey-hash script reconstructed from the configured
	// base58 address.
	PredicateP2PKH PredicateKind = "p2pkh"

	// PredicateP2SH matches any output whose script-pubkey equals the
	// canonical pay-to-script-hash script reconstructed from the configured
	// base58 address.
	PredicateP2SH PredicateKind = "p2sh"

	// PredicateP2WPKH and PredicateP2WSH are accepted at registration time
	// but never match: segregated-witness script reconstruction is not
	// implemented yet.
	PredicateP2WPKH PredicateKind = "p2wpkh"
	PredicateP2WSH  PredicateKind = "p2wsh"

	// PredicateStakeCommitment matches transactions carrying a
	// stake-commitment side operation; an optional recipient rule narrows the
	// match to commitments paying a given reward recipient.
	PredicateStakeCommitment PredicateKind = "stake_commitment"

	// PredicateRewardCommitment, PredicateKeyRegistration,
	// PredicateValueTransfer and PredicateValueLock match transactions
	// carrying at least one side operation of the corresponding kind.
	PredicateRewardCommitment PredicateKind = "reward_commitment"
	PredicateKeyRegistration  PredicateKind = "key_registration"
	PredicateValueTransfer    PredicateKind = "value_transfer"
	PredicateValueLock        PredicateKind = "value_lock"
)

// MatchingRule is a single pattern rule over string data. Exactly one field
// should be set; Match applies the first non-empty rule in declaration order.
type MatchingRule struct {
	Equals     string `json:"equals,omitempty"`
	StartsWith string `json:"starts_with,omitempty"`
	EndsWith   string `json:"ends_with,omitempty"`
}

// Predicate describes what a chainhook is listening for. Kind selects the
// variant; only the parameter fields relevant to that variant are set.
type Predicate struct {
	Kind PredicateKind `json:"kind" validate:"required"`

	// TxID is the target transaction hash for PredicateTxID.
	TxID string `json:"txid,omitempty"`

	// OpReturn is the script-pubkey rule for PredicateOpReturn, applied to
	// the hex encoding of each output's script.
	OpReturn *MatchingRule `json:"op_return,omitempty"`

	// Address is the base58 address for the P2PKH/P2SH (and reserved
	// P2WPKH/P2WSH) address predicates.
	Address string `json:"address,omitempty"`

	// Recipient narrows PredicateStakeCommitment to commitments paying a
	// matching reward recipient. Nil means any stake commitment matches.
	Recipient *MatchingRule `json:"recipient,omitempty"`
}

// ActionType discriminates what happens when a chainhook triggers.
type ActionType string

const (
	ActionHTTP ActionType = "http" // POST the payload to a remote endpoint
	ActionFile ActionType = "file" // persist the payload to a local path
	ActionNoop ActionType = "noop" // hand the payload to an in-process consumer
)

// Action describes the delivery target of a triggered chainhook. The engine
// only builds the occurrence descriptor; executing it is the caller's job.
type Action struct {
	Type ActionType `json:"type" validate:"required,oneof=http file noop"`

	// URL, Method and AuthorizationHeader configure an ActionHTTP target.
	// AuthorizationHeader is forwarded verbatim as the Authorization header.
	URL                 string `json:"url,omitempty"`
	Method              string `json:"method,omitempty"`
	AuthorizationHeader string `json:"authorization_header,omitempty"`

	// Path configures an ActionFile target.
	Path string `json:"path,omitempty"`
}

// Specification is one registered chainhook: a predicate to evaluate against
// every transaction of every chain event, and the action to prepare when it
// matches. Specifications are immutable for the duration of an evaluation
// pass; the registry may swap the active set only between passes.
type Specification struct {
	UUID      string    `json:"uuid" validate:"required,uuid"`
	Predicate Predicate `json:"predicate"`
	Action    Action    `json:"action"`
}
