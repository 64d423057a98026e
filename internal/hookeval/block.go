// Package hookeval implements the predicate-evaluation core of hookwatch:
// it decides, for each registered chainhook, whether any transaction in a
// chain event matches the hook's predicate, and groups the matches into
// per-hook triggers. Evaluation is pure: it only reads the chain event, the
// hook set, and the proof lookup supplied by the caller, which makes it safe
// to shard across goroutines with no coordination.
package hookeval

// BlockIdentifier uniquely identifies a block by height and hash.
type BlockIdentifier struct {
	Index uint64 `json:"index"` // block height
	Hash  string `json:"hash"`  // block hash, hex encoded
}

// TransactionIdentifier uniquely identifies a transaction by its hash.
type TransactionIdentifier struct {
	Hash string `json:"hash"` // transaction hash, hex encoded
}

// Output is a single transaction output. ScriptPubKey carries the opaque
// locking script as a hex-encoded string; all script matching rules operate
// on this encoding.
type Output struct {
	ScriptPubKey string `json:"script_pubkey"` // locking script, hex encoded
	Value        uint64 `json:"value"`         // output value in base units
}

// SideOperationKind tags a chain-specific side operation decoded from a
// transaction (e.g., a stake commitment carried in an anchored transaction).
type SideOperationKind string

const (
	SideOpStakeCommitment  SideOperationKind = "stake_commitment"
	SideOpRewardCommitment SideOperationKind = "reward_commitment"
	SideOpKeyRegistration  SideOperationKind = "key_registration"
	SideOpValueTransfer    SideOperationKind = "value_transfer"
	SideOpValueLock        SideOperationKind = "value_lock"
)

// RewardRecipient is a single reward payout carried by a stake-commitment
// side operation.
type RewardRecipient struct {
	Recipient string `json:"recipient"` // payout address
	Amount    uint64 `json:"amount"`    // payout amount in base units
}

// SideOperation is one chain-specific operation attached to a transaction.
// Kind selects the variant; only the fields relevant to that variant are set.
type SideOperation struct {
	Kind SideOperationKind `json:"kind"`

	// Rewards lists the payout recipients of a stake commitment.
	// Only set when Kind is SideOpStakeCommitment.
	Rewards []RewardRecipient `json:"rewards,omitempty"`

	// SigningKey is the registered key of a key-registration operation.
	// Only set when Kind is SideOpKeyRegistration.
	SigningKey string `json:"signing_key,omitempty"`

	// Recipient and Amount describe a value transfer or lock.
	// Only set when Kind is SideOpValueTransfer or SideOpValueLock.
	Recipient string `json:"recipient,omitempty"`
	Amount    uint64 `json:"amount,omitempty"`
}

// Transaction is a single chain transaction together with the decoded
// side operations it carries. Output and side-operation order is preserved
// exactly as received from the chain-data source.
type Transaction struct {
	TransactionIdentifier TransactionIdentifier `json:"transaction_identifier"`
	Outputs               []Output              `json:"outputs"`
	SideOperations        []SideOperation       `json:"side_operations,omitempty"`
}

// Block is a single chain block. Transaction order is significant and is
// preserved through evaluation.
type Block struct {
	BlockIdentifier BlockIdentifier `json:"block_identifier"`
	Transactions    []Transaction   `json:"transactions"`
}

// ChainEvent is a chain-state change produced by an external chain-data
// source. It is a closed union: BlocksApplied for linear chain growth, and
// Reorg when previously accepted blocks are replaced.
type ChainEvent interface {
	isChainEvent()
}

// BlocksApplied is pure forward progress: blocks appended to the canonical
// chain, in order.
type BlocksApplied struct {
	NewBlocks []Block
}

// Reorg is a chain reorganization: BlocksToRollback leave the canonical
// chain while BlocksToApply replace them. Both lists are ordered.
type Reorg struct {
	BlocksToApply    []Block
	BlocksToRollback []Block
}

func (BlocksApplied) isChainEvent() {}
func (Reorg) isChainEvent()         {}
