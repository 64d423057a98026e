package hookeval

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/txscript"
)

// ErrInvalidAddressEncoding is returned when a predicate address cannot be
// base58-decoded into a version byte followed by a 20-byte hash payload.
var ErrInvalidAddressEncoding = errors.New("invalid address encoding")

// hashPayloadSize is the length of the hash160 payload carried by legacy
// base58 addresses (both pubkey hashes and script hashes).
const hashPayloadSize = 20

// Match reports whether s satisfies the rule. Exactly one rule field is
// expected to be set; when several are, the first in declaration order wins.
// A zero rule matches nothing.
func (r MatchingRule) Match(s string) bool {
	switch {
	case r.Equals != "":
		return s == r.Equals
	case r.StartsWith != "":
		return strings.HasPrefix(s, r.StartsWith)
	case r.EndsWith != "":
		return strings.HasSuffix(s, r.EndsWith)
	}

	return false
}

// IsZero reports whether no rule field is set.
func (r MatchingRule) IsZero() bool {
	return r == MatchingRule{}
}

// addressHashPayload base58-decodes address and extracts the 20-byte hash
// that follows the version byte. The checksum tail, when present, is ignored;
// decoding that yields fewer than 21 bytes (including the empty result
// produced by invalid base58 input) fails with ErrInvalidAddressEncoding.
func addressHashPayload(address string) ([]byte, error) {
	decoded := base58.Decode(address)
	if len(decoded) < hashPayloadSize+1 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAddressEncoding, address)
	}

	return decoded[1 : hashPayloadSize+1], nil
}

// p2pkhScriptHex reconstructs the canonical pay-to-pubkey-hash locking script
// for a base58 address and returns its hex encoding:
//
//	OP_DUP OP_HASH160 <20-byte hash> OP_EQUALVERIFY OP_CHECKSIG
func p2pkhScriptHex(address string) (string, error) {
	payload, err := addressHashPayload(address)
	if err != nil {
		return "", err
	}

	script, err := txscript.NewScriptBuilder().
		AddOp(txscript.OP_DUP).
		AddOp(txscript.OP_HASH160).
		AddData(payload).
		AddOp(txscript.OP_EQUALVERIFY).
		AddOp(txscript.OP_CHECKSIG).
		Script()
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(script), nil
}

// p2shScriptHex reconstructs the canonical pay-to-script-hash locking script
// for a base58 address and returns its hex encoding:
//
//	OP_HASH160 <20-byte hash> OP_EQUAL
func p2shScriptHex(address string) (string, error) {
	payload, err := addressHashPayload(address)
	if err != nil {
		return "", err
	}

	script, err := txscript.NewScriptBuilder().
		AddOp(txscript.OP_HASH160).
		AddData(payload).
		AddOp(txscript.OP_EQUAL).
		Script()
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(script), nil
}
