// Package models holds the protocol-agnostic data types shared across the
// decoder, walker, and arbitrage detector: schema definitions, decoded
// value trees, event envelopes, and price/opportunity records.
package models

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/mr-tron/base58"
)

// PubKey is a 32-byte Solana account/mint/program identifier.
type PubKey [32]byte

// String renders the key in the conventional base58 form.
func (k PubKey) String() string {
	return base58.Encode(k[:])
}

// IsZero reports whether the key is the all-zero placeholder.
func (k PubKey) IsZero() bool {
	return k == PubKey{}
}

// PubKeyFromBase58 decodes a base58-encoded 32-byte key, as used in schema
// files for `program_id`.
func PubKeyFromBase58(s string) (PubKey, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return PubKey{}, err
	}
	var k PubKey
	if len(raw) != len(k) {
		return PubKey{}, fmt.Errorf("models: expected %d-byte key, got %d", len(k), len(raw))
	}
	copy(k[:], raw)
	return k, nil
}

// Less orders two keys by raw byte comparison, used to normalize a token
// pair's (base, quote) ordering.
func (k PubKey) Less(other PubKey) bool {
	return bytes.Compare(k[:], other[:]) < 0
}

// Signature is a 64-byte transaction fingerprint.
type Signature [64]byte

func (s Signature) String() string {
	return base58.Encode(s[:])
}

func (s Signature) IsZero() bool {
	return s == Signature{}
}

// Tag is the 8-byte instruction discriminator.
type Tag [8]byte

func (t Tag) String() string {
	return hex.EncodeToString(t[:])
}

