package models

import "math/big"

// DecodedValue is the tagged result of the binary field decoder: a
// recursive sum type mirroring FieldKind rather than an open-ended object
// hierarchy.
type DecodedValue struct {
	Kind FieldKind

	U64  uint64 // u8/u16/u32/u64 widen into U64
	I64  int64  // i8/i16/i32/i64 widen into I64
	Big  *big.Int // u128/i128
	Bool bool
	Str  string
	Key  PubKey
	Blob []byte // bytes, and the undecoded remainder on failure

	Seq     []DecodedValue // seq/array elements
	Opt     *DecodedValue  // option's payload, nil means None
	Variant string         // populated for a decoded defined() union
	Fields  map[string]DecodedValue // populated for a decoded defined() record or union payload

	// Undecoded marks a field the decoder could not parse (underflow, bad
	// UTF-8, unknown union variant). Blob carries whatever bytes remained.
	// An undecoded field never aborts the envelope.
	Undecoded bool
}

// Unknown builds the sentinel "could not decode" value carrying the
// remaining bytes.
func Unknown(remaining []byte) DecodedValue {
	cp := make([]byte, len(remaining))
	copy(cp, remaining)
	return DecodedValue{Kind: KindBytes, Blob: cp, Undecoded: true}
}

// RoutePlanStep is the fast-path structured value for the Jupiter
// aggregator's route_plan field: a sequence of records
// { swap: union, percent: u8, input_index: u8, output_index: u8 }.
type RoutePlanStep struct {
	SwapVariant string
	SwapArgs    map[string]DecodedValue
	Percent     uint8
	InputIndex  uint8
	OutputIndex uint8
}

// RoutePlan is the decoded sequence of hops inside an aggregator swap.
// The detector ignores it; it exists for the debugging projection in
// cmd/decode.
type RoutePlan []RoutePlanStep
