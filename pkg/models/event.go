package models

// Protocol identifies the venue an event came from. Values are fixed
// constants; registry.ProtocolTag maps a loaded schema's name to one, and a
// name with no constant maps to ProtocolUnknown, the zero value.
type Protocol int

const (
	ProtocolUnknown Protocol = iota
	ProtocolJupiterAggV6
	ProtocolRaydiumClmm
	ProtocolRaydiumCpmm
	ProtocolRaydiumAmmV4
)

func (p Protocol) String() string {
	switch p {
	case ProtocolJupiterAggV6:
		return "jupiter_agg_v6"
	case ProtocolRaydiumClmm:
		return "raydium_clmm"
	case ProtocolRaydiumCpmm:
		return "raydium_cpmm"
	case ProtocolRaydiumAmmV4:
		return "raydium_amm_v4"
	default:
		return "unknown"
	}
}

// EventMetadata carries the ordering, timing, and identity information
// attached to every decoded instruction.
type EventMetadata struct {
	Fingerprint    Signature
	Slot           uint64
	BlockTimeS     int64
	RecvUs         int64
	HandleUs       int64
	OuterIndex     int64
	InnerIndex     *int64
	TxIndexInSlot  *uint64
}

// Arg is one decoded instruction argument, named and typed.
type Arg struct {
	Name     string
	TypeName string
	Value    DecodedValue
}

// EventEnvelope wraps one decoded instruction with its protocol, kind,
// accounts, arguments, and metadata.
//
// Invariants:
//   - TagBytes equals the first 8 bytes of the raw instruction data.
//   - len(Accounts) == len(schema.Accounts) for the matched instruction.
//   - (Metadata.OuterIndex, Metadata.InnerIndex) is unique within one transaction.
//   - HandleUs is set exactly once, at callback invocation, and is now - RecvUs.
type EventEnvelope struct {
	Protocol      Protocol
	Kind          string
	Accounts      []EnvelopeAccount
	Args          []Arg
	TagBytes      Tag
	Metadata      EventMetadata
	RawArgsBytes  []byte // the original data blob after the tag, for consumers that want the untyped shape

	// RoutePlan is populated only for instructions whose schema names a
	// route_plan field decoded via the codec's dedicated fast path; the
	// detector ignores it, the cmd/decode debugging projection prints it.
	RoutePlan RoutePlan
}

// EnvelopeAccount is one resolved (slot name, key) pair, in schema order.
type EnvelopeAccount struct {
	Name string
	Key  PubKey
}

// AccountByName returns the key bound to a named slot, if present.
func (e *EventEnvelope) AccountByName(name string) (PubKey, bool) {
	for _, a := range e.Accounts {
		if a.Name == name {
			return a.Key, true
		}
	}
	return PubKey{}, false
}

// ArgByName returns a decoded argument value by name.
func (e *EventEnvelope) ArgByName(name string) (DecodedValue, bool) {
	for _, a := range e.Args {
		if a.Name == name {
			return a.Value, true
		}
	}
	return DecodedValue{}, false
}
