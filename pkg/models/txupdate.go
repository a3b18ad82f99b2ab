package models

// The types below are the external-interface contract: the shape a
// push-transport collaborator hands to the parser front end. Only the
// contract lives here, with no subscription or reconnection logic.

// CompiledInstruction is one instruction as compiled into a transaction
// message: a program reference by account-table index, the account
// indices it touches, and its opaque data blob.
type CompiledInstruction struct {
	ProgramIndex   uint8
	AccountIndices []uint8
	Data           []byte
}

// InnerInstruction is one instruction invoked during outer execution,
// keyed by its outer instruction's index.
type InnerInstruction struct {
	ProgramIndex   uint8
	AccountIndices []uint8
	Data           []byte
	StackHeight    *uint32
}

// InnerInstructionGroup bundles all inner instructions produced by one
// outer instruction.
type InnerInstructionGroup struct {
	OuterIndex   uint32
	Instructions []InnerInstruction
}

// AddressTableLookups are accounts resolved from on-chain address lookup
// tables, appended to the static account-key vector, writable first, then
// read-only.
type AddressTableLookups struct {
	Writable []PubKey
	ReadOnly []PubKey
}

// BlockTime is an optional seconds+nanoseconds timestamp.
type BlockTime struct {
	Seconds int64
	Nanos   int32
}

// TransactionUpdate is one push-transport payload: everything the walker
// needs to decode every instruction in one transaction.
type TransactionUpdate struct {
	Signature      Signature
	Slot           uint64
	BlockTime      *BlockTime
	Accounts       []PubKey
	Outer          []CompiledInstruction
	Inner          []InnerInstructionGroup
	AddressTables  *AddressTableLookups
	TxIndexInSlot  *uint64
	RecvUs         int64 // receive timestamp, stamped by the collaborator at ingest
}
