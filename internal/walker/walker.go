// Package walker implements the instruction walker: it iterates
// a transaction's outer and inner instructions in order, dispatches each to
// the registry's tag index, decodes matches via the codec, and invokes a
// callback once per decoded envelope in deterministic (outer, inner) order.
package walker

import (
	"log"

	"github.com/rawblock/dex-arb-engine/internal/clock"
	"github.com/rawblock/dex-arb-engine/internal/codec"
	"github.com/rawblock/dex-arb-engine/internal/registry"
	"github.com/rawblock/dex-arb-engine/pkg/models"
)

// routePlanFieldDefined is the sentinel field_type.defined name a schema
// uses to mark a field that must be decoded through codec.DecodeRoutePlan
// instead of the generic defined() record/union path.
const routePlanFieldDefined = "RoutePlan"

// Callback receives one decoded envelope. It is invoked synchronously and
// in order; if it blocks, the walker blocks. There is no internal
// backpressure.
type Callback func(models.EventEnvelope)

// Walker dispatches transaction instructions against an immutable registry.
// A Walker holds no cross-transaction state and is safe to share across
// goroutines dispatching distinct transactions.
type Walker struct {
	reg *registry.Registry
	clk *clock.Clock
}

// New builds a walker over reg, using the process-global clock for
// handle_us stamping.
func New(reg *registry.Registry) *Walker {
	return &Walker{reg: reg, clk: clock.Global()}
}

// Walk decodes every matching instruction in tx and invokes cb once per
// envelope, in (outer_index, inner_index) order.
func (w *Walker) Walk(tx *models.TransactionUpdate, cb Callback) {
	if tx == nil || cb == nil {
		return
	}
	accounts := buildAccountVector(tx)

	innerByOuter := make(map[uint32]models.InnerInstructionGroup, len(tx.Inner))
	for _, g := range tx.Inner {
		innerByOuter[g.OuterIndex] = g
	}

	for o, outer := range tx.Outer {
		outerIdx := int64(o)
		env, ok := w.dispatch(tx, accounts, outer, outerIdx, nil)
		if ok {
			cb(env)
		}

		group, hasGroup := innerByOuter[uint32(o)]
		if !hasGroup {
			continue
		}
		for i, inner := range group.Instructions {
			innerIdx := int64(i)
			ci := models.CompiledInstruction{
				ProgramIndex:   inner.ProgramIndex,
				AccountIndices: inner.AccountIndices,
				Data:           inner.Data,
			}
			innerEnv, ok := w.dispatch(tx, accounts, ci, outerIdx, &innerIdx)
			if ok {
				cb(innerEnv)
			}
		}
	}
}

// buildAccountVector concatenates the statically encoded keys with any
// address-table-loaded keys, writable first then read-only.
func buildAccountVector(tx *models.TransactionUpdate) []models.PubKey {
	if tx.AddressTables == nil {
		return tx.Accounts
	}
	out := make([]models.PubKey, 0, len(tx.Accounts)+len(tx.AddressTables.Writable)+len(tx.AddressTables.ReadOnly))
	out = append(out, tx.Accounts...)
	out = append(out, tx.AddressTables.Writable...)
	out = append(out, tx.AddressTables.ReadOnly...)
	return out
}

// dispatch attempts to decode one compiled instruction against the
// registry. Instruction-shape problems (too-short data, unknown tag,
// unmatched program, insufficient account keys) return ok=false and are
// never surfaced as errors.
func (w *Walker) dispatch(tx *models.TransactionUpdate, accounts []models.PubKey, ins models.CompiledInstruction, outerIdx int64, innerIdx *int64) (models.EventEnvelope, bool) {
	if len(ins.Data) < 8 {
		return models.EventEnvelope{}, false
	}
	if int(ins.ProgramIndex) >= len(accounts) {
		return models.EventEnvelope{}, false
	}
	programKey := accounts[ins.ProgramIndex]

	var tag models.Tag
	copy(tag[:], ins.Data[:8])

	cand, ok := w.reg.LookupByProgramAndTag(programKey, tag)
	if !ok {
		return models.EventEnvelope{}, false
	}
	schema, instr := cand.Protocol, cand.Instruction

	if len(ins.AccountIndices) < len(instr.Accounts) {
		return models.EventEnvelope{}, false
	}
	envAccounts := make([]models.EnvelopeAccount, 0, len(instr.Accounts))
	for slot, accSlot := range instr.Accounts {
		idx := ins.AccountIndices[slot]
		if int(idx) >= len(accounts) {
			return models.EventEnvelope{}, false
		}
		envAccounts = append(envAccounts, models.EnvelopeAccount{Name: accSlot.Name, Key: accounts[idx]})
	}

	if instr.RequiresInner && !w.innerConfirms(tx, outerIdx, instr) {
		return models.EventEnvelope{}, false
	}

	rawArgs := ins.Data[8:]
	cursor := codec.NewCursor(rawArgs)
	args := make([]models.Arg, 0, len(instr.Args))
	var routePlan models.RoutePlan
	for _, f := range instr.Args {
		if f.Type.Kind == models.KindDefined && f.Type.Defined == routePlanFieldDefined {
			plan, _ := codec.DecodeRoutePlan(cursor, schema.Types)
			routePlan = plan
			continue
		}
		args = append(args, models.Arg{Name: f.Name, TypeName: f.Type.Kind.String(), Value: cursor.DecodeField(f.Type, schema.Types)})
	}

	recvUs := tx.RecvUs
	handleUs := w.clk.ElapsedUsSince(recvUs)

	var blockTimeS int64
	if tx.BlockTime != nil {
		blockTimeS = tx.BlockTime.Seconds
	}

	env := models.EventEnvelope{
		Protocol:     registry.ProtocolTag(schema.Name),
		Kind:         instr.Name,
		Accounts:     envAccounts,
		Args:         args,
		TagBytes:     tag,
		RawArgsBytes: rawArgs,
		RoutePlan:    routePlan,
		Metadata: models.EventMetadata{
			Fingerprint:   tx.Signature,
			Slot:          tx.Slot,
			BlockTimeS:    blockTimeS,
			RecvUs:        recvUs,
			HandleUs:      handleUs,
			OuterIndex:    outerIdx,
			InnerIndex:    innerIdx,
			TxIndexInSlot: tx.TxIndexInSlot,
		},
	}
	return env, true
}

// innerConfirms implements the requires_inner speculative scan:
// an outer instruction whose schema names a companion inner event tag only
// yields an envelope if some inner instruction in the same outer group
// carries that tag.
func (w *Walker) innerConfirms(tx *models.TransactionUpdate, outerIdx int64, instr *models.InstructionSchema) bool {
	if instr.InnerTag == (models.Tag{}) {
		log.Printf("[Walker] instruction %s requires_inner but declares no inner_discriminator; dropping", instr.Name)
		return false
	}
	want := instr.InnerTag
	for _, g := range tx.Inner {
		if int64(g.OuterIndex) != outerIdx {
			continue
		}
		for _, inner := range g.Instructions {
			if len(inner.Data) < 8 {
				continue
			}
			var tag models.Tag
			copy(tag[:], inner.Data[:8])
			if tag == want {
				return true
			}
		}
	}
	return false
}
