package codec

import (
	"encoding/binary"

	"github.com/rawblock/dex-arb-engine/pkg/models"
)

// swapUnionName is the well-known name of the Jupiter aggregator's nested
// Swap tagged union inside each route_plan step, as declared in the
// embedded jupiter_agg_v6 schema's types table.
const swapUnionName = "Swap"

// DecodeRoutePlan is the dedicated fast path for the Jupiter aggregator's
// route_plan field: a u32-length-prefixed sequence of records
// { swap: union(Swap), percent: u8, input_index: u8, output_index: u8 }.
//
// It bypasses the generic seq(defined(RoutePlanStep)) traversal to avoid a
// map lookup per nested union variant on a field that can run to dozens of
// hops. A step that cannot be decoded (underflow, or a variant index beyond
// the schema's Swap union) ends the plan with the steps decoded so far and
// marks the cursor failed, so every field after route_plan decodes as the
// "unknown" sentinel rather than from misaligned bytes.
func DecodeRoutePlan(c *Cursor, types map[string]models.TypeDef) (models.RoutePlan, bool) {
	swapUnion, ok := types[swapUnionName]
	if !ok || swapUnion.Kind != models.TypeDefUnion {
		return nil, false
	}

	lenBytes, ok := c.take(4)
	if !ok {
		return nil, false
	}
	n := binary.LittleEndian.Uint32(lenBytes)

	plan := make(models.RoutePlan, 0, n)
	for i := uint32(0); i < n; i++ {
		if c.failed {
			break
		}
		step, ok := decodeRoutePlanStep(c, swapUnion, types)
		if !ok {
			c.fail()
			break
		}
		plan = append(plan, step)
	}
	return plan, true
}

func decodeRoutePlanStep(c *Cursor, swapUnion models.TypeDef, types map[string]models.TypeDef) (models.RoutePlanStep, bool) {
	tagByte, ok := c.take(1)
	if !ok {
		return models.RoutePlanStep{}, false
	}
	idx := int(tagByte[0])
	if idx < 0 || idx >= len(swapUnion.Variants) {
		return models.RoutePlanStep{}, false
	}
	variant := swapUnion.Variants[idx]
	args := make(map[string]models.DecodedValue, len(variant.Fields))
	for _, f := range variant.Fields {
		args[f.Name] = c.DecodeField(f.Type, types)
	}

	percentB, ok := c.take(1)
	if !ok {
		return models.RoutePlanStep{}, false
	}
	inB, ok := c.take(1)
	if !ok {
		return models.RoutePlanStep{}, false
	}
	outB, ok := c.take(1)
	if !ok {
		return models.RoutePlanStep{}, false
	}

	return models.RoutePlanStep{
		SwapVariant: variant.Name,
		SwapArgs:    args,
		Percent:     percentB[0],
		InputIndex:  inB[0],
		OutputIndex: outB[0],
	}, true
}
