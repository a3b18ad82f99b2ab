package codec

import (
	"encoding/binary"
	"math/big"
	"testing"

	"github.com/rawblock/dex-arb-engine/pkg/models"
)

func u64le(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

func TestDecodeScalarFields(t *testing.T) {
	buf := append([]byte{}, byte(7))
	buf = append(buf, u64le(10000)...)
	buf = append(buf, 1) // bool true

	c := NewCursor(buf)
	u8 := c.DecodeField(models.FieldType{Kind: models.KindU8}, nil)
	if u8.U64 != 7 {
		t.Fatalf("u8 = %d, want 7", u8.U64)
	}
	u64 := c.DecodeField(models.FieldType{Kind: models.KindU64}, nil)
	if u64.U64 != 10000 {
		t.Fatalf("u64 = %d, want 10000", u64.U64)
	}
	b := c.DecodeField(models.FieldType{Kind: models.KindBool}, nil)
	if !b.Bool {
		t.Fatalf("bool = false, want true")
	}
	if c.Failed() {
		t.Fatalf("cursor reported failure on valid input")
	}
}

func TestDecodeU128TwosComplement(t *testing.T) {
	// -1 as i128: all 0xff bytes, little-endian representation is the same.
	buf := make([]byte, 16)
	for i := range buf {
		buf[i] = 0xff
	}
	c := NewCursor(buf)
	v := c.DecodeField(models.FieldType{Kind: models.KindI128}, nil)
	if v.Big.Cmp(big.NewInt(-1)) != 0 {
		t.Fatalf("i128 = %s, want -1", v.Big.String())
	}
}

func TestDecodeOptionSomeAndNone(t *testing.T) {
	buf := []byte{1}
	buf = append(buf, u64le(42)...)
	ft := models.FieldType{Kind: models.KindOption, Elem: &models.FieldType{Kind: models.KindU64}}

	c := NewCursor(buf)
	v := c.DecodeField(ft, nil)
	if v.Opt == nil || v.Opt.U64 != 42 {
		t.Fatalf("expected Some(42), got %+v", v)
	}

	c2 := NewCursor([]byte{0})
	v2 := c2.DecodeField(ft, nil)
	if v2.Opt != nil {
		t.Fatalf("expected None, got %+v", v2)
	}
}

func TestDecodeSeqAndArray(t *testing.T) {
	buf := []byte{3, 0, 0, 0, 1, 2, 3}
	ft := models.FieldType{Kind: models.KindSeq, Elem: &models.FieldType{Kind: models.KindU8}}
	c := NewCursor(buf)
	v := c.DecodeField(ft, nil)
	if len(v.Seq) != 3 || v.Seq[0].U64 != 1 || v.Seq[2].U64 != 3 {
		t.Fatalf("seq decode mismatch: %+v", v.Seq)
	}

	arrFt := models.FieldType{Kind: models.KindArray, Elem: &models.FieldType{Kind: models.KindU8}, Len: 3}
	c2 := NewCursor([]byte{9, 8, 7})
	v2 := c2.DecodeField(arrFt, nil)
	if len(v2.Seq) != 3 || v2.Seq[1].U64 != 8 {
		t.Fatalf("array decode mismatch: %+v", v2.Seq)
	}
}

func TestDecodeStringRejectsBadUTF8(t *testing.T) {
	buf := []byte{2, 0, 0, 0, 0xff, 0xfe}
	c := NewCursor(buf)
	v := c.DecodeField(models.FieldType{Kind: models.KindString}, nil)
	if !v.Undecoded {
		t.Fatalf("expected undecoded sentinel for invalid UTF-8, got %+v", v)
	}
	if !c.Failed() {
		t.Fatalf("expected cursor to report failure")
	}
}

func TestDecodeUnderflowYieldsUnknownWithoutPanic(t *testing.T) {
	buf := []byte{1, 2, 3} // too short for a u64
	c := NewCursor(buf)
	v := c.DecodeField(models.FieldType{Kind: models.KindU64}, nil)
	if !v.Undecoded {
		t.Fatalf("expected undecoded sentinel on underflow, got %+v", v)
	}
	if len(v.Blob) != 3 {
		t.Fatalf("expected sentinel to carry remaining 3 bytes, got %d", len(v.Blob))
	}
}

func TestDecodeDefinedRecordInDeclaredOrder(t *testing.T) {
	types := map[string]models.TypeDef{
		"Pair": {
			Name: "Pair",
			Kind: models.TypeDefRecord,
			Fields: []models.Field{
				{Name: "a", Type: models.FieldType{Kind: models.KindU8}},
				{Name: "b", Type: models.FieldType{Kind: models.KindU16}},
			},
		},
	}
	buf := []byte{5, 0x34, 0x12} // a=5, b=0x1234 little-endian
	c := NewCursor(buf)
	v := c.DecodeField(models.FieldType{Kind: models.KindDefined, Defined: "Pair"}, types)
	if v.Fields["a"].U64 != 5 || v.Fields["b"].U64 != 0x1234 {
		t.Fatalf("record decode mismatch: %+v", v.Fields)
	}
}

func TestDecodeTaggedUnionVariant(t *testing.T) {
	types := map[string]models.TypeDef{
		"Choice": {
			Name: "Choice",
			Kind: models.TypeDefUnion,
			Variants: []models.UnionVariant{
				{Name: "First", Fields: nil},
				{Name: "Second", Fields: []models.Field{{Name: "x", Type: models.FieldType{Kind: models.KindU8}}}},
			},
		},
	}
	c := NewCursor([]byte{1, 99})
	v := c.DecodeField(models.FieldType{Kind: models.KindDefined, Defined: "Choice"}, types)
	if v.Variant != "Second" || v.Fields["x"].U64 != 99 {
		t.Fatalf("union decode mismatch: %+v", v)
	}
}

func TestDecodeUnknownVariantIndexIsUndecoded(t *testing.T) {
	types := map[string]models.TypeDef{
		"Choice": {
			Name:     "Choice",
			Kind:     models.TypeDefUnion,
			Variants: []models.UnionVariant{{Name: "Only"}},
		},
	}
	c := NewCursor([]byte{5}) // out of range
	v := c.DecodeField(models.FieldType{Kind: models.KindDefined, Defined: "Choice"}, types)
	if !v.Undecoded {
		t.Fatalf("expected undecoded sentinel for unknown variant, got %+v", v)
	}
}

func TestDeriveTagMatchesKnownJupiterRoute(t *testing.T) {
	got := DeriveTag("route")
	want := models.Tag{0xe5, 0x17, 0xcb, 0x97, 0x7a, 0xe3, 0xad, 0x2a}
	if got != want {
		t.Fatalf("DeriveTag(route) = %x, want %x", got, want)
	}
}

func TestDecodeRoutePlanEmpty(t *testing.T) {
	types := map[string]models.TypeDef{
		swapUnionName: {Name: swapUnionName, Kind: models.TypeDefUnion, Variants: nil},
	}
	c := NewCursor([]byte{0, 0, 0, 0}) // length-prefix 0
	plan, ok := DecodeRoutePlan(c, types)
	if !ok {
		t.Fatalf("expected ok=true for empty route plan")
	}
	if len(plan) != 0 {
		t.Fatalf("expected empty plan, got %d steps", len(plan))
	}
}
