// Package codec implements the binary field decoder: a
// stateful cursor over a byte slice that decodes little-endian scalars,
// length-prefixed sequences, tagged unions, and fixed-size blobs into a
// models.DecodedValue tree.
//
// Decoding never aborts the envelope: any underflow, invalid
// UTF-8, or unknown union variant yields the "unknown" sentinel value for
// that one field and the cursor advances to the end of the buffer, so the
// remainder of the event is still emitted with whatever fields did decode.
package codec

import (
	"encoding/binary"
	"math/big"
	"unicode/utf8"

	"github.com/rawblock/dex-arb-engine/pkg/models"
)

// Cursor decodes a sequence of typed fields from a byte slice in order.
type Cursor struct {
	buf    []byte
	pos    int
	failed bool
}

// NewCursor wraps buf for sequential decoding starting at offset 0.
func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Failed reports whether any field so far underflowed or otherwise could
// not be decoded. Once set it stays set; the cursor does not try to
// resynchronize.
func (c *Cursor) Failed() bool {
	return c.failed
}

// Remaining returns the undecoded tail of the buffer.
func (c *Cursor) Remaining() []byte {
	if c.pos >= len(c.buf) {
		return nil
	}
	return c.buf[c.pos:]
}

func (c *Cursor) take(n int) ([]byte, bool) {
	if c.failed || n < 0 || c.pos+n > len(c.buf) {
		c.failed = true
		return nil, false
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, true
}

func (c *Cursor) fail() models.DecodedValue {
	v := models.Unknown(c.Remaining())
	c.failed = true
	c.pos = len(c.buf)
	return v
}

// DecodeField decodes one field per its FieldType, consulting types for
// defined() lookups.
func (c *Cursor) DecodeField(ft models.FieldType, types map[string]models.TypeDef) models.DecodedValue {
	if c.failed {
		return c.fail()
	}
	switch ft.Kind {
	case models.KindU8:
		return c.decodeUint(1, models.KindU8)
	case models.KindU16:
		return c.decodeUint(2, models.KindU16)
	case models.KindU32:
		return c.decodeUint(4, models.KindU32)
	case models.KindU64:
		return c.decodeUint(8, models.KindU64)
	case models.KindU128:
		return c.decodeUint128(false)
	case models.KindI8:
		return c.decodeInt(1, models.KindI8)
	case models.KindI16:
		return c.decodeInt(2, models.KindI16)
	case models.KindI32:
		return c.decodeInt(4, models.KindI32)
	case models.KindI64:
		return c.decodeInt(8, models.KindI64)
	case models.KindI128:
		return c.decodeUint128(true)
	case models.KindBool:
		return c.decodeBool()
	case models.KindString:
		return c.decodeString()
	case models.KindPublicKey:
		return c.decodePublicKey()
	case models.KindBytes:
		return c.decodeBytes()
	case models.KindSeq:
		return c.decodeSeq(ft, types)
	case models.KindOption:
		return c.decodeOption(ft, types)
	case models.KindArray:
		return c.decodeArray(ft, types)
	case models.KindDefined:
		return c.decodeDefined(ft.Defined, types)
	default:
		return c.fail()
	}
}

func (c *Cursor) decodeUint(width int, kind models.FieldKind) models.DecodedValue {
	b, ok := c.take(width)
	if !ok {
		return c.fail()
	}
	var v uint64
	switch width {
	case 1:
		v = uint64(b[0])
	case 2:
		v = uint64(binary.LittleEndian.Uint16(b))
	case 4:
		v = uint64(binary.LittleEndian.Uint32(b))
	case 8:
		v = binary.LittleEndian.Uint64(b)
	}
	return models.DecodedValue{Kind: kind, U64: v}
}

func (c *Cursor) decodeInt(width int, kind models.FieldKind) models.DecodedValue {
	b, ok := c.take(width)
	if !ok {
		return c.fail()
	}
	var v int64
	switch width {
	case 1:
		v = int64(int8(b[0]))
	case 2:
		v = int64(int16(binary.LittleEndian.Uint16(b)))
	case 4:
		v = int64(int32(binary.LittleEndian.Uint32(b)))
	case 8:
		v = int64(binary.LittleEndian.Uint64(b))
	}
	return models.DecodedValue{Kind: kind, I64: v}
}

func (c *Cursor) decodeUint128(signed bool) models.DecodedValue {
	b, ok := c.take(16)
	if !ok {
		return c.fail()
	}
	// Little-endian 16-byte integer: reverse into big-endian for big.Int.
	be := make([]byte, 16)
	for i := 0; i < 16; i++ {
		be[i] = b[15-i]
	}
	n := new(big.Int).SetBytes(be)
	kind := models.KindU128
	if signed {
		kind = models.KindI128
		// Two's-complement: if the top bit is set, subtract 2^128.
		if be[0]&0x80 != 0 {
			mod := new(big.Int).Lsh(big.NewInt(1), 128)
			n.Sub(n, mod)
		}
	}
	return models.DecodedValue{Kind: kind, Big: n}
}

func (c *Cursor) decodeBool() models.DecodedValue {
	b, ok := c.take(1)
	if !ok {
		return c.fail()
	}
	return models.DecodedValue{Kind: models.KindBool, Bool: b[0] != 0}
}

func (c *Cursor) decodeString() models.DecodedValue {
	lenBytes, ok := c.take(4)
	if !ok {
		return c.fail()
	}
	n := binary.LittleEndian.Uint32(lenBytes)
	b, ok := c.take(int(n))
	if !ok {
		return c.fail()
	}
	if !utf8.Valid(b) {
		return c.fail()
	}
	return models.DecodedValue{Kind: models.KindString, Str: string(b)}
}

func (c *Cursor) decodePublicKey() models.DecodedValue {
	b, ok := c.take(32)
	if !ok {
		return c.fail()
	}
	var k models.PubKey
	copy(k[:], b)
	return models.DecodedValue{Kind: models.KindPublicKey, Key: k}
}

func (c *Cursor) decodeBytes() models.DecodedValue {
	lenBytes, ok := c.take(4)
	if !ok {
		return c.fail()
	}
	n := binary.LittleEndian.Uint32(lenBytes)
	b, ok := c.take(int(n))
	if !ok {
		return c.fail()
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	return models.DecodedValue{Kind: models.KindBytes, Blob: cp}
}

func (c *Cursor) decodeSeq(ft models.FieldType, types map[string]models.TypeDef) models.DecodedValue {
	lenBytes, ok := c.take(4)
	if !ok {
		return c.fail()
	}
	n := binary.LittleEndian.Uint32(lenBytes)
	elems := make([]models.DecodedValue, 0, n)
	for i := uint32(0); i < n; i++ {
		if c.failed {
			break
		}
		elems = append(elems, c.DecodeField(*ft.Elem, types))
	}
	return models.DecodedValue{Kind: models.KindSeq, Seq: elems}
}

func (c *Cursor) decodeOption(ft models.FieldType, types map[string]models.TypeDef) models.DecodedValue {
	tag, ok := c.take(1)
	if !ok {
		return c.fail()
	}
	if tag[0] == 0 {
		return models.DecodedValue{Kind: models.KindOption, Opt: nil}
	}
	inner := c.DecodeField(*ft.Elem, types)
	return models.DecodedValue{Kind: models.KindOption, Opt: &inner}
}

func (c *Cursor) decodeArray(ft models.FieldType, types map[string]models.TypeDef) models.DecodedValue {
	elems := make([]models.DecodedValue, 0, ft.Len)
	for i := 0; i < ft.Len; i++ {
		if c.failed {
			break
		}
		elems = append(elems, c.DecodeField(*ft.Elem, types))
	}
	return models.DecodedValue{Kind: models.KindArray, Seq: elems}
}

func (c *Cursor) decodeDefined(name string, types map[string]models.TypeDef) models.DecodedValue {
	def, ok := types[name]
	if !ok {
		return c.fail()
	}
	switch def.Kind {
	case models.TypeDefRecord:
		fields := make(map[string]models.DecodedValue, len(def.Fields))
		for _, f := range def.Fields {
			fields[f.Name] = c.DecodeField(f.Type, types)
		}
		return models.DecodedValue{Kind: models.KindDefined, Variant: name, Fields: fields}
	case models.TypeDefUnion:
		return c.decodeUnion(name, def, types)
	default:
		return c.fail()
	}
}

func (c *Cursor) decodeUnion(name string, def models.TypeDef, types map[string]models.TypeDef) models.DecodedValue {
	tagByte, ok := c.take(1)
	if !ok {
		return c.fail()
	}
	idx := int(tagByte[0])
	if idx < 0 || idx >= len(def.Variants) {
		return c.fail()
	}
	variant := def.Variants[idx]
	fields := make(map[string]models.DecodedValue, len(variant.Fields))
	for _, f := range variant.Fields {
		fields[f.Name] = c.DecodeField(f.Type, types)
	}
	return models.DecodedValue{Kind: models.KindDefined, Variant: variant.Name, Fields: fields}
}
