package models

// FieldKind enumerates the leaves of the field-type sum type.
type FieldKind int

const (
	KindInvalid FieldKind = iota
	KindU8
	KindU16
	KindU32
	KindU64
	KindU128
	KindI8
	KindI16
	KindI32
	KindI64
	KindI128
	KindBool
	KindString
	KindPublicKey
	KindBytes
	KindSeq
	KindOption
	KindArray
	KindDefined
)

func (k FieldKind) String() string {
	switch k {
	case KindU8:
		return "u8"
	case KindU16:
		return "u16"
	case KindU32:
		return "u32"
	case KindU64:
		return "u64"
	case KindU128:
		return "u128"
	case KindI8:
		return "i8"
	case KindI16:
		return "i16"
	case KindI32:
		return "i32"
	case KindI64:
		return "i64"
	case KindI128:
		return "i128"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindPublicKey:
		return "public_key"
	case KindBytes:
		return "bytes"
	case KindSeq:
		return "seq"
	case KindOption:
		return "option"
	case KindArray:
		return "array"
	case KindDefined:
		return "defined"
	default:
		return "invalid"
	}
}

// FieldType is the sum type describing how to decode one field.
// Elem is used by seq/option/array; Len is the array's fixed size; Defined
// is the name of a record or tagged union in the schema's Types table.
type FieldType struct {
	Kind    FieldKind
	Elem    *FieldType
	Len     int
	Defined string
}

// Field pairs a name with its on-wire type, in declared order.
type Field struct {
	Name string
	Type FieldType
}

// TypeDefKind distinguishes the two `defined(name)` shapes.
type TypeDefKind int

const (
	TypeDefRecord TypeDefKind = iota
	TypeDefUnion
)

// UnionVariant is one tagged-union arm: its name and its payload fields,
// decoded in declared order after the u8 variant tag. Its index is its
// position in TypeDef.Variants.
type UnionVariant struct {
	Name   string
	Fields []Field
}

// TypeDef is an entry in a schema's `types` table: either a record (plain
// ordered fields) or a tagged union (u8 variant index + per-variant fields).
type TypeDef struct {
	Name     string
	Kind     TypeDefKind
	Fields   []Field        // TypeDefRecord
	Variants []UnionVariant // TypeDefUnion
}
