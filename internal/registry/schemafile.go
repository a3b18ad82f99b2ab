package registry

import (
	"fmt"

	"github.com/rawblock/dex-arb-engine/pkg/models"
)

// The types below mirror the on-disk schema file format: a JSON or TOML
// document with top-level name/version/program_id/instructions, plus a
// types table for defined() records and tagged unions.
//
// field_type is represented uniformly as an object with a "kind" key (one
// of the field-type sum-type leaves) rather than a bare string for scalars and
// a nested object only for compound types. This keeps one shape decodable
// by both the JSON and TOML encoders without a custom recursive-sum-type
// unmarshaler.

type fieldTypeDoc struct {
	Kind    string        `json:"kind" toml:"kind"`
	Elem    *fieldTypeDoc `json:"elem,omitempty" toml:"elem,omitempty"`
	Len     int           `json:"len,omitempty" toml:"len,omitempty"`
	Defined string        `json:"defined,omitempty" toml:"defined,omitempty"`
}

func (d *fieldTypeDoc) toFieldType() (models.FieldType, error) {
	if d == nil {
		return models.FieldType{}, fmt.Errorf("registry: nil field_type")
	}
	kind, ok := fieldKindByName[d.Kind]
	if !ok {
		return models.FieldType{}, fmt.Errorf("registry: unknown field_type kind %q", d.Kind)
	}
	ft := models.FieldType{Kind: kind, Len: d.Len, Defined: d.Defined}
	switch kind {
	case models.KindSeq, models.KindOption, models.KindArray:
		elem, err := d.Elem.toFieldType()
		if err != nil {
			return models.FieldType{}, fmt.Errorf("registry: %s element: %w", d.Kind, err)
		}
		ft.Elem = &elem
	case models.KindDefined:
		if d.Defined == "" {
			return models.FieldType{}, fmt.Errorf("registry: defined field_type missing \"defined\" name")
		}
	}
	return ft, nil
}

var fieldKindByName = map[string]models.FieldKind{
	"u8":         models.KindU8,
	"u16":        models.KindU16,
	"u32":        models.KindU32,
	"u64":        models.KindU64,
	"u128":       models.KindU128,
	"i8":         models.KindI8,
	"i16":        models.KindI16,
	"i32":        models.KindI32,
	"i64":        models.KindI64,
	"i128":       models.KindI128,
	"bool":       models.KindBool,
	"string":     models.KindString,
	"public_key": models.KindPublicKey,
	"bytes":      models.KindBytes,
	"seq":        models.KindSeq,
	"option":     models.KindOption,
	"array":      models.KindArray,
	"defined":    models.KindDefined,
}

type fieldDoc struct {
	Name string       `json:"name" toml:"name"`
	Type fieldTypeDoc `json:"field_type" toml:"field_type"`
	// Offset mirrors the source documents' data_fields[].offset. The
	// decoder is a sequential cursor, so this is informational only and is
	// not consulted during decode.
	Offset int `json:"offset,omitempty" toml:"offset,omitempty"`
}

type accountDoc struct {
	Name     string `json:"name" toml:"name"`
	IsMut    bool   `json:"is_mut,omitempty" toml:"is_mut,omitempty"`
	IsSigner bool   `json:"is_signer,omitempty" toml:"is_signer,omitempty"`
}

type instructionDoc struct {
	Name                    string       `json:"name" toml:"name"`
	Discriminator           string       `json:"discriminator,omitempty" toml:"discriminator,omitempty"`
	EventType               string       `json:"event_type,omitempty" toml:"event_type,omitempty"`
	Accounts                []accountDoc `json:"accounts" toml:"accounts"`
	DataFields              []fieldDoc   `json:"data_fields" toml:"data_fields"`
	RequiresInnerInstruction bool        `json:"requires_inner_instruction,omitempty" toml:"requires_inner_instruction,omitempty"`
	InnerDiscriminator      string       `json:"inner_discriminator,omitempty" toml:"inner_discriminator,omitempty"`
}

type variantDoc struct {
	Name   string     `json:"name" toml:"name"`
	Fields []fieldDoc `json:"fields,omitempty" toml:"fields,omitempty"`
}

type typeDefDoc struct {
	Kind     string       `json:"kind" toml:"kind"` // "record" or "union"
	Fields   []fieldDoc   `json:"fields,omitempty" toml:"fields,omitempty"`
	Variants []variantDoc `json:"variants,omitempty" toml:"variants,omitempty"`
}

type protocolDoc struct {
	Name         string                `json:"name" toml:"name"`
	Version      string                `json:"version" toml:"version"`
	ProgramID    string                `json:"program_id" toml:"program_id"`
	Description  string                `json:"description,omitempty" toml:"description,omitempty"`
	Instructions []instructionDoc      `json:"instructions" toml:"instructions"`
	Types        map[string]typeDefDoc `json:"types,omitempty" toml:"types,omitempty"`
}
