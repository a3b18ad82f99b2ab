// Package registry implements the schema registry and tag index: it loads
// protocol instruction schemas from JSON or TOML schema files, derives any
// missing discriminators, validates the result, and answers
// (program_id, tag) lookups for the walker.
package registry

import (
	"encoding/hex"
	"fmt"

	gojson "github.com/goccy/go-json"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/rawblock/dex-arb-engine/internal/codec"
	"github.com/rawblock/dex-arb-engine/pkg/models"
)

// tagEntry is one (program_id, tag) -> instruction binding in the index.
type tagEntry struct {
	ProgramID   models.PubKey
	ProtocolIdx int
	InstrIdx    int
}

// Registry holds every loaded protocol schema plus a tag index for
// component B's fast lookup path.
type Registry struct {
	protocols []models.ProtocolSchema
	byTag     map[models.Tag][]tagEntry
}

// New returns an empty registry. Use LoadJSON/LoadTOML to populate it, or
// Add to insert an already-built schema directly (used by tests).
func New() *Registry {
	return &Registry{byTag: make(map[models.Tag][]tagEntry)}
}

// Protocols returns every loaded protocol schema.
func (r *Registry) Protocols() []models.ProtocolSchema {
	return r.protocols
}

// LoadJSON parses a single schema file in JSON form and adds it to the
// registry.
func (r *Registry) LoadJSON(data []byte) error {
	var doc protocolDoc
	if err := gojson.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("registry: parse json schema: %w", err)
	}
	return r.addDoc(doc)
}

// LoadTOML parses a single schema file in TOML form and adds it to the
// registry.
func (r *Registry) LoadTOML(data []byte) error {
	var doc protocolDoc
	if err := toml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("registry: parse toml schema: %w", err)
	}
	return r.addDoc(doc)
}

func (r *Registry) addDoc(doc protocolDoc) error {
	schema, err := buildProtocolSchema(doc)
	if err != nil {
		return err
	}
	return r.Add(schema)
}

// Add inserts an already-built protocol schema, validating it and indexing
// its instructions by tag.
func (r *Registry) Add(schema models.ProtocolSchema) error {
	if schema.Name == "" {
		return fmt.Errorf("registry: protocol schema missing name")
	}
	if schema.ProgramID.IsZero() {
		return fmt.Errorf("registry: protocol %s has zero program_id", schema.Name)
	}
	if len(schema.Instructions) == 0 {
		return fmt.Errorf("registry: protocol %s declares no instructions", schema.Name)
	}

	seen := make(map[models.Tag]string, len(schema.Instructions))
	for _, ins := range schema.Instructions {
		if ins.Tag == (models.Tag{}) {
			return fmt.Errorf("registry: protocol %s instruction %s has empty tag", schema.Name, ins.Name)
		}
		if prior, dup := seen[ins.Tag]; dup {
			return fmt.Errorf("registry: protocol %s: instructions %s and %s share tag %s",
				schema.Name, prior, ins.Name, ins.Tag)
		}
		seen[ins.Tag] = ins.Name
	}

	protoIdx := len(r.protocols)
	r.protocols = append(r.protocols, schema)
	if r.byTag == nil {
		r.byTag = make(map[models.Tag][]tagEntry)
	}
	for insIdx, ins := range schema.Instructions {
		r.byTag[ins.Tag] = append(r.byTag[ins.Tag], tagEntry{
			ProgramID:   schema.ProgramID,
			ProtocolIdx: protoIdx,
			InstrIdx:    insIdx,
		})
	}
	return nil
}

// LookupByTag returns every (protocol, instruction) pair whose discriminator
// equals tag, across all loaded programs. Collisions across
// programs are expected and permitted; the walker filters by program_id.
func (r *Registry) LookupByTag(tag models.Tag) []Candidate {
	entries := r.byTag[tag]
	if len(entries) == 0 {
		return nil
	}
	out := make([]Candidate, 0, len(entries))
	for _, e := range entries {
		proto := &r.protocols[e.ProtocolIdx]
		out = append(out, Candidate{
			Protocol:    proto,
			Instruction: &proto.Instructions[e.InstrIdx],
		})
	}
	return out
}

// LookupByProgramAndTag narrows LookupByTag to a single program_id, the
// filter step the walker applies after the raw tag lookup.
func (r *Registry) LookupByProgramAndTag(programID models.PubKey, tag models.Tag) (Candidate, bool) {
	for _, c := range r.LookupByTag(tag) {
		if c.Protocol.ProgramID == programID {
			return c, true
		}
	}
	return Candidate{}, false
}

// LookupByName finds an instruction by protocol name + instruction name,
// without recomputing tags.
func (r *Registry) LookupByName(protocolName, instructionName string) (Candidate, bool) {
	for i := range r.protocols {
		p := &r.protocols[i]
		if p.Name != protocolName {
			continue
		}
		for j := range p.Instructions {
			if p.Instructions[j].Name == instructionName {
				return Candidate{Protocol: p, Instruction: &p.Instructions[j]}, true
			}
		}
	}
	return Candidate{}, false
}

// Candidate is one matching (protocol, instruction) schema pair.
type Candidate struct {
	Protocol    *models.ProtocolSchema
	Instruction *models.InstructionSchema
}

// ProtocolTag maps a loaded schema's free-text Name to the Protocol enum
// the walker stamps onto every envelope. Unrecognized names map to
// ProtocolUnknown rather than failing: a schema file is free to describe
// a venue this binary has no dedicated enum value for.
func ProtocolTag(schemaName string) models.Protocol {
	switch schemaName {
	case "jupiter_agg_v6":
		return models.ProtocolJupiterAggV6
	case "raydium_clmm":
		return models.ProtocolRaydiumClmm
	case "raydium_cpmm":
		return models.ProtocolRaydiumCpmm
	case "raydium_amm_v4":
		return models.ProtocolRaydiumAmmV4
	default:
		return models.ProtocolUnknown
	}
}

func buildProtocolSchema(doc protocolDoc) (models.ProtocolSchema, error) {
	programID, err := models.PubKeyFromBase58(doc.ProgramID)
	if err != nil {
		return models.ProtocolSchema{}, fmt.Errorf("registry: protocol %s program_id: %w", doc.Name, err)
	}

	types, err := buildTypes(doc.Types)
	if err != nil {
		return models.ProtocolSchema{}, fmt.Errorf("registry: protocol %s: %w", doc.Name, err)
	}

	instructions := make([]models.InstructionSchema, 0, len(doc.Instructions))
	for _, insDoc := range doc.Instructions {
		ins, err := buildInstruction(insDoc)
		if err != nil {
			return models.ProtocolSchema{}, fmt.Errorf("registry: protocol %s instruction %s: %w", doc.Name, insDoc.Name, err)
		}
		instructions = append(instructions, ins)
	}

	return models.ProtocolSchema{
		ProgramID:    programID,
		Name:         doc.Name,
		Version:      doc.Version,
		Instructions: instructions,
		Types:        types,
	}, nil
}

func buildInstruction(doc instructionDoc) (models.InstructionSchema, error) {
	var tag models.Tag
	if doc.Discriminator != "" {
		t, err := parseDiscriminator(doc.Discriminator)
		if err != nil {
			return models.InstructionSchema{}, fmt.Errorf("discriminator: %w", err)
		}
		tag = t
	} else {
		tag = codec.DeriveTag(doc.Name)
	}

	// inner_discriminator is the same lowercase-hex encoding as
	// discriminator, naming the companion inner instruction's tag.
	var innerTag models.Tag
	if doc.InnerDiscriminator != "" {
		t, err := parseDiscriminator(doc.InnerDiscriminator)
		if err != nil {
			return models.InstructionSchema{}, fmt.Errorf("inner_discriminator: %w", err)
		}
		innerTag = t
	}

	accounts := make([]models.AccountSlot, 0, len(doc.Accounts))
	for _, a := range doc.Accounts {
		accounts = append(accounts, models.AccountSlot{Name: a.Name, Writable: a.IsMut, Signer: a.IsSigner})
	}

	args, err := buildFields(doc.DataFields)
	if err != nil {
		return models.InstructionSchema{}, err
	}

	return models.InstructionSchema{
		Name:          doc.Name,
		Tag:           tag,
		Accounts:      accounts,
		Args:          args,
		RequiresInner: doc.RequiresInnerInstruction,
		InnerTag:      innerTag,
	}, nil
}

// parseDiscriminator decodes the 16-char lowercase-hex tag encoding shared
// by discriminator and inner_discriminator.
func parseDiscriminator(s string) (models.Tag, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return models.Tag{}, err
	}
	var t models.Tag
	if len(raw) != len(t) {
		return models.Tag{}, fmt.Errorf("expected %d bytes, got %d", len(t), len(raw))
	}
	copy(t[:], raw)
	return t, nil
}

func buildFields(docs []fieldDoc) ([]models.Field, error) {
	fields := make([]models.Field, 0, len(docs))
	for _, f := range docs {
		ft, err := f.Type.toFieldType()
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		fields = append(fields, models.Field{Name: f.Name, Type: ft})
	}
	return fields, nil
}

func buildTypes(docs map[string]typeDefDoc) (map[string]models.TypeDef, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	out := make(map[string]models.TypeDef, len(docs))
	for name, d := range docs {
		fields, err := buildFields(d.Fields)
		if err != nil {
			return nil, fmt.Errorf("type %s: %w", name, err)
		}
		variants := make([]models.UnionVariant, 0, len(d.Variants))
		for _, v := range d.Variants {
			vfields, err := buildFields(v.Fields)
			if err != nil {
				return nil, fmt.Errorf("type %s variant %s: %w", name, v.Name, err)
			}
			variants = append(variants, models.UnionVariant{Name: v.Name, Fields: vfields})
		}
		kind := models.TypeDefRecord
		if d.Kind == "union" {
			kind = models.TypeDefUnion
		}
		out[name] = models.TypeDef{Name: name, Kind: kind, Fields: fields, Variants: variants}
	}
	return out, nil
}
