// Command decode is a debugging CLI: given a program id and a hex-encoded
// instruction data blob (8-byte discriminator + args), it looks
// the instruction up in the embedded schema registry and prints the
// decoded argument tree as JSON.
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"os"

	gojson "github.com/goccy/go-json"

	"github.com/rawblock/dex-arb-engine/internal/codec"
	"github.com/rawblock/dex-arb-engine/internal/schemas"
	"github.com/rawblock/dex-arb-engine/pkg/models"
)

func main() {
	programIDFlag := flag.String("program", "", "base58 program id")
	dataFlag := flag.String("data", "", "hex-encoded instruction data (discriminator + args)")
	flag.Parse()

	if *programIDFlag == "" || *dataFlag == "" {
		fmt.Fprintln(os.Stderr, "usage: decode -program <base58 program id> -data <hex instruction data>")
		os.Exit(2)
	}

	programID, err := models.PubKeyFromBase58(*programIDFlag)
	if err != nil {
		log.Fatalf("FATAL: invalid -program: %v", err)
	}

	raw, err := hex.DecodeString(*dataFlag)
	if err != nil {
		log.Fatalf("FATAL: invalid -data hex: %v", err)
	}
	if len(raw) < 8 {
		log.Fatalf("FATAL: instruction data shorter than 8-byte discriminator")
	}

	reg, err := schemas.Default()
	if err != nil {
		log.Fatalf("FATAL: failed to load embedded schemas: %v", err)
	}

	var tag models.Tag
	copy(tag[:], raw[:8])

	cand, ok := reg.LookupByProgramAndTag(programID, tag)
	if !ok {
		log.Fatalf("no instruction schema matches program=%s tag=%s", programID, tag)
	}
	schema, instr := cand.Protocol, cand.Instruction

	cursor := codec.NewCursor(raw[8:])
	type decodedField struct {
		Name  string              `json:"name"`
		Type  string              `json:"type"`
		Value models.DecodedValue `json:"value"`
	}
	fields := make([]decodedField, 0, len(instr.Args))
	var routePlan models.RoutePlan
	for _, f := range instr.Args {
		if f.Type.Kind == models.KindDefined && f.Type.Defined == "RoutePlan" {
			plan, _ := codec.DecodeRoutePlan(cursor, schema.Types)
			routePlan = plan
			continue
		}
		fields = append(fields, decodedField{
			Name:  f.Name,
			Type:  f.Type.Kind.String(),
			Value: cursor.DecodeField(f.Type, schema.Types),
		})
	}

	out := struct {
		Protocol  string           `json:"protocol"`
		Instr     string           `json:"instruction"`
		Tag       string           `json:"tag"`
		Args      []decodedField   `json:"args"`
		RoutePlan models.RoutePlan `json:"routePlan,omitempty"`
		Remaining []byte           `json:"remaining,omitempty"`
	}{
		Protocol:  schema.Name,
		Instr:     instr.Name,
		Tag:       tag.String(),
		Args:      fields,
		RoutePlan: routePlan,
		Remaining: cursor.Remaining(),
	}

	enc, err := gojson.MarshalIndent(out, "", "  ")
	if err != nil {
		log.Fatalf("FATAL: encode result: %v", err)
	}
	fmt.Println(string(enc))
}
