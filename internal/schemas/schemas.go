// Package schemas embeds the protocol schema files the engine ships with
// and loads them into a registry.Registry.
package schemas

import (
	"embed"
	"fmt"

	"github.com/rawblock/dex-arb-engine/internal/registry"
)

//go:embed data/*.json
var data embed.FS

var files = []string{
	"data/jupiter_agg_v6.json",
	"data/raydium_clmm.json",
	"data/raydium_cpmm.json",
	"data/raydium_amm_v4.json",
}

// Default builds a registry populated with every schema embedded in this
// binary. A malformed embedded schema is a build defect, so any load
// error here is surfaced to the caller and treated as fatal.
func Default() (*registry.Registry, error) {
	r := registry.New()
	for _, name := range files {
		raw, err := data.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("schemas: read %s: %w", name, err)
		}
		if err := r.LoadJSON(raw); err != nil {
			return nil, fmt.Errorf("schemas: load %s: %w", name, err)
		}
	}
	return r, nil
}
