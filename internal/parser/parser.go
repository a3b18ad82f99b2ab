// Package parser implements the public entry point: it accepts
// a transaction update and fans it to the walker with a callback, leaving
// the caller free to block synchronously or fan out onto a queue.
package parser

import (
	"github.com/rawblock/dex-arb-engine/internal/registry"
	"github.com/rawblock/dex-arb-engine/internal/walker"
	"github.com/rawblock/dex-arb-engine/pkg/models"
)

// Frontend is the public decoder entry point. It holds no per-transaction
// state and is safe for concurrent use across transactions dispatched by a
// caller-owned worker pool.
type Frontend struct {
	w *walker.Walker
}

// New builds a Frontend over reg.
func New(reg *registry.Registry) *Frontend {
	return &Frontend{w: walker.New(reg)}
}

// HandleUpdate decodes every matching instruction in a push-transport
// transaction payload, invoking cb once per envelope in order.
func (f *Frontend) HandleUpdate(tx *models.TransactionUpdate, cb walker.Callback) {
	f.w.Walk(tx, cb)
}

// HandleConfirmedTransaction decodes a pre-decoded confirmed transaction:
// the same wire shape as a push-transport update, just sourced from an RPC
// client's getTransaction response instead of a subscription. The walker
// does not distinguish the two; this method exists so
// callers don't have to reach into internal/walker directly depending on
// their transaction source.
func (f *Frontend) HandleConfirmedTransaction(tx *models.TransactionUpdate, cb walker.Callback) {
	f.w.Walk(tx, cb)
}
