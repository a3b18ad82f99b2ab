// Package alerting implements the pair watchlist and opportunity alert
// manager: operators flag token pairs of interest, and flagged pairs raise
// the alert severity floor when an opportunity lands on them.
package alerting

import (
	"sync"

	"github.com/rawblock/dex-arb-engine/pkg/models"
)

// WatchedPair holds metadata for an operator-flagged token pair.
type WatchedPair struct {
	Pair        models.TokenPair
	Label       string
	MinSeverity string
}

// PairWatchlist is a concurrent-safe set of token pairs an operator wants
// called out regardless of the severity their numbers alone would earn.
type PairWatchlist struct {
	mu    sync.RWMutex
	pairs map[models.TokenPair]WatchedPair
}

// NewPairWatchlist creates an empty watchlist.
func NewPairWatchlist() *PairWatchlist {
	return &PairWatchlist{pairs: make(map[models.TokenPair]WatchedPair)}
}

// Add flags pair for operator attention.
func (w *PairWatchlist) Add(pair models.TokenPair, label, minSeverity string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pairs[pair] = WatchedPair{Pair: pair, Label: label, MinSeverity: minSeverity}
}

// Remove stops flagging pair.
func (w *PairWatchlist) Remove(pair models.TokenPair) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.pairs, pair)
}

// Contains reports whether pair is flagged.
func (w *PairWatchlist) Contains(pair models.TokenPair) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.pairs[pair]
	return ok
}

// Get returns the watchlist entry for pair, if any.
func (w *PairWatchlist) Get(pair models.TokenPair) (WatchedPair, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	entry, ok := w.pairs[pair]
	return entry, ok
}

// Size returns the number of watched pairs.
func (w *PairWatchlist) Size() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.pairs)
}

// ListAll returns every watched pair.
func (w *PairWatchlist) ListAll() []WatchedPair {
	w.mu.RLock()
	defer w.mu.RUnlock()
	list := make([]WatchedPair, 0, len(w.pairs))
	for _, entry := range w.pairs {
		list = append(list, entry)
	}
	return list
}
