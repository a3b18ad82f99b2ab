package api

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rawblock/dex-arb-engine/pkg/models"
)

// Stats tracks process-lifetime counters surfaced by GET /stats.
type Stats struct {
	startedAt            time.Time
	envelopesDecoded     atomic.Int64
	opportunitiesEmitted atomic.Int64
}

// NewStats starts the clock for uptime reporting.
func NewStats() *Stats {
	return &Stats{startedAt: time.Now()}
}

func (s *Stats) RecordEnvelope()    { s.envelopesDecoded.Add(1) }
func (s *Stats) RecordOpportunity() { s.opportunitiesEmitted.Add(1) }

func (s *Stats) Snapshot() map[string]any {
	return map[string]any{
		"uptimeSeconds":        time.Since(s.startedAt).Seconds(),
		"envelopesDecoded":     s.envelopesDecoded.Load(),
		"opportunitiesEmitted": s.opportunitiesEmitted.Load(),
	}
}

// OpportunityRing keeps a bounded in-memory history of recent opportunities
// for GET /opportunities when no database sink is configured.
type OpportunityRing struct {
	mu      sync.Mutex
	items   []models.ArbitrageOpportunity
	maxSize int
}

// NewOpportunityRing builds a ring holding at most maxSize opportunities.
func NewOpportunityRing(maxSize int) *OpportunityRing {
	return &OpportunityRing{maxSize: maxSize}
}

// Add appends opp, evicting the oldest entry once maxSize is exceeded.
func (r *OpportunityRing) Add(opp models.ArbitrageOpportunity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, opp)
	if len(r.items) > r.maxSize {
		r.items = r.items[len(r.items)-r.maxSize:]
	}
}

// Recent returns up to limit opportunities, most recent first.
func (r *OpportunityRing) Recent(limit int) []models.ArbitrageOpportunity {
	r.mu.Lock()
	defer r.mu.Unlock()
	if limit <= 0 || limit > len(r.items) {
		limit = len(r.items)
	}
	out := make([]models.ArbitrageOpportunity, limit)
	start := len(r.items) - limit
	for i := 0; i < limit; i++ {
		out[i] = r.items[start+limit-1-i]
	}
	return out
}
