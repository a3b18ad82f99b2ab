// Package arbitrage implements the fee correlator and cross-venue
// arbitrage detector. The two share a single exclusive lock: the fee map
// is never sharded independently of the quote map.
package arbitrage

import (
	"sync"

	"github.com/rawblock/dex-arb-engine/pkg/models"
)

// GasCostBps is the estimated gas cost attached to every opportunity. A
// deployment constant, not a config knob.
const GasCostBps = 20

// GasConstantLamports is the fixed gas deduction applied by NetProfit.
const GasConstantLamports = 2_000_000

// Detector maintains a per-pair ring of recent quotes and cross-matches
// them into arbitrage opportunities above a configurable gross-profit
// threshold.
type Detector struct {
	mu   sync.Mutex
	quo  map[models.TokenPair][]models.PriceQuote
	fees *feeCorrelator

	maxQuoteAgeS          int64
	minProfitThresholdPct float64
}

// NewDetector builds a detector with the given eviction window and
// gross-profit threshold (percent, e.g. 0.5 for 0.5%).
func NewDetector(maxQuoteAgeS int64, minProfitThresholdPct float64) *Detector {
	return &Detector{
		quo:                   make(map[models.TokenPair][]models.PriceQuote),
		fees:                  newFeeCorrelator(maxQuoteAgeS),
		maxQuoteAgeS:          maxQuoteAgeS,
		minProfitThresholdPct: minProfitThresholdPct,
	}
}

// RecordFee correlates a fee observation by transaction fingerprint,
// sharing the detector's lock.
func (d *Detector) RecordFee(obs models.FeeObservation) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fees.record(obs)
}

// Process evicts stale quotes for q's pair, inserts q, and cross-matches it
// against every other live quote for the same pair from a distinct venue,
// returning any opportunities at or above the profit threshold. It never
// returns an error; an empty slice means no opportunity cleared the
// threshold.
func (d *Detector) Process(q models.PriceQuote) []models.ArbitrageOpportunity {
	d.mu.Lock()
	defer d.mu.Unlock()

	live := d.evictLocked(q.Pair, q.RecordedS)
	newIdx := len(live)
	live = append(live, q)
	d.quo[q.Pair] = live

	var out []models.ArbitrageOpportunity
	for i, other := range live {
		if i == newIdx || other.Venue == q.Venue {
			continue
		}
		opp, ok := d.scoreLocked(other, q)
		if !ok {
			continue
		}
		out = append(out, opp)
	}
	return out
}

// evictLocked drops quotes for pair older than maxQuoteAgeS relative to
// nowS. Caller must hold d.mu.
func (d *Detector) evictLocked(pair models.TokenPair, nowS int64) []models.PriceQuote {
	existing := d.quo[pair]
	if len(existing) == 0 {
		return existing[:0]
	}
	live := existing[:0]
	for _, q := range existing {
		if nowS-q.RecordedS <= d.maxQuoteAgeS {
			live = append(live, q)
		}
	}
	return live
}

// scoreLocked computes the opportunity between two quotes for the same
// pair from distinct venues. Caller must hold d.mu.
func (d *Detector) scoreLocked(q1, q2 models.PriceQuote) (models.ArbitrageOpportunity, bool) {
	low, high := q1, q2
	if high.Price < low.Price {
		low, high = high, low
	}
	if low.Price <= 0 {
		return models.ArbitrageOpportunity{}, false
	}

	grossPct := (high.Price - low.Price) / low.Price * 100
	if grossPct < d.minProfitThresholdPct {
		return models.ArbitrageOpportunity{}, false
	}

	netLow := d.netPriceLocked(low)
	netHigh := d.netPriceLocked(high)
	var netPct float64
	if netLow > 0 {
		netPct = (netHigh - netLow) / netLow * 100
	}

	totalFeePct := feeBpsOf(low)/100 + feeBpsOf(high)/100

	opp := models.ArbitrageOpportunity{
		Pair:        low.Pair,
		BuyVenue:    low.Venue,
		SellVenue:   high.Venue,
		BuyPrice:    low.Price,
		SellPrice:   high.Price,
		GrossPct:    grossPct,
		NetPct:      netPct,
		BuyQuote:    low,
		SellQuote:   high,
		TotalFeePct: totalFeePct,
		EstGasBps:   GasCostBps,
		RecordedS:   q2.RecordedS,
	}
	return opp, true
}

// netPriceLocked applies platform fee bps and correlated transaction fees
// to a quote's output before dividing by input.
// Caller must hold d.mu.
func (d *Detector) netPriceLocked(q models.PriceQuote) float64 {
	out := float64(q.OutputAmount)
	if q.PlatformFeeBps != nil {
		out -= out * float64(*q.PlatformFeeBps) / 10000
	}
	if q.Fingerprint != nil {
		mint := q.OutputMint
		if mint.IsZero() {
			// Quotes built before OutputMint was tracked (or synthesized
			// directly in tests) fall back to the normalized pair's
			// quote-side mint.
			mint = q.Pair.Quote
		}
		if fee, ok := d.fees.totalFor(*q.Fingerprint, mint, q.RecordedS); ok {
			out -= float64(fee)
		}
	}
	if q.InputAmount == 0 {
		return 0
	}
	return out / float64(q.InputAmount)
}

func feeBpsOf(q models.PriceQuote) float64 {
	if q.PlatformFeeBps == nil {
		return 0
	}
	return float64(*q.PlatformFeeBps)
}

// Profit returns the gross arbitrage profit for a given input amount.
func Profit(o models.ArbitrageOpportunity, in float64) float64 {
	return in*(o.SellPrice/o.BuyPrice) - in
}

// NetProfit returns the profit net of correlated fees and the fixed gas
// constant.
func NetProfit(o models.ArbitrageOpportunity, netBuy, netSell, in float64) float64 {
	if netBuy == 0 {
		return -GasConstantLamports
	}
	return in*(netSell/netBuy) - in - GasConstantLamports
}
