// Package risk implements a weighted-signal severity classifier for
// arbitrage opportunities: quality and staleness signals composite into a
// 0-100 score mapped to five severity bands. internal/alerting records every
// opportunity and uses the severity to decide which webhooks receive it.
package risk

import (
	"math"

	"github.com/rawblock/dex-arb-engine/pkg/models"
)

// Assessment is the severity verdict for one arbitrage opportunity.
type Assessment struct {
	Severity          string   // info/low/medium/high/critical
	Score             int      // 0-100
	Signals           []string // contributing signals
	RecommendedAction string   // none/log/review/alert/escalate
	IsWatchlistHit    bool
}

// ClassifyOpportunity scores opp using net/gross profitability, quote
// staleness, and an optional watchlist hit for the pair.
func ClassifyOpportunity(opp models.ArbitrageOpportunity, quoteAgeS, maxQuoteAgeS int64, watchlistHit bool) Assessment {
	score := 0
	var signals []string

	switch {
	case opp.NetPct >= 5:
		score += 45
		signals = append(signals, "high_net_profit")
	case opp.NetPct >= 1:
		score += 25
		signals = append(signals, "notable_net_profit")
	case opp.NetPct > 0:
		score += 10
		signals = append(signals, "marginal_net_profit")
	default:
		signals = append(signals, "unprofitable_after_fees")
	}

	if opp.GrossPct >= 10 {
		score += 15
		signals = append(signals, "large_gross_divergence")
	}

	if opp.TotalFeePct > 0 && opp.GrossPct > 0 {
		feeShare := opp.TotalFeePct / opp.GrossPct
		if feeShare > 0.5 {
			score += 10
			signals = append(signals, "fee_dominated")
		}
	}

	if maxQuoteAgeS > 0 {
		staleness := float64(quoteAgeS) / float64(maxQuoteAgeS)
		if staleness > 0.5 {
			score += int(math.Round(math.Min(20, staleness*20)))
			signals = append(signals, "stale_quote_basis")
		}
	}

	if watchlistHit {
		score += 30
		signals = append(signals, "watchlisted_pair")
	}

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	return Assessment{
		Severity:          classifySeverity(score),
		Score:             score,
		Signals:           signals,
		RecommendedAction: recommendAction(score),
		IsWatchlistHit:    watchlistHit,
	}
}

func classifySeverity(score int) string {
	switch {
	case score <= 10:
		return "info"
	case score <= 30:
		return "low"
	case score <= 50:
		return "medium"
	case score <= 75:
		return "high"
	default:
		return "critical"
	}
}

func recommendAction(score int) string {
	switch {
	case score <= 10:
		return "none"
	case score <= 30:
		return "log"
	case score <= 50:
		return "review"
	case score <= 75:
		return "alert"
	default:
		return "escalate"
	}
}
