package alerting

import (
	"testing"

	"github.com/rawblock/dex-arb-engine/internal/risk"
	"github.com/rawblock/dex-arb-engine/pkg/models"
)

func mint(b byte) models.PubKey {
	var k models.PubKey
	k[0] = b
	return k
}

func TestPairWatchlistAddContainsRemove(t *testing.T) {
	w := NewPairWatchlist()
	p := models.NewTokenPair(mint(1), mint(2))

	if w.Contains(p) {
		t.Fatal("expected empty watchlist to not contain pair")
	}
	w.Add(p, "test pair", "medium")
	if !w.Contains(p) {
		t.Fatal("expected watchlist to contain pair after Add")
	}
	if w.Size() != 1 {
		t.Fatalf("expected size 1, got %d", w.Size())
	}

	w.Remove(p)
	if w.Contains(p) {
		t.Fatal("expected pair removed")
	}
}

func TestEmitFromOpportunityBroadcastsAndRecordsHistory(t *testing.T) {
	var broadcast []Alert
	mgr := NewOpportunityAlertManager(func(a Alert) { broadcast = append(broadcast, a) })

	opp := models.ArbitrageOpportunity{
		Pair: models.NewTokenPair(mint(1), mint(2)),
		BuyVenue: models.ProtocolJupiterAggV6, SellVenue: models.ProtocolRaydiumCpmm,
		GrossPct: 5, NetPct: 4.5,
	}
	assessment := risk.ClassifyOpportunity(opp, 0, 30, false)
	mgr.EmitFromOpportunity(opp, assessment)

	if len(broadcast) != 1 {
		t.Fatalf("expected 1 broadcast, got %d", len(broadcast))
	}
	recent := mgr.GetRecentAlerts(10)
	if len(recent) != 1 {
		t.Fatalf("expected 1 alert in history, got %d", len(recent))
	}
	if recent[0].Severity != assessment.Severity {
		t.Fatalf("alert severity %s != assessment severity %s", recent[0].Severity, assessment.Severity)
	}
}

func TestSeverityMeetsThreshold(t *testing.T) {
	if !severityMeetsThreshold("high", "medium") {
		t.Fatal("expected high to meet medium threshold")
	}
	if severityMeetsThreshold("low", "medium") {
		t.Fatal("expected low to not meet medium threshold")
	}
}
