package pricing

import (
	"testing"

	"github.com/rawblock/dex-arb-engine/pkg/models"
)

func mint(b byte) models.PubKey {
	var k models.PubKey
	k[0] = b
	return k
}

func u64Arg(name string, v uint64) models.Arg {
	return models.Arg{Name: name, Value: models.DecodedValue{Kind: models.KindU64, U64: v}}
}

func TestExtractAggregatorRoute(t *testing.T) {
	env := &models.EventEnvelope{
		Protocol: models.ProtocolJupiterAggV6,
		Kind:     "route",
		Accounts: []models.EnvelopeAccount{
			{Name: "source_mint", Key: mint(1)},
			{Name: "destination_mint", Key: mint(2)},
		},
		Args: []models.Arg{
			u64Arg("in_amount", 10000),
			u64Arg("quoted_out_amount", 20000),
			u64Arg("slippage_bps", 50),
			u64Arg("platform_fee_bps", 25),
		},
	}

	q, ok := Extract(env, 500)
	if !ok {
		t.Fatal("expected a price quote")
	}
	if q.InputAmount != 10000 || q.OutputAmount != 20000 {
		t.Fatalf("got in=%d out=%d", q.InputAmount, q.OutputAmount)
	}
	if q.Price != 2.0 {
		t.Fatalf("price = %v, want 2.0", q.Price)
	}
	if q.PlatformFeeBps == nil || *q.PlatformFeeBps != 25 {
		t.Fatalf("platform_fee_bps not populated correctly: %v", q.PlatformFeeBps)
	}
	if q.Pair.Base != mint(1) && q.Pair.Base != mint(2) {
		t.Fatalf("pair base not one of the two mints")
	}
}

func TestExtractRejectsZeroInput(t *testing.T) {
	env := &models.EventEnvelope{
		Kind: "route",
		Accounts: []models.EnvelopeAccount{
			{Name: "source_mint", Key: mint(1)},
			{Name: "destination_mint", Key: mint(2)},
		},
		Args: []models.Arg{
			u64Arg("in_amount", 0),
			u64Arg("quoted_out_amount", 20000),
		},
	}
	if _, ok := Extract(env, 0); ok {
		t.Fatal("expected rejection for zero input amount")
	}
}

// Legacy CLMM V1 swap and legacy AMM V4 swaps lack mints and are rejected
// explicitly rather than silently folded into a success path.
func TestExtractRejectsMintlessKinds(t *testing.T) {
	for _, kind := range []string{"swap", "swap_base_in", "swap_base_out"} {
		env := &models.EventEnvelope{Kind: kind}
		if _, ok := Extract(env, 0); ok {
			t.Errorf("kind %s: expected rejection, got a quote", kind)
		}
	}
}

func TestExtractClmmSwapV2(t *testing.T) {
	env := &models.EventEnvelope{
		Protocol: models.ProtocolRaydiumClmm,
		Kind:     "swap_v2",
		Accounts: []models.EnvelopeAccount{
			{Name: "input_vault_mint", Key: mint(3)},
			{Name: "output_vault_mint", Key: mint(4)},
			{Name: "pool_state", Key: mint(9)},
		},
		Args: []models.Arg{
			u64Arg("amount", 500),
			u64Arg("other_amount_threshold", 480),
		},
	}
	q, ok := Extract(env, 10)
	if !ok {
		t.Fatal("expected a price quote")
	}
	if q.Pool == nil || *q.Pool != mint(9) {
		t.Fatalf("expected pool recorded, got %v", q.Pool)
	}
}

func TestExtractFeeEvent(t *testing.T) {
	env := &models.EventEnvelope{
		Kind: "fee_event",
		Args: []models.Arg{
			{Name: "account", Value: models.DecodedValue{Kind: models.KindPublicKey, Key: mint(7)}},
			{Name: "mint", Value: models.DecodedValue{Kind: models.KindPublicKey, Key: mint(2)}},
			u64Arg("amount", 50),
		},
		Metadata: models.EventMetadata{Fingerprint: models.Signature{9}},
	}
	obs, ok := ExtractFee(env, 100)
	if !ok {
		t.Fatal("expected a fee observation")
	}
	if obs.Mint != mint(2) || obs.Amount != 50 || obs.RecordedS != 100 {
		t.Fatalf("fee observation mismatch: %+v", obs)
	}
	if obs.Fingerprint != (models.Signature{9}) {
		t.Fatalf("fingerprint not carried: %+v", obs.Fingerprint)
	}
}

func TestExtractFeeRejectsNonFeeKinds(t *testing.T) {
	env := &models.EventEnvelope{Kind: "route", Metadata: models.EventMetadata{Fingerprint: models.Signature{9}}}
	if _, ok := ExtractFee(env, 0); ok {
		t.Fatal("expected rejection for non-fee kind")
	}
}
