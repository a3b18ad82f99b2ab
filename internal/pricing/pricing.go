// Package pricing implements the price quote extractor: fixed,
// per-instruction-kind projections of a decoded EventEnvelope into a
// normalized PriceQuote. Instructions that lack usable mint identifiers are
// rejected outright rather than folded into a generic success path.
package pricing

import (
	"github.com/rawblock/dex-arb-engine/pkg/models"
)

// Extract projects env into a PriceQuote if its Kind is one of the known
// swap-like instruction shapes. ok is false for every other kind, including
// the legacy concentrated-liquidity `swap` and legacy constant-product
// `swap_base_in` / `swap_base_out`, which carry no usable mint identifiers.
func Extract(env *models.EventEnvelope, nowS int64) (models.PriceQuote, bool) {
	switch env.Kind {
	case "route":
		return fromAggregatorRoute(env, nowS, "in_amount", "quoted_out_amount")
	case "exact_out_route":
		return fromAggregatorRoute(env, nowS, "quoted_in_amount", "out_amount")
	case "swap_v2":
		return fromClmmSwapV2(env, nowS)
	case "swap_base_input":
		return fromCpmmSwap(env, nowS, "amount_in", "minimum_amount_out")
	case "swap_base_output":
		return fromCpmmSwap(env, nowS, "max_amount_in", "amount_out")
	default:
		// "swap" (CLMM v1) and "swap_base_in"/"swap_base_out" (legacy AMM
		// V4) fall here: their account lists carry token accounts, not
		// mints, so no normalized pair can be formed and any quote would
		// risk a false cross-venue correlation.
		return models.PriceQuote{}, false
	}
}

// ExtractFee projects a fee event (emitted by the aggregator as an inner
// self-CPI) into a FeeObservation keyed by the transaction fingerprint, for
// the detector's fee correlator. ok is false for non-fee kinds and for fee
// events whose mint or amount failed to decode.
func ExtractFee(env *models.EventEnvelope, nowS int64) (models.FeeObservation, bool) {
	if env.Kind != "fee_event" || env.Metadata.Fingerprint.IsZero() {
		return models.FeeObservation{}, false
	}
	mint, ok1 := env.ArgByName("mint")
	amount, ok2 := env.ArgByName("amount")
	if !ok1 || !ok2 || mint.Undecoded || amount.Undecoded {
		return models.FeeObservation{}, false
	}
	return models.FeeObservation{
		Fingerprint: env.Metadata.Fingerprint,
		Mint:        mint.Key,
		Amount:      amount.U64,
		RecordedS:   nowS,
	}, true
}

func fromAggregatorRoute(env *models.EventEnvelope, nowS int64, inArg, outArg string) (models.PriceQuote, bool) {
	sourceMint, ok1 := env.AccountByName("source_mint")
	destMint, ok2 := env.AccountByName("destination_mint")
	in, ok3 := env.ArgByName(inArg)
	out, ok4 := env.ArgByName(outArg)
	if !ok1 || !ok2 || !ok3 || !ok4 || in.Undecoded || out.Undecoded {
		return models.PriceQuote{}, false
	}

	q := models.PriceQuote{
		Venue:        env.Protocol,
		Pair:         models.NewTokenPair(sourceMint, destMint),
		OutputMint:   destMint,
		InputAmount:  in.U64,
		OutputAmount: out.U64,
		RecordedS:    nowS,
	}
	if q.InputAmount == 0 {
		return models.PriceQuote{}, false
	}
	q.Price = float64(q.OutputAmount) / float64(q.InputAmount)

	if slip, ok := env.ArgByName("slippage_bps"); ok && !slip.Undecoded {
		v := slip.U64
		q.SlippageBps = &v
	}
	if fee, ok := env.ArgByName("platform_fee_bps"); ok && !fee.Undecoded {
		v := fee.U64
		q.PlatformFeeBps = &v
	}
	if !env.Metadata.Fingerprint.IsZero() {
		fp := env.Metadata.Fingerprint
		q.Fingerprint = &fp
	}
	return q, true
}

func fromClmmSwapV2(env *models.EventEnvelope, nowS int64) (models.PriceQuote, bool) {
	inMint, ok1 := env.AccountByName("input_vault_mint")
	outMint, ok2 := env.AccountByName("output_vault_mint")
	amount, ok3 := env.ArgByName("amount")
	threshold, ok4 := env.ArgByName("other_amount_threshold")
	if !ok1 || !ok2 || !ok3 || !ok4 || amount.Undecoded || threshold.Undecoded {
		return models.PriceQuote{}, false
	}
	if amount.U64 == 0 {
		return models.PriceQuote{}, false
	}
	q := models.PriceQuote{
		Venue:        env.Protocol,
		Pair:         models.NewTokenPair(inMint, outMint),
		OutputMint:   outMint,
		InputAmount:  amount.U64,
		OutputAmount: threshold.U64,
		Price:        float64(threshold.U64) / float64(amount.U64),
		RecordedS:    nowS,
	}
	if pool, ok := env.AccountByName("pool_state"); ok {
		q.Pool = &pool
	}
	if !env.Metadata.Fingerprint.IsZero() {
		fp := env.Metadata.Fingerprint
		q.Fingerprint = &fp
	}
	return q, true
}

func fromCpmmSwap(env *models.EventEnvelope, nowS int64, inArg, outArg string) (models.PriceQuote, bool) {
	inMint, ok1 := env.AccountByName("input_token_mint")
	outMint, ok2 := env.AccountByName("output_token_mint")
	in, ok3 := env.ArgByName(inArg)
	out, ok4 := env.ArgByName(outArg)
	if !ok1 || !ok2 || !ok3 || !ok4 || in.Undecoded || out.Undecoded {
		return models.PriceQuote{}, false
	}
	if in.U64 == 0 {
		return models.PriceQuote{}, false
	}
	q := models.PriceQuote{
		Venue:        env.Protocol,
		Pair:         models.NewTokenPair(inMint, outMint),
		OutputMint:   outMint,
		InputAmount:  in.U64,
		OutputAmount: out.U64,
		Price:        float64(out.U64) / float64(in.U64),
		RecordedS:    nowS,
	}
	if pool, ok := env.AccountByName("pool_state"); ok {
		q.Pool = &pool
	}
	if !env.Metadata.Fingerprint.IsZero() {
		fp := env.Metadata.Fingerprint
		q.Fingerprint = &fp
	}
	return q, true
}
