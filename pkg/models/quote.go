package models

// TokenPair is a normalized, unordered pair of mints stored as (Base, Quote)
// with Base < Quote by byte comparison. Build
// it only through NewTokenPair; never construct one with the mints in
// caller-supplied order.
type TokenPair struct {
	Base  PubKey
	Quote PubKey
}

// NewTokenPair normalizes two mints into a canonical (base, quote) pair.
func NewTokenPair(a, b PubKey) TokenPair {
	if a.Less(b) {
		return TokenPair{Base: a, Quote: b}
	}
	return TokenPair{Base: b, Quote: a}
}

// PriceQuote is one observed (input -> output) pricing at a venue.
type PriceQuote struct {
	Venue          Protocol
	Pair           TokenPair
	OutputMint     PubKey // the swap's actual destination mint; Pair.Base/Quote are normalized and may not match this side
	InputAmount    uint64
	OutputAmount   uint64
	Price          float64 // OutputAmount / InputAmount
	RecordedS      int64
	Pool           *PubKey
	SlippageBps    *uint64
	PlatformFeeBps *uint64
	TotalFees      *uint64
	Fingerprint    *Signature
}

// FeeObservation is one fee event correlated by transaction fingerprint.
type FeeObservation struct {
	Fingerprint Signature
	Mint        PubKey
	Amount      uint64
	RecordedS   int64
}

// ArbitrageOpportunity is an emitted cross-venue price divergence.
type ArbitrageOpportunity struct {
	Pair         TokenPair
	BuyVenue     Protocol
	SellVenue    Protocol
	BuyPrice     float64
	SellPrice    float64
	GrossPct     float64
	NetPct       float64
	BuyQuote     PriceQuote
	SellQuote    PriceQuote
	TotalFeePct  float64
	EstGasBps    float64
	RecordedS    int64
}

// IsProfitableAfterFees reports whether the opportunity clears fees and gas.
func (o *ArbitrageOpportunity) IsProfitableAfterFees() bool {
	return o.NetPct > 0
}

// Profit returns the gross profit for a given input amount, ignoring fees.
func (o *ArbitrageOpportunity) Profit(input float64) float64 {
	return input*(o.SellPrice/o.BuyPrice) - input
}
