package arbitrage

import "github.com/rawblock/dex-arb-engine/pkg/models"

// feeCorrelator keeps a short-lived map from transaction fingerprint to the
// fee observations seen for that transaction. It is embedded in
// Detector and shares its lock rather than taking one of its own.
type feeCorrelator struct {
	byFingerprint map[models.Signature][]models.FeeObservation
	maxAgeS       int64
}

func newFeeCorrelator(maxAgeS int64) *feeCorrelator {
	return &feeCorrelator{
		byFingerprint: make(map[models.Signature][]models.FeeObservation),
		maxAgeS:       maxAgeS,
	}
}

// record appends a fee observation, then evicts any fingerprint whose
// newest observation is older than maxAgeS relative to this one.
func (f *feeCorrelator) record(obs models.FeeObservation) {
	f.byFingerprint[obs.Fingerprint] = append(f.byFingerprint[obs.Fingerprint], obs)

	for fp, obs2 := range f.byFingerprint {
		newest := obs2[len(obs2)-1].RecordedS
		if obs.RecordedS-newest > f.maxAgeS {
			delete(f.byFingerprint, fp)
		}
	}
}

// totalFor sums the fee amounts recorded for (fingerprint, mint), returning
// ok=false if there is no matching observation.
func (f *feeCorrelator) totalFor(fingerprint models.Signature, mint models.PubKey, nowS int64) (uint64, bool) {
	obs, found := f.byFingerprint[fingerprint]
	if !found {
		return 0, false
	}
	var sum uint64
	var any bool
	for _, o := range obs {
		if o.Mint != mint {
			continue
		}
		if nowS-o.RecordedS > f.maxAgeS {
			continue
		}
		sum += o.Amount
		any = true
	}
	if !any {
		return 0, false
	}
	return sum, true
}
