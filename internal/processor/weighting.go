package processor

import "math"

// A-weighting pole frequencies (Hz), IEC 61672-1
const (
	aWeightPole1 = 20.598997
	aWeightPole2 = 107.65265
	aWeightPole3 = 737.86223
	aWeightPole4 = 12194.217
)

const (
	// ReferenceFrequency is the frequency at which the weighting is 0 dB
	ReferenceFrequency = 1000.0

	// MinWeightingDB clips the curve at very low frequencies, where the
	// A-weighting tends to -∞ dB (DC is exactly -∞).
	MinWeightingDB = -80.0
)

// aWeightingOffset normalises the curve to exactly 0 dB at ReferenceFrequency
var aWeightingOffset = -aWeightingRaw(ReferenceFrequency)

// aWeightingRaw evaluates 20·log10(R_A(f)) in the log domain, where
// R_A(f) = p4²·f⁴ / ((f²+p1²)·√((f²+p2²)(f²+p3²))·(f²+p4²)).
// Returns -Inf for f = 0.
func aWeightingRaw(f float64) float64 {
	fSq := f * f
	return 20.0 * (math.Log10(aWeightPole4*aWeightPole4) +
		2*math.Log10(fSq) -
		math.Log10(fSq+aWeightPole4*aWeightPole4) -
		math.Log10(fSq+aWeightPole1*aWeightPole1) -
		0.5*math.Log10(fSq+aWeightPole2*aWeightPole2) -
		0.5*math.Log10(fSq+aWeightPole3*aWeightPole3))
}

// AWeightingDB returns the A-weighting gain in dB at frequency f,
// normalised to 0 dB at 1 kHz and clipped below at MinWeightingDB.
func AWeightingDB(f float64) float64 {
	return math.Max(MinWeightingDB, aWeightingRaw(f)+aWeightingOffset)
}

// WeightingCurve maps FFT bin index to linear amplitude gain.
// Gains are positive and indexed by ascending frequency.
type WeightingCurve []float64

// NewWeightingCurve computes the A-weighting gain for each of the
// frameSize/2+1 bins of a frameSize-point transform at sampleRate.
// Bin k is centred on k·sampleRate/frameSize Hz.
func NewWeightingCurve(sampleRate, frameSize int) WeightingCurve {
	bins := frameSize/2 + 1
	curve := make(WeightingCurve, bins)
	for k := range curve {
		f := float64(k) * float64(sampleRate) / float64(frameSize)
		curve[k] = dbToAmplitude(AWeightingDB(f))
	}
	return curve
}

// dbToAmplitude converts a dB gain to a linear amplitude factor
func dbToAmplitude(db float64) float64 {
	return math.Pow(10, db/20.0)
}
