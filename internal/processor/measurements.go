package processor

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	// SilenceFloorDBFS is reported for the level of a digitally silent profile
	SilenceFloorDBFS = -120.0

	// humBandHz is the half-width of the band around each mains harmonic
	// whose median power is the local noise reference
	humBandHz = 25.0

	// humGuardBins around the harmonic are excluded from the reference band
	humGuardBins = 2

	// powerFloor keeps log ratios finite on empty bins
	powerFloor = 1e-20
)

// ProfileMeasurements describes the assembled noise profile
type ProfileMeasurements struct {
	// Sample levels of the output buffer
	RMSLevel  float64 // dBFS, floored at SilenceFloorDBFS
	PeakLevel float64 // dBFS, floored at SilenceFloorDBFS

	// Spectrum is the mean power per bin across all segments
	Spectrum []float64
	BinWidth float64 // Hz between bins

	SpectralCentroid float64 // Hz, power-weighted mean frequency (0 when silent)
	SpectralFlatness float64 // Geometric/arithmetic mean of power, 0..1 (0 when silent)

	// A-weighted loudness of the selected frames (dB)
	LoudnessMin    float64
	LoudnessMedian float64
	LoudnessMax    float64
}

// MeasureProfile characterises an assembled profile. segments must hold
// whole frames of g.FrameSize samples, as produced by AssembleSegments;
// profile and sel supply the loudness of the frames that were selected.
func MeasureProfile(segments []float64, g FrameGeometry, profile LoudnessProfile, sel Selection) *ProfileMeasurements {
	m := &ProfileMeasurements{
		RMSLevel:  SilenceFloorDBFS,
		PeakLevel: SilenceFloorDBFS,
		BinWidth:  g.BinFrequency(1),
	}

	if len(segments) > 0 {
		m.RMSLevel = amplitudeToDBFS(math.Sqrt(floats.Dot(segments, segments) / float64(len(segments))))
		m.PeakLevel = amplitudeToDBFS(math.Max(floats.Max(segments), -floats.Min(segments)))
		m.Spectrum = meanPowerSpectrum(segments, g)
		m.SpectralCentroid, m.SpectralFlatness = spectralShape(m.Spectrum, m.BinWidth)
	}

	if len(sel) > 0 {
		levels := make([]float64, len(sel))
		for i, idx := range sel {
			levels[i] = profile[idx]
		}
		sort.Float64s(levels)
		m.LoudnessMin = levels[0]
		m.LoudnessMax = levels[len(levels)-1]
		m.LoudnessMedian = stat.Quantile(0.5, stat.Empirical, levels, nil)
	}

	return m
}

// meanPowerSpectrum averages |X|²/N over consecutive frames of segments
func meanPowerSpectrum(segments []float64, g FrameGeometry) []float64 {
	tiled := FrameGeometry{
		SampleRate: g.SampleRate,
		FrameSize:  g.FrameSize,
		HopSize:    g.FrameSize,
		FrameCount: len(segments) / g.FrameSize,
		BufferLen:  len(segments),
	}

	power := make([]float64, tiled.BinCount())
	if tiled.FrameCount == 0 {
		return power
	}

	analyzer := NewFrameAnalyzer(tiled)
	for i := 0; i < tiled.FrameCount; i++ {
		for k, c := range analyzer.Spectrum(segments, i) {
			mag := real(c)*real(c) + imag(c)*imag(c)
			power[k] += mag / float64(g.FrameSize)
		}
	}
	floats.Scale(1/float64(tiled.FrameCount), power)

	return power
}

// spectralShape returns the centroid (Hz) and flatness of a power spectrum.
// DC is excluded from flatness.
func spectralShape(power []float64, binWidth float64) (centroid, flatness float64) {
	total := floats.Sum(power)
	if total <= 0 || len(power) < 2 {
		return 0, 0
	}

	freqs := make([]float64, len(power))
	for k := range freqs {
		freqs[k] = float64(k) * binWidth
	}
	centroid = stat.Mean(freqs, power)

	ac := power[1:]
	logs := make([]float64, len(ac))
	for i, p := range ac {
		logs[i] = math.Log(p + powerFloor)
	}
	flatness = math.Exp(stat.Mean(logs, nil)) / (stat.Mean(ac, nil) + powerFloor)

	return centroid, math.Min(flatness, 1)
}

// HumLevel returns how far (dB) the strongest of the given mains harmonic
// frequencies rises above the median power of the ±25 Hz around it. Each
// harmonic is read from the loudest of its three nearest bins. Frequencies
// outside the spectrum are skipped.
//
// Returns NaN when the profile is silent or no frequency can be measured.
func (m *ProfileMeasurements) HumLevel(freqs []float64) float64 {
	if len(m.Spectrum) == 0 || m.BinWidth <= 0 || floats.Sum(m.Spectrum) <= 0 {
		return math.NaN()
	}

	bandBins := int(math.Round(humBandHz / m.BinWidth))
	last := len(m.Spectrum) - 1
	hum := math.NaN()

	for _, f := range freqs {
		k := int(math.Round(f / m.BinWidth))
		if k < 1 || k >= last {
			continue
		}

		peak := floats.Max(m.Spectrum[k-1 : k+2])

		var band []float64
		for j := max(1, k-bandBins); j <= min(last, k+bandBins); j++ {
			if j < k-humGuardBins || j > k+humGuardBins {
				band = append(band, m.Spectrum[j])
			}
		}
		if len(band) == 0 {
			continue
		}
		sort.Float64s(band)
		ref := stat.Quantile(0.5, stat.Empirical, band, nil)

		level := 10 * math.Log10((peak+powerFloor)/(ref+powerFloor))
		if math.IsNaN(hum) || level > hum {
			hum = level
		}
	}

	return hum
}

// amplitudeToDBFS converts a linear amplitude to dBFS, floored for silence
func amplitudeToDBFS(a float64) float64 {
	if a <= 0 {
		return SilenceFloorDBFS
	}
	return math.Max(SilenceFloorDBFS, 20*math.Log10(a))
}
