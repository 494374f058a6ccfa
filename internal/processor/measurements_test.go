package processor

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"
)

func TestMeasureProfileSilence(t *testing.T) {
	g := testGeometry(8000, 3200, 800, 3200*4)
	m := MeasureProfile(make([]float64, 3200*4), g, LoudnessProfile{LoudnessFloorDB}, Selection{0})

	if m.RMSLevel != SilenceFloorDBFS || m.PeakLevel != SilenceFloorDBFS {
		t.Errorf("levels = %v / %v dBFS, want %v", m.RMSLevel, m.PeakLevel, SilenceFloorDBFS)
	}
	if m.SpectralCentroid != 0 || m.SpectralFlatness != 0 {
		t.Errorf("centroid/flatness = %v / %v, want 0 / 0", m.SpectralCentroid, m.SpectralFlatness)
	}
	if !math.IsNaN(m.HumLevel([]float64{50, 100})) {
		t.Error("HumLevel of silence should be NaN")
	}
	if m.LoudnessMin != LoudnessFloorDB || m.LoudnessMax != LoudnessFloorDB {
		t.Errorf("loudness range = [%v, %v], want floor", m.LoudnessMin, m.LoudnessMax)
	}
}

func TestMeasureProfileTone(t *testing.T) {
	g := testGeometry(48000, 19200, 4800, 19200*2)
	segments := generateSine(1000, 0.5, 48000, 19200*2)
	m := MeasureProfile(segments, g, nil, nil)

	if math.Abs(m.PeakLevel-20*math.Log10(0.5)) > 0.01 {
		t.Errorf("PeakLevel = %.3f dBFS, want -6.02", m.PeakLevel)
	}
	if math.Abs(m.RMSLevel-20*math.Log10(0.5/math.Sqrt2)) > 0.01 {
		t.Errorf("RMSLevel = %.3f dBFS, want -9.03", m.RMSLevel)
	}
	if len(m.Spectrum) != g.BinCount() {
		t.Fatalf("len(Spectrum) = %d, want %d", len(m.Spectrum), g.BinCount())
	}
	if math.Abs(m.SpectralCentroid-1000) > 1 {
		t.Errorf("SpectralCentroid = %.1f Hz, want 1000", m.SpectralCentroid)
	}
	if m.SpectralFlatness > 0.01 {
		t.Errorf("SpectralFlatness = %v, want near 0 for a pure tone", m.SpectralFlatness)
	}
	if floats.MaxIdx(m.Spectrum) != 400 {
		t.Errorf("spectral peak at bin %d, want 400", floats.MaxIdx(m.Spectrum))
	}
}

func TestMeasureProfileNoiseFlatness(t *testing.T) {
	g := testGeometry(8000, 1024, 256, 1024*16)
	m := MeasureProfile(generateNoise(0.1, 1024*16, 5), g, nil, nil)

	// Averaged white noise is close to flat
	if m.SpectralFlatness < 0.5 {
		t.Errorf("SpectralFlatness = %.3f, want > 0.5 for white noise", m.SpectralFlatness)
	}
	if math.Abs(m.SpectralCentroid-2000) > 200 {
		t.Errorf("SpectralCentroid = %.0f Hz, want ≈ 2000 (Nyquist/2)", m.SpectralCentroid)
	}
}

func TestMeasureProfileLoudnessStats(t *testing.T) {
	profile := LoudnessProfile{-30, -5, -50, -20, -40}
	sel := SelectSilentFrames(profile, SilenceCutoffDB)
	g := testGeometry(8000, 4, 2, 12)

	m := MeasureProfile(make([]float64, len(sel)*4), g, profile, sel)
	if m.LoudnessMin != -50 || m.LoudnessMax != -20 {
		t.Errorf("loudness range = [%v, %v], want [-50, -20]", m.LoudnessMin, m.LoudnessMax)
	}
	// Empirical quantile of {-50, -40, -30, -20} at 0.5 is the second value
	if m.LoudnessMedian != -40 {
		t.Errorf("LoudnessMedian = %v, want -40", m.LoudnessMedian)
	}
}

func TestHumLevel(t *testing.T) {
	const (
		rate      = 8000
		frameSize = 3200 // 2.5 Hz bins; 50 Hz and 60 Hz land on exact bins
		segments  = 16
	)
	g := testGeometry(rate, frameSize, frameSize, frameSize*segments)
	noise := generateNoise(0.01, frameSize*segments, 11)

	t.Run("noise only", func(t *testing.T) {
		m := MeasureProfile(noise, g, nil, nil)
		if hum := m.HumLevel([]float64{50, 100, 150}); hum > 6 {
			t.Errorf("HumLevel = %.1f dB, want < 6 dB for white noise", hum)
		}
	})

	t.Run("50 Hz hum", func(t *testing.T) {
		hummed := make([]float64, len(noise))
		floats.AddTo(hummed, noise, generateSine(50, 0.1, rate, len(noise)))

		m := MeasureProfile(hummed, g, nil, nil)
		if hum := m.HumLevel([]float64{50, 100, 150}); hum < 20 {
			t.Errorf("HumLevel = %.1f dB, want > 20 dB", hum)
		}
	})

	t.Run("out of range", func(t *testing.T) {
		m := MeasureProfile(noise, g, nil, nil)
		if hum := m.HumLevel([]float64{0, 5000}); !math.IsNaN(hum) {
			t.Errorf("HumLevel = %v, want NaN when no frequency is measurable", hum)
		}
	})
}
