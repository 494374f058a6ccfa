package logging

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/linuxmatters/noisegrab/internal/audio"
	"github.com/linuxmatters/noisegrab/internal/processor"
)

// newTestResult builds a result by hand: frames frames of which the first
// selected are quiet. Spectral fields of m are used as given.
func newTestResult(selected, frames int, m *processor.ProfileMeasurements) *processor.Result {
	cfg := processor.DefaultConfig()
	g := processor.FrameGeometry{
		SampleRate: cfg.TargetSampleRate,
		FrameSize:  cfg.FrameSize(),
		HopSize:    cfg.HopSize(),
		FrameCount: frames,
		BufferLen:  cfg.FrameSize() + (frames-1)*cfg.HopSize(),
	}

	profile := make(processor.LoudnessProfile, frames)
	sel := make(processor.Selection, selected)
	for i := range profile {
		profile[i] = 5
		if i < selected {
			profile[i] = -40 + float64(i)
			sel[i] = i
		}
	}

	return &processor.Result{
		InputPath:  "/rec/interview.wav",
		OutputPath: "/rec/interview-noise.wav",
		Config:     *cfg,
		Source: &audio.Metadata{
			Format: "wav", SourceRate: 48000, Channels: 2, BitDepth: 24,
			Duration: float64(g.BufferLen) / 48000,
		},
		Analysis:     &processor.Analysis{Geometry: g, Profile: profile, Selection: sel},
		Output:       &audio.Buffer{Samples: make([]float64, selected*g.FrameSize), SampleRate: g.SampleRate},
		Measurements: m,
		Timings: []processor.StageTiming{
			{Stage: processor.StageLoading, Elapsed: 120 * time.Millisecond},
			{Stage: processor.StageAnalysing, Elapsed: 800 * time.Millisecond},
		},
	}
}

// quietRoom is a plausible broadband noise profile
func quietRoom() *processor.ProfileMeasurements {
	return &processor.ProfileMeasurements{
		RMSLevel:         -62,
		PeakLevel:        -48,
		BinWidth:         2.5,
		SpectralCentroid: 1800,
		SpectralFlatness: 0.45,
		LoudnessMin:      -40,
		LoudnessMedian:   -35,
		LoudnessMax:      -31,
	}
}

// analyseSignal runs frame analysis and assembly on samples at 48 kHz the
// way Extractor.Run does, without touching the filesystem.
func analyseSignal(t *testing.T, samples []float64) *processor.Result {
	t.Helper()

	cfg := processor.DefaultConfig()
	buf := &audio.Buffer{Samples: samples, SampleRate: cfg.TargetSampleRate}
	a, err := processor.NewExtractor(cfg, nil).Analyze(context.Background(), buf, nil)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	out := processor.AssembleSegments(samples, a.Geometry, a.Selection)
	return &processor.Result{
		InputPath:    "/rec/interview.wav",
		OutputPath:   "/rec/interview-noise.wav",
		Config:       *cfg,
		Analysis:     a,
		Output:       &audio.Buffer{Samples: out, SampleRate: buf.SampleRate},
		Measurements: processor.MeasureProfile(out, a.Geometry, a.Profile, a.Selection),
	}
}

// sineWithNoise returns a sine of the given amplitude over deterministic
// low-level noise
func sineWithNoise(freq, amplitude, noise float64, n int) []float64 {
	out := make([]float64, n)
	seed := uint32(12345)
	for i := range out {
		seed = seed*1664525 + 1013904223
		r := float64(seed)/float64(math.MaxUint32)*2 - 1
		out[i] = amplitude*math.Sin(2*math.Pi*freq*float64(i)/48000) + noise*r
	}
	return out
}
