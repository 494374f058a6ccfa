package processor

import (
	"context"
	"math"
	"math/cmplx"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// LoudnessFloorEpsilon is added to the normalised weighted power before
// conversion to dB so silent frames score a finite 10·log10(ε) (≈ -69.2 dB).
// It is the float32 machine epsilon.
const LoudnessFloorEpsilon = 1.1920929e-07

// LoudnessFloorDB is the score of a frame of digital silence
var LoudnessFloorDB = 10 * math.Log10(LoudnessFloorEpsilon)

// LoudnessProfile holds one A-weighted loudness value (dB) per frame,
// indexed identically to the frames.
type LoudnessProfile []float64

// FrameLoudness scores one frame from its spectrum:
// 10·log10(Σ(|X[k]|·w[k])² / frameSize + ε).
// Bins are accumulated in ascending index order.
func FrameLoudness(spectrum []complex128, curve WeightingCurve, frameSize int) float64 {
	var power float64
	for k, c := range spectrum {
		weighted := cmplx.Abs(c) * curve[k]
		power += weighted * weighted
	}
	return 10 * math.Log10(power/float64(frameSize)+LoudnessFloorEpsilon)
}

// ComputeLoudnessProfile scores every frame of samples.
//
// Frames are split into contiguous index blocks, one per worker, and each
// worker writes only its own entries of the result, so the profile is
// identical for any worker count. workers <= 0 uses GOMAXPROCS.
//
// onFrame, when non-nil, is called after each frame with the number of frames
// completed so far. It is called from worker goroutines and must be safe for
// concurrent use.
func ComputeLoudnessProfile(ctx context.Context, samples []float64, g FrameGeometry, curve WeightingCurve, workers int, onFrame func(done int)) (LoudnessProfile, error) {
	if g.FrameCount == 0 {
		return LoudnessProfile{}, nil
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > g.FrameCount {
		workers = g.FrameCount
	}

	profile := make(LoudnessProfile, g.FrameCount)
	blockSize := (g.FrameCount + workers - 1) / workers
	var done atomic.Int64

	eg, egCtx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		first := w * blockSize
		last := min(first+blockSize, g.FrameCount)
		if first >= last {
			break
		}

		eg.Go(func() error {
			analyzer := NewFrameAnalyzer(g)
			for i := first; i < last; i++ {
				if err := egCtx.Err(); err != nil {
					return err
				}
				profile[i] = FrameLoudness(analyzer.Spectrum(samples, i), curve, g.FrameSize)
				if onFrame != nil {
					onFrame(int(done.Add(1)))
				}
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return profile, nil
}
