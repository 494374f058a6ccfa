package processor

import (
	"gonum.org/v1/gonum/dsp/fourier"
)

// FrameAnalyzer computes the short-time spectrum of individual frames.
//
// A rectangular window is used: the transform is applied to the raw samples
// of [Start(i), Start(i)+FrameSize), with positions past the end of the buffer
// read as zero. An analyzer holds scratch buffers and a gonum FFT plan, so it
// must not be shared between goroutines; create one per worker.
type FrameAnalyzer struct {
	geometry FrameGeometry
	fft      *fourier.FFT
	frame    []float64
	coeffs   []complex128
}

// NewFrameAnalyzer prepares an FFT plan for the geometry's frame size
func NewFrameAnalyzer(g FrameGeometry) *FrameAnalyzer {
	return &FrameAnalyzer{
		geometry: g,
		fft:      fourier.NewFFT(g.FrameSize),
		frame:    make([]float64, g.FrameSize),
		coeffs:   make([]complex128, g.BinCount()),
	}
}

// Spectrum returns the BinCount() complex coefficients of frame i.
// The returned slice is reused by the next call.
func (a *FrameAnalyzer) Spectrum(samples []float64, i int) []complex128 {
	start, end := a.geometry.Span(i)
	n := copy(a.frame, samples[start:end])

	// Zero only the part of the window outside the buffer
	for j := n; j < len(a.frame); j++ {
		a.frame[j] = 0
	}

	return a.fft.Coefficients(a.coeffs, a.frame)
}
