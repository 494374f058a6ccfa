package processor

import "fmt"

// FrameGeometry fixes the frame boundaries shared by spectral analysis and
// sample extraction. Frame i always covers [i·HopSize, i·HopSize+FrameSize);
// no centering or edge padding is applied, so the spectrum of frame i and the
// samples later extracted for frame i come from the same interval.
type FrameGeometry struct {
	SampleRate int
	FrameSize  int // Samples per analysis window
	HopSize    int // Samples between consecutive window starts
	FrameCount int // Windows covering the buffer
	BufferLen  int // Samples in the analysed buffer
}

// NewFrameGeometry derives the frame layout for a buffer of bufferLen samples.
//
// The first frame starts at sample 0 and frames are added until the buffer is
// fully covered: FrameCount = 1 + ceil((bufferLen − FrameSize) / HopSize).
// Only the last frame can run past the end of the buffer, by fewer than
// HopSize samples; that tail is treated as zeros.
//
// Returns a *ConfigError when the configuration is invalid or the buffer is
// shorter than one frame.
func NewFrameGeometry(cfg *Config, bufferLen int) (FrameGeometry, error) {
	if err := cfg.Validate(); err != nil {
		return FrameGeometry{}, err
	}

	frameSize := cfg.FrameSize()
	hopSize := cfg.HopSize()

	if bufferLen < frameSize {
		return FrameGeometry{}, &ConfigError{
			Field:  "block_duration_ms",
			Reason: fmt.Sprintf("frame of %d samples is longer than the %d-sample recording", frameSize, bufferLen),
		}
	}

	return FrameGeometry{
		SampleRate: cfg.TargetSampleRate,
		FrameSize:  frameSize,
		HopSize:    hopSize,
		FrameCount: 1 + (bufferLen-frameSize+hopSize-1)/hopSize,
		BufferLen:  bufferLen,
	}, nil
}

// Start returns the first sample index of frame i
func (g FrameGeometry) Start(i int) int {
	return i * g.HopSize
}

// Span returns the in-buffer part of frame i as [start, end).
// end−start is less than FrameSize only for a frame that runs past the buffer.
func (g FrameGeometry) Span(i int) (start, end int) {
	start = g.Start(i)
	end = start + g.FrameSize
	if end > g.BufferLen {
		end = g.BufferLen
	}
	return start, end
}

// BinCount returns the number of non-negative frequency bins per frame
func (g FrameGeometry) BinCount() int {
	return g.FrameSize/2 + 1
}

// BinFrequency returns the centre frequency of bin k in Hz
func (g FrameGeometry) BinFrequency(k int) float64 {
	return float64(k) * float64(g.SampleRate) / float64(g.FrameSize)
}

// FrameSeconds returns the duration of one frame in seconds
func (g FrameGeometry) FrameSeconds() float64 {
	return float64(g.FrameSize) / float64(g.SampleRate)
}

// StartSeconds returns the time at which frame i begins
func (g FrameGeometry) StartSeconds(i int) float64 {
	return float64(g.Start(i)) / float64(g.SampleRate)
}
