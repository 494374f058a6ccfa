// Package audio provides the sample buffer type and the file codecs used to
// load recordings and save noise profiles.
package audio

import (
	"errors"
	"time"
)

// Sentinel errors for audio I/O. Callers match them with errors.Is.
var (
	// ErrNotFound is returned when the source file does not exist.
	ErrNotFound = errors.New("audio file not found")

	// ErrDecode is returned when the source cannot be read or decoded.
	ErrDecode = errors.New("audio decode failed")

	// ErrWrite is returned when the destination cannot be written.
	ErrWrite = errors.New("audio write failed")
)

// Buffer is a mono sequence of float64 samples in [-1, 1) at a fixed rate.
// A Buffer is treated as read-only once loaded.
type Buffer struct {
	Samples    []float64
	SampleRate int
}

// Len returns the number of samples
func (b *Buffer) Len() int {
	return len(b.Samples)
}

// Duration returns the buffer length as a time.Duration
func (b *Buffer) Duration() time.Duration {
	if b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(b.Samples)) / float64(b.SampleRate) * float64(time.Second))
}

// Seconds returns the buffer length in seconds
func (b *Buffer) Seconds() float64 {
	if b.SampleRate <= 0 {
		return 0
	}
	return float64(len(b.Samples)) / float64(b.SampleRate)
}

// Metadata describes the source file before downmix and resampling
type Metadata struct {
	Format     string  // "wav", "flac" or "mp3"
	SourceRate int     // Sample rate of the file (Hz)
	Channels   int     // Channel count of the file
	BitDepth   int     // Bits per sample of the file
	Duration   float64 // seconds
}
