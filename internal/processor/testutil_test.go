package processor

import (
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// generateSine returns n samples of a sine wave
func generateSine(freq, amplitude float64, sampleRate, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return out
}

// generateNoise returns n samples of uniform white noise in [-amplitude, amplitude)
func generateNoise(amplitude float64, n int, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	for i := range out {
		out[i] = amplitude * (2*rng.Float64() - 1)
	}
	return out
}

// testGeometry builds a geometry for a small configuration without going
// through Config, so tests can use short power-of-two frames.
func testGeometry(sampleRate, frameSize, hopSize, bufferLen int) FrameGeometry {
	return FrameGeometry{
		SampleRate: sampleRate,
		FrameSize:  frameSize,
		HopSize:    hopSize,
		FrameCount: 1 + (bufferLen-frameSize+hopSize-1)/hopSize,
		BufferLen:  bufferLen,
	}
}

// writeMonoWAV writes float samples as a 16-bit mono WAV in a per-test temp
// directory and returns its path.
func writeMonoWAV(t *testing.T, samples []float64, sampleRate int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "input.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	defer f.Close()

	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(math.Round(math.Max(-1, math.Min(1, s)) * 32767))
	}

	encoder := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := encoder.Write(buf); err != nil {
		t.Fatalf("failed to write test WAV: %v", err)
	}
	if err := encoder.Close(); err != nil {
		t.Fatalf("failed to close test WAV encoder: %v", err)
	}

	return path
}
