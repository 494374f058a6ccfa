package audio

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"slices"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
	"github.com/mewkiz/flac/meta"
)

// writeTestWAV writes interleaved integer samples as a PCM WAV file in a
// per-test temp directory and returns its path.
func writeTestWAV(t *testing.T, name string, data []int, sampleRate, channels, bitDepth int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	defer f.Close()

	encoder := wav.NewEncoder(f, sampleRate, bitDepth, channels, 1)
	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: channels,
			SampleRate:  sampleRate,
		},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
	if err := encoder.Write(buf); err != nil {
		t.Fatalf("failed to write test WAV: %v", err)
	}
	if err := encoder.Close(); err != nil {
		t.Fatalf("failed to close test WAV encoder: %v", err)
	}

	return path
}

// wavHeader describes a hand-built WAV file. A non-zero subformat writes a
// 40-byte WAVE_FORMAT_EXTENSIBLE fmt chunk carrying that code in its GUID.
type wavHeader struct {
	formatTag  uint16
	subformat  uint16
	channels   int
	sampleRate int
	bitDepth   int
}

// buildWAV assembles a RIFF/WAVE file around raw sample bytes
func buildWAV(h wavHeader, data []byte) []byte {
	blockAlign := h.channels * h.bitDepth / 8

	var fmtChunk bytes.Buffer
	le := func(v any) { _ = binary.Write(&fmtChunk, binary.LittleEndian, v) }
	le(h.formatTag)
	le(uint16(h.channels))
	le(uint32(h.sampleRate))
	le(uint32(h.sampleRate * blockAlign))
	le(uint16(blockAlign))
	le(uint16(h.bitDepth))
	if h.formatTag == wavFormatExtensible {
		le(uint16(22))         // cbSize
		le(uint16(h.bitDepth)) // valid bits per sample
		le(uint32(0))          // channel mask
		le(h.subformat)        // GUID data1, low half
		fmtChunk.Write(wavGUIDSuffix)
	}

	var out bytes.Buffer
	w := func(v any) { _ = binary.Write(&out, binary.LittleEndian, v) }
	out.WriteString("RIFF")
	w(uint32(4 + 8 + fmtChunk.Len() + 8 + len(data)))
	out.WriteString("WAVE")
	out.WriteString("fmt ")
	w(uint32(fmtChunk.Len()))
	out.Write(fmtChunk.Bytes())
	out.WriteString("data")
	w(uint32(len(data)))
	out.Write(data)
	return out.Bytes()
}

// float32Bytes encodes samples as little-endian IEEE float
func float32Bytes(samples []float64) []byte {
	out := make([]byte, 4*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(float32(s)))
	}
	return out
}

// int16Bytes encodes samples as little-endian 16-bit PCM
func int16Bytes(samples []int16) []byte {
	out := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[2*i:], uint16(s))
	}
	return out
}

func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// writeTestFLAC encodes per-channel samples as a FLAC stream in blocks of
// blockSize, so multi-frame streams are exercised.
func writeTestFLAC(t *testing.T, name string, channels [][]int32, sampleRate, bitDepth, blockSize int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	n := len(channels[0])
	info := &meta.StreamInfo{
		BlockSizeMin:  uint16(blockSize),
		BlockSizeMax:  uint16(blockSize),
		SampleRate:    uint32(sampleRate),
		NChannels:     uint8(len(channels)),
		BitsPerSample: uint8(bitDepth),
		NSamples:      uint64(n),
	}
	enc, err := flac.NewEncoder(f, info)
	if err != nil {
		f.Close()
		t.Fatalf("failed to create FLAC encoder: %v", err)
	}

	layout := frame.ChannelsMono
	if len(channels) == 2 {
		layout = frame.ChannelsLR
	}

	for offset := 0; offset < n; offset += blockSize {
		size := min(blockSize, n-offset)
		fr := &frame.Frame{
			Header: frame.Header{
				HasFixedBlockSize: true,
				BlockSize:         uint16(size),
				SampleRate:        uint32(sampleRate),
				Channels:          layout,
				BitsPerSample:     uint8(bitDepth),
			},
			Subframes: make([]*frame.Subframe, len(channels)),
		}
		for ch, samples := range channels {
			fr.Subframes[ch] = &frame.Subframe{
				SubHeader: frame.SubHeader{Pred: frame.PredVerbatim},
				Samples:   slices.Clone(samples[offset : offset+size]),
				NSamples:  size,
			}
		}
		if err := enc.WriteFrame(fr); err != nil {
			t.Fatalf("failed to write FLAC frame: %v", err)
		}
	}

	// Close also closes f
	if err := enc.Close(); err != nil {
		t.Fatalf("failed to close FLAC encoder: %v", err)
	}
	return path
}
