package audio

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// SupportedBitDepths lists the PCM bit depths WriteWAV can produce
var SupportedBitDepths = []int{16, 24, 32}

// WriteWAV saves buf as a mono PCM WAV file at buf.SampleRate.
//
// The file is written to a temporary sibling of path and renamed into place
// only after the encoder has finished, so a failed write never leaves a
// partial file at path. A replaced file keeps its permissions; a new one is
// created 0644. Errors wrap ErrWrite.
func WriteWAV(path string, buf *Buffer, bitDepth int) (err error) {
	if !isSupportedBitDepth(bitDepth) {
		return fmt.Errorf("%w: unsupported bit depth %d", ErrWrite, bitDepth)
	}
	if buf == nil || buf.SampleRate <= 0 {
		return fmt.Errorf("%w: invalid buffer", ErrWrite)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: failed to create temporary file: %v", ErrWrite, err)
	}
	tmpPath := tmp.Name()

	// Remove the temp file on any failure path
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	encoder := wav.NewEncoder(tmp, buf.SampleRate, bitDepth, 1, wavFormatPCM)

	intBuf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: 1,
			SampleRate:  buf.SampleRate,
		},
		Data:           quantise(buf.Samples, bitDepth),
		SourceBitDepth: bitDepth,
	}

	if err = encoder.Write(intBuf); err != nil {
		return fmt.Errorf("%w: failed to write audio: %v", ErrWrite, err)
	}
	if err = encoder.Close(); err != nil {
		return fmt.Errorf("%w: failed to close encoder: %v", ErrWrite, err)
	}
	if err = tmp.Chmod(outputMode(path)); err != nil {
		return fmt.Errorf("%w: failed to set permissions: %v", ErrWrite, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("%w: failed to sync: %v", ErrWrite, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("%w: failed to close file: %v", ErrWrite, err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("%w: failed to move output into place: %v", ErrWrite, err)
	}

	return nil
}

// outputMode keeps the permissions of a file being replaced. New files are
// 0644; os.CreateTemp would otherwise leave them owner-only.
func outputMode(path string) os.FileMode {
	if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
		return info.Mode().Perm()
	}
	return 0o644
}

// quantise converts float samples to integers at bitDepth.
// Values are clamped to [-1, 1] and rounded half away from zero.
func quantise(samples []float64, bitDepth int) []int {
	maxVal := float64(int64(1)<<(bitDepth-1)) - 1
	out := make([]int, len(samples))

	for i, s := range samples {
		if s > 1.0 {
			s = 1.0
		} else if s < -1.0 {
			s = -1.0
		}
		out[i] = int(math.Round(s * maxVal))
	}

	return out
}

func isSupportedBitDepth(bitDepth int) bool {
	for _, d := range SupportedBitDepths {
		if d == bitDepth {
			return true
		}
	}
	return false
}
