package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/riff"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/mewkiz/flac"
)

// WAV format codes. WAVE_FORMAT_EXTENSIBLE is resolved to the code carried
// in its subformat GUID before decoding.
const (
	wavFormatPCM        = 1
	wavFormatIEEEFloat  = 3
	wavFormatExtensible = 0xFFFE
)

// wavGUIDSuffix is the tail shared by every KSDATAFORMAT_SUBTYPE GUID; the
// first two bytes hold the plain format code.
var wavGUIDSuffix = []byte{0x00, 0x00, 0x00, 0x00, 0x10, 0x00, 0x80, 0x00, 0x00, 0xAA, 0x00, 0x38, 0x9B, 0x71}

// mp3 output from go-mp3 is always 16-bit little-endian stereo
const (
	mp3Channels = 2
	mp3BitDepth = 16
)

// decodedStream holds interleaved samples straight from a codec, scaled to
// [-1, 1)
type decodedStream struct {
	samples  []float64
	rate     int
	channels int
	bitDepth int
}

// Load decodes an audio file, downmixes it to mono and resamples it to
// targetRate. The file handle is released before Load returns.
//
// Returns an error wrapping ErrNotFound when the path does not exist and
// ErrDecode for anything that cannot be read as supported audio.
func Load(path string, targetRate int) (*Buffer, *Metadata, error) {
	if targetRate <= 0 {
		return nil, nil, fmt.Errorf("%w: invalid target sample rate %d", ErrDecode, targetRate)
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrDecode, path, err)
	}
	if info.IsDir() {
		return nil, nil, fmt.Errorf("%w: %s is a directory", ErrDecode, path)
	}

	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")

	var stream *decodedStream
	switch format {
	case "wav", "wave":
		format = "wav"
		stream, err = decodeWAV(path)
	case "flac":
		stream, err = decodeFLAC(path)
	case "mp3":
		stream, err = decodeMP3(path)
	default:
		return nil, nil, fmt.Errorf("%w: unsupported file type %q (want .wav, .flac or .mp3)", ErrDecode, filepath.Ext(path))
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrDecode, path, err)
	}

	if stream.channels <= 0 || stream.rate <= 0 || len(stream.samples) < stream.channels {
		return nil, nil, fmt.Errorf("%w: %s: no audio samples", ErrDecode, path)
	}

	mono := downmix(stream.samples, stream.channels)

	metadata := &Metadata{
		Format:     format,
		SourceRate: stream.rate,
		Channels:   stream.channels,
		BitDepth:   stream.bitDepth,
		Duration:   float64(len(mono)) / float64(stream.rate),
	}

	return &Buffer{
		Samples:    Resample(mono, stream.rate, targetRate),
		SampleRate: targetRate,
	}, metadata, nil
}

// downmix averages interleaved channels into a single channel
func downmix(samples []float64, channels int) []float64 {
	frames := len(samples) / channels
	mono := make([]float64, frames)

	for i := 0; i < frames; i++ {
		var sum float64
		for ch := 0; ch < channels; ch++ {
			sum += samples[i*channels+ch]
		}
		mono[i] = sum / float64(channels)
	}

	return mono
}

// intScale returns the factor mapping bitDepth-bit integers into [-1, 1)
func intScale(bitDepth int) float64 {
	return 1.0 / float64(int64(1)<<(bitDepth-1))
}

// wavFormatCode reads the fmt chunk and returns its format code, resolving
// WAVE_FORMAT_EXTENSIBLE through the subformat GUID.
func wavFormatCode(r io.Reader) (uint16, error) {
	parser := riff.New(r)
	if err := parser.ParseHeaders(); err != nil {
		return 0, err
	}
	if parser.Format != riff.WavFormatID {
		return 0, errors.New("not a WAVE file")
	}

	for {
		chunk, err := parser.NextChunk()
		if err != nil {
			return 0, fmt.Errorf("fmt chunk not found: %w", err)
		}
		if chunk.ID != riff.FmtID {
			chunk.Drain()
			continue
		}

		if chunk.Size < 16 {
			return 0, fmt.Errorf("fmt chunk too short (%d bytes)", chunk.Size)
		}
		header := make([]byte, chunk.Size)
		if _, err := io.ReadFull(chunk, header); err != nil {
			return 0, fmt.Errorf("failed to read fmt chunk: %w", err)
		}

		code := binary.LittleEndian.Uint16(header[0:2])
		if code != wavFormatExtensible {
			return code, nil
		}

		// cbSize, valid bits and channel mask precede the 16-byte GUID
		if len(header) < 40 {
			return 0, fmt.Errorf("extensible fmt chunk too short (%d bytes)", len(header))
		}
		guid := header[24:40]
		if !bytes.Equal(guid[2:], wavGUIDSuffix) {
			return 0, fmt.Errorf("unsupported WAV subformat %x", guid)
		}
		return binary.LittleEndian.Uint16(guid[0:2]), nil
	}
}

// decodeWAV reads integer PCM or IEEE float WAV files. go-audio/wav parses
// the container; the format code decides how the sample bytes are read.
func decodeWAV(path string) (*decodedStream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	code, err := wavFormatCode(f)
	if err != nil {
		return nil, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, errors.New("not a valid WAV file")
	}

	switch code {
	case wavFormatPCM:
		return decodeWAVInt(decoder)
	case wavFormatIEEEFloat:
		return decodeWAVFloat(decoder)
	default:
		return nil, fmt.Errorf("unsupported WAV encoding (format code %d)", code)
	}
}

// decodeWAVInt reads 16, 24 or 32-bit integer PCM
func decodeWAVInt(decoder *wav.Decoder) (*decodedStream, error) {
	bitDepth := int(decoder.BitDepth)
	switch bitDepth {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("unsupported WAV bit depth %d", bitDepth)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to read PCM buffer: %w", err)
	}

	scale := intScale(bitDepth)
	samples := make([]float64, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = float64(v) * scale
	}

	return &decodedStream{
		samples:  samples,
		rate:     buf.Format.SampleRate,
		channels: buf.Format.NumChannels,
		bitDepth: bitDepth,
	}, nil
}

// decodeWAVFloat reads 32 or 64-bit IEEE float samples from the data chunk.
// Float samples are already full scale at ±1.
func decodeWAVFloat(decoder *wav.Decoder) (*decodedStream, error) {
	bitDepth := int(decoder.BitDepth)
	if bitDepth != 32 && bitDepth != 64 {
		return nil, fmt.Errorf("unsupported float WAV bit depth %d", bitDepth)
	}

	if err := decoder.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("failed to find data chunk: %w", err)
	}
	if decoder.PCMChunk == nil {
		return nil, errors.New("data chunk not found")
	}

	width := bitDepth / 8
	data, err := io.ReadAll(io.LimitReader(decoder.PCMChunk, int64(decoder.PCMSize)))
	if err != nil {
		return nil, fmt.Errorf("failed to read data chunk: %w", err)
	}

	samples := make([]float64, len(data)/width)
	for i := range samples {
		b := data[i*width:]
		if width == 4 {
			samples[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
		} else {
			samples[i] = math.Float64frombits(binary.LittleEndian.Uint64(b))
		}
	}

	return &decodedStream{
		samples:  samples,
		rate:     int(decoder.SampleRate),
		channels: int(decoder.NumChans),
		bitDepth: bitDepth,
	}, nil
}

// decodeFLAC reads every frame of a FLAC stream with mewkiz/flac
func decodeFLAC(path string) (*decodedStream, error) {
	stream, err := flac.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open FLAC stream: %w", err)
	}
	defer stream.Close()

	info := stream.Info
	channels := int(info.NChannels)
	bitDepth := int(info.BitsPerSample)
	if bitDepth < 4 || bitDepth > 32 {
		return nil, fmt.Errorf("unsupported FLAC bit depth %d", bitDepth)
	}

	scale := intScale(bitDepth)
	samples := make([]float64, 0, int(info.NSamples)*channels)
	for {
		frame, err := stream.ParseNext()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("failed to parse FLAC frame: %w", err)
		}

		// Interleave subframes so downmix sees the same layout as WAV
		for i := 0; i < int(frame.BlockSize); i++ {
			for ch := 0; ch < channels; ch++ {
				samples = append(samples, float64(frame.Subframes[ch].Samples[i])*scale)
			}
		}
	}

	return &decodedStream{
		samples:  samples,
		rate:     int(info.SampleRate),
		channels: channels,
		bitDepth: bitDepth,
	}, nil
}

// decodeMP3 reads the whole MP3 stream with go-mp3
func decodeMP3(path string) (*decodedStream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("failed to create mp3 decoder: %w", err)
	}

	pcm, err := io.ReadAll(decoder)
	if err != nil {
		return nil, fmt.Errorf("mp3 decode error: %w", err)
	}

	scale := intScale(mp3BitDepth)
	samples := make([]float64, len(pcm)/2)
	for i := range samples {
		samples[i] = float64(int16(binary.LittleEndian.Uint16(pcm[i*2:]))) * scale
	}

	return &decodedStream{
		samples:  samples,
		rate:     decoder.SampleRate(),
		channels: mp3Channels,
		bitDepth: mp3BitDepth,
	}, nil
}
