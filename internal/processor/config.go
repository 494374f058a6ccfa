// Package processor handles noise profile extraction
package processor

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// Extraction Constants
// =============================================================================

const (
	// SilenceCutoffDB is the A-weighted frame loudness at or below which a frame
	// is selected for the noise profile. This is the effective selection
	// boundary; Config.GatingThresholdDB does not take part in selection.
	SilenceCutoffDB = -10.0

	// DefaultGatingThresholdDB is accepted for compatibility with existing
	// configurations but has no effect on which frames are selected.
	DefaultGatingThresholdDB = -15.0

	DefaultTargetSampleRate = 48000
	DefaultBlockDurationMs  = 400
	DefaultOverlapRatio     = 0.75
	DefaultOutputBitDepth   = 16
)

// supportedBitDepths mirrors audio.SupportedBitDepths
var supportedBitDepths = []int{16, 24, 32}

// Config holds the parameters of a noise profile extraction run
type Config struct {
	// TargetSampleRate is the rate the source is resampled to before analysis (Hz)
	TargetSampleRate int `yaml:"target_sample_rate"`

	// BlockDurationMs is the analysis window length.
	// frameSize = TargetSampleRate × BlockDurationMs / 1000
	BlockDurationMs int `yaml:"block_duration_ms"`

	// OverlapRatio is the fraction of each frame shared with the next, in [0, 1).
	// hopSize = frameSize × (1 − OverlapRatio)
	OverlapRatio float64 `yaml:"overlap_ratio"`

	// GatingThresholdDB is accepted and reported but not applied to selection.
	// See SilenceCutoffDB.
	GatingThresholdDB float64 `yaml:"gating_threshold_db"`

	// Workers is the number of goroutines scoring frames (0 = GOMAXPROCS)
	Workers int `yaml:"workers"`

	// OutputBitDepth is the PCM bit depth of the written WAV (16, 24 or 32)
	OutputBitDepth int `yaml:"output_bit_depth"`
}

// DefaultConfig returns the reference configuration
func DefaultConfig() *Config {
	return &Config{
		TargetSampleRate:  DefaultTargetSampleRate,
		BlockDurationMs:   DefaultBlockDurationMs,
		OverlapRatio:      DefaultOverlapRatio,
		GatingThresholdDB: DefaultGatingThresholdDB,
		Workers:           0,
		OutputBitDepth:    DefaultOutputBitDepth,
	}
}

// FrameSize returns the number of samples per analysis window
func (c *Config) FrameSize() int {
	return c.TargetSampleRate * c.BlockDurationMs / 1000
}

// HopSize returns the number of samples advanced between consecutive windows
func (c *Config) HopSize() int {
	return int(float64(c.FrameSize()) * (1.0 - c.OverlapRatio))
}

// GatingThresholdIgnored reports whether the configured gating threshold
// differs from the default, so callers can warn that it has no effect.
func (c *Config) GatingThresholdIgnored() bool {
	return c.GatingThresholdDB != DefaultGatingThresholdDB
}

// Validate checks that the configuration describes a usable frame geometry.
// It returns a *ConfigError for the first problem found.
func (c *Config) Validate() error {
	if c.TargetSampleRate <= 0 {
		return &ConfigError{Field: "target_sample_rate", Reason: fmt.Sprintf("must be positive, got %d", c.TargetSampleRate)}
	}
	if c.BlockDurationMs <= 0 {
		return &ConfigError{Field: "block_duration_ms", Reason: fmt.Sprintf("must be positive, got %d", c.BlockDurationMs)}
	}
	if c.OverlapRatio < 0 || c.OverlapRatio >= 1 {
		return &ConfigError{Field: "overlap_ratio", Reason: fmt.Sprintf("must be in [0, 1), got %g", c.OverlapRatio)}
	}

	frameSize := c.FrameSize()
	if frameSize < 2 {
		return &ConfigError{Field: "block_duration_ms", Reason: fmt.Sprintf("frame of %d samples is too short", frameSize)}
	}
	hopSize := c.HopSize()
	if hopSize < 1 {
		return &ConfigError{Field: "overlap_ratio", Reason: fmt.Sprintf("hop size is %d samples; reduce the overlap", hopSize)}
	}
	// hopSize == frameSize only with zero overlap, where frames tile the
	// buffer without sharing samples
	if hopSize > frameSize {
		return &ConfigError{Field: "overlap_ratio", Reason: "hop size exceeds frame size"}
	}

	if c.Workers < 0 {
		return &ConfigError{Field: "workers", Reason: fmt.Sprintf("must not be negative, got %d", c.Workers)}
	}
	if !slices.Contains(supportedBitDepths, c.OutputBitDepth) {
		return &ConfigError{Field: "output_bit_depth", Reason: fmt.Sprintf("must be one of %v, got %d", supportedBitDepths, c.OutputBitDepth)}
	}

	return nil
}

// LoadConfig reads a YAML configuration file. Keys missing from the file keep
// their DefaultConfig values. The result is validated.
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadConfigFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadConfigFromReader decodes a YAML config from r on top of DefaultConfig
// and validates the result. Unknown keys are rejected.
func LoadConfigFromReader(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, &ConfigError{Field: "yaml", Reason: err.Error()}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
