package processor

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is wrapped by every *ConfigError
	ErrConfiguration = errors.New("invalid configuration")

	// ErrInsufficientSilence is wrapped by *InsufficientSilenceError
	ErrInsufficientSilence = errors.New("no silent frames found")
)

// ConfigError reports an invalid configuration value
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrConfiguration
}

// InsufficientSilenceError is returned when no frame is at or below the
// silence cutoff, so there is nothing to assemble.
type InsufficientSilenceError struct {
	FrameCount int     // Frames analysed
	QuietestDB float64 // Loudness of the quietest frame
	CutoffDB   float64 // Cutoff the quietest frame exceeded
}

func (e *InsufficientSilenceError) Error() string {
	return fmt.Sprintf("no silent frames found: quietest of %d frames is %.1f dB, above the %.1f dB cutoff",
		e.FrameCount, e.QuietestDB, e.CutoffDB)
}

func (e *InsufficientSilenceError) Unwrap() error {
	return ErrInsufficientSilence
}
