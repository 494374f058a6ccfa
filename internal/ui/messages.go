package ui

import (
	"time"

	"github.com/linuxmatters/noisegrab/internal/processor"
)

// ProgressMsg reports progress within a stage of the current file
type ProgressMsg struct {
	Stage    processor.Stage
	Progress float64 // 0.0 to 1.0
}

// FileStartMsg indicates a new file has started processing
type FileStartMsg struct {
	FileIndex  int
	OutputPath string // Empty for a dry run
}

// FileCompleteMsg indicates a file has finished processing
type FileCompleteMsg struct {
	FileIndex     int
	Segments      int
	FrameCount    int
	OutputSeconds float64
	Error         error
}

// AllCompleteMsg indicates all files have been processed
type AllCompleteMsg struct{}

// tickMsg drives the spinner and elapsed timer
type tickMsg time.Time
