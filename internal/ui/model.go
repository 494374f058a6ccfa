// Package ui provides the Bubbletea terminal user interface for noisegrab
package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/linuxmatters/noisegrab/internal/processor"
)

// Spinner frames for the active file
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// FileStatus represents the processing state of a single file
type FileStatus int

const (
	StatusQueued FileStatus = iota
	StatusActive
	StatusComplete
	StatusError
)

// FileProgress tracks progress for a single audio file
type FileProgress struct {
	InputPath  string
	OutputPath string
	Status     FileStatus

	// Stage tracking
	Stage      processor.Stage
	Progress   float64 // 0.0 to 1.0 within Stage
	StartTime  time.Time
	StageStart time.Time

	// Completion results
	Segments      int
	FrameCount    int
	OutputSeconds float64

	Error error
}

// Model is the Bubbletea model for the processing UI
type Model struct {
	Files          []FileProgress
	CurrentIndex   int
	TotalFiles     int
	CompletedFiles int
	FailedFiles    int

	StartTime time.Time
	Done      bool

	spinnerIndex int
	logger       *zap.Logger

	Width  int
	Height int
}

// NewModel creates a new UI model with the given input files
func NewModel(inputFiles []string, logger *zap.Logger) Model {
	if logger == nil {
		logger = zap.NewNop()
	}

	files := make([]FileProgress, len(inputFiles))
	for i, path := range inputFiles {
		files[i] = FileProgress{InputPath: path, Status: StatusQueued}
	}

	return Model{
		Files:        files,
		CurrentIndex: -1, // No file processing yet
		TotalFiles:   len(inputFiles),
		StartTime:    time.Now(),
		logger:       logger.Named("ui"),
	}
}

// Init starts the spinner
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// tickCmd returns a command that sends a tick message every 100ms
func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case tickMsg:
		if m.Done {
			return m, nil
		}
		m.spinnerIndex = (m.spinnerIndex + 1) % len(spinnerFrames)
		return m, tickCmd()

	case FileStartMsg:
		m.logger.Debug("file started", zap.Int("index", msg.FileIndex))
		if msg.FileIndex < 0 || msg.FileIndex >= len(m.Files) {
			return m, nil
		}
		m.CurrentIndex = msg.FileIndex
		now := time.Now()
		f := &m.Files[m.CurrentIndex]
		f.Status = StatusActive
		f.OutputPath = msg.OutputPath
		f.StartTime = now
		f.StageStart = now

	case ProgressMsg:
		if m.CurrentIndex >= 0 && m.CurrentIndex < len(m.Files) {
			m.Files[m.CurrentIndex] = updateFileProgress(m.Files[m.CurrentIndex], msg)
		}

	case FileCompleteMsg:
		m.logger.Debug("file complete", zap.Int("index", msg.FileIndex), zap.Error(msg.Error))
		if msg.FileIndex < 0 || msg.FileIndex >= len(m.Files) {
			return m, nil
		}
		f := &m.Files[msg.FileIndex]
		f.Segments = msg.Segments
		f.FrameCount = msg.FrameCount
		f.OutputSeconds = msg.OutputSeconds
		f.Error = msg.Error
		if msg.Error != nil {
			f.Status = StatusError
			m.FailedFiles++
		} else {
			f.Status = StatusComplete
			m.CompletedFiles++
		}

	case AllCompleteMsg:
		m.Done = true
		return m, tea.Quit
	}

	return m, nil
}

// View renders the UI
func (m Model) View() string {
	if m.Done {
		return renderCompletionSummary(m)
	}
	return renderProcessingView(m)
}

// updateFileProgress applies a ProgressMsg to a file. Progress within a
// stage never moves backwards; worker goroutines can deliver updates out of
// order.
func updateFileProgress(fp FileProgress, msg ProgressMsg) FileProgress {
	if msg.Stage != fp.Stage {
		if msg.Stage < fp.Stage {
			return fp
		}
		fp.Stage = msg.Stage
		fp.StageStart = time.Now()
		fp.Progress = 0
	}
	if msg.Progress > fp.Progress {
		fp.Progress = msg.Progress
	}
	return fp
}
