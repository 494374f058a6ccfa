package ui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/linuxmatters/noisegrab/internal/processor"
)

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return model
}

func TestModelFileLifecycle(t *testing.T) {
	m := NewModel([]string{"/rec/a.wav", "/rec/b.flac"}, nil)

	m = update(t, m, FileStartMsg{FileIndex: 0, OutputPath: "/rec/a-noise.wav"})
	if m.Files[0].Status != StatusActive || m.CurrentIndex != 0 {
		t.Fatalf("file 0 status = %v, current = %d", m.Files[0].Status, m.CurrentIndex)
	}

	m = update(t, m, ProgressMsg{Stage: processor.StageAnalysing, Progress: 0.5})
	if m.Files[0].Stage != processor.StageAnalysing || m.Files[0].Progress != 0.5 {
		t.Errorf("progress = %v %.2f, want Analysing 0.50", m.Files[0].Stage, m.Files[0].Progress)
	}

	m = update(t, m, FileCompleteMsg{FileIndex: 0, Segments: 47, FrameCount: 47, OutputSeconds: 18.8})
	m = update(t, m, FileStartMsg{FileIndex: 1})
	m = update(t, m, FileCompleteMsg{FileIndex: 1, Error: errors.New("no silent frames found")})

	if m.CompletedFiles != 1 || m.FailedFiles != 1 {
		t.Errorf("completed/failed = %d/%d, want 1/1", m.CompletedFiles, m.FailedFiles)
	}

	next, cmd := m.Update(AllCompleteMsg{})
	if cmd == nil {
		t.Error("AllCompleteMsg should quit")
	}
	view := next.View()
	for _, want := range []string{"a.wav → a-noise.wav", "47 of 47 frames | 18.80 s of noise", "no silent frames found", "1 failure"} {
		if !strings.Contains(view, want) {
			t.Errorf("summary missing %q:\n%s", want, view)
		}
	}
}

func TestUpdateFileProgressMonotonic(t *testing.T) {
	fp := FileProgress{Stage: processor.StageAnalysing, Progress: 0.6}

	// Late update from a slower worker
	fp = updateFileProgress(fp, ProgressMsg{Stage: processor.StageAnalysing, Progress: 0.4})
	if fp.Progress != 0.6 {
		t.Errorf("progress went backwards to %.2f", fp.Progress)
	}

	// Earlier stage arriving after a later one is ignored
	fp = updateFileProgress(fp, ProgressMsg{Stage: processor.StageSelecting, Progress: 0})
	fp = updateFileProgress(fp, ProgressMsg{Stage: processor.StageAnalysing, Progress: 1})
	if fp.Stage != processor.StageSelecting {
		t.Errorf("stage = %v, want Selecting", fp.Stage)
	}
}

func TestRenderProgressBar(t *testing.T) {
	if got := renderProgressBar(0.5, 10); !strings.HasSuffix(got, " 50%") {
		t.Errorf("renderProgressBar(0.5) = %q", got)
	}
	if got := renderProgressBar(1.7, 10); !strings.HasSuffix(got, "100%") {
		t.Errorf("renderProgressBar clamps above 1: %q", got)
	}
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00"},
		{75 * time.Second, "01:15"},
		{2*time.Hour + 3*time.Second, "02:00:03"},
	}

	for _, tt := range tests {
		if got := formatElapsed(tt.d); got != tt.want {
			t.Errorf("formatElapsed(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
