package ui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/linuxmatters/noisegrab/internal/processor"
)

// Colour palette shared with internal/cli
var (
	accentColor = lipgloss.Color("#2E86AB")
	mutedColor  = lipgloss.Color("#888888")
	okColor     = lipgloss.Color("#00AA00")
	warnColor   = lipgloss.Color("#FFA500")
	errColor    = lipgloss.Color("#A40000")
)

// stageCount is the number of stages shown as "Stage n/5"
const stageCount = int(processor.StageWriting) + 1

// renderProcessingView renders the main processing view
func renderProcessingView(m Model) string {
	var b strings.Builder

	b.WriteString(renderHeader(m))
	b.WriteString("\n\n")

	for i, file := range m.Files {
		b.WriteString(renderFileEntry(file, m.spinnerIndex))
		if i < len(m.Files)-1 {
			b.WriteString("\n")
		}
	}

	if m.TotalFiles > 1 {
		b.WriteString("\n\n")
		b.WriteString(renderOverallProgress(m))
	}
	b.WriteString("\n")

	return b.String()
}

// renderHeader renders the application header
func renderHeader(m Model) string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(accentColor).
		Render("Noisegrab 🤫 - Noise Profile Extractor")

	subtitle := lipgloss.NewStyle().
		Foreground(mutedColor).
		Italic(true).
		Render(fmt.Sprintf("Processing %d file(s)", m.TotalFiles))

	return title + "\n" + subtitle
}

// renderFileEntry renders a single file entry in the queue
func renderFileEntry(file FileProgress, spinnerIndex int) string {
	fileName := filepath.Base(file.InputPath)

	switch file.Status {
	case StatusComplete:
		icon := lipgloss.NewStyle().Foreground(okColor).Render("✓")
		return fmt.Sprintf(" %s %s → %s\n   %s", icon, fileName, outputName(file), completionLine(file))

	case StatusActive:
		spinner := lipgloss.NewStyle().Foreground(warnColor).Render(spinnerFrames[spinnerIndex%len(spinnerFrames)])
		return fmt.Sprintf(" %s %s → %s\n%s", spinner, fileName, outputName(file), renderFileDetails(file))

	case StatusError:
		icon := lipgloss.NewStyle().Foreground(errColor).Render("✗")
		return fmt.Sprintf(" %s %s\n   Error: %v", icon, fileName, file.Error)

	default:
		icon := lipgloss.NewStyle().Foreground(mutedColor).Render("○")
		return fmt.Sprintf(" %s %s\n   Queued...", icon, fileName)
	}
}

func outputName(file FileProgress) string {
	if file.OutputPath == "" {
		return "(dry run)"
	}
	return filepath.Base(file.OutputPath)
}

func completionLine(file FileProgress) string {
	return fmt.Sprintf("%d of %d frames | %.2f s of noise", file.Segments, file.FrameCount, file.OutputSeconds)
}

// renderFileDetails renders stage progress for the active file
func renderFileDetails(file FileProgress) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accentColor).
		Padding(0, 1).
		Width(60)

	var content strings.Builder
	fmt.Fprintf(&content, "Stage %d/%d: %s\n", int(file.Stage)+1, stageCount, file.Stage)
	content.WriteString(renderProgressBar(file.Progress, 40))
	content.WriteString("\n")

	elapsed := time.Since(file.StageStart).Seconds()
	var remaining float64
	if file.Progress > 0 && file.Progress < 1 {
		remaining = elapsed/file.Progress - elapsed
	}
	fmt.Fprintf(&content, "⏱  %s elapsed | stage ~%.1fs remaining", formatElapsed(time.Since(file.StartTime)), remaining)

	return box.Render(content.String())
}

// renderProgressBar renders a progress bar
func renderProgressBar(progress float64, width int) string {
	progress = min(max(progress, 0), 1)
	filled := int(progress * float64(width))

	filledStyle := lipgloss.NewStyle().Foreground(accentColor)
	emptyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#444444"))
	bar := filledStyle.Render(strings.Repeat("━", filled)) +
		emptyStyle.Render(strings.Repeat("━", width-filled))

	return fmt.Sprintf("%s %3d%%", bar, int(progress*100))
}

// renderOverallProgress renders the overall progress footer
func renderOverallProgress(m Model) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(mutedColor).
		Padding(0, 1).
		Width(60)

	var content string
	if m.CurrentIndex >= 0 && m.CurrentIndex < len(m.Files) {
		content = fmt.Sprintf("Processing file %d of %d (%d complete, %d failed)",
			m.CurrentIndex+1, m.TotalFiles, m.CompletedFiles, m.FailedFiles)
	} else {
		content = fmt.Sprintf("Overall Progress: %d/%d complete", m.CompletedFiles, m.TotalFiles)
	}

	return box.Render(content)
}

// renderCompletionSummary renders the final completion summary
func renderCompletionSummary(m Model) string {
	var b strings.Builder

	colour, text := okColor, "✨ Noise profiles extracted"
	if m.FailedFiles > 0 {
		colour, text = warnColor, fmt.Sprintf("Finished with %d failure(s)", m.FailedFiles)
	}
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(colour).Render(text))
	b.WriteString("\n\n")

	for _, file := range m.Files {
		if file.Status == StatusComplete || file.Status == StatusError {
			b.WriteString(renderFileEntry(file, 0))
			b.WriteString("\n")
		}
	}

	b.WriteString(strings.Repeat("─", 60))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Total time: %s\n", formatElapsed(time.Since(m.StartTime)))

	return b.String()
}

// formatElapsed formats elapsed time as MM:SS or HH:MM:SS
func formatElapsed(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
