package logging

import (
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/linuxmatters/noisegrab/internal/mains"
	"github.com/linuxmatters/noisegrab/internal/processor"
)

// humHarmonics is the number of mains harmonics inspected for hum
const humHarmonics = 4

// DisplaySummary writes the console summary of a completed extraction
func DisplaySummary(w io.Writer, result *processor.Result, mainsHz int) {
	n := result.SegmentCount()
	if result.DryRun() {
		fmt.Fprintf(w, "Dry run: %d silent segments selected from %s (nothing written)\n",
			n, filepath.Base(result.InputPath))
	} else {
		fmt.Fprintf(w, "Saved %d silent segments to %s\n", n, result.OutputPath)
	}
	fmt.Fprintf(w, "Total duration: %.2f s (includes overlap/padding)\n", result.OutputSeconds())
	fmt.Fprintln(w)

	g := result.Analysis.Geometry
	writeAnalysisSection(w, "FRAMES")
	fmt.Fprintf(w, "  Window:       %d samples (%.0f ms), hop %d\n", g.FrameSize, g.FrameSeconds()*1000, g.HopSize)
	fmt.Fprintf(w, "  Selected:     %d of %d (%.0f%%)\n", n, g.FrameCount, selectedPercent(result))

	if m := result.Measurements; m != nil {
		fmt.Fprintf(w, "  Loudness:     %s to %s dB(A), median %s\n",
			formatMetric(m.LoudnessMin, 1), formatMetric(m.LoudnessMax, 1), formatMetric(m.LoudnessMedian, 1))
		fmt.Fprintln(w)

		writeAnalysisSection(w, "PROFILE")
		fmt.Fprintf(w, "  RMS Level:    %s dBFS\n", formatMetricDB(m.RMSLevel, 1))
		fmt.Fprintf(w, "  Peak Level:   %s dBFS\n", formatMetricDB(m.PeakLevel, 1))
		if !isDigitalSilence(m.RMSLevel) {
			fmt.Fprintf(w, "  Centroid:     %.0f Hz (%s)\n", m.SpectralCentroid, interpretCentroid(m.SpectralCentroid))
			fmt.Fprintf(w, "  Flatness:     %.3f (%s)\n", m.SpectralFlatness, interpretFlatness(m.SpectralFlatness))
			hum := humLevel(result, mainsHz)
			fmt.Fprintf(w, "  Hum @ %d Hz:  %s dB (%s)\n", mainsHz, formatMetricSigned(hum, 1), interpretHum(hum))
		}
	}

	if tips := GenerateProfileTips(result, mainsHz); len(tips) > 0 {
		fmt.Fprintln(w)
		writeAnalysisSection(w, "TIPS")
		for _, tip := range tips {
			fmt.Fprintf(w, "  • %s\n", wrapText(tip.Message, 66, "    "))
		}
	}
}

// humLevel measures hum at the first few harmonics of mainsHz that fit
// below Nyquist. NaN without a measurable profile.
func humLevel(result *processor.Result, mainsHz int) float64 {
	if result.Measurements == nil || mainsHz <= 0 {
		return math.NaN()
	}
	nyquist := float64(result.Analysis.Geometry.SampleRate) / 2
	return result.Measurements.HumLevel(mains.Harmonics(float64(mainsHz), nyquist, humHarmonics))
}

func selectedPercent(result *processor.Result) float64 {
	total := result.Analysis.Geometry.FrameCount
	if total == 0 {
		return 0
	}
	return 100 * float64(result.SegmentCount()) / float64(total)
}

func writeAnalysisSection(w io.Writer, title string) {
	fmt.Fprintln(w, title)
}

// formatDurationHMS formats duration as "Xh Ym Zs" or "Ym Zs" or "Z.Xs".
func formatDurationHMS(seconds float64) string {
	if seconds < 60 {
		return fmt.Sprintf("%.1fs", seconds)
	}

	totalSeconds := int(seconds)
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	secs := totalSeconds % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, secs)
	}
	return fmt.Sprintf("%dm %ds", minutes, secs)
}

// formatTimestamp formats a position in the recording as "12.3s" or "4m 05.2s"
func formatTimestamp(seconds float64) string {
	if seconds < 60 {
		return fmt.Sprintf("%.1fs", seconds)
	}

	minutes := int(seconds) / 60
	rem := math.Mod(seconds, 60)

	if minutes >= 60 {
		return fmt.Sprintf("%dh %dm %04.1fs", minutes/60, minutes%60, rem)
	}
	return fmt.Sprintf("%dm %04.1fs", minutes, rem)
}

// formatDuration formats an elapsed time
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return formatDurationHMS(d.Seconds())
}

// channelName returns a human-readable channel name
func channelName(channels int) string {
	switch channels {
	case 1:
		return "mono"
	case 2:
		return "stereo"
	default:
		return fmt.Sprintf("%d channels", channels)
	}
}

// wrapText wraps text at word boundaries to fit within maxWidth columns.
// Continuation lines are prefixed with indent.
func wrapText(text string, maxWidth int, indent string) string {
	words := strings.Fields(text)
	var lines []string
	currentLine := ""

	for _, word := range words {
		if currentLine == "" {
			currentLine = word
		} else if len(currentLine)+1+len(word) <= maxWidth {
			currentLine += " " + word
		} else {
			lines = append(lines, currentLine)
			currentLine = word
		}
	}
	if currentLine != "" {
		lines = append(lines, currentLine)
	}

	return strings.Join(lines, "\n"+indent)
}
