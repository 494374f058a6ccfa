package logging

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/linuxmatters/noisegrab/internal/processor"
)

// ============================================================================
// Noise Characteristic Interpretation Functions
// ============================================================================

// interpretCentroid describes where the energy of the background noise sits.
// Rumble and hum pull the centroid down; hiss and fan noise push it up.
func interpretCentroid(hz float64) string {
	switch {
	case hz < 200:
		return "rumble or hum dominated"
	case hz < 1000:
		return "low-frequency, room or HVAC"
	case hz < 3000:
		return "mid-band, broadband room tone"
	case hz < 6000:
		return "bright, hiss present"
	default:
		return "very bright, preamp hiss"
	}
}

// interpretFlatness describes tonality vs noisiness (Wiener entropy).
// 0 = pure tone, 1 = white noise. Broadband noise is what spectral noise
// reduction handles best; tonal noise suits a notch filter.
func interpretFlatness(flatness float64) string {
	switch {
	case flatness < 0.1:
		return "tonal, dominated by a few frequencies"
	case flatness < 0.3:
		return "mixed tonal and broadband"
	case flatness < 0.6:
		return "broadband with some colour"
	default:
		return "flat, close to white noise"
	}
}

// interpretHum describes the level of mains hum above the local noise
func interpretHum(db float64) string {
	switch {
	case math.IsNaN(db):
		return "not measurable"
	case db < 3:
		return "none detected"
	case db < humAudibleDB:
		return "slight"
	case db < 20:
		return "audible"
	default:
		return "strong"
	}
}

// =============================================================================
// Report Section Formatting Helpers
// =============================================================================

// writeSection writes a section header with title and dashed underline.
// The underline length matches the title length.
func writeSection(w io.Writer, title string) {
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, strings.Repeat("-", len(title)))
}

// ReportData contains all the information needed to generate an analysis report
type ReportData struct {
	InputPath  string
	OutputPath string // Output the profile was (or, for a dry run, would be) written to
	StartTime  time.Time
	EndTime    time.Time
	Result     *processor.Result
	MainsHz    int
}

// ReportPath returns where GenerateReport writes: the output path with its
// extension replaced by .log. interview-noise.wav → interview-noise.log
func ReportPath(data ReportData) string {
	out := data.OutputPath
	if out == "" {
		out = processor.OutputPath(data.InputPath)
	}
	return strings.TrimSuffix(out, filepath.Ext(out)) + ".log"
}

// GenerateReport writes a detailed analysis report to ReportPath(data).
//
// Report structure:
// 1. Header - file info and timestamp
// 2. Processing Summary - stage timings
// 3. Configuration - parameters the run used
// 4. Frame Analysis - geometry and loudness distribution
// 5. Noise Profile - measurements of the assembled output
// 6. Selected Frames - every frame in output order
// 7. Tips
func GenerateReport(data ReportData) error {
	if data.Result == nil || data.Result.Analysis == nil {
		return errors.New("no analysis to report")
	}

	f, err := os.Create(ReportPath(data))
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}
	defer f.Close()

	writeReport(f, data)

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write log file: %w", err)
	}
	return nil
}

func writeReport(w io.Writer, data ReportData) {
	writeReportHeader(w, data)
	writeProcessingSummary(w, data)
	writeConfiguration(w, &data.Result.Config)
	writeFrameAnalysis(w, data.Result.Analysis)
	writeProfileTable(w, data.Result, data.MainsHz)
	writeSelectedFrames(w, data.Result.Analysis)
	writeTips(w, data.Result, data.MainsHz)
}

// writeReportHeader outputs the report header with file info and timestamp
func writeReportHeader(w io.Writer, data ReportData) {
	fmt.Fprintln(w, "Noisegrab Analysis Report")
	fmt.Fprintln(w, "=========================")
	fmt.Fprintf(w, "File: %s\n", filepath.Base(data.InputPath))
	switch {
	case data.Result.Output == nil:
		fmt.Fprintln(w, "Output: none (no silent frames)")
	case data.Result.DryRun():
		fmt.Fprintln(w, "Output: none (dry run)")
	default:
		fmt.Fprintf(w, "Output: %s\n", filepath.Base(data.Result.OutputPath))
	}
	fmt.Fprintf(w, "Processed: %s\n", data.EndTime.Format("2006-01-02 15:04:05 MST"))

	if src := data.Result.Source; src != nil {
		fmt.Fprintf(w, "Duration: %s\n", formatDurationHMS(src.Duration))
		fmt.Fprintf(w, "Source: %s, %d Hz, %s, %d-bit\n",
			strings.ToUpper(src.Format), src.SourceRate, channelName(src.Channels), src.BitDepth)
	}
	fmt.Fprintln(w, "")
}

// writeProcessingSummary outputs the time spent in each stage
func writeProcessingSummary(w io.Writer, data ReportData) {
	writeSection(w, "Processing Summary")

	for _, timing := range data.Result.Timings {
		fmt.Fprintf(w, "%-12s %s\n", timing.Stage.String()+":", formatDuration(timing.Elapsed))
	}

	total := data.EndTime.Sub(data.StartTime)
	fmt.Fprintf(w, "%-12s %s", "Total:", formatDuration(total))
	if src := data.Result.Source; src != nil && src.Duration > 0 && total > 0 {
		fmt.Fprintf(w, " (%.0fx real-time)", src.Duration/total.Seconds())
	}
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "")
}

// writeConfiguration outputs the parameters of the run
func writeConfiguration(w io.Writer, cfg *processor.Config) {
	writeSection(w, "Configuration")

	fmt.Fprintf(w, "Sample rate:       %d Hz\n", cfg.TargetSampleRate)
	fmt.Fprintf(w, "Block duration:    %d ms\n", cfg.BlockDurationMs)
	fmt.Fprintf(w, "Overlap:           %.0f%%\n", cfg.OverlapRatio*100)
	fmt.Fprintf(w, "Silence cutoff:    %.1f dB(A)\n", processor.SilenceCutoffDB)

	note := ""
	if cfg.GatingThresholdIgnored() {
		note = " (not applied to selection)"
	}
	fmt.Fprintf(w, "Gating threshold:  %.1f dB%s\n", cfg.GatingThresholdDB, note)

	if cfg.Workers == 0 {
		fmt.Fprintln(w, "Workers:           auto")
	} else {
		fmt.Fprintf(w, "Workers:           %d\n", cfg.Workers)
	}
	fmt.Fprintf(w, "Output bit depth:  %d\n", cfg.OutputBitDepth)
	fmt.Fprintln(w, "")
}

// writeFrameAnalysis outputs the frame geometry and a histogram of frame
// loudness across the whole recording
func writeFrameAnalysis(w io.Writer, a *processor.Analysis) {
	writeSection(w, "Frame Analysis")

	g := a.Geometry
	fmt.Fprintf(w, "Frame size:        %d samples (%.0f ms)\n", g.FrameSize, g.FrameSeconds()*1000)
	fmt.Fprintf(w, "Hop size:          %d samples (%.0f ms)\n", g.HopSize, float64(g.HopSize)/float64(g.SampleRate)*1000)
	fmt.Fprintf(w, "Frames analysed:   %d\n", g.FrameCount)
	fmt.Fprintf(w, "Frames selected:   %d\n", len(a.Selection))
	fmt.Fprintf(w, "Bin resolution:    %.2f Hz\n", g.BinFrequency(1))
	fmt.Fprintln(w, "")

	if bins := loudnessHistogram(a.Profile); len(bins) > 0 {
		fmt.Fprintln(w, "Loudness distribution (dB(A)):")
		peak := 0.0
		for _, b := range bins {
			peak = math.Max(peak, b.count)
		}
		for _, b := range bins {
			bar := strings.Repeat("#", int(math.Round(b.count/peak*40)))
			marker := ""
			if b.low <= processor.SilenceCutoffDB {
				marker = " *"
			}
			fmt.Fprintf(w, "  %4.0f to %4.0f  %6.0f  %s%s\n", b.low, b.high, b.count, bar, marker)
		}
		fmt.Fprintln(w, "  (* bands containing selectable frames)")
		fmt.Fprintln(w, "")
	}
}

type histogramBin struct {
	low, high float64
	count     float64
}

// loudnessHistogram counts frames in 10 dB bands. NaN scores are skipped.
func loudnessHistogram(profile processor.LoudnessProfile) []histogramBin {
	values := make([]float64, 0, len(profile))
	for _, l := range profile {
		if !math.IsNaN(l) && !math.IsInf(l, 0) {
			values = append(values, l)
		}
	}
	if len(values) == 0 {
		return nil
	}
	sort.Float64s(values)

	const width = 10.0
	lo := math.Floor(values[0]/width) * width
	hi := math.Floor(values[len(values)-1]/width)*width + width

	dividers := make([]float64, 0, int((hi-lo)/width)+1)
	for d := lo; d <= hi; d += width {
		dividers = append(dividers, d)
	}

	counts := stat.Histogram(nil, dividers, values, nil)
	bins := make([]histogramBin, len(counts))
	for i, c := range counts {
		bins[i] = histogramBin{low: dividers[i], high: dividers[i+1], count: c}
	}
	return bins
}

// writeProfileTable outputs measurements of the assembled profile
func writeProfileTable(w io.Writer, r *processor.Result, mainsHz int) {
	writeSection(w, "Noise Profile")

	m := r.Measurements
	if m == nil {
		fmt.Fprintln(w, "No frames selected; nothing assembled.")
		fmt.Fprintf(w, "Quietest frame: %.1f dB(A)\n", r.Analysis.QuietestDB())
		fmt.Fprintln(w, "")
		return
	}

	fmt.Fprintf(w, "Segments: %d, total %.2f s (includes overlap/padding)\n", r.SegmentCount(), r.OutputSeconds())
	fmt.Fprintln(w, "")

	silent := isDigitalSilence(m.RMSLevel)
	table := NewMetricTable("Profile")
	table.AddRow("RMS level", []string{formatMetricDB(m.RMSLevel, 1)}, "dBFS", "")
	table.AddRow("Peak level", []string{formatMetricDB(m.PeakLevel, 1)}, "dBFS", "")
	table.AddMetricRow("Loudness min", []float64{m.LoudnessMin}, 1, "dB(A)", "")
	table.AddMetricRow("Loudness median", []float64{m.LoudnessMedian}, 1, "dB(A)", "")
	table.AddMetricRow("Loudness max", []float64{m.LoudnessMax}, 1, "dB(A)", "")
	if silent {
		table.AddRow("Spectral centroid", []string{"n/a"}, "Hz", "digital silence")
		table.AddRow("Spectral flatness", []string{"n/a"}, "", "digital silence")
	} else {
		table.AddMetricRow("Spectral centroid", []float64{m.SpectralCentroid}, 0, "Hz", interpretCentroid(m.SpectralCentroid))
		table.AddMetricRow("Spectral flatness", []float64{m.SpectralFlatness}, 3, "", interpretFlatness(m.SpectralFlatness))
		hum := humLevel(r, mainsHz)
		table.AddRow(fmt.Sprintf("Hum (%d Hz)", mainsHz), []string{formatMetricSigned(hum, 1)}, "dB", interpretHum(hum))
	}

	fmt.Fprint(w, table.String())
	fmt.Fprintln(w, "")
}

// writeSelectedFrames lists the selected frames in output order, quietest first
func writeSelectedFrames(w io.Writer, a *processor.Analysis) {
	writeSection(w, "Selected Frames (output order)")

	if len(a.Selection) == 0 {
		fmt.Fprintln(w, "None")
		fmt.Fprintln(w, "")
		return
	}

	table := NewMetricTable("Frame", "Start", "Loudness")
	for rank, idx := range a.Selection {
		table.AddRow(fmt.Sprintf("#%d", rank+1), []string{
			fmt.Sprintf("%d", idx),
			formatTimestamp(a.Geometry.StartSeconds(idx)),
			formatMetricWithUnit(a.Profile[idx], 1, "dB(A)"),
		}, "", "")
	}
	fmt.Fprint(w, table.String())
	fmt.Fprintln(w, "")
}

// writeTips outputs recording advice, if any
func writeTips(w io.Writer, r *processor.Result, mainsHz int) {
	tips := GenerateProfileTips(r, mainsHz)
	if len(tips) == 0 {
		return
	}

	writeSection(w, "Tips")
	for _, tip := range tips {
		fmt.Fprintf(w, "- %s\n", wrapText(tip.Message, 76, "  "))
	}
	fmt.Fprintln(w, "")
}
