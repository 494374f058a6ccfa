package processor

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/linuxmatters/noisegrab/internal/audio"
)

// Stage identifies a step of an extraction run
type Stage int

const (
	StageLoading Stage = iota
	StageAnalysing
	StageSelecting
	StageAssembling
	StageWriting
)

var stageNames = [...]string{"Loading", "Analysing", "Selecting", "Assembling", "Writing"}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return fmt.Sprintf("Stage(%d)", int(s))
	}
	return stageNames[s]
}

// ProgressFunc receives progress in [0, 1] for the current stage.
// During StageAnalysing it is called from worker goroutines.
type ProgressFunc func(stage Stage, progress float64)

// Analysis is the outcome of scoring and ranking the frames of one buffer
type Analysis struct {
	Geometry  FrameGeometry
	Curve     WeightingCurve
	Profile   LoudnessProfile
	Selection Selection // Quietest first; may be empty
}

// QuietestDB returns the lowest frame loudness in the profile
func (a *Analysis) QuietestDB() float64 {
	ranked := RankFrames(a.Profile)
	if len(ranked) == 0 {
		return LoudnessFloorDB
	}
	return a.Profile[ranked[0]]
}

// StageTiming records how long one stage took
type StageTiming struct {
	Stage   Stage
	Elapsed time.Duration
}

// Result describes a completed extraction
type Result struct {
	InputPath    string
	OutputPath   string // Empty for a dry run
	Config       Config // Configuration the run used
	Source       *audio.Metadata
	Analysis     *Analysis
	Output       *audio.Buffer // Assembled profile, quietest segment first
	Measurements *ProfileMeasurements
	Timings      []StageTiming
}

// SegmentCount returns the number of frames in the output
func (r *Result) SegmentCount() int {
	return len(r.Analysis.Selection)
}

// OutputSeconds returns the duration of the assembled profile. Overlapping
// frames repeat source audio, so this can exceed the source duration.
func (r *Result) OutputSeconds() float64 {
	if r.Output == nil {
		return 0
	}
	return r.Output.Seconds()
}

// DryRun reports whether the result was produced without writing a file
func (r *Result) DryRun() bool {
	return r.OutputPath == ""
}

// Extractor runs noise profile extraction with a fixed configuration.
// An Extractor is safe to reuse for multiple files but not concurrently.
type Extractor struct {
	cfg    Config
	logger *zap.Logger
}

// NewExtractor copies cfg so later changes by the caller have no effect.
// A nil logger is replaced with a no-op logger.
func NewExtractor(cfg *Config, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{cfg: *cfg, logger: logger}
}

// Analyze frames buf, scores every frame and selects those at or below
// SilenceCutoffDB. An empty selection is not an error here; the Analysis is
// still returned for reporting.
func (e *Extractor) Analyze(ctx context.Context, buf *audio.Buffer, progress ProgressFunc) (*Analysis, error) {
	if buf.SampleRate != e.cfg.TargetSampleRate {
		return nil, &ConfigError{
			Field:  "target_sample_rate",
			Reason: fmt.Sprintf("buffer is %d Hz, configured for %d Hz", buf.SampleRate, e.cfg.TargetSampleRate),
		}
	}

	g, err := NewFrameGeometry(&e.cfg, buf.Len())
	if err != nil {
		return nil, err
	}
	e.logger.Debug("frame geometry",
		zap.Int("frame_size", g.FrameSize),
		zap.Int("hop_size", g.HopSize),
		zap.Int("frame_count", g.FrameCount),
		zap.Int("buffer_len", g.BufferLen))

	report(progress, StageAnalysing, 0)
	curve := NewWeightingCurve(g.SampleRate, g.FrameSize)

	var onFrame func(int)
	if progress != nil {
		onFrame = func(done int) {
			progress(StageAnalysing, float64(done)/float64(g.FrameCount))
		}
	}

	profile, err := ComputeLoudnessProfile(ctx, buf.Samples, g, curve, e.cfg.Workers, onFrame)
	if err != nil {
		return nil, fmt.Errorf("loudness analysis failed: %w", err)
	}

	report(progress, StageSelecting, 0)
	sel := SelectSilentFrames(profile, SilenceCutoffDB)
	report(progress, StageSelecting, 1)

	a := &Analysis{Geometry: g, Curve: curve, Profile: profile, Selection: sel}
	e.logger.Debug("frames selected",
		zap.Int("selected", len(sel)),
		zap.Int("frames", g.FrameCount),
		zap.Float64("quietest_db", a.QuietestDB()),
		zap.Float64("cutoff_db", SilenceCutoffDB))

	return a, nil
}

// Run extracts the noise profile of inputPath and writes it to outputPath as
// a mono WAV at the target sample rate. With an empty outputPath nothing is
// written (dry run) but the Result is complete.
//
// Returns an error wrapping ErrInsufficientSilence, without writing, when no
// frame is quiet enough. The partial Result (source, analysis and timings, no
// Output or Measurements) is returned with that error so it can be reported.
func (e *Extractor) Run(ctx context.Context, inputPath, outputPath string, progress ProgressFunc) (*Result, error) {
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}
	if e.cfg.GatingThresholdIgnored() {
		e.logger.Warn("gating threshold has no effect on frame selection",
			zap.Float64("gating_threshold_db", e.cfg.GatingThresholdDB),
			zap.Float64("silence_cutoff_db", SilenceCutoffDB))
	}

	result := &Result{InputPath: inputPath, OutputPath: outputPath, Config: e.cfg}
	timed := func(stage Stage, start time.Time) {
		result.Timings = append(result.Timings, StageTiming{Stage: stage, Elapsed: time.Since(start)})
	}

	start := time.Now()
	report(progress, StageLoading, 0)
	buf, meta, err := audio.Load(inputPath, e.cfg.TargetSampleRate)
	if err != nil {
		return nil, fmt.Errorf("failed to load audio: %w", err)
	}
	report(progress, StageLoading, 1)
	timed(StageLoading, start)
	result.Source = meta
	e.logger.Info("audio loaded",
		zap.String("path", inputPath),
		zap.String("format", meta.Format),
		zap.Int("source_rate", meta.SourceRate),
		zap.Int("channels", meta.Channels),
		zap.Float64("duration_s", meta.Duration),
		zap.Int("samples", buf.Len()))

	start = time.Now()
	analysis, err := e.Analyze(ctx, buf, progress)
	if err != nil {
		return nil, err
	}
	timed(StageAnalysing, start)
	result.Analysis = analysis

	if len(analysis.Selection) == 0 {
		return result, &InsufficientSilenceError{
			FrameCount: analysis.Geometry.FrameCount,
			QuietestDB: analysis.QuietestDB(),
			CutoffDB:   SilenceCutoffDB,
		}
	}

	start = time.Now()
	report(progress, StageAssembling, 0)
	samples := AssembleSegments(buf.Samples, analysis.Geometry, analysis.Selection)
	result.Output = &audio.Buffer{Samples: samples, SampleRate: buf.SampleRate}
	result.Measurements = MeasureProfile(samples, analysis.Geometry, analysis.Profile, analysis.Selection)
	report(progress, StageAssembling, 1)
	timed(StageAssembling, start)

	if outputPath == "" {
		e.logger.Info("dry run, output not written", zap.Int("segments", len(analysis.Selection)))
		return result, nil
	}

	start = time.Now()
	report(progress, StageWriting, 0)
	if err := audio.WriteWAV(outputPath, result.Output, e.cfg.OutputBitDepth); err != nil {
		return nil, err
	}
	report(progress, StageWriting, 1)
	timed(StageWriting, start)
	e.logger.Info("noise profile written",
		zap.String("path", outputPath),
		zap.Int("segments", len(analysis.Selection)),
		zap.Float64("duration_s", result.OutputSeconds()))

	return result, nil
}

// OutputPath derives the default output filename from the input filename
// Example: /path/to/interview.flac → /path/to/interview-noise.wav
func OutputPath(inputPath string) string {
	dir := filepath.Dir(inputPath)
	filename := filepath.Base(inputPath)
	nameWithoutExt := strings.TrimSuffix(filename, filepath.Ext(filename))

	return filepath.Join(dir, nameWithoutExt+"-noise.wav")
}

func report(progress ProgressFunc, stage Stage, p float64) {
	if progress != nil {
		progress(stage, p)
	}
}
