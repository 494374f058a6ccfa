package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/linuxmatters/noisegrab/internal/cli"
	"github.com/linuxmatters/noisegrab/internal/logging"
	"github.com/linuxmatters/noisegrab/internal/mains"
	"github.com/linuxmatters/noisegrab/internal/processor"
	"github.com/linuxmatters/noisegrab/internal/ui"
)

var (
	version = "0.0.1"
)

// CLI defines the command-line interface
type CLI struct {
	Version bool   `short:"v" help:"Show version information"`
	Config  string `short:"c" type:"existingfile" placeholder:"file" help:"Path to YAML config file (optional)"`
	Output  string `short:"o" type:"path" placeholder:"file" help:"Output WAV path (single input only; default <input>-noise.wav)"`

	SampleRate      int     `name:"sample-rate" placeholder:"hz" default:"48000" help:"Analysis sample rate"`
	BlockMs         int     `name:"block-ms" placeholder:"ms" default:"400" help:"Analysis frame length"`
	Overlap         float64 `placeholder:"ratio" default:"0.75" help:"Frame overlap in [0, 1)"`
	GatingThreshold float64 `name:"gating-threshold" placeholder:"db" default:"-15" help:"Accepted for compatibility; does not affect selection"`
	Workers         int     `placeholder:"n" default:"0" help:"Frame scoring goroutines (0 = all CPUs)"`
	BitDepth        int     `name:"bit-depth" placeholder:"bits" default:"16" help:"Output PCM bit depth"`

	Mains    string `placeholder:"hz" default:"auto" help:"Mains frequency for hum measurement: auto, 50 or 60"`
	Report   bool   `help:"Write a detailed .log report next to each output"`
	DryRun   bool   `name:"dry-run" help:"Analyse and summarise without writing audio"`
	Plain    bool   `help:"Plain progress output instead of the interactive UI"`
	Debug    bool   `help:"Write structured debug logs"`
	DebugLog string `name:"debug-log" type:"path" placeholder:"file" default:"noisegrab-debug.log" help:"Debug log destination"`

	Files []string `arg:"" name:"files" help:"Audio files to extract noise from (.wav, .flac, .mp3)" type:"existingfile" optional:""`
}

// flagFields maps config-bearing flag names to the Config fields they override
var flagFields = map[string]func(*processor.Config, *CLI){
	"sample-rate":      func(c *processor.Config, a *CLI) { c.TargetSampleRate = a.SampleRate },
	"block-ms":         func(c *processor.Config, a *CLI) { c.BlockDurationMs = a.BlockMs },
	"overlap":          func(c *processor.Config, a *CLI) { c.OverlapRatio = a.Overlap },
	"gating-threshold": func(c *processor.Config, a *CLI) { c.GatingThresholdDB = a.GatingThreshold },
	"workers":          func(c *processor.Config, a *CLI) { c.Workers = a.Workers },
	"bit-depth":        func(c *processor.Config, a *CLI) { c.OutputBitDepth = a.BitDepth },
}

// fileOutcome is what the worker goroutine hands back for the final summary
type fileOutcome struct {
	input  string
	start  time.Time
	end    time.Time
	result *processor.Result
	err    error
}

func main() {
	cliArgs := &CLI{}
	ctx := kong.Parse(cliArgs,
		kong.Name("noisegrab"),
		kong.Description("Extract a noise profile from the quietest parts of a recording"),
		kong.UsageOnError(),
		kong.Vars{
			"version": version,
		},
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true})),
	)

	// Handle version flag
	if cliArgs.Version {
		cli.PrintVersion(version)
		os.Exit(0)
	}

	// Validate input
	if len(cliArgs.Files) == 0 {
		cli.PrintError("No input files specified")
		ctx.PrintUsage(false)
		os.Exit(1)
	}
	if cliArgs.Output != "" && len(cliArgs.Files) > 1 {
		cli.PrintError("--output can only be used with a single input file")
		os.Exit(1)
	}

	config, err := buildConfig(ctx, cliArgs)
	if err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}

	mainsHz, err := mains.Resolve(cliArgs.Mains)
	if err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}

	logger, err := newLogger(cliArgs.Debug, cliArgs.DebugLog)
	if err != nil {
		cli.PrintError(fmt.Sprintf("cannot open debug log: %v", err))
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting",
		zap.String("version", version),
		zap.Strings("files", cliArgs.Files),
		zap.Int("mains_hz", mainsHz),
		zap.Int("frame_size", config.FrameSize()),
		zap.Int("hop_size", config.HopSize()),
	)

	if config.GatingThresholdIgnored() {
		cli.PrintWarning(fmt.Sprintf("gating threshold %.1f dB is accepted but does not affect frame selection", config.GatingThresholdDB))
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	extractor := processor.NewExtractor(config, logger)

	var outcomes []fileOutcome
	if cliArgs.Plain {
		outcomes = runPlain(runCtx, extractor, cliArgs)
	} else {
		outcomes, err = runInteractive(runCtx, stop, extractor, cliArgs, logger)
		if err != nil {
			cli.PrintError(fmt.Sprintf("UI error: %v", err))
			os.Exit(1)
		}
	}

	failed := 0
	for _, o := range outcomes {
		if o.err != nil {
			failed++
			reportFailure(o)
			logger.Error("extraction failed", zap.String("input", o.input), zap.Error(o.err))
		} else {
			fmt.Println()
			logging.DisplaySummary(os.Stdout, o.result, mainsHz)
		}

		// Runs that found no silent frames still carry their analysis
		if cliArgs.Report && o.result != nil {
			writeReport(o, mainsHz, logger)
		}
	}

	if failed > 0 || len(outcomes) < len(cliArgs.Files) {
		_ = logger.Sync()
		os.Exit(1)
	}
}

// buildConfig layers defaults, the optional YAML file and explicitly set
// flags, in that order.
func buildConfig(ctx *kong.Context, cliArgs *CLI) (*processor.Config, error) {
	config := processor.DefaultConfig()
	if cliArgs.Config != "" {
		loaded, err := processor.LoadConfig(cliArgs.Config)
		if err != nil {
			return nil, err
		}
		config = loaded
	}

	for _, path := range ctx.Path {
		if path.Flag == nil {
			continue
		}
		if apply, ok := flagFields[path.Flag.Name]; ok {
			apply(config, cliArgs)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// newLogger returns a JSON file logger when debugging, otherwise a no-op
func newLogger(debug bool, path string) (*zap.Logger, error) {
	if !debug {
		return zap.NewNop(), nil
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	cfg.Sampling = nil
	return cfg.Build()
}

// outputFor returns the destination for an input, or "" for a dry run
func outputFor(cliArgs *CLI, input string) string {
	switch {
	case cliArgs.DryRun:
		return ""
	case cliArgs.Output != "":
		return cliArgs.Output
	default:
		return processor.OutputPath(input)
	}
}

func extract(ctx context.Context, e *processor.Extractor, cliArgs *CLI, input string, progress processor.ProgressFunc) fileOutcome {
	o := fileOutcome{input: input, start: time.Now()}
	o.result, o.err = e.Run(ctx, input, outputFor(cliArgs, input), progress)
	o.end = time.Now()
	return o
}

// runPlain processes files sequentially, printing one line per stage
func runPlain(ctx context.Context, e *processor.Extractor, cliArgs *CLI) []fileOutcome {
	outcomes := make([]fileOutcome, 0, len(cliArgs.Files))
	for _, input := range cliArgs.Files {
		if ctx.Err() != nil {
			break
		}
		var mu sync.Mutex
		last := processor.Stage(-1)
		progress := func(stage processor.Stage, _ float64) {
			mu.Lock()
			defer mu.Unlock()
			if stage != last {
				last = stage
				cli.PrintStage(input, stage.String())
			}
		}
		outcomes = append(outcomes, extract(ctx, e, cliArgs, input, progress))
	}
	return outcomes
}

// runInteractive drives the Bubbletea UI while files are processed in the
// background. Quitting the UI cancels any extraction still running.
func runInteractive(ctx context.Context, cancel context.CancelFunc, e *processor.Extractor, cliArgs *CLI, logger *zap.Logger) ([]fileOutcome, error) {
	model := ui.NewModel(cliArgs.Files, logger)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	outcomes := make([]fileOutcome, 0, len(cliArgs.Files))
	done := make(chan struct{})

	go func() {
		defer close(done)
		for i, input := range cliArgs.Files {
			if ctx.Err() != nil {
				break
			}

			logger.Debug("sending FileStartMsg", zap.Int("index", i), zap.String("input", input))
			p.Send(ui.FileStartMsg{
				FileIndex:  i,
				OutputPath: outputFor(cliArgs, input),
			})

			ph := &progressHandler{p: p}
			o := extract(ctx, e, cliArgs, input, ph.callback)
			outcomes = append(outcomes, o)

			msg := ui.FileCompleteMsg{FileIndex: i, Error: o.err}
			if o.err == nil {
				msg.Segments = o.result.SegmentCount()
				msg.FrameCount = o.result.Analysis.Geometry.FrameCount
				msg.OutputSeconds = o.result.OutputSeconds()
			}
			p.Send(msg)
		}

		logger.Debug("sending AllCompleteMsg")
		p.Send(ui.AllCompleteMsg{})
	}()

	_, err := p.Run()
	cancel()
	<-done
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return outcomes, err
	}
	return outcomes, nil
}

// progressHandler forwards processor progress to the UI. Frame scoring reports
// from several goroutines, so updates are serialised and only sent when the
// stage changes or progress has moved by at least a percent.
type progressHandler struct {
	p *tea.Program

	mu    sync.Mutex
	stage processor.Stage
	last  float64
	sent  bool
}

func (ph *progressHandler) callback(stage processor.Stage, progress float64) {
	ph.mu.Lock()
	defer ph.mu.Unlock()

	if ph.sent && stage == ph.stage && progress < 1.0 && progress-ph.last < 0.01 {
		return
	}
	ph.sent = true
	ph.stage = stage
	ph.last = progress

	ph.p.Send(ui.ProgressMsg{
		Stage:    stage,
		Progress: progress,
	})
}

// writeReport saves the .log report for one file, warning on failure
func writeReport(o fileOutcome, mainsHz int, logger *zap.Logger) {
	data := logging.ReportData{
		InputPath:  o.input,
		OutputPath: o.result.OutputPath,
		StartTime:  o.start,
		EndTime:    o.end,
		Result:     o.result,
		MainsHz:    mainsHz,
	}
	if err := logging.GenerateReport(data); err != nil {
		cli.PrintWarning(fmt.Sprintf("failed to write report for %s: %v", o.input, err))
		logger.Warn("report failed", zap.String("input", o.input), zap.Error(err))
	}
}

// reportFailure prints a specific message for the failures users can act on
func reportFailure(o fileOutcome) {
	var silence *processor.InsufficientSilenceError
	switch {
	case errors.As(o.err, &silence):
		cli.PrintError(fmt.Sprintf("%s: no frame is quiet enough for a noise profile (quietest is %.1f dB, cutoff %.1f dB). Record a few seconds of room tone and try again.",
			o.input, silence.QuietestDB, silence.CutoffDB))
	case errors.Is(o.err, context.Canceled):
		cli.PrintError(fmt.Sprintf("%s: cancelled", o.input))
	default:
		cli.PrintError(fmt.Sprintf("%s: %v", o.input, o.err))
	}
}
