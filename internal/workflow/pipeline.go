package workflow

import (
	"context"
	"log/slog"
	"os"
	"time"

	"tracksift/internal/config"
	"tracksift/internal/display"
	"tracksift/internal/encoding"
	"tracksift/internal/fsnav"
	"tracksift/internal/gpu"
	"tracksift/internal/history"
	"tracksift/internal/logging"
	"tracksift/internal/prompt"
	"tracksift/internal/tracks"
)

// Browser lists volumes and directories.
type Browser interface {
	Volumes() ([]fsnav.Volume, error)
	List(dir string) ([]fsnav.Entry, error)
	ScanFiles(dir string) ([]fsnav.Entry, []string, error)
}

// Transcoder runs one synthesized transcode.
type Transcoder interface {
	Transcode(ctx context.Context, job encoding.Job, reporter encoding.ProgressReporter) (encoding.Result, error)
}

// GPUDetector reports the hardware encoder vendor, or "".
type GPUDetector interface {
	Vendor(ctx context.Context) string
}

// History records transcode attempts.
type History interface {
	Begin(ctx context.Context, entry history.Entry) (int64, error)
	Finish(ctx context.Context, id int64, failure, message string, at time.Time) error
}

// ReporterFactory returns a progress reporter for one transcode.
type ReporterFactory func() encoding.ProgressReporter

// Pipeline is one interactive run.
type Pipeline struct {
	cfg        *config.Config
	logger     *slog.Logger
	runID      string
	rules      tracks.Rules
	chooser    prompt.Chooser
	browser    Browser
	prober     tracks.Prober
	transcoder Transcoder
	gpu        GPUDetector
	history    History
	printer    *display.Printer
	reporter   ReporterFactory
	now        func() time.Time
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithChooser replaces the terminal prompts.
func WithChooser(c prompt.Chooser) Option {
	return func(p *Pipeline) { p.chooser = c }
}

// WithBrowser replaces filesystem browsing.
func WithBrowser(b Browser) Option {
	return func(p *Pipeline) { p.browser = b }
}

// WithProber replaces ffprobe.
func WithProber(pr tracks.Prober) Option {
	return func(p *Pipeline) { p.prober = pr }
}

// WithTranscoder replaces the ffmpeg runner.
func WithTranscoder(t Transcoder) Option {
	return func(p *Pipeline) { p.transcoder = t }
}

// WithGPUDetector replaces GPU vendor detection.
func WithGPUDetector(g GPUDetector) Option {
	return func(p *Pipeline) { p.gpu = g }
}

// WithHistory records transcodes in h.
func WithHistory(h History) Option {
	return func(p *Pipeline) { p.history = h }
}

// WithPrinter replaces terminal output.
func WithPrinter(pr *display.Printer) Option {
	return func(p *Pipeline) { p.printer = pr }
}

// WithReporter replaces the progress bar.
func WithReporter(f ReporterFactory) Option {
	return func(p *Pipeline) { p.reporter = f }
}

// WithClock overrides time.Now (used by tests).
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// New constructs a pipeline wired to the real terminal, filesystem and tools.
func New(cfg *config.Config, logger *slog.Logger, runID string, opts ...Option) *Pipeline {
	if logger == nil {
		logger = logging.NewNop()
	}
	p := &Pipeline{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "workflow"),
		runID:  runID,
		rules:  tracks.Rules{PreferSubtitleKeywords: cfg.Selection.PreferSubtitleKeywords},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.chooser == nil {
		p.chooser = prompt.NewSurvey()
	}
	if p.browser == nil {
		p.browser = fsnav.OS{}
	}
	if p.prober == nil {
		p.prober = tracks.FFprobe{Binary: cfg.FFprobeBinary()}
	}
	if p.transcoder == nil {
		p.transcoder = encoding.NewTranscoder(cfg.FFmpegBinary(), logger)
	}
	if p.gpu == nil {
		p.gpu = gpu.Detector{}
	}
	if p.printer == nil {
		p.printer = display.NewPrinter(os.Stdout)
	}
	if p.reporter == nil {
		printer := p.printer
		p.reporter = func() encoding.ProgressReporter {
			return display.NewBarReporter(printer.Writer(), printer.Colorize())
		}
	}
	return p
}

// Summary counts the outcome of a run.
type Summary struct {
	Selected  int
	Analyzed  int
	Processed int
	Failed    int
	Aborted   bool
}
