package encoding

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"tracksift/internal/logging"
	"tracksift/internal/services"
	"tracksift/internal/tracks"
)

// LockFileName guards an output directory while a transcode writes to it.
const LockFileName = ".tracksift.lock"

const stderrTailLines = 8

// CommandRunner executes binary with args, writing diagnostics to stderr.
type CommandRunner func(ctx context.Context, binary string, args []string, stderr io.Writer) error

// ProgressReporter receives progress for one transcode.
type ProgressReporter interface {
	Start(path string, totalFrames int64)
	Update(snapshot Snapshot)
	Finish(err error)
}

// Job describes one file to transcode.
type Job struct {
	Input       string
	OutputDir   string
	Selection   tracks.Selection
	Options     Options
	TotalFrames int64
}

// Result summarizes a finished transcode.
type Result struct {
	Output   string
	Command  string
	Last     Snapshot
	Duration time.Duration
}

// TranscodeError reports a failed transcode of Path.
type TranscodeError struct {
	Path     string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *TranscodeError) Error() string {
	if e == nil {
		return ""
	}
	msg := fmt.Sprintf("transcode %s: %v", e.Path, e.Err)
	if e.ExitCode > 0 {
		msg = fmt.Sprintf("transcode %s: ffmpeg exited with code %d", e.Path, e.ExitCode)
	}
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *TranscodeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Transcoder runs synthesized ffmpeg commands.
type Transcoder struct {
	binary string
	logger *slog.Logger
	run    CommandRunner
}

// TranscoderOption customizes a Transcoder.
type TranscoderOption func(*Transcoder)

// WithCommandRunner injects a custom command runner (primarily for tests).
func WithCommandRunner(r CommandRunner) TranscoderOption {
	return func(t *Transcoder) {
		if r != nil {
			t.run = r
		}
	}
}

// NewTranscoder returns a Transcoder for the ffmpeg binary.
func NewTranscoder(binary string, logger *slog.Logger, opts ...TranscoderOption) *Transcoder {
	if strings.TrimSpace(binary) == "" {
		binary = "ffmpeg"
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	t := &Transcoder{
		binary: binary,
		logger: logging.NewComponentLogger(logger, "transcoder"),
		run:    execCommand,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Command returns the display command line for job without running it.
func (t *Transcoder) Command(job Job) (string, error) {
	args, err := BuildArgs(job.Input, job.OutputDir, job.Selection, job.Options)
	if err != nil {
		return "", err
	}
	return CommandLine(t.binary, args), nil
}

// Transcode builds and runs the command for job. Progress lines are parsed
// as they arrive and forwarded to reporter, which may be nil.
func (t *Transcoder) Transcode(ctx context.Context, job Job, reporter ProgressReporter) (Result, error) {
	args, err := BuildArgs(job.Input, job.OutputDir, job.Selection, job.Options)
	if err != nil {
		return Result{}, err
	}
	result := Result{
		Output:  OutputPath(job.Input, job.OutputDir),
		Command: CommandLine(t.binary, args),
	}
	logger := logging.WithContext(services.WithFile(ctx, job.Input), t.logger)

	if err := os.MkdirAll(job.OutputDir, 0o755); err != nil {
		return result, &TranscodeError{
			Path: job.Input,
			Err:  services.Wrap(services.ErrExternalTool, "transcode", "create output dir", job.OutputDir, err),
		}
	}
	lock := flock.New(filepath.Join(job.OutputDir, LockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return result, &TranscodeError{
			Path: job.Input,
			Err:  services.Wrap(services.ErrExternalTool, "transcode", "lock output dir", job.OutputDir, err),
		}
	}
	if !locked {
		return result, &TranscodeError{
			Path: job.Input,
			Err:  services.Wrap(services.ErrExternalTool, "transcode", "lock output dir", "another transcode is writing to "+job.OutputDir, nil),
		}
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("failed to release output lock", logging.Error(err))
		}
		_ = os.Remove(lock.Path())
	}()

	logger.Info("transcode started",
		logging.String("output", result.Output),
		logging.String("command", result.Command),
		logging.Int64("total_frames", job.TotalFrames),
	)
	if reporter != nil {
		reporter.Start(job.Input, job.TotalFrames)
	}

	started := time.Now()
	last, tail, runErr := t.stream(ctx, args, reporter)
	result.Last = last
	result.Duration = time.Since(started)

	if runErr != nil {
		tErr := &TranscodeError{
			Path:   job.Input,
			Stderr: strings.Join(tail, " | "),
			Err:    services.Wrap(services.ErrExternalTool, "transcode", "ffmpeg", "", runErr),
		}
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			tErr.ExitCode = exitErr.ExitCode()
		}
		if reporter != nil {
			reporter.Finish(tErr)
		}
		logging.ErrorWithContext(logger, "transcode failed", "transcode_failed",
			logging.Error(tErr),
			logging.String(logging.FieldErrorHint, "re-run the logged command to see the full ffmpeg output"),
		)
		return result, tErr
	}
	if reporter != nil {
		reporter.Finish(nil)
	}
	attrs := []logging.Attr{
		logging.String("output", result.Output),
		logging.Duration("duration", result.Duration),
	}
	for _, key := range []string{"fps", "speed"} {
		if v, ok := last.Float(key); ok {
			attrs = append(attrs, logging.Float64(key, v))
		}
	}
	logger.Info("transcode completed", logging.Args(attrs...)...)
	return result, nil
}

// stream runs the command and consumes its diagnostic output as line events.
// It returns the latest progress snapshot and the last non-progress lines.
func (t *Transcoder) stream(ctx context.Context, args []string, reporter ProgressReporter) (Snapshot, []string, error) {
	pr, pw := io.Pipe()
	lines := streamLines(pr)
	done := make(chan error, 1)
	go func() {
		err := t.run(ctx, t.binary, args, pw)
		_ = pw.Close()
		done <- err
	}()

	var last Snapshot
	tail := make([]string, 0, stderrTailLines)
	for line := range lines {
		if IsProgressLine(line) {
			last = ParseProgress(line)
			if reporter != nil {
				reporter.Update(last)
			}
			continue
		}
		if len(tail) == stderrTailLines {
			tail = tail[1:]
		}
		tail = append(tail, line)
	}
	return last, tail, <-done
}

func execCommand(ctx context.Context, binary string, args []string, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	cmd.Stderr = stderr
	return cmd.Run()
}
