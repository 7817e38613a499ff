package workflow

import (
	"context"
	"path/filepath"

	"tracksift/internal/encoding"
	"tracksift/internal/history"
	"tracksift/internal/logging"
	"tracksift/internal/services"
	"tracksift/internal/tracks"
)

// process transcodes one file and records the attempt. The returned error
// is already reported to the user.
func (p *Pipeline) process(ctx context.Context, file tracks.FileTracks, opts encoding.Options) error {
	ctx = services.WithStage(services.WithFile(ctx, file.Path), "transcode")
	logger := logging.WithContext(ctx, p.logger)

	job := encoding.Job{
		Input:       file.Path,
		OutputDir:   p.cfg.OutputDir(file.Path),
		Selection:   file.Selection,
		Options:     opts,
		TotalFrames: file.TotalFrames(),
	}
	// Invalid options are a programming error; nothing is run or recorded.
	args, err := encoding.BuildArgs(job.Input, job.OutputDir, job.Selection, job.Options)
	if err != nil {
		return err
	}

	historyID := p.beginHistory(ctx, job, encoding.CommandLine(p.cfg.FFmpegBinary(), args))
	_, err = p.transcoder.Transcode(ctx, job, p.reporter())
	p.finishHistory(ctx, historyID, err)

	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logging.ErrorWithContext(logger, "file processing failed", "file_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "file skipped; batch continues"),
		)
		p.printer.Failure("Error processing %s: %v", file.Path, err)
		return err
	}
	p.printer.Success("Processed %s successfully.", filepath.Base(file.Path))
	return nil
}

func (p *Pipeline) beginHistory(ctx context.Context, job encoding.Job, command string) int64 {
	if p.history == nil {
		return 0
	}
	id, err := p.history.Begin(ctx, history.Entry{
		RunID:          p.runID,
		SourcePath:     job.Input,
		OutputPath:     encoding.OutputPath(job.Input, job.OutputDir),
		Command:        command,
		VideoCodec:     string(job.Options.Video),
		HardwareVendor: string(job.Options.Vendor),
		StartedAt:      p.now(),
	})
	if err != nil {
		logging.WarnWithContext(p.logger, "failed to record transcode start", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "transcode not listed in history"),
		)
		return 0
	}
	return id
}

func (p *Pipeline) finishHistory(ctx context.Context, id int64, runErr error) {
	if p.history == nil || id == 0 {
		return
	}
	message := ""
	if runErr != nil {
		message = runErr.Error()
	}
	// Record the outcome even if the run context was cancelled.
	if err := p.history.Finish(context.WithoutCancel(ctx), id, services.Failure(runErr), message, p.now()); err != nil {
		logging.WarnWithContext(p.logger, "failed to record transcode result", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "history shows the transcode as running"),
		)
	}
}
