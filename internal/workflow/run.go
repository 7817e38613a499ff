package workflow

import (
	"context"
	"errors"

	"tracksift/internal/encoding"
	"tracksift/internal/logging"
	"tracksift/internal/preflight"
	"tracksift/internal/services"
	"tracksift/internal/tracks"
)

// Messages printed at the end of a run.
const (
	ProceedQuestion = "Do you want to proceed with processing?"
	AbortedMessage  = "Processing aborted by user."
)

// Run executes the full interactive pipeline.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	var summary Summary

	target, err := p.navigate(ctx)
	if err != nil {
		return summary, err
	}

	var files []string
	if target.File != "" {
		files = []string{target.File}
	} else {
		candidates, err := p.scan(ctx, target.Dir)
		if err != nil {
			return summary, err
		}
		if len(candidates) == 0 {
			p.printer.Warn("No files found in %s.", target.Dir)
			return summary, nil
		}
		files, err = p.selectFiles(ctx, candidates)
		if err != nil {
			return summary, err
		}
	}
	summary.Selected = len(files)
	if len(files) == 0 {
		p.printer.Warn("No files selected.")
		return summary, nil
	}
	p.logger.Info("files selected", logging.Int("count", len(files)))

	analyzed := p.analyze(ctx, files)
	summary.Analyzed = len(analyzed)
	if len(analyzed) == 0 {
		p.printer.Warn("No files could be analyzed.")
		return summary, nil
	}

	review, err := tracks.Review(ctx, p.chooser, analyzed, p.printer.Tracks)
	if err != nil {
		return summary, err
	}
	p.logReview(review)

	opts, err := p.configure(ctx)
	if err != nil {
		return summary, err
	}

	proceed, err := p.chooser.Confirm(ctx, ProceedQuestion, true)
	if err != nil {
		return summary, err
	}
	if !proceed {
		p.printer.Warn(AbortedMessage)
		summary.Aborted = true
		return summary, nil
	}

	for _, failed := range preflight.Failed(preflight.CheckSources(files)) {
		logging.WarnWithContext(p.logger, "source directory not writable", "preflight_failed",
			logging.String("detail", failed.Detail),
			logging.String(logging.FieldImpact, "transcodes into this directory will fail"),
		)
		p.printer.Warn("%s: %s", failed.Name, failed.Detail)
	}

	err = p.processAll(ctx, review.Files, opts, &summary)
	return summary, err
}

// processAll transcodes files in order. Per-file failures are counted and
// the batch continues; cancellation and invalid encode options stop it.
func (p *Pipeline) processAll(ctx context.Context, files []tracks.FileTracks, opts encoding.Options, summary *Summary) error {
	for _, file := range files {
		err := p.process(ctx, file, opts)
		switch {
		case err == nil:
			summary.Processed++
			continue
		case ctx.Err() != nil:
			return ctx.Err()
		case errors.Is(err, services.ErrCancelled), errors.Is(err, encoding.ErrInvalidOptions):
			return err
		}
		summary.Failed++
	}
	return nil
}

func (p *Pipeline) analyze(ctx context.Context, files []string) []tracks.FileTracks {
	results, failures := p.rules.AnalyzeAll(ctx, p.prober, files)
	for _, err := range failures {
		var analysisErr *tracks.AnalysisError
		path := ""
		if errors.As(err, &analysisErr) {
			path = analysisErr.Path
		}
		logging.WarnWithContext(p.logger, "file analysis failed", "analysis_failed",
			logging.String(logging.FieldFile, path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "verify the file with ffprobe"),
			logging.String(logging.FieldImpact, "file skipped"),
		)
		p.printer.Failure("Error analyzing %s: %v", path, err)
	}
	return results
}

func (p *Pipeline) logReview(review tracks.ReviewResult) {
	for _, f := range review.Files {
		for _, d := range f.Selection {
			if d.Type == tracks.StreamVideo {
				continue
			}
			attrs := logging.DecisionAttrs("track_keep", d.Action(), string(d.Reason))
			attrs = append(attrs, logging.String(logging.FieldFile, f.Path), logging.String("track", d.Label()))
			p.logger.Debug("track decision", logging.Args(attrs...)...)
		}
	}
	p.logger.Info("track review finalized",
		logging.Int("files", len(review.Files)),
		logging.Int("override_rounds", len(review.Rounds)),
	)
}

var codecChoices = []struct {
	label string
	codec encoding.VideoCodec
}{
	{"No encoding", encoding.VideoCopy},
	{"H.264 (AVC)", encoding.VideoH264},
	{"H.265 (HEVC)", encoding.VideoH265},
}

func (p *Pipeline) configure(ctx context.Context) (encoding.Options, error) {
	labels := make([]string, len(codecChoices))
	for i, c := range codecChoices {
		labels[i] = c.label
	}
	idx, err := p.chooser.Select(ctx, "Select video encoding option:", labels, 0)
	if err != nil {
		return encoding.Options{}, err
	}
	if idx < 0 || idx >= len(codecChoices) {
		idx = 0
	}
	opts := encoding.Options{Video: codecChoices[idx].codec, Vendor: encoding.VendorNone}
	if opts.Video == encoding.VideoCopy {
		return opts, nil
	}
	vendor := p.gpu.Vendor(ctx)
	if vendor == "" {
		return opts, nil
	}
	useGPU, err := p.chooser.Confirm(ctx, "Use GPU ("+vendor+") for encoding?", false)
	if err != nil {
		return encoding.Options{}, err
	}
	if useGPU {
		opts.Vendor = encoding.ParseVendor(vendor)
	}
	p.logger.Info("encode options selected",
		logging.String("video_codec", string(opts.Video)),
		logging.String("hardware_vendor", string(opts.Vendor)),
	)
	return opts, nil
}
