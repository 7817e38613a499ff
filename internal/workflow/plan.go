package workflow

import (
	"context"

	"tracksift/internal/encoding"
	"tracksift/internal/logging"
	"tracksift/internal/tracks"
)

// FilePlan is the automatic selection and synthesized command for one file.
type FilePlan struct {
	Tracks  tracks.FileTracks
	Command string
}

// Plan analyzes paths without prompting and returns the command each file
// would run with opts. Files that fail analysis are returned as errors.
func (p *Pipeline) Plan(ctx context.Context, paths []string, opts encoding.Options) ([]FilePlan, []error) {
	if err := opts.Validate(); err != nil {
		return nil, []error{err}
	}
	analyzed, failures := p.rules.AnalyzeAll(ctx, p.prober, paths)
	plans := make([]FilePlan, 0, len(analyzed))
	for _, f := range analyzed {
		args, err := encoding.BuildArgs(f.Path, p.cfg.OutputDir(f.Path), f.Selection, opts)
		if err != nil {
			failures = append(failures, err)
			continue
		}
		for _, d := range f.Selection {
			attrs := logging.DecisionAttrs("track_keep", d.Action(), string(d.Reason))
			p.logger.Debug("track decision", logging.Args(append(attrs,
				logging.String(logging.FieldFile, f.Path),
				logging.String("track", d.Label()))...)...)
		}
		plans = append(plans, FilePlan{
			Tracks:  f,
			Command: encoding.CommandLine(p.cfg.FFmpegBinary(), args),
		})
	}
	return plans, failures
}
