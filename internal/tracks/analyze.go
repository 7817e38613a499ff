package tracks

import (
	"context"
	"errors"
	"runtime"

	"golang.org/x/sync/errgroup"

	"tracksift/internal/media/ffprobe"
)

// Prober inspects a media file.
type Prober interface {
	Probe(ctx context.Context, path string) (ffprobe.Result, error)
}

// ProberFunc adapts a function to the Prober interface.
type ProberFunc func(ctx context.Context, path string) (ffprobe.Result, error)

// Probe implements Prober.
func (f ProberFunc) Probe(ctx context.Context, path string) (ffprobe.Result, error) {
	return f(ctx, path)
}

// FFprobe probes files with the ffprobe binary.
type FFprobe struct {
	Binary string
}

// Probe implements Prober.
func (p FFprobe) Probe(ctx context.Context, path string) (ffprobe.Result, error) {
	return ffprobe.Inspect(ctx, p.Binary, path)
}

// FileTracks is the analysis outcome for one file.
type FileTracks struct {
	Path        string
	Probe       ffprobe.Result
	Descriptors []Descriptor
	Selection   Selection
}

// TotalFrames is the frame estimate used for progress, or 0 when unknown.
func (f FileTracks) TotalFrames() int64 {
	return f.Probe.TotalFrames()
}

// WithSelection returns a copy of f carrying selection.
func (f FileTracks) WithSelection(selection Selection) FileTracks {
	f.Selection = selection
	return f
}

// Analyze probes, normalizes and selects tracks for one file.
func Analyze(ctx context.Context, prober Prober, path string) (FileTracks, error) {
	return Rules{}.Analyze(ctx, prober, path)
}

// Analyze probes, normalizes and selects tracks for one file using r.
func (r Rules) Analyze(ctx context.Context, prober Prober, path string) (FileTracks, error) {
	if prober == nil {
		return FileTracks{}, analysisFailure(path, "probe", errors.New("prober unavailable"))
	}
	result, err := prober.Probe(ctx, path)
	if err != nil {
		return FileTracks{}, analysisFailure(path, "probe", err)
	}
	descriptors, err := Normalize(path, result.Streams)
	if err != nil {
		return FileTracks{}, err
	}
	return FileTracks{
		Path:        path,
		Probe:       result,
		Descriptors: descriptors,
		Selection:   r.Select(descriptors),
	}, nil
}

// Concurrency is the number of files probed at once.
func (r Rules) Concurrency() int {
	if r.ProbeLimit > 0 {
		return r.ProbeLimit
	}
	return runtime.NumCPU()
}

// AnalyzeAll analyzes every path concurrently, at most Concurrency at a
// time. Successful results and failures are both returned in input order; a
// failed file never aborts the others.
func (r Rules) AnalyzeAll(ctx context.Context, prober Prober, paths []string) ([]FileTracks, []error) {
	type outcome struct {
		tracks FileTracks
		err    error
	}
	outcomes := make([]outcome, len(paths))
	var g errgroup.Group
	g.SetLimit(r.Concurrency())
	for i, path := range paths {
		g.Go(func() error {
			tracks, err := r.Analyze(ctx, prober, path)
			outcomes[i] = outcome{tracks: tracks, err: err}
			return nil
		})
	}
	_ = g.Wait()

	results := make([]FileTracks, 0, len(paths))
	var failures []error
	for _, o := range outcomes {
		if o.err != nil {
			failures = append(failures, o.err)
			continue
		}
		results = append(results, o.tracks)
	}
	return results, failures
}
