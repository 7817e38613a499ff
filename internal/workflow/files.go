package workflow

import (
	"context"

	"golang.org/x/sync/errgroup"

	"tracksift/internal/display"
	"tracksift/internal/fsnav"
	"tracksift/internal/logging"
	"tracksift/internal/prompt"
	"tracksift/internal/services"
)

// scan lists the candidate files of dir, asking which extensions to keep
// when more than one is present.
func (p *Pipeline) scan(ctx context.Context, dir string) ([]fsnav.Entry, error) {
	files, exts, err := p.browser.ScanFiles(dir)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "scan", "list", "cannot scan "+dir, err)
	}
	if len(exts) <= 1 {
		return files, nil
	}
	options := make([]prompt.Option, len(exts))
	for i, ext := range exts {
		options[i] = prompt.Option{Label: ext, Selected: true}
	}
	picked, err := p.chooser.MultiSelect(ctx, "Select file extensions to process", options)
	if err != nil {
		return nil, err
	}
	chosen := make([]string, 0, len(picked))
	for _, i := range picked {
		if i >= 0 && i < len(exts) {
			chosen = append(chosen, exts[i])
		}
	}
	p.logger.Debug("extensions selected", logging.Any("extensions", chosen))
	return fsnav.FilterByExtension(files, chosen), nil
}

// selectFiles probes every candidate for its label and returns the paths the
// user keeps.
func (p *Pipeline) selectFiles(ctx context.Context, candidates []fsnav.Entry) ([]string, error) {
	labels := p.fileLabels(ctx, candidates)
	options := make([]prompt.Option, len(candidates))
	for i := range candidates {
		options[i] = prompt.Option{Label: labels[i], Selected: true}
	}
	picked, err := p.chooser.MultiSelect(ctx, "Select files to process", options)
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(picked))
	for _, i := range picked {
		if i >= 0 && i < len(candidates) {
			paths = append(paths, candidates[i].Path)
		}
	}
	return paths, nil
}

func (p *Pipeline) fileLabels(ctx context.Context, candidates []fsnav.Entry) []string {
	labels := make([]string, len(candidates))
	colorize := p.printer.Colorize()
	var g errgroup.Group
	g.SetLimit(p.rules.Concurrency())
	for i, entry := range candidates {
		g.Go(func() error {
			labels[i] = display.FileLabel(p.fileInfo(ctx, entry), colorize)
			return nil
		})
	}
	_ = g.Wait()
	return labels
}

// fileInfo describes entry for the selection list. The container size from
// the probe is used when the directory listing has none.
func (p *Pipeline) fileInfo(ctx context.Context, entry fsnav.Entry) display.FileInfo {
	info := display.FileInfo{Name: entry.Name, Size: entry.Size}
	result, err := p.prober.Probe(ctx, entry.Path)
	if err != nil {
		p.logger.Debug("probe for file label failed",
			logging.String(logging.FieldFile, entry.Path),
			logging.Error(err),
		)
		return info
	}
	if info.Size <= 0 {
		info.Size = result.SizeBytes()
	}
	if video, ok := result.PrimaryVideo(); ok {
		info.Codec = video.CodecName
		info.Width = video.Width
		info.Height = video.Height
	}
	return info
}
