package workflow

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"tracksift/internal/fsnav"
	"tracksift/internal/logging"
	"tracksift/internal/services"
)

// Navigation labels.
const (
	ParentDirectory  = ".. (Parent Directory)"
	CurrentDirectory = "Select Current Directory"
)

// Target is where navigation ended: a directory to scan or a single file.
type Target struct {
	Dir  string
	File string
}

// navigate walks from a volume root to a directory or file. ".." at the
// volume root goes back to volume selection.
func (p *Pipeline) navigate(ctx context.Context) (Target, error) {
	volume := ""
	dir := ""
	for {
		if dir == "" {
			selected, err := p.selectVolume(ctx)
			if err != nil {
				return Target{}, err
			}
			volume, dir = selected, selected
		}

		entries, err := p.browser.List(dir)
		if err != nil {
			logging.WarnWithContext(p.logger, "directory listing failed", "list_failed",
				logging.String("dir", dir),
				logging.Error(err),
				logging.String(logging.FieldImpact, "returned to parent directory"),
			)
			p.printer.Failure("Cannot open %s: %v", dir, err)
			if dir == volume {
				return Target{}, services.Wrap(services.ErrValidation, "navigate", "list", "cannot list "+dir, err)
			}
			dir = filepath.Dir(dir)
			continue
		}

		labels := make([]string, 0, len(entries)+2)
		labels = append(labels, ParentDirectory, CurrentDirectory)
		for _, e := range entries {
			labels = append(labels, entryLabel(e))
		}

		idx, err := p.chooser.Select(ctx, fmt.Sprintf("Select a directory (%s)", dir), labels, 0)
		if err != nil {
			return Target{}, err
		}
		switch {
		case idx < 0 || idx >= len(labels):
			return Target{}, services.Wrap(services.ErrValidation, "navigate", "select", "selection out of range", nil)
		case idx == 0:
			if dir == volume || filepath.Dir(dir) == dir {
				dir = ""
			} else {
				dir = filepath.Dir(dir)
			}
			continue
		case idx == 1:
			p.logger.Info("directory selected", logging.String("dir", dir))
			return Target{Dir: dir}, nil
		}
		entry := entries[idx-2]
		if entry.IsDir {
			dir = entry.Path
			continue
		}
		p.logger.Info("file selected", logging.String(logging.FieldFile, entry.Path))
		return Target{File: entry.Path}, nil
	}
}

func (p *Pipeline) selectVolume(ctx context.Context) (string, error) {
	volumes, err := p.browser.Volumes()
	if err != nil {
		return "", services.Wrap(services.ErrConfiguration, "navigate", "volumes", "cannot list drives", err)
	}
	if len(volumes) == 0 {
		return "", services.Wrap(services.ErrConfiguration, "navigate", "volumes", "no drives found", errors.New("empty mount table"))
	}
	if len(volumes) == 1 {
		return volumes[0].Path, nil
	}
	labels := make([]string, len(volumes))
	for i, v := range volumes {
		labels[i] = volumeLabel(v)
	}
	idx, err := p.chooser.Select(ctx, "Select a drive", labels, 0)
	if err != nil {
		return "", err
	}
	if idx < 0 || idx >= len(volumes) {
		return "", services.Wrap(services.ErrValidation, "navigate", "volumes", "selection out of range", nil)
	}
	return volumes[idx].Path, nil
}

func volumeLabel(v fsnav.Volume) string {
	if v.Total == 0 {
		return v.Path
	}
	return fmt.Sprintf("%s (%s free of %s)", v.Path, humanize.Bytes(v.Free), humanize.Bytes(v.Total))
}

func entryLabel(e fsnav.Entry) string {
	if e.IsDir {
		return "<" + e.Name + ">"
	}
	return e.Name
}
