package fsnav

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Entry is one item of a directory listing.
type Entry struct {
	Name  string
	Path  string
	IsDir bool
	Size  int64
}

// OS lists the local filesystem.
type OS struct {
	// MountTable overrides DefaultMountTable.
	MountTable string
}

// List returns the non-junk entries of dir: directories first, then files,
// each group sorted by name case-insensitively. Symlinks are resolved so a
// link to a directory is browsable.
func (o OS) List(dir string) ([]Entry, error) {
	items, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}
	var dirs, files []Entry
	for _, item := range items {
		if IsJunk(item.Name()) {
			continue
		}
		path := filepath.Join(dir, item.Name())
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		entry := Entry{Name: item.Name(), Path: path, IsDir: info.IsDir()}
		switch {
		case info.IsDir():
			dirs = append(dirs, entry)
		case info.Mode().IsRegular():
			entry.Size = info.Size()
			files = append(files, entry)
		}
	}
	sortByName(dirs)
	sortByName(files)
	return append(dirs, files...), nil
}

func sortByName(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := strings.ToLower(entries[i].Name), strings.ToLower(entries[j].Name)
		if a == b {
			return entries[i].Name < entries[j].Name
		}
		return a < b
	})
}

var junkNames = map[string]bool{}

func init() {
	for _, name := range []string{
		".DS_Store", ".AppleDouble", ".LSOverride", ".Spotlight-V100", ".Trashes",
		".fseventsd", ".TemporaryItems", ".VolumeIcon.icns", ".DocumentRevisions-V100",
		".directory", "Icon\r", "Thumbs.db", "ehthumbs.db", "Desktop.ini", "desktop.ini",
		"npm-debug.log", "$RECYCLE.BIN", "System Volume Information",
	} {
		junkNames[name] = true
	}
}

// IsJunk reports whether name is an operating system artefact that should
// not be offered for browsing.
func IsJunk(name string) bool {
	if junkNames[name] {
		return true
	}
	switch {
	case strings.HasPrefix(name, "._"):
		return true
	case strings.HasPrefix(name, ".~lock.") && strings.HasSuffix(name, "#"):
		return true
	case strings.HasPrefix(name, ".nfs"):
		return true
	case strings.HasSuffix(name, "~") && len(name) > 1:
		return true
	}
	return false
}

// ScanFiles returns the regular files of dir and their distinct lower-case
// extensions in first-seen order. Files without an extension are listed but
// contribute no extension.
func (o OS) ScanFiles(dir string) ([]Entry, []string, error) {
	entries, err := o.List(dir)
	if err != nil {
		return nil, nil, err
	}
	var files []Entry
	var exts []string
	seen := make(map[string]bool)
	for _, e := range entries {
		if e.IsDir {
			continue
		}
		files = append(files, e)
		ext := Ext(e.Name)
		if ext != "" && !seen[ext] {
			seen[ext] = true
			exts = append(exts, ext)
		}
	}
	return files, exts, nil
}

// Ext is the lower-case extension of name including the dot.
func Ext(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

// FilterByExtension keeps the entries whose extension is in exts.
func FilterByExtension(entries []Entry, exts []string) []Entry {
	allowed := make(map[string]bool, len(exts))
	for _, ext := range exts {
		allowed[strings.ToLower(ext)] = true
	}
	var out []Entry
	for _, e := range entries {
		if allowed[Ext(e.Name)] {
			out = append(out, e)
		}
	}
	return out
}
