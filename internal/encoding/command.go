package encoding

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"tracksift/internal/language"
	"tracksift/internal/tracks"
)

// OutputPath is where the transcode of input is written.
func OutputPath(input, outputDir string) string {
	return filepath.Join(outputDir, filepath.Base(input))
}

// BuildArgs returns the ffmpeg arguments that transcode input into outputDir
// keeping only the kept streams of selection. It never re-encodes subtitles,
// always maps chapters and attachments, and marks only output slot 0 of each
// type as default.
func BuildArgs(input, outputDir string, selection tracks.Selection, opts Options) ([]string, error) {
	if strings.TrimSpace(input) == "" {
		return nil, fmt.Errorf("%w: empty input path", ErrInvalidOptions)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	args := []string{"-i", input, "-map", "0:v"}
	args = append(args, videoArgs(opts)...)

	for slot, d := range selection.Kept(tracks.StreamAudio) {
		k := strconv.Itoa(slot)
		args = append(args, "-map", "0:a:"+strconv.Itoa(d.TypeIndex))
		if d.CodecName == "flac" {
			args = append(args,
				"-c:a:"+k, "libopus",
				"-b:a:"+k, "192k",
				"-vbr:"+k, "on",
				"-compression_level:"+k, "10",
			)
		} else {
			args = append(args, "-c:a:"+k, "copy")
		}
		if d.Language != language.AudioTarget {
			args = append(args, "-metadata:s:a:"+k, "language="+language.AudioTarget)
		}
		args = append(args, "-disposition:a:"+k, disposition(slot))
	}

	for slot, d := range selection.Kept(tracks.StreamSubtitle) {
		k := strconv.Itoa(slot)
		args = append(args, "-map", "0:s:"+strconv.Itoa(d.TypeIndex), "-c:s:"+k, "copy")
		if d.Language != language.SubtitleTarget {
			args = append(args, "-metadata:s:s:"+k, "language="+language.SubtitleTarget)
		}
		args = append(args, "-disposition:s:"+k, disposition(slot))
	}

	// 0:t? tolerates files without attachments.
	args = append(args, "-map_chapters", "0", "-map", "0:t?")
	args = append(args, "-y", OutputPath(input, outputDir))
	return args, nil
}

// disposition marks slot 0 as default and clears flags copied from the
// source on every other slot.
func disposition(slot int) string {
	if slot == 0 {
		return "default"
	}
	return "0"
}

func videoArgs(opts Options) []string {
	if !opts.reencodes() {
		return []string{"-c:v", "copy"}
	}
	vendor := opts.Vendor
	if vendor == "" {
		vendor = VendorNone
	}
	profile, _ := ProfileFor(opts.Video, vendor)
	return profile.Args(opts.quality())
}

// CommandLine renders binary and args as a single display string. Paths
// and values containing spaces or quotes are double-quoted.
func CommandLine(binary string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, binary)
	for i, arg := range args {
		isPath := (i > 0 && args[i-1] == "-i") || i == len(args)-1
		if isPath || needsQuoting(arg) {
			parts = append(parts, quote(arg))
			continue
		}
		parts = append(parts, arg)
	}
	return strings.Join(parts, " ")
}

func needsQuoting(arg string) bool {
	return arg == "" || strings.ContainsAny(arg, " \t\"'\\$`")
}

func quote(arg string) string {
	var b strings.Builder
	b.Grow(len(arg) + 2)
	b.WriteByte('"')
	for _, r := range arg {
		switch r {
		case '"', '\\', '$', '`':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')
	return b.String()
}
