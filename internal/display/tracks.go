package display

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/fatih/color"

	"tracksift/internal/language"
	"tracksift/internal/tracks"
)

// Printer writes human-facing output.
type Printer struct {
	out      io.Writer
	colorize bool
}

// NewPrinter returns a Printer writing to out; colour follows the terminal.
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out, colorize: ShouldColorize(out)}
}

// NewPlainPrinter returns a Printer that never emits colour codes.
func NewPlainPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// Colorize reports whether the printer emits colour.
func (p *Printer) Colorize() bool {
	return p.colorize
}

// Writer is the underlying output.
func (p *Printer) Writer() io.Writer {
	return p.out
}

// Tracks prints every audio and subtitle decision of a file as a coloured
// Keep/Remove line.
func (p *Printer) Tracks(f tracks.FileTracks) {
	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, paint(p.colorize, "Tracks for file: "+filepath.Base(f.Path), color.Bold))
	for _, d := range f.Selection {
		if d.Type == tracks.StreamVideo {
			continue
		}
		attr := color.FgHiRed
		if d.Keep {
			attr = color.FgHiGreen
		}
		line := fmt.Sprintf("  %s %s", d.Action(), d.Label())
		fmt.Fprintln(p.out, paint(p.colorize, line, attr))
	}
}

// Success prints a green status line.
func (p *Printer) Success(format string, args ...any) {
	fmt.Fprintln(p.out, paint(p.colorize, fmt.Sprintf(format, args...), color.FgGreen))
}

// Warn prints a yellow status line.
func (p *Printer) Warn(format string, args ...any) {
	fmt.Fprintln(p.out, paint(p.colorize, fmt.Sprintf(format, args...), color.FgYellow))
}

// Failure prints a red status line.
func (p *Printer) Failure(format string, args ...any) {
	fmt.Fprintln(p.out, paint(p.colorize, fmt.Sprintf(format, args...), color.FgRed))
}

// Println prints an uncoloured line.
func (p *Printer) Println(args ...any) {
	fmt.Fprintln(p.out, args...)
}

// TrackTable renders the full decision set of a file, video included.
func TrackTable(selection tracks.Selection) string {
	rows := make([][]string, 0, len(selection))
	for pos, d := range selection {
		lang := "-"
		if d.Language != "" {
			lang = fmt.Sprintf("%s (%s)", language.DisplayName(d.Language), languageCode(d.Language))
		}
		rows = append(rows, []string{
			strconv.Itoa(pos),
			string(d.Type),
			strconv.Itoa(d.TypeIndex),
			valueOrDash(d.CodecName),
			lang,
			valueOrDash(d.Title),
			d.Action(),
			string(d.Reason),
		})
	}
	return RenderTable(
		[]string{"#", "Type", "Index", "Codec", "Language", "Title", "Action", "Reason"},
		rows,
		[]ColumnAlignment{AlignRight, AlignLeft, AlignRight},
	)
}

// languageCode shows the ISO 639-2 code of a tag, or the tag itself when it
// is not a recognised language.
func languageCode(tag string) string {
	if code := language.ToISO3(tag); code != "und" {
		return code
	}
	return tag
}

func valueOrDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
