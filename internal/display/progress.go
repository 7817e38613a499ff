package display

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"

	"tracksift/internal/encoding"
)

// BarReporter renders transcode progress as a terminal progress bar. When
// the frame total is unknown it shows a spinner with the frame count.
type BarReporter struct {
	out      io.Writer
	colorize bool
	name     string
	bar      *progressbar.ProgressBar
}

// NewBarReporter returns a reporter writing to out.
func NewBarReporter(out io.Writer, colorize bool) *BarReporter {
	return &BarReporter{out: out, colorize: colorize}
}

// Start implements encoding.ProgressReporter.
func (r *BarReporter) Start(path string, totalFrames int64) {
	r.name = filepath.Base(path)
	limit := totalFrames
	if limit <= 0 {
		limit = -1
	}
	r.bar = progressbar.NewOptions64(limit,
		progressbar.OptionSetWriter(r.out),
		progressbar.OptionSetDescription(r.name),
		progressbar.OptionEnableColorCodes(r.colorize),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("frames"),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(r.out) }),
	)
}

// Update implements encoding.ProgressReporter.
func (r *BarReporter) Update(snapshot encoding.Snapshot) {
	if r.bar == nil {
		return
	}
	if frame, ok := snapshot.Float("frame"); ok {
		_ = r.bar.Set64(int64(frame))
	}
	r.bar.Describe(describe(r.name, snapshot))
}

// Finish implements encoding.ProgressReporter.
func (r *BarReporter) Finish(err error) {
	if r.bar == nil {
		return
	}
	if err != nil {
		_ = r.bar.Exit()
		fmt.Fprintln(r.out)
		return
	}
	_ = r.bar.Finish()
}

func describe(name string, snapshot encoding.Snapshot) string {
	parts := []string{name}
	for _, key := range []string{"fps", "size", "time", "speed"} {
		if value := snapshot.Text(key); value != "" {
			parts = append(parts, key+"="+value)
		}
	}
	return strings.Join(parts, " ")
}
