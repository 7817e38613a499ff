package display

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
)

// Resolution buckets a frame size into a common name such as "1080p".
func Resolution(width, height int) string {
	switch {
	case width <= 0 || height <= 0:
		return ""
	case width >= 3840 && height >= 2160:
		return "4K"
	case width >= 2560 && height >= 1440:
		return "1440p"
	case width >= 1920 && height >= 1080:
		return "1080p"
	case width >= 1280 && height >= 720:
		return "720p"
	case width >= 854 && height >= 480:
		return "480p"
	case width >= 640 && height >= 360:
		return "360p"
	default:
		return fmt.Sprintf("%dx%d", width, height)
	}
}

// Size formats a byte count, or "Unknown size" when it is not known.
func Size(bytes int64) string {
	if bytes <= 0 {
		return "Unknown size"
	}
	return humanize.Bytes(uint64(bytes))
}

// Duration formats a length in seconds, or "Unknown duration" when it is not
// known.
func Duration(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds <= 0 {
		return "Unknown duration"
	}
	return time.Duration(seconds * float64(time.Second)).Round(time.Second).String()
}

// FileInfo is the summary shown for each candidate file.
type FileInfo struct {
	Name   string
	Size   int64
	Codec  string
	Width  int
	Height int
}

// FileLabel renders "name | size | codec | resolution" for selection lists.
func FileLabel(info FileInfo, colorize bool) string {
	codec := strings.TrimSpace(info.Codec)
	if codec == "" {
		codec = "Unknown encoding"
	}
	res := Resolution(info.Width, info.Height)
	if res == "" {
		res = "Unknown resolution"
	}
	return strings.Join([]string{
		info.Name,
		paint(colorize, Size(info.Size), color.FgHiYellow),
		paint(colorize, codec, color.FgHiMagenta),
		paint(colorize, res, color.FgHiCyan),
	}, " | ")
}

func paint(colorize bool, value string, attrs ...color.Attribute) string {
	c := color.New(attrs...)
	if colorize {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c.Sprint(value)
}
