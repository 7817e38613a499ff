package encoding

import (
	"errors"
	"fmt"
	"strings"
)

// VideoCodec is the requested video target. VideoCopy keeps the source
// video bit-for-bit.
type VideoCodec string

const (
	VideoCopy VideoCodec = "none"
	VideoH264 VideoCodec = "h264"
	VideoH265 VideoCodec = "h265"
)

// HardwareVendor selects the encoder family for a video target.
type HardwareVendor string

const (
	VendorNone   HardwareVendor = "none"
	VendorNVIDIA HardwareVendor = "nvidia"
	VendorAMD    HardwareVendor = "amd"
)

// DefaultQuality is the crf/cq value of every built-in profile.
const DefaultQuality = 18

// ErrInvalidOptions reports options outside the enumerated sets.
var ErrInvalidOptions = errors.New("invalid encode options")

// Options configures a single-file transcode.
type Options struct {
	Video   VideoCodec
	Vendor  HardwareVendor
	Quality *int
}

// ParseVideoCodec accepts the codec names shown to the user.
func ParseVideoCodec(value string) (VideoCodec, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "none", "copy":
		return VideoCopy, nil
	case "h264", "avc", "h.264":
		return VideoH264, nil
	case "h265", "hevc", "h.265":
		return VideoH265, nil
	default:
		return "", fmt.Errorf("%w: unknown video codec %q", ErrInvalidOptions, value)
	}
}

// ParseVendor maps a detected GPU vendor to a HardwareVendor. Unknown
// vendors map to VendorNone so the software profile is used.
func ParseVendor(value string) HardwareVendor {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "nvidia":
		return VendorNVIDIA
	case "amd":
		return VendorAMD
	default:
		return VendorNone
	}
}

// Validate reports whether the options can be synthesized.
func (o Options) Validate() error {
	switch o.Video {
	case "", VideoCopy, VideoH264, VideoH265:
	default:
		return fmt.Errorf("%w: unknown video codec %q", ErrInvalidOptions, o.Video)
	}
	if o.Quality != nil && (*o.Quality < 0 || *o.Quality > 51) {
		return fmt.Errorf("%w: quality %d outside 0-51", ErrInvalidOptions, *o.Quality)
	}
	return nil
}

func (o Options) quality() int {
	if o.Quality == nil {
		return DefaultQuality
	}
	return *o.Quality
}

func (o Options) reencodes() bool {
	return o.Video == VideoH264 || o.Video == VideoH265
}
