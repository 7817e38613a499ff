package tracks

import (
	"errors"
	"fmt"
	"strings"

	"tracksift/internal/language"
	"tracksift/internal/media/ffprobe"
	"tracksift/internal/services"
)

// StreamType is the decision category of a stream.
type StreamType string

const (
	StreamVideo    StreamType = "video"
	StreamAudio    StreamType = "audio"
	StreamSubtitle StreamType = "subtitle"
	// StreamOther covers attachments and data streams. They are passed
	// through by the command synthesizer and never decided.
	StreamOther StreamType = "other"
)

func streamTypeOf(codecType string) StreamType {
	switch strings.ToLower(strings.TrimSpace(codecType)) {
	case ffprobe.CodecTypeVideo:
		return StreamVideo
	case ffprobe.CodecTypeAudio:
		return StreamAudio
	case ffprobe.CodecTypeSubtitle:
		return StreamSubtitle
	default:
		return StreamOther
	}
}

// Descriptor is one physical stream of a media container.
//
// TypeIndex counts streams of the same raw codec type in container order, so
// it matches ffmpeg's type-relative stream specifiers (0:a:1 is the second
// audio stream). Language and Title are lower-cased; empty means untagged.
type Descriptor struct {
	GlobalIndex int
	TypeIndex   int
	Type        StreamType
	CodecName   string
	Language    string
	Title       string
}

// AnalysisError reports that a file could not be inspected or normalized.
type AnalysisError struct {
	Path string
	Err  error
}

func (e *AnalysisError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("analyze %s: %v", e.Path, e.Err)
}

func (e *AnalysisError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

var errNoStreams = errors.New("probe returned no streams")

// Normalize converts raw probe streams into descriptors in the same order.
// A missing codec type or an empty stream list fails the whole file.
func Normalize(path string, streams []ffprobe.Stream) ([]Descriptor, error) {
	if len(streams) == 0 {
		return nil, analysisFailure(path, "normalize", errNoStreams)
	}
	counters := make(map[string]int, 4)
	out := make([]Descriptor, 0, len(streams))
	for pos, stream := range streams {
		codecType := strings.ToLower(strings.TrimSpace(stream.CodecType))
		if codecType == "" {
			return nil, analysisFailure(path, "normalize", fmt.Errorf("stream %d: missing codec_type", pos))
		}
		typeIndex := counters[codecType]
		counters[codecType] = typeIndex + 1
		out = append(out, Descriptor{
			GlobalIndex: stream.Index,
			TypeIndex:   typeIndex,
			Type:        streamTypeOf(codecType),
			CodecName:   strings.TrimSpace(stream.CodecName),
			Language:    language.ExtractFromTags(stream.Tags),
			Title:       strings.ToLower(strings.TrimSpace(stream.Tag("title"))),
		})
	}
	return out, nil
}

func analysisFailure(path, operation string, err error) error {
	return &AnalysisError{
		Path: path,
		Err:  services.Wrap(services.ErrExternalTool, "analysis", operation, "", err),
	}
}
