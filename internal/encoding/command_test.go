package encoding

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"tracksift/internal/tracks"
)

func decision(typ tracks.StreamType, typeIndex int, codec, lang string, keep bool) tracks.Decision {
	return tracks.Decision{
		Descriptor: tracks.Descriptor{Type: typ, TypeIndex: typeIndex, CodecName: codec, Language: lang},
		Keep:       keep,
	}
}

func sampleSelection() tracks.Selection {
	return tracks.Selection{
		decision(tracks.StreamVideo, 0, "h264", "", true),
		decision(tracks.StreamAudio, 0, "aac", "eng", false),
		decision(tracks.StreamAudio, 1, "flac", "jpn", true),
		decision(tracks.StreamAudio, 2, "aac", "", true),
		decision(tracks.StreamSubtitle, 0, "ass", "eng", true),
		decision(tracks.StreamSubtitle, 1, "ass", "", true),
	}
}

func TestBuildArgsStreamCopy(t *testing.T) {
	args, err := BuildArgs("/media/show/ep 01.mkv", "/media/show/_encoded", sampleSelection(), Options{Video: VideoCopy})
	if err != nil {
		t.Fatalf("BuildArgs: %v", err)
	}
	want := []string{
		"-i", "/media/show/ep 01.mkv",
		"-map", "0:v", "-c:v", "copy",
		"-map", "0:a:1", "-c:a:0", "libopus", "-b:a:0", "192k", "-vbr:0", "on", "-compression_level:0", "10",
		"-disposition:a:0", "default",
		"-map", "0:a:2", "-c:a:1", "copy", "-metadata:s:a:1", "language=jpn",
		"-disposition:a:1", "0",
		"-map", "0:s:0", "-c:s:0", "copy", "-disposition:s:0", "default",
		"-map", "0:s:1", "-c:s:1", "copy", "-metadata:s:s:1", "language=eng",
		"-disposition:s:1", "0",
		"-map_chapters", "0", "-map", "0:t?",
		"-y", "/media/show/_encoded/ep 01.mkv",
	}
	if !slices.Equal(args, want) {
		t.Fatalf("unexpected args:\n got %q\nwant %q", args, want)
	}
}

func TestBuildArgsIsDeterministic(t *testing.T) {
	q := 20
	opts := Options{Video: VideoH265, Vendor: VendorNVIDIA, Quality: &q}
	first, err := BuildArgs("/in.mkv", "/out", sampleSelection(), opts)
	if err != nil {
		t.Fatalf("BuildArgs: %v", err)
	}
	for i := 0; i < 5; i++ {
		next, err := BuildArgs("/in.mkv", "/out", sampleSelection(), opts)
		if err != nil {
			t.Fatalf("BuildArgs: %v", err)
		}
		if CommandLine("ffmpeg", next) != CommandLine("ffmpeg", first) {
			t.Fatalf("command changed between calls")
		}
	}
}

func TestBuildArgsSingleDefaultPerType(t *testing.T) {
	args, err := BuildArgs("/in.mkv", "/out", sampleSelection(), Options{})
	if err != nil {
		t.Fatalf("BuildArgs: %v", err)
	}
	defaults := map[string]int{}
	for i, arg := range args {
		prefix, slot, ok := strings.Cut(arg, ":")
		if prefix != "-disposition" || !ok {
			continue
		}
		value := args[i+1]
		if value == "default" {
			defaults[slot[:1]]++
			if !strings.HasSuffix(slot, ":0") {
				t.Fatalf("default set on %s", arg)
			}
		} else if value != "0" {
			t.Fatalf("unexpected disposition %s %s", arg, value)
		}
	}
	if defaults["a"] != 1 || defaults["s"] != 1 {
		t.Fatalf("expected one default per type, got %v in %q", defaults, args)
	}
}

func TestBuildArgsClearsCopiedDispositions(t *testing.T) {
	args, err := BuildArgs("/in.mkv", "/out", sampleSelection(), Options{})
	if err != nil {
		t.Fatalf("BuildArgs: %v", err)
	}
	line := strings.Join(args, " ")
	for _, want := range []string{"-disposition:a:1 0", "-disposition:s:1 0"} {
		if !strings.Contains(line, want) {
			t.Fatalf("missing %q in %s", want, line)
		}
	}
}

func TestBuildArgsNoSubtitleReencode(t *testing.T) {
	args, err := BuildArgs("/in.mkv", "/out", sampleSelection(), Options{Video: VideoH264})
	if err != nil {
		t.Fatalf("BuildArgs: %v", err)
	}
	for i, arg := range args {
		if strings.HasPrefix(arg, "-c:s:") && args[i+1] != "copy" {
			t.Fatalf("subtitle re-encoded: %s %s", arg, args[i+1])
		}
	}
}

func TestBuildArgsOmitsUnkeptTypes(t *testing.T) {
	selection := tracks.Selection{decision(tracks.StreamVideo, 0, "h264", "", true)}
	args, err := BuildArgs("/in.mkv", "/out", selection, Options{})
	if err != nil {
		t.Fatalf("BuildArgs: %v", err)
	}
	line := strings.Join(args, " ")
	if strings.Contains(line, "0:a:") || strings.Contains(line, "disposition") {
		t.Fatalf("unexpected audio directives: %s", line)
	}
	if !strings.Contains(line, "-map_chapters 0 -map 0:t?") {
		t.Fatalf("chapters and attachments must always be mapped: %s", line)
	}
}

func TestProfileSelection(t *testing.T) {
	cases := []struct {
		codec  VideoCodec
		vendor HardwareVendor
		want   string
	}{
		{VideoH264, VendorNVIDIA, "-c:v h264_nvenc -preset slow -rc vbr -cq 18 -b:v 2M -maxrate 5M -tune animation"},
		{VideoH264, VendorAMD, "-c:v h264_amf -quality slow -cq 18 -tune animation"},
		{VideoH264, VendorNone, "-c:v libx264 -preset slow -crf 18 -tune animation -x264-params aq-mode=3:aq-strength=0.8"},
		{VideoH265, VendorNVIDIA, "-c:v hevc_nvenc -preset slow -rc vbr -cq 18 -b:v 2M -maxrate 5M"},
		{VideoH265, VendorAMD, "-c:v hevc_amf -quality slow -cq 18"},
		{VideoH265, VendorNone, "-c:v libx265 -preset slow -crf 18 -x265-params limit-sao:bframes=8:psy-rd=1.5:psy-rdoq=2:aq-mode=3"},
		{VideoH265, HardwareVendor("intel"), "-c:v libx265 -preset slow -crf 18 -x265-params limit-sao:bframes=8:psy-rd=1.5:psy-rdoq=2:aq-mode=3"},
		{VideoH264, "", "-c:v libx264 -preset slow -crf 18 -tune animation -x264-params aq-mode=3:aq-strength=0.8"},
	}
	for _, tc := range cases {
		for i := 0; i < 3; i++ {
			got := strings.Join(videoArgs(Options{Video: tc.codec, Vendor: tc.vendor}), " ")
			if got != tc.want {
				t.Fatalf("%s/%s: got %q want %q", tc.codec, tc.vendor, got, tc.want)
			}
		}
	}
}

func TestQualitySubstitution(t *testing.T) {
	q := 23
	got := strings.Join(videoArgs(Options{Video: VideoH264, Vendor: VendorAMD, Quality: &q}), " ")
	if got != "-c:v h264_amf -quality slow -cq 23 -tune animation" {
		t.Fatalf("unexpected video args %q", got)
	}
}

func TestInvalidOptions(t *testing.T) {
	if _, err := BuildArgs("/in.mkv", "/out", nil, Options{Video: "av1"}); !errors.Is(err, ErrInvalidOptions) {
		t.Fatalf("expected ErrInvalidOptions, got %v", err)
	}
	q := 90
	if _, err := BuildArgs("/in.mkv", "/out", nil, Options{Video: VideoH264, Quality: &q}); !errors.Is(err, ErrInvalidOptions) {
		t.Fatalf("expected ErrInvalidOptions for quality, got %v", err)
	}
	if _, err := BuildArgs(" ", "/out", nil, Options{}); !errors.Is(err, ErrInvalidOptions) {
		t.Fatalf("expected ErrInvalidOptions for empty input, got %v", err)
	}
}

func TestParseVideoCodec(t *testing.T) {
	for input, want := range map[string]VideoCodec{"": VideoCopy, "HEVC": VideoH265, "h264": VideoH264} {
		got, err := ParseVideoCodec(input)
		if err != nil || got != want {
			t.Fatalf("ParseVideoCodec(%q) = %q, %v", input, got, err)
		}
	}
	if _, err := ParseVideoCodec("vp9"); !errors.Is(err, ErrInvalidOptions) {
		t.Fatalf("expected ErrInvalidOptions, got %v", err)
	}
	if ParseVendor("NVIDIA") != VendorNVIDIA || ParseVendor("intel") != VendorNone {
		t.Fatal("unexpected vendor mapping")
	}
}

func TestCommandLineQuotesPaths(t *testing.T) {
	args, err := BuildArgs(`/media/My Show/"ep1".mkv`, "/media/My Show/_encoded", tracks.Selection{}, Options{})
	if err != nil {
		t.Fatalf("BuildArgs: %v", err)
	}
	got := CommandLine("ffmpeg", args)
	want := `ffmpeg -i "/media/My Show/\"ep1\".mkv" -map 0:v -c:v copy -map_chapters 0 -map 0:t? -y "/media/My Show/_encoded/\"ep1\".mkv"`
	if got != want {
		t.Fatalf("unexpected command line:\n got %s\nwant %s", got, want)
	}
}
