package encoding

import (
	"io"
	"strings"
	"testing"
)

func TestParseProgressExampleLine(t *testing.T) {
	snap := ParseProgress("frame=  120 fps= 30 q=27.0 size=   512kB time=00:00:05 bitrate= 800kbps speed=1.0x")
	if v, ok := snap.Float("frame"); !ok || v != 120 {
		t.Fatalf("frame = %v %v", v, ok)
	}
	if v, ok := snap.Float("fps"); !ok || v != 30 {
		t.Fatalf("fps = %v %v", v, ok)
	}
	if v, ok := snap.Float("q"); !ok || v != 27 {
		t.Fatalf("q = %v %v", v, ok)
	}
	if snap.Text("size") != "512kB" || snap["size"].IsNumber {
		t.Fatalf("size = %+v", snap["size"])
	}
	if snap.Text("time") != "00:00:05" {
		t.Fatalf("time = %+v", snap["time"])
	}
	if snap.Text("speed") != "1.0x" {
		t.Fatalf("speed = %+v", snap["speed"])
	}
	if len(snap) != 7 {
		t.Fatalf("expected 7 metrics, got %d: %v", len(snap), snap)
	}
}

func TestParseProgressIgnoresUnmatchedText(t *testing.T) {
	if snap := ParseProgress("Press [q] to stop, [?] for help"); len(snap) != 0 {
		t.Fatalf("expected empty snapshot, got %v", snap)
	}
	if snap := ParseProgress(""); snap == nil || len(snap) != 0 {
		t.Fatalf("expected empty non-nil snapshot, got %v", snap)
	}
	snap := ParseProgress("key=value trailing words other=1")
	if _, ok := snap["key"]; ok {
		t.Fatalf("value followed by free text must be ignored: %v", snap)
	}
	if v, ok := snap.Float("other"); !ok || v != 1 {
		t.Fatalf("other = %v %v", v, ok)
	}
}

func TestParseProgressNonFiniteStaysText(t *testing.T) {
	snap := ParseProgress("bitrate=N/A speed=inf")
	if snap["bitrate"].IsNumber || snap.Text("bitrate") != "N/A" {
		t.Fatalf("bitrate = %+v", snap["bitrate"])
	}
	if snap["speed"].IsNumber {
		t.Fatalf("speed = %+v", snap["speed"])
	}
}

func TestIsProgressLine(t *testing.T) {
	if !IsProgressLine("frame=1 speed=2x") {
		t.Fatal("expected progress line")
	}
	if IsProgressLine("Stream mapping:") {
		t.Fatal("unexpected progress line")
	}
}

func TestStreamLinesSplitsCarriageReturns(t *testing.T) {
	input := "Input #0\nframe=1 speed=1x\rframe=2 speed=1x\r\n\nError at end"
	var got []string
	for line := range streamLines(io.NopCloser(strings.NewReader(input))) {
		got = append(got, line)
	}
	want := []string{"Input #0", "frame=1 speed=1x", "frame=2 speed=1x", "Error at end"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("got %q want %q", got, want)
	}
}
