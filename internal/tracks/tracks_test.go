package tracks

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"tracksift/internal/media/ffprobe"
	"tracksift/internal/services"
)

func stream(index int, codecType, codec, lang, title string) ffprobe.Stream {
	tags := map[string]string{}
	if lang != "" {
		tags["language"] = lang
	}
	if title != "" {
		tags["title"] = title
	}
	return ffprobe.Stream{Index: index, CodecType: codecType, CodecName: codec, Tags: tags}
}

func mustNormalize(t *testing.T, streams ...ffprobe.Stream) []Descriptor {
	t.Helper()
	descriptors, err := Normalize("/media/ep01.mkv", streams)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	return descriptors
}

func TestNormalizeAssignsTypeRelativeIndices(t *testing.T) {
	descriptors := mustNormalize(t,
		stream(0, "video", "h264", "", ""),
		stream(1, "audio", "flac", "JPN", ""),
		stream(2, "audio", "aac", "jpn", "Commentary"),
		stream(3, "subtitle", "ass", "ENG", "Full Subs"),
		stream(4, "attachment", "ttf", "", ""),
	)
	want := []struct {
		typ   StreamType
		index int
	}{
		{StreamVideo, 0},
		{StreamAudio, 0},
		{StreamAudio, 1},
		{StreamSubtitle, 0},
		{StreamOther, 0},
	}
	if len(descriptors) != len(want) {
		t.Fatalf("expected %d descriptors, got %d", len(want), len(descriptors))
	}
	for i, w := range want {
		if descriptors[i].Type != w.typ || descriptors[i].TypeIndex != w.index {
			t.Fatalf("descriptor %d = %s:%d, want %s:%d", i, descriptors[i].Type, descriptors[i].TypeIndex, w.typ, w.index)
		}
		if descriptors[i].GlobalIndex != i {
			t.Fatalf("descriptor %d global index = %d", i, descriptors[i].GlobalIndex)
		}
	}
	if descriptors[1].Language != "jpn" {
		t.Fatalf("expected lower-cased language, got %q", descriptors[1].Language)
	}
	if descriptors[2].Title != "commentary" || descriptors[3].Title != "full subs" {
		t.Fatalf("expected lower-cased titles, got %q %q", descriptors[2].Title, descriptors[3].Title)
	}
	if descriptors[0].Language != "" || descriptors[0].Title != "" {
		t.Fatalf("expected untagged video, got %+v", descriptors[0])
	}
}

func TestNormalizeFailures(t *testing.T) {
	_, err := Normalize("/media/empty.mkv", nil)
	var analysisErr *AnalysisError
	if !errors.As(err, &analysisErr) {
		t.Fatalf("expected AnalysisError, got %v", err)
	}
	if analysisErr.Path != "/media/empty.mkv" {
		t.Fatalf("unexpected path %q", analysisErr.Path)
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool marker, got %v", err)
	}

	descriptors, err := Normalize("/media/bad.mkv", []ffprobe.Stream{
		stream(0, "video", "h264", "", ""),
		{Index: 1, CodecName: "aac"},
	})
	if err == nil || descriptors != nil {
		t.Fatalf("expected failure without partial result, got %v %v", descriptors, err)
	}
	if !strings.Contains(err.Error(), "codec_type") {
		t.Fatalf("expected codec_type in error, got %v", err)
	}
}

func TestSelectLanguageRules(t *testing.T) {
	selection := Select(mustNormalize(t,
		stream(0, "video", "h264", "", ""),
		stream(1, "audio", "flac", "jpn", ""),
		stream(2, "audio", "aac", "jpn", "Director Commentary"),
		stream(3, "audio", "aac", "eng", ""),
		stream(4, "audio", "aac", "", "Japanese 2.0"),
		stream(5, "subtitle", "ass", "eng", ""),
		stream(6, "subtitle", "ass", "spa", ""),
		stream(7, "subtitle", "ass", "", "English Signs"),
	))
	want := []bool{true, true, false, false, true, true, false, true}
	if len(selection) != len(want) {
		t.Fatalf("expected %d decisions, got %d", len(want), len(selection))
	}
	for i, keep := range want {
		if selection[i].Keep != keep {
			t.Fatalf("decision %d (%s) keep=%v, want %v", i, selection[i].Label(), selection[i].Keep, keep)
		}
	}
	if selection[0].Reason != ReasonVideo || selection[2].Reason != ReasonCommentary || selection[3].Reason != ReasonNotJapanese {
		t.Fatalf("unexpected reasons: %q %q %q", selection[0].Reason, selection[2].Reason, selection[3].Reason)
	}
}

func TestSelectSkipsOtherStreamTypes(t *testing.T) {
	selection := Select(mustNormalize(t,
		stream(0, "video", "h264", "", ""),
		stream(1, "attachment", "ttf", "", ""),
		stream(2, "data", "bin_data", "", ""),
	))
	if len(selection) != 1 || selection[0].Type != StreamVideo {
		t.Fatalf("expected only the video decision, got %+v", selection)
	}
}

func TestSelectFallbackKeepsFirstTrack(t *testing.T) {
	selection := Select(mustNormalize(t,
		stream(0, "video", "h264", "", ""),
		stream(1, "audio", "aac", "eng", ""),
		stream(2, "audio", "aac", "eng", ""),
		stream(3, "subtitle", "ass", "spa", ""),
		stream(4, "subtitle", "ass", "fre", ""),
	))
	audio := selection.Kept(StreamAudio)
	if len(audio) != 1 || audio[0].TypeIndex != 0 || audio[0].Reason != ReasonFallback {
		t.Fatalf("expected first audio kept by fallback, got %+v", audio)
	}
	subs := selection.Kept(StreamSubtitle)
	if len(subs) != 1 || subs[0].TypeIndex != 0 || subs[0].Reason != ReasonFallback {
		t.Fatalf("expected first subtitle kept by fallback, got %+v", subs)
	}
}

func TestSelectFallbackIgnoresCommentaryStatus(t *testing.T) {
	selection := Select(mustNormalize(t,
		stream(0, "audio", "aac", "jpn", "commentary"),
	))
	if !selection[0].Keep || selection[0].Reason != ReasonFallback {
		t.Fatalf("expected fallback keep, got %+v", selection[0])
	}
}

func TestSelectWithoutTracksOfAType(t *testing.T) {
	selection := Select(mustNormalize(t, stream(0, "video", "h264", "", "")))
	if total, kept := selection.Count(StreamAudio); total != 0 || kept != 0 {
		t.Fatalf("expected no audio decisions, got %d/%d", kept, total)
	}
}

func TestSelectBroadSubstringMatch(t *testing.T) {
	// "ancient" contains "en"; the rule is intentionally broad.
	selection := Select(mustNormalize(t,
		stream(0, "subtitle", "ass", "ancient", ""),
		stream(1, "subtitle", "ass", "ger", ""),
	))
	if !selection[0].Keep || selection[0].Reason != ReasonEnglishSubtitle {
		t.Fatalf("expected broad match to keep, got %+v", selection[0])
	}
}

func TestKeywordPreference(t *testing.T) {
	descriptors := mustNormalize(t,
		stream(0, "audio", "aac", "jpn", ""),
		stream(1, "subtitle", "ass", "eng", "Signs & Songs"),
		stream(2, "subtitle", "ass", "eng", "Full Dialogue"),
		stream(3, "subtitle", "ass", "eng", "Dialog Only"),
	)

	plain := Select(descriptors)
	if _, kept := plain.Count(StreamSubtitle); kept != 3 {
		t.Fatalf("expected language-only rule to keep all english subtitles, got %d", kept)
	}

	preferred := Rules{PreferSubtitleKeywords: true}.Select(descriptors)
	subs := preferred.Kept(StreamSubtitle)
	if len(subs) != 1 || subs[0].Title != "full dialogue" || subs[0].Reason != ReasonKeyword {
		t.Fatalf("expected only the full subtitle, got %+v", subs)
	}
	if preferred[1].Reason != ReasonKeywordMismatch {
		t.Fatalf("expected mismatch reason, got %q", preferred[1].Reason)
	}
}

func TestKeywordPreferenceKeepsFallback(t *testing.T) {
	selection := Rules{PreferSubtitleKeywords: true}.Select(mustNormalize(t,
		stream(0, "subtitle", "ass", "spa", "Full"),
		stream(1, "subtitle", "ass", "fre", ""),
	))
	subs := selection.Kept(StreamSubtitle)
	if len(subs) != 1 || subs[0].TypeIndex != 0 || subs[0].Reason != ReasonFallback {
		t.Fatalf("expected fallback to survive keyword rule, got %+v", subs)
	}
}

func TestOverrideIsPureAndIdempotent(t *testing.T) {
	selection := Select(mustNormalize(t,
		stream(0, "video", "h264", "", ""),
		stream(1, "audio", "flac", "jpn", ""),
		stream(2, "audio", "aac", "eng", ""),
		stream(3, "subtitle", "ass", "eng", ""),
	))
	original := selection.Clone()

	keep := []int{2, 3, 99, -1}
	once := selection.Override(keep)
	twice := once.Override(keep)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("override not idempotent:\n%+v\n%+v", once, twice)
	}
	if !reflect.DeepEqual(selection, original) {
		t.Fatal("override mutated its receiver")
	}
	if !once[0].Keep {
		t.Fatal("video must stay kept")
	}
	if once[1].Keep || once[1].Reason != ReasonUserRemoved {
		t.Fatalf("expected audio 0 removed by user, got %+v", once[1])
	}
	if !once[2].Keep || once[2].Reason != ReasonUserKept {
		t.Fatalf("expected audio 1 kept by user, got %+v", once[2])
	}
	if !once[3].Keep || once[3].Reason != ReasonEnglishSubtitle {
		t.Fatalf("expected unchanged subtitle reason, got %+v", once[3])
	}
}

func TestDecisionLabel(t *testing.T) {
	d := Decision{Descriptor: Descriptor{Type: StreamAudio, CodecName: "flac", TypeIndex: 1, Language: "jpn", Title: "main"}, Keep: true}
	if got := d.Label(); got != "audio (flac) track 1: jpn - main" {
		t.Fatalf("unexpected label %q", got)
	}
	if d.Action() != "Keep" {
		t.Fatalf("unexpected action %q", d.Action())
	}
	bare := Decision{Descriptor: Descriptor{Type: StreamSubtitle}}
	if got := bare.Label(); got != "subtitle track 0: unknown" {
		t.Fatalf("unexpected label %q", got)
	}
	if bare.Action() != "Remove" {
		t.Fatalf("unexpected action %q", bare.Action())
	}
}

type fakeProber map[string]ffprobe.Result

func (f fakeProber) Probe(_ context.Context, path string) (ffprobe.Result, error) {
	result, ok := f[path]
	if !ok {
		return ffprobe.Result{}, errors.New("ffprobe: exit status 1")
	}
	return result, nil
}

func TestAnalyzeAllPreservesOrderAndIsolatesFailures(t *testing.T) {
	prober := fakeProber{
		"/a.mkv": {Streams: []ffprobe.Stream{stream(0, "video", "h264", "", ""), stream(1, "audio", "aac", "jpn", "")}},
		"/c.mkv": {Streams: []ffprobe.Stream{stream(0, "video", "hevc", "", "")}},
		"/d.mkv": {},
	}
	results, failures := Rules{}.AnalyzeAll(context.Background(), prober, []string{"/a.mkv", "/b.mkv", "/c.mkv", "/d.mkv"})
	if len(results) != 2 || results[0].Path != "/a.mkv" || results[1].Path != "/c.mkv" {
		t.Fatalf("unexpected results %+v", results)
	}
	if len(failures) != 2 {
		t.Fatalf("expected 2 failures, got %v", failures)
	}
	var first *AnalysisError
	if !errors.As(failures[0], &first) || first.Path != "/b.mkv" {
		t.Fatalf("expected /b.mkv failure first, got %v", failures[0])
	}
	var second *AnalysisError
	if !errors.As(failures[1], &second) || second.Path != "/d.mkv" {
		t.Fatalf("expected /d.mkv zero-stream failure, got %v", failures[1])
	}
}

func TestAnalyzeAllBoundsConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	prober := ProberFunc(func(_ context.Context, path string) (ffprobe.Result, error) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		return ffprobe.Result{Streams: []ffprobe.Stream{stream(0, "video", "h264", "", "")}}, nil
	})
	paths := make([]string, 12)
	for i := range paths {
		paths[i] = "/media/ep" + string(rune('a'+i)) + ".mkv"
	}
	results, failures := Rules{ProbeLimit: 2}.AnalyzeAll(context.Background(), prober, paths)
	if len(results) != len(paths) || len(failures) != 0 {
		t.Fatalf("results=%d failures=%v", len(results), failures)
	}
	for i, r := range results {
		if r.Path != paths[i] {
			t.Fatalf("result %d is %s, want %s", i, r.Path, paths[i])
		}
	}
	if got := peak.Load(); got > 2 {
		t.Fatalf("expected at most 2 concurrent ffprobe calls, saw %d", got)
	}
}

func TestRulesConcurrencyDefaultsToCPUCount(t *testing.T) {
	if got := (Rules{}).Concurrency(); got < 1 {
		t.Fatalf("expected positive default concurrency, got %d", got)
	}
	if got := (Rules{ProbeLimit: 3}).Concurrency(); got != 3 {
		t.Fatalf("expected explicit limit 3, got %d", got)
	}
}

func TestAnalyzeRequiresProber(t *testing.T) {
	_, err := Analyze(context.Background(), nil, "/a.mkv")
	var analysisErr *AnalysisError
	if !errors.As(err, &analysisErr) {
		t.Fatalf("expected AnalysisError, got %v", err)
	}
}
