package tracks

import (
	"cmp"
	"slices"
	"strings"
)

// Reason explains why a decision was made. It is shown next to each track.
type Reason string

const (
	ReasonVideo           Reason = "video is always kept"
	ReasonJapaneseAudio   Reason = "japanese audio"
	ReasonCommentary      Reason = "commentary track"
	ReasonNotJapanese     Reason = "not japanese"
	ReasonEnglishSubtitle Reason = "english subtitle"
	ReasonNotEnglish      Reason = "not english"
	ReasonKeyword         Reason = "preferred subtitle keyword"
	ReasonKeywordMismatch Reason = "missing preferred keyword"
	ReasonFallback        Reason = "fallback: first track of its type"
	ReasonUserKept        Reason = "kept by user"
	ReasonUserRemoved     Reason = "removed by user"
)

// Decision is a descriptor plus whether it survives the transcode.
type Decision struct {
	Descriptor
	Keep   bool
	Reason Reason
}

// Selection is the ordered decision set for one file.
type Selection []Decision

// PreferredSubtitleKeywords are checked in order; the first one found in any
// subtitle title narrows the English subtitles to those carrying it.
var PreferredSubtitleKeywords = []string{"honorific", "full", "dialog"}

// Rules configures the heuristic. The zero value is the language-only rule.
type Rules struct {
	PreferSubtitleKeywords bool
	// ProbeLimit caps concurrent prober calls in AnalyzeAll; 0 means one
	// per CPU.
	ProbeLimit int
}

// Select applies the language-only rules.
func Select(descriptors []Descriptor) Selection {
	return Rules{}.Select(descriptors)
}

// Select decides every video, audio and subtitle descriptor. Other stream
// types are not part of the selection.
func (r Rules) Select(descriptors []Descriptor) Selection {
	selection := make(Selection, 0, len(descriptors))
	for _, d := range descriptors {
		switch d.Type {
		case StreamVideo:
			selection = append(selection, Decision{Descriptor: d, Keep: true, Reason: ReasonVideo})
		case StreamAudio:
			keep, reason := decideAudio(d)
			selection = append(selection, Decision{Descriptor: d, Keep: keep, Reason: reason})
		case StreamSubtitle:
			keep, reason := decideSubtitle(d)
			selection = append(selection, Decision{Descriptor: d, Keep: keep, Reason: reason})
		}
	}
	if r.PreferSubtitleKeywords {
		selection = applyKeywordPreference(selection)
	}
	ensureOne(selection, StreamAudio)
	ensureOne(selection, StreamSubtitle)
	return selection
}

func isJapanese(d Descriptor) bool {
	return containsAny(d.Language, "ja", "jpn", "japanese") || strings.Contains(d.Title, "japanese")
}

func isCommentary(d Descriptor) bool {
	return strings.Contains(d.Title, "comment")
}

func isEnglish(d Descriptor) bool {
	return containsAny(d.Language, "en", "eng", "english") || strings.Contains(d.Title, "english")
}

func decideAudio(d Descriptor) (bool, Reason) {
	switch {
	case !isJapanese(d):
		return false, ReasonNotJapanese
	case isCommentary(d):
		return false, ReasonCommentary
	default:
		return true, ReasonJapaneseAudio
	}
}

func decideSubtitle(d Descriptor) (bool, Reason) {
	if isEnglish(d) {
		return true, ReasonEnglishSubtitle
	}
	return false, ReasonNotEnglish
}

// ensureOne keeps the lowest type index of kind when nothing of that kind
// was kept. Selection order follows container order, which is ascending
// TypeIndex within a type.
func ensureOne(selection Selection, kind StreamType) {
	first := -1
	for i, d := range selection {
		if d.Type != kind {
			continue
		}
		if d.Keep {
			return
		}
		if first < 0 || d.TypeIndex < selection[first].TypeIndex {
			first = i
		}
	}
	if first >= 0 {
		selection[first].Keep = true
		selection[first].Reason = ReasonFallback
	}
}

func applyKeywordPreference(selection Selection) Selection {
	keyword := ""
	for _, candidate := range PreferredSubtitleKeywords {
		for _, d := range selection {
			if d.Type == StreamSubtitle && strings.Contains(d.Title, candidate) {
				keyword = candidate
				break
			}
		}
		if keyword != "" {
			break
		}
	}
	if keyword == "" {
		return selection
	}
	for i, d := range selection {
		if d.Type != StreamSubtitle {
			continue
		}
		if isEnglish(d.Descriptor) && strings.Contains(d.Title, keyword) {
			selection[i].Keep = true
			selection[i].Reason = ReasonKeyword
			continue
		}
		selection[i].Keep = false
		if isEnglish(d.Descriptor) {
			selection[i].Reason = ReasonKeywordMismatch
		}
	}
	return selection
}

func containsAny(value string, needles ...string) bool {
	if value == "" {
		return false
	}
	for _, needle := range needles {
		if strings.Contains(value, needle) {
			return true
		}
	}
	return false
}

// Kept returns the kept decisions of kind in ascending TypeIndex order.
func (s Selection) Kept(kind StreamType) []Decision {
	out := make([]Decision, 0, len(s))
	for _, d := range s {
		if d.Type == kind && d.Keep {
			out = append(out, d)
		}
	}
	sortByTypeIndex(out)
	return out
}

// Count reports how many decisions of kind exist and how many are kept.
func (s Selection) Count(kind StreamType) (total, kept int) {
	for _, d := range s {
		if d.Type != kind {
			continue
		}
		total++
		if d.Keep {
			kept++
		}
	}
	return total, kept
}

func sortByTypeIndex(decisions []Decision) {
	slices.SortStableFunc(decisions, func(a, b Decision) int {
		return cmp.Compare(a.TypeIndex, b.TypeIndex)
	})
}
