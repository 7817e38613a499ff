package language

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Target language codes written into output metadata.
const (
	AudioTarget    = "jpn"
	SubtitleTarget = "eng"
)

var namer = display.English.Languages()

func parse(code string) (language.Tag, bool) {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return language.Und, false
	}
	if tag, err := language.Parse(code); err == nil && tag != language.Und {
		return tag, true
	}
	// Word forms such as "japanese" or "english" appear in hand-tagged files.
	for _, tag := range common {
		if strings.EqualFold(namer.Name(tag), code) {
			return tag, true
		}
	}
	return language.Und, false
}

var common = []language.Tag{
	language.English,
	language.Japanese,
	language.Spanish,
	language.French,
	language.German,
	language.Italian,
	language.Portuguese,
	language.Korean,
	language.Chinese,
	language.Russian,
}

// ToISO3 converts any recognized language code or word to ISO 639-2 (3-letter).
// Returns "und" for unrecognized input.
func ToISO3(code string) string {
	tag, ok := parse(code)
	if !ok {
		return "und"
	}
	base, _ := tag.Base()
	if iso3 := base.ISO3(); iso3 != "" {
		return iso3
	}
	return "und"
}

// DisplayName returns a human-readable language name for any recognized code.
// Returns "Unknown" for empty input, or the uppercased code for unrecognized input.
func DisplayName(code string) string {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return "Unknown"
	}
	if tag, ok := parse(trimmed); ok {
		if name := namer.Name(tag); name != "" {
			return name
		}
	}
	return strings.ToUpper(trimmed)
}

// ExtractFromTags extracts and normalizes the language from stream metadata tags.
// Checks common tag keys: language, LANGUAGE, Language, language_ietf, lang, LANG.
func ExtractFromTags(tags map[string]string) string {
	if len(tags) == 0 {
		return ""
	}
	keys := []string{"language", "LANGUAGE", "Language", "language_ietf", "lang", "LANG"}
	for _, key := range keys {
		if value, ok := tags[key]; ok {
			value = strings.TrimSpace(strings.ReplaceAll(value, "\u0000", ""))
			if value != "" {
				return strings.ToLower(value)
			}
		}
	}
	return ""
}
