package tracks

import (
	"fmt"
	"strings"
)

// Label renders a decision the way the review list shows it, for example
// "audio (flac) track 0: jpn - main".
func (d Decision) Label() string {
	var b strings.Builder
	b.WriteString(string(d.Type))
	if d.CodecName != "" {
		fmt.Fprintf(&b, " (%s)", d.CodecName)
	}
	lang := d.Language
	if lang == "" {
		lang = "unknown"
	}
	fmt.Fprintf(&b, " track %d: %s", d.TypeIndex, lang)
	if d.Title != "" {
		b.WriteString(" - ")
		b.WriteString(d.Title)
	}
	return b.String()
}

// Action is "Keep" or "Remove".
func (d Decision) Action() string {
	if d.Keep {
		return "Keep"
	}
	return "Remove"
}
