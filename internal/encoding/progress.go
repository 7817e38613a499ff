package encoding

import (
	"bufio"
	"bytes"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// ProgressMarker distinguishes ffmpeg progress lines from other diagnostics.
const ProgressMarker = "speed="

var progressPattern = regexp.MustCompile(`(\w+)=\s*(\S+)`)

// Value is one progress metric. Numeric text is parsed into Number.
type Value struct {
	Number   float64
	Text     string
	IsNumber bool
}

func (v Value) String() string {
	return v.Text
}

// Snapshot is the parsed form of one progress line.
type Snapshot map[string]Value

// Float returns the numeric value of key.
func (s Snapshot) Float(key string) (float64, bool) {
	v, ok := s[key]
	if !ok || !v.IsNumber {
		return 0, false
	}
	return v.Number, true
}

// Text returns the raw text of key.
func (s Snapshot) Text(key string) string {
	return s[key].Text
}

// IsProgressLine reports whether line carries encode progress.
func IsProgressLine(line string) bool {
	return strings.Contains(line, ProgressMarker)
}

// ParseProgress extracts key=value pairs from line. A pair only counts when
// its value is followed by another key or the end of the line. Text that
// does not match is ignored and the result is never nil.
func ParseProgress(line string) Snapshot {
	snapshot := make(Snapshot)
	matches := progressPattern.FindAllStringSubmatchIndex(line, -1)
	for _, m := range matches {
		if !followedByKeyOrEnd(line[m[1]:]) {
			continue
		}
		key := line[m[2]:m[3]]
		raw := line[m[4]:m[5]]
		snapshot[key] = parseValue(raw)
	}
	return snapshot
}

func followedByKeyOrEnd(rest string) bool {
	trimmed := strings.TrimLeftFunc(rest, unicode.IsSpace)
	if trimmed == "" {
		return true
	}
	if len(trimmed) == len(rest) {
		return false
	}
	end := 0
	for end < len(trimmed) && isWordByte(trimmed[end]) {
		end++
	}
	return end > 0 && end < len(trimmed) && trimmed[end] == '='
}

func isWordByte(c byte) bool {
	return c == '_' || ('0' <= c && c <= '9') || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func parseValue(raw string) Value {
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(n, 0) || math.IsNaN(n) {
		return Value{Text: raw}
	}
	return Value{Number: n, Text: raw, IsNumber: true}
}

// scanLines splits ffmpeg output on carriage returns as well as newlines,
// since progress is redrawn in place with \r.
func scanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// streamLines delivers every non-blank line of r on a channel that is
// closed once r is exhausted. The reader is always drained.
func streamLines(r io.Reader) <-chan string {
	lines := make(chan string, 32)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		scanner.Split(scanLines)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line != "" {
				lines <- line
			}
		}
		_, _ = io.Copy(io.Discard, r)
	}()
	return lines
}
