package formatter

import "strings"

const boldMarker = "**"

// ParseBold splits text on paired ** markers. An unterminated opening marker
// at the end of the text is closed implicitly, so a half-streamed bold run
// renders bold without leaking the marker. Empty runs are dropped.
func ParseBold(text string) []Segment {
	parts := strings.Split(text, boldMarker)
	segs := make([]Segment, 0, len(parts))
	for i, p := range parts {
		if p == "" {
			continue
		}
		segs = append(segs, Segment{Text: p, Bold: i%2 == 1})
	}
	return segs
}

// StripMarkup removes bold markers.
func StripMarkup(s string) string {
	return strings.ReplaceAll(s, boldMarker, "")
}
