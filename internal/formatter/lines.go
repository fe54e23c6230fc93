package formatter

import (
	"fmt"
	"regexp"
	"strings"
)

// Line is one logical line of the input, after trimming and numeric merging.
type Line struct {
	Text string
	// Clean is Text with bold markers removed, used for detection.
	Clean  string
	Index  int
	Source int
}

func (l Line) blank() bool { return l.Text == "" }

var (
	headingHashes = regexp.MustCompile(`^#{1,6}\s+`)
	bareNumber    = regexp.MustCompile(`^(\d+)[.)]?$`)
	numberStrip   = strings.NewReplacer("**", "", "*", "", "#", "", " ", "", "\t", "")
)

func newLine(text string, index, source int) Line {
	return Line{Text: text, Clean: StripMarkup(text), Index: index, Source: source}
}

// bareInteger reports whether s is only a number, ignoring markup,
// whitespace and a trailing "." or ")".
func bareInteger(s string) (string, bool) {
	m := bareNumber.FindStringSubmatch(numberStrip.Replace(s))
	if m == nil {
		return "", false
	}
	return m[1], true
}

// splitLines trims every line, drops markdown heading hashes and merges a
// bare section number with the next non-blank line. Models streaming a
// numbered header sometimes emit "1" and "핵심 강점:" as separate lines.
func splitLines(text string) []Line {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for i := range raw {
		raw[i] = headingHashes.ReplaceAllString(strings.TrimSpace(raw[i]), "")
	}

	lines := make([]Line, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		cur := raw[i]
		if n, ok := bareInteger(cur); ok && cur != "" {
			j := i + 1
			for j < len(raw) && raw[j] == "" {
				j++
			}
			if j < len(raw) {
				if _, nextIsNumber := bareInteger(raw[j]); !nextIsNumber {
					lines = append(lines, newLine(fmt.Sprintf("%s. %s", n, raw[j]), len(lines), i))
					i = j
					continue
				}
			}
		}
		lines = append(lines, newLine(cur, len(lines), i))
	}
	return lines
}
