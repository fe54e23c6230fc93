// Package formatter turns the analysis text returned by the model into an
// ordered list of display blocks. Formatting is a pure function of the text,
// so it can be re-run on every streamed chunk.
package formatter

import "strings"

type Kind string

const (
	KindSpacer    Kind = "spacer"
	KindTitle     Kind = "title"
	KindVerdict   Kind = "verdict"
	KindOverall   Kind = "overall"
	KindHeader    Kind = "header"
	KindBullet    Kind = "bullet"
	KindParagraph Kind = "paragraph"
)

type Verdict string

const (
	Recommended    Verdict = "recommended"
	NotRecommended Verdict = "not_recommended"
	Undetermined   Verdict = "undetermined"
)

// Segment is a run of text that is either bold or plain.
type Segment struct {
	Text string `json:"text"`
	Bold bool   `json:"bold,omitempty"`
}

type Block struct {
	Kind Kind `json:"kind"`
	// Line is the index of the source line the block came from.
	Line     int       `json:"line"`
	Number   int       `json:"number,omitempty"`
	Text     string    `json:"text,omitempty"`
	Segments []Segment `json:"segments,omitempty"`
	Verdict  Verdict   `json:"verdict,omitempty"`
	// Indent marks paragraphs that belong to the body of a numbered header.
	Indent bool `json:"indent,omitempty"`
}

func segmentsText(segs []Segment) string {
	var b strings.Builder
	for _, s := range segs {
		b.WriteString(s.Text)
	}
	return b.String()
}

func textBlock(kind Kind, line int, raw string) Block {
	segs := ParseBold(raw)
	return Block{Kind: kind, Line: line, Text: segmentsText(segs), Segments: segs}
}
