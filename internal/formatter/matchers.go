package formatter

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Matcher recognises one kind of line. Matchers are tried in order and the
// first whose Match returns true produces the blocks for the line. A Once
// matcher fires for the first matching line only.
type Matcher struct {
	Name    string
	Once    bool
	Match   func(Line) bool
	Extract func(Line) []Block
}

const (
	introMarker   = "인터뷰 분석 결과"
	verdictMarker = "최종 추천 여부"
	overallMarker = "종합 의견"

	recommendWord = "추천"
	rejectWord    = "비추천"

	introMaxIndex  = 10
	introMaxLen    = 100
	verdictMaxLen  = 200
	overallMaxLen  = 50
	fallbackMaxLen = 60
)

func runeLen(s string) int { return utf8.RuneCountInString(s) }

// Pipeline is the ordered matcher list used by Format.
var Pipeline = []Matcher{
	IntroTitle,
	FinalVerdict,
	OverallOpinion,
	NumberedHeader,
	KnownTitleHeader,
	Bullet,
}

var IntroTitle = Matcher{
	Name: "intro",
	Once: true,
	Match: func(l Line) bool {
		return l.Index < introMaxIndex &&
			strings.Contains(l.Clean, introMarker) &&
			runeLen(l.Clean) < introMaxLen
	},
	Extract: func(l Line) []Block {
		text := normalizeIntro(l.Clean)
		return []Block{{
			Kind:     KindTitle,
			Line:     l.Source,
			Text:     text,
			Segments: []Segment{{Text: text}},
		}}
	},
}

const nameQuotes = "'\"‘’“”`"

// normalizeIntro wraps the candidate name before "님의" in single quotes,
// whatever quoting the model used.
func normalizeIntro(s string) string {
	s = strings.TrimSpace(s)
	idx := strings.Index(s, "님의")
	if idx <= 0 {
		return s
	}
	name := strings.TrimSpace(strings.Trim(strings.TrimSpace(s[:idx]), nameQuotes))
	if name == "" {
		return s
	}
	return "'" + name + "'" + s[idx:]
}

var listMarker = regexp.MustCompile(`^(?:[-*•]\s+|\d+[.)]\s*)`)

var FinalVerdict = Matcher{
	Name: "verdict",
	Match: func(l Line) bool {
		body := listMarker.ReplaceAllString(l.Clean, "")
		return strings.Contains(body, verdictMarker) && runeLen(l.Text) < verdictMaxLen
	},
	Extract: func(l Line) []Block {
		label := verdictLabel(l.Clean)
		return []Block{{
			Kind:    KindVerdict,
			Line:    l.Source,
			Text:    label,
			Verdict: ClassifyVerdict(label),
		}}
	},
}

var labelNoise = strings.NewReplacer("*", "", "[", "", "]", "")

func verdictLabel(clean string) string {
	idx := strings.Index(clean, verdictMarker)
	if idx < 0 {
		return ""
	}
	rest := clean[idx+len(verdictMarker):]
	rest = strings.TrimLeft(rest, " \t:：*")
	return strings.TrimSpace(labelNoise.Replace(rest))
}

// ClassifyVerdict maps a verdict label to its display state.
func ClassifyVerdict(label string) Verdict {
	switch {
	case strings.Contains(label, rejectWord):
		return NotRecommended
	case strings.Contains(label, recommendWord):
		return Recommended
	default:
		return Undetermined
	}
}

var (
	overallNumbered = regexp.MustCompile(`^5[.)]\s*\**\s*` + overallMarker + `\s*\**\s*[:：]*\s*\**\s*(.*)$`)
	leadingNumber   = regexp.MustCompile(`^\d+[.)]?\s*`)
)

var OverallOpinion = Matcher{
	Name: "overall",
	Match: func(l Line) bool {
		if !strings.Contains(l.Clean, overallMarker) {
			return false
		}
		return runeLen(l.Text) < overallMaxLen || overallNumbered.MatchString(l.Text)
	},
	Extract: func(l Line) []Block {
		if runeLen(l.Text) >= overallMaxLen {
			m := overallNumbered.FindStringSubmatch(l.Text)
			blocks := []Block{{Kind: KindOverall, Line: l.Source, Number: 5, Text: overallMarker}}
			if m != nil && strings.TrimSpace(m[1]) != "" {
				p := textBlock(KindParagraph, l.Source, m[1])
				p.Indent = true
				blocks = append(blocks, p)
			}
			return blocks
		}
		text := leadingNumber.ReplaceAllString(l.Clean, "")
		text = strings.TrimSpace(strings.TrimRight(strings.TrimSpace(text), ":："))
		return []Block{{Kind: KindOverall, Line: l.Source, Number: 5, Text: text}}
	},
}

var (
	headerBoldTitle  = regexp.MustCompile(`^([1-4])[.)]\s*\*\*(.+?)\*\*\s*[:：]*\s*(.*)$`)
	headerColonTitle = regexp.MustCompile(`^([1-4])[.)]\s*([^:：*]+?)\s*[:：]+\s*(.*)$`)
	headerPlainTitle = regexp.MustCompile(`^([1-4])[.)]\s*(.+?)[:：*\s]*$`)
	headerPrefix     = regexp.MustCompile(`^[1-4][.)]\s*(.*)$`)
)

// matchHeader returns number, title and inline content of a numbered
// section header line.
func matchHeader(text string) (int, string, string, bool) {
	p := headerPrefix.FindStringSubmatch(text)
	if p == nil {
		return 0, "", "", false
	}
	if rest := p[1]; rest != "" && rest[0] >= '0' && rest[0] <= '9' {
		// "1.5배" is a number, not a header
		return 0, "", "", false
	}
	for _, re := range []*regexp.Regexp{headerBoldTitle, headerColonTitle, headerPlainTitle} {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		n, _ := strconv.Atoi(m[1])
		title := strings.TrimSpace(strings.TrimRight(m[2], ":： "))
		if title == "" {
			continue
		}
		content := ""
		if len(m) > 3 {
			content = strings.TrimSpace(m[3])
		}
		return n, title, content, true
	}
	return 0, "", "", false
}

func headerBlocks(l Line, n int, title, content string) []Block {
	h := textBlock(KindHeader, l.Source, title)
	h.Number = n
	blocks := []Block{h}
	if content != "" {
		p := textBlock(KindParagraph, l.Source, content)
		p.Indent = true
		blocks = append(blocks, p)
	}
	return blocks
}

var NumberedHeader = Matcher{
	Name: "header",
	Match: func(l Line) bool {
		_, _, _, ok := matchHeader(l.Text)
		return ok
	},
	Extract: func(l Line) []Block {
		n, title, content, _ := matchHeader(l.Text)
		return headerBlocks(l, n, title, content)
	},
}

// KnownTitles are the section titles the analysis prompt asks for, with
// their section number.
var KnownTitles = []struct {
	Title  string
	Number int
}{
	{"핵심 강점", 1},
	{"우려 사항", 2},
	{"조직 적합성", 3},
	{"온보딩 & 코칭 가이드", 4},
	{"온보딩", 4},
	{"코칭 가이드", 4},
}

var (
	firstNumber = regexp.MustCompile(`\d+`)
	titleLead   = regexp.MustCompile(`^[\s*•]*(?:\d+[.)]?)?\s*`)
)

func knownTitleNumber(clean string) (int, bool) {
	for _, kt := range KnownTitles {
		if strings.Contains(clean, kt.Title) {
			return kt.Number, true
		}
	}
	return 0, false
}

func isBulletText(s string) bool {
	return strings.HasPrefix(s, "* ") || strings.HasPrefix(s, "- ")
}

var KnownTitleHeader = Matcher{
	Name: "header-fallback",
	Match: func(l Line) bool {
		if runeLen(l.Text) >= fallbackMaxLen || isBulletText(l.Text) {
			return false
		}
		_, ok := knownTitleNumber(l.Clean)
		return ok
	},
	Extract: func(l Line) []Block {
		n, _ := knownTitleNumber(l.Clean)
		if m := firstNumber.FindString(l.Clean); m != "" {
			n, _ = strconv.Atoi(m)
		}
		title := titleLead.ReplaceAllString(l.Clean, "")
		title = strings.TrimSpace(strings.TrimRight(title, ":： "))
		h := Block{Kind: KindHeader, Line: l.Source, Number: n, Text: title, Segments: []Segment{{Text: title}}}
		return []Block{h}
	},
}

var Bullet = Matcher{
	Name:  "bullet",
	Match: func(l Line) bool { return isBulletText(l.Text) },
	Extract: func(l Line) []Block {
		content := strings.TrimSpace(l.Text[2:])
		return []Block{textBlock(KindBullet, l.Source, content)}
	},
}

var multiSpace = regexp.MustCompile(`\s{2,}`)

func paragraph(l Line) Block {
	return textBlock(KindParagraph, l.Source, multiSpace.ReplaceAllString(l.Text, " "))
}
