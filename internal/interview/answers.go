package interview

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Tristate is the value of a checkbox-style answer. Unset means the key was
// never written.
type Tristate int8

const (
	Unset Tristate = iota
	True
	False
)

func TristateOf(b bool) Tristate {
	if b {
		return True
	}
	return False
}

// Checked is true only for True.
func (t Tristate) Checked() bool { return t == True }

func (t Tristate) String() string {
	switch t {
	case True:
		return "true"
	case False:
		return "false"
	default:
		return ""
	}
}

const (
	noticePrefix  = "notice-"
	consentPrefix = "consent-"
)

func NoticeKey(sectionID string, idx int) string {
	return fmt.Sprintf("%s%s-%d", noticePrefix, sectionID, idx)
}

func ConsentKey(sectionID string) string {
	return consentPrefix + sectionID
}

// IsCheckKey reports whether key belongs to a notice or consent checkbox
// rather than a question.
func IsCheckKey(key string) bool {
	return strings.HasPrefix(key, noticePrefix) || strings.HasPrefix(key, consentPrefix)
}

// Answers holds free-text answers keyed by question id and checkbox answers
// keyed by their synthetic notice/consent key. On the wire both collapse into
// one string map with checkboxes spelled "true"/"false".
type Answers struct {
	Text   map[string]string
	Checks map[string]Tristate
}

func NewAnswers() Answers {
	return Answers{Text: map[string]string{}, Checks: map[string]Tristate{}}
}

func (a *Answers) ensure() {
	if a.Text == nil {
		a.Text = map[string]string{}
	}
	if a.Checks == nil {
		a.Checks = map[string]Tristate{}
	}
}

func (a *Answers) SetText(questionID, value string) {
	a.ensure()
	a.Text[questionID] = value
}

func (a Answers) TextFor(questionID string) string {
	return a.Text[questionID]
}

func (a *Answers) SetCheck(key string, checked bool) {
	a.ensure()
	a.Checks[key] = TristateOf(checked)
}

func (a Answers) Check(key string) Tristate {
	return a.Checks[key]
}

// HasText is true when the question has a non-empty answer.
func (a Answers) HasText(questionID string) bool {
	return a.Text[questionID] != ""
}

// AnswerCount counts answered questions, ignoring checkboxes.
func (a Answers) AnswerCount() int {
	n := 0
	for k, v := range a.Text {
		if v != "" && !IsCheckKey(k) {
			n++
		}
	}
	return n
}

func (a Answers) Clone() Answers {
	out := NewAnswers()
	for k, v := range a.Text {
		out.Text[k] = v
	}
	for k, v := range a.Checks {
		out.Checks[k] = v
	}
	return out
}

// Encode flattens the answers into the storage representation.
func (a Answers) Encode() map[string]string {
	out := make(map[string]string, len(a.Text)+len(a.Checks))
	for k, v := range a.Text {
		out[k] = v
	}
	for k, v := range a.Checks {
		if v == Unset {
			continue
		}
		out[k] = v.String()
	}
	return out
}

// DecodeAnswers is the inverse of Encode. Checkbox keys holding anything other
// than "true" decode as False.
func DecodeAnswers(raw map[string]string) Answers {
	out := NewAnswers()
	for k, v := range raw {
		if IsCheckKey(k) {
			out.Checks[k] = TristateOf(v == "true")
			continue
		}
		out.Text[k] = v
	}
	return out
}

// Values returns every stored answer value in key order.
func (a Answers) Values() []string {
	enc := a.Encode()
	keys := make([]string, 0, len(enc))
	for k := range enc {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	vals := make([]string, 0, len(keys))
	for _, k := range keys {
		vals = append(vals, enc[k])
	}
	return vals
}

func (a Answers) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Encode())
}

func (a *Answers) UnmarshalJSON(data []byte) error {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode answers: %w", err)
	}
	*a = DecodeAnswers(raw)
	return nil
}
