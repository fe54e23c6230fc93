package search

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/muhammadolammi/interviewmate/internal/interview"
)

// fold case folds s. Casers keep state, so each call gets its own.
func fold(s string) string {
	return cases.Fold().String(s)
}

// Matcher matches records against keyword queries. It is safe for
// concurrent use.
type Matcher struct {
	rules []InitialRule
}

func NewMatcher(rules ...InitialRule) *Matcher {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	return &Matcher{rules: rules}
}

// Keywords splits a query on whitespace and case folds each keyword.
func (m *Matcher) Keywords(query string) []string {
	fields := strings.Fields(query)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, fold(f))
	}
	return out
}

func (m *Matcher) contains(field, keyword string) bool {
	return field != "" && strings.Contains(fold(field), keyword)
}

// MatchKeyword reports whether one folded keyword hits the record.
// A single character keyword also matches the initial of the name.
func (m *Matcher) MatchKeyword(r interview.Record, keyword string) bool {
	info := r.BasicInfo
	if len([]rune(keyword)) == 1 && fold(Initial(info.Name, m.rules)) == keyword {
		return true
	}
	if m.contains(info.Name, keyword) || m.contains(info.Position, keyword) || m.contains(info.Store, keyword) {
		return true
	}
	// dates are compared verbatim
	if strings.Contains(info.Date, keyword) {
		return true
	}
	for _, v := range r.Answers.Values() {
		if m.contains(v, keyword) {
			return true
		}
	}
	return false
}

// Match reports whether every keyword of query hits the record. An empty
// query matches everything.
func (m *Matcher) Match(r interview.Record, query string) bool {
	for _, kw := range m.Keywords(query) {
		if !m.MatchKeyword(r, kw) {
			return false
		}
	}
	return true
}

// Filter returns the records matching query, in input order.
func (m *Matcher) Filter(records []interview.Record, query string) []interview.Record {
	keywords := m.Keywords(query)
	if len(keywords) == 0 {
		return records
	}
	out := make([]interview.Record, 0, len(records))
next:
	for _, r := range records {
		for _, kw := range keywords {
			if !m.MatchKeyword(r, kw) {
				continue next
			}
		}
		out = append(out, r)
	}
	return out
}

// Filter applies the default rules.
func Filter(records []interview.Record, query string) []interview.Record {
	return NewMatcher().Filter(records, query)
}
