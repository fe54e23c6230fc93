// Package search filters interview records by free-text keywords.
package search

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// OtherInitial is the initial of a name no rule recognises.
const OtherInitial = "Other"

// InitialRule derives the index initial of a name's first rune for one
// script. ok is false when the rune is outside the script.
type InitialRule interface {
	Initial(r rune) (initial string, ok bool)
}

type InitialRuleFunc func(r rune) (string, bool)

func (f InitialRuleFunc) Initial(r rune) (string, bool) { return f(r) }

const (
	hangulFirst    = 0xAC00
	hangulLast     = 0xD7A3
	hangulPerLead  = 21 * 28
	hangulInitials = "ㄱㄲㄴㄷㄸㄹㅁㅂㅃㅅㅆㅇㅈㅉㅊㅋㅌㅍㅎ"
)

var (
	leadConsonants = []rune(hangulInitials)
	tenseToPlain   = map[rune]rune{'ㄲ': 'ㄱ', 'ㄸ': 'ㄷ', 'ㅃ': 'ㅂ', 'ㅆ': 'ㅅ', 'ㅉ': 'ㅈ'}
)

// Hangul maps a precomposed syllable to its leading consonant, folding
// the tense consonants onto their plain form.
var Hangul InitialRule = InitialRuleFunc(func(r rune) (string, bool) {
	if r < hangulFirst || r > hangulLast {
		return "", false
	}
	lead := leadConsonants[(r-hangulFirst)/hangulPerLead]
	if plain, ok := tenseToPlain[lead]; ok {
		lead = plain
	}
	return string(lead), true
})

// Latin maps an ASCII letter to its upper case form.
var Latin InitialRule = InitialRuleFunc(func(r rune) (string, bool) {
	if r > unicode.MaxASCII || !unicode.IsLetter(r) {
		return "", false
	}
	return string(unicode.ToUpper(r)), true
})

// DefaultRules is the rule set used by Filter.
var DefaultRules = []InitialRule{Hangul, Latin}

// Initial returns the initial of name under rules, "" for an empty name
// and OtherInitial when no rule applies.
func Initial(name string, rules []InitialRule) string {
	name = strings.TrimSpace(name)
	r, _ := utf8.DecodeRuneInString(name)
	if name == "" || r == utf8.RuneError {
		return ""
	}
	for _, rule := range rules {
		if s, ok := rule.Initial(r); ok {
			return s
		}
	}
	return OtherInitial
}
