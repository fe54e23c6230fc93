package schema

import (
	"fmt"
	"strings"

	"github.com/muhammadolammi/interviewmate/internal/interview"
	"gopkg.in/yaml.v3"
)

type ConditionKind string

const FlagEquals ConditionKind = "flagEquals"

type Flag string

const FlagHasPriorExperience Flag = "hasSushiExperience"

// Flags are the boolean form-state values conditions may test.
type Flags map[Flag]bool

func FlagsFrom(info interview.BasicInfo) Flags {
	return Flags{FlagHasPriorExperience: info.HasSushiExperience}
}

// Condition is a visibility predicate over Flags.
type Condition struct {
	Kind  ConditionKind `yaml:"kind" json:"kind"`
	Flag  Flag          `yaml:"flag" json:"flag"`
	Value bool          `yaml:"value" json:"value"`
}

func FlagIs(flag Flag, value bool) *Condition {
	return &Condition{Kind: FlagEquals, Flag: flag, Value: value}
}

// Evaluate reports whether a section guarded by c is visible. Missing,
// unknown or unparseable conditions are treated as visible.
func Evaluate(c *Condition, flags Flags) bool {
	if c == nil {
		return true
	}
	switch c.Kind {
	case FlagEquals:
		v, ok := flags[c.Flag]
		if !ok {
			return true
		}
		return v == c.Value
	default:
		return true
	}
}

func (c *Condition) validate() error {
	if c.Kind != FlagEquals {
		return nil
	}
	if c.Flag == "" {
		return fmt.Errorf("flagEquals condition without flag")
	}
	return nil
}

// UnmarshalYAML accepts both the tagged mapping form and the legacy
// expression string "hasSushiExperience === true".
func (c *Condition) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		parsed, ok := ParseLegacyCondition(node.Value)
		if !ok {
			// unparseable expressions keep the section visible
			*c = Condition{Kind: ConditionKind("unknown")}
			return nil
		}
		*c = *parsed
		return nil
	}
	type plain Condition
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*c = Condition(p)
	return nil
}

// ParseLegacyCondition converts "<flag> === true|false".
func ParseLegacyCondition(expr string) (*Condition, bool) {
	parts := strings.Split(strings.TrimSpace(expr), "===")
	if len(parts) != 2 {
		return nil, false
	}
	flag := strings.TrimSpace(parts[0])
	if flag == "" {
		return nil, false
	}
	switch strings.TrimSpace(parts[1]) {
	case "true":
		return FlagIs(Flag(flag), true), true
	case "false":
		return FlagIs(Flag(flag), false), true
	default:
		return nil, false
	}
}
