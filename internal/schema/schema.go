// Package schema describes interview forms: ordered stages holding sections
// of questions or notices, with optional visibility conditions.
package schema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/muhammadolammi/interviewmate/internal/interview"
	"gopkg.in/yaml.v3"
)

type Question struct {
	ID          string   `yaml:"id" json:"id"`
	Text        string   `yaml:"text" json:"text"`
	Checkpoints []string `yaml:"checkpoints" json:"checkpoints"`
}

type Section struct {
	ID             string     `yaml:"id" json:"id"`
	Title          string     `yaml:"title,omitempty" json:"title,omitempty"`
	Condition      *Condition `yaml:"condition,omitempty" json:"condition,omitempty"`
	Questions      []Question `yaml:"questions,omitempty" json:"questions,omitempty"`
	Notices        []string   `yaml:"notices,omitempty" json:"notices,omitempty"`
	RequireConsent bool       `yaml:"requireConsent,omitempty" json:"requireConsent,omitempty"`
}

type Stage struct {
	ID          string    `yaml:"id" json:"id"`
	Title       string    `yaml:"title" json:"title"`
	Description string    `yaml:"description,omitempty" json:"description,omitempty"`
	Kind        string    `yaml:"kind,omitempty" json:"kind,omitempty"`
	Sections    []Section `yaml:"sections" json:"sections"`
}

// VisibleSections returns the sections whose condition holds for flags.
func (st Stage) VisibleSections(flags Flags) []Section {
	out := make([]Section, 0, len(st.Sections))
	for _, sec := range st.Sections {
		if Evaluate(sec.Condition, flags) {
			out = append(out, sec)
		}
	}
	return out
}

// VisibleQuestions flattens the questions of the visible sections in order.
func (st Stage) VisibleQuestions(flags Flags) []Question {
	var out []Question
	for _, sec := range st.VisibleSections(flags) {
		out = append(out, sec.Questions...)
	}
	return out
}

type Schema struct {
	Type     interview.InterviewType `yaml:"type" json:"type"`
	Language interview.Language      `yaml:"language" json:"language"`
	Stages   []Stage                 `yaml:"stages" json:"stages"`
}

var ErrSchemaNotFound = errors.New("schema not found")

// Parse decodes and validates a YAML form schema.
func Parse(data []byte) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse schema yaml: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	return &s, nil
}

func (s *Schema) Validate() error {
	if len(s.Stages) == 0 {
		return errors.New("schema has no stages")
	}
	if _, err := interview.ParseInterviewType(string(s.Type)); err != nil {
		return err
	}
	if _, err := interview.ParseLanguage(string(s.Language)); err != nil {
		return err
	}
	stageIDs := map[string]bool{}
	questionIDs := map[string]bool{}
	for i, st := range s.Stages {
		if strings.TrimSpace(st.ID) == "" {
			return fmt.Errorf("stage %d has no id", i)
		}
		if stageIDs[st.ID] {
			return fmt.Errorf("duplicate stage id %q", st.ID)
		}
		stageIDs[st.ID] = true
		for _, sec := range st.Sections {
			if sec.ID == "" {
				return fmt.Errorf("stage %q has a section without id", st.ID)
			}
			if sec.Condition != nil {
				if err := sec.Condition.validate(); err != nil {
					return fmt.Errorf("section %q: %w", sec.ID, err)
				}
			}
			for _, q := range sec.Questions {
				if q.ID == "" {
					return fmt.Errorf("section %q has a question without id", sec.ID)
				}
				if questionIDs[q.ID] {
					return fmt.Errorf("duplicate question id %q", q.ID)
				}
				questionIDs[q.ID] = true
			}
		}
	}
	return nil
}

// AllQuestions returns every question in stage and section order, ignoring
// visibility.
func (s *Schema) AllQuestions() []Question {
	var out []Question
	for _, st := range s.Stages {
		for _, sec := range st.Sections {
			out = append(out, sec.Questions...)
		}
	}
	return out
}

func (s *Schema) QuestionByID(id string) (Question, bool) {
	for _, q := range s.AllQuestions() {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// StageIndex returns the index of the stage with id, or -1.
func (s *Schema) StageIndex(id string) int {
	for i, st := range s.Stages {
		if st.ID == id {
			return i
		}
	}
	return -1
}

func (s *Schema) Section(sectionID string) (Section, bool) {
	for _, st := range s.Stages {
		for _, sec := range st.Sections {
			if sec.ID == sectionID {
				return sec, true
			}
		}
	}
	return Section{}, false
}
