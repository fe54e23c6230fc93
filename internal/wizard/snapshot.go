package wizard

import (
	"sort"

	"github.com/muhammadolammi/interviewmate/internal/interview"
	"github.com/muhammadolammi/interviewmate/internal/schema"
)

type StageTab struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Answered int    `json:"answered"`
	Total    int    `json:"total"`
}

// ResumeInfo describes the attachment without its payload.
type ResumeInfo struct {
	FileName string `json:"fileName"`
}

// Snapshot is the read model of a session.
type Snapshot struct {
	ID             string                  `json:"id"`
	Type           interview.InterviewType `json:"type"`
	Language       interview.Language      `json:"language"`
	Stages         []StageTab              `json:"stages"`
	ActiveStage    int                     `json:"activeStage"`
	ActiveStageID  string                  `json:"activeStageId"`
	IsFirst        bool                    `json:"isFirst"`
	IsLast         bool                    `json:"isLast"`
	Sections       []schema.Section        `json:"sections"`
	BasicInfo      interview.BasicInfo     `json:"basicInfo"`
	ShowVisaExpiry bool                    `json:"showVisaExpiry"`
	Answers        map[string]string       `json:"answers"`
	Expanded       []string                `json:"expanded"`
	Focus          string                  `json:"focus,omitempty"`
	Resume         *ResumeInfo             `json:"resume,omitempty"`
	AISummary      string                  `json:"aiSummary,omitempty"`
	CreatedAt      int64                   `json:"createdAt,omitempty"`
	Saving         bool                    `json:"saving"`
	Analyzing      bool                    `json:"analyzing"`
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	flags := s.flags()
	tabs := make([]StageTab, 0, len(s.schema.Stages))
	for _, st := range s.schema.Stages {
		tab := StageTab{ID: st.ID, Title: st.Title}
		for _, q := range st.VisibleQuestions(flags) {
			tab.Total++
			if s.answers.HasText(q.ID) {
				tab.Answered++
			}
		}
		tabs = append(tabs, tab)
	}

	expanded := make([]string, 0, len(s.expanded))
	for id := range s.expanded {
		expanded = append(expanded, id)
	}
	sort.Strings(expanded)

	info := s.basic
	info.InterviewType = s.itype
	snap := Snapshot{
		ID:             s.recordID,
		Type:           s.itype,
		Language:       s.schema.Language,
		Stages:         tabs,
		ActiveStage:    s.active,
		ActiveStageID:  s.activeStage().ID,
		IsFirst:        s.active == 0,
		IsLast:         s.isLast(),
		Sections:       s.activeStage().VisibleSections(flags),
		BasicInfo:      info,
		ShowVisaExpiry: s.basic.VisaStatus != "" && interview.NeedsVisaExpiry(s.basic.VisaStatus),
		Answers:        s.answers.Encode(),
		Expanded:       expanded,
		Focus:          s.focus,
		AISummary:      s.summary,
		CreatedAt:      s.createdAt,
		Saving:         s.saving > 0,
		Analyzing:      s.analyzing > 0,
	}
	if s.resume != nil {
		snap.Resume = &ResumeInfo{FileName: s.resume.FileName}
	}
	return snap
}
