package wizard

import (
	"fmt"

	"github.com/muhammadolammi/interviewmate/internal/interview"
	"github.com/muhammadolammi/interviewmate/internal/resume"
	"github.com/muhammadolammi/interviewmate/internal/schema"
)

// UpdateBasicInfo replaces the candidate details. The interview type stays
// fixed for the session. Statuses without an expiry clear the expiry date.
func (s *Session) UpdateBasicInfo(info interview.BasicInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	info.InterviewType = ""
	if !interview.NeedsVisaExpiry(info.VisaStatus) {
		info.VisaExpiryDate = ""
	}
	s.basic = info
}

func (s *Session) BasicInfo() interview.BasicInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.basic
}

// SetExperience flips the prior-experience flag that conditional sections
// depend on.
func (s *Session) SetExperience(has bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.basic.HasSushiExperience = has
}

func (s *Session) SetAnswer(questionID, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.schema.QuestionByID(questionID); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownQuestion, questionID)
	}
	s.answers.SetText(questionID, value)
	return nil
}

func (s *Session) noticeSection(sectionID string) (schema.Section, error) {
	sec, ok := s.schema.Section(sectionID)
	if !ok || len(sec.Notices) == 0 {
		return schema.Section{}, fmt.Errorf("%w: %s", ErrUnknownSection, sectionID)
	}
	return sec, nil
}

// SetNotice checks or unchecks one notice. Unchecking any notice withdraws
// the section consent.
func (s *Session) SetNotice(sectionID string, idx int, checked bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sec, err := s.noticeSection(sectionID)
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(sec.Notices) {
		return fmt.Errorf("notice %d out of range for section %s", idx, sectionID)
	}
	s.answers.SetCheck(interview.NoticeKey(sectionID, idx), checked)
	if !checked {
		s.answers.SetCheck(interview.ConsentKey(sectionID), false)
	}
	return nil
}

// SetConsent sets the section consent and every notice of the section to
// the same value.
func (s *Session) SetConsent(sectionID string, checked bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sec, err := s.noticeSection(sectionID)
	if err != nil {
		return err
	}
	s.answers.SetCheck(interview.ConsentKey(sectionID), checked)
	for i := range sec.Notices {
		s.answers.SetCheck(interview.NoticeKey(sectionID, i), checked)
	}
	return nil
}

// ToggleQuestion expands or collapses a question body.
func (s *Session) ToggleQuestion(questionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.schema.QuestionByID(questionID); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownQuestion, questionID)
	}
	if s.expanded[questionID] {
		delete(s.expanded, questionID)
	} else {
		s.expanded[questionID] = true
	}
	return nil
}

func (s *Session) Expanded(questionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expanded[questionID]
}

// FocusNext moves focus from questionID to the next visible question of
// the active stage. It reports false at the end of the stage or when
// questionID is not visible.
func (s *Session) FocusNext(questionID string) bool {
	return s.moveFocus(questionID, 1)
}

func (s *Session) FocusPrev(questionID string) bool {
	return s.moveFocus(questionID, -1)
}

func (s *Session) moveFocus(from string, step int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	visible := s.activeStage().VisibleQuestions(s.flags())
	cur := -1
	for i, q := range visible {
		if q.ID == from {
			cur = i
			break
		}
	}
	target := cur + step
	if cur < 0 || target < 0 || target >= len(visible) {
		return false
	}
	id := visible[target].ID
	s.expanded[id] = true
	s.focus = id
	s.push(Effect{Kind: EffectFocusQuestion, QuestionID: id})
	return true
}

// AttachResume replaces the attachment. It is kept inline until the next
// save.
func (s *Session) AttachResume(name string, data []byte, mimeType string) {
	r := resume.FromFile(name, data, resume.DetectMime(name, mimeType, data))
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resume = &r
}

func (s *Session) ClearResume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resume = nil
}
