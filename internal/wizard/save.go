package wizard

import (
	"context"
	"errors"
	"strings"

	"github.com/muhammadolammi/interviewmate/internal/analysis"
	"github.com/muhammadolammi/interviewmate/internal/apierr"
	"github.com/muhammadolammi/interviewmate/internal/interview"
)

type Mode int

const (
	// ModeCheckpoint saves and stays on the form.
	ModeCheckpoint Mode = iota
	// ModeClose saves and asks the parent to leave the form.
	ModeClose
)

const msgUnknownError = "알 수 없는 오류가 발생했습니다."

var ErrNoSaver = errors.New("no record store configured")

// record assembles the persistent record from the current state. Callers
// hold the lock.
func (s *Session) record() interview.Record {
	info := s.basic
	info.InterviewType = s.itype
	rec := interview.Record{
		ID:        s.recordID,
		BasicInfo: info,
		Answers:   s.answers.Clone(),
		AISummary: s.summary,
		CreatedAt: s.createdAt,
	}
	if rec.CreatedAt == 0 {
		rec.CreatedAt = s.now().UnixMilli()
	}
	if s.resume != nil {
		r := *s.resume
		rec.Resume = &r
	}
	return rec
}

// Record returns the record a save would persist right now.
func (s *Session) Record() interview.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record()
}

func (s *Session) hasName() bool {
	return strings.TrimSpace(s.basic.Name) != ""
}

func saveFailedMessage(err error) string {
	msg := err.Error()
	if e, ok := apierr.As(err); ok && e.Message != "" {
		msg = e.Message
	}
	if msg == "" {
		msg = msgUnknownError
	}
	return interview.MsgSaveFailedPrefix + msg
}

// persist saves rec and pins the creation time on first success. The lock
// is not held.
func (s *Session) persist(ctx context.Context, rec interview.Record) error {
	if s.saver == nil {
		return ErrNoSaver
	}
	s.mu.Lock()
	s.saving++
	s.mu.Unlock()

	err := s.saver.Save(ctx, rec)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.saving--
	if err == nil && s.createdAt == 0 {
		s.createdAt = rec.CreatedAt
	}
	return err
}

// Save persists the record under the session's record id. A blank
// candidate name aborts before the store is touched.
func (s *Session) Save(ctx context.Context, mode Mode) error {
	s.mu.Lock()
	if !s.hasName() {
		s.alert(interview.MsgNameRequired)
		s.mu.Unlock()
		return apierr.Validation(interview.MsgNameRequired)
	}
	rec := s.record()
	s.mu.Unlock()

	err := s.persist(ctx, rec)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.log.Warn("save failed", "record_id", rec.ID, "err", err)
		s.alert(saveFailedMessage(err))
		return err
	}
	if mode == ModeClose {
		s.push(Effect{Kind: EffectClose})
	} else {
		s.alert(interview.MsgCheckpointSaved)
	}
	return nil
}

// Analyze asks for an AI summary of the current answers. A successful
// summary is stored on the record and saved right away; a failed save is
// only logged. Any other outcome is shown as an alert and leaves the
// existing summary alone: fixed texts such as analysis.MsgFailed or
// analysis.MsgNoNotes are returned in the result but never written to the
// record's summary.
//
// Calls are not serialized: a second Analyze may start while one is
// running and the later completion wins.
func (s *Session) Analyze(ctx context.Context) (analysis.Result, error) {
	return s.analyze(ctx, nil)
}

// AnalyzeStream is Analyze with the summary delivered progressively to
// onChunk as accumulated text.
func (s *Session) AnalyzeStream(ctx context.Context, onChunk func(string)) (analysis.Result, error) {
	if onChunk == nil {
		onChunk = func(string) {}
	}
	return s.analyze(ctx, onChunk)
}

func (s *Session) analyze(ctx context.Context, onChunk func(string)) (analysis.Result, error) {
	s.mu.Lock()
	if !s.hasName() {
		s.alert(interview.MsgAnalyzeNeedsInfo)
		s.mu.Unlock()
		return analysis.Result{}, apierr.Validation(interview.MsgAnalyzeNeedsInfo)
	}
	if s.analyzer == nil {
		s.alert(analysis.MsgMissingKey)
		s.mu.Unlock()
		return analysis.Result{Text: analysis.MsgMissingKey, Status: analysis.StatusDisabled}, nil
	}
	snapshot := s.record()
	s.analyzing++
	s.mu.Unlock()

	var res analysis.Result
	if onChunk != nil {
		res = s.analyzer.AnalyzeStream(ctx, snapshot, s.schema, onChunk)
	} else {
		res = s.analyzer.Analyze(ctx, snapshot, s.schema)
	}

	s.mu.Lock()
	s.analyzing--
	if !res.OK() {
		s.alert(res.Text)
		s.mu.Unlock()
		return res, nil
	}
	s.summary = res.Text
	rec := s.record()
	s.mu.Unlock()

	if err := s.persist(ctx, rec); err != nil {
		s.log.Error("failed to save analysis", "record_id", rec.ID, "err", err)
	}
	return res, nil
}
