// Package wizard is the interview form controller: a multi-stage form over
// a schema, holding the in-progress answers of one record and driving save
// and analysis.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/muhammadolammi/interviewmate/internal/analysis"
	"github.com/muhammadolammi/interviewmate/internal/interview"
	"github.com/muhammadolammi/interviewmate/internal/logger"
	"github.com/muhammadolammi/interviewmate/internal/schema"
)

var (
	ErrUnknownStage    = errors.New("unknown stage")
	ErrUnknownQuestion = errors.New("unknown question")
	ErrUnknownSection  = errors.New("unknown section")
	ErrNoStages        = errors.New("schema has no stages")
)

// Saver persists a record. Implementations bind the acting principal.
type Saver interface {
	Save(ctx context.Context, rec interview.Record) error
}

type SaverFunc func(ctx context.Context, rec interview.Record) error

func (f SaverFunc) Save(ctx context.Context, rec interview.Record) error { return f(ctx, rec) }

type Analyzer interface {
	Analyze(ctx context.Context, rec interview.Record, sc *schema.Schema) analysis.Result
	AnalyzeStream(ctx context.Context, rec interview.Record, sc *schema.Schema, onChunk func(string)) analysis.Result
}

type Config struct {
	Schema *schema.Schema
	// Type is the interview type stamped on saved records. Defaults to the
	// initial record's type, then to the schema's.
	Type interview.InterviewType
	// Initial resumes an existing record. Nil starts a new interview.
	Initial  *interview.Record
	Saver    Saver
	Analyzer Analyzer
	Log      *logger.Logger
	Now      func() time.Time
	NewID    func() string
}

type Session struct {
	mu sync.Mutex

	schema    *schema.Schema
	itype     interview.InterviewType
	recordID  string
	createdAt int64

	basic   interview.BasicInfo
	answers interview.Answers
	resume  *interview.Resume
	summary string

	active   int
	expanded map[string]bool
	focus    string

	saving    int
	analyzing int
	effects   []Effect

	saver    Saver
	analyzer Analyzer
	log      *logger.Logger
	now      func() time.Time
}

// New starts a form session at the first stage. A new interview gets a
// fresh record id that is reused by every save of the session.
func New(cfg Config) (*Session, error) {
	if cfg.Schema == nil || len(cfg.Schema.Stages) == 0 {
		return nil, ErrNoStages
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	if cfg.Log == nil {
		cfg.Log = logger.Nop()
	}

	s := &Session{
		schema:   cfg.Schema,
		itype:    cfg.Type,
		answers:  interview.NewAnswers(),
		expanded: map[string]bool{},
		saver:    cfg.Saver,
		analyzer: cfg.Analyzer,
		log:      cfg.Log.With("component", "wizard"),
		now:      cfg.Now,
	}
	if init := cfg.Initial; init != nil {
		s.recordID = init.ID
		s.createdAt = init.CreatedAt
		s.basic = init.BasicInfo
		s.answers = init.Answers.Clone()
		if init.Resume != nil {
			r := *init.Resume
			s.resume = &r
		}
		s.summary = init.AISummary
		if s.itype == "" {
			s.itype = init.Type()
		}
	}
	if s.recordID == "" {
		s.recordID = cfg.NewID()
	}
	if s.basic.Date == "" {
		s.basic.Date = s.now().Format(time.DateOnly)
	}
	if s.itype == "" {
		s.itype = cfg.Schema.Type
	}
	if s.itype == "" {
		s.itype = interview.TypeStandard
	}
	s.autoExpand()
	return s, nil
}

func (s *Session) ID() string {
	return s.recordID
}

func (s *Session) Schema() *schema.Schema {
	return s.schema
}

func (s *Session) activeStage() schema.Stage {
	return s.schema.Stages[s.active]
}

func (s *Session) isLast() bool {
	return s.active == len(s.schema.Stages)-1
}

// setStage moves to stage i, expanding answered questions and asking the
// view to scroll.
func (s *Session) setStage(i int) {
	if i == s.active {
		return
	}
	s.active = i
	s.focus = ""
	s.autoExpand()
	s.push(Effect{Kind: EffectScrollToStage, StageID: s.activeStage().ID})
}

// autoExpand opens every question of the active stage that has an answer.
func (s *Session) autoExpand() {
	for _, sec := range s.activeStage().Sections {
		for _, q := range sec.Questions {
			if s.answers.HasText(q.ID) {
				s.expanded[q.ID] = true
			}
		}
	}
}

// Next advances one stage. On the last stage it saves and closes instead.
func (s *Session) Next(ctx context.Context) error {
	s.mu.Lock()
	if !s.isLast() {
		s.setStage(s.active + 1)
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()
	return s.Save(ctx, ModeClose)
}

// Prev goes back one stage; it does nothing on the first stage.
func (s *Session) Prev() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active > 0 {
		s.setStage(s.active - 1)
	}
}

// JumpToStage selects any stage directly.
func (s *Session) JumpToStage(stageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.schema.StageIndex(stageID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownStage, stageID)
	}
	s.setStage(i)
	return nil
}

func (s *Session) ActiveStageIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *Session) flags() schema.Flags {
	return schema.FlagsFrom(s.basic)
}

// VisibleSections returns the active stage's sections whose condition
// holds for the current basic info.
func (s *Session) VisibleSections() []schema.Section {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeStage().VisibleSections(s.flags())
}
