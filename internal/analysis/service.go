package analysis

import (
	"context"
	"strings"

	"github.com/muhammadolammi/interviewmate/internal/interview"
	"github.com/muhammadolammi/interviewmate/internal/logger"
	"github.com/muhammadolammi/interviewmate/internal/resume"
	"github.com/muhammadolammi/interviewmate/internal/schema"
)

// Texts returned in place of a summary.
const (
	MsgMissingKey = "API Key is missing. Please configure your environment."
	MsgNoNotes    = "No interview notes recorded to analyze."
	MsgEmpty      = "Could not generate summary."
	MsgFailed     = "AI 분석 중 오류가 발생했습니다. 잠시 후 다시 시도해주세요."
)

type Status string

const (
	StatusOK       Status = "ok"
	StatusDisabled Status = "disabled"
	StatusNoNotes  Status = "no_notes"
	StatusEmpty    Status = "empty"
	StatusFailed   Status = "failed"
)

// Result is the outcome of one analysis. Text is always displayable: the
// summary on success, a fixed message otherwise.
type Result struct {
	Text   string `json:"text"`
	Status Status `json:"status"`
	Err    error  `json:"-"`
}

// OK reports whether Text is a model-written summary.
func (r Result) OK() bool { return r.Status == StatusOK }

type Options struct {
	// IncludeResume adds the extracted resume text to the prompt.
	IncludeResume bool
}

// Service turns records into prompts and model failures into messages.
// Errors never escape as Go errors.
type Service struct {
	req  Requester
	opts Options
	log  *logger.Logger
}

// NewService wraps req. A nil req means no API key is configured.
func NewService(req Requester, opts Options, log *logger.Logger) *Service {
	return &Service{req: req, opts: opts, log: log.With("component", "analysis")}
}

// Enabled reports whether a model is configured.
func (s *Service) Enabled() bool { return s.req != nil }

func (s *Service) prompt(rec interview.Record, sc *schema.Schema) (string, bool) {
	var opts PromptOptions
	if s.opts.IncludeResume && rec.Resume != nil {
		text, err := resume.TextOf(*rec.Resume)
		if err != nil {
			s.log.Warn("Text extraction failed", "record_id", rec.ID, "error", err)
		} else {
			opts.ResumeText = text
		}
	}
	return BuildPrompt(rec, sc, opts)
}

func (s *Service) finish(rec interview.Record, text string, err error) Result {
	if err != nil {
		s.log.Error("Gemini API Error", "record_id", rec.ID, "error", err)
		return Result{Text: MsgFailed, Status: StatusFailed, Err: err}
	}
	text = unwrapFence(text)
	if strings.TrimSpace(text) == "" {
		return Result{Text: MsgEmpty, Status: StatusEmpty}
	}
	return Result{Text: text, Status: StatusOK}
}

func (s *Service) precheck(rec interview.Record, sc *schema.Schema) (string, *Result) {
	if s.req == nil {
		return "", &Result{Text: MsgMissingKey, Status: StatusDisabled}
	}
	prompt, ok := s.prompt(rec, sc)
	if !ok {
		return "", &Result{Text: MsgNoNotes, Status: StatusNoNotes}
	}
	return prompt, nil
}

// Analyze requests the whole summary in one call.
func (s *Service) Analyze(ctx context.Context, rec interview.Record, sc *schema.Schema) Result {
	prompt, early := s.precheck(rec, sc)
	if early != nil {
		return *early
	}
	text, err := s.req.Summarize(ctx, prompt)
	return s.finish(rec, text, err)
}

// AnalyzeStream is Analyze with incremental delivery. onChunk receives the
// accumulated text after every delta, ready to be re-formatted.
func (s *Service) AnalyzeStream(ctx context.Context, rec interview.Record, sc *schema.Schema, onChunk func(accumulated string)) Result {
	prompt, early := s.precheck(rec, sc)
	if early != nil {
		return *early
	}
	var acc strings.Builder
	text, err := s.req.SummarizeStream(ctx, prompt, func(delta string) {
		acc.WriteString(delta)
		if onChunk != nil {
			onChunk(acc.String())
		}
	})
	return s.finish(rec, text, err)
}
