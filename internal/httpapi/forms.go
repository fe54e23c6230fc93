package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/muhammadolammi/interviewmate/internal/apierr"
	"github.com/muhammadolammi/interviewmate/internal/auth"
	"github.com/muhammadolammi/interviewmate/internal/interview"
	"github.com/muhammadolammi/interviewmate/internal/wizard"
)

type formEntry struct {
	session *wizard.Session
	owner   string
}

// FormRegistry keeps open form sessions. The least recently used session
// is dropped when the registry is full.
type FormRegistry struct {
	cache *lru.Cache[string, *formEntry]
}

func NewFormRegistry(size int) (*FormRegistry, error) {
	cache, err := lru.New[string, *formEntry](size)
	if err != nil {
		return nil, err
	}
	return &FormRegistry{cache: cache}, nil
}

func (r *FormRegistry) Add(owner string, s *wizard.Session) string {
	id := uuid.NewString()
	r.cache.Add(id, &formEntry{session: s, owner: owner})
	return id
}

// Get returns the session only to the user who opened it.
func (r *FormRegistry) Get(id, owner string) (*wizard.Session, bool) {
	e, ok := r.cache.Get(id)
	if !ok || e.owner != owner {
		return nil, false
	}
	return e.session, true
}

func (r *FormRegistry) Remove(id string) {
	r.cache.Remove(id)
}

func (r *FormRegistry) Len() int { return r.cache.Len() }

type formPayload struct {
	SessionID string           `json:"sessionId"`
	Form      wizard.Snapshot  `json:"form"`
	Effects   []wizard.Effect  `json:"effects"`
	Analysis  *analysisPayload `json:"analysis,omitempty"`
}

func (h *Handler) form(c *gin.Context) (*wizard.Session, bool) {
	s, ok := h.Forms.Get(c.Param("sid"), principal(c).UserID)
	if !ok {
		respondErr(c, apierr.NotFound("form session"))
		return nil, false
	}
	return s, true
}

func writeForm(c *gin.Context, status int, sid string, s *wizard.Session) {
	c.JSON(status, formPayload{SessionID: sid, Form: s.Snapshot(), Effects: s.DrainEffects()})
}

// formFailed reports err along with the effects it queued, such as the
// alert of a failed save.
func formFailed(c *gin.Context, s *wizard.Session, err error) {
	status, code, msg := classify(err)
	c.JSON(status, ErrorEnvelope{Error: APIError{Message: msg, Code: code}, Effects: s.DrainEffects()})
}

// boundSaver saves as the principal that opened the form.
func (h *Handler) boundSaver(p auth.Principal) wizard.Saver {
	return wizard.SaverFunc(func(ctx context.Context, rec interview.Record) error {
		return h.Store.Save(ctx, p, rec)
	})
}

// POST /api/forms
// body: { "type": "STANDARD", "language": "KO" } or { "recordId": "..." }
func (h *Handler) CreateForm(c *gin.Context) {
	var req struct {
		Type     string `json:"type"`
		Language string `json:"language"`
		RecordID string `json:"recordId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	lang, err := interview.ParseLanguage(req.Language)
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	ctx := c.Request.Context()
	p := principal(c)

	var initial *interview.Record
	var t interview.InterviewType
	if req.RecordID != "" {
		rec, err := h.Store.Get(ctx, p, req.RecordID)
		if err != nil {
			respondErr(c, err)
			return
		}
		initial = &rec
		t = rec.Type()
	} else {
		t, err = interview.ParseInterviewType(req.Type)
		if err != nil {
			respondBadRequest(c, err)
			return
		}
		if !p.CanCreate(t) {
			respondErr(c, apierr.Forbidden("type_not_allowed", "이 유형의 면접을 생성할 권한이 없습니다."))
			return
		}
	}

	sc, err := h.Catalog.Lookup(t, lang)
	if err != nil {
		respondErr(c, err)
		return
	}
	cfg := wizard.Config{
		Schema:  sc,
		Type:    t,
		Initial: initial,
		Saver:   h.boundSaver(p),
		Log:     h.log,
	}
	if h.Analysis != nil {
		cfg.Analyzer = h.Analysis
	}
	s, err := wizard.New(cfg)
	if err != nil {
		respondErr(c, err)
		return
	}
	sid := h.Forms.Add(p.UserID, s)
	h.log.Debug("form session opened", "session_id", sid, "record_id", s.ID(), "type", t)
	writeForm(c, http.StatusCreated, sid, s)
}

// GET /api/forms/:sid
func (h *Handler) GetForm(c *gin.Context) {
	s, ok := h.form(c)
	if !ok {
		return
	}
	writeForm(c, http.StatusOK, c.Param("sid"), s)
}

// PATCH /api/forms/:sid/basic-info
// Fields absent from the body keep their current value.
func (h *Handler) PatchBasicInfo(c *gin.Context) {
	s, ok := h.form(c)
	if !ok {
		return
	}
	info := s.BasicInfo()
	if err := c.ShouldBindJSON(&info); err != nil {
		respondBadRequest(c, err)
		return
	}
	s.UpdateBasicInfo(info)
	writeForm(c, http.StatusOK, c.Param("sid"), s)
}

// PUT /api/forms/:sid/answers/:qid
// body: { "value": "..." }
func (h *Handler) PutAnswer(c *gin.Context) {
	s, ok := h.form(c)
	if !ok {
		return
	}
	var req struct {
		Value string `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	if err := s.SetAnswer(c.Param("qid"), req.Value); err != nil {
		formFailed(c, s, err)
		return
	}
	writeForm(c, http.StatusOK, c.Param("sid"), s)
}

// POST /api/forms/:sid/notices
// body: { "section": "...", "index": 0, "checked": true }
func (h *Handler) SetNotice(c *gin.Context) {
	s, ok := h.form(c)
	if !ok {
		return
	}
	var req struct {
		Section string `json:"section" binding:"required"`
		Index   int    `json:"index"`
		Checked bool   `json:"checked"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	if err := s.SetNotice(req.Section, req.Index, req.Checked); err != nil {
		formFailed(c, s, apierr.Validation(err.Error()))
		return
	}
	writeForm(c, http.StatusOK, c.Param("sid"), s)
}

// POST /api/forms/:sid/consent
// body: { "section": "...", "checked": true }
func (h *Handler) SetConsent(c *gin.Context) {
	s, ok := h.form(c)
	if !ok {
		return
	}
	var req struct {
		Section string `json:"section" binding:"required"`
		Checked bool   `json:"checked"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	if err := s.SetConsent(req.Section, req.Checked); err != nil {
		formFailed(c, s, err)
		return
	}
	writeForm(c, http.StatusOK, c.Param("sid"), s)
}

// POST /api/forms/:sid/next
// On the last stage this saves and closes the form.
func (h *Handler) NextStage(c *gin.Context) {
	s, ok := h.form(c)
	if !ok {
		return
	}
	if err := s.Next(c.Request.Context()); err != nil {
		formFailed(c, s, err)
		return
	}
	h.respondAfterSave(c, s)
}

// POST /api/forms/:sid/prev
func (h *Handler) PrevStage(c *gin.Context) {
	s, ok := h.form(c)
	if !ok {
		return
	}
	s.Prev()
	writeForm(c, http.StatusOK, c.Param("sid"), s)
}

// POST /api/forms/:sid/stages/:stage
func (h *Handler) JumpToStage(c *gin.Context) {
	s, ok := h.form(c)
	if !ok {
		return
	}
	if err := s.JumpToStage(c.Param("stage")); err != nil {
		formFailed(c, s, err)
		return
	}
	writeForm(c, http.StatusOK, c.Param("sid"), s)
}

// POST /api/forms/:sid/questions/:qid/toggle
func (h *Handler) ToggleQuestion(c *gin.Context) {
	s, ok := h.form(c)
	if !ok {
		return
	}
	if err := s.ToggleQuestion(c.Param("qid")); err != nil {
		formFailed(c, s, err)
		return
	}
	writeForm(c, http.StatusOK, c.Param("sid"), s)
}

// POST /api/forms/:sid/questions/:qid/focus?dir=next|prev
// Moves focus to the neighbouring visible question, if there is one.
func (h *Handler) FocusQuestion(c *gin.Context) {
	s, ok := h.form(c)
	if !ok {
		return
	}
	switch c.DefaultQuery("dir", "next") {
	case "next":
		s.FocusNext(c.Param("qid"))
	case "prev":
		s.FocusPrev(c.Param("qid"))
	default:
		respondBadRequest(c, errors.New("dir must be next or prev"))
		return
	}
	writeForm(c, http.StatusOK, c.Param("sid"), s)
}

// POST /api/forms/:sid/resume (multipart field "file")
func (h *Handler) AttachResume(c *gin.Context) {
	s, ok := h.form(c)
	if !ok {
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	f, err := fh.Open()
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	s.AttachResume(fh.Filename, data, fh.Header.Get("Content-Type"))
	writeForm(c, http.StatusOK, c.Param("sid"), s)
}

// DELETE /api/forms/:sid/resume
func (h *Handler) ClearResume(c *gin.Context) {
	s, ok := h.form(c)
	if !ok {
		return
	}
	s.ClearResume()
	writeForm(c, http.StatusOK, c.Param("sid"), s)
}

// POST /api/forms/:sid/save?close=1
func (h *Handler) SaveForm(c *gin.Context) {
	s, ok := h.form(c)
	if !ok {
		return
	}
	mode := wizard.ModeCheckpoint
	if c.Query("close") == "1" {
		mode = wizard.ModeClose
	}
	if err := s.Save(c.Request.Context(), mode); err != nil {
		formFailed(c, s, err)
		return
	}
	h.respondAfterSave(c, s)
}

// respondAfterSave writes the form and forgets the session once it has
// been closed.
func (h *Handler) respondAfterSave(c *gin.Context, s *wizard.Session) {
	sid := c.Param("sid")
	snap := s.Snapshot()
	effects := s.DrainEffects()
	for _, e := range effects {
		if e.Kind == wizard.EffectClose {
			h.Forms.Remove(sid)
			break
		}
	}
	c.JSON(http.StatusOK, formPayload{SessionID: sid, Form: snap, Effects: effects})
}

// POST /api/forms/:sid/analyze?stream=1
func (h *Handler) AnalyzeForm(c *gin.Context) {
	s, ok := h.form(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if c.Query("stream") == "1" {
		if strings.TrimSpace(s.BasicInfo().Name) == "" {
			// report the alert as a plain response before committing to a stream
			_, err := s.Analyze(ctx)
			formFailed(c, s, err)
			return
		}
		startStream(c)
		res, err := s.AnalyzeStream(ctx, func(acc string) { h.sendChunk(c, acc) })
		h.finishStream(c, res, err, s.DrainEffects())
		return
	}
	res, err := s.Analyze(ctx)
	if err != nil {
		formFailed(c, s, err)
		return
	}
	c.JSON(http.StatusOK, formPayload{
		SessionID: c.Param("sid"),
		Form:      s.Snapshot(),
		Effects:   s.DrainEffects(),
		Analysis:  &analysisPayload{Result: res, Blocks: h.Formatter.Format(res.Text)},
	})
}
