package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/muhammadolammi/interviewmate/internal/analysis"
	"github.com/muhammadolammi/interviewmate/internal/apierr"
	"github.com/muhammadolammi/interviewmate/internal/events"
	"github.com/muhammadolammi/interviewmate/internal/formatter"
	"github.com/muhammadolammi/interviewmate/internal/interview"
)

// GET /api/me
func (h *Handler) Me(c *gin.Context) {
	p := principal(c)
	RespondOK(c, gin.H{"me": p, "creatableTypes": p.CreatableTypes()})
}

// POST /api/logout
// Tokens are stateless; the client drops its copy.
func (h *Handler) Logout(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// GET /api/schemas/:type?lang=KO
func (h *Handler) GetSchema(c *gin.Context) {
	t, err := interview.ParseInterviewType(c.Param("type"))
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	lang, err := interview.ParseLanguage(c.Query("lang"))
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	sc, err := h.Catalog.Lookup(t, lang)
	if err != nil {
		respondErr(c, err)
		return
	}
	RespondOK(c, gin.H{"schema": sc})
}

// POST /api/format
// body: { "text": "..." }
func (h *Handler) Format(c *gin.Context) {
	var req struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	RespondOK(c, gin.H{"blocks": h.Formatter.Format(req.Text)})
}

// GET /api/records?q=
func (h *Handler) ListRecords(c *gin.Context) {
	records, err := h.Store.List(c.Request.Context(), principal(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	matched := h.Matcher.Filter(records, c.Query("q"))
	RespondOK(c, gin.H{"records": matched, "total": len(records)})
}

// GET /api/records/:id
func (h *Handler) GetRecord(c *gin.Context) {
	rec, err := h.Store.Get(c.Request.Context(), principal(c), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	RespondOK(c, gin.H{"record": rec})
}

// validationMessage turns validator errors into the message shown to the
// interviewer.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Field() == "Name" {
				return interview.MsgNameRequired
			}
		}
		fe := verrs[0]
		return "invalid " + fe.Field() + ": " + fe.Tag()
	}
	return err.Error()
}

// PUT /api/records/:id
// Creates or replaces the record. Creating requires the principal to be
// allowed the record's interview type.
func (h *Handler) PutRecord(c *gin.Context) {
	var rec interview.Record
	if err := c.ShouldBindJSON(&rec); err != nil {
		respondBadRequest(c, err)
		return
	}
	id := c.Param("id")
	if rec.ID != "" && rec.ID != id {
		respondBadRequest(c, errors.New("record id does not match the path"))
		return
	}
	rec.ID = id
	t, err := interview.ParseInterviewType(string(rec.BasicInfo.InterviewType))
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	rec.BasicInfo.InterviewType = t
	if err := rec.BasicInfo.Validate(); err != nil {
		respondErr(c, apierr.Validation(validationMessage(err)))
		return
	}

	ctx := c.Request.Context()
	p := principal(c)
	if _, err := h.Store.Get(ctx, p, id); err != nil {
		if !apierr.IsKind(err, apierr.KindNotFound) {
			respondErr(c, err)
			return
		}
		if !p.CanCreate(t) {
			respondErr(c, apierr.Forbidden("type_not_allowed", "이 유형의 면접을 생성할 권한이 없습니다."))
			return
		}
		if rec.CreatedAt == 0 {
			rec.CreatedAt = time.Now().UnixMilli()
		}
	}
	if err := h.Store.Save(ctx, p, rec); err != nil {
		respondErr(c, err)
		return
	}
	RespondOK(c, gin.H{"record": rec})
}

// DELETE /api/records/:id
func (h *Handler) DeleteRecord(c *gin.Context) {
	if err := h.Store.Delete(c.Request.Context(), principal(c), c.Param("id")); err != nil {
		if apierr.IsKind(err, apierr.KindRemote) {
			err = apierr.New(apierr.KindRemote, http.StatusBadGateway, "delete_failed", interview.MsgDeleteFailed, err)
		}
		respondErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type analysisPayload struct {
	Result analysis.Result   `json:"result"`
	Blocks []formatter.Block `json:"blocks"`
}

type chunkPayload struct {
	Text   string            `json:"text"`
	Blocks []formatter.Block `json:"blocks"`
}

// POST /api/records/:id/analyze?lang=&stream=1|async=1
// A successful summary is stored on the record. Failure texts are returned
// but never stored.
func (h *Handler) AnalyzeRecord(c *gin.Context) {
	ctx := c.Request.Context()
	p := principal(c)
	rec, err := h.Store.Get(ctx, p, c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	lang, err := interview.ParseLanguage(c.Query("lang"))
	if err != nil {
		respondBadRequest(c, err)
		return
	}

	if c.Query("async") == "1" {
		h.enqueueAnalysis(c, events.Job{RecordID: rec.ID, Type: rec.Type(), Language: lang, RequestedBy: p.UserID})
		return
	}

	sc, err := h.Catalog.Lookup(rec.Type(), lang)
	if err != nil {
		respondErr(c, err)
		return
	}

	if c.Query("stream") == "1" {
		startStream(c)
		res := h.Analysis.AnalyzeStream(ctx, rec, sc, func(acc string) {
			h.sendChunk(c, acc)
		})
		var saveErr error
		if res.OK() {
			saveErr = summarySaveErr(h.Store.SetSummary(ctx, p, rec.ID, res.Text))
		}
		h.finishStream(c, res, saveErr, nil)
		return
	}

	res := h.Analysis.Analyze(ctx, rec, sc)
	if res.OK() {
		if err := summarySaveErr(h.Store.SetSummary(ctx, p, rec.ID, res.Text)); err != nil {
			respondErr(c, err)
			return
		}
	}
	RespondOK(c, analysisPayload{Result: res, Blocks: h.Formatter.Format(res.Text)})
}

func (h *Handler) enqueueAnalysis(c *gin.Context, job events.Job) {
	if h.Jobs == nil {
		RespondError(c, http.StatusServiceUnavailable, "queue_unavailable", errors.New("analysis queue is not configured"))
		return
	}
	if err := h.Jobs.Enqueue(c.Request.Context(), job); err != nil {
		h.log.Error("failed to enqueue analysis", "record_id", job.RecordID, "err", err)
		respondErr(c, apierr.Remote("enqueue_analysis", err))
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": events.StatusProcessing, "recordId": job.RecordID})
}

// summarySaveErr replaces a remote failure of the summary write with the
// message the form shows for it.
func summarySaveErr(err error) error {
	if err == nil || !apierr.IsKind(err, apierr.KindRemote) {
		return err
	}
	return apierr.New(apierr.KindRemote, http.StatusBadGateway, "analysis_save_failed", interview.MsgAnalysisSaveFailed, err)
}
