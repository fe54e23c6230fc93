package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/muhammadolammi/interviewmate/internal/analysis"
	"github.com/muhammadolammi/interviewmate/internal/wizard"
)

// Stream events: "chunk" for each partial summary with its rendered blocks,
// then "done" with the final result, or "error" when the summary could not
// be stored. Both final events carry the form effects queued by the run.
const (
	eventChunk = "chunk"
	eventDone  = "done"
	eventError = "error"
)

func startStream(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
}

func (h *Handler) sendChunk(c *gin.Context, accumulated string) {
	c.SSEvent(eventChunk, chunkPayload{Text: accumulated, Blocks: h.Formatter.Format(accumulated)})
	c.Writer.Flush()
}

type streamDone struct {
	analysisPayload
	Effects []wizard.Effect `json:"effects,omitempty"`
}

type streamError struct {
	APIError
	Effects []wizard.Effect `json:"effects,omitempty"`
}

func (h *Handler) finishStream(c *gin.Context, res analysis.Result, saveErr error, effects []wizard.Effect) {
	if saveErr != nil {
		_, code, msg := classify(saveErr)
		c.SSEvent(eventError, streamError{APIError: APIError{Message: msg, Code: code}, Effects: effects})
		c.Writer.Flush()
		return
	}
	c.SSEvent(eventDone, streamDone{
		analysisPayload: analysisPayload{Result: res, Blocks: h.Formatter.Format(res.Text)},
		Effects:         effects,
	})
	c.Writer.Flush()
}
