package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/muhammadolammi/interviewmate/internal/apierr"
	"github.com/muhammadolammi/interviewmate/internal/schema"
	"github.com/muhammadolammi/interviewmate/internal/wizard"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
	// Effects carries the form effects queued by a failed form action.
	Effects []wizard.Effect `json:"effects,omitempty"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// classify maps an error to its status, code and user-facing message.
func classify(err error) (int, string, string) {
	if e, ok := apierr.As(err); ok {
		msg := e.Message
		if msg == "" {
			msg = e.Error()
		}
		return e.Status, e.Code, msg
	}
	switch {
	case errors.Is(err, schema.ErrSchemaNotFound),
		errors.Is(err, wizard.ErrUnknownStage),
		errors.Is(err, wizard.ErrUnknownQuestion),
		errors.Is(err, wizard.ErrUnknownSection):
		return http.StatusNotFound, "not_found", err.Error()
	case errors.Is(err, wizard.ErrNoSaver):
		return http.StatusServiceUnavailable, "store_unavailable", err.Error()
	default:
		return http.StatusInternalServerError, "internal", "internal error"
	}
}

// respondErr writes err in the error envelope, hiding internal details.
func respondErr(c *gin.Context, err error) {
	status, code, msg := classify(err)
	c.JSON(status, ErrorEnvelope{Error: APIError{Message: msg, Code: code}})
}

func respondBadRequest(c *gin.Context, err error) {
	RespondError(c, http.StatusBadRequest, "invalid_request", err)
}
