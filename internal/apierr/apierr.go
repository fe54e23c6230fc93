// Package apierr is the error taxonomy shared by the form controller, the
// record store and the HTTP layer.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindRemote
	KindAuthorization
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindRemote:
		return "remote"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Error carries a user-facing Message next to the wrapped cause.
type Error struct {
	Kind    Kind
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil && e.Message != "" {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, status int, code, message string, err error) *Error {
	return &Error{Kind: kind, Status: status, Code: code, Message: message, Err: err}
}

func Validation(message string) *Error {
	return New(KindValidation, http.StatusBadRequest, "validation_failed", message, nil)
}

// Remote wraps a failed call to the store, the AI backend or the queue.
// The message keeps the underlying cause so the dialog can show it.
func Remote(op string, err error) *Error {
	msg := "알 수 없는 오류가 발생했습니다."
	if err != nil {
		msg = err.Error()
	}
	return New(KindRemote, http.StatusBadGateway, op+"_failed", msg, err)
}

func Forbidden(code, message string) *Error {
	return New(KindAuthorization, http.StatusForbidden, code, message, nil)
}

func Unauthorized(message string) *Error {
	return New(KindAuthorization, http.StatusUnauthorized, "unauthorized", message, nil)
}

func NotFound(what string) *Error {
	return New(KindNotFound, http.StatusNotFound, "not_found", what+" not found", nil)
}

// As extracts an *Error from err; ok is false for foreign errors.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func IsKind(err error, kind Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == kind
}
