// Package auth verifies bearer tokens and resolves the signed-in
// principal and its role.
package auth

import (
	"context"

	"github.com/muhammadolammi/interviewmate/internal/interview"
)

const (
	RoleAdmin      = "admin"
	RoleHRDirector = "hr_director"
)

type Principal struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role,omitempty"`
}

// SeesAllRecords is true for roles that may read every user's records.
func (p Principal) SeesAllRecords() bool {
	return p.Role == RoleAdmin || p.Role == RoleHRDirector
}

// CanCreate reports whether the principal may start an interview of type t.
func (p Principal) CanCreate(t interview.InterviewType) bool {
	switch t {
	case interview.TypeStandard:
		return p.Role != RoleHRDirector
	case interview.TypeDepth:
		return p.Role == RoleAdmin
	case interview.TypeHR:
		return p.Role == RoleAdmin || p.Role == RoleHRDirector
	default:
		return false
	}
}

// CreatableTypes lists the interview types offered to the principal.
func (p Principal) CreatableTypes() []interview.InterviewType {
	var out []interview.InterviewType
	for _, t := range []interview.InterviewType{interview.TypeStandard, interview.TypeDepth, interview.TypeHR} {
		if p.CanCreate(t) {
			out = append(out, t)
		}
	}
	return out
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok && p.UserID != ""
}
