// Package store persists interview records with per-user ownership.
package store

import (
	"context"
	"net/http"
	"strings"

	"github.com/muhammadolammi/interviewmate/internal/apierr"
	"github.com/muhammadolammi/interviewmate/internal/auth"
	"github.com/muhammadolammi/interviewmate/internal/interview"
)

// Store is the record store. Records are owned by the principal that first
// saved them; ownership survives later updates by privileged users.
type Store interface {
	// Save upserts rec under rec.ID.
	Save(ctx context.Context, p auth.Principal, rec interview.Record) error
	Get(ctx context.Context, p auth.Principal, id string) (interview.Record, error)
	// List returns the records visible to p, newest first.
	List(ctx context.Context, p auth.Principal) ([]interview.Record, error)
	Delete(ctx context.Context, p auth.Principal, id string) error
	// SetSummary replaces only the AI summary of a stored record.
	SetSummary(ctx context.Context, p auth.Principal, id, summary string) error
}

// System is the principal background workers act as.
var System = auth.Principal{UserID: "system", Role: auth.RoleAdmin}

func errNotFound() error { return apierr.NotFound("record") }

func errForbidden() error {
	return apierr.Forbidden("forbidden", "이 기록에 대한 권한이 없습니다.")
}

func requirePrincipal(p auth.Principal) error {
	if p.UserID == "" {
		return apierr.Unauthorized(auth.MsgLoginRequired)
	}
	return nil
}

func validateRecord(rec interview.Record) error {
	if strings.TrimSpace(rec.ID) == "" {
		return apierr.New(apierr.KindValidation, http.StatusBadRequest, "validation_failed", "record id is required", nil)
	}
	if strings.TrimSpace(rec.BasicInfo.Name) == "" {
		return apierr.Validation(interview.MsgNameRequired)
	}
	return nil
}

// canAccess reports whether p may read or change a record owned by owner.
func canAccess(p auth.Principal, owner string) bool {
	return p.SeesAllRecords() || p.UserID == owner
}
