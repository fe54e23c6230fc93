package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/muhammadolammi/interviewmate/internal/apierr"
	"github.com/muhammadolammi/interviewmate/internal/auth"
	"github.com/muhammadolammi/interviewmate/internal/database"
	"github.com/muhammadolammi/interviewmate/internal/interview"
	"github.com/muhammadolammi/interviewmate/internal/logger"
	"github.com/muhammadolammi/interviewmate/internal/retry"
)

// Postgres stores records in the interview_records table.
type Postgres struct {
	q   *database.Queries
	log *logger.Logger
	now func() time.Time
}

func NewPostgres(q *database.Queries, log *logger.Logger) *Postgres {
	return &Postgres{q: q, log: log.With("component", "store"), now: time.Now}
}

// row is a record encoded for the interview_records columns.
type row struct {
	ID        uuid.UUID
	BasicInfo json.RawMessage
	Answers   json.RawMessage
	Resume    json.RawMessage
	AiSummary sql.NullString
	CreatedAt time.Time
}

func encodeRecord(rec interview.Record, now time.Time) (row, error) {
	id, err := uuid.Parse(rec.ID)
	if err != nil {
		return row{}, apierr.Validation(fmt.Sprintf("invalid record id %q", rec.ID))
	}
	basic, err := json.Marshal(rec.BasicInfo)
	if err != nil {
		return row{}, fmt.Errorf("encode basic info: %w", err)
	}
	answers, err := json.Marshal(rec.Answers)
	if err != nil {
		return row{}, fmt.Errorf("encode answers: %w", err)
	}
	resume, err := json.Marshal(rec.Resume)
	if err != nil {
		return row{}, fmt.Errorf("encode resume: %w", err)
	}
	created := now
	if rec.CreatedAt != 0 {
		created = time.UnixMilli(rec.CreatedAt)
	}
	return row{
		ID:        id,
		BasicInfo: basic,
		Answers:   answers,
		Resume:    resume,
		AiSummary: sql.NullString{String: rec.AISummary, Valid: rec.AISummary != ""},
		CreatedAt: created,
	}, nil
}

func decodeRecord(r database.InterviewRecord) (interview.Record, error) {
	rec := interview.Record{
		ID:        r.ID.String(),
		AISummary: r.AiSummary.String,
		CreatedAt: r.CreatedAt.UnixMilli(),
		Answers:   interview.NewAnswers(),
	}
	if err := json.Unmarshal(r.BasicInfo, &rec.BasicInfo); err != nil {
		return interview.Record{}, fmt.Errorf("decode basic_info of %s: %w", rec.ID, err)
	}
	if len(r.Answers) > 0 {
		if err := json.Unmarshal(r.Answers, &rec.Answers); err != nil {
			return interview.Record{}, fmt.Errorf("decode answers of %s: %w", rec.ID, err)
		}
	}
	if len(r.Resume) > 0 {
		if err := json.Unmarshal(r.Resume, &rec.Resume); err != nil {
			return interview.Record{}, fmt.Errorf("decode resume of %s: %w", rec.ID, err)
		}
	}
	return rec, nil
}

func decodeRecords(rows []database.InterviewRecord) ([]interview.Record, error) {
	out := make([]interview.Record, 0, len(rows))
	for _, r := range rows {
		rec, err := decodeRecord(r)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// Save keeps the original owner of an existing record and inserts new
// records under p. A first save is an upsert, so two first saves of one
// id by the same user are last-write-wins. When another user created the
// record in the meantime the upsert touches nothing and the save falls
// back to the owner check.
func (s *Postgres) Save(ctx context.Context, p auth.Principal, rec interview.Record) error {
	if err := requirePrincipal(p); err != nil {
		return err
	}
	if err := validateRecord(rec); err != nil {
		return err
	}
	r, err := encodeRecord(rec, s.now())
	if err != nil {
		return err
	}

	owner, err := s.q.GetInterviewRecordOwner(ctx, r.ID)
	if errors.Is(err, sql.ErrNoRows) {
		userID, perr := uuid.Parse(p.UserID)
		if perr != nil {
			return apierr.Unauthorized(auth.MsgLoginRequired)
		}
		var n int64
		n, err = s.q.CreateInterviewRecord(ctx, database.CreateInterviewRecordParams{
			ID:        r.ID,
			UserID:    userID,
			BasicInfo: r.BasicInfo,
			Answers:   r.Answers,
			Resume:    r.Resume,
			AiSummary: r.AiSummary,
			CreatedAt: r.CreatedAt,
		})
		if err != nil {
			s.log.Error("Save Error", "record_id", rec.ID, "error", err)
			return apierr.Remote("save_record", err)
		}
		if n > 0 {
			s.log.Info("record saved", "record_id", rec.ID, "user_id", p.UserID)
			return nil
		}
		// created concurrently by another user
		owner, err = s.q.GetInterviewRecordOwner(ctx, r.ID)
	}
	if err != nil {
		s.log.Error("error looking up record owner", "record_id", rec.ID, "error", err)
		return apierr.Remote("save_record", err)
	}
	if !canAccess(p, owner.String()) {
		return errForbidden()
	}
	err = s.q.UpdateInterviewRecord(ctx, database.UpdateInterviewRecordParams{
		ID:        r.ID,
		BasicInfo: r.BasicInfo,
		Answers:   r.Answers,
		Resume:    r.Resume,
		AiSummary: r.AiSummary,
		CreatedAt: r.CreatedAt,
	})
	if err != nil {
		s.log.Error("Save Error", "record_id", rec.ID, "error", err)
		return apierr.Remote("save_record", err)
	}
	s.log.Info("record saved", "record_id", rec.ID, "user_id", p.UserID)
	return nil
}

func (s *Postgres) fetch(ctx context.Context, p auth.Principal, id string) (database.InterviewRecord, error) {
	if err := requirePrincipal(p); err != nil {
		return database.InterviewRecord{}, err
	}
	uid, err := uuid.Parse(id)
	if err != nil {
		return database.InterviewRecord{}, errNotFound()
	}
	r, err := retry.Do(ctx, 3, func() (database.InterviewRecord, error) {
		r, err := s.q.GetInterviewRecord(ctx, uid)
		if errors.Is(err, sql.ErrNoRows) {
			// not transient, surfaced below
			return r, nil
		}
		return r, err
	})
	if err != nil {
		s.log.Error("Error fetching record by ID", "record_id", id, "error", err)
		return database.InterviewRecord{}, apierr.Remote("get_record", err)
	}
	if r.ID == uuid.Nil || !canAccess(p, r.UserID.String()) {
		return database.InterviewRecord{}, errNotFound()
	}
	return r, nil
}

func (s *Postgres) Get(ctx context.Context, p auth.Principal, id string) (interview.Record, error) {
	r, err := s.fetch(ctx, p, id)
	if err != nil {
		return interview.Record{}, err
	}
	return decodeRecord(r)
}

func (s *Postgres) List(ctx context.Context, p auth.Principal) ([]interview.Record, error) {
	if p.UserID == "" {
		s.log.Warn("No user logged in, returning empty records")
		return []interview.Record{}, nil
	}
	var (
		rows []database.InterviewRecord
		err  error
	)
	if p.SeesAllRecords() {
		rows, err = s.q.ListInterviewRecords(ctx)
	} else {
		userID, perr := uuid.Parse(p.UserID)
		if perr != nil {
			return []interview.Record{}, nil
		}
		rows, err = s.q.ListInterviewRecordsByUser(ctx, userID)
	}
	if err != nil {
		s.log.Error("Error fetching records", "user_id", p.UserID, "error", err)
		return nil, apierr.Remote("list_records", err)
	}
	return decodeRecords(rows)
}

func (s *Postgres) Delete(ctx context.Context, p auth.Principal, id string) error {
	r, err := s.fetch(ctx, p, id)
	if err != nil {
		return err
	}
	n, err := s.q.DeleteInterviewRecord(ctx, r.ID)
	if err != nil {
		s.log.Error("Error deleting record", "record_id", id, "error", err)
		return apierr.Remote("delete_record", err)
	}
	if n == 0 {
		return errNotFound()
	}
	return nil
}

func (s *Postgres) SetSummary(ctx context.Context, p auth.Principal, id, summary string) error {
	r, err := s.fetch(ctx, p, id)
	if err != nil {
		return err
	}
	n, err := retry.Do(ctx, 3, func() (int64, error) {
		return s.q.UpdateInterviewRecordSummary(ctx, database.UpdateInterviewRecordSummaryParams{
			ID:        r.ID,
			AiSummary: sql.NullString{String: summary, Valid: summary != ""},
		})
	})
	if err != nil {
		s.log.Error("failed to save summary after retries", "record_id", id, "error", err)
		return apierr.Remote("save_summary", err)
	}
	if n == 0 {
		return errNotFound()
	}
	return nil
}
