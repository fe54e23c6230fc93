package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const createInterviewRecord = `-- name: CreateInterviewRecord :execrows
INSERT INTO interview_records (
id, user_id, basic_info, answers, resume, ai_summary, created_at)
VALUES ( $1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE
SET basic_info=EXCLUDED.basic_info,
    answers=EXCLUDED.answers,
    resume=EXCLUDED.resume,
    ai_summary=EXCLUDED.ai_summary,
    created_at=EXCLUDED.created_at,
    updated_at=CURRENT_TIMESTAMP
WHERE interview_records.user_id=EXCLUDED.user_id
`

type CreateInterviewRecordParams struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	BasicInfo json.RawMessage
	Answers   json.RawMessage
	Resume    json.RawMessage
	AiSummary sql.NullString
	CreatedAt time.Time
}

func (q *Queries) CreateInterviewRecord(ctx context.Context, arg CreateInterviewRecordParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, createInterviewRecord,
		arg.ID,
		arg.UserID,
		arg.BasicInfo,
		arg.Answers,
		arg.Resume,
		arg.AiSummary,
		arg.CreatedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteInterviewRecord = `-- name: DeleteInterviewRecord :execrows
DELETE FROM interview_records WHERE id=$1
`

func (q *Queries) DeleteInterviewRecord(ctx context.Context, id uuid.UUID) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteInterviewRecord, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const getInterviewRecord = `-- name: GetInterviewRecord :one
SELECT id, user_id, basic_info, answers, resume, ai_summary, created_at, updated_at FROM interview_records WHERE id=$1
`

func (q *Queries) GetInterviewRecord(ctx context.Context, id uuid.UUID) (InterviewRecord, error) {
	row := q.db.QueryRowContext(ctx, getInterviewRecord, id)
	var i InterviewRecord
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.BasicInfo,
		&i.Answers,
		&i.Resume,
		&i.AiSummary,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getInterviewRecordOwner = `-- name: GetInterviewRecordOwner :one
SELECT user_id FROM interview_records WHERE id=$1
`

func (q *Queries) GetInterviewRecordOwner(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	row := q.db.QueryRowContext(ctx, getInterviewRecordOwner, id)
	var user_id uuid.UUID
	err := row.Scan(&user_id)
	return user_id, err
}

const listInterviewRecords = `-- name: ListInterviewRecords :many
SELECT id, user_id, basic_info, answers, resume, ai_summary, created_at, updated_at FROM interview_records ORDER BY created_at DESC
`

func (q *Queries) ListInterviewRecords(ctx context.Context) ([]InterviewRecord, error) {
	rows, err := q.db.QueryContext(ctx, listInterviewRecords)
	if err != nil {
		return nil, err
	}
	return scanInterviewRecords(rows)
}

const listInterviewRecordsByUser = `-- name: ListInterviewRecordsByUser :many
SELECT id, user_id, basic_info, answers, resume, ai_summary, created_at, updated_at FROM interview_records WHERE user_id=$1 ORDER BY created_at DESC
`

func (q *Queries) ListInterviewRecordsByUser(ctx context.Context, userID uuid.UUID) ([]InterviewRecord, error) {
	rows, err := q.db.QueryContext(ctx, listInterviewRecordsByUser, userID)
	if err != nil {
		return nil, err
	}
	return scanInterviewRecords(rows)
}

func scanInterviewRecords(rows *sql.Rows) ([]InterviewRecord, error) {
	defer rows.Close()
	var items []InterviewRecord
	for rows.Next() {
		var i InterviewRecord
		if err := rows.Scan(
			&i.ID,
			&i.UserID,
			&i.BasicInfo,
			&i.Answers,
			&i.Resume,
			&i.AiSummary,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateInterviewRecord = `-- name: UpdateInterviewRecord :exec
UPDATE interview_records
SET basic_info=$2,
    answers=$3,
    resume=$4,
    ai_summary=$5,
    created_at=$6,
    updated_at=CURRENT_TIMESTAMP
WHERE id=$1
`

type UpdateInterviewRecordParams struct {
	ID        uuid.UUID
	BasicInfo json.RawMessage
	Answers   json.RawMessage
	Resume    json.RawMessage
	AiSummary sql.NullString
	CreatedAt time.Time
}

func (q *Queries) UpdateInterviewRecord(ctx context.Context, arg UpdateInterviewRecordParams) error {
	_, err := q.db.ExecContext(ctx, updateInterviewRecord,
		arg.ID,
		arg.BasicInfo,
		arg.Answers,
		arg.Resume,
		arg.AiSummary,
		arg.CreatedAt,
	)
	return err
}

const updateInterviewRecordSummary = `-- name: UpdateInterviewRecordSummary :execrows
UPDATE interview_records
SET ai_summary=$2,
    updated_at=CURRENT_TIMESTAMP
WHERE id=$1
`

type UpdateInterviewRecordSummaryParams struct {
	ID        uuid.UUID
	AiSummary sql.NullString
}

func (q *Queries) UpdateInterviewRecordSummary(ctx context.Context, arg UpdateInterviewRecordSummaryParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateInterviewRecordSummary, arg.ID, arg.AiSummary)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
