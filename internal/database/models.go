package database

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type AllowedEmail struct {
	Email     string
	Role      sql.NullString
	CreatedAt time.Time
}

type InterviewRecord struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	BasicInfo json.RawMessage
	Answers   json.RawMessage
	Resume    json.RawMessage
	AiSummary sql.NullString
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Profile struct {
	ID        uuid.UUID
	Email     string
	Role      sql.NullString
	CreatedAt time.Time
}
