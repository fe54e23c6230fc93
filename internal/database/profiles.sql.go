package database

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

const createProfile = `-- name: CreateProfile :exec
INSERT INTO profiles (id, email, role)
VALUES ($1, $2, $3)
ON CONFLICT (id) DO NOTHING
`

type CreateProfileParams struct {
	ID    uuid.UUID
	Email string
	Role  sql.NullString
}

func (q *Queries) CreateProfile(ctx context.Context, arg CreateProfileParams) error {
	_, err := q.db.ExecContext(ctx, createProfile, arg.ID, arg.Email, arg.Role)
	return err
}

const getAllowedEmailRole = `-- name: GetAllowedEmailRole :one
SELECT role FROM allowed_emails WHERE email=$1
`

func (q *Queries) GetAllowedEmailRole(ctx context.Context, email string) (sql.NullString, error) {
	row := q.db.QueryRowContext(ctx, getAllowedEmailRole, email)
	var role sql.NullString
	err := row.Scan(&role)
	return role, err
}

const getProfileRole = `-- name: GetProfileRole :one
SELECT role FROM profiles WHERE id=$1
`

func (q *Queries) GetProfileRole(ctx context.Context, id uuid.UUID) (sql.NullString, error) {
	row := q.db.QueryRowContext(ctx, getProfileRole, id)
	var role sql.NullString
	err := row.Scan(&role)
	return role, err
}
