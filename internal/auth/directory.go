package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/muhammadolammi/interviewmate/internal/database"
)

// Directory answers the whitelist and role questions about a user.
type Directory interface {
	// AllowedRole returns the role granted to a whitelisted email. allowed
	// is false when the email is not whitelisted.
	AllowedRole(ctx context.Context, email string) (role string, allowed bool, err error)
	// ProfileRole returns the role stored on the user's profile.
	ProfileRole(ctx context.Context, userID string) (role string, found bool, err error)
	// SyncProfile creates the user's profile if it does not exist yet.
	SyncProfile(ctx context.Context, p Principal) error
}

type PostgresDirectory struct {
	q *database.Queries
}

func NewPostgresDirectory(q *database.Queries) *PostgresDirectory {
	return &PostgresDirectory{q: q}
}

func (d *PostgresDirectory) AllowedRole(ctx context.Context, email string) (string, bool, error) {
	role, err := d.q.GetAllowedEmailRole(ctx, strings.ToLower(email))
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("error checking whitelist: %w", err)
	}
	return role.String, true, nil
}

func (d *PostgresDirectory) ProfileRole(ctx context.Context, userID string) (string, bool, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return "", false, nil
	}
	role, err := d.q.GetProfileRole(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("error fetching user role: %w", err)
	}
	return role.String, true, nil
}

func (d *PostgresDirectory) SyncProfile(ctx context.Context, p Principal) error {
	id, err := uuid.Parse(p.UserID)
	if err != nil {
		return fmt.Errorf("invalid user id %q: %w", p.UserID, err)
	}
	return d.q.CreateProfile(ctx, database.CreateProfileParams{
		ID:    id,
		Email: strings.ToLower(p.Email),
		Role:  sql.NullString{String: p.Role, Valid: p.Role != ""},
	})
}

// MemoryDirectory is a whitelist held in memory, used when no database is
// configured.
type MemoryDirectory struct {
	mu       sync.RWMutex
	allowed  map[string]string
	profiles map[string]string
}

// NewMemoryDirectory whitelists the given emails with their roles.
func NewMemoryDirectory(allowed map[string]string) *MemoryDirectory {
	d := &MemoryDirectory{allowed: map[string]string{}, profiles: map[string]string{}}
	for email, role := range allowed {
		d.allowed[strings.ToLower(email)] = role
	}
	return d
}

func (d *MemoryDirectory) AllowedRole(_ context.Context, email string) (string, bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	role, ok := d.allowed[strings.ToLower(email)]
	return role, ok, nil
}

func (d *MemoryDirectory) ProfileRole(_ context.Context, userID string) (string, bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	role, ok := d.profiles[userID]
	return role, ok, nil
}

func (d *MemoryDirectory) SyncProfile(_ context.Context, p Principal) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.profiles[p.UserID]; !ok {
		d.profiles[p.UserID] = p.Role
	}
	return nil
}
