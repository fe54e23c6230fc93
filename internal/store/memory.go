package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/muhammadolammi/interviewmate/internal/auth"
	"github.com/muhammadolammi/interviewmate/internal/interview"
)

type memEntry struct {
	rec   interview.Record
	owner string
}

// Memory keeps records in process memory. It backs the service when no
// database is configured.
type Memory struct {
	mu      sync.RWMutex
	records map[string]memEntry
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{records: map[string]memEntry{}, now: time.Now}
}

func clone(rec interview.Record) interview.Record {
	rec.Answers = rec.Answers.Clone()
	if rec.Resume != nil {
		r := *rec.Resume
		rec.Resume = &r
	}
	return rec
}

func (m *Memory) Save(_ context.Context, p auth.Principal, rec interview.Record) error {
	if err := requirePrincipal(p); err != nil {
		return err
	}
	if err := validateRecord(rec); err != nil {
		return err
	}
	if rec.CreatedAt == 0 {
		rec.CreatedAt = m.now().UnixMilli()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	owner := p.UserID
	if existing, ok := m.records[rec.ID]; ok {
		if !canAccess(p, existing.owner) {
			return errForbidden()
		}
		owner = existing.owner
	}
	m.records[rec.ID] = memEntry{rec: clone(rec), owner: owner}
	return nil
}

func (m *Memory) Get(_ context.Context, p auth.Principal, id string) (interview.Record, error) {
	if err := requirePrincipal(p); err != nil {
		return interview.Record{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.records[id]
	if !ok || !canAccess(p, e.owner) {
		return interview.Record{}, errNotFound()
	}
	return clone(e.rec), nil
}

func (m *Memory) List(_ context.Context, p auth.Principal) ([]interview.Record, error) {
	if p.UserID == "" {
		return []interview.Record{}, nil
	}
	m.mu.RLock()
	out := make([]interview.Record, 0, len(m.records))
	for _, e := range m.records {
		if canAccess(p, e.owner) {
			out = append(out, clone(e.rec))
		}
	}
	m.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt > out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Memory) Delete(_ context.Context, p auth.Principal, id string) error {
	if err := requirePrincipal(p); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.records[id]
	if !ok || !canAccess(p, e.owner) {
		return errNotFound()
	}
	delete(m.records, id)
	return nil
}

func (m *Memory) SetSummary(_ context.Context, p auth.Principal, id, summary string) error {
	if err := requirePrincipal(p); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.records[id]
	if !ok || !canAccess(p, e.owner) {
		return errNotFound()
	}
	e.rec.AISummary = summary
	m.records[id] = e
	return nil
}

// Owner returns the owning user of a stored record.
func (m *Memory) Owner(id string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.records[id]
	return e.owner, ok
}
