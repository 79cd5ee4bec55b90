package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/degree-audit-api/internal/models"
	appErrors "github.com/noah-isme/degree-audit-api/pkg/errors"
)

// SessionRepository keeps editing sessions in process memory.
type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
	now      func() time.Time
}

// NewSessionRepository constructs an empty session store.
func NewSessionRepository() *SessionRepository {
	return &SessionRepository{
		sessions: make(map[string]*models.Session),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create opens a session with a blank transcript draft and no reports.
func (r *SessionRepository) Create(ctx context.Context) (*models.Session, error) {
	now := r.now()
	session := &models.Session{
		ID:          uuid.NewString(),
		Transcript:  models.NewTranscript(),
		AuditStatus: models.AuditStatusIdle,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	session.ReplaceReports(nil)

	r.mu.Lock()
	r.sessions[session.ID] = session
	r.mu.Unlock()

	return session.Clone(), nil
}

// Get returns a copy of the session.
func (r *SessionRepository) Get(ctx context.Context, id string) (*models.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[id]
	if !ok {
		return nil, notFound(id)
	}
	return session.Clone(), nil
}

// Update runs fn against a working copy and stores it only when fn succeeds,
// so a failed mutation leaves the session as it was.
func (r *SessionRepository) Update(ctx context.Context, id string, fn func(*models.Session) error) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.sessions[id]
	if !ok {
		return nil, notFound(id)
	}
	working := current.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	working.ID = current.ID
	working.UpdatedAt = r.now()
	r.sessions[id] = working
	return working.Clone(), nil
}

// Delete discards a session.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return notFound(id)
	}
	delete(r.sessions, id)
	return nil
}

// DeleteIdleSince removes sessions untouched since cutoff and returns how many
// were removed. Sessions with a running audit are kept.
func (r *SessionRepository) DeleteIdleSince(ctx context.Context, cutoff time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, session := range r.sessions {
		if session.AuditStatus == models.AuditStatusRunning {
			continue
		}
		if session.UpdatedAt.Before(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed, nil
}

// Count returns the number of live sessions.
func (r *SessionRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func notFound(id string) error {
	return appErrors.Clone(appErrors.ErrNotFound, "session "+id+" not found")
}
