package loginsession

import (
	"fmt"
	"sync"
	"time"

	apperrors "github.com/jrsteele09/go-donor-portal/internal/errors"
)

// InMemoryLoginSessionRepo is an in-memory implementation of Repo
type InMemoryLoginSessionRepo struct {
	mu       sync.RWMutex
	sessions map[string]*Session // browserID -> Session
	nowFunc  func() time.Time
}

var _ Repo = (*InMemoryLoginSessionRepo)(nil)

// NewInMemoryLoginSessionRepo creates a new in-memory login session repository
func NewInMemoryLoginSessionRepo() *InMemoryLoginSessionRepo {
	return &InMemoryLoginSessionRepo{
		sessions: make(map[string]*Session),
		nowFunc:  time.Now,
	}
}

// GetOrCreate returns the existing session or stores the one built by create
func (r *InMemoryLoginSessionRepo) GetOrCreate(browserID string, create func() (*Session, error)) (*Session, bool, error) {
	if browserID == "" {
		return nil, false, fmt.Errorf("browserID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.nowFunc()
	if session, ok := r.sessions[browserID]; ok {
		session.LastSeen = now
		return session, false, nil
	}

	session, err := create()
	if err != nil {
		return nil, false, apperrors.Wrapf(err, "create session for browser %s", browserID)
	}
	session.BrowserID = browserID
	session.CreatedAt = now
	session.LastSeen = now
	r.sessions[browserID] = session
	return session, true, nil
}

// Get retrieves the session of a browser
func (r *InMemoryLoginSessionRepo) Get(browserID string) (*Session, error) {
	if browserID == "" {
		return nil, fmt.Errorf("browserID is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[browserID]
	if !ok {
		return nil, apperrors.ErrSessionNotFound
	}
	return session, nil
}

// Delete removes the session of a browser
func (r *InMemoryLoginSessionRepo) Delete(browserID string) error {
	if browserID == "" {
		return fmt.Errorf("browserID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, browserID)
	return nil
}

// Prune removes idle sessions. Their durable state stays in browser storage,
// so a returning browser is simply hydrated again.
func (r *InMemoryLoginSessionRepo) Prune(cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	pruned := 0
	for id, session := range r.sessions {
		if session.LastSeen.Before(cutoff) {
			delete(r.sessions, id)
			pruned++
		}
	}
	return pruned
}

func (r *InMemoryLoginSessionRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
