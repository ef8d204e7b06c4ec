// Package loginsession keeps the server-side auth state of each browser.
package loginsession

import (
	"time"

	"github.com/jrsteele09/go-donor-portal/auth"
	"github.com/jrsteele09/go-donor-portal/backend"
)

// Session is the server-side half of one browser: its auth context and the
// API client carrying that browser's bearer credential.
type Session struct {
	BrowserID string
	Auth      *auth.Session
	API       *backend.Client

	CreatedAt time.Time
	LastSeen  time.Time
}

type Repo interface {
	// GetOrCreate returns the session of browserID, calling create when there is none.
	// created reports whether create was called.
	GetOrCreate(browserID string, create func() (*Session, error)) (session *Session, created bool, err error)
	Get(browserID string) (*Session, error)
	Delete(browserID string) error
	// Prune drops sessions not seen since cutoff and returns how many were dropped
	Prune(cutoff time.Time) int
	Len() int
}
