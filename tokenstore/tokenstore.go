// Package tokenstore keeps exactly one expiring session token, plus an
// optional cached user, under a single well-known storage key.
//
// Expiry is lazy: a token past its expiry instant is deleted the moment a
// read notices it. Every read is total; storage and decoding failures are
// reported as "no session".
package tokenstore

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/jrsteele09/go-donor-portal/kvstore"
	"github.com/jrsteele09/go-donor-portal/users"
	"github.com/rs/zerolog/log"
)

const (
	// StorageKey is the key holding the token record
	StorageKey = "authToken"

	// DefaultTTL is the token lifetime without "remember me"
	DefaultTTL = 7 * 24 * time.Hour
	// RememberTTL is the token lifetime with "remember me"
	RememberTTL = 30 * 24 * time.Hour
)

// Record is the serialized form kept in storage. ExpiresAt is in Unix milliseconds.
type Record struct {
	Token      string      `json:"token"`
	ExpiresAt  int64       `json:"expiresAt"`
	RememberMe bool        `json:"rememberMe"`
	User       *users.User `json:"user,omitempty"`
}

// Expiry returns ExpiresAt as a time
func (r Record) Expiry() time.Time {
	return time.UnixMilli(r.ExpiresAt)
}

// Store is the token store
type Store struct {
	kv          kvstore.Store
	key         string
	nowFunc     func() time.Time
	defaultTTL  time.Duration
	rememberTTL time.Duration
}

// Option configures a Store
type Option func(*Store)

// WithClock sets the now function (primarily for testing)
func WithClock(nowFunc func() time.Time) Option {
	return func(s *Store) {
		s.nowFunc = nowFunc
	}
}

// WithTTLs overrides the 7-day and 30-day lifetimes
func WithTTLs(defaultTTL, rememberTTL time.Duration) Option {
	return func(s *Store) {
		if defaultTTL > 0 {
			s.defaultTTL = defaultTTL
		}
		if rememberTTL > 0 {
			s.rememberTTL = rememberTTL
		}
	}
}

// New creates a Store over kv
func New(kv kvstore.Store, options ...Option) *Store {
	s := &Store{
		kv:          kv,
		key:         StorageKey,
		nowFunc:     time.Now,
		defaultTTL:  DefaultTTL,
		rememberTTL: RememberTTL,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// SetToken overwrites the stored record. Write failures are logged and otherwise ignored.
func (s *Store) SetToken(token string, rememberMe bool, user *users.User) {
	ttl := s.defaultTTL
	if rememberMe {
		ttl = s.rememberTTL
	}
	s.write(Record{
		Token:      token,
		ExpiresAt:  s.nowFunc().Add(ttl).UnixMilli(),
		RememberMe: rememberMe,
		User:       user.Clone(),
	})
}

// GetToken returns the stored token, or "" when there is no live session.
// Corrupt and expired records are deleted.
func (s *Store) GetToken() string {
	rec, state := s.read()
	switch state {
	case recordCorrupt:
		log.Warn().Str("key", s.key).Msg("tokenstore: discarding unreadable token record")
		s.RemoveToken()
		return ""
	case recordMissing:
		return ""
	}
	if s.expired(rec) {
		log.Debug().Str("key", s.key).Time("expires_at", rec.Expiry()).Msg("tokenstore: token expired")
		s.RemoveToken()
		return ""
	}
	return rec.Token
}

// RemoveToken deletes the record. It is idempotent.
func (s *Store) RemoveToken() {
	if err := s.kv.Delete(s.key); err != nil {
		log.Warn().Err(err).Str("key", s.key).Msg("tokenstore: failed to delete token record")
	}
}

// IsTokenExpired reports whether there is no usable token. It never deletes.
func (s *Store) IsTokenExpired() bool {
	rec, state := s.read()
	if state != recordOK {
		return true
	}
	return s.expired(rec)
}

// GetRemainingTime returns the time until expiry, floored at zero
func (s *Store) GetRemainingTime() time.Duration {
	rec, state := s.read()
	if state != recordOK {
		return 0
	}
	remaining := time.Duration(rec.ExpiresAt-s.nowFunc().UnixMilli()) * time.Millisecond
	if remaining < 0 {
		return 0
	}
	return remaining
}

// GetUser returns the cached user, if any
func (s *Store) GetUser() *users.User {
	rec, state := s.read()
	if state != recordOK {
		return nil
	}
	return rec.User
}

// SetUser replaces the cached user without touching the token or its expiry.
// Without a record it does nothing.
func (s *Store) SetUser(user *users.User) {
	rec, state := s.read()
	if state != recordOK {
		return
	}
	rec.User = user.Clone()
	s.write(rec)
}

// GetTokenInfo returns the raw record without applying expiry
func (s *Store) GetTokenInfo() (Record, bool) {
	rec, state := s.read()
	return rec, state == recordOK
}

type recordState int

const (
	recordOK recordState = iota
	recordMissing
	recordCorrupt
)

func (s *Store) read() (Record, recordState) {
	raw, err := s.kv.Get(s.key)
	if errors.Is(err, kvstore.ErrNotFound) {
		return Record{}, recordMissing
	}
	if err != nil {
		log.Warn().Err(err).Str("key", s.key).Msg("tokenstore: storage read failed")
		return Record{}, recordMissing
	}
	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return Record{}, recordCorrupt
	}
	return rec, recordOK
}

func (s *Store) write(rec Record) {
	data, err := json.Marshal(rec)
	if err != nil {
		log.Warn().Err(err).Msg("tokenstore: failed to encode token record")
		return
	}
	if err := s.kv.Set(s.key, string(data)); err != nil {
		log.Warn().Err(err).Str("key", s.key).Msg("tokenstore: failed to write token record")
	}
}

func (s *Store) expired(rec Record) bool {
	return s.nowFunc().UnixMilli() > rec.ExpiresAt
}
