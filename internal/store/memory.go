package store

import (
	"errors"
	"sync"
	"time"

	"github.com/stormstream/storm-assistant/internal/chat"
)

// ErrNotFound is returned when no session exists for the given id.
var ErrNotFound = errors.New("no session for id")

type session struct {
	turns      []chat.Turn
	lastActive time.Time
}

// SessionStore is a concurrency-safe in-memory store of conversation
// transcripts keyed by session id.
type SessionStore struct {
	mu sync.RWMutex

	sessions map[string]*session

	// retention configuration
	maxTurns int           // max turns kept per session (0 = unlimited)
	maxIdle  time.Duration // sessions idle longer than this are swept
}

// NewSessionStore creates a SessionStore with optional limits. maxTurns <= 0
// means unlimited.
func NewSessionStore(maxTurns int, maxIdle time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*session),
		maxTurns: maxTurns,
		maxIdle:  maxIdle,
	}
}

// Append adds turns to a session, creating it on first write, and enforces
// the per-session turn retention.
func (s *SessionStore) Append(sessionID string, turns ...chat.Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		sess = &session{}
		s.sessions[sessionID] = sess
	}

	sess.turns = append(sess.turns, turns...)
	sess.lastActive = time.Now()

	if s.maxTurns > 0 && len(sess.turns) > s.maxTurns {
		over := len(sess.turns) - s.maxTurns
		sess.turns = sess.turns[over:]
	}
}

// Turns returns a copy of the session's transcript, or nil for an unknown
// session (a fresh conversation).
func (s *SessionStore) Turns(sessionID string) []chat.Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil
	}
	out := make([]chat.Turn, len(sess.turns))
	copy(out, sess.turns)
	return out
}

// LastActive reports when the session last saw a write.
func (s *SessionStore) LastActive(sessionID string) (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return time.Time{}, ErrNotFound
	}
	return sess.lastActive, nil
}

// Sweep evicts sessions idle longer than the configured max age and returns
// the number removed.
func (s *SessionStore) Sweep(now time.Time) int {
	if s.maxIdle <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := now.Add(-s.maxIdle)
	evicted := 0
	for id, sess := range s.sessions {
		if sess.lastActive.Before(cutoff) {
			delete(s.sessions, id)
			evicted++
		}
	}
	return evicted
}

// Len reports the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
