// backend/internal/session/store.go
package session

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Ayash-Bera/miniplex/internal/domain"
	"github.com/Ayash-Bera/miniplex/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	DefaultTTL                = 10 * time.Minute
	DefaultMaxPreviousQueries = 3
)

type entry struct {
	messages     []models.Message
	queries      []string
	lastAccessed time.Time
}

// Store keeps per-session chat history and recent queries in memory.
// Sessions idle longer than the TTL are evicted lazily: every operation
// purges expired sessions before doing its own work.
type Store struct {
	ttl        time.Duration
	maxQueries int
	now        func() time.Time
	logger     *logrus.Logger
	onChange   func(active int)

	mu       sync.Mutex
	sessions map[string]*entry
}

type Option func(*Store)

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithObserver is called with the session count after every change.
func WithObserver(fn func(active int)) Option {
	return func(s *Store) { s.onChange = fn }
}

func NewStore(ttl time.Duration, maxPreviousQueries int, logger *logrus.Logger, opts ...Option) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxPreviousQueries < 0 {
		maxPreviousQueries = DefaultMaxPreviousQueries
	}
	s := &Store{
		ttl:        ttl,
		maxQueries: maxPreviousQueries,
		now:        time.Now,
		logger:     logger,
		sessions:   make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetOrCreate returns a snapshot of the session, creating it if needed.
func (s *Store) GetOrCreate(id string) models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictLocked()
	return s.snapshot(id, s.touchLocked(id))
}

// AppendTurn adds a message to the session, creating it if needed.
func (s *Store) AppendTurn(id, role, content string) error {
	if !models.ValidRole(role) {
		return &domain.ValidationError{Message: fmt.Sprintf("invalid message role %q", role)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictLocked()
	e := s.touchLocked(id)
	e.messages = append(e.messages, models.Message{Role: role, Content: content, Timestamp: e.lastAccessed})
	return nil
}

// RecordQuery remembers a raw query for the session, creating it if needed.
func (s *Store) RecordQuery(id, query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictLocked()
	e := s.touchLocked(id)
	e.queries = append(e.queries, query)
}

// PreviousQueries returns the most recent queries issued before current,
// oldest first, capped at the configured window. A trailing entry equal to
// current is the current query itself and is skipped.
func (s *Store) PreviousQueries(id, current string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictLocked()
	e, ok := s.sessions[id]
	if !ok {
		return nil
	}
	e.lastAccessed = s.now()
	return window(e.queries, current, s.maxQueries)
}

// History returns the session's messages.
func (s *Store) History(id string) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictLocked()
	e, ok := s.sessions[id]
	if !ok {
		return nil, &domain.SessionNotFoundError{SessionID: id}
	}
	e.lastAccessed = s.now()
	return append([]models.Message(nil), e.messages...), nil
}

// Delete removes the session.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictLocked()
	if _, ok := s.sessions[id]; !ok {
		return &domain.SessionNotFoundError{SessionID: id}
	}
	delete(s.sessions, id)
	s.notifyLocked()
	s.logger.WithField("session_id", id).Info("Session cleared")
	return nil
}

// EvictExpired removes every session idle longer than the TTL and returns
// how many were removed. Every other store operation runs it first.
func (s *Store) EvictExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evictLocked()
}

// Len reports the number of sessions currently held, expired ones included.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Store) touchLocked(id string) *entry {
	now := s.now()
	e, ok := s.sessions[id]
	if !ok {
		e = &entry{}
		s.sessions[id] = e
		s.notifyLocked()
		s.logger.WithField("session_id", id).Debug("Session created")
	}
	e.lastAccessed = now
	return e
}

func (s *Store) evictLocked() int {
	expired := expiredIDs(s.sessions, s.now().Add(-s.ttl))
	for _, id := range expired {
		delete(s.sessions, id)
	}
	if len(expired) > 0 {
		s.notifyLocked()
		s.logger.WithField("evicted", len(expired)).Debug("Evicted expired sessions")
	}
	return len(expired)
}

func (s *Store) notifyLocked() {
	if s.onChange != nil {
		s.onChange(len(s.sessions))
	}
}

func (s *Store) snapshot(id string, e *entry) models.Session {
	return models.Session{
		ID:           id,
		Messages:     append([]models.Message(nil), e.messages...),
		Queries:      append([]string(nil), e.queries...),
		LastAccessed: e.lastAccessed,
	}
}

// expiredIDs lists sessions last accessed before cutoff.
func expiredIDs(sessions map[string]*entry, cutoff time.Time) []string {
	var ids []string
	for id, e := range sessions {
		if e.lastAccessed.Before(cutoff) {
			ids = append(ids, id)
		}
	}
	return ids
}

func window(queries []string, current string, max int) []string {
	if n := len(queries); n > 0 && strings.TrimSpace(queries[n-1]) == strings.TrimSpace(current) {
		queries = queries[:n-1]
	}
	if max >= 0 && len(queries) > max {
		queries = queries[len(queries)-max:]
	}
	if len(queries) == 0 {
		return nil
	}
	return append([]string(nil), queries...)
}
