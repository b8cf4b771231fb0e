// Package session tracks per-client filter state. The dataset is shared
// read-only; each session owns its criteria and the view derived from them.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/streamscope/streamscope/internal/analytics"
	"github.com/streamscope/streamscope/internal/dataset"
)

// ErrNotFound is returned for unknown or expired session IDs.
var ErrNotFound = errors.New("session not found")

// DefaultTTL is how long an idle session is kept before expiry.
const DefaultTTL = 2 * time.Hour

// Session is one client's filter state: current criteria and the view
// computed from them. The view always reflects the last valid criteria.
// The manager hands out value copies taken under its lock, so a Session a
// caller holds is a stable snapshot even while concurrent requests update
// the same session.
type Session struct {
	ID        string             `json:"id"`
	Criteria  analytics.Criteria `json:"criteria"`
	CreatedAt time.Time          `json:"createdAt"`
	LastSeen  time.Time          `json:"lastSeen"`

	view *analytics.View
}

// View returns the view captured in this snapshot. Views are immutable once
// computed, so sharing the pointer across snapshots is safe.
func (s Session) View() *analytics.View {
	return s.view
}

// Manager creates and tracks sessions.
type Manager struct {
	ds     *dataset.Dataset
	ttl    time.Duration
	logger zerolog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session

	now func() time.Time // overridable in tests
}

// NewManager creates a session manager over an immutable dataset.
func NewManager(ds *dataset.Dataset, ttl time.Duration, logger zerolog.Logger) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		ds:       ds,
		ttl:      ttl,
		logger:   logger.With().Str("component", "session").Logger(),
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// Create starts a new session with unrestricted criteria spanning the
// dataset's year bounds, so a fresh session sees the full dataset.
func (m *Manager) Create() (Session, error) {
	criteria := analytics.Unrestricted(m.ds.YearMin, m.ds.YearMax)
	view, err := analytics.Apply(m.ds, criteria)
	if err != nil {
		return Session{}, err
	}

	now := m.now()
	s := &Session{
		ID:        uuid.NewString(),
		Criteria:  criteria,
		CreatedAt: now,
		LastSeen:  now,
		view:      view,
	}

	m.mu.Lock()
	m.evictExpiredLocked(now)
	m.sessions[s.ID] = s
	snap := *s
	m.mu.Unlock()

	m.logger.Debug().Str("sessionID", s.ID).Msg("session created")
	return snap, nil
}

// Get returns a snapshot of the session with the given ID, refreshing its
// idle timer.
func (m *Manager) Get(id string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	now := m.now()
	if !ok || now.Sub(s.LastSeen) > m.ttl {
		if ok {
			delete(m.sessions, id)
		}
		return Session{}, ErrNotFound
	}
	s.LastSeen = now
	return *s, nil
}

// SetCriteria applies new criteria to a session and returns the updated
// snapshot. Invalid criteria return the validation error and leave the
// previous valid view in place.
func (m *Manager) SetCriteria(id string, criteria analytics.Criteria) (Session, error) {
	view, err := analytics.Apply(m.ds, criteria)
	if err != nil {
		return Session{}, err
	}

	m.mu.Lock()
	s, ok := m.sessions[id]
	now := m.now()
	if !ok || now.Sub(s.LastSeen) > m.ttl {
		if ok {
			delete(m.sessions, id)
		}
		m.mu.Unlock()
		return Session{}, ErrNotFound
	}
	s.LastSeen = now
	s.Criteria = criteria
	s.view = view
	snap := *s
	m.mu.Unlock()

	m.logger.Debug().
		Str("sessionID", id).
		Int("count", view.Count).
		Msg("criteria applied")
	return snap, nil
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// evictExpiredLocked removes idle sessions. Caller holds the write lock.
func (m *Manager) evictExpiredLocked(now time.Time) {
	for id, s := range m.sessions {
		if now.Sub(s.LastSeen) > m.ttl {
			delete(m.sessions, id)
		}
	}
}
