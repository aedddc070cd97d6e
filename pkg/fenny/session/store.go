// store.go manages the in-memory session map with time-based expiry and
// a cron-driven cleanup of stale entries.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// DefaultExpiry is how long a session stays valid after creation.
const DefaultExpiry = 24 * time.Hour

// Store manages active sessions keyed by their opaque token.
type Store struct {
	sessions map[string]*Session
	expiry   time.Duration
	logger   *slog.Logger
	mu       sync.RWMutex

	cron    *cron.Cron
	cronID  cron.EntryID
	started bool
}

// NewStore creates a session store with the given expiry duration.
func NewStore(expiry time.Duration, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	return &Store{
		sessions: make(map[string]*Session),
		expiry:   expiry,
		logger:   logger.With("component", "session"),
	}
}

// Create allocates a new session with a fresh UUID token.
func (st *Store) Create() *Session {
	now := time.Now()
	s := &Session{
		ID:         uuid.NewString(),
		CreatedAt:  now,
		lastActive: now,
		maxHistory: DefaultMaxHistory,
	}

	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()

	st.logger.Info("session created", "session_id", s.ID)
	return s
}

// Get returns the session for id, or nil when it does not exist or has
// expired. Expired sessions are purged on access, making them
// indistinguishable from missing ones. Live sessions get their activity
// timestamp refreshed.
func (st *Store) Get(id string) *Session {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil
	}

	if time.Now().After(s.CreatedAt.Add(st.expiry)) {
		st.Delete(id)
		return nil
	}

	s.Touch()
	return s
}

// Delete removes a session. Idempotent when the session is absent.
func (st *Store) Delete(id string) {
	st.mu.Lock()
	_, existed := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()

	if existed {
		st.logger.Info("session deleted", "session_id", id)
	}
}

// Count returns the number of live sessions, expired entries included
// until the next cleanup pass.
func (st *Store) Count() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// CleanupExpired removes all sessions past their expiry and returns how
// many were purged.
func (st *Store) CleanupExpired() int {
	cutoff := time.Now()

	st.mu.Lock()
	var expired []string
	for id, s := range st.sessions {
		if cutoff.After(s.CreatedAt.Add(st.expiry)) {
			expired = append(expired, id)
		}
	}
	for _, id := range expired {
		delete(st.sessions, id)
	}
	st.mu.Unlock()

	if len(expired) > 0 {
		st.logger.Info("cleaned up expired sessions", "count", len(expired))
	}
	return len(expired)
}

// StartCleanup schedules CleanupExpired on the given interval using cron.
// Calling it twice is a no-op.
func (st *Store) StartCleanup(interval time.Duration) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.started {
		return nil
	}
	if interval <= 0 {
		interval = time.Hour
	}

	st.cron = cron.New()
	id, err := st.cron.AddFunc(fmt.Sprintf("@every %s", interval), func() {
		st.CleanupExpired()
	})
	if err != nil {
		return fmt.Errorf("scheduling session cleanup: %w", err)
	}
	st.cronID = id
	st.cron.Start()
	st.started = true
	st.logger.Debug("session cleanup scheduled", "interval", interval.String())
	return nil
}

// StopCleanup stops the cleanup schedule and waits for a running pass.
func (st *Store) StopCleanup(ctx context.Context) {
	st.mu.Lock()
	c := st.cron
	st.cron = nil
	st.started = false
	st.mu.Unlock()

	if c == nil {
		return
	}
	stopped := c.Stop()
	select {
	case <-stopped.Done():
	case <-ctx.Done():
	}
}
