package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"meatStreakAPI/internal/achievement"
)

// Session is the per-user record that outlives a single request: the
// archived-achievement memory plus some bookkeeping. A session is created on
// first use and lives for the lifetime of the process.
type Session struct {
	ID           uuid.UUID
	Username     string
	CreatedAt    time.Time
	LastSeen     time.Time
	Achievements achievement.State
}

// Registry hands out sessions keyed by username. The map itself is guarded
// for concurrent requests, but two sessions never share one username's
// record: within a user the design is single-writer, and a race between two
// clients using the same username is last-write-wins (documented, not fixed).
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Get returns the session for a username, creating it on first use.
func (r *Registry) Get(username string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[username]
	if !ok {
		s = &Session{
			ID:           uuid.New(),
			Username:     username,
			CreatedAt:    time.Now(),
			Achievements: achievement.NewState(),
		}
		r.sessions[username] = s
	}
	s.LastSeen = time.Now()
	return s
}

// Drop removes a username's session, discarding its archived-badge memory.
// Used by the reset action.
func (r *Registry) Drop(username string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, username)
}

// Count reports how many sessions are live, for the health endpoint.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
