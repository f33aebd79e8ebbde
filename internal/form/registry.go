package form

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	applog "cookbook/internal/log"
)

const defaultIdleTTL = 2 * time.Hour

// Registry keeps the open sessions, keyed by a random form id. Each owner
// (one browser session) holds at most one open form; opening another closes
// the previous one.
type Registry struct {
	repo Repository
	ttl  time.Duration
	now  func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry returns an empty registry whose sessions use repo. A
// non-positive ttl falls back to two hours.
func NewRegistry(repo Repository, ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = defaultIdleTTL
	}
	return &Registry{
		repo:     repo,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Open starts a new session for owner, replacing any form the owner already
// had open.
func (r *Registry) Open(owner, recipeID string) *Session {
	session := Open(r.repo, recipeID)
	session.id = uuid.NewString()
	session.owner = owner
	session.now = r.now
	session.lastUsed = r.now()

	r.mu.Lock()
	var replaced []*Session
	for id, existing := range r.sessions {
		if existing.owner == owner {
			replaced = append(replaced, existing)
			delete(r.sessions, id)
		}
	}
	r.sessions[session.id] = session
	r.mu.Unlock()

	for _, old := range replaced {
		old.Close()
	}
	return session
}

// Lookup returns the session id if it exists and belongs to owner.
func (r *Registry) Lookup(owner, id string) (*Session, bool) {
	r.mu.Lock()
	session, ok := r.sessions[id]
	r.mu.Unlock()
	if !ok || session.owner != owner || session.Closed() {
		return nil, false
	}
	return session, true
}

// Remove closes and forgets the session id.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	session, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if ok {
		session.Close()
	}
}

// Len reports the number of open sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep closes sessions idle for longer than the TTL and returns how many
// were removed.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.ttl)

	r.mu.Lock()
	var expired []*Session
	for id, session := range r.sessions {
		if session.idleSince().Before(cutoff) {
			expired = append(expired, session)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, session := range expired {
		session.Close()
	}
	return len(expired)
}

// Run sweeps expired sessions every interval until ctx is done, then closes
// every remaining session.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.CloseAll()
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				applog.Debug(ctx, "expired idle form sessions", "count", n)
			}
		}
	}
}

// CloseAll tears down every open session.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()
	for _, session := range sessions {
		session.Close()
	}
}
