package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/fjod/go_checkout/internal/domain"
	"github.com/google/uuid"
)

type entry struct {
	session  *Session
	lastSeen time.Time
}

// Registry holds the live checkout sessions by id.
type Registry struct {
	deps Deps

	mu       sync.RWMutex
	sessions map[string]*entry
}

func NewRegistry(deps Deps) *Registry {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Registry{deps: deps, sessions: make(map[string]*entry)}
}

func (r *Registry) Create(ctx context.Context, identity Identity, contact *domain.Contact) (*Session, error) {
	s, err := NewSession(ctx, uuid.NewString(), identity, contact, r.deps)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.sessions[s.id] = &entry{session: s, lastSeen: r.deps.Now()}
	r.mu.Unlock()
	return s, nil
}

func (r *Registry) Get(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	e.lastSeen = r.deps.Now()
	return e.session, nil
}

// Abandon detaches a session. A submit still in flight completes against the
// detached session and is otherwise ignored.
func (r *Registry) Abandon(id string) error {
	r.mu.Lock()
	e, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	e.session.abandoned.Store(true)
	return nil
}

// Sweep abandons sessions not touched for idle and returns how many went.
func (r *Registry) Sweep(idle time.Duration) int {
	cutoff := r.deps.Now().Add(-idle)

	r.mu.Lock()
	var stale []*Session
	for id, e := range r.sessions {
		if e.lastSeen.Before(cutoff) && !e.session.Processing() {
			stale = append(stale, e.session)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range stale {
		s.abandoned.Store(true)
	}
	return len(stale)
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
