package storefront

import (
	"context"
	"crypto/rand"
	"errors"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"finitefield.org/elarion-web/internal/catalog"
)

// DefaultIdleTTL is how long an untouched session survives.
const DefaultIdleTTL = 30 * time.Minute

// DefaultMaxSessions caps how many sessions stay mounted at once.
const DefaultMaxSessions = 10000

// ErrRegistryClosed is returned once the registry has shut down.
var ErrRegistryClosed = errors.New("storefront: registry closed")

// Registry keeps one Session per visitor and tears down idle ones.
type Registry struct {
	catalog *catalog.Catalog
	opts    Options
	idleTTL time.Duration
	maxLive int
	newID   func() string

	mu       sync.Mutex
	sessions map[string]*Session
	closed   bool
}

// RegistryOption customises a Registry.
type RegistryOption func(*Registry)

// WithIdleTTL overrides DefaultIdleTTL.
func WithIdleTTL(ttl time.Duration) RegistryOption {
	return func(r *Registry) {
		if ttl > 0 {
			r.idleTTL = ttl
		}
	}
}

// WithMaxSessions overrides DefaultMaxSessions.
func WithMaxSessions(n int) RegistryOption {
	return func(r *Registry) {
		if n > 0 {
			r.maxLive = n
		}
	}
}

// WithIDGenerator replaces the ULID generator.
func WithIDGenerator(fn func() string) RegistryOption {
	return func(r *Registry) {
		if fn != nil {
			r.newID = fn
		}
	}
}

// NewRegistry returns an empty registry whose sessions share cat and opts.
func NewRegistry(cat *catalog.Catalog, opts Options, ropts ...RegistryOption) *Registry {
	r := &Registry{
		catalog:  cat,
		opts:     opts.withDefaults(),
		idleTTL:  DefaultIdleTTL,
		maxLive:  DefaultMaxSessions,
		newID:    newULID,
		sessions: make(map[string]*Session),
	}
	for _, opt := range ropts {
		opt(r)
	}
	return r
}

func newULID() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}

// Open mounts a session. An empty id gets a fresh one; an id already in use
// returns the existing session. A full registry evicts its least recently
// active session first.
func (r *Registry) Open(id string) (*Session, bool, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, false, ErrRegistryClosed
	}
	if id != "" {
		if s, ok := r.sessions[id]; ok {
			r.mu.Unlock()
			return s, false, nil
		}
	} else {
		id = r.newID()
	}
	var evicted *Session
	if len(r.sessions) >= r.maxLive {
		evicted = r.oldestLocked()
		delete(r.sessions, evicted.ID())
	}
	s := NewSession(id, r.catalog, r.opts)
	r.sessions[id] = s
	r.mu.Unlock()

	if evicted != nil {
		evicted.Close()
		r.opts.Logger.Info("evicted storefront session", zap.String("session_id", evicted.ID()))
	}
	return s, true, nil
}

func (r *Registry) oldestLocked() *Session {
	var oldest *Session
	for _, s := range r.sessions {
		if oldest == nil || s.LastActive().Before(oldest.LastActive()) {
			oldest = s
		}
	}
	return oldest
}

// Get looks up a live session.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Remove closes and forgets a session.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if ok {
		s.Close()
	}
	return ok
}

// Sweep closes sessions idle for longer than the TTL and returns how many
// were removed.
func (r *Registry) Sweep() int {
	cutoff := r.opts.Now().Add(-r.idleTTL)
	var stale []*Session
	r.mu.Lock()
	for id, s := range r.sessions {
		if s.LastActive().Before(cutoff) {
			stale = append(stale, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()
	for _, s := range stale {
		s.Close()
	}
	if len(stale) > 0 {
		r.opts.Logger.Info("swept idle sessions", zap.Int("count", len(stale)))
	}
	return len(stale)
}

// Run sweeps every interval until ctx is done, then closes all sessions.
func (r *Registry) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.Close()
			return nil
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Close tears down every session and rejects further opens.
func (r *Registry) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	var wg sync.WaitGroup
	for _, s := range sessions {
		wg.Add(1)
		go func(s *Session) {
			defer wg.Done()
			s.Close()
		}(s)
	}
	wg.Wait()
}
