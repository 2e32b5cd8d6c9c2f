package viewer

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Registry keeps live viewing sessions keyed by (viewer, course). Sessions
// idle past the TTL are closed and dropped by the periodic sweep.
type Registry struct {
	client Upstream
	ttl    time.Duration
	log    *zap.Logger

	mu       sync.Mutex
	sessions map[string]*registryEntry
}

type registryEntry struct {
	session  *Session
	lastUsed time.Time
}

// NewRegistry builds an empty session registry.
func NewRegistry(client Upstream, ttl time.Duration, log *zap.Logger) *Registry {
	return &Registry{
		client:   client,
		ttl:      ttl,
		log:      log,
		sessions: make(map[string]*registryEntry),
	}
}

// Acquire returns the live session for the given viewer and course, creating
// one when none exists or the previous one was torn down.
func (r *Registry) Acquire(userKey, token, courseID string) *Session {
	key := userKey + ":" + courseID
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.sessions[key]; ok && !e.session.Closed() {
		e.lastUsed = time.Now()
		e.session.SetToken(token)
		return e.session
	}

	sess := NewSession(r.client, token, courseID, r.log)
	r.sessions[key] = &registryEntry{session: sess, lastUsed: time.Now()}
	return sess
}

// Drop closes and removes the session for the given viewer and course.
func (r *Registry) Drop(userKey, courseID string) {
	key := userKey + ":" + courseID
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.sessions[key]; ok {
		e.session.Close()
		delete(r.sessions, key)
	}
}

// Sweep closes sessions idle past the TTL. Wired to the cron scheduler.
func (r *Registry) Sweep() {
	cutoff := time.Now().Add(-r.ttl)
	r.mu.Lock()
	defer r.mu.Unlock()

	swept := 0
	for key, e := range r.sessions {
		if e.lastUsed.Before(cutoff) || e.session.Closed() {
			e.session.Close()
			delete(r.sessions, key)
			swept++
		}
	}
	if swept > 0 {
		r.log.Info("swept idle viewing sessions", zap.Int("count", swept))
	}
}

// Len reports the number of tracked sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
