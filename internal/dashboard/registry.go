package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/codr1/axl-portal/internal/metrics"
	"github.com/codr1/axl-portal/internal/session"
)

// Registry keeps one Provider per live session.
type Registry struct {
	backend Backend
	metrics *metrics.Metrics
	now     func() time.Time

	mu        sync.Mutex
	providers map[string]*Provider
}

func NewRegistry(backend Backend, m *metrics.Metrics) *Registry {
	return &Registry{
		backend:   backend,
		metrics:   m,
		now:       time.Now,
		providers: make(map[string]*Provider),
	}
}

// For returns the provider bound to sess, creating it on first use.
func (r *Registry) For(sess *session.Session) *Provider {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.providers[sess.ID]; ok && p.sess.Token == sess.Token {
		return p
	}
	p := newProvider(r.backend, sess, r.metrics, r.now)
	r.providers[sess.ID] = p
	return p
}

// Refresh refreshes the provider of sess.
func (r *Registry) Refresh(ctx context.Context, sess *session.Session) error {
	return r.For(sess).Refresh(ctx)
}

// Drop forgets the provider of a session that ended.
func (r *Registry) Drop(sessionID string) {
	r.mu.Lock()
	delete(r.providers, sessionID)
	r.mu.Unlock()
}

// DropUser forgets every provider of userID except the one for keepSessionID.
// A new login replaces the user's earlier sessions, and their providers
// still hold the old backend tokens.
func (r *Registry) DropUser(userID, keepSessionID string) int {
	if userID == "" {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for id, p := range r.providers {
		if id != keepSessionID && p.sess.UserID == userID {
			delete(r.providers, id)
			n++
		}
	}
	return n
}

// PruneExpired drops providers whose sessions expired and returns how many.
func (r *Registry) PruneExpired(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for id, p := range r.providers {
		if p.expired(now) {
			delete(r.providers, id)
			n++
		}
	}
	return n
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.providers)
}
