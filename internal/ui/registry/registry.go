// Package registry ties browser sessions to live preview sessions.
// Each dashboard visitor gets one preview session, created on first
// use and destroyed by an explicit close or by sitting idle past the
// TTL.
package registry

import (
	"log/slog"
	"sync"
	"time"

	"github.com/indexlens/indexlens/internal/preview"
	"github.com/indexlens/indexlens/internal/ui/notifier"
)

// DefaultTTL evicts preview sessions idle this long.
const DefaultTTL = 30 * time.Minute

// Factory builds a preview session whose state commits invoke onChange.
// The registry wires onChange to the entry's notifier, so every commit
// pings the session's event streams.
type Factory func(onChange func()) *preview.Session

type entry struct {
	session  *preview.Session
	notifier *notifier.Notifier
	lastSeen time.Time
}

// Registry maps browser session ids to live preview sessions. Entries
// are touched on every use; the eviction loop closes entries that are
// past the TTL and have no subscribed event stream.
type Registry struct {
	factory Factory
	ttl     time.Duration
	logger  *slog.Logger

	mu      sync.Mutex
	entries map[string]*entry
	closed  bool
	stop    chan struct{}
}

// New creates a Registry and starts its eviction loop. A non-positive
// ttl falls back to DefaultTTL.
func New(factory Factory, ttl time.Duration, logger *slog.Logger) *Registry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	r := &Registry{
		factory: factory,
		ttl:     ttl,
		logger:  logger,
		entries: make(map[string]*entry),
		stop:    make(chan struct{}),
	}
	go r.evictLoop()
	return r
}

// Acquire returns the preview session and notifier for id, creating
// them on first use.
func (r *Registry) Acquire(id string) (*preview.Session, *notifier.Notifier) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		n := notifier.New()
		e = &entry{
			session:  r.factory(n.Broadcast),
			notifier: n,
		}
		r.entries[id] = e
		r.logger.Debug("preview session created", "session", id)
	}
	e.lastSeen = time.Now()
	return e.session, e.notifier
}

// Drop closes and removes the session for id, if any.
func (r *Registry) Drop(id string) {
	r.mu.Lock()
	e, ok := r.entries[id]
	delete(r.entries, id)
	r.mu.Unlock()

	if ok {
		e.session.Close()
		r.logger.Debug("preview session dropped", "session", id)
	}
}

// Broadcast pings every session's listeners. The config watcher uses
// it to make connected dashboards re-pull state after a reload.
func (r *Registry) Broadcast() {
	r.mu.Lock()
	notifiers := make([]*notifier.Notifier, 0, len(r.entries))
	for _, e := range r.entries {
		notifiers = append(notifiers, e.notifier)
	}
	r.mu.Unlock()

	for _, n := range notifiers {
		n.Broadcast()
	}
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Close stops the eviction loop and closes every session.
func (r *Registry) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	entries := r.entries
	r.entries = make(map[string]*entry)
	r.mu.Unlock()

	close(r.stop)
	for _, e := range entries {
		e.session.Close()
	}
}

func (r *Registry) evictLoop() {
	ticker := time.NewTicker(r.ttl / 2)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			r.evictIdle()
		}
	}
}

func (r *Registry) evictIdle() {
	cutoff := time.Now().Add(-r.ttl)

	r.mu.Lock()
	var victims []*entry
	for id, e := range r.entries {
		// A subscribed event stream keeps the entry alive even when no
		// other request has touched it.
		if e.lastSeen.Before(cutoff) && e.notifier.Len() == 0 {
			victims = append(victims, e)
			delete(r.entries, id)
			r.logger.Debug("preview session expired", "session", id)
		}
	}
	r.mu.Unlock()

	for _, e := range victims {
		e.session.Close()
	}
}
