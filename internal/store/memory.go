// internal/store/memory.go
//
// In-memory holder of player sessions.
//
// Characteristics:
//   - One *game.Session per player id, created on first use.
//   - Concurrency-safe via a single Mutex; every lookup also refreshes the
//     idle timestamp, so there are no read-only paths.
//   - Idle sessions are dropped by Sweep; state is lost when the process restarts.

package store

import (
	"context"
	"sync"
	"time"

	"github.com/robalobadob/wheelyhard/internal/game"
	"github.com/robalobadob/wheelyhard/internal/metrics"
)

// Store maps players to their game session.
type Store interface {
	// Session returns the player's session, creating a NotStarted one if needed.
	Session(ctx context.Context, playerID string) *game.Session

	// Sweep forgets sessions not touched since before. It returns how many
	// were removed.
	Sweep(ctx context.Context, before time.Time) int
}

type entry struct {
	session *game.Session
	seen    time.Time
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu        sync.Mutex
	sessions  map[string]*entry
	maxReveal int
	now       func() time.Time
}

// NewMemoryStore constructs a new in-memory Store whose sessions use maxReveal.
func NewMemoryStore(maxReveal int) Store {
	return &memory{
		sessions:  make(map[string]*entry),
		maxReveal: maxReveal,
		now:       time.Now,
	}
}

func (m *memory) Session(ctx context.Context, playerID string) *game.Session {
	now := m.now()

	// Lookup and touch share one lock; Sweep must not drop a found entry.
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.sessions[playerID]; ok {
		e.seen = now
		return e.session
	}
	e := &entry{session: game.New(m.maxReveal), seen: now}
	m.sessions[playerID] = e
	metrics.ActiveSessions.Set(float64(len(m.sessions)))
	return e.session
}

func (m *memory) Sweep(ctx context.Context, before time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, e := range m.sessions {
		if e.seen.Before(before) {
			delete(m.sessions, id)
			n++
		}
	}
	metrics.ActiveSessions.Set(float64(len(m.sessions)))
	return n
}
