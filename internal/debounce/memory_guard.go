package debounce

import (
	"context"
	"sync"
	"time"
)

const (
	defaultMaxEntries  = 10000
	defaultInFlightTTL = time.Minute
)

type memoryEntry struct {
	inFlight      bool
	startedAt     time.Time
	lastProcessed time.Time
}

// MemoryGuard is the process-local Guard. It holds at most maxEntries subjects; when full it
// drops subjects whose cooldown has passed, then the idle subject processed longest ago.
type MemoryGuard struct {
	mu          sync.Mutex
	entries     map[string]*memoryEntry
	cooldown    time.Duration
	inFlightTTL time.Duration
	maxEntries  int
	now         func() time.Time
}

type MemoryOption func(*MemoryGuard)

func WithMaxEntries(max int) MemoryOption {
	return func(g *MemoryGuard) {
		if max > 0 {
			g.maxEntries = max
		}
	}
}

// WithInFlightTTL bounds how long an unreleased subject blocks new work.
func WithInFlightTTL(ttl time.Duration) MemoryOption {
	return func(g *MemoryGuard) {
		if ttl > 0 {
			g.inFlightTTL = ttl
		}
	}
}

func WithClock(now func() time.Time) MemoryOption {
	return func(g *MemoryGuard) {
		if now != nil {
			g.now = now
		}
	}
}

func NewMemoryGuard(cooldown time.Duration, opts ...MemoryOption) *MemoryGuard {
	g := &MemoryGuard{
		entries:     map[string]*memoryEntry{},
		cooldown:    cooldown,
		inFlightTTL: defaultInFlightTTL,
		maxEntries:  defaultMaxEntries,
		now:         time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

func (g *MemoryGuard) Acquire(_ context.Context, subject string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	entry, ok := g.entries[subject]
	if ok {
		if entry.inFlight && now.Sub(entry.startedAt) < g.inFlightTTL {
			return false, nil
		}
		if !entry.inFlight && !entry.lastProcessed.IsZero() && now.Sub(entry.lastProcessed) < g.cooldown {
			return false, nil
		}
		entry.inFlight = true
		entry.startedAt = now
		return true, nil
	}

	if len(g.entries) >= g.maxEntries && !g.evict(now) {
		return false, nil
	}

	g.entries[subject] = &memoryEntry{inFlight: true, startedAt: now}
	return true, nil
}

func (g *MemoryGuard) Release(_ context.Context, subject string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	entry, ok := g.entries[subject]
	if !ok {
		if len(g.entries) >= g.maxEntries && !g.evict(now) {
			return nil
		}
		entry = &memoryEntry{}
		g.entries[subject] = entry
	}
	entry.inFlight = false
	entry.lastProcessed = now

	return nil
}

func (g *MemoryGuard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.entries)
}

// evict frees at least one slot and reports whether it could. Caller holds mu.
func (g *MemoryGuard) evict(now time.Time) bool {
	freed := false
	var oldestKey string
	var oldest time.Time

	for key, entry := range g.entries {
		if entry.inFlight {
			if now.Sub(entry.startedAt) >= g.inFlightTTL {
				delete(g.entries, key)
				freed = true
			}
			continue
		}
		if now.Sub(entry.lastProcessed) >= g.cooldown {
			delete(g.entries, key)
			freed = true
			continue
		}
		if oldestKey == "" || entry.lastProcessed.Before(oldest) {
			oldestKey = key
			oldest = entry.lastProcessed
		}
	}

	if !freed && oldestKey != "" {
		delete(g.entries, oldestKey)
		freed = true
	}

	return freed
}
