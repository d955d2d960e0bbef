// Package replay defines the idempotency guard for transfer submissions.
package replay

import (
	"context"
	"sync"
	"sync/atomic"
)

// Guard records seen submission keys so an identical resubmission is
// acknowledged instead of settled twice.
type Guard interface {
	// ObserveAndRecord atomically checks if key was seen and records it if
	// not. Returns true if key was already seen, false if newly recorded.
	ObserveAndRecord(ctx context.Context, key string) bool

	// Forget removes a key, allowing the submission to be retried. Used
	// when a recorded submission could not be processed (e.g. queue
	// backpressure).
	Forget(ctx context.Context, key string)

	Size() int64
}

const defaultMaxSize = 50000

// Option applies a configuration option to the in-memory guard.
type Option func(*inMemoryGuard)

// WithMaxSize bounds the number of keys kept in memory. Zero or negative
// disables eviction.
func WithMaxSize(maxSize int) Option {
	return func(g *inMemoryGuard) {
		g.maxSize = maxSize
	}
}

// inMemoryGuard implements Guard with a map plus an insertion-ordered ring
// for FIFO eviction in bounded mode.
type inMemoryGuard struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	order   []string // insertion order, bounded mode only
	head    int      // index of the oldest live entry in order
	maxSize int
	size    atomic.Int64
}

// NewInMemoryGuard creates an in-memory guard with configuration options.
func NewInMemoryGuard(opts ...Option) Guard {
	g := &inMemoryGuard{
		maxSize: defaultMaxSize,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.seen = make(map[string]struct{})
	return g
}

func (g *inMemoryGuard) ObserveAndRecord(_ context.Context, key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.seen[key]; ok {
		return true
	}

	if g.maxSize > 0 {
		for len(g.seen) >= g.maxSize {
			g.evictOldest()
		}
		g.order = append(g.order, key)
		g.compact()
	}
	g.seen[key] = struct{}{}
	g.size.Add(1)
	return false
}

func (g *inMemoryGuard) Forget(_ context.Context, key string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.seen[key]; !ok {
		return
	}
	delete(g.seen, key)
	g.size.Add(-1)
	// The stale order entry is skipped during eviction.
}

func (g *inMemoryGuard) Size() int64 {
	return g.size.Load()
}

// evictOldest drops the oldest live key. Must hold g.mu.
func (g *inMemoryGuard) evictOldest() {
	for g.head < len(g.order) {
		key := g.order[g.head]
		g.head++
		if _, ok := g.seen[key]; ok {
			delete(g.seen, key)
			g.size.Add(-1)
			return
		}
	}
}

// compact reclaims the consumed prefix of the order slice once it dominates
// the backing array. Must hold g.mu.
func (g *inMemoryGuard) compact() {
	if g.head > 0 && g.head*2 >= len(g.order) {
		g.order = append([]string(nil), g.order[g.head:]...)
		g.head = 0
	}
}
