// Package gate provides a counting admission gate that bounds how many
// build tasks may run at the same time.
package gate

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Gate admits at most limit concurrent holders. Acquire blocks until
// capacity is available; there is no cancellation, a blocked Acquire only
// returns once another holder releases.
type Gate struct {
	sem   *semaphore.Weighted
	limit int

	mu   sync.Mutex
	held int
}

// New creates a Gate with the given concurrency limit.
func New(limit int) (*Gate, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("gate: limit must be positive, got %d", limit)
	}
	return &Gate{
		sem:   semaphore.NewWeighted(int64(limit)),
		limit: limit,
	}, nil
}

// Acquire blocks until fewer than limit holders are admitted, then admits
// the caller and returns a release function. The release function must be
// called on every exit path (typically deferred) and is safe to call once.
func (g *Gate) Acquire() func() {
	// The background context never cancels, so Acquire cannot fail.
	_ = g.sem.Acquire(context.Background(), 1)

	g.mu.Lock()
	g.held++
	g.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			g.held--
			g.mu.Unlock()
			g.sem.Release(1)
		})
	}
}

// Held reports how many holders are currently admitted.
func (g *Gate) Held() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.held
}

// Limit returns the configured concurrency ceiling.
func (g *Gate) Limit() int {
	return g.limit
}
