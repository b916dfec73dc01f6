package relay

import (
	"context"
	"sync"

	"github.com/jonathan/jobwatch/internal/types"
)

// DefaultQueueCap bounds the fallback queue. The cap trades completeness for
// bounded storage growth: past it, the oldest entries are evicted silently.
const DefaultQueueCap = 50

// Queue is the bounded FIFO fallback store for records the companion
// application could not accept. Append past the cap evicts the oldest entry.
type Queue interface {
	Append(ctx context.Context, entry types.QueueEntry) error
	List(ctx context.Context) ([]types.QueueEntry, error)
	Len(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
}

// MemoryQueue is the in-process queue backend, used when no Redis address is
// configured. Entries do not survive process exit.
type MemoryQueue struct {
	mu      sync.Mutex
	cap     int
	entries []types.QueueEntry
}

// NewMemoryQueue creates a bounded in-memory queue.
func NewMemoryQueue(cap int) *MemoryQueue {
	if cap <= 0 {
		cap = DefaultQueueCap
	}
	return &MemoryQueue{cap: cap}
}

// Append adds an entry, evicting the oldest when full.
func (q *MemoryQueue) Append(_ context.Context, entry types.QueueEntry) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.entries = append(q.entries, entry)
	if len(q.entries) > q.cap {
		q.entries = q.entries[len(q.entries)-q.cap:]
	}
	return nil
}

// List returns entries oldest first.
func (q *MemoryQueue) List(_ context.Context) ([]types.QueueEntry, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]types.QueueEntry, len(q.entries))
	copy(out, q.entries)
	return out, nil
}

// Len returns the number of queued entries.
func (q *MemoryQueue) Len(_ context.Context) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries), nil
}

// Clear empties the queue.
func (q *MemoryQueue) Clear(_ context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.entries = nil
	return nil
}
