package journal

import (
	"context"
	"sync"

	"github.com/rzpsarthak13/cqlbrowser/internal/core"
)

// MemoryJournal implements core.MutationJournal with a bounded channel.
// Contents are lost when the process exits.
type MemoryJournal struct {
	queue  chan *core.Mutation
	mu     sync.RWMutex
	closed bool
}

// NewMemoryJournal creates a journal holding at most bufferSize mutations.
func NewMemoryJournal(bufferSize int) *MemoryJournal {
	if bufferSize <= 0 {
		bufferSize = 1000
	}
	return &MemoryJournal{
		queue: make(chan *core.Mutation, bufferSize),
	}
}

// Append records a mutation. It fails with ErrJournalFull instead of blocking.
func (j *MemoryJournal) Append(ctx context.Context, m *core.Mutation) error {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if err := closedCheck(ctx, j.closed); err != nil {
		return err
	}
	if err := prepare(m); err != nil {
		return err
	}

	select {
	case j.queue <- m:
		return nil
	default:
		return ErrJournalFull
	}
}

// Drain removes up to limit mutations in append order.
func (j *MemoryJournal) Drain(ctx context.Context, limit int) ([]*core.Mutation, error) {
	limit = drainLimit(limit)
	out := make([]*core.Mutation, 0, min(limit, len(j.queue)))

	for len(out) < limit {
		select {
		case m, ok := <-j.queue:
			if !ok {
				return out, nil
			}
			out = append(out, m)
		case <-ctx.Done():
			return out, ctx.Err()
		default:
			return out, nil
		}
	}
	return out, nil
}

// Size returns the number of undrained mutations.
func (j *MemoryJournal) Size() int {
	return len(j.queue)
}

// Close stops further appends. Mutations already buffered can still be drained.
func (j *MemoryJournal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return nil
	}
	j.closed = true
	close(j.queue)
	return nil
}
