package journal

import (
	"context"
	"fmt"
	"sync"

	"github.com/rzpsarthak13/cqlbrowser/internal/core"
)

// ListOperations are the list primitives the Redis journal needs.
// kvstore.RedisKVStore implements them.
type ListOperations interface {
	// ListPush adds a value to the end of a list (RPUSH).
	ListPush(ctx context.Context, key string, value []byte) error

	// ListPop removes and returns the first element from a list (LPOP).
	// Returns nil if the list is empty.
	ListPop(ctx context.Context, key string) ([]byte, error)

	// ListLength returns the length of a list (LLEN).
	ListLength(ctx context.Context, key string) (int64, error)
}

// RedisJournal implements core.MutationJournal on a Redis list, so several
// browser processes can share one journal.
type RedisJournal struct {
	ops    ListOperations
	key    string
	mu     sync.RWMutex
	closed bool
}

// NewRedisJournal creates a journal stored under key. The journal owns ops
// and closes it on Close when it implements io.Closer.
func NewRedisJournal(ops ListOperations, key string) *RedisJournal {
	if key == "" {
		key = "cqlbrowser:journal"
	}
	return &RedisJournal{ops: ops, key: key}
}

// Append serializes the mutation as JSON and pushes it to the list tail.
func (j *RedisJournal) Append(ctx context.Context, m *core.Mutation) error {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if err := closedCheck(ctx, j.closed); err != nil {
		return err
	}
	if err := prepare(m); err != nil {
		return err
	}

	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal mutation: %w", err)
	}
	if err := j.ops.ListPush(ctx, j.key, data); err != nil {
		return fmt.Errorf("failed to append mutation: %w", err)
	}
	return nil
}

// Drain pops up to limit mutations from the list head.
func (j *RedisJournal) Drain(ctx context.Context, limit int) ([]*core.Mutation, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if err := closedCheck(ctx, j.closed); err != nil {
		return nil, err
	}

	limit = drainLimit(limit)
	out := make([]*core.Mutation, 0, limit)
	for len(out) < limit {
		data, err := j.ops.ListPop(ctx, j.key)
		if err != nil {
			return out, fmt.Errorf("failed to drain mutations: %w", err)
		}
		if data == nil {
			break
		}
		if m, ok := decode(data); ok {
			out = append(out, m)
		}
	}
	return out, nil
}

// Size returns the list length, or 0 if it cannot be read.
func (j *RedisJournal) Size() int {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if j.closed {
		return 0
	}
	n, err := j.ops.ListLength(context.Background(), j.key)
	if err != nil {
		logger.Warn().Err(err).Str("key", j.key).Msg("failed to read journal length")
		return 0
	}
	return int(n)
}

// Close closes the journal and the underlying store if it is closable.
func (j *RedisJournal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return nil
	}
	j.closed = true
	if c, ok := j.ops.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
