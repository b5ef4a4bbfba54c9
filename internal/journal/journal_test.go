package journal

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rzpsarthak13/cqlbrowser/internal/config"
	"github.com/rzpsarthak13/cqlbrowser/internal/core"
)

func mutation(table string) *core.Mutation {
	return &core.Mutation{
		Keyspace:  "shop",
		Table:     table,
		Operation: core.OperationInsert,
		Statement: "INSERT INTO shop." + table + " (id) VALUES (?)",
		Key:       map[string]string{"id": "1"},
	}
}

func TestMemoryJournal(t *testing.T) {
	ctx := context.Background()
	j := NewMemoryJournal(2)

	require.NoError(t, j.Append(ctx, mutation("a")))
	require.NoError(t, j.Append(ctx, mutation("b")))
	assert.ErrorIs(t, j.Append(ctx, mutation("c")), ErrJournalFull)
	assert.Equal(t, 2, j.Size())

	got, err := j.Drain(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Table)
	assert.Equal(t, "b", got[1].Table)
	assert.False(t, got[0].Timestamp.IsZero())

	got, err = j.Drain(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMemoryJournal_RejectsInvalid(t *testing.T) {
	ctx := context.Background()
	j := NewMemoryJournal(4)

	assert.ErrorIs(t, j.Append(ctx, nil), ErrInvalidMutation)
	assert.ErrorIs(t, j.Append(ctx, &core.Mutation{Keyspace: "shop"}), ErrInvalidMutation)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, j.Append(cancelled, mutation("a")), context.Canceled)
}

func TestMemoryJournal_Close(t *testing.T) {
	ctx := context.Background()
	j := NewMemoryJournal(4)
	require.NoError(t, j.Append(ctx, mutation("a")))

	require.NoError(t, j.Close())
	require.NoError(t, j.Close())
	assert.ErrorIs(t, j.Append(ctx, mutation("b")), ErrJournalClosed)

	got, err := j.Drain(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

type fakeList struct {
	mu     sync.Mutex
	lists  map[string][][]byte
	failOn string
	closed bool
}

func newFakeList() *fakeList {
	return &fakeList{lists: make(map[string][][]byte)}
}

func (f *fakeList) ListPush(_ context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn == "push" {
		return errors.New("connection refused")
	}
	f.lists[key] = append(f.lists[key], value)
	return nil
}

func (f *fakeList) ListPop(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn == "pop" {
		return nil, errors.New("connection refused")
	}
	if len(f.lists[key]) == 0 {
		return nil, nil
	}
	v := f.lists[key][0]
	f.lists[key] = f.lists[key][1:]
	return v, nil
}

func (f *fakeList) ListLength(_ context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.lists[key])), nil
}

func (f *fakeList) Close() error {
	f.closed = true
	return nil
}

func TestRedisJournal(t *testing.T) {
	ctx := context.Background()
	ops := newFakeList()
	j := NewRedisJournal(ops, "")

	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m := mutation("orders")
	m.Timestamp = ts
	m.Values = map[string]string{"status": "paid"}
	require.NoError(t, j.Append(ctx, m))
	require.NoError(t, j.Append(ctx, mutation("users")))
	assert.Equal(t, 2, j.Size())
	assert.Len(t, ops.lists["cqlbrowser:journal"], 2)

	ops.lists["cqlbrowser:journal"] = append(ops.lists["cqlbrowser:journal"], []byte("{not json"))

	got, err := j.Drain(ctx, 5)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "orders", got[0].Table)
	assert.True(t, ts.Equal(got[0].Timestamp))
	assert.Equal(t, map[string]string{"status": "paid"}, got[0].Values)
	assert.Equal(t, "users", got[1].Table)
	assert.Equal(t, 0, j.Size())

	require.NoError(t, j.Close())
	assert.True(t, ops.closed)
	assert.ErrorIs(t, j.Append(ctx, mutation("x")), ErrJournalClosed)
	assert.Equal(t, 0, j.Size())
}

func TestRedisJournal_Errors(t *testing.T) {
	ctx := context.Background()
	ops := newFakeList()
	j := NewRedisJournal(ops, "k")

	ops.failOn = "push"
	assert.ErrorContains(t, j.Append(ctx, mutation("a")), "failed to append mutation")

	ops.failOn = "pop"
	_, err := j.Drain(ctx, 1)
	assert.ErrorContains(t, err, "failed to drain mutations")
}

func TestNew(t *testing.T) {
	cfg := config.DefaultInternalConfig()

	j, err := New(cfg)
	require.NoError(t, err)
	assert.Nil(t, j)

	cfg.Journal.Type = "memory"
	j, err = New(cfg)
	require.NoError(t, err)
	assert.IsType(t, &MemoryJournal{}, j)

	cfg.Journal.Type = "file"
	_, err = New(cfg)
	assert.ErrorContains(t, err, "unsupported journal type")

	cfg.Journal.Type = "kafka"
	cfg.Journal.KafkaConfig.Topic = ""
	_, err = New(cfg)
	assert.ErrorContains(t, err, "topic is required")
}
