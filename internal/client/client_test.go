package client

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rzpsarthak13/cqlbrowser/internal/config"
	"github.com/rzpsarthak13/cqlbrowser/internal/core"
	"github.com/rzpsarthak13/cqlbrowser/internal/journal"
	"github.com/rzpsarthak13/cqlbrowser/internal/kvstore"
)

// fakeSession serves the orders table schema and records every statement.
type fakeSession struct {
	executed []core.Statement
	closed   bool
}

func (f *fakeSession) Execute(_ context.Context, stmt core.Statement) (*core.ResultPage, error) {
	f.executed = append(f.executed, stmt)
	if strings.Contains(stmt.Text, "system_schema.columns") && stmt.Args[1] == "orders" {
		return &core.ResultPage{Rows: []core.Row{
			{"column_name": "id", "type": "uuid", "kind": "partition_key", "position": 0, "clustering_order": "none"},
			{"column_name": "day", "type": "date", "kind": "clustering", "position": 0, "clustering_order": "desc"},
			{"column_name": "total", "type": "decimal", "kind": "regular", "position": -1, "clustering_order": "none"},
			{"column_name": "note", "type": "text", "kind": "regular", "position": -1, "clustering_order": "none"},
		}}, nil
	}
	return &core.ResultPage{}, nil
}

func (f *fakeSession) Close() error {
	f.closed = true
	return nil
}

func newTestClient(t *testing.T, j core.MutationJournal) (*ClientImpl, *fakeSession) {
	t.Helper()
	session := &fakeSession{}
	c := New(config.DefaultInternalConfig(), session, kvstore.NewMemoryKVStore(), j)
	c.now = func() time.Time { return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC) }
	return c, session
}

func TestClient_Browse(t *testing.T) {
	ctx := context.Background()
	c, session := newTestClient(t, nil)

	view, err := c.Browse(ctx, "shop", "orders")
	require.NoError(t, err)
	assert.Equal(t, 50, view.PageSize())
	assert.Equal(t, []string{"id", "day", "note", "total"}, columnNames(view.Schema().Columns))

	_, err = view.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM shop.orders", session.executed[len(session.executed)-1].Text)

	_, err = c.Browse(ctx, "shop", "missing")
	assert.ErrorContains(t, err, "shop.missing not found")
}

func TestClient_WritesAreJournaled(t *testing.T) {
	ctx := context.Background()
	j := journal.NewMemoryJournal(10)
	c, _ := newTestClient(t, j)

	ts, err := c.Schema(ctx, "shop", "orders")
	require.NoError(t, err)

	id := uuid.MustParse("5f1b2c3d-0000-4000-8000-000000000001")
	_, err = c.Insert(ctx, ts, core.Values{"id": id.String(), "day": "2024-02-29", "total": "12.50"})
	require.NoError(t, err)

	_, err = c.Delete(ctx, ts, core.Values{"id": id.String(), "day": "2024-02-29"})
	require.NoError(t, err)

	got, err := c.DrainJournal(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)

	insert := got[0]
	assert.Equal(t, core.OperationInsert, insert.Operation)
	assert.Equal(t, "shop.orders", insert.QualifiedTable())
	assert.Equal(t, map[string]string{"id": id.String(), "day": "2024-02-29"}, insert.Key)
	assert.Equal(t, map[string]string{"total": "12.50"}, insert.Values)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), insert.Timestamp)

	del := got[1]
	assert.Equal(t, core.OperationDelete, del.Operation)
	assert.Equal(t, "DELETE FROM shop.orders WHERE id = ? AND day = ?", del.Statement)
	assert.Nil(t, del.Values)
}

func TestClient_FailedWriteNotJournaled(t *testing.T) {
	ctx := context.Background()
	j := journal.NewMemoryJournal(10)
	c, _ := newTestClient(t, j)

	ts, err := c.Schema(ctx, "shop", "orders")
	require.NoError(t, err)

	_, err = c.Delete(ctx, ts, core.Values{"id": uuid.NewString()})
	assert.ErrorIs(t, err, core.ErrMissingPrimaryKey)
	assert.Equal(t, 0, j.Size())
}

func TestClient_NoJournal(t *testing.T) {
	c, _ := newTestClient(t, nil)
	got, err := c.DrainJournal(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestClient_Explore(t *testing.T) {
	c, session := newTestClient(t, nil)

	ex, _, err := c.Explore(context.Background(), "SELECT * FROM shop.orders")
	require.NoError(t, err)
	assert.True(t, ex.Capped)
	assert.Equal(t, "SELECT * FROM shop.orders LIMIT 1000", session.executed[0].Text)

	c.config.Browser.ResultCap = 0
	ex, _, err = c.Explore(context.Background(), "SELECT * FROM shop.orders")
	require.NoError(t, err)
	assert.False(t, ex.Capped)
	assert.Equal(t, "SELECT * FROM shop.orders", session.executed[1].Text)
}

func TestClient_Close(t *testing.T) {
	c, session := newTestClient(t, journal.NewMemoryJournal(1))

	_, err := c.Ping(context.Background())
	assert.ErrorContains(t, err, "does not support ping")

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.True(t, session.closed)

	_, err = c.Keyspaces(context.Background())
	assert.ErrorContains(t, err, "client is closed")
}

func TestNewClientImpl_InvalidConfig(t *testing.T) {
	_, err := NewClientImpl(nil)
	assert.Error(t, err)

	_, err = NewClientImpl(yamlProvider("browser:\n  page_size: 1\n"))
	assert.ErrorContains(t, err, "browser.page_size")

	_, err = NewClientImpl(yamlProvider("profile: prod\n"))
	assert.ErrorContains(t, err, `profile "prod"`)
}

type yamlProvider string

func (p yamlProvider) GetYAML() ([]byte, error) {
	return []byte(p), nil
}

func columnNames(cols []core.Column) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}
