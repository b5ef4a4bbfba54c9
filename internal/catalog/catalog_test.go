package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rzpsarthak13/cqlbrowser/internal/core"
)

// fakeSession answers catalog queries by matching on the statement text.
type fakeSession struct {
	responses map[string][]*core.ResultPage
	executed  []core.Statement
	err       error
}

func (f *fakeSession) Execute(_ context.Context, stmt core.Statement) (*core.ResultPage, error) {
	f.executed = append(f.executed, stmt)
	if f.err != nil {
		return nil, f.err
	}
	for prefix, pages := range f.responses {
		if !strings.Contains(stmt.Text, prefix) {
			continue
		}
		idx := 0
		if len(stmt.PageState) > 0 {
			idx = int(stmt.PageState[0])
		}
		return pages[idx], nil
	}
	return &core.ResultPage{}, nil
}

func (f *fakeSession) Close() error { return nil }

func columnsRow(name, typ, kind string, position int, order string) core.Row {
	return core.Row{
		"column_name":      name,
		"type":             typ,
		"kind":             kind,
		"position":         position,
		"clustering_order": order,
	}
}

func TestListKeyspaces(t *testing.T) {
	session := &fakeSession{responses: map[string][]*core.ResultPage{
		"system_schema.keyspaces": {
			{
				Rows: []core.Row{
					{"keyspace_name": "zoo"},
					{"keyspace_name": "system"},
					{"keyspace_name": "system_auth"},
				},
				NextPageState: []byte{1},
			},
			{
				Rows: []core.Row{
					{"keyspace_name": "analytics"},
					{"keyspace_name": "system_schema"},
					{"keyspace_name": "system_custom"},
					{"keyspace_name": "system_virtual_schema"},
				},
			},
		},
	}}

	names, err := NewCatalog(session).ListKeyspaces(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"analytics", "system_custom", "zoo"}, names)
	assert.Len(t, session.executed, 2)
}

func TestListTables(t *testing.T) {
	session := &fakeSession{responses: map[string][]*core.ResultPage{
		"system_schema.tables": {{Rows: []core.Row{{"table_name": "users"}, {"table_name": "events"}}}},
	}}

	names, err := NewCatalog(session).ListTables(context.Background(), "app")
	require.NoError(t, err)
	assert.Equal(t, []string{"events", "users"}, names)
	assert.Equal(t, []interface{}{"app"}, session.executed[0].Args)
}

func TestGetTableSchema(t *testing.T) {
	session := &fakeSession{responses: map[string][]*core.ResultPage{
		"system_schema.columns": {{Rows: []core.Row{
			columnsRow("payload", "map<text, frozen<list<int>>>", "regular", -1, "none"),
			columnsRow("c", "timestamp", "clustering", 0, "desc"),
			columnsRow("b", "text", "partition_key", 1, "none"),
			columnsRow("a", "uuid", "partition_key", 0, "none"),
			columnsRow("owner", "text", "static", -1, "none"),
		}}},
	}}

	ts, err := NewCatalog(session).GetTableSchema(context.Background(), "app", "events")
	require.NoError(t, err)
	require.True(t, ts.Found())

	names := make([]string, 0, len(ts.Columns))
	for _, c := range ts.Columns {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"a", "b", "c", "owner", "payload"}, names)

	c := ts.Column("c")
	require.NotNil(t, c)
	assert.Equal(t, core.RoleClusteringKey, c.Role)
	assert.Equal(t, core.OrderDesc, c.Order)

	payload := ts.Column("payload")
	require.NotNil(t, payload)
	assert.Equal(t, "map", payload.Type.Base)
	assert.Equal(t, "map<text, frozen<list<int>>>", payload.RawType)
	assert.Equal(t, core.RoleStatic, ts.Column("owner").Role)

	assert.Equal(t, []interface{}{"app", "events"}, session.executed[0].Args)
}

func TestGetTableSchema_NotFound(t *testing.T) {
	ts, err := NewCatalog(&fakeSession{}).GetTableSchema(context.Background(), "app", "missing")
	require.NoError(t, err)
	assert.False(t, ts.Found())
	assert.Empty(t, ts.Columns)
}

func TestGetTableSchema_ParseError(t *testing.T) {
	session := &fakeSession{responses: map[string][]*core.ResultPage{
		"system_schema.columns": {{Rows: []core.Row{
			columnsRow("a", "int", "partition_key", 0, "none"),
			columnsRow("broken", "map<text, int", "regular", -1, "none"),
		}}},
	}}

	_, err := NewCatalog(session).GetTableSchema(context.Background(), "app", "t")
	require.ErrorIs(t, err, core.ErrParse)
	assert.Contains(t, err.Error(), "broken")
}

func TestEstimateRowCount(t *testing.T) {
	session := &fakeSession{responses: map[string][]*core.ResultPage{
		"COUNT(*)": {{Rows: []core.Row{{"count": int64(10000)}}}},
	}}

	count, capped, err := NewCatalog(session).EstimateRowCount(context.Background(), "app", "Events", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), count)
	assert.True(t, capped)
	assert.Equal(t, `SELECT COUNT(*) FROM app."Events" LIMIT 10000`, session.executed[0].Text)
}

func TestCatalog_ExecutionError(t *testing.T) {
	boom := errors.New("no hosts available")
	_, err := NewCatalog(&fakeSession{err: boom}).ListKeyspaces(context.Background())
	require.ErrorIs(t, err, core.ErrExecution)
	assert.ErrorIs(t, err, boom)
}
