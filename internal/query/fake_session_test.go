package query

import (
	"context"
	"errors"

	"github.com/rzpsarthak13/cqlbrowser/internal/core"
	"github.com/rzpsarthak13/cqlbrowser/internal/schema"
)

// fakeSession serves pages keyed by the cursor string and records every
// statement it executes.
type fakeSession struct {
	pages    map[string]*core.ResultPage
	executed []core.Statement
	err      error
}

func newFakeSession() *fakeSession {
	return &fakeSession{pages: map[string]*core.ResultPage{}}
}

func (f *fakeSession) Execute(_ context.Context, stmt core.Statement) (*core.ResultPage, error) {
	f.executed = append(f.executed, stmt)
	if f.err != nil {
		return nil, f.err
	}
	if page, ok := f.pages[string(stmt.PageState)]; ok {
		return page, nil
	}
	return &core.ResultPage{}, nil
}

func (f *fakeSession) Close() error { return nil }

func (f *fakeSession) last() core.Statement {
	if len(f.executed) == 0 {
		return core.Statement{}
	}
	return f.executed[len(f.executed)-1]
}

var errUnavailable = errors.New("unavailable: not enough replicas")

// usersTable has partition keys (a, b), clustering key c DESC and two
// regular columns.
func usersTable() *core.TableSchema {
	return &core.TableSchema{
		Keyspace: "app",
		Table:    "users",
		Columns: []core.Column{
			{Name: "status", Type: schema.MustParseTypeExpression("text"), Role: core.RoleRegular},
			{Name: "c", Type: schema.MustParseTypeExpression("int"), Role: core.RoleClusteringKey, Order: core.OrderDesc},
			{Name: "b", Type: schema.MustParseTypeExpression("text"), Role: core.RolePartitionKey, Position: 1},
			{Name: "tags", Type: schema.MustParseTypeExpression("set<text>"), Role: core.RoleRegular},
			{Name: "a", Type: schema.MustParseTypeExpression("uuid"), Role: core.RolePartitionKey},
			{Name: "hits", Type: schema.MustParseTypeExpression("counter"), Role: core.RoleRegular},
		},
	}
}
