package query

import (
	"context"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rzpsarthak13/cqlbrowser/internal/core"
	"github.com/rzpsarthak13/cqlbrowser/internal/schema"
)

func TestPager(t *testing.T) {
	var p Pager
	assert.Nil(t, p.Current())
	assert.False(t, p.HasNext())
	assert.False(t, p.HasPrevious())
	assert.ErrorIs(t, p.Next(), core.ErrNoNextPage)
	assert.ErrorIs(t, p.Previous(), core.ErrNoPreviousPage)

	p.Observe([]byte("p2"))
	require.NoError(t, p.Next())
	assert.Equal(t, 1, p.Depth())
	assert.Equal(t, []byte("p2"), p.Current())

	p.Observe([]byte("p3"))
	before := p.Current()
	require.NoError(t, p.Next())
	assert.Equal(t, 2, p.Depth())

	require.NoError(t, p.Previous())
	assert.Equal(t, 1, p.Depth())
	assert.Equal(t, before, p.Current())

	p.Reset()
	assert.Equal(t, 0, p.Depth())
	assert.Nil(t, p.Current())
}

func TestPager_ObserveCopies(t *testing.T) {
	var p Pager
	cursor := []byte("abc")
	p.Observe(cursor)
	cursor[0] = 'z'
	require.NoError(t, p.Next())
	assert.Equal(t, []byte("abc"), p.Current())
}

func TestClampPageSize(t *testing.T) {
	assert.Equal(t, DefaultPageSize, ClampPageSize(0))
	assert.Equal(t, MinPageSize, ClampPageSize(3))
	assert.Equal(t, MaxPageSize, ClampPageSize(10000))
	assert.Equal(t, 120, ClampPageSize(120))
}

func pagedSession() *fakeSession {
	s := newFakeSession()
	s.pages[""] = &core.ResultPage{Rows: []core.Row{{"status": "p1"}}, NextPageState: []byte("c2")}
	s.pages["c2"] = &core.ResultPage{Rows: []core.Row{{"status": "p2"}}, NextPageState: []byte("c3")}
	s.pages["c3"] = &core.ResultPage{Rows: []core.Row{{"status": "p3"}}}
	return s
}

func TestTableView_Navigation(t *testing.T) {
	ctx := context.Background()
	session := pagedSession()
	view := NewTableView(NewEngine(session, schema.NewTypeRegistry()), usersTable(), 10)

	page, err := view.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "p1", page.Rows[0]["status"])
	assert.True(t, view.Pager().HasNext())
	assert.False(t, view.Pager().HasPrevious())

	page, err = view.NextPage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "p2", page.Rows[0]["status"])
	assert.Equal(t, 1, view.Pager().Depth())
	assert.Equal(t, []byte("c2"), view.Pager().Current())

	activeBefore := view.Pager().Current()
	_, err = view.NextPage(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, view.Pager().Depth())
	assert.False(t, view.Pager().HasNext())

	_, err = view.NextPage(ctx)
	assert.ErrorIs(t, err, core.ErrNoNextPage)

	page, err = view.PreviousPage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "p2", page.Rows[0]["status"])
	assert.Equal(t, 1, view.Pager().Depth())
	assert.Equal(t, activeBefore, view.Pager().Current())

	page, err = view.PreviousPage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "p1", page.Rows[0]["status"])
	assert.Nil(t, view.Pager().Current())

	_, err = view.PreviousPage(ctx)
	assert.ErrorIs(t, err, core.ErrNoPreviousPage)

	assert.Equal(t, 10, session.last().PageSize)
}

func TestTableView_FilterChangeResets(t *testing.T) {
	ctx := context.Background()
	session := pagedSession()
	view := NewTableView(NewEngine(session, schema.NewTypeRegistry()), usersTable(), 50)

	_, err := view.Fetch(ctx)
	require.NoError(t, err)
	_, err = view.NextPage(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, view.Pager().Depth())

	assert.True(t, view.SetFilters(core.Values{"status": "active"}))
	assert.Nil(t, view.Pager().Current())
	assert.Equal(t, 0, view.Pager().Depth())

	_, err = view.Fetch(ctx)
	require.NoError(t, err)
	assert.Nil(t, session.last().PageState)
	assert.Contains(t, session.last().Text, "WHERE status = ?")
}

func TestTableView_CallerEditsDoNotLeakIntoFilters(t *testing.T) {
	ctx := context.Background()
	session := pagedSession()
	view := NewTableView(NewEngine(session, schema.NewTypeRegistry()), usersTable(), 50)

	filters := core.Values{"status": "active"}
	require.True(t, view.SetFilters(filters))
	_, err := view.Fetch(ctx)
	require.NoError(t, err)

	filters["status"] = "inactive"
	view.Filters()["status"] = "deleted"

	// The cursor still belongs to the predicate it was issued for.
	_, err = view.NextPage(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("c2"), session.last().PageState)
	assert.Equal(t, []interface{}{"active"}, session.last().Args)
	assert.Equal(t, core.Values{"status": "active"}, view.Filters())

	// Applying the edited map is a filter change and restarts paging.
	assert.True(t, view.SetFilters(filters))
	_, err = view.Fetch(ctx)
	require.NoError(t, err)
	assert.Nil(t, session.last().PageState)
	assert.Equal(t, []interface{}{"inactive"}, session.last().Args)
}

func TestTableView_SetFiltersStructural(t *testing.T) {
	view := NewTableView(NewEngine(newFakeSession(), nil), usersTable(), 50)

	assert.False(t, view.SetFilters(nil))
	assert.False(t, view.SetFilters(core.Values{"status": ""}))
	assert.True(t, view.SetFilters(core.Values{"status": "active", "b": "x"}))

	view.Pager().Observe([]byte("c2"))
	require.NoError(t, view.Pager().Next())

	assert.False(t, view.SetFilters(core.Values{"b": "x", "status": "active"}))
	assert.Equal(t, 1, view.Pager().Depth())

	// The values stringify identically but differ in type.
	assert.True(t, view.SetFilters(core.Values{"b": "x", "status": []string{"active"}}))
	assert.Equal(t, 0, view.Pager().Depth())
}

func TestTableView_FailedNavigationKeepsState(t *testing.T) {
	ctx := context.Background()
	session := pagedSession()
	view := NewTableView(NewEngine(session, nil), usersTable(), 50)

	_, err := view.Fetch(ctx)
	require.NoError(t, err)

	session.err = errUnavailable
	_, err = view.NextPage(ctx)
	require.ErrorIs(t, err, core.ErrExecution)
	assert.Equal(t, 0, view.Pager().Depth())
	assert.True(t, view.Pager().HasNext())
}

func TestEngine_ExecutionError(t *testing.T) {
	session := newFakeSession()
	session.err = errUnavailable
	engine := NewEngine(session, nil)

	_, err := engine.Execute(context.Background(), core.Statement{Text: "SELECT * FROM app.users"})
	require.ErrorIs(t, err, core.ErrExecution)
	assert.ErrorIs(t, err, errUnavailable)

	var execErr *core.ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, "SELECT * FROM app.users", execErr.Statement)
	assert.Len(t, session.executed, 1)
}

func TestEngine_Writes(t *testing.T) {
	ctx := context.Background()
	session := newFakeSession()
	engine := NewEngine(session, nil)

	stmt, err := engine.Insert(ctx, usersTable(), core.Values{"a": userID, "b": "x", "c": "1", "status": "new"})
	require.NoError(t, err)
	assert.Equal(t, stmt.Text, session.last().Text)

	_, err = engine.Delete(ctx, usersTable(), core.Values{"a": userID, "b": "x"})
	require.ErrorIs(t, err, core.ErrMissingPrimaryKey)
	assert.Len(t, session.executed, 1)

	_, err = engine.Update(ctx, usersTable(), core.Values{"a": userID, "b": "x", "c": "1", "status": "old"})
	require.NoError(t, err)
	assert.Len(t, session.executed, 2)
}

func TestEngine_Explore(t *testing.T) {
	session := newFakeSession()
	engine := NewEngine(session, nil)

	ex, page, err := engine.Explore(context.Background(), "SELECT * FROM t LIMIT 50", lo.ToPtr(10))
	require.NoError(t, err)
	assert.NotNil(t, page)
	assert.True(t, ex.Overridden)
	assert.Equal(t, "SELECT * FROM t LIMIT 10", session.last().Text)
	assert.Empty(t, session.last().Args)
}
