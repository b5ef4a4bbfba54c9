package query

import (
	"context"
	"maps"
	"reflect"
	"sort"

	"github.com/rzpsarthak13/cqlbrowser/internal/core"
	"github.com/rzpsarthak13/cqlbrowser/internal/schema"
)

// TableView is the navigation state for browsing one table with one filter
// set: the schema, the active filters, the page size and the pager.
// Switching tables means creating a new view.
//
// TableView is not safe for concurrent use; callers serialize navigation.
type TableView struct {
	engine   *Engine
	schema   *core.TableSchema
	filters  core.Values
	key      []filterPair
	pageSize int
	pager    Pager
}

type filterPair struct {
	column string
	value  interface{}
}

// NewTableView creates a view positioned on the first page of ts.
func NewTableView(engine *Engine, ts *core.TableSchema, pageSize int) *TableView {
	return &TableView{
		engine:   engine,
		schema:   ts,
		pageSize: ClampPageSize(pageSize),
	}
}

// Schema returns the table schema the view browses.
func (v *TableView) Schema() *core.TableSchema {
	return v.schema
}

// Filters returns a copy of the active filters.
func (v *TableView) Filters() core.Values {
	return maps.Clone(v.filters)
}

// PageSize returns the page size.
func (v *TableView) PageSize() int {
	return v.pageSize
}

// Pager exposes the pagination state.
func (v *TableView) Pager() *Pager {
	return &v.pager
}

// SetFilters replaces the filter set. A cursor is only valid for the
// statement that produced it, so any structural change resets the pager.
// It reports whether the filters changed. The view keeps its own copy, so
// later edits to filters have no effect until SetFilters is called again.
func (v *TableView) SetFilters(filters core.Values) bool {
	filters = maps.Clone(filters)
	key := filterKey(filters)
	v.filters = filters
	if reflect.DeepEqual(key, v.key) {
		return false
	}
	v.key = key
	v.pager.Reset()
	return true
}

// SetPageSize changes the page size and returns to the first page.
func (v *TableView) SetPageSize(n int) {
	n = ClampPageSize(n)
	if n == v.pageSize {
		return
	}
	v.pageSize = n
	v.pager.Reset()
}

// Fetch executes the select for the current cursor.
func (v *TableView) Fetch(ctx context.Context) (*core.ResultPage, error) {
	return v.fetch(ctx, v.pager.Current())
}

// NextPage advances to the next page. The pager only moves once the page has
// been fetched successfully.
func (v *TableView) NextPage(ctx context.Context) (*core.ResultPage, error) {
	if !v.pager.HasNext() {
		return nil, core.ErrNoNextPage
	}
	page, err := v.execute(ctx, v.pager.peekNext())
	if err != nil {
		return nil, err
	}
	if err := v.pager.Next(); err != nil {
		return nil, err
	}
	v.pager.Observe(page.NextPageState)
	return page, nil
}

// PreviousPage goes back one page.
func (v *TableView) PreviousPage(ctx context.Context) (*core.ResultPage, error) {
	if !v.pager.HasPrevious() {
		return nil, core.ErrNoPreviousPage
	}
	page, err := v.execute(ctx, v.pager.peekPrevious())
	if err != nil {
		return nil, err
	}
	if err := v.pager.Previous(); err != nil {
		return nil, err
	}
	v.pager.Observe(page.NextPageState)
	return page, nil
}

func (v *TableView) fetch(ctx context.Context, cursor []byte) (*core.ResultPage, error) {
	page, err := v.execute(ctx, cursor)
	if err != nil {
		return nil, err
	}
	v.pager.Observe(page.NextPageState)
	return page, nil
}

func (v *TableView) execute(ctx context.Context, cursor []byte) (*core.ResultPage, error) {
	return v.engine.Select(ctx, v.schema, v.filters, v.pageSize, cursor)
}

// filterKey is the structural identity of a filter set: the non-empty
// entries sorted by column name.
func filterKey(filters core.Values) []filterPair {
	var pairs []filterPair
	for column, value := range filters {
		if schema.IsEmptyInput(value) {
			continue
		}
		pairs = append(pairs, filterPair{column: column, value: value})
	}
	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].column < pairs[j].column
	})
	return pairs
}
