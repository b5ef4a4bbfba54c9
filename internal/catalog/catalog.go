package catalog

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/samber/lo"

	"github.com/rzpsarthak13/cqlbrowser/internal/core"
	"github.com/rzpsarthak13/cqlbrowser/internal/gologger"
	"github.com/rzpsarthak13/cqlbrowser/internal/query"
	"github.com/rzpsarthak13/cqlbrowser/internal/schema"
)

var logger = gologger.Component("catalog")

// Namespace is the keyspace holding schema metadata.
const Namespace = "system_schema"

// DefaultEstimateCap bounds EstimateRowCount when no cap is given.
const DefaultEstimateCap = 10000

// catalogPageSize is the page size for metadata reads.
const catalogPageSize = 1000

// SystemKeyspaces are hidden from ListKeyspaces. The match is exact.
var SystemKeyspaces = []string{
	"system",
	"system_auth",
	"system_schema",
	"system_distributed",
	"system_traces",
	"system_views",
	"system_virtual_schema",
}

// Catalog discovers keyspaces, tables and table schemas at runtime.
type Catalog struct {
	session core.Session
}

// NewCatalog creates a catalog that queries metadata through session.
func NewCatalog(session core.Session) *Catalog {
	return &Catalog{session: session}
}

// ListKeyspaces returns the user keyspaces in alphabetical order.
func (c *Catalog) ListKeyspaces(ctx context.Context) ([]string, error) {
	rows, err := c.queryAll(ctx, core.Statement{
		Text: "SELECT keyspace_name FROM " + Namespace + ".keyspaces",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list keyspaces: %w", err)
	}

	names := lo.FilterMap(rows, func(row core.Row, _ int) (string, bool) {
		name := rowString(row, "keyspace_name")
		return name, name != "" && !lo.Contains(SystemKeyspaces, name)
	})
	sort.Strings(names)
	return names, nil
}

// ListTables returns the tables of keyspace in alphabetical order. An unknown
// keyspace yields an empty list.
func (c *Catalog) ListTables(ctx context.Context, keyspace string) ([]string, error) {
	rows, err := c.queryAll(ctx, core.Statement{
		Text: "SELECT table_name FROM " + Namespace + ".tables WHERE keyspace_name = ?",
		Args: []interface{}{keyspace},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tables of %s: %w", keyspace, err)
	}

	names := lo.FilterMap(rows, func(row core.Row, _ int) (string, bool) {
		name := rowString(row, "table_name")
		return name, name != ""
	})
	sort.Strings(names)
	return names, nil
}

// GetTableSchema returns the columns of keyspace.table, primary key columns
// first. A table that does not exist yields a schema with no columns, which
// callers detect with Found. A column type that cannot be parsed is an error
// wrapping core.ErrParse.
func (c *Catalog) GetTableSchema(ctx context.Context, keyspace, table string) (*core.TableSchema, error) {
	rows, err := c.queryAll(ctx, core.Statement{
		Text: "SELECT column_name, type, kind, position, clustering_order FROM " + Namespace +
			".columns WHERE keyspace_name = ? AND table_name = ?",
		Args: []interface{}{keyspace, table},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get schema of %s.%s: %w", keyspace, table, err)
	}

	ts := &core.TableSchema{
		Keyspace: keyspace,
		Table:    table,
		Columns:  make([]core.Column, 0, len(rows)),
	}
	for _, row := range rows {
		col, err := columnFromRow(row)
		if err != nil {
			return nil, fmt.Errorf("table %s.%s: %w", keyspace, table, err)
		}
		ts.Columns = append(ts.Columns, col)
	}

	if len(ts.Columns) == 0 {
		logger.Debug().Str("keyspace", keyspace).Str("table", table).Msg("table not found")
		return ts, nil
	}

	sort.SliceStable(ts.Columns, func(i, j int) bool {
		return ts.Columns[i].Name < ts.Columns[j].Name
	})
	ts.Columns = ts.AllColumnsSorted()

	if err := ts.Validate(); err != nil {
		return nil, err
	}

	logger.Debug().
		Str("keyspace", keyspace).
		Str("table", table).
		Int("columns", len(ts.Columns)).
		Msg("loaded table schema")
	return ts, nil
}

// EstimateRowCount counts rows of keyspace.table up to limit. The second
// result reports whether the limit was reached, in which case the table
// holds at least that many rows.
func (c *Catalog) EstimateRowCount(ctx context.Context, keyspace, table string, limit int) (int64, bool, error) {
	if limit <= 0 {
		limit = DefaultEstimateCap
	}
	stmt := core.Statement{
		Text: "SELECT COUNT(*) FROM " + query.QualifiedTable(keyspace, table) + " LIMIT " + strconv.Itoa(limit),
	}
	rows, err := c.queryAll(ctx, stmt)
	if err != nil {
		return 0, false, fmt.Errorf("failed to count rows of %s.%s: %w", keyspace, table, err)
	}
	if len(rows) == 0 {
		return 0, false, nil
	}

	count, err := rowInt64(rows[0], "count")
	if err != nil {
		return 0, false, err
	}
	return count, count >= int64(limit), nil
}

// queryAll executes stmt and follows page state until the result is exhausted.
func (c *Catalog) queryAll(ctx context.Context, stmt core.Statement) ([]core.Row, error) {
	stmt.PageSize = catalogPageSize
	var rows []core.Row
	for {
		page, err := c.session.Execute(ctx, stmt)
		if err != nil {
			return nil, &core.ExecutionError{Statement: stmt.Text, Err: err}
		}
		if page == nil {
			return rows, nil
		}
		rows = append(rows, page.Rows...)
		if !page.HasMore() {
			return rows, nil
		}
		stmt.PageState = page.NextPageState
	}
}

func columnFromRow(row core.Row) (core.Column, error) {
	name := rowString(row, "column_name")
	raw := rowString(row, "type")

	expr, err := schema.ParseTypeExpression(raw)
	if err != nil {
		return core.Column{}, fmt.Errorf("column %q: %w", name, err)
	}

	position, err := rowInt64(row, "position")
	if err != nil {
		return core.Column{}, fmt.Errorf("column %q: %w", name, err)
	}

	role := core.ParseColumnRole(rowString(row, "kind"))
	col := core.Column{
		Name:     name,
		Type:     expr,
		RawType:  raw,
		Role:     role,
		Position: int(position),
		Order:    core.ParseClusteringOrder(rowString(row, "clustering_order")),
	}
	// Non-key columns report position -1.
	if !col.IsPrimaryKey() {
		col.Position = -1
	}
	return col, nil
}

func rowString(row core.Row, key string) string {
	switch v := row[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func rowInt64(row core.Row, key string) (int64, error) {
	switch v := row[key].(type) {
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("unexpected type %T for %s", v, key)
	}
}
