package query

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/rzpsarthak13/cqlbrowser/internal/core"
	"github.com/rzpsarthak13/cqlbrowser/internal/schema"
)

// Builder turns table schemas and caller values into parameterized CQL.
// It holds no mutable state and is safe for concurrent use.
type Builder struct {
	registry *schema.TypeRegistry
}

// NewBuilder creates a new statement builder.
func NewBuilder(registry *schema.TypeRegistry) *Builder {
	if registry == nil {
		registry = schema.NewTypeRegistry()
	}
	return &Builder{registry: registry}
}

// Registry returns the type registry used for conversions.
func (b *Builder) Registry() *schema.TypeRegistry {
	return b.registry
}

// BuildSelect builds a paged read of the table. Each non-empty filter becomes
// an equality predicate; any predicate makes the statement ALLOW FILTERING
// since filters need not cover the partition key.
func (b *Builder) BuildSelect(ts *core.TableSchema, filters core.Values, pageSize int, cursor []byte) (core.Statement, error) {
	if err := checkSchema(ts); err != nil {
		return core.Statement{}, err
	}
	if err := schema.NewSchemaValidator(ts, b.registry).ValidateColumns(filters); err != nil {
		return core.Statement{}, err
	}

	var (
		predicates []string
		args       []interface{}
		columns    []string
	)
	for _, col := range orderedColumns(ts, filters) {
		native, present, err := b.convertFilter(col, filters[col.Name])
		if err != nil {
			return core.Statement{}, err
		}
		if !present {
			continue
		}
		predicates = append(predicates, QuoteIdentifier(col.Name)+" = ?")
		args = append(args, native)
		columns = append(columns, col.Name)
	}

	var sb strings.Builder
	sb.WriteString("SELECT * FROM ")
	sb.WriteString(QualifiedTable(ts.Keyspace, ts.Table))
	if len(predicates) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(predicates, " AND "))
		sb.WriteString(" ALLOW FILTERING")
	}

	return core.Statement{
		Text:      sb.String(),
		Args:      args,
		Columns:   columns,
		PageSize:  pageSize,
		PageState: cursor,
	}, nil
}

// convertFilter drops empty filters before conversion so a blank uuid filter
// is not replaced by a freshly generated identifier.
func (b *Builder) convertFilter(col core.Column, value interface{}) (interface{}, bool, error) {
	if schema.IsEmptyInput(value) {
		return nil, false, nil
	}
	return b.registry.ConvertColumn(col, value)
}

// BuildInsert builds a sparse INSERT: only columns with a present value are
// written. Every primary key column must have a value, except uuid and
// timeuuid keys which are generated when left empty.
func (b *Builder) BuildInsert(ts *core.TableSchema, values core.Values) (core.Statement, error) {
	if err := checkSchema(ts); err != nil {
		return core.Statement{}, err
	}
	sv := schema.NewSchemaValidator(ts, b.registry)
	if err := sv.ValidateColumns(values); err != nil {
		return core.Statement{}, err
	}
	if err := sv.ValidatePrimaryKey(values, string(core.OperationInsert), true); err != nil {
		return core.Statement{}, err
	}
	if err := sv.ValidateWritable(values); err != nil {
		return core.Statement{}, err
	}

	columns := make([]string, 0, len(values))
	args := make([]interface{}, 0, len(values))

	for _, col := range ts.PrimaryKeyColumns() {
		native, present, err := b.registry.ConvertColumn(col, values[col.Name])
		if err != nil {
			return core.Statement{}, err
		}
		if !present {
			return core.Statement{}, missingKey(ts, col, core.OperationInsert)
		}
		columns = append(columns, col.Name)
		args = append(args, native)
	}

	for _, col := range ts.RegularColumns() {
		value, ok := values[col.Name]
		if !ok {
			continue
		}
		native, present, err := b.registry.ConvertColumn(col, value)
		if err != nil {
			return core.Statement{}, err
		}
		if !present {
			continue
		}
		columns = append(columns, col.Name)
		args = append(args, native)
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		QualifiedTable(ts.Keyspace, ts.Table),
		strings.Join(lo.Map(columns, func(c string, _ int) string { return QuoteIdentifier(c) }), ", "),
		strings.Join(lo.Times(len(columns), func(int) string { return "?" }), ", "),
	)

	return core.Statement{Text: query, Args: args, Columns: columns}, nil
}

// BuildUpdate builds an UPDATE that sets every present non-key value of
// values on the row identified by its primary key.
func (b *Builder) BuildUpdate(ts *core.TableSchema, values core.Values) (core.Statement, error) {
	if err := checkSchema(ts); err != nil {
		return core.Statement{}, err
	}
	sv := schema.NewSchemaValidator(ts, b.registry)
	if err := sv.ValidateColumns(values); err != nil {
		return core.Statement{}, err
	}
	if err := sv.ValidatePrimaryKey(values, string(core.OperationUpdate), false); err != nil {
		return core.Statement{}, err
	}
	if err := sv.ValidateWritable(values); err != nil {
		return core.Statement{}, err
	}

	setParts := make([]string, 0, len(values))
	args := make([]interface{}, 0, len(values))
	columns := make([]string, 0, len(values))

	for _, col := range ts.RegularColumns() {
		value, ok := values[col.Name]
		if !ok {
			continue
		}
		native, present, err := b.registry.ConvertColumn(col, value)
		if err != nil {
			return core.Statement{}, err
		}
		if !present {
			continue
		}
		setParts = append(setParts, QuoteIdentifier(col.Name)+" = ?")
		args = append(args, native)
		columns = append(columns, col.Name)
	}

	if len(setParts) == 0 {
		return core.Statement{}, fmt.Errorf("update on %s: no columns to update", ts.QualifiedName())
	}

	where, keyArgs, keyColumns, err := b.keyPredicate(ts, values, core.OperationUpdate)
	if err != nil {
		return core.Statement{}, err
	}

	query := fmt.Sprintf(
		"UPDATE %s SET %s WHERE %s",
		QualifiedTable(ts.Keyspace, ts.Table),
		strings.Join(setParts, ", "),
		where,
	)

	return core.Statement{
		Text:    query,
		Args:    append(args, keyArgs...),
		Columns: append(columns, keyColumns...),
	}, nil
}

// BuildDelete builds a single-row DELETE whose predicate is exactly the
// primary key, partition keys then clustering keys. Other columns in row
// are ignored.
func (b *Builder) BuildDelete(ts *core.TableSchema, row core.Values) (core.Statement, error) {
	if err := checkSchema(ts); err != nil {
		return core.Statement{}, err
	}
	sv := schema.NewSchemaValidator(ts, b.registry)
	if err := sv.ValidatePrimaryKey(row, string(core.OperationDelete), false); err != nil {
		return core.Statement{}, err
	}

	where, args, columns, err := b.keyPredicate(ts, row, core.OperationDelete)
	if err != nil {
		return core.Statement{}, err
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE %s", QualifiedTable(ts.Keyspace, ts.Table), where)
	return core.Statement{Text: query, Args: args, Columns: columns}, nil
}

// KeySummary renders the primary key of row for confirmation prompts,
// e.g. `id=42, day=2024-01-01`.
func (b *Builder) KeySummary(ts *core.TableSchema, row core.Values) string {
	parts := lo.Map(ts.PrimaryKeyColumns(), func(col core.Column, _ int) string {
		value := row[col.Name]
		if s, ok := value.(string); ok {
			return col.Name + "=" + s
		}
		return col.Name + "=" + b.registry.FormatColumn(col, value)
	})
	return strings.Join(parts, ", ")
}

func (b *Builder) keyPredicate(ts *core.TableSchema, values core.Values, op core.OperationType) (string, []interface{}, []string, error) {
	keys := ts.PrimaryKeyColumns()
	predicates := make([]string, 0, len(keys))
	args := make([]interface{}, 0, len(keys))
	columns := make([]string, 0, len(keys))

	for _, col := range keys {
		value := values[col.Name]
		if schema.IsEmptyInput(value) {
			return "", nil, nil, missingKey(ts, col, op)
		}
		native, present, err := b.registry.ConvertColumn(col, value)
		if err != nil {
			return "", nil, nil, err
		}
		if !present {
			return "", nil, nil, missingKey(ts, col, op)
		}
		predicates = append(predicates, QuoteIdentifier(col.Name)+" = ?")
		args = append(args, native)
		columns = append(columns, col.Name)
	}
	return strings.Join(predicates, " AND "), args, columns, nil
}

// orderedColumns returns the columns named in values in deterministic order:
// primary key order, then the remaining columns in catalog order.
func orderedColumns(ts *core.TableSchema, values core.Values) []core.Column {
	return lo.Filter(ts.AllColumnsSorted(), func(col core.Column, _ int) bool {
		_, ok := values[col.Name]
		return ok
	})
}

func checkSchema(ts *core.TableSchema) error {
	if ts == nil {
		return fmt.Errorf("schema cannot be nil")
	}
	if !ts.Found() {
		return fmt.Errorf("table %s not found", ts.QualifiedName())
	}
	return nil
}

func missingKey(ts *core.TableSchema, col core.Column, op core.OperationType) error {
	return &core.MissingPrimaryKeyError{
		Keyspace:  ts.Keyspace,
		Table:     ts.Table,
		Column:    col.Name,
		Operation: string(op),
	}
}
