package core_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rzpsarthak13/cqlbrowser/internal/core"
)

func col(name, typ string, role core.ColumnRole, pos int, order core.ClusteringOrder) core.Column {
	return core.Column{
		Name:     name,
		Type:     core.TypeExpression{Base: typ},
		RawType:  typ,
		Role:     role,
		Position: pos,
		Order:    order,
	}
}

func names(cols []core.Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Name
	}
	return out
}

func TestTableSchema_PrimaryKeyOrder(t *testing.T) {
	schema := &core.TableSchema{
		Keyspace: "shop",
		Table:    "orders",
		Columns: []core.Column{
			col("note", "text", core.RoleRegular, -1, core.OrderAsc),
			col("c", "timestamp", core.RoleClusteringKey, 0, core.OrderDesc),
			col("b", "int", core.RolePartitionKey, 1, core.OrderAsc),
			col("owner", "text", core.RoleStatic, -1, core.OrderAsc),
			col("a", "text", core.RolePartitionKey, 0, core.OrderAsc),
		},
	}

	require.True(t, schema.Found())
	require.NoError(t, schema.Validate())

	assert.Equal(t, []string{"a", "b"}, names(schema.PartitionKeys()))
	assert.Equal(t, []string{"c"}, names(schema.ClusteringKeys()))
	assert.Equal(t, []string{"a", "b", "c"}, names(schema.PrimaryKeyColumns()))
	assert.Equal(t, []string{"note", "owner"}, names(schema.RegularColumns()))
	assert.Equal(t, []string{"a", "b", "c", "note", "owner"}, names(schema.AllColumnsSorted()))
	assert.Equal(t, "shop.orders", schema.QualifiedName())

	c := schema.Column("c")
	require.NotNil(t, c)
	assert.Equal(t, core.OrderDesc, c.Order)
	assert.Equal(t, "Clustering Key (DESC)", c.KeyLabel())
	assert.Nil(t, schema.Column("missing"))
}

func TestTableSchema_NotFound(t *testing.T) {
	empty := &core.TableSchema{Keyspace: "ks", Table: "nope"}
	assert.False(t, empty.Found())
	assert.Error(t, empty.Validate())

	var nilSchema *core.TableSchema
	assert.False(t, nilSchema.Found())
}

func TestTableSchema_ValidateGap(t *testing.T) {
	schema := &core.TableSchema{
		Keyspace: "ks",
		Table:    "t",
		Columns: []core.Column{
			col("id", "int", core.RolePartitionKey, 0, core.OrderAsc),
			col("c0", "int", core.RoleClusteringKey, 0, core.OrderAsc),
			col("c2", "int", core.RoleClusteringKey, 2, core.OrderAsc),
		},
	}
	err := schema.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "c2")
}

func TestParseRoleAndOrder(t *testing.T) {
	for kind, want := range map[string]core.ColumnRole{
		"partition_key": core.RolePartitionKey,
		"clustering":    core.RoleClusteringKey,
		"static":        core.RoleStatic,
		"regular":       core.RoleRegular,
		"something":     core.RoleRegular,
	} {
		assert.Equal(t, want, core.ParseColumnRole(kind), kind)
	}

	assert.Equal(t, core.OrderDesc, core.ParseClusteringOrder("desc"))
	assert.Equal(t, core.OrderAsc, core.ParseClusteringOrder("ASC"))
	assert.Equal(t, core.OrderAsc, core.ParseClusteringOrder("none"))
}

func TestTypeExpression_String(t *testing.T) {
	expr := core.TypeExpression{
		Base: "map",
		Params: []core.TypeExpression{
			{Base: "text"},
			{Base: "list", Params: []core.TypeExpression{{Base: "int"}}},
		},
	}
	assert.Equal(t, "map<text, list<int>>", expr.String())
	assert.True(t, expr.IsGeneric())
	assert.Equal(t, "list", expr.Param(1).Base)
	assert.Equal(t, core.TypeExpression{}, expr.Param(5))
}

func TestErrors_Is(t *testing.T) {
	cause := errors.New("boom")

	t.Run("conversion", func(t *testing.T) {
		err := fmt.Errorf("insert: %w", &core.ConversionError{Column: "age", Type: "int", Value: "abc", Err: cause})
		assert.ErrorIs(t, err, core.ErrConversion)
		assert.ErrorIs(t, err, cause)
		var convErr *core.ConversionError
		require.ErrorAs(t, err, &convErr)
		assert.Equal(t, "age", convErr.Column)
		assert.Contains(t, err.Error(), `"abc"`)
	})

	t.Run("missing key", func(t *testing.T) {
		err := &core.MissingPrimaryKeyError{Keyspace: "ks", Table: "t", Column: "id", Operation: "DELETE"}
		assert.ErrorIs(t, err, core.ErrMissingPrimaryKey)
		assert.Contains(t, err.Error(), `"id"`)
	})

	t.Run("execution", func(t *testing.T) {
		err := &core.ExecutionError{Statement: "SELECT 1", Err: cause}
		assert.ErrorIs(t, err, core.ErrExecution)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("parse", func(t *testing.T) {
		err := &core.ParseError{Expr: "list<int", Reason: "unbalanced brackets"}
		assert.ErrorIs(t, err, core.ErrParse)
		assert.NotErrorIs(t, err, core.ErrConversion)
	})
}
