package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rzpsarthak13/cqlbrowser/internal/core"
)

func counterTable() *core.TableSchema {
	return &core.TableSchema{
		Keyspace: "stats",
		Table:    "page_views",
		Columns: []core.Column{
			{Name: "page", Type: MustParseTypeExpression("text"), Role: core.RolePartitionKey},
			{Name: "day", Type: MustParseTypeExpression("date"), Role: core.RoleClusteringKey},
			{Name: "views", Type: MustParseTypeExpression("counter"), Role: core.RoleRegular},
			{Name: "visitor", Type: MustParseTypeExpression("uuid"), Role: core.RoleRegular},
		},
	}
}

func TestSchemaValidator(t *testing.T) {
	sv := NewSchemaValidator(counterTable(), NewTypeRegistry())

	t.Run("unknown column", func(t *testing.T) {
		err := sv.ValidateColumns(core.Values{"page": "home", "nope": 1})
		assert.ErrorIs(t, err, core.ErrUnknownColumn)
		assert.Contains(t, err.Error(), "nope")
	})

	t.Run("missing clustering key", func(t *testing.T) {
		err := sv.ValidatePrimaryKey(core.Values{"page": "home", "day": ""}, "DELETE", false)
		require.Error(t, err)
		assert.ErrorIs(t, err, core.ErrMissingPrimaryKey)

		var keyErr *core.MissingPrimaryKeyError
		require.ErrorAs(t, err, &keyErr)
		assert.Equal(t, "day", keyErr.Column)
		assert.Equal(t, "DELETE", keyErr.Operation)
	})

	t.Run("complete key", func(t *testing.T) {
		assert.NoError(t, sv.ValidatePrimaryKey(core.Values{"page": "home", "day": "2024-01-01"}, "DELETE", false))
	})

	t.Run("counter is read-only", func(t *testing.T) {
		err := sv.ValidateWritable(core.Values{"views": "3"})
		assert.ErrorIs(t, err, core.ErrConversion)
		assert.NoError(t, sv.ValidateWritable(core.Values{"views": ""}))
	})

	t.Run("record", func(t *testing.T) {
		assert.NoError(t, sv.ValidateRecord(core.Values{"page": "home", "visitor": ""}))
		assert.ErrorIs(t, sv.ValidateRecord(core.Values{"day": "not a date"}), core.ErrConversion)
	})
}

func TestSchemaValidator_GeneratedKeys(t *testing.T) {
	table := &core.TableSchema{
		Keyspace: "app",
		Table:    "events",
		Columns: []core.Column{
			{Name: "id", Type: MustParseTypeExpression("timeuuid"), Role: core.RolePartitionKey},
			{Name: "body", Type: MustParseTypeExpression("text"), Role: core.RoleRegular},
		},
	}
	sv := NewSchemaValidator(table, NewTypeRegistry())

	assert.NoError(t, sv.ValidatePrimaryKey(core.Values{"body": "x"}, "INSERT", true))
	assert.ErrorIs(t, sv.ValidatePrimaryKey(core.Values{"body": "x"}, "DELETE", false), core.ErrMissingPrimaryKey)
}
