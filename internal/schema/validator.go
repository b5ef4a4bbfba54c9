package schema

import (
	"fmt"

	"github.com/rzpsarthak13/cqlbrowser/internal/core"
)

// SchemaValidator validates caller input against a table schema.
type SchemaValidator struct {
	schema   *core.TableSchema
	registry *TypeRegistry
}

// NewSchemaValidator creates a new schema validator.
func NewSchemaValidator(schema *core.TableSchema, registry *TypeRegistry) *SchemaValidator {
	return &SchemaValidator{
		schema:   schema,
		registry: registry,
	}
}

// ValidateColumns rejects any key in values that is not a column of the table.
func (sv *SchemaValidator) ValidateColumns(values core.Values) error {
	if sv.schema == nil {
		return fmt.Errorf("schema cannot be nil")
	}
	for name := range values {
		if sv.schema.Column(name) == nil {
			return fmt.Errorf("%w: %q is not a column of %s", core.ErrUnknownColumn, name, sv.schema.QualifiedName())
		}
	}
	return nil
}

// ValidatePrimaryKey checks that every primary key column has a value.
// When allowGenerated is set, uuid and timeuuid keys may be left empty.
func (sv *SchemaValidator) ValidatePrimaryKey(values core.Values, operation string, allowGenerated bool) error {
	for _, col := range sv.schema.PrimaryKeyColumns() {
		if !IsEmptyInput(values[col.Name]) {
			continue
		}
		if allowGenerated && sv.registry.AutoGenerates(col.Type) {
			continue
		}
		return &core.MissingPrimaryKeyError{
			Keyspace:  sv.schema.Keyspace,
			Table:     sv.schema.Table,
			Column:    col.Name,
			Operation: operation,
		}
	}
	return nil
}

// ValidateWritable rejects values for read-only columns such as counters.
func (sv *SchemaValidator) ValidateWritable(values core.Values) error {
	for name, value := range values {
		col := sv.schema.Column(name)
		if col == nil || IsEmptyInput(value) {
			continue
		}
		if sv.registry.IsReadOnly(col.Type) {
			return &core.ConversionError{
				Column: col.Name,
				Type:   col.Type.String(),
				Value:  value,
				Err:    fmt.Errorf("%s columns are read-only", col.Type),
			}
		}
	}
	return nil
}

// ValidateRecord checks that every present value converts to its column type.
func (sv *SchemaValidator) ValidateRecord(values core.Values) error {
	if err := sv.ValidateColumns(values); err != nil {
		return err
	}
	for _, col := range sv.schema.AllColumnsSorted() {
		value, ok := values[col.Name]
		if !ok {
			continue
		}
		if _, _, err := sv.registry.ConvertColumn(col, value); err != nil {
			return err
		}
	}
	return nil
}
