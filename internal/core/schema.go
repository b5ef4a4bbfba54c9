package core

import (
	"fmt"
	"sort"
	"strings"
)

// TypeExpression is a parsed CQL type such as "int" or "map<text, list<int>>".
// A non-generic type has no parameters.
type TypeExpression struct {
	// Base is the type name without parameters (e.g., "map", "frozen", "int").
	Base string

	// Params holds the type parameters in declaration order.
	Params []TypeExpression
}

// IsGeneric reports whether the expression carries type parameters.
func (t TypeExpression) IsGeneric() bool {
	return len(t.Params) > 0
}

// Param returns the i-th type parameter, or the zero expression if absent.
func (t TypeExpression) Param(i int) TypeExpression {
	if i < 0 || i >= len(t.Params) {
		return TypeExpression{}
	}
	return t.Params[i]
}

// String renders the canonical form, e.g. "map<text, list<int>>".
func (t TypeExpression) String() string {
	if len(t.Params) == 0 {
		return t.Base
	}
	parts := make([]string, len(t.Params))
	for i, p := range t.Params {
		parts[i] = p.String()
	}
	return t.Base + "<" + strings.Join(parts, ", ") + ">"
}

// ColumnRole is the role a column plays in its table's primary key.
type ColumnRole string

const (
	// RolePartitionKey marks a partition key column.
	RolePartitionKey ColumnRole = "partition_key"

	// RoleClusteringKey marks a clustering key column.
	RoleClusteringKey ColumnRole = "clustering"

	// RoleRegular marks a non-key column.
	RoleRegular ColumnRole = "regular"

	// RoleStatic marks a static column (shared by every row of a partition).
	RoleStatic ColumnRole = "static"
)

// ParseColumnRole maps a system_schema "kind" value to a ColumnRole.
// Unrecognized kinds are treated as regular columns.
func ParseColumnRole(kind string) ColumnRole {
	switch ColumnRole(strings.ToLower(strings.TrimSpace(kind))) {
	case RolePartitionKey:
		return RolePartitionKey
	case RoleClusteringKey:
		return RoleClusteringKey
	case RoleStatic:
		return RoleStatic
	default:
		return RoleRegular
	}
}

// ClusteringOrder is the on-disk sort direction of a clustering column.
type ClusteringOrder string

const (
	OrderAsc  ClusteringOrder = "ASC"
	OrderDesc ClusteringOrder = "DESC"
)

// ParseClusteringOrder maps "asc", "desc" and "none" (any case) to an order.
// Anything other than desc is ascending.
func ParseClusteringOrder(s string) ClusteringOrder {
	if strings.EqualFold(strings.TrimSpace(s), "desc") {
		return OrderDesc
	}
	return OrderAsc
}

// Column describes a single column of a table.
type Column struct {
	// Name is the column name as stored in the catalog.
	Name string

	// Type is the parsed column type.
	Type TypeExpression

	// RawType is the type string exactly as the catalog reported it.
	RawType string

	// Role is the column's primary-key role.
	Role ColumnRole

	// Position orders key columns within their role. Meaningless for
	// regular and static columns.
	Position int

	// Order is the clustering order. Only meaningful for clustering keys.
	Order ClusteringOrder
}

// IsPartitionKey reports whether the column is part of the partition key.
func (c Column) IsPartitionKey() bool {
	return c.Role == RolePartitionKey
}

// IsClusteringKey reports whether the column is a clustering key.
func (c Column) IsClusteringKey() bool {
	return c.Role == RoleClusteringKey
}

// IsPrimaryKey reports whether the column is part of the primary key.
func (c Column) IsPrimaryKey() bool {
	return c.IsPartitionKey() || c.IsClusteringKey()
}

// KeyLabel is a short human-readable description of the key role,
// empty for non-key columns.
func (c Column) KeyLabel() string {
	switch c.Role {
	case RolePartitionKey:
		return "Partition Key"
	case RoleClusteringKey:
		return fmt.Sprintf("Clustering Key (%s)", c.Order)
	case RoleStatic:
		return "Static"
	default:
		return ""
	}
}

// TableSchema is a snapshot of one table's structure.
// A schema with no partition key means the table was not found.
type TableSchema struct {
	// Keyspace is the keyspace that owns the table.
	Keyspace string

	// Table is the table name.
	Table string

	// Columns contains every column of the table.
	Columns []Column
}

// Found reports whether the schema describes an existing table.
func (s *TableSchema) Found() bool {
	return s != nil && len(s.PartitionKeys()) > 0
}

// QualifiedName returns "keyspace.table".
func (s *TableSchema) QualifiedName() string {
	return s.Keyspace + "." + s.Table
}

// Column returns the named column, or nil if the table has no such column.
func (s *TableSchema) Column(name string) *Column {
	for i := range s.Columns {
		if s.Columns[i].Name == name {
			return &s.Columns[i]
		}
	}
	return nil
}

// PartitionKeys returns the partition key columns sorted by position.
func (s *TableSchema) PartitionKeys() []Column {
	return s.keysByRole(RolePartitionKey)
}

// ClusteringKeys returns the clustering key columns sorted by position.
func (s *TableSchema) ClusteringKeys() []Column {
	return s.keysByRole(RoleClusteringKey)
}

// PrimaryKeyColumns returns partition keys followed by clustering keys.
// This is the mandatory left-to-right order for single-row predicates.
func (s *TableSchema) PrimaryKeyColumns() []Column {
	keys := s.PartitionKeys()
	return append(keys, s.ClusteringKeys()...)
}

// RegularColumns returns the non-key columns (regular and static) in catalog order.
func (s *TableSchema) RegularColumns() []Column {
	cols := make([]Column, 0, len(s.Columns))
	for _, c := range s.Columns {
		if !c.IsPrimaryKey() {
			cols = append(cols, c)
		}
	}
	return cols
}

// AllColumnsSorted returns primary key columns first, then the rest.
func (s *TableSchema) AllColumnsSorted() []Column {
	return append(s.PrimaryKeyColumns(), s.RegularColumns()...)
}

// Validate checks the structural invariants of a found table: at least one
// partition key, and key positions within each role forming 0..n-1.
func (s *TableSchema) Validate() error {
	partition := s.PartitionKeys()
	if len(partition) == 0 {
		return fmt.Errorf("table %s has no partition key", s.QualifiedName())
	}
	for role, keys := range map[ColumnRole][]Column{
		RolePartitionKey:  partition,
		RoleClusteringKey: s.ClusteringKeys(),
	} {
		for i, c := range keys {
			if c.Position != i {
				return fmt.Errorf("table %s: %s column %q has position %d, expected %d",
					s.QualifiedName(), role, c.Name, c.Position, i)
			}
		}
	}
	return nil
}

func (s *TableSchema) keysByRole(role ColumnRole) []Column {
	keys := make([]Column, 0, 2)
	for _, c := range s.Columns {
		if c.Role == role {
			keys = append(keys, c)
		}
	}
	sort.SliceStable(keys, func(i, j int) bool {
		return keys[i].Position < keys[j].Position
	})
	return keys
}
