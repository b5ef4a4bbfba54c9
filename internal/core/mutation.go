package core

import (
	"context"
	"time"
)

// OperationType represents the type of write operation.
type OperationType string

const (
	// OperationInsert represents an INSERT statement.
	OperationInsert OperationType = "INSERT"

	// OperationUpdate represents an UPDATE statement.
	OperationUpdate OperationType = "UPDATE"

	// OperationDelete represents a DELETE statement.
	OperationDelete OperationType = "DELETE"
)

// Mutation records a write that was successfully executed against a table.
type Mutation struct {
	// Keyspace and Table identify the target table.
	Keyspace string `json:"keyspace"`
	Table    string `json:"table"`

	// Operation is the kind of write.
	Operation OperationType `json:"operation"`

	// Statement is the CQL text that was executed.
	Statement string `json:"statement"`

	// Key holds the display form of each primary key value.
	Key map[string]string `json:"key"`

	// Values holds the display form of each written non-key column.
	// Empty for deletes.
	Values map[string]string `json:"values,omitempty"`

	// Timestamp is when the statement completed.
	Timestamp time.Time `json:"timestamp"`
}

// QualifiedTable returns "keyspace.table".
func (m *Mutation) QualifiedTable() string {
	return m.Keyspace + "." + m.Table
}

// MutationJournal is an append-only log of applied writes.
type MutationJournal interface {
	// Append records a mutation.
	Append(ctx context.Context, m *Mutation) error

	// Drain removes and returns up to limit mutations in append order.
	// Returns an empty slice if none are available.
	Drain(ctx context.Context, limit int) ([]*Mutation, error)

	// Size returns the approximate number of undrained mutations.
	Size() int

	// Close releases resources held by the journal.
	Close() error
}
