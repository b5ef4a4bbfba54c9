package core

import (
	"errors"
	"fmt"
)

var (
	// ErrParse is returned when a type expression is structurally malformed.
	ErrParse = errors.New("malformed type expression")

	// ErrConversion is returned when a value cannot be coerced to its column type.
	ErrConversion = errors.New("value conversion failed")

	// ErrMissingPrimaryKey is returned when a write or delete lacks a key column.
	ErrMissingPrimaryKey = errors.New("missing primary key value")

	// ErrUnknownColumn is returned when caller input names a column the table does not have.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrExecution wraps any failure surfaced by the session.
	ErrExecution = errors.New("statement execution failed")

	// ErrKeyNotFound is returned by KV stores when a key does not exist.
	ErrKeyNotFound = errors.New("key not found")

	// ErrNoPreviousPage is returned when paging back past the first page.
	ErrNoPreviousPage = errors.New("no previous page")

	// ErrNoNextPage is returned when paging forward with no observed cursor.
	ErrNoNextPage = errors.New("no next page")
)

// ParseError describes a malformed type expression.
type ParseError struct {
	Expr   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse type %q: %s", e.Expr, e.Reason)
}

func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// ConversionError names the column, type and value that failed to convert.
type ConversionError struct {
	Column string
	Type   string
	Value  interface{}
	Err    error
}

func (e *ConversionError) Error() string {
	col := e.Column
	if col == "" {
		col = "<value>"
	}
	if e.Err != nil {
		return fmt.Sprintf("convert %s (%s) from %#v: %v", col, e.Type, e.Value, e.Err)
	}
	return fmt.Sprintf("convert %s (%s) from %#v", col, e.Type, e.Value)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

func (e *ConversionError) Is(target error) bool {
	return target == ErrConversion
}

// MissingPrimaryKeyError names the key column absent from an insert, update or delete.
type MissingPrimaryKeyError struct {
	Keyspace  string
	Table     string
	Column    string
	Operation string
}

func (e *MissingPrimaryKeyError) Error() string {
	return fmt.Sprintf("%s on %s.%s: missing value for primary key column %q",
		e.Operation, e.Keyspace, e.Table, e.Column)
}

func (e *MissingPrimaryKeyError) Is(target error) bool {
	return target == ErrMissingPrimaryKey
}

// ExecutionError carries the statement text that the session rejected.
type ExecutionError struct {
	Statement string
	Err       error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("execute %q: %v", e.Statement, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

func (e *ExecutionError) Is(target error) bool {
	return target == ErrExecution
}
