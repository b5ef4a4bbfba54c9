package core

import (
	"context"
)

// Row maps column names to native values. Keys are a subset of the owning
// table's columns; sparse and static columns may be absent.
type Row map[string]interface{}

// Values is caller-supplied input keyed by column name, used for filters,
// inserts, updates and deletes.
type Values map[string]interface{}

// DurationLiteral is a CQL duration in its textual form, e.g. "1mo2d3h4m5s6ns".
// It is carried as an opaque string; sessions translate it for the driver.
type DurationLiteral string

// Statement is a parameterized CQL statement ready for execution.
type Statement struct {
	// Text is the CQL text with positional "?" placeholders.
	Text string

	// Args are the bound values, one per placeholder, in order.
	Args []interface{}

	// Columns names the column each Arg binds to, when the statement was
	// built from a table schema. Empty for free-form statements.
	Columns []string

	// PageSize is the page size for reads. Zero lets the session decide.
	PageSize int

	// PageState is the opaque cursor to resume from. Nil means first page.
	PageState []byte
}

// ResultPage is one page of rows returned by a Session.
type ResultPage struct {
	// Rows are the rows of this page.
	Rows []Row

	// NextPageState is the cursor for the following page, nil when exhausted.
	NextPageState []byte
}

// HasMore reports whether the session signalled another page.
func (p *ResultPage) HasMore() bool {
	return p != nil && len(p.NextPageState) > 0
}

// Session executes statements against the database.
// Implementations own retries, timeouts and cancellation.
type Session interface {
	// Execute runs the statement and returns one page of rows.
	// Writes return an empty page.
	Execute(ctx context.Context, stmt Statement) (*ResultPage, error)

	// Close releases the underlying connection pool.
	Close() error
}
