package query

import (
	"context"
	"fmt"
	"time"

	"github.com/rzpsarthak13/cqlbrowser/internal/core"
	"github.com/rzpsarthak13/cqlbrowser/internal/gologger"
	"github.com/rzpsarthak13/cqlbrowser/internal/schema"
)

var logger = gologger.Component("query")

// Engine builds statements and executes them through a Session. It keeps no
// per-view state and may be shared between views.
type Engine struct {
	session core.Session
	builder *Builder
}

// NewEngine creates an engine over session.
func NewEngine(session core.Session, registry *schema.TypeRegistry) *Engine {
	return &Engine{
		session: session,
		builder: NewBuilder(registry),
	}
}

// Builder returns the engine's statement builder.
func (e *Engine) Builder() *Builder {
	return e.builder
}

// Execute runs stmt. Session failures are returned as *core.ExecutionError
// carrying the statement text; nothing is retried.
func (e *Engine) Execute(ctx context.Context, stmt core.Statement) (*core.ResultPage, error) {
	start := time.Now()
	page, err := e.session.Execute(ctx, stmt)
	if err != nil {
		logger.Debug().Err(err).Str("statement", stmt.Text).Msg("execution failed")
		return nil, &core.ExecutionError{Statement: stmt.Text, Err: err}
	}
	if page == nil {
		page = &core.ResultPage{}
	}
	logger.Debug().
		Str("statement", stmt.Text).
		Int("rows", len(page.Rows)).
		Bool("more", page.HasMore()).
		Dur("took", time.Since(start)).
		Msg("executed")
	return page, nil
}

// Select builds and executes one page of a filtered read.
func (e *Engine) Select(ctx context.Context, ts *core.TableSchema, filters core.Values, pageSize int, cursor []byte) (*core.ResultPage, error) {
	stmt, err := e.builder.BuildSelect(ts, filters, pageSize, cursor)
	if err != nil {
		return nil, err
	}
	return e.Execute(ctx, stmt)
}

// Insert builds and executes an INSERT, returning the executed statement.
func (e *Engine) Insert(ctx context.Context, ts *core.TableSchema, values core.Values) (core.Statement, error) {
	return e.write(ctx, func() (core.Statement, error) { return e.builder.BuildInsert(ts, values) })
}

// Update builds and executes an UPDATE, returning the executed statement.
func (e *Engine) Update(ctx context.Context, ts *core.TableSchema, values core.Values) (core.Statement, error) {
	return e.write(ctx, func() (core.Statement, error) { return e.builder.BuildUpdate(ts, values) })
}

// Delete builds and executes a single-row DELETE, returning the executed statement.
func (e *Engine) Delete(ctx context.Context, ts *core.TableSchema, row core.Values) (core.Statement, error) {
	return e.write(ctx, func() (core.Statement, error) { return e.builder.BuildDelete(ts, row) })
}

func (e *Engine) write(ctx context.Context, build func() (core.Statement, error)) (core.Statement, error) {
	stmt, err := build()
	if err != nil {
		return core.Statement{}, err
	}
	if _, err := e.Execute(ctx, stmt); err != nil {
		return core.Statement{}, err
	}
	return stmt, nil
}

// Explore applies resultCap to a free-form statement and executes it as is.
func (e *Engine) Explore(ctx context.Context, raw string, resultCap *int) (Exploratory, *core.ResultPage, error) {
	ex, err := BuildExploratory(raw, resultCap)
	if err != nil {
		return ex, nil, fmt.Errorf("failed to apply result cap: %w", err)
	}
	if ex.Overridden {
		logger.Info().Int("prior_limit", ex.PriorLimit).Msg("statement limit replaced by result cap")
	}
	page, err := e.Execute(ctx, core.Statement{Text: ex.Statement})
	if err != nil {
		return ex, nil, err
	}
	return ex, page, nil
}
