package query

import (
	"github.com/rzpsarthak13/cqlbrowser/internal/core"
)

const (
	// DefaultPageSize is the number of rows fetched per page.
	DefaultPageSize = 50

	// MinPageSize and MaxPageSize bound configurable page sizes.
	MinPageSize = 10
	MaxPageSize = 500
)

// ClampPageSize maps n into [MinPageSize, MaxPageSize]; zero or negative
// selects DefaultPageSize.
func ClampPageSize(n int) int {
	switch {
	case n <= 0:
		return DefaultPageSize
	case n < MinPageSize:
		return MinPageSize
	case n > MaxPageSize:
		return MaxPageSize
	}
	return n
}

// Pager tracks the cursor of the page being shown and the stack of cursors
// that led to it. An empty cursor means the first page.
//
// Pager is not safe for concurrent use.
type Pager struct {
	current  []byte
	history  [][]byte
	observed []byte
}

// Current returns the cursor the current page was fetched with.
func (p *Pager) Current() []byte {
	return p.current
}

// Depth returns the number of cursors on the history stack.
func (p *Pager) Depth() int {
	return len(p.history)
}

// Observe records the next-page cursor returned by the last execution.
func (p *Pager) Observe(next []byte) {
	p.observed = cloneCursor(next)
}

// HasNext reports whether the last execution signalled another page.
func (p *Pager) HasNext() bool {
	return len(p.observed) > 0
}

// HasPrevious reports whether there is a page to go back to.
func (p *Pager) HasPrevious() bool {
	return len(p.history) > 0
}

// Next pushes the current cursor and adopts the observed one.
func (p *Pager) Next() error {
	if !p.HasNext() {
		return core.ErrNoNextPage
	}
	p.history = append(p.history, p.current)
	p.current = p.observed
	p.observed = nil
	return nil
}

// Previous pops the most recent cursor back into Current.
func (p *Pager) Previous() error {
	if !p.HasPrevious() {
		return core.ErrNoPreviousPage
	}
	last := len(p.history) - 1
	p.current = p.history[last]
	p.history = p.history[:last]
	p.observed = nil
	return nil
}

// Reset returns to the first page and clears the history.
func (p *Pager) Reset() {
	p.current = nil
	p.history = nil
	p.observed = nil
}

func (p *Pager) peekNext() []byte {
	return p.observed
}

func (p *Pager) peekPrevious() []byte {
	if len(p.history) == 0 {
		return nil
	}
	return p.history[len(p.history)-1]
}

func cloneCursor(c []byte) []byte {
	if len(c) == 0 {
		return nil
	}
	out := make([]byte, len(c))
	copy(out, c)
	return out
}
