package schema

import (
	"strings"

	"github.com/rzpsarthak13/cqlbrowser/internal/core"
)

// ParseTypeExpression parses a CQL type string such as "frozen<map<text, list<int>>>"
// into a TypeExpression tree. Unknown base names are accepted as-is; only
// structurally malformed input (unbalanced brackets, trailing text, empty
// parameters) is rejected with an error wrapping core.ErrParse.
func ParseTypeExpression(expr string) (core.TypeExpression, error) {
	trimmed := strings.TrimSpace(expr)
	if trimmed == "" {
		return core.TypeExpression{}, &core.ParseError{Expr: expr, Reason: "empty type expression"}
	}

	open := indexUnquoted(trimmed, '<')
	if open < 0 {
		if i := strings.IndexAny(stripQuoted(trimmed), ">,"); i >= 0 {
			return core.TypeExpression{}, &core.ParseError{Expr: expr, Reason: "unexpected '" + string(stripQuoted(trimmed)[i]) + "'"}
		}
		return core.TypeExpression{Base: trimmed}, nil
	}

	base := strings.TrimSpace(trimmed[:open])
	if base == "" {
		return core.TypeExpression{}, &core.ParseError{Expr: expr, Reason: "missing base type before '<'"}
	}

	closing := matchingClose(trimmed, open)
	if closing < 0 {
		return core.TypeExpression{}, &core.ParseError{Expr: expr, Reason: "unbalanced angle brackets"}
	}
	if rest := strings.TrimSpace(trimmed[closing+1:]); rest != "" {
		return core.TypeExpression{}, &core.ParseError{Expr: expr, Reason: "unexpected trailing text " + rest}
	}

	segments := splitTopLevel(trimmed[open+1 : closing])
	params := make([]core.TypeExpression, 0, len(segments))
	for _, seg := range segments {
		if strings.TrimSpace(seg) == "" {
			return core.TypeExpression{}, &core.ParseError{Expr: expr, Reason: "empty type parameter"}
		}
		p, err := ParseTypeExpression(seg)
		if err != nil {
			return core.TypeExpression{}, err
		}
		params = append(params, p)
	}

	return core.TypeExpression{Base: base, Params: params}, nil
}

// MustParseTypeExpression is like ParseTypeExpression but panics on error.
// Intended for constants and tests.
func MustParseTypeExpression(expr string) core.TypeExpression {
	t, err := ParseTypeExpression(expr)
	if err != nil {
		panic(err)
	}
	return t
}

// matchingClose returns the index of the '>' that closes the '<' at open,
// or -1 if the brackets never balance.
func matchingClose(s string, open int) int {
	depth := 0
	inQuote := false
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '"':
			inQuote = !inQuote
		case '<':
			if !inQuote {
				depth++
			}
		case '>':
			if inQuote {
				continue
			}
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitTopLevel splits on commas at bracket depth zero.
func splitTopLevel(s string) []string {
	var parts []string
	depth := 0
	inQuote := false
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			inQuote = !inQuote
		case '<':
			if !inQuote {
				depth++
			}
		case '>':
			if !inQuote {
				depth--
			}
		case ',':
			if !inQuote && depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

func indexUnquoted(s string, c byte) int {
	inQuote := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			inQuote = !inQuote
		case c:
			if !inQuote {
				return i
			}
		}
	}
	return -1
}

// stripQuoted blanks out double-quoted regions so structural characters
// inside quoted identifiers are ignored.
func stripQuoted(s string) string {
	b := []byte(s)
	inQuote := false
	for i := range b {
		if b[i] == '"' {
			inQuote = !inQuote
			continue
		}
		if inQuote {
			b[i] = ' '
		}
	}
	return string(b)
}
