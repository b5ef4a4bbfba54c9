package query

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Exploratory is a free-form statement after the display cap was applied.
type Exploratory struct {
	// Statement is the text to execute, unparameterized.
	Statement string

	// Capped reports whether a LIMIT clause was written.
	Capped bool

	// Overridden reports that an existing LIMIT was replaced by the cap.
	Overridden bool

	// PriorLimit is the replaced limit. Zero if it was not a literal.
	PriorLimit int
}

// BuildExploratory applies resultCap to a free-form statement. Only SELECT
// statements are rewritten: an existing top-level LIMIT is replaced,
// otherwise LIMIT is inserted before ALLOW FILTERING or appended. PER
// PARTITION LIMIT is left alone. The statement is not otherwise validated.
func BuildExploratory(raw string, resultCap *int) (Exploratory, error) {
	out := Exploratory{Statement: raw}
	if resultCap == nil {
		return out, nil
	}
	if *resultCap <= 0 {
		return out, fmt.Errorf("result cap must be positive, got %d", *resultCap)
	}
	limit := strconv.Itoa(*resultCap)

	body := strings.TrimRightFunc(raw, unicode.IsSpace)
	terminator := ""
	if strings.HasSuffix(body, ";") {
		body = strings.TrimRightFunc(strings.TrimSuffix(body, ";"), unicode.IsSpace)
		terminator = ";"
	}

	words := scanWords(body)
	if len(words) == 0 || !strings.EqualFold(words[0].text, "select") {
		return out, nil
	}

	for i := len(words) - 2; i >= 0; i-- {
		if !strings.EqualFold(words[i].text, "limit") {
			continue
		}
		if i > 0 && strings.EqualFold(words[i-1].text, "partition") {
			continue
		}
		value := words[i+1]
		prior, _ := strconv.Atoi(value.text)
		out.Statement = body[:value.start] + limit + body[value.end:] + terminator
		out.Capped = true
		out.Overridden = true
		out.PriorLimit = prior
		return out, nil
	}

	for i := len(words) - 2; i >= 0; i-- {
		if strings.EqualFold(words[i].text, "allow") && strings.EqualFold(words[i+1].text, "filtering") {
			at := words[i].start
			out.Statement = body[:at] + "LIMIT " + limit + " " + body[at:] + terminator
			out.Capped = true
			return out, nil
		}
	}

	out.Statement = body + " LIMIT " + limit + terminator
	out.Capped = true
	return out, nil
}

type word struct {
	text       string
	start, end int
}

// scanWords returns the bare words of a CQL statement, skipping string
// literals, quoted identifiers and comments.
func scanWords(s string) []word {
	var words []word
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == '\'' || c == '"':
			i = skipQuoted(s, i, c)
		case strings.HasPrefix(s[i:], "$$"):
			if end := strings.Index(s[i+2:], "$$"); end >= 0 {
				i += end + 4
			} else {
				i = len(s)
			}
		case strings.HasPrefix(s[i:], "--") || strings.HasPrefix(s[i:], "//"):
			if end := strings.IndexByte(s[i:], '\n'); end >= 0 {
				i += end + 1
			} else {
				i = len(s)
			}
		case strings.HasPrefix(s[i:], "/*"):
			if end := strings.Index(s[i+2:], "*/"); end >= 0 {
				i += end + 4
			} else {
				i = len(s)
			}
		case isWordByte(c):
			start := i
			for i < len(s) && isWordByte(s[i]) {
				i++
			}
			words = append(words, word{text: s[start:i], start: start, end: i})
		default:
			i++
		}
	}
	return words
}

// skipQuoted returns the index just past the quoted run starting at i.
// A doubled quote character is an escaped quote.
func skipQuoted(s string, i int, quote byte) int {
	for j := i + 1; j < len(s); j++ {
		if s[j] != quote {
			continue
		}
		if j+1 < len(s) && s[j+1] == quote {
			j++
			continue
		}
		return j + 1
	}
	return len(s)
}

func isWordByte(c byte) bool {
	return c == '_' || c == '?' || c == ':' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
