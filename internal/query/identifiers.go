package query

import (
	"regexp"
	"strings"
)

var plainIdentifier = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// reservedWords are CQL keywords that cannot appear unquoted as identifiers.
var reservedWords = map[string]bool{
	"add": true, "allow": true, "alter": true, "and": true, "apply": true,
	"asc": true, "authorize": true, "batch": true, "begin": true, "by": true,
	"columnfamily": true, "create": true, "delete": true, "desc": true, "describe": true,
	"drop": true, "entries": true, "execute": true, "from": true, "full": true,
	"grant": true, "if": true, "in": true, "index": true, "infinity": true,
	"insert": true, "into": true, "is": true, "keyspace": true, "limit": true,
	"materialized": true, "mbean": true, "mbeans": true, "modify": true, "nan": true,
	"norecursive": true, "not": true, "null": true, "of": true, "on": true,
	"or": true, "order": true, "primary": true, "rename": true, "replace": true,
	"revoke": true, "schema": true, "select": true, "set": true, "table": true,
	"to": true, "token": true, "truncate": true, "unlogged": true, "unset": true,
	"update": true, "use": true, "using": true, "view": true, "where": true,
	"with": true,
}

// QuoteIdentifier returns name as it must appear in CQL text. Names that are
// lower-case, start with a letter or underscore and are not reserved are left
// bare; everything else is double-quoted with embedded quotes doubled.
func QuoteIdentifier(name string) string {
	if plainIdentifier.MatchString(name) && !reservedWords[name] {
		return name
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QualifiedTable returns the quoted "keyspace.table" reference.
func QualifiedTable(keyspace, table string) string {
	if keyspace == "" {
		return QuoteIdentifier(table)
	}
	return QuoteIdentifier(keyspace) + "." + QuoteIdentifier(table)
}
