package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rzpsarthak13/cqlbrowser/pkg/cqlbrowser"
)

func TestParseAssignments(t *testing.T) {
	values, err := parseAssignments([]string{"id=42", " note =a=b", "total="})
	require.NoError(t, err)
	assert.Equal(t, cqlbrowser.Values{"id": "42", "note": "a=b", "total": ""}, values)

	_, err = parseAssignments([]string{"id"})
	assert.ErrorContains(t, err, "expected column=value")

	_, err = parseAssignments([]string{"=1"})
	assert.Error(t, err)

	_, err = parseAssignments([]string{"id=1", "id=2"})
	assert.ErrorContains(t, err, "more than once")
}

func TestSplitTable(t *testing.T) {
	opts := &options{}

	ks, table, err := opts.splitTable("shop.orders")
	require.NoError(t, err)
	assert.Equal(t, "shop", ks)
	assert.Equal(t, "orders", table)

	_, _, err = opts.splitTable("orders")
	assert.ErrorContains(t, err, "--keyspace")

	_, _, err = opts.splitTable("shop.")
	assert.Error(t, err)

	opts.keyspace = "shop"
	ks, table, err = opts.splitTable("orders")
	require.NoError(t, err)
	assert.Equal(t, "shop", ks)
	assert.Equal(t, "orders", table)
}

func TestParseMapFields(t *testing.T) {
	fields, err := parseMapFields([]string{"color:text", "size:int"})
	require.NoError(t, err)
	assert.Equal(t, []cqlbrowser.MapField{{Key: "color", Type: "text"}, {Key: "size", Type: "int"}}, fields)

	_, err = parseMapFields([]string{"color"})
	assert.ErrorContains(t, err, "expected key:type")
}

func TestIsMap(t *testing.T) {
	text := cqlbrowser.TypeExpression{Base: "text"}
	m := cqlbrowser.TypeExpression{Base: "map", Params: []cqlbrowser.TypeExpression{text, text}}

	assert.True(t, isMap(m))
	assert.True(t, isMap(cqlbrowser.TypeExpression{Base: "frozen", Params: []cqlbrowser.TypeExpression{m}}))
	assert.False(t, isMap(text))
}

func TestJoinPairs(t *testing.T) {
	assert.Equal(t, "a=1, b=2", joinPairs(map[string]string{"b": "2", "a": "1"}))
	assert.Equal(t, "", joinPairs(nil))
}

func TestPrintList(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printList(&buf, "json", "keyspace", nil))
	assert.Equal(t, "[]\n", buf.String())

	buf.Reset()
	require.NoError(t, printList(&buf, "table", "keyspace", []string{"shop"}))
	assert.Contains(t, buf.String(), "keyspace")
	assert.Contains(t, buf.String(), "shop")
}

func TestResultColumns(t *testing.T) {
	cols := resultColumns([]cqlbrowser.Row{{"b": 1, "a": 2}, {"c": 3}})
	require.Len(t, cols, 3)
	assert.Equal(t, "a", cols[0].Name)
	assert.Equal(t, "b", cols[1].Name)
	assert.Equal(t, "c", cols[2].Name)
}

func TestRootCmd_RejectsBeforeConnecting(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"output format", []string{"keyspaces", "-o", "yaml"}, "unsupported output format"},
		{"missing keyspace", []string{"tables"}, "keyspace is required"},
		{"page", []string{"browse", "shop.orders", "--page", "0"}, "--page"},
		{"bad filter", []string{"browse", "shop.orders", "--where", "status"}, "expected column=value"},
		{"bad map field", []string{"column", "map-schema", "shop.orders", "attrs", "color"}, "expected key:type"},
		{"copy args", []string{"column", "copy", "shop.orders", "attrs"}, "accepts 3 arg(s)"},
		{"drain limit", []string{"journal", "drain", "--limit", "0"}, "--limit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newRootCmd()
			cmd.SetArgs(tt.args)
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})
			assert.ErrorContains(t, cmd.Execute(), tt.want)
		})
	}
}
