package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/olekukonko/tablewriter"

	"github.com/rzpsarthak13/cqlbrowser/pkg/cqlbrowser"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func validateOutputFormat(format string) error {
	switch format {
	case "table", "json":
		return nil
	default:
		return fmt.Errorf("unsupported output format %q (use table or json)", format)
	}
}

func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func printTable(w io.Writer, header []string, rows [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.AppendBulk(rows)
	table.Render()
}

func printList(w io.Writer, format, header string, items []string) error {
	if format == "json" {
		if items == nil {
			items = []string{}
		}
		return printJSON(w, items)
	}
	rows := make([][]string, len(items))
	for i, item := range items {
		rows[i] = []string{item}
	}
	printTable(w, []string{header}, rows)
	return nil
}

// printRows renders result rows restricted to columns, in column order.
func printRows(w io.Writer, format string, client cqlbrowser.Client, ts *cqlbrowser.TableSchema, columns []cqlbrowser.Column, rows []cqlbrowser.Row) error {
	formatted := make([]map[string]string, len(rows))
	for i, row := range rows {
		formatted[i] = client.FormatRow(ts, row)
	}

	if format == "json" {
		out := make([]map[string]string, len(formatted))
		for i, row := range formatted {
			out[i] = make(map[string]string, len(columns))
			for _, col := range columns {
				out[i][col.Name] = row[col.Name]
			}
		}
		return printJSON(w, out)
	}

	header := make([]string, len(columns))
	for i, col := range columns {
		header[i] = col.Name
	}
	body := make([][]string, len(formatted))
	for i, row := range formatted {
		body[i] = make([]string, len(columns))
		for j, col := range columns {
			body[i][j] = row[col.Name]
		}
	}
	printTable(w, header, body)
	return nil
}

// resultColumns derives display columns for rows that have no known
// schema, sorted by name.
func resultColumns(rows []cqlbrowser.Row) []cqlbrowser.Column {
	seen := make(map[string]bool)
	var names []string
	for _, row := range rows {
		for name := range row {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)

	columns := make([]cqlbrowser.Column, len(names))
	for i, name := range names {
		columns[i] = cqlbrowser.Column{Name: name}
	}
	return columns
}

// parseAssignments turns repeated col=value flags into values. An empty
// value leaves the column unset.
func parseAssignments(pairs []string) (cqlbrowser.Values, error) {
	values := make(cqlbrowser.Values, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid assignment %q: expected column=value", pair)
		}
		if _, dup := values[name]; dup {
			return nil, fmt.Errorf("column %q assigned more than once", name)
		}
		values[name] = value
	}
	return values, nil
}
