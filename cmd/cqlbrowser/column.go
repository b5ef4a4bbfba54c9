package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rzpsarthak13/cqlbrowser/pkg/cqlbrowser"
)

func newColumnCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "column",
		Short: "Manage per-column display metadata",
	}
	cmd.AddCommand(newColumnShowCmd(opts))
	cmd.AddCommand(newColumnHideCmd(opts, "hide", true))
	cmd.AddCommand(newColumnHideCmd(opts, "unhide", false))
	cmd.AddCommand(newColumnMapSchemaCmd(opts))
	cmd.AddCommand(newColumnCopyCmd(opts))
	return cmd
}

// columnArgs resolves "<keyspace.table> <column>" and checks the column exists.
func (o *options) columnArgs(ctx context.Context, client cqlbrowser.Client, args []string) (*cqlbrowser.TableSchema, string, error) {
	ts, err := o.schema(ctx, client, args[0])
	if err != nil {
		return nil, "", err
	}
	if ts.Column(args[1]) == nil {
		return nil, "", fmt.Errorf("column %q not found in %s", args[1], ts.QualifiedName())
	}
	return ts, args[1], nil
}

func newColumnShowCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show <keyspace.table> <column>",
		Short: "Show the metadata recorded for a column",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withClient(cmd, func(ctx context.Context, client cqlbrowser.Client) error {
				ts, column, err := opts.columnArgs(ctx, client, args)
				if err != nil {
					return err
				}
				recorded, err := client.Overlay().Recorded(ctx, ts.Keyspace, ts.Table, column)
				if err != nil {
					return err
				}
				meta, err := client.Overlay().ColumnMetadata(ctx, ts.Keyspace, ts.Table, column)
				if err != nil {
					return err
				}
				if opts.output == "json" {
					return printJSON(cmd.OutOrStdout(), meta)
				}
				if !recorded {
					fmt.Fprintln(cmd.OutOrStdout(), "No metadata recorded")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "hide: %t\n", meta.Hide)
				if len(meta.MapSchema) > 0 {
					rows := make([][]string, len(meta.MapSchema))
					for i, f := range meta.MapSchema {
						rows[i] = []string{f.Key, f.Type}
					}
					printTable(cmd.OutOrStdout(), []string{"key", "type"}, rows)
				}
				return nil
			})
		},
	}
}

func newColumnHideCmd(opts *options, use string, hide bool) *cobra.Command {
	short := "Hide a column from browse output"
	if !hide {
		short = "Show a hidden column again"
	}
	return &cobra.Command{
		Use:   use + " <keyspace.table> <column>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withClient(cmd, func(ctx context.Context, client cqlbrowser.Client) error {
				ts, column, err := opts.columnArgs(ctx, client, args)
				if err != nil {
					return err
				}
				return client.Overlay().SetHide(ctx, ts.Keyspace, ts.Table, column, hide)
			})
		},
	}
}

func newColumnMapSchemaCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "map-schema <keyspace.table> <column> [key:type ...]",
		Short:   "Record the expected keys of a map column; no fields clears them",
		Example: `  cqlbrowser column map-schema shop.orders attrs color:text size:int`,
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := parseMapFields(args[2:])
			if err != nil {
				return err
			}
			return opts.withClient(cmd, func(ctx context.Context, client cqlbrowser.Client) error {
				ts, column, err := opts.columnArgs(ctx, client, args[:2])
				if err != nil {
					return err
				}
				if col := ts.Column(column); !isMap(col.Type) {
					return fmt.Errorf("column %q is %s, not a map", column, col.RawType)
				}
				return client.Overlay().SetMapSchema(ctx, ts.Keyspace, ts.Table, column, fields)
			})
		},
	}
}

func newColumnCopyCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "copy <keyspace.table> <from-column> <to-column>",
		Short: "Replace a column's metadata with another column's",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withClient(cmd, func(ctx context.Context, client cqlbrowser.Client) error {
				ts, from, err := opts.columnArgs(ctx, client, args[:2])
				if err != nil {
					return err
				}
				_, to, err := opts.columnArgs(ctx, client, []string{args[0], args[2]})
				if err != nil {
					return err
				}
				meta, err := client.Overlay().ColumnMetadata(ctx, ts.Keyspace, ts.Table, from)
				if err != nil {
					return err
				}
				return client.Overlay().SetColumnMetadata(ctx, ts.Keyspace, ts.Table, to, meta)
			})
		},
	}
}

func parseMapFields(specs []string) ([]cqlbrowser.MapField, error) {
	fields := make([]cqlbrowser.MapField, 0, len(specs))
	for _, spec := range specs {
		key, typ, ok := strings.Cut(spec, ":")
		if !ok || key == "" || typ == "" {
			return nil, fmt.Errorf("invalid map field %q: expected key:type", spec)
		}
		fields = append(fields, cqlbrowser.MapField{Key: key, Type: typ})
	}
	return fields, nil
}

func isMap(t cqlbrowser.TypeExpression) bool {
	if t.Base == "frozen" {
		return isMap(t.Param(0))
	}
	return t.Base == "map"
}
