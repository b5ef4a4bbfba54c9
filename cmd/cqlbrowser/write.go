package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rzpsarthak13/cqlbrowser/pkg/cqlbrowser"
)

type writeFunc func(ctx context.Context, client cqlbrowser.Client, ts *cqlbrowser.TableSchema, values cqlbrowser.Values) (cqlbrowser.Statement, error)

func newWriteCmd(opts *options, use, short string, write writeFunc) *cobra.Command {
	var assignments []string

	cmd := &cobra.Command{
		Use:   use + " <keyspace.table>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseAssignments(assignments)
			if err != nil {
				return err
			}
			return opts.withClient(cmd, func(ctx context.Context, client cqlbrowser.Client) error {
				ts, err := opts.schema(ctx, client, args[0])
				if err != nil {
					return err
				}
				stmt, err := write(ctx, client, ts, values)
				if err != nil {
					return err
				}
				return printStatement(cmd, opts, stmt)
			})
		},
	}

	cmd.Flags().StringArrayVarP(&assignments, "set", "s", nil, "Column value as column=value (repeatable)")
	return cmd
}

func newInsertCmd(opts *options) *cobra.Command {
	return newWriteCmd(opts, "insert", "Insert a row; empty uuid and timeuuid keys are generated",
		func(ctx context.Context, client cqlbrowser.Client, ts *cqlbrowser.TableSchema, values cqlbrowser.Values) (cqlbrowser.Statement, error) {
			return client.Insert(ctx, ts, values)
		})
}

func newUpdateCmd(opts *options) *cobra.Command {
	return newWriteCmd(opts, "update", "Update the non-key columns of a row",
		func(ctx context.Context, client cqlbrowser.Client, ts *cqlbrowser.TableSchema, values cqlbrowser.Values) (cqlbrowser.Statement, error) {
			return client.Update(ctx, ts, values)
		})
}

func newDeleteCmd(opts *options) *cobra.Command {
	var (
		keys []string
		yes  bool
	)

	cmd := &cobra.Command{
		Use:   "delete <keyspace.table>",
		Short: "Delete the row identified by its primary key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			row, err := parseAssignments(keys)
			if err != nil {
				return err
			}
			return opts.withClient(cmd, func(ctx context.Context, client cqlbrowser.Client) error {
				ts, err := opts.schema(ctx, client, args[0])
				if err != nil {
					return err
				}
				summary := client.KeySummary(ts, row)
				if !yes {
					return fmt.Errorf("refusing to delete %s (%s) without --yes", ts.QualifiedName(), summary)
				}
				stmt, err := client.Delete(ctx, ts, row)
				if err != nil {
					return err
				}
				if opts.output != "json" {
					fmt.Fprintf(cmd.ErrOrStderr(), "Deleted %s\n", summary)
				}
				return printStatement(cmd, opts, stmt)
			})
		},
	}

	cmd.Flags().StringArrayVar(&keys, "key", nil, "Primary key value as column=value (repeatable)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm the delete")
	return cmd
}

func printStatement(cmd *cobra.Command, opts *options, stmt cqlbrowser.Statement) error {
	if opts.output == "json" {
		return printJSON(cmd.OutOrStdout(), map[string]interface{}{
			"statement": stmt.Text,
			"columns":   stmt.Columns,
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), stmt.Text)
	return nil
}
