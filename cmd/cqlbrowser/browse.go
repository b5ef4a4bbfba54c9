package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rzpsarthak13/cqlbrowser/pkg/cqlbrowser"
)

func newBrowseCmd(opts *options) *cobra.Command {
	var (
		filters  []string
		pageSize int
		page     int
		all      bool
	)

	cmd := &cobra.Command{
		Use:   "browse <keyspace.table>",
		Short: "Page through the rows of a table",
		Long: `Page through the rows of a table, optionally filtered by column values.

Filters on non-key columns add ALLOW FILTERING to the query.`,
		Example: `  cqlbrowser browse shop.orders --where status=open --page 2`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if page < 1 {
				return fmt.Errorf("--page must be at least 1")
			}
			where, err := parseAssignments(filters)
			if err != nil {
				return err
			}
			ks, table, err := opts.splitTable(args[0])
			if err != nil {
				return err
			}

			return opts.withClient(cmd, func(ctx context.Context, client cqlbrowser.Client) error {
				view, err := client.Browse(ctx, ks, table)
				if err != nil {
					return err
				}
				if pageSize > 0 {
					view.SetPageSize(pageSize)
				}
				view.SetFilters(where)

				result, err := view.Fetch(ctx)
				if err != nil {
					return err
				}
				for n := 1; n < page; n++ {
					if !result.HasMore() {
						return fmt.Errorf("table has fewer than %d pages", page)
					}
					if result, err = view.NextPage(ctx); err != nil {
						return err
					}
				}

				columns, err := client.VisibleColumns(ctx, view.Schema())
				if err != nil {
					return err
				}

				rows := result.Rows
				for all && result.HasMore() {
					if result, err = view.NextPage(ctx); err != nil {
						return err
					}
					rows = append(rows, result.Rows...)
				}

				if err := printRows(cmd.OutOrStdout(), opts.output, client, view.Schema(), columns, rows); err != nil {
					return err
				}
				if opts.output != "json" && result.HasMore() {
					fmt.Fprintf(cmd.ErrOrStderr(), "More rows available: use --page %d\n", view.Pager().Depth()+2)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringArrayVarP(&filters, "where", "w", nil, "Filter as column=value (repeatable)")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "Rows per page (defaults to browser.page_size)")
	cmd.Flags().IntVar(&page, "page", 1, "Page number to show")
	cmd.Flags().BoolVar(&all, "all", false, "Fetch every remaining page")
	return cmd
}

func newQueryCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "query <statement>",
		Aliases: []string{"explore"},
		Short:   "Run a free-form CQL statement",
		Long: `Run a free-form CQL statement.

SELECT statements are limited to browser.result_cap rows; an existing LIMIT
is replaced by the cap.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withClient(cmd, func(ctx context.Context, client cqlbrowser.Client) error {
				ex, result, err := client.Explore(ctx, args[0])
				if err != nil {
					return err
				}
				if ex.Overridden {
					fmt.Fprintf(cmd.ErrOrStderr(), "LIMIT %d replaced by the result cap\n", ex.PriorLimit)
				}
				if len(result.Rows) == 0 {
					if opts.output == "json" {
						return printJSON(cmd.OutOrStdout(), []interface{}{})
					}
					fmt.Fprintln(cmd.OutOrStdout(), "OK")
					return nil
				}
				ts := &cqlbrowser.TableSchema{}
				return printRows(cmd.OutOrStdout(), opts.output, client, ts, resultColumns(result.Rows), result.Rows)
			})
		},
	}
}
