package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rzpsarthak13/cqlbrowser/pkg/cqlbrowser"
)

func newPingCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check connectivity to the cluster",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withClient(cmd, func(ctx context.Context, client cqlbrowser.Client) error {
				version, err := client.Ping(ctx)
				if err != nil {
					return err
				}
				if opts.output == "json" {
					return printJSON(cmd.OutOrStdout(), map[string]string{"release_version": version})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Connected (release %s)\n", version)
				return nil
			})
		},
	}
}

func newKeyspacesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "keyspaces",
		Short: "List user keyspaces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withClient(cmd, func(ctx context.Context, client cqlbrowser.Client) error {
				keyspaces, err := client.Keyspaces(ctx)
				if err != nil {
					return err
				}
				return printList(cmd.OutOrStdout(), opts.output, "keyspace", keyspaces)
			})
		},
	}
}

func newTablesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "tables [keyspace]",
		Short: "List the tables of a keyspace",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keyspace := opts.keyspace
			if len(args) == 1 {
				keyspace = args[0]
			}
			if keyspace == "" {
				return fmt.Errorf("keyspace is required")
			}
			return opts.withClient(cmd, func(ctx context.Context, client cqlbrowser.Client) error {
				tables, err := client.Tables(ctx, keyspace)
				if err != nil {
					return err
				}
				return printList(cmd.OutOrStdout(), opts.output, "table", tables)
			})
		},
	}
}

type columnInfo struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Key    string `json:"key,omitempty"`
	Hidden bool   `json:"hidden,omitempty"`
}

func newDescribeCmd(opts *options) *cobra.Command {
	var count bool

	cmd := &cobra.Command{
		Use:   "describe <keyspace.table>",
		Short: "Show the columns of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withClient(cmd, func(ctx context.Context, client cqlbrowser.Client) error {
				ts, err := opts.schema(ctx, client, args[0])
				if err != nil {
					return err
				}
				meta, err := client.Overlay().Annotate(ctx, ts)
				if err != nil {
					return err
				}

				columns := make([]columnInfo, len(ts.Columns))
				for i, col := range ts.Columns {
					columns[i] = columnInfo{
						Name:   col.Name,
						Type:   col.RawType,
						Key:    col.KeyLabel(),
						Hidden: meta[col.Name].Hide,
					}
				}

				var rows, capped string
				if count {
					n, reached, err := client.EstimateRowCount(ctx, ts.Keyspace, ts.Table)
					if err != nil {
						return err
					}
					rows = strconv.FormatInt(n, 10)
					if reached {
						capped = "+"
					}
				}

				if opts.output == "json" {
					out := map[string]interface{}{"table": ts.QualifiedName(), "columns": columns}
					if count {
						out["rows"] = rows + capped
					}
					return printJSON(cmd.OutOrStdout(), out)
				}

				body := make([][]string, len(columns))
				for i, c := range columns {
					hidden := ""
					if c.Hidden {
						hidden = "yes"
					}
					body[i] = []string{c.Name, c.Type, c.Key, hidden}
				}
				printTable(cmd.OutOrStdout(), []string{"column", "type", "key", "hidden"}, body)
				if count {
					fmt.Fprintf(cmd.OutOrStdout(), "%s rows\n", rows+capped)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&count, "count", false, "Also count rows, up to the configured estimate cap")
	return cmd
}
