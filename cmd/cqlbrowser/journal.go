package main

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rzpsarthak13/cqlbrowser/pkg/cqlbrowser"
)

func newJournalCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Inspect the journal of writes made through cqlbrowser",
	}
	cmd.AddCommand(newJournalDrainCmd(opts))
	return cmd
}

func newJournalDrainCmd(opts *options) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "drain",
		Short: "Remove and print recorded writes, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit <= 0 {
				return fmt.Errorf("--limit must be positive")
			}
			return opts.withClient(cmd, func(ctx context.Context, client cqlbrowser.Client) error {
				mutations, err := client.DrainJournal(ctx, limit)
				if err != nil {
					return err
				}
				if opts.output == "json" {
					if mutations == nil {
						mutations = []*cqlbrowser.Mutation{}
					}
					return printJSON(cmd.OutOrStdout(), mutations)
				}
				rows := make([][]string, len(mutations))
				for i, m := range mutations {
					rows[i] = []string{
						m.Timestamp.Format(time.RFC3339),
						string(m.Operation),
						m.QualifiedTable(),
						joinPairs(m.Key),
						joinPairs(m.Values),
					}
				}
				printTable(cmd.OutOrStdout(), []string{"time", "operation", "table", "key", "values"}, rows)
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 100, "Maximum number of writes to drain")
	return cmd
}

// joinPairs renders m as "a=1, b=2" in key order.
func joinPairs(m map[string]string) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + m[k]
	}
	return strings.Join(parts, ", ")
}
