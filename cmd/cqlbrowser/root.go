package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rzpsarthak13/cqlbrowser/pkg/cqlbrowser"
)

// options holds the persistent flags shared by every subcommand.
type options struct {
	configPath string
	profile    string
	keyspace   string
	output     string
	verbose    bool
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		output, _ := rootCmd.PersistentFlags().GetString("output")
		if output == "json" {
			_ = printJSON(os.Stdout, map[string]interface{}{"error": err.Error()})
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "cqlbrowser",
		Short:         "Browse and edit Cassandra tables",
		Long:          "Schema-aware data browser for Cassandra and ScyllaDB clusters.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if opts.verbose || os.Getenv("DEBUG") == "1" {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			} else {
				zerolog.SetGlobalLevel(zerolog.WarnLevel)
			}
			return validateOutputFormat(opts.output)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "Config file (.yaml, .yml or .json)")
	flags.StringVarP(&opts.profile, "profile", "p", "", "Connection profile to use")
	flags.StringVarP(&opts.keyspace, "keyspace", "k", "", "Keyspace for unqualified table names")
	flags.StringVarP(&opts.output, "output", "o", "table", "Output format (table, json)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Log debug output")

	rootCmd.AddCommand(newPingCmd(opts))
	rootCmd.AddCommand(newKeyspacesCmd(opts))
	rootCmd.AddCommand(newTablesCmd(opts))
	rootCmd.AddCommand(newDescribeCmd(opts))
	rootCmd.AddCommand(newBrowseCmd(opts))
	rootCmd.AddCommand(newQueryCmd(opts))
	rootCmd.AddCommand(newInsertCmd(opts))
	rootCmd.AddCommand(newUpdateCmd(opts))
	rootCmd.AddCommand(newDeleteCmd(opts))
	rootCmd.AddCommand(newColumnCmd(opts))
	rootCmd.AddCommand(newJournalCmd(opts))

	return rootCmd
}

// loadConfig resolves the configuration: defaults, then the config file,
// then the --profile and --keyspace flags.
func (o *options) loadConfig() (*cqlbrowser.Config, error) {
	cfg := cqlbrowser.DefaultConfig()
	if o.configPath != "" {
		loaded, err := cqlbrowser.LoadConfig(o.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if o.profile != "" {
		cfg.Profile = o.profile
	}
	if o.keyspace != "" {
		cfg.Cassandra.Keyspace = o.keyspace
	}
	return cfg, nil
}

// connect opens a client for one command. The caller closes it.
func (o *options) connect() (cqlbrowser.Client, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	return cqlbrowser.NewClient(cfg)
}

// withClient runs fn with a connected client and closes it afterwards.
func (o *options) withClient(cmd *cobra.Command, fn func(ctx context.Context, client cqlbrowser.Client) error) error {
	client, err := o.connect()
	if err != nil {
		return err
	}
	defer client.Close()
	return fn(cmd.Context(), client)
}

// splitTable parses "keyspace.table", falling back to the --keyspace flag
// for a bare table name.
func (o *options) splitTable(arg string) (string, string, error) {
	if ks, table, ok := strings.Cut(arg, "."); ok {
		if ks == "" || table == "" {
			return "", "", fmt.Errorf("invalid table %q: expected keyspace.table", arg)
		}
		return ks, table, nil
	}
	if o.keyspace == "" {
		return "", "", fmt.Errorf("table %q has no keyspace: use keyspace.table or --keyspace", arg)
	}
	return o.keyspace, arg, nil
}

// schema loads the table named by arg and fails if it does not exist.
func (o *options) schema(ctx context.Context, client cqlbrowser.Client, arg string) (*cqlbrowser.TableSchema, error) {
	ks, table, err := o.splitTable(arg)
	if err != nil {
		return nil, err
	}
	ts, err := client.Schema(ctx, ks, table)
	if err != nil {
		return nil, err
	}
	if !ts.Found() {
		return nil, fmt.Errorf("table %s.%s not found", ks, table)
	}
	return ts, nil
}
