package cqlbrowser

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/rzpsarthak13/cqlbrowser/internal/client"
	"github.com/rzpsarthak13/cqlbrowser/internal/core"
	"github.com/rzpsarthak13/cqlbrowser/internal/overlay"
	"github.com/rzpsarthak13/cqlbrowser/internal/query"
)

// Types shared with the internal packages.
type (
	TableSchema    = core.TableSchema
	Column         = core.Column
	TypeExpression = core.TypeExpression
	Row            = core.Row
	Values         = core.Values
	Statement      = core.Statement
	ResultPage     = core.ResultPage
	Mutation       = core.Mutation
	TableView      = query.TableView
	Exploratory    = query.Exploratory
	ColumnMetadata = overlay.ColumnMetadata
	MapField       = overlay.MapField
	MetadataStore  = overlay.Store
)

// Client is the main interface for browsing and editing a cluster.
//
// Typical usage:
//
//	client, _ := cqlbrowser.NewClient(cqlbrowser.DefaultConfig())
//	defer client.Close()
//
//	view, _ := client.Browse(ctx, "shop", "orders")
//	page, _ := view.Fetch(ctx)
//	page, _ = view.NextPage(ctx)
type Client interface {
	// Ping checks connectivity and returns the server release version.
	Ping(ctx context.Context) (string, error)

	// Keyspaces lists user keyspaces in name order; system keyspaces are omitted.
	Keyspaces(ctx context.Context) ([]string, error)

	// Tables lists the tables of a keyspace in name order.
	Tables(ctx context.Context, keyspace string) ([]string, error)

	// Schema returns a table's columns, primary key first. A table that does
	// not exist yields a schema whose Found method reports false.
	Schema(ctx context.Context, keyspace, table string) (*TableSchema, error)

	// EstimateRowCount counts rows up to the configured cap. The boolean
	// reports whether the cap was reached.
	EstimateRowCount(ctx context.Context, keyspace, table string) (int64, bool, error)

	// Browse opens a paged, filterable view over a table.
	Browse(ctx context.Context, keyspace, table string) (*TableView, error)

	// Explore runs a free-form statement. SELECTs are capped at the
	// configured result cap.
	Explore(ctx context.Context, statement string) (Exploratory, *ResultPage, error)

	// Insert, Update and Delete write one row and return the executed statement.
	Insert(ctx context.Context, ts *TableSchema, values Values) (Statement, error)
	Update(ctx context.Context, ts *TableSchema, values Values) (Statement, error)
	Delete(ctx context.Context, ts *TableSchema, row Values) (Statement, error)

	// KeySummary renders the primary key values of row, e.g. "id=1, day=2024-01-01".
	KeySummary(ts *TableSchema, row Values) string

	// FormatRow renders every value of row for display.
	FormatRow(ts *TableSchema, row Row) map[string]string

	// Overlay returns the per-column metadata store.
	Overlay() *MetadataStore

	// VisibleColumns returns the columns not marked hidden in the overlay.
	VisibleColumns(ctx context.Context, ts *TableSchema) ([]Column, error)

	// DrainJournal removes up to limit recorded writes, oldest first.
	DrainJournal(ctx context.Context, limit int) ([]*Mutation, error)

	// Close closes all connections and releases resources.
	Close() error
}

// configProvider implements client.ConfigProvider to provide config as YAML without import cycles.
type configProvider struct {
	config *Config
}

func (cp *configProvider) GetYAML() ([]byte, error) {
	return yaml.Marshal(cp.config)
}

// clientWrapper exposes the internal client through the public Client interface.
type clientWrapper struct {
	*client.ClientImpl
}

// NewClient connects to the cluster and opens the overlay store and
// journal described by config. Environment variables prefixed with
// CQLBROWSER_ override config values.
func NewClient(config *Config) (Client, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	impl, err := client.NewClientImpl(&configProvider{config: config})
	if err != nil {
		return nil, err
	}
	return &clientWrapper{ClientImpl: impl}, nil
}
