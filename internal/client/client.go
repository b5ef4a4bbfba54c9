package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rzpsarthak13/cqlbrowser/internal/cassandra"
	"github.com/rzpsarthak13/cqlbrowser/internal/catalog"
	"github.com/rzpsarthak13/cqlbrowser/internal/config"
	"github.com/rzpsarthak13/cqlbrowser/internal/core"
	"github.com/rzpsarthak13/cqlbrowser/internal/gologger"
	"github.com/rzpsarthak13/cqlbrowser/internal/journal"
	"github.com/rzpsarthak13/cqlbrowser/internal/kvstore"
	"github.com/rzpsarthak13/cqlbrowser/internal/overlay"
	"github.com/rzpsarthak13/cqlbrowser/internal/query"
	"github.com/rzpsarthak13/cqlbrowser/internal/schema"
)

var logger = gologger.Component("client")

// ConfigProvider is an interface to provide configuration as YAML without importing the public package.
type ConfigProvider interface {
	GetYAML() ([]byte, error)
}

// Pinger is implemented by sessions that can check connectivity.
type Pinger interface {
	Ping(ctx context.Context) (string, error)
}

// ClientImpl wires the session, catalog, overlay store, query engine and
// mutation journal behind one handle.
type ClientImpl struct {
	mu       sync.RWMutex
	config   *config.InternalConfig
	session  core.Session
	registry *schema.TypeRegistry
	catalog  *catalog.Catalog
	engine   *query.Engine
	kvStore  core.KVStore
	overlay  *overlay.Store
	journal  core.MutationJournal
	closed   bool
	now      func() time.Time
}

// NewClientImpl creates a client from YAML supplied by configProvider.
// Environment variables override the YAML, and the selected profile, if any,
// is applied last.
func NewClientImpl(configProvider ConfigProvider) (*ClientImpl, error) {
	if configProvider == nil {
		return nil, fmt.Errorf("config provider cannot be nil")
	}

	yamlData, err := configProvider.GetYAML()
	if err != nil {
		return nil, fmt.Errorf("failed to get config YAML: %w", err)
	}

	configMgr := config.NewConfigManager()
	if err := configMgr.LoadFromYAML(yamlData); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := configMgr.ApplyEnv(); err != nil {
		return nil, fmt.Errorf("failed to apply environment: %w", err)
	}
	if name := configMgr.GetConfig().Profile; name != "" {
		if err := configMgr.ApplyProfile(name); err != nil {
			return nil, err
		}
	}

	return Connect(configMgr.GetConfig())
}

// Connect opens every backend described by cfg. Backends opened before a
// failure are closed again.
func Connect(cfg *config.InternalConfig) (*ClientImpl, error) {
	session, err := cassandra.NewSession(cfg.Cassandra)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	kvStore, err := kvstore.Create(kvstore.ConfigFromOverlay(cfg.Overlay))
	if err != nil {
		_ = session.Close()
		return nil, fmt.Errorf("failed to create overlay store: %w", err)
	}

	j, err := journal.New(cfg)
	if err != nil {
		_ = kvStore.Close()
		_ = session.Close()
		return nil, fmt.Errorf("failed to create mutation journal: %w", err)
	}

	return New(cfg, session, kvStore, j), nil
}

// New assembles a client from already opened backends. journal may be nil.
func New(cfg *config.InternalConfig, session core.Session, kvStore core.KVStore, j core.MutationJournal) *ClientImpl {
	registry := schema.NewTypeRegistry()
	return &ClientImpl{
		config:   cfg,
		session:  session,
		registry: registry,
		catalog:  catalog.NewCatalog(session),
		engine:   query.NewEngine(session, registry),
		kvStore:  kvStore,
		overlay:  overlay.NewStore(kvStore),
		journal:  j,
		now:      time.Now,
	}
}

// Config returns the effective configuration.
func (c *ClientImpl) Config() *config.InternalConfig {
	return c.config
}

func (c *ClientImpl) checkOpen() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return fmt.Errorf("client is closed")
	}
	return nil
}

// Ping checks connectivity and returns the server release version.
func (c *ClientImpl) Ping(ctx context.Context) (string, error) {
	if err := c.checkOpen(); err != nil {
		return "", err
	}
	p, ok := c.session.(Pinger)
	if !ok {
		return "", fmt.Errorf("session does not support ping")
	}
	return p.Ping(ctx)
}

// Keyspaces lists the user keyspaces.
func (c *ClientImpl) Keyspaces(ctx context.Context) ([]string, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	return c.catalog.ListKeyspaces(ctx)
}

// Tables lists the tables of keyspace.
func (c *ClientImpl) Tables(ctx context.Context, keyspace string) ([]string, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	return c.catalog.ListTables(ctx, keyspace)
}

// Schema returns the schema of keyspace.table. A missing table is reported
// through TableSchema.Found, not as an error.
func (c *ClientImpl) Schema(ctx context.Context, keyspace, table string) (*core.TableSchema, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	return c.catalog.GetTableSchema(ctx, keyspace, table)
}

// EstimateRowCount counts rows up to the configured estimate cap.
func (c *ClientImpl) EstimateRowCount(ctx context.Context, keyspace, table string) (int64, bool, error) {
	if err := c.checkOpen(); err != nil {
		return 0, false, err
	}
	return c.catalog.EstimateRowCount(ctx, keyspace, table, c.config.Browser.EstimateCap)
}

// Browse returns a paged view over keyspace.table using the configured page size.
func (c *ClientImpl) Browse(ctx context.Context, keyspace, table string) (*query.TableView, error) {
	ts, err := c.Schema(ctx, keyspace, table)
	if err != nil {
		return nil, err
	}
	if !ts.Found() {
		return nil, fmt.Errorf("table %s.%s not found", keyspace, table)
	}
	return query.NewTableView(c.engine, ts, c.config.Browser.PageSize), nil
}

// Explore runs a free-form statement, capping SELECTs at the configured
// result cap. A cap of 0 leaves the statement untouched.
func (c *ClientImpl) Explore(ctx context.Context, raw string) (query.Exploratory, *core.ResultPage, error) {
	if err := c.checkOpen(); err != nil {
		return query.Exploratory{}, nil, err
	}
	var resultCap *int
	if n := c.config.Browser.ResultCap; n > 0 {
		resultCap = &n
	}
	return c.engine.Explore(ctx, raw, resultCap)
}

// Insert writes a new row and records it in the journal.
func (c *ClientImpl) Insert(ctx context.Context, ts *core.TableSchema, values core.Values) (core.Statement, error) {
	return c.write(ctx, ts, core.OperationInsert, func() (core.Statement, error) {
		return c.engine.Insert(ctx, ts, values)
	})
}

// Update rewrites the non-key columns present in values.
func (c *ClientImpl) Update(ctx context.Context, ts *core.TableSchema, values core.Values) (core.Statement, error) {
	return c.write(ctx, ts, core.OperationUpdate, func() (core.Statement, error) {
		return c.engine.Update(ctx, ts, values)
	})
}

// Delete removes the row identified by the primary key values in row.
func (c *ClientImpl) Delete(ctx context.Context, ts *core.TableSchema, row core.Values) (core.Statement, error) {
	return c.write(ctx, ts, core.OperationDelete, func() (core.Statement, error) {
		return c.engine.Delete(ctx, ts, row)
	})
}

// KeySummary renders the primary key of row for a delete confirmation.
func (c *ClientImpl) KeySummary(ts *core.TableSchema, row core.Values) string {
	return c.engine.Builder().KeySummary(ts, row)
}

// FormatRow renders every column of row for display.
func (c *ClientImpl) FormatRow(ts *core.TableSchema, row core.Row) map[string]string {
	return c.registry.FormatRow(ts, row)
}

// Overlay returns the column metadata store.
func (c *ClientImpl) Overlay() *overlay.Store {
	return c.overlay
}

// VisibleColumns returns the columns of ts not marked hidden, primary key first.
func (c *ClientImpl) VisibleColumns(ctx context.Context, ts *core.TableSchema) ([]core.Column, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	return c.overlay.VisibleColumns(ctx, ts)
}

// DrainJournal removes up to limit recorded mutations. It returns nothing
// when no journal is configured.
func (c *ClientImpl) DrainJournal(ctx context.Context, limit int) ([]*core.Mutation, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	if c.journal == nil {
		return nil, nil
	}
	return c.journal.Drain(ctx, limit)
}

func (c *ClientImpl) write(ctx context.Context, ts *core.TableSchema, op core.OperationType, run func() (core.Statement, error)) (core.Statement, error) {
	if err := c.checkOpen(); err != nil {
		return core.Statement{}, err
	}

	stmt, err := run()
	if err != nil {
		return stmt, err
	}
	c.record(ctx, ts, op, stmt)
	return stmt, nil
}

// record appends the executed write to the journal. The write has already
// been applied, so journal failures are logged and not returned.
func (c *ClientImpl) record(ctx context.Context, ts *core.TableSchema, op core.OperationType, stmt core.Statement) {
	if c.journal == nil {
		return
	}

	m := &core.Mutation{
		Keyspace:  ts.Keyspace,
		Table:     ts.Table,
		Operation: op,
		Statement: stmt.Text,
		Key:       make(map[string]string),
		Timestamp: c.now(),
	}
	for i, name := range stmt.Columns {
		col := ts.Column(name)
		if col == nil || i >= len(stmt.Args) {
			continue
		}
		display := c.registry.FormatColumn(*col, stmt.Args[i])
		if col.IsPrimaryKey() {
			m.Key[name] = display
			continue
		}
		if m.Values == nil {
			m.Values = make(map[string]string)
		}
		m.Values[name] = display
	}

	if err := c.journal.Append(ctx, m); err != nil {
		logger.Warn().Err(err).
			Str("table", m.QualifiedTable()).
			Str("operation", string(op)).
			Msg("failed to record mutation")
	}
}

// Close closes the journal, overlay store and session.
func (c *ClientImpl) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if c.journal != nil {
		keep(c.journal.Close())
	}
	if c.kvStore != nil {
		keep(c.kvStore.Close())
	}
	keep(c.session.Close())
	return firstErr
}
