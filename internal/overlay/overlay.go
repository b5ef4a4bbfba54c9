package overlay

import (
	"context"
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/samber/lo"

	"github.com/rzpsarthak13/cqlbrowser/internal/core"
	"github.com/rzpsarthak13/cqlbrowser/internal/gologger"
)

var logger = gologger.Component("overlay")

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	// KeyHide marks a column hidden from the data grid.
	KeyHide = "hide"

	// KeyMapSchema holds the expected keys of a map column.
	KeyMapSchema = "map_schema"
)

// MapField describes one expected key of a map column and the type of its value.
type MapField struct {
	Key  string `json:"key"`
	Type string `json:"type"`
}

// ColumnMetadata is the presentation metadata recorded for a column.
type ColumnMetadata struct {
	Hide      bool       `json:"hide"`
	MapSchema []MapField `json:"map_schema,omitempty"`
}

// Store keeps per-column metadata that the database itself does not carry.
// Values are JSON encoded in a core.KVStore, one entry per metadata key.
type Store struct {
	kv core.KVStore
}

// NewStore creates an overlay over kv.
func NewStore(kv core.KVStore) *Store {
	return &Store{kv: kv}
}

// StorageKey returns the KV key for one metadata entry.
func StorageKey(keyspace, table, column, key string) string {
	return fmt.Sprintf("colmeta:%s.%s:%s:%s", keyspace, table, column, key)
}

// Get decodes the entry into out. It reports false if nothing is recorded.
func (s *Store) Get(ctx context.Context, keyspace, table, column, key string, out interface{}) (bool, error) {
	raw, err := s.kv.Get(ctx, StorageKey(keyspace, table, column, key))
	if errors.Is(err, core.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s metadata for %s.%s.%s: %w", key, keyspace, table, column, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("failed to decode %s metadata for %s.%s.%s: %w", key, keyspace, table, column, err)
	}
	return true, nil
}

// Set records value for the entry. Entries never expire.
func (s *Store) Set(ctx context.Context, keyspace, table, column, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s metadata: %w", key, err)
	}
	if err := s.kv.Set(ctx, StorageKey(keyspace, table, column, key), raw, 0); err != nil {
		return fmt.Errorf("failed to write %s metadata for %s.%s.%s: %w", key, keyspace, table, column, err)
	}
	logger.Debug().
		Str("keyspace", keyspace).
		Str("table", table).
		Str("column", column).
		Str("key", key).
		Msg("metadata updated")
	return nil
}

// Delete removes the entry. Removing a missing entry is not an error.
func (s *Store) Delete(ctx context.Context, keyspace, table, column, key string) error {
	if err := s.kv.Delete(ctx, StorageKey(keyspace, table, column, key)); err != nil {
		return fmt.Errorf("failed to delete %s metadata for %s.%s.%s: %w", key, keyspace, table, column, err)
	}
	return nil
}

// Recorded reports whether any metadata entry exists for a column.
func (s *Store) Recorded(ctx context.Context, keyspace, table, column string) (bool, error) {
	for _, key := range []string{KeyHide, KeyMapSchema} {
		ok, err := s.kv.Exists(ctx, StorageKey(keyspace, table, column, key))
		if err != nil {
			return false, fmt.Errorf("failed to check %s metadata for %s.%s.%s: %w", key, keyspace, table, column, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// ColumnMetadata returns everything recorded for a column. Missing entries
// take their zero value.
func (s *Store) ColumnMetadata(ctx context.Context, keyspace, table, column string) (ColumnMetadata, error) {
	var meta ColumnMetadata
	if _, err := s.Get(ctx, keyspace, table, column, KeyHide, &meta.Hide); err != nil {
		return ColumnMetadata{}, err
	}
	if _, err := s.Get(ctx, keyspace, table, column, KeyMapSchema, &meta.MapSchema); err != nil {
		return ColumnMetadata{}, err
	}
	return meta, nil
}

// SetColumnMetadata replaces everything recorded for a column. Non-zero
// entries are written in one batch; zero entries are removed.
func (s *Store) SetColumnMetadata(ctx context.Context, keyspace, table, column string, meta ColumnMetadata) error {
	meta.MapSchema = lo.UniqBy(meta.MapSchema, func(f MapField) string { return f.Key })

	items := make(map[string][]byte, 2)
	var stale []string
	for key, value := range map[string]interface{}{KeyHide: meta.Hide, KeyMapSchema: meta.MapSchema} {
		if isZeroEntry(value) {
			stale = append(stale, key)
			continue
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to encode %s metadata: %w", key, err)
		}
		items[StorageKey(keyspace, table, column, key)] = raw
	}

	if len(items) > 0 {
		if err := s.kv.BatchSet(ctx, items, 0); err != nil {
			return fmt.Errorf("failed to write metadata for %s.%s.%s: %w", keyspace, table, column, err)
		}
	}
	for _, key := range stale {
		if err := s.Delete(ctx, keyspace, table, column, key); err != nil {
			return err
		}
	}
	logger.Debug().
		Str("keyspace", keyspace).
		Str("table", table).
		Str("column", column).
		Int("written", len(items)).
		Msg("metadata replaced")
	return nil
}

// SetHide hides a column. Showing it again removes the entry.
func (s *Store) SetHide(ctx context.Context, keyspace, table, column string, hide bool) error {
	if !hide {
		return s.Delete(ctx, keyspace, table, column, KeyHide)
	}
	return s.Set(ctx, keyspace, table, column, KeyHide, true)
}

// SetMapSchema records the expected keys of a map column. Duplicate keys
// keep their first definition. An empty field list removes the entry.
func (s *Store) SetMapSchema(ctx context.Context, keyspace, table, column string, fields []MapField) error {
	if len(fields) == 0 {
		return s.Delete(ctx, keyspace, table, column, KeyMapSchema)
	}
	fields = lo.UniqBy(fields, func(f MapField) string { return f.Key })
	return s.Set(ctx, keyspace, table, column, KeyMapSchema, fields)
}

func isZeroEntry(value interface{}) bool {
	switch v := value.(type) {
	case bool:
		return !v
	case []MapField:
		return len(v) == 0
	}
	return value == nil
}

// Annotate returns the metadata of every column of ts, keyed by column name.
func (s *Store) Annotate(ctx context.Context, ts *core.TableSchema) (map[string]ColumnMetadata, error) {
	out := make(map[string]ColumnMetadata, len(ts.Columns))
	for _, col := range ts.Columns {
		meta, err := s.ColumnMetadata(ctx, ts.Keyspace, ts.Table, col.Name)
		if err != nil {
			return nil, err
		}
		out[col.Name] = meta
	}
	return out, nil
}

// VisibleColumns returns the columns of ts that are not hidden, in schema order.
func (s *Store) VisibleColumns(ctx context.Context, ts *core.TableSchema) ([]core.Column, error) {
	meta, err := s.Annotate(ctx, ts)
	if err != nil {
		return nil, err
	}
	return lo.Filter(ts.Columns, func(col core.Column, _ int) bool {
		return !meta[col.Name].Hide
	}), nil
}
