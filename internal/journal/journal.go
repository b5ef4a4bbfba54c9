package journal

import (
	"context"
	"errors"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/rzpsarthak13/cqlbrowser/internal/config"
	"github.com/rzpsarthak13/cqlbrowser/internal/core"
	"github.com/rzpsarthak13/cqlbrowser/internal/gologger"
	"github.com/rzpsarthak13/cqlbrowser/internal/kvstore"
)

var (
	logger = gologger.Component("journal")
	json   = jsoniter.ConfigCompatibleWithStandardLibrary
)

var (
	// ErrJournalClosed is returned when appending to or draining a closed journal.
	ErrJournalClosed = errors.New("mutation journal is closed")

	// ErrJournalFull is returned when a bounded journal has no room left.
	ErrJournalFull = errors.New("mutation journal is full")

	// ErrInvalidMutation is returned for nil mutations or ones without a table.
	ErrInvalidMutation = errors.New("invalid mutation")
)

// defaultDrainLimit applies when Drain is called with a non-positive limit.
const defaultDrainLimit = 100

// New creates the journal selected by cfg.Journal.Type. Type "none" returns
// a nil journal and no error.
func New(cfg *config.InternalConfig) (core.MutationJournal, error) {
	j := cfg.Journal
	switch j.Type {
	case "", "none":
		return nil, nil
	case "memory":
		return NewMemoryJournal(j.BufferSize), nil
	case "redis":
		storeCfg := kvstore.ConfigFromOverlay(cfg.Overlay)
		storeCfg.Type = "redis"
		store, err := kvstore.NewRedisKVStore(storeCfg)
		if err != nil {
			return nil, fmt.Errorf("journal: %w", err)
		}
		return NewRedisJournal(store, j.RedisKey), nil
	case "kafka":
		return NewKafkaJournal(j.KafkaConfig)
	default:
		return nil, fmt.Errorf("unsupported journal type: %s", j.Type)
	}
}

// prepare checks a mutation before it is appended and stamps it if needed.
func prepare(m *core.Mutation) error {
	if m == nil {
		return ErrInvalidMutation
	}
	if m.Keyspace == "" || m.Table == "" {
		return fmt.Errorf("%w: keyspace and table are required", ErrInvalidMutation)
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now()
	}
	return nil
}

// decode unmarshals a stored mutation, logging and skipping bad payloads.
func decode(data []byte) (*core.Mutation, bool) {
	var m core.Mutation
	if err := json.Unmarshal(data, &m); err != nil {
		logger.Warn().Err(err).Int("bytes", len(data)).Msg("skipping undecodable mutation")
		return nil, false
	}
	return &m, true
}

func drainLimit(limit int) int {
	if limit <= 0 {
		return defaultDrainLimit
	}
	return limit
}

// closedCheck is shared by the backends guarded by a closed flag.
func closedCheck(ctx context.Context, closed bool) error {
	if closed {
		return ErrJournalClosed
	}
	return ctx.Err()
}
