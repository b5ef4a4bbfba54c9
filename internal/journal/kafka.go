package journal

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/rzpsarthak13/cqlbrowser/internal/config"
	"github.com/rzpsarthak13/cqlbrowser/internal/core"
)

// kafkaReadTimeout bounds each read while draining; an idle topic ends the drain.
const kafkaReadTimeout = 2 * time.Second

// KafkaJournal implements core.MutationJournal on a Kafka topic.
// Mutations are keyed by qualified table name so one table stays ordered
// within a partition.
type KafkaJournal struct {
	writer  *kafka.Writer
	reader  *kafka.Reader
	topic   string
	groupID string
	mu      sync.RWMutex
	closed  bool
	size    int // Approximate, counts appends minus drains from this process
}

// NewKafkaJournal creates a producer and a consumer-group reader for cfg.Topic.
func NewKafkaJournal(cfg config.InternalKafkaConfig) (*KafkaJournal, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("at least one Kafka broker is required")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("Kafka topic is required")
	}
	if cfg.GroupID == "" {
		cfg.GroupID = "cqlbrowser-mutations"
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
		WriteTimeout: cfg.WriteTimeout,
		RequiredAcks: kafka.RequiredAcks(cfg.RequiredAcks),
		BatchBytes:   int64(cfg.MaxMessageBytes),
		MaxAttempts:  3,
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       cfg.Topic,
		GroupID:     cfg.GroupID,
		MinBytes:    cfg.MinBytes,
		MaxBytes:    cfg.MaxBytes,
		MaxWait:     cfg.MaxWait,
		StartOffset: kafka.FirstOffset,
	})

	logger.Info().
		Strs("brokers", cfg.Brokers).
		Str("topic", cfg.Topic).
		Str("group", cfg.GroupID).
		Msg("kafka journal ready")

	return &KafkaJournal{
		writer:  writer,
		reader:  reader,
		topic:   cfg.Topic,
		groupID: cfg.GroupID,
	}, nil
}

// Append produces the mutation synchronously.
func (j *KafkaJournal) Append(ctx context.Context, m *core.Mutation) error {
	j.mu.RLock()
	if err := closedCheck(ctx, j.closed); err != nil {
		j.mu.RUnlock()
		return err
	}
	j.mu.RUnlock()

	if err := prepare(m); err != nil {
		return err
	}

	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal mutation: %w", err)
	}

	message := kafka.Message{
		Key:   []byte(m.QualifiedTable()),
		Value: data,
		Time:  m.Timestamp,
		Headers: []kafka.Header{
			{Key: "operation", Value: []byte(m.Operation)},
			{Key: "table", Value: []byte(m.QualifiedTable())},
		},
	}

	start := time.Now()
	if err := j.writer.WriteMessages(ctx, message); err != nil {
		logger.Error().Err(err).Str("topic", j.topic).Dur("took", time.Since(start)).Msg("failed to produce mutation")
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}

	j.mu.Lock()
	j.size++
	j.mu.Unlock()

	logger.Debug().
		Str("topic", j.topic).
		Str("operation", string(m.Operation)).
		Str("table", m.QualifiedTable()).
		Dur("took", time.Since(start)).
		Msg("produced mutation")
	return nil
}

// Drain reads up to limit mutations, committing each offset once decoded.
// It stops early when no message arrives within kafkaReadTimeout.
func (j *KafkaJournal) Drain(ctx context.Context, limit int) ([]*core.Mutation, error) {
	j.mu.RLock()
	if err := closedCheck(ctx, j.closed); err != nil {
		j.mu.RUnlock()
		return nil, err
	}
	j.mu.RUnlock()

	limit = drainLimit(limit)
	out := make([]*core.Mutation, 0, limit)

	for len(out) < limit {
		readCtx, cancel := context.WithTimeout(ctx, kafkaReadTimeout)
		message, err := j.reader.FetchMessage(readCtx)
		cancel()
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				break
			}
			return out, fmt.Errorf("failed to read from Kafka topic %s: %w", j.topic, err)
		}

		if m, ok := decode(message.Value); ok {
			out = append(out, m)
		}
		if err := j.reader.CommitMessages(ctx, message); err != nil {
			logger.Warn().Err(err).
				Int("partition", message.Partition).
				Int64("offset", message.Offset).
				Msg("failed to commit offset")
		}
	}

	if len(out) > 0 {
		j.mu.Lock()
		j.size = max(0, j.size-len(out))
		j.mu.Unlock()
		logger.Debug().Int("count", len(out)).Str("group", j.groupID).Msg("drained mutations")
	}
	return out, nil
}

// Size returns an approximate number of undrained mutations.
func (j *KafkaJournal) Size() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.size
}

// Close flushes the writer and leaves the consumer group.
func (j *KafkaJournal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return nil
	}
	j.closed = true

	if err := j.writer.Close(); err != nil {
		logger.Error().Err(err).Msg("failed to close kafka writer")
	}
	return j.reader.Close()
}
