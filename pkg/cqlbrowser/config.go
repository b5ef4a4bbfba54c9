package cqlbrowser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"
)

// Config represents the root configuration for the browser client.
type Config struct {
	// Cassandra contains the cluster connection settings.
	Cassandra CassandraConfig `yaml:"cassandra" json:"cassandra"`

	// Overlay contains configuration for the column metadata store.
	Overlay OverlayConfig `yaml:"overlay" json:"overlay"`

	// Browser contains data grid settings.
	Browser BrowserConfig `yaml:"browser" json:"browser"`

	// Journal contains configuration for the mutation journal.
	Journal JournalConfig `yaml:"journal" json:"journal"`

	// Profiles are named connection settings that can replace the
	// cassandra hosts, credentials, default keyspace and TLS.
	Profiles map[string]ProfileConfig `yaml:"profiles,omitempty" json:"profiles,omitempty"`

	// Profile selects one of Profiles. Empty connects with Cassandra as is.
	Profile string `yaml:"profile,omitempty" json:"profile,omitempty"`
}

// CassandraConfig contains the cluster connection settings.
type CassandraConfig struct {
	// Hosts are the contact points.
	Hosts []string `yaml:"hosts" json:"hosts"`

	// Port is the native protocol port.
	Port int `yaml:"port" json:"port"`

	// Keyspace is the default keyspace. Optional.
	Keyspace string `yaml:"keyspace,omitempty" json:"keyspace,omitempty"`

	// Username and Password enable password authentication when Username is set.
	Username string `yaml:"username,omitempty" json:"username,omitempty"`
	Password string `yaml:"password,omitempty" json:"password,omitempty"`

	// Consistency is the consistency level name, e.g. "LOCAL_ONE" or "QUORUM".
	Consistency string `yaml:"consistency" json:"consistency"`

	// Timeout bounds each request; ConnectTimeout bounds connection setup.
	Timeout        time.Duration `yaml:"timeout" json:"timeout"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" json:"connect_timeout"`

	// ProtocolVersion is the native protocol version (3 to 5).
	ProtocolVersion int `yaml:"protocol_version" json:"protocol_version"`

	// RateLimit caps statements per second sent by this client. 0 disables it.
	RateLimit float64 `yaml:"rate_limit,omitempty" json:"rate_limit,omitempty"`

	// TLS contains client TLS settings.
	TLS TLSConfig `yaml:"tls" json:"tls"`
}

// TLSConfig contains client TLS settings.
type TLSConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`

	// MinVersion is a protocol name such as "TLSv1.2" or "PROTOCOL_TLS".
	MinVersion string `yaml:"min_version,omitempty" json:"min_version,omitempty"`

	CAPath             string `yaml:"ca_path,omitempty" json:"ca_path,omitempty"`
	CertPath           string `yaml:"cert_path,omitempty" json:"cert_path,omitempty"`
	KeyPath            string `yaml:"key_path,omitempty" json:"key_path,omitempty"`
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify,omitempty" json:"insecure_skip_verify,omitempty"`
}

// OverlayConfig contains configuration for the column metadata store.
type OverlayConfig struct {
	// Type specifies the store type: "memory", "redis" or "dynamodb".
	Type string `yaml:"type" json:"type"`

	// RedisConfig is used when Type is "redis", and by the redis journal.
	RedisConfig RedisConfig `yaml:"redis_config,omitempty" json:"redis_config,omitempty"`

	// DynamoDBConfig is used when Type is "dynamodb".
	DynamoDBConfig DynamoDBConfig `yaml:"dynamodb_config,omitempty" json:"dynamodb_config,omitempty"`

	// MaxRetries is the maximum number of retries for failed operations.
	MaxRetries int `yaml:"max_retries,omitempty" json:"max_retries,omitempty"`

	DialTimeout  time.Duration `yaml:"dial_timeout,omitempty" json:"dial_timeout,omitempty"`
	ReadTimeout  time.Duration `yaml:"read_timeout,omitempty" json:"read_timeout,omitempty"`
	WriteTimeout time.Duration `yaml:"write_timeout,omitempty" json:"write_timeout,omitempty"`
}

// RedisConfig contains Redis-specific configuration.
type RedisConfig struct {
	// Endpoints is a list of Redis endpoints. Several endpoints or
	// ClusterMode connect to a Redis Cluster.
	Endpoints   []string `yaml:"endpoints" json:"endpoints"`
	ClusterMode bool     `yaml:"cluster_mode,omitempty" json:"cluster_mode,omitempty"`
	Password    string   `yaml:"password,omitempty" json:"password,omitempty"`

	// DB is the Redis database number (0-15). Only used in non-cluster mode.
	DB int `yaml:"db,omitempty" json:"db,omitempty"`

	PoolSize     int `yaml:"pool_size" json:"pool_size"`
	MinIdleConns int `yaml:"min_idle_conns" json:"min_idle_conns"`
}

// DynamoDBConfig contains DynamoDB-specific configuration.
type DynamoDBConfig struct {
	Region    string `yaml:"region" json:"region"`
	TableName string `yaml:"table_name" json:"table_name"`

	// Endpoint overrides the service endpoint, e.g. for LocalStack.
	Endpoint string `yaml:"endpoint,omitempty" json:"endpoint,omitempty"`

	// AccessKeyID and SecretAccessKey are optional; the default AWS
	// credential chain is used when they are empty.
	AccessKeyID     string `yaml:"access_key_id,omitempty" json:"access_key_id,omitempty"`
	SecretAccessKey string `yaml:"secret_access_key,omitempty" json:"secret_access_key,omitempty"`
}

// BrowserConfig contains data grid settings.
type BrowserConfig struct {
	// PageSize is the number of rows per page (10 to 500).
	PageSize int `yaml:"page_size" json:"page_size"`

	// ResultCap is the LIMIT forced onto free-form SELECTs. 0 disables it.
	ResultCap int `yaml:"result_cap" json:"result_cap"`

	// EstimateCap bounds row count estimates.
	EstimateCap int `yaml:"estimate_cap" json:"estimate_cap"`
}

// JournalConfig contains configuration for the mutation journal.
type JournalConfig struct {
	// Type is "none", "memory", "redis" or "kafka".
	Type string `yaml:"type" json:"type"`

	// BufferSize bounds the memory journal.
	BufferSize int `yaml:"buffer_size" json:"buffer_size"`

	// RedisKey is the list key used by the redis journal.
	RedisKey string `yaml:"redis_key,omitempty" json:"redis_key,omitempty"`

	// KafkaConfig is used when Type is "kafka".
	KafkaConfig KafkaConfig `yaml:"kafka_config" json:"kafka_config"`
}

// KafkaConfig contains configuration for the Kafka journal.
type KafkaConfig struct {
	Brokers         []string      `yaml:"brokers" json:"brokers"`
	Topic           string        `yaml:"topic" json:"topic"`
	GroupID         string        `yaml:"group_id" json:"group_id"`
	BatchSize       int           `yaml:"batch_size" json:"batch_size"`
	BatchTimeout    time.Duration `yaml:"batch_timeout" json:"batch_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" json:"write_timeout"`
	ReadTimeout     time.Duration `yaml:"read_timeout" json:"read_timeout"`
	RequiredAcks    int           `yaml:"required_acks" json:"required_acks"` // 0, 1, or -1 (all)
	MaxMessageBytes int           `yaml:"max_message_bytes" json:"max_message_bytes"`
	MinBytes        int           `yaml:"min_bytes" json:"min_bytes"`
	MaxBytes        int           `yaml:"max_bytes" json:"max_bytes"`
	MaxWait         time.Duration `yaml:"max_wait" json:"max_wait"`
}

// ProfileConfig is a saved connection profile.
type ProfileConfig struct {
	Hosts    []string  `yaml:"hosts" json:"hosts"`
	Port     int       `yaml:"port,omitempty" json:"port,omitempty"`
	Username string    `yaml:"username,omitempty" json:"username,omitempty"`
	Password string    `yaml:"password,omitempty" json:"password,omitempty"`
	Keyspace string    `yaml:"default_keyspace,omitempty" json:"default_keyspace,omitempty"`
	TLS      TLSConfig `yaml:"tls,omitempty" json:"tls,omitempty"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Cassandra: CassandraConfig{
			Hosts:           []string{"127.0.0.1"},
			Port:            9042,
			Consistency:     "LOCAL_ONE",
			Timeout:         10 * time.Second,
			ConnectTimeout:  10 * time.Second,
			ProtocolVersion: 4,
		},
		Overlay: OverlayConfig{
			Type: "memory",
			RedisConfig: RedisConfig{
				Endpoints:    []string{"localhost:6379"},
				PoolSize:     10,
				MinIdleConns: 2,
			},
			DynamoDBConfig: DynamoDBConfig{
				Region:    "us-east-1",
				TableName: "cqlbrowser-metadata",
			},
			MaxRetries:   3,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Browser: BrowserConfig{
			PageSize:    50,
			ResultCap:   1000,
			EstimateCap: 10000,
		},
		Journal: JournalConfig{
			Type:       "none",
			BufferSize: 1000,
			RedisKey:   "cqlbrowser:journal",
			KafkaConfig: KafkaConfig{
				Brokers:         []string{"localhost:9092"},
				Topic:           "cqlbrowser-mutations",
				GroupID:         "cqlbrowser-mutations",
				BatchSize:       100,
				BatchTimeout:    10 * time.Millisecond,
				WriteTimeout:    10 * time.Second,
				ReadTimeout:     10 * time.Second,
				RequiredAcks:    -1,      // All replicas
				MaxMessageBytes: 1000000, // 1MB
				MinBytes:        1,
				MaxBytes:        10 * 1024 * 1024, // 10MB
				MaxWait:         100 * time.Millisecond,
			},
		},
		Profiles: make(map[string]ProfileConfig),
	}
}

// LoadConfig reads a YAML or JSON file over the defaults. The format is
// chosen by extension (.yaml, .yml or .json).
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".json":
		err = jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("unsupported config file format: %s (supported: .yaml, .yml, .json)", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, nil
}
