package config

import (
	"time"
)

// InternalConfig represents the internal configuration structure.
// This is a copy of the public Config type to avoid import cycles.
type InternalConfig struct {
	Cassandra InternalCassandraConfig          `yaml:"cassandra" json:"cassandra"`
	Overlay   InternalOverlayConfig            `yaml:"overlay" json:"overlay"`
	Browser   InternalBrowserConfig            `yaml:"browser" json:"browser"`
	Journal   InternalJournalConfig            `yaml:"journal" json:"journal"`
	Profiles  map[string]InternalProfileConfig `yaml:"profiles,omitempty" json:"profiles,omitempty"`

	// Profile names the entry of Profiles to connect with. Empty uses the
	// cassandra section as is.
	Profile string `yaml:"profile,omitempty" json:"profile,omitempty"`
}

// InternalCassandraConfig contains the cluster connection settings.
type InternalCassandraConfig struct {
	Hosts           []string          `yaml:"hosts" json:"hosts"`
	Port            int               `yaml:"port" json:"port"`
	Keyspace        string            `yaml:"keyspace,omitempty" json:"keyspace,omitempty"`
	Username        string            `yaml:"username,omitempty" json:"username,omitempty"`
	Password        string            `yaml:"password,omitempty" json:"password,omitempty"`
	Consistency     string            `yaml:"consistency" json:"consistency"`
	Timeout         time.Duration     `yaml:"timeout" json:"timeout"`
	ConnectTimeout  time.Duration     `yaml:"connect_timeout" json:"connect_timeout"`
	ProtocolVersion int               `yaml:"protocol_version" json:"protocol_version"`
	RateLimit       float64           `yaml:"rate_limit,omitempty" json:"rate_limit,omitempty"` // Statements per second, 0 disables
	TLS             InternalTLSConfig `yaml:"tls" json:"tls"`
}

// InternalTLSConfig contains client TLS settings.
type InternalTLSConfig struct {
	Enabled            bool   `yaml:"enabled" json:"enabled"`
	MinVersion         string `yaml:"min_version,omitempty" json:"min_version,omitempty"`
	CAPath             string `yaml:"ca_path,omitempty" json:"ca_path,omitempty"`
	CertPath           string `yaml:"cert_path,omitempty" json:"cert_path,omitempty"`
	KeyPath            string `yaml:"key_path,omitempty" json:"key_path,omitempty"`
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify,omitempty" json:"insecure_skip_verify,omitempty"`
}

// InternalOverlayConfig contains configuration for the column metadata store.
// Supports multiple backends (memory, Redis, DynamoDB) through a plugin-based architecture.
type InternalOverlayConfig struct {
	Type           string                 `yaml:"type" json:"type"`
	RedisConfig    InternalRedisConfig    `yaml:"redis_config,omitempty" json:"redis_config,omitempty"`
	DynamoDBConfig InternalDynamoDBConfig `yaml:"dynamodb_config,omitempty" json:"dynamodb_config,omitempty"`
	MaxRetries     int                    `yaml:"max_retries,omitempty" json:"max_retries,omitempty"`
	DialTimeout    time.Duration          `yaml:"dial_timeout,omitempty" json:"dial_timeout,omitempty"`
	ReadTimeout    time.Duration          `yaml:"read_timeout,omitempty" json:"read_timeout,omitempty"`
	WriteTimeout   time.Duration          `yaml:"write_timeout,omitempty" json:"write_timeout,omitempty"`
}

// InternalRedisConfig contains Redis-specific configuration.
type InternalRedisConfig struct {
	Endpoints    []string `yaml:"endpoints" json:"endpoints"`
	ClusterMode  bool     `yaml:"cluster_mode,omitempty" json:"cluster_mode,omitempty"`
	Password     string   `yaml:"password,omitempty" json:"password,omitempty"`
	DB           int      `yaml:"db,omitempty" json:"db,omitempty"`
	PoolSize     int      `yaml:"pool_size" json:"pool_size"`
	MinIdleConns int      `yaml:"min_idle_conns" json:"min_idle_conns"`
}

// InternalDynamoDBConfig contains DynamoDB-specific configuration.
type InternalDynamoDBConfig struct {
	Region          string `yaml:"region" json:"region"`
	TableName       string `yaml:"table_name" json:"table_name"`
	Endpoint        string `yaml:"endpoint,omitempty" json:"endpoint,omitempty"`
	AccessKeyID     string `yaml:"access_key_id,omitempty" json:"access_key_id,omitempty"`
	SecretAccessKey string `yaml:"secret_access_key,omitempty" json:"secret_access_key,omitempty"`
}

// InternalBrowserConfig contains data grid settings.
type InternalBrowserConfig struct {
	PageSize    int `yaml:"page_size" json:"page_size"`
	ResultCap   int `yaml:"result_cap" json:"result_cap"`     // LIMIT applied to free-form statements, 0 disables
	EstimateCap int `yaml:"estimate_cap" json:"estimate_cap"` // Upper bound for row count estimates
}

// InternalJournalConfig contains configuration for the mutation journal.
type InternalJournalConfig struct {
	Type        string              `yaml:"type" json:"type"`
	BufferSize  int                 `yaml:"buffer_size" json:"buffer_size"`
	RedisKey    string              `yaml:"redis_key,omitempty" json:"redis_key,omitempty"`
	KafkaConfig InternalKafkaConfig `yaml:"kafka_config" json:"kafka_config"`
}

// InternalKafkaConfig contains Kafka-specific configuration.
type InternalKafkaConfig struct {
	Brokers         []string      `yaml:"brokers" json:"brokers"`
	Topic           string        `yaml:"topic" json:"topic"`
	GroupID         string        `yaml:"group_id" json:"group_id"`
	BatchSize       int           `yaml:"batch_size" json:"batch_size"`
	BatchTimeout    time.Duration `yaml:"batch_timeout" json:"batch_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" json:"write_timeout"`
	ReadTimeout     time.Duration `yaml:"read_timeout" json:"read_timeout"`
	RequiredAcks    int           `yaml:"required_acks" json:"required_acks"`
	MaxMessageBytes int           `yaml:"max_message_bytes" json:"max_message_bytes"`
	MinBytes        int           `yaml:"min_bytes" json:"min_bytes"`
	MaxBytes        int           `yaml:"max_bytes" json:"max_bytes"`
	MaxWait         time.Duration `yaml:"max_wait" json:"max_wait"`
}

// InternalProfileConfig is a saved connection profile. Applying a profile
// overrides the matching fields of the cassandra section.
type InternalProfileConfig struct {
	Hosts    []string          `yaml:"hosts" json:"hosts"`
	Port     int               `yaml:"port,omitempty" json:"port,omitempty"`
	Username string            `yaml:"username,omitempty" json:"username,omitempty"`
	Password string            `yaml:"password,omitempty" json:"password,omitempty"`
	Keyspace string            `yaml:"default_keyspace,omitempty" json:"default_keyspace,omitempty"`
	TLS      InternalTLSConfig `yaml:"tls,omitempty" json:"tls,omitempty"`
}
