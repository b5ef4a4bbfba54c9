package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by LoadFromEnv.
const EnvPrefix = "CQLBROWSER_"

// Consistency levels accepted by cassandra.consistency.
var consistencyLevels = []string{
	"ANY", "ONE", "TWO", "THREE", "QUORUM", "ALL",
	"LOCAL_QUORUM", "EACH_QUORUM", "LOCAL_ONE",
}

// Journal types accepted by journal.type.
var journalTypes = []string{"none", "memory", "redis", "kafka"}

// ConfigValidator is the Strategy interface for validating configuration.
// Each overlay backend (memory, Redis, DynamoDB) provides its own validator
// to validate backend-specific configuration.
type ConfigValidator interface {
	// Validate validates the overlay section for this store type.
	Validate(config *InternalConfig) error

	// Type returns the type identifier for this validator (e.g., "redis", "dynamodb").
	Type() string
}

var (
	// validatorRegistry stores all registered config validators.
	validatorRegistry = make(map[string]ConfigValidator)

	// validatorRegistryMutex protects the validator registry from concurrent access.
	validatorRegistryMutex sync.RWMutex
)

// RegisterValidator registers a config validator.
// This is called automatically by each backend's init() function.
// Panics if validator is nil, type is empty, or type is already registered.
func RegisterValidator(validator ConfigValidator) {
	if validator == nil {
		panic("validator cannot be nil")
	}
	if validator.Type() == "" {
		panic("validator type cannot be empty")
	}

	validatorRegistryMutex.Lock()
	defer validatorRegistryMutex.Unlock()

	if _, exists := validatorRegistry[validator.Type()]; exists {
		panic(fmt.Sprintf("validator for type %q is already registered", validator.Type()))
	}

	validatorRegistry[validator.Type()] = validator
}

// GetValidator retrieves a validator by type.
func GetValidator(validatorType string) (ConfigValidator, bool) {
	validatorRegistryMutex.RLock()
	defer validatorRegistryMutex.RUnlock()

	validator, exists := validatorRegistry[validatorType]
	return validator, exists
}

// ConfigManager handles loading and managing configuration from various sources.
type ConfigManager struct {
	config *InternalConfig
}

// NewConfigManager creates a new configuration manager with default configuration.
func NewConfigManager() *ConfigManager {
	return &ConfigManager{
		config: DefaultInternalConfig(),
	}
}

// DefaultInternalConfig returns a configuration with sensible defaults.
func DefaultInternalConfig() *InternalConfig {
	return &InternalConfig{
		Cassandra: InternalCassandraConfig{
			Hosts:           []string{"127.0.0.1"},
			Port:            9042,
			Consistency:     "LOCAL_ONE",
			Timeout:         10 * time.Second,
			ConnectTimeout:  10 * time.Second,
			ProtocolVersion: 4,
		},
		Overlay: InternalOverlayConfig{
			Type: "memory",
			RedisConfig: InternalRedisConfig{
				Endpoints:    []string{"localhost:6379"},
				PoolSize:     10,
				MinIdleConns: 2,
			},
			DynamoDBConfig: InternalDynamoDBConfig{
				Region:    "us-east-1",
				TableName: "cqlbrowser-metadata",
			},
			MaxRetries:   3,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Browser: InternalBrowserConfig{
			PageSize:    50,
			ResultCap:   1000,
			EstimateCap: 10000,
		},
		Journal: InternalJournalConfig{
			Type:       "none",
			BufferSize: 1000,
			RedisKey:   "cqlbrowser:journal",
			KafkaConfig: InternalKafkaConfig{
				Brokers:         []string{"localhost:9092"},
				Topic:           "cqlbrowser-mutations",
				GroupID:         "cqlbrowser-mutations",
				BatchSize:       100,
				BatchTimeout:    10 * time.Millisecond,
				WriteTimeout:    10 * time.Second,
				ReadTimeout:     10 * time.Second,
				RequiredAcks:    -1, // All replicas
				MaxMessageBytes: 1000000,
				MinBytes:        1,
				MaxBytes:        10 * 1024 * 1024,
				MaxWait:         100 * time.Millisecond,
			},
		},
		Profiles: make(map[string]InternalProfileConfig),
	}
}

// LoadFromFile loads configuration from a YAML or JSON file.
// The file format is determined by the file extension (.yaml, .yml, or .json).
func (cm *ConfigManager) LoadFromFile(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(filePath))
	switch ext {
	case ".yaml", ".yml":
		return cm.LoadFromYAML(data)
	case ".json":
		return cm.LoadFromJSON(data)
	default:
		return fmt.Errorf("unsupported config file format: %s (supported: .yaml, .yml, .json)", ext)
	}
}

// LoadFromYAML loads configuration from YAML data.
func (cm *ConfigManager) LoadFromYAML(data []byte) error {
	config := DefaultInternalConfig()
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to parse YAML config: %w", err)
		}
	}
	return cm.apply(config)
}

// LoadFromJSON loads configuration from JSON data.
func (cm *ConfigManager) LoadFromJSON(data []byte) error {
	config := DefaultInternalConfig()
	if len(data) > 0 {
		if err := json.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to parse JSON config: %w", err)
		}
	}
	return cm.apply(config)
}

// LoadFromEnv loads configuration from environment variables on top of the
// defaults. Variables follow the pattern CQLBROWSER_<SECTION>_<KEY>:
//   - CQLBROWSER_CASSANDRA_HOSTS=10.0.0.1,10.0.0.2
//   - CQLBROWSER_CASSANDRA_PORT=9042
//   - CQLBROWSER_OVERLAY_TYPE=redis
//   - CQLBROWSER_BROWSER_PAGE_SIZE=100
//   - CQLBROWSER_JOURNAL_TYPE=kafka
func (cm *ConfigManager) LoadFromEnv() error {
	config := DefaultInternalConfig()
	applyEnv(config, os.Getenv)
	return cm.apply(config)
}

// ApplyEnv overlays environment variables on the current configuration.
func (cm *ConfigManager) ApplyEnv() error {
	config := cm.clone()
	applyEnv(config, os.Getenv)
	return cm.apply(config)
}

// ApplyProfile copies the named connection profile into the cassandra section.
func (cm *ConfigManager) ApplyProfile(name string) error {
	profile, ok := cm.config.Profiles[name]
	if !ok {
		return fmt.Errorf("unknown profile %q (known: %s)", name, strings.Join(cm.ProfileNames(), ", "))
	}

	config := cm.clone()
	if len(profile.Hosts) > 0 {
		config.Cassandra.Hosts = profile.Hosts
	}
	if profile.Port != 0 {
		config.Cassandra.Port = profile.Port
	}
	config.Cassandra.Username = profile.Username
	config.Cassandra.Password = profile.Password
	if profile.Keyspace != "" {
		config.Cassandra.Keyspace = profile.Keyspace
	}
	config.Cassandra.TLS = profile.TLS
	return cm.apply(config)
}

// ProfileNames returns the configured profile names in sorted order.
func (cm *ConfigManager) ProfileNames() []string {
	names := lo.Keys(cm.config.Profiles)
	sort.Strings(names)
	return names
}

// GetConfig returns the current internal configuration.
func (cm *ConfigManager) GetConfig() *InternalConfig {
	return cm.config
}

func (cm *ConfigManager) apply(config *InternalConfig) error {
	if err := cm.validateConfig(config); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	cm.config = config
	return nil
}

func (cm *ConfigManager) clone() *InternalConfig {
	c := *cm.config
	c.Cassandra.Hosts = append([]string(nil), cm.config.Cassandra.Hosts...)
	c.Profiles = lo.Assign(cm.config.Profiles)
	return &c
}

func applyEnv(config *InternalConfig, getenv func(string) string) {
	env := func(key string) string { return getenv(EnvPrefix + key) }

	// Cassandra configuration
	if val := env("CASSANDRA_HOSTS"); val != "" {
		config.Cassandra.Hosts = splitList(val)
	}
	setInt(&config.Cassandra.Port, env("CASSANDRA_PORT"))
	setString(&config.Cassandra.Keyspace, env("CASSANDRA_KEYSPACE"))
	setString(&config.Cassandra.Username, env("CASSANDRA_USERNAME"))
	setString(&config.Cassandra.Password, env("CASSANDRA_PASSWORD"))
	setString(&config.Cassandra.Consistency, env("CASSANDRA_CONSISTENCY"))
	setDuration(&config.Cassandra.Timeout, env("CASSANDRA_TIMEOUT"))
	setDuration(&config.Cassandra.ConnectTimeout, env("CASSANDRA_CONNECT_TIMEOUT"))
	setInt(&config.Cassandra.ProtocolVersion, env("CASSANDRA_PROTOCOL_VERSION"))
	if val := env("CASSANDRA_RATE_LIMIT"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			config.Cassandra.RateLimit = f
		}
	}
	setBool(&config.Cassandra.TLS.Enabled, env("CASSANDRA_TLS_ENABLED"))
	setString(&config.Cassandra.TLS.MinVersion, env("CASSANDRA_TLS_MIN_VERSION"))
	setString(&config.Cassandra.TLS.CAPath, env("CASSANDRA_TLS_CA_PATH"))
	setBool(&config.Cassandra.TLS.InsecureSkipVerify, env("CASSANDRA_TLS_INSECURE_SKIP_VERIFY"))

	// Overlay store configuration
	setString(&config.Overlay.Type, env("OVERLAY_TYPE"))
	if val := env("OVERLAY_ENDPOINTS"); val != "" {
		config.Overlay.RedisConfig.Endpoints = splitList(val)
	}
	setBool(&config.Overlay.RedisConfig.ClusterMode, env("OVERLAY_CLUSTER_MODE"))
	setString(&config.Overlay.RedisConfig.Password, env("OVERLAY_PASSWORD"))
	setInt(&config.Overlay.RedisConfig.DB, env("OVERLAY_DB"))
	setInt(&config.Overlay.RedisConfig.PoolSize, env("OVERLAY_POOL_SIZE"))
	setString(&config.Overlay.DynamoDBConfig.Region, env("OVERLAY_REGION"))
	setString(&config.Overlay.DynamoDBConfig.TableName, env("OVERLAY_TABLE_NAME"))
	setString(&config.Overlay.DynamoDBConfig.Endpoint, env("OVERLAY_ENDPOINT"))
	setInt(&config.Overlay.MaxRetries, env("OVERLAY_MAX_RETRIES"))

	// Browser configuration
	setInt(&config.Browser.PageSize, env("BROWSER_PAGE_SIZE"))
	setInt(&config.Browser.ResultCap, env("BROWSER_RESULT_CAP"))
	setInt(&config.Browser.EstimateCap, env("BROWSER_ESTIMATE_CAP"))

	// Journal configuration
	setString(&config.Journal.Type, env("JOURNAL_TYPE"))
	setInt(&config.Journal.BufferSize, env("JOURNAL_BUFFER_SIZE"))
	if val := env("JOURNAL_BROKERS"); val != "" {
		config.Journal.KafkaConfig.Brokers = splitList(val)
	}
	setString(&config.Journal.KafkaConfig.Topic, env("JOURNAL_TOPIC"))

	setString(&config.Profile, env("PROFILE"))
}

func splitList(val string) []string {
	return lo.Compact(lo.Map(strings.Split(val, ","), func(s string, _ int) string {
		return strings.TrimSpace(s)
	}))
}

func setString(dst *string, val string) {
	if val != "" {
		*dst = val
	}
}

func setInt(dst *int, val string) {
	if n, err := strconv.Atoi(val); err == nil {
		*dst = n
	}
}

func setBool(dst *bool, val string) {
	if val != "" {
		*dst = val == "true" || val == "1"
	}
}

func setDuration(dst *time.Duration, val string) {
	if d, err := time.ParseDuration(val); err == nil {
		*dst = d
	}
}

// validateConfig validates the configuration and returns an error if invalid.
// Overlay validation is delegated to the validator registered for its type.
func (cm *ConfigManager) validateConfig(config *InternalConfig) error {
	// Validate Cassandra configuration
	c := config.Cassandra
	if len(c.Hosts) == 0 {
		return fmt.Errorf("cassandra.hosts is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("cassandra.port must be between 1 and 65535")
	}
	if !lo.Contains(consistencyLevels, strings.ToUpper(c.Consistency)) {
		return fmt.Errorf("cassandra.consistency %q is not a valid consistency level", c.Consistency)
	}
	if c.ProtocolVersion < 3 || c.ProtocolVersion > 5 {
		return fmt.Errorf("cassandra.protocol_version must be between 3 and 5")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("cassandra.timeout must be greater than 0")
	}
	if c.ConnectTimeout <= 0 {
		return fmt.Errorf("cassandra.connect_timeout must be greater than 0")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("cassandra.rate_limit must be non-negative")
	}
	if _, err := ParseTLSVersion(c.TLS.MinVersion); err != nil {
		return fmt.Errorf("cassandra.tls.min_version: %w", err)
	}
	if (c.TLS.CertPath == "") != (c.TLS.KeyPath == "") {
		return fmt.Errorf("cassandra.tls.cert_path and cassandra.tls.key_path must be set together")
	}

	// Validate overlay configuration using the registered strategy
	if config.Overlay.Type == "" {
		return fmt.Errorf("overlay.type is required")
	}
	validator, exists := GetValidator(config.Overlay.Type)
	if !exists {
		return fmt.Errorf("unsupported overlay store type: %s", config.Overlay.Type)
	}
	if err := validator.Validate(config); err != nil {
		return fmt.Errorf("overlay validation failed: %w", err)
	}

	// Validate browser configuration
	if config.Browser.PageSize < 10 || config.Browser.PageSize > 500 {
		return fmt.Errorf("browser.page_size must be between 10 and 500")
	}
	if config.Browser.ResultCap < 0 {
		return fmt.Errorf("browser.result_cap must be non-negative")
	}
	if config.Browser.EstimateCap <= 0 {
		return fmt.Errorf("browser.estimate_cap must be greater than 0")
	}

	// Validate journal configuration
	j := config.Journal
	if !lo.Contains(journalTypes, j.Type) {
		return fmt.Errorf("journal.type must be one of %s", strings.Join(journalTypes, ", "))
	}
	if j.Type == "memory" && j.BufferSize <= 0 {
		return fmt.Errorf("journal.buffer_size must be greater than 0")
	}
	if j.Type == "redis" {
		if len(config.Overlay.RedisConfig.Endpoints) == 0 {
			return fmt.Errorf("overlay.redis_config.endpoints is required when journal.type is 'redis'")
		}
		if j.RedisKey == "" {
			return fmt.Errorf("journal.redis_key is required when journal.type is 'redis'")
		}
	}
	if j.Type == "kafka" {
		if len(j.KafkaConfig.Brokers) == 0 {
			return fmt.Errorf("kafka_config.brokers is required when journal.type is 'kafka'")
		}
		if j.KafkaConfig.Topic == "" {
			return fmt.Errorf("kafka_config.topic is required when journal.type is 'kafka'")
		}
	}

	// Validate profiles
	if config.Profile != "" {
		if _, ok := config.Profiles[config.Profile]; !ok {
			return fmt.Errorf("profile %q is not defined in profiles", config.Profile)
		}
	}
	for name, p := range config.Profiles {
		if len(p.Hosts) == 0 {
			return fmt.Errorf("profiles.%s.hosts is required", name)
		}
		if p.Port < 0 || p.Port > 65535 {
			return fmt.Errorf("profiles.%s.port must be between 1 and 65535", name)
		}
	}

	return nil
}
