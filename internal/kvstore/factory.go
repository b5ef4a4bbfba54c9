package kvstore

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rzpsarthak13/cqlbrowser/internal/config"
	"github.com/rzpsarthak13/cqlbrowser/internal/core"
	"github.com/rzpsarthak13/cqlbrowser/internal/gologger"
)

var logger = gologger.Component("kvstore")

// KVStoreFactory is the Strategy interface for creating KV store implementations.
// Each backend (memory, Redis, DynamoDB) implements this interface to provide
// its own factory method.
type KVStoreFactory interface {
	// Create creates a new KV store instance based on the provided configuration.
	Create(config KVStoreConfig) (core.KVStore, error)

	// Type returns the type identifier for this factory (e.g., "redis", "dynamodb").
	Type() string

	// Validate validates the configuration specific to this KV store type.
	Validate(config KVStoreConfig) error
}

// KVStoreConfig represents the configuration needed to create a KV store.
type KVStoreConfig struct {
	Type         string
	Endpoints    []string
	ClusterMode  bool
	Password     string
	DB           int
	MaxRetries   int
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// DynamoDB-specific fields
	Region          string
	TableName       string
	Endpoint        string // Optional, for LocalStack
	AccessKeyID     string // Optional, can use IAM role instead
	SecretAccessKey string // Optional, can use IAM role instead
}

// ConfigFromOverlay flattens the overlay section into a KVStoreConfig.
func ConfigFromOverlay(o config.InternalOverlayConfig) KVStoreConfig {
	return KVStoreConfig{
		Type:            o.Type,
		Endpoints:       o.RedisConfig.Endpoints,
		ClusterMode:     o.RedisConfig.ClusterMode,
		Password:        o.RedisConfig.Password,
		DB:              o.RedisConfig.DB,
		MaxRetries:      o.MaxRetries,
		PoolSize:        o.RedisConfig.PoolSize,
		MinIdleConns:    o.RedisConfig.MinIdleConns,
		DialTimeout:     o.DialTimeout,
		ReadTimeout:     o.ReadTimeout,
		WriteTimeout:    o.WriteTimeout,
		Region:          o.DynamoDBConfig.Region,
		TableName:       o.DynamoDBConfig.TableName,
		Endpoint:        o.DynamoDBConfig.Endpoint,
		AccessKeyID:     o.DynamoDBConfig.AccessKeyID,
		SecretAccessKey: o.DynamoDBConfig.SecretAccessKey,
	}
}

var (
	// factoryRegistry stores all registered KV store factories.
	factoryRegistry = make(map[string]KVStoreFactory)

	// registryMutex protects the registries from concurrent access.
	registryMutex sync.RWMutex
)

// RegisterFactory registers a KV store factory.
// This is called automatically by each implementation's init() function.
func RegisterFactory(factory KVStoreFactory) {
	if factory == nil {
		panic("factory cannot be nil")
	}
	if factory.Type() == "" {
		panic("factory type cannot be empty")
	}

	registryMutex.Lock()
	defer registryMutex.Unlock()

	if _, exists := factoryRegistry[factory.Type()]; exists {
		panic(fmt.Sprintf("factory for type %q is already registered", factory.Type()))
	}

	factoryRegistry[factory.Type()] = factory
}

// Create creates a KV store instance using the factory registered for config.Type.
func Create(config KVStoreConfig) (core.KVStore, error) {
	if config.Type == "" {
		return nil, fmt.Errorf("kvstore type is required")
	}

	registryMutex.RLock()
	factory, exists := factoryRegistry[config.Type]
	registryMutex.RUnlock()

	if !exists {
		return nil, fmt.Errorf("unsupported KV store type: %s", config.Type)
	}

	if err := factory.Validate(config); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", config.Type, err)
	}

	store, err := factory.Create(config)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("type", config.Type).Msg("kv store ready")
	return store, nil
}

// GetRegisteredTypes returns all registered KV store types in sorted order.
func GetRegisteredTypes() []string {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	types := make([]string, 0, len(factoryRegistry))
	for t := range factoryRegistry {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// IsTypeRegistered checks if a KV store type is registered.
func IsTypeRegistered(storeType string) bool {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	_, exists := factoryRegistry[storeType]
	return exists
}

// validateTimeouts checks the timeouts shared by the network backends.
func validateTimeouts(o config.InternalOverlayConfig) error {
	if o.DialTimeout <= 0 {
		return fmt.Errorf("dial_timeout must be greater than 0, got: %v", o.DialTimeout)
	}
	if o.ReadTimeout <= 0 {
		return fmt.Errorf("read_timeout must be greater than 0, got: %v", o.ReadTimeout)
	}
	if o.WriteTimeout <= 0 {
		return fmt.Errorf("write_timeout must be greater than 0, got: %v", o.WriteTimeout)
	}
	if o.MaxRetries < 0 {
		return fmt.Errorf("max_retries must be non-negative, got: %d", o.MaxRetries)
	}
	return nil
}
