package cqlbrowser

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rzpsarthak13/cqlbrowser/internal/config"
	_ "github.com/rzpsarthak13/cqlbrowser/internal/kvstore"
)

func TestDefaultConfigMatchesInternalDefaults(t *testing.T) {
	data, err := (&configProvider{config: DefaultConfig()}).GetYAML()
	require.NoError(t, err)

	cm := config.NewConfigManager()
	require.NoError(t, cm.LoadFromYAML(data))
	assert.Equal(t, config.DefaultInternalConfig(), cm.GetConfig())
}

func TestConfigHandoff(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Cassandra.Hosts = []string{"db-1"}
	cfg.Cassandra.Timeout = 3 * time.Second
	cfg.Cassandra.TLS = TLSConfig{Enabled: true, MinVersion: "TLSv1.3"}
	cfg.Overlay.Type = "dynamodb"
	cfg.Overlay.DynamoDBConfig.TableName = "meta"
	cfg.Journal.Type = "kafka"
	cfg.Journal.KafkaConfig.Topic = "writes"
	cfg.Profiles["prod"] = ProfileConfig{Hosts: []string{"prod-1"}, Keyspace: "shop"}
	cfg.Profile = "prod"

	data, err := (&configProvider{config: cfg}).GetYAML()
	require.NoError(t, err)

	cm := config.NewConfigManager()
	require.NoError(t, cm.LoadFromYAML(data))

	got := cm.GetConfig()
	assert.Equal(t, []string{"db-1"}, got.Cassandra.Hosts)
	assert.Equal(t, 3*time.Second, got.Cassandra.Timeout)
	assert.True(t, got.Cassandra.TLS.Enabled)
	assert.Equal(t, "TLSv1.3", got.Cassandra.TLS.MinVersion)
	assert.Equal(t, "meta", got.Overlay.DynamoDBConfig.TableName)
	assert.Equal(t, "writes", got.Journal.KafkaConfig.Topic)
	assert.Equal(t, "shop", got.Profiles["prod"].Keyspace)
	assert.Equal(t, "prod", got.Profile)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "browser.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("cassandra:\n  keyspace: shop\nbrowser:\n  page_size: 25\n"), 0o600))
	cfg, err := LoadConfig(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, "shop", cfg.Cassandra.Keyspace)
	assert.Equal(t, 25, cfg.Browser.PageSize)
	assert.Equal(t, 9042, cfg.Cassandra.Port)

	jsonPath := filepath.Join(dir, "browser.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"journal":{"type":"memory"}}`), 0o600))
	cfg, err = LoadConfig(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Journal.Type)

	_, err = LoadConfig(filepath.Join(dir, "browser.ini"))
	assert.Error(t, err)
}

func TestNewClient_NilConfig(t *testing.T) {
	_, err := NewClient(nil)
	assert.ErrorContains(t, err, "config cannot be nil")
}
