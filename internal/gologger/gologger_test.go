package gologger

import (
	"bytes"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComponent(t *testing.T) {
	t.Setenv("PRETTY", "")
	var buf bytes.Buffer

	logger := component(&buf, "catalog")
	logger.Info().Str("keyspace", "shop").Msg("tables listed")

	var event map[string]interface{}
	require.NoError(t, jsoniter.Unmarshal(buf.Bytes(), &event))
	assert.Equal(t, "catalog", event["component"])
	assert.Equal(t, "shop", event["keyspace"])
	assert.Equal(t, "tables listed", event["message"])
	assert.Equal(t, "info", event["level"])
	assert.Contains(t, event, "time")
	assert.Contains(t, event, "caller")
}
