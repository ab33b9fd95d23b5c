package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, data []byte) map[string]any {
	t.Helper()
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	return decoded
}

func TestGenerateSchema_SimpleStruct(t *testing.T) {
	type LogConfig struct {
		Level  string `json:"level" jsonschema:"enum=debug,enum=info"`
		Format string `json:"format,omitempty"`
	}

	data, err := GenerateSchema(LogConfig{})
	require.NoError(t, err)

	decoded := decode(t, data)
	properties, ok := decoded["properties"].(map[string]any)
	require.True(t, ok, "properties should be a map")
	assert.Len(t, properties, 2)
	assert.Equal(t, false, decoded["additionalProperties"])

	required, ok := decoded["required"].([]any)
	require.True(t, ok)
	assert.Equal(t, []any{"level"}, required)

	level := properties["level"].(map[string]any)
	assert.Equal(t, []any{"debug", "info"}, level["enum"])
}

func TestGenerateSchema_NestedStruct(t *testing.T) {
	type Loop struct {
		MaxTicks uint64 `json:"max_ticks"`
	}
	type Config struct {
		Loop Loop `json:"loop"`
	}

	data, err := GenerateSchema(Config{})
	require.NoError(t, err)

	decoded := decode(t, data)
	assert.Contains(t, decoded, "$defs")
	assert.Contains(t, string(data), "max_ticks")
}

func TestGenerateSchema_Options(t *testing.T) {
	type Empty struct{}

	data, err := GenerateSchema(Empty{},
		WithID("https://websg.dev/config.schema.json"),
		WithTitle("websg", "host configuration"),
	)
	require.NoError(t, err)

	decoded := decode(t, data)
	assert.Equal(t, "https://websg.dev/config.schema.json", decoded["$id"])
	assert.Equal(t, "websg", decoded["title"])
	assert.Equal(t, "host configuration", decoded["description"])
}
