package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"INFO":    zerolog.InfoLevel,
		"warning": zerolog.WarnLevel,
		" warn ":  zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"off":     zerolog.Disabled,
		"verbose": zerolog.InfoLevel,
		"":        zerolog.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	l, closer, err := New(Config{Level: "warn", Format: FormatJSON, Output: &buf})
	require.NoError(t, err)
	defer closer.Close()

	c := Component(l, "pipeline")
	c.Info().Msg("dropped")
	c.Warn().Str("interceptor", "marks").Msg("recovered")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "pipeline", entry["component"])
	assert.Equal(t, "marks", entry["interceptor"])
}

func TestNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pagedit.log")
	l, closer, err := New(Config{Level: "debug", Format: FormatJSON, Path: path})
	require.NoError(t, err)
	l.Debug().Msg("hello")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"hello"`)
}
