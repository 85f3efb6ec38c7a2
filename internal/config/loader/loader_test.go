package loader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFileByExtension(t *testing.T) {
	dir := t.TempDir()
	toml := filepath.Join(dir, "c.toml")
	yml := filepath.Join(dir, "c.yml")
	require.NoError(t, os.WriteFile(toml, []byte("[editor]\ntrigger = \">\"\nhit_zone = 3\n"), 0o644))
	require.NoError(t, os.WriteFile(yml, []byte("editor:\n  trigger: \">\"\n  hit_zone: 3\n"), 0o644))

	fromTOML, err := LoadFile(OSFS{}, toml)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"editor": map[string]any{"trigger": ">", "hit_zone": int64(3)}}, fromTOML)

	fromYAML, err := LoadFile(OSFS{}, yml)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"editor": map[string]any{"trigger": ">", "hit_zone": 3}}, fromYAML)

	missing, err := LoadFile(OSFS{}, filepath.Join(dir, "absent.toml"))
	assert.NoError(t, err)
	assert.Nil(t, missing)

	_, err = LoadFile(OSFS{}, filepath.Join(dir, "c.ini"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestParseErrors(t *testing.T) {
	_, err := ParseTOML("bad.toml", []byte("a = \n"))
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "bad.toml", pe.Path)
	assert.Equal(t, 1, pe.Line)

	_, err = ParseYAML("bad.yaml", []byte("a: [\n"))
	require.True(t, errors.As(err, &pe))
	assert.Contains(t, pe.Error(), "bad.yaml")

	empty, err := ParseYAML("empty.yaml", nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestEnvLoader(t *testing.T) {
	l := NewEnvLoaderFrom(DefaultEnvPrefix, []string{
		"PAGEDIT_EDITOR_HIT_ZONE=40",
		"PAGEDIT_EDITOR_TRIGGER=>",
		"PAGEDIT_EDITOR_EXEMPT=codeBlock, toggle",
		"PAGEDIT_STORE_AUTOSAVE_DELAY=3s",
		"PAGEDIT_SERVER_LISTEN=",
		"PAGEDIT_PLUGINS_ENABLED=yes",
		"PAGEDIT_LOG_LEVEL=debug",
		"PAGEDIT_CONFIG=/etc/pagedit.toml",
		"PATH=/bin",
	})
	assert.Equal(t, map[string]any{
		"editor": map[string]any{
			"hit_zone": int64(40),
			"trigger":  ">",
			"exempt":   []any{"codeBlock", "toggle"},
		},
		"store":   map[string]any{"autosave_delay": "3s"},
		"server":  map[string]any{"listen": ""},
		"plugins": map[string]any{"enabled": true},
		"log":     map[string]any{"level": "debug"},
	}, l.Load())
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"true", true},
		{"OFF", false},
		{"1", int64(1)},
		{"-3", int64(-3)},
		{"[\"a\",\"b\"]", []any{"a", "b"}},
		{"a,b", []any{"a", "b"}},
		{",", ","},
		{"500ms", "500ms"},
		{"/", "/"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseValue(tt.in))
		})
	}
}
