package loader

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"
)

// DefaultEnvPrefix prefixes every environment override.
const DefaultEnvPrefix = "PAGEDIT_"

// EnvLoader loads configuration from environment variables.
//
// PAGEDIT_EDITOR_HIT_ZONE=40 sets editor.hit_zone: the first word after
// the prefix names the section and the rest, joined by underscores, the
// key.
type EnvLoader struct {
	prefix  string
	environ func() []string
}

// NewEnvLoader creates a loader reading variables with prefix.
func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{prefix: prefix, environ: os.Environ}
}

// NewEnvLoaderFrom reads from a fixed environment, as returned by
// os.Environ.
func NewEnvLoaderFrom(prefix string, env []string) *EnvLoader {
	return &EnvLoader{prefix: prefix, environ: func() []string { return env }}
}

// Load returns the prefixed variables as a nested map.
// Empty values are kept.
func (l *EnvLoader) Load() map[string]any {
	config := make(map[string]any)
	for _, kv := range l.environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, l.prefix) {
			continue
		}
		path, ok := envToPath(strings.TrimPrefix(name, l.prefix))
		if !ok {
			continue
		}
		setPath(config, path, parseValue(value))
	}
	return config
}

// envToPath converts EDITOR_HIT_ZONE to [editor hit_zone].
func envToPath(name string) ([]string, bool) {
	section, key, ok := strings.Cut(strings.ToLower(name), "_")
	if !ok || section == "" || key == "" {
		return nil, false
	}
	return []string{section, key}, true
}

func setPath(data map[string]any, path []string, value any) {
	section, ok := data[path[0]].(map[string]any)
	if !ok {
		section = make(map[string]any)
		data[path[0]] = section
	}
	section[path[1]] = value
}

// parseValue types a raw variable: booleans, integers, JSON arrays and
// comma separated lists are recognised; everything else, durations
// included, stays a string.
func parseValue(s string) any {
	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if strings.HasPrefix(s, "[") {
		var v []any
		if err := json.Unmarshal([]byte(s), &v); err == nil {
			return v
		}
	}
	if len(s) > 1 && strings.Contains(s, ",") {
		parts := strings.Split(s, ",")
		out := make([]any, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return s
}
