package layer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStackMergeByPriority(t *testing.T) {
	s := NewStack()
	s.Put(New(SourceEnv, map[string]any{"editor": map[string]any{"hit_zone": 7}}))
	s.Put(New(SourceBuiltin, map[string]any{
		"editor": map[string]any{"trigger": "/", "hit_zone": 2},
		"log":    map[string]any{"level": "info"},
	}))
	s.Put(New(SourceFile, map[string]any{"editor": map[string]any{"trigger": ">", "hit_zone": 3}}))

	assert.Equal(t, []Source{SourceBuiltin, SourceFile, SourceEnv}, s.Sources())
	assert.Equal(t, map[string]any{
		"editor": map[string]any{"trigger": ">", "hit_zone": 7},
		"log":    map[string]any{"level": "info"},
	}, s.Merge())

	src, ok := s.Origin("editor.trigger")
	require.True(t, ok)
	assert.Equal(t, SourceFile, src)
	_, ok = s.Origin("editor.missing")
	assert.False(t, ok)
}

func TestStackPutReplaces(t *testing.T) {
	s := NewStack()
	s.Put(New(SourceFile, map[string]any{"a": 1}))
	s.Put(New(SourceFile, map[string]any{"b": 2}))
	assert.Equal(t, map[string]any{"b": 2}, s.Merge())

	s.Set(SourceArgs, "store.dsn", "x.db")
	v, ok := GetByPath(s.Merge(), "store.dsn")
	require.True(t, ok)
	assert.Equal(t, "x.db", v)
}

func TestMergeDoesNotAlias(t *testing.T) {
	src := map[string]any{"list": []any{"a"}, "t": map[string]any{"k": 1}}
	out := DeepMerge(nil, src)
	out["t"].(map[string]any)["k"] = 2
	out["list"].([]any)[0] = "b"
	assert.Equal(t, 1, src["t"].(map[string]any)["k"])
	assert.Equal(t, "a", src["list"].([]any)[0])
}

func TestPaths(t *testing.T) {
	m := map[string]any{}
	SetByPath(m, "a.b.c", 1)
	v, ok := GetByPath(m, "a.b.c")
	require.True(t, ok)
	assert.Equal(t, 1, v)
	_, ok = GetByPath(m, "a.x")
	assert.False(t, ok)
	_, ok = GetByPath(m, "a.b.c.d")
	assert.False(t, ok)
	assert.Equal(t, map[string]any{"a.b.c": 1}, Flatten(m))
}

func TestDiff(t *testing.T) {
	old := map[string]any{"editor": map[string]any{"trigger": "/", "hit_zone": 2, "exempt": []any{"codeBlock"}}}
	cur := map[string]any{"editor": map[string]any{"trigger": "/", "exempt": []any{"toggle"}}, "log": map[string]any{"level": "debug"}}
	assert.Equal(t, []string{"editor.exempt", "editor.hit_zone", "log.level"}, Diff(old, cur))
	assert.Empty(t, Diff(old, old))
}

func TestSourceString(t *testing.T) {
	assert.Equal(t, "environment", SourceEnv.String())
	assert.Equal(t, "unknown", Source(42).String())
}
