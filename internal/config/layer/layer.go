// Package layer holds configuration layers and merges them by priority.
//
// Each layer is a nested map as decoded from TOML, YAML or the
// environment. Higher priority layers override lower ones key by key;
// nested tables merge recursively.
package layer

import (
	"sort"
	"sync"
	"time"
)

// Source indicates where a layer came from.
type Source uint8

const (
	// SourceBuiltin is the compiled-in defaults.
	SourceBuiltin Source = iota
	// SourceFile is the configuration file.
	SourceFile
	// SourceEnv is PAGEDIT_* environment variables.
	SourceEnv
	// SourceArgs is command-line flags.
	SourceArgs
)

// String returns a human-readable name for the source.
func (s Source) String() string {
	switch s {
	case SourceBuiltin:
		return "defaults"
	case SourceFile:
		return "file"
	case SourceEnv:
		return "environment"
	case SourceArgs:
		return "arguments"
	default:
		return "unknown"
	}
}

// Priority returns the merge priority of the source.
func (s Source) Priority() int {
	switch s {
	case SourceFile:
		return 100
	case SourceEnv:
		return 500
	case SourceArgs:
		return 600
	default:
		return 0
	}
}

// Layer is one configuration source.
type Layer struct {
	// Source indicates where this layer was loaded from.
	Source Source

	// Path is the file path for file layers.
	Path string

	// Data holds the configuration values as a nested map.
	Data map[string]any

	// ModTime is when the layer was loaded.
	ModTime time.Time
}

// New creates a layer holding data.
func New(source Source, data map[string]any) *Layer {
	if data == nil {
		data = make(map[string]any)
	}
	return &Layer{Source: source, Data: data, ModTime: time.Now()}
}

// Clone creates a deep copy of the layer.
func (l *Layer) Clone() *Layer {
	return &Layer{
		Source:  l.Source,
		Path:    l.Path,
		Data:    cloneMap(l.Data),
		ModTime: l.ModTime,
	}
}

// Stack keeps at most one layer per source and merges them in priority
// order.
type Stack struct {
	mu     sync.RWMutex
	layers []*Layer
}

// NewStack creates an empty stack.
func NewStack() *Stack { return &Stack{} }

// Put adds l, replacing any layer with the same source.
func (s *Stack) Put(l *Layer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, cur := range s.layers {
		if cur.Source == l.Source {
			s.layers[i] = l
			return
		}
	}
	s.layers = append(s.layers, l)
	sort.SliceStable(s.layers, func(i, j int) bool {
		return s.layers[i].Source.Priority() < s.layers[j].Source.Priority()
	})
}

// Get returns the layer for source.
func (s *Stack) Get(source Source) (*Layer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.layers {
		if l.Source == source {
			return l, true
		}
	}
	return nil, false
}

// Set writes value at path in the layer for source, creating the layer
// when missing.
func (s *Stack) Set(source Source, path string, value any) {
	l, ok := s.Get(source)
	if !ok {
		l = New(source, nil)
		s.Put(l)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	SetByPath(l.Data, path, value)
}

// Sources returns the sources present, lowest priority first.
func (s *Stack) Sources() []Source {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Source, len(s.layers))
	for i, l := range s.layers {
		out[i] = l.Source
	}
	return out
}

// Merge combines all layers into a single map. The result is a copy.
func (s *Stack) Merge() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make(map[string]any)
	for _, l := range s.layers {
		result = DeepMerge(result, l.Data)
	}
	return result
}

// Origin returns the source of the highest priority layer defining path.
func (s *Stack) Origin(path string) (Source, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.layers) - 1; i >= 0; i-- {
		if _, ok := GetByPath(s.layers[i].Data, path); ok {
			return s.layers[i].Source, true
		}
	}
	return SourceBuiltin, false
}

func cloneMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for key, val := range src {
		dst[key] = cloneValue(val)
	}
	return dst
}

func cloneSlice(src []any) []any {
	if src == nil {
		return nil
	}
	dst := make([]any, len(src))
	for i, val := range src {
		dst[i] = cloneValue(val)
	}
	return dst
}
