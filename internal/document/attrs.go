package document

import (
	"encoding/json"
	"math"
	"sort"
)

// Attrs holds node or mark attributes. Values are bool, int or string.
type Attrs map[string]any

// Bool returns the named attribute as a bool.
func (a Attrs) Bool(name string) bool {
	v, _ := a[name].(bool)
	return v
}

// Int returns the named attribute as an int.
func (a Attrs) Int(name string) int {
	v, _ := a[name].(int)
	return v
}

// String returns the named attribute as a string.
func (a Attrs) String(name string) string {
	v, _ := a[name].(string)
	return v
}

// Clone returns a shallow copy. Attribute values are scalars.
func (a Attrs) Clone() Attrs {
	if a == nil {
		return nil
	}
	out := make(Attrs, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// With returns a copy of a with name set to value.
func (a Attrs) With(name string, value any) Attrs {
	out := a.Clone()
	if out == nil {
		out = Attrs{}
	}
	out[name] = value
	return out
}

// Equal reports whether both attribute maps hold the same values.
// A nil map equals an empty one.
func (a Attrs) Equal(b Attrs) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		w, ok := b[k]
		if !ok || v != w {
			return false
		}
	}
	return true
}

// Keys returns the attribute names in sorted order.
func (a Attrs) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// normalizeAttrs fills defaults, coerces values to the declared type and
// drops undeclared names. The dropped names are returned for logging.
func normalizeAttrs(declared []AttrSpec, in Attrs) (Attrs, []string) {
	var dropped []string
	for k := range in {
		if !declares(declared, k) {
			dropped = append(dropped, k)
		}
	}
	sort.Strings(dropped)
	if len(declared) == 0 {
		return nil, dropped
	}
	out := make(Attrs, len(declared))
	for _, spec := range declared {
		out[spec.Name] = coerce(spec.Default, in[spec.Name])
	}
	return out, dropped
}

func declares(declared []AttrSpec, name string) bool {
	for _, s := range declared {
		if s.Name == name {
			return true
		}
	}
	return false
}

// coerce converts v to the type of def, falling back to def.
func coerce(def, v any) any {
	if v == nil {
		return def
	}
	switch def.(type) {
	case bool:
		if b, ok := v.(bool); ok {
			return b
		}
	case string:
		if s, ok := v.(string); ok {
			return s
		}
	case int:
		if n, ok := toInt(v); ok {
			return n
		}
	}
	return def
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint:
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case uint64:
		if n > math.MaxInt32 {
			return 0, false
		}
		return int(n), true
	case float32:
		return toInt(float64(n))
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	}
	return 0, false
}
