package lua

import (
	lua "github.com/yuin/gopher-lua"
)

// tableString returns t[key] when it is a string.
func tableString(L *lua.LState, t *lua.LTable, key string) (string, bool) {
	s, ok := L.GetField(t, key).(lua.LString)
	return string(s), ok
}

// tableStrings returns the string elements of the array t[key]; a single
// string is returned as a one-element slice.
func tableStrings(L *lua.LState, t *lua.LTable, key string) []string {
	switch v := L.GetField(t, key).(type) {
	case lua.LString:
		return []string{string(v)}
	case *lua.LTable:
		out := make([]string, 0, v.Len())
		for i := 1; i <= v.Len(); i++ {
			if s, ok := v.RawGetInt(i).(lua.LString); ok {
				out = append(out, string(s))
			}
		}
		return out
	default:
		return nil
	}
}

// tableFunc returns t[key] when it is a function.
func tableFunc(L *lua.LState, t *lua.LTable, key string) (*lua.LFunction, bool) {
	fn, ok := L.GetField(t, key).(*lua.LFunction)
	return fn, ok
}

// truthy follows Lua: only nil and false are false.
func truthy(v lua.LValue) bool {
	return v != lua.LNil && v != lua.LFalse
}
