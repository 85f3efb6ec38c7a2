package lua

import (
	"errors"
	"fmt"
)

// Errors for plugin loading and execution.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrExecutionTimeout is returned when a call runs past its timeout.
	ErrExecutionTimeout = errors.New("lua execution timeout")

	// ErrBadItem is returned for an item table missing a field.
	ErrBadItem = errors.New("invalid palette item")
)

// PluginError attributes an error to a plugin file.
type PluginError struct {
	Plugin string
	Err    error
}

func (e *PluginError) Error() string {
	return fmt.Sprintf("plugin %s: %v", e.Plugin, e.Err)
}

func (e *PluginError) Unwrap() error { return e.Err }
