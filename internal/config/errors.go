package config

import (
	"errors"
	"fmt"

	"github.com/nahidnstu12/team-docs-sub001/internal/config/loader"
)

// Errors returned by configuration operations.
var (
	// ErrNotLoaded indicates Settings or Reload was called before Load.
	ErrNotLoaded = errors.New("configuration not loaded")

	// ErrValidationFailed indicates the merged configuration is invalid.
	ErrValidationFailed = errors.New("validation failed")
)

// ParseError is returned when a configuration file cannot be decoded.
type ParseError = loader.ParseError

// ValidationError describes a setting that failed validation.
type ValidationError struct {
	// Path is the setting path, e.g. "editor.trigger".
	Path string
	// Message describes the problem.
	Message string
	// Value is the rejected value.
	Value any
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (value: %v)", e.Path, e.Message, e.Value)
}

// Is makes errors.Is(err, ErrValidationFailed) hold.
func (e *ValidationError) Is(target error) bool { return target == ErrValidationFailed }
