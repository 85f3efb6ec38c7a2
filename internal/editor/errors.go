package editor

import "errors"

// Errors returned by the editor.
var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrNotApplicable  = errors.New("command does not apply")
	ErrInvalidPayload = errors.New("cannot load document")
)
