package document

import "errors"

// Errors returned by the document package.
var (
	// ErrStructuralViolation indicates a node whose content does not match
	// the content rule of its kind.
	ErrStructuralViolation = errors.New("structural violation")

	// ErrPositionOutOfRange indicates a position outside [0, ContentSize].
	ErrPositionOutOfRange = errors.New("position out of range")

	// ErrUnknownKind indicates a node type name that is not part of the schema.
	ErrUnknownKind = errors.New("unknown node kind")

	// ErrUnknownMark indicates a mark type name that is not part of the schema.
	ErrUnknownMark = errors.New("unknown mark type")

	// ErrInvalidPayload indicates a payload that could not be decoded.
	ErrInvalidPayload = errors.New("invalid payload")
)
