package store

import "errors"

// Sentinel errors for page persistence.
var (
	// ErrPageNotFound is returned when no page has the requested id.
	ErrPageNotFound = errors.New("page not found")

	// ErrInvalidPayload is returned when a payload does not parse as a
	// document.
	ErrInvalidPayload = errors.New("invalid document payload")

	// ErrUnknownEncoding is returned for an encoding other than json or cbor.
	ErrUnknownEncoding = errors.New("unknown content encoding")

	// ErrNotTracked is returned when flushing a session the autosaver does
	// not track.
	ErrNotTracked = errors.New("session not tracked")
)
