package store

import (
	"fmt"

	"github.com/nahidnstu12/team-docs-sub001/internal/document"
)

// Encoding selects how page content is stored.
type Encoding string

// Supported encodings.
const (
	EncodingJSON Encoding = "json"
	EncodingCBOR Encoding = "cbor"
)

// ParseEncoding validates an encoding name.
func ParseEncoding(name string) (Encoding, error) {
	switch e := Encoding(name); e {
	case EncodingJSON, EncodingCBOR:
		return e, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
}

// encode converts a JSON payload into stored content. The payload is
// parsed first so malformed documents never reach the table.
func (e Encoding) encode(payload []byte) ([]byte, error) {
	doc, err := document.ParseJSON(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	switch e {
	case EncodingCBOR:
		return doc.MarshalCBOR()
	case EncodingJSON:
		return doc.MarshalJSON()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, string(e))
	}
}

// decode converts stored content back into a JSON payload.
func (e Encoding) decode(content []byte) ([]byte, error) {
	var (
		doc *document.Document
		err error
	)
	switch e {
	case EncodingCBOR:
		doc, err = document.ParseCBOR(content)
	case EncodingJSON:
		doc, err = document.ParseJSON(content)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, string(e))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	return doc.MarshalJSON()
}
