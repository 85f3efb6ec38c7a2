package export

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nahidnstu12/team-docs-sub001/internal/document"
)

// ErrUnknownFormat is returned for an unsupported export format.
var ErrUnknownFormat = errors.New("unknown export format")

// Format is an export format.
type Format string

// Supported formats.
const (
	FormatMarkdown Format = "md"
	FormatHTML     Format = "html"
)

// ParseFormat accepts md, markdown and html, case-insensitively.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "md", "markdown":
		return FormatMarkdown, nil
	case "html", "htm":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatHTML {
		return "text/html; charset=utf-8"
	}
	return "text/markdown; charset=utf-8"
}

// Extension returns the file extension of the format, with the dot.
func (f Format) Extension() string { return "." + string(f) }

// Write renders doc to w in format f.
func Write(w io.Writer, doc *document.Document, f Format) error {
	switch f {
	case FormatMarkdown:
		return Markdown(doc, w)
	case FormatHTML:
		out, err := HTML(doc)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}
}
