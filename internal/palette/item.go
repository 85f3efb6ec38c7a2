package palette

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nahidnstu12/team-docs-sub001/internal/command"
)

// Errors returned by the palette.
var (
	ErrInvalidItem   = errors.New("invalid palette item")
	ErrDuplicateItem = errors.New("duplicate palette item")
	ErrNoItem        = errors.New("no palette item selected")
	ErrNotApplicable = errors.New("command not applicable")
)

// Item is a command palette entry.
type Item struct {
	// ID is the unique item identifier (e.g. "heading1").
	ID string

	// Title is the display name.
	Title string

	// Subtitle is a one-line description shown under the title.
	Subtitle string

	// Icon is a short glyph drawn next to the title.
	Icon string

	// Keywords are matched against the query.
	Keywords []string

	// Group names the section the item is listed under.
	Group string

	// Command runs when the item is invoked.
	Command command.Command

	// Source tells where the item was registered: "core" or "plugin:<name>".
	Source string
}

// Validate checks that the item can be registered.
func (it *Item) Validate() error {
	switch {
	case it.ID == "":
		return fmt.Errorf("%w: empty id", ErrInvalidItem)
	case it.Title == "":
		return fmt.Errorf("%w: %s: empty title", ErrInvalidItem, it.ID)
	case len(it.Keywords) == 0:
		return fmt.Errorf("%w: %s: no keywords", ErrInvalidItem, it.ID)
	case it.Command == nil:
		return fmt.Errorf("%w: %s: no command", ErrInvalidItem, it.ID)
	}
	return nil
}

// Matches reports whether query is a case-insensitive substring of one of
// the item's keywords. An empty query matches every item.
func (it *Item) Matches(query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	for _, kw := range it.Keywords {
		if strings.Contains(strings.ToLower(kw), q) {
			return true
		}
	}
	return false
}

// InvocationError reports a palette command that failed to run. It is
// logged by the caller and never re-raised to the user.
type InvocationError struct {
	ItemID string
	Err    error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("palette item %q: %v", e.ItemID, e.Err)
}

func (e *InvocationError) Unwrap() error { return e.Err }
