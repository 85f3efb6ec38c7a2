package editor

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nahidnstu12/team-docs-sub001/internal/document"
	"github.com/nahidnstu12/team-docs-sub001/internal/event"
	"github.com/nahidnstu12/team-docs-sub001/internal/input"
	"github.com/nahidnstu12/team-docs-sub001/internal/palette"
	"github.com/nahidnstu12/team-docs-sub001/internal/pipeline"
	"github.com/nahidnstu12/team-docs-sub001/internal/state"
)

// Default configuration values.
const (
	DefaultMaxUndoEntries = 500
	DefaultGroupDelay     = 500 * time.Millisecond
)

// Option configures an Editor during creation.
type Option func(*Editor)

// WithID sets the session id. A random id is used otherwise.
func WithID(id string) Option {
	return func(e *Editor) {
		if id != "" {
			e.id = id
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Editor) { e.logger = l }
}

// WithTrigger sets the palette trigger character.
func WithTrigger(r rune) Option {
	return func(e *Editor) {
		if r != 0 {
			e.trigger = r
		}
	}
}

// WithHitZone sets the width of the toggle header's click zone.
func WithHitZone(w int) Option {
	return func(e *Editor) {
		if w > 0 {
			e.hitZone = w
		}
	}
}

// WithExempt replaces the container kinds exempt from mark clearing.
func WithExempt(kinds ...document.Kind) Option {
	return func(e *Editor) { e.exempt = kinds }
}

// WithHistory sets the undo depth and the typing group delay.
func WithHistory(maxEntries int, groupDelay time.Duration) Option {
	return func(e *Editor) {
		if maxEntries > 0 {
			e.maxUndo = maxEntries
		}
		if groupDelay >= 0 {
			e.groupDelay = groupDelay
		}
	}
}

// WithEventBus publishes commit and load events on bus.
func WithEventBus(bus *event.Bus) Option {
	return func(e *Editor) { e.bus = bus }
}

// WithMetrics shares metric collectors between editors.
func WithMetrics(pm *pipeline.Metrics, im *input.Metrics) Option {
	return func(e *Editor) {
		e.pipelineMetrics = pm
		e.inputMetrics = im
	}
}

// WithKeymaps loads keymaps after the defaults, overriding their
// bindings.
func WithKeymaps(kms ...*input.Keymap) Option {
	return func(e *Editor) { e.keymaps = append(e.keymaps, kms...) }
}

// WithPaletteItems registers extra palette items after the defaults.
func WithPaletteItems(items ...palette.Item) Option {
	return func(e *Editor) { e.extraItems = append(e.extraItems, items...) }
}

// WithAnchor sets the function placing the palette on screen for the
// cursor of a state. Without it the palette anchors at the origin.
func WithAnchor(fn func(*state.State) palette.Anchor) Option {
	return func(e *Editor) { e.anchor = fn }
}

// WithCommitHook registers a function called after every commit.
func WithCommitHook(fn func(pipeline.Commit)) Option {
	return func(e *Editor) { e.hooks = append(e.hooks, fn) }
}

func newID() string { return uuid.NewString() }
