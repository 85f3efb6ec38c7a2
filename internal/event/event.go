package event

import (
	"time"

	"github.com/google/uuid"
)

// Event is an immutable event with a typed payload.
type Event[T any] struct {
	Type     Topic
	Payload  T
	Metadata Metadata
}

// Metadata is attached to every event.
type Metadata struct {
	ID        string
	Timestamp time.Time
	// Source identifies the publishing component.
	Source string
}

// NewEvent creates an event with a fresh ID.
func NewEvent[T any](t Topic, payload T, source string) Event[T] {
	return Event[T]{
		Type:    t,
		Payload: payload,
		Metadata: Metadata{
			ID:        uuid.NewString(),
			Timestamp: time.Now(),
			Source:    source,
		},
	}
}

// EventTopic returns the event's topic for type-erased handling.
func (e Event[T]) EventTopic() Topic { return e.Type }

// topicOf extracts the topic of a type-erased event.
func topicOf(ev any) Topic {
	if t, ok := ev.(interface{ EventTopic() Topic }); ok {
		return t.EventTopic()
	}
	return ""
}

// Committed is published after every pipeline commit.
type Committed struct {
	// Session identifies the editing session, if any.
	Session string
	// Version counts commits since the document was loaded.
	Version uint64
	// Payload is the JSON encoding of the committed document.
	Payload []byte
	// DocChanged is false for selection or stored mark only commits.
	DocChanged bool
	// Amendments lists the interceptors that amended the commit.
	Amendments []string
}

// Loaded is published when an editor replaces its document.
type Loaded struct {
	Session string
	// Repaired is set when the loaded document had to be amended.
	Repaired bool
}

// Saved is published when a page was persisted.
type Saved struct {
	PageID  string
	Version uint64
	Err     error
}
