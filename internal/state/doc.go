// Package state holds the immutable editor state and the transactions that
// move it forward.
//
// A State is a document snapshot, a Selection and the stored marks: the
// marks the next typed character will receive. Stored marks have three
// states. Unset means they are derived from the text before the cursor,
// an explicitly empty set means typing produces plain text, and a non-empty
// set overrides the derived marks.
//
// A Transaction is a Transform plus selection, stored mark and metadata
// updates. State.Apply turns a transaction into the next State. When a
// transaction does not set the selection, the previous selection is
// mapped through its steps; positions that end up outside any textblock
// are clamped to the nearest valid text position.
package state
