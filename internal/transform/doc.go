// Package transform implements document steps, position mapping and the
// Transform builder that accumulates them.
//
// A Step is an atomic, invertible change to a document:
//
//   - ReplaceStep replaces a flat range with new content. Insert and delete
//     are replace steps with an empty range or empty content.
//   - AttrStep updates the attributes of the node at a position.
//   - MarkStep adds or removes a mark over a range of text.
//
// Applying a step never modifies its input document; it returns a new
// snapshot or an error, in which case nothing changed.
//
// Every step reports a StepMap describing how it moved positions. A
// Mapping composes the maps of several steps so positions from the
// document before a transform can be carried into the document after it.
package transform
