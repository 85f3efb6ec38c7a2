// Package document provides the block document model of the editor: a
// closed set of node kinds with content rules, inline marks, a detached
// value tree used for construction and serialization, and an immutable
// arena snapshot addressed by NodeID.
//
// # Kinds
//
// Every Kind has exactly one entry in a fixed spec table. The table
// records the JSON name, the group (block or inline), whether the kind is
// a textblock, whether marks may appear inside it, the attribute defaults
// and the content rule. Code that needs kind specific behavior looks it
// up in the table instead of switching on kinds.
//
// # Positions
//
// Positions are flattened token offsets. Entering or leaving a non-leaf
// node costs one position, every text rune costs one, and every non-text
// leaf costs one. Position 0 is the start of the document content and
// doc.ContentSize() is its end:
//
//	doc(paragraph("ab"), paragraph(""))
//	0  1  a  2  b  3  4  5  6
//
// Resolve turns a position into a ResolvedPos describing the path of
// ancestors, the parent offset and the marks in effect there.
//
// # Snapshots
//
// A Document never changes after New returns it. Edits produce new
// documents (see the transform package). Children are stored as ID lists
// and a reverse parent index replaces parent back-pointers.
//
// # Codec
//
// ParseJSON and MarshalJSON read and write the TipTap compatible JSON
// shape {type, attrs, content, marks, text}. The same shape is available
// as CBOR for compact storage.
package document
