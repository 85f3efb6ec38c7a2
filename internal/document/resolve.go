package document

import "fmt"

type level struct {
	node  NodeID
	start int // position of the node's content start
	index int // index of the child at or after the position
	off   int // content offset of that child's start
}

// ResolvedPos is a position annotated with its ancestor path.
type ResolvedPos struct {
	Pos    int
	doc    *Document
	levels []level
}

// Resolve annotates pos with the path of nodes that contain it.
func (d *Document) Resolve(pos int) (*ResolvedPos, error) {
	if pos < 0 || pos > d.ContentSize() {
		return nil, fmt.Errorf("%w: %d not in [0,%d]", ErrPositionOutOfRange, pos, d.ContentSize())
	}
	rp := &ResolvedPos{Pos: pos, doc: d}
	node, start := d.Root(), 0
	for {
		rel := pos - start
		idx, off := len(d.entries[node].children), rel
		acc := 0
		for i, c := range d.entries[node].children {
			end := acc + d.entries[c].size
			if rel < end {
				idx, off = i, acc
				break
			}
			acc = end
		}
		rp.levels = append(rp.levels, level{node: node, start: start, index: idx, off: off})
		if idx == len(d.entries[node].children) || rel == off {
			break
		}
		child := d.entries[node].children[idx]
		if d.entries[child].kind.IsLeaf() {
			break
		}
		node, start = child, start+off+1
	}
	return rp, nil
}

// Doc returns the document the position was resolved in.
func (r *ResolvedPos) Doc() *Document { return r.doc }

// Depth returns the depth of the innermost parent; the doc is depth 0.
func (r *ResolvedPos) Depth() int { return len(r.levels) - 1 }

func (r *ResolvedPos) at(depth int) level {
	if depth < 0 {
		depth = r.Depth() + 1 + depth
	}
	return r.levels[depth]
}

// Node returns the ancestor at depth.
func (r *ResolvedPos) Node(depth int) NodeID { return r.at(depth).node }

// Parent returns the innermost node containing the position.
func (r *ResolvedPos) Parent() NodeID { return r.levels[len(r.levels)-1].node }

// Index returns the index of the child at or after the position at depth.
func (r *ResolvedPos) Index(depth int) int { return r.at(depth).index }

// Start returns the content start of the ancestor at depth.
func (r *ResolvedPos) Start(depth int) int { return r.at(depth).start }

// End returns the content end of the ancestor at depth.
func (r *ResolvedPos) End(depth int) int {
	l := r.at(depth)
	return l.start + r.doc.NodeContentSize(l.node)
}

// Before returns the position before the ancestor at depth (depth >= 1).
func (r *ResolvedPos) Before(depth int) int { return r.Start(depth) - 1 }

// After returns the position after the ancestor at depth (depth >= 1).
func (r *ResolvedPos) After(depth int) int { return r.End(depth) + 1 }

// ParentOffset returns the offset of the position inside its parent.
func (r *ResolvedPos) ParentOffset() int { return r.Pos - r.levels[len(r.levels)-1].start }

// TextOffset returns the offset into the text run containing the position,
// or 0 at a node boundary.
func (r *ResolvedPos) TextOffset() int {
	l := r.levels[len(r.levels)-1]
	return r.Pos - l.start - l.off
}

// InTextblock reports whether the parent is a textblock.
func (r *ResolvedPos) InTextblock() bool {
	return r.doc.Kind(r.Parent()).IsTextblock()
}

// AtStart reports whether the position is at the start of its parent.
func (r *ResolvedPos) AtStart() bool { return r.ParentOffset() == 0 }

// AtEnd reports whether the position is at the end of its parent.
func (r *ResolvedPos) AtEnd() bool {
	return r.Pos == r.End(r.Depth())
}

// NodeAfter returns the child starting at or containing the position, or
// NoNode at the end of the parent.
func (r *ResolvedPos) NodeAfter() NodeID {
	l := r.levels[len(r.levels)-1]
	return r.doc.Child(l.node, l.index)
}

// NodeBefore returns the child ending at or containing the position, or
// NoNode at the start of the parent.
func (r *ResolvedPos) NodeBefore() NodeID {
	l := r.levels[len(r.levels)-1]
	if r.TextOffset() > 0 {
		return r.doc.Child(l.node, l.index)
	}
	return r.doc.Child(l.node, l.index-1)
}

// Marks returns the marks text inserted at the position would receive.
// Inside a run that is the run's marks; at a boundary it is the marks of
// the run before (or after, at the start of the parent) minus
// non-inclusive marks the run after does not share.
func (r *ResolvedPos) Marks() MarkSet {
	parent := r.Parent()
	if r.doc.ChildCount(parent) == 0 || !r.doc.Kind(parent).AllowsMarks() {
		return nil
	}
	if r.TextOffset() > 0 {
		return r.doc.Marks(r.NodeAfter())
	}
	main, other := r.NodeBefore(), r.NodeAfter()
	if main == NoNode {
		main, other = other, NoNode
	}
	if main == NoNode {
		return nil
	}
	marks := r.doc.Marks(main)
	for _, m := range marks {
		if m.Type.Inclusive() {
			continue
		}
		if other == NoNode || !r.doc.Marks(other).Contains(m) {
			marks = marks.Remove(m.Type)
		}
	}
	return marks
}

// SharedDepth returns the depth of the deepest ancestor that also contains pos.
func (r *ResolvedPos) SharedDepth(pos int) int {
	for d := r.Depth(); d > 0; d-- {
		if r.Start(d) <= pos && r.End(d) >= pos {
			return d
		}
	}
	return 0
}

// Ancestor returns the depth of the innermost ancestor matching fn, or -1.
func (r *ResolvedPos) Ancestor(fn func(Kind) bool) int {
	for d := r.Depth(); d >= 0; d-- {
		if fn(r.doc.Kind(r.Node(d))) {
			return d
		}
	}
	return -1
}

func (r *ResolvedPos) String() string {
	return fmt.Sprintf("%d(%s@%d)", r.Pos, r.doc.Kind(r.Parent()), r.ParentOffset())
}
