package document

import (
	"fmt"
	"strings"
)

// NodeID addresses a node inside one Document snapshot. IDs are only
// meaningful for the snapshot that produced them.
type NodeID int32

// NoNode is returned where no node exists.
const NoNode NodeID = -1

type entry struct {
	kind     Kind
	attrs    Attrs
	text     string
	marks    MarkSet
	children []NodeID
	size     int
}

// Document is an immutable document snapshot stored as an arena. The root
// is always the doc node with ID 0.
type Document struct {
	entries []entry
	parents []NodeID
}

// New validates root and builds a snapshot from it. Attributes are
// normalised and inline content is merged into canonical runs, so two
// structurally equal trees always produce equal snapshots.
func New(root Node) (*Document, error) {
	if root.Kind != KindDoc {
		return nil, fmt.Errorf("%w: root is %s, want doc", ErrStructuralViolation, root.Kind)
	}
	root = Normalize(root)
	if err := Validate(root); err != nil {
		return nil, err
	}
	d := &Document{}
	d.add(root, NoNode)
	return d, nil
}

// MustNew is like New but panics on invalid input. It is intended for
// fixed trees in code and tests.
func MustNew(root Node) *Document {
	d, err := New(root)
	if err != nil {
		panic(err)
	}
	return d
}

// Blank returns a document holding one empty paragraph.
func Blank() *Document {
	return MustNew(Doc(P()))
}

func (d *Document) add(n Node, parent NodeID) NodeID {
	id := NodeID(len(d.entries))
	d.entries = append(d.entries, entry{
		kind:  n.Kind,
		attrs: n.Attrs,
		text:  n.Text,
		marks: n.Marks,
		size:  n.Size(),
	})
	d.parents = append(d.parents, parent)
	if len(n.Content) > 0 {
		children := make([]NodeID, len(n.Content))
		for i, c := range n.Content {
			children[i] = d.add(c, id)
		}
		d.entries[id].children = children
	}
	return id
}

// Normalize returns a copy of n with canonical attributes, heading levels
// clamped to 1..3, marks removed where the parent forbids them and inline
// runs merged.
func Normalize(n Node) Node {
	return normalize(n, KindDoc)
}

func normalize(n Node, parent Kind) Node {
	out := Node{Kind: n.Kind, Text: n.Text}
	out.Attrs, _ = normalizeAttrs(specs[n.Kind].attrs, n.Attrs)
	if n.Kind == KindHeading {
		if l := out.Attrs.Int("level"); l < 1 || l > 3 {
			out.Attrs["level"] = min(max(l, 1), 3)
		}
	}
	if n.Kind.IsInline() && parent.AllowsMarks() && len(n.Marks) > 0 {
		out.Marks = NewMarkSet(n.Marks...)
	}
	if len(n.Content) > 0 {
		content := make([]Node, len(n.Content))
		for i, c := range n.Content {
			content[i] = normalize(c, n.Kind)
		}
		if n.Kind.IsTextblock() {
			content = NormalizeInline(content)
		}
		if len(content) > 0 {
			out.Content = content
		}
	}
	return out
}

// Validate checks every node of the tree against its content rule.
func Validate(n Node) error {
	return validate(n, n.Kind.String())
}

func validate(n Node, path string) error {
	if !n.Kind.Valid() {
		return fmt.Errorf("%w: %s: kind %d", ErrUnknownKind, path, n.Kind)
	}
	if n.Kind == KindText {
		if n.Text == "" {
			return fmt.Errorf("%w: %s: empty text node", ErrStructuralViolation, path)
		}
		return nil
	}
	kinds := make([]Kind, len(n.Content))
	for i, c := range n.Content {
		if !c.Kind.Valid() {
			return fmt.Errorf("%w: %s/%d: kind %d", ErrUnknownKind, path, i, c.Kind)
		}
		kinds[i] = c.Kind
	}
	if !n.Kind.AllowsContent(kinds) {
		names := make([]string, len(kinds))
		for i, k := range kinds {
			names[i] = k.String()
		}
		return fmt.Errorf("%w: %s content [%s] does not match %q",
			ErrStructuralViolation, path, strings.Join(names, " "), n.Kind.ContentRule())
	}
	for i, c := range n.Content {
		if err := validate(c, fmt.Sprintf("%s/%d:%s", path, i, c.Kind)); err != nil {
			return err
		}
	}
	return nil
}

// Root returns the ID of the doc node.
func (d *Document) Root() NodeID { return 0 }

// Len returns the number of nodes in the snapshot.
func (d *Document) Len() int { return len(d.entries) }

// ContentSize returns the size of the root content, the largest valid position.
func (d *Document) ContentSize() int { return d.entries[0].size - 2 }

// Kind returns the kind of node id.
func (d *Document) Kind(id NodeID) Kind { return d.entries[id].kind }

// Attrs returns the attributes of node id. The map must not be modified.
func (d *Document) Attrs(id NodeID) Attrs { return d.entries[id].attrs }

// Text returns the text of a text node.
func (d *Document) Text(id NodeID) string { return d.entries[id].text }

// Marks returns the marks of an inline node.
func (d *Document) Marks(id NodeID) MarkSet { return d.entries[id].marks }

// Size returns the number of positions node id occupies in its parent.
func (d *Document) Size(id NodeID) int { return d.entries[id].size }

// NodeContentSize returns the number of positions inside node id.
func (d *Document) NodeContentSize(id NodeID) int {
	e := d.entries[id]
	if e.kind.IsLeaf() {
		return 0
	}
	return e.size - 2
}

// Children returns the child IDs of node id. The slice must not be modified.
func (d *Document) Children(id NodeID) []NodeID { return d.entries[id].children }

// ChildCount returns the number of children of node id.
func (d *Document) ChildCount(id NodeID) int { return len(d.entries[id].children) }

// Child returns the i-th child of node id, or NoNode.
func (d *Document) Child(id NodeID, i int) NodeID {
	c := d.entries[id].children
	if i < 0 || i >= len(c) {
		return NoNode
	}
	return c[i]
}

// LastChild returns the last child of node id, or NoNode.
func (d *Document) LastChild(id NodeID) NodeID {
	return d.Child(id, d.ChildCount(id)-1)
}

// Parent returns the parent of node id, or NoNode for the root.
func (d *Document) Parent(id NodeID) NodeID { return d.parents[id] }

// Index returns the index of node id among its siblings.
func (d *Document) Index(id NodeID) int {
	p := d.parents[id]
	if p == NoNode {
		return 0
	}
	for i, c := range d.entries[p].children {
		if c == id {
			return i
		}
	}
	return -1
}

// Ancestors returns the ancestors of id from the parent up to the root.
func (d *Document) Ancestors(id NodeID) []NodeID {
	var out []NodeID
	for p := d.parents[id]; p != NoNode; p = d.parents[p] {
		out = append(out, p)
	}
	return out
}

// HasAncestor reports whether id has an ancestor (not itself) matching fn.
func (d *Document) HasAncestor(id NodeID, fn func(Kind) bool) bool {
	for p := d.parents[id]; p != NoNode; p = d.parents[p] {
		if fn(d.entries[p].kind) {
			return true
		}
	}
	return false
}

// PosBefore returns the position directly before node id. The root has no
// position before it and returns -1.
func (d *Document) PosBefore(id NodeID) int {
	p := d.parents[id]
	if p == NoNode {
		return -1
	}
	pos := d.ContentStart(p)
	for _, c := range d.entries[p].children {
		if c == id {
			return pos
		}
		pos += d.entries[c].size
	}
	return -1
}

// ContentStart returns the position of the start of node id's content.
func (d *Document) ContentStart(id NodeID) int {
	if id == 0 {
		return 0
	}
	return d.PosBefore(id) + 1
}

// ContentEnd returns the position of the end of node id's content.
func (d *Document) ContentEnd(id NodeID) int {
	return d.ContentStart(id) + d.NodeContentSize(id)
}

// IsEmptyTextblock reports whether id is a textblock without content.
func (d *Document) IsEmptyTextblock(id NodeID) bool {
	e := d.entries[id]
	return e.kind.IsTextblock() && len(e.children) == 0
}

// TextContent concatenates the text of all text nodes below id.
func (d *Document) TextContent(id NodeID) string {
	var b strings.Builder
	d.Descendants(id, func(c NodeID, _ int) bool {
		if d.entries[c].kind == KindText {
			b.WriteString(d.entries[c].text)
		}
		return true
	})
	return b.String()
}

// Node materialises the subtree rooted at id as a detached tree.
func (d *Document) Node(id NodeID) Node {
	e := d.entries[id]
	n := Node{Kind: e.kind, Attrs: e.attrs.Clone(), Text: e.text}
	if e.marks != nil {
		n.Marks = append(MarkSet(nil), e.marks...)
	}
	if len(e.children) > 0 {
		n.Content = make([]Node, len(e.children))
		for i, c := range e.children {
			n.Content[i] = d.Node(c)
		}
	}
	return n
}

// Tree materialises the whole document.
func (d *Document) Tree() Node { return d.Node(0) }

// Descendants calls fn for every node below id in document order with the
// position before it. Returning false skips the node's children.
func (d *Document) Descendants(id NodeID, fn func(NodeID, int) bool) {
	pos := d.ContentStart(id)
	d.descend(id, pos, fn)
}

func (d *Document) descend(id NodeID, pos int, fn func(NodeID, int) bool) {
	for _, c := range d.entries[id].children {
		if fn(c, pos) && !d.entries[c].kind.IsLeaf() {
			d.descend(c, pos+1, fn)
		}
		pos += d.entries[c].size
	}
}

// NodesBetween calls fn for every node overlapping the range [from, to)
// with the position before it. Returning false skips the node's children.
func (d *Document) NodesBetween(from, to int, fn func(NodeID, int) bool) {
	d.between(0, 0, from, to, fn)
}

func (d *Document) between(id NodeID, start, from, to int, fn func(NodeID, int) bool) {
	pos := start
	for _, c := range d.entries[id].children {
		end := pos + d.entries[c].size
		if end > from && pos < to || from == to && pos <= from && from <= end {
			if fn(c, pos) && !d.entries[c].kind.IsLeaf() {
				d.between(c, pos+1, from, to, fn)
			}
		}
		if pos >= to && from != to {
			break
		}
		pos = end
	}
}

// Textblocks returns every textblock in document order.
func (d *Document) Textblocks() []NodeID {
	var out []NodeID
	d.Descendants(0, func(id NodeID, _ int) bool {
		if d.entries[id].kind.IsTextblock() {
			out = append(out, id)
			return false
		}
		return true
	})
	return out
}

// TextBetween returns the text between from and to, separating textblocks
// with blockSep and rendering hard breaks as newlines.
func (d *Document) TextBetween(from, to int, blockSep string) string {
	var b strings.Builder
	first := true
	d.NodesBetween(from, to, func(id NodeID, pos int) bool {
		e := d.entries[id]
		switch {
		case e.kind.IsTextblock():
			if !first {
				b.WriteString(blockSep)
			}
			first = false
		case e.kind == KindText:
			b.WriteString(sliceRunes(e.text, from-pos, to-pos))
		case e.kind == KindHardBreak:
			b.WriteString("\n")
		}
		return true
	})
	return b.String()
}

// WithNode returns a new snapshot in which the subtree at id is replaced by
// n. The result is validated in full.
func (d *Document) WithNode(id NodeID, n Node) (*Document, error) {
	return New(d.substitute(0, id, n))
}

func (d *Document) substitute(cur, id NodeID, n Node) Node {
	if cur == id {
		return n
	}
	if !d.contains(cur, id) {
		return d.Node(cur)
	}
	e := d.entries[cur]
	out := Node{Kind: e.kind, Attrs: e.attrs.Clone(), Text: e.text, Marks: e.marks}
	out.Content = make([]Node, len(e.children))
	for i, c := range e.children {
		out.Content[i] = d.substitute(c, id, n)
	}
	return out
}

func (d *Document) contains(anc, id NodeID) bool {
	for p := id; p != NoNode; p = d.parents[p] {
		if p == anc {
			return true
		}
	}
	return false
}

// Equal reports whether two snapshots hold structurally equal trees.
func Equal(a, b *Document) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || len(a.entries) != len(b.entries) {
		return false
	}
	return a.Tree().Equal(b.Tree())
}

// String renders the document in a compact debugging form.
func (d *Document) String() string {
	var b strings.Builder
	d.format(&b, 0)
	return b.String()
}

func (d *Document) format(b *strings.Builder, id NodeID) {
	e := d.entries[id]
	if e.kind == KindText {
		if len(e.marks) > 0 {
			b.WriteString(e.marks.String())
		}
		fmt.Fprintf(b, "%q", e.text)
		return
	}
	b.WriteString(e.kind.String())
	if len(e.attrs) > 0 {
		b.WriteString("{")
		for i, k := range e.attrs.Keys() {
			if i > 0 {
				b.WriteString(",")
			}
			fmt.Fprintf(b, "%s=%v", k, e.attrs[k])
		}
		b.WriteString("}")
	}
	if e.kind.IsLeaf() {
		return
	}
	b.WriteString("(")
	for i, c := range e.children {
		if i > 0 {
			b.WriteString(", ")
		}
		d.format(b, c)
	}
	b.WriteString(")")
}
