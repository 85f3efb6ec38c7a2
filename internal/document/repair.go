package document

import (
	"fmt"
	"strings"
)

// Repair rewrites a tree so that it satisfies every content rule, keeping
// as much text as possible. It is applied to payloads read from storage
// so that legacy or hand written content still loads. The returned notes
// describe every change.
func Repair(n Node) (Node, []string) {
	var notes []string
	if n.Kind != KindDoc {
		notes = append(notes, fmt.Sprintf("root %s wrapped in doc", n.Kind))
		n = Doc(n)
	}
	out := repair(n, "doc", &notes)
	return out, notes
}

// RepairNode is like Repair for a single node at any level of the tree.
func RepairNode(n Node) Node {
	var notes []string
	return repair(n, n.Kind.String(), &notes)
}

func repair(n Node, path string, notes *[]string) Node {
	if n.Kind.IsLeaf() {
		n.Content = nil
		return n
	}
	if n.Kind.IsTextblock() {
		n.Content = repairInline(n, path, notes)
		return n
	}

	var out, pending []Node
	flush := func() {
		if len(pending) > 0 {
			*notes = append(*notes, fmt.Sprintf("%s: inline content wrapped in paragraph", path))
			out = append(out, P(pending...))
			pending = nil
		}
	}
	for i, c := range n.Content {
		if !c.Kind.Valid() {
			continue
		}
		if c.Kind.IsInline() {
			pending = append(pending, c)
			continue
		}
		flush()
		for _, a := range adapt(n.Kind, c, fmt.Sprintf("%s/%d", path, i), notes) {
			out = append(out, repair(a, fmt.Sprintf("%s/%d:%s", path, i, a.Kind), notes))
		}
	}
	flush()
	n.Content = fillSlots(n.Kind, out, path, notes)
	return n
}

func repairInline(n Node, path string, notes *[]string) []Node {
	var out []Node
	for _, c := range n.Content {
		switch {
		case c.Kind == KindText:
			out = append(out, c)
		case c.Kind == KindHardBreak && n.Kind.Accepts(KindHardBreak):
			out = append(out, c)
		case c.Kind == KindHardBreak && n.Kind == KindCodeBlock:
			out = append(out, T("\n"))
		case c.Kind == KindHardBreak:
			out = append(out, T(" "))
		case c.Kind.Valid():
			*notes = append(*notes, fmt.Sprintf("%s: %s flattened to text", path, c.Kind))
			if text := c.TextContent(); text != "" {
				out = append(out, T(text))
			}
		}
	}
	return NormalizeInline(out)
}

// adapt turns a child the parent does not accept into acceptable nodes.
func adapt(parent Kind, c Node, path string, notes *[]string) []Node {
	if parent.Accepts(c.Kind) {
		return []Node{c}
	}
	*notes = append(*notes, fmt.Sprintf("%s: %s not allowed in %s", path, c.Kind, parent))
	switch {
	case parent.Accepts(KindListItem):
		return []Node{{Kind: KindListItem, Content: unwrapItem(c)}}
	case parent.Accepts(KindTaskItem):
		return []Node{{Kind: KindTaskItem, Content: unwrapItem(c)}}
	case c.Kind == KindToggleSummary:
		return []Node{{Kind: KindParagraph, Content: c.Content}}
	case c.Kind == KindDoc, c.Kind == KindListItem, c.Kind == KindTaskItem:
		return c.Content
	}
	return nil
}

func unwrapItem(c Node) []Node {
	if c.Kind == KindListItem || c.Kind == KindTaskItem {
		return c.Content
	}
	return []Node{c}
}

// fillSlots satisfies required leading slots and minimum counts.
func fillSlots(k Kind, content []Node, path string, notes *[]string) []Node {
	rule := specs[k].content
	if len(rule) > 0 && !rule[0].many && rule[0].group == GroupNone {
		want := rule[0].kind
		switch {
		case len(content) > 0 && content[0].Kind == want:
		case len(content) > 0 && content[0].Kind.IsTextblock() && want.IsTextblock():
			*notes = append(*notes, fmt.Sprintf("%s: %s converted to %s", path, content[0].Kind, want))
			first := content[0]
			content = append([]Node{{Kind: want, Content: InlineFor(want, first.Content)}}, content[1:]...)
		default:
			*notes = append(*notes, fmt.Sprintf("%s: missing %s inserted", path, want))
			content = append([]Node{emptyOf(want)}, content...)
		}
	}
	if k == KindToggle && len(content) == 1 {
		*notes = append(*notes, fmt.Sprintf("%s: empty toggle body filled", path))
		return append(content, P())
	}
	if k.AllowsContent(kindsOf(content)) {
		return content
	}
	last := rule[len(rule)-1]
	if last.min > 0 {
		*notes = append(*notes, fmt.Sprintf("%s: empty %s filled", path, k))
		if last.group == GroupBlock {
			content = append(content, P())
		} else {
			content = append(content, emptyOf(last.kind))
		}
	}
	return content
}

// InlineFor converts inline content for a textblock of kind k. Hard
// breaks and newlines follow k: code blocks keep newlines, blocks that
// allow hard breaks get breaks, and other blocks get spaces. Marks are
// dropped where k does not allow them.
func InlineFor(k Kind, content []Node) []Node {
	var out []Node
	for _, c := range content {
		switch {
		case c.Kind == KindHardBreak:
			switch {
			case k.Accepts(KindHardBreak):
				out = append(out, c)
			case k == KindCodeBlock:
				out = append(out, Node{Kind: KindText, Text: "\n"})
			default:
				out = append(out, Node{Kind: KindText, Text: " "})
			}
		case c.Kind == KindText:
			marks := c.Marks
			if !k.AllowsMarks() {
				marks = nil
			}
			out = append(out, splitLines(k, c.Text, marks)...)
		case c.Kind.IsInline():
			out = append(out, c)
		}
	}
	return NormalizeInline(out)
}

func splitLines(k Kind, text string, marks MarkSet) []Node {
	if k == KindCodeBlock || !strings.Contains(text, "\n") {
		return []Node{{Kind: KindText, Text: text, Marks: marks}}
	}
	if !k.Accepts(KindHardBreak) {
		return []Node{{Kind: KindText, Text: strings.ReplaceAll(text, "\n", " "), Marks: marks}}
	}
	var out []Node
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			out = append(out, Node{Kind: KindHardBreak})
		}
		if line != "" {
			out = append(out, Node{Kind: KindText, Text: line, Marks: marks})
		}
	}
	return out
}

func emptyOf(k Kind) Node {
	switch {
	case k.IsTextblock():
		return Node{Kind: k}
	case k == KindListItem || k == KindTaskItem:
		return Node{Kind: k, Content: []Node{P()}}
	default:
		return P()
	}
}

func kindsOf(content []Node) []Kind {
	out := make([]Kind, len(content))
	for i, c := range content {
		out[i] = c.Kind
	}
	return out
}
