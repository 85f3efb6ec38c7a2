package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	md "github.com/nao1215/markdown"

	"github.com/nahidnstu12/team-docs-sub001/internal/document"
)

var mdEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"[", `\[`,
	"]", `\]`,
	"<", "&lt;",
)

// Markdown writes doc to w as CommonMark with GitHub extensions.
func Markdown(doc *document.Document, w io.Writer) error {
	m := md.NewMarkdown(w)
	r := mdRenderer{doc: doc}
	r.blocks(m, doc.Root())
	return m.Build()
}

type mdRenderer struct {
	doc *document.Document
}

// blocks writes the children of parent separated by blank lines.
func (r mdRenderer) blocks(m *md.Markdown, parent document.NodeID) {
	for i, id := range r.doc.Children(parent) {
		if i > 0 {
			m.PlainText("")
		}
		r.block(m, id)
	}
}

// nested renders the block children of parent, skipping the first skip
// children, into a standalone string.
func (r mdRenderer) nested(parent document.NodeID, skip int) string {
	m := md.NewMarkdown(io.Discard)
	for i, id := range r.doc.Children(parent)[skip:] {
		if i > 0 {
			m.PlainText("")
		}
		r.block(m, id)
	}
	return strings.TrimRight(m.String(), "\n")
}

func (r mdRenderer) block(m *md.Markdown, id document.NodeID) {
	doc := r.doc
	switch doc.Kind(id) {
	case document.KindParagraph:
		m.PlainText(r.inline(id))
	case document.KindHeading:
		text := r.inline(id)
		switch doc.Attrs(id).Int("level") {
		case 1:
			m.H1(text)
		case 2:
			m.H2(text)
		default:
			m.H3(text)
		}
	case document.KindCodeBlock:
		m.CodeBlocks(md.SyntaxHighlight(doc.Attrs(id).String("language")), doc.TextContent(id))
	case document.KindBlockquote:
		if r.simple(id, 0) {
			m.Blockquote(r.inline(doc.Child(id, 0)))
			return
		}
		m.PlainText(prefixLines(r.nested(id, 0), "> ", ">"))
	case document.KindBulletList:
		if texts, ok := r.simpleItems(id); ok {
			m.BulletList(texts...)
			return
		}
		r.items(m, id, func(int) string { return "- " })
	case document.KindOrderedList:
		start := doc.Attrs(id).Int("start")
		if texts, ok := r.simpleItems(id); ok && start == 1 {
			m.OrderedList(texts...)
			return
		}
		r.items(m, id, func(i int) string { return strconv.Itoa(start+i) + ". " })
	case document.KindTaskList:
		if texts, ok := r.simpleItems(id); ok {
			set := make([]md.CheckBoxSet, len(texts))
			for i, text := range texts {
				set[i] = md.CheckBoxSet{Checked: doc.Attrs(doc.Child(id, i)).Bool("checked"), Text: text}
			}
			m.CheckBox(set)
			return
		}
		r.items(m, id, func(i int) string {
			if doc.Attrs(doc.Child(id, i)).Bool("checked") {
				return "- [x] "
			}
			return "- [ ] "
		})
	case document.KindToggle:
		open := ""
		if doc.Attrs(id).Bool("open") {
			open = " open"
		}
		m.PlainText(fmt.Sprintf("<details%s>\n<summary>%s</summary>", open, r.inline(doc.Child(id, 0))))
		if body := r.nested(id, 1); body != "" {
			m.PlainText("")
			m.PlainText(body)
		}
		m.PlainText("")
		m.PlainText("</details>")
	case document.KindHorizontalRule:
		m.HorizontalRule()
	}
}

// simple reports whether the container id holds a single paragraph on one
// line after its first skip children.
func (r mdRenderer) simple(id document.NodeID, skip int) bool {
	children := r.doc.Children(id)[skip:]
	if len(children) != 1 || r.doc.Kind(children[0]) != document.KindParagraph {
		return false
	}
	for _, c := range r.doc.Children(children[0]) {
		if r.doc.Kind(c) == document.KindHardBreak {
			return false
		}
	}
	return true
}

func (r mdRenderer) simpleItems(list document.NodeID) ([]string, bool) {
	items := r.doc.Children(list)
	texts := make([]string, len(items))
	for i, item := range items {
		if !r.simple(item, 0) {
			return nil, false
		}
		texts[i] = r.inline(r.doc.Child(item, 0))
	}
	return texts, true
}

// items writes list items whose content spans several lines or blocks.
// Continuation lines are indented to the marker width.
func (r mdRenderer) items(m *md.Markdown, list document.NodeID, marker func(int) string) {
	for i, item := range r.doc.Children(list) {
		mark := marker(i)
		body := r.nested(item, 0)
		m.PlainText(mark + prefixContinuation(body, strings.Repeat(" ", len(mark))))
	}
}

// inline renders the inline content of a textblock.
func (r mdRenderer) inline(id document.NodeID) string {
	var b strings.Builder
	for _, c := range r.doc.Children(id) {
		switch r.doc.Kind(c) {
		case document.KindHardBreak:
			b.WriteString("  \n")
		case document.KindText:
			b.WriteString(r.text(c))
		}
	}
	return b.String()
}

func (r mdRenderer) text(id document.NodeID) string {
	marks := r.doc.Marks(id)
	text := r.doc.Text(id)
	if marks.Has(document.MarkCode) {
		text = md.Code(text)
	} else {
		text = mdEscaper.Replace(text)
	}
	if marks.Has(document.MarkBold) {
		text = md.Bold(text)
	}
	if marks.Has(document.MarkItalic) {
		text = md.Italic(text)
	}
	if marks.Has(document.MarkStrike) {
		text = md.Strikethrough(text)
	}
	if marks.Has(document.MarkUnderline) {
		text = "<u>" + text + "</u>"
	}
	if marks.Has(document.MarkHighlight) {
		text = "==" + text + "=="
	}
	if link, ok := marks.Get(document.MarkLink); ok {
		text = md.Link(text, link.Href())
	}
	return text
}

func prefixLines(s, prefix, blank string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line == "" {
			lines[i] = blank
		} else {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}

func prefixContinuation(s, indent string) string {
	lines := strings.Split(s, "\n")
	for i := 1; i < len(lines); i++ {
		if lines[i] != "" {
			lines[i] = indent + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}
