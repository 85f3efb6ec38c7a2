package export

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"

	"github.com/nahidnstu12/team-docs-sub001/internal/document"
)

var policy = newPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("details", "summary", "mark", "u", "s")
	p.AllowAttrs("open").Matching(regexp.MustCompile(`^(open)?$`)).OnElements("details")
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^language-[\w+#-]+$`)).OnElements("code")
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^task-list$`)).OnElements("ul")
	p.AllowAttrs("data-checked").Matching(regexp.MustCompile(`^(true|false)$`)).OnElements("li")
	p.AllowAttrs("data-color").Matching(regexp.MustCompile(`^(#[0-9a-fA-F]{3,8}|[a-z]+)$`)).OnElements("mark")
	p.AllowAttrs("start").Matching(bluemonday.Integer).OnElements("ol")
	p.RequireNoReferrerOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// HTML renders doc as an HTML fragment and sanitizes it.
func HTML(doc *document.Document) (string, error) {
	var b strings.Builder
	r := htmlRenderer{doc: doc}
	for _, id := range doc.Children(doc.Root()) {
		if err := html.Render(&b, r.block(id)); err != nil {
			return "", err
		}
		b.WriteByte('\n')
	}
	return policy.Sanitize(b.String()), nil
}

type htmlRenderer struct {
	doc *document.Document
}

func element(tag string, attrs ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, Data: tag}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

func textNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func (r htmlRenderer) appendBlocks(parent *html.Node, ids []document.NodeID) {
	for _, id := range ids {
		if n := r.block(id); n != nil {
			parent.AppendChild(n)
		}
	}
}

func (r htmlRenderer) block(id document.NodeID) *html.Node {
	doc := r.doc
	attrs := doc.Attrs(id)
	switch doc.Kind(id) {
	case document.KindParagraph:
		return r.inline(element("p"), id)
	case document.KindHeading:
		level := min(max(attrs.Int("level"), 1), 6)
		return r.inline(element("h"+strconv.Itoa(level)), id)
	case document.KindCodeBlock:
		code := element("code")
		if lang := attrs.String("language"); lang != "" {
			code.Attr = append(code.Attr, html.Attribute{Key: "class", Val: "language-" + lang})
		}
		code.AppendChild(textNode(doc.TextContent(id)))
		pre := element("pre")
		pre.AppendChild(code)
		return pre
	case document.KindBlockquote:
		n := element("blockquote")
		r.appendBlocks(n, doc.Children(id))
		return n
	case document.KindBulletList:
		return r.list(element("ul"), id)
	case document.KindOrderedList:
		n := element("ol")
		if start := attrs.Int("start"); start != 1 {
			n.Attr = append(n.Attr, html.Attribute{Key: "start", Val: strconv.Itoa(start)})
		}
		return r.list(n, id)
	case document.KindTaskList:
		return r.list(element("ul", "class", "task-list"), id)
	case document.KindToggle:
		n := element("details")
		if attrs.Bool("open") {
			n.Attr = append(n.Attr, html.Attribute{Key: "open"})
		}
		children := doc.Children(id)
		n.AppendChild(r.inline(element("summary"), children[0]))
		r.appendBlocks(n, children[1:])
		return n
	case document.KindHorizontalRule:
		return element("hr")
	default:
		return nil
	}
}

func (r htmlRenderer) list(n *html.Node, id document.NodeID) *html.Node {
	for _, item := range r.doc.Children(id) {
		li := element("li")
		if r.doc.Kind(item) == document.KindTaskItem {
			li.Attr = append(li.Attr, html.Attribute{Key: "data-checked", Val: strconv.FormatBool(r.doc.Attrs(item).Bool("checked"))})
		}
		r.appendBlocks(li, r.doc.Children(item))
		n.AppendChild(li)
	}
	return n
}

// inline appends the inline content of textblock id to n. Marks nest in
// rank order, bold outermost.
func (r htmlRenderer) inline(n *html.Node, id document.NodeID) *html.Node {
	for _, c := range r.doc.Children(id) {
		switch r.doc.Kind(c) {
		case document.KindHardBreak:
			n.AppendChild(element("br"))
		case document.KindText:
			n.AppendChild(r.marked(c))
		}
	}
	return n
}

func (r htmlRenderer) marked(id document.NodeID) *html.Node {
	out := textNode(r.doc.Text(id))
	marks := r.doc.Marks(id)
	for i := len(marks) - 1; i >= 0; i-- {
		m := marks[i]
		var wrap *html.Node
		switch m.Type {
		case document.MarkBold:
			wrap = element("strong")
		case document.MarkItalic:
			wrap = element("em")
		case document.MarkUnderline:
			wrap = element("u")
		case document.MarkStrike:
			wrap = element("s")
		case document.MarkCode:
			wrap = element("code")
		case document.MarkHighlight:
			wrap = element("mark")
			if color := m.Attrs.String("color"); color != "" {
				wrap.Attr = append(wrap.Attr, html.Attribute{Key: "data-color", Val: color})
			}
		case document.MarkLink:
			wrap = element("a", "href", m.Href(), "target", document.LinkTarget, "rel", document.LinkRel)
		default:
			continue
		}
		wrap.AppendChild(out)
		out = wrap
	}
	return out
}
