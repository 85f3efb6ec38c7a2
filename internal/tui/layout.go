package tui

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"

	"github.com/nahidnstu12/team-docs-sub001/internal/document"
)

// cell is one drawn character of document text.
type cell struct {
	r     rune
	pos   int
	style tcell.Style
}

// line is one screen row of the laid out document.
type line struct {
	prefix      string
	prefixStyle tcell.Style
	cells       []cell
	// node is the textblock the row belongs to, or -1 for decoration.
	node document.NodeID
	// left is the column of the block's left edge.
	left int
	// start and end bound the document positions on the row.
	start, end int
	fill       rune
	fillStyle  tcell.Style
}

func (l *line) textCol() int { return utf8.RuneCountInString(l.prefix) }

// layout is the document drawn as rows.
type layout struct {
	lines []line
}

type layouter struct {
	doc   *document.Document
	theme Theme
	lines []line
}

func layoutDoc(doc *document.Document, theme Theme) *layout {
	l := &layouter{doc: doc, theme: theme}
	l.blocks(doc.Children(doc.Root()), "", "")
	return &layout{lines: l.lines}
}

// blocks lays out sibling blocks. The first row of the first block gets
// first as prefix; every other row gets rest.
func (l *layouter) blocks(ids []document.NodeID, first, rest string) {
	for i, id := range ids {
		if i > 0 {
			first = rest
		}
		l.block(id, first, rest)
	}
}

func (l *layouter) block(id document.NodeID, first, rest string) {
	doc, th := l.doc, l.theme
	attrs := doc.Attrs(id)
	switch doc.Kind(id) {
	case document.KindParagraph:
		l.textblock(id, first, rest, th.Text, utf8.RuneCountInString(first))
	case document.KindHeading:
		level := max(attrs.Int("level"), 1)
		marker := strings.Repeat("#", level) + " "
		l.textblock(id, first+marker, rest+strings.Repeat(" ", len(marker)), th.Heading, utf8.RuneCountInString(first))
	case document.KindCodeBlock:
		l.textblock(id, first+"▏ ", rest+"▏ ", th.Code, utf8.RuneCountInString(first))
	case document.KindBlockquote:
		l.blocks(doc.Children(id), first+"│ ", rest+"│ ")
	case document.KindBulletList:
		for i, item := range doc.Children(id) {
			l.item(item, pick(i, first, rest)+"• ", rest+"  ")
		}
	case document.KindOrderedList:
		start := attrs.Int("start")
		width := len(strconv.Itoa(start + doc.ChildCount(id) - 1))
		for i, item := range doc.Children(id) {
			num := strconv.Itoa(start + i)
			marker := strings.Repeat(" ", width-len(num)) + num + ". "
			l.item(item, pick(i, first, rest)+marker, rest+strings.Repeat(" ", len(marker)))
		}
	case document.KindTaskList:
		for i, item := range doc.Children(id) {
			box := "[ ] "
			if doc.Attrs(item).Bool("checked") {
				box = "[x] "
			}
			l.item(item, pick(i, first, rest)+box, rest+"    ")
		}
	case document.KindToggle:
		open := attrs.Bool("open")
		marker := "▸ "
		if open {
			marker = "▾ "
		}
		children := doc.Children(id)
		l.textblock(children[0], first+marker, rest+"  ", th.Summary, utf8.RuneCountInString(first))
		if open {
			l.blocks(children[1:], rest+"  ", rest+"  ")
		}
	case document.KindHorizontalRule:
		l.lines = append(l.lines, line{prefix: first, node: -1, start: -1, end: -1, fill: '─', fillStyle: th.Decoration, prefixStyle: th.Decoration})
	}
}

func (l *layouter) item(id document.NodeID, first, rest string) {
	l.blocks(l.doc.Children(id), first, rest)
}

func pick(i int, first, rest string) string {
	if i == 0 {
		return first
	}
	return rest
}

// textblock lays out inline content. Hard breaks and newlines in code
// start a new row.
func (l *layouter) textblock(id document.NodeID, first, rest string, base tcell.Style, left int) {
	doc := l.doc
	pos := doc.ContentStart(id)
	cur := line{prefix: first, prefixStyle: l.theme.Decoration, node: id, left: left, start: pos}
	wrap := func() {
		cur.end = pos
		l.lines = append(l.lines, cur)
		pos++
		cur = line{prefix: rest, prefixStyle: l.theme.Decoration, node: id, left: left, start: pos}
	}
	for _, c := range doc.Children(id) {
		switch doc.Kind(c) {
		case document.KindHardBreak:
			wrap()
		case document.KindText:
			style := l.theme.marked(base, doc.Marks(c))
			for _, r := range doc.Text(c) {
				if r == '\n' {
					wrap()
					continue
				}
				cur.cells = append(cur.cells, cell{r: r, pos: pos, style: style})
				pos++
			}
		}
	}
	cur.end = pos
	l.lines = append(l.lines, cur)
}

// locate returns the row and column of document position pos.
func (lo *layout) locate(pos int) (row, col int, ok bool) {
	for i := range lo.lines {
		ln := &lo.lines[i]
		if ln.node < 0 || pos < ln.start || pos > ln.end {
			continue
		}
		return i, ln.textCol() + pos - ln.start, true
	}
	return 0, 0, false
}

// hit returns the document position at row and column, and the column's
// distance from the block's left edge.
func (lo *layout) hit(row, col int) (pos, offset int, ok bool) {
	if row < 0 || row >= len(lo.lines) {
		return 0, 0, false
	}
	ln := &lo.lines[row]
	if ln.node < 0 {
		return 0, 0, false
	}
	i := min(max(col-ln.textCol(), 0), ln.end-ln.start)
	return ln.start + i, col - ln.left, true
}
