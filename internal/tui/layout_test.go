package tui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	d "github.com/nahidnstu12/team-docs-sub001/internal/document"
)

// render returns the layout as plain rows.
func render(lo *layout) []string {
	rows := make([]string, len(lo.lines))
	for i, ln := range lo.lines {
		var b strings.Builder
		b.WriteString(ln.prefix)
		if ln.fill != 0 {
			b.WriteString(strings.Repeat(string(ln.fill), 3))
		}
		for _, c := range ln.cells {
			b.WriteRune(c.r)
		}
		rows[i] = b.String()
	}
	return rows
}

func TestLayoutBlocks(t *testing.T) {
	tests := []struct {
		name string
		root d.Node
		want []string
	}{
		{"heading and paragraph", d.Doc(d.H(2, d.T("Plan")), d.Ptext("body")), []string{"## Plan", "body"}},
		{"code block lines", d.Doc(d.Code("go", "a\nb")), []string{"▏ a", "▏ b"}},
		{"hard break", d.Doc(d.P(d.T("a"), d.BR(), d.T("b"))), []string{"a", "b"}},
		{"quote", d.Doc(d.Quote(d.Ptext("q"), d.Ptext("r"))), []string{"│ q", "│ r"}},
		{"bullets", d.Doc(d.Bullets(d.Item(d.Ptext("a")), d.Item(d.Ptext("b"), d.Ptext("c")))), []string{"• a", "• b", "  c"}},
		{"numbered", d.Doc(d.Numbered(d.Item(d.Ptext("a")), d.Item(d.Ptext("b")))), []string{"1. a", "2. b"}},
		{"tasks", d.Doc(d.Tasks(d.Task(false, d.Ptext("a")), d.Task(true, d.Ptext("b")))), []string{"[ ] a", "[x] b"}},
		{"closed toggle", d.Doc(d.Toggle(false, "Sum", d.Ptext("body"))), []string{"▸ Sum"}},
		{"open toggle", d.Doc(d.Toggle(true, "Sum", d.Ptext("body"))), []string{"▾ Sum", "  body"}},
		{"rule", d.Doc(d.Ptext("a"), d.HR(), d.P()), []string{"a", "───", ""}},
		{"nested", d.Doc(d.Quote(d.Bullets(d.Item(d.Ptext("x"))))), []string{"│ • x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo := layoutDoc(d.MustNew(tt.root), DefaultTheme())
			assert.Equal(t, tt.want, render(lo))
		})
	}
}

func TestLayoutPositions(t *testing.T) {
	lo := layoutDoc(d.MustNew(d.Doc(d.H(1, d.T("Hi")), d.Code("", "a\nb"))), DefaultTheme())
	require.Len(t, lo.lines, 3)

	tests := []struct {
		pos      int
		row, col int
	}{
		{1, 0, 2},
		{3, 0, 4},
		{5, 1, 2},
		{7, 2, 2},
		{8, 2, 3},
	}
	for _, tt := range tests {
		row, col, ok := lo.locate(tt.pos)
		require.True(t, ok, "pos %d", tt.pos)
		assert.Equal(t, tt.row, row, "pos %d", tt.pos)
		assert.Equal(t, tt.col, col, "pos %d", tt.pos)
	}
	_, _, ok := lo.locate(4)
	assert.False(t, ok, "between blocks")
}

func TestLayoutHit(t *testing.T) {
	lo := layoutDoc(d.MustNew(d.Doc(d.H(1, d.T("Hi")), d.HR(), d.Toggle(false, "Sum", d.Ptext("b")))), DefaultTheme())

	pos, offset, ok := lo.hit(0, 3)
	require.True(t, ok)
	assert.Equal(t, 2, pos)
	assert.Equal(t, 3, offset)

	pos, _, ok = lo.hit(0, 30)
	require.True(t, ok)
	assert.Equal(t, 3, pos, "clamped to the end of the row")

	pos, _, ok = lo.hit(0, 0)
	require.True(t, ok)
	assert.Equal(t, 1, pos, "prefix maps to the start")

	_, _, ok = lo.hit(1, 0)
	assert.False(t, ok, "rules carry no position")
	_, _, ok = lo.hit(9, 0)
	assert.False(t, ok)

	_, offset, ok = lo.hit(2, 0)
	require.True(t, ok)
	assert.Equal(t, 0, offset, "toggle marker sits in the hit zone")
}
