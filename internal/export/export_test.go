package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	d "github.com/nahidnstu12/team-docs-sub001/internal/document"
)

func markdown(t *testing.T, root d.Node) string {
	t.Helper()
	var b bytes.Buffer
	require.NoError(t, Markdown(d.MustNew(root), &b))
	return b.String()
}

func htmlOf(t *testing.T, root d.Node) string {
	t.Helper()
	out, err := HTML(d.MustNew(root))
	require.NoError(t, err)
	return out
}

func TestMarkdownBlocks(t *testing.T) {
	tests := []struct {
		name string
		root d.Node
		want []string
	}{
		{"heading", d.Doc(d.H(2, d.T("Title"))), []string{"## Title"}},
		{"paragraph escapes", d.Doc(d.Ptext("a*b_c")), []string{`a\*b\_c`}},
		{"marks", d.Doc(d.P(d.T("bold", d.NewMark(d.MarkBold, nil)), d.T(" "), d.T("x()", d.NewMark(d.MarkCode, nil)))), []string{"**bold**", "`x()`"}},
		{"link", d.Doc(d.P(d.T("site", d.Link("https://example.com")))), []string{"[site](https://example.com)"}},
		{"code", d.Doc(d.Code("go", "fmt.Println()")), []string{"```go", "fmt.Println()", "```"}},
		{"bullets", d.Doc(d.Bullets(d.Item(d.Ptext("one")), d.Item(d.Ptext("two")))), []string{"- one", "- two"}},
		{"numbered", d.Doc(d.Numbered(d.Item(d.Ptext("one")), d.Item(d.Ptext("two")))), []string{"1. one", "2. two"}},
		{"tasks", d.Doc(d.Tasks(d.Task(true, d.Ptext("done")), d.Task(false, d.Ptext("todo")))), []string{"- [x] done", "- [ ] todo"}},
		{"quote", d.Doc(d.Quote(d.Ptext("said"))), []string{"> said"}},
		{"nested quote", d.Doc(d.Quote(d.Ptext("a"), d.Ptext("b"))), []string{"> a\n>\n> b"}},
		{"toggle", d.Doc(d.Toggle(true, "More", d.Ptext("hidden"))), []string{"<details open>", "<summary>More</summary>", "hidden", "</details>"}},
		{"closed toggle", d.Doc(d.Toggle(false, "More")), []string{"<details>\n<summary>More</summary>"}},
		{"rule", d.Doc(d.Ptext("a"), d.HR()), []string{"---"}},
		{"nested list", d.Doc(d.Bullets(d.Item(d.Ptext("outer"), d.Bullets(d.Item(d.Ptext("inner")))))), []string{"- outer\n\n  - inner"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := markdown(t, tt.root)
			for _, want := range tt.want {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestHTMLBlocks(t *testing.T) {
	tests := []struct {
		name string
		root d.Node
		want []string
	}{
		{"heading", d.Doc(d.H(3, d.T("Title"))), []string{"<h3>Title</h3>"}},
		{"marks", d.Doc(d.P(d.T("x", d.NewMark(d.MarkBold, nil), d.NewMark(d.MarkItalic, nil)))), []string{"<strong><em>x</em></strong>"}},
		{"code", d.Doc(d.Code("go", "a < b")), []string{`<pre><code class="language-go">a &lt; b</code></pre>`}},
		{"ordered start", d.Doc(d.Node{Kind: d.KindOrderedList, Attrs: d.Attrs{"start": 3}, Content: []d.Node{d.Item(d.Ptext("c"))}}), []string{`<ol start="3">`}},
		{"tasks", d.Doc(d.Tasks(d.Task(true, d.Ptext("done")))), []string{`<ul class="task-list">`, `<li data-checked="true">`}},
		{"toggle open", d.Doc(d.Toggle(true, "More", d.Ptext("body"))), []string{"<details open", "<summary>More</summary>", "<p>body</p>"}},
		{"highlight", d.Doc(d.P(d.T("hi", d.NewMark(d.MarkHighlight, d.Attrs{"color": "#ff0"})))), []string{`<mark data-color="#ff0">hi</mark>`}},
		{"break", d.Doc(d.P(d.T("a"), d.BR(), d.T("b"))), []string{"a<br/>b"}},
		{"rule", d.Doc(d.HR()), []string{"<hr/>"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := htmlOf(t, tt.root)
			for _, want := range tt.want {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestHTMLClosedToggle(t *testing.T) {
	out := htmlOf(t, d.Doc(d.Toggle(false, "More", d.Ptext("body"))))
	assert.Contains(t, out, "<details>")
	assert.NotContains(t, out, "open")
}

func TestHTMLLinks(t *testing.T) {
	out := htmlOf(t, d.Doc(d.P(d.T("site", d.Link("https://example.com")))))
	assert.Contains(t, out, `href="https://example.com"`)
	assert.Contains(t, out, `target="_blank"`)
	assert.Contains(t, out, "noreferrer")

	out = htmlOf(t, d.Doc(d.P(d.T("bad", d.Link("javascript:alert(1)")))))
	assert.NotContains(t, out, "javascript")
	assert.Contains(t, out, "bad")
}

func TestHTMLEscapesText(t *testing.T) {
	out := htmlOf(t, d.Doc(d.Ptext("<script>alert(1)</script>")))
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
}

func TestFormats(t *testing.T) {
	for name, want := range map[string]Format{"md": FormatMarkdown, "Markdown": FormatMarkdown, "html": FormatHTML} {
		f, err := ParseFormat(name)
		require.NoError(t, err)
		assert.Equal(t, want, f)
	}
	_, err := ParseFormat("pdf")
	assert.ErrorIs(t, err, ErrUnknownFormat)
	assert.True(t, strings.HasPrefix(FormatHTML.ContentType(), "text/html"))
	assert.Equal(t, ".md", FormatMarkdown.Extension())

	doc := d.MustNew(d.Doc(d.Ptext("x")))
	var b bytes.Buffer
	require.NoError(t, Write(&b, doc, FormatHTML))
	assert.Contains(t, b.String(), "<p>x</p>")
	assert.ErrorIs(t, Write(&b, doc, "pdf"), ErrUnknownFormat)
}
