package palette

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nahidnstu12/team-docs-sub001/internal/command"
	d "github.com/nahidnstu12/team-docs-sub001/internal/document"
	"github.com/nahidnstu12/team-docs-sub001/internal/pipeline"
	"github.com/nahidnstu12/team-docs-sub001/internal/policy/marks"
	"github.com/nahidnstu12/team-docs-sub001/internal/policy/trailing"
	"github.com/nahidnstu12/team-docs-sub001/internal/state"
)

func noop(*state.State, command.Dispatch) bool { return true }

func item(id, group string, keywords ...string) Item {
	return Item{ID: id, Title: id, Group: group, Keywords: keywords, Command: noop}
}

func defaults(t *testing.T) *Registry {
	t.Helper()
	reg := NewRegistry()
	require.NoError(t, reg.Add(Defaults(nil)...))
	return reg
}

func ids(groups []Group) [][]string {
	var out [][]string
	for _, g := range groups {
		var row []string
		for _, it := range g.Items {
			row = append(row, it.ID)
		}
		out = append(out, row)
	}
	return out
}

func TestFilter(t *testing.T) {
	reg := defaults(t)
	tests := []struct {
		query string
		want  [][]string
	}{
		{"", [][]string{
			{"text", "heading1", "heading2", "heading3"},
			{"bulletList", "orderedList", "taskList", "toggle"},
			{"quote", "code", "divider"},
		}},
		{"head", [][]string{{"heading1", "heading2", "heading3"}}},
		{"LIST", [][]string{{"bulletList", "orderedList", "taskList", "toggle"}}},
		{"quo", [][]string{{"quote"}}},
		{"nothing", nil},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(reg.Filter(tt.query)))
		})
	}
}

func TestFilterGroupsByFirstAppearance(t *testing.T) {
	items := []Item{
		item("a", "G1", "x"),
		item("b", "G2", "x"),
		item("c", "G1", "x"),
	}
	groups := Filter(items, "x")
	require.Len(t, groups, 2)
	assert.Equal(t, "G1", groups[0].Name)
	assert.Equal(t, [][]string{{"a", "c"}, {"b"}}, ids(groups))
	assert.Equal(t, 3, Count(groups))
}

func TestPointerClamping(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Add(item("a", "G1", "k"), item("b", "G1", "k"), item("c", "G2", "k")))
	p := New(reg)
	p.Open(1, Anchor{})

	p.Down()
	cur, _ := p.Current()
	assert.Equal(t, "b", cur.ID)

	p.Down()
	g, i := p.Pointer()
	cur, _ = p.Current()
	assert.Equal(t, [2]int{1, 0}, [2]int{g, i})
	assert.Equal(t, "c", cur.ID)

	p.Down()
	g, i = p.Pointer()
	assert.Equal(t, [2]int{1, 0}, [2]int{g, i}, "no wrap past the last item")

	p.Up()
	cur, _ = p.Current()
	assert.Equal(t, "b", cur.ID)
	p.Up()
	p.Up()
	g, i = p.Pointer()
	assert.Equal(t, [2]int{0, 0}, [2]int{g, i}, "no wrap past the first item")
}

func TestQueryEditing(t *testing.T) {
	p := New(defaults(t))
	p.AppendQuery('x')
	assert.Empty(t, p.Query(), "closed palette ignores input")

	p.Open(3, Anchor{X: 4, Y: 2})
	p.AppendQuery('h')
	p.AppendQuery('é')
	assert.Equal(t, "hé", p.Query())
	assert.True(t, p.Backspace())
	assert.Equal(t, "h", p.Query())
	assert.True(t, p.Backspace())
	assert.False(t, p.Backspace())

	p.SetQuery("head")
	p.Down()
	p.Close()
	assert.False(t, p.IsOpen())
	assert.Empty(t, p.Query())
	assert.Nil(t, p.Groups())
	assert.Equal(t, Anchor{}, p.Anchor())
	_, ok := p.Current()
	assert.False(t, ok)
}

func TestSuggest(t *testing.T) {
	p := New(defaults(t))
	p.Open(1, Anchor{})
	p.SetQuery("haeding")
	assert.Empty(t, p.Groups())
	assert.Equal(t, "heading1", p.Suggestion())

	p.SetQuery("qqqqqqq")
	assert.Empty(t, p.Suggestion())

	p.SetQuery("head")
	assert.Empty(t, p.Suggestion(), "no hint while items match")
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Add(item("a", "G", "k")))
	assert.ErrorIs(t, reg.Add(item("a", "G", "k")), ErrDuplicateItem)
	assert.ErrorIs(t, reg.Add(Item{ID: "x", Title: "x", Keywords: []string{"k"}}), ErrInvalidItem)
	assert.ErrorIs(t, reg.Add(Item{ID: "x", Keywords: []string{"k"}, Command: noop}), ErrInvalidItem)

	plugin := item("p1", "G", "k")
	plugin.Source = "plugin:demo"
	other := item("p2", "G", "k")
	other.Source = "plugin:demo"
	require.NoError(t, reg.Add(plugin, other))
	assert.Equal(t, 3, reg.Len())
	assert.Equal(t, 2, reg.RemoveBySource("plugin:demo"))
	_, ok := reg.Get("p1")
	assert.False(t, ok)

	assert.True(t, reg.Remove("a"))
	assert.False(t, reg.Remove("a"))
	assert.Zero(t, reg.Len())
}

func newPipeline(root d.Node, sel state.Selection) *pipeline.Pipeline {
	return pipeline.New(state.New(d.MustNew(root), sel),
		pipeline.WithInterceptors(marks.New(), trailing.New(zerolog.Nop())))
}

func dispatcher(t *testing.T, p *pipeline.Pipeline) command.Dispatch {
	return func(tr *state.Transaction) *state.State {
		next, err := p.Dispatch(tr)
		require.NoError(t, err)
		return next
	}
}

func TestInvokeHeading(t *testing.T) {
	pl := newPipeline(d.Doc(d.Ptext("/"), d.P()), state.Cursor(2))
	p := New(defaults(t))
	p.Open(1, Anchor{})
	p.SetQuery("head")

	require.NoError(t, p.Invoke(pl.State(), dispatcher(t, pl)))
	assert.False(t, p.IsOpen())
	assert.True(t, d.Equal(d.MustNew(d.Doc(d.H(1), d.P())), pl.State().Doc()), "got %s", pl.State().Doc())
	assert.Equal(t, state.Cursor(1), pl.State().Selection())
	assert.Equal(t, []string{"heading1"}, p.History().Recent(0))
}

func TestInvokeDeletesCharacterBeforeTrigger(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		query  string
		want   d.Node
		cursor int
	}{
		{"heading", "a/", "head", d.Doc(d.H(1), d.P()), 1},
		{"keeps earlier text", "ab/", "head", d.Doc(d.H(1, d.T("a")), d.P()), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := len(tt.text)
			pl := newPipeline(d.Doc(d.Ptext(tt.text), d.P()), state.Cursor(n+1))
			p := New(defaults(t))
			p.Open(n, Anchor{})
			p.SetQuery(tt.query)

			require.NoError(t, p.Invoke(pl.State(), dispatcher(t, pl)))
			assert.True(t, d.Equal(d.MustNew(tt.want), pl.State().Doc()), "got %s", pl.State().Doc())
			assert.Equal(t, state.Cursor(tt.cursor), pl.State().Selection())
		})
	}
}

func TestInvokeTriggerAtBlockStart(t *testing.T) {
	pl := newPipeline(d.Doc(d.Ptext("x"), d.Ptext("/")), state.Cursor(5))
	p := New(defaults(t))
	p.Open(4, Anchor{})
	p.SetQuery("divider")

	require.NoError(t, p.Invoke(pl.State(), dispatcher(t, pl)))
	doc := pl.State().Doc()
	assert.Equal(t, "x", doc.TextContent(doc.Child(doc.Root(), 0)), "the previous block is untouched")
}

func TestInvocationErrors(t *testing.T) {
	tests := []struct {
		name    string
		cmd     command.Command
		wantErr error
	}{
		{"refuses", func(*state.State, command.Dispatch) bool { return false }, ErrNotApplicable},
		{"panics", func(*state.State, command.Dispatch) bool { panic("boom") }, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewRegistry()
			require.NoError(t, reg.Add(Item{ID: "bad", Title: "Bad", Keywords: []string{"bad"}, Command: tt.cmd}))
			pl := newPipeline(d.Doc(d.Ptext("/"), d.P()), state.Cursor(2))
			p := New(reg)
			p.Open(1, Anchor{})

			err := p.Invoke(pl.State(), dispatcher(t, pl))
			var ie *InvocationError
			require.True(t, errors.As(err, &ie))
			assert.Equal(t, "bad", ie.ItemID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.False(t, p.IsOpen(), "palette closes even on failure")
			assert.Equal(t, "", pl.State().Doc().TextContent(pl.State().Doc().Root()), "trigger removed")
			assert.Zero(t, p.History().Len())
		})
	}
}

func TestInvokeWithoutItem(t *testing.T) {
	s := state.New(d.MustNew(d.Doc(d.Ptext("/"))), state.Cursor(2))
	p := New(defaults(t))
	p.Open(1, Anchor{})
	p.SetQuery("zzzz")
	assert.ErrorIs(t, p.Invoke(s, nil), ErrNoItem)
	assert.False(t, p.IsOpen())
}

func TestTriggerGoneIsLeftAlone(t *testing.T) {
	pl := newPipeline(d.Doc(d.Ptext("x"), d.P()), state.Cursor(2))
	p := New(defaults(t), WithTrigger('>'))
	assert.Equal(t, '>', p.Trigger())
	p.Open(1, Anchor{})
	p.SetQuery("quote")
	require.NoError(t, p.Invoke(pl.State(), dispatcher(t, pl)))
	doc := pl.State().Doc()
	assert.Equal(t, d.KindBlockquote, doc.Kind(doc.Child(doc.Root(), 0)))
	assert.Equal(t, "x", doc.TextContent(doc.Root()))
}
