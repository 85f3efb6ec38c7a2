package toggle

import (
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

type harness struct {
	p       *pipeline.Pipeline
	c       *Controller
	commits []pipeline.Commit
}

func newHarness(root d.Node, sel state.Selection) *harness {
	h := &harness{c: New()}
	h.p = pipeline.New(state.New(d.MustNew(root), sel),
		pipeline.WithInterceptors(marks.New(), trailing.New(zerolog.Nop()), h.c.Structure()),
		pipeline.WithCommitHook(func(c pipeline.Commit) { h.commits = append(h.commits, c) }),
	)
	return h
}

func (h *harness) exec(t *testing.T, cmd command.Command) bool {
	t.Helper()
	return cmd(h.p.State(), func(tr *state.Transaction) *state.State {
		next, err := h.p.Dispatch(tr)
		require.NoError(t, err)
		return next
	})
}

func (h *harness) assertDoc(t *testing.T, want d.Node) {
	t.Helper()
	got := h.p.State().Doc()
	assert.True(t, d.Equal(d.MustNew(want), got), "got %s", got)
}

func TestBackspace(t *testing.T) {
	tests := []struct {
		name    string
		root    d.Node
		cursor  int
		want    d.Node
		wantSel state.Selection
	}{
		{
			name:   "empty sole body block removes the toggle",
			root:   d.Doc(d.Toggle(true, "Notes", d.P())),
			cursor: 9,
			want:   d.Doc(d.P()), wantSel: state.Cursor(1),
		},
		{
			name:   "summary with text becomes a paragraph",
			root:   d.Doc(d.Toggle(true, "Intro", d.P()), d.P()),
			cursor: 2,
			want:   d.Doc(d.Ptext("Intro"), d.P()), wantSel: state.Cursor(1),
		},
		{
			name:   "empty summary removes the toggle with its body",
			root:   d.Doc(d.Toggle(true, "", d.Ptext("body text")), d.P()),
			cursor: 2,
			want:   d.Doc(d.P()), wantSel: state.Cursor(1),
		},
		{
			name:   "empty toggle after text",
			root:   d.Doc(d.Ptext("ab"), d.Toggle(true, "", d.P()), d.P()),
			cursor: 6,
			want:   d.Doc(d.Ptext("ab"), d.P()), wantSel: state.Cursor(3),
		},
		{
			name:   "demoted summary drops the body",
			root:   d.Doc(d.Toggle(false, "s", d.Ptext("a"), d.Ptext("b")), d.P()),
			cursor: 2,
			want:   d.Doc(d.Ptext("s"), d.P()), wantSel: state.Cursor(1),
		},
		{
			name:   "open toggle demotes to its summary only",
			root:   d.Doc(d.Toggle(true, "Intro", d.Ptext("detail"))),
			cursor: 2,
			want:   d.Doc(d.Ptext("Intro"), d.P()), wantSel: state.Cursor(1),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(tt.root, state.Cursor(tt.cursor))
			require.True(t, h.exec(t, Backspace))
			h.assertDoc(t, tt.want)
			assert.Equal(t, tt.wantSel, h.p.State().Selection())
		})
	}
}

func TestBackspaceDeclines(t *testing.T) {
	tests := []struct {
		name string
		root d.Node
		sel  state.Selection
	}{
		{"not at start of summary", d.Doc(d.Toggle(true, "ab", d.P()), d.P()), state.Cursor(3)},
		{"body with siblings", d.Doc(d.Toggle(true, "s", d.P(), d.Ptext("x")), d.P()), state.Cursor(5)},
		{"body with text", d.Doc(d.Toggle(true, "s", d.Ptext("x")), d.P()), state.Cursor(5)},
		{"outside a toggle", d.Doc(d.Ptext("x"), d.P()), state.Cursor(1)},
		{"range", d.Doc(d.Toggle(true, "ab", d.P()), d.P()), state.Range(2, 3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := state.New(d.MustNew(tt.root), tt.sel)
			assert.False(t, Backspace(s, nil))
		})
	}
}

func TestInsert(t *testing.T) {
	h := newHarness(d.Doc(d.Ptext("ab"), d.P()), state.Cursor(2))
	require.True(t, h.exec(t, Insert))
	h.assertDoc(t, d.Doc(d.Ptext("ab"), d.Toggle(true, "", d.P()), d.P()))
	assert.Equal(t, state.Cursor(6), h.p.State().Selection())

	empty := newHarness(d.Doc(d.P()), state.Cursor(1))
	require.True(t, empty.exec(t, Insert))
	empty.assertDoc(t, d.Doc(d.Toggle(true, "", d.P()), d.P()))
	assert.Equal(t, state.Cursor(2), empty.p.State().Selection())
}

func TestSetOpenIsOneUndoStep(t *testing.T) {
	h := newHarness(d.Doc(d.Toggle(true, "s", d.Ptext("b")), d.P()), state.Cursor(5))
	require.True(t, h.exec(t, SetOpen(0, false)))

	s := h.p.State()
	id, ok := Find(s.Doc(), 0)
	require.True(t, ok)
	assert.False(t, IsOpen(s.Doc(), id))
	assert.Equal(t, state.Cursor(3), s.Selection(), "cursor leaves the hidden body")
	assert.Equal(t, 1, h.p.History().UndoCount())

	assert.False(t, h.exec(t, SetOpen(0, false)), "already closed")

	s, err := h.p.Undo()
	require.NoError(t, err)
	assert.True(t, IsOpen(s.Doc(), id))
	assert.Equal(t, state.Cursor(5), s.Selection())
}

func TestToggleAtFromSummary(t *testing.T) {
	h := newHarness(d.Doc(d.Toggle(true, "s", d.P()), d.P()), state.Cursor(2))
	require.True(t, h.exec(t, ToggleAt(2)))
	id, _ := Find(h.p.State().Doc(), 2)
	assert.False(t, IsOpen(h.p.State().Doc(), id))
	require.True(t, h.exec(t, ToggleAt(2)))
	assert.True(t, IsOpen(h.p.State().Doc(), id))
}

func TestEnter(t *testing.T) {
	h := newHarness(d.Doc(d.Toggle(false, "s", d.Ptext("b")), d.P()), state.Cursor(3))
	require.True(t, h.exec(t, Enter))
	s := h.p.State()
	id, _ := Find(s.Doc(), 0)
	assert.True(t, IsOpen(s.Doc(), id), "Enter opens a closed toggle")
	assert.Equal(t, state.Cursor(5), s.Selection())
	h.assertDoc(t, d.Doc(d.Toggle(true, "s", d.Ptext("b")), d.P()))

	assert.False(t, Enter(state.New(d.MustNew(d.Doc(d.Ptext("a"))), state.Cursor(1)), nil))
}

func TestClick(t *testing.T) {
	c := New(WithHitZone(20))
	s := state.New(d.MustNew(d.Doc(d.Toggle(true, "sum", d.P()), d.P())), state.Cursor(10))
	apply := func(tr *state.Transaction) *state.State {
		next, err := s.Apply(tr)
		require.NoError(t, err)
		s = next
		return next
	}

	require.True(t, c.Click(3, 50)(s, apply))
	assert.Equal(t, state.Cursor(5), s.Selection(), "outside the hit zone the cursor lands at the end")

	require.True(t, c.Click(3, 5)(s, apply))
	id, _ := Find(s.Doc(), 0)
	assert.False(t, IsOpen(s.Doc(), id))

	assert.False(t, c.Click(7, 5)(s, apply), "body clicks are not handled")
	assert.Equal(t, 20, c.HitZone())
}

func TestStructureAddsMissingBodies(t *testing.T) {
	root := d.Doc(d.Toggle(true, "s"), d.Toggle(true, "t"), d.P())
	s := state.New(d.MustNew(root), state.Cursor(2))
	tr := New().Structure().Amend(nil, s, s)
	require.NotNil(t, tr)
	next, err := s.Apply(tr)
	require.NoError(t, err)
	assert.True(t, d.Equal(d.MustNew(d.Doc(d.Toggle(true, "s", d.P()), d.Toggle(true, "t", d.P()), d.P())), next.Doc()))
	assert.Equal(t, state.Cursor(2), next.Selection())

	assert.Nil(t, New().Structure().Amend([]*state.Transaction{tr}, s, next))
}

func TestControllerNeverNeedsRepair(t *testing.T) {
	h := newHarness(d.Doc(d.Ptext("ab"), d.P()), state.Cursor(2))
	require.True(t, h.exec(t, Insert))
	require.True(t, h.exec(t, ToggleAt(h.p.State().Selection().Head)))
	require.True(t, h.exec(t, Enter))
	require.True(t, h.exec(t, command.InsertText("x")))
	for _, c := range h.commits {
		assert.NotContains(t, c.Amendments, Name)
	}
}

func TestRegister(t *testing.T) {
	r := command.NewRegistry()
	New().Register(r)
	for _, name := range []string{ActionInsert, ActionToggle, ActionOpen, ActionClose} {
		_, ok := r.Get(name)
		assert.True(t, ok, name)
	}
}
