package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	d "github.com/nahidnstu12/team-docs-sub001/internal/document"
	"github.com/nahidnstu12/team-docs-sub001/internal/state"
)

var bold = d.NewMark(d.MarkBold, nil)

func newState(root d.Node, sel state.Selection) *state.State {
	return state.New(d.MustNew(root), sel)
}

// run executes cmd against s, applying dispatched transactions directly.
func run(t *testing.T, s *state.State, cmd Command) (*state.State, bool) {
	t.Helper()
	out := s
	ok := cmd(s, func(tr *state.Transaction) *state.State {
		next, err := out.Apply(tr)
		require.NoError(t, err)
		out = next
		return next
	})
	return out, ok
}

func requireDoc(t *testing.T, want d.Node, got *state.State) {
	t.Helper()
	require.True(t, d.Equal(d.MustNew(want), got.Doc()), "want %s\ngot  %s", d.MustNew(want), got.Doc())
}

func TestEditing(t *testing.T) {
	tests := []struct {
		name    string
		doc     d.Node
		sel     state.Selection
		cmd     Command
		want    d.Node
		wantSel state.Selection
	}{
		{
			name: "insert text", doc: d.Doc(d.Ptext("ab")), sel: state.Cursor(2),
			cmd: InsertText("X"), want: d.Doc(d.Ptext("aXb")), wantSel: state.Cursor(3),
		},
		{
			name: "insert over a cross block selection", doc: d.Doc(d.Ptext("abc"), d.Ptext("def")), sel: state.Range(2, 7),
			cmd: InsertText("X"), want: d.Doc(d.Ptext("aXef")), wantSel: state.Cursor(3),
		},
		{
			name: "newline becomes a hard break", doc: d.Doc(d.Ptext("ab")), sel: state.Cursor(2),
			cmd: InsertText("\n"), want: d.Doc(d.P(d.T("a"), d.BR(), d.T("b"))), wantSel: state.Cursor(3),
		},
		{
			name: "backspace deletes a character", doc: d.Doc(d.Ptext("ab")), sel: state.Cursor(3),
			cmd: DeleteBackward, want: d.Doc(d.Ptext("a")), wantSel: state.Cursor(2),
		},
		{
			name: "backspace resets a heading", doc: d.Doc(d.H(1, d.T("T"))), sel: state.Cursor(1),
			cmd: DeleteBackward, want: d.Doc(d.Ptext("T")), wantSel: state.Cursor(1),
		},
		{
			name: "backspace joins paragraphs", doc: d.Doc(d.Ptext("ab"), d.Ptext("cd")), sel: state.Cursor(5),
			cmd: DeleteBackward, want: d.Doc(d.Ptext("abcd")), wantSel: state.Cursor(3),
		},
		{
			name: "backspace lifts out of a quote", doc: d.Doc(d.Ptext("a"), d.Quote(d.Ptext("b"))), sel: state.Cursor(5),
			cmd: DeleteBackward, want: d.Doc(d.Ptext("a"), d.Ptext("b")), wantSel: state.Cursor(4),
		},
		{
			name: "backspace lifts a list item",
			doc:  d.Doc(d.Bullets(d.Item(d.Ptext("a")), d.Item(d.Ptext("b")))), sel: state.Cursor(8),
			cmd:  DeleteBackward, want: d.Doc(d.Bullets(d.Item(d.Ptext("a"))), d.Ptext("b")), wantSel: state.Cursor(8),
		},
		{
			name: "backspace removes a divider", doc: d.Doc(d.Ptext("a"), d.HR(), d.Ptext("b")), sel: state.Cursor(5),
			cmd: DeleteBackward, want: d.Doc(d.Ptext("a"), d.Ptext("b")), wantSel: state.Cursor(4),
		},
		{
			name: "backspace next to a closed toggle moves into its summary",
			doc:  d.Doc(d.Toggle(false, "s", d.Ptext("h")), d.Ptext("b")), sel: state.Cursor(9),
			cmd:  DeleteBackward, want: d.Doc(d.Toggle(false, "s", d.Ptext("h")), d.Ptext("b")), wantSel: state.Cursor(3),
		},
		{
			name: "split a paragraph", doc: d.Doc(d.Ptext("abcd")), sel: state.Cursor(3),
			cmd: SplitBlock, want: d.Doc(d.Ptext("ab"), d.Ptext("cd")), wantSel: state.Cursor(5),
		},
		{
			name: "split at the end of a heading", doc: d.Doc(d.H(1, d.T("T"))), sel: state.Cursor(2),
			cmd: SplitBlock, want: d.Doc(d.H(1, d.T("T")), d.P()), wantSel: state.Cursor(4),
		},
		{
			name: "split a list item", doc: d.Doc(d.Bullets(d.Item(d.Ptext("ab")))), sel: state.Cursor(4),
			cmd: SplitBlock, want: d.Doc(d.Bullets(d.Item(d.Ptext("a")), d.Item(d.Ptext("b")))), wantSel: state.Cursor(8),
		},
		{
			name: "enter in an empty list item leaves the list",
			doc:  d.Doc(d.Bullets(d.Item(d.Ptext("a")), d.Item(d.P()))), sel: state.Cursor(8),
			cmd:  SplitBlock, want: d.Doc(d.Bullets(d.Item(d.Ptext("a"))), d.P()), wantSel: state.Cursor(8),
		},
		{
			name: "enter in code inserts a newline", doc: d.Doc(d.Code("", "ab")), sel: state.Cursor(2),
			cmd: SplitBlock, want: d.Doc(d.Code("", "a\nb")), wantSel: state.Cursor(3),
		},
		{
			name: "heading", doc: d.Doc(d.Ptext("a")), sel: state.Cursor(1),
			cmd: SetBlockType(d.KindHeading, d.Attrs{"level": 2}), want: d.Doc(d.H(2, d.T("a"))), wantSel: state.Cursor(1),
		},
		{
			name: "heading level change", doc: d.Doc(d.H(1, d.T("a"))), sel: state.Cursor(1),
			cmd: SetBlockType(d.KindHeading, d.Attrs{"level": 3}), want: d.Doc(d.H(3, d.T("a"))), wantSel: state.Cursor(1),
		},
		{
			name: "code block drops marks", doc: d.Doc(d.P(d.T("a", bold))), sel: state.Cursor(1),
			cmd: SetBlockType(d.KindCodeBlock, nil), want: d.Doc(d.Code("", "a")), wantSel: state.Cursor(1),
		},
		{
			name: "wrap in quote", doc: d.Doc(d.Ptext("a")), sel: state.Cursor(2),
			cmd: WrapIn(d.KindBlockquote), want: d.Doc(d.Quote(d.Ptext("a"))), wantSel: state.Cursor(3),
		},
		{
			name: "wrap heading in task list", doc: d.Doc(d.H(1, d.T("a"))), sel: state.Cursor(2),
			cmd: WrapIn(d.KindTaskList), want: d.Doc(d.Tasks(d.Task(false, d.Ptext("a")))), wantSel: state.Cursor(4),
		},
		{
			name: "divider replaces an empty paragraph", doc: d.Doc(d.Ptext("a"), d.P()), sel: state.Cursor(4),
			cmd: InsertDivider, want: d.Doc(d.Ptext("a"), d.HR(), d.P()), wantSel: state.Cursor(5),
		},
		{
			name: "divider after text", doc: d.Doc(d.Ptext("a")), sel: state.Cursor(2),
			cmd: InsertDivider, want: d.Doc(d.Ptext("a"), d.HR(), d.P()), wantSel: state.Cursor(5),
		},
		{
			name: "bold a range", doc: d.Doc(d.Ptext("ab")), sel: state.Range(1, 3),
			cmd: ToggleMark(bold), want: d.Doc(d.P(d.T("ab", bold))), wantSel: state.Range(1, 3),
		},
		{
			name: "unbold a range", doc: d.Doc(d.P(d.T("ab", bold))), sel: state.Range(1, 3),
			cmd: ToggleMark(bold), want: d.Doc(d.Ptext("ab")), wantSel: state.Range(1, 3),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newState(tt.doc, tt.sel)
			assert.True(t, tt.cmd(s, nil), "dry run")

			got, ok := run(t, s, tt.cmd)
			require.True(t, ok)
			requireDoc(t, tt.want, got)
			assert.Equal(t, tt.wantSel, got.Selection())
		})
	}
}

func TestRefusals(t *testing.T) {
	tests := []struct {
		name string
		doc  d.Node
		sel  state.Selection
		cmd  Command
	}{
		{"backspace at document start", d.Doc(d.Ptext("a")), state.Cursor(1), DeleteBackward},
		{"heading in a list item slot", d.Doc(d.Bullets(d.Item(d.Ptext("a")))), state.Cursor(3), SetBlockType(d.KindHeading, nil)},
		{"same block type", d.Doc(d.Ptext("a")), state.Cursor(1), SetBlockType(d.KindParagraph, nil)},
		{"wrap a summary", d.Doc(d.Toggle(true, "s", d.P())), state.Cursor(2), WrapIn(d.KindBlockquote)},
		{"bold in code", d.Doc(d.Code("", "a")), state.Cursor(1), ToggleMark(bold)},
		{"split a summary", d.Doc(d.Toggle(true, "s", d.P())), state.Cursor(2), SplitBlock},
		{"empty insert", d.Doc(d.Ptext("a")), state.Cursor(1), InsertText("")},
		{"empty selection delete", d.Doc(d.Ptext("a")), state.Cursor(1), DeleteSelection},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newState(tt.doc, tt.sel)
			got, ok := run(t, s, tt.cmd)
			assert.False(t, ok)
			assert.Same(t, s, got)
		})
	}
}

func TestDeleteSelectionStoresMarks(t *testing.T) {
	s := newState(d.Doc(d.P(d.T("bold", bold))), state.Range(1, 5))
	got, ok := run(t, s, DeleteSelection)
	require.True(t, ok)
	requireDoc(t, d.Doc(d.P()), got)
	stored, set := got.StoredMarks()
	assert.True(t, set)
	assert.True(t, stored.Has(d.MarkBold))
}

func TestInsertTextUsesStoredMarks(t *testing.T) {
	s := newState(d.Doc(d.Ptext("ab")), state.Cursor(3))
	s, ok := run(t, s, ToggleMark(bold))
	require.True(t, ok)
	assert.True(t, MarkActive(s, d.MarkBold))

	s, ok = run(t, s, InsertText("c"))
	require.True(t, ok)
	requireDoc(t, d.Doc(d.P(d.T("ab"), d.T("c", bold))), s)
}

func TestSplitBlockMarks(t *testing.T) {
	s := newState(d.Doc(d.P(d.T("ab", bold))), state.Cursor(3))
	got, ok := run(t, s, SplitBlock)
	require.True(t, ok)
	stored, set := got.StoredMarks()
	assert.True(t, set)
	assert.True(t, stored.Has(d.MarkBold), "marks carry into the new block")

	cleared, err := s.Apply(s.Tr().ClearStoredMarks())
	require.NoError(t, err)
	got, ok = run(t, cleared, SplitBlock)
	require.True(t, ok)
	stored, set = got.StoredMarks()
	assert.True(t, set)
	assert.Empty(t, stored, "explicitly empty stored marks are kept")
}

func TestMove(t *testing.T) {
	// doc( p("ab") toggle[closed]( summary("s") p("h") ) p("cd") )
	// p("ab") content 1..3; summary content 6..7; p("cd") content 13..15
	root := d.Doc(d.Ptext("ab"), d.Toggle(false, "s", d.Ptext("h")), d.Ptext("cd"))
	tests := []struct {
		name string
		sel  state.Selection
		cmd  Command
		want state.Selection
	}{
		{"right within text", state.Cursor(1), Move(Right, false), state.Cursor(2)},
		{"right into the next block", state.Cursor(3), Move(Right, false), state.Cursor(6)},
		{"right skips the hidden body", state.Cursor(7), Move(Right, false), state.Cursor(13)},
		{"left skips the hidden body", state.Cursor(13), Move(Left, false), state.Cursor(7)},
		{"down keeps the column", state.Cursor(2), Move(Down, false), state.Cursor(7)},
		{"up clamps the column", state.Cursor(15), Move(Up, false), state.Cursor(7)},
		{"home", state.Cursor(14), Move(Home, false), state.Cursor(13)},
		{"end", state.Cursor(13), Move(End, false), state.Cursor(15)},
		{"extend", state.Cursor(1), Move(Right, true), state.Range(1, 2)},
		{"collapse a range", state.Range(1, 3), Move(Left, false), state.Cursor(1)},
		{"select all", state.Cursor(2), SelectAll, state.Range(1, 15)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := run(t, newState(root, tt.sel), tt.cmd)
			require.True(t, ok)
			assert.Equal(t, tt.want, got.Selection())
		})
	}

	_, ok := run(t, newState(root, state.Cursor(1)), Move(Left, false))
	assert.False(t, ok, "left at document start")
}

func TestChain(t *testing.T) {
	var calls []string
	refuse := func(s *state.State, _ Dispatch) bool {
		calls = append(calls, "refuse")
		return false
	}
	s := newState(d.Doc(d.Ptext("ab")), state.Cursor(3))
	got, ok := run(t, s, Chain(refuse, InsertText("c"), InsertText("never")))
	require.True(t, ok)
	assert.Equal(t, []string{"refuse"}, calls)
	requireDoc(t, d.Doc(d.Ptext("abc")), got)

	assert.False(t, Chain(refuse, refuse)(s, nil))
}

func TestBuiltinRegistry(t *testing.T) {
	r := Builtin()
	for _, name := range []string{ActionHeading1, ActionBulletList, ActionBold, ActionSplitBlock, ActionLeft} {
		_, ok := r.Get(name)
		assert.True(t, ok, name)
	}
	r.Unregister(ActionBold)
	_, ok := r.Get(ActionBold)
	assert.False(t, ok)
	assert.NotContains(t, r.Names(), ActionBold)

	cmd, _ := r.Get(ActionHeading1)
	got, ok := run(t, newState(d.Doc(d.Ptext("a")), state.Cursor(1)), cmd)
	require.True(t, ok)
	requireDoc(t, d.Doc(d.H(1, d.T("a"))), got)
}
