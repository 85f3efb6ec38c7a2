package marks

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nahidnstu12/team-docs-sub001/internal/command"
	d "github.com/nahidnstu12/team-docs-sub001/internal/document"
	"github.com/nahidnstu12/team-docs-sub001/internal/pipeline"
	"github.com/nahidnstu12/team-docs-sub001/internal/policy/trailing"
	"github.com/nahidnstu12/team-docs-sub001/internal/state"
)

var bold = d.NewMark(d.MarkBold, nil)

func newPipeline(root d.Node, sel state.Selection, hook func(pipeline.Commit)) *pipeline.Pipeline {
	opts := []pipeline.Option{pipeline.WithInterceptors(New(), trailing.New(zerolog.Nop()))}
	if hook != nil {
		opts = append(opts, pipeline.WithCommitHook(hook))
	}
	return pipeline.New(state.New(d.MustNew(root), sel), opts...)
}

func exec(t *testing.T, p *pipeline.Pipeline, cmd command.Command) {
	t.Helper()
	ok := cmd(p.State(), func(tr *state.Transaction) *state.State {
		next, err := p.Dispatch(tr)
		require.NoError(t, err)
		return next
	})
	require.True(t, ok)
}

func TestClearAfterDeletingFormattedParagraph(t *testing.T) {
	p := newPipeline(d.Doc(d.P(d.T("bold", bold))), state.Range(1, 5), nil)

	exec(t, p, command.DeleteSelection)
	stored, set := p.State().StoredMarks()
	require.True(t, set)
	assert.Empty(t, stored, "stored bold is cleared")

	exec(t, p, command.InsertText("x"))
	doc := p.State().Doc()
	first := doc.Child(doc.Child(doc.Root(), 0), 0)
	assert.Equal(t, "x", doc.Text(first))
	assert.Empty(t, doc.Marks(first), "typed text is unformatted")
}

func TestClearAfterBackspacingToEmpty(t *testing.T) {
	p := newPipeline(d.Doc(d.P(d.T("b", bold)), d.P()), state.Cursor(2), nil)
	exec(t, p, command.DeleteBackward)
	stored, set := p.State().StoredMarks()
	assert.True(t, set)
	assert.Empty(t, stored)
}

func TestKeepWhenTextRemains(t *testing.T) {
	p := newPipeline(d.Doc(d.P(d.T("ab", bold)), d.P()), state.Cursor(3), nil)
	exec(t, p, command.DeleteBackward)
	stored, _ := p.State().StoredMarks()
	assert.True(t, stored.Has(d.MarkBold), "paragraph is not empty")
}

func TestExemptContainers(t *testing.T) {
	tests := []struct {
		name string
		root d.Node
		sel  state.Selection
	}{
		{"blockquote", d.Doc(d.Quote(d.P(d.T("b", bold))), d.P()), state.Range(2, 3)},
		{"task item", d.Doc(d.Tasks(d.Task(false, d.P(d.T("b", bold)))), d.P()), state.Range(3, 4)},
		{"toggle body", d.Doc(d.Toggle(true, "s", d.P(d.T("b", bold))), d.P()), state.Range(5, 6)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPipeline(tt.root, tt.sel, nil)
			exec(t, p, command.DeleteSelection)
			stored, _ := p.State().StoredMarks()
			assert.True(t, stored.Has(d.MarkBold))
		})
	}
}

func TestMultiBlockSelectionNeverClears(t *testing.T) {
	s := state.New(d.MustNew(d.Doc(d.P(d.T("ab", bold)), d.Ptext("cd"), d.P())), state.Cursor(1))
	tr := s.Tr()
	require.NoError(t, tr.Delete(1, 3))
	tr.SetStoredMarks(d.NewMarkSet(bold))
	tr.SetSelection(state.Range(1, 5))
	next, err := s.Apply(tr)
	require.NoError(t, err)
	assert.Nil(t, New().Amend([]*state.Transaction{tr}, s, next))
}

func TestEmptyDocumentIsNoop(t *testing.T) {
	s := state.New(d.MustNew(d.Doc(d.P(d.T("a", bold)))), state.Cursor(1))
	tr := s.Tr()
	require.NoError(t, tr.Delete(0, 3))
	tr.SetStoredMarks(d.NewMarkSet(bold))
	next, err := s.Apply(tr)
	require.NoError(t, err)
	assert.Nil(t, New().Amend([]*state.Transaction{tr}, s, next))
}

func TestClearingIsIdempotent(t *testing.T) {
	var commits []pipeline.Commit
	p := newPipeline(d.Doc(d.P(d.T("bold", bold))), state.Range(1, 5), func(c pipeline.Commit) {
		commits = append(commits, c)
	})
	exec(t, p, command.DeleteSelection)
	require.Len(t, commits, 1)
	assert.Equal(t, []string{Name}, commits[0].Amendments)
	clean := p.State()

	_, err := p.Dispatch(clean.Tr())
	require.NoError(t, err)
	require.Len(t, commits, 2)
	assert.Empty(t, commits[1].Amendments, "clean state needs no amendment")
	stored, set := p.State().StoredMarks()
	assert.True(t, set)
	assert.Empty(t, stored)
	assert.Same(t, clean.Doc(), p.State().Doc())
}

func TestPreEnter(t *testing.T) {
	pol := New()
	p := newPipeline(d.Doc(d.P(d.T("ab", bold)), d.P()), state.Cursor(3), nil)
	exec(t, p, command.Chain(pol.PreEnter, command.SplitBlock))

	s := p.State()
	stored, set := s.StoredMarks()
	assert.True(t, set)
	assert.Empty(t, stored, "new block starts unformatted")
	assert.Equal(t, 3, s.Doc().ChildCount(s.Doc().Root()))

	exempt := newPipeline(d.Doc(d.Quote(d.P(d.T("ab", bold))), d.P()), state.Cursor(4), nil)
	exec(t, exempt, command.Chain(pol.PreEnter, command.SplitBlock))
	stored, _ = exempt.State().StoredMarks()
	assert.True(t, stored.Has(d.MarkBold), "marks carry inside a quote")
}

func TestPreEnterNeverApplies(t *testing.T) {
	pol := New()
	s := state.New(d.MustNew(d.Doc(d.P(d.T("ab", bold)))), state.Cursor(3))
	dispatched := 0
	ok := pol.PreEnter(s, func(tr *state.Transaction) *state.State {
		dispatched++
		next, err := s.Apply(tr)
		require.NoError(t, err)
		return next
	})
	assert.False(t, ok)
	assert.Equal(t, 1, dispatched)
	assert.False(t, pol.PreEnter(s, nil))
}

func TestWithExempt(t *testing.T) {
	pol := New(WithExempt())
	doc := d.MustNew(d.Doc(d.Code("", "x")))
	rp, err := doc.Resolve(1)
	require.NoError(t, err)
	assert.False(t, pol.Exempt(rp))
	assert.True(t, New().Exempt(rp))
}
