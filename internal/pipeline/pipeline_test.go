package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	d "github.com/nahidnstu12/team-docs-sub001/internal/document"
	"github.com/nahidnstu12/team-docs-sub001/internal/event"
	"github.com/nahidnstu12/team-docs-sub001/internal/state"
)

// trailer keeps an empty paragraph at the end of the document.
var trailer = InterceptorFunc{ID: "trailer", Fn: func(_ []*state.Transaction, _, next *state.State) *state.Transaction {
	doc := next.Doc()
	last := doc.LastChild(doc.Root())
	if last != d.NoNode && doc.IsEmptyTextblock(last) {
		return nil
	}
	tr := next.Tr()
	if err := tr.Insert(doc.ContentSize(), d.P()); err != nil {
		return nil
	}
	return tr
}}

// doc(p("ab"), p())
func newPipeline(t *testing.T, opts ...Option) *Pipeline {
	t.Helper()
	doc := d.MustNew(d.Doc(d.Ptext("ab"), d.P()))
	return New(state.New(doc, state.Cursor(5)), opts...)
}

func typeText(t *testing.T, p *Pipeline, text string) *state.State {
	t.Helper()
	s := p.State()
	tr := s.Tr()
	sel := s.Selection()
	require.NoError(t, tr.InsertText(text, sel.From(), sel.To()))
	tr.SetMeta(state.MetaOrigin, OriginText)
	next, err := p.Dispatch(tr)
	require.NoError(t, err)
	return next
}

func TestDispatchAmends(t *testing.T) {
	p := newPipeline(t, WithInterceptors(trailer))

	next := typeText(t, p, "x")
	want := d.MustNew(d.Doc(d.Ptext("ab"), d.Ptext("x"), d.P()))
	assert.True(t, d.Equal(want, next.Doc()), "got %s", next.Doc())
	assert.Equal(t, state.Cursor(6), next.Selection())
	assert.Equal(t, uint64(1), p.Version())
	assert.Equal(t, []string{"trailer"}, p.Interceptors())
}

func TestDispatchRejectsStale(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	p := newPipeline(t, WithMetrics(m))

	stale := p.State().Tr()
	require.NoError(t, stale.InsertText("y", 5, 5))
	typeText(t, p, "x")
	before := p.State()

	got, err := p.Dispatch(stale)
	require.ErrorIs(t, err, ErrStaleTransaction)
	assert.Same(t, before, got)
	assert.Same(t, before, p.State())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rejected.WithLabelValues("stale")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.commits))
}

func TestInterceptorOrder(t *testing.T) {
	var seen []int
	recorder := InterceptorFunc{ID: "recorder", Fn: func(trs []*state.Transaction, prev, next *state.State) *state.Transaction {
		seen = append(seen, len(trs))
		assert.NotSame(t, prev, next)
		return nil
	}}
	p := newPipeline(t, WithInterceptors(recorder, trailer, recorder))

	typeText(t, p, "x")
	assert.Equal(t, []int{1, 2}, seen)

	seen = nil
	s := p.State()
	_, err := p.Dispatch(s.Tr().SetSelection(state.Cursor(2)))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1}, seen, "trailer has nothing to do")
}

func TestUnchangedAmendmentIgnored(t *testing.T) {
	m := NewMetrics(nil)
	noop := InterceptorFunc{ID: "noop", Fn: func(_ []*state.Transaction, _, next *state.State) *state.Transaction {
		return next.Tr()
	}}
	var commits []Commit
	p := newPipeline(t, WithInterceptors(noop), WithMetrics(m), WithCommitHook(func(c Commit) { commits = append(commits, c) }))
	typeText(t, p, "x")

	require.Len(t, commits, 1)
	assert.Empty(t, commits[0].Amendments)
	assert.Len(t, commits[0].Transactions, 1)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.amendments.WithLabelValues("noop")))
}

func TestInterceptorPanicRecovered(t *testing.T) {
	m := NewMetrics(nil)
	boom := InterceptorFunc{ID: "boom", Fn: func([]*state.Transaction, *state.State, *state.State) *state.Transaction {
		panic("boom")
	}}
	p := newPipeline(t, WithInterceptors(boom, trailer), WithMetrics(m))

	next := typeText(t, p, "x")
	assert.Equal(t, "x", next.Doc().TextContent(next.Doc().Child(0, 1)))
	assert.Equal(t, 3, next.Doc().ChildCount(0), "later interceptors still run")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.panics.WithLabelValues("boom")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.amendments.WithLabelValues("trailer")))
}

func TestUndoRevertsAmendments(t *testing.T) {
	p := newPipeline(t, WithInterceptors(trailer))
	original := p.State()

	typeText(t, p, "x")
	require.Equal(t, 1, p.History().UndoCount())

	undone, err := p.Undo()
	require.NoError(t, err)
	assert.True(t, d.Equal(original.Doc(), undone.Doc()), "got %s", undone.Doc())
	assert.Equal(t, original.Selection(), undone.Selection())
	assert.Equal(t, 0, p.History().UndoCount())
	assert.Equal(t, 1, p.History().RedoCount())

	redone, err := p.Redo()
	require.NoError(t, err)
	want := d.MustNew(d.Doc(d.Ptext("ab"), d.Ptext("x"), d.P()))
	assert.True(t, d.Equal(want, redone.Doc()), "got %s", redone.Doc())
	assert.Equal(t, 1, p.History().UndoCount())
	assert.Equal(t, 0, p.History().RedoCount())

	_, err = p.Redo()
	assert.ErrorIs(t, err, ErrNothingToRedo)
}

func TestUndoNothing(t *testing.T) {
	p := newPipeline(t)
	s, err := p.Undo()
	assert.ErrorIs(t, err, ErrNothingToUndo)
	assert.Same(t, p.State(), s)
}

func TestHistoryGrouping(t *testing.T) {
	p := newPipeline(t, WithHistory(10, time.Second))
	now := time.Unix(0, 0)
	p.History().now = func() time.Time { return now }

	typeText(t, p, "a")
	now = now.Add(100 * time.Millisecond)
	typeText(t, p, "b")
	assert.Equal(t, 1, p.History().UndoCount(), "typing within the delay groups")

	now = now.Add(2 * time.Second)
	typeText(t, p, "c")
	assert.Equal(t, 2, p.History().UndoCount())

	s, err := p.Undo()
	require.NoError(t, err)
	assert.Equal(t, "ab", s.Doc().TextContent(s.Doc().Child(0, 1)))
	s, err = p.Undo()
	require.NoError(t, err)
	assert.True(t, s.Doc().IsEmptyTextblock(s.Doc().Child(0, 1)))
}

func TestHistoryBounded(t *testing.T) {
	p := newPipeline(t, WithHistory(2, 0))
	for _, c := range []string{"a", "b", "c"} {
		s := p.State()
		tr := s.Tr()
		require.NoError(t, tr.InsertText(c, s.Selection().From(), s.Selection().To()))
		_, err := p.Dispatch(tr)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, p.History().UndoCount())
}

func TestNotAddedToHistory(t *testing.T) {
	p := newPipeline(t)
	tr := p.State().Tr()
	require.NoError(t, tr.InsertText("x", 5, 5))
	tr.SetMeta(state.MetaAddToHistory, false)
	_, err := p.Dispatch(tr)
	require.NoError(t, err)
	assert.False(t, p.History().CanUndo())
}

func TestSelectionOnlyCommitNotRecorded(t *testing.T) {
	p := newPipeline(t)
	_, err := p.Dispatch(p.State().Tr().SetSelection(state.Cursor(1)))
	require.NoError(t, err)
	assert.False(t, p.History().CanUndo())
	assert.Equal(t, uint64(1), p.Version())
}

func TestResetClearsHistory(t *testing.T) {
	p := newPipeline(t)
	typeText(t, p, "x")
	s := state.New(d.Blank(), state.Cursor(1))
	p.Reset(s)
	assert.Same(t, s, p.State())
	assert.Equal(t, uint64(0), p.Version())
	assert.False(t, p.History().CanUndo())
}

func TestCommitPublished(t *testing.T) {
	bus := event.NewBus()
	require.NoError(t, bus.Start())
	defer bus.Stop(context.Background())

	got := make(chan event.Committed, 1)
	_, err := bus.Subscribe(event.TopicCommitted, func(_ context.Context, ev any) error {
		got <- ev.(event.Event[event.Committed]).Payload
		return nil
	})
	require.NoError(t, err)

	p := newPipeline(t, WithInterceptors(trailer), WithEventBus(bus, "s1"))
	typeText(t, p, "x")

	select {
	case c := <-got:
		assert.Equal(t, "s1", c.Session)
		assert.Equal(t, uint64(1), c.Version)
		assert.True(t, c.DocChanged)
		assert.Equal(t, []string{"trailer"}, c.Amendments)
		doc, err := d.ParseJSON(c.Payload)
		require.NoError(t, err)
		assert.Equal(t, 3, doc.ChildCount(doc.Root()))
	case <-time.After(time.Second):
		t.Fatal("commit not published")
	}
}

func TestNormalize(t *testing.T) {
	var commits []Commit
	hook := WithCommitHook(func(c Commit) { commits = append(commits, c) })

	t.Run("clean document is not committed", func(t *testing.T) {
		commits = nil
		p := newPipeline(t, WithInterceptors(trailer), hook)
		before := p.State()
		s, repaired, err := p.Normalize("load")
		require.NoError(t, err)
		assert.False(t, repaired)
		assert.Same(t, before, s)
		assert.Equal(t, uint64(0), p.Version())
		assert.Empty(t, commits)
	})

	t.Run("repair is committed outside history", func(t *testing.T) {
		commits = nil
		doc := d.MustNew(d.Doc(d.Ptext("ab")))
		p := New(state.New(doc, state.Cursor(1)), WithInterceptors(trailer), hook)
		s, repaired, err := p.Normalize("load")
		require.NoError(t, err)
		assert.True(t, repaired)
		assert.Equal(t, 2, s.Doc().ChildCount(s.Doc().Root()))
		assert.Equal(t, uint64(1), p.Version())
		require.Len(t, commits, 1)
		assert.Equal(t, "load", commits[0].Transactions[0].Origin())
		assert.False(t, p.History().CanUndo())
	})
}
