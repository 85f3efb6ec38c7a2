package editor

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	d "github.com/nahidnstu12/team-docs-sub001/internal/document"
	"github.com/nahidnstu12/team-docs-sub001/internal/event"
	"github.com/nahidnstu12/team-docs-sub001/internal/input"
	"github.com/nahidnstu12/team-docs-sub001/internal/input/key"
	"github.com/nahidnstu12/team-docs-sub001/internal/input/mouse"
	"github.com/nahidnstu12/team-docs-sub001/internal/link"
	"github.com/nahidnstu12/team-docs-sub001/internal/policy/trailing"
	"github.com/nahidnstu12/team-docs-sub001/internal/state"
)

var bold = d.NewMark(d.MarkBold, nil)

func payload(t *testing.T, root d.Node) []byte {
	t.Helper()
	data, err := d.MustNew(root).MarshalJSON()
	require.NoError(t, err)
	return data
}

func newEditor(t *testing.T, root d.Node, opts ...Option) *Editor {
	t.Helper()
	ed, err := New(payload(t, root), opts...)
	require.NoError(t, err)
	return ed
}

func press(t *testing.T, ed *Editor, specs ...string) {
	t.Helper()
	for _, s := range specs {
		ed.HandleKey(key.MustParse(s))
	}
}

func typeText(ed *Editor, text string) {
	for _, r := range text {
		ed.HandleKey(key.NewRuneEvent(r, key.ModNone))
	}
}

func assertDoc(t *testing.T, ed *Editor, want d.Node) {
	t.Helper()
	got := ed.State().Doc()
	assert.True(t, d.Equal(d.MustNew(want), got), "got %s", got)
}

func TestPaletteHeadingScenario(t *testing.T) {
	ed := newEditor(t, d.Doc(d.P()))
	typeText(ed, "/")
	require.Equal(t, input.FocusPalette, ed.Focus())

	typeText(ed, "head")
	snap, err := ed.Snapshot()
	require.NoError(t, err)
	require.NotNil(t, snap.Palette)
	assert.Equal(t, "head", snap.Palette.Query)
	assert.Equal(t, "heading1", snap.Palette.Groups[0].Items[0].ID)
	assertDoc(t, ed, d.Doc(d.Ptext("/"), d.P()))

	press(t, ed, "Enter")
	assert.Equal(t, input.FocusDocument, ed.Focus())
	assert.False(t, ed.Palette().IsOpen())
	assertDoc(t, ed, d.Doc(d.H(1), d.P()))
	assert.Equal(t, state.Cursor(1), ed.State().Selection())
}

func TestPaletteEscapeAndBackspace(t *testing.T) {
	ed := newEditor(t, d.Doc(d.P()))
	typeText(ed, "/")
	press(t, ed, "Escape")
	assert.Equal(t, input.FocusDocument, ed.Focus())
	assertDoc(t, ed, d.Doc(d.Ptext("/"), d.P()))

	typeText(ed, "/q")
	press(t, ed, "Backspace")
	assert.Equal(t, input.FocusPalette, ed.Focus(), "backspace edits the query first")
	press(t, ed, "Backspace")
	assert.Equal(t, input.FocusDocument, ed.Focus())
	assertDoc(t, ed, d.Doc(d.Ptext("/"), d.P()))
}

func TestPaletteNavigationKeys(t *testing.T) {
	ed := newEditor(t, d.Doc(d.P()))
	typeText(ed, "/head")
	press(t, ed, "Down", "Down", "Down", "Up")
	snap, err := ed.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, [2]int{0, 1}, [2]int{snap.Palette.Group, snap.Palette.Item})
	press(t, ed, "Enter")
	assertDoc(t, ed, d.Doc(d.H(2), d.P()))
}

func TestPaletteLinkItemFocusesDialog(t *testing.T) {
	ed := newEditor(t, d.Doc(d.P()))
	typeText(ed, "/link")
	press(t, ed, "Enter")
	assert.Equal(t, input.FocusDialog, ed.Focus())
	assertDoc(t, ed, d.Doc(d.P(), d.P()))
}

func TestPaletteNotInCodeBlock(t *testing.T) {
	ed := newEditor(t, d.Doc(d.Code("", ""), d.P()))
	typeText(ed, "/")
	assert.Equal(t, input.FocusDocument, ed.Focus())
	assertDoc(t, ed, d.Doc(d.Code("", "/"), d.P()))
}

func TestComposingNeverOpensPalette(t *testing.T) {
	ed := newEditor(t, d.Doc(d.P()))
	ev := key.NewRuneEvent('/', key.ModNone)
	ev.Composing = true
	ed.HandleKey(ev)
	assert.Equal(t, input.FocusDocument, ed.Focus())
	assertDoc(t, ed, d.Doc(d.Ptext("/"), d.P()))
}

func TestConfigureTrigger(t *testing.T) {
	ed := newEditor(t, d.Doc(d.P()))
	ed.Configure('>', 10)
	typeText(ed, "/")
	assert.Equal(t, input.FocusDocument, ed.Focus())
	typeText(ed, ">")
	assert.Equal(t, input.FocusPalette, ed.Focus())
}

func TestToggleBackspaceScenarios(t *testing.T) {
	t.Run("empty sole body block", func(t *testing.T) {
		ed := newEditor(t, d.Doc(d.Toggle(true, "Notes", d.P())))
		assertDoc(t, ed, d.Doc(d.Toggle(true, "Notes", d.P()), d.P()))
		require.True(t, ed.HandleClick(9, 100))
		require.Equal(t, state.Cursor(9), ed.State().Selection())
		press(t, ed, "Backspace")
		assertDoc(t, ed, d.Doc(d.P()))
	})
	t.Run("summary with text", func(t *testing.T) {
		ed := newEditor(t, d.Doc(d.Toggle(true, "Intro", d.P())))
		press(t, ed, "End", "Home")
		require.Equal(t, state.Cursor(2), ed.State().Selection())
		press(t, ed, "Backspace")
		assertDoc(t, ed, d.Doc(d.Ptext("Intro"), d.P()))
	})
}

func TestClearMarksAfterDeletingFormattedParagraph(t *testing.T) {
	ed := newEditor(t, d.Doc(d.P(d.T("abc", bold)), d.P()))
	press(t, ed, "Shift+End", "Backspace")
	stored, set := ed.State().StoredMarks()
	assert.True(t, set)
	assert.Empty(t, stored)

	typeText(ed, "x")
	assertDoc(t, ed, d.Doc(d.Ptext("x"), d.P()))
}

func TestEnterInPlainParagraphDropsFormatting(t *testing.T) {
	ed := newEditor(t, d.Doc(d.P(d.T("ab", bold)), d.P()))
	press(t, ed, "End", "Enter")
	typeText(ed, "c")
	assertDoc(t, ed, d.Doc(d.P(d.T("ab", bold)), d.Ptext("c"), d.P()))
}

func TestToggleClickAndUndo(t *testing.T) {
	ed := newEditor(t, d.Doc(d.Toggle(true, "sum", d.P())))
	require.True(t, ed.HandleClick(3, 5))
	assertDoc(t, ed, d.Doc(d.Toggle(false, "sum", d.P()), d.P()))

	press(t, ed, "Ctrl+Z")
	assertDoc(t, ed, d.Doc(d.Toggle(true, "sum", d.P()), d.P()))
	press(t, ed, "Ctrl+Shift+Z")
	assertDoc(t, ed, d.Doc(d.Toggle(false, "sum", d.P()), d.P()))

	require.True(t, ed.HandleClick(3, 50))
	assert.Equal(t, state.Cursor(5), ed.State().Selection(), "outside the hit zone only the cursor moves")
}

func TestLinkDialog(t *testing.T) {
	ed := newEditor(t, d.Doc(d.Ptext("hello"), d.P()))
	press(t, ed, "Shift+End", "Ctrl+K")
	require.Equal(t, input.FocusDialog, ed.Focus())

	typeText(ed, "https://go.dev")
	press(t, ed, "Enter")
	assert.Equal(t, input.FocusDocument, ed.Focus())
	doc := ed.State().Doc()
	rp, err := doc.Resolve(1)
	require.NoError(t, err)
	m, ok := doc.Marks(rp.NodeAfter()).Get(d.MarkLink)
	require.True(t, ok)
	assert.Equal(t, "https://go.dev", m.Href())
	assert.Equal(t, d.LinkRel, m.Attrs.String("rel"))

	press(t, ed, "Ctrl+K", "Enter")
	assert.Equal(t, input.FocusDialog, ed.Focus(), "an invalid dialog stays open")
	snap, err := ed.Snapshot()
	require.NoError(t, err)
	assert.NotEmpty(t, snap.Error)
	press(t, ed, "Escape")
	assert.Equal(t, input.FocusDocument, ed.Focus())

	require.True(t, ed.HandleClick(3, 0))
	snap, err = ed.Snapshot()
	require.NoError(t, err)
	require.NotNil(t, snap.Dialog)
	assert.Equal(t, link.ModeEdit, snap.Dialog.Mode)
	assert.Equal(t, "hello", snap.Dialog.Text)
}

func TestDoubleClickSelectsWord(t *testing.T) {
	ed := newEditor(t, d.Doc(d.Ptext("one two"), d.P()))
	ev := mouse.Event{Button: mouse.ButtonLeft, Action: mouse.ActionPress, Position: mouse.Position{X: 6}, Pos: 6}
	require.True(t, ed.HandlePointer(ev))
	assert.Equal(t, state.Cursor(6), ed.State().Selection())
	require.True(t, ed.HandlePointer(ev))
	assert.Equal(t, state.Range(5, 8), ed.State().Selection())
	require.True(t, ed.HandlePointer(ev))
	assert.Equal(t, state.Range(1, 8), ed.State().Selection())
}

func TestExec(t *testing.T) {
	ed := newEditor(t, d.Doc(d.Ptext("a")))
	require.NoError(t, ed.Exec("block.heading2"))
	assertDoc(t, ed, d.Doc(d.H(2, d.T("a")), d.P()))
	assert.ErrorIs(t, ed.Exec("nope"), ErrUnknownCommand)
	assert.ErrorIs(t, ed.Exec("cursor.home"), ErrNotApplicable)

	require.NoError(t, ed.Exec(input.ActionLink))
	assert.Equal(t, input.FocusDialog, ed.Focus())
	require.NoError(t, ed.Undo())
	assertDoc(t, ed, d.Doc(d.Ptext("a"), d.P()))
}

func TestLoad(t *testing.T) {
	ed := newEditor(t, d.Doc(d.P()))
	typeText(ed, "x")
	require.NoError(t, ed.Load(payload(t, d.Doc(d.Toggle(false, "t")))))
	assertDoc(t, ed, d.Doc(d.Toggle(false, "t", d.P()), d.P()))
	assert.Error(t, ed.Undo(), "load drops the history")

	assert.ErrorIs(t, ed.Load([]byte("{")), ErrInvalidPayload)
	_, err := New([]byte(`{"type":"nope"}`))
	assert.Error(t, err)
}

func TestVersionCountsEdits(t *testing.T) {
	bus := event.NewBus()
	require.NoError(t, bus.Start())
	defer bus.Stop(context.Background())
	got := make(chan event.Committed, 4)
	_, err := bus.Subscribe(event.TopicCommitted, func(_ context.Context, ev any) error {
		got <- ev.(event.Event[event.Committed]).Payload
		return nil
	})
	require.NoError(t, err)

	ed := newEditor(t, d.Doc(d.Ptext("a"), d.P()), WithEventBus(bus))
	assert.Equal(t, uint64(0), ed.Version())
	require.NoError(t, ed.Exec("block.heading1"))
	assert.Equal(t, uint64(1), ed.Version())

	select {
	case c := <-got:
		assert.Equal(t, uint64(1), c.Version)
		assert.True(t, c.DocChanged, "a clean load publishes no commit")
	case <-time.After(time.Second):
		t.Fatal("commit not published")
	}

	require.NoError(t, ed.Load(payload(t, d.Doc(d.Ptext("b"), d.P()))))
	assert.Equal(t, uint64(0), ed.Version())
	require.NoError(t, ed.Load(payload(t, d.Doc(d.Ptext("b")))))
	assert.Equal(t, uint64(1), ed.Version(), "a repaired load is committed")
}

func TestSnapshotJSON(t *testing.T) {
	ed := newEditor(t, d.Doc(d.P()), WithID("s1"))
	typeText(ed, "/")
	snap, err := ed.Snapshot()
	require.NoError(t, err)
	data, err := json.Marshal(snap)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "s1", got["session"])
	assert.Equal(t, "palette", got["focus"])
	assert.Equal(t, map[string]any{"anchor": 2.0, "head": 2.0}, got["selection"])
	assert.Contains(t, got, "palette")
	assert.NotContains(t, got, "dialog")
}

// TestInvariantsHold drives the editor with a pseudo-random key stream and
// checks the document invariants after every turn.
func TestInvariantsHold(t *testing.T) {
	keys := []string{
		"a", "b", "Space", "/", "Enter", "Backspace", "Left", "Right", "Up", "Down",
		"Home", "End", "Shift+Left", "Ctrl+B", "Ctrl+Z", "Ctrl+Y", "Escape", "Down",
		"Ctrl+Enter", "Delete",
	}
	start := d.Doc(
		d.H(1, d.T("Title")),
		d.Toggle(true, "Notes", d.Ptext("body"), d.Bullets(d.Item(d.Ptext("i")))),
		d.Quote(d.Ptext("q")),
		d.Toggle(false, "closed", d.P()),
	)
	for seed := uint64(1); seed <= 5; seed++ {
		ed := newEditor(t, start)
		rng := rand.New(rand.NewPCG(seed, 7))
		for i := 0; i < 300; i++ {
			spec := keys[rng.IntN(len(keys))]
			ed.HandleKey(key.MustParse(spec))
			if ed.Focus() == input.FocusPalette && rng.IntN(3) == 0 {
				press(t, ed, "Enter")
			}
			if ed.Focus() == input.FocusDialog {
				press(t, ed, "Escape")
			}
			checkInvariants(t, ed, seed, i, spec)
			if t.Failed() {
				return
			}
		}
	}
}

func checkInvariants(t *testing.T, ed *Editor, seed uint64, step int, spec string) {
	t.Helper()
	s := ed.State()
	doc := s.Doc()
	require.True(t, trailing.Satisfied(doc), "seed %d step %d (%s): trailing block missing in %s", seed, step, spec, doc)
	doc.Descendants(doc.Root(), func(id d.NodeID, _ int) bool {
		if doc.Kind(id) == d.KindToggle {
			assert.GreaterOrEqual(t, doc.ChildCount(id), 2, "seed %d step %d (%s): toggle without body in %s", seed, step, spec, doc)
			assert.Equal(t, d.KindToggleSummary, doc.Kind(doc.Child(id, 0)))
		}
		return true
	})
	data, err := doc.MarshalJSON()
	require.NoError(t, err)
	back, err := d.ParseJSON(data, d.Strict())
	require.NoError(t, err)
	assert.True(t, d.Equal(doc, back), "seed %d step %d: round trip changed %s", seed, step, doc)
	assert.True(t, s.Selection().Valid(doc), "seed %d step %d (%s): selection %s invalid in %s", seed, step, spec, s.Selection(), doc)
}
