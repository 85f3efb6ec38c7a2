package input

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nahidnstu12/team-docs-sub001/internal/input/key"
	"github.com/nahidnstu12/team-docs-sub001/internal/input/mouse"
)

type recorder struct {
	actions []string
	text    []rune
}

func (rec *recorder) handler(name string) Handler {
	return func(key.Event) bool {
		rec.actions = append(rec.actions, name)
		return true
	}
}

func newRouter(t *testing.T) (*Router, *recorder) {
	t.Helper()
	r := New()
	rec := &recorder{}
	for _, f := range []Focus{FocusDocument, FocusPalette, FocusDialog} {
		f := f
		r.HandleFallback(f, func(action string, _ key.Event) bool {
			rec.actions = append(rec.actions, f.String()+":"+action)
			return true
		})
		r.HandleText(f, func(ev key.Event) bool {
			rec.text = append(rec.text, ev.Rune)
			return true
		})
	}
	return r, rec
}

func TestRoutingByFocus(t *testing.T) {
	tests := []struct {
		focus Focus
		spec  string
		want  string
	}{
		{FocusDocument, "Enter", "document:" + ActionEnter},
		{FocusDocument, "Ctrl+B", "document:mark.bold"},
		{FocusDocument, "Shift+Left", "document:select.left"},
		{FocusDocument, "Ctrl+Shift+Z", "document:" + ActionRedo},
		{FocusPalette, "Enter", "palette:" + ActionPaletteInvoke},
		{FocusPalette, "Escape", "palette:" + ActionPaletteClose},
		{FocusPalette, "Down", "palette:" + ActionPaletteDown},
		{FocusDialog, "Enter", "dialog:" + ActionDialogSubmit},
		{FocusDialog, "Tab", "dialog:" + ActionDialogNext},
	}
	for _, tt := range tests {
		t.Run(tt.focus.String()+"/"+tt.spec, func(t *testing.T) {
			r, rec := newRouter(t)
			r.SetFocus(tt.focus)
			res := r.HandleKey(key.MustParse(tt.spec))
			assert.True(t, res.Handled)
			assert.Equal(t, tt.focus, res.Focus)
			assert.Equal(t, []string{tt.want}, rec.actions)
		})
	}
}

func TestTextFallsThrough(t *testing.T) {
	r, rec := newRouter(t)
	for _, spec := range []string{"h", "/", "Space", "A"} {
		res := r.HandleKey(key.MustParse(spec))
		assert.True(t, res.Handled, spec)
		assert.Empty(t, res.Action, spec)
	}
	assert.Equal(t, []rune{'h', '/', ' ', 'A'}, rec.text)
	assert.Empty(t, rec.actions)

	res := r.HandleKey(key.MustParse("Ctrl+Q"))
	assert.False(t, res.Handled, "unbound control keys are not text")
}

func TestHandlerPrecedence(t *testing.T) {
	r, rec := newRouter(t)
	r.Handle(FocusDocument, ActionEnter, rec.handler("enter"))
	r.HandleKey(key.MustParse("Enter"))
	assert.Equal(t, []string{"enter"}, rec.actions)

	r.Handle(FocusDocument, ActionBackspace, func(key.Event) bool { return false })
	res := r.HandleKey(key.MustParse("Backspace"))
	assert.False(t, res.Handled, "a declining handler does not reach the fallback")
}

func TestFocusChangeInsideHandler(t *testing.T) {
	r, rec := newRouter(t)
	r.Handle(FocusPalette, ActionPaletteClose, func(key.Event) bool {
		r.SetFocus(FocusDocument)
		return true
	})
	r.SetFocus(FocusPalette)
	res := r.HandleKey(key.MustParse("Escape"))
	assert.True(t, res.Handled)
	assert.Equal(t, FocusDocument, r.Focus())
	assert.Empty(t, rec.actions, "the event is not replayed in the new focus")
}

func TestComposing(t *testing.T) {
	r, rec := newRouter(t)
	ev := key.NewRuneEvent('b', key.ModCtrl)
	ev.Composing = true
	assert.False(t, r.HandleKey(ev).Handled)

	ev = key.NewRuneEvent('の', key.ModNone)
	ev.Composing = true
	assert.True(t, r.HandleKey(ev).Handled)

	enter := key.NewSpecialEvent(key.KeyEnter, key.ModNone)
	enter.Composing = true
	assert.False(t, r.HandleKey(enter).Handled)

	assert.Equal(t, []rune{'の'}, rec.text)
	assert.Empty(t, rec.actions)
}

func TestRebinding(t *testing.T) {
	r, rec := newRouter(t)
	require.NoError(t, r.Bind(FocusDocument, "Ctrl+B", "mark.strike"))
	require.NoError(t, r.Bind(FocusDocument, "<C-j>", ActionEnter))
	r.HandleKey(key.MustParse("Ctrl+B"))
	r.HandleKey(key.MustParse("Ctrl+J"))
	assert.Equal(t, []string{"document:mark.strike", "document:" + ActionEnter}, rec.actions)

	require.NoError(t, r.Unbind(FocusDocument, "Ctrl+B"))
	_, ok := r.Lookup(FocusDocument, key.MustParse("Ctrl+B"))
	assert.False(t, ok)

	assert.Error(t, r.Bind(FocusDocument, "Hyper+x", "noop"))
	assert.Error(t, r.Load(NewKeymap("bad", FocusDocument).Add("x", "")))
}

func TestWithKeymaps(t *testing.T) {
	km := NewKeymap("mini", FocusDocument).Add("Enter", "custom")
	bad := NewKeymap("bad", FocusDocument).Add("", "x")
	r := New(WithKeymaps(km, bad))
	assert.Equal(t, []Binding{{Keys: "Enter", Action: "custom"}}, r.Bindings(FocusDocument))
	assert.Empty(t, r.Bindings(FocusPalette))
}

func TestDefaultKeymapsValid(t *testing.T) {
	for _, km := range DefaultKeymaps() {
		assert.NoError(t, km.Validate(), km.Name)
	}
}

func TestPointerRouting(t *testing.T) {
	r := New()
	var got []mouse.Event
	r.HandlePointer(FocusDocument, func(ev mouse.Event) bool {
		got = append(got, ev)
		return true
	})
	click := mouse.Event{Button: mouse.ButtonLeft, Action: mouse.ActionPress, Position: mouse.Position{X: 3, Y: 1}, Pos: 4}
	assert.True(t, r.HandlePointerEvent(click))
	assert.True(t, r.HandlePointerEvent(click))
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Count)
	assert.Equal(t, 2, got[1].Count)

	r.SetFocus(FocusDialog)
	assert.False(t, r.HandlePointerEvent(click), "no pointer handler for the dialog")
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	r := New(WithMetrics(m))
	r.HandleText(FocusDocument, func(key.Event) bool { return true })
	r.HandleKey(key.MustParse("x"))
	r.HandleKey(key.MustParse("Ctrl+Q"))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.keys.WithLabelValues("document", OutcomeText)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.keys.WithLabelValues("document", OutcomeUnhandled)))
}

func TestFocusNames(t *testing.T) {
	f, ok := FocusFromName("palette")
	assert.True(t, ok)
	assert.Equal(t, FocusPalette, f)
	assert.True(t, f.Overlay())
	_, ok = FocusFromName("sidebar")
	assert.False(t, ok)
	assert.False(t, FocusDocument.Overlay())
}
