package editor

import (
	"errors"
	"unicode"

	"github.com/nahidnstu12/team-docs-sub001/internal/command"
	"github.com/nahidnstu12/team-docs-sub001/internal/document"
	"github.com/nahidnstu12/team-docs-sub001/internal/input"
	"github.com/nahidnstu12/team-docs-sub001/internal/input/key"
	"github.com/nahidnstu12/team-docs-sub001/internal/input/mouse"
	"github.com/nahidnstu12/team-docs-sub001/internal/link"
	"github.com/nahidnstu12/team-docs-sub001/internal/palette"
	"github.com/nahidnstu12/team-docs-sub001/internal/state"
	"github.com/nahidnstu12/team-docs-sub001/internal/toggle"
)

// bindRouter registers the handlers of every focus mode. Handlers run
// with e.mu held.
func (e *Editor) bindRouter() {
	r := e.router

	enter := command.Chain(toggle.Enter, e.marks.PreEnter, command.SplitBlock)
	backspace := command.Chain(toggle.Backspace, command.DeleteBackward)

	r.Handle(input.FocusDocument, input.ActionEnter, e.doc(enter))
	r.Handle(input.FocusDocument, input.ActionBackspace, e.doc(backspace))
	r.Handle(input.FocusDocument, input.ActionUndo, func(key.Event) bool {
		_, err := e.pipeline.Undo()
		return err == nil
	})
	r.Handle(input.FocusDocument, input.ActionRedo, func(key.Event) bool {
		_, err := e.pipeline.Redo()
		return err == nil
	})
	r.Handle(input.FocusDocument, input.ActionLink, func(key.Event) bool {
		if err := e.links.OpenCreate(e.pipeline.State()); err != nil {
			e.logger.Debug().Err(err).Msg("link dialog not opened")
			return false
		}
		e.lastErr = nil
		e.router.SetFocus(input.FocusDialog)
		return true
	})
	r.HandleFallback(input.FocusDocument, func(action string, _ key.Event) bool {
		cmd, ok := e.commands.Get(action)
		if !ok {
			e.logger.Debug().Str("action", action).Msg("unbound action")
			return false
		}
		applied := e.run(cmd)
		e.syncFocus()
		return applied
	})
	r.HandleText(input.FocusDocument, e.typeText)
	r.HandlePointer(input.FocusDocument, e.documentPointer)

	r.Handle(input.FocusPalette, input.ActionPaletteClose, func(key.Event) bool {
		e.closePalette()
		return true
	})
	r.Handle(input.FocusPalette, input.ActionPaletteInvoke, func(key.Event) bool {
		e.invokePalette()
		return true
	})
	r.Handle(input.FocusPalette, input.ActionPaletteUp, func(key.Event) bool {
		e.palette.Up()
		return true
	})
	r.Handle(input.FocusPalette, input.ActionPaletteDown, func(key.Event) bool {
		e.palette.Down()
		return true
	})
	r.Handle(input.FocusPalette, input.ActionPaletteBackspace, func(key.Event) bool {
		if e.palette.Backspace() {
			return true
		}
		// an empty query: the trigger itself goes
		e.closePalette()
		return e.run(backspace)
	})
	r.HandleText(input.FocusPalette, func(ev key.Event) bool {
		e.palette.AppendQuery(ev.Rune)
		return true
	})
	r.HandlePointer(input.FocusPalette, func(ev mouse.Event) bool {
		e.closePalette()
		return e.documentPointer(ev)
	})

	r.Handle(input.FocusDialog, input.ActionDialogCancel, func(key.Event) bool {
		e.links.Cancel()
		e.lastErr = nil
		e.router.SetFocus(input.FocusDocument)
		return true
	})
	r.Handle(input.FocusDialog, input.ActionDialogSubmit, func(key.Event) bool {
		e.submitLink()
		return true
	})
	r.Handle(input.FocusDialog, input.ActionDialogNext, func(key.Event) bool {
		e.links.NextField()
		return true
	})
	r.Handle(input.FocusDialog, input.ActionDialogBackspace, func(key.Event) bool {
		e.links.Backspace()
		return true
	})
	r.HandleText(input.FocusDialog, func(ev key.Event) bool {
		e.links.TypeRune(ev.Rune)
		return true
	})
}

// doc adapts a command to a document key handler.
func (e *Editor) doc(cmd command.Command) input.Handler {
	return func(key.Event) bool { return e.run(cmd) }
}

// typeText inserts a typed character. The trigger character, typed
// outside composition and outside code blocks, also opens the palette.
func (e *Editor) typeText(ev key.Event) bool {
	s := e.pipeline.State()
	from := s.Selection().From()
	if !e.run(command.InsertText(string(ev.Rune))) {
		return false
	}
	if ev.Composing || ev.Rune != e.palette.Trigger() || !e.triggerAllowed(from) {
		return true
	}
	next := e.pipeline.State()
	anchor := palette.Anchor{}
	if e.anchor != nil {
		anchor = e.anchor(next)
	}
	e.palette.Open(from, anchor)
	e.lastErr = nil
	e.router.SetFocus(input.FocusPalette)
	return true
}

func (e *Editor) triggerAllowed(pos int) bool {
	rp, ok := command.Textblock(e.pipeline.State().Doc(), pos)
	return ok && rp.Ancestor(func(k document.Kind) bool { return k == document.KindCodeBlock }) < 0
}

func (e *Editor) closePalette() {
	e.palette.Close()
	e.lastErr = nil
	e.router.SetFocus(input.FocusDocument)
}

// invokePalette runs the selected item. Focus returns to the document
// whatever the outcome, unless the item opened the link dialog.
func (e *Editor) invokePalette() {
	err := e.palette.Invoke(e.pipeline.State(), e.dispatch)
	e.lastErr = err
	e.syncFocus()
}

func (e *Editor) submitLink() {
	err := e.links.Submit(e.pipeline.State(), e.dispatch)
	e.lastErr = err
	if err != nil && errors.Is(err, link.ErrInvalid) {
		return
	}
	e.syncFocus()
}

// documentPointer handles clicks over the document: toggle headers first,
// then link text, then cursor placement. Double and triple clicks select
// the word and the block under the pointer.
func (e *Editor) documentPointer(ev mouse.Event) bool {
	if !ev.IsClick() || !ev.OverText() {
		return false
	}
	s := e.pipeline.State()
	doc := s.Doc()

	switch ev.Count {
	case 2:
		if from, to, ok := wordAt(doc, ev.Pos); ok {
			return e.run(selectRange(from, to))
		}
	case 3:
		if rp, ok := command.Textblock(doc, ev.Pos); ok {
			return e.run(selectRange(rp.Start(rp.Depth()), rp.End(rp.Depth())))
		}
	}

	if e.run(e.toggles.Click(ev.Pos, ev.Offset)) {
		return true
	}
	if ev.Modifiers.Has(key.ModShift) {
		return e.run(selectRange(s.Selection().Anchor, ev.Pos))
	}
	if _, _, _, err := link.Range(doc, ev.Pos); err == nil {
		if err := e.links.OpenEdit(s, ev.Pos); err == nil {
			e.lastErr = nil
			e.router.SetFocus(input.FocusDialog)
			return true
		}
	}
	return e.run(selectRange(ev.Pos, ev.Pos))
}

// selectRange places the selection, clamping both ends to visible text.
func selectRange(anchor, head int) command.Command {
	return func(s *state.State, dispatch command.Dispatch) bool {
		doc := s.Doc()
		a, ok := state.Near(doc, anchor, 1)
		if !ok {
			return false
		}
		h, ok := state.Near(doc, head, -1)
		if !ok {
			return false
		}
		sel := state.Range(a, h)
		if sel == s.Selection() {
			return true
		}
		if dispatch != nil {
			dispatch(s.Tr().SetSelection(sel).SetMeta(state.MetaOrigin, command.OriginMove))
		}
		return true
	}
}

// wordAt returns the extent of the word around pos in its textblock.
func wordAt(doc *document.Document, pos int) (from, to int, ok bool) {
	rp, found := command.Textblock(doc, pos)
	if !found {
		return 0, 0, false
	}
	start, end := rp.Start(rp.Depth()), rp.End(rp.Depth())
	text := []rune(doc.TextBetween(start, end, ""))
	i := pos - start
	isWord := func(j int) bool {
		return j >= 0 && j < len(text) && (unicode.IsLetter(text[j]) || unicode.IsDigit(text[j]) || text[j] == '_')
	}
	if !isWord(i) && !isWord(i-1) {
		return 0, 0, false
	}
	lo, hi := i, i
	for isWord(lo - 1) {
		lo--
	}
	for isWord(hi) {
		hi++
	}
	return start + lo, start + hi, true
}
