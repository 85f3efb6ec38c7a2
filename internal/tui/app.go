package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"

	"github.com/nahidnstu12/team-docs-sub001/internal/editor"
	"github.com/nahidnstu12/team-docs-sub001/internal/input/mouse"
	"github.com/nahidnstu12/team-docs-sub001/internal/palette"
	"github.com/nahidnstu12/team-docs-sub001/internal/state"
)

// SaveFunc persists the editor document.
type SaveFunc func(ctx context.Context) error

// Option configures an App.
type Option func(*App)

// WithTitle sets the title shown in the status line.
func WithTitle(title string) Option {
	return func(a *App) { a.title = title }
}

// WithSave sets the Ctrl+S handler.
func WithSave(fn SaveFunc) Option {
	return func(a *App) { a.save = fn }
}

// WithTheme sets the styles.
func WithTheme(t Theme) Option {
	return func(a *App) { a.theme = t }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(a *App) { a.logger = l }
}

// App runs one editor session on a terminal screen.
type App struct {
	screen tcell.Screen
	ed     *editor.Editor
	theme  Theme
	title  string
	save   SaveFunc
	logger zerolog.Logger

	layout *layout
	scroll int
	status string
	quit   bool
	// held is the button mask of the last mouse event; only presses are
	// forwarded, not drags or releases.
	held tcell.ButtonMask
	// shown is the selection of the last draw.
	shown state.Selection
}

// New creates an app drawing ed on screen. The screen must be
// initialized by the caller.
func New(screen tcell.Screen, ed *editor.Editor, opts ...Option) *App {
	a := &App{
		screen: screen,
		ed:     ed,
		theme:  DefaultTheme(),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Anchor places the palette below the cursor in s. Front ends pass it to
// the editor through editor.WithAnchor.
func (a *App) Anchor(s *state.State) palette.Anchor {
	if a == nil {
		return palette.Anchor{}
	}
	row, col, ok := layoutDoc(s.Doc(), a.theme).locate(s.Selection().Head)
	if !ok {
		return palette.Anchor{}
	}
	return palette.Anchor{X: col, Y: row - a.scroll + 1}
}

// Run draws and handles events until Ctrl+Q or ctx ends.
func (a *App) Run(ctx context.Context) error {
	a.screen.EnableMouse()
	a.screen.EnablePaste()

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	a.Draw()
	for !a.quit {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			a.Handle(ctx, ev)
			a.Draw()
		}
	}
	return nil
}

// Handle processes one terminal event.
func (a *App) Handle(ctx context.Context, ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		k, ok := convertKey(ev)
		if !ok {
			return
		}
		switch {
		case isCtrl(k, 'q'):
			a.quit = true
		case isCtrl(k, 's'):
			a.doSave(ctx)
		default:
			a.status = ""
			a.ed.HandleKey(k)
		}
	case *tcell.EventMouse:
		a.handleMouse(ev)
	case *tcell.EventResize:
		a.screen.Sync()
	}
}

// Quit reports whether Ctrl+Q was pressed.
func (a *App) Quit() bool { return a.quit }

func (a *App) handleMouse(ev *tcell.EventMouse) {
	buttons := ev.Buttons()
	switch {
	case buttons&tcell.WheelUp != 0:
		a.scroll = max(a.scroll-1, 0)
		return
	case buttons&tcell.WheelDown != 0:
		a.scroll++
		return
	}
	pressed := buttons &^ a.held
	a.held = buttons & (tcell.Button1 | tcell.Button2 | tcell.Button3)
	button := convertButton(pressed)
	if button == mouse.ButtonNone || a.layout == nil {
		return
	}
	x, y := ev.Position()
	me := mouse.Event{
		Position:  mouse.Position{X: x, Y: y},
		Button:    button,
		Modifiers: convertMod(ev.Modifiers()),
		Action:    mouse.ActionPress,
		Pos:       mouse.NoPos,
		Timestamp: time.Now(),
	}
	if pos, offset, ok := a.layout.hit(y+a.scroll, x); ok {
		me.Pos, me.Offset = pos, offset
	}
	a.ed.HandlePointer(me)
}

func (a *App) doSave(ctx context.Context) {
	if a.save == nil {
		a.status = "no store configured"
		return
	}
	if err := a.save(ctx); err != nil {
		a.logger.Error().Err(err).Msg("save failed")
		a.status = fmt.Sprintf("save failed: %v", err)
		return
	}
	a.status = "saved"
}
