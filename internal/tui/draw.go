package tui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/nahidnstu12/team-docs-sub001/internal/editor"
	"github.com/nahidnstu12/team-docs-sub001/internal/link"
)

const paletteWidth = 36

type styledText struct {
	text  string
	style tcell.Style
}

// Draw renders the document, the open overlay and the status line.
func (a *App) Draw() {
	s := a.ed.State()
	a.layout = layoutDoc(s.Doc(), a.theme)
	ov := a.ed.Overlay()

	a.screen.Clear()
	w, h := a.screen.Size()
	body := max(h-1, 0)

	sel := s.Selection()
	row, col, ok := a.layout.locate(sel.Head)
	if ok && sel != a.shown {
		a.follow(row, body)
	}
	a.shown = sel
	a.scroll = min(a.scroll, max(len(a.layout.lines)-1, 0))
	a.drawDoc(w, body, sel.From(), sel.To())

	switch {
	case ov.Dialog != nil:
		a.screen.HideCursor()
		a.drawDialog(w, body, ov.Dialog, ov.Error)
	case ov.Palette != nil:
		a.drawPalette(w, body, ov.Palette)
		a.screen.HideCursor()
	case ok && row >= a.scroll && row-a.scroll < body:
		a.screen.ShowCursor(col, row-a.scroll)
	default:
		a.screen.HideCursor()
	}
	a.drawStatus(w, h-1, ov.Error)
	a.screen.Show()
}

// follow scrolls so row is visible. It runs when the selection moved, so
// wheel scrolling is kept until the next edit or cursor move.
func (a *App) follow(row, height int) {
	if height <= 0 {
		return
	}
	if row < a.scroll {
		a.scroll = row
	}
	if row >= a.scroll+height {
		a.scroll = row - height + 1
	}
}

func (a *App) drawDoc(w, h, from, to int) {
	for y := 0; y < h; y++ {
		i := y + a.scroll
		if i >= len(a.layout.lines) {
			return
		}
		ln := &a.layout.lines[i]
		x := puts(a.screen, 0, y, w, ln.prefix, ln.prefixStyle)
		if ln.fill != 0 {
			for ; x < w; x++ {
				a.screen.SetContent(x, y, ln.fill, nil, ln.fillStyle)
			}
			continue
		}
		for _, c := range ln.cells {
			if x >= w {
				break
			}
			style := c.style
			if from != to && c.pos >= from && c.pos < to {
				style = a.theme.Selection
			}
			a.screen.SetContent(x, y, c.r, nil, style)
			x++
		}
	}
}

func (a *App) drawPalette(w, h int, p *editor.PaletteView) {
	x := min(max(p.Anchor.X, 0), max(w-paletteWidth, 0))
	y := max(p.Anchor.Y, 0)
	width := min(paletteWidth, w)

	rows := []styledText{{"/" + p.Query, a.theme.Overlay}}
	for gi, g := range p.Groups {
		rows = append(rows, styledText{g.Name, a.theme.Muted})
		for ii, it := range g.Items {
			style := a.theme.Overlay
			if gi == p.Group && ii == p.Item {
				style = a.theme.Selected
			}
			text := it.Title
			if it.Icon != "" {
				text = it.Icon + " " + text
			}
			if it.Subtitle != "" {
				text += "  " + it.Subtitle
			}
			rows = append(rows, styledText{" " + text, style})
		}
	}
	if len(p.Groups) == 0 {
		msg := "No results"
		if p.Suggestion != "" {
			msg = fmt.Sprintf("Did you mean %q?", p.Suggestion)
		}
		rows = append(rows, styledText{msg, a.theme.Muted})
	}

	// Flip above the anchor when the list does not fit below it.
	if y+len(rows) > h && y-len(rows)-1 >= 0 {
		y = y - len(rows) - 1
	}
	for i, r := range rows {
		if y+i >= h {
			return
		}
		box(a.screen, x, y+i, width, r.style)
		puts(a.screen, x+1, y+i, x+width-1, r.text, r.style)
	}
}

func (a *App) drawDialog(w, h int, d *link.Dialog, errMsg string) {
	width := min(50, w)
	x := max((w-width)/2, 0)
	y := max(h/3, 0)

	title := "Insert link"
	if d.Mode == link.ModeEdit {
		title = "Edit link"
	}
	rows := []struct {
		label string
		value string
		field link.Field
	}{
		{"Text", d.Text, link.FieldText},
		{"URL ", d.URL, link.FieldURL},
	}

	box(a.screen, x, y, width, a.theme.Overlay)
	puts(a.screen, x+1, y, x+width-1, title, a.theme.Overlay.Bold(true))
	for i, r := range rows {
		style := a.theme.Overlay
		if r.field == d.Field {
			style = a.theme.Selected
		}
		box(a.screen, x, y+1+i, width, a.theme.Overlay)
		end := puts(a.screen, x+1, y+1+i, x+width-1, r.label+": ", a.theme.Overlay)
		end = puts(a.screen, end, y+1+i, x+width-1, r.value, style)
		if r.field == d.Field {
			a.screen.ShowCursor(end, y+1+i)
		}
	}
	box(a.screen, x, y+3, width, a.theme.Overlay)
	if errMsg != "" {
		puts(a.screen, x+1, y+3, x+width-1, errMsg, a.theme.Error.Background(tcell.ColorNavy))
	} else {
		puts(a.screen, x+1, y+3, x+width-1, "Enter apply  Tab switch  Esc cancel", a.theme.Muted)
	}
}

func (a *App) drawStatus(w, y int, errMsg string) {
	if y < 0 {
		return
	}
	box(a.screen, 0, y, w, a.theme.Status)
	left := a.title
	if left == "" {
		left = "untitled"
	}
	left += fmt.Sprintf("  v%d  %s", a.ed.Version(), a.ed.Focus())
	x := puts(a.screen, 0, y, w, left, a.theme.Status)
	msg := a.status
	if msg == "" && errMsg != "" {
		msg = errMsg
	}
	if msg != "" {
		puts(a.screen, x+2, y, w, msg, a.theme.Status)
	}
}

// puts writes str from column x and returns the column after it. Drawing
// stops at limit.
func puts(s tcell.Screen, x, y, limit int, str string, style tcell.Style) int {
	for _, r := range str {
		w := max(uniseg.StringWidth(string(r)), 1)
		if x+w > limit {
			break
		}
		s.SetContent(x, y, r, nil, style)
		x += w
	}
	return x
}

func box(s tcell.Screen, x, y, width int, style tcell.Style) {
	for i := 0; i < width; i++ {
		s.SetContent(x+i, y, ' ', nil, style)
	}
}
