package tui

import (
	"github.com/gdamore/tcell/v2"

	"github.com/nahidnstu12/team-docs-sub001/internal/document"
)

// Theme holds the styles the front end draws with.
type Theme struct {
	Text       tcell.Style
	Heading    tcell.Style
	Code       tcell.Style
	Summary    tcell.Style
	Decoration tcell.Style
	Selection  tcell.Style
	Overlay    tcell.Style
	Selected   tcell.Style
	Muted      tcell.Style
	Error      tcell.Style
	Status     tcell.Style
}

// DefaultTheme works on 16 color terminals.
func DefaultTheme() Theme {
	base := tcell.StyleDefault
	return Theme{
		Text:       base,
		Heading:    base.Bold(true),
		Code:       base.Foreground(tcell.ColorTeal),
		Summary:    base.Bold(true),
		Decoration: base.Foreground(tcell.ColorGray),
		Selection:  base.Reverse(true),
		Overlay:    base.Background(tcell.ColorNavy).Foreground(tcell.ColorWhite),
		Selected:   base.Background(tcell.ColorTeal).Foreground(tcell.ColorBlack),
		Muted:      base.Background(tcell.ColorNavy).Foreground(tcell.ColorSilver),
		Error:      base.Foreground(tcell.ColorRed),
		Status:     base.Reverse(true),
	}
}

// marked applies inline marks on top of base.
func (t Theme) marked(base tcell.Style, marks document.MarkSet) tcell.Style {
	s := base
	for _, m := range marks {
		switch m.Type {
		case document.MarkBold:
			s = s.Bold(true)
		case document.MarkItalic:
			s = s.Italic(true)
		case document.MarkUnderline:
			s = s.Underline(true)
		case document.MarkStrike:
			s = s.StrikeThrough(true)
		case document.MarkCode:
			s = s.Foreground(tcell.ColorTeal)
		case document.MarkLink:
			s = s.Underline(true).Foreground(tcell.ColorBlue)
		case document.MarkHighlight:
			s = s.Background(tcell.ColorOlive)
		}
	}
	return s
}
