package editor

import (
	"encoding/json"

	"github.com/nahidnstu12/team-docs-sub001/internal/link"
	"github.com/nahidnstu12/team-docs-sub001/internal/palette"
	"github.com/nahidnstu12/team-docs-sub001/internal/state"
)

// Snapshot is a serializable view of the session: the committed document,
// the selection and whatever overlay is open.
type Snapshot struct {
	Session   string          `json:"session"`
	Version   uint64          `json:"version"`
	Doc       json.RawMessage `json:"doc"`
	Selection state.Selection `json:"selection"`
	Focus     string          `json:"focus"`
	CanUndo   bool            `json:"canUndo"`
	CanRedo   bool            `json:"canRedo"`
	Palette   *PaletteView    `json:"palette,omitempty"`
	Dialog    *link.Dialog    `json:"dialog,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// PaletteView is the open palette as front ends draw it.
type PaletteView struct {
	Query      string         `json:"query"`
	Anchor     palette.Anchor `json:"anchor"`
	Groups     []GroupView    `json:"groups"`
	Group      int            `json:"group"`
	Item       int            `json:"item"`
	Suggestion string         `json:"suggestion,omitempty"`
}

// GroupView is one palette group.
type GroupView struct {
	Name  string     `json:"name"`
	Items []ItemView `json:"items"`
}

// ItemView is one palette entry.
type ItemView struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
	Icon     string `json:"icon,omitempty"`
}

// Snapshot captures the session.
func (e *Editor) Snapshot() (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.pipeline.State()
	data, err := s.Doc().MarshalJSON()
	if err != nil {
		return Snapshot{}, err
	}
	snap := Snapshot{
		Session:   e.id,
		Version:   e.pipeline.Version(),
		Doc:       data,
		Selection: s.Selection(),
		Focus:     e.router.Focus().String(),
		CanUndo:   e.pipeline.History().CanUndo(),
		CanRedo:   e.pipeline.History().CanRedo(),
	}
	ov := e.overlay()
	snap.Palette, snap.Dialog, snap.Error = ov.Palette, ov.Dialog, ov.Error
	return snap, nil
}

// Overlay is what front ends draw over the document.
type Overlay struct {
	Palette *PaletteView
	Dialog  *link.Dialog
	Error   string
}

// Overlay returns the open palette or link dialog without encoding the
// document.
func (e *Editor) Overlay() Overlay {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.overlay()
}

func (e *Editor) overlay() Overlay {
	var ov Overlay
	if e.palette.IsOpen() {
		ov.Palette = paletteView(e.palette)
	}
	if d, ok := e.links.Dialog(); ok {
		ov.Dialog = &d
	}
	if e.lastErr != nil {
		ov.Error = e.lastErr.Error()
	}
	return ov
}

func paletteView(p *palette.Palette) *PaletteView {
	v := &PaletteView{
		Query:      p.Query(),
		Anchor:     p.Anchor(),
		Suggestion: p.Suggestion(),
		Groups:     make([]GroupView, 0, len(p.Groups())),
	}
	v.Group, v.Item = p.Pointer()
	for _, g := range p.Groups() {
		gv := GroupView{Name: g.Name, Items: make([]ItemView, 0, len(g.Items))}
		for _, it := range g.Items {
			gv.Items = append(gv.Items, ItemView{ID: it.ID, Title: it.Title, Subtitle: it.Subtitle, Icon: it.Icon})
		}
		v.Groups = append(v.Groups, gv)
	}
	return v
}
