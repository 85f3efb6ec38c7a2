package input

// Focus is the component receiving input.
type Focus uint8

// Focus modes.
const (
	FocusDocument Focus = iota
	FocusPalette
	FocusDialog
)

var focusNames = [...]string{
	FocusDocument: "document",
	FocusPalette:  "palette",
	FocusDialog:   "dialog",
}

func (f Focus) String() string {
	if int(f) < len(focusNames) {
		return focusNames[f]
	}
	return "unknown"
}

// FocusFromName parses a focus name. Unknown names yield false.
func FocusFromName(name string) (Focus, bool) {
	for i, n := range focusNames {
		if n == name {
			return Focus(i), true
		}
	}
	return FocusDocument, false
}

// Overlay reports whether f is an overlay above the document.
func (f Focus) Overlay() bool { return f != FocusDocument }
