// Package input routes keyboard and pointer events to the component that
// currently has focus.
//
// There is exactly one Router per editor. It holds an explicit focus mode
// (document, palette or dialog) and a keymap per focus. A key event is
// looked up in the focused keymap only; the bound action's handler runs,
// and printable characters that no binding claims fall through to the
// focus's text handler. Overlays therefore never compete with the
// document for the same keystroke.
//
// # Keymaps
//
// Bindings use the key package's spec syntax:
//
//	km := input.NewKeymap("document", input.FocusDocument).
//	    Add("Ctrl+B", "mark.bold").
//	    Add("Enter", "document.enter")
//
// Later keymaps for the same focus override earlier bindings of the same
// key, so user configuration is loaded after the defaults.
//
// # Composition
//
// While an input method composition is in progress, rune events bypass
// the keymap and reach the text handler directly with Composing set;
// other keys are dropped until the composition ends.
package input
