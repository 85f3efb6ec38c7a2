// Package key defines the key events the input router consumes.
//
// An Event is a key (a named key or KeyRune with its character), the held
// modifiers and whether an input method composition was in progress when
// it was produced. Events are written in bindings as specs:
//
//   - characters: "a", "/", "Space"
//   - named keys: "Enter", "Escape", "Backspace", "Up"
//   - with modifiers: "Ctrl+B", "Ctrl+Shift+Z", "Shift+Left"
//   - short form: "<C-b>", "<S-Left>", "<CR>"
package key
