// Package palette provides the slash command palette.
//
// Typing the trigger character (default "/") in the document opens the
// palette anchored at the cursor. Further typing goes to the palette's
// query instead of the document. The query filters a fixed, ordered
// registry of items by keyword and the survivors are shown grouped, in
// registry order.
//
// # Components
//
//   - Item: a registered entry with its keywords, group and command
//   - Registry: the ordered item list shared by every palette
//   - Palette: the per-editor state machine (query, pointer, trigger)
//   - History: recently invoked items
//
// # Usage
//
//	reg := palette.NewRegistry()
//	reg.Add(palette.Defaults(nil)...)
//	p := palette.New(reg)
//
//	p.Open(triggerPos, palette.Anchor{X: 10, Y: 4})
//	p.SetQuery("head")
//	p.Down()
//	err := p.Invoke(state, dispatch)
//
// # Invocation
//
// Invoke closes the palette before anything else, deletes the trigger
// character from the document and runs the item's command. A command that
// refuses to run or panics yields an *InvocationError; the palette is
// closed either way.
package palette
