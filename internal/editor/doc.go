// Package editor assembles one editing session: the transaction pipeline
// with its interceptors, the input router, the command palette, the link
// dialog and the toggle controller.
//
// An Editor is driven entirely by input turns. Each call to HandleKey,
// HandlePointer or Exec runs to completion under the editor's lock, so
// readers of State and Snapshot always observe a committed state:
//
//	ed, err := editor.New(payload, editor.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	ed.HandleKey(key.NewRuneEvent('/', key.ModNone))
//	ed.HandleKey(key.NewRuneEvent('h', key.ModNone))
//	ed.HandleKey(key.NewSpecialEvent(key.KeyEnter, key.ModNone))
//	data, err := ed.Payload()
package editor
