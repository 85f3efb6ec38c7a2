// Package command provides the editing commands that turn user intent into
// transactions.
//
// A Command inspects a state and, when it applies, builds one transaction
// and hands it to dispatch. Passing a nil dispatch asks whether the command
// would apply without changing anything. Commands refuse to run rather
// than produce a document that breaks its content rules.
//
// Commands are addressed by dotted action names ("block.heading1",
// "mark.bold") through a Registry so that key maps, palette items, plugins
// and remote clients can share them.
package command
