// Package pipeline is the single entry point for changing editor state.
//
// Every proposed transaction goes through Dispatch, which
//
//  1. rejects transactions built on a document other than the current one,
//  2. applies the transaction,
//  3. runs the registered interceptors once, in registration order; each
//     sees every transaction since the last commit plus the state before
//     and after them, and may return one amending transaction,
//  4. commits the result atomically, records one undo entry for the
//     proposed transaction and its amendments, publishes a commit event
//     and updates the metrics.
//
// Interceptors must return nil when the state already satisfies their
// invariant. A panicking interceptor is recovered, logged and skipped, so
// one faulty interceptor never blocks editing.
//
// # History
//
// Each commit that changes the document and is not marked with
// state.MetaAddToHistory=false becomes one undo entry holding the inverted
// steps and the selection before the commit. Consecutive typing commits
// within the group delay are merged into one entry. Undo and Redo dispatch
// through the same pipeline, so the interceptors also run on them.
package pipeline
