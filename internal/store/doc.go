// Package store persists pages.
//
// A page is a titled document stored in the pages table. Callers exchange
// documents as JSON payloads; on disk the content is kept either as JSON or
// as CBOR, chosen per store and recorded per row, so a database can hold
// both encodings while the setting changes.
//
//	s, err := store.Open(ctx, "pagedit.db", store.WithEncoding(store.EncodingCBOR))
//	page, err := s.Create(ctx, "Notes", payload)
//	version, err := s.Save(ctx, page.ID, next)
//
// Autosaver listens for commit events on the event bus and saves the
// latest payload of each tracked session after a quiet period. Saving runs
// on timer goroutines and never blocks the editing path.
package store
