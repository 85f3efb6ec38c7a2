// Package server exposes pages and editing sessions over HTTP.
//
// Routes:
//
//	POST /api/pages                    create a page
//	GET  /api/pages                    list pages
//	GET  /api/pages/:id                load a page
//	GET  /api/pages/:id/export         export as ?format=md|html
//	POST /api/pages/:id/sessions       open an editing session
//	GET  /api/sessions/:sid            session snapshot
//	POST /api/sessions/:sid/events     apply input events, returns a snapshot
//	POST /api/sessions/:sid/save       save the session document
//	DELETE /api/sessions/:sid          close the session
//	GET  /api/sessions/:sid/ws         websocket: events in, snapshots out
//	GET  /metrics                      prometheus
//
// Each session wraps one editor. Input events are applied one request at a
// time under the editor's lock, and commits reach the store through the
// autosaver.
package server
