// Package export renders documents as Markdown or sanitized HTML.
//
// Toggles have no Markdown syntax and are written as <details> blocks in
// both formats, with the open attribute mirroring the toggle state. Task
// items become GitHub style checkboxes in Markdown and list items carrying
// data-checked in HTML.
package export
