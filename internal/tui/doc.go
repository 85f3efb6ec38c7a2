// Package tui is a terminal front end for one editor session.
//
// Blocks are laid out one per line with their structure drawn as a prefix:
// heading markers, list bullets and numbers, task boxes, quote bars, and
// ▸ or ▾ in front of toggle summaries. The body of a closed toggle is not
// drawn. Key and mouse events are converted to the editor's input events;
// clicks carry the document position under the pointer and the distance
// from the block's left edge, so a click on a toggle marker opens or
// closes it.
//
// The command palette and the link dialog are drawn as overlays. Ctrl+S
// saves and Ctrl+Q quits. Most terminals cannot report Shift together with
// a Ctrl letter, so redo is Ctrl+Y rather than Ctrl+Shift+Z.
package tui
