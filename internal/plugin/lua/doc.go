// Package lua loads Lua plugins that add items to the command palette.
//
// Each *.lua file in the plugin directory runs once in its own sandboxed
// state: only the base, string, table and math libraries are available,
// the file loaders are removed and require only hands out those libraries
// and the pagedit module.
//
//	local pagedit = require("pagedit")
//
//	pagedit.item{
//	  id = "callout",
//	  title = "Callout",
//	  group = "Plugins",
//	  keywords = {"callout", "note"},
//	  run = function(ed)
//	    ed.exec("wrap.blockquote")
//	    return ed.insert("Note: ")
//	  end,
//	}
//
// The run function receives an editor handle:
//
//	ed.insert(text)   insert text at the selection
//	ed.exec(name)     run a registered editing command
//	ed.text()         text of the current textblock
//	ed.block()        node kind of the current textblock
//	ed.selection()    from, to
//
// Returning false, or raising an error, reports the item as not applicable.
// Every call into Lua is bounded by a timeout.
package lua
