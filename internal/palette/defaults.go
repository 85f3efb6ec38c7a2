package palette

import (
	"github.com/nahidnstu12/team-docs-sub001/internal/command"
	"github.com/nahidnstu12/team-docs-sub001/internal/document"
	"github.com/nahidnstu12/team-docs-sub001/internal/toggle"
)

// Group names used by the default items.
const (
	GroupBasic  = "Basic blocks"
	GroupLists  = "Lists"
	GroupBlocks = "Blocks"
	GroupInline = "Inline"
)

// SourceCore marks items registered by the editor itself.
const SourceCore = "core"

// Defaults returns the built-in items in display order. openLink opens
// the link dialog; the Link item is left out when it is nil.
func Defaults(openLink command.Command) []Item {
	items := []Item{
		{
			ID: "text", Title: "Text", Subtitle: "Plain paragraph", Icon: "¶",
			Keywords: []string{"text", "paragraph", "plain"}, Group: GroupBasic,
			Command: command.SetBlockType(document.KindParagraph, nil),
		},
		{
			ID: "heading1", Title: "Heading 1", Subtitle: "Large section heading", Icon: "H1",
			Keywords: []string{"heading1", "h1", "title"}, Group: GroupBasic,
			Command: command.SetBlockType(document.KindHeading, document.Attrs{"level": 1}),
		},
		{
			ID: "heading2", Title: "Heading 2", Subtitle: "Medium section heading", Icon: "H2",
			Keywords: []string{"heading2", "h2"}, Group: GroupBasic,
			Command: command.SetBlockType(document.KindHeading, document.Attrs{"level": 2}),
		},
		{
			ID: "heading3", Title: "Heading 3", Subtitle: "Small section heading", Icon: "H3",
			Keywords: []string{"heading3", "h3"}, Group: GroupBasic,
			Command: command.SetBlockType(document.KindHeading, document.Attrs{"level": 3}),
		},
		{
			ID: "bulletList", Title: "Bulleted list", Subtitle: "Simple bulleted list", Icon: "•",
			Keywords: []string{"bulleted", "bullet", "list", "ul"}, Group: GroupLists,
			Command: command.WrapIn(document.KindBulletList),
		},
		{
			ID: "orderedList", Title: "Numbered list", Subtitle: "List with numbering", Icon: "1.",
			Keywords: []string{"numbered", "ordered", "list", "ol"}, Group: GroupLists,
			Command: command.WrapIn(document.KindOrderedList),
		},
		{
			ID: "taskList", Title: "To-do list", Subtitle: "Track tasks with checkboxes", Icon: "☐",
			Keywords: []string{"todo", "task", "checkbox", "list"}, Group: GroupLists,
			Command: command.WrapIn(document.KindTaskList),
		},
		{
			ID: "toggle", Title: "Toggle list", Subtitle: "Collapsible block", Icon: "▸",
			Keywords: []string{"toggle", "collapse", "details", "list"}, Group: GroupLists,
			Command: toggle.Insert,
		},
		{
			ID: "quote", Title: "Quote", Subtitle: "Capture a quote", Icon: "❝",
			Keywords: []string{"quote", "blockquote", "citation"}, Group: GroupBlocks,
			Command: command.WrapIn(document.KindBlockquote),
		},
		{
			ID: "code", Title: "Code", Subtitle: "Code block", Icon: "</>",
			Keywords: []string{"code", "snippet", "pre"}, Group: GroupBlocks,
			Command: command.SetBlockType(document.KindCodeBlock, nil),
		},
		{
			ID: "divider", Title: "Divider", Subtitle: "Visual separator", Icon: "—",
			Keywords: []string{"divider", "separator", "hr", "rule"}, Group: GroupBlocks,
			Command: command.InsertDivider,
		},
	}
	if openLink != nil {
		items = append(items, Item{
			ID: "link", Title: "Link", Subtitle: "Insert a web link", Icon: "🔗",
			Keywords: []string{"link", "url", "href"}, Group: GroupInline,
			Command: openLink,
		})
	}
	for i := range items {
		items[i].Source = SourceCore
	}
	return items
}
