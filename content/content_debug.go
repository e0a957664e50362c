package content

import (
	"fmt"

	"storyexp/markup"
	"storyexp/utils/debug"
)

type treeWriter struct {
	*debug.TreeWriter
}

// String returns a readable tree of prepared content. It exists solely for
// inspection in debug reports.
func (c *Content) String() string {
	if c == nil {
		return "<nil Content>"
	}

	tw := treeWriter{debug.NewTreeWriter()}
	tw.Line(0, "Content format[%s] lang[%s] created[%s]", c.Format, c.Language, c.Created.Format("2006-01-02T15:04:05Z"))
	tw.TextBlock(1, "Title", c.Title)
	tw.TextBlock(1, "Author", c.Author)
	tw.TextBlock(1, "Identifier", c.Identifier)
	for _, ch := range c.Chapters() {
		tw.Line(1, "Chapter[%q] blocks[%d]", ch.Title, len(ch.Blocks))
		for _, b := range ch.Blocks {
			tw.block(2, b)
		}
	}
	return tw.String()
}

func (tw treeWriter) block(depth int, b markup.Block) {
	switch b.Kind {
	case markup.BlockHeading:
		tw.TextBlock(depth, fmt.Sprintf("heading[%d]", b.Level), b.Text)
	case markup.BlockCode:
		tw.Line(depth, "code[%s] lines[%d]", b.Lang, len(b.Lines))
		tw.TextLines(depth+1, b.Lines)
	case markup.BlockRule:
		tw.Line(depth, "rule")
	case markup.BlockListItem:
		tw.TextBlock(depth, fmt.Sprintf("list-item[ordered=%t]", b.Ordered), b.Text)
	default:
		tw.TextBlock(depth, b.Kind.String(), b.Text)
		for _, r := range b.Inlines() {
			if r.Kind != markup.InlineText {
				tw.Line(depth+1, "inline[%d] %q %q", r.Kind, r.Text, r.Href)
			}
		}
	}
}
