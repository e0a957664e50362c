// Package markup parses canonical story markup into flat block and inline
// models and renders them as XHTML.
package markup

import "fmt"

type BlockKind int

const (
	BlockParagraph BlockKind = iota
	BlockHeading
	BlockQuote
	BlockRule
	BlockListItem
	BlockCode
)

func (k BlockKind) String() string {
	switch k {
	case BlockParagraph:
		return "paragraph"
	case BlockHeading:
		return "heading"
	case BlockQuote:
		return "blockquote"
	case BlockRule:
		return "rule"
	case BlockListItem:
		return "list-item"
	case BlockCode:
		return "code"
	}
	return fmt.Sprintf("BlockKind(%d)", int(k))
}

// Block is a single structural element of the document. Blocks are never
// nested, lists are assembled from adjacent list items by GroupLists.
type Block struct {
	Kind BlockKind
	// heading level 1-6
	Level int
	// raw (unparsed) text for headings, paragraphs, quotes and list items
	Text    string
	Ordered bool
	// code block language tag and verbatim lines
	Lang  string
	Lines []string
}

// Inlines parses block text into inline runs.
func (b Block) Inlines() []Inline {
	return ParseInline(b.Text)
}

// PlainText returns block text without any inline markup.
func (b Block) PlainText() string {
	switch b.Kind {
	case BlockCode:
		return joinLines(b.Lines)
	case BlockRule:
		return ""
	}
	return StripFormatting(b.Text)
}

func joinLines(lines []string) string {
	var size int
	for _, l := range lines {
		size += len(l) + 1
	}
	buf := make([]byte, 0, size)
	for i, l := range lines {
		if i > 0 {
			buf = append(buf, '\n')
		}
		buf = append(buf, l...)
	}
	return string(buf)
}

// Group is either a single non-list block or a run of adjacent list items
// with the same orderedness.
type Group struct {
	List    bool
	Ordered bool
	Blocks  []Block
}

// GroupLists merges adjacent list items of the same kind into list groups,
// every other block becomes a group of its own.
func GroupLists(blocks []Block) []Group {
	var groups []Group
	for _, b := range blocks {
		if b.Kind != BlockListItem {
			groups = append(groups, Group{Blocks: []Block{b}})
			continue
		}
		if n := len(groups); n > 0 && groups[n-1].List && groups[n-1].Ordered == b.Ordered {
			groups[n-1].Blocks = append(groups[n-1].Blocks, b)
			continue
		}
		groups = append(groups, Group{List: true, Ordered: b.Ordered, Blocks: []Block{b}})
	}
	return groups
}
