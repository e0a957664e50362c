package markup

const (
	IntroductionTitle = "Introduction"
	ContentTitle      = "Content"
)

// Chapter is a run of blocks started by level-1 heading.
type Chapter struct {
	Title  string
	Blocks []Block
}

// SplitChapters cuts blocks at every level-1 heading. Blocks preceding the
// first heading form "Introduction" chapter, document without level-1
// headings becomes single "Content" chapter.
func SplitChapters(blocks []Block) []Chapter {
	var chapters []Chapter
	for _, b := range blocks {
		if b.Kind == BlockHeading && b.Level == 1 {
			chapters = append(chapters, Chapter{Title: b.PlainText(), Blocks: []Block{b}})
			continue
		}
		if len(chapters) == 0 {
			chapters = append(chapters, Chapter{Title: IntroductionTitle})
		}
		last := &chapters[len(chapters)-1]
		last.Blocks = append(last.Blocks, b)
	}

	switch {
	case len(chapters) == 0:
		return []Chapter{{Title: ContentTitle}}
	case len(chapters) == 1 && chapters[0].Title == IntroductionTitle && !isTitleChapter(chapters[0]):
		chapters[0].Title = ContentTitle
	}
	return chapters
}

func isTitleChapter(c Chapter) bool {
	return len(c.Blocks) > 0 && c.Blocks[0].Kind == BlockHeading && c.Blocks[0].Level == 1
}

// FirstTitle returns plain text of the first level-1 heading, if any.
func FirstTitle(blocks []Block) (string, bool) {
	for _, b := range blocks {
		if b.Kind == BlockHeading && b.Level == 1 {
			if t := b.PlainText(); t != "" {
				return t, true
			}
		}
	}
	return "", false
}
