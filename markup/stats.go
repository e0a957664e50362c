package markup

import (
	"regexp"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"storyexp/content/text"
)

var (
	reFencedCode  = regexp.MustCompile("(?s)```.*?(?:```|$)")
	reInlineCode  = regexp.MustCompile("`[^`]*`")
	reImageMarkup = regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`)
	reLinkMarkup  = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	reLineMarker  = regexp.MustCompile(`(?m)^\s*(?:#{1,6}|>|[-*+]|\d+\.)\s+`)
	reRuleLine    = regexp.MustCompile(`(?m)^\s*(?:-{3,}|\*{3,}|_{3,})\s*$`)
	reEmphasis    = regexp.MustCompile(`[*_~#>]+`)
)

// WordCount strips code, markup punctuation and counts whitespace separated
// words.
func WordCount(src string) int {
	return text.CountWords(stripMarkup(src))
}

func stripMarkup(src string) string {
	src = strings.ReplaceAll(src, "\r\n", "\n")
	src = reFencedCode.ReplaceAllString(src, " ")
	src = reInlineCode.ReplaceAllString(src, " ")
	src = reImageMarkup.ReplaceAllString(src, "$1")
	src = reLinkMarkup.ReplaceAllString(src, "$1")
	src = reRuleLine.ReplaceAllString(src, " ")
	src = reLineMarker.ReplaceAllString(src, "")
	return reEmphasis.ReplaceAllString(src, " ")
}

// Stats describes document for preview, it does not affect exported bytes.
type Stats struct {
	Words      int
	Sentences  int
	Characters int
	Headings   int
	Chapters   int
}

// Analyze computes document statistics. Sentences are counted on plain
// text of prose blocks, splitting is turned off for languages without
// suitable model and every block counts as one sentence then.
func Analyze(src string, lang language.Tag, log *zap.Logger) Stats {
	blocks := Parse(src)
	splitter := text.NewSplitter(lang, log)

	st := Stats{Words: WordCount(src)}
	for _, b := range blocks {
		switch b.Kind {
		case BlockHeading:
			st.Headings++
		case BlockCode, BlockRule:
			continue
		}
		plain := b.PlainText()
		st.Characters += len([]rune(plain))
		st.Sentences += splitter.CountSentences(plain)
	}
	if len(blocks) > 0 {
		st.Chapters = len(SplitChapters(blocks))
	}
	return st
}
