package markup

import (
	"regexp"
	"strings"
)

var (
	reHeading  = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	reQuote    = regexp.MustCompile(`^>\s+(.+)$`)
	reRule     = regexp.MustCompile(`^(?:-{3,}|\*{3,}|_{3,})$`)
	reBullet   = regexp.MustCompile(`^[-*+]\s+(.+)$`)
	reNumbered = regexp.MustCompile(`^\d+\.\s+(.+)$`)
)

const fence = "```"

// Parse splits text into blocks. Recognition is line anchored: every
// non-blank line outside of code fence produces exactly one block, blank
// lines only separate blocks. Unclosed code fence runs to the end of text.
func Parse(text string) []Block {
	lines := SplitLines(text)

	var (
		blocks []Block
		code   *Block
	)
	for _, raw := range lines {
		line := strings.TrimSpace(raw)

		if code != nil {
			if strings.HasPrefix(line, fence) {
				blocks = append(blocks, *code)
				code = nil
				continue
			}
			code.Lines = append(code.Lines, raw)
			continue
		}

		if line == "" {
			continue
		}

		if strings.HasPrefix(line, fence) {
			code = &Block{Kind: BlockCode, Lang: strings.TrimSpace(line[len(fence):]), Lines: []string{}}
			continue
		}
		blocks = append(blocks, classifyLine(line))
	}
	if code != nil {
		blocks = append(blocks, *code)
	}
	return blocks
}

func classifyLine(line string) Block {
	if m := reHeading.FindStringSubmatch(line); m != nil {
		return Block{Kind: BlockHeading, Level: len(m[1]), Text: strings.TrimSpace(m[2])}
	}
	if m := reQuote.FindStringSubmatch(line); m != nil {
		return Block{Kind: BlockQuote, Text: strings.TrimSpace(m[1])}
	}
	if reRule.MatchString(line) {
		return Block{Kind: BlockRule}
	}
	if m := reBullet.FindStringSubmatch(line); m != nil {
		return Block{Kind: BlockListItem, Text: strings.TrimSpace(m[1])}
	}
	if m := reNumbered.FindStringSubmatch(line); m != nil {
		return Block{Kind: BlockListItem, Text: strings.TrimSpace(m[1]), Ordered: true}
	}
	return Block{Kind: BlockParagraph, Text: line}
}

// SplitLines normalizes line endings and splits text into lines.
func SplitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}
