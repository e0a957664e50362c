package markup

import (
	"regexp"
	"strconv"
	"strings"
)

type InlineKind int

const (
	InlineText InlineKind = iota
	InlineBold
	InlineItalic
	InlineBoldItalic
	InlineStrike
	InlineCode
	InlineLink
	InlineImage
)

// Inline is a span of text carrying single style. For links Href is the
// target, for images Text is alternative text and Href is the source.
type Inline struct {
	Kind InlineKind
	Text string
	Href string
}

var reCodeSpan = regexp.MustCompile("`([^`]+)`")

// placeholders replace code spans while emphasis is scanned. Delimiters are
// private use code points absent from the text being parsed.
type placeholders struct {
	open, closing string
	re            *regexp.Regexp
}

func newPlaceholders(open, closing rune) placeholders {
	o, c := string(open), string(closing)
	return placeholders{open: o, closing: c, re: regexp.MustCompile(regexp.QuoteMeta(o) + `(\d+)` + regexp.QuoteMeta(c))}
}

var defaultPlaceholders = newPlaceholders('\uE000', '\uE001')

// placeholdersFor returns delimiters which do not occur in text, nil when
// the whole private use area is taken.
func placeholdersFor(text string) *placeholders {
	if !strings.ContainsRune(text, '\uE000') && !strings.ContainsRune(text, '\uE001') {
		return &defaultPlaceholders
	}
	for r := rune(0xE002); r < 0xF8FF; r += 2 {
		if !strings.ContainsRune(text, r) && !strings.ContainsRune(text, r+1) {
			ph := newPlaceholders(r, r+1)
			return &ph
		}
	}
	return nil
}

func (ph *placeholders) index(s string) int {
	n, _ := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(s, ph.open), ph.closing))
	return n
}

type inlinePattern struct {
	kind InlineKind
	re   *regexp.Regexp
}

// Order matters: when two patterns match at the same offset the earlier one
// wins.
var inlinePatterns = []inlinePattern{
	{InlineBoldItalic, regexp.MustCompile(`\*\*\*(.+?)\*\*\*|___(.+?)___`)},
	{InlineBold, regexp.MustCompile(`\*\*(.+?)\*\*|__(.+?)__`)},
	{InlineItalic, regexp.MustCompile(`\*([^*\s](?:[^*]*[^*\s])?)\*|_([^_\s](?:[^_]*[^_\s])?)_`)},
	// code span placeholders, matched by the per call expression
	{InlineCode, nil},
	{InlineStrike, regexp.MustCompile(`~~(.+?)~~`)},
	{InlineLink, regexp.MustCompile(`\[([^\]]+)\]\(([^)\s]+)(?:\s+"[^"]*")?\)`)},
	{InlineImage, regexp.MustCompile(`!\[([^\]]*)\]\(([^)\s]+)(?:\s+"[^"]*")?\)`)},
}

// ParseInline splits text into inline runs. On every step all patterns are
// matched against the rest of the text and the leftmost match is taken,
// text preceding it becomes plain run.
func ParseInline(text string) []Inline {
	if text == "" {
		return nil
	}

	var codes []string
	ph := placeholdersFor(text)
	if ph != nil {
		text = reCodeSpan.ReplaceAllStringFunc(text, func(span string) string {
			codes = append(codes, span[1:len(span)-1])
			return ph.open + strconv.Itoa(len(codes)-1) + ph.closing
		})
	}
	restore := func(s string) string {
		if len(codes) == 0 {
			return s
		}
		return ph.re.ReplaceAllStringFunc(s, func(m string) string {
			if i := ph.index(m); i < len(codes) {
				return codes[i]
			}
			return m
		})
	}

	var runs []Inline
	for len(text) > 0 {
		var (
			best    inlinePattern
			bestLoc []int
		)
		for _, p := range inlinePatterns {
			re := p.re
			if p.kind == InlineCode {
				if len(codes) == 0 {
					continue
				}
				re = ph.re
			}
			loc := re.FindStringSubmatchIndex(text)
			if loc == nil {
				continue
			}
			if bestLoc == nil || loc[0] < bestLoc[0] {
				best, bestLoc = p, loc
			}
		}
		if bestLoc == nil {
			runs = append(runs, Inline{Kind: InlineText, Text: restore(text)})
			break
		}

		if bestLoc[0] > 0 {
			runs = append(runs, Inline{Kind: InlineText, Text: restore(text[:bestLoc[0]])})
		}
		runs = append(runs, makeInline(best.kind, text, bestLoc, restore))
		text = text[bestLoc[1]:]
	}
	return mergeText(runs)
}

func makeInline(kind InlineKind, text string, loc []int, restore func(string) string) Inline {
	group := func(n int) string {
		if loc[2*n] < 0 {
			return ""
		}
		return text[loc[2*n]:loc[2*n+1]]
	}

	switch kind {
	case InlineCode:
		return Inline{Kind: InlineCode, Text: restore(group(0))}
	case InlineLink, InlineImage:
		return Inline{Kind: kind, Text: restore(group(1)), Href: restore(group(2))}
	}
	// alternations capture either first or second group
	captured := group(1)
	if loc[2] < 0 {
		captured = group(2)
	}
	return Inline{Kind: kind, Text: restore(captured)}
}

// mergeText joins adjacent plain runs.
func mergeText(runs []Inline) []Inline {
	out := runs[:0]
	for _, r := range runs {
		if n := len(out); n > 0 && r.Kind == InlineText && out[n-1].Kind == InlineText {
			out[n-1].Text += r.Text
			continue
		}
		out = append(out, r)
	}
	return out
}

// PlainText concatenates text of the runs. Images contribute their
// alternative text.
func PlainText(runs []Inline) string {
	var b strings.Builder
	for _, r := range runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// StripFormatting removes inline markup from text.
func StripFormatting(text string) string {
	return PlainText(ParseInline(text))
}
