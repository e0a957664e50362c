// Package screenplay classifies canonical text lines into screenplay
// elements.
package screenplay

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"storyexp/markup"
)

type Kind int

const (
	None Kind = iota
	SceneHeading
	Character
	Parenthetical
	Dialogue
	Transition
	Action
)

// String returns element type name as used by screenwriting tools.
func (k Kind) String() string {
	switch k {
	case SceneHeading:
		return "Scene Heading"
	case Character:
		return "Character"
	case Parenthetical:
		return "Parenthetical"
	case Dialogue:
		return "Dialogue"
	case Transition:
		return "Transition"
	case Action:
		return "Action"
	}
	return "None"
}

type Element struct {
	Kind Kind
	Text string
}

// maxCueLength is exclusive.
const maxCueLength = 40

var (
	reSceneStart = regexp.MustCompile(`(?i)^(INT\.|EXT\.|INT/EXT\.|I/E\.|EST\.)`)
	reCue        = regexp.MustCompile(`^[A-Z][A-Z\s.'()-]+$`)
	reTransition = regexp.MustCompile(`(?i)TO:$`)
)

// IsSceneStart reports whether line starts with scene location prefix.
func IsSceneStart(line string) bool {
	return reSceneStart.MatchString(line)
}

// IsUpper reports whether text has at least one letter and no lower case
// letters.
func IsUpper(s string) bool {
	return s == strings.ToUpper(s) && s != strings.ToLower(s)
}

// IsCue reports whether line looks like character cue.
func IsCue(line string) bool {
	return IsUpper(line) && reCue.MatchString(line) && utf8.RuneCountInString(line) < maxCueLength
}

// IsParenthetical reports whether line is wrapped in parentheses.
func IsParenthetical(line string) bool {
	return len(line) >= 2 && strings.HasPrefix(line, "(") && strings.HasSuffix(line, ")")
}

// Classify maps every non-blank line to a screenplay element. Only the kind
// of previous element is remembered and blank line forgets it.
func Classify(text string) []Element {
	var (
		elements []Element
		last     = None
	)
	for _, raw := range markup.SplitLines(text) {
		line := strings.TrimSpace(raw)
		if line == "" {
			last = None
			continue
		}
		el := classifyLine(line, last)
		elements = append(elements, el)
		last = el.Kind
	}
	return elements
}

func classifyLine(line string, last Kind) Element {
	switch {
	case strings.HasPrefix(line, "#"):
		return Element{Kind: SceneHeading, Text: strings.ToUpper(strings.TrimSpace(strings.TrimLeft(line, "#")))}
	case IsSceneStart(line):
		return Element{Kind: SceneHeading, Text: line}
	case IsCue(line):
		return Element{Kind: Character, Text: line}
	case IsParenthetical(line):
		return Element{Kind: Parenthetical, Text: line}
	case last == Character || last == Parenthetical:
		return Element{Kind: Dialogue, Text: markup.StripFormatting(line)}
	case reTransition.MatchString(line):
		return Element{Kind: Transition, Text: line}
	}
	return Element{Kind: Action, Text: markup.StripFormatting(line)}
}
