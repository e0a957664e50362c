// Package css reads stylesheets used to lay out rasterized documents. Only
// simple element, class and descendant selectors are understood, anything
// else is reported as a warning and skipped.
package css

import (
	"fmt"
	"image/color"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"
	"unicode"
)

// Value represents a parsed CSS property value.
type Value struct {
	Raw     string  // original text (e.g., "1.2em", "bold", "#ff0000")
	Value   float64 // numeric value if applicable
	Unit    string  // "em", "px", "%", "pt", etc.
	Keyword string  // "bold", "italic", "center", etc.
}

// IsNumeric returns true if the value has a numeric component. This
// includes explicit zero values like "0" or "0px".
func (v Value) IsNumeric() bool {
	if v.Unit != "" {
		return true
	}
	if v.Value != 0 && v.Keyword == "" {
		return true
	}
	if v.Raw != "" && v.Keyword == "" {
		first := rune(v.Raw[0])
		if unicode.IsDigit(first) || first == '.' || first == '-' || first == '+' {
			return true
		}
	}
	return false
}

// IsKeyword returns true if the value is a keyword (no numeric component).
func (v Value) IsKeyword() bool {
	return v.Keyword != "" && v.Unit == ""
}

// Pixels converts length to device pixels. Relative units are resolved
// against font size (em, %) given in pixels, absolute units against dpi.
func (v Value) Pixels(fontSize, dpi float64) (float64, bool) {
	if !v.IsNumeric() {
		return 0, false
	}
	switch v.Unit {
	case "", "px":
		return v.Value * dpi / 96, true
	case "em", "rem":
		return v.Value * fontSize, true
	case "ex":
		return v.Value * fontSize / 2, true
	case "%":
		return v.Value * fontSize / 100, true
	case "pt":
		return v.Value * dpi / 72, true
	case "pc":
		return v.Value * dpi / 6, true
	case "in":
		return v.Value * dpi, true
	case "cm":
		return v.Value * dpi / 2.54, true
	case "mm":
		return v.Value * dpi / 25.4, true
	}
	return 0, false
}

var namedColors = map[string]color.RGBA{
	"black":   {0, 0, 0, 255},
	"white":   {255, 255, 255, 255},
	"gray":    {128, 128, 128, 255},
	"grey":    {128, 128, 128, 255},
	"silver":  {192, 192, 192, 255},
	"red":     {255, 0, 0, 255},
	"maroon":  {128, 0, 0, 255},
	"green":   {0, 128, 0, 255},
	"blue":    {0, 0, 255, 255},
	"navy":    {0, 0, 128, 255},
	"purple":  {128, 0, 128, 255},
	"teal":    {0, 128, 128, 255},
	"olive":   {128, 128, 0, 255},
	"dimgray": {105, 105, 105, 255},
}

// Color converts hex (#rgb, #rrggbb) or basic named color.
func (v Value) Color() (color.RGBA, bool) {
	s := strings.ToLower(strings.TrimSpace(v.Keyword))
	if c, ok := namedColors[s]; ok {
		return c, true
	}
	s = strings.TrimPrefix(s, "#")
	switch len(s) {
	case 3:
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	case 6:
	default:
		return color.RGBA{}, false
	}
	n, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n), A: 255}, true
}

// MediaQuery represents a parsed @media query condition.
type MediaQuery struct {
	Raw      string   // original media query string
	Type     string   // media type (e.g., "print", "screen")
	Negated  bool     // "not" modifier was used on main type
	Features []string // "and" conditions, only media types are understood
}

// Evaluate returns true if this media query matches the given medium.
func (mq MediaQuery) Evaluate(medium string) bool {
	matches := func(t string) bool {
		return t == "all" || strings.EqualFold(t, medium)
	}
	ok := matches(mq.Type)
	if mq.Negated {
		ok = !ok
	}
	if !ok {
		return false
	}
	for _, f := range mq.Features {
		if !matches(f) {
			return false
		}
	}
	return true
}

// Node is one element on the path from document root to styled element.
type Node struct {
	Element string
	Class   string
}

// Selector represents a parsed CSS selector with its components.
type Selector struct {
	Raw      string    // original selector string
	Element  string    // element name (e.g., "p", "h1") or empty for class-only
	Class    string    // class name without dot or empty
	Ancestor *Selector // for descendant selectors ("blockquote p" -> ancestor is "blockquote")
}

// IsSimple returns true if this is a simple selector (element, class, or element.class).
func (s Selector) IsSimple() bool {
	return s.Element != "" || s.Class != ""
}

// IsDescendant returns true if this is a descendant selector.
func (s Selector) IsDescendant() bool {
	return s.Ancestor != nil
}

// Specificity returns ordering weight: classes count ten, elements one.
func (s Selector) Specificity() int {
	var w int
	if s.Element != "" {
		w++
	}
	if s.Class != "" {
		w += 10
	}
	if s.Ancestor != nil {
		w += s.Ancestor.Specificity()
	}
	return w
}

func (s Selector) matchesNode(n Node) bool {
	if s.Element != "" && s.Element != "*" && !strings.EqualFold(s.Element, n.Element) {
		return false
	}
	if s.Class != "" && !slices.Contains(strings.Fields(n.Class), s.Class) {
		return false
	}
	return true
}

// Matches reports whether selector applies to the last node of path.
func (s Selector) Matches(path []Node) bool {
	if len(path) == 0 || !s.IsSimple() || !s.matchesNode(path[len(path)-1]) {
		return false
	}
	if s.Ancestor == nil {
		return true
	}
	for i := len(path) - 2; i >= 0; i-- {
		if s.Ancestor.Matches(path[:i+1]) {
			return true
		}
	}
	return false
}

// Rule represents a single CSS rule (selector + properties).
type Rule struct {
	Selector   Selector
	Properties map[string]Value
	// set for rules nested in @media block
	Media *MediaQuery
}

// GetProperty returns the value for a property.
func (r Rule) GetProperty(name string) (Value, bool) {
	v, ok := r.Properties[name]
	return v, ok
}

// Style is a set of computed properties.
type Style map[string]Value

// Keyword returns lower case keyword of property or def.
func (s Style) Keyword(name, def string) string {
	if v, ok := s[name]; ok && v.Keyword != "" {
		return strings.ToLower(v.Keyword)
	}
	return def
}

// Stylesheet represents a parsed CSS stylesheet.
type Stylesheet struct {
	Rules    []Rule   // in source order
	Warnings []string // unsupported features
}

// RulesBySelector returns all rules with given selector text.
func (s *Stylesheet) RulesBySelector(selector string) []Rule {
	var matches []Rule
	for _, r := range s.Rules {
		if r.Selector.Raw == selector {
			matches = append(matches, r)
		}
	}
	return matches
}

// Compute cascades properties of rules matching path for medium. Later and
// more specific rules win.
func (s *Stylesheet) Compute(path []Node, medium string) Style {
	var matched []Rule
	for _, r := range s.Rules {
		if r.Media != nil && !r.Media.Evaluate(medium) {
			continue
		}
		if r.Selector.Matches(path) {
			matched = append(matched, r)
		}
	}
	slices.SortStableFunc(matched, func(a, b Rule) int {
		return a.Selector.Specificity() - b.Selector.Specificity()
	})

	style := make(Style)
	for _, r := range matched {
		for name, v := range r.Properties {
			style[name] = v
		}
	}
	return style
}

// WriteTo writes the stylesheet to w, implementing io.WriterTo. Property
// order within a rule is sorted for deterministic output.
func (s *Stylesheet) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for i, r := range s.Rules {
		if i > 0 {
			n, err := io.WriteString(w, "\n")
			total += int64(n)
			if err != nil {
				return total, err
			}
		}
		var sb strings.Builder
		indent := ""
		if r.Media != nil {
			fmt.Fprintf(&sb, "@media %s {\n", r.Media.Raw)
			indent = "  "
		}
		fmt.Fprintf(&sb, "%s%s {\n", indent, r.Selector.Raw)
		for _, name := range slices.Sorted(maps.Keys(r.Properties)) {
			fmt.Fprintf(&sb, "%s  %s: %s;\n", indent, name, r.Properties[name].Raw)
		}
		fmt.Fprintf(&sb, "%s}\n", indent)
		if r.Media != nil {
			sb.WriteString("}\n")
		}
		n, err := io.WriteString(w, sb.String())
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// String returns the CSS text of the stylesheet.
func (s *Stylesheet) String() string {
	var sb strings.Builder
	s.WriteTo(&sb) //nolint:errcheck
	return sb.String()
}
