package css

import (
	"bytes"
	"maps"
	"strconv"
	"strings"
	"unicode"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Parser parses CSS stylesheets into structured rules.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new CSS parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

// Parse parses CSS text into a Stylesheet. The optional source parameter
// identifies what's being parsed (for debug logging).
func (p *Parser) Parse(data []byte, source ...string) *Stylesheet {
	sheet := &Stylesheet{}

	if len(source) > 0 && source[0] != "" {
		p.log.Debug("Parsing CSS", zap.String("source", source[0]), zap.Int("bytes", len(data)))
	}

	parser := css.NewParser(parse.NewInput(bytes.NewReader(data)), false)
	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar:
			if err := parser.Err(); err != nil && err.Error() != "EOF" {
				p.log.Debug("CSS parse error", zap.Error(err))
			}
			return sheet

		case css.BeginAtRuleGrammar:
			atRule := strings.ToLower(string(data))
			if atRule == "@media" {
				mq := p.parseMediaQuery(parser.Values())
				rules := p.parseRulesets(parser, sheet, &mq)
				p.log.Debug("Parsed @media block", zap.String("query", mq.Raw), zap.Int("rules", len(rules)))
				sheet.Rules = append(sheet.Rules, rules...)
				continue
			}
			sheet.Warnings = append(sheet.Warnings, "unsupported at-rule: "+atRule)
			p.skipAtRuleBlock(parser)
			p.log.Debug("Skipping @-rule", zap.String("rule", atRule))

		case css.AtRuleGrammar:
			sheet.Warnings = append(sheet.Warnings, "unsupported at-rule: "+string(data))
			p.log.Debug("Skipping @-rule", zap.String("rule", string(data)))

		case css.BeginRulesetGrammar:
			sheet.Rules = append(sheet.Rules, p.parseRuleset(parser, sheet, data, nil)...)
		}
	}
}

// parseRuleset reads declarations of the current ruleset and creates a
// rule per supported selector.
func (p *Parser) parseRuleset(parser *css.Parser, sheet *Stylesheet, data []byte, mq *MediaQuery) []Rule {
	selectors := p.parseSelectors(data, parser.Values())
	props := p.parseDeclarations(parser)

	var rules []Rule
	for _, selStr := range selectors {
		sel := p.parseSelector(selStr, sheet)
		if !sel.IsSimple() {
			continue
		}
		propsCopy := make(map[string]Value, len(props))
		maps.Copy(propsCopy, props)
		rules = append(rules, Rule{Selector: sel, Properties: propsCopy, Media: mq})
	}
	return rules
}

// parseRulesets parses rules inside an @media block.
func (p *Parser) parseRulesets(parser *css.Parser, sheet *Stylesheet, mq *MediaQuery) []Rule {
	var rules []Rule
	for {
		gt, _, data := parser.Next()
		switch gt {
		case css.ErrorGrammar, css.EndAtRuleGrammar:
			return rules
		case css.BeginRulesetGrammar:
			rules = append(rules, p.parseRuleset(parser, sheet, data, mq)...)
		}
	}
}

// parseSelectors extracts selector strings from token data.
func (p *Parser) parseSelectors(data []byte, values []css.Token) []string {
	var sb strings.Builder
	sb.Write(data)
	for _, v := range values {
		sb.Write(v.Data)
	}

	var selectors []string
	for s := range strings.SplitSeq(sb.String(), ",") {
		if s = strings.TrimSpace(s); s != "" {
			selectors = append(selectors, s)
		}
	}
	return selectors
}

// parseDeclarations parses property declarations until EndRulesetGrammar.
func (p *Parser) parseDeclarations(parser *css.Parser) map[string]Value {
	props := make(map[string]Value)
	for {
		gt, _, data := parser.Next()
		switch gt {
		case css.ErrorGrammar, css.EndRulesetGrammar:
			return props
		case css.DeclarationGrammar:
			if values := parser.Values(); len(values) > 0 {
				props[strings.ToLower(string(data))] = parsePropertyValue(values)
			}
		}
	}
}

// parsePropertyValue converts CSS tokens to a Value.
func parsePropertyValue(tokens []css.Token) Value {
	var rawParts []string
	for _, t := range tokens {
		if t.TokenType != css.WhitespaceToken {
			rawParts = append(rawParts, string(t.Data))
		} else if len(rawParts) > 0 {
			rawParts = append(rawParts, " ")
		}
	}
	raw := strings.TrimSpace(strings.Join(rawParts, ""))
	val := Value{Raw: raw}

	// drop "!important", cascade here does not distinguish it
	for len(tokens) > 0 && (tokens[len(tokens)-1].TokenType == css.WhitespaceToken ||
		strings.EqualFold(string(tokens[len(tokens)-1].Data), "important") ||
		string(tokens[len(tokens)-1].Data) == "!") {
		tokens = tokens[:len(tokens)-1]
	}
	if len(tokens) != 1 {
		// multi-value and function values are kept as raw keyword
		val.Keyword = raw
		return val
	}

	t := tokens[0]
	switch t.TokenType {
	case css.DimensionToken:
		val.Value, val.Unit = parseDimension(string(t.Data))
	case css.PercentageToken:
		val.Value, _ = strconv.ParseFloat(strings.TrimSuffix(string(t.Data), "%"), 64)
		val.Unit = "%"
	case css.NumberToken:
		val.Value, _ = strconv.ParseFloat(string(t.Data), 64)
	case css.IdentToken:
		val.Keyword = strings.ToLower(string(t.Data))
	case css.StringToken:
		val.Keyword = unquote(string(t.Data))
	case css.HashToken:
		val.Keyword = string(t.Data)
	default:
		val.Keyword = raw
	}
	return val
}

// parseDimension extracts numeric value and unit from dimension token.
func parseDimension(s string) (float64, string) {
	numEnd := 0
	for i, r := range s {
		if unicode.IsDigit(r) || r == '.' || r == '-' || r == '+' {
			numEnd = i + 1
		} else {
			break
		}
	}
	if numEnd == 0 {
		return 0, ""
	}
	num, _ := strconv.ParseFloat(s[:numEnd], 64)
	return num, strings.ToLower(s[numEnd:])
}

// parseSelector parses a single selector string into a Selector.
func (p *Parser) parseSelector(selStr string, sheet *Stylesheet) Selector {
	selStr = strings.TrimSpace(selStr)
	sel := Selector{Raw: selStr}

	if strings.ContainsAny(selStr, "+~>") {
		sheet.Warnings = append(sheet.Warnings, "unsupported combinator selector: "+selStr)
		p.log.Debug("Skipping combinator selector", zap.String("selector", selStr))
		return sel
	}
	if strings.ContainsAny(selStr, "[:#") {
		sheet.Warnings = append(sheet.Warnings, "unsupported selector: "+selStr)
		p.log.Debug("Skipping selector", zap.String("selector", selStr))
		return sel
	}

	parts := strings.Fields(selStr)
	if len(parts) == 0 {
		return sel
	}
	sel = parseSimpleSelector(parts[len(parts)-1])
	sel.Raw = selStr
	if len(parts) > 1 {
		ancestor := p.parseSelector(strings.Join(parts[:len(parts)-1], " "), sheet)
		if !ancestor.IsSimple() {
			return Selector{Raw: selStr}
		}
		sel.Ancestor = &ancestor
	}
	return sel
}

// parseSimpleSelector parses element, .class or element.class.
func parseSimpleSelector(selStr string) Selector {
	sel := Selector{Raw: selStr}
	if element, class, found := strings.Cut(selStr, "."); found {
		sel.Element = strings.ToLower(element)
		sel.Class = class
	} else {
		sel.Element = strings.ToLower(selStr)
	}
	return sel
}

// skipAtRuleBlock skips tokens until the matching end of an @-rule block.
func (p *Parser) skipAtRuleBlock(parser *css.Parser) {
	depth := 1
	for depth > 0 {
		gt, _, _ := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			return
		case css.BeginAtRuleGrammar, css.BeginRulesetGrammar:
			depth++
		case css.EndAtRuleGrammar, css.EndRulesetGrammar:
			depth--
		}
	}
}

// parseMediaQuery parses "[not] type [and type]..." from CSS tokens.
func (p *Parser) parseMediaQuery(tokens []css.Token) MediaQuery {
	mq := MediaQuery{}

	var rawParts, idents []string
	for _, t := range tokens {
		if t.TokenType != css.WhitespaceToken {
			rawParts = append(rawParts, string(t.Data))
		} else if len(rawParts) > 0 {
			rawParts = append(rawParts, " ")
		}
		if t.TokenType == css.IdentToken {
			idents = append(idents, strings.ToLower(string(t.Data)))
		}
	}
	mq.Raw = strings.TrimSpace(strings.Join(rawParts, ""))

	if len(idents) == 0 {
		mq.Type = "all"
		return mq
	}
	i := 0
	if idents[i] == "not" || idents[i] == "only" {
		mq.Negated = idents[i] == "not"
		i++
	}
	if i < len(idents) {
		mq.Type = idents[i]
		i++
	}
	for ; i < len(idents); i++ {
		if idents[i] != "and" {
			mq.Features = append(mq.Features, idents[i])
		}
	}
	return mq
}

// unquote removes surrounding quotes from a string.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return s
	}
	if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}
