package raster

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/net/html"

	"storyexp/css"
	"storyexp/utils/images"
)

type boxKind int

const (
	boxText boxKind = iota
	boxPre
	boxRule
	boxBar
)

// piece is a span of text drawn with single face.
type piece struct {
	text  string
	style textStyle
	face  font.Face
	x     float64 // relative to line start
	width float64
}

type line struct {
	pieces   []piece
	x        float64 // alignment offset
	y        float64 // top, relative to box
	height   float64
	baseline float64 // relative to box
}

type box struct {
	kind   boxKind
	x, y   float64
	width  float64
	height float64
	lines  []line
	marker *piece

	background *color.RGBA
	bgLeft     float64

	color   color.RGBA // bars and rules without image
	divider image.Image
}

type run struct {
	text  string
	style textStyle
	br    bool
}

type layouter struct {
	s     *Surface
	ctx   context.Context
	width float64

	y       float64
	pending float64 // collapsed vertical margin waiting for next box
	boxes   []*box
}

var inlineTags = map[string]bool{
	"a": true, "b": true, "br": true, "code": true, "del": true, "em": true,
	"i": true, "img": true, "s": true, "span": true, "strong": true, "sub": true,
	"sup": true, "u": true,
}

var skipTags = map[string]bool{
	"head": true, "style": true, "script": true, "title": true,
}

func (l *layouter) layout(doc string) error {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return fmt.Errorf("unable to parse html: %w", err)
	}
	body := findElement(root, "body")
	if body == nil {
		body = root
	}
	path := []css.Node{{Element: "body", Class: attr(body, "class")}}
	ts := rootStyle(l.s.dpi).inherit(l.s.sheet.Compute(path, medium), l.s.dpi)
	return l.blocks(body, path, ts, 0)
}

// blocks lays out children of container node, left is container content
// edge.
func (l *layouter) blocks(n *html.Node, path []css.Node, ts textStyle, left float64) error {
	var (
		ordered = n.Type == html.ElementNode && n.Data == "ol"
		ordinal int
		inline  []*html.Node
	)

	flushInline := func() error {
		if len(inline) == 0 {
			return nil
		}
		nodes := inline
		inline = nil
		return l.textBlock(nodes, path, ts, boxStyle{}, left, "")
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := l.ctx.Err(); err != nil {
			return err
		}
		if c.Type == html.TextNode || (c.Type == html.ElementNode && inlineTags[c.Data]) {
			inline = append(inline, c)
			continue
		}
		if c.Type != html.ElementNode || skipTags[c.Data] {
			continue
		}
		if err := flushInline(); err != nil {
			return err
		}

		cp := append(slices.Clip(path), css.Node{Element: c.Data, Class: attr(c, "class")})
		st := l.s.sheet.Compute(cp, medium)
		cts := ts.inherit(st, l.s.dpi)
		bs := newBoxStyle(st, cts.size, l.s.dpi)

		var err error
		switch c.Data {
		case "hr":
			l.rule(bs, left)
		case "pre":
			err = l.preBlock(c, cts, bs, left)
		case "li":
			ordinal++
			err = l.textBlock(childNodes(c), cp, cts, bs, left, listMarker(ordered, ordinal))
		case "ul", "ol", "blockquote", "div", "section", "article", "main", "body", "html", "nav", "header", "footer":
			err = l.container(c, cp, cts, bs, left)
		default:
			err = l.textBlock(childNodes(c), cp, cts, bs, left, "")
		}
		if err != nil {
			return err
		}
	}
	return flushInline()
}

func (l *layouter) container(n *html.Node, path []css.Node, ts textStyle, bs boxStyle, left float64) error {
	l.margin(bs.marginTop)
	start := len(l.boxes)

	inner := left + bs.marginLeft
	if err := l.blocks(n, path, ts, inner+bs.borderWidth+bs.paddingLeft); err != nil {
		return err
	}

	if bs.borderWidth > 0 && len(l.boxes) > start {
		first, last := l.boxes[start], l.boxes[len(l.boxes)-1]
		l.boxes = append(l.boxes, &box{
			kind:   boxBar,
			x:      inner,
			y:      first.y,
			width:  bs.borderWidth,
			height: last.y + last.height - first.y,
			color:  bs.borderColor,
		})
	}
	l.margin(bs.marginBottom)
	return nil
}

func (l *layouter) margin(m float64) {
	l.pending = max(l.pending, m)
}

// place positions next box applying collapsed margin. Leading margin of
// the document is dropped.
func (l *layouter) place(b *box) {
	if len(l.boxes) > 0 {
		l.y += l.pending
	}
	l.pending = 0
	b.y = l.y
	l.y += b.height
	l.boxes = append(l.boxes, b)
}

func (l *layouter) textBlock(nodes []*html.Node, path []css.Node, ts textStyle, bs boxStyle, left float64, marker string) error {
	var runs []run
	for _, n := range nodes {
		l.collect(n, path, ts, &runs)
	}
	if marker == "" && blank(runs) {
		return nil
	}

	x := left + bs.marginLeft + bs.paddingLeft
	b := &box{
		kind:       boxText,
		x:          x,
		width:      l.width - x,
		background: bs.background,
		bgLeft:     left + bs.marginLeft,
	}
	lines, err := l.wrap(runs, b.width, ts)
	if err != nil {
		return err
	}
	b.lines = lines
	for _, ln := range lines {
		b.height += ln.height
	}

	if marker != "" {
		mts := ts
		mts.strike, mts.underline = false, false
		face, err := l.s.face(mts)
		if err != nil {
			return err
		}
		w := measure(face, marker)
		b.marker = &piece{text: marker, style: mts, face: face, x: -(w + mts.size*0.4), width: w}
	}

	l.margin(bs.marginTop)
	l.place(b)
	l.margin(bs.marginBottom)
	return nil
}

func (l *layouter) preBlock(n *html.Node, ts textStyle, bs boxStyle, left float64) error {
	text := strings.TrimSuffix(textContent(n), "\n")
	text = strings.ReplaceAll(text, "\t", "    ")

	x := left + bs.marginLeft + bs.paddingLeft
	b := &box{
		kind:       boxPre,
		x:          x,
		width:      l.width - x,
		background: bs.background,
		bgLeft:     left + bs.marginLeft,
	}
	face, err := l.s.face(ts)
	if err != nil {
		return err
	}

	var lines []line
	for src := range strings.SplitSeq(text, "\n") {
		for {
			if err := l.ctx.Err(); err != nil {
				return err
			}
			head, rest := fitRunes(face, src, b.width)
			if head == "" && rest != "" {
				// not even one rune fits, place it anyway
				_, size := utf8.DecodeRuneInString(rest)
				head, rest = rest[:size], rest[size:]
			}
			var pieces []piece
			if head != "" {
				pieces = append(pieces, piece{text: head, style: ts, face: face, width: measure(face, head)})
			}
			lines = append(lines, l.finishLine(pieces, ts, b.width))
			if rest == "" {
				break
			}
			src = rest
		}
	}
	var y float64
	for i := range lines {
		lines[i].y = y
		lines[i].baseline += y
		y += lines[i].height
	}
	b.lines, b.height = lines, y

	l.margin(bs.marginTop)
	l.place(b)
	l.margin(bs.marginBottom)
	return nil
}

func (l *layouter) rule(bs boxStyle, left float64) {
	x := left + bs.marginLeft
	b := &box{kind: boxRule, x: x, width: l.width - x, color: color.RGBA{A: 255}}

	b.height = max(1, l.s.dpi/72)
	if w := int(b.width / 2); w > 0 {
		// divider viewBox is 240 units wide, keep strokes about 1pt thick
		svg := images.ScaleSVGStrokeWidth(l.s.divider, (l.s.dpi/72)/(float64(w)/240))
		img, err := images.RasterizeSVGToImage(svg, w, 0)
		if err != nil {
			l.s.log.Warn("Unable to rasterize divider, using plain rule", zap.Error(err))
		} else {
			b.divider = img
			b.height = float64(img.Bounds().Dy())
		}
	}

	l.margin(bs.marginTop)
	l.place(b)
	l.margin(bs.marginBottom)
}

// collect flattens inline content into styled runs.
func (l *layouter) collect(n *html.Node, path []css.Node, ts textStyle, runs *[]run) {
	switch n.Type {
	case html.TextNode:
		*runs = append(*runs, run{text: n.Data, style: ts})
		return
	case html.ElementNode:
	default:
		return
	}
	if n.Data == "br" {
		*runs = append(*runs, run{br: true})
		return
	}

	cp := append(slices.Clip(path), css.Node{Element: n.Data, Class: attr(n, "class")})
	cts := ts.inherit(l.s.sheet.Compute(cp, medium), l.s.dpi)
	if n.Data == "img" {
		alt := strings.TrimSpace(attr(n, "alt"))
		if alt == "" {
			alt = "image"
		}
		*runs = append(*runs, run{text: "[" + alt + "]", style: cts})
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		l.collect(c, cp, cts, runs)
	}
}

// wrap breaks runs into lines no wider than avail. Whitespace is collapsed,
// first line is indented.
func (l *layouter) wrap(runs []run, avail float64, ts textStyle) ([]line, error) {
	var (
		lines      []line
		pieces     []piece
		x          = ts.indent
		space      bool
		spaceStyle textStyle
		spaceFace  font.Face
	)

	flush := func() {
		lines = append(lines, l.finishLine(pieces, ts, avail))
		pieces, x, space = nil, 0, false
	}

	for _, r := range runs {
		if r.br {
			flush()
			continue
		}
		face, err := l.s.face(r.style)
		if err != nil {
			return nil, err
		}
		for _, tok := range tokenize(r.text) {
			if tok == " " {
				if len(pieces) > 0 {
					space, spaceStyle, spaceFace = true, r.style, face
				}
				continue
			}

			w := measure(face, tok)
			var sw float64
			if space {
				sw = measure(spaceFace, " ")
			}
			if len(pieces) > 0 && x+sw+w > avail {
				flush()
				sw = 0
			}
			if sw > 0 {
				pieces = append(pieces, piece{text: " ", style: spaceStyle, face: spaceFace, x: x, width: sw})
				x += sw
			}
			space = false

			for x+w > avail && utf8.RuneCountInString(tok) > 1 {
				head, rest := fitRunes(face, tok, avail-x)
				if head == "" {
					if len(pieces) == 0 {
						// not even one rune fits, place it anyway
						_, size := utf8.DecodeRuneInString(tok)
						head, rest = tok[:size], tok[size:]
					} else {
						flush()
						continue
					}
				}
				hw := measure(face, head)
				pieces = append(pieces, piece{text: head, style: r.style, face: face, x: x, width: hw})
				x += hw
				if rest == "" {
					tok = ""
					break
				}
				flush()
				tok, w = rest, measure(face, rest)
			}
			if tok != "" {
				pieces = append(pieces, piece{text: tok, style: r.style, face: face, x: x, width: w})
				x += w
			}
		}
	}
	if len(pieces) > 0 || len(lines) == 0 {
		flush()
	}

	var y float64
	for i := range lines {
		lines[i].y = y
		lines[i].baseline += y
		y += lines[i].height
	}
	return lines, nil
}

// finishLine computes line metrics and alignment offset, baseline is set
// relative to line top.
func (l *layouter) finishLine(pieces []piece, ts textStyle, avail float64) line {
	ln := line{pieces: pieces}

	var ascent, descent, size, width float64
	if len(pieces) == 0 {
		if face, err := l.s.face(ts); err == nil {
			m := face.Metrics()
			ascent, descent = fixedToFloat(m.Ascent), fixedToFloat(m.Descent)
		}
		size = ts.size
	}
	for _, p := range pieces {
		m := p.face.Metrics()
		ascent = max(ascent, fixedToFloat(m.Ascent))
		descent = max(descent, fixedToFloat(m.Descent))
		size = max(size, p.style.size)
		width = max(width, p.x+p.width)
	}

	ln.height = max(ascent+descent, size*ts.lineHeight)
	ln.baseline = (ln.height-(ascent+descent))/2 + ascent
	switch ts.align {
	case "center":
		ln.x = max(0, (avail-width)/2)
	case "right":
		ln.x = max(0, avail-width)
	}
	return ln
}

// tokenize splits text into words and single " " separators.
func tokenize(s string) []string {
	var (
		out  []string
		word strings.Builder
	)
	for _, r := range s {
		if unicode.IsSpace(r) && r != '\u00A0' {
			if word.Len() > 0 {
				out = append(out, word.String())
				word.Reset()
			}
			if len(out) == 0 || out[len(out)-1] != " " {
				out = append(out, " ")
			}
			continue
		}
		word.WriteRune(r)
	}
	if word.Len() > 0 {
		out = append(out, word.String())
	}
	return out
}

// fitRunes returns longest prefix of s not wider than avail and the rest.
func fitRunes(face font.Face, s string, avail float64) (string, string) {
	var w float64
	prev := rune(-1)
	for i, r := range s {
		if prev >= 0 {
			w += fixedToFloat(face.Kern(prev, r))
		}
		adv, ok := face.GlyphAdvance(r)
		if !ok {
			adv, _ = face.GlyphAdvance('?')
		}
		w += fixedToFloat(adv)
		if w > avail {
			return s[:i], s[i:]
		}
		prev = r
	}
	return s, ""
}

func blank(runs []run) bool {
	for _, r := range runs {
		if r.br || strings.TrimSpace(r.text) != "" {
			return false
		}
	}
	return true
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func childNodes(n *html.Node) []*html.Node {
	var nodes []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		nodes = append(nodes, c)
	}
	return nodes
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textContent(c))
	}
	return sb.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
