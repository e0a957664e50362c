package raster

import (
	"image/color"
	"strconv"
	"strings"

	"storyexp/css"
)

// baseCSS is applied before caller stylesheet, so any of its rules could
// be overridden.
const baseCSS = `
body { font-size: 12pt; color: black; line-height: 1.35; text-align: left; }
h1 { font-size: 2em; font-weight: bold; text-align: center; margin-top: 0.6em; margin-bottom: 0.8em; }
h2 { font-size: 1.6em; font-weight: bold; margin-top: 0.8em; margin-bottom: 0.5em; }
h3 { font-size: 1.3em; font-weight: bold; margin-top: 0.8em; margin-bottom: 0.4em; }
h4 { font-size: 1.15em; font-weight: bold; margin-top: 0.6em; margin-bottom: 0.3em; }
h5 { font-size: 1em; font-weight: bold; margin-top: 0.6em; margin-bottom: 0.3em; }
h6 { font-size: 0.9em; font-weight: bold; margin-top: 0.6em; margin-bottom: 0.3em; }
p { margin-top: 0; margin-bottom: 0.6em; }
li { margin-bottom: 0.2em; }
ul, ol { margin-left: 1.6em; margin-top: 0.2em; margin-bottom: 0.6em; }
blockquote { margin-left: 1.2em; padding-left: 0.8em; border-left-width: 2pt; border-left-color: gray; color: dimgray; margin-bottom: 0.6em; }
pre { font-family: monospace; font-size: 0.85em; background-color: #f2f2f2; padding-left: 0.5em; margin-bottom: 0.8em; line-height: 1.2; }
code { font-family: monospace; }
strong, b { font-weight: bold; }
em, i { font-style: italic; }
del, s { text-decoration: line-through; }
a { color: #1a4f8b; text-decoration: underline; }
img { font-style: italic; }
hr { margin-top: 0.8em; margin-bottom: 0.8em; }
`

// textStyle is inherited part of computed style.
type textStyle struct {
	size       float64 // px
	bold       bool
	italic     bool
	mono       bool
	strike     bool
	underline  bool
	color      color.RGBA
	lineHeight float64 // multiplier of size
	align      string
	indent     float64 // px
}

// boxStyle is not inherited.
type boxStyle struct {
	marginTop    float64
	marginBottom float64
	marginLeft   float64
	paddingLeft  float64
	background   *color.RGBA
	borderWidth  float64
	borderColor  color.RGBA
}

func rootStyle(dpi float64) textStyle {
	return textStyle{
		size:       12 * dpi / 72,
		color:      color.RGBA{A: 255},
		lineHeight: 1.35,
		align:      "left",
	}
}

func (ts textStyle) inherit(st css.Style, dpi float64) textStyle {
	if v, ok := st["font-size"]; ok {
		if px, ok := v.Pixels(ts.size, dpi); ok && px > 0 {
			ts.size = px
		}
	}
	if v, ok := st["font-weight"]; ok {
		switch {
		case v.Keyword == "bold" || v.Keyword == "bolder":
			ts.bold = true
		case v.Keyword == "normal" || v.Keyword == "lighter":
			ts.bold = false
		case v.IsNumeric():
			ts.bold = v.Value >= 600
		}
	}
	switch st.Keyword("font-style", "") {
	case "italic", "oblique":
		ts.italic = true
	case "normal":
		ts.italic = false
	}
	if family := st.Keyword("font-family", ""); family != "" {
		ts.mono = strings.Contains(family, "mono") || strings.Contains(family, "courier")
	}
	if deco := st.Keyword("text-decoration", ""); deco != "" {
		ts.strike = strings.Contains(deco, "line-through")
		ts.underline = strings.Contains(deco, "underline")
	}
	if v, ok := st["color"]; ok {
		if c, ok := v.Color(); ok {
			ts.color = c
		}
	}
	if v, ok := st["line-height"]; ok {
		switch {
		case v.IsNumeric() && v.Unit == "":
			ts.lineHeight = v.Value
		case v.IsNumeric():
			if px, ok := v.Pixels(ts.size, dpi); ok && ts.size > 0 {
				ts.lineHeight = px / ts.size
			}
		case v.Keyword == "normal":
			ts.lineHeight = 1.2
		}
	}
	switch align := st.Keyword("text-align", ""); align {
	case "left", "right", "center":
		ts.align = align
	case "justify", "start":
		ts.align = "left"
	case "end":
		ts.align = "right"
	}
	if v, ok := st["text-indent"]; ok {
		if px, ok := v.Pixels(ts.size, dpi); ok {
			ts.indent = px
		}
	}
	return ts
}

func newBoxStyle(st css.Style, size, dpi float64) boxStyle {
	length := func(name string) float64 {
		if v, ok := st[name]; ok {
			if px, ok := v.Pixels(size, dpi); ok {
				return px
			}
		}
		return 0
	}
	bs := boxStyle{
		marginTop:    length("margin-top"),
		marginBottom: length("margin-bottom"),
		marginLeft:   length("margin-left"),
		paddingLeft:  length("padding-left"),
		borderWidth:  length("border-left-width"),
		borderColor:  color.RGBA{A: 255},
	}
	if v, ok := st["background-color"]; ok {
		if c, ok := v.Color(); ok {
			bs.background = &c
		}
	}
	if v, ok := st["border-left-color"]; ok {
		if c, ok := v.Color(); ok {
			bs.borderColor = c
		}
	}
	return bs
}

// listMarker returns bullet or ordinal for list item.
func listMarker(ordered bool, n int) string {
	if ordered {
		return strconv.Itoa(n) + "."
	}
	return "•"
}
