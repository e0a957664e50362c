package odt

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// Style is a named ODF style. Name is the encoded style name used in
// documents, display name is derived by decoding "_20_" back to spaces.
type Style struct {
	Name   string
	Family string // paragraph or text
	Parent string
	// text properties
	Font      string
	Size      string
	Bold      bool
	Italic    bool
	Strike    bool
	Underline bool
	Color     string
	// paragraph properties
	MarginTop    string
	MarginBottom string
	MarginLeft   string
	Align        string
	BorderLeft   string
	BorderBottom string
	Background   string
	Outline      int // heading outline level, 0 for none
}

// DisplayName returns human readable style name.
func (s Style) DisplayName() string {
	return strings.ReplaceAll(s.Name, "_20_", " ")
}

// DefaultStyles returns style table used when caller supplies none.
func DefaultStyles() []Style {
	return []Style{
		{Name: "Standard", Family: "paragraph", Font: "Liberation Serif", Size: "12pt"},
		{Name: "Heading", Family: "paragraph", Parent: "Standard", Font: "Liberation Sans", MarginTop: "0.17in", MarginBottom: "0.08in"},
		{Name: "Heading_20_1", Family: "paragraph", Parent: "Heading", Size: "20pt", Bold: true, Outline: 1},
		{Name: "Heading_20_2", Family: "paragraph", Parent: "Heading", Size: "16pt", Bold: true, Outline: 2},
		{Name: "Heading_20_3", Family: "paragraph", Parent: "Heading", Size: "14pt", Bold: true, Outline: 3},
		{Name: "Heading_20_4", Family: "paragraph", Parent: "Heading", Size: "13pt", Bold: true, Italic: true, Outline: 4},
		{Name: "Text_20_body", Family: "paragraph", Parent: "Standard", MarginBottom: "0.1in"},
		{Name: "Quotations", Family: "paragraph", Parent: "Standard", Italic: true, MarginLeft: "0.4in", MarginBottom: "0.1in", BorderLeft: "0.03in solid #808080"},
		{Name: "Preformatted_20_Text", Family: "paragraph", Parent: "Standard", Font: "Liberation Mono", Size: "10pt", Background: "#f2f2f2", MarginBottom: "0.1in"},
		{Name: "List_20_Contents", Family: "paragraph", Parent: "Standard", MarginBottom: "0.04in"},
		{Name: "Horizontal_20_Line", Family: "paragraph", Parent: "Standard", Size: "6pt", MarginBottom: "0.1in", BorderBottom: "0.01in solid #000000"},
		{Name: "Bold", Family: "text", Bold: true},
		{Name: "Italic", Family: "text", Italic: true},
		{Name: "Bold_20_Italic", Family: "text", Bold: true, Italic: true},
		{Name: "Strikethrough", Family: "text", Strike: true},
		{Name: "Source_20_Text", Family: "text", Font: "Liberation Mono"},
		{Name: "Internet_20_link", Family: "text", Color: "#000080", Underline: true},
	}
}

const (
	listBullet = "List_20_Bullet"
	listNumber = "List_20_Number"
)

func stylesDoc(styles []Style) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("office:document-styles")
	declareNamespaces(root)
	root.CreateAttr("office:version", "1.2")

	fonts := root.CreateElement("office:font-face-decls")
	for _, f := range [][2]string{
		{"Liberation Serif", "roman"},
		{"Liberation Sans", "swiss"},
		{"Liberation Mono", "modern"},
	} {
		ff := fonts.CreateElement("style:font-face")
		ff.CreateAttr("style:name", f[0])
		ff.CreateAttr("svg:font-family", "'"+f[0]+"'")
		ff.CreateAttr("style:font-family-generic", f[1])
	}

	office := root.CreateElement("office:styles")
	for _, s := range styles {
		st := office.CreateElement("style:style")
		st.CreateAttr("style:name", s.Name)
		if s.DisplayName() != s.Name {
			st.CreateAttr("style:display-name", s.DisplayName())
		}
		st.CreateAttr("style:family", s.Family)
		if s.Parent != "" {
			st.CreateAttr("style:parent-style-name", s.Parent)
		}
		if s.Outline > 0 {
			st.CreateAttr("style:default-outline-level", strconv.Itoa(s.Outline))
		}
		if s.Family == "paragraph" {
			st.CreateAttr("style:class", "text")
			paragraphProperties(st, s)
		}
		textProperties(st, s)
	}

	for _, l := range []struct {
		name    string
		ordered bool
	}{{listBullet, false}, {listNumber, true}} {
		ls := office.CreateElement("text:list-style")
		ls.CreateAttr("style:name", l.name)
		ls.CreateAttr("style:display-name", strings.ReplaceAll(l.name, "_20_", " "))
		var lvl *etree.Element
		if l.ordered {
			lvl = ls.CreateElement("text:list-level-style-number")
			lvl.CreateAttr("style:num-suffix", ".")
			lvl.CreateAttr("style:num-format", "1")
		} else {
			lvl = ls.CreateElement("text:list-level-style-bullet")
			lvl.CreateAttr("text:bullet-char", "•")
		}
		lvl.CreateAttr("text:level", "1")
		props := lvl.CreateElement("style:list-level-properties")
		props.CreateAttr("text:list-level-position-and-space-mode", "label-alignment")
		align := props.CreateElement("style:list-level-label-alignment")
		align.CreateAttr("text:label-followed-by", "listtab")
		align.CreateAttr("text:list-tab-stop-position", "0.25in")
		align.CreateAttr("fo:text-indent", "-0.25in")
		align.CreateAttr("fo:margin-left", "0.25in")
	}

	doc.Indent(2)
	return doc
}

func paragraphProperties(st *etree.Element, s Style) {
	var attrs [][2]string
	add := func(key, val string) {
		if val != "" {
			attrs = append(attrs, [2]string{key, val})
		}
	}
	add("fo:margin-top", s.MarginTop)
	add("fo:margin-bottom", s.MarginBottom)
	add("fo:margin-left", s.MarginLeft)
	add("fo:text-align", s.Align)
	add("fo:border-left", s.BorderLeft)
	add("fo:border-bottom", s.BorderBottom)
	add("fo:background-color", s.Background)
	if s.BorderLeft != "" {
		add("fo:padding-left", "0.08in")
	}
	if len(attrs) == 0 {
		return
	}
	pp := st.CreateElement("style:paragraph-properties")
	for _, a := range attrs {
		pp.CreateAttr(a[0], a[1])
	}
}

func textProperties(st *etree.Element, s Style) {
	var attrs [][2]string
	add := func(key, val string) {
		if val != "" {
			attrs = append(attrs, [2]string{key, val})
		}
	}
	add("style:font-name", s.Font)
	add("fo:font-size", s.Size)
	if s.Bold {
		add("fo:font-weight", "bold")
	}
	if s.Italic {
		add("fo:font-style", "italic")
	}
	if s.Strike {
		add("style:text-line-through-style", "solid")
	}
	if s.Underline {
		add("style:text-underline-style", "solid")
		add("style:text-underline-width", "auto")
		add("style:text-underline-color", "font-color")
	}
	add("fo:color", s.Color)
	if len(attrs) == 0 {
		return
	}
	tp := st.CreateElement("style:text-properties")
	for _, a := range attrs {
		tp.CreateAttr(a[0], a[1])
	}
}
