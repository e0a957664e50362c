package docx

import (
	"strconv"

	"github.com/beevik/etree"
)

// Style describes one WordprocessingML paragraph or character style.
type Style struct {
	ID        string
	Name      string
	Character bool
	Font      string
	Size      int // half-points, 0 to inherit
	Bold      bool
	Italic    bool
	Color     string
	Underline bool
	// spacing in twentieths of a point
	Before int
	After  int
	// left indent in twentieths of a point
	Indent int
	// outline level for headings, -1 when not a heading
	Outline int
	// paragraph borders and shading
	LeftBorder   bool
	BottomBorder bool
	Box          bool
	Shading      string
}

// DefaultStyles returns style table used when caller supplies none.
func DefaultStyles() []Style {
	return []Style{
		{ID: "Normal", Name: "Normal", Font: "Calibri", Size: 24, After: 160, Outline: -1},
		{ID: "Heading1", Name: "heading 1", Size: 40, Bold: true, Before: 480, After: 240, Outline: 0},
		{ID: "Heading2", Name: "heading 2", Size: 32, Bold: true, Before: 360, After: 160, Outline: 1},
		{ID: "Heading3", Name: "heading 3", Size: 28, Bold: true, Before: 280, After: 120, Outline: 2},
		{ID: "Heading4", Name: "heading 4", Size: 24, Bold: true, Italic: true, Before: 240, After: 120, Outline: 3},
		{ID: "Quote", Name: "Quote", Italic: true, Color: "595959", Indent: 720, LeftBorder: true, Outline: -1},
		{ID: "Code", Name: "Code", Font: "Courier New", Size: 20, Box: true, Shading: "F2F2F2", After: 160, Outline: -1},
		{ID: "ListBullet", Name: "List Bullet", Indent: 720, After: 60, Outline: -1},
		{ID: "ListNumber", Name: "List Number", Indent: 720, After: 60, Outline: -1},
		{ID: "Hyperlink", Name: "Hyperlink", Character: true, Color: "0563C1", Underline: true, Outline: -1},
		{ID: "InlineCode", Name: "Inline Code", Character: true, Font: "Courier New", Outline: -1},
	}
}

func stylesDoc(styles []Style) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)

	root := doc.CreateElement("w:styles")
	root.CreateAttr("xmlns:w", nsW)

	for _, s := range styles {
		st := root.CreateElement("w:style")
		if s.Character {
			st.CreateAttr("w:type", "character")
		} else {
			st.CreateAttr("w:type", "paragraph")
		}
		st.CreateAttr("w:styleId", s.ID)
		if s.ID == "Normal" {
			st.CreateAttr("w:default", "1")
		}
		st.CreateElement("w:name").CreateAttr("w:val", s.Name)
		if s.ID != "Normal" && !s.Character {
			st.CreateElement("w:basedOn").CreateAttr("w:val", "Normal")
			st.CreateElement("w:next").CreateAttr("w:val", "Normal")
		}
		st.CreateElement("w:qFormat")

		if !s.Character {
			ppr := st.CreateElement("w:pPr")
			if s.Outline >= 0 {
				ppr.CreateElement("w:keepNext")
			}
			if s.LeftBorder || s.Box {
				bdr := ppr.CreateElement("w:pBdr")
				sides := []string{"w:left"}
				if s.Box {
					sides = []string{"w:top", "w:left", "w:bottom", "w:right"}
				}
				for _, side := range sides {
					border(bdr, side, 12, 4)
				}
			}
			if s.Shading != "" {
				shd := ppr.CreateElement("w:shd")
				shd.CreateAttr("w:val", "clear")
				shd.CreateAttr("w:color", "auto")
				shd.CreateAttr("w:fill", s.Shading)
			}
			if s.Before > 0 || s.After > 0 {
				sp := ppr.CreateElement("w:spacing")
				sp.CreateAttr("w:before", strconv.Itoa(s.Before))
				sp.CreateAttr("w:after", strconv.Itoa(s.After))
			}
			if s.Indent > 0 {
				ppr.CreateElement("w:ind").CreateAttr("w:left", strconv.Itoa(s.Indent))
			}
			if s.Outline >= 0 {
				ppr.CreateElement("w:outlineLvl").CreateAttr("w:val", strconv.Itoa(s.Outline))
			}
		}

		rpr := st.CreateElement("w:rPr")
		if s.Font != "" {
			fonts := rpr.CreateElement("w:rFonts")
			fonts.CreateAttr("w:ascii", s.Font)
			fonts.CreateAttr("w:hAnsi", s.Font)
			fonts.CreateAttr("w:cs", s.Font)
		}
		if s.Bold {
			rpr.CreateElement("w:b")
		}
		if s.Italic {
			rpr.CreateElement("w:i")
		}
		if s.Color != "" {
			rpr.CreateElement("w:color").CreateAttr("w:val", s.Color)
		}
		if s.Underline {
			rpr.CreateElement("w:u").CreateAttr("w:val", "single")
		}
		if s.Size > 0 {
			rpr.CreateElement("w:sz").CreateAttr("w:val", strconv.Itoa(s.Size))
			rpr.CreateElement("w:szCs").CreateAttr("w:val", strconv.Itoa(s.Size))
		}
	}
	return doc
}

func border(parent *etree.Element, side string, size, space int) {
	b := parent.CreateElement(side)
	b.CreateAttr("w:val", "single")
	b.CreateAttr("w:sz", strconv.Itoa(size))
	b.CreateAttr("w:space", strconv.Itoa(space))
	b.CreateAttr("w:color", "auto")
}
