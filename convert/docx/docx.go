// Package docx produces Office Open XML word processing documents.
package docx

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"storyexp/archive"
	"storyexp/content"
	"storyexp/markup"
	"storyexp/misc"
)

const (
	nsW      = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsR      = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsRels   = "http://schemas.openxmlformats.org/package/2006/relationships"
	relTypes = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/"

	maxHeadingLevel = 4
)

// Settings controls DOCX generation.
type Settings struct {
	FixZip bool
	// nil selects DefaultStyles
	Styles []Style
}

// Encoder produces DOCX package.
type Encoder struct {
	log      *zap.Logger
	settings Settings
}

// New creates DOCX encoder.
func New(settings Settings, log *zap.Logger) *Encoder {
	if settings.Styles == nil {
		settings.Styles = DefaultStyles()
	}
	return &Encoder{log: log.Named("docx"), settings: settings}
}

// hyperlink relationship
type relationship struct {
	id     string
	target string
}

type builder struct {
	body  *etree.Element
	links []relationship
}

// Encode translates document blocks into WordprocessingML paragraphs.
func (e *Encoder) Encode(ctx context.Context, c *content.Content) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, b := newDocument()
	for _, g := range markup.GroupLists(c.Blocks) {
		if g.List {
			for i, item := range g.Blocks {
				b.listItem(item, g.Ordered, i+1)
			}
			continue
		}
		b.block(g.Blocks[0])
	}
	b.sectionProperties()
	e.log.Debug("Generating DOCX", zap.String("title", c.Title), zap.Int("blocks", len(c.Blocks)), zap.Int("links", len(b.links)))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pkg, err := archive.NewPackage("", c.Created, e.settings.FixZip)
	if err != nil {
		return nil, err
	}
	parts := []struct {
		name string
		doc  *etree.Document
	}{
		{"[Content_Types].xml", contentTypesDoc()},
		{"_rels/.rels", packageRelsDoc()},
		{"word/document.xml", doc},
		{"word/styles.xml", stylesDoc(e.settings.Styles)},
		{"word/_rels/document.xml.rels", documentRelsDoc(b.links)},
		{"docProps/core.xml", coreDoc(c)},
		{"docProps/app.xml", appDoc(c)},
	}
	for _, p := range parts {
		if err := pkg.WriteXML(p.name, p.doc); err != nil {
			return nil, fmt.Errorf("unable to write %s: %w", p.name, err)
		}
	}
	return pkg.Bytes()
}

func newDocument() (*etree.Document, *builder) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)

	root := doc.CreateElement("w:document")
	root.CreateAttr("xmlns:w", nsW)
	root.CreateAttr("xmlns:r", nsR)

	return doc, &builder{body: root.CreateElement("w:body")}
}

func (b *builder) paragraph(style string) *etree.Element {
	p := b.body.CreateElement("w:p")
	if style != "" {
		p.CreateElement("w:pPr").CreateElement("w:pStyle").CreateAttr("w:val", style)
	}
	return p
}

func (b *builder) block(blk markup.Block) {
	switch blk.Kind {
	case markup.BlockHeading:
		level := min(max(blk.Level, 1), maxHeadingLevel)
		addRun(b.paragraph("Heading"+strconv.Itoa(level)), blk.PlainText(), runProps{})
	case markup.BlockCode:
		p := b.paragraph("Code")
		r := p.CreateElement("w:r")
		for i, line := range blk.Lines {
			if i > 0 {
				r.CreateElement("w:br")
			}
			text(r, line)
		}
	case markup.BlockQuote:
		b.inlines(b.paragraph("Quote"), blk.Inlines())
	case markup.BlockRule:
		p := b.body.CreateElement("w:p")
		border(p.CreateElement("w:pPr").CreateElement("w:pBdr"), "w:bottom", 6, 1)
	default:
		b.inlines(b.paragraph(""), blk.Inlines())
	}
}

func (b *builder) listItem(blk markup.Block, ordered bool, n int) {
	style, marker := "ListBullet", "•\t"
	if ordered {
		style, marker = "ListNumber", strconv.Itoa(n)+".\t"
	}
	p := b.paragraph(style)
	ind := p.SelectElement("w:pPr").CreateElement("w:ind")
	ind.CreateAttr("w:left", "720")
	ind.CreateAttr("w:hanging", "360")
	addRun(p, marker, runProps{})
	b.inlines(p, blk.Inlines())
}

type runProps struct {
	bold, italic, strike, code bool
	style                      string
}

func (b *builder) inlines(p *etree.Element, runs []markup.Inline) {
	for _, r := range runs {
		switch r.Kind {
		case markup.InlineBold:
			addRun(p, r.Text, runProps{bold: true})
		case markup.InlineItalic:
			addRun(p, r.Text, runProps{italic: true})
		case markup.InlineBoldItalic:
			addRun(p, r.Text, runProps{bold: true, italic: true})
		case markup.InlineStrike:
			addRun(p, r.Text, runProps{strike: true})
		case markup.InlineCode:
			addRun(p, r.Text, runProps{code: true})
		case markup.InlineLink:
			id := "rId" + strconv.Itoa(len(b.links)+2)
			b.links = append(b.links, relationship{id: id, target: r.Href})
			h := p.CreateElement("w:hyperlink")
			h.CreateAttr("r:id", id)
			addRun(h, r.Text, runProps{style: "Hyperlink"})
		case markup.InlineImage:
			alt := r.Text
			if alt == "" {
				alt = r.Href
			}
			addRun(p, alt, runProps{italic: true})
		default:
			addRun(p, r.Text, runProps{})
		}
	}
}

func addRun(parent *etree.Element, s string, props runProps) {
	r := parent.CreateElement("w:r")
	if props != (runProps{}) {
		rpr := r.CreateElement("w:rPr")
		if props.style != "" {
			rpr.CreateElement("w:rStyle").CreateAttr("w:val", props.style)
		}
		if props.code {
			rpr.CreateElement("w:rStyle").CreateAttr("w:val", "InlineCode")
		}
		if props.bold {
			rpr.CreateElement("w:b")
		}
		if props.italic {
			rpr.CreateElement("w:i")
		}
		if props.strike {
			rpr.CreateElement("w:strike")
		}
	}
	// tabs in list markers are separate elements
	for i, part := range strings.Split(s, "\t") {
		if i > 0 {
			r.CreateElement("w:tab")
		}
		if part != "" {
			text(r, part)
		}
	}
}

func text(r *etree.Element, s string) {
	t := r.CreateElement("w:t")
	if strings.TrimSpace(s) != s || s == "" {
		t.CreateAttr("xml:space", "preserve")
	}
	t.SetText(s)
}

// sectionProperties sets A4 page with one inch margins.
func (b *builder) sectionProperties() {
	sect := b.body.CreateElement("w:sectPr")
	pgSz := sect.CreateElement("w:pgSz")
	pgSz.CreateAttr("w:w", "11906")
	pgSz.CreateAttr("w:h", "16838")
	pgMar := sect.CreateElement("w:pgMar")
	for _, side := range []string{"w:top", "w:right", "w:bottom", "w:left"} {
		pgMar.CreateAttr(side, "1440")
	}
	pgMar.CreateAttr("w:header", "720")
	pgMar.CreateAttr("w:footer", "720")
	pgMar.CreateAttr("w:gutter", "0")
}

func contentTypesDoc() *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)

	types := doc.CreateElement("Types")
	types.CreateAttr("xmlns", "http://schemas.openxmlformats.org/package/2006/content-types")
	for _, d := range [][2]string{
		{"rels", "application/vnd.openxmlformats-package.relationships+xml"},
		{"xml", "application/xml"},
	} {
		def := types.CreateElement("Default")
		def.CreateAttr("Extension", d[0])
		def.CreateAttr("ContentType", d[1])
	}
	for _, o := range [][2]string{
		{"/word/document.xml", "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"},
		{"/word/styles.xml", "application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"},
		{"/docProps/core.xml", "application/vnd.openxmlformats-package.core-properties+xml"},
		{"/docProps/app.xml", "application/vnd.openxmlformats-officedocument.extended-properties+xml"},
	} {
		over := types.CreateElement("Override")
		over.CreateAttr("PartName", o[0])
		over.CreateAttr("ContentType", o[1])
	}
	doc.Indent(2)
	return doc
}

func relsDoc(rels func(add func(id, typ, target string, external bool))) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)

	root := doc.CreateElement("Relationships")
	root.CreateAttr("xmlns", nsRels)
	rels(func(id, typ, target string, external bool) {
		rel := root.CreateElement("Relationship")
		rel.CreateAttr("Id", id)
		rel.CreateAttr("Type", typ)
		rel.CreateAttr("Target", target)
		if external {
			rel.CreateAttr("TargetMode", "External")
		}
	})
	doc.Indent(2)
	return doc
}

func packageRelsDoc() *etree.Document {
	return relsDoc(func(add func(id, typ, target string, external bool)) {
		add("rId1", relTypes+"officeDocument", "word/document.xml", false)
		add("rId2", "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties", "docProps/core.xml", false)
		add("rId3", relTypes+"extended-properties", "docProps/app.xml", false)
	})
}

func documentRelsDoc(links []relationship) *etree.Document {
	return relsDoc(func(add func(id, typ, target string, external bool)) {
		add("rId1", relTypes+"styles", "styles.xml", false)
		for _, l := range links {
			add(l.id, relTypes+"hyperlink", l.target, true)
		}
	})
}

func coreDoc(c *content.Content) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)

	root := doc.CreateElement("cp:coreProperties")
	root.CreateAttr("xmlns:cp", "http://schemas.openxmlformats.org/package/2006/metadata/core-properties")
	root.CreateAttr("xmlns:dc", "http://purl.org/dc/elements/1.1/")
	root.CreateAttr("xmlns:dcterms", "http://purl.org/dc/terms/")
	root.CreateAttr("xmlns:xsi", "http://www.w3.org/2001/XMLSchema-instance")

	root.CreateElement("dc:title").SetText(c.Title)
	if c.Author != "" {
		root.CreateElement("dc:creator").SetText(c.Author)
	}
	root.CreateElement("dc:language").SetText(c.Lang())
	for _, name := range []string{"dcterms:created", "dcterms:modified"} {
		el := root.CreateElement(name)
		el.CreateAttr("xsi:type", "dcterms:W3CDTF")
		el.SetText(c.Created.Format("2006-01-02T15:04:05Z"))
	}
	doc.Indent(2)
	return doc
}

func appDoc(c *content.Content) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)

	root := doc.CreateElement("Properties")
	root.CreateAttr("xmlns", "http://schemas.openxmlformats.org/officeDocument/2006/extended-properties")
	root.CreateElement("Application").SetText(misc.GetAppName() + "/" + misc.GetVersion())
	root.CreateElement("Words").SetText(strconv.Itoa(markup.WordCount(c.Text)))
	doc.Indent(2)
	return doc
}
