// Package odt produces OpenDocument text documents.
package odt

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
	mimetypeContent = "application/vnd.oasis.opendocument.text"
	maxHeadingLevel = 4
)

var namespaces = [][2]string{
	{"office", "urn:oasis:names:tc:opendocument:xmlns:office:1.0"},
	{"style", "urn:oasis:names:tc:opendocument:xmlns:style:1.0"},
	{"text", "urn:oasis:names:tc:opendocument:xmlns:text:1.0"},
	{"fo", "urn:oasis:names:tc:opendocument:xmlns:xsl-fo-compatible:1.0"},
	{"svg", "urn:oasis:names:tc:opendocument:xmlns:svg-compatible:1.0"},
	{"xlink", "http://www.w3.org/1999/xlink"},
	{"dc", "http://purl.org/dc/elements/1.1/"},
	{"meta", "urn:oasis:names:tc:opendocument:xmlns:meta:1.0"},
}

func declareNamespaces(root *etree.Element) {
	for _, ns := range namespaces {
		root.CreateAttr("xmlns:"+ns[0], ns[1])
	}
}

// Settings controls ODT generation.
type Settings struct {
	FixZip bool
	// nil selects DefaultStyles
	Styles []Style
}

// Encoder produces ODT package.
type Encoder struct {
	log      *zap.Logger
	settings Settings
}

// New creates ODT encoder.
func New(settings Settings, log *zap.Logger) *Encoder {
	if settings.Styles == nil {
		settings.Styles = DefaultStyles()
	}
	return &Encoder{log: log.Named("odt"), settings: settings}
}

// Encode translates document blocks into ODF text body.
func (e *Encoder) Encode(ctx context.Context, c *content.Content) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	body, paragraphs := contentDoc(c.Blocks)
	e.log.Debug("Generating ODT", zap.String("title", c.Title), zap.Int("paragraphs", paragraphs))

	pkg, err := archive.NewPackage(mimetypeContent, c.Created, e.settings.FixZip)
	if err != nil {
		return nil, err
	}
	parts := []struct {
		name string
		doc  *etree.Document
	}{
		{"META-INF/manifest.xml", manifestDoc()},
		{"meta.xml", metaDoc(c, paragraphs)},
		{"styles.xml", stylesDoc(e.settings.Styles)},
		{"content.xml", body},
	}
	for _, p := range parts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := pkg.WriteXML(p.name, p.doc); err != nil {
			return nil, fmt.Errorf("unable to write %s: %w", p.name, err)
		}
	}
	return pkg.Bytes()
}

func manifestDoc() *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("manifest:manifest")
	root.CreateAttr("xmlns:manifest", "urn:oasis:names:tc:opendocument:xmlns:manifest:1.0")
	root.CreateAttr("manifest:version", "1.2")
	for _, e := range [][2]string{
		{"/", mimetypeContent},
		{"content.xml", "text/xml"},
		{"styles.xml", "text/xml"},
		{"meta.xml", "text/xml"},
	} {
		entry := root.CreateElement("manifest:file-entry")
		entry.CreateAttr("manifest:full-path", e[0])
		if e[0] == "/" {
			entry.CreateAttr("manifest:version", "1.2")
		}
		entry.CreateAttr("manifest:media-type", e[1])
	}
	doc.Indent(2)
	return doc
}

func metaDoc(c *content.Content, paragraphs int) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("office:document-meta")
	declareNamespaces(root)
	root.CreateAttr("office:version", "1.2")

	meta := root.CreateElement("office:meta")
	meta.CreateElement("meta:generator").SetText(misc.GetAppName() + "/" + misc.GetVersion())
	meta.CreateElement("dc:title").SetText(c.Title)
	if c.Author != "" {
		meta.CreateElement("meta:initial-creator").SetText(c.Author)
		meta.CreateElement("dc:creator").SetText(c.Author)
	}
	meta.CreateElement("dc:language").SetText(c.Lang())
	created := c.Created.Format("2006-01-02T15:04:05")
	meta.CreateElement("meta:creation-date").SetText(created)
	meta.CreateElement("dc:date").SetText(created)

	stat := meta.CreateElement("meta:document-statistic")
	stat.CreateAttr("meta:paragraph-count", strconv.Itoa(paragraphs))
	stat.CreateAttr("meta:word-count", strconv.Itoa(markup.WordCount(c.Text)))

	doc.Indent(2)
	return doc
}

// contentDoc builds content.xml and returns number of paragraphs written.
func contentDoc(blocks []markup.Block) (*etree.Document, int) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("office:document-content")
	declareNamespaces(root)
	root.CreateAttr("office:version", "1.2")
	root.CreateElement("office:automatic-styles")
	text := root.CreateElement("office:body").CreateElement("office:text")

	var count int
	for _, g := range markup.GroupLists(blocks) {
		if g.List {
			style := listBullet
			if g.Ordered {
				style = listNumber
			}
			list := text.CreateElement("text:list")
			list.CreateAttr("text:style-name", style)
			for _, item := range g.Blocks {
				p := list.CreateElement("text:list-item").CreateElement("text:p")
				p.CreateAttr("text:style-name", "List_20_Contents")
				writeInlines(p, item.Inlines())
				count++
			}
			continue
		}
		writeBlock(text, g.Blocks[0])
		count++
	}
	return doc, count
}

func writeBlock(parent *etree.Element, b markup.Block) {
	switch b.Kind {
	case markup.BlockHeading:
		level := min(max(b.Level, 1), maxHeadingLevel)
		h := parent.CreateElement("text:h")
		h.CreateAttr("text:style-name", "Heading_20_"+strconv.Itoa(level))
		h.CreateAttr("text:outline-level", strconv.Itoa(level))
		writeText(h, b.PlainText())
	case markup.BlockQuote:
		writeInlines(paragraph(parent, "Quotations"), b.Inlines())
	case markup.BlockCode:
		p := paragraph(parent, "Preformatted_20_Text")
		for i, line := range b.Lines {
			if i > 0 {
				p.CreateElement("text:line-break")
			}
			writeText(p, line)
		}
	case markup.BlockRule:
		paragraph(parent, "Horizontal_20_Line")
	default:
		writeInlines(paragraph(parent, "Text_20_body"), b.Inlines())
	}
}

func paragraph(parent *etree.Element, style string) *etree.Element {
	p := parent.CreateElement("text:p")
	p.CreateAttr("text:style-name", style)
	return p
}

func writeInlines(p *etree.Element, runs []markup.Inline) {
	span := func(style, s string) {
		sp := p.CreateElement("text:span")
		sp.CreateAttr("text:style-name", style)
		writeText(sp, s)
	}
	for _, r := range runs {
		switch r.Kind {
		case markup.InlineBold:
			span("Bold", r.Text)
		case markup.InlineItalic:
			span("Italic", r.Text)
		case markup.InlineBoldItalic:
			span("Bold_20_Italic", r.Text)
		case markup.InlineStrike:
			span("Strikethrough", r.Text)
		case markup.InlineCode:
			span("Source_20_Text", r.Text)
		case markup.InlineLink:
			a := p.CreateElement("text:a")
			a.CreateAttr("xlink:type", "simple")
			a.CreateAttr("xlink:href", r.Href)
			sp := a.CreateElement("text:span")
			sp.CreateAttr("text:style-name", "Internet_20_link")
			writeText(sp, r.Text)
		case markup.InlineImage:
			alt := r.Text
			if alt == "" {
				alt = r.Href
			}
			span("Italic", alt)
		default:
			writeText(p, r.Text)
		}
	}
}

// writeText appends text keeping spacing: ODF collapses runs of white
// space, so repeated and leading spaces become text:s and tabs text:tab.
func writeText(parent *etree.Element, s string) {
	var (
		buf    strings.Builder
		spaces int
		start  = true
	)
	flushSpaces := func() {
		if spaces == 0 {
			return
		}
		n := spaces
		if !start {
			// first space of a run stays literal
			buf.WriteByte(' ')
			n--
		}
		if n > 0 {
			if buf.Len() > 0 {
				parent.CreateText(buf.String())
				buf.Reset()
			}
			sp := parent.CreateElement("text:s")
			if n > 1 {
				sp.CreateAttr("text:c", strconv.Itoa(n))
			}
		}
		spaces = 0
	}

	for _, r := range s {
		switch r {
		case ' ':
			spaces++
			continue
		case '\t':
			flushSpaces()
			if buf.Len() > 0 {
				parent.CreateText(buf.String())
				buf.Reset()
			}
			parent.CreateElement("text:tab")
		default:
			flushSpaces()
			buf.WriteRune(r)
		}
		start = false
	}
	// trailing spaces are kept as well
	if spaces > 0 {
		n := spaces
		spaces = 0
		if buf.Len() > 0 {
			parent.CreateText(buf.String())
			buf.Reset()
		}
		sp := parent.CreateElement("text:s")
		if n > 1 {
			sp.CreateAttr("text:c", strconv.Itoa(n))
		}
	}
	if buf.Len() > 0 {
		parent.CreateText(buf.String())
	}
}
