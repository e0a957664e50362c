// Package epub produces EPUB 3 books with NCX navigation for older readers.
package epub

import (
	"context"
	"fmt"
	"path"
	"strconv"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"storyexp/archive"
	"storyexp/content"
)

const (
	mimetypeContent = "application/epub+zip"
	oebpsDir        = "OEBPS"
	stylesheetName  = "styles.css"
)

type chapterData struct {
	ID       string
	Filename string
	Title    string
	Doc      *etree.Document
	Sections []sectionData // level-2 headings for nested navigation
}

type sectionData struct {
	ID    string
	Title string
}

// Settings controls EPUB generation.
type Settings struct {
	// rewrite archive without data descriptors
	FixZip bool
	// content of styles.css
	Stylesheet []byte
}

// Encoder produces EPUB container.
type Encoder struct {
	log      *zap.Logger
	settings Settings
}

// New creates EPUB encoder.
func New(settings Settings, log *zap.Logger) *Encoder {
	return &Encoder{log: log.Named("epub"), settings: settings}
}

// Encode renders every chapter of the document into its own XHTML file and
// packs them together with package document and navigation.
func (e *Encoder) Encode(ctx context.Context, c *content.Content) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	chapters := convertToXHTML(c)
	e.log.Debug("Generating EPUB", zap.String("title", c.Title), zap.Int("chapters", len(chapters)))

	pkg, err := archive.NewPackage(mimetypeContent, c.Created, e.settings.FixZip)
	if err != nil {
		return nil, err
	}

	if err := pkg.WriteXML("META-INF/container.xml", containerDoc()); err != nil {
		return nil, fmt.Errorf("unable to write container: %w", err)
	}
	if err := pkg.WriteXML(path.Join(oebpsDir, "content.opf"), opfDoc(c, chapters)); err != nil {
		return nil, fmt.Errorf("unable to write OPF: %w", err)
	}
	if err := pkg.WriteXML(path.Join(oebpsDir, "toc.ncx"), ncxDoc(c, chapters)); err != nil {
		return nil, fmt.Errorf("unable to write NCX: %w", err)
	}
	if err := pkg.WriteXML(path.Join(oebpsDir, "nav.xhtml"), navDoc(c, chapters)); err != nil {
		return nil, fmt.Errorf("unable to write NAV: %w", err)
	}
	if err := pkg.WriteData(path.Join(oebpsDir, stylesheetName), e.settings.Stylesheet); err != nil {
		return nil, fmt.Errorf("unable to write stylesheet: %w", err)
	}
	for _, chapter := range chapters {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := pkg.WriteXML(path.Join(oebpsDir, chapter.Filename), chapter.Doc); err != nil {
			return nil, fmt.Errorf("unable to write chapter %s: %w", chapter.ID, err)
		}
	}
	return pkg.Bytes()
}

func containerDoc() *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	container := doc.CreateElement("container")
	container.CreateAttr("version", "1.0")
	container.CreateAttr("xmlns", "urn:oasis:names:tc:opendocument:xmlns:container")

	rootfiles := container.CreateElement("rootfiles")
	rootfile := rootfiles.CreateElement("rootfile")
	rootfile.CreateAttr("full-path", path.Join(oebpsDir, "content.opf"))
	rootfile.CreateAttr("media-type", "application/oebps-package+xml")

	doc.Indent(2)
	return doc
}

func opfDoc(c *content.Content, chapters []chapterData) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	pkg := doc.CreateElement("package")
	pkg.CreateAttr("xmlns", "http://www.idpf.org/2007/opf")
	pkg.CreateAttr("version", "3.0")
	pkg.CreateAttr("unique-identifier", "BookId")
	pkg.CreateAttr("xml:lang", c.Lang())

	metadata := pkg.CreateElement("metadata")
	metadata.CreateAttr("xmlns:dc", "http://purl.org/dc/elements/1.1/")
	metadata.CreateAttr("xmlns:opf", "http://www.idpf.org/2007/opf")

	dcIdentifier := metadata.CreateElement("dc:identifier")
	dcIdentifier.CreateAttr("id", "BookId")
	dcIdentifier.SetText(c.Identifier)

	metadata.CreateElement("dc:title").SetText(c.Title)
	metadata.CreateElement("dc:language").SetText(c.Lang())
	if c.Author != "" {
		creator := metadata.CreateElement("dc:creator")
		creator.CreateAttr("id", "creator")
		creator.SetText(c.Author)
		role := metadata.CreateElement("meta")
		role.CreateAttr("refines", "#creator")
		role.CreateAttr("property", "role")
		role.CreateAttr("scheme", "marc:relators")
		role.SetText("aut")
	}
	metadata.CreateElement("dc:date").SetText(c.Created.Format("2006-01-02"))

	modified := metadata.CreateElement("meta")
	modified.CreateAttr("property", "dcterms:modified")
	modified.SetText(c.Created.Format("2006-01-02T15:04:05Z"))

	manifest := pkg.CreateElement("manifest")
	addItem := func(id, href, mediaType, properties string) {
		item := manifest.CreateElement("item")
		item.CreateAttr("id", id)
		item.CreateAttr("href", href)
		item.CreateAttr("media-type", mediaType)
		if properties != "" {
			item.CreateAttr("properties", properties)
		}
	}
	addItem("nav", "nav.xhtml", "application/xhtml+xml", "nav")
	addItem("ncx", "toc.ncx", "application/x-dtbncx+xml", "")
	addItem("stylesheet", stylesheetName, "text/css", "")
	for _, chapter := range chapters {
		addItem(chapter.ID, chapter.Filename, "application/xhtml+xml", "")
	}

	spine := pkg.CreateElement("spine")
	spine.CreateAttr("toc", "ncx")
	spine.CreateElement("itemref").CreateAttr("idref", "nav")
	for _, chapter := range chapters {
		spine.CreateElement("itemref").CreateAttr("idref", chapter.ID)
	}

	doc.Indent(2)
	return doc
}

func ncxDoc(c *content.Content, chapters []chapterData) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	ncx := doc.CreateElement("ncx")
	ncx.CreateAttr("xmlns", "http://www.daisy.org/z3986/2005/ncx/")
	ncx.CreateAttr("version", "2005-1")
	ncx.CreateAttr("xml:lang", c.Lang())

	depth := 1
	for _, chapter := range chapters {
		if len(chapter.Sections) > 0 {
			depth = 2
			break
		}
	}

	head := ncx.CreateElement("head")
	for _, m := range [][2]string{
		{"dtb:uid", c.Identifier},
		{"dtb:depth", strconv.Itoa(depth)},
		{"dtb:totalPageCount", "0"},
		{"dtb:maxPageNumber", "0"},
	} {
		meta := head.CreateElement("meta")
		meta.CreateAttr("name", m[0])
		meta.CreateAttr("content", m[1])
	}

	ncx.CreateElement("docTitle").CreateElement("text").SetText(c.Title)
	if c.Author != "" {
		ncx.CreateElement("docAuthor").CreateElement("text").SetText(c.Author)
	}

	navMap := ncx.CreateElement("navMap")
	playOrder := 0
	navPoint := func(parent *etree.Element, id, title, src string) *etree.Element {
		playOrder++
		np := parent.CreateElement("navPoint")
		np.CreateAttr("id", "navpoint-"+id)
		np.CreateAttr("playOrder", strconv.Itoa(playOrder))
		np.CreateElement("navLabel").CreateElement("text").SetText(title)
		np.CreateElement("content").CreateAttr("src", src)
		return np
	}
	for _, chapter := range chapters {
		np := navPoint(navMap, chapter.ID, chapter.Title, chapter.Filename)
		for _, s := range chapter.Sections {
			navPoint(np, s.ID, s.Title, chapter.Filename+"#"+s.ID)
		}
	}

	doc.Indent(2)
	return doc
}

func navDoc(c *content.Content, chapters []chapterData) *etree.Document {
	doc, body := createXHTMLDocument(c, "Table of Contents")

	nav := body.CreateElement("nav")
	nav.CreateAttr("epub:type", "toc")
	nav.CreateAttr("id", "toc")
	nav.CreateElement("h1").SetText("Table of Contents")

	ol := nav.CreateElement("ol")
	for _, chapter := range chapters {
		li := ol.CreateElement("li")
		a := li.CreateElement("a")
		a.CreateAttr("href", chapter.Filename)
		a.SetText(chapter.Title)

		if len(chapter.Sections) == 0 {
			continue
		}
		nested := li.CreateElement("ol")
		for _, s := range chapter.Sections {
			a := nested.CreateElement("li").CreateElement("a")
			a.CreateAttr("href", chapter.Filename+"#"+s.ID)
			a.SetText(s.Title)
		}
	}

	doc.Indent(2)
	return doc
}
