package epub

import (
	"fmt"

	"github.com/beevik/etree"

	"storyexp/content"
	"storyexp/markup"
)

// convertToXHTML renders chapters, numbering files from 1. Level-2
// headings get ids so navigation can point at them.
func convertToXHTML(c *content.Content) []chapterData {
	chapters := c.Chapters()
	out := make([]chapterData, 0, len(chapters))

	for i, ch := range chapters {
		id := fmt.Sprintf("chapter%d", i+1)
		doc, body := createXHTMLDocument(c, ch.Title)

		section := body.CreateElement("section")
		section.CreateAttr("epub:type", "chapter")
		section.CreateAttr("id", id)
		markup.RenderTo(section, ch.Blocks)

		data := chapterData{
			ID:       id,
			Filename: id + ".xhtml",
			Title:    ch.Title,
			Doc:      doc,
		}
		for n, h2 := range section.SelectElements("h2") {
			sid := fmt.Sprintf("%s-s%d", id, n+1)
			h2.CreateAttr("id", sid)
			data.Sections = append(data.Sections, sectionData{ID: sid, Title: h2.Text()})
		}
		out = append(out, data)
	}
	return out
}

// createXHTMLDocument returns XHTML document skeleton linked to book
// stylesheet and its body element.
func createXHTMLDocument(c *content.Content, title string) (*etree.Document, *etree.Element) {
	doc := etree.NewDocument()
	doc.WriteSettings.CanonicalEndTags = true
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	doc.CreateDirective("DOCTYPE html")

	html := doc.CreateElement("html")
	html.CreateAttr("xmlns", "http://www.w3.org/1999/xhtml")
	html.CreateAttr("xmlns:epub", "http://www.idpf.org/2007/ops")
	html.CreateAttr("lang", c.Lang())
	html.CreateAttr("xml:lang", c.Lang())

	head := html.CreateElement("head")

	meta := head.CreateElement("meta")
	meta.CreateAttr("charset", "utf-8")

	head.CreateElement("title").SetText(title)

	link := head.CreateElement("link")
	link.CreateAttr("rel", "stylesheet")
	link.CreateAttr("type", "text/css")
	link.CreateAttr("href", stylesheetName)

	return doc, html.CreateElement("body")
}
