package markup

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

const xhtmlNS = "http://www.w3.org/1999/xhtml"

// RenderOptions controls Render output.
type RenderOptions struct {
	// produce complete XHTML document rather than a fragment
	FullDocument bool
	// embed Stylesheet into document head, ignored for fragments
	IncludeStyles bool
	Title         string
	Language      string
	Stylesheet    string
}

// RenderTo appends XHTML elements for blocks to parent. Text is set on the
// element tree unescaped and escaped exactly once on serialization.
func RenderTo(parent *etree.Element, blocks []Block) {
	for _, g := range GroupLists(blocks) {
		if g.List {
			tag := "ul"
			if g.Ordered {
				tag = "ol"
			}
			list := parent.CreateElement(tag)
			for _, item := range g.Blocks {
				writeInlines(list.CreateElement("li"), item.Inlines())
			}
			continue
		}
		renderBlock(parent, g.Blocks[0])
	}
}

func renderBlock(parent *etree.Element, b Block) {
	switch b.Kind {
	case BlockHeading:
		parent.CreateElement(fmt.Sprintf("h%d", min(max(b.Level, 1), 6))).SetText(b.PlainText())
	case BlockQuote:
		writeInlines(parent.CreateElement("blockquote").CreateElement("p"), b.Inlines())
	case BlockRule:
		parent.CreateElement("hr")
	case BlockCode:
		code := parent.CreateElement("pre").CreateElement("code")
		if b.Lang != "" {
			code.CreateAttr("class", "language-"+b.Lang)
		}
		code.SetText(joinLines(b.Lines))
	case BlockListItem:
		// lone item outside of group, should not happen
		writeInlines(parent.CreateElement("p"), b.Inlines())
	default:
		writeInlines(parent.CreateElement("p"), b.Inlines())
	}
}

func writeInlines(parent *etree.Element, runs []Inline) {
	for _, r := range runs {
		switch r.Kind {
		case InlineText:
			parent.CreateText(r.Text)
		case InlineBold:
			parent.CreateElement("strong").SetText(r.Text)
		case InlineItalic:
			parent.CreateElement("em").SetText(r.Text)
		case InlineBoldItalic:
			parent.CreateElement("strong").CreateElement("em").SetText(r.Text)
		case InlineStrike:
			parent.CreateElement("del").SetText(r.Text)
		case InlineCode:
			parent.CreateElement("code").SetText(r.Text)
		case InlineLink:
			a := parent.CreateElement("a")
			a.CreateAttr("href", r.Href)
			a.SetText(r.Text)
		case InlineImage:
			img := parent.CreateElement("img")
			img.CreateAttr("src", r.Href)
			img.CreateAttr("alt", r.Text)
		}
	}
}

// NewDocument creates empty XHTML document and returns it along with its
// body element.
func NewDocument(opts RenderOptions) (*etree.Document, *etree.Element) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	doc.CreateDirective("DOCTYPE html")

	html := doc.CreateElement("html")
	html.CreateAttr("xmlns", xhtmlNS)
	if opts.Language != "" {
		html.CreateAttr("lang", opts.Language)
		html.CreateAttr("xml:lang", opts.Language)
	}

	head := html.CreateElement("head")
	meta := head.CreateElement("meta")
	meta.CreateAttr("http-equiv", "Content-Type")
	meta.CreateAttr("content", "text/html; charset=utf-8")
	head.CreateElement("title").SetText(opts.Title)
	if opts.IncludeStyles && opts.Stylesheet != "" {
		style := head.CreateElement("style")
		style.CreateAttr("type", "text/css")
		style.SetText(opts.Stylesheet)
	}
	return doc, html.CreateElement("body")
}

// Render produces XHTML fragment (one element per line) or complete document
// for blocks.
func Render(blocks []Block, opts RenderOptions) (string, error) {
	if opts.FullDocument {
		doc, body := NewDocument(opts)
		RenderTo(body, blocks)
		// HTML parsers do not understand self-closing non-void elements
		doc.WriteSettings.CanonicalEndTags = true
		out, err := doc.WriteToString()
		if err != nil {
			return "", fmt.Errorf("unable to serialize document: %w", err)
		}
		return out, nil
	}

	holder := etree.NewElement("div")
	RenderTo(holder, blocks)

	var parts []string
	for _, child := range holder.ChildElements() {
		doc := etree.NewDocument()
		doc.SetRoot(child)
		out, err := doc.WriteToString()
		if err != nil {
			return "", fmt.Errorf("unable to serialize %s: %w", child.Tag, err)
		}
		parts = append(parts, out)
	}
	return strings.Join(parts, "\n"), nil
}
