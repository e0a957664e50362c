// Package fdx produces Final Draft screenplay documents.
package fdx

import (
	"bytes"
	"context"
	"fmt"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"storyexp/content"
	"storyexp/screenplay"
)

// Encoder produces FDX document.
type Encoder struct {
	log *zap.Logger
}

// New creates FDX encoder.
func New(log *zap.Logger) *Encoder {
	return &Encoder{log: log.Named("fdx")}
}

// Encode classifies document text into screenplay elements and writes one
// paragraph per element.
func (e *Encoder) Encode(ctx context.Context, c *content.Content) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	elements := screenplay.Classify(c.Text)
	e.log.Debug("Generating FDX", zap.String("title", c.Title), zap.Int("elements", len(elements)))

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="no"`)

	root := doc.CreateElement("FinalDraft")
	root.CreateAttr("DocumentType", "Script")
	root.CreateAttr("Template", "No")
	root.CreateAttr("Version", "5")

	if c.ExplicitTitle || c.Author != "" {
		titlePage(root, c)
	}

	body := root.CreateElement("Content")
	for _, el := range elements {
		paragraph(body, el.Kind.String(), el.Text)
	}

	doc.Indent(2)

	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("unable to serialize FDX: %w", err)
	}
	return buf.Bytes(), nil
}

func paragraph(parent *etree.Element, kind, text string) *etree.Element {
	p := parent.CreateElement("Paragraph")
	p.CreateAttr("Type", kind)
	p.CreateElement("Text").SetText(text)
	return p
}

func titlePage(root *etree.Element, c *content.Content) {
	page := root.CreateElement("TitlePage").CreateElement("Content")
	centered := func(text string) {
		paragraph(page, "Title Page", text).CreateAttr("Alignment", "Center")
	}
	if c.ExplicitTitle {
		centered(c.Title)
	}
	if c.Author != "" {
		centered("")
		centered("Written by")
		centered(c.Author)
	}
}
