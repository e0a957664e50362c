package odt

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/beevik/etree"
	"go.uber.org/zap/zaptest"

	"storyexp/common"
	"storyexp/content"
)

func encode(t *testing.T, text string, opts content.Options) ([]byte, map[string]*etree.Document) {
	t.Helper()
	log := zaptest.NewLogger(t)

	opts.Created = time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	c, err := content.Prepare(context.Background(), text, common.FormatOdt, opts, log)
	if err != nil {
		t.Fatalf("Prepare() error: %v", err)
	}
	data, err := New(Settings{}, log).Encode(context.Background(), c)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("unable to open ODT: %v", err)
	}
	parts := make(map[string]*etree.Document)
	for _, f := range zr.File {
		if f.Name == "mimetype" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("unable to open %s: %v", f.Name, err)
		}
		b, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("unable to read %s: %v", f.Name, err)
		}
		if strings.Contains(string(b), "&amp;amp;") {
			t.Errorf("%s: double escaping", f.Name)
		}
		doc := etree.NewDocument()
		if err := doc.ReadFromBytes(b); err != nil {
			t.Fatalf("%s: invalid XML: %v", f.Name, err)
		}
		parts[f.Name] = doc
	}
	return data, parts
}

func body(t *testing.T, parts map[string]*etree.Document) *etree.Element {
	t.Helper()
	doc, ok := parts["content.xml"]
	if !ok {
		t.Fatal("content.xml is missing")
	}
	text := doc.FindElement("//office:body/office:text")
	if text == nil {
		t.Fatal("office:text is missing")
	}
	return text
}

func TestEncode_Package(t *testing.T) {
	data, parts := encode(t, "# Title\n\nText.", content.Options{})

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("unable to open ODT: %v", err)
	}
	first := zr.File[0]
	if first.Name != "mimetype" {
		t.Fatalf("first entry = %q, want mimetype", first.Name)
	}
	if first.Method != zip.Store {
		t.Errorf("mimetype method = %d, want Store", first.Method)
	}
	rc, err := first.Open()
	if err != nil {
		t.Fatalf("unable to open mimetype: %v", err)
	}
	b, _ := io.ReadAll(rc)
	rc.Close()
	if string(b) != mimetypeContent {
		t.Errorf("mimetype = %q", b)
	}

	for _, name := range []string{"META-INF/manifest.xml", "meta.xml", "styles.xml", "content.xml"} {
		if _, ok := parts[name]; !ok {
			t.Errorf("part %s is missing", name)
		}
	}
	entries := parts["META-INF/manifest.xml"].FindElements("//manifest:file-entry")
	if len(entries) != 4 {
		t.Errorf("manifest entries = %d, want 4", len(entries))
	}
}

func TestEncode_Meta(t *testing.T) {
	_, parts := encode(t, "One two three.\n\nFour five.", content.Options{
		Title:    "Tom & Jerry",
		Author:   "A. Writer",
		Language: "de",
	})
	meta := parts["meta.xml"].FindElement("//office:meta")
	if meta == nil {
		t.Fatal("office:meta is missing")
	}

	tests := []struct {
		path, want string
	}{
		{"dc:title", "Tom & Jerry"},
		{"dc:creator", "A. Writer"},
		{"meta:initial-creator", "A. Writer"},
		{"dc:language", "de"},
		{"meta:creation-date", "2024-03-01T12:30:00"},
	}
	for _, tt := range tests {
		el := meta.FindElement(tt.path)
		if el == nil {
			t.Errorf("%s is missing", tt.path)
			continue
		}
		if el.Text() != tt.want {
			t.Errorf("%s = %q, want %q", tt.path, el.Text(), tt.want)
		}
	}
	if g := meta.FindElement("meta:generator"); g == nil || !strings.HasPrefix(g.Text(), "storyexp/") {
		t.Errorf("unexpected generator")
	}
	stat := meta.FindElement("meta:document-statistic")
	if stat == nil {
		t.Fatal("meta:document-statistic is missing")
	}
	if got := stat.SelectAttrValue("meta:word-count", ""); got != "5" {
		t.Errorf("word-count = %q, want 5", got)
	}
	if got := stat.SelectAttrValue("meta:paragraph-count", ""); got != "2" {
		t.Errorf("paragraph-count = %q, want 2", got)
	}
}

func TestEncode_Example(t *testing.T) {
	_, parts := encode(t, "# Chapter One\n\nSome **bold** and *italic* text.\n\n# Chapter Two\n\nMore text.", content.Options{})
	text := body(t, parts)

	headings := text.SelectElements("text:h")
	if len(headings) != 2 {
		t.Fatalf("headings = %d, want 2", len(headings))
	}
	if got := headings[0].Text(); got != "Chapter One" {
		t.Errorf("heading = %q", got)
	}
	if got := headings[0].SelectAttrValue("text:style-name", ""); got != "Heading_20_1" {
		t.Errorf("heading style = %q", got)
	}

	p := text.SelectElements("text:p")[0]
	spans := p.SelectElements("text:span")
	if len(spans) != 2 {
		t.Fatalf("spans = %d, want 2", len(spans))
	}
	if spans[0].SelectAttrValue("text:style-name", "") != "Bold" || spans[0].Text() != "bold" {
		t.Errorf("unexpected bold span")
	}
	if spans[1].SelectAttrValue("text:style-name", "") != "Italic" || spans[1].Text() != "italic" {
		t.Errorf("unexpected italic span")
	}
}

func TestEncode_Blocks(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		check func(t *testing.T, text *etree.Element)
	}{
		{
			name: "heading clamp",
			text: "###### Deep",
			check: func(t *testing.T, text *etree.Element) {
				h := text.SelectElement("text:h")
				if got := h.SelectAttrValue("text:outline-level", ""); got != "4" {
					t.Errorf("outline-level = %q, want 4", got)
				}
				if got := h.SelectAttrValue("text:style-name", ""); got != "Heading_20_4" {
					t.Errorf("style = %q", got)
				}
			},
		},
		{
			name: "quote",
			text: "> Quoted *words*",
			check: func(t *testing.T, text *etree.Element) {
				p := text.SelectElement("text:p")
				if got := p.SelectAttrValue("text:style-name", ""); got != "Quotations" {
					t.Errorf("style = %q", got)
				}
			},
		},
		{
			name: "rule",
			text: "---",
			check: func(t *testing.T, text *etree.Element) {
				p := text.SelectElement("text:p")
				if got := p.SelectAttrValue("text:style-name", ""); got != "Horizontal_20_Line" {
					t.Errorf("style = %q", got)
				}
			},
		},
		{
			name: "code spacing",
			text: "```\nif x {\n    y()\n}\n```",
			check: func(t *testing.T, text *etree.Element) {
				p := text.SelectElement("text:p")
				if got := p.SelectAttrValue("text:style-name", ""); got != "Preformatted_20_Text" {
					t.Errorf("style = %q", got)
				}
				if n := len(p.SelectElements("text:line-break")); n != 2 {
					t.Errorf("line breaks = %d, want 2", n)
				}
				s := p.SelectElement("text:s")
				if s == nil {
					t.Fatal("text:s is missing")
				}
				if got := s.SelectAttrValue("text:c", ""); got != "4" {
					t.Errorf("text:c = %q, want 4", got)
				}
			},
		},
		{
			name: "lists",
			text: "- one\n- two\n1. first",
			check: func(t *testing.T, text *etree.Element) {
				lists := text.SelectElements("text:list")
				if len(lists) != 2 {
					t.Fatalf("lists = %d, want 2", len(lists))
				}
				if got := lists[0].SelectAttrValue("text:style-name", ""); got != listBullet {
					t.Errorf("first list style = %q", got)
				}
				if n := len(lists[0].SelectElements("text:list-item")); n != 2 {
					t.Errorf("first list items = %d, want 2", n)
				}
				if got := lists[1].SelectAttrValue("text:style-name", ""); got != listNumber {
					t.Errorf("second list style = %q", got)
				}
			},
		},
		{
			name: "link",
			text: "See [site](https://example.com/?a=1&b=2).",
			check: func(t *testing.T, text *etree.Element) {
				a := text.FindElement("text:p/text:a")
				if a == nil {
					t.Fatal("text:a is missing")
				}
				if got := a.SelectAttrValue("xlink:href", ""); got != "https://example.com/?a=1&b=2" {
					t.Errorf("href = %q", got)
				}
			},
		},
		{
			name: "strike and code",
			text: "~~gone~~ and `code`",
			check: func(t *testing.T, text *etree.Element) {
				spans := text.FindElements("text:p/text:span")
				if len(spans) != 2 {
					t.Fatalf("spans = %d, want 2", len(spans))
				}
				if got := spans[0].SelectAttrValue("text:style-name", ""); got != "Strikethrough" {
					t.Errorf("first span style = %q", got)
				}
				if got := spans[1].SelectAttrValue("text:style-name", ""); got != "Source_20_Text" {
					t.Errorf("second span style = %q", got)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, parts := encode(t, tt.text, content.Options{})
			tt.check(t, body(t, parts))
		})
	}
}

func TestEncode_Styles(t *testing.T) {
	_, parts := encode(t, "Text.", content.Options{})
	styles := parts["styles.xml"]
	for _, name := range []string{"Heading_20_1", "Heading_20_4", "Text_20_body", "Quotations", "Preformatted_20_Text", "Bold", "Italic"} {
		if styles.FindElement("//style:style[@style:name='"+name+"']") == nil {
			t.Errorf("style %s is missing", name)
		}
	}
	for _, name := range []string{listBullet, listNumber} {
		if styles.FindElement("//text:list-style[@style:name='"+name+"']") == nil {
			t.Errorf("list style %s is missing", name)
		}
	}
	h := styles.FindElement("//style:style[@style:name='Heading_20_1']")
	if got := h.SelectAttrValue("style:display-name", ""); got != "Heading 1" {
		t.Errorf("display name = %q", got)
	}
}

func TestWriteText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"a b", "a b"},
		{"a  b", "a <text:s/>b"},
		{"  x", `<text:s text:c="2"/>x`},
		{"x\ty", "x<text:tab/>y"},
		{"x   ", `x<text:s text:c="3"/>`},
	}
	for _, tt := range tests {
		doc := etree.NewDocument()
		p := doc.CreateElement("p")
		writeText(p, tt.in)
		var buf bytes.Buffer
		for _, c := range p.Child {
			switch v := c.(type) {
			case *etree.CharData:
				buf.WriteString(v.Data)
			case *etree.Element:
				d := etree.NewDocument()
				d.SetRoot(v.Copy())
				s, _ := d.WriteToString()
				buf.WriteString(s)
			}
		}
		if got := buf.String(); got != tt.want {
			t.Errorf("writeText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEncode_Canceled(t *testing.T) {
	log := zaptest.NewLogger(t)
	c, err := content.Prepare(context.Background(), "Text.", common.FormatOdt, content.Options{}, log)
	if err != nil {
		t.Fatalf("Prepare() error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(Settings{}, log).Encode(ctx, c); err == nil {
		t.Fatal("expected error for canceled context")
	}
}
