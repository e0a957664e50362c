package convert

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/beevik/etree"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"storyexp/common"
	"storyexp/convert/pdf"
)

type progressEvent struct {
	stage   common.Stage
	percent int
	message string
}

type progressRecorder struct {
	events []progressEvent
}

func (p *progressRecorder) record(stage common.Stage, percent int, message string) {
	p.events = append(p.events, progressEvent{stage, percent, message})
}

type whiteSurface struct{}

func (whiteSurface) Rasterize(_ context.Context, _ string, width int) (image.Image, error) {
	img := image.NewRGBA(image.Rect(0, 0, width, 100))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return img, nil
}

func (whiteSurface) Close() error { return nil }

func newTestExporter(t *testing.T, settings Settings) *Exporter {
	t.Helper()
	if settings.Surface == nil {
		settings.Surface = func(float64, []byte, *zap.Logger) (pdf.Surface, error) {
			return whiteSurface{}, nil
		}
	}
	return NewExporter(settings, zaptest.NewLogger(t))
}

const exampleText = "# Chapter One\n\nSome **bold** and *italic* text.\n\n# Chapter Two\n\nMore text."

func TestExport_AllFormats(t *testing.T) {
	exp := newTestExporter(t, Settings{})

	for _, name := range common.FormatNames() {
		t.Run(name, func(t *testing.T) {
			format := common.MustParseFormat(name)
			var rec progressRecorder

			res := exp.Export(context.Background(), Request{Text: exampleText, Format: format}, rec.record)
			if res.Err != nil {
				t.Fatalf("Export() error: %v", res.Err)
			}
			if len(res.Data) == 0 {
				t.Error("no data produced")
			}
			if want := "chapter-one" + format.Ext(); res.Filename != want {
				t.Errorf("filename = %q, want %q", res.Filename, want)
			}

			want := []progressEvent{
				{common.StagePreparing, 10, ""},
				{common.StageConverting, 30, ""},
				{common.StageComplete, 100, ""},
			}
			if len(rec.events) != len(want) {
				t.Fatalf("progress = %+v, want %+v", rec.events, want)
			}
			for i := range want {
				if rec.events[i] != want[i] {
					t.Errorf("progress[%d] = %+v, want %+v", i, rec.events[i], want[i])
				}
			}
		})
	}
}

func TestExport_PrivateUseText(t *testing.T) {
	exp := newTestExporter(t, Settings{})

	for _, name := range common.FormatNames() {
		t.Run(name, func(t *testing.T) {
			res := exp.Export(context.Background(), Request{
				Text:   "Some text \uE0000\uE001 here and `code`\n\nINT. HOUSE - DAY",
				Format: common.MustParseFormat(name),
			}, nil)
			if res.Err != nil {
				t.Fatalf("Export() error: %v", res.Err)
			}
			if len(res.Data) == 0 {
				t.Error("no data produced")
			}
		})
	}
}

func TestExport_ControlCharacters(t *testing.T) {
	exp := newTestExporter(t, Settings{})
	text := "# Bell\x07 Chapter\n\nVertical\x0btab and `co\x01de`\n\n```\nraw\x0c\n```\n\nJOHN\nHi\x1b there."

	for _, format := range []common.Format{common.FormatDocx, common.FormatOdt, common.FormatEpub, common.FormatFdx} {
		t.Run(format.String(), func(t *testing.T) {
			res := exp.Export(context.Background(), Request{Text: text, Format: format, Options: Options{Author: "Jo\x02"}}, nil)
			if res.Err != nil {
				t.Fatalf("Export() error: %v", res.Err)
			}
			parts := map[string][]byte{"document": res.Data}
			if format != common.FormatFdx {
				parts = unzipXMLParts(t, res.Data)
			}
			for name, data := range parts {
				doc := etree.NewDocument()
				if err := doc.ReadFromBytes(data); err != nil {
					t.Errorf("part %s is not well formed: %v", name, err)
				}
			}
		})
	}
}

func unzipXMLParts(t *testing.T, data []byte) map[string][]byte {
	t.Helper()
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("not an archive: %v", err)
	}
	parts := make(map[string][]byte)
	for _, f := range r.File {
		if !strings.HasSuffix(f.Name, ".xml") && !strings.HasSuffix(f.Name, ".xhtml") &&
			!strings.HasSuffix(f.Name, ".opf") && !strings.HasSuffix(f.Name, ".ncx") && !strings.HasSuffix(f.Name, ".rels") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		b, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read %s: %v", f.Name, err)
		}
		parts[f.Name] = b
	}
	if len(parts) == 0 {
		t.Fatal("no XML parts found")
	}
	return parts
}

func TestExport_Validation(t *testing.T) {
	exp := newTestExporter(t, Settings{})

	t.Run("empty document", func(t *testing.T) {
		for _, text := range []string{"", "   ", "\n\t \r\n"} {
			for _, name := range common.FormatNames() {
				var rec progressRecorder
				res := exp.Export(context.Background(), Request{Text: text, Format: common.MustParseFormat(name)}, rec.record)
				if !errors.Is(res.Err, ErrEmptyDocument) {
					t.Errorf("%s %q: error = %v, want %v", name, text, res.Err, ErrEmptyDocument)
				}
				if res.Err != nil && res.Err.Error() != "document is empty" {
					t.Errorf("message = %q", res.Err.Error())
				}
				if res.Data != nil || res.Filename != "" {
					t.Error("partial result returned")
				}
				if len(rec.events) != 0 {
					t.Errorf("progress emitted for validation error: %+v", rec.events)
				}
			}
		}
	})

	t.Run("unsupported format", func(t *testing.T) {
		for _, text := range []string{"Some text.", ""} {
			var rec progressRecorder
			res := exp.ExportString(context.Background(), text, "rtf", Options{}, rec.record)
			if !errors.Is(res.Err, ErrUnsupportedFormat) {
				t.Fatalf("error = %v, want %v", res.Err, ErrUnsupportedFormat)
			}
			if got := res.Err.Error(); got != "unsupported export format: rtf" {
				t.Errorf("message = %q", got)
			}
			if len(rec.events) != 0 {
				t.Errorf("progress emitted for validation error: %+v", rec.events)
			}
		}

		res := exp.Export(context.Background(), Request{Text: "Text.", Format: common.Format(42)}, nil)
		if !errors.Is(res.Err, ErrUnsupportedFormat) || !strings.Contains(res.Err.Error(), "42") {
			t.Errorf("error = %v", res.Err)
		}
	})
}

func TestExportString(t *testing.T) {
	exp := newTestExporter(t, Settings{})
	res := exp.ExportString(context.Background(), "# My Title\n\nText.", "DOCX", Options{}, nil)
	if res.Err != nil {
		t.Fatalf("ExportString() error: %v", res.Err)
	}
	if res.Filename != "my-title.docx" {
		t.Errorf("filename = %q", res.Filename)
	}
}

func TestExport_Filename(t *testing.T) {
	tests := []struct {
		name     string
		settings Settings
		text     string
		format   common.Format
		opts     Options
		want     string
	}{
		{"heading", Settings{}, "# My Title\n\nText.", common.FormatPdf, Options{}, "my-title.pdf"},
		{"document fallback", Settings{}, "Just text.", common.FormatOdt, Options{}, "document.odt"},
		{"screenplay fallback", Settings{}, "INT. HOUSE - DAY", common.FormatFdx, Options{}, "screenplay.fdx"},
		{"screenplay heading", Settings{}, "# My Title\n\nJOHN\nHi.", common.FormatFountain, Options{}, "my-title.fountain"},
		{"explicit title", Settings{}, "# My Title", common.FormatEpub, Options{Title: "Other Title"}, "other-title.epub"},
		{"explicit filename", Settings{}, "# My Title", common.FormatEpub, Options{Filename: "Draft 2"}, "draft-2.epub"},
		{"explicit filename with extension", Settings{}, "# My Title", common.FormatEpub, Options{Filename: "draft.EPUB"}, "draft.epub"},
		{"unsafe characters", Settings{}, `# What? A "story": part 1/2`, common.FormatDocx, Options{}, "what-a-story-part-12.docx"},
		{"transliterate", Settings{Transliterate: true}, "# Тест & Co", common.FormatDocx, Options{}, "test-and-co.docx"},
		{"unicode kept", Settings{}, "# Тест Один", common.FormatDocx, Options{}, "тест-один.docx"},
		{"template", Settings{OutputNameTemplate: "{{ .Author }} - {{ .Title }}"}, "# Heist", common.FormatFdx, Options{Author: "Jo Doe"}, "jo-doe---heist.fdx"},
		{"template subdirs", Settings{OutputNameTemplate: "{{ .Author | upper }}/{{ .Title }}", Transliterate: true}, "# Heist", common.FormatFdx, Options{Author: "Jo"}, "jo/heist.fdx"},
		{"template source", Settings{OutputNameTemplate: "{{ .SourceFile }}"}, "# Heist", common.FormatPdf, Options{SourceFile: "dir/draft.md"}, "draft.pdf"},
		{"template broken", Settings{OutputNameTemplate: "{{ .Missing }"}, "# Heist", common.FormatPdf, Options{}, "heist.pdf"},
		{"template empty", Settings{OutputNameTemplate: "{{ .Author }}"}, "# Heist", common.FormatPdf, Options{}, "heist.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := newTestExporter(t, tt.settings).Export(context.Background(), Request{Text: tt.text, Format: tt.format, Options: tt.opts}, nil)
			if res.Err != nil {
				t.Fatalf("Export() error: %v", res.Err)
			}
			if res.Filename != tt.want {
				t.Errorf("filename = %q, want %q", res.Filename, tt.want)
			}
		})
	}
}

type failingSurface struct {
	err   error
	panic any
}

func (f failingSurface) Rasterize(context.Context, string, int) (image.Image, error) {
	if f.panic != nil {
		panic(f.panic)
	}
	return nil, f.err
}

func (failingSurface) Close() error { return nil }

func TestExport_EncoderFailures(t *testing.T) {
	tests := []struct {
		name    string
		surface failingSurface
		want    string
	}{
		{"error", failingSurface{err: errors.New("out of paper")}, "unable to rasterize document: out of paper"},
		{"panic with error", failingSurface{panic: errors.New("boom")}, "boom"},
		{"panic with string", failingSurface{panic: "kaboom"}, "kaboom"},
		{"panic without message", failingSurface{panic: 42}, "Failed to export to PDF format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exp := newTestExporter(t, Settings{
				Surface: func(float64, []byte, *zap.Logger) (pdf.Surface, error) { return tt.surface, nil },
			})
			var rec progressRecorder
			res := exp.Export(context.Background(), Request{Text: "Text.", Format: common.FormatPdf}, rec.record)
			if res.Err == nil {
				t.Fatal("expected error")
			}
			if got := res.Err.Error(); got != tt.want {
				t.Errorf("message = %q, want %q", got, tt.want)
			}
			if res.Data != nil || res.Filename != "" {
				t.Error("partial result returned")
			}
			if n := len(rec.events); n != 3 {
				t.Fatalf("progress = %+v", rec.events)
			}
			last := rec.events[2]
			if last.stage != common.StageError || last.percent != 0 || last.message != tt.want {
				t.Errorf("last progress = %+v", last)
			}
		})
	}

	// empty message falls back to generic one
	err := &exportError{format: common.FormatOdt, cause: errors.New("")}
	if got := err.Error(); got != "Failed to export to ODT format" {
		t.Errorf("message = %q", got)
	}
}

func TestExport_EPUBExample(t *testing.T) {
	exp := newTestExporter(t, Settings{})
	res := exp.Export(context.Background(), Request{Text: exampleText, Format: common.FormatEpub, Options: Options{
		Created: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}}, nil)
	if res.Err != nil {
		t.Fatalf("Export() error: %v", res.Err)
	}

	zr, err := zip.NewReader(bytes.NewReader(res.Data), int64(len(res.Data)))
	if err != nil {
		t.Fatalf("unable to open EPUB: %v", err)
	}
	var chapters int
	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, "OEBPS/chapter") {
			chapters++
		}
		if f.Name == "OEBPS/styles.css" {
			rc, _ := f.Open()
			data, _ := io.ReadAll(rc)
			rc.Close()
			if !bytes.Equal(data, DefaultStylesheet()) {
				t.Error("default stylesheet is not used")
			}
		}
	}
	if chapters != 2 {
		t.Errorf("chapters = %d, want 2", chapters)
	}
}

func TestExport_Concurrent(t *testing.T) {
	exp := newTestExporter(t, Settings{})

	var wg sync.WaitGroup
	errs := make(chan error, 24)
	for i := range 24 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			format := common.Format(i % len(common.FormatNames()))
			res := exp.Export(context.Background(), Request{Text: exampleText, Format: format}, nil)
			if res.Err != nil {
				errs <- res.Err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("Export() error: %v", err)
	}
}

func TestExport_Canceled(t *testing.T) {
	exp := newTestExporter(t, Settings{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := exp.Export(ctx, Request{Text: "Text.", Format: common.FormatOdt}, nil)
	if !errors.Is(res.Err, context.Canceled) {
		t.Errorf("error = %v, want %v", res.Err, context.Canceled)
	}
}
