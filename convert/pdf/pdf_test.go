package pdf

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"storyexp/common"
	"storyexp/content"
)

type fakeSurface struct {
	height     int
	rasterErr  error
	closeErr   error
	closed     int
	width      int
	html       string
	dpi        float64
	stylesheet []byte
}

func (f *fakeSurface) factory(dpi float64, stylesheet []byte, _ *zap.Logger) (Surface, error) {
	f.dpi, f.stylesheet = dpi, stylesheet
	return f, nil
}

func (f *fakeSurface) Rasterize(_ context.Context, html string, width int) (image.Image, error) {
	f.html, f.width = html, width
	if f.rasterErr != nil {
		return nil, f.rasterErr
	}
	img := image.NewRGBA(image.Rect(0, 0, width, f.height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return img, nil
}

func (f *fakeSurface) Close() error {
	f.closed++
	return f.closeErr
}

func prepare(t *testing.T, text string, opts content.Options) *content.Content {
	t.Helper()
	opts.Created = time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	c, err := content.Prepare(context.Background(), text, common.FormatPdf, opts, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Prepare() error: %v", err)
	}
	return c
}

func pageCount(data []byte) int {
	return bytes.Count(data, []byte("<</Type /Page\n"))
}

func TestEncode_Pages(t *testing.T) {
	// A4 with 15mm margins at 144 dpi: 1513px content height per page
	tests := []struct {
		name      string
		height    int
		titlePage bool
		want      int
	}{
		{"single band", 300, false, 1},
		{"exact page", 1513, false, 1},
		{"two and a half", 3782, false, 3},
		{"with title page", 300, true, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeSurface{height: tt.height}
			enc := New(Settings{TitlePage: tt.titlePage, Surface: fake.factory}, zaptest.NewLogger(t))

			data, err := enc.Encode(context.Background(), prepare(t, "# Title\n\nBody text.", content.Options{Author: "Jo Doe"}))
			if err != nil {
				t.Fatalf("Encode() error: %v", err)
			}
			if !bytes.HasPrefix(data, []byte("%PDF-")) {
				t.Fatalf("output is not PDF: %q", data[:min(len(data), 16)])
			}
			if got := pageCount(data); got != tt.want {
				t.Errorf("pages = %d, want %d", got, tt.want)
			}
			if fake.closed != 1 {
				t.Errorf("surface closed %d times, want 1", fake.closed)
			}
		})
	}
}

func TestEncode_SurfaceInput(t *testing.T) {
	fake := &fakeSurface{height: 10}
	enc := New(Settings{
		PageSize:    common.PageSizeLetter,
		Orientation: common.OrientationLandscape,
		Margins:     Margins{20, 20, 20, 20},
		DPI:         72,
		Stylesheet:  []byte("p { color: red }"),
		Surface:     fake.factory,
	}, zaptest.NewLogger(t))

	if _, err := enc.Encode(context.Background(), prepare(t, "Tom & Jerry", content.Options{})); err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	// landscape letter is 279.4mm wide, minus margins at 72 dpi
	if fake.width != 679 {
		t.Errorf("width = %d, want 679", fake.width)
	}
	if fake.dpi != 72 {
		t.Errorf("dpi = %v", fake.dpi)
	}
	if string(fake.stylesheet) != "p { color: red }" {
		t.Errorf("stylesheet = %q", fake.stylesheet)
	}
	if !strings.Contains(fake.html, "<p>Tom &amp; Jerry</p>") {
		t.Errorf("unexpected html: %s", fake.html)
	}
	if strings.Contains(fake.html, "&amp;amp;") {
		t.Error("double escaping")
	}
}

func TestEncode_Errors(t *testing.T) {
	errRaster := errors.New("raster failed")
	errClose := errors.New("close failed")

	t.Run("rasterize", func(t *testing.T) {
		fake := &fakeSurface{rasterErr: errRaster}
		data, err := New(Settings{Surface: fake.factory}, zaptest.NewLogger(t)).Encode(context.Background(), prepare(t, "Text.", content.Options{}))
		if !errors.Is(err, errRaster) {
			t.Fatalf("error = %v, want %v", err, errRaster)
		}
		if data != nil {
			t.Error("partial output returned")
		}
		if fake.closed != 1 {
			t.Errorf("surface closed %d times, want 1", fake.closed)
		}
	})

	t.Run("close", func(t *testing.T) {
		fake := &fakeSurface{height: 10, closeErr: errClose}
		data, err := New(Settings{Surface: fake.factory}, zaptest.NewLogger(t)).Encode(context.Background(), prepare(t, "Text.", content.Options{}))
		if !errors.Is(err, errClose) {
			t.Fatalf("error = %v, want %v", err, errClose)
		}
		if data != nil {
			t.Error("output returned despite close failure")
		}
	})

	t.Run("both", func(t *testing.T) {
		fake := &fakeSurface{rasterErr: errRaster, closeErr: errClose}
		_, err := New(Settings{Surface: fake.factory}, zaptest.NewLogger(t)).Encode(context.Background(), prepare(t, "Text.", content.Options{}))
		if !errors.Is(err, errRaster) || !errors.Is(err, errClose) {
			t.Fatalf("error = %v, want both", err)
		}
	})

	t.Run("factory", func(t *testing.T) {
		factory := func(float64, []byte, *zap.Logger) (Surface, error) {
			return nil, errors.New("no fonts")
		}
		if _, err := New(Settings{Surface: factory}, zaptest.NewLogger(t)).Encode(context.Background(), prepare(t, "Text.", content.Options{})); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("margins", func(t *testing.T) {
		fake := &fakeSurface{height: 10}
		if _, err := New(Settings{Margins: Margins{Left: 120, Right: 100}, Surface: fake.factory}, zaptest.NewLogger(t)).Encode(context.Background(), prepare(t, "Text.", content.Options{})); err == nil {
			t.Fatal("expected error")
		}
		if fake.closed != 0 {
			t.Error("surface must not be created")
		}
	})

	t.Run("canceled", func(t *testing.T) {
		fake := &fakeSurface{height: 10}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := New(Settings{Surface: fake.factory}, zaptest.NewLogger(t)).Encode(ctx, prepare(t, "Text.", content.Options{})); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestEncode_RasterSurface(t *testing.T) {
	enc := New(Settings{TitlePage: true}, zaptest.NewLogger(t))
	data, err := enc.Encode(context.Background(), prepare(t, "# Chapter One\n\nSome **bold** and *italic* text.\n\n---\n\n- item", content.Options{Title: "Title"}))
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	if got := pageCount(data); got != 2 {
		t.Errorf("pages = %d, want 2", got)
	}
}

func TestEncode_RasterSurfaceNarrowPage(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	enc := New(Settings{PageSize: common.PageSizeA4, Margins: Margins{Top: 15, Bottom: 15, Left: 104, Right: 104}}, zaptest.NewLogger(t))
	data, err := enc.Encode(ctx, prepare(t, "```\ncode\n```", content.Options{}))
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	if got := pageCount(data); got != 1 {
		t.Errorf("pages = %d, want 1", got)
	}
}
