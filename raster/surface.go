// Package raster renders XHTML produced by markup package into a single
// bitmap. It understands only the element vocabulary markup emits and a
// small subset of CSS.
package raster

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"storyexp/css"
)

const (
	defaultDPI = 144
	// bitmap size limit in pixels, 512MB of RGBA
	maxPixels = 1 << 27
	medium    = "print"
)

// DefaultDivider is SVG drawn in place of horizontal rules.
const DefaultDivider = `<svg viewBox="0 0 240 20" xmlns="http://www.w3.org/2000/svg">
  <path d="M10 10 H90
           M150 10 H230"
        stroke="black" stroke-width="1"/>
  <path d="M120 3 A7 7 0 1 1 119.9 3" fill="none" stroke="black" stroke-width="1"/>
</svg>`

// ErrClosed is returned when surface is used after Close.
var ErrClosed = errors.New("surface is closed")

// Options configures Surface.
type Options struct {
	// resolution in dots per inch, affects all absolute CSS lengths
	DPI float64
	// caller stylesheet, applied on top of built-in one
	Stylesheet []byte
	// SVG drawn for horizontal rules, DefaultDivider when empty
	Divider []byte
}

type variant int

const (
	variantRegular variant = iota
	variantBold
	variantItalic
	variantBoldItalic
	variantMono
	variantMonoBold
)

type faceKey struct {
	v    variant
	size int // in 1/4 px
}

// Surface is off-screen rendering context. It owns font faces and must be
// closed after use. Surface is not safe for concurrent use.
type Surface struct {
	log     *zap.Logger
	dpi     float64
	sheet   *css.Stylesheet
	divider []byte
	fonts   map[variant]*opentype.Font
	faces   map[faceKey]font.Face
	closed  bool
}

// New prepares surface: parses fonts and stylesheets.
func New(opts Options, log *zap.Logger) (*Surface, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("raster")

	s := &Surface{
		log:     log,
		dpi:     opts.DPI,
		divider: opts.Divider,
		fonts:   make(map[variant]*opentype.Font),
		faces:   make(map[faceKey]font.Face),
	}
	if s.dpi <= 0 {
		s.dpi = defaultDPI
	}
	if len(s.divider) == 0 {
		s.divider = []byte(DefaultDivider)
	}

	for v, data := range map[variant][]byte{
		variantRegular:    goregular.TTF,
		variantBold:       gobold.TTF,
		variantItalic:     goitalic.TTF,
		variantBoldItalic: gobolditalic.TTF,
		variantMono:       gomono.TTF,
		variantMonoBold:   gomonobold.TTF,
	} {
		f, err := opentype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("unable to parse font: %w", err)
		}
		s.fonts[v] = f
	}

	parser := css.NewParser(log)
	s.sheet = parser.Parse([]byte(baseCSS), "built-in")
	if len(opts.Stylesheet) > 0 {
		user := parser.Parse(opts.Stylesheet, "stylesheet")
		for _, w := range user.Warnings {
			log.Debug("Stylesheet", zap.String("warning", w))
		}
		s.sheet.Rules = append(s.sheet.Rules, user.Rules...)
	}
	return s, nil
}

// Close releases font faces.
func (s *Surface) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var err error
	for k, f := range s.faces {
		err = multierr.Append(err, f.Close())
		delete(s.faces, k)
	}
	if err != nil {
		return fmt.Errorf("unable to release surface: %w", err)
	}
	return nil
}

// Rasterize lays out XHTML document (or fragment) for given width in pixels
// and paints it. Height of returned image is height of the content.
func (s *Surface) Rasterize(ctx context.Context, doc string, width int) (image.Image, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if width <= 0 {
		return nil, fmt.Errorf("unable to rasterize: invalid width %d", width)
	}

	l := &layouter{s: s, ctx: ctx, width: float64(width)}
	if err := l.layout(doc); err != nil {
		return nil, err
	}

	height := int(math.Ceil(l.y))
	if int64(width)*int64(max(height, 1)) > maxPixels {
		return nil, fmt.Errorf("unable to rasterize: document is too large (%dx%d px at %v dpi)", width, height, s.dpi)
	}
	s.log.Debug("Layout done", zap.Int("boxes", len(l.boxes)), zap.Int("width", width), zap.Int("height", height))

	return s.paint(ctx, l.boxes, width, max(height, 1))
}

func (s *Surface) face(ts textStyle) (font.Face, error) {
	v := variantRegular
	switch {
	case ts.mono && ts.bold:
		v = variantMonoBold
	case ts.mono:
		v = variantMono
	case ts.bold && ts.italic:
		v = variantBoldItalic
	case ts.bold:
		v = variantBold
	case ts.italic:
		v = variantItalic
	}
	key := faceKey{v: v, size: int(math.Round(ts.size * 4))}
	if f, ok := s.faces[key]; ok {
		return f, nil
	}
	f, err := opentype.NewFace(s.fonts[v], &opentype.FaceOptions{
		Size:    float64(key.size) / 4 * 72 / s.dpi,
		DPI:     s.dpi,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to create font face: %w", err)
	}
	s.faces[key] = f
	return f, nil
}
