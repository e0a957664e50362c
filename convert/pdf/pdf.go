// Package pdf produces PDF documents from rasterized pages.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"math"

	"github.com/jung-kurt/gofpdf"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"storyexp/common"
	"storyexp/content"
	"storyexp/markup"
	"storyexp/misc"
	"storyexp/utils/images"
)

const (
	DefaultDPI         = 144
	DefaultMargin      = 15.0 // mm
	DefaultJPEGQuality = 90

	mmPerInch  = 25.4
	fontFamily = "go"
)

// Settings controls PDF generation.
type Settings struct {
	PageSize    common.PageSize
	Orientation common.Orientation
	TitlePage   bool
	// all zero selects DefaultMargin on every side
	Margins Margins
	// rasterization resolution
	DPI         float64
	JPEGQuality int
	// stylesheet applied to the body by the surface
	Stylesheet []byte
	// nil selects NewRasterSurface
	Surface SurfaceFactory
}

// Margins are page margins in millimeters.
type Margins struct {
	Top, Bottom, Left, Right float64
}

// Encoder produces PDF document.
type Encoder struct {
	log      *zap.Logger
	settings Settings
}

// New creates PDF encoder filling in defaults for zero settings.
func New(settings Settings, log *zap.Logger) *Encoder {
	if settings.Margins == (Margins{}) {
		settings.Margins = Margins{DefaultMargin, DefaultMargin, DefaultMargin, DefaultMargin}
	}
	if settings.DPI <= 0 {
		settings.DPI = DefaultDPI
	}
	if settings.JPEGQuality <= 0 || settings.JPEGQuality > 100 {
		settings.JPEGQuality = DefaultJPEGQuality
	}
	if settings.Surface == nil {
		settings.Surface = NewRasterSurface
	}
	return &Encoder{log: log.Named("pdf"), settings: settings}
}

// pageSize returns page dimensions in millimeters honoring orientation.
func (e *Encoder) pageSize() (float64, float64) {
	w, h := e.settings.PageSize.Dimensions()
	if e.settings.Orientation == common.OrientationLandscape {
		w, h = h, w
	}
	return w, h
}

// Encode renders document body to single tall bitmap and places it on
// pages one page-height band at a time. Bands may cut text lines.
func (e *Encoder) Encode(ctx context.Context, c *content.Content) (out []byte, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		m   = e.settings.Margins
		dpi = e.settings.DPI
	)
	pageW, pageH := e.pageSize()
	contentW, contentH := pageW-m.Left-m.Right, pageH-m.Top-m.Bottom
	if contentW <= 0 || contentH <= 0 {
		return nil, fmt.Errorf("unable to fit content: margins %+v leave no space on %vx%vmm page", m, pageW, pageH)
	}
	widthPx := int(math.Round(contentW / mmPerInch * dpi))
	bandPx := int(math.Floor(contentH / mmPerInch * dpi))

	html, err := markup.Render(c.Blocks, markup.RenderOptions{
		FullDocument: true,
		Title:        c.Title,
		Language:     c.Lang(),
	})
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: pageW, Ht: pageH},
	})
	pdf.SetMargins(m.Left, m.Top, m.Right)
	pdf.SetAutoPageBreak(false, m.Bottom)
	pdf.SetTitle(c.Title, true)
	if c.Author != "" {
		pdf.SetAuthor(c.Author, true)
	}
	pdf.SetCreator(misc.GetAppName()+" "+misc.GetVersion(), true)
	pdf.SetCreationDate(c.Created)
	pdf.SetCatalogSort(true)

	if e.settings.TitlePage {
		e.titlePage(pdf, c, contentW, pageH)
	}

	surface, err := e.settings.Surface(dpi, e.settings.Stylesheet, e.log)
	if err != nil {
		return nil, fmt.Errorf("unable to create rendering surface: %w", err)
	}
	defer func() {
		if cerr := surface.Close(); cerr != nil {
			err = multierr.Append(err, cerr)
			out = nil
		}
	}()

	img, err := surface.Rasterize(ctx, html, widthPx)
	if err != nil {
		return nil, fmt.Errorf("unable to rasterize document: %w", err)
	}

	bands := images.SplitBands(img, bandPx)
	e.log.Debug("Generating PDF",
		zap.String("title", c.Title),
		zap.Int("width", widthPx),
		zap.Int("height", img.Bounds().Dy()),
		zap.Int("pages", len(bands)))

	density := int16(math.Round(dpi))
	for i, band := range bands {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := images.EncodeJPEGWithDPI(band, e.settings.JPEGQuality, images.DpiPxPerInch, density, density)
		if err != nil {
			return nil, fmt.Errorf("unable to encode page %d: %w", i+1, err)
		}

		name := fmt.Sprintf("page%d", i+1)
		opts := gofpdf.ImageOptions{ImageType: "JPG", ReadDpi: true}
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))

		b := band.Bounds()
		pdf.AddPage()
		pdf.ImageOptions(name, m.Left, m.Top, float64(b.Dx())/dpi*mmPerInch, float64(b.Dy())/dpi*mmPerInch, false, opts, 0, "")
		if err := pdf.Error(); err != nil {
			return nil, fmt.Errorf("unable to place page %d: %w", i+1, err)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("unable to produce PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *Encoder) titlePage(pdf *gofpdf.Fpdf, c *content.Content, contentW, pageH float64) {
	pdf.AddUTF8FontFromBytes(fontFamily, "", goregular.TTF)
	pdf.AddUTF8FontFromBytes(fontFamily, "B", gobold.TTF)

	pdf.AddPage()
	pdf.SetFont(fontFamily, "B", 28)
	pdf.SetY(pageH * 0.35)
	pdf.MultiCell(contentW, 12, c.Title, "", "C", false)
	if c.Author != "" {
		pdf.SetFont(fontFamily, "", 16)
		pdf.SetY(pageH * 0.5)
		pdf.CellFormat(contentW, 10, c.Author, "", 1, "C", false, 0, "")
	}
}
