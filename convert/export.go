package convert

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"go.uber.org/zap"

	"storyexp/common"
	"storyexp/content"
	"storyexp/convert/docx"
	"storyexp/convert/epub"
	"storyexp/convert/fdx"
	"storyexp/convert/fountain"
	"storyexp/convert/odt"
	"storyexp/convert/pdf"
)

//go:embed default.css
var defaultStylesheet []byte

// DefaultStylesheet returns copy of built-in stylesheet used for EPUB and
// PDF output.
func DefaultStylesheet() []byte {
	return append([]byte(nil), defaultStylesheet...)
}

var (
	ErrEmptyDocument     = errors.New("document is empty")
	ErrUnsupportedFormat = errors.New("unsupported export format")
)

// Encoder turns prepared content into bytes of a single format.
type Encoder interface {
	Encode(ctx context.Context, c *content.Content) ([]byte, error)
}

// PDFOptions are page settings of PDF output.
type PDFOptions struct {
	PageSize    common.PageSize
	Orientation common.Orientation
	TitlePage   bool
	Margins     pdf.Margins
	DPI         float64
	JPEGQuality int
}

// Options are per request document settings, every field is optional.
type Options struct {
	Title    string
	Author   string
	Language string
	// output file name, extension is added when missing
	Filename string
	// EPUB package identifier, generated when empty
	Identifier string
	Created    time.Time
	// source file name made available to output name template
	SourceFile string
	// nil selects exporter defaults
	PDF *PDFOptions
}

// Request is single export call input.
type Request struct {
	Text    string
	Format  common.Format
	Options Options
}

// Result of export. On success Data and Filename are set, on failure only
// Err is.
type Result struct {
	Data     []byte
	Filename string
	Err      error
}

// ProgressFunc receives stage notifications, message is only set for
// StageError.
type ProgressFunc func(stage common.Stage, percent int, message string)

// Settings are exporter wide defaults.
type Settings struct {
	// document language when request does not specify one
	Language string
	FixZip   bool
	// nil selects built-in stylesheet
	Stylesheet []byte
	// go template for output name, see Values for available fields
	OutputNameTemplate string
	// transliterate output names to ASCII
	Transliterate bool
	PDF           PDFOptions
	DocxStyles    []docx.Style
	OdtStyles     []odt.Style
	// nil selects rasterizing surface
	Surface pdf.SurfaceFactory
}

// Exporter converts canonical text into one of the supported formats. It
// keeps no state between calls and is safe for concurrent use.
type Exporter struct {
	log      *zap.Logger
	settings Settings
}

// NewExporter creates Exporter, nil log disables logging.
func NewExporter(settings Settings, log *zap.Logger) *Exporter {
	if log == nil {
		log = zap.NewNop()
	}
	if settings.Language == "" {
		settings.Language = "en"
	}
	if settings.Stylesheet == nil {
		settings.Stylesheet = DefaultStylesheet()
	}
	return &Exporter{log: log.Named("export"), settings: settings}
}

// exportError carries encoder failure, message falls back to generic one
// when cause has none.
type exportError struct {
	format common.Format
	cause  error
}

func (e *exportError) Error() string {
	if e.cause != nil && e.cause.Error() != "" {
		return e.cause.Error()
	}
	return "Failed to export to " + e.format.Label() + " format"
}

func (e *exportError) Unwrap() error {
	return e.cause
}

func unsupported(format string) error {
	return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
}

// ExportString is Export with format given by name.
func (e *Exporter) ExportString(ctx context.Context, text, format string, opts Options, progress ProgressFunc) Result {
	f, err := common.ParseFormat(strings.TrimSpace(format))
	if err != nil {
		return Result{Err: unsupported(format)}
	}
	return e.Export(ctx, Request{Text: text, Format: f, Options: opts}, progress)
}

// Export validates request and runs encoder for requested format. Validation
// failures are returned without any progress notification.
func (e *Exporter) Export(ctx context.Context, req Request, progress ProgressFunc) Result {
	if !req.Format.IsValid() {
		return Result{Err: unsupported(req.Format.String())}
	}
	if strings.TrimSpace(req.Text) == "" {
		return Result{Err: ErrEmptyDocument}
	}

	report := func(stage common.Stage, message string) {
		if progress != nil {
			progress(stage, stage.Percent(), message)
		}
	}

	report(common.StagePreparing, "")
	data, filename, err := e.export(ctx, req, func() { report(common.StageConverting, "") })
	if err != nil {
		e.log.Warn("Export failed", zap.Stringer("format", req.Format), zap.Error(err))
		report(common.StageError, err.Error())
		return Result{Err: err}
	}
	report(common.StageComplete, "")
	return Result{Data: data, Filename: filename}
}

func (e *Exporter) export(ctx context.Context, req Request, converting func()) (data []byte, filename string, err error) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("Export ended with panic",
				zap.Stringer("format", req.Format), zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
			var cause error
			switch v := r.(type) {
			case error:
				cause = v
			case string:
				cause = errors.New(v)
			}
			data, filename, err = nil, "", &exportError{format: req.Format, cause: cause}
		}
	}()

	opts := req.Options
	lang := opts.Language
	if lang == "" {
		lang = e.settings.Language
	}
	c, err := content.Prepare(ctx, req.Text, req.Format, content.Options{
		Title:      opts.Title,
		Author:     opts.Author,
		Language:   lang,
		Identifier: opts.Identifier,
		Created:    opts.Created,
	}, e.log)
	if err != nil {
		return nil, "", &exportError{format: req.Format, cause: err}
	}
	e.log.Debug("Prepared content", zap.Stringer("tree", c))

	enc, err := e.encoderFor(req.Format, opts)
	if err != nil {
		return nil, "", err
	}

	converting()
	start := time.Now()
	data, err = enc.Encode(ctx, c)
	if err != nil {
		return nil, "", &exportError{format: req.Format, cause: err}
	}

	filename = e.buildFileName(c, opts)
	e.log.Debug("Export completed",
		zap.Stringer("format", req.Format),
		zap.String("file", filename),
		zap.Int("size", len(data)),
		zap.Duration("elapsed", time.Since(start)))
	return data, filename, nil
}

func (e *Exporter) encoderFor(format common.Format, opts Options) (Encoder, error) {
	switch format {
	case common.FormatPdf:
		return pdf.New(e.pdfSettings(opts), e.log), nil
	case common.FormatDocx:
		return docx.New(docx.Settings{FixZip: e.settings.FixZip, Styles: e.settings.DocxStyles}, e.log), nil
	case common.FormatOdt:
		return odt.New(odt.Settings{FixZip: e.settings.FixZip, Styles: e.settings.OdtStyles}, e.log), nil
	case common.FormatEpub:
		return epub.New(epub.Settings{FixZip: e.settings.FixZip, Stylesheet: e.settings.Stylesheet}, e.log), nil
	case common.FormatFdx:
		return fdx.New(e.log), nil
	case common.FormatFountain:
		return fountain.New(e.log), nil
	}
	return nil, unsupported(format.String())
}

func (e *Exporter) pdfSettings(opts Options) pdf.Settings {
	p := e.settings.PDF
	if opts.PDF != nil {
		p = *opts.PDF
	}
	return pdf.Settings{
		PageSize:    p.PageSize,
		Orientation: p.Orientation,
		TitlePage:   p.TitlePage,
		Margins:     p.Margins,
		DPI:         p.DPI,
		JPEGQuality: p.JPEGQuality,
		Stylesheet:  e.settings.Stylesheet,
		Surface:     e.settings.Surface,
	}
}
