package convert

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime/debug"
	"slices"
	"strings"
	"time"

	"github.com/maruel/natural"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/language"

	"storyexp/archive"
	"storyexp/common"
	"storyexp/convert/pdf"
	"storyexp/markup"
	"storyexp/raster"
	"storyexp/state"
)

// sourceFunc handles single text source. "src" is part of the source path
// (always including file name) relative to the original path.
type sourceFunc func(ctx context.Context, r io.Reader, src string) error

// Run is convert command action.
func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("convert")

	src, dst, err := sourceAndDestination(cmd, log)
	if err != nil {
		return err
	}

	format, err := common.ParseFormat(cmd.String("to"))
	if err != nil {
		return fmt.Errorf("unable to convert: %w", unsupported(cmd.String("to")))
	}
	env.Format = format

	if env.Cfg.Document.StylesheetPath != "" {
		data, err := os.ReadFile(env.Cfg.Document.StylesheetPath)
		if err != nil {
			return fmt.Errorf("unable to read style css from %q: %w", env.Cfg.Document.StylesheetPath, err)
		}
		env.DefaultStyle = data
	}
	if env.Cfg.Document.PDF.DividerPath != "" {
		data, err := os.ReadFile(env.Cfg.Document.PDF.DividerPath)
		if err != nil {
			return fmt.Errorf("unable to read divider image from %q: %w", env.Cfg.Document.PDF.DividerPath, err)
		}
		env.DefaultDivider = data
	}

	env.Title, env.Author, env.Language, env.Name = cmd.String("title"), cmd.String("author"), cmd.String("lang"), cmd.String("name")
	env.NoDirs, env.Overwrite = cmd.Bool("nodirs"), cmd.Bool("overwrite")
	if env.Language != "" {
		if _, err := language.Parse(env.Language); err != nil {
			log.Warn("Unknown language requested, using configured one", zap.String("lang", env.Language), zap.Error(err))
			env.Language = ""
		}
	}
	selectCodePage(cmd, env, log)

	exp := NewExporter(exporterSettings(env), log)

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst), zap.Stringer("format", format))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return process(ctx, src, func(ctx context.Context, r io.Reader, name string) error {
		return processText(ctx, exp, r, name, dst, log)
	}, log)
}

// Stats is stats command action, it prints document statistics for every
// source found.
func Stats(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("stats")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	if src, err = filepath.Abs(src); err != nil {
		return err
	}
	selectCodePage(cmd, env, log)

	lang := language.Make(env.Cfg.Document.Language)
	if l := cmd.String("lang"); l != "" {
		if tag, err := language.Parse(l); err == nil {
			lang = tag
		} else {
			log.Warn("Unknown language requested, using configured one", zap.String("lang", l), zap.Error(err))
		}
	}

	out := cmd.Root().Writer
	if out == nil {
		out = os.Stdout
	}
	return process(ctx, src, func(ctx context.Context, r io.Reader, name string) error {
		text, err := readText(r)
		if err != nil {
			return fmt.Errorf("unable to read source: %w", err)
		}
		st := markup.Analyze(text, lang, log)
		_, err = fmt.Fprintf(out, "%s\twords: %d\tsentences: %d\tcharacters: %d\theadings: %d\tchapters: %d\n",
			name, st.Words, st.Sentences, st.Characters, st.Headings, st.Chapters)
		return err
	}, log)
}

func sourceAndDestination(cmd *cli.Command, log *zap.Logger) (src, dst string, err error) {
	src = cmd.Args().Get(0)
	if len(src) == 0 {
		return "", "", errors.New("no input source has been specified")
	}
	if src, err = filepath.Abs(src); err != nil {
		return "", "", err
	}

	dst = cmd.Args().Get(1)
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return "", "", fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return "", "", err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}
	return src, dst, nil
}

// selectCodePage handles --force-zip-cp. Since zip "standard" does not
// define file name encoding we may need to force archaic code page for old
// archives.
func selectCodePage(cmd *cli.Command, env *state.LocalEnv, log *zap.Logger) {
	cp := cmd.String("force-zip-cp")
	if len(cp) == 0 {
		return
	}
	enc, err := ianaindex.IANA.Encoding(cp)
	if err != nil || enc == nil {
		log.Warn("Unknown character set specification. Ignoring...", zap.String("charset", cp), zap.Error(err))
		env.CodePage = nil
		return
	}
	env.CodePage = enc
	n, _ := ianaindex.IANA.Name(enc)
	log.Debug("Forcefully converting all non UTF-8 file names in archives", zap.String("charset", n))
}

func exporterSettings(env *state.LocalEnv) Settings {
	doc := env.Cfg.Document
	divider := env.DefaultDivider
	return Settings{
		Language:           doc.Language,
		FixZip:             doc.FixZip,
		Stylesheet:         env.DefaultStyle,
		OutputNameTemplate: doc.OutputNameTemplate,
		Transliterate:      doc.FileNameTransliterate,
		PDF: PDFOptions{
			PageSize:    doc.PDF.PageSize,
			Orientation: doc.PDF.Orientation,
			TitlePage:   doc.PDF.TitlePage,
			Margins: pdf.Margins{
				Top:    doc.PDF.Margins.Top,
				Bottom: doc.PDF.Margins.Bottom,
				Left:   doc.PDF.Margins.Left,
				Right:  doc.PDF.Margins.Right,
			},
			DPI:         float64(doc.PDF.DPI),
			JPEGQuality: doc.PDF.JPEGQuality,
		},
		Surface: func(dpi float64, stylesheet []byte, log *zap.Logger) (pdf.Surface, error) {
			s, err := raster.New(raster.Options{DPI: dpi, Stylesheet: stylesheet, Divider: divider}, log)
			if err != nil {
				return nil, err
			}
			return s, nil
		},
	}
}

// process determines the input type (directory, archive, or single file)
// and hands every text source found to fn.
func process(ctx context.Context, src string, fn sourceFunc, log *zap.Logger) error {
	var head, tail string
	for head = src; len(head) != 0; head, tail = filepath.Split(head) {
		if err := ctx.Err(); err != nil {
			return err
		}

		head = strings.TrimSuffix(head, string(filepath.Separator))

		fi, err := os.Stat(head)
		if err != nil {
			// does not exists - probably path in archive
			continue
		}

		if fi.Mode().IsDir() {
			if len(tail) != 0 {
				// directory cannot have tail - it would be simple file
				return fmt.Errorf("input source was not found (%s) => (%s)", head, strings.TrimPrefix(src, head))
			}
			if err := processDir(ctx, head, fn, log); err != nil {
				return fmt.Errorf("unable to process directory: %w", err)
			}
			break
		}

		if !fi.Mode().IsRegular() {
			return fmt.Errorf("unexpected path mode for (%s) => (%s)", head, strings.TrimPrefix(src, head))
		}

		isArchive, err := isArchiveFile(head)
		if err != nil {
			// checking format - but cannot open target file
			return fmt.Errorf("unable to check archive type: %w", err)
		}
		if isArchive {
			// we need to look inside to see if path makes sense
			tail = strings.TrimPrefix(strings.TrimPrefix(src, head), string(filepath.Separator))
			if err := processArchive(ctx, head, filepath.ToSlash(tail), "", fn, log); err != nil {
				return fmt.Errorf("unable to process archive: %w", err)
			}
			break
		}

		text, enc, err := isTextFile(head)
		if err != nil {
			return fmt.Errorf("unable to check file type: %w", err)
		}
		if text && len(tail) == 0 {
			if err := processFile(ctx, head, filepath.Base(head), enc, fn); err != nil {
				log.Error("Unable to process file", zap.String("file", head), zap.Error(err))
			}
			break
		}
		return fmt.Errorf("input was not recognized as text document (%s)", head)
	}
	if len(head) == 0 {
		return fmt.Errorf("input source was not found (%s)", src)
	}
	return nil
}

func processFile(ctx context.Context, path, src string, enc srcEncoding, fn sourceFunc) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return fn(ctx, selectReader(file, enc), src)
}

// processDir walks directory tree in natural order of relative paths
// finding text files and archives and processes them.
func processDir(ctx context.Context, dir string, fn sourceFunc, log *zap.Logger) error {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err != nil {
			log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if d.Type().IsRegular() {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return err
	}
	slices.SortStableFunc(paths, func(a, b string) int {
		switch {
		case natural.Less(a, b):
			return -1
		case natural.Less(b, a):
			return 1
		}
		return 0
	})

	count := 0
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(path, dir), string(filepath.Separator))

		isArchive, err := isArchiveFile(path)
		if err != nil {
			log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			continue
		}
		if isArchive {
			if err := processArchive(ctx, path, "", filepath.Dir(rel), fn, log); err != nil {
				log.Error("Unable to process archive", zap.String("file", path), zap.Error(err))
			}
			continue
		}

		text, enc, err := isTextFile(path)
		if err != nil {
			log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			continue
		}
		if !text {
			log.Debug("Skipping file, not recognized as text or archive", zap.String("file", path))
			continue
		}

		count++
		if err := processFile(ctx, path, rel, enc, fn); err != nil {
			log.Error("Unable to process file", zap.String("file", path), zap.Error(err))
		}
	}
	if count == 0 {
		log.Debug("Nothing to process", zap.String("dir", dir))
	}
	return nil
}

// processArchive walks all files inside archive, finds text files under
// "pathIn" and processes them.
func processArchive(ctx context.Context, path, pathIn, pathOut string, fn sourceFunc, log *zap.Logger) (err error) {
	count := 0
	defer func() {
		if err == nil && count == 0 {
			log.Debug("Nothing to process", zap.String("archive", path))
		}
	}()

	cp := state.EnvFromContext(ctx).CodePage
	return archive.Walk(path, pathIn, func(name string, f *zip.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		text, enc, err := isTextInArchive(f)
		if err != nil {
			log.Warn("Skipping file in archive", zap.String("archive", name), zap.String("path", f.Name), zap.Error(err))
			return nil
		}
		if !text {
			log.Debug("Skipping file, not recognized as text", zap.String("archive", name), zap.String("file", f.Name))
			return nil
		}

		count++

		r, err := f.Open()
		if err != nil {
			log.Error("Unable to process file in archive", zap.String("archive", name), zap.String("file", f.Name), zap.Error(err))
			return nil
		}
		defer r.Close()

		pathInArchive, err := archive.EntryName(f, cp)
		if err != nil {
			n, _ := ianaindex.IANA.Name(cp)
			log.Warn("Unable to convert archive name from specified encoding",
				zap.String("charset", n), zap.String("path", f.Name), zap.Error(err))
		}
		if err := fn(ctx, selectReader(r, enc), filepath.Join(pathOut, filepath.FromSlash(pathInArchive))); err != nil {
			log.Error("Unable to process file in archive", zap.String("archive", name), zap.String("file", f.Name), zap.Error(err))
		}
		return nil
	})
}

// processText converts single source. "dst" is the destination directory
// where the converted file should be written.
func processText(ctx context.Context, exp *Exporter, r io.Reader, src, dst string, log *zap.Logger) (rerr error) {
	env := state.EnvFromContext(ctx)

	var outputName string

	log.Info("Conversion starting", zap.String("from", src))
	defer func(start time.Time) {
		if r := recover(); r != nil {
			log.Error("Conversion ended with panic",
				zap.Any("panic", r), zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName), zap.ByteString("stack", debug.Stack()))
			rerr = fmt.Errorf("conversion panic: %v", r)
		} else if rerr == nil {
			log.Info("Conversion completed", zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName))
		}
	}(time.Now())

	text, err := readText(r)
	if err != nil {
		return fmt.Errorf("unable to read source (%s): %w", src, err)
	}

	res := exp.Export(ctx, Request{
		Text:   text,
		Format: env.Format,
		Options: Options{
			Title:      env.Title,
			Author:     env.Author,
			Language:   env.Language,
			Filename:   env.Name,
			SourceFile: src,
		},
	}, func(stage common.Stage, percent int, message string) {
		log.Debug("Export progress", zap.Stringer("stage", stage), zap.Int("percent", percent), zap.String("message", message))
	})
	if res.Err != nil {
		return fmt.Errorf("unable to export (%s): %w", src, res.Err)
	}

	outputName = buildOutputPath(src, dst, res.Filename, env)
	if err := writeOutput(outputName, res.Data, env.Overwrite, log); err != nil {
		return err
	}

	// Store conversion result for debugging
	if env.Rpt != nil {
		env.Rpt.Store(fmt.Sprintf("result-%s", filepath.Base(outputName)), outputName)
	}
	return nil
}

func writeOutput(name string, data []byte, overwrite bool, log *zap.Logger) error {
	if _, err := os.Stat(name); err == nil {
		if !overwrite {
			return fmt.Errorf("output file already exists: %s", name)
		}
		log.Warn("Overwriting existing file", zap.String("file", name))
	} else if !os.IsNotExist(err) {
		return err
	} else if err := os.MkdirAll(filepath.Dir(name), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}
	if err := os.WriteFile(name, data, 0644); err != nil {
		return fmt.Errorf("unable to write output: %w", err)
	}
	return nil
}
