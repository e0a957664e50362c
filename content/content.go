// Package content prepares canonical text for export: resolves document
// metadata and parses markup once for all encoders.
package content

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"storyexp/common"
	"storyexp/markup"
)

const (
	DefaultDocumentTitle   = "Document"
	DefaultScreenplayTitle = "Screenplay"
)

// Options carries caller supplied metadata, every field is optional.
type Options struct {
	Title      string
	Author     string
	Language   string
	Identifier string
	Created    time.Time
}

// Content is immutable prepared document shared by encoders of a single
// export call.
type Content struct {
	Text   string
	Format common.Format

	Title string
	// title was supplied by caller rather than derived from text
	ExplicitTitle bool
	Author        string
	Language      language.Tag
	Identifier    string
	Created       time.Time

	Blocks []markup.Block
}

// Prepare parses text and resolves metadata. Title comes from options, then
// from the first level-1 heading, then falls back to the format default.
func Prepare(ctx context.Context, text string, format common.Format, opts Options, log *zap.Logger) (*Content, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text = XMLSafe(text)
	c := &Content{
		Text:       text,
		Format:     format,
		Author:     strings.TrimSpace(XMLSafe(opts.Author)),
		Identifier: strings.TrimSpace(XMLSafe(opts.Identifier)),
		Created:    opts.Created,
		Blocks:     markup.Parse(text),
	}

	if title := strings.TrimSpace(XMLSafe(opts.Title)); title != "" {
		c.Title, c.ExplicitTitle = title, true
	} else if title, ok := markup.FirstTitle(c.Blocks); ok {
		c.Title = title
	} else {
		c.Title = DefaultTitle(format)
	}

	c.Language = language.English
	if opts.Language != "" {
		tag, err := language.Parse(opts.Language)
		if err != nil {
			log.Warn("Unable to parse language, using default", zap.String("lang", opts.Language), zap.Error(err))
		} else {
			c.Language = tag
		}
	}

	if c.Identifier == "" {
		id, err := uuid.NewRandom()
		if err != nil {
			return nil, fmt.Errorf("unable to generate document identifier: %w", err)
		}
		c.Identifier = "urn:uuid:" + id.String()
	}

	if c.Created.IsZero() {
		c.Created = time.Now()
	}
	c.Created = c.Created.UTC().Truncate(time.Second)

	log.Debug("Content prepared",
		zap.Stringer("format", format),
		zap.String("title", c.Title),
		zap.Stringer("lang", c.Language),
		zap.Int("blocks", len(c.Blocks)))
	return c, nil
}

// DefaultTitle returns fallback title for documents without one.
func DefaultTitle(format common.Format) string {
	if format.Screenplay() {
		return DefaultScreenplayTitle
	}
	return DefaultDocumentTitle
}

// Chapters splits parsed blocks at level-1 headings.
func (c *Content) Chapters() []markup.Chapter {
	return markup.SplitChapters(c.Blocks)
}

// Lang returns BCP 47 form of the document language.
func (c *Content) Lang() string {
	return c.Language.String()
}

// XMLSafe drops runes XML 1.0 does not allow in character data: control
// characters other than tab, line feed and carriage return, and the U+FFFE
// and U+FFFF non-characters.
func XMLSafe(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
			return r
		case r < 0x20 || r == 0xFFFE || r == 0xFFFF:
			return -1
		}
		return r
	}, s)
}
