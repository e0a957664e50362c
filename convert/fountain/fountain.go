// Package fountain produces plain text screenplays in Fountain syntax.
package fountain

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"storyexp/content"
	"storyexp/markup"
	"storyexp/screenplay"
)

// Encoder produces Fountain text.
type Encoder struct {
	log *zap.Logger
}

// New creates Fountain encoder.
func New(log *zap.Logger) *Encoder {
	return &Encoder{log: log.Named("fountain")}
}

// Encode converts document line by line. Unlike FDX output no state is
// carried between lines.
func (e *Encoder) Encode(ctx context.Context, c *content.Content) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []string
	if c.ExplicitTitle || c.Author != "" {
		if c.ExplicitTitle {
			out = append(out, "Title: "+c.Title)
		}
		if c.Author != "" {
			out = append(out, "Author: "+c.Author)
		}
		out = append(out, "===", "")
	}

	for _, raw := range markup.SplitLines(c.Text) {
		line := strings.TrimSpace(raw)
		switch {
		case line == "":
			out = append(out, "")
		case strings.HasPrefix(line, "#"):
			out = append(out, sceneHeading(line))
		case screenplay.IsUpper(line):
			// cue needs empty line before it to be told from action
			if n := len(out); n > 0 && out[n-1] != "" {
				out = append(out, "")
			}
			out = append(out, line)
		case screenplay.IsParenthetical(line):
			out = append(out, line)
		default:
			out = append(out, markup.StripFormatting(line))
		}
	}

	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	e.log.Debug("Generating Fountain", zap.String("title", c.Title), zap.Int("lines", len(out)))

	if len(out) == 0 {
		return []byte{}, nil
	}
	return []byte(strings.Join(out, "\n") + "\n"), nil
}

// sceneHeading forces scene heading with leading dot unless text already
// starts with location prefix.
func sceneHeading(line string) string {
	text := strings.TrimSpace(strings.TrimLeft(line, "#"))
	if screenplay.IsSceneStart(text) {
		return text
	}
	return "." + text
}
