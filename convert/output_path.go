package convert

import (
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"storyexp/config"
	"storyexp/content"
	"storyexp/state"
)

// characters rejected by at least one of common file systems
const unsafeChars = `<>:"/\|?*`

// buildFileName returns output name for exported document: explicit file
// name, expanded output name template or document title, in that order.
// Template may produce sub-directories, they are returned slash separated.
func (e *Exporter) buildFileName(c *content.Content, opts Options) string {
	ext := c.Format.Ext()

	if name := strings.TrimSpace(opts.Filename); name != "" {
		if strings.EqualFold(path.Ext(name), ext) {
			name = name[:len(name)-len(ext)]
		}
		if s := cleanPathSegment(name, e.settings.Transliterate); s != "" {
			return s + ext
		}
	}

	if e.settings.OutputNameTemplate != "" {
		if segments := e.expandOutputNameTemplate(c, opts); len(segments) > 0 {
			segments[len(segments)-1] += ext
			return path.Join(segments...)
		}
	}

	if s := cleanPathSegment(c.Title, e.settings.Transliterate); s != "" {
		return s + ext
	}
	return cleanPathSegment(content.DefaultTitle(c.Format), e.settings.Transliterate) + ext
}

func (e *Exporter) expandOutputNameTemplate(c *content.Content, opts Options) []string {
	expanded, err := expandTemplate(config.OutputNameTemplateFieldName, e.settings.OutputNameTemplate,
		newValues(c, config.OutputNameTemplateFieldName, opts.SourceFile))
	if err != nil {
		e.log.Warn("Unable to prepare output filename", zap.Error(err))
		return nil
	}

	var segments []string
	for _, s := range splitAndCleanPath(filepath.ToSlash(expanded)) {
		if s = cleanPathSegment(s, e.settings.Transliterate); s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

// splitAndCleanPath splits slash separated path dropping empty and relative
// elements.
func splitAndCleanPath(p string) []string {
	segments := make([]string, 0, 8)
	for s := range strings.SplitSeq(p, "/") {
		s = strings.TrimSpace(s)
		if s == "" || s == "." || s == ".." {
			continue
		}
		segments = append(segments, s)
	}
	return slices.Clip(segments)
}

// cleanPathSegment makes single path element safe to use as file name.
// Empty result means nothing usable remained.
func cleanPathSegment(segment string, transliterate bool) string {
	if transliterate {
		segment = slug.Make(segment)
	} else {
		segment = strings.Join(strings.Fields(strings.ToLower(segment)), "-")
		segment = strings.Map(func(sym rune) rune {
			if strings.ContainsRune(unsafeChars, sym) {
				return -1
			}
			return sym
		}, segment)
	}
	segment = strings.Trim(segment, ".-")
	if segment == "" {
		return ""
	}
	return config.CleanFileName(segment)
}

// buildOutputPath places exported file under destination directory, keeping
// source directory structure unless told otherwise.
func buildOutputPath(src, dst, name string, env *state.LocalEnv) string {
	return filepath.Join(determineOutputDir(src, dst, env), filepath.FromSlash(name))
}

func determineOutputDir(src, dst string, env *state.LocalEnv) string {
	if env.NoDirs {
		return dst
	}
	return filepath.Join(dst, filepath.Dir(src))
}
