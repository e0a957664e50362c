package convert

import (
	"path/filepath"
	"slices"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"storyexp/common"
	"storyexp/content"
	"storyexp/state"
)

func setupTestContentForPath(t *testing.T, format common.Format, title, author string) *content.Content {
	t.Helper()
	c, err := content.Prepare(t.Context(), "# Heading\n\nText", format, content.Options{
		Title:      title,
		Author:     author,
		Language:   "en",
		Identifier: "urn:uuid:test",
		Created:    time.Date(2024, 5, 17, 10, 0, 0, 0, time.UTC),
	}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	return c
}

func TestBuildOutputPath(t *testing.T) {
	tests := []struct {
		name   string
		noDirs bool
		src    string
		file   string
		want   string
	}{
		{"no dirs", true, filepath.Join("a", "b", "story.md"), "story.epub", filepath.Join("out", "story.epub")},
		{"with dirs", false, filepath.Join("a", "b", "story.md"), "story.epub", filepath.Join("out", "a", "b", "story.epub")},
		{"top level source", false, "story.md", "story.pdf", filepath.Join("out", "story.pdf")},
		{"template dirs", false, filepath.Join("a", "story.md"), "jo/heist.fdx", filepath.Join("out", "a", "jo", "heist.fdx")},
		{"template dirs no dirs", true, filepath.Join("a", "story.md"), "jo/heist.fdx", filepath.Join("out", "jo", "heist.fdx")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := &state.LocalEnv{NoDirs: tt.noDirs}
			if got := buildOutputPath(tt.src, "out", tt.file, env); got != tt.want {
				t.Errorf("buildOutputPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetermineOutputDir(t *testing.T) {
	src := filepath.Join("books", "draft.md")
	if got := determineOutputDir(src, "out", &state.LocalEnv{NoDirs: true}); got != "out" {
		t.Errorf("determineOutputDir() = %q, want %q", got, "out")
	}
	if got, want := determineOutputDir(src, "out", &state.LocalEnv{}), filepath.Join("out", "books"); got != want {
		t.Errorf("determineOutputDir() = %q, want %q", got, want)
	}
}

func TestSplitAndCleanPath(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"a/b/c", []string{"a", "b", "c"}},
		{"/a//b/", []string{"a", "b"}},
		{"../a/./b", []string{"a", "b"}},
		{" a / b ", []string{"a", "b"}},
		{"", []string{}},
		{"../..", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := splitAndCleanPath(tt.in); !slices.Equal(got, tt.want) {
				t.Errorf("splitAndCleanPath(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCleanPathSegment(t *testing.T) {
	tests := []struct {
		name          string
		in            string
		transliterate bool
		want          string
	}{
		{"simple", "Story", false, "story"},
		{"spaces", "  My   Great Story ", false, "my-great-story"},
		{"unsafe", `What? A "Story": Part 1/2`, false, "what-a-story-part-12"},
		{"unicode kept", "Тест Один", false, "тест-один"},
		{"dots trimmed", "...hidden.", false, "hidden"},
		{"only unsafe", `<>?*`, false, ""},
		{"transliterate", "Тест & Co", true, "test-and-co"},
		{"transliterate accents", "Café Déjà Vu", true, "cafe-deja-vu"},
		{"transliterate empty", "!!!", true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanPathSegment(tt.in, tt.transliterate); got != tt.want {
				t.Errorf("cleanPathSegment(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestBuildFileName(t *testing.T) {
	tests := []struct {
		name     string
		settings Settings
		format   common.Format
		title    string
		author   string
		opts     Options
		want     string
	}{
		{"title", Settings{}, common.FormatDocx, "Big Night", "", Options{}, "big-night.docx"},
		{"heading title", Settings{}, common.FormatOdt, "", "", Options{}, "heading.odt"},
		{"explicit name", Settings{}, common.FormatPdf, "Big Night", "", Options{Filename: "Final Draft"}, "final-draft.pdf"},
		{"explicit name with extension", Settings{}, common.FormatPdf, "", "", Options{Filename: "final.PDF"}, "final.pdf"},
		{"explicit name other extension", Settings{}, common.FormatPdf, "", "", Options{Filename: "final.txt"}, "final.txt.pdf"},
		{"explicit unusable name", Settings{}, common.FormatEpub, "Big Night", "", Options{Filename: "???"}, "big-night.epub"},
		{
			"template", Settings{OutputNameTemplate: "{{ .Author }} - {{ .Title }}"},
			common.FormatFountain, "Heist", "Jo Doe", Options{}, "jo-doe---heist.fountain",
		},
		{
			"template date and source", Settings{OutputNameTemplate: "{{ .Date }}_{{ .SourceFile }}"},
			common.FormatFdx, "Heist", "", Options{SourceFile: filepath.Join("drafts", "heist.md")}, "2024-05-17_heist.fdx",
		},
		{
			"template subdirs", Settings{OutputNameTemplate: "{{ .Author }}/{{ .Title }}"},
			common.FormatFdx, "Heist", "Jo", Options{}, "jo/heist.fdx",
		},
		{
			"template empty falls back", Settings{OutputNameTemplate: "{{ .Author }}"},
			common.FormatFdx, "Heist", "", Options{}, "heist.fdx",
		},
		{
			"broken template falls back", Settings{OutputNameTemplate: "{{ .Title"},
			common.FormatFdx, "Heist", "", Options{}, "heist.fdx",
		},
		{
			"transliterate", Settings{Transliterate: true},
			common.FormatEpub, "Ночь", "", Options{}, "noch.epub",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exp := newTestExporter(t, tt.settings)
			c := setupTestContentForPath(t, tt.format, tt.title, tt.author)
			if got := exp.buildFileName(c, tt.opts); got != tt.want {
				t.Errorf("buildFileName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildFileName_Default(t *testing.T) {
	exp := newTestExporter(t, Settings{})
	c := setupTestContentForPath(t, common.FormatFdx, "", "")
	c.Title = "???"
	if got := exp.buildFileName(c, Options{}); got != "screenplay.fdx" {
		t.Errorf("buildFileName() = %q, want %q", got, "screenplay.fdx")
	}
}
