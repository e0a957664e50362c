package convert

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
	"golang.org/x/text/transform"

	"storyexp/common"
	"storyexp/config"
	"storyexp/state"
)

const sampleText = "# Sample Story\n\nIt was a **dark** night.\n\n> Quoted line\n\n- one\n- two\n"

// setupTestEnv creates a test environment with proper context and logger
func setupTestEnv(t *testing.T) (context.Context, *state.LocalEnv) {
	t.Helper()
	logger := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	ctx := state.ContextWithEnv(context.Background())
	env := state.EnvFromContext(ctx)
	env.Log = logger
	env.Cfg = cfg
	return ctx, env
}

func readerForEncoding(t *testing.T, data []byte, enc srcEncoding) *bytes.Reader {
	t.Helper()
	var encoded []byte
	switch enc {
	case encUnknown:
		encoded = data
	case encUTF8:
		encoded = append([]byte{0xEF, 0xBB, 0xBF}, data...)
	case encUTF16BigEndian:
		encoded = encodeWithTransformer(t, data, unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewEncoder())
	case encUTF16LittleEndian:
		encoded = encodeWithTransformer(t, data, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder())
	case encUTF32BigEndian:
		encoded = encodeWithTransformer(t, data, utf32.UTF32(utf32.BigEndian, utf32.UseBOM).NewEncoder())
	case encUTF32LittleEndian:
		encoded = encodeWithTransformer(t, data, utf32.UTF32(utf32.LittleEndian, utf32.UseBOM).NewEncoder())
	default:
		t.Fatalf("unsupported encoding: %v", enc)
	}
	return bytes.NewReader(encoded)
}

func encodeWithTransformer(t *testing.T, data []byte, encoder transform.Transformer) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := transform.NewWriter(&buf, encoder)
	if _, err := w.Write(data); err != nil {
		t.Fatalf("encode sample: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("finalize encoded sample: %v", err)
	}
	return buf.Bytes()
}

// collector records sources handed over by process.
type collector struct {
	names []string
	texts map[string]string
}

func (c *collector) handle(_ context.Context, r io.Reader, src string) error {
	text, err := readText(r)
	if err != nil {
		return err
	}
	if c.texts == nil {
		c.texts = make(map[string]string)
	}
	c.names = append(c.names, filepath.ToSlash(src))
	c.texts[filepath.ToSlash(src)] = text
	return nil
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
}

func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, data := range files {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("Failed to create file in zip: %v", err)
		}
		if _, err := f.Write([]byte(data)); err != nil {
			t.Fatalf("Failed to write to zip: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close zip: %v", err)
	}
	writeFile(t, path, buf.Bytes())
}

func TestProcess_NonExistentPath(t *testing.T) {
	ctx, env := setupTestEnv(t)

	var c collector
	err := process(ctx, "/nonexistent/path/file.md", c.handle, env.Log)
	if err == nil {
		t.Fatal("Expected error for non-existent path, got nil")
	}
	if !strings.Contains(err.Error(), "input source was not found") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestProcess_CancelledContext(t *testing.T) {
	ctx, env := setupTestEnv(t)
	cancelCtx, cancel := context.WithCancel(ctx)
	cancel()

	var c collector
	if err := process(cancelCtx, t.TempDir(), c.handle, env.Log); err != context.Canceled {
		t.Errorf("Expected context.Canceled error, got %v", err)
	}
}

func TestProcess_DirectoryNaturalOrder(t *testing.T) {
	ctx, env := setupTestEnv(t)
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "ep10.md"), []byte("ten"))
	writeFile(t, filepath.Join(dir, "ep2.md"), []byte("two"))
	writeFile(t, filepath.Join(dir, "ep1.txt"), []byte("one"))
	writeFile(t, filepath.Join(dir, "notes", "ep3.markdown"), []byte("three"))
	writeFile(t, filepath.Join(dir, "image.png"), []byte("\x89PNG\r\n\x1a\nxxxx"))
	writeFile(t, filepath.Join(dir, "binary.md"), []byte("\x00\x01\x02"))

	var c collector
	if err := process(ctx, dir, c.handle, env.Log); err != nil {
		t.Fatalf("process() error = %v", err)
	}
	want := []string{"ep1.txt", "ep2.md", "ep10.md", "notes/ep3.markdown"}
	if strings.Join(c.names, ",") != strings.Join(want, ",") {
		t.Errorf("sources = %v, want %v", c.names, want)
	}
}

func TestProcess_DirectoryWithTail(t *testing.T) {
	ctx, env := setupTestEnv(t)
	dir := filepath.Join(t.TempDir(), "subdir")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}

	var c collector
	if err := process(ctx, filepath.Join(dir, "nonexistent.md"), c.handle, env.Log); err == nil {
		t.Fatal("Expected error for directory with tail, got nil")
	}
}

func TestProcess_SingleFile(t *testing.T) {
	ctx, env := setupTestEnv(t)
	path := filepath.Join(t.TempDir(), "story.md")
	writeFile(t, path, []byte(sampleText))

	var c collector
	if err := process(ctx, path, c.handle, env.Log); err != nil {
		t.Fatalf("process() error = %v", err)
	}
	if len(c.names) != 1 || c.names[0] != "story.md" {
		t.Fatalf("sources = %v", c.names)
	}
	if c.texts["story.md"] != sampleText {
		t.Errorf("text = %q", c.texts["story.md"])
	}
}

func TestProcess_NotText(t *testing.T) {
	ctx, env := setupTestEnv(t)
	path := filepath.Join(t.TempDir(), "story.docx")
	writeFile(t, path, []byte("whatever"))

	var c collector
	err := process(ctx, path, c.handle, env.Log)
	if err == nil || !strings.Contains(err.Error(), "not recognized") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestProcess_Archive(t *testing.T) {
	ctx, env := setupTestEnv(t)
	path := filepath.Join(t.TempDir(), "drafts.zip")
	writeZip(t, path, map[string]string{
		"book/ch10.md":  "ten",
		"book/ch9.md":   "nine",
		"other/misc.md": "misc",
		"book/pic.jpg":  "\xFF\xD8\xFF\xE0",
	})

	t.Run("whole archive", func(t *testing.T) {
		var c collector
		if err := process(ctx, path, c.handle, env.Log); err != nil {
			t.Fatalf("process() error = %v", err)
		}
		want := []string{"book/ch9.md", "book/ch10.md", "other/misc.md"}
		if strings.Join(c.names, ",") != strings.Join(want, ",") {
			t.Errorf("sources = %v, want %v", c.names, want)
		}
	})

	t.Run("path inside archive", func(t *testing.T) {
		var c collector
		if err := process(ctx, filepath.Join(path, "other"), c.handle, env.Log); err != nil {
			t.Fatalf("process() error = %v", err)
		}
		if len(c.names) != 1 || c.names[0] != "other/misc.md" {
			t.Errorf("sources = %v", c.names)
		}
	})
}

func TestProcess_Encodings(t *testing.T) {
	tests := []srcEncoding{
		encUnknown,
		encUTF8,
		encUTF16BigEndian,
		encUTF16LittleEndian,
		encUTF32BigEndian,
		encUTF32LittleEndian,
	}
	text := "# Заголовок\n\nТекст."
	for _, enc := range tests {
		t.Run(enc.String(), func(t *testing.T) {
			ctx, env := setupTestEnv(t)
			path := filepath.Join(t.TempDir(), "story.md")
			data, _ := io.ReadAll(readerForEncoding(t, []byte(text), enc))
			writeFile(t, path, data)

			var c collector
			if err := process(ctx, path, c.handle, env.Log); err != nil {
				t.Fatalf("process() error = %v", err)
			}
			if got := c.texts["story.md"]; got != text {
				t.Errorf("text = %q, want %q", got, text)
			}
		})
	}
}

func TestReadText_Legacy(t *testing.T) {
	data, err := charmap.Windows1252.NewEncoder().Bytes([]byte("café – déjà vu"))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := readText(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("readText() error = %v", err)
	}
	if got != "café – déjà vu" {
		t.Errorf("readText() = %q", got)
	}
}

func TestProcessText(t *testing.T) {
	ctx, env := setupTestEnv(t)
	env.Format = common.FormatEpub
	dst := t.TempDir()
	exp := newTestExporter(t, exporterSettings(env))

	if err := processText(ctx, exp, strings.NewReader(sampleText), filepath.Join("drafts", "story.md"), dst, env.Log); err != nil {
		t.Fatalf("processText() error = %v", err)
	}
	out := filepath.Join(dst, "drafts", "sample-story.epub")
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("output is missing: %v", err)
	}
	if _, err := zip.NewReader(bytes.NewReader(data), int64(len(data))); err != nil {
		t.Errorf("output is not an archive: %v", err)
	}

	t.Run("exists", func(t *testing.T) {
		err := processText(ctx, exp, strings.NewReader(sampleText), filepath.Join("drafts", "story.md"), dst, env.Log)
		if err == nil || !strings.Contains(err.Error(), "already exists") {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("overwrite", func(t *testing.T) {
		env.Overwrite = true
		defer func() { env.Overwrite = false }()
		if err := processText(ctx, exp, strings.NewReader(sampleText), filepath.Join("drafts", "story.md"), dst, env.Log); err != nil {
			t.Errorf("processText() error = %v", err)
		}
	})

	t.Run("nodirs", func(t *testing.T) {
		env.NoDirs, env.Name = true, "flat"
		defer func() { env.NoDirs, env.Name = false, "" }()
		if err := processText(ctx, exp, strings.NewReader(sampleText), filepath.Join("drafts", "story.md"), dst, env.Log); err != nil {
			t.Fatalf("processText() error = %v", err)
		}
		if _, err := os.Stat(filepath.Join(dst, "flat.epub")); err != nil {
			t.Errorf("output is missing: %v", err)
		}
	})

	t.Run("empty", func(t *testing.T) {
		err := processText(ctx, exp, strings.NewReader("  \n"), "empty.md", dst, env.Log)
		if err == nil || !strings.Contains(err.Error(), "document is empty") {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestSrcEncoding_String(t *testing.T) {
	tests := []struct {
		enc  srcEncoding
		want string
	}{
		{encUnknown, "unknown"},
		{encUTF8, "utf8"},
		{encUTF16BigEndian, "utf16be"},
		{encUTF16LittleEndian, "utf16le"},
		{encUTF32BigEndian, "utf32be"},
		{encUTF32LittleEndian, "utf32le"},
		{srcEncoding(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.enc.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
