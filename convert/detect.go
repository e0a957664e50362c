package convert

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/matchers"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
	"golang.org/x/text/transform"
)

type srcEncoding int

const (
	encUnknown srcEncoding = iota
	encUTF8
	encUTF16BigEndian
	encUTF16LittleEndian
	encUTF32BigEndian
	encUTF32LittleEndian
)

func (e srcEncoding) String() string {
	switch e {
	case encUTF8:
		return "utf8"
	case encUTF16BigEndian:
		return "utf16be"
	case encUTF16LittleEndian:
		return "utf16le"
	case encUTF32BigEndian:
		return "utf32be"
	case encUTF32LittleEndian:
		return "utf32le"
	default:
		return "unknown"
	}
}

// size of the head used for sniffing
const headSize = 512

// extensions of canonical text sources
var textExtensions = []string{".md", ".markdown", ".txt", ".text", ".fountain"}

var typeFountain = filetype.NewType("fountain", "text/x-fountain")

func init() {
	// fountain title page starts with key: value pair, body never looks
	// like any binary signature so only title page can be sniffed
	filetype.AddMatcher(typeFountain, func(buf []byte) bool {
		buf = bytes.TrimPrefix(buf, []byte{0xEF, 0xBB, 0xBF})
		return bytes.HasPrefix(buf, []byte("Title:"))
	})
}

func isUTF8BOM3(buf []byte) bool {
	return len(buf) >= 3 && buf[0] == 0xEF && buf[1] == 0xBB && buf[2] == 0xBF
}

func isUTF16BigEndianBOM2(buf []byte) bool {
	return len(buf) >= 2 && buf[0] == 0xFE && buf[1] == 0xFF
}

func isUTF16LittleEndianBOM2(buf []byte) bool {
	return len(buf) >= 2 && buf[0] == 0xFF && buf[1] == 0xFE
}

func isUTF32BigEndianBOM4(buf []byte) bool {
	return len(buf) >= 4 && buf[0] == 0x00 && buf[1] == 0x00 && buf[2] == 0xFE && buf[3] == 0xFF
}

func isUTF32LittleEndianBOM4(buf []byte) bool {
	return len(buf) >= 4 && buf[0] == 0xFF && buf[1] == 0xFE && buf[2] == 0x00 && buf[3] == 0x00
}

// detectUTF looks for byte order mark, UTF-32 is checked first since its
// little endian mark starts with UTF-16 one.
func detectUTF(buf []byte) srcEncoding {
	switch {
	case isUTF32BigEndianBOM4(buf):
		return encUTF32BigEndian
	case isUTF32LittleEndianBOM4(buf):
		return encUTF32LittleEndian
	case isUTF8BOM3(buf):
		return encUTF8
	case isUTF16BigEndianBOM2(buf):
		return encUTF16BigEndian
	case isUTF16LittleEndianBOM2(buf):
		return encUTF16LittleEndian
	}
	return encUnknown
}

// selectReader returns reader converting source to UTF-8 and dropping BOM.
// Sources without BOM are returned as is and decoded later by readText.
func selectReader(r io.Reader, enc srcEncoding) io.Reader {
	switch enc {
	case encUnknown:
		return r
	case encUTF8:
		return transform.NewReader(r, unicode.UTF8BOM.NewDecoder())
	case encUTF16BigEndian:
		return transform.NewReader(r, unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder())
	case encUTF16LittleEndian:
		return transform.NewReader(r, unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder())
	case encUTF32BigEndian:
		return transform.NewReader(r, utf32.UTF32(utf32.BigEndian, utf32.ExpectBOM).NewDecoder())
	case encUTF32LittleEndian:
		return transform.NewReader(r, utf32.UTF32(utf32.LittleEndian, utf32.ExpectBOM).NewDecoder())
	default:
		// this should never happen
		panic("unsupported source encoding")
	}
}

// readText reads whole source. Text which is not valid UTF-8 is decoded with
// encoding guessed by html charset sniffer (windows-1252 when nothing
// better is known).
func readText(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if utf8.Valid(data) {
		return string(data), nil
	}
	enc, _, _ := charset.DetermineEncoding(data, "text/plain")
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func hasTextExtension(name string) bool {
	return slices.Contains(textExtensions, strings.ToLower(filepath.Ext(name)))
}

// isTextHead reports whether sniffed head could belong to text source.
func isTextHead(head []byte) (bool, srcEncoding) {
	enc := detectUTF(head)
	kind, _ := filetype.Match(head)
	if kind != filetype.Unknown && kind != typeFountain {
		return false, enc
	}
	if enc == encUnknown && bytes.IndexByte(head, 0) >= 0 {
		// binary content without known signature
		return false, enc
	}
	return true, enc
}

func readHead(r io.Reader) ([]byte, error) {
	head := make([]byte, headSize)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	return head[:n], nil
}

func isArchiveFile(path string) (bool, error) {
	file, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(path), ".zip") {
		return false, nil
	}
	head, err := readHead(file)
	if err != nil {
		return false, err
	}
	return filetype.IsType(head, matchers.TypeZip), nil
}

func isTextFile(path string) (bool, srcEncoding, error) {
	file, err := os.Open(path)
	if err != nil {
		return false, encUnknown, err
	}
	defer file.Close()

	if !hasTextExtension(path) {
		return false, encUnknown, nil
	}
	head, err := readHead(file)
	if err != nil {
		return false, encUnknown, err
	}
	ok, enc := isTextHead(head)
	return ok, enc, nil
}

func isTextInArchive(f *zip.File) (bool, srcEncoding, error) {
	if f.FileInfo().IsDir() || !hasTextExtension(f.Name) {
		return false, encUnknown, nil
	}
	r, err := f.Open()
	if err != nil {
		return false, encUnknown, err
	}
	defer r.Close()

	head, err := readHead(r)
	if err != nil {
		return false, encUnknown, err
	}
	ok, enc := isTextHead(head)
	return ok, enc, nil
}
