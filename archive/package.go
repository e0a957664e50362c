package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/beevik/etree"
	fixzip "github.com/hidez8891/zip"
)

// Package assembles zip based document container in memory: OCF (EPUB,
// ODF) when mimetype is given, plain OOXML package otherwise.
type Package struct {
	buf      bytes.Buffer
	zw       *zip.Writer
	modified time.Time
	fixZip   bool
	closed   bool
}

// NewPackage starts new container. For OCF containers mimetype entry is
// written first and stored without compression. When fixZip is set Bytes
// rewrites archive without data descriptors, some readers are picky about
// it.
func NewPackage(mimetype string, modified time.Time, fixZip bool) (*Package, error) {
	p := &Package{modified: modified, fixZip: fixZip}
	p.zw = zip.NewWriter(&p.buf)

	if mimetype == "" {
		return p, nil
	}
	w, err := p.zw.CreateHeader(&zip.FileHeader{
		Name:     "mimetype",
		Method:   zip.Store,
		Modified: modified,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to create mimetype entry: %w", err)
	}
	if _, err := io.WriteString(w, mimetype); err != nil {
		return nil, fmt.Errorf("unable to write mimetype entry: %w", err)
	}
	return p, nil
}

// WriteXML serializes document into compressed entry.
func (p *Package) WriteXML(name string, doc *etree.Document) error {
	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return fmt.Errorf("unable to serialize %s: %w", name, err)
	}
	return p.WriteData(name, buf.Bytes())
}

// WriteData stores data into compressed entry.
func (p *Package) WriteData(name string, data []byte) error {
	if p.closed {
		return fmt.Errorf("unable to write %s: package is already finalized", name)
	}
	w, err := p.zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: p.modified,
	})
	if err != nil {
		return fmt.Errorf("unable to create entry %s: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("unable to write entry %s: %w", name, err)
	}
	return nil
}

// Bytes finalizes the archive and returns its content. Package cannot be
// written to afterwards.
func (p *Package) Bytes() ([]byte, error) {
	if !p.closed {
		p.closed = true
		if err := p.zw.Close(); err != nil {
			return nil, fmt.Errorf("unable to finalize archive: %w", err)
		}
	}
	if !p.fixZip {
		return p.buf.Bytes(), nil
	}
	return withoutDataDescriptors(p.buf.Bytes())
}

func withoutDataDescriptors(data []byte) ([]byte, error) {
	r, err := fixzip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("unable to read archive: %w", err)
	}

	var out bytes.Buffer
	w := fixzip.NewWriter(&out)
	for _, file := range r.File {
		// unset data descriptor flag.
		file.Flags &= ^fixzip.FlagDataDescriptor

		// copy zip entry
		if err := w.CopyFile(file); err != nil {
			return nil, fmt.Errorf("unable to copy entry %s: %w", file.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("unable to finalize archive: %w", err)
	}
	return out.Bytes(), nil
}
