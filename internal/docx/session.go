// Package docx provides read/write access to OOXML (.docx) archives and a
// flattened view of their run-level text nodes.
//
// A DOCX file is a ZIP archive of XML parts. Session opens an archive, lazily
// parses individual parts into etree documents, tracks which parts were
// modified, and saves atomically (write to temp file, then rename) so a
// partially written archive is never observable at the output path.
package docx

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/beevik/etree"

	"github.com/rezonia/docgen/internal/model"
)

// DocumentPart is the main text part of a DOCX archive.
const DocumentPart = "word/document.xml"

var errPartNotFound = errors.New("part not found in archive")

type part struct {
	raw []byte
	doc *etree.Document
}

// Session is a mutable view over one DOCX archive.
type Session struct {
	path  string
	parts map[string]*part
	dirty map[string]bool
}

// Open reads the archive at path into memory and returns a Session.
func Open(path string) (*Session, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, model.NewTemplateNotFoundError(path, err)
		}
		return nil, model.NewMalformedDocumentError(path, "not a readable zip archive", err)
	}
	defer zr.Close()

	parts := make(map[string]*part, len(zr.File))
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open entry %s: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read entry %s: %w", f.Name, err)
		}
		parts[f.Name] = &part{raw: data}
	}

	return &Session{
		path:  path,
		parts: parts,
		dirty: make(map[string]bool),
	}, nil
}

// Part returns the parsed XML document for a part path such as
// "word/document.xml", parsing on first access.
func (s *Session) Part(name string) (*etree.Document, error) {
	p, ok := s.parts[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errPartNotFound, name)
	}
	if p.doc != nil {
		return p.doc, nil
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(p.raw); err != nil {
		return nil, model.NewMalformedDocumentError(name, "xml parse failed", err)
	}
	p.doc = doc
	return doc, nil
}

// RawPart returns the raw bytes of a part without XML parsing.
func (s *Session) RawPart(name string) ([]byte, error) {
	p, ok := s.parts[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errPartNotFound, name)
	}
	return p.raw, nil
}

// SetRawPart replaces a part's raw bytes and drops any cached parse.
func (s *Session) SetRawPart(name string, data []byte) {
	s.parts[name] = &part{raw: data}
	s.dirty[name] = true
}

// MarkDirty marks a parsed part as modified so Save re-serializes it from
// its etree document.
func (s *Session) MarkDirty(name string) {
	s.dirty[name] = true
}

// ListParts returns all part names, sorted.
func (s *Session) ListParts() []string {
	names := make([]string, 0, len(s.parts))
	for name := range s.parts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TextParts returns the document part plus any header and footer parts
// present in the archive, document part first.
func (s *Session) TextParts() []string {
	names := []string{DocumentPart}
	for _, name := range s.ListParts() {
		if isHeaderFooter(name) {
			names = append(names, name)
		}
	}
	return names
}

func isHeaderFooter(name string) bool {
	return (strings.HasPrefix(name, "word/header") || strings.HasPrefix(name, "word/footer")) &&
		strings.HasSuffix(name, ".xml")
}

// Save writes the archive to outputPath. Unmodified parts are copied
// verbatim; dirty parts are serialized from their cached document. The write
// goes to a temp file in the destination directory and is promoted by rename.
func (s *Session) Save(outputPath string) error {
	tmp, err := os.CreateTemp(filepath.Dir(outputPath), ".docgen-*.tmp")
	if err != nil {
		return model.NewPartialWriteError(outputPath, err)
	}
	tmpPath := tmp.Name()

	fail := func(err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return model.NewPartialWriteError(outputPath, err)
	}

	zw := zip.NewWriter(tmp)
	for _, name := range s.ListParts() {
		w, err := zw.Create(name)
		if err != nil {
			return fail(fmt.Errorf("create entry %s: %w", name, err))
		}

		data := s.parts[name].raw
		if s.dirty[name] && s.parts[name].doc != nil {
			data, err = s.parts[name].doc.WriteToBytes()
			if err != nil {
				return fail(fmt.Errorf("serialize %s: %w", name, err))
			}
		}
		if _, err := w.Write(data); err != nil {
			return fail(fmt.Errorf("write %s: %w", name, err))
		}
	}

	if err := zw.Close(); err != nil {
		return fail(fmt.Errorf("close zip: %w", err))
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return model.NewPartialWriteError(outputPath, err)
	}
	if err := os.Rename(tmpPath, outputPath); err != nil {
		_ = os.Remove(tmpPath)
		return model.NewPartialWriteError(outputPath, err)
	}
	return nil
}

// SaveInPlace saves the archive back to the path it was opened from.
func (s *Session) SaveInPlace() error {
	return s.Save(s.path)
}

// Path returns the path the session was opened from.
func (s *Session) Path() string {
	return s.path
}
