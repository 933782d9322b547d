// Package storage resolves stored template URLs to filesystem paths and
// manages working copies and the generated-documents area.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/rezonia/docgen/internal/model"
)

// Store maps public URLs to paths under a storage root and hands out
// uuid-named paths in a generated-documents area.
type Store struct {
	root         string
	publicPrefix string
	generatedDir string
}

// Option configures the store
type Option func(*Store)

// WithPublicPrefix sets the URL prefix stripped when resolving stored URLs.
func WithPublicPrefix(prefix string) Option {
	return func(s *Store) {
		s.publicPrefix = strings.TrimRight(prefix, "/")
	}
}

// WithGeneratedDir overrides the generated-documents directory name.
func WithGeneratedDir(dir string) Option {
	return func(s *Store) {
		s.generatedDir = dir
	}
}

// New creates a store rooted at root.
func New(root string, opts ...Option) *Store {
	s := &Store{
		root:         root,
		generatedDir: "generated",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Resolve converts a stored URL or relative path into a physical path under
// the root. Prefix-qualified URLs are stripped first so that URLs starting
// with "/" are not mistaken for filesystem paths; only absolute paths
// outside the public prefix pass through untouched.
func (s *Store) Resolve(urlOrPath string) string {
	p := urlOrPath
	switch {
	case s.hasPublicPrefix(p):
		p = strings.TrimPrefix(p, s.publicPrefix)
	case filepath.IsAbs(p):
		return p
	}
	p = strings.TrimLeft(p, "/")
	return filepath.Join(s.root, p)
}

// hasPublicPrefix reports whether p is prefix-qualified on a path-segment
// boundary ("/files/x" matches prefix "/files", "/files2/x" does not).
func (s *Store) hasPublicPrefix(p string) bool {
	if s.publicPrefix == "" || !strings.HasPrefix(p, s.publicPrefix) {
		return false
	}
	rest := p[len(s.publicPrefix):]
	return rest == "" || strings.HasPrefix(rest, "/")
}

// PublicURL converts a physical path under the root back into its exposed
// URL form.
func (s *Store) PublicURL(path string) string {
	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		return path
	}
	return s.publicPrefix + "/" + filepath.ToSlash(rel)
}

// WorkingCopy copies the template at path into a private temp file and
// returns the copy's path plus a cleanup func. The canonical template is
// never mutated; all substitution happens on the copy.
func (s *Store) WorkingCopy(path string) (string, func(), error) {
	src, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, model.NewTemplateNotFoundError(path, err)
		}
		return "", nil, fmt.Errorf("open template: %w", err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp("", "docgen-work-*.docx")
	if err != nil {
		return "", nil, fmt.Errorf("create working copy: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	if _, err := io.Copy(tmp, src); err != nil {
		_ = tmp.Close()
		cleanup()
		return "", nil, fmt.Errorf("copy template: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("close working copy: %w", err)
	}

	return tmpPath, cleanup, nil
}

// GeneratedPath returns a fresh uuid-named path in the generated area,
// creating the directory if needed.
func (s *Store) GeneratedPath(ext string) (string, error) {
	dir := filepath.Join(s.root, s.generatedDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create generated dir: %w", err)
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return filepath.Join(dir, uuid.NewString()+ext), nil
}

// Promote moves a fully written working file to its final path by rename,
// falling back to copy+remove across filesystems. Downloaders never observe
// a partially written file.
func (s *Store) Promote(workPath, finalPath string) error {
	if err := os.Rename(workPath, finalPath); err == nil {
		return nil
	}

	src, err := os.Open(workPath)
	if err != nil {
		return model.NewPartialWriteError(finalPath, err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp(filepath.Dir(finalPath), ".promote-*.tmp")
	if err != nil {
		return model.NewPartialWriteError(finalPath, err)
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, src); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return model.NewPartialWriteError(finalPath, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return model.NewPartialWriteError(finalPath, err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		_ = os.Remove(tmpPath)
		return model.NewPartialWriteError(finalPath, err)
	}
	_ = os.Remove(workPath)
	return nil
}
