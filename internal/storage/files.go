// Package storage persists generated report files on local disk and serves
// them back for download.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/helixir/citation-contact-service/internal/domain"
)

// FileStore writes report files into a single flat directory. File names
// are reduced to their base name so callers cannot escape the directory.
type FileStore struct {
	dir    string
	logger zerolog.Logger
}

// NewFileStore creates the output directory if needed and returns a store
// rooted at it.
func NewFileStore(dir string, logger zerolog.Logger) (*FileStore, error) {
	if dir == "" {
		return nil, domain.NewValidationError("dir", "output directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory %s: %w", dir, err)
	}
	return &FileStore{
		dir:    dir,
		logger: logger.With().Str("component", "file-store").Logger(),
	}, nil
}

// Dir returns the store's root directory.
func (s *FileStore) Dir() string {
	return s.dir
}

// Save writes the reader's contents under the given name and returns the
// stored file's path.
func (s *FileStore) Save(name string, r io.Reader) (string, error) {
	clean, err := s.safeName(name)
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, clean)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}

	s.logger.Debug().Str("file", clean).Msg("report saved")
	return path, nil
}

// Open returns a reader over a previously saved file. A missing file maps
// to a NotFoundError so the HTTP layer can answer 404.
func (s *FileStore) Open(name string) (io.ReadCloser, error) {
	clean, err := s.safeName(name)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(s.dir, clean))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.NewNotFoundError("file", clean)
		}
		return nil, fmt.Errorf("open %s: %w", clean, err)
	}
	return f, nil
}

// safeName rejects names that would resolve outside the store directory.
func (s *FileStore) safeName(name string) (string, error) {
	clean := filepath.Base(strings.TrimSpace(name))
	if clean == "" || clean == "." || clean == ".." || strings.ContainsAny(clean, `/\`) {
		return "", domain.NewValidationError("filename", "invalid file name")
	}
	return clean, nil
}
