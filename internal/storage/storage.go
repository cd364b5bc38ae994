package storage

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Storage keeps uploaded logbooks and finished forms on disk, one
// subdirectory per day under each of uploads/ and forms/.
type Storage struct {
	root string
}

// New creates a new Storage instance rooted at root
func New(root string) *Storage {
	return &Storage{root: root}
}

// Start creates the directory layout
func (s *Storage) Start() error {
	for _, dir := range []string{s.uploadsDir(), s.formsDir()} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create storage directory: %w", err)
		}
	}
	return nil
}

func (s *Storage) uploadsDir() string { return filepath.Join(s.root, "uploads") }
func (s *Storage) formsDir() string   { return filepath.Join(s.root, "forms") }

func dayDir(parent string) string {
	return filepath.Join(parent, time.Now().UTC().Format("2006-01-02"))
}

// sanitizeName keeps only the base name and replaces path-hostile runes,
// so a client-supplied file name cannot escape the day directory.
func sanitizeName(name string) string {
	name = filepath.Base(name)
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, name)
	if name == "" || name == "." || name == ".." {
		name = "upload"
	}
	return name
}

// SaveUpload writes an uploaded logbook under today's upload directory and
// returns the stored path
func (s *Storage) SaveUpload(jobID, fileName string, r io.Reader) (string, error) {
	dir := dayDir(s.uploadsDir())
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s_%s", jobID, sanitizeName(fileName)))
	//nolint:gosec // path is built from a generated job id and a sanitized name
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o640)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write upload: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close upload file: %w", err)
	}
	return path, nil
}

// FormPath returns the output path for a job's filled form, creating today's
// form directory
func (s *Storage) FormPath(jobID string) (string, error) {
	dir := dayDir(s.formsDir())
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create form directory: %w", err)
	}
	return filepath.Join(dir, fmt.Sprintf("%s.xlsx", jobID)), nil
}

// Open opens a stored file for reading. The path must live under the
// storage root.
func (s *Storage) Open(path string) (*os.File, error) {
	absRoot, err := filepath.Abs(s.root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage root: %w", err)
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}
	if !strings.HasPrefix(absPath, absRoot+string(filepath.Separator)) {
		return nil, fmt.Errorf("path %s is outside the storage root", path)
	}
	return os.Open(absPath) //nolint:gosec // confined to the storage root above
}

// CompressOld gzips upload files from day directories older than cutoff.
// Finished forms are left uncompressed so downloads stay direct.
func (s *Storage) CompressOld(cutoff time.Time) error {
	entries, err := os.ReadDir(s.uploadsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read uploads directory: %w", err)
	}

	cutoffDay := cutoff.UTC().Format("2006-01-02")
	for _, entry := range entries {
		if !entry.IsDir() || entry.Name() >= cutoffDay {
			continue
		}
		if err := s.compressDir(filepath.Join(s.uploadsDir(), entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

func (s *Storage) compressDir(dir string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read day directory: %w", err)
	}
	for _, f := range files {
		if f.IsDir() || strings.HasSuffix(f.Name(), ".gz") {
			continue
		}
		if err := compressFile(filepath.Join(dir, f.Name())); err != nil {
			return fmt.Errorf("failed to compress file: %w", err)
		}
	}
	return nil
}

// compressFile compresses a file using gzip and removes the original
func compressFile(path string) error {
	source, err := os.Open(path) //nolint:gosec // path comes from our own directory walk
	if err != nil {
		return err
	}
	defer source.Close()

	target, err := os.Create(path + ".gz")
	if err != nil {
		return err
	}
	defer target.Close()

	gw := gzip.NewWriter(target)
	if _, err := io.Copy(gw, source); err != nil {
		gw.Close()
		return err
	}
	if err := gw.Close(); err != nil {
		return err
	}

	return os.Remove(path)
}
