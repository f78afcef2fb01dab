package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/starford/folio/internal/apperr"
)

// TempPrefix marks in-flight writes. Watchers ignore files with this prefix.
const TempPrefix = ".folio-tmp-"

// FileExt is appended to a key to form its file name.
const FileExt = ".json"

// FS implements Provider with one file per key in a directory.
type FS struct {
	root string // absolute path to data directory
}

// NewFS creates a new FS provider rooted at dir, creating it if needed.
func NewFS(dir string) (*FS, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("storage: mkdir root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute data directory.
func (f *FS) Root() string { return f.root }

// Path returns the file backing key.
func (f *FS) Path(key string) string {
	return filepath.Join(f.root, key+FileExt)
}

// KeyOf maps a file name in the data directory back to its key.
// ok is false for temp files and foreign files.
func KeyOf(name string) (string, bool) {
	base := filepath.Base(name)
	if strings.HasPrefix(base, TempPrefix) || !strings.HasSuffix(base, FileExt) {
		return "", false
	}
	return strings.TrimSuffix(base, FileExt), true
}

// Get reads the file for key.
func (f *FS) Get(_ context.Context, key string) (string, bool, error) {
	if err := validKey(key); err != nil {
		return "", false, err
	}
	data, err := os.ReadFile(f.Path(key))
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("storage: read %s: %w", key, err)
	}
	return string(data), true, nil
}

// Set atomically writes value: tmp file → fsync → rename. A failed write
// leaves the previous value in place.
func (f *FS) Set(_ context.Context, key, value string) error {
	if err := validKey(key); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.root, TempPrefix+"*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", quotaErr(err))
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.WriteString(value); err != nil {
		return fmt.Errorf("storage: write temp: %w", quotaErr(err))
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", quotaErr(err))
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", quotaErr(err))
	}
	if err := os.Rename(tmpName, f.Path(key)); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}

// Close is a no-op for FS.
func (f *FS) Close() error { return nil }

// quotaErr tags disk-full errors so callers can match apperr.ErrQuotaExceeded.
func quotaErr(err error) error {
	if errors.Is(err, syscall.ENOSPC) || errors.Is(err, syscall.EDQUOT) {
		return fmt.Errorf("%w: %w", apperr.ErrQuotaExceeded, err)
	}
	return err
}
