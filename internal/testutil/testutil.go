// Package testutil provides shared test helpers for setting up stores.
package testutil

import (
	"io"
	"log/slog"
	"testing"

	"github.com/starford/folio/internal/notestore"
	"github.com/starford/folio/internal/storage"
)

// Logger returns a logger that drops everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestFS creates a temporary data directory with an fs provider.
func TestFS(t *testing.T) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	fs, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, fs
}

// TestStore returns a store over p, or over a fresh memory provider when p
// is nil. Logging is discarded.
func TestStore(t *testing.T, p storage.Provider, opts ...notestore.Option) *notestore.Store {
	t.Helper()
	if p == nil {
		p = storage.NewMemory()
	}
	t.Cleanup(func() { _ = p.Close() })
	return notestore.New(p, append([]notestore.Option{notestore.WithLogger(Logger())}, opts...)...)
}
