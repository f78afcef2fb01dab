package storage

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/starford/folio/internal/apperr"
)

// Driver names accepted by Open.
const (
	DriverFS     = "fs"
	DriverSQLite = "sqlite"
	DriverBadger = "badger"
	DriverMemory = "memory"
)

// Drivers lists every supported driver name.
func Drivers() []string {
	return []string{DriverFS, DriverSQLite, DriverBadger, DriverMemory}
}

// Options selects and configures a backend.
type Options struct {
	Driver     string
	Path       string
	QuotaBytes int
	SyncWrites bool
	Logger     *slog.Logger
}

// Open creates the Provider named by opts.Driver, wrapped in a quota when
// opts.QuotaBytes is set.
func Open(opts Options) (Provider, error) {
	var (
		p   Provider
		err error
	)
	switch opts.Driver {
	case DriverFS, "":
		p, err = NewFS(opts.Path)
	case DriverSQLite:
		p, err = OpenSQLite(filepath.Join(opts.Path, "folio.db"))
	case DriverBadger:
		p, err = OpenBadger(BadgerConfig{Path: opts.Path, SyncWrites: opts.SyncWrites, Logger: opts.Logger})
	case DriverMemory:
		p = NewMemory()
	default:
		return nil, fmt.Errorf("storage: unknown driver %q: %w", opts.Driver, apperr.ErrInvalid)
	}
	if err != nil {
		return nil, err
	}
	return WithQuota(p, opts.QuotaBytes), nil
}
