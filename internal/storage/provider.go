// Package storage defines the string key/value primitive the note store
// persists through, plus its backends.
package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/starford/folio/internal/apperr"
)

// Provider is a durable string key/value store.
type Provider interface {
	// Get returns the value for key. ok is false when nothing is stored.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Set replaces the value for key. Capacity failures wrap apperr.ErrQuotaExceeded.
	Set(ctx context.Context, key, value string) error
	// Close releases the backend.
	Close() error
}

// validKey rejects keys that cannot be used as a single file name.
func validKey(key string) error {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) || strings.ContainsRune(key, 0) {
		return fmt.Errorf("storage: invalid key %q: %w", key, apperr.ErrInvalid)
	}
	return nil
}
