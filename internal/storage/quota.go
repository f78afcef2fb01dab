package storage

import (
	"context"
	"fmt"

	"github.com/starford/folio/internal/apperr"
)

// Quota wraps a Provider and rejects values larger than a byte limit,
// the way browser storage refuses writes past its capacity.
type Quota struct {
	Provider
	max int
}

// WithQuota limits every stored value to maxBytes. A non-positive limit
// returns p unchanged.
func WithQuota(p Provider, maxBytes int) Provider {
	if maxBytes <= 0 {
		return p
	}
	return &Quota{Provider: p, max: maxBytes}
}

// Set refuses oversized values without touching the stored one.
func (q *Quota) Set(ctx context.Context, key, value string) error {
	if len(value) > q.max {
		return fmt.Errorf("storage: set %s: %d bytes over limit %d: %w", key, len(value), q.max, apperr.ErrQuotaExceeded)
	}
	return q.Provider.Set(ctx, key, value)
}

// Unwrap returns the wrapped provider.
func (q *Quota) Unwrap() Provider { return q.Provider }
