// Package notestore persists the note/folder aggregate through a
// storage.Provider and implements every editing operation on top of it.
package notestore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/checksum"
	"github.com/starford/folio/internal/metrics"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/storage"
)

// DefaultKey is the storage key holding the serialized aggregate.
const DefaultKey = "notes-app-data"

// ChangeKind describes what happened to an entity.
type ChangeKind string

const (
	ChangeCreated  ChangeKind = "created"
	ChangeUpdated  ChangeKind = "updated"
	ChangeDeleted  ChangeKind = "deleted"
	ChangeReplaced ChangeKind = "replaced"
)

// Change is emitted after every successful mutation.
type Change struct {
	Kind   ChangeKind
	Entity string // "note", "folder" or "data"
	ID     string
	// Checksum of the blob written by this change.
	Checksum string
}

// Option configures a Store.
type Option func(*Store)

// WithKey overrides the storage key.
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Store) { s.log = log }
}

// WithHook registers a callback run after each successful mutation.
func WithHook(fn func(Change)) Option {
	return func(s *Store) { s.hook = fn }
}

// Store is the single writer of the aggregate. Every operation loads the
// stored blob, applies its change and writes the whole aggregate back.
// Calls are serialized.
type Store struct {
	mu       sync.Mutex
	provider storage.Provider
	key      string
	now      func() time.Time
	log      *slog.Logger
	hook     func(Change)
}

// New creates a Store over p.
func New(p storage.Provider, opts ...Option) *Store {
	s := &Store{
		provider: p,
		key:      DefaultKey,
		now:      time.Now,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the storage key.
func (s *Store) Key() string { return s.key }

// Load returns the current aggregate. Structural violations fail with an
// *IntegrityError; undecodable blobs fall back to default state.
func (s *Store) Load(ctx context.Context) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Save persists data as the whole aggregate. Data that Load would reject
// fails with apperr.ErrInvalid and is not written.
func (s *Store) Save(ctx context.Context, data *models.AppData) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveOp("save", start, err) }()

	if data == nil {
		return fmt.Errorf("notestore: save: nil data: %w", apperr.ErrInvalid)
	}
	if err := validate(data); err != nil {
		return fmt.Errorf("notestore: save: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.save(ctx, data)
	return err
}

func (s *Store) read(ctx context.Context) (*Snapshot, error) {
	raw, ok, err := s.provider.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("notestore: load: %w", err)
	}
	if !ok {
		metrics.ObserveLoad(string(SourceFresh))
		return &Snapshot{Data: models.DefaultAppData(s.now()), Source: SourceFresh}, nil
	}
	data, src := s.decode(raw)
	metrics.ObserveLoad(string(src))
	return &Snapshot{Data: data, Source: src, Checksum: checksum.Sum(raw)}, nil
}

func (s *Store) load(ctx context.Context) (*Snapshot, error) {
	snap, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	if issues := models.Check(snap.Data); len(issues) > 0 {
		return nil, fmt.Errorf("notestore: load: %w", &IntegrityError{Issues: issues})
	}
	return snap, nil
}

// save serializes before writing, so a marshal failure never reaches storage.
func (s *Store) save(ctx context.Context, data *models.AppData) (string, error) {
	if data == nil {
		return "", fmt.Errorf("notestore: save: nil data: %w", apperr.ErrInvalid)
	}
	data.Normalize()
	raw, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("notestore: save: encode: %w", err)
	}
	blob := string(raw)
	if err := s.provider.Set(ctx, s.key, blob); err != nil {
		s.log.Error("save failed", slog.String("key", s.key), slog.Int("bytes", len(raw)), slog.String("error", err.Error()))
		return "", fmt.Errorf("notestore: save: %w", err)
	}
	metrics.ObserveSave(len(raw))
	return checksum.Sum(blob), nil
}

// mutate runs fn against a freshly loaded aggregate and persists the result.
// Nothing is written when fn fails or leaves the aggregate inconsistent.
// A recovered snapshot is never written over; Replace or Repair must
// resolve it first.
func (s *Store) mutate(ctx context.Context, op string, fn func(d *models.AppData) (Change, error)) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveOp(op, start, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load(ctx)
	if err != nil {
		return err
	}
	if snap.Source == SourceRecovered {
		return fmt.Errorf("notestore: %s: stored data is undecodable, replace or repair it first: %w", op, apperr.ErrIntegrity)
	}
	change, err := fn(snap.Data)
	if err != nil {
		return fmt.Errorf("notestore: %s: %w", op, err)
	}
	if err := validate(snap.Data); err != nil {
		return fmt.Errorf("notestore: %s: %w", op, err)
	}
	sum, err := s.save(ctx, snap.Data)
	if err != nil {
		return err
	}
	change.Checksum = sum
	s.emit(change)
	return nil
}

// validate rejects an aggregate that load would refuse to read back.
func validate(d *models.AppData) error {
	d.Normalize()
	if issues := models.Check(d); len(issues) > 0 {
		return fmt.Errorf("%s: %w", models.FormatIssues(issues), apperr.ErrInvalid)
	}
	return nil
}

func (s *Store) emit(c Change) {
	if s.hook != nil {
		s.hook(c)
	}
}

func (s *Store) stamp() models.Timestamp {
	return models.TimestampOf(s.now())
}

// touch refreshes updatedAt without ever moving it backwards.
func (s *Store) touch(n *models.Note) {
	if ts := s.stamp(); ts > n.UpdatedAt {
		n.UpdatedAt = ts
	}
}
