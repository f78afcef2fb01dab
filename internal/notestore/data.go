package notestore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/checksum"
	"github.com/starford/folio/internal/metrics"
	"github.com/starford/folio/internal/models"
)

// Replace overwrites the whole aggregate. ifMatch is an If-Match style
// precondition on the checksum of the stored blob; when it fails
// apperr.ErrConflict is returned.
func (s *Store) Replace(ctx context.Context, data *models.AppData, ifMatch string) (snap *Snapshot, err error) {
	start := time.Now()
	defer func() { metrics.ObserveOp("replace", start, err) }()

	if data == nil {
		return nil, fmt.Errorf("notestore: replace: nil data: %w", apperr.ErrInvalid)
	}
	data = data.Clone()
	data.Normalize()
	if issues := models.Check(data); len(issues) > 0 {
		return nil, fmt.Errorf("notestore: replace: %w", &IntegrityError{Issues: issues})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	if !checksum.Match(ifMatch, cur.Checksum) {
		return nil, fmt.Errorf("notestore: replace: %w", apperr.ErrConflict)
	}
	sum, err := s.save(ctx, data)
	if err != nil {
		return nil, err
	}
	s.emit(Change{Kind: ChangeReplaced, Entity: "data", Checksum: sum})
	return &Snapshot{Data: data, Source: SourceCurrent, Checksum: sum}, nil
}

// Check reports integrity issues in the stored aggregate without failing on them.
func (s *Store) Check(ctx context.Context) ([]models.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	if snap.Source == SourceRecovered {
		return []models.Issue{s.undecodable()}, nil
	}
	return models.Check(snap.Data), nil
}

func (s *Store) undecodable() models.Issue {
	return models.Issue{
		Kind: models.IssueUndecodable, Entity: "data", ID: s.key,
		Detail: "stored blob is undecodable, reset to default state",
	}
}

// Repair fixes every integrity issue in the stored aggregate and persists
// the result. An undecodable blob is overwritten with default state.
// Nothing is written when the aggregate is already consistent.
func (s *Store) Repair(ctx context.Context) (issues []models.Issue, err error) {
	start := time.Now()
	defer func() { metrics.ObserveOp("repair", start, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	issues = models.Repair(snap.Data, s.now())
	if snap.Source == SourceRecovered {
		issues = append([]models.Issue{s.undecodable()}, issues...)
	}
	if len(issues) == 0 {
		return nil, nil
	}
	sum, err := s.save(ctx, snap.Data)
	if err != nil {
		return nil, err
	}
	s.log.Info("repaired stored data", slog.String("key", s.key), slog.Int("issues", len(issues)))
	s.emit(Change{Kind: ChangeReplaced, Entity: "data", Checksum: sum})
	return issues, nil
}
