package notestore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/starford/folio/internal/models"
)

// Source tells how a Snapshot was obtained.
type Source string

const (
	// SourceFresh: nothing stored yet, default state.
	SourceFresh Source = "fresh"
	// SourceCurrent: decoded from the current layout.
	SourceCurrent Source = "current"
	// SourceLegacy: a bare note array migrated in memory.
	SourceLegacy Source = "legacy"
	// SourceRecovered: the stored blob was undecodable, default state.
	// Mutations refuse to overwrite it; Replace or Repair resets it.
	SourceRecovered Source = "recovered"
)

// Snapshot is one loaded view of the aggregate.
type Snapshot struct {
	Data   *models.AppData
	Source Source
	// Checksum of the stored blob, "" when nothing is stored.
	Checksum string
}

// decode turns a stored blob into an aggregate. It never fails: undecodable
// input yields default state with SourceRecovered.
func (s *Store) decode(raw string) (*models.AppData, Source) {
	trimmed := bytes.TrimSpace([]byte(raw))
	if len(trimmed) == 0 {
		return models.DefaultAppData(s.now()), SourceFresh
	}

	if trimmed[0] == '[' {
		notes, err := decodeLegacy(trimmed)
		if err != nil {
			s.recovered(err)
			return models.DefaultAppData(s.now()), SourceRecovered
		}
		data := models.DefaultAppData(s.now())
		data.Notes = notes
		data.Normalize()
		s.log.Info("migrated legacy note array", slog.String("key", s.key), slog.Int("notes", len(notes)))
		return data, SourceLegacy
	}

	if trimmed[0] != '{' {
		s.recovered(fmt.Errorf("unexpected leading byte %q", trimmed[0]))
		return models.DefaultAppData(s.now()), SourceRecovered
	}

	var data models.AppData
	if err := json.Unmarshal(trimmed, &data); err != nil {
		s.recovered(err)
		return models.DefaultAppData(s.now()), SourceRecovered
	}
	data.Normalize()
	return &data, SourceCurrent
}

// decodeLegacy reads the pre-folder layout: a bare array of notes without
// folderId or tags.
func decodeLegacy(raw []byte) ([]models.Note, error) {
	var notes []models.Note
	if err := json.Unmarshal(raw, &notes); err != nil {
		return nil, err
	}
	for i := range notes {
		if notes[i].FolderID == "" {
			notes[i].FolderID = models.RootFolderID
		}
		if notes[i].Tags == nil {
			notes[i].Tags = []string{}
		}
	}
	return notes, nil
}

func (s *Store) recovered(err error) {
	s.log.Warn("stored data is undecodable, falling back to default state",
		slog.String("key", s.key),
		slog.String("error", err.Error()),
	)
}
