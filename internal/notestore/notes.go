package notestore

import (
	"context"
	"fmt"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/blocks"
	"github.com/starford/folio/internal/models"
)

// NotePatch holds the fields UpdateNote merges. Nil fields are left alone.
type NotePatch struct {
	Title    *string
	Nodes    *blocks.Sequence
	FolderID *string
	Tags     *[]string
}

// GetNote returns a copy of the note with id.
func (s *Store) GetNote(ctx context.Context, id string) (*models.Note, error) {
	snap, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	n := snap.Data.FindNote(id)
	if n == nil {
		return nil, fmt.Errorf("notestore: get note %s: %w", id, apperr.ErrNotFound)
	}
	return n, nil
}

// AddNote prepends note so the newest note is listed first.
func (s *Store) AddNote(ctx context.Context, note models.Note) error {
	return s.mutate(ctx, "add_note", func(d *models.AppData) (Change, error) {
		if note.ID == "" {
			return Change{}, fmt.Errorf("note id is empty: %w", apperr.ErrInvalid)
		}
		if d.FindNote(note.ID) != nil {
			return Change{}, fmt.Errorf("note %s: %w", note.ID, apperr.ErrAlreadyExists)
		}
		if d.FindFolder(note.FolderID) == nil {
			return Change{}, fmt.Errorf("folder %s: %w", note.FolderID, apperr.ErrNotFound)
		}
		if note.Tags == nil {
			note.Tags = []string{}
		}
		d.Notes = append([]models.Note{note}, d.Notes...)
		return Change{Kind: ChangeCreated, Entity: "note", ID: note.ID}, nil
	})
}

// CreateNote adds an untitled note with one empty text block to folderID
// ("" means the root folder).
func (s *Store) CreateNote(ctx context.Context, folderID string) (*models.Note, error) {
	if folderID == "" {
		folderID = models.RootFolderID
	}
	note := models.NewNote(folderID, s.now())
	if err := s.AddNote(ctx, note); err != nil {
		return nil, err
	}
	return &note, nil
}

// UpdateNote merges patch into the note with id. createdAt and id never
// change; updatedAt never moves backwards. Tags are trimmed and deduplicated
// the way AddTag does it. A patch that leaves the note inconsistent, such as
// a malformed table or repeated block ids, fails with apperr.ErrInvalid.
func (s *Store) UpdateNote(ctx context.Context, id string, patch NotePatch) (*models.Note, error) {
	var out models.Note
	err := s.mutate(ctx, "update_note", func(d *models.AppData) (Change, error) {
		n := d.FindNote(id)
		if n == nil {
			return Change{}, fmt.Errorf("note %s: %w", id, apperr.ErrNotFound)
		}
		if patch.FolderID != nil {
			if d.FindFolder(*patch.FolderID) == nil {
				return Change{}, fmt.Errorf("folder %s: %w", *patch.FolderID, apperr.ErrNotFound)
			}
			n.FolderID = *patch.FolderID
		}
		if patch.Title != nil {
			n.Title = *patch.Title
		}
		if patch.Nodes != nil {
			n.Nodes = *patch.Nodes
		}
		if patch.Tags != nil {
			n.Tags = []string{}
			for _, tag := range *patch.Tags {
				n.AddTag(tag)
			}
		}
		s.touch(n)
		out = *n
		return Change{Kind: ChangeUpdated, Entity: "note", ID: id}, nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// MutateNote applies fn to the note with id and persists it with a fresh
// updatedAt. Nothing is written when fn fails.
func (s *Store) MutateNote(ctx context.Context, id string, fn func(n *models.Note) error) (*models.Note, error) {
	var out models.Note
	err := s.mutate(ctx, "mutate_note", func(d *models.AppData) (Change, error) {
		n := d.FindNote(id)
		if n == nil {
			return Change{}, fmt.Errorf("note %s: %w", id, apperr.ErrNotFound)
		}
		if err := fn(n); err != nil {
			return Change{}, err
		}
		s.touch(n)
		out = *n
		return Change{Kind: ChangeUpdated, Entity: "note", ID: id}, nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteNote removes the note with id.
func (s *Store) DeleteNote(ctx context.Context, id string) error {
	return s.mutate(ctx, "delete_note", func(d *models.AppData) (Change, error) {
		for i := range d.Notes {
			if d.Notes[i].ID == id {
				d.Notes = append(d.Notes[:i], d.Notes[i+1:]...)
				return Change{Kind: ChangeDeleted, Entity: "note", ID: id}, nil
			}
		}
		return Change{}, fmt.Errorf("note %s: %w", id, apperr.ErrNotFound)
	})
}
