package notestore

import (
	"context"
	"fmt"
	"strings"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/models"
)

// FolderPatch holds the fields UpdateFolder merges. Nil fields are left
// alone; a ParentID pointing at "" moves the folder to the top level.
type FolderPatch struct {
	Name     *string
	Color    *string
	ParentID *string
}

// DeleteFolderResult reports what a cascading delete touched.
type DeleteFolderResult struct {
	RemovedFolders []string `json:"removedFolders"`
	MovedNotes     []string `json:"movedNotes"`
}

// GetFolder returns a copy of the folder with id.
func (s *Store) GetFolder(ctx context.Context, id string) (*models.Folder, error) {
	snap, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	f := snap.Data.FindFolder(id)
	if f == nil {
		return nil, fmt.Errorf("notestore: get folder %s: %w", id, apperr.ErrNotFound)
	}
	return f, nil
}

// AddFolder appends folder. Its parent, when set, must exist.
func (s *Store) AddFolder(ctx context.Context, folder models.Folder) error {
	return s.mutate(ctx, "add_folder", func(d *models.AppData) (Change, error) {
		if folder.ID == "" {
			return Change{}, fmt.Errorf("folder id is empty: %w", apperr.ErrInvalid)
		}
		if d.FindFolder(folder.ID) != nil {
			return Change{}, fmt.Errorf("folder %s: %w", folder.ID, apperr.ErrAlreadyExists)
		}
		if folder.ParentID != nil && d.FindFolder(*folder.ParentID) == nil {
			return Change{}, fmt.Errorf("parent folder %s: %w", *folder.ParentID, apperr.ErrNotFound)
		}
		d.Folders = append(d.Folders, folder)
		return Change{Kind: ChangeCreated, Entity: "folder", ID: folder.ID}, nil
	})
}

// CreateFolder adds a folder named name under parentID ("" for top level).
func (s *Store) CreateFolder(ctx context.Context, name, parentID string) (*models.Folder, error) {
	folder := models.NewFolder(name, models.StringPtr(parentID), s.now())
	if err := s.AddFolder(ctx, folder); err != nil {
		return nil, err
	}
	return &folder, nil
}

// UpdateFolder merges patch into the folder with id. Names are trimmed and
// must not end up empty. Moves that would create a cycle are rejected.
func (s *Store) UpdateFolder(ctx context.Context, id string, patch FolderPatch) (*models.Folder, error) {
	var out models.Folder
	err := s.mutate(ctx, "update_folder", func(d *models.AppData) (Change, error) {
		f := d.FindFolder(id)
		if f == nil {
			return Change{}, fmt.Errorf("folder %s: %w", id, apperr.ErrNotFound)
		}
		if patch.ParentID != nil {
			parent := *patch.ParentID
			if id == models.RootFolderID && parent != "" {
				return Change{}, fmt.Errorf("move folder %s: %w", id, apperr.ErrRootFolder)
			}
			if parent != "" {
				if d.FindFolder(parent) == nil {
					return Change{}, fmt.Errorf("parent folder %s: %w", parent, apperr.ErrNotFound)
				}
				if _, inside := models.Descendants(id, d.Folders)[parent]; inside {
					return Change{}, fmt.Errorf("move folder %s under its own subtree: %w", id, apperr.ErrInvalid)
				}
			}
			f.ParentID = models.StringPtr(parent)
		}
		if patch.Name != nil {
			name := strings.TrimSpace(*patch.Name)
			if name == "" {
				return Change{}, fmt.Errorf("rename folder %s: empty name: %w", id, apperr.ErrInvalid)
			}
			f.Name = name
		}
		if patch.Color != nil {
			f.Color = *patch.Color
		}
		out = f.Clone()
		return Change{Kind: ChangeUpdated, Entity: "folder", ID: id}, nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteFolder removes the folder with id and every folder beneath it. Notes
// filed anywhere in that subtree move to the root folder; none are deleted.
// The root folder is not special-cased here, see GuardDeleteFolder.
func (s *Store) DeleteFolder(ctx context.Context, id string) (*DeleteFolderResult, error) {
	res := &DeleteFolderResult{RemovedFolders: []string{}, MovedNotes: []string{}}
	err := s.mutate(ctx, "delete_folder", func(d *models.AppData) (Change, error) {
		if d.FindFolder(id) == nil {
			return Change{}, fmt.Errorf("folder %s: %w", id, apperr.ErrNotFound)
		}
		closure := models.Descendants(id, d.Folders)

		for i := range d.Notes {
			if _, in := closure[d.Notes[i].FolderID]; in {
				d.Notes[i].FolderID = models.RootFolderID
				res.MovedNotes = append(res.MovedNotes, d.Notes[i].ID)
			}
		}

		kept := d.Folders[:0]
		for _, f := range d.Folders {
			if _, in := closure[f.ID]; in {
				res.RemovedFolders = append(res.RemovedFolders, f.ID)
				continue
			}
			kept = append(kept, f)
		}
		d.Folders = kept
		return Change{Kind: ChangeDeleted, Entity: "folder", ID: id}, nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
