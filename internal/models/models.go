// Package models defines the note/folder document model and its pure
// transformations. Nothing here performs I/O; the store composes these
// functions over a loaded AppData.
package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/starford/folio/internal/blocks"
)

// Reserved identifiers and default names.
const (
	RootFolderID      = "default-folder"
	RootFolderName    = "Notes"
	DefaultNoteTitle  = "Untitled Note"
	DefaultFolderName = "New Folder"
)

// Timestamp is a point in time in milliseconds since the Unix epoch.
type Timestamp int64

// TimestampOf converts t to a Timestamp.
func TimestampOf(t time.Time) Timestamp {
	return Timestamp(t.UnixMilli())
}

// Time converts ts back to a time.Time.
func (ts Timestamp) Time() time.Time {
	return time.UnixMilli(int64(ts))
}

// Note is a titled, ordered sequence of blocks filed under one folder.
type Note struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Nodes     blocks.Sequence `json:"nodes"`
	CreatedAt Timestamp       `json:"createdAt"`
	UpdatedAt Timestamp       `json:"updatedAt"`
	FolderID  string          `json:"folderId"`
	Tags      []string        `json:"tags"`
}

// Folder is a node of the folder forest. A nil ParentID marks a root.
type Folder struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ParentID  *string   `json:"parentId"`
	CreatedAt Timestamp `json:"createdAt"`
	Color     string    `json:"color,omitempty"`
}

// AppData is the whole persisted document graph.
type AppData struct {
	Notes   []Note   `json:"notes"`
	Folders []Folder `json:"folders"`
}

// NewID returns a fresh note or folder identifier.
func NewID() string {
	return uuid.NewString()
}

// NewNote returns an untitled note holding one empty text block.
func NewNote(folderID string, now time.Time) Note {
	ts := TimestampOf(now)
	return Note{
		ID:        NewID(),
		Title:     DefaultNoteTitle,
		Nodes:     blocks.Sequence{blocks.New(blocks.KindText)},
		CreatedAt: ts,
		UpdatedAt: ts,
		FolderID:  folderID,
		Tags:      []string{},
	}
}

// NewFolder returns a folder under parentID (nil for a root).
func NewFolder(name string, parentID *string, now time.Time) Folder {
	if name == "" {
		name = DefaultFolderName
	}
	return Folder{
		ID:        NewID(),
		Name:      name,
		ParentID:  cloneString(parentID),
		CreatedAt: TimestampOf(now),
	}
}

// RootFolder returns the reserved root folder.
func RootFolder(now time.Time) Folder {
	return Folder{
		ID:        RootFolderID,
		Name:      RootFolderName,
		CreatedAt: TimestampOf(now),
	}
}

// DefaultAppData is the state of a first run: no notes, only the root folder.
func DefaultAppData(now time.Time) *AppData {
	return &AppData{
		Notes:   []Note{},
		Folders: []Folder{RootFolder(now)},
	}
}

// IsRoot reports whether the folder is a root of the forest.
func (f *Folder) IsRoot() bool {
	return f.ParentID == nil
}

// Parent returns the parent id, or "" for a root.
func (f *Folder) Parent() string {
	if f.ParentID == nil {
		return ""
	}
	return *f.ParentID
}

// Clone returns a deep copy of the note, keeping every id.
func (n *Note) Clone() Note {
	c := *n
	c.Nodes = n.Nodes.Copy()
	c.Tags = append([]string{}, n.Tags...)
	return c
}

// Clone returns a deep copy of the folder.
func (f *Folder) Clone() Folder {
	c := *f
	c.ParentID = cloneString(f.ParentID)
	return c
}

// Clone returns a deep copy of the aggregate.
func (d *AppData) Clone() *AppData {
	out := &AppData{
		Notes:   make([]Note, len(d.Notes)),
		Folders: make([]Folder, len(d.Folders)),
	}
	for i := range d.Notes {
		out.Notes[i] = d.Notes[i].Clone()
	}
	for i := range d.Folders {
		out.Folders[i] = d.Folders[i].Clone()
	}
	return out
}

// FindNote returns a pointer into d.Notes, or nil.
func (d *AppData) FindNote(id string) *Note {
	for i := range d.Notes {
		if d.Notes[i].ID == id {
			return &d.Notes[i]
		}
	}
	return nil
}

// FindFolder returns a pointer into d.Folders, or nil.
func (d *AppData) FindFolder(id string) *Folder {
	for i := range d.Folders {
		if d.Folders[i].ID == id {
			return &d.Folders[i]
		}
	}
	return nil
}

// Normalize replaces nil collections with empty ones so the aggregate always
// encodes arrays, never null.
func (d *AppData) Normalize() {
	if d.Notes == nil {
		d.Notes = []Note{}
	}
	if d.Folders == nil {
		d.Folders = []Folder{}
	}
	for i := range d.Notes {
		if d.Notes[i].Tags == nil {
			d.Notes[i].Tags = []string{}
		}
		if d.Notes[i].Nodes == nil {
			d.Notes[i].Nodes = blocks.Sequence{}
		}
	}
}

// StringPtr returns a pointer to s, or nil for "".
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	s := *p
	return &s
}
