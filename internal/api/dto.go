package api

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/folio/internal/blocks"
	"github.com/starford/folio/internal/models"
)

const (
	maxTitleLen = 500
	maxNameLen  = 200
	maxTagLen   = 100

	maxBlockText = 10_000
)

// CreateNoteRequest is the body of POST /notes. All fields are optional.
type CreateNoteRequest struct {
	FolderID string   `json:"folderId"`
	Title    string   `json:"title"`
	Tags     []string `json:"tags"`
}

func (r CreateNoteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Length(0, maxTitleLen)),
		validation.Field(&r.Tags, validation.Each(validation.Length(0, maxTagLen))),
	)
}

// UpdateNoteRequest is the body of PATCH /notes/{id}. Absent fields are kept.
type UpdateNoteRequest struct {
	Title    *string          `json:"title"`
	Nodes    *blocks.Sequence `json:"nodes"`
	FolderID *string          `json:"folderId"`
	Tags     *[]string        `json:"tags"`
}

func (r UpdateNoteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.NilOrNotEmpty, validation.Length(0, maxTitleLen)),
		validation.Field(&r.FolderID, validation.NilOrNotEmpty),
		validation.Field(&r.Tags, validation.By(eachTag)),
	)
}

// TagRequest is the body of POST /notes/{id}/tags.
type TagRequest struct {
	Tag string `json:"tag"`
}

func (r TagRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Tag, validation.Required, validation.Length(1, maxTagLen)),
	)
}

// AddBlockRequest is the body of POST /notes/{id}/blocks. Index defaults to
// the end of the note.
type AddBlockRequest struct {
	Type  string `json:"type"`
	Index *int   `json:"index"`
}

func (r AddBlockRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Type, validation.Required, validation.In(kindValues()...)),
		validation.Field(&r.Index, validation.Min(0)),
	)
}

// MoveBlockRequest is the body of POST /notes/{id}/blocks/move.
type MoveBlockRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
}

func (r MoveBlockRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.From, validation.Min(0)),
		validation.Field(&r.To, validation.Min(0)),
	)
}

// BlockOpRequest is the body of POST /notes/{id}/blocks/{blockID}/ops.
type BlockOpRequest struct {
	Op      string `json:"op"`
	Row     int    `json:"row"`
	Col     int    `json:"col"`
	Index   int    `json:"index"`
	From    int    `json:"from"`
	To      int    `json:"to"`
	ItemID  string `json:"itemId"`
	Text    string `json:"text"`
	Checked bool   `json:"checked"`
}

func (r BlockOpRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Op, validation.Required, validation.In(opValues()...)),
		validation.Field(&r.Text, validation.Length(0, maxBlockText)),
	)
}

func (r BlockOpRequest) op() blocks.Op {
	return blocks.Op{
		Op: blocks.OpName(r.Op), Row: r.Row, Col: r.Col, Index: r.Index,
		From: r.From, To: r.To, ItemID: r.ItemID, Text: r.Text, Checked: r.Checked,
	}
}

// CreateFolderRequest is the body of POST /folders.
type CreateFolderRequest struct {
	Name     string `json:"name"`
	ParentID string `json:"parentId"`
}

func (r CreateFolderRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Length(0, maxNameLen)),
	)
}

// UpdateFolderRequest is the body of PATCH /folders/{id}. An empty parentId
// moves the folder to the top level.
type UpdateFolderRequest struct {
	Name     *string `json:"name"`
	Color    *string `json:"color"`
	ParentID *string `json:"parentId"`
}

func (r UpdateFolderRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.NilOrNotEmpty, validation.By(notBlank), validation.Length(1, maxNameLen)),
		validation.Field(&r.Color, validation.Length(0, 32)),
	)
}

// NoteSummary is a lightweight note in list and search responses.
type NoteSummary struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	FolderID  string           `json:"folderId"`
	Tags      []string         `json:"tags"`
	Snippet   string           `json:"snippet"`
	Blocks    int              `json:"blocks"`
	CreatedAt models.Timestamp `json:"createdAt"`
	UpdatedAt models.Timestamp `json:"updatedAt"`
}

func summarize(notes []models.Note) []NoteSummary {
	out := make([]NoteSummary, len(notes))
	for i := range notes {
		n := &notes[i]
		out[i] = NoteSummary{
			ID:        n.ID,
			Title:     n.Title,
			FolderID:  n.FolderID,
			Tags:      n.Tags,
			Snippet:   models.Snippet(n, 120),
			Blocks:    len(n.Nodes),
			CreatedAt: n.CreatedAt,
			UpdatedAt: n.UpdatedAt,
		}
	}
	return out
}

func notBlank(value any) error {
	if s, ok := value.(*string); ok && s != nil && strings.TrimSpace(*s) == "" {
		return errors.New("must not be blank")
	}
	return nil
}

func eachTag(value any) error {
	tags, ok := value.(*[]string)
	if !ok || tags == nil {
		return nil
	}
	return validation.Validate(*tags, validation.Each(validation.Length(0, maxTagLen)))
}

func opValues() []any {
	ops := blocks.Ops()
	out := make([]any, len(ops))
	for i, op := range ops {
		out[i] = string(op)
	}
	return out
}

func kindValues() []any {
	kinds := blocks.Kinds()
	out := make([]any, len(kinds))
	for i, k := range kinds {
		out[i] = string(k)
	}
	return out
}
