// Package blocks defines the closed set of content blocks a note is made of.
//
// A Block is one of *Text, *Checklist, *Table, *List, *File, *Image, *Audio or
// *Canvas. The set is sealed: the interface carries an unexported method, so
// every switch over block types in this package is exhaustive and adding a kind
// means touching New, Clone, the codec and PlainText together.
package blocks

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/starford/folio/internal/apperr"
)

// Kind is the block discriminant stored in the "type" field.
type Kind string

// Block kinds.
const (
	KindText          Kind = "text"
	KindChecklist     Kind = "checklist"
	KindTable         Kind = "table"
	KindOrderedList   Kind = "ordered-list"
	KindUnorderedList Kind = "unordered-list"
	KindFile          Kind = "file"
	KindImage         Kind = "image"
	KindAudio         Kind = "audio"
	KindCanvas        Kind = "canvas"
)

// Kinds returns every block kind in toolbar order.
func Kinds() []Kind {
	return []Kind{
		KindText, KindChecklist, KindTable, KindOrderedList, KindUnorderedList,
		KindFile, KindImage, KindAudio, KindCanvas,
	}
}

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("blocks: unknown kind %q: %w", s, apperr.ErrInvalid)
}

// Block is a single typed piece of note content.
type Block interface {
	BlockID() string
	Kind() Kind
	sealed()
}

// NewID returns a fresh block identifier.
func NewID() string {
	return uuid.NewString()
}

// Text holds rich-text markup produced by a WYSIWYG surface.
type Text struct {
	ID      string
	Content string
}

// ChecklistItem is one row of a checklist.
type ChecklistItem struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Checked bool   `json:"checked"`
}

// Checklist is an ordered list of checkable items.
type Checklist struct {
	ID    string
	Items []ChecklistItem
}

// Table is a rows × cols grid of strings.
type Table struct {
	ID   string
	Rows int
	Cols int
	Data [][]string
}

// List is an ordered or unordered list of plain strings.
type List struct {
	ID      string
	Ordered bool
	Items   []string
}

// File is an attached file. FileData is a data URL or empty.
type File struct {
	ID       string
	FileName string
	FileData string
	FileType string
}

// Image is an embedded image. ImageData is a data URL or empty.
type Image struct {
	ID        string
	ImageData string
	Alt       string
}

// Audio is a recorded or uploaded clip. Duration is in seconds.
type Audio struct {
	ID        string
	AudioData string
	Duration  *float64
}

// Canvas is a freehand drawing stored as a raster snapshot.
type Canvas struct {
	ID         string
	CanvasData string
}

func (b *Text) BlockID() string      { return b.ID }
func (b *Checklist) BlockID() string { return b.ID }
func (b *Table) BlockID() string     { return b.ID }
func (b *List) BlockID() string      { return b.ID }
func (b *File) BlockID() string      { return b.ID }
func (b *Image) BlockID() string     { return b.ID }
func (b *Audio) BlockID() string     { return b.ID }
func (b *Canvas) BlockID() string    { return b.ID }

func (*Text) Kind() Kind      { return KindText }
func (*Checklist) Kind() Kind { return KindChecklist }
func (*Table) Kind() Kind     { return KindTable }
func (*File) Kind() Kind      { return KindFile }
func (*Image) Kind() Kind     { return KindImage }
func (*Audio) Kind() Kind     { return KindAudio }
func (*Canvas) Kind() Kind    { return KindCanvas }

// Kind reports ordered-list or unordered-list.
func (b *List) Kind() Kind {
	if b.Ordered {
		return KindOrderedList
	}
	return KindUnorderedList
}

func (*Text) sealed()      {}
func (*Checklist) sealed() {}
func (*Table) sealed()     {}
func (*List) sealed()      {}
func (*File) sealed()      {}
func (*Image) sealed()     {}
func (*Audio) sealed()     {}
func (*Canvas) sealed()    {}

// New returns an empty block of the given kind with a fresh id.
// It panics on a kind outside the closed set; use NewChecked for untrusted input.
func New(kind Kind) Block {
	b, err := NewChecked(kind)
	if err != nil {
		panic(err)
	}
	return b
}

// NewChecked is New for kinds coming from outside the process.
func NewChecked(kind Kind) (Block, error) {
	id := NewID()
	switch kind {
	case KindText:
		return &Text{ID: id}, nil
	case KindChecklist:
		return &Checklist{ID: id, Items: []ChecklistItem{{ID: NewID()}}}, nil
	case KindTable:
		return NewTable(id, 2, 2), nil
	case KindOrderedList:
		return &List{ID: id, Ordered: true, Items: []string{""}}, nil
	case KindUnorderedList:
		return &List{ID: id, Items: []string{""}}, nil
	case KindFile:
		return &File{ID: id}, nil
	case KindImage:
		return &Image{ID: id}, nil
	case KindAudio:
		return &Audio{ID: id}, nil
	case KindCanvas:
		return &Canvas{ID: id}, nil
	}
	return nil, fmt.Errorf("blocks: new: unknown kind %q: %w", kind, apperr.ErrInvalid)
}

// Clone returns a deep copy of b under a new id. Nested collections are copied,
// so editing the clone never reaches the original.
func Clone(b Block) Block {
	id := NewID()
	switch v := b.(type) {
	case *Text:
		return &Text{ID: id, Content: v.Content}
	case *Checklist:
		items := make([]ChecklistItem, len(v.Items))
		copy(items, v.Items)
		return &Checklist{ID: id, Items: items}
	case *Table:
		data := make([][]string, len(v.Data))
		for i, row := range v.Data {
			data[i] = append([]string(nil), row...)
			if data[i] == nil {
				data[i] = []string{}
			}
		}
		return &Table{ID: id, Rows: v.Rows, Cols: v.Cols, Data: data}
	case *List:
		items := make([]string, len(v.Items))
		copy(items, v.Items)
		return &List{ID: id, Ordered: v.Ordered, Items: items}
	case *File:
		c := *v
		c.ID = id
		return &c
	case *Image:
		c := *v
		c.ID = id
		return &c
	case *Audio:
		c := *v
		c.ID = id
		if v.Duration != nil {
			d := *v.Duration
			c.Duration = &d
		}
		return &c
	case *Canvas:
		return &Canvas{ID: id, CanvasData: v.CanvasData}
	}
	panic(fmt.Sprintf("blocks: clone: unhandled block %T", b))
}
