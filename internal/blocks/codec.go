package blocks

import (
	"encoding/json"
	"fmt"

	"github.com/starford/folio/internal/apperr"
)

// Wire shapes. Field names match the persisted document layout.
type (
	textWire struct {
		ID      string `json:"id"`
		Type    Kind   `json:"type"`
		Content string `json:"content"`
	}
	checklistWire struct {
		ID    string          `json:"id"`
		Type  Kind            `json:"type"`
		Items []ChecklistItem `json:"items"`
	}
	tableWire struct {
		ID   string     `json:"id"`
		Type Kind       `json:"type"`
		Rows int        `json:"rows"`
		Cols int        `json:"cols"`
		Data [][]string `json:"data"`
	}
	listWire struct {
		ID    string   `json:"id"`
		Type  Kind     `json:"type"`
		Items []string `json:"items"`
	}
	fileWire struct {
		ID       string `json:"id"`
		Type     Kind   `json:"type"`
		FileName string `json:"fileName"`
		FileData string `json:"fileData"`
		FileType string `json:"fileType"`
	}
	imageWire struct {
		ID        string `json:"id"`
		Type      Kind   `json:"type"`
		ImageData string `json:"imageData"`
		Alt       string `json:"alt"`
	}
	audioWire struct {
		ID        string   `json:"id"`
		Type      Kind     `json:"type"`
		AudioData string   `json:"audioData"`
		Duration  *float64 `json:"duration,omitempty"`
	}
	canvasWire struct {
		ID         string `json:"id"`
		Type       Kind   `json:"type"`
		CanvasData string `json:"canvasData"`
	}
)

// Marshal encodes a block with its "type" discriminant.
func Marshal(b Block) ([]byte, error) {
	var w any
	switch v := b.(type) {
	case *Text:
		w = textWire{ID: v.ID, Type: KindText, Content: v.Content}
	case *Checklist:
		w = checklistWire{ID: v.ID, Type: KindChecklist, Items: nonNil(v.Items)}
	case *Table:
		w = tableWire{ID: v.ID, Type: KindTable, Rows: v.Rows, Cols: v.Cols, Data: nonNil(v.Data)}
	case *List:
		w = listWire{ID: v.ID, Type: v.Kind(), Items: nonNil(v.Items)}
	case *File:
		w = fileWire{ID: v.ID, Type: KindFile, FileName: v.FileName, FileData: v.FileData, FileType: v.FileType}
	case *Image:
		w = imageWire{ID: v.ID, Type: KindImage, ImageData: v.ImageData, Alt: v.Alt}
	case *Audio:
		w = audioWire{ID: v.ID, Type: KindAudio, AudioData: v.AudioData, Duration: v.Duration}
	case *Canvas:
		w = canvasWire{ID: v.ID, Type: KindCanvas, CanvasData: v.CanvasData}
	default:
		return nil, fmt.Errorf("blocks: marshal: unhandled block %T: %w", b, apperr.ErrInvalid)
	}
	return json.Marshal(w)
}

// Unmarshal decodes a single block, dispatching on its "type" field.
func Unmarshal(data []byte) (Block, error) {
	var head struct {
		Type Kind `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("blocks: unmarshal: %w", err)
	}
	switch head.Type {
	case KindText:
		var w textWire
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, fmt.Errorf("blocks: unmarshal text: %w", err)
		}
		return &Text{ID: w.ID, Content: w.Content}, nil
	case KindChecklist:
		var w checklistWire
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, fmt.Errorf("blocks: unmarshal checklist: %w", err)
		}
		return &Checklist{ID: w.ID, Items: nonNil(w.Items)}, nil
	case KindTable:
		var w tableWire
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, fmt.Errorf("blocks: unmarshal table: %w", err)
		}
		return &Table{ID: w.ID, Rows: w.Rows, Cols: w.Cols, Data: nonNil(w.Data)}, nil
	case KindOrderedList, KindUnorderedList:
		var w listWire
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, fmt.Errorf("blocks: unmarshal list: %w", err)
		}
		return &List{ID: w.ID, Ordered: w.Type == KindOrderedList, Items: nonNil(w.Items)}, nil
	case KindFile:
		var w fileWire
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, fmt.Errorf("blocks: unmarshal file: %w", err)
		}
		return &File{ID: w.ID, FileName: w.FileName, FileData: w.FileData, FileType: w.FileType}, nil
	case KindImage:
		var w imageWire
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, fmt.Errorf("blocks: unmarshal image: %w", err)
		}
		return &Image{ID: w.ID, ImageData: w.ImageData, Alt: w.Alt}, nil
	case KindAudio:
		var w audioWire
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, fmt.Errorf("blocks: unmarshal audio: %w", err)
		}
		return &Audio{ID: w.ID, AudioData: w.AudioData, Duration: w.Duration}, nil
	case KindCanvas:
		var w canvasWire
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, fmt.Errorf("blocks: unmarshal canvas: %w", err)
		}
		return &Canvas{ID: w.ID, CanvasData: w.CanvasData}, nil
	}
	return nil, fmt.Errorf("blocks: unmarshal: unknown type %q: %w", head.Type, apperr.ErrInvalid)
}

// Sequence is the ordered block list of a note. It encodes as a JSON array of
// discriminated blocks.
type Sequence []Block

// MarshalJSON implements json.Marshaler. A nil sequence encodes as [].
func (s Sequence) MarshalJSON() ([]byte, error) {
	raw := make([]json.RawMessage, len(s))
	for i, b := range s {
		data, err := Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
		raw[i] = data
	}
	return json.Marshal(raw)
}

// UnmarshalJSON implements json.Unmarshaler. null decodes as an empty sequence.
func (s *Sequence) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("blocks: sequence: %w", err)
	}
	out := make(Sequence, 0, len(raw))
	for i, r := range raw {
		b, err := Unmarshal(r)
		if err != nil {
			return fmt.Errorf("block %d: %w", i, err)
		}
		out = append(out, b)
	}
	*s = out
	return nil
}

// Clone deep-copies every block of the sequence under new ids.
func (s Sequence) Clone() Sequence {
	out := make(Sequence, len(s))
	for i, b := range s {
		out[i] = Clone(b)
	}
	return out
}

// Copy returns a deep copy that keeps every id. Used to detach an aggregate
// from the caller's copy before mutating it.
func (s Sequence) Copy() Sequence {
	out := make(Sequence, len(s))
	for i, b := range s {
		c := Clone(b)
		SetID(c, b.BlockID())
		out[i] = c
	}
	return out
}

// Index returns the position of the block with the given id, or -1.
func (s Sequence) Index(id string) int {
	for i, b := range s {
		if b.BlockID() == id {
			return i
		}
	}
	return -1
}

// SetID overwrites the id of b.
func SetID(b Block, id string) {
	switch v := b.(type) {
	case *Text:
		v.ID = id
	case *Checklist:
		v.ID = id
	case *Table:
		v.ID = id
	case *List:
		v.ID = id
	case *File:
		v.ID = id
	case *Image:
		v.ID = id
	case *Audio:
		v.ID = id
	case *Canvas:
		v.ID = id
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
