package blocks

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/starford/folio/internal/apperr"
)

// EncodeDataURL renders data as a data:<mime>;base64,<payload> URL, the form
// browsers produce for file reads and canvas snapshots.
func EncodeDataURL(mime string, data []byte) string {
	if len(data) == 0 {
		return ""
	}
	if mime == "" {
		mime = mimetype.Detect(data).String()
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURL returns the bytes and MIME type of a payload field.
// Bare base64 (no data: prefix) is accepted and its type is sniffed.
func DecodeDataURL(s string) ([]byte, string, error) {
	if s == "" {
		return nil, "", nil
	}
	encoded := s
	mime := ""
	if rest, ok := strings.CutPrefix(s, "data:"); ok {
		meta, payload, found := strings.Cut(rest, ",")
		if !found {
			return nil, "", fmt.Errorf("blocks: data URL missing comma separator: %w", apperr.ErrInvalid)
		}
		if !strings.HasSuffix(meta, ";base64") {
			return nil, "", fmt.Errorf("blocks: only base64 data URLs are supported: %w", apperr.ErrInvalid)
		}
		mime = strings.Split(strings.TrimSuffix(meta, ";base64"), ";")[0]
		encoded = payload
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, "", fmt.Errorf("blocks: invalid base64 payload: %w", apperr.ErrInvalid)
		}
	}
	if mime == "" {
		mime = mimetype.Detect(data).String()
	}
	return data, mime, nil
}

// AttachFile builds a file block from a ready payload, sniffing its MIME type.
func AttachFile(name string, data []byte) *File {
	mime := mimetype.Detect(data).String()
	return &File{
		ID:       NewID(),
		FileName: name,
		FileData: EncodeDataURL(mime, data),
		FileType: mime,
	}
}

// Bytes decodes the file payload.
func (b *File) Bytes() ([]byte, error) {
	data, _, err := DecodeDataURL(b.FileData)
	return data, err
}

// Clear empties the file block.
func (b *File) Clear() {
	b.FileName, b.FileData, b.FileType = "", "", ""
}

// SetData stores an image payload. Non-image content is rejected.
func (b *Image) SetData(data []byte) error {
	mime := mimetype.Detect(data)
	if !strings.HasPrefix(mime.String(), "image/") {
		return fmt.Errorf("blocks: image payload detected as %s: %w", mime.String(), apperr.ErrInvalid)
	}
	b.ImageData = EncodeDataURL(mime.String(), data)
	return nil
}

// Bytes decodes the image payload.
func (b *Image) Bytes() ([]byte, error) {
	data, _, err := DecodeDataURL(b.ImageData)
	return data, err
}

// SetData stores an audio payload and its duration in seconds (0 for unknown).
func (b *Audio) SetData(data []byte, duration float64) {
	b.AudioData = EncodeDataURL("", data)
	b.Duration = nil
	if duration > 0 {
		b.Duration = &duration
	}
}

// Bytes decodes the audio payload.
func (b *Audio) Bytes() ([]byte, error) {
	data, _, err := DecodeDataURL(b.AudioData)
	return data, err
}

// SetData stores a canvas snapshot.
func (b *Canvas) SetData(png []byte) {
	b.CanvasData = EncodeDataURL("", png)
}

// Bytes decodes the canvas snapshot.
func (b *Canvas) Bytes() ([]byte, error) {
	data, _, err := DecodeDataURL(b.CanvasData)
	return data, err
}

// FromPayload picks the block kind matching the content of data: an image,
// an audio clip, or a generic file. alt defaults to name for images.
func FromPayload(name string, data []byte, alt string, duration float64) Block {
	mime := mimetype.Detect(data).String()
	switch {
	case strings.HasPrefix(mime, "image/"):
		if alt == "" {
			alt = name
		}
		return &Image{ID: NewID(), ImageData: EncodeDataURL(mime, data), Alt: alt}
	case strings.HasPrefix(mime, "audio/"):
		a := &Audio{ID: NewID()}
		a.SetData(data, duration)
		return a
	}
	return AttachFile(name, data)
}
