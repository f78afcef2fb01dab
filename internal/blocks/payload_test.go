package blocks

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestAttachFileSniffsType(t *testing.T) {
	f := AttachFile("logo.png", pngHeader)
	assert.Equal(t, "logo.png", f.FileName)
	assert.Equal(t, "image/png", f.FileType)
	assert.Contains(t, f.FileData, "data:image/png;base64,")

	data, err := f.Bytes()
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)

	f.Clear()
	assert.Equal(t, &File{ID: f.ID}, f)
}

func TestDecodeDataURLAcceptsBareBase64(t *testing.T) {
	raw := base64.StdEncoding.EncodeToString([]byte("hello"))
	data, mime, err := DecodeDataURL(raw)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)
	assert.Contains(t, mime, "text/plain")

	data, mime, err = DecodeDataURL("")
	require.NoError(t, err)
	assert.Nil(t, data)
	assert.Empty(t, mime)
}

func TestDecodeDataURLRejectsGarbage(t *testing.T) {
	_, _, err := DecodeDataURL("data:image/png,plain")
	assert.Error(t, err)
	_, _, err = DecodeDataURL("data:image/png;base64")
	assert.Error(t, err)
	_, _, err = DecodeDataURL("!!!not base64!!!")
	assert.Error(t, err)
}

func TestImageSetDataRejectsNonImage(t *testing.T) {
	img := New(KindImage).(*Image)
	assert.Error(t, img.SetData([]byte("just text")))
	require.NoError(t, img.SetData(pngHeader))
	data, err := img.Bytes()
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)
}

func TestAudioSetData(t *testing.T) {
	a := New(KindAudio).(*Audio)
	a.SetData([]byte("RIFF....WAVEfmt "), 4.5)
	require.NotNil(t, a.Duration)
	assert.Equal(t, 4.5, *a.Duration)

	a.SetData([]byte("RIFF....WAVEfmt "), 0)
	assert.Nil(t, a.Duration)
}

func TestCanvasSetData(t *testing.T) {
	c := New(KindCanvas).(*Canvas)
	c.SetData(pngHeader)
	assert.Contains(t, c.CanvasData, "data:image/png;base64,")
	data, err := c.Bytes()
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)
}

func TestFromPayload(t *testing.T) {
	img, ok := FromPayload("shot.png", pngHeader, "", 0).(*Image)
	require.True(t, ok)
	assert.Equal(t, "shot.png", img.Alt)

	f, ok := FromPayload("notes.txt", []byte("hello there"), "", 0).(*File)
	require.True(t, ok)
	assert.Equal(t, "notes.txt", f.FileName)
}
