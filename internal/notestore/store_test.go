package notestore

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/blocks"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/storage"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func (c *clock) set(ms int64) { c.t = time.UnixMilli(ms) }

func newStore(t *testing.T, p storage.Provider, opts ...Option) (*Store, *clock) {
	t.Helper()
	c := &clock{t: time.UnixMilli(1_000)}
	base := []Option{
		WithClock(c.now),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	return New(p, append(base, opts...)...), c
}

func TestLoadFresh(t *testing.T) {
	s, _ := newStore(t, storage.NewMemory())
	snap, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SourceFresh, snap.Source)
	assert.Empty(t, snap.Checksum)
	assert.Empty(t, snap.Data.Notes)
	require.Len(t, snap.Data.Folders, 1)
	assert.Equal(t, models.RootFolderID, snap.Data.Folders[0].ID)
	assert.Equal(t, models.RootFolderName, snap.Data.Folders[0].Name)
	assert.Nil(t, snap.Data.Folders[0].ParentID)
}

func TestLoadLegacyArray(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	legacy := `[{"id":"1","title":"t","nodes":[],"createdAt":0,"updatedAt":0}]`
	require.NoError(t, mem.Set(ctx, DefaultKey, legacy))

	s, _ := newStore(t, mem)
	snap, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, SourceLegacy, snap.Source)
	require.Len(t, snap.Data.Notes, 1)
	assert.Equal(t, models.RootFolderID, snap.Data.Notes[0].FolderID)
	assert.Equal(t, []string{}, snap.Data.Notes[0].Tags)
	require.NotNil(t, snap.Data.FindFolder(models.RootFolderID))

	// Migration is read-only.
	raw, _, err := mem.Get(ctx, DefaultKey)
	require.NoError(t, err)
	assert.Equal(t, legacy, raw)
}

func TestLoadCorruptRecovers(t *testing.T) {
	ctx := context.Background()
	for _, blob := range []string{"{not json", "42", `"text"`, "[1,2"} {
		mem := storage.NewMemory()
		require.NoError(t, mem.Set(ctx, DefaultKey, blob))
		s, _ := newStore(t, mem)

		snap, err := s.Load(ctx)
		require.NoError(t, err, blob)
		assert.Equal(t, SourceRecovered, snap.Source, blob)
		assert.NotEmpty(t, snap.Checksum)
		assert.Len(t, snap.Data.Folders, 1)
	}
}

func TestLoadRejectsCycle(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	blob := `{"notes":[],"folders":[
		{"id":"default-folder","name":"Notes","parentId":null,"createdAt":0},
		{"id":"a","name":"A","parentId":"b","createdAt":0},
		{"id":"b","name":"B","parentId":"a","createdAt":0}]}`
	require.NoError(t, mem.Set(ctx, DefaultKey, blob))
	s, _ := newStore(t, mem)

	_, err := s.Load(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrIntegrity))
	var ie *IntegrityError
	require.True(t, errors.As(err, &ie))
	assert.NotEmpty(t, ie.Issues)

	issues, err := s.Check(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, issues)

	fixed, err := s.Repair(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, fixed)

	_, err = s.Load(ctx)
	require.NoError(t, err)
	fixed, err = s.Repair(ctx)
	require.NoError(t, err)
	assert.Empty(t, fixed)
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t, storage.NewMemory())
	data := models.DefaultAppData(time.UnixMilli(5))
	n := models.NewNote(models.RootFolderID, time.UnixMilli(5))
	n.Nodes = append(n.Nodes, blocks.New(blocks.KindTable), blocks.New(blocks.KindChecklist))
	data.Notes = append(data.Notes, n)
	require.NoError(t, s.Save(ctx, data))

	snap, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, SourceCurrent, snap.Source)
	assert.Equal(t, data, snap.Data)
}

func TestSaveQuotaLeavesPreviousBlob(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	s, _ := newStore(t, storage.WithQuota(mem, 400))

	_, err := s.CreateNote(ctx, "")
	require.NoError(t, err)
	before, _, err := mem.Get(ctx, DefaultKey)
	require.NoError(t, err)

	_, err = s.MutateNote(ctx, firstNoteID(t, s), func(n *models.Note) error {
		n.Title = strings.Repeat("x", 500)
		return nil
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrQuotaExceeded))

	after, _, err := mem.Get(ctx, DefaultKey)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestSaveNilData(t *testing.T) {
	s, _ := newStore(t, storage.NewMemory())
	err := s.Save(context.Background(), nil)
	assert.True(t, errors.Is(err, apperr.ErrInvalid))
}

func TestHookReceivesChanges(t *testing.T) {
	ctx := context.Background()
	var got []Change
	s, _ := newStore(t, storage.NewMemory(), WithHook(func(c Change) { got = append(got, c) }))

	n, err := s.CreateNote(ctx, "")
	require.NoError(t, err)
	require.NoError(t, s.DeleteNote(ctx, n.ID))
	assert.Error(t, s.DeleteNote(ctx, n.ID))

	require.Len(t, got, 2)
	assert.Equal(t, Change{Kind: ChangeCreated, Entity: "note", ID: n.ID, Checksum: got[0].Checksum}, got[0])
	assert.Equal(t, Change{Kind: ChangeDeleted, Entity: "note", ID: n.ID, Checksum: got[1].Checksum}, got[1])

	snap, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, snap.Checksum, got[1].Checksum)
}

func TestCustomKey(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	s, _ := newStore(t, mem, WithKey("other"))
	_, err := s.CreateFolder(ctx, "", "")
	require.NoError(t, err)

	_, ok, _ := mem.Get(ctx, DefaultKey)
	assert.False(t, ok)
	_, ok, _ = mem.Get(ctx, "other")
	assert.True(t, ok)
	assert.Equal(t, "other", s.Key())
}

func firstNoteID(t *testing.T, s *Store) string {
	t.Helper()
	snap, err := s.Load(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, snap.Data.Notes)
	return snap.Data.Notes[0].ID
}

func TestMutationsRejectInconsistentNotes(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	s, _ := newStore(t, mem)
	n, err := s.CreateNote(ctx, "")
	require.NoError(t, err)
	before, _, err := mem.Get(ctx, DefaultKey)
	require.NoError(t, err)

	text := &blocks.Text{ID: "b1", Content: "x"}
	cases := map[string]blocks.Sequence{
		"malformed table": {&blocks.Table{ID: "t1", Rows: 3, Cols: 2, Data: [][]string{{"a"}}}},
		"repeated block":  {text, text},
		"duplicate ids":   {&blocks.Text{ID: "b1"}, &blocks.Text{ID: "b1"}},
	}
	for name, nodes := range cases {
		_, err := s.UpdateNote(ctx, n.ID, NotePatch{Nodes: &nodes})
		assert.True(t, errors.Is(err, apperr.ErrInvalid), name)

		_, err = s.MutateNote(ctx, n.ID, func(m *models.Note) error {
			m.Nodes = nodes
			return nil
		})
		assert.True(t, errors.Is(err, apperr.ErrInvalid), name)
	}

	after, _, err := mem.Get(ctx, DefaultKey)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	// The store keeps working.
	_, err = s.Load(ctx)
	require.NoError(t, err)
	_, err = s.CreateNote(ctx, "")
	require.NoError(t, err)
}

func TestSaveRejectsInconsistentData(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	s, _ := newStore(t, mem)

	data := models.DefaultAppData(time.UnixMilli(5))
	n := models.NewNote(models.RootFolderID, time.UnixMilli(5))
	n.Nodes = blocks.Sequence{&blocks.Table{ID: "t1", Rows: 1, Cols: 3, Data: [][]string{{"a"}}}}
	data.Notes = append(data.Notes, n)

	err := s.Save(ctx, data)
	assert.True(t, errors.Is(err, apperr.ErrInvalid))
	_, ok, err := mem.Get(ctx, DefaultKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRecoveredDataIsNotOverwritten(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	blob := `{"notes":[{"id":"n1","nodes":[{"id":"b","type":"hologram"}]}]}`
	require.NoError(t, mem.Set(ctx, DefaultKey, blob))
	s, _ := newStore(t, mem)

	snap, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, SourceRecovered, snap.Source)

	_, err = s.CreateNote(ctx, "")
	assert.True(t, errors.Is(err, apperr.ErrIntegrity))
	raw, _, err := mem.Get(ctx, DefaultKey)
	require.NoError(t, err)
	assert.Equal(t, blob, raw)

	issues, err := s.Check(ctx)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, models.IssueUndecodable, issues[0].Kind)

	fixed, err := s.Repair(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, fixed)
	assert.Equal(t, models.IssueUndecodable, fixed[0].Kind)

	snap, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, SourceCurrent, snap.Source)
	_, err = s.CreateNote(ctx, "")
	require.NoError(t, err)
}

func TestReplaceClearsRecoveredState(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	require.NoError(t, mem.Set(ctx, DefaultKey, "{not json"))
	s, _ := newStore(t, mem)

	_, err := s.Replace(ctx, models.DefaultAppData(time.UnixMilli(1)), "*")
	require.NoError(t, err)
	_, err = s.CreateNote(ctx, "")
	require.NoError(t, err)
}
