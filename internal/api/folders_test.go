package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/notestore"
)

func createFolder(t *testing.T, h http.Handler, name, parent string) models.Folder {
	t.Helper()
	w := do(t, h, http.MethodPost, "/folders", CreateFolderRequest{Name: name, ParentID: parent})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[models.Folder](t, w)
}

func TestFolderPathAndCascade(t *testing.T) {
	_, router := testEnv(t, "")
	work := createFolder(t, router, "Work", "")
	proj := createFolder(t, router, "Projects", work.ID)
	n := createNote(t, router, CreateNoteRequest{FolderID: proj.ID, Title: "Roadmap"})

	w := do(t, router, http.MethodGet, "/folders/"+proj.ID+"/path", nil)
	require.Equal(t, http.StatusOK, w.Code)
	path := decode[struct {
		Path []models.Folder `json:"path"`
	}](t, w).Path
	require.Len(t, path, 2)
	assert.Equal(t, "Work", path[0].Name)
	assert.Equal(t, "Projects", path[1].Name)

	w = do(t, router, http.MethodGet, "/folders?tree=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"tree"`)

	w = do(t, router, http.MethodDelete, "/folders/"+work.ID, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[notestore.DeleteFolderResult](t, w)
	assert.ElementsMatch(t, []string{work.ID, proj.ID}, res.RemovedFolders)
	assert.Equal(t, []string{n.ID}, res.MovedNotes)

	w = do(t, router, http.MethodGet, "/notes/"+n.ID, nil)
	assert.Equal(t, models.RootFolderID, decode[models.Note](t, w).FolderID)

	w = do(t, router, http.MethodGet, "/folders/"+proj.ID+"/path", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFolderRootGuards(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodDelete, "/folders/"+models.RootFolderID, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, router, http.MethodPatch, "/folders/"+models.RootFolderID, map[string]any{"parentId": "x"})
	assert.NotEqual(t, http.StatusOK, w.Code)

	w = do(t, router, http.MethodDelete, "/folders/ghost", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateFolder(t *testing.T) {
	_, router := testEnv(t, "")
	a := createFolder(t, router, "A", "")
	b := createFolder(t, router, "B", a.ID)

	w := do(t, router, http.MethodPatch, "/folders/"+a.ID, map[string]any{"name": "Archive", "color": "#ff0000"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := decode[models.Folder](t, w)
	assert.Equal(t, "Archive", got.Name)
	assert.Equal(t, "#ff0000", got.Color)

	w = do(t, router, http.MethodPatch, "/folders/"+a.ID, map[string]any{"parentId": b.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodPatch, "/folders/"+b.ID, map[string]any{"parentId": ""})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decode[models.Folder](t, w).ParentID)

	w = do(t, router, http.MethodPatch, "/folders/"+a.ID, map[string]any{"name": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(t, router, http.MethodPatch, "/folders/"+a.ID, map[string]any{"name": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodPatch, "/folders/"+a.ID, map[string]any{"name": "  Old  "})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Old", decode[models.Folder](t, w).Name)
}
