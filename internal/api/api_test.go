package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/notestore"
	"github.com/starford/folio/internal/storage"
	"github.com/starford/folio/internal/testutil"
)

// testEnv wires a memory-backed store behind the router. A non-empty token
// enables bearer auth.
func testEnv(t *testing.T, token string) (*notestore.Store, http.Handler) {
	t.Helper()
	return testEnvWith(t, storage.NewMemory(), token)
}

func testEnvWith(t *testing.T, p storage.Provider, token string) (*notestore.Store, http.Handler) {
	t.Helper()
	store := testutil.TestStore(t, p)
	sse := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	return store, NewRouter(store, token != "", token, sse)
}

func do(t *testing.T, h http.Handler, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	switch v := body.(type) {
	case nil:
	case string:
		rd = strings.NewReader(v)
	default:
		raw, err := json.Marshal(v)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func createNote(t *testing.T, h http.Handler, req CreateNoteRequest) models.Note {
	t.Helper()
	w := do(t, h, http.MethodPost, "/notes", req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[models.Note](t, w)
}

func TestNoteCRUD(t *testing.T) {
	_, router := testEnv(t, "")

	n := createNote(t, router, CreateNoteRequest{Title: "Groceries", Tags: []string{"home", "home", " "}})
	assert.Equal(t, "Groceries", n.Title)
	assert.Equal(t, models.RootFolderID, n.FolderID)
	assert.Equal(t, []string{"home"}, n.Tags)
	require.Len(t, n.Nodes, 1)

	w := do(t, router, http.MethodGet, "/notes/"+n.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, n.ID, decode[models.Note](t, w).ID)

	w = do(t, router, http.MethodPatch, "/notes/"+n.ID, map[string]any{"title": "Shopping"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := decode[models.Note](t, w)
	assert.Equal(t, "Shopping", got.Title)
	assert.Equal(t, n.CreatedAt, got.CreatedAt)
	assert.GreaterOrEqual(t, got.UpdatedAt, n.UpdatedAt)

	w = do(t, router, http.MethodDelete, "/notes/"+n.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, router, http.MethodGet, "/notes/"+n.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(t, router, http.MethodDelete, "/notes/"+n.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateNoteRejectsInconsistentNodes(t *testing.T) {
	_, router := testEnv(t, "")
	n := createNote(t, router, CreateNoteRequest{Title: "Plan"})

	for _, body := range []string{
		`{"nodes":[{"type":"table","id":"t1","rows":3,"cols":2,"data":[["a"]]}]}`,
		`{"nodes":[{"type":"text","id":"b1","content":"x"},{"type":"text","id":"b1","content":"y"}]}`,
	} {
		w := do(t, router, http.MethodPatch, "/notes/"+n.ID, body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}

	w := do(t, router, http.MethodGet, "/notes/"+n.ID, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, n.Nodes[0].BlockID(), decode[models.Note](t, w).Nodes[0].BlockID())
	createNote(t, router, CreateNoteRequest{})
	w = do(t, router, http.MethodGet, "/integrity", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"issues":[]}`, w.Body.String())
}

func TestUpdateNoteTagsDeduplicated(t *testing.T) {
	_, router := testEnv(t, "")
	n := createNote(t, router, CreateNoteRequest{})

	w := do(t, router, http.MethodPatch, "/notes/"+n.ID, map[string]any{"tags": []string{"a", " a ", "", "b", "a"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []string{"a", "b"}, decode[models.Note](t, w).Tags)
}

func TestCreateNoteValidation(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodPost, "/notes", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodPost, "/notes", CreateNoteRequest{FolderID: "ghost"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, router, http.MethodPatch, "/notes/x", map[string]any{"title": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListNotesNewestFirst(t *testing.T) {
	_, router := testEnv(t, "")
	a := createNote(t, router, CreateNoteRequest{Title: "first"})
	b := createNote(t, router, CreateNoteRequest{Title: "second", Tags: []string{"work"}})

	w := do(t, router, http.MethodGet, "/notes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[struct {
		Notes []NoteSummary `json:"notes"`
		Total int           `json:"total"`
	}](t, w)
	require.Equal(t, 2, resp.Total)
	assert.Equal(t, b.ID, resp.Notes[0].ID)
	assert.Equal(t, a.ID, resp.Notes[1].ID)
	assert.Equal(t, 1, resp.Notes[0].Blocks)

	w = do(t, router, http.MethodGet, "/notes?tag=work", nil)
	assert.Equal(t, 1, decode[struct {
		Total int `json:"total"`
	}](t, w).Total)
}

func TestTags(t *testing.T) {
	_, router := testEnv(t, "")
	n := createNote(t, router, CreateNoteRequest{})

	w := do(t, router, http.MethodPost, "/notes/"+n.ID+"/tags", TagRequest{Tag: "  idea "})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []string{"idea"}, decode[models.Note](t, w).Tags)

	w = do(t, router, http.MethodPost, "/notes/"+n.ID+"/tags", TagRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodDelete, "/notes/"+n.ID+"/tags/idea", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[models.Note](t, w).Tags)

	w = do(t, router, http.MethodDelete, "/notes/"+n.ID+"/tags/idea", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSearch(t *testing.T) {
	_, router := testEnv(t, "")
	createNote(t, router, CreateNoteRequest{Title: "Meeting notes"})
	createNote(t, router, CreateNoteRequest{Title: "Recipes", Tags: []string{"cooking"}})

	w := do(t, router, http.MethodGet, "/search", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodGet, "/search?q=COOK", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[struct {
		Results []NoteSummary `json:"results"`
	}](t, w)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "Recipes", resp.Results[0].Title)
}

func TestDataETagAndIfMatch(t *testing.T) {
	_, router := testEnv(t, "")
	createNote(t, router, CreateNoteRequest{})

	w := do(t, router, http.MethodGet, "/data", nil)
	require.Equal(t, http.StatusOK, w.Code)
	tag := w.Header().Get("ETag")
	require.NotEmpty(t, tag)
	assert.Equal(t, "current", w.Header().Get("X-Data-Source"))
	data := decode[models.AppData](t, w)
	data.Notes = []models.Note{}

	w = do(t, router, http.MethodPut, "/data", data, "If-Match", `"stale"`)
	assert.Equal(t, http.StatusPreconditionFailed, w.Code)

	w = do(t, router, http.MethodPut, "/data", data, "If-Match", tag)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEqual(t, tag, w.Header().Get("ETag"))

	w = do(t, router, http.MethodPut, "/data", models.AppData{})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "missing-root")
}

func TestQuotaExceededMapsTo507(t *testing.T) {
	_, router := testEnvWith(t, storage.WithQuota(storage.NewMemory(), 64), "")
	w := do(t, router, http.MethodPost, "/notes", CreateNoteRequest{})
	assert.Equal(t, http.StatusInsufficientStorage, w.Code)
}

func TestIntegrityFailureMapsTo500(t *testing.T) {
	mem := storage.NewMemory()
	require.NoError(t, mem.Set(context.Background(), notestore.DefaultKey,
		`{"notes":[{"id":"n","title":"t","nodes":[],"createdAt":0,"updatedAt":0,"folderId":"ghost","tags":[]}],
		  "folders":[{"id":"default-folder","name":"Notes","parentId":null,"createdAt":0}]}`))
	_, router := testEnvWith(t, mem, "")

	w := do(t, router, http.MethodGet, "/notes", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "dangling-folder")

	w = do(t, router, http.MethodGet, "/integrity", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "dangling-folder")
}

func TestAuthMiddleware(t *testing.T) {
	_, router := testEnv(t, "secret123")

	w := do(t, router, http.MethodGet, "/notes", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, router, http.MethodGet, "/notes", nil, "Authorization", "Bearer wrong")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, router, http.MethodGet, "/notes", nil, "Authorization", "secret123")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, router, http.MethodGet, "/notes", nil, "Authorization", "Bearer secret123")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, http.MethodGet, "/events", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthDisabled(t *testing.T) {
	_, router := testEnv(t, "")
	assert.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/notes", nil).Code)
	assert.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/events", nil).Code)
}
