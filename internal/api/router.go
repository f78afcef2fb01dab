package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/folio/internal/notestore"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events behind the same auth.
func NewRouter(store *notestore.Store, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(store)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Whole aggregate.
	r.Get("/data", h.GetData)
	r.Put("/data", h.PutData)
	r.Get("/integrity", h.Integrity)

	r.Route("/notes", func(r chi.Router) {
		r.Get("/", h.ListNotes)
		r.Post("/", h.CreateNote)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetNote)
			r.Patch("/", h.UpdateNote)
			r.Delete("/", h.DeleteNote)

			r.Post("/tags", h.AddTag)
			r.Delete("/tags/{tag}", h.RemoveTag)

			r.Post("/blocks", h.AddBlock)
			r.Post("/blocks/move", h.MoveBlock)
			r.Put("/blocks/{blockID}", h.ReplaceBlock)
			r.Delete("/blocks/{blockID}", h.DeleteBlock)
			r.Post("/blocks/{blockID}/duplicate", h.DuplicateBlock)
			r.Post("/blocks/{blockID}/ops", h.EditBlock)

			r.Post("/attachments", h.Upload)
		})
	})

	r.Route("/folders", func(r chi.Router) {
		r.Get("/", h.ListFolders)
		r.Post("/", h.CreateFolder)
		r.Patch("/{id}", h.UpdateFolder)
		r.Delete("/{id}", h.DeleteFolder)
		r.Get("/{id}/path", h.FolderPath)
	})

	r.Get("/search", h.Search)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
