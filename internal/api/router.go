package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/workbench/internal/editor"
	"github.com/starford/workbench/internal/workspace"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(store *workspace.Store, links *workspace.LinkSaver, drafts *editor.Pool, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(store, links, drafts)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Route("/notes", func(r chi.Router) {
		r.Get("/", h.ListNotes)
		r.Post("/", h.CreateNote)
		r.Get("/{id}", h.GetNote)
		r.Patch("/{id}", h.UpdateNote)
		r.Delete("/{id}", h.DeleteNote)
		r.Post("/{id}/pin", h.PinNote)
		r.Post("/{id}/archive", h.ArchiveNote)
		r.Post("/{id}/restore", h.RestoreNote)
	})

	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", h.ListTasks)
		r.Post("/", h.CreateTask)
		r.Get("/groups", h.GroupTasks)
		r.Get("/{id}", h.GetTask)
		r.Patch("/{id}", h.UpdateTask)
		r.Delete("/{id}", h.DeleteTask)
		r.Post("/{id}/complete", h.CompleteTask)
	})

	r.Route("/links", func(r chi.Router) {
		r.Get("/", h.ListLinks)
		r.Post("/", h.CreateLink)
		r.Get("/{id}", h.GetLink)
		r.Patch("/{id}", h.UpdateLink)
		r.Delete("/{id}", h.DeleteLink)
		r.Post("/{id}/archive", h.ArchiveLink)
		r.Post("/{id}/restore", h.RestoreLink)
	})

	r.Route("/docs", func(r chi.Router) {
		r.Get("/", h.ListDocs)
		r.Post("/", h.CreateDoc)
		r.Post("/import", h.ImportDoc)
		r.Get("/{id}", h.GetDoc)
		r.Patch("/{id}", h.UpdateDoc)
		r.Delete("/{id}", h.DeleteDoc)
		r.Get("/{id}/export.md", h.ExportMarkdown)
		r.Get("/{id}/export.html", h.ExportHTML)
		r.Get("/{id}/draft", h.DraftState)
		r.Put("/{id}/draft", h.EditDraft)
		r.Post("/{id}/draft/flush", h.FlushDraft)
	})

	r.Route("/prompts", func(r chi.Router) {
		r.Get("/", h.ListPrompts)
		r.Post("/", h.CreatePrompt)
		r.Get("/{id}", h.GetPrompt)
		r.Patch("/{id}", h.UpdatePrompt)
		r.Delete("/{id}", h.DeletePrompt)
		r.Post("/{id}/use", h.UsePrompt)
		r.Post("/{id}/fill", h.FillPrompt)
	})

	r.Get("/ui", h.GetUI)
	r.Put("/ui", h.UpdateUI)
	r.Get("/today", h.Today)
	r.Get("/stats", h.Stats)
	r.Get("/search", h.Search)
	r.Get("/export", h.Export)
	r.Get("/shortcuts", h.ListShortcuts)
	r.Post("/shortcuts", h.PressKeys)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
