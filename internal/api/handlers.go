package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/workbench/internal/editor"
	"github.com/starford/workbench/internal/workspace"
)

// Handler holds API route handlers.
type Handler struct {
	store  *workspace.Store
	links  *workspace.LinkSaver
	drafts *editor.Pool
}

// NewHandler creates a new Handler. A nil saver stores links without
// metadata enrichment; a nil pool autosaves drafts after editor.DefaultDelay.
func NewHandler(store *workspace.Store, links *workspace.LinkSaver, drafts *editor.Pool) *Handler {
	if links == nil {
		links = workspace.NewLinkSaver(store, nil, 0, nil)
	}
	if drafts == nil {
		drafts = editor.NewPool(store, store.Doc)
	}
	return &Handler{store: store, links: links, drafts: drafts}
}

func idParam(r *http.Request) string {
	return chi.URLParam(r, "id")
}

// ListResponse wraps a collection listing.
type ListResponse[T any] struct {
	Items []T `json:"items" validate:"required"`
	Total int `json:"total" example:"3" validate:"required"`
}

func list[T any](items []T) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Items: items, Total: len(items)}
}
