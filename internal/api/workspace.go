package api

import (
	"mime"
	"net/http"

	"github.com/starford/workbench/internal/models"
	"github.com/starford/workbench/internal/shortcuts"
	"github.com/starford/workbench/internal/workspace"
)

// GetUI handles GET /ui.
func (h *Handler) GetUI(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.UI())
}

// UpdateUI handles PUT /ui. Omitted fields keep their value.
func (h *Handler) UpdateUI(w http.ResponseWriter, r *http.Request) {
	var p models.UIPatch
	if !decodeJSON(w, r, &p) {
		return
	}
	if err := h.store.ApplyUI(p); err != nil {
		writeError(w, "update ui", err)
		return
	}
	writeJSON(w, http.StatusOK, h.store.UI())
}

// Today handles GET /today.
func (h *Handler) Today(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Today())
}

// Stats handles GET /stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Stats())
}

// Search handles GET /search.
//
//	@Summary		Search every collection
//	@Tags			search
//	@Produce		json
//	@Param			q	query		string	true	"Search query"
//	@Success		200	{object}	ListResponse[workspace.SearchResult]
//	@Failure		400	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	writeJSON(w, http.StatusOK, list(h.store.Search(q)))
}

// Export handles GET /export, downloading the whole workspace as JSON.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	b := h.store.Backup()
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": models.BackupFilename(b.ExportedAt)}))
	writeJSON(w, http.StatusOK, b)
}

// ListShortcuts handles GET /shortcuts.
func (h *Handler) ListShortcuts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, list(shortcuts.Bindings))
}

// KeyRequest is one key press.
type KeyRequest struct {
	Keys   string `json:"keys" example:"Mod+K" validate:"required"`
	Typing bool   `json:"typing"`
}

// KeyResponse reports what a key press did.
type KeyResponse struct {
	Fired  bool              `json:"fired"`
	Action *shortcuts.Action `json:"action,omitempty"`
	UI     workspace.UIState `json:"ui"`
}

// PressKeys handles POST /shortcuts.
func (h *Handler) PressKeys(w http.ResponseWriter, r *http.Request) {
	var req KeyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	a, fired, err := shortcuts.Dispatch(h.store, req.Keys, req.Typing)
	if err != nil {
		writeError(w, "press keys", err)
		return
	}
	resp := KeyResponse{Fired: fired, UI: h.store.UI()}
	if fired {
		resp.Action = &a
	}
	writeJSON(w, http.StatusOK, resp)
}
