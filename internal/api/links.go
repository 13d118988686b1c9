package api

import (
	"net/http"

	"github.com/starford/workbench/internal/models"
)

// ListLinks handles GET /links.
func (h *Handler) ListLinks(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("archived") == "true" {
		writeJSON(w, http.StatusOK, list(h.store.ArchivedLinks()))
		return
	}
	writeJSON(w, http.StatusOK, list(h.store.ActiveLinks()))
}

// CreateLink handles POST /links.
//
//	@Summary		Save a link
//	@Description	The link is stored at once with a title and favicon derived from
//	@Description	the URL; page metadata arrives later as a links.updated event.
//	@Tags			links
//	@Accept			json
//	@Produce		json
//	@Param			body	body		models.LinkInput	true	"Link to save"
//	@Success		201		{object}	models.Link
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/links [post]
func (h *Handler) CreateLink(w http.ResponseWriter, r *http.Request) {
	var in models.LinkInput
	if !decodeJSON(w, r, &in) {
		return
	}
	l, err := h.links.Save(in)
	if err != nil {
		writeError(w, "save link", err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

// GetLink handles GET /links/{id}.
func (h *Handler) GetLink(w http.ResponseWriter, r *http.Request) {
	l, ok := h.store.Link(idParam(r))
	if !ok {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// UpdateLink handles PATCH /links/{id}.
func (h *Handler) UpdateLink(w http.ResponseWriter, r *http.Request) {
	var p models.LinkPatch
	if !decodeJSON(w, r, &p) {
		return
	}
	id := idParam(r)
	ok, err := h.links.Update(id, p)
	if err != nil {
		writeError(w, "update link", err)
		return
	}
	h.respondLink(w, id, ok)
}

// DeleteLink handles DELETE /links/{id}.
func (h *Handler) DeleteLink(w http.ResponseWriter, r *http.Request) {
	if !h.store.DeleteLink(idParam(r)) {
		notFound(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ArchiveLink handles POST /links/{id}/archive.
func (h *Handler) ArchiveLink(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	h.respondLink(w, id, h.store.ArchiveLink(id))
}

// RestoreLink handles POST /links/{id}/restore.
func (h *Handler) RestoreLink(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	h.respondLink(w, id, h.store.RestoreLink(id))
}

func (h *Handler) respondLink(w http.ResponseWriter, id string, found bool) {
	l, ok := h.store.Link(id)
	if !found || !ok {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, l)
}
