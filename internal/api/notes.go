package api

import (
	"net/http"

	"github.com/starford/workbench/internal/models"
)

// ListNotes handles GET /notes.
//
//	@Summary		List notes, pinned first
//	@Tags			notes
//	@Produce		json
//	@Param			archived	query		bool	false	"List archived notes instead"
//	@Param			pinned		query		bool	false	"Only pinned notes"
//	@Success		200			{object}	ListResponse[models.Note]
//	@Security		BearerAuth
//	@Router			/notes [get]
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("archived") == "true" {
		writeJSON(w, http.StatusOK, list(h.store.ArchivedNotes()))
		return
	}
	writeJSON(w, http.StatusOK, list(h.store.ActiveNotes(q.Get("pinned") == "true")))
}

// CreateNote handles POST /notes.
//
//	@Summary		Create a note
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		models.NoteInput	true	"Note to create"
//	@Success		201		{object}	models.Note
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes [post]
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var in models.NoteInput
	if !decodeJSON(w, r, &in) {
		return
	}
	n, err := h.store.CreateNote(in)
	if err != nil {
		writeError(w, "create note", err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

// GetNote handles GET /notes/{id}.
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	n, ok := h.store.Note(idParam(r))
	if !ok {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// UpdateNote handles PATCH /notes/{id}.
//
//	@Summary		Change note fields
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Note ID"
//	@Param			body	body		models.NotePatch	true	"Fields to change"
//	@Success		200		{object}	models.Note
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [patch]
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	var p models.NotePatch
	if !decodeJSON(w, r, &p) {
		return
	}
	id := idParam(r)
	found, err := h.store.UpdateNote(id, p)
	if err != nil {
		writeError(w, "update note", err)
		return
	}
	h.respondNote(w, id, found)
}

// DeleteNote handles DELETE /notes/{id}.
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	if !h.store.DeleteNote(idParam(r)) {
		notFound(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PinNote handles POST /notes/{id}/pin. Pinning toggles.
func (h *Handler) PinNote(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	h.respondNote(w, id, h.store.TogglePinNote(id))
}

// ArchiveNote handles POST /notes/{id}/archive.
func (h *Handler) ArchiveNote(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	h.respondNote(w, id, h.store.ArchiveNote(id))
}

// RestoreNote handles POST /notes/{id}/restore.
func (h *Handler) RestoreNote(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	h.respondNote(w, id, h.store.RestoreNote(id))
}

func (h *Handler) respondNote(w http.ResponseWriter, id string, found bool) {
	n, ok := h.store.Note(id)
	if !found || !ok {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, n)
}
