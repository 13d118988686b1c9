package api

import (
	"io"
	"mime"
	"net/http"

	"github.com/starford/workbench/internal/checksum"
	"github.com/starford/workbench/internal/content"
	"github.com/starford/workbench/internal/inbox"
	"github.com/starford/workbench/internal/models"
)

// ListDocs handles GET /docs.
func (h *Handler) ListDocs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, list(h.store.Docs()))
}

// CreateDoc handles POST /docs. A missing content tree starts an empty
// document.
func (h *Handler) CreateDoc(w http.ResponseWriter, r *http.Request) {
	var in models.DocInput
	if !decodeJSON(w, r, &in) {
		return
	}
	d, err := h.store.CreateDoc(in)
	if err != nil {
		writeError(w, "create doc", err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

// GetDoc handles GET /docs/{id}.
func (h *Handler) GetDoc(w http.ResponseWriter, r *http.Request) {
	d, ok := h.store.Doc(idParam(r))
	if !ok {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// UpdateDoc handles PATCH /docs/{id}.
func (h *Handler) UpdateDoc(w http.ResponseWriter, r *http.Request) {
	var p models.DocPatch
	if !decodeJSON(w, r, &p) {
		return
	}
	id := idParam(r)
	if !h.store.UpdateDoc(id, p) {
		notFound(w)
		return
	}
	d, _ := h.store.Doc(id)
	writeJSON(w, http.StatusOK, d)
}

// DeleteDoc handles DELETE /docs/{id}.
func (h *Handler) DeleteDoc(w http.ResponseWriter, r *http.Request) {
	if !h.store.DeleteDoc(idParam(r)) {
		notFound(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportMarkdown handles GET /docs/{id}/export.md.
//
//	@Summary		Download a document as Markdown
//	@Tags			docs
//	@Produce		text/markdown
//	@Param			id				path	string	true	"Document ID"
//	@Param			If-None-Match	header	string	false	"ETag of a cached export"
//	@Success		200				{string}	string	"Markdown file"
//	@Success		304				"Not modified"
//	@Failure		404				{object}	errResponse
//	@Security		BearerAuth
//	@Router			/docs/{id}/export.md [get]
func (h *Handler) ExportMarkdown(w http.ResponseWriter, r *http.Request) {
	d, ok := h.store.Doc(idParam(r))
	if !ok {
		notFound(w)
		return
	}
	title := models.DisplayTitle(d.Title)
	body := content.ExportMarkdown(title, d.Content)
	writeDownload(w, r, "text/markdown; charset=utf-8", title+".md", []byte(body))
}

// ExportHTML handles GET /docs/{id}/export.html.
func (h *Handler) ExportHTML(w http.ResponseWriter, r *http.Request) {
	d, ok := h.store.Doc(idParam(r))
	if !ok {
		notFound(w)
		return
	}
	title := models.DisplayTitle(d.Title)
	body, err := content.ExportHTML(title, d.Content)
	if err != nil {
		writeError(w, "export html", err)
		return
	}
	writeDownload(w, r, "text/html; charset=utf-8", title+".html", []byte(body))
}

// ImportDoc handles POST /docs/import. The body is a Markdown file; optional
// frontmatter with "kind: note" makes it a note instead. The name query
// parameter titles documents without a heading.
func (h *Handler) ImportDoc(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read body"))
		return
	}
	name := r.URL.Query().Get("name")
	if name == "" {
		name = "Imported.md"
	}
	res, err := inbox.Import(h.store, name, data)
	if err != nil {
		writeError(w, "import doc", err)
		return
	}
	if res.Kind == inbox.KindNote {
		n, _ := h.store.Note(res.ID)
		writeJSON(w, http.StatusCreated, n)
		return
	}
	d, _ := h.store.Doc(res.ID)
	writeJSON(w, http.StatusCreated, d)
}

// writeDownload sends body as an attachment, answering 304 when the client
// already holds the same bytes.
func writeDownload(w http.ResponseWriter, r *http.Request, contentType, filename string, body []byte) {
	etag := checksum.ETag(body)
	w.Header().Set("ETag", etag)
	if checksum.Matches(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// DraftRequest is one editor change.
type DraftRequest struct {
	Title   string       `json:"title"`
	Content content.Node `json:"content"`
}

// EditDraft handles PUT /docs/{id}/draft. The change is committed once the
// editor has been idle for the autosave delay.
//
//	@Summary		Record an editor change
//	@Tags			docs
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Document ID"
//	@Param			body	body		DraftRequest	true	"Working title and content"
//	@Success		202		{object}	editor.State
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/docs/{id}/draft [put]
func (h *Handler) EditDraft(w http.ResponseWriter, r *http.Request) {
	var req DraftRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	st, err := h.drafts.Edit(idParam(r), req.Title, req.Content)
	if err != nil {
		writeError(w, "edit draft", err)
		return
	}
	writeJSON(w, http.StatusAccepted, st)
}

// DraftState handles GET /docs/{id}/draft.
func (h *Handler) DraftState(w http.ResponseWriter, r *http.Request) {
	st, err := h.drafts.State(idParam(r))
	if err != nil {
		writeError(w, "draft state", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// FlushDraft handles POST /docs/{id}/draft/flush. A failed commit still
// answers 200 with the error status; the client decides whether to retry.
func (h *Handler) FlushDraft(w http.ResponseWriter, r *http.Request) {
	st, err := h.drafts.Flush(idParam(r))
	if err != nil && st.DocID == "" {
		writeError(w, "flush draft", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
