package api

import (
	"net/http"
	"strings"

	"github.com/starford/workbench/internal/models"
	"github.com/starford/workbench/internal/workspace"
)

// ListPrompts handles GET /prompts.
//
//	@Summary		List prompt templates
//	@Tags			prompts
//	@Produce		json
//	@Param			sort	query		string	false	"Sort order"	Enums(recent, used, alpha)
//	@Success		200		{object}	ListResponse[models.Prompt]
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/prompts [get]
func (h *Handler) ListPrompts(w http.ResponseWriter, r *http.Request) {
	by, err := workspace.ParsePromptSort(r.URL.Query().Get("sort"))
	if err != nil {
		writeError(w, "list prompts", err)
		return
	}
	writeJSON(w, http.StatusOK, list(h.store.SortedPrompts(by)))
}

// CreatePrompt handles POST /prompts. Title and template are required.
func (h *Handler) CreatePrompt(w http.ResponseWriter, r *http.Request) {
	var in models.PromptInput
	if !decodeJSON(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Template) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("title and content are required"))
		return
	}
	p, err := h.store.CreatePrompt(in)
	if err != nil {
		writeError(w, "create prompt", err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// GetPrompt handles GET /prompts/{id}.
func (h *Handler) GetPrompt(w http.ResponseWriter, r *http.Request) {
	p, ok := h.store.Prompt(idParam(r))
	if !ok {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// UpdatePrompt handles PATCH /prompts/{id}.
func (h *Handler) UpdatePrompt(w http.ResponseWriter, r *http.Request) {
	var p models.PromptPatch
	if !decodeJSON(w, r, &p) {
		return
	}
	id := idParam(r)
	found, err := h.store.UpdatePrompt(id, p)
	if err != nil {
		writeError(w, "update prompt", err)
		return
	}
	h.respondPrompt(w, id, found)
}

// DeletePrompt handles DELETE /prompts/{id}.
func (h *Handler) DeletePrompt(w http.ResponseWriter, r *http.Request) {
	if !h.store.DeletePrompt(idParam(r)) {
		notFound(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UsePrompt handles POST /prompts/{id}/use, counting a copy of the raw
// template.
func (h *Handler) UsePrompt(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	h.respondPrompt(w, id, h.store.IncrementPromptUsage(id))
}

// FillRequest carries variable values for a prompt template.
type FillRequest struct {
	Values map[string]string `json:"values"`
}

// FillResponse is the filled template.
type FillResponse struct {
	Text string `json:"text" validate:"required"`
}

// FillPrompt handles POST /prompts/{id}/fill.
//
//	@Summary		Fill a prompt template and count the use
//	@Tags			prompts
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string		true	"Prompt ID"
//	@Param			body	body		FillRequest	true	"Variable values"
//	@Success		200		{object}	FillResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/prompts/{id}/fill [post]
func (h *Handler) FillPrompt(w http.ResponseWriter, r *http.Request) {
	var req FillRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	text, err := h.store.FillPrompt(idParam(r), req.Values)
	if err != nil {
		writeError(w, "fill prompt", err)
		return
	}
	writeJSON(w, http.StatusOK, FillResponse{Text: text})
}

func (h *Handler) respondPrompt(w http.ResponseWriter, id string, found bool) {
	p, ok := h.store.Prompt(id)
	if !found || !ok {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
