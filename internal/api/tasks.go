package api

import (
	"net/http"
	"strings"

	"github.com/starford/workbench/internal/models"
	"github.com/starford/workbench/internal/workspace"
)

// ListTasks handles GET /tasks.
//
//	@Summary		List tasks
//	@Tags			tasks
//	@Produce		json
//	@Param			filter	query		string	false	"Task filter"	Enums(all, active, completed)
//	@Success		200		{object}	ListResponse[models.Task]
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tasks [get]
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	f, err := workspace.ParseTaskFilter(r.URL.Query().Get("filter"))
	if err != nil {
		writeError(w, "list tasks", err)
		return
	}
	writeJSON(w, http.StatusOK, list(h.store.FilterTasks(f)))
}

// GroupTasks handles GET /tasks/groups.
func (h *Handler) GroupTasks(w http.ResponseWriter, r *http.Request) {
	f, err := workspace.ParseTaskFilter(r.URL.Query().Get("filter"))
	if err != nil {
		writeError(w, "group tasks", err)
		return
	}
	writeJSON(w, http.StatusOK, h.store.GroupTasks(f))
}

// CreateTask handles POST /tasks. The title must not be blank.
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var in models.TaskInput
	if !decodeJSON(w, r, &in) {
		return
	}
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("title is required"))
		return
	}
	t, err := h.store.CreateTask(in)
	if err != nil {
		writeError(w, "create task", err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// GetTask handles GET /tasks/{id}.
func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	t, ok := h.store.Task(idParam(r))
	if !ok {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// UpdateTask handles PATCH /tasks/{id}.
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var p models.TaskPatch
	if !decodeJSON(w, r, &p) {
		return
	}
	id := idParam(r)
	found, err := h.store.UpdateTask(id, p)
	if err != nil {
		writeError(w, "update task", err)
		return
	}
	h.respondTask(w, id, found)
}

// DeleteTask handles DELETE /tasks/{id}.
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	if !h.store.DeleteTask(idParam(r)) {
		notFound(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CompleteTask handles POST /tasks/{id}/complete. Completion toggles.
func (h *Handler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	h.respondTask(w, id, h.store.ToggleTaskComplete(id))
}

func (h *Handler) respondTask(w http.ResponseWriter, id string, found bool) {
	t, ok := h.store.Task(id)
	if !found || !ok {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, t)
}
