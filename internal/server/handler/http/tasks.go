package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/atinyakov/TaskKeeper/internal/middleware"
	"github.com/atinyakov/TaskKeeper/internal/models"
)

// TaskService defines the task operations required by the TaskHandler.
type TaskService interface {
	List(ctx context.Context) ([]models.Task, error)
	Create(ctx context.Context, name string) (models.Task, error)
	Update(ctx context.Context, id string, isComplete bool, name string) (models.Task, error)
	Delete(ctx context.Context, id string) error
}

// TaskHandler handles HTTP requests for tasks.
type TaskHandler struct {
	TaskService TaskService
	Logger      *zap.Logger
}

type createTaskRequest struct {
	Name string `json:"name"`
}

type updateTaskRequest struct {
	Name       string `json:"name"`
	IsComplete bool   `json:"isComplete"`
}

// List handles GET /api/tasks. No authentication is required.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.TaskService.List(r.Context())
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// Create handles POST /api/tasks and answers 201 with the stored task.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	task, err := h.TaskService.Create(r.Context(), req.Name)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	h.Logger.Debug("task created", zap.String("task_id", task.ID), zap.String("by", caller(r)))
	writeJSON(w, http.StatusCreated, task)
}

// Update handles PUT /api/tasks/{id}. isComplete is always applied; name only
// when it is not empty.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	task, err := h.TaskService.Update(r.Context(), chi.URLParam(r, "id"), req.IsComplete, req.Name)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	h.Logger.Debug("task updated", zap.String("task_id", task.ID), zap.String("by", caller(r)))
	writeJSON(w, http.StatusOK, task)
}

// Delete handles DELETE /api/tasks/{id}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.TaskService.Delete(r.Context(), id); err != nil {
		writeError(w, h.Logger, err)
		return
	}

	h.Logger.Debug("task deleted", zap.String("task_id", id), zap.String("by", caller(r)))
	writeJSON(w, http.StatusOK, map[string]string{"message": "task deleted"})
}

func caller(r *http.Request) string {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	return claims.Username
}
