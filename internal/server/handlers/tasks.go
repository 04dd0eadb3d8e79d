package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/dibarradev/to-do/internal/models"
	"github.com/dibarradev/to-do/internal/server/apperr"
	"github.com/dibarradev/to-do/internal/server/storage"
	"github.com/dibarradev/to-do/internal/validation"
	"github.com/dibarradev/to-do/pkg/api"
)

// Сообщения task API
const (
	msgTaskNotFound        = "task not found"
	msgSubtaskNotFound     = "subtask not found"
	msgSubtaskTextRequired = "subtask text is required"
	msgTaskDeleted         = "task deleted successfully"
)

// TaskHandler обрабатывает CRUD задач и подзадач
// Все операции ограничены владельцем из контекста
type TaskHandler struct {
	logger *slog.Logger
	store  storage.TaskStorage
	now    func() time.Time
	newID  func() string
}

// NewTaskHandler создает handler задач
func NewTaskHandler(logger *slog.Logger, store storage.TaskStorage) *TaskHandler {
	return &TaskHandler{
		logger: logger,
		store:  store,
		now:    time.Now,
		newID:  func() string { return ulid.Make().String() },
	}
}

// List обрабатывает GET /api/tasks
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.owner(w, r)
	if !ok {
		return
	}

	tasks, err := h.store.ListTasks(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.logger, fmt.Errorf("failed to list tasks: %w", err))
		return
	}

	resp := make([]api.Task, 0, len(tasks))
	for _, t := range tasks {
		resp = append(resp, toAPITask(t))
	}
	WriteJSON(w, h.logger, resp, http.StatusOK)
}

// Create обрабатывает POST /api/tasks
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.owner(w, r)
	if !ok {
		return
	}

	var req api.CreateTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	text := validation.NormalizeText(req.Text)
	if err := validation.ValidateTaskText(text); err != nil {
		writeError(w, r, h.logger, apperr.Validation(err.Error()))
		return
	}

	now := h.now().UTC()
	task := &models.Task{
		ID:        h.newID(),
		UserID:    userID,
		Text:      text,
		Comment:   normalizeComment(req.Comment),
		Subtasks:  []models.Subtask{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.store.CreateTask(r.Context(), task); err != nil {
		writeError(w, r, h.logger, fmt.Errorf("failed to create task: %w", err))
		return
	}

	h.logger.InfoContext(r.Context(), "task created",
		slog.String("user_id", userID),
		slog.String("task_id", task.ID))

	WriteJSON(w, h.logger, toAPITask(task), http.StatusCreated)
}

// Update обрабатывает PUT /api/tasks/{id}
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	task, ok := h.loadTask(w, r, r.PathValue("id"))
	if !ok {
		return
	}

	var req api.UpdateTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if req.Text != nil {
		text := validation.NormalizeText(*req.Text)
		if err := validation.ValidateTaskText(text); err != nil {
			writeError(w, r, h.logger, apperr.Validation(err.Error()))
			return
		}
		task.Text = text
	}
	if req.Completed != nil {
		task.Completed = *req.Completed
	}
	if req.Comment != nil {
		task.Comment = normalizeComment(req.Comment)
	}
	task.UpdatedAt = h.now().UTC()

	h.save(w, r, task, http.StatusOK)
}

// Delete обрабатывает DELETE /api/tasks/{id}
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.owner(w, r)
	if !ok {
		return
	}

	if err := h.store.DeleteTask(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, r, h.logger, taskError(err))
		return
	}

	WriteJSON(w, h.logger, success(msgTaskDeleted), http.StatusOK)
}

// AddSubtask обрабатывает POST /api/tasks/{taskId}/subtasks
func (h *TaskHandler) AddSubtask(w http.ResponseWriter, r *http.Request) {
	task, ok := h.loadTask(w, r, r.PathValue("taskId"))
	if !ok {
		return
	}

	var req api.CreateSubtaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	text := validation.NormalizeText(req.Text)
	if text == "" {
		writeError(w, r, h.logger, apperr.Validation(msgSubtaskTextRequired))
		return
	}

	task.AddSubtask(h.newID(), text, h.now().UTC())
	h.save(w, r, task, http.StatusCreated)
}

// UpdateSubtask обрабатывает PUT /api/tasks/{taskId}/subtasks/{subtaskId}
func (h *TaskHandler) UpdateSubtask(w http.ResponseWriter, r *http.Request) {
	task, ok := h.loadTask(w, r, r.PathValue("taskId"))
	if !ok {
		return
	}

	var req api.UpdateSubtaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	patch := models.SubtaskPatch{Completed: req.Completed}
	if req.Text != nil {
		text := validation.NormalizeText(*req.Text)
		if text == "" {
			writeError(w, r, h.logger, apperr.Validation(msgSubtaskTextRequired))
			return
		}
		patch.Text = &text
	}

	if err := task.UpdateSubtask(r.PathValue("subtaskId"), patch, h.now().UTC()); err != nil {
		writeError(w, r, h.logger, taskError(err))
		return
	}
	h.save(w, r, task, http.StatusOK)
}

// DeleteSubtask обрабатывает DELETE /api/tasks/{taskId}/subtasks/{subtaskId}
func (h *TaskHandler) DeleteSubtask(w http.ResponseWriter, r *http.Request) {
	task, ok := h.loadTask(w, r, r.PathValue("taskId"))
	if !ok {
		return
	}

	if err := task.RemoveSubtask(r.PathValue("subtaskId"), h.now().UTC()); err != nil {
		writeError(w, r, h.logger, taskError(err))
		return
	}
	h.save(w, r, task, http.StatusOK)
}

func (h *TaskHandler) owner(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		WriteErrorMessage(w, h.logger, "unauthorized", http.StatusUnauthorized)
		return "", false
	}
	return userID, true
}

func (h *TaskHandler) loadTask(w http.ResponseWriter, r *http.Request, taskID string) (*models.Task, bool) {
	userID, ok := h.owner(w, r)
	if !ok {
		return nil, false
	}

	task, err := h.store.GetTask(r.Context(), userID, taskID)
	if err != nil {
		writeError(w, r, h.logger, taskError(err))
		return nil, false
	}
	return task, true
}

func (h *TaskHandler) save(w http.ResponseWriter, r *http.Request, task *models.Task, status int) {
	if err := h.store.UpdateTask(r.Context(), task); err != nil {
		writeError(w, r, h.logger, taskError(err))
		return
	}
	WriteJSON(w, h.logger, toAPITask(task), status)
}

// taskError переводит ошибки хранилища и модели в ответ API
func taskError(err error) error {
	switch {
	case errors.Is(err, storage.ErrTaskNotFound):
		return apperr.NotFound(msgTaskNotFound)
	case errors.Is(err, models.ErrSubtaskNotFound):
		return apperr.NotFound(msgSubtaskNotFound)
	default:
		return err
	}
}

// normalizeComment пустой комментарий означает его отсутствие
func normalizeComment(c *string) *string {
	if c == nil {
		return nil
	}
	text := validation.NormalizeText(*c)
	if text == "" {
		return nil
	}
	return &text
}

func toAPITask(t *models.Task) api.Task {
	subtasks := make([]api.Subtask, 0, len(t.Subtasks))
	for _, st := range t.Subtasks {
		subtasks = append(subtasks, api.Subtask{ID: st.ID, Text: st.Text, Completed: st.Completed})
	}
	return api.Task{
		ID:        t.ID,
		UserID:    t.UserID,
		Text:      t.Text,
		Completed: t.Completed,
		Comment:   t.Comment,
		Subtasks:  subtasks,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}
