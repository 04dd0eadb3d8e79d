package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dibarradev/to-do/internal/models"
	"github.com/dibarradev/to-do/internal/server/storage/sqlite"
	"github.com/dibarradev/to-do/pkg/api"
)

// taskMux собирает маршруты так же, как сервер, без auth middleware
func taskMux(h *TaskHandler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/tasks", h.List)
	mux.HandleFunc("POST /api/tasks", h.Create)
	mux.HandleFunc("PUT /api/tasks/{id}", h.Update)
	mux.HandleFunc("DELETE /api/tasks/{id}", h.Delete)
	mux.HandleFunc("POST /api/tasks/{taskId}/subtasks", h.AddSubtask)
	mux.HandleFunc("PUT /api/tasks/{taskId}/subtasks/{subtaskId}", h.UpdateSubtask)
	mux.HandleFunc("DELETE /api/tasks/{taskId}/subtasks/{subtaskId}", h.DeleteSubtask)
	return mux
}

type taskFixture struct {
	mux   *http.ServeMux
	alice string
	bob   string
}

func setupTaskFixture(t *testing.T) *taskFixture {
	t.Helper()
	ctx := context.Background()

	store, err := sqlite.New(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	newUser := func(name string) string {
		now := time.Now().UTC()
		u := &models.User{
			ID:           uuid.NewString(),
			Username:     name,
			Email:        name + "@example.com",
			PasswordHash: "hash",
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		require.NoError(t, store.CreateUser(ctx, u))
		return u.ID
	}

	seq := 0
	handler := NewTaskHandler(setupTestLogger(), store)
	handler.newID = func() string {
		seq++
		return fmt.Sprintf("id-%03d", seq)
	}
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	handler.now = func() time.Time {
		return base.Add(time.Duration(seq) * time.Minute)
	}

	return &taskFixture{mux: taskMux(handler), alice: newUser("alice"), bob: newUser("bob")}
}

func (f *taskFixture) do(t *testing.T, userID, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := withTestIdentity(jsonRequest(method, target, body), userID)
	w := httptest.NewRecorder()
	f.mux.ServeHTTP(w, req)
	return w
}

func (f *taskFixture) createTask(t *testing.T, userID, text string) api.Task {
	t.Helper()
	w := f.do(t, userID, http.MethodPost, "/api/tasks", fmt.Sprintf(`{"text":%q}`, text))
	require.Equal(t, http.StatusCreated, w.Code)
	return decodeBody[api.Task](t, w)
}

func TestTaskHandler_CreateAndList(t *testing.T) {
	f := setupTaskFixture(t)

	first := f.createTask(t, f.alice, "  buy milk  ")
	assert.Equal(t, "buy milk", first.Text)
	assert.Equal(t, f.alice, first.UserID)
	assert.False(t, first.Completed)
	assert.Nil(t, first.Comment)
	assert.Empty(t, first.Subtasks)

	second := f.createTask(t, f.alice, "write report")
	f.createTask(t, f.bob, "bob's task")

	w := f.do(t, f.alice, http.MethodGet, "/api/tasks", "")
	require.Equal(t, http.StatusOK, w.Code)
	tasks := decodeBody[[]api.Task](t, w)
	require.Len(t, tasks, 2)
	assert.Equal(t, second.ID, tasks[0].ID, "newest first")
	assert.Equal(t, first.ID, tasks[1].ID)
}

func TestTaskHandler_Create_Validation(t *testing.T) {
	f := setupTaskFixture(t)

	w := f.do(t, f.alice, http.MethodPost, "/api/tasks", `{"text":"   "}`)
	requireError(t, w, http.StatusBadRequest, "task text is required")

	w = f.do(t, f.alice, http.MethodPost, "/api/tasks", `not json`)
	requireError(t, w, http.StatusBadRequest, msgInvalidBody)
}

func TestTaskHandler_Update(t *testing.T) {
	f := setupTaskFixture(t)
	task := f.createTask(t, f.alice, "draft")
	target := "/api/tasks/" + task.ID

	w := f.do(t, f.alice, http.MethodPut, target, `{"text":"final","completed":true,"comment":"done early"}`)
	require.Equal(t, http.StatusOK, w.Code)
	updated := decodeBody[api.Task](t, w)
	assert.Equal(t, "final", updated.Text)
	assert.True(t, updated.Completed)
	require.NotNil(t, updated.Comment)
	assert.Equal(t, "done early", *updated.Comment)
	assert.True(t, updated.UpdatedAt.After(task.UpdatedAt))

	// Пустой комментарий удаляет его, остальные поля не меняются
	w = f.do(t, f.alice, http.MethodPut, target, `{"comment":""}`)
	require.Equal(t, http.StatusOK, w.Code)
	updated = decodeBody[api.Task](t, w)
	assert.Nil(t, updated.Comment)
	assert.Equal(t, "final", updated.Text)
	assert.True(t, updated.Completed)

	w = f.do(t, f.alice, http.MethodPut, target, `{"text":""}`)
	requireError(t, w, http.StatusBadRequest, "task text is required")
}

func TestTaskHandler_Delete(t *testing.T) {
	f := setupTaskFixture(t)
	task := f.createTask(t, f.alice, "temporary")

	w := f.do(t, f.alice, http.MethodDelete, "/api/tasks/"+task.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, msgTaskDeleted, decodeBody[api.StatusResponse](t, w).Message)

	w = f.do(t, f.alice, http.MethodDelete, "/api/tasks/"+task.ID, "")
	requireError(t, w, http.StatusNotFound, msgTaskNotFound)
}

func TestTaskHandler_Subtasks(t *testing.T) {
	f := setupTaskFixture(t)
	task := f.createTask(t, f.alice, "trip")
	base := "/api/tasks/" + task.ID + "/subtasks"

	w := f.do(t, f.alice, http.MethodPost, base, `{"text":"tickets"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	w = f.do(t, f.alice, http.MethodPost, base, `{"text":"hotel"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	withSubtasks := decodeBody[api.Task](t, w)
	require.Len(t, withSubtasks.Subtasks, 2)
	assert.Equal(t, "tickets", withSubtasks.Subtasks[0].Text)
	assert.Equal(t, "hotel", withSubtasks.Subtasks[1].Text)

	first := withSubtasks.Subtasks[0].ID
	w = f.do(t, f.alice, http.MethodPut, base+"/"+first, `{"completed":true}`)
	require.Equal(t, http.StatusOK, w.Code)
	updated := decodeBody[api.Task](t, w)
	assert.True(t, updated.Subtasks[0].Completed)
	assert.Equal(t, "tickets", updated.Subtasks[0].Text)

	w = f.do(t, f.alice, http.MethodDelete, base+"/"+first, "")
	require.Equal(t, http.StatusOK, w.Code)
	updated = decodeBody[api.Task](t, w)
	require.Len(t, updated.Subtasks, 1)
	assert.Equal(t, "hotel", updated.Subtasks[0].Text)

	w = f.do(t, f.alice, http.MethodPost, base, `{"text":" "}`)
	requireError(t, w, http.StatusBadRequest, msgSubtaskTextRequired)

	w = f.do(t, f.alice, http.MethodPut, base+"/missing", `{"completed":true}`)
	requireError(t, w, http.StatusNotFound, msgSubtaskNotFound)

	w = f.do(t, f.alice, http.MethodDelete, base+"/missing", "")
	requireError(t, w, http.StatusNotFound, msgSubtaskNotFound)
}

func TestTaskHandler_OtherOwnerIsNotFound(t *testing.T) {
	f := setupTaskFixture(t)
	task := f.createTask(t, f.alice, "private")

	requests := []struct {
		method string
		target string
		body   string
	}{
		{http.MethodPut, "/api/tasks/" + task.ID, `{"completed":true}`},
		{http.MethodDelete, "/api/tasks/" + task.ID, ""},
		{http.MethodPost, "/api/tasks/" + task.ID + "/subtasks", `{"text":"sneaky"}`},
		{http.MethodPut, "/api/tasks/" + task.ID + "/subtasks/x", `{"completed":true}`},
		{http.MethodDelete, "/api/tasks/" + task.ID + "/subtasks/x", ""},
	}

	for _, r := range requests {
		t.Run(r.method+" "+r.target, func(t *testing.T) {
			w := f.do(t, f.bob, r.method, r.target, r.body)
			requireError(t, w, http.StatusNotFound, msgTaskNotFound)
		})
	}

	// Задача alice осталась нетронутой
	w := f.do(t, f.alice, http.MethodGet, "/api/tasks", "")
	tasks := decodeBody[[]api.Task](t, w)
	require.Len(t, tasks, 1)
	assert.False(t, tasks[0].Completed)
	assert.Empty(t, tasks[0].Subtasks)
}

func TestTaskHandler_NoIdentity(t *testing.T) {
	f := setupTaskFixture(t)

	w := httptest.NewRecorder()
	f.mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/tasks", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
