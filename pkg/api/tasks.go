package api

import "time"

// Subtask подзадача
type Subtask struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// Task задача пользователя
type Task struct {
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Comment   *string   `json:"comment"`
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Text      string    `json:"text"`
	Subtasks  []Subtask `json:"subtasks"`
	Completed bool      `json:"completed"`
}

// CreateTaskRequest создание задачи
type CreateTaskRequest struct {
	Comment *string `json:"comment,omitempty"`
	Text    string  `json:"text"`
}

// UpdateTaskRequest частичное обновление задачи
// Отсутствующие поля не меняются; пустой comment удаляет комментарий
type UpdateTaskRequest struct {
	Text      *string `json:"text,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
	Comment   *string `json:"comment,omitempty"`
}

// CreateSubtaskRequest создание подзадачи
type CreateSubtaskRequest struct {
	Text string `json:"text"`
}

// UpdateSubtaskRequest частичное обновление подзадачи
type UpdateSubtaskRequest struct {
	Text      *string `json:"text,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}
