package models

import (
	"errors"
	"time"
)

// ErrSubtaskNotFound подзадача с указанным ID отсутствует в задаче
var ErrSubtaskNotFound = errors.New("subtask not found")

// Task задача пользователя со списком подзадач
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

// Subtask подзадача хранится внутри задачи
type Subtask struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// SubtaskPatch частичное обновление подзадачи; nil поля не меняются
type SubtaskPatch struct {
	Text      *string
	Completed *bool
}

// AddSubtask добавляет подзадачу в конец списка
func (t *Task) AddSubtask(id, text string, now time.Time) Subtask {
	st := Subtask{ID: id, Text: text}
	t.Subtasks = append(t.Subtasks, st)
	t.UpdatedAt = now
	return st
}

// UpdateSubtask применяет patch к подзадаче
func (t *Task) UpdateSubtask(id string, patch SubtaskPatch, now time.Time) error {
	i := t.subtaskIndex(id)
	if i < 0 {
		return ErrSubtaskNotFound
	}
	if patch.Text != nil {
		t.Subtasks[i].Text = *patch.Text
	}
	if patch.Completed != nil {
		t.Subtasks[i].Completed = *patch.Completed
	}
	t.UpdatedAt = now
	return nil
}

// RemoveSubtask удаляет подзадачу, сохраняя порядок остальных
func (t *Task) RemoveSubtask(id string, now time.Time) error {
	i := t.subtaskIndex(id)
	if i < 0 {
		return ErrSubtaskNotFound
	}
	t.Subtasks = append(t.Subtasks[:i], t.Subtasks[i+1:]...)
	t.UpdatedAt = now
	return nil
}

func (t *Task) subtaskIndex(id string) int {
	for i := range t.Subtasks {
		if t.Subtasks[i].ID == id {
			return i
		}
	}
	return -1
}
