package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dibarradev/to-do/pkg/api"
)

// ListTasks возвращает задачи пользователя
func (c *Client) ListTasks(ctx context.Context, accessToken string) ([]api.Task, error) {
	var tasks []api.Task
	if _, err := c.doRequest(ctx, http.MethodGet, "/api/tasks", callOptions{accessToken: accessToken}, nil, &tasks); err != nil {
		return nil, fmt.Errorf("list tasks request failed: %w", err)
	}
	return tasks, nil
}

// CreateTask создает задачу
func (c *Client) CreateTask(ctx context.Context, accessToken string, req api.CreateTaskRequest) (*api.Task, error) {
	var task api.Task
	if _, err := c.doRequest(ctx, http.MethodPost, "/api/tasks", callOptions{accessToken: accessToken}, req, &task); err != nil {
		return nil, fmt.Errorf("create task request failed: %w", err)
	}
	return &task, nil
}

// UpdateTask частично обновляет задачу
func (c *Client) UpdateTask(ctx context.Context, accessToken, taskID string, req api.UpdateTaskRequest) (*api.Task, error) {
	var task api.Task
	if _, err := c.doRequest(ctx, http.MethodPut, taskPath(taskID), callOptions{accessToken: accessToken}, req, &task); err != nil {
		return nil, fmt.Errorf("update task request failed: %w", err)
	}
	return &task, nil
}

// DeleteTask удаляет задачу
func (c *Client) DeleteTask(ctx context.Context, accessToken, taskID string) error {
	if _, err := c.doRequest(ctx, http.MethodDelete, taskPath(taskID), callOptions{accessToken: accessToken}, nil, nil); err != nil {
		return fmt.Errorf("delete task request failed: %w", err)
	}
	return nil
}

// AddSubtask добавляет подзадачу и возвращает обновленную задачу
func (c *Client) AddSubtask(ctx context.Context, accessToken, taskID string, req api.CreateSubtaskRequest) (*api.Task, error) {
	var task api.Task
	if _, err := c.doRequest(ctx, http.MethodPost, taskPath(taskID)+"/subtasks", callOptions{accessToken: accessToken}, req, &task); err != nil {
		return nil, fmt.Errorf("add subtask request failed: %w", err)
	}
	return &task, nil
}

// UpdateSubtask частично обновляет подзадачу
func (c *Client) UpdateSubtask(ctx context.Context, accessToken, taskID, subtaskID string, req api.UpdateSubtaskRequest) (*api.Task, error) {
	var task api.Task
	if _, err := c.doRequest(ctx, http.MethodPut, subtaskPath(taskID, subtaskID), callOptions{accessToken: accessToken}, req, &task); err != nil {
		return nil, fmt.Errorf("update subtask request failed: %w", err)
	}
	return &task, nil
}

// DeleteSubtask удаляет подзадачу
func (c *Client) DeleteSubtask(ctx context.Context, accessToken, taskID, subtaskID string) (*api.Task, error) {
	var task api.Task
	if _, err := c.doRequest(ctx, http.MethodDelete, subtaskPath(taskID, subtaskID), callOptions{accessToken: accessToken}, nil, &task); err != nil {
		return nil, fmt.Errorf("delete subtask request failed: %w", err)
	}
	return &task, nil
}

func taskPath(taskID string) string {
	return "/api/tasks/" + url.PathEscape(taskID)
}

func subtaskPath(taskID, subtaskID string) string {
	return taskPath(taskID) + "/subtasks/" + url.PathEscape(subtaskID)
}
