package storage

import (
	"context"

	"github.com/dibarradev/to-do/internal/models"
)

// TaskStorage defines interface for task persistence
// Every method is scoped by owner: a task of another user is reported as ErrTaskNotFound
type TaskStorage interface {
	// ListTasks returns owner's tasks, newest first
	ListTasks(ctx context.Context, userID string) ([]*models.Task, error)

	// GetTask retrieves a single task of the owner
	// Returns ErrTaskNotFound if task doesn't exist
	GetTask(ctx context.Context, userID, taskID string) (*models.Task, error)

	// CreateTask stores a new task
	CreateTask(ctx context.Context, task *models.Task) error

	// UpdateTask replaces text, completed, comment and subtasks of the task
	// Returns ErrTaskNotFound if task doesn't exist
	UpdateTask(ctx context.Context, task *models.Task) error

	// DeleteTask deletes task of the owner
	// Returns ErrTaskNotFound if task doesn't exist
	DeleteTask(ctx context.Context, userID, taskID string) error

	// CountTasks returns the total number of tasks
	CountTasks(ctx context.Context) (int64, error)
}

// Storage is a complete backend used by the server
type Storage interface {
	UserStorage
	SessionStorage
	ResetStorage
	TaskStorage

	// Ping checks the connection to the database
	Ping(ctx context.Context) error

	// Driver returns backend name for health reports
	Driver() string

	// Close releases database resources
	Close() error
}
