package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/dibarradev/to-do/internal/models"
	"github.com/dibarradev/to-do/internal/server/storage"
)

const taskColumns = `id, user_id, text, completed, comment, subtasks, created_at, updated_at`

// ListTasks returns owner's tasks, newest first
func (s *Storage) ListTasks(ctx context.Context, userID string) ([]*models.Task, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = $1 ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, oops.Code("TASK_LIST_FAILED").With("user_id", userID).Wrap(err)
	}
	defer rows.Close()

	tasks := make([]*models.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, oops.Code("TASK_LIST_FAILED").
				With("operation", "scan task").
				With("user_id", userID).
				Wrap(err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("TASK_LIST_FAILED").With("user_id", userID).Wrap(err)
	}
	return tasks, nil
}

// GetTask retrieves a single task of the owner
func (s *Storage) GetTask(ctx context.Context, userID, taskID string) (*models.Task, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND user_id = $2`,
		taskID, userID,
	)

	task, err := scanTask(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("TASK_NOT_FOUND").With("id", taskID).Wrap(storage.ErrTaskNotFound)
	}
	if err != nil {
		return nil, oops.Code("TASK_GET_FAILED").With("id", taskID).Wrap(err)
	}
	return task, nil
}

// CreateTask stores a new task
func (s *Storage) CreateTask(ctx context.Context, task *models.Task) error {
	subtasks, err := encodeSubtasks(task.Subtasks)
	if err != nil {
		return oops.Code("TASK_CREATE_FAILED").With("operation", "marshal subtasks").Wrap(err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO tasks (id, user_id, text, completed, comment, subtasks, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		task.ID,
		task.UserID,
		task.Text,
		task.Completed,
		task.Comment,
		subtasks,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		return oops.Code("TASK_CREATE_FAILED").
			With("operation", "insert task").
			With("user_id", task.UserID).
			Wrap(err)
	}
	return nil
}

// UpdateTask replaces mutable fields of the task
func (s *Storage) UpdateTask(ctx context.Context, task *models.Task) error {
	subtasks, err := encodeSubtasks(task.Subtasks)
	if err != nil {
		return oops.Code("TASK_UPDATE_FAILED").With("operation", "marshal subtasks").Wrap(err)
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE tasks
		SET text = $1, completed = $2, comment = $3, subtasks = $4, updated_at = $5
		WHERE id = $6 AND user_id = $7
	`,
		task.Text,
		task.Completed,
		task.Comment,
		subtasks,
		task.UpdatedAt,
		task.ID,
		task.UserID,
	)
	if err != nil {
		return oops.Code("TASK_UPDATE_FAILED").With("id", task.ID).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("TASK_NOT_FOUND").With("id", task.ID).Wrap(storage.ErrTaskNotFound)
	}
	return nil
}

// DeleteTask deletes task of the owner
func (s *Storage) DeleteTask(ctx context.Context, userID, taskID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, taskID, userID)
	if err != nil {
		return oops.Code("TASK_DELETE_FAILED").With("id", taskID).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("TASK_NOT_FOUND").With("id", taskID).Wrap(storage.ErrTaskNotFound)
	}
	return nil
}

// CountTasks returns the total number of tasks
func (s *Storage) CountTasks(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tasks`).Scan(&n); err != nil {
		return 0, oops.Code("TASK_COUNT_FAILED").Wrap(err)
	}
	return n, nil
}

func scanTask(row pgx.Row) (*models.Task, error) {
	var (
		task     models.Task
		subtasks []byte
	)
	err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Text,
		&task.Completed,
		&task.Comment,
		&subtasks,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.Subtasks = []models.Subtask{}
	if len(subtasks) > 0 {
		if err := json.Unmarshal(subtasks, &task.Subtasks); err != nil {
			return nil, err
		}
	}
	return &task, nil
}

func encodeSubtasks(subtasks []models.Subtask) ([]byte, error) {
	if subtasks == nil {
		subtasks = []models.Subtask{}
	}
	return json.Marshal(subtasks)
}
