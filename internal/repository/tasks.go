package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atinyakov/TaskKeeper/internal/models"
)

// PostgresTaskRepository implements task CRUD against a PostgreSQL database.
// Every mutation is a single statement, so concurrent writers to one task
// are serialized by the database and the last write wins.
type PostgresTaskRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresTaskRepository creates a new PostgresTaskRepository using the provided *sql.DB.
func NewPostgresTaskRepository(db *sql.DB) *PostgresTaskRepository {
	return &PostgresTaskRepository{DB: db}
}

// ListTasks returns every task in insertion order.
func (r *PostgresTaskRepository) ListTasks(ctx context.Context) ([]models.Task, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, name, is_complete FROM tasks ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("ListTasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]models.Task, 0)
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.Name, &t.IsComplete); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListTasks: %w", err)
	}
	return tasks, nil
}

// CreateTask inserts task as given; the caller assigns the id.
func (r *PostgresTaskRepository) CreateTask(ctx context.Context, task models.Task) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO tasks (id, name, is_complete) VALUES ($1, $2, $3)
	`, task.ID, task.Name, task.IsComplete)
	if err != nil {
		return fmt.Errorf("CreateTask: %w", err)
	}
	return nil
}

// UpdateTask sets the completion flag of task id and, when name is not
// empty, its name. It returns the stored record after the update or
// models.ErrNotFound.
func (r *PostgresTaskRepository) UpdateTask(ctx context.Context, id string, isComplete bool, name string) (models.Task, error) {
	var t models.Task
	err := r.DB.QueryRowContext(ctx, `
		UPDATE tasks
		   SET is_complete = $2,
		       name = COALESCE(NULLIF($3, ''), name)
		 WHERE id = $1
		RETURNING id, name, is_complete
	`, id, isComplete, name).Scan(&t.ID, &t.Name, &t.IsComplete)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, fmt.Errorf("%w: task %s", models.ErrNotFound, id)
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("UpdateTask: %w", err)
	}
	return t, nil
}

// DeleteTask permanently removes task id, or returns models.ErrNotFound.
func (r *PostgresTaskRepository) DeleteTask(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("DeleteTask: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("DeleteTask: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: task %s", models.ErrNotFound, id)
	}
	return nil
}
