package service

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/atinyakov/TaskKeeper/internal/models"
)

// TaskRepository defines the persistence operations needed by the TaskService.
type TaskRepository interface {
	// ListTasks returns all tasks in storage order.
	ListTasks(ctx context.Context) ([]models.Task, error)
	// CreateTask stores a new task.
	CreateTask(ctx context.Context, task models.Task) error
	// UpdateTask applies isComplete and, when non-empty, name to task id in
	// one atomic statement. It returns models.ErrNotFound for an unknown id.
	UpdateTask(ctx context.Context, id string, isComplete bool, name string) (models.Task, error)
	// DeleteTask removes task id or returns models.ErrNotFound.
	DeleteTask(ctx context.Context, id string) error
}

// TaskService implements the task CRUD rules.
// Authorization happens before these methods are reached; tasks are shared by
// all authenticated users.
type TaskService struct {
	// repo is the underlying persistence repository.
	repo TaskRepository
}

// NewTaskService constructs a TaskService with the provided TaskRepository.
func NewTaskService(repo TaskRepository) *TaskService {
	return &TaskService{repo: repo}
}

// List returns every task.
func (s *TaskService) List(ctx context.Context) ([]models.Task, error) {
	return s.repo.ListTasks(ctx)
}

// Create stores a new, incomplete task named name.
func (s *TaskService) Create(ctx context.Context, name string) (models.Task, error) {
	if err := validateName(name); err != nil {
		return models.Task{}, err
	}
	task := models.Task{
		ID:         uuid.NewString(),
		Name:       name,
		IsComplete: false,
	}
	if err := s.repo.CreateTask(ctx, task); err != nil {
		return models.Task{}, err
	}
	return task, nil
}

// Update sets the completion flag of task id unconditionally and replaces its
// name only when name is not empty.
func (s *TaskService) Update(ctx context.Context, id string, isComplete bool, name string) (models.Task, error) {
	id, err := canonicalID(id)
	if err != nil {
		return models.Task{}, err
	}
	if err := validateName(name); err != nil {
		return models.Task{}, err
	}
	return s.repo.UpdateTask(ctx, id, isComplete, name)
}

// Delete permanently removes task id.
func (s *TaskService) Delete(ctx context.Context, id string) error {
	id, err := canonicalID(id)
	if err != nil {
		return err
	}
	return s.repo.DeleteTask(ctx, id)
}

// canonicalID returns id in its canonical UUID form. Anything that is not a
// UUID cannot name a stored task and is reported as not found.
func canonicalID(id string) (string, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", fmt.Errorf("%w: task %s", models.ErrNotFound, id)
	}
	return parsed.String(), nil
}

func validateName(name string) error {
	if utf8.RuneCountInString(name) > models.MaxTaskNameLength {
		return fmt.Errorf("%w: task name must be at most %d characters", models.ErrValidation, models.MaxTaskNameLength)
	}
	return nil
}
