package task

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/example/task-tracker/domain/stats"
	domain "github.com/example/task-tracker/domain/task"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// TaskInput carries the editable fields of a task as submitted by a form or
// JSON body. DueDate uses domain.DueDateLayout.
type TaskInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Category    string `json:"category"`
	DueDate     string `json:"due_date"`
	Notes       string `json:"notes"`
	// Completed is only honoured on update.
	Completed *bool `json:"completed,omitempty"`
}

// TaskService implements the task operations. The owner id is an explicit
// argument of every method.
type TaskService struct {
	repo   *TaskRepository
	engine *stats.Engine
	now    func() time.Time
	group  singleflight.Group
}

// NewTaskService creates a TaskService. A nil clock defaults to time.Now.
func NewTaskService(repo *TaskRepository, now func() time.Time, h stats.Heuristics) *TaskService {
	if now == nil {
		now = time.Now
	}
	return &TaskService{
		repo:   repo,
		engine: stats.NewEngine(now, h),
		now:    now,
	}
}

// Create validates in and stores a new task for owner.
func (s *TaskService) Create(ctx context.Context, owner string, in TaskInput) (*domain.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, domain.ErrTitleRequired
	}
	priority, err := domain.ParsePriority(in.Priority)
	if err != nil {
		return nil, err
	}

	now := s.now()
	t := &domain.Task{
		ID:          uuid.New().String(),
		UserID:      owner,
		Title:       title,
		Description: in.Description,
		Priority:    priority,
		Category:    categoryOrDefault(in.Category),
		DueDate:     domain.ParseDueDate(in.DueDate),
		Notes:       in.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to save task: %w", err)
	}
	return t, nil
}

// Get returns owner's task id.
func (s *TaskService) Get(ctx context.Context, owner, id string) (*domain.Task, error) {
	return s.repo.FindOwned(ctx, id, owner)
}

// Update replaces the editable fields of owner's task id. The due date is
// only replaced when in.DueDate parses; otherwise the stored one is kept.
func (s *TaskService) Update(ctx context.Context, owner, id string, in TaskInput) (*domain.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, domain.ErrTitleRequired
	}
	priority, err := domain.ParsePriority(in.Priority)
	if err != nil {
		return nil, err
	}

	t, err := s.repo.FindOwned(ctx, id, owner)
	if err != nil {
		return nil, err
	}

	t.Title = title
	t.Description = in.Description
	t.Priority = priority
	t.Category = categoryOrDefault(in.Category)
	t.Notes = in.Notes
	if due := domain.ParseDueDate(in.DueDate); due != nil {
		t.DueDate = due
	}
	if in.Completed != nil {
		t.Completed = *in.Completed
	}
	t.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Toggle flips the completed flag of owner's task id.
func (s *TaskService) Toggle(ctx context.Context, owner, id string) (*domain.Task, error) {
	return s.repo.Toggle(ctx, id, owner)
}

// Delete hard-deletes owner's task id and returns what was removed.
func (s *TaskService) Delete(ctx context.Context, owner, id string) (*domain.Task, error) {
	t, err := s.repo.FindOwned(ctx, id, owner)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, id, owner); err != nil {
		return nil, err
	}
	return t, nil
}

// List returns owner's tasks matching f, newest first.
func (s *TaskService) List(ctx context.Context, owner string, f domain.Filter) ([]*domain.Task, error) {
	return s.repo.List(ctx, owner, f)
}

// Categories returns owner's distinct category labels.
func (s *TaskService) Categories(ctx context.Context, owner string) ([]string, error) {
	return s.repo.Categories(ctx, owner)
}

// Stats computes the dashboard report over all of owner's tasks. Concurrent
// calls for the same owner share one load, which is not cancelled with the
// caller that started it.
func (s *TaskService) Stats(ctx context.Context, owner string) (stats.Report, error) {
	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := s.group.Do(owner, func() (any, error) {
		tasks, err := s.repo.ListByOwner(loadCtx, owner)
		if err != nil {
			return nil, fmt.Errorf("failed to load tasks: %w", err)
		}
		return s.engine.Compute(tasks), nil
	})
	if err != nil {
		return stats.Report{}, err
	}
	return v.(stats.Report), nil
}

func categoryOrDefault(c string) string {
	if c = strings.TrimSpace(c); c == "" {
		return domain.DefaultCategory
	}
	return c
}
