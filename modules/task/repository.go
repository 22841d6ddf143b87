package task

import (
	"context"
	"errors"
	"strings"

	domain "github.com/example/task-tracker/domain/task"
	"gorm.io/gorm"
)

// TaskRepository stores tasks in SQLite via GORM. Every method is scoped to
// an owner; a task that exists but belongs to someone else is reported as
// domain.ErrTaskNotFound.
type TaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create inserts a task.
func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) error {
	return r.db.WithContext(ctx).Create(t).Error
}

// FindOwned returns the task with id if owner owns it.
func (r *TaskRepository) FindOwned(ctx context.Context, id, owner string) (*domain.Task, error) {
	var t domain.Task
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, owner).
		First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}
	return &t, nil
}

// ListByOwner returns all of owner's tasks, newest first.
func (r *TaskRepository) ListByOwner(ctx context.Context, owner string) ([]*domain.Task, error) {
	return r.List(ctx, owner, domain.Filter{})
}

// List returns owner's tasks matching f, newest first.
func (r *TaskRepository) List(ctx context.Context, owner string, f domain.Filter) ([]*domain.Task, error) {
	f = f.Normalize()
	q := r.db.WithContext(ctx).Where("user_id = ?", owner)

	switch f.Status {
	case domain.StatusCompleted:
		q = q.Where("completed = ?", true)
	case domain.StatusPending:
		q = q.Where("completed = ?", false)
	}
	if f.Priority != domain.FilterAll {
		q = q.Where("priority = ?", f.Priority)
	}
	if f.Category != domain.FilterAll {
		q = q.Where("category = ?", f.Category)
	}
	if f.Search != "" {
		q = q.Where(`LOWER(title) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(f.Search))+"%")
	}

	tasks := make([]*domain.Task, 0)
	if err := q.Order("created_at DESC").Order("id DESC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// Categories returns owner's distinct category labels in ascending order.
func (r *TaskRepository) Categories(ctx context.Context, owner string) ([]string, error) {
	categories := make([]string, 0)
	err := r.db.WithContext(ctx).
		Model(&domain.Task{}).
		Where("user_id = ?", owner).
		Distinct().
		Order("category ASC").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// Update writes the editable fields of t. Zero values are written too.
func (r *TaskRepository) Update(ctx context.Context, t *domain.Task) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Task{}).
		Where("id = ? AND user_id = ?", t.ID, t.UserID).
		Updates(map[string]any{
			"title":       t.Title,
			"description": t.Description,
			"priority":    t.Priority,
			"category":    t.Category,
			"due_date":    t.DueDate,
			"notes":       t.Notes,
			"completed":   t.Completed,
			"updated_at":  t.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

// Toggle flips the completed flag in a single statement and returns the
// stored task.
func (r *TaskRepository) Toggle(ctx context.Context, id, owner string) (*domain.Task, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.Task{}).
		Where("id = ? AND user_id = ?", id, owner).
		Update("completed", gorm.Expr("NOT completed"))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, domain.ErrTaskNotFound
	}
	return r.FindOwned(ctx, id, owner)
}

// Delete removes the task. Deleting a missing or foreign task returns
// domain.ErrTaskNotFound.
func (r *TaskRepository) Delete(ctx context.Context, id, owner string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, owner).
		Delete(&domain.Task{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
