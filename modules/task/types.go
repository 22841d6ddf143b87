package task

import (
	"context"

	"github.com/example/task-tracker/domain/stats"
	domain "github.com/example/task-tracker/domain/task"
	"github.com/example/task-tracker/domain/user"
)

// Service names registered by the task module.
const (
	ServiceCreateTask     = "create-task"
	ServiceGetTask        = "get-task"
	ServiceUpdateTask     = "update-task"
	ServiceToggleTask     = "toggle-task"
	ServiceDeleteTask     = "delete-task"
	ServiceListTasks      = "list-tasks"
	ServiceListCategories = "list-categories"
	ServiceTaskStats      = "task-stats"
)

// CreateTaskRequest is the create-task service request.
type CreateTaskRequest struct {
	UserID string    `json:"user_id"`
	Input  TaskInput `json:"input"`
}

// TaskRefRequest addresses one task of one owner. Used by get-task,
// toggle-task and delete-task.
type TaskRefRequest struct {
	UserID string `json:"user_id"`
	TaskID string `json:"task_id"`
}

// UpdateTaskRequest is the update-task service request.
type UpdateTaskRequest struct {
	UserID string    `json:"user_id"`
	TaskID string    `json:"task_id"`
	Input  TaskInput `json:"input"`
}

// DeleteTaskResponse is the delete-task service response.
type DeleteTaskResponse struct {
	Deleted bool   `json:"deleted"`
	TaskID  string `json:"task_id"`
}

// ListTasksRequest is the list-tasks service request.
type ListTasksRequest struct {
	UserID string        `json:"user_id"`
	Filter domain.Filter `json:"filter"`
}

// ListTasksResponse is the list-tasks service response.
type ListTasksResponse struct {
	Tasks  []*domain.Task `json:"tasks"`
	Total  int            `json:"total"`
	Filter domain.Filter  `json:"filter"`
}

// OwnerRequest addresses everything owned by one user. Used by
// list-categories and task-stats.
type OwnerRequest struct {
	UserID string `json:"user_id"`
}

// ListCategoriesResponse is the list-categories service response.
type ListCategoriesResponse struct {
	Categories []string `json:"categories"`
}

// TaskPort is the contract the web module uses to reach the task module.
// Every call names the owner explicitly.
type TaskPort interface {
	CreateTask(ctx context.Context, owner user.Identity, in TaskInput) (*domain.Task, error)
	GetTask(ctx context.Context, owner user.Identity, taskID string) (*domain.Task, error)
	UpdateTask(ctx context.Context, owner user.Identity, taskID string, in TaskInput) (*domain.Task, error)
	ToggleTask(ctx context.Context, owner user.Identity, taskID string) (*domain.Task, error)
	DeleteTask(ctx context.Context, owner user.Identity, taskID string) error
	ListTasks(ctx context.Context, owner user.Identity, f domain.Filter) (*ListTasksResponse, error)
	ListCategories(ctx context.Context, owner user.Identity) ([]string, error)
	Stats(ctx context.Context, owner user.Identity) (*stats.Report, error)
}
