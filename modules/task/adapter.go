package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/example/task-tracker/domain/stats"
	domain "github.com/example/task-tracker/domain/task"
	"github.com/example/task-tracker/domain/user"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// taskAdapter implements TaskPort over the task module's service container.
type taskAdapter struct {
	container mono.ServiceContainer
}

// NewTaskAdapter creates a new adapter for task services.
// container is the ServiceContainer received via SetDependencyServiceContainer.
func NewTaskAdapter(container mono.ServiceContainer) TaskPort {
	if container == nil {
		panic("task adapter requires non-nil ServiceContainer")
	}
	return &taskAdapter{container: container}
}

func (a *taskAdapter) CreateTask(ctx context.Context, owner user.Identity, in TaskInput) (*domain.Task, error) {
	req := CreateTaskRequest{UserID: owner.UserID, Input: in}
	var resp domain.Task
	if err := call(ctx, a.container, ServiceCreateTask, &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *taskAdapter) GetTask(ctx context.Context, owner user.Identity, taskID string) (*domain.Task, error) {
	req := TaskRefRequest{UserID: owner.UserID, TaskID: taskID}
	var resp domain.Task
	if err := call(ctx, a.container, ServiceGetTask, &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *taskAdapter) UpdateTask(ctx context.Context, owner user.Identity, taskID string, in TaskInput) (*domain.Task, error) {
	req := UpdateTaskRequest{UserID: owner.UserID, TaskID: taskID, Input: in}
	var resp domain.Task
	if err := call(ctx, a.container, ServiceUpdateTask, &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *taskAdapter) ToggleTask(ctx context.Context, owner user.Identity, taskID string) (*domain.Task, error) {
	req := TaskRefRequest{UserID: owner.UserID, TaskID: taskID}
	var resp domain.Task
	if err := call(ctx, a.container, ServiceToggleTask, &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *taskAdapter) DeleteTask(ctx context.Context, owner user.Identity, taskID string) error {
	req := TaskRefRequest{UserID: owner.UserID, TaskID: taskID}
	var resp DeleteTaskResponse
	if err := call(ctx, a.container, ServiceDeleteTask, &req, &resp); err != nil {
		return err
	}
	if !resp.Deleted {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (a *taskAdapter) ListTasks(ctx context.Context, owner user.Identity, f domain.Filter) (*ListTasksResponse, error) {
	req := ListTasksRequest{UserID: owner.UserID, Filter: f}
	var resp ListTasksResponse
	if err := call(ctx, a.container, ServiceListTasks, &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *taskAdapter) ListCategories(ctx context.Context, owner user.Identity) ([]string, error) {
	req := OwnerRequest{UserID: owner.UserID}
	var resp ListCategoriesResponse
	if err := call(ctx, a.container, ServiceListCategories, &req, &resp); err != nil {
		return nil, err
	}
	return resp.Categories, nil
}

func (a *taskAdapter) Stats(ctx context.Context, owner user.Identity) (*stats.Report, error) {
	req := OwnerRequest{UserID: owner.UserID}
	var resp stats.Report
	if err := call(ctx, a.container, ServiceTaskStats, &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// call runs a request-reply service and maps known errors back to their sentinels.
func call[Resp any](ctx context.Context, container mono.ServiceContainer, service string, req any, resp *Resp) error {
	if err := helper.CallRequestReplyService(
		ctx,
		container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		resp,
	); err != nil {
		if sentinel := translateError(err); sentinel != nil {
			return sentinel
		}
		return fmt.Errorf("%s service call failed: %w", service, err)
	}
	return nil
}

var knownErrors = []error{
	domain.ErrTaskNotFound,
	domain.ErrTitleRequired,
	domain.ErrInvalidPriority,
	ErrOwnerNotFound,
}

// translateError maps a remote error back to its sentinel by message.
func translateError(err error) error {
	for _, known := range knownErrors {
		if errors.Is(err, known) || strings.Contains(err.Error(), known.Error()) {
			return known
		}
	}
	return nil
}
