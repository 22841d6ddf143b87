package task

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/example/task-tracker/domain/stats"
	domain "github.com/example/task-tracker/domain/task"
	"github.com/example/task-tracker/events"
	"github.com/example/task-tracker/modules/auth"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/middleware/requestid"
)

// ErrOwnerNotFound is returned when a task is created for an unknown user.
var ErrOwnerNotFound = errors.New("task owner not found")

func (m *TaskModule) createTask(ctx context.Context, req CreateTaskRequest, _ *mono.Msg) (domain.Task, error) {
	if _, err := m.authPort.GetUser(ctx, req.UserID); err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return domain.Task{}, ErrOwnerNotFound
		}
		return domain.Task{}, fmt.Errorf("failed to validate owner: %w", err)
	}

	t, err := m.service.Create(ctx, req.UserID, req.Input)
	if err != nil {
		return domain.Task{}, err
	}
	log.Printf("[task] Created task %s for user %s (request_id=%s)", t.ID, t.UserID, requestid.GetRequestID(ctx))

	if m.eventBus != nil {
		event := events.TaskCreatedEvent{
			TaskID:    t.ID,
			UserID:    t.UserID,
			Title:     t.Title,
			Priority:  string(t.Priority),
			Category:  t.Category,
			CreatedAt: t.CreatedAt,
		}
		if err := events.TaskCreatedV1.Publish(m.eventBus, event, nil); err != nil {
			// Publishing is best-effort.
			log.Printf("[task] Warning: failed to publish TaskCreated event for task %s: %v", t.ID, err)
		}
	}

	return *t, nil
}

func (m *TaskModule) getTask(ctx context.Context, req TaskRefRequest, _ *mono.Msg) (domain.Task, error) {
	t, err := m.service.Get(ctx, req.UserID, req.TaskID)
	if err != nil {
		return domain.Task{}, err
	}
	return *t, nil
}

func (m *TaskModule) updateTask(ctx context.Context, req UpdateTaskRequest, _ *mono.Msg) (domain.Task, error) {
	t, err := m.service.Update(ctx, req.UserID, req.TaskID, req.Input)
	if err != nil {
		return domain.Task{}, err
	}

	if m.eventBus != nil {
		event := events.TaskUpdatedEvent{
			TaskID:    t.ID,
			UserID:    t.UserID,
			Title:     t.Title,
			UpdatedAt: t.UpdatedAt,
		}
		if err := events.TaskUpdatedV1.Publish(m.eventBus, event, nil); err != nil {
			log.Printf("[task] Warning: failed to publish TaskUpdated event for task %s: %v", t.ID, err)
		}
	}

	return *t, nil
}

func (m *TaskModule) toggleTask(ctx context.Context, req TaskRefRequest, _ *mono.Msg) (domain.Task, error) {
	t, err := m.service.Toggle(ctx, req.UserID, req.TaskID)
	if err != nil {
		return domain.Task{}, err
	}

	if m.eventBus != nil {
		event := events.TaskToggledEvent{
			TaskID:    t.ID,
			UserID:    t.UserID,
			Title:     t.Title,
			Completed: t.Completed,
			ToggledAt: m.now(),
		}
		if err := events.TaskToggledV1.Publish(m.eventBus, event, nil); err != nil {
			log.Printf("[task] Warning: failed to publish TaskToggled event for task %s: %v", t.ID, err)
		}
	}

	return *t, nil
}

func (m *TaskModule) deleteTask(ctx context.Context, req TaskRefRequest, _ *mono.Msg) (DeleteTaskResponse, error) {
	t, err := m.service.Delete(ctx, req.UserID, req.TaskID)
	if err != nil {
		return DeleteTaskResponse{Deleted: false, TaskID: req.TaskID}, err
	}
	log.Printf("[task] Deleted task %s for user %s (request_id=%s)", t.ID, t.UserID, requestid.GetRequestID(ctx))

	if m.eventBus != nil {
		event := events.TaskDeletedEvent{
			TaskID:    t.ID,
			UserID:    t.UserID,
			Title:     t.Title,
			DeletedAt: m.now(),
		}
		if err := events.TaskDeletedV1.Publish(m.eventBus, event, nil); err != nil {
			log.Printf("[task] Warning: failed to publish TaskDeleted event for task %s: %v", t.ID, err)
		}
	}

	return DeleteTaskResponse{Deleted: true, TaskID: t.ID}, nil
}

func (m *TaskModule) listTasks(ctx context.Context, req ListTasksRequest, _ *mono.Msg) (ListTasksResponse, error) {
	f := req.Filter.Normalize()
	tasks, err := m.service.List(ctx, req.UserID, f)
	if err != nil {
		return ListTasksResponse{}, fmt.Errorf("failed to list tasks: %w", err)
	}
	return ListTasksResponse{Tasks: tasks, Total: len(tasks), Filter: f}, nil
}

func (m *TaskModule) listCategories(ctx context.Context, req OwnerRequest, _ *mono.Msg) (ListCategoriesResponse, error) {
	categories, err := m.service.Categories(ctx, req.UserID)
	if err != nil {
		return ListCategoriesResponse{}, fmt.Errorf("failed to list categories: %w", err)
	}
	return ListCategoriesResponse{Categories: categories}, nil
}

func (m *TaskModule) taskStats(ctx context.Context, req OwnerRequest, _ *mono.Msg) (stats.Report, error) {
	return m.service.Stats(ctx, req.UserID)
}
