// Package events holds the typed event definitions shared between modules.
package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// TaskCreatedEvent is emitted after a task is stored.
type TaskCreatedEvent struct {
	TaskID    string    `json:"task_id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Priority  string    `json:"priority"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

// TaskCreatedV1 is published on events.task.v1.task-created.
var TaskCreatedV1 = helper.EventDefinition[TaskCreatedEvent](
	"task", "TaskCreated", "v1",
)

// TaskUpdatedEvent is emitted after an owner edits a task.
type TaskUpdatedEvent struct {
	TaskID    string    `json:"task_id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TaskUpdatedV1 is published on events.task.v1.task-updated.
var TaskUpdatedV1 = helper.EventDefinition[TaskUpdatedEvent](
	"task", "TaskUpdated", "v1",
)

// TaskToggledEvent is emitted when the completed flag flips.
type TaskToggledEvent struct {
	TaskID    string    `json:"task_id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	ToggledAt time.Time `json:"toggled_at"`
}

// TaskToggledV1 is published on events.task.v1.task-toggled.
var TaskToggledV1 = helper.EventDefinition[TaskToggledEvent](
	"task", "TaskToggled", "v1",
)

// TaskDeletedEvent is emitted after a hard delete.
type TaskDeletedEvent struct {
	TaskID    string    `json:"task_id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	DeletedAt time.Time `json:"deleted_at"`
}

// TaskDeletedV1 is published on events.task.v1.task-deleted.
var TaskDeletedV1 = helper.EventDefinition[TaskDeletedEvent](
	"task", "TaskDeleted", "v1",
)
