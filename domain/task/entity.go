package task

import (
	"errors"
	"strings"
	"time"
)

// Priority is the urgency label of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// DefaultCategory is assigned when a task is saved without a category.
const DefaultCategory = "general"

// DueDateLayout is the accepted form value layout for due dates.
const DueDateLayout = "2006-01-02"

var (
	// ErrTaskNotFound is returned when a task does not exist or belongs to another owner.
	ErrTaskNotFound = errors.New("task not found")
	// ErrTitleRequired is returned when a task is saved without a title.
	ErrTitleRequired = errors.New("title is required")
	// ErrInvalidPriority is returned for a priority outside low/medium/high.
	ErrInvalidPriority = errors.New("priority must be one of low, medium, high")
)

// ParsePriority maps a form value to a Priority. An empty value means medium.
func ParsePriority(s string) (Priority, error) {
	switch p := Priority(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PriorityMedium, nil
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p, nil
	default:
		return "", ErrInvalidPriority
	}
}

// ParseDueDate parses a YYYY-MM-DD value as local midnight.
// Empty or unparseable values yield nil.
func ParseDueDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	d, err := time.ParseInLocation(DueDateLayout, s, time.Local)
	if err != nil {
		return nil
	}
	return &d
}

// Task is a personal todo item owned by a single user.
type Task struct {
	ID          string     `gorm:"primaryKey;type:text" json:"id"`
	UserID      string     `gorm:"index;not null;type:text" json:"user_id"`
	Title       string     `gorm:"not null;type:text" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Priority    Priority   `gorm:"not null;type:text;index" json:"priority"`
	Category    string     `gorm:"not null;type:text;index" json:"category"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Notes       string     `gorm:"type:text" json:"notes"`
	Completed   bool       `gorm:"not null;index" json:"completed"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName returns the table name for the Task entity.
func (Task) TableName() string {
	return "tasks"
}

// IsOverdue reports whether an incomplete task's due date lies strictly before now.
func (t *Task) IsOverdue(now time.Time) bool {
	return !t.Completed && t.DueDate != nil && t.DueDate.Before(now)
}
