package api

import (
	"time"

	"github.com/example/task-tracker/domain/stats"
	domain "github.com/example/task-tracker/domain/task"
	"github.com/example/task-tracker/modules/activity"
	"github.com/example/task-tracker/modules/task"
)

// CredentialsRequest is the register/login body, posted as a form by the
// browser pages and as JSON by the API.
type CredentialsRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// RefreshRequest represents a token refresh request.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TaskRequest is the add/edit task body.
type TaskRequest struct {
	Title       string `json:"title" form:"title"`
	Description string `json:"description" form:"description"`
	Priority    string `json:"priority" form:"priority"`
	Category    string `json:"category" form:"category"`
	DueDate     string `json:"due_date" form:"due_date"`
	Notes       string `json:"notes" form:"notes"`
	Completed   *bool  `json:"completed,omitempty" form:"-"`
}

func (r TaskRequest) input() task.TaskInput {
	return task.TaskInput{
		Title:       r.Title,
		Description: r.Description,
		Priority:    r.Priority,
		Category:    r.Category,
		DueDate:     r.DueDate,
		Notes:       r.Notes,
		Completed:   r.Completed,
	}
}

// TokenResponse represents an authentication token response.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// UserResponse represents a user response.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// FormView describes a page form. It stands in for the HTML template.
type FormView struct {
	Page   string   `json:"page"`
	Action string   `json:"action"`
	Method string   `json:"method"`
	Fields []string `json:"fields"`
}

// TasksView is the task list page.
type TasksView struct {
	Tasks      []*domain.Task `json:"tasks"`
	Categories []string       `json:"categories"`
	Filters    domain.Filter  `json:"filters"`
	Today      string         `json:"today"`
}

// EditTaskView is the edit page for one task.
type EditTaskView struct {
	Task   *domain.Task `json:"task"`
	Action string       `json:"action"`
}

// DashboardView is the dashboard page.
type DashboardView struct {
	Email string `json:"email"`
	*stats.Report
}

// ActivityResponse lists the caller's recent activity.
type ActivityResponse struct {
	Entries []activity.Entry `json:"entries"`
}

// DeleteResponse confirms an API delete.
type DeleteResponse struct {
	Deleted bool   `json:"deleted"`
	TaskID  string `json:"task_id"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

var (
	loginForm = FormView{
		Page:   "login",
		Action: "/login",
		Method: "POST",
		Fields: []string{"email", "password"},
	}
	registerForm = FormView{
		Page:   "register",
		Action: "/register",
		Method: "POST",
		Fields: []string{"email", "password"},
	}
)
