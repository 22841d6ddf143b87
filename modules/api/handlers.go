package api

import (
	"strings"
	"time"

	domain "github.com/example/task-tracker/domain/task"
	"github.com/example/task-tracker/modules/activity"
	"github.com/example/task-tracker/modules/auth"
	"github.com/example/task-tracker/modules/task"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// defaultActivityLimit is the number of feed entries returned when the
// request names none.
const defaultActivityLimit = 20

// Handlers contains the HTTP handlers for the browser pages and the JSON API.
type Handlers struct {
	auth     auth.AuthPort
	tasks    task.TaskPort
	activity activity.ActivityPort
	sessions *session.Store
	now      func() time.Time
}

// NewHandlers creates a new Handlers instance. A nil clock defaults to time.Now.
func NewHandlers(
	authPort auth.AuthPort,
	taskPort task.TaskPort,
	activityPort activity.ActivityPort,
	sessions *session.Store,
	now func() time.Time,
) *Handlers {
	if now == nil {
		now = time.Now
	}
	return &Handlers{
		auth:     authPort,
		tasks:    taskPort,
		activity: activityPort,
		sessions: sessions,
		now:      now,
	}
}

// parseCredentials reads an email/password pair from a form or JSON body.
// It writes a 400 response and returns false when either is missing.
func parseCredentials(c *fiber.Ctx) (CredentialsRequest, bool, error) {
	var req CredentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return req, false, writeError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		return req, false, writeError(c, fiber.StatusBadRequest, "bad_request", "Email and password are required")
	}
	return req, true, nil
}

func filterFromQuery(c *fiber.Ctx) domain.Filter {
	return domain.Filter{
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
		Category: c.Query("category"),
		Search:   c.Query("search"),
	}.Normalize()
}

// APIRegister handles JSON user registration.
func (h *Handlers) APIRegister(c *fiber.Ctx) error {
	req, ok, err := parseCredentials(c)
	if !ok {
		return err
	}

	u, err := h.auth.Register(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return handleAuthError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	})
}

// APILogin issues a token pair.
func (h *Handlers) APILogin(c *fiber.Ctx) error {
	req, ok, err := parseCredentials(c)
	if !ok {
		return err
	}

	pair, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return handleAuthError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
		TokenType:    pair.TokenType,
	})
}

// APIRefresh exchanges a refresh token for a new pair.
func (h *Handlers) APIRefresh(c *fiber.Ctx) error {
	var req RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}
	if req.RefreshToken == "" {
		return writeError(c, fiber.StatusBadRequest, "bad_request", "Refresh token is required")
	}

	pair, err := h.auth.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return writeError(c, fiber.StatusUnauthorized, "unauthorized", "Invalid or expired refresh token")
	}

	return c.Status(fiber.StatusOK).JSON(TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
		TokenType:    pair.TokenType,
	})
}

// APIProfile returns the caller's account.
func (h *Handlers) APIProfile(c *fiber.Ctx) error {
	identity, ok := identityFrom(c)
	if !ok {
		return writeError(c, fiber.StatusUnauthorized, "unauthorized", "User not authenticated")
	}

	u, err := h.auth.GetUser(c.UserContext(), identity.UserID)
	if err != nil {
		return handleAuthError(c, err)
	}

	return c.JSON(UserResponse{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt})
}

// APIListTasks lists the caller's tasks, filtered by query parameters.
func (h *Handlers) APIListTasks(c *fiber.Ctx) error {
	identity, _ := identityFrom(c)
	resp, err := h.tasks.ListTasks(c.UserContext(), identity, filterFromQuery(c))
	if err != nil {
		return handleTaskError(c, err)
	}
	if resp.Tasks == nil {
		resp.Tasks = []*domain.Task{}
	}
	return c.JSON(resp)
}

// APICreateTask creates a task for the caller.
func (h *Handlers) APICreateTask(c *fiber.Ctx) error {
	identity, _ := identityFrom(c)
	var req TaskRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}

	t, err := h.tasks.CreateTask(c.UserContext(), identity, req.input())
	if err != nil {
		return handleTaskError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(t)
}

// APIGetTask returns one of the caller's tasks.
func (h *Handlers) APIGetTask(c *fiber.Ctx) error {
	identity, _ := identityFrom(c)
	t, err := h.tasks.GetTask(c.UserContext(), identity, c.Params("id"))
	if err != nil {
		return handleTaskError(c, err)
	}
	return c.JSON(t)
}

// APIUpdateTask replaces the editable fields of one of the caller's tasks.
func (h *Handlers) APIUpdateTask(c *fiber.Ctx) error {
	identity, _ := identityFrom(c)
	var req TaskRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}

	t, err := h.tasks.UpdateTask(c.UserContext(), identity, c.Params("id"), req.input())
	if err != nil {
		return handleTaskError(c, err)
	}
	return c.JSON(t)
}

// APIToggleTask flips the completed flag of one of the caller's tasks.
func (h *Handlers) APIToggleTask(c *fiber.Ctx) error {
	identity, _ := identityFrom(c)
	t, err := h.tasks.ToggleTask(c.UserContext(), identity, c.Params("id"))
	if err != nil {
		return handleTaskError(c, err)
	}
	return c.JSON(t)
}

// APIDeleteTask hard-deletes one of the caller's tasks.
func (h *Handlers) APIDeleteTask(c *fiber.Ctx) error {
	identity, _ := identityFrom(c)
	id := c.Params("id")
	if err := h.tasks.DeleteTask(c.UserContext(), identity, id); err != nil {
		return handleTaskError(c, err)
	}
	return c.JSON(DeleteResponse{Deleted: true, TaskID: id})
}

// APICategories lists the caller's distinct categories.
func (h *Handlers) APICategories(c *fiber.Ctx) error {
	identity, _ := identityFrom(c)
	categories, err := h.tasks.ListCategories(c.UserContext(), identity)
	if err != nil {
		return handleTaskError(c, err)
	}
	if categories == nil {
		categories = []string{}
	}
	return c.JSON(fiber.Map{"categories": categories})
}

// APIDashboard returns the caller's statistics report.
func (h *Handlers) APIDashboard(c *fiber.Ctx) error {
	identity, _ := identityFrom(c)
	report, err := h.tasks.Stats(c.UserContext(), identity)
	if err != nil {
		return handleTaskError(c, err)
	}
	return c.JSON(report)
}

// APIActivity returns the caller's recent task activity, newest first.
func (h *Handlers) APIActivity(c *fiber.Ctx) error {
	identity, _ := identityFrom(c)
	limit := c.QueryInt("limit", defaultActivityLimit)
	entries, err := h.activity.Recent(c.UserContext(), identity, limit)
	if err != nil {
		return handleTaskError(c, err)
	}
	if entries == nil {
		entries = []activity.Entry{}
	}
	return c.JSON(ActivityResponse{Entries: entries})
}
