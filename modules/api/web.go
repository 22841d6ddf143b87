package api

import (
	"errors"
	"log"
	"net/url"
	"strings"

	domain "github.com/example/task-tracker/domain/task"
	"github.com/example/task-tracker/modules/task"
	"github.com/gofiber/fiber/v2"
)

// Index sends visitors to the login page.
func (h *Handlers) Index(c *fiber.Ctx) error {
	return c.Redirect("/login")
}

// RegisterPage describes the registration form.
func (h *Handlers) RegisterPage(c *fiber.Ctx) error {
	return c.JSON(registerForm)
}

// RegisterSubmit creates an account and sends the user to the login page.
func (h *Handlers) RegisterSubmit(c *fiber.Ctx) error {
	req, ok, err := parseCredentials(c)
	if !ok {
		return err
	}

	if _, err := h.auth.Register(c.UserContext(), req.Email, req.Password); err != nil {
		return handleAuthError(c, err)
	}
	return c.Redirect("/login")
}

// LoginPage describes the login form.
func (h *Handlers) LoginPage(c *fiber.Ctx) error {
	return c.JSON(loginForm)
}

// LoginSubmit verifies credentials and starts a fresh session.
func (h *Handlers) LoginSubmit(c *fiber.Ctx) error {
	req, ok, err := parseCredentials(c)
	if !ok {
		return err
	}

	u, err := h.auth.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return handleAuthError(c, err)
	}

	sess, err := h.sessions.Get(c)
	if err != nil {
		return err
	}
	// Rotate the session id on login.
	if err := sess.Regenerate(); err != nil {
		return err
	}
	sess.Set(sessionUserID, u.ID)
	sess.Set(sessionEmail, u.Email)
	if err := sess.Save(); err != nil {
		return err
	}

	log.Printf("[api] User %s logged in", u.ID)
	return c.Redirect("/dashboard")
}

// Logout ends the session.
func (h *Handlers) Logout(c *fiber.Ctx) error {
	sess, err := h.sessions.Get(c)
	if err != nil {
		return err
	}
	if err := sess.Destroy(); err != nil {
		return err
	}
	return c.Redirect("/login")
}

// TasksPage lists the caller's tasks with the filter UI data.
func (h *Handlers) TasksPage(c *fiber.Ctx) error {
	identity, _ := identityFrom(c)
	ctx := c.UserContext()

	list, err := h.tasks.ListTasks(ctx, identity, filterFromQuery(c))
	if err != nil {
		return err
	}
	categories, err := h.tasks.ListCategories(ctx, identity)
	if err != nil {
		return err
	}

	view := TasksView{
		Tasks:      list.Tasks,
		Categories: categories,
		Filters:    list.Filter,
		Today:      h.now().Format(domain.DueDateLayout),
	}
	if view.Tasks == nil {
		view.Tasks = []*domain.Task{}
	}
	if view.Categories == nil {
		view.Categories = []string{}
	}
	return c.JSON(view)
}

// AddTask creates a task from the add form.
func (h *Handlers) AddTask(c *fiber.Ctx) error {
	identity, _ := identityFrom(c)
	var req TaskRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, fiber.StatusBadRequest, "bad_request", "Invalid form body")
	}

	if _, err := h.tasks.CreateTask(c.UserContext(), identity, req.input()); err != nil {
		switch {
		case isValidationError(err):
			return writeError(c, fiber.StatusBadRequest, "bad_request", err.Error())
		case errors.Is(err, task.ErrOwnerNotFound):
			return h.Logout(c)
		default:
			return err
		}
	}
	return c.Redirect("/tasks")
}

// EditTaskPage shows one of the caller's tasks. Anything else goes back to the list.
func (h *Handlers) EditTaskPage(c *fiber.Ctx) error {
	identity, _ := identityFrom(c)
	t, err := h.tasks.GetTask(c.UserContext(), identity, c.Params("id"))
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return c.Redirect("/tasks")
		}
		return err
	}
	return c.JSON(EditTaskView{Task: t, Action: "/edit-task/" + t.ID})
}

// EditTaskSubmit saves the edit form.
func (h *Handlers) EditTaskSubmit(c *fiber.Ctx) error {
	identity, _ := identityFrom(c)
	var req TaskRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, fiber.StatusBadRequest, "bad_request", "Invalid form body")
	}

	if _, err := h.tasks.UpdateTask(c.UserContext(), identity, c.Params("id"), req.input()); err != nil {
		switch {
		case errors.Is(err, domain.ErrTaskNotFound):
			return c.Redirect("/tasks")
		case isValidationError(err):
			return writeError(c, fiber.StatusBadRequest, "bad_request", err.Error())
		default:
			return err
		}
	}
	return c.Redirect("/tasks")
}

// CompleteTask toggles one of the caller's tasks and returns to the referring page.
func (h *Handlers) CompleteTask(c *fiber.Ctx) error {
	identity, _ := identityFrom(c)
	if _, err := h.tasks.ToggleTask(c.UserContext(), identity, c.Params("id")); err != nil && !errors.Is(err, domain.ErrTaskNotFound) {
		return err
	}
	return c.Redirect(backTo(c))
}

// DeleteTask removes one of the caller's tasks and returns to the referring page.
func (h *Handlers) DeleteTask(c *fiber.Ctx) error {
	identity, _ := identityFrom(c)
	if err := h.tasks.DeleteTask(c.UserContext(), identity, c.Params("id")); err != nil && !errors.Is(err, domain.ErrTaskNotFound) {
		return err
	}
	return c.Redirect(backTo(c))
}

// DashboardPage shows the caller's statistics report.
func (h *Handlers) DashboardPage(c *fiber.Ctx) error {
	identity, _ := identityFrom(c)
	report, err := h.tasks.Stats(c.UserContext(), identity)
	if err != nil {
		return err
	}
	return c.JSON(DashboardView{Email: identity.Email, Report: report})
}

// backTo returns the path of a same-host Referer, or /tasks.
func backTo(c *fiber.Ctx) string {
	const fallback = "/tasks"

	ref := c.Get(fiber.HeaderReferer)
	if ref == "" {
		return fallback
	}
	u, err := url.Parse(ref)
	if err != nil {
		return fallback
	}
	if u.Host != "" && !strings.EqualFold(u.Host, c.Hostname()) {
		return fallback
	}
	if !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(u.Path, "//") {
		return fallback
	}
	return u.RequestURI()
}
