package api

import (
	"errors"
	"log"

	domain "github.com/example/task-tracker/domain/task"
	"github.com/example/task-tracker/modules/auth"
	"github.com/example/task-tracker/modules/task"
	"github.com/gofiber/fiber/v2"
)

func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(ErrorResponse{Error: code, Message: message})
}

// handleAuthError maps auth errors to responses without exposing internals.
func handleAuthError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return writeError(c, fiber.StatusUnauthorized, "unauthorized", "Invalid email or password")
	case errors.Is(err, auth.ErrUserExists):
		return writeError(c, fiber.StatusConflict, "conflict", "User with this email already exists")
	case errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrPasswordTooLong):
		return writeError(c, fiber.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrExpiredToken):
		return writeError(c, fiber.StatusUnauthorized, "unauthorized", "Invalid or expired token")
	case errors.Is(err, auth.ErrUserNotFound):
		return writeError(c, fiber.StatusNotFound, "not_found", "User not found")
	default:
		log.Printf("[api] Internal error: %v", err)
		return writeError(c, fiber.StatusInternalServerError, "internal_error", "An internal error occurred")
	}
}

// handleTaskError maps task errors for the JSON API. Missing and foreign
// tasks are indistinguishable.
func handleTaskError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrTaskNotFound):
		return writeError(c, fiber.StatusNotFound, "not_found", "Task not found")
	case errors.Is(err, domain.ErrTitleRequired), errors.Is(err, domain.ErrInvalidPriority):
		return writeError(c, fiber.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, task.ErrOwnerNotFound):
		return writeError(c, fiber.StatusUnauthorized, "unauthorized", "User no longer exists")
	default:
		log.Printf("[api] Internal error: %v", err)
		return writeError(c, fiber.StatusInternalServerError, "internal_error", "An internal error occurred")
	}
}

// isValidationError reports whether err came from task input validation.
func isValidationError(err error) bool {
	return errors.Is(err, domain.ErrTitleRequired) || errors.Is(err, domain.ErrInvalidPriority)
}

// errorHandler handles errors returned from handlers.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	} else {
		log.Printf("[api] Unhandled error on %s %s: %v", c.Method(), c.Path(), err)
	}

	return writeError(c, code, "server_error", message)
}
