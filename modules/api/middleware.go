package api

import (
	"strings"

	"github.com/example/task-tracker/domain/user"
	"github.com/example/task-tracker/modules/auth"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

const (
	// IdentityContextKey is the key used to store the caller's identity in the Fiber context.
	IdentityContextKey = "identity"

	sessionUserID = "user_id"
	sessionEmail  = "email"
)

// identityFrom returns the identity set by RequireSession or BearerAuth.
func identityFrom(c *fiber.Ctx) (user.Identity, bool) {
	id, ok := c.Locals(IdentityContextKey).(user.Identity)
	return id, ok && !id.IsZero()
}

// RequireSession resolves the session cookie to an identity, redirecting
// anonymous visitors to the login page.
func RequireSession(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			return err
		}

		userID, _ := sess.Get(sessionUserID).(string)
		if userID == "" {
			return c.Redirect("/login")
		}
		email, _ := sess.Get(sessionEmail).(string)

		c.Locals(IdentityContextKey, user.Identity{UserID: userID, Email: email})
		return c.Next()
	}
}

// BearerAuth validates the Authorization header against the auth module.
func BearerAuth(authPort auth.AuthPort) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return writeError(c, fiber.StatusUnauthorized, "unauthorized", "Authorization header is required")
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			return writeError(c, fiber.StatusUnauthorized, "unauthorized", "Invalid authorization header format. Use: Bearer <token>")
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == "" {
			return writeError(c, fiber.StatusUnauthorized, "unauthorized", "Token is required")
		}

		identity, err := authPort.ValidateToken(c.UserContext(), token)
		if err != nil || identity.IsZero() {
			return writeError(c, fiber.StatusUnauthorized, "unauthorized", "Invalid or expired token")
		}

		c.Locals(IdentityContextKey, identity)
		return c.Next()
	}
}
