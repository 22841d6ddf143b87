package api

import (
	"time"

	"github.com/example/task-tracker/config"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// NewSessionStore creates the browser session store. A nil storage keeps
// sessions in process memory.
func NewSessionStore(cfg config.SessionConfig, storage fiber.Storage) *session.Store {
	return session.New(session.Config{
		Expiration:     cfg.TTL,
		Storage:        storage,
		KeyLookup:      "cookie:" + cfg.CookieName,
		CookieSecure:   cfg.CookieSecure,
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
	})
}

// newCredentialLimiter limits login and registration attempts per client IP.
func newCredentialLimiter(max int, storage fiber.Storage) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: time.Minute,
		Storage:    storage,
		KeyGenerator: func(c *fiber.Ctx) string {
			return "credentials:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return writeError(c, fiber.StatusTooManyRequests, "too_many_requests", "Too many attempts, try again later")
		},
	})
}

// NewApp builds the Fiber app serving the browser pages and the JSON API.
// storage backs the login rate limiter; nil keeps it in memory.
func NewApp(cfg config.HTTPConfig, h *Handlers, storage fiber.Storage, health fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Task Tracker",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Content-Type,Authorization",
	}))

	credentials := newCredentialLimiter(cfg.LoginRateLimit, storage)

	if health != nil {
		app.Get("/health", health)
	}

	// Browser pages
	app.Get("/", h.Index)
	app.Get("/register", h.RegisterPage)
	app.Post("/register", credentials, h.RegisterSubmit)
	app.Get("/login", h.LoginPage)
	app.Post("/login", credentials, h.LoginSubmit)

	// Per route: an empty-prefix group would put the session check in front of /api/v1 too.
	signedIn := RequireSession(h.sessions)
	app.Get("/logout", signedIn, h.Logout)
	app.Get("/tasks", signedIn, h.TasksPage)
	app.Post("/add-task", signedIn, h.AddTask)
	app.Get("/edit-task/:id", signedIn, h.EditTaskPage)
	app.Post("/edit-task/:id", signedIn, h.EditTaskSubmit)
	app.Get("/complete-task/:id", signedIn, h.CompleteTask)
	app.Get("/delete-task/:id", signedIn, h.DeleteTask)
	app.Get("/dashboard", signedIn, h.DashboardPage)

	// API v1 routes
	v1 := app.Group("/api/v1")

	authRoutes := v1.Group("/auth", credentials)
	authRoutes.Post("/register", h.APIRegister)
	authRoutes.Post("/login", h.APILogin)
	authRoutes.Post("/refresh", h.APIRefresh)

	protected := v1.Group("", BearerAuth(h.auth))
	protected.Get("/profile", h.APIProfile)
	protected.Get("/tasks", h.APIListTasks)
	protected.Post("/tasks", h.APICreateTask)
	protected.Get("/tasks/:id", h.APIGetTask)
	protected.Put("/tasks/:id", h.APIUpdateTask)
	protected.Delete("/tasks/:id", h.APIDeleteTask)
	protected.Post("/tasks/:id/toggle", h.APIToggleTask)
	protected.Get("/categories", h.APICategories)
	protected.Get("/dashboard", h.APIDashboard)
	protected.Get("/activity", h.APIActivity)

	return app
}
