package api

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/example/task-tracker/config"
	"github.com/example/task-tracker/modules/activity"
	"github.com/example/task-tracker/modules/auth"
	"github.com/example/task-tracker/modules/sessionstore"
	"github.com/example/task-tracker/modules/task"
	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"
)

// APIModule serves the browser pages and the JSON API.
type APIModule struct {
	cfg             *config.Config
	app             *fiber.App
	authAdapter     auth.AuthPort
	taskAdapter     task.TaskPort
	activityAdapter activity.ActivityPort
	store           *sessionstore.PluginModule
}

// Compile-time interface checks.
var _ mono.Module = (*APIModule)(nil)
var _ mono.DependentModule = (*APIModule)(nil)
var _ mono.UsePluginModule = (*APIModule)(nil)
var _ mono.HealthCheckableModule = (*APIModule)(nil)

// NewModule creates a new APIModule.
func NewModule(cfg *config.Config) *APIModule {
	return &APIModule{cfg: cfg}
}

// Name returns the module name.
func (m *APIModule) Name() string {
	return "api"
}

// Dependencies returns the list of module dependencies.
func (m *APIModule) Dependencies() []string {
	return []string{"auth", "task", "activity"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *APIModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "auth":
		m.authAdapter = auth.NewAuthAdapter(container)
	case "task":
		m.taskAdapter = task.NewTaskAdapter(container)
	case "activity":
		m.activityAdapter = activity.NewActivityAdapter(container)
	}
}

// SetPlugin receives the session storage plugin.
// Its storage is read in Start, after the plugin has started.
func (m *APIModule) SetPlugin(alias string, plugin mono.PluginModule) {
	if alias != sessionstore.PluginAlias {
		return
	}
	if p, ok := plugin.(*sessionstore.PluginModule); ok {
		m.store = p
		log.Println("[api] Session store plugin injected")
	}
}

// Start builds the Fiber app and starts listening.
func (m *APIModule) Start(_ context.Context) error {
	if m.authAdapter == nil || m.taskAdapter == nil || m.activityAdapter == nil {
		return fmt.Errorf("auth, task and activity dependencies must be set")
	}

	var storage fiber.Storage
	backend := "memory"
	if m.store != nil {
		storage = m.store.Storage()
		backend = m.store.Backend()
	}

	sessions := NewSessionStore(m.cfg.Session, storage)
	handlers := NewHandlers(m.authAdapter, m.taskAdapter, m.activityAdapter, sessions, time.Now)
	m.app = NewApp(m.cfg.HTTP, handlers, storage, m.healthHandler)

	// Start server in goroutine with startup error detection
	errCh := make(chan error, 1)
	go func() {
		if err := m.app.Listen(m.cfg.HTTP.Addr); err != nil {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server failed to start: %w", err)
	case <-time.After(100 * time.Millisecond):
	}

	log.Printf("[api] HTTP server started on %s (sessions: %s)", m.cfg.HTTP.Addr, backend)
	return nil
}

// Stop shuts down the Fiber HTTP server.
func (m *APIModule) Stop(ctx context.Context) error {
	if m.app == nil {
		return nil
	}
	log.Println("[api] Shutting down HTTP server...")
	if err := m.app.ShutdownWithContext(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}

// Health returns the health status of the module.
func (m *APIModule) Health(_ context.Context) mono.HealthStatus {
	if m.app == nil {
		return mono.HealthStatus{Healthy: false, Message: "server not started"}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"addr": m.cfg.HTTP.Addr,
		},
	}
}

// healthHandler reports this module together with the session store.
func (m *APIModule) healthHandler(c *fiber.Ctx) error {
	ctx := c.UserContext()
	checks := map[string]mono.HealthStatus{m.Name(): m.Health(ctx)}
	if m.store != nil {
		checks[m.store.Name()] = m.store.Health(ctx)
	}

	healthy := true
	modules := fiber.Map{}
	for name, s := range checks {
		healthy = healthy && s.Healthy
		modules[name] = fiber.Map{"healthy": s.Healthy, "message": s.Message}
	}

	if !healthy {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unhealthy", "modules": modules})
	}
	return c.JSON(fiber.Map{"status": "healthy", "modules": modules})
}
