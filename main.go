package main

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"github.com/example/task-tracker/config"
	"github.com/example/task-tracker/modules/activity"
	"github.com/example/task-tracker/modules/api"
	"github.com/example/task-tracker/modules/auth"
	"github.com/example/task-tracker/modules/sessionstore"
	"github.com/example/task-tracker/modules/task"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/middleware/accesslog"
	"github.com/go-monolith/mono/middleware/requestid"
)

const shutdownTimeout = 30 * time.Second

func main() {
	log.Println("=== Task Tracker ===")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.Printf("Database: %s", cfg.Database.Path)
	if cfg.Auth.JWTSecret == config.Default().Auth.JWTSecret {
		log.Println("Warning: JWT_SECRET_KEY is not set, using the built-in development secret")
	}

	logLevel := mono.LogLevelInfo
	if strings.EqualFold(cfg.Log.Level, "error") {
		logLevel = mono.LogLevelError
	}

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(logLevel),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	// Middleware modules are registered before the modules they observe.
	requestIDMiddleware, err := requestid.New(
		requestid.WithHeaderName("X-Request-ID"),
	)
	if err != nil {
		log.Fatalf("Failed to create requestid middleware: %v", err)
	}
	if err := app.Register(requestIDMiddleware); err != nil {
		log.Fatalf("Failed to register requestid middleware: %v", err)
	}

	var accessLogFile *os.File
	if cfg.Log.AccessLogPath != "" {
		accessLogFile, err = os.OpenFile(cfg.Log.AccessLogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatalf("Failed to open access log: %v", err)
		}

		accessLogMiddleware, err := accesslog.New(
			accesslog.WithOutput(accessLogFile),
			accesslog.WithFormat(accesslog.FormatJSON),
			accesslog.WithFields([]accesslog.Field{
				accesslog.FieldTimestamp,
				accesslog.FieldRequestID,
				accesslog.FieldModule,
				accesslog.FieldService,
				accesslog.FieldServiceType,
				accesslog.FieldDurationMS,
				accesslog.FieldStatus,
				accesslog.FieldRequestSize,
				accesslog.FieldResponseSize,
			}),
		)
		if err != nil {
			log.Fatalf("Failed to create accesslog middleware: %v", err)
		}
		if err := app.Register(accessLogMiddleware); err != nil {
			log.Fatalf("Failed to register accesslog middleware: %v", err)
		}
		log.Printf("Service access log: %s", cfg.Log.AccessLogPath)
	}

	// The api module receives this plugin through SetPlugin.
	if err := app.RegisterPlugin(sessionstore.NewPluginModule(cfg.Redis.Addr), sessionstore.PluginAlias); err != nil {
		log.Fatalf("Failed to register session store plugin: %v", err)
	}

	// Order: independent modules first, then dependent modules
	modules := []mono.Module{
		activity.NewModule(activity.DefaultFeedSize), // Consumes task events
		auth.NewModule(cfg),                          // Provides auth services
		task.NewModule(cfg),                          // Depends on auth
		api.NewModule(cfg),                           // Depends on auth, task and activity
	}
	for _, m := range modules {
		if err := app.Register(m); err != nil {
			log.Fatalf("Failed to register %s module: %v", m.Name(), err)
		}
	}

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo(cfg.HTTP.Addr)

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	if accessLogFile != nil {
		accessLogFile.Close()
	}
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo(addr string) {
	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Printf("Browser pages (%s):", addr)
	log.Println("  GET         /                   - Redirect to login")
	log.Println("  GET, POST   /register           - Create an account")
	log.Println("  GET, POST   /login              - Sign in")
	log.Println("  GET         /logout             - Sign out")
	log.Println("  GET         /tasks              - Task list (status, priority, category, search)")
	log.Println("  POST        /add-task           - Create a task")
	log.Println("  GET, POST   /edit-task/:id      - Edit a task")
	log.Println("  GET         /complete-task/:id  - Toggle completion")
	log.Println("  GET         /delete-task/:id    - Delete a task")
	log.Println("  GET         /dashboard          - Statistics")
	log.Println("")
	log.Println("JSON API (Bearer token):")
	log.Println("  POST   /api/v1/auth/register|login|refresh")
	log.Println("  GET    /api/v1/profile")
	log.Println("  GET    /api/v1/tasks, POST /api/v1/tasks")
	log.Println("  GET    /api/v1/tasks/:id, PUT /api/v1/tasks/:id, DELETE /api/v1/tasks/:id")
	log.Println("  POST   /api/v1/tasks/:id/toggle")
	log.Println("  GET    /api/v1/categories, /api/v1/dashboard, /api/v1/activity")
	log.Println("  GET    /health")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
