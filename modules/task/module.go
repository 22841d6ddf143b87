package task

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/example/task-tracker/config"
	"github.com/example/task-tracker/domain/stats"
	domain "github.com/example/task-tracker/domain/task"
	"github.com/example/task-tracker/events"
	"github.com/example/task-tracker/modules/auth"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TaskModule owns the task store and the statistics engine.
type TaskModule struct {
	dbCfg      config.DatabaseConfig
	db         *gorm.DB
	service    *TaskService
	heuristics stats.Heuristics
	now        func() time.Time
	authPort   auth.AuthPort
	eventBus   mono.EventBus
}

var _ mono.Module = (*TaskModule)(nil)
var _ mono.ServiceProviderModule = (*TaskModule)(nil)
var _ mono.DependentModule = (*TaskModule)(nil)
var _ mono.EventEmitterModule = (*TaskModule)(nil)
var _ mono.HealthCheckableModule = (*TaskModule)(nil)

// NewModule creates a TaskModule using the default dashboard heuristics.
func NewModule(cfg *config.Config) *TaskModule {
	return &TaskModule{
		dbCfg:      cfg.Database,
		heuristics: stats.DefaultHeuristics{},
		now:        time.Now,
	}
}

func (m *TaskModule) Name() string {
	return "task"
}

func (m *TaskModule) Dependencies() []string {
	return []string{"auth"}
}

func (m *TaskModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	if dependency == "auth" {
		m.authPort = auth.NewAuthAdapter(container)
	}
}

func (m *TaskModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

func (m *TaskModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.TaskCreatedV1.ToBase(),
		events.TaskUpdatedV1.ToBase(),
		events.TaskToggledV1.ToBase(),
		events.TaskDeletedV1.ToBase(),
	}
}

func (m *TaskModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceCreateTask, json.Unmarshal, json.Marshal, m.createTask,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceCreateTask, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceGetTask, json.Unmarshal, json.Marshal, m.getTask,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceGetTask, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceUpdateTask, json.Unmarshal, json.Marshal, m.updateTask,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceUpdateTask, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceToggleTask, json.Unmarshal, json.Marshal, m.toggleTask,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceToggleTask, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceDeleteTask, json.Unmarshal, json.Marshal, m.deleteTask,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceDeleteTask, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceListTasks, json.Unmarshal, json.Marshal, m.listTasks,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceListTasks, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceListCategories, json.Unmarshal, json.Marshal, m.listCategories,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceListCategories, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceTaskStats, json.Unmarshal, json.Marshal, m.taskStats,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceTaskStats, err)
	}

	log.Printf("[task] Registered services: create-task, get-task, update-task, toggle-task, delete-task, list-tasks, list-categories, task-stats")
	return nil
}

func (m *TaskModule) Start(_ context.Context) error {
	if m.authPort == nil {
		return fmt.Errorf("auth dependency not set")
	}
	if m.eventBus == nil {
		log.Println("[task] Warning: eventBus not set, events will not be published")
	}

	logLevel := logger.Silent
	if m.dbCfg.Debug {
		logLevel = logger.Info
	}
	db, err := gorm.Open(sqlite.Open(m.dbCfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	m.db = db

	if err := db.AutoMigrate(&domain.Task{}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	m.service = NewTaskService(NewTaskRepository(db), m.now, m.heuristics)

	log.Printf("[task] Module started (database: %s, depends on: auth)", m.dbCfg.Path)
	return nil
}

func (m *TaskModule) Stop(_ context.Context) error {
	if m.db == nil {
		return nil
	}
	sqlDB, err := m.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	log.Println("[task] Module stopped")
	return nil
}

func (m *TaskModule) Health(ctx context.Context) mono.HealthStatus {
	if m.db == nil {
		return mono.HealthStatus{Healthy: false, Message: "database not initialized"}
	}
	sqlDB, err := m.db.DB()
	if err != nil {
		return mono.HealthStatus{Healthy: false, Message: fmt.Sprintf("failed to get database connection: %v", err)}
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return mono.HealthStatus{Healthy: false, Message: fmt.Sprintf("database ping failed: %v", err)}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"database": m.dbCfg.Path,
		},
	}
}
