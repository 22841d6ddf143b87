package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/example/task-tracker/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

const (
	// ServiceRecentActivity is the request-reply service name.
	ServiceRecentActivity = "recent-activity"
	// DefaultFeedSize is the number of entries kept per owner.
	DefaultFeedSize = 50
)

// Entry kinds.
const (
	KindCreated = "task_created"
	KindUpdated = "task_updated"
	KindToggled = "task_toggled"
	KindDeleted = "task_deleted"
)

// Entry is one line of an owner's activity feed.
type Entry struct {
	TaskID    string    `json:"task_id"`
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// RecentActivityRequest asks for the newest entries of one owner.
type RecentActivityRequest struct {
	UserID string `json:"user_id"`
	Limit  int    `json:"limit,omitempty"`
}

// RecentActivityResponse lists entries newest first.
type RecentActivityResponse struct {
	Entries []Entry `json:"entries"`
}

// ActivityModule records a bounded per-owner feed from task events.
type ActivityModule struct {
	size  int
	feeds map[string][]Entry
	mu    sync.RWMutex
}

var _ mono.Module = (*ActivityModule)(nil)
var _ mono.EventConsumerModule = (*ActivityModule)(nil)
var _ mono.ServiceProviderModule = (*ActivityModule)(nil)

// NewModule creates an ActivityModule keeping size entries per owner.
// A non-positive size uses DefaultFeedSize.
func NewModule(size int) *ActivityModule {
	if size <= 0 {
		size = DefaultFeedSize
	}
	return &ActivityModule{
		size:  size,
		feeds: make(map[string][]Entry),
	}
}

func (m *ActivityModule) Name() string {
	return "activity"
}

func (m *ActivityModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskCreatedV1, m.handleTaskCreated, m); err != nil {
		return fmt.Errorf("failed to register TaskCreated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskUpdatedV1, m.handleTaskUpdated, m); err != nil {
		return fmt.Errorf("failed to register TaskUpdated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskToggledV1, m.handleTaskToggled, m); err != nil {
		return fmt.Errorf("failed to register TaskToggled consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskDeletedV1, m.handleTaskDeleted, m); err != nil {
		return fmt.Errorf("failed to register TaskDeleted consumer: %w", err)
	}

	log.Printf("[activity] Registered event consumers: TaskCreated, TaskUpdated, TaskToggled, TaskDeleted")
	return nil
}

func (m *ActivityModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceRecentActivity, json.Unmarshal, json.Marshal, m.recentActivity,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceRecentActivity, err)
	}
	log.Printf("[activity] Registered services: recent-activity")
	return nil
}

func (m *ActivityModule) handleTaskCreated(_ context.Context, event events.TaskCreatedEvent, _ *mono.Msg) error {
	m.record(event.UserID, Entry{
		TaskID:    event.TaskID,
		Kind:      KindCreated,
		Message:   fmt.Sprintf("Created '%s' (%s, %s)", event.Title, event.Priority, event.Category),
		Timestamp: event.CreatedAt,
	})
	return nil
}

func (m *ActivityModule) handleTaskUpdated(_ context.Context, event events.TaskUpdatedEvent, _ *mono.Msg) error {
	m.record(event.UserID, Entry{
		TaskID:    event.TaskID,
		Kind:      KindUpdated,
		Message:   fmt.Sprintf("Edited '%s'", event.Title),
		Timestamp: event.UpdatedAt,
	})
	return nil
}

func (m *ActivityModule) handleTaskToggled(_ context.Context, event events.TaskToggledEvent, _ *mono.Msg) error {
	verb := "Reopened"
	if event.Completed {
		verb = "Completed"
	}
	m.record(event.UserID, Entry{
		TaskID:    event.TaskID,
		Kind:      KindToggled,
		Message:   fmt.Sprintf("%s '%s'", verb, event.Title),
		Timestamp: event.ToggledAt,
	})
	return nil
}

func (m *ActivityModule) handleTaskDeleted(_ context.Context, event events.TaskDeletedEvent, _ *mono.Msg) error {
	m.record(event.UserID, Entry{
		TaskID:    event.TaskID,
		Kind:      KindDeleted,
		Message:   fmt.Sprintf("Deleted '%s'", event.Title),
		Timestamp: event.DeletedAt,
	})
	return nil
}

// record appends e to owner's feed, dropping the oldest entries past size.
func (m *ActivityModule) record(owner string, e Entry) {
	if owner == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	feed := append(m.feeds[owner], e)
	if over := len(feed) - m.size; over > 0 {
		feed = append([]Entry(nil), feed[over:]...)
	}
	m.feeds[owner] = feed
}

// Recent returns up to limit of owner's entries, newest first.
func (m *ActivityModule) Recent(owner string, limit int) []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	feed := m.feeds[owner]
	if limit <= 0 || limit > len(feed) {
		limit = len(feed)
	}
	result := make([]Entry, 0, limit)
	for i := len(feed) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, feed[i])
	}
	return result
}

func (m *ActivityModule) recentActivity(_ context.Context, req RecentActivityRequest, _ *mono.Msg) (RecentActivityResponse, error) {
	return RecentActivityResponse{Entries: m.Recent(req.UserID, req.Limit)}, nil
}

func (m *ActivityModule) Start(_ context.Context) error {
	log.Printf("[activity] Module started - keeping %d entries per owner", m.size)
	return nil
}

func (m *ActivityModule) Stop(_ context.Context) error {
	log.Println("[activity] Module stopped")
	return nil
}
