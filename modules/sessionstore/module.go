// Package sessionstore provides the shared fiber.Storage behind browser
// sessions and the login rate limiter.
package sessionstore

import (
	"context"
	"fmt"
	"log"
	"net"
	"strconv"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/storage/redis/v3"
)

// PluginAlias is the alias the plugin is registered under.
const PluginAlias = "sessionstore"

// PluginModule owns the storage shared by session and limiter middleware.
// With no Redis address configured it hands out a nil storage, which the
// Fiber middleware treats as in-process memory.
type PluginModule struct {
	container types.ServiceContainer
	storage   fiber.Storage
	redisAddr string
}

var (
	_ mono.PluginModule          = (*PluginModule)(nil)
	_ mono.HealthCheckableModule = (*PluginModule)(nil)
)

// NewPluginModule creates the plugin. An empty redisAddr selects memory storage.
func NewPluginModule(redisAddr string) *PluginModule {
	return &PluginModule{redisAddr: redisAddr}
}

func (m *PluginModule) Name() string {
	return PluginAlias
}

// Start connects to Redis when an address is configured.
// redis.New panics when the server is unreachable.
func (m *PluginModule) Start(_ context.Context) error {
	if m.redisAddr == "" {
		log.Println("[sessionstore] Plugin started - using in-memory storage")
		return nil
	}

	host, port := parseRedisAddr(m.redisAddr)
	m.storage = redis.New(redis.Config{
		Host:     host,
		Port:     port,
		PoolSize: 50,
	})
	log.Printf("[sessionstore] Plugin started - connected to Redis at %s:%d", host, port)
	return nil
}

func (m *PluginModule) Stop(_ context.Context) error {
	if m.storage != nil {
		if err := m.storage.Close(); err != nil {
			log.Printf("[sessionstore] Error closing connection: %v", err)
			return fmt.Errorf("failed to close session storage: %w", err)
		}
	}
	log.Println("[sessionstore] Plugin stopped")
	return nil
}

func (m *PluginModule) SetContainer(container types.ServiceContainer) {
	m.container = container
}

func (m *PluginModule) Container() types.ServiceContainer {
	return m.container
}

// Storage returns the shared storage, or nil for in-memory mode.
// It is only meaningful after Start.
func (m *PluginModule) Storage() fiber.Storage {
	return m.storage
}

// Backend names the storage in use.
func (m *PluginModule) Backend() string {
	if m.redisAddr == "" {
		return "memory"
	}
	return "redis"
}

func (m *PluginModule) Health(_ context.Context) mono.HealthStatus {
	if m.redisAddr == "" {
		return mono.HealthStatus{
			Healthy: true,
			Message: "operational",
			Details: map[string]any{"backend": "memory"},
		}
	}
	if m.storage == nil {
		return mono.HealthStatus{Healthy: false, Message: "storage not initialized"}
	}
	if _, err := m.storage.Get("__health_check__"); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("health check failed: %v", err),
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"backend":    "redis",
			"redis_addr": m.redisAddr,
		},
	}
}

// parseRedisAddr splits "host:port", falling back to 127.0.0.1:6379.
func parseRedisAddr(addr string) (string, int) {
	const defaultHost = "127.0.0.1"
	const defaultPort = 6379

	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return defaultHost, defaultPort
	}
	if host == "" {
		host = defaultHost
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		port = defaultPort
	}
	return host, port
}
