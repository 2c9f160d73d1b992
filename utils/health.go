package utils

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Pinger is anything the health monitor can ping.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthStatus represents current status of external services.
type HealthStatus struct {
	Store     bool      `json:"store"`
	Redis     []bool    `json:"redis"`
	CheckedAt time.Time `json:"checkedAt"`
}

// Healthy reports whether every checked dependency answered.
func (h HealthStatus) Healthy() bool {
	if !h.Store {
		return false
	}
	for _, ok := range h.Redis {
		if !ok {
			return false
		}
	}
	return true
}

type HealthMonitor struct {
	store   Pinger
	redis   []*redis.Client
	mu      sync.RWMutex
	current HealthStatus
}

func NewHealthMonitor(store Pinger, redisClients ...*redis.Client) *HealthMonitor {
	return &HealthMonitor{store: store, redis: redisClients}
}

// Status returns latest stored health snapshot.
func (m *HealthMonitor) Status() HealthStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Check pings every dependency once and stores the result.
func (m *HealthMonitor) Check(ctx context.Context) HealthStatus {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	status := HealthStatus{Store: m.store.Ping(ctx) == nil, CheckedAt: time.Now()}
	for _, client := range m.redis {
		status.Redis = append(status.Redis, client.Ping(ctx).Err() == nil)
	}

	m.mu.Lock()
	m.current = status
	m.mu.Unlock()
	return status
}

// Start performs periodic health checks until ctx is done.
func (m *HealthMonitor) Start(ctx context.Context, every time.Duration) {
	m.Check(ctx)
	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if status := m.Check(ctx); !status.Healthy() {
					GetLogger().Warn("Dependency health check failed", zap.Any("status", status))
				}
			}
		}
	}()
}
