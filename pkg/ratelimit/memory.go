package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Memory 进程内令牌桶限流器
// Redis 不可用时作为 middleware.RateLimiter 的替代；多实例部署下各实例独立计数
type Memory struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	ttl     time.Duration
	now     func() time.Time
}

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// NewMemory 创建进程内限流器，超过 ttl 未访问的桶会被回收
func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Memory{buckets: make(map[string]*bucket), ttl: ttl, now: time.Now}
}

// CheckRateLimit 窗口内最多放行 limit 次，令牌按 window/limit 的间隔匀速补充
func (m *Memory) CheckRateLimit(_ context.Context, key string, limit int, window time.Duration) (bool, error) {
	if limit <= 0 {
		return true, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.prune(now)

	b, ok := m.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(rate.Every(window/time.Duration(limit)), limit)}
		m.buckets[key] = b
	}
	b.seen = now
	return b.lim.AllowN(now, 1), nil
}

func (m *Memory) prune(now time.Time) {
	for k, b := range m.buckets {
		if now.Sub(b.seen) > m.ttl {
			delete(m.buckets, k)
		}
	}
}
