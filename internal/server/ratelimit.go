package server

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"cvtailor/internal/config"
)

const limiterIdleEviction = 10 * time.Minute

// limiterManager keeps one token bucket per client. Clients are keyed
// by API key when present, falling back to remote IP. Idle entries are
// evicted by a background sweep.
type limiterManager struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	limit    rate.Limit
	burst    int
	stop     chan struct{}
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newLimiterManager(cfg config.RateLimitConfig) *limiterManager {
	m := &limiterManager{
		limiters: make(map[string]*limiterEntry),
		limit:    rate.Limit(float64(cfg.RequestsPerMinute) / 60.0),
		burst:    cfg.Burst,
		stop:     make(chan struct{}),
	}
	go m.evictLoop()
	return m
}

func (m *limiterManager) allow(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.limiters[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(m.limit, m.burst)}
		m.limiters[key] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter.Allow()
}

func (m *limiterManager) evictLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-limiterIdleEviction)
			m.mu.Lock()
			for key, entry := range m.limiters {
				if entry.lastSeen.Before(cutoff) {
					delete(m.limiters, key)
				}
			}
			m.mu.Unlock()
		}
	}
}

func (m *limiterManager) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.limiters)
}

func (m *limiterManager) close() {
	close(m.stop)
}

// clientKey identifies the caller for rate limiting purposes.
func clientKey(r *http.Request) string {
	if key := r.Header.Get("X-API-Key"); key != "" {
		return "key:" + key
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return "ip:" + r.RemoteAddr
	}
	return "ip:" + host
}
