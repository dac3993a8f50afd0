package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	resp "go-gin-user-service/internal/transport/http/response"
)

// RateLimit 全局令牌桶限速
func RateLimit(rps rate.Limit, burst int) gin.HandlerFunc {
	lim := rate.NewLimiter(rps, burst)
	return func(c *gin.Context) {
		if lim.Allow() {
			c.Next()
			return
		}
		tooMany(c)
	}
}

// RateLimitPerIP 每 IP 一个令牌桶；闲置超过 idle 的桶会被回收
func RateLimitPerIP(rps rate.Limit, burst int, idle time.Duration) gin.HandlerFunc {
	set := newIPLimiters(rps, burst, idle, time.Now)
	return func(c *gin.Context) {
		if set.allow(c.ClientIP()) {
			c.Next()
			return
		}
		tooMany(c)
	}
}

type ipEntry struct {
	lim  *rate.Limiter
	seen time.Time
}

type ipLimiters struct {
	mu        sync.Mutex
	rps       rate.Limit
	burst     int
	idle      time.Duration
	now       func() time.Time
	lastSweep time.Time
	buckets   map[string]*ipEntry
}

func newIPLimiters(rps rate.Limit, burst int, idle time.Duration, now func() time.Time) *ipLimiters {
	if idle <= 0 {
		idle = 3 * time.Minute
	}
	return &ipLimiters{rps: rps, burst: burst, idle: idle, now: now, lastSweep: now(), buckets: make(map[string]*ipEntry)}
}

func (s *ipLimiters) allow(ip string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	// 每个 idle 周期最多扫一次
	if now.Sub(s.lastSweep) >= s.idle {
		for k, e := range s.buckets {
			if now.Sub(e.seen) >= s.idle {
				delete(s.buckets, k)
			}
		}
		s.lastSweep = now
	}

	e, ok := s.buckets[ip]
	if !ok {
		e = &ipEntry{lim: rate.NewLimiter(s.rps, s.burst)}
		s.buckets[ip] = e
	}
	e.seen = now
	return e.lim.AllowN(now, 1)
}

func (s *ipLimiters) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buckets)
}

func tooMany(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, resp.Error(http.StatusTooManyRequests, resp.MsgTooManyRequests))
}
