package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"go-gin-user-service/internal/core/server"
	mdw "go-gin-user-service/internal/transport/http/middleware"
	resp "go-gin-user-service/internal/transport/http/response"
)

// Limits 入口保护参数，零值项使用默认值；PerIPRPS 为 0 时不按 IP 限速
type Limits struct {
	RPS          float64
	Burst        int
	PerIPRPS     float64
	PerIPBurst   int
	MaxInFlight  int64
	MaxBodyBytes int64
	Timeout      time.Duration
}

func (l Limits) withDefaults() Limits {
	if l.RPS <= 0 {
		l.RPS = 200
	}
	if l.Burst <= 0 {
		l.Burst = 400
	}
	if l.PerIPRPS > 0 && l.PerIPBurst <= 0 {
		l.PerIPBurst = int(l.PerIPRPS) + 1
	}
	if l.MaxInFlight <= 0 {
		l.MaxInFlight = 300
	}
	if l.MaxBodyBytes <= 0 {
		l.MaxBodyBytes = 1 << 20
	}
	if l.Timeout <= 0 {
		l.Timeout = 10 * time.Second
	}
	return l
}

func NewAPIEngine(l *zap.Logger, lim Limits, reg *Registry) *gin.Engine {
	lim = lim.withDefaults()
	metrics := mdw.NewMetrics(prometheus.NewRegistry())
	r := server.NewRouter(l)
	r.HandleMethodNotAllowed = true

	// 中间件
	r.Use(
		mdw.RequestID(),
		mdw.SecurityHeaders(),
		metrics.Middleware(),
		mdw.AccessLog(l),
		mdw.Recovery(l),
		mdw.RateLimit(rate.Limit(lim.RPS), lim.Burst),
	)
	if lim.PerIPRPS > 0 {
		r.Use(mdw.RateLimitPerIP(rate.Limit(lim.PerIPRPS), lim.PerIPBurst, 3*time.Minute))
	}
	r.Use(
		mdw.ConcurrencyLimit(lim.MaxInFlight),
		mdw.MaxBodyBytes(lim.MaxBodyBytes),
		mdw.Timeout(lim.Timeout),
	)

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, resp.OK(http.StatusOK, gin.H{"status": "ok"}))
	})
	r.GET("/metrics", metrics.Handler())

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, resp.Error(http.StatusNotFound, resp.MsgRouteNotFound))
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, resp.Error(http.StatusMethodNotAllowed, ""))
	})

	api := r.Group("/api")
	if reg != nil {
		reg.MountAll(api)
	}
	return r
}
