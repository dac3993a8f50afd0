package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"go-gin-user-service/internal/core/cache"
	"go-gin-user-service/internal/core/config"
	"go-gin-user-service/internal/core/database"
	"go-gin-user-service/internal/core/logger"
	"go-gin-user-service/internal/core/server"
	"go-gin-user-service/internal/feature/user"
	"go-gin-user-service/internal/repo"
	"go-gin-user-service/internal/service"
	"go-gin-user-service/internal/transport/http/handler"
	"go-gin-user-service/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log, cleanup, err := logger.Build(cfg.Log, cfg.App)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer cleanup()

	// 第三方输出统一进 zap
	undo := logger.RedirectStdLog(log, zapcore.InfoLevel)
	defer undo()
	gin.SetMode(cfg.GinMode())
	gin.DefaultWriter = logger.ToWriter(log.Named("gin"), zapcore.DebugLevel)
	gin.DefaultErrorWriter = logger.ToWriter(log.Named("gin"), zapcore.ErrorLevel)

	// 数据库（失败会直接 Fatal）
	db := mustOpenDB(cfg, log)
	defer func() {
		if err := database.Close(db); err != nil {
			log.Warn("db close", zap.Error(err))
		}
	}()
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))

	if cfg.DB.AutoMigrate {
		if err := db.AutoMigrate(&user.UserModel{}); err != nil {
			log.Fatal("automigrate failed", zap.Error(err))
		}
		log.Info("automigrate done")
	}

	// 依赖
	var opts []service.Option
	if c := openCache(cfg, log); c != nil {
		defer func() { _ = c.Close() }()
		opts = append(opts, service.WithCache(c, cfg.CacheTTL()))
	}
	userSvc := service.NewUserService(repo.NewUserRepo(db), log.Named("user"), opts...)
	reg := router.NewRegistry(handler.NewUserHandler(userSvc, log.Named("http")))

	r := router.NewAPIEngine(log, router.Limits{
		RPS:          cfg.Limits.RPS,
		Burst:        cfg.Limits.Burst,
		PerIPRPS:     cfg.Limits.PerIPRPS,
		PerIPBurst:   cfg.Limits.PerIPBurst,
		MaxInFlight:  cfg.Limits.MaxInFlight,
		MaxBodyBytes: cfg.Limits.MaxBodyBytes,
		Timeout:      time.Duration(cfg.Limits.TimeoutSec) * time.Second,
	}, reg)

	// HTTP Server
	errLog, err := logger.ToStdLogger(log.Named("http.server"), zapcore.ErrorLevel)
	if err != nil {
		log.Fatal("server error log", zap.Error(err))
	}
	rt, wt, it := cfg.App.HTTP.Timeouts()
	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(addr, r, rt, wt, it, errLog)

	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("user api starting",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("api", baseURL+"/api"),
	)

	// SIGINT/SIGTERM 触发优雅关闭
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := server.Run(ctx, srv, log); err != nil {
		log.Error("user api stopped with error", zap.Error(err))
		return
	}
	log.Info("user api stopped gracefully")
}

// openCache Redis 可选：未配置或连不上时返回 nil，服务照常走数据库
func openCache(cfg *config.Config, l *zap.Logger) *cache.Cache {
	if cfg.Redis.Addr == "" {
		return nil
	}
	c := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.Ping(ctx); err != nil {
		l.Warn("redis unavailable, cache disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		_ = c.Close()
		return nil
	}
	l.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
	return c
}

func mustOpenDB(cfg *config.Config, l *zap.Logger) *gorm.DB {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		Logger:             l,
	})
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	return db
}
