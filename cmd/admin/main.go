// admin 一次性运维命令：
//
//	admin migrate   建表/补列
//	admin list      以 JSON 打印全部用户（不含密码）
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-gin-user-service/internal/core/config"
	"go-gin-user-service/internal/core/database"
	"go-gin-user-service/internal/core/logger"
	"go-gin-user-service/internal/feature/user"
	"go-gin-user-service/internal/repo"
	"go-gin-user-service/internal/service"
)

const usage = "usage: admin <migrate|list>"

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

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

	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username, // 传入用户名
		Password:           cfg.DB.Password, // 传入密码
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		Logger:             log,
	})
	if err != nil {
		log.Fatal("db open", zap.Error(err))
	}
	defer func() { _ = database.Close(db) }()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := run(ctx, os.Args[1], db, log, os.Stdout); err != nil {
		log.Error("admin command failed", zap.String("cmd", os.Args[1]), zap.Error(err))
		cancel()
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd string, db *gorm.DB, l *zap.Logger, out io.Writer) error {
	switch cmd {
	case "migrate":
		if err := db.WithContext(ctx).AutoMigrate(&user.UserModel{}); err != nil {
			return fmt.Errorf("automigrate: %w", err)
		}
		l.Info("automigrate done")
		return nil
	case "list":
		users, err := service.NewUserService(repo.NewUserRepo(db), l).List(ctx)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(users)
	default:
		return fmt.Errorf("unknown command %q; %s", cmd, usage)
	}
}
