package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"go-gin-user-service/internal/core/config"
)

// Build 按配置构建根 logger。
// log.json=false 输出彩色控制台格式，否则 JSON（ts 为 ISO8601）；
// log.file.enable 时同一份日志再写入 lumberjack 切割文件。
// 返回的 cleanup 负责 Sync 并关闭文件。
func Build(lc config.Log, app config.App) (*zap.Logger, func(), error) {
	return build(lc, app, zapcore.Lock(os.Stdout))
}

func build(lc config.Log, app config.App, stdout zapcore.WriteSyncer) (*zap.Logger, func(), error) {
	var lvl zapcore.Level
	if err := lvl.Set(lc.Level); err != nil {
		return nil, nil, fmt.Errorf("log level %q: %w", lc.Level, err)
	}

	enc := newEncoder(lc.JSON)
	cores := []zapcore.Core{zapcore.NewCore(enc, stdout, lvl)}

	var file *lumberjack.Logger
	if lc.File.Enable {
		file = &lumberjack.Logger{
			Filename:   lc.File.Filename,
			MaxSize:    max(1, lc.File.MaxSizeMB),
			MaxBackups: max(0, lc.File.MaxBackups),
			MaxAge:     max(0, lc.File.MaxAgeDays),
			Compress:   lc.File.Compress,
		}
		// 文件里始终用 JSON，便于采集
		cores = append(cores, zapcore.NewCore(newEncoder(true), zapcore.AddSync(file), lvl))
	}

	// 同一秒内同样的消息超过 100 条后每 100 条记 1 条
	core := zapcore.NewSamplerWithOptions(zapcore.NewTee(cores...), time.Second, 100, 100)

	opts := []zap.Option{zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)}
	if app.Env == "development" {
		opts = append(opts, zap.Development())
	}
	l := zap.New(core, opts...)
	if app.Name != "" {
		l = l.With(zap.String("service", app.Name), zap.String("env", app.Env))
	}

	cleanup := func() {
		_ = l.Sync()
		if file != nil {
			_ = file.Close()
		}
	}
	return l, cleanup, nil
}

func newEncoder(json bool) zapcore.Encoder {
	if json {
		cfg := zap.NewProductionEncoderConfig()
		cfg.TimeKey = "ts"
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.EncodeCaller = zapcore.ShortCallerEncoder
		return zapcore.NewJSONEncoder(cfg)
	}
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncodeCaller = zapcore.ShortCallerEncoder
	return zapcore.NewConsoleEncoder(cfg)
}

// lineWriter 把 io.Writer 的每一行转成一条日志
type lineWriter struct {
	l     *zap.Logger
	level zapcore.Level
}

func (w *lineWriter) Write(p []byte) (int, error) {
	for _, line := range strings.Split(strings.TrimRight(string(p), "\r\n"), "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		if ce := w.l.Check(w.level, line); ce != nil {
			ce.Write()
		}
	}
	return len(p), nil
}

// ToWriter 给 gin.DefaultWriter / DefaultErrorWriter 用
func ToWriter(l *zap.Logger, level zapcore.Level) io.Writer {
	return &lineWriter{l: l.WithOptions(zap.WithCaller(false)), level: level}
}

// ToStdLogger 给 http.Server.ErrorLog 用
func ToStdLogger(l *zap.Logger, level zapcore.Level) (*log.Logger, error) {
	return zap.NewStdLogAt(l, level)
}

// RedirectStdLog 接管标准库 log 的全局输出，返回值用于恢复
func RedirectStdLog(l *zap.Logger, level zapcore.Level) func() {
	undo, err := zap.RedirectStdLogAt(l, level)
	if err != nil {
		return func() {}
	}
	return undo
}
