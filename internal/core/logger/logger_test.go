package logger

import (
	"bytes"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"go-gin-user-service/internal/core/config"
)

var testApp = config.App{Name: "user-service", Env: "test"}

func TestBuild_JSON(t *testing.T) {
	var buf bytes.Buffer
	l, cleanup, err := build(config.Log{Level: "info", JSON: true}, testApp, zapcore.AddSync(&buf))
	require.NoError(t, err)

	l.Info("user created", zap.String("id", "u1"))
	l.Debug("filtered")
	cleanup()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "user created", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "u1", entry["id"])
	assert.Equal(t, "user-service", entry["service"])
	assert.Equal(t, "test", entry["env"])
	assert.Contains(t, entry, "ts")
	assert.Contains(t, entry, "caller")
}

func TestBuild_Console(t *testing.T) {
	var buf bytes.Buffer
	l, cleanup, err := build(config.Log{Level: "debug"}, config.App{Env: "development"}, zapcore.AddSync(&buf))
	require.NoError(t, err)

	l.Debug("console line")
	cleanup()

	out := buf.String()
	assert.Contains(t, out, "console line")
	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}

func TestBuild_RotatingFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "app.log")
	var stdout bytes.Buffer
	l, cleanup, err := build(config.Log{
		Level: "warn",
		File:  config.LogFile{Enable: true, Filename: file, MaxSizeMB: 1, MaxBackups: 1, MaxAgeDays: 1},
	}, testApp, zapcore.AddSync(&stdout))
	require.NoError(t, err)

	l.Warn("disk nearly full")
	l.Info("filtered")
	cleanup()

	b, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"msg":"disk nearly full"`)
	assert.NotContains(t, string(b), "filtered")
	assert.Contains(t, stdout.String(), "disk nearly full")
}

func TestBuild_BadLevel(t *testing.T) {
	_, _, err := build(config.Log{Level: "loud"}, testApp, zapcore.AddSync(&bytes.Buffer{}))
	assert.Error(t, err)
}

func TestToWriter(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	w := ToWriter(zap.New(core), zapcore.WarnLevel)

	in := "[GIN-debug] GET /api/users\r\n[GIN-debug] POST /api/users\n"
	n, err := w.Write([]byte(in))
	require.NoError(t, err)
	assert.Equal(t, len(in), n)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "[GIN-debug] GET /api/users", entries[0].Message)
	assert.Equal(t, "[GIN-debug] POST /api/users", entries[1].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
}

func TestToWriter_BelowLevelDropped(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	w := ToWriter(zap.New(core), zapcore.InfoLevel)

	_, err := w.Write([]byte("noise"))
	require.NoError(t, err)
	assert.Zero(t, logs.Len())
}

func TestToStdLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	std, err := ToStdLogger(zap.New(core), zapcore.ErrorLevel)
	require.NoError(t, err)

	std.Print("http: TLS handshake error")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, zapcore.ErrorLevel, logs.All()[0].Level)
}

func TestRedirectStdLog(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	undo := RedirectStdLog(zap.New(core), zapcore.InfoLevel)
	defer undo()

	log.Print("from stdlib")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "from stdlib", logs.All()[0].Message)
}
