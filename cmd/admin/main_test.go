package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"go-gin-user-service/internal/core/database"
	"go-gin-user-service/internal/domain"
	"go-gin-user-service/internal/repo"
)

func TestRun(t *testing.T) {
	db, err := database.NewGorm(database.Opts{Driver: "sqlite", DSN: ":memory:", MaxOpenConns: 1, LogLevel: "silent"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	ctx := context.Background()
	var out bytes.Buffer

	require.NoError(t, run(ctx, "migrate", db, zap.NewNop(), &out))
	require.NoError(t, repo.NewUserRepo(db).Create(ctx, &domain.User{Email: "a@b.com", Name: "Ann", PasswordHash: "h"}))

	require.NoError(t, run(ctx, "list", db, zap.NewNop(), &out))
	var users []map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &users))
	require.Len(t, users, 1)
	assert.Equal(t, "a@b.com", users[0]["email"])
	assert.NotContains(t, out.String(), "password")

	assert.Error(t, run(ctx, "drop", db, zap.NewNop(), &out))
}
