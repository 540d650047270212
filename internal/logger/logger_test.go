package logger

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefault_BeforeInit(t *testing.T) {
	assert.NotNil(t, Default())
	assert.NotPanics(t, func() { Info("hello", "k", "v") })
}

func TestNewHandler(t *testing.T) {
	ctx := context.Background()

	dev := newHandler("development", false)
	assert.IsType(t, &slog.TextHandler{}, dev)
	assert.True(t, dev.Enabled(ctx, slog.LevelDebug))

	prod := newHandler("production", false)
	assert.IsType(t, &slog.JSONHandler{}, prod)
	assert.False(t, prod.Enabled(ctx, slog.LevelDebug))
	assert.True(t, prod.Enabled(ctx, slog.LevelInfo))

	assert.True(t, newHandler("production", true).Enabled(ctx, slog.LevelDebug))
}
