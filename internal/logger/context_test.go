package logger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"jobalert/internal/logger"
)

func TestFromContext_ReturnsStoredLogger(t *testing.T) {
	l := logger.NewNop().With(logger.String("k", "v"))
	ctx := logger.WithContext(context.Background(), l)

	assert.Same(t, l, logger.FromContext(ctx))
}

func TestFromContext_FallsBackToNop(t *testing.T) {
	l := logger.FromContext(context.Background())

	assert.IsType(t, &logger.NoOpLogger{}, l)
	assert.NoError(t, l.Sync())
}

func TestNew_AcceptsConsoleFormat(t *testing.T) {
	l, err := logger.New(logger.Config{Level: "debug", Format: "console", OutputPaths: []string{"stdout"}})
	assert.NoError(t, err)
	assert.NotNil(t, l)
}
