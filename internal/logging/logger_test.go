package logging

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromContext_BindsRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetBase(zap.New(core))
	defer SetBase(nil)

	ctx := WithRequestID(context.Background(), "rid-42")
	FromContext(ctx).LogError("getOkrs", errors.New("boom"))

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "rid-42", fields["request_id"])
	assert.Equal(t, "getOkrs", fields["operation"])
	assert.Equal(t, "boom", fields["error"])
}

func TestFromContext_UnknownRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetBase(zap.New(core))
	defer SetBase(nil)

	FromContext(context.Background()).LogInfof("deleteOkr", "deleted OKR w/ id=%s", "okr-1")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "deleted OKR w/ id=okr-1", entries[0].Message)
	assert.Equal(t, "unknown", entries[0].ContextMap()["request_id"])
}

func TestInit_FallsBackToInfo(t *testing.T) {
	logger, err := Init("development", "chatty")
	require.NoError(t, err)
	defer SetBase(nil)

	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}
