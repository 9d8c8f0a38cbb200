package debugtrace

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	genagents "github.com/wafo210715/generative-agents"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogHook_TraceRun(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	h := NewLogHook(zap.New(core))

	h.TraceRun(context.Background(), wakeUpRecord())

	entries := logs.FilterMessage("task run").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "wake_up_hour", fields["task"])
	assert.Equal(t, "general", fields["role"])
	assert.Equal(t, int64(1), fields["attempts"])
}

func TestLogHook_Levels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	h := NewLogHook(zap.New(core))
	ctx := context.Background()

	h.OnAttempt(ctx, genagents.AttemptEvent{Name: "wake_up_hour", Number: 1})
	h.OnAttempt(ctx, genagents.AttemptEvent{Name: "wake_up_hour", Number: 2, Err: genagents.ErrMissingOutput})
	h.OnFallback(ctx, genagents.FallbackEvent{Name: "wake_up_hour", Attempts: 5, Fallback: 8})
	h.OnAfterRun(ctx, genagents.AfterRunEvent{Record: wakeUpRecord(), Error: genagents.ErrTemplateNotFound})

	tests := []struct {
		message string
		level   zapcore.Level
	}{
		{message: "attempt failed", level: zapcore.DebugLevel},
		{message: "fallback used", level: zapcore.WarnLevel},
		{message: "run aborted", level: zapcore.ErrorLevel},
	}
	for _, tc := range tests {
		entries := logs.FilterMessage(tc.message).All()
		if assert.Len(t, entries, 1, tc.message) {
			assert.Equal(t, tc.level, entries[0].Level, tc.message)
		}
	}
	assert.Equal(t, 3, logs.Len(), "successful attempts are not logged")
}

func TestLogHook_NilLogger(t *testing.T) {
	h := NewLogHook(nil)
	assert.NotPanics(t, func() {
		h.OnFallback(context.Background(), genagents.FallbackEvent{Name: "x"})
	})
}
