package logger

import (
	"context"
	"testing"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestCtxAddsTraceFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	prev := Logger
	Logger = zap.New(core)
	t.Cleanup(func() { Logger = prev })

	Ctx(context.Background()).Info("plain")

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{1, 2, 3},
		SpanID:     trace.SpanID{4, 5, 6},
		TraceFlags: trace.FlagsSampled,
	})
	Ctx(trace.ContextWithSpanContext(context.Background(), sc)).Info("traced")

	entries := logs.AllUntimed()
	if assert.Len(t, entries, 2) {
		assert.Empty(t, entries[0].Context)
		fields := entries[1].ContextMap()
		assert.Equal(t, sc.TraceID().String(), fields["trace_id"])
		assert.Equal(t, sc.SpanID().String(), fields["span_id"])
	}
}

func TestHlogLevel(t *testing.T) {
	assert.Equal(t, hlog.LevelDebug, hlogLevel(zapcore.DebugLevel))
	assert.Equal(t, hlog.LevelWarn, hlogLevel(zapcore.WarnLevel))
	assert.Equal(t, hlog.LevelError, hlogLevel(zapcore.DPanicLevel))
}
