package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	appctx "taxiledger/internal/core/context"
)

func TestFromContext_AddsRequestFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ctx := WithLogger(context.Background(), NewFromCore(core))
	ctx = appctx.WithTrace(ctx, &appctx.TraceContext{TraceID: "t-1", RequestID: "r-1"})
	ctx = appctx.WithOperator(ctx, &appctx.Operator{ID: "cashier-7"})
	ctx = appctx.WithJob(ctx, "close-month")

	Info(ctx, "balance adjusted", "delta", "100.00")
	Debug(ctx, "dropped below level")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "t-1", fields["trace_id"])
	assert.Equal(t, "r-1", fields["request_id"])
	assert.Equal(t, "cashier-7", fields["operator_id"])
	assert.Equal(t, "close-month", fields["job"])
	assert.Equal(t, "100.00", fields["delta"])
}

func TestNew_FallsBackToInfo(t *testing.T) {
	l, err := New(Config{Level: "bogus", OutputPaths: []string{"stderr"}})
	require.NoError(t, err)
	assert.True(t, l.Desugar().Core().Enabled(zapcore.InfoLevel))
	assert.False(t, l.Desugar().Core().Enabled(zapcore.DebugLevel))
}
