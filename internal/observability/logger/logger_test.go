package logger

import (
	"context"
	"testing"

	obscontext "github.com/smallbiznis/zoolspeed/internal/observability/context"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestWithContextAddsCorrelationFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	base := zap.New(core)

	ctx := obscontext.WithRequestID(context.Background(), "req-9")
	ctx = obscontext.WithCompanyID(ctx, "42")
	ctx = obscontext.WithActor(ctx, "admin", "ops")

	WithContext(ctx, base).Info("hello")

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "req-9", fields["request_id"])
		assert.Equal(t, "42", fields["company_id"])
		assert.Equal(t, "admin", fields["actor_role"])
		assert.Equal(t, "ops", fields["actor_id"])
		assert.NotContains(t, fields, "trace_id")
	}
}

func TestWithContextSkipsUnsetFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	base := zap.New(core)

	assert.Same(t, base, WithContext(context.Background(), base))

	WithContext(obscontext.WithCompanyID(context.Background(), "7"), base).Info("hello")
	entries := logs.All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, map[string]any{"company_id": "7"}, entries[0].ContextMap())
	}
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New(nil, Config{Level: "loud"})
	assert.Error(t, err)

	log, err := New(nil, Config{Level: "debug", Format: "console", Development: true})
	assert.NoError(t, err)
	assert.NotNil(t, log)
}

func TestGormLoggerDropsParams(t *testing.T) {
	l := NewGormLogger(zap.NewNop(), DefaultGormLoggerConfig())
	sql, params := l.ParamsFilter(context.Background(), "SELECT 1 WHERE token_digest = ?", "deadbeef")
	assert.Equal(t, "SELECT 1 WHERE token_digest = ?", sql)
	assert.Nil(t, params)
}

func TestGormLoggerLogMode(t *testing.T) {
	l := NewGormLogger(zap.NewNop(), DefaultGormLoggerConfig())
	silent := l.LogMode(gormlogger.Silent).(*GormLogger)
	assert.Equal(t, gormlogger.Silent, silent.level)
	assert.Equal(t, gormlogger.Warn, l.level)
}

func TestOperationFromSQL(t *testing.T) {
	assert.Equal(t, "SELECT", operationFromSQL("  select * from companies"))
	assert.Equal(t, "UPDATE", operationFromSQL("UPDATE companies SET is_active = ?"))
	assert.Equal(t, "UNKNOWN", operationFromSQL(""))
}
